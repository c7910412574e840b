package objectstore

import (
	"context"
	"fmt"

	"github.com/kbukum/streamupload/storage"
)

// NewClient builds the Client for cfg.Driver.
func NewClient(ctx context.Context, cfg storage.ObjectStore) (Client, error) {
	switch cfg.Driver {
	case storage.DriverS3, "":
		return newS3Client(ctx, cfg)
	case storage.DriverMinIO:
		return newMinioClient(cfg)
	default:
		return nil, fmt.Errorf("objectstore: unsupported driver %q", cfg.Driver)
	}
}
