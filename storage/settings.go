package storage

import (
	"fmt"
	"strings"

	"github.com/kbukum/streamupload/util"
)

// Settings is the flat, file-level storage configuration. Resolve turns it
// into the Config variant the uploader consumes.
type Settings struct {
	// Provider selects the backend: "local" (default) or "objectstore".
	// "s3" and "minio" are accepted as shorthands that also pick the driver.
	Provider string `mapstructure:"provider" json:"provider"`

	// BaseFolder is the local root directory.
	BaseFolder string `mapstructure:"base_folder" json:"base_folder"`

	Driver         string `mapstructure:"driver" json:"driver"`
	Bucket         string `mapstructure:"bucket" json:"bucket"`
	Region         string `mapstructure:"region" json:"region"`
	Endpoint       string `mapstructure:"endpoint" json:"endpoint"`
	AccessKey      string `mapstructure:"access_key" json:"access_key"`
	SecretKey      string `mapstructure:"secret_key" json:"-"`
	SessionToken   string `mapstructure:"session_token" json:"-"`
	UseSSL         bool   `mapstructure:"use_ssl" json:"use_ssl"`
	ForcePathStyle bool   `mapstructure:"force_path_style" json:"force_path_style"`
	ACL            string `mapstructure:"acl" json:"acl"`

	// PartSize is a human-readable multipart part size such as "8MB".
	PartSize string `mapstructure:"part_size" json:"part_size"`
}

// Resolve converts the settings into a validated Config variant.
func (s Settings) Resolve() (Config, error) {
	provider := strings.ToLower(strings.TrimSpace(util.Coalesce(s.Provider, string(KindLocal))))

	switch provider {
	case string(KindLocal):
		return Local{BaseFolder: s.BaseFolder}, nil
	case string(KindObjectStore), DriverS3, DriverMinIO:
		driver := s.Driver
		if provider != string(KindObjectStore) {
			driver = provider
		}
		cfg := ObjectStore{
			Driver:   strings.ToLower(driver),
			Bucket:   s.Bucket,
			Region:   s.Region,
			Endpoint: s.Endpoint,
			Credentials: Credentials{
				AccessKeyID:     s.AccessKey,
				SecretAccessKey: s.SecretKey,
				SessionToken:    s.SessionToken,
			},
			UseSSL:         s.UseSSL,
			ForcePathStyle: s.ForcePathStyle,
			ACL:            s.ACL,
			PartSize:       max(util.ParseSize(s.PartSize, 0), 0),
		}
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	default:
		return nil, fmt.Errorf("storage: unsupported provider %q", s.Provider)
	}
}
