package storage

import (
	"fmt"

	"github.com/kbukum/streamupload/validation"
)

// Kind identifies a storage backend.
type Kind string

const (
	KindLocal       Kind = "local"
	KindObjectStore Kind = "objectstore"
)

// Object store drivers.
const (
	DriverS3    = "s3"
	DriverMinIO = "minio"
)

// Default configuration values.
const (
	DefaultRegion   = "us-east-1"
	DefaultPartSize = int64(5 << 20)
	// MinPartSize is the smallest part S3 accepts for all but the last part.
	MinPartSize = int64(5 << 20)
)

// Config is the active storage variant. Exactly one of Local or ObjectStore.
type Config interface {
	Kind() Kind
	Validate() error
	isConfig()
}

// Local writes uploads below BaseFolder on the local filesystem.
type Local struct {
	BaseFolder string `mapstructure:"base_folder" json:"base_folder"`
}

func (Local) Kind() Kind { return KindLocal }
func (Local) isConfig() {}

// Validate accepts any base folder; an empty one means the working directory.
func (Local) Validate() error { return nil }

// Credentials are static object store credentials. When empty the driver's
// default credential chain is used.
type Credentials struct {
	AccessKeyID     string `mapstructure:"access_key_id" json:"access_key_id" validate:"required_with=SecretAccessKey"`
	SecretAccessKey string `mapstructure:"secret_access_key" json:"-" validate:"required_with=AccessKeyID"`
	SessionToken    string `mapstructure:"session_token" json:"-"`
}

// IsZero reports whether no static credentials are set.
func (c Credentials) IsZero() bool {
	return c.AccessKeyID == "" && c.SecretAccessKey == ""
}

// ObjectStore writes uploads to an S3-compatible bucket.
type ObjectStore struct {
	// Driver selects the client library: "s3" (default) or "minio".
	Driver string `mapstructure:"driver" json:"driver" validate:"omitempty,oneof=s3 minio"`
	Bucket string `mapstructure:"bucket" json:"bucket" validate:"required"`
	Region string `mapstructure:"region" json:"region"`
	// Endpoint overrides the AWS endpoint, for MinIO or other compatible stores.
	// The minio driver requires it as host:port.
	Endpoint    string      `mapstructure:"endpoint" json:"endpoint" validate:"required_if=Driver minio"`
	Credentials Credentials `mapstructure:"credentials" json:"credentials"`
	UseSSL      bool        `mapstructure:"use_ssl" json:"use_ssl"`
	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	ForcePathStyle bool `mapstructure:"force_path_style" json:"force_path_style"`
	// ACL is an optional canned ACL applied to written objects, e.g. "public-read".
	ACL string `mapstructure:"acl" json:"acl"`
	// PartSize is the multipart part size in bytes. Zero means DefaultPartSize;
	// anything else must reach MinPartSize.
	PartSize int64 `mapstructure:"part_size" json:"part_size" validate:"omitempty,gte=5242880"`
}

func (ObjectStore) Kind() Kind { return KindObjectStore }
func (ObjectStore) isConfig() {}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *ObjectStore) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverS3
	}
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.PartSize == 0 {
		c.PartSize = DefaultPartSize
	}
}

// Validate checks the struct tags, including the part size floor.
func (c ObjectStore) Validate() error {
	return validation.Validate(c)
}

// GetBucket returns the bucket name.
func (c ObjectStore) GetBucket() string { return c.Bucket }

// Describe returns a one-line summary of cfg without secrets.
func Describe(cfg Config) string {
	switch c := cfg.(type) {
	case Local:
		return fmt.Sprintf("local base_folder=%q", c.BaseFolder)
	case ObjectStore:
		s := fmt.Sprintf("objectstore driver=%s bucket=%s region=%s", c.Driver, c.Bucket, c.Region)
		if c.Endpoint != "" {
			s += " endpoint=" + c.Endpoint
		}
		return s
	default:
		return "none"
	}
}
