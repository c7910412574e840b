// Package storage defines the destination side of an upload: the Backend
// interface, the tagged storage configuration, and a factory registry.
//
// # Backends
//
//   - storage/local: local filesystem, one file per key
//   - storage/objectstore: S3-compatible buckets (aws-sdk-go-v2 or minio-go)
//
// Backend packages register themselves in init. Import them for side effects
// before calling New:
//
//	import _ "github.com/kbukum/streamupload/storage/local"
//
// # Configuration
//
// Settings is the file-level form, resolved once into a Config variant:
//
//	storage:
//	  provider: "objectstore"
//	  driver: "minio"
//	  bucket: "uploads"
//	  endpoint: "localhost:9000"
package storage
