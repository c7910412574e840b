package objectstore

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	miniocreds "github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/kbukum/streamupload/storage"
)

// minioClient implements Client with minio-go's low-level Core API, which
// exposes the multipart calls the backend sequences itself.
type minioClient struct {
	core   *minio.Core
	bucket string
	acl    string
}

func newMinioClient(cfg storage.ObjectStore) (*minioClient, error) {
	endpoint, secure := minioEndpoint(cfg.Endpoint, cfg.UseSSL)

	var creds *miniocreds.Credentials
	if cfg.Credentials.IsZero() {
		creds = miniocreds.NewChainCredentials([]miniocreds.Provider{
			&miniocreds.EnvAWS{},
			&miniocreds.EnvMinio{},
		})
	} else {
		creds = miniocreds.NewStaticV4(
			cfg.Credentials.AccessKeyID,
			cfg.Credentials.SecretAccessKey,
			cfg.Credentials.SessionToken,
		)
	}

	opts := &minio.Options{
		Creds:  creds,
		Secure: secure,
		Region: cfg.Region,
	}
	if cfg.ForcePathStyle {
		opts.BucketLookup = minio.BucketLookupPath
	}

	core, err := minio.NewCore(endpoint, opts)
	if err != nil {
		return nil, fmt.Errorf("objectstore: create minio client: %w", err)
	}
	return &minioClient{core: core, bucket: cfg.Bucket, acl: cfg.ACL}, nil
}

func (c *minioClient) putOptions(contentType string) minio.PutObjectOptions {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if c.acl != "" {
		opts.UserMetadata = map[string]string{"x-amz-acl": c.acl}
	}
	return opts
}

func (c *minioClient) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if _, err := c.core.PutObject(ctx, c.bucket, key, body, size, "", "", c.putOptions(contentType)); err != nil {
		return "", err
	}
	return c.objectURL(key), nil
}

func (c *minioClient) CreateMultipartUpload(ctx context.Context, key, contentType string) (string, error) {
	return c.core.NewMultipartUpload(ctx, c.bucket, key, c.putOptions(contentType))
}

func (c *minioClient) UploadPart(ctx context.Context, key, uploadID string, number int32, body io.Reader, size int64) (string, error) {
	part, err := c.core.PutObjectPart(ctx, c.bucket, key, uploadID, int(number), body, size, minio.PutObjectPartOptions{})
	if err != nil {
		return "", err
	}
	return part.ETag, nil
}

func (c *minioClient) CompleteMultipartUpload(ctx context.Context, key, uploadID string, parts []Part) (string, error) {
	completed := make([]minio.CompletePart, len(parts))
	for i, p := range parts {
		completed[i] = minio.CompletePart{PartNumber: int(p.Number), ETag: p.ETag}
	}
	info, err := c.core.CompleteMultipartUpload(ctx, c.bucket, key, uploadID, completed, minio.PutObjectOptions{})
	if err != nil {
		return "", err
	}
	if info.Location != "" {
		return info.Location, nil
	}
	return c.objectURL(key), nil
}

func (c *minioClient) AbortMultipartUpload(ctx context.Context, key, uploadID string) error {
	return c.core.AbortMultipartUpload(ctx, c.bucket, key, uploadID)
}

func (c *minioClient) DeleteObject(ctx context.Context, key string) error {
	err := c.core.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
	if err != nil && !isMinioNotFound(err) {
		return err
	}
	return nil
}

func (c *minioClient) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(c.core.EndpointURL().String(), "/"), c.bucket, key)
}

func isMinioNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

// minioEndpoint strips a scheme from endpoint, which minio-go expects as
// host:port, and lets an explicit scheme decide TLS.
func minioEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	default:
		return endpoint, useSSL
	}
}

var _ Client = (*minioClient)(nil)
