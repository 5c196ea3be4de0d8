package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"foodgram-backend/internal/config"
)

// MinIOStorage stores uploaded media in a MinIO/S3 bucket
type MinIOStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewMinIOStorage creates the client and makes sure the bucket exists
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("%s://%s", client.EndpointURL().Scheme, client.EndpointURL().Host)
	}

	return &MinIOStorage{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: publicURL,
	}, nil
}

// Upload puts data under key, e.g. recipes/images/<uuid>.jpg
func (s *MinIOStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("failed to upload to minio: %w", err)
	}
	return nil
}

// Delete removes a single object
func (s *MinIOStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// URL is the public address of key: <public>/<bucket>/<key>
func (s *MinIOStorage) URL(key string) string {
	return ObjectURL(s.publicURL, s.bucket, key)
}

// ObjectURL joins the public origin, bucket and key. Empty key gives "".
func ObjectURL(publicURL, bucket, key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", publicURL, bucket, key)
}
