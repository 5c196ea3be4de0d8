package storage

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
)

// ObjectStore is the subset of MinIOStorage used by ImageStore.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ImageStore turns base64 payloads into stored JPEG objects.
// Keys look like "<folder>/<uuid>.jpg"; the database stores keys, not URLs.
type ImageStore struct {
	processor *ImageProcessor
	objects   ObjectStore
}

func NewImageStore(processor *ImageProcessor, objects ObjectStore) *ImageStore {
	return &ImageStore{processor: processor, objects: objects}
}

// Decode validates a payload without storing it. Errors wrap ErrInvalidImage.
func (s *ImageStore) Decode(payload string) ([]byte, error) {
	return s.processor.Normalize(payload)
}

// Put stores an already normalized image under folder and returns its key.
func (s *ImageStore) Put(ctx context.Context, folder string, jpegData []byte) (string, error) {
	key := path.Join(folder, uuid.NewString()+".jpg")
	if err := s.objects.Upload(ctx, key, jpegData, "image/jpeg"); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return key, nil
}

// Remove deletes key; an empty key is a no-op.
func (s *ImageStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.objects.Delete(ctx, key)
}

func (s *ImageStore) URL(key string) string {
	return s.objects.URL(key)
}
