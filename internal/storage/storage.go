package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrDisabled is returned by the noop uploader used when no object storage
// endpoint is configured.
var ErrDisabled = errors.New("object storage disabled")

// Uploader stores raw bytes and returns a public path plus the key needed
// to remove the object again.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (path string, key string, err error)
	Remove(ctx context.Context, key string) error
}

// Config holds object-storage connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStorage is an S3-compatible Uploader.
type MinioStorage struct {
	client *minio.Client
	bucket string
}

// New builds a MinioStorage. With an empty endpoint a disabled uploader is
// returned instead, so the service stays bootable without object storage;
// image sends then fail with ErrDisabled.
func New(cfg Config) (Uploader, error) {
	if cfg.Endpoint == "" {
		return disabledUploader{}, nil
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &MinioStorage{client: client, bucket: cfg.Bucket}, nil
}

// EnsureBucket creates the bucket when missing.
func (s *MinioStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !exists {
		return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	}
	return nil
}

// Upload stores the bytes under a fresh unique key.
func (s *MinioStorage) Upload(ctx context.Context, filename, contentType string, data []byte) (string, string, error) {
	key := uuid.NewString() + "-" + filename
	_, err := s.client.PutObject(ctx, s.bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", "", fmt.Errorf("upload %s: %w", key, err)
	}
	return "/" + s.bucket + "/" + key, key, nil
}

// Remove deletes one object; used to compensate aborted message sends.
func (s *MinioStorage) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

type disabledUploader struct{}

func (disabledUploader) Upload(context.Context, string, string, []byte) (string, string, error) {
	return "", "", ErrDisabled
}

func (disabledUploader) Remove(context.Context, string) error {
	return nil
}
