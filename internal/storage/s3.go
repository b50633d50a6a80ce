// Package storage retrieves acquisition inputs from S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrObjectNotFound is returned when the requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

// ObjectGetter is the subset of *minio.Client used here.
type ObjectGetter interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	FGetObject(ctx context.Context, bucketName, objectName, filePath string, opts minio.GetObjectOptions) error
}

// S3Service is a client for S3-compatible storage.
type S3Service struct {
	client ObjectGetter
}

// NewS3Service connects to the MinIO server at endpoint.
func NewS3Service(endpoint, accessKey, secretKey string, useSSL bool) (*S3Service, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("missing one or more of MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY")
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	log.Println("Using MinIO endpoint:", endpoint)
	return &S3Service{client: minioClient}, nil
}

// NewS3ServiceWithClient wraps an existing client.
func NewS3ServiceWithClient(client ObjectGetter) *S3Service {
	return &S3Service{client: client}
}

// EnsureLocal downloads bucket/object to path unless a non-empty file is
// already there. It reports whether a download happened.
func (s *S3Service) EnsureLocal(ctx context.Context, bucket, object, path string) (bool, error) {
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		log.Printf("Using cached copy of %s/%s at %s", bucket, object, path)
		return false, nil
	}

	info, err := s.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, fmt.Errorf("%s/%s: %w", bucket, object, ErrObjectNotFound)
		}
		return false, fmt.Errorf("failed to check for object %s/%s: %w", bucket, object, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := s.client.FGetObject(ctx, bucket, object, path, minio.GetObjectOptions{}); err != nil {
		return false, fmt.Errorf("failed to download %s/%s: %w", bucket, object, err)
	}

	log.Printf("Downloaded %s/%s (%d bytes) to %s", bucket, object, info.Size, path)
	return true, nil
}
