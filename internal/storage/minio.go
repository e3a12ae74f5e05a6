package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/facturaIA/docqa-service/internal/models"
)

// ErrTooLarge is returned when an object exceeds the upload limit
var ErrTooLarge = errors.New("object exceeds upload limit")

// Store reads submission artifacts from a MinIO/S3 bucket. It never writes.
type Store struct {
	client  *minio.Client
	bucket  string
	maxSize int64
}

// New connects to MinIO and verifies the bucket exists
func New(cfg models.StorageConfig, maxSize int64) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	// Verify bucket exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
	}

	return &Store{client: client, bucket: cfg.Bucket, maxSize: maxSize}, nil
}

// Bucket returns the bucket name
func (s *Store) Bucket() string {
	return s.bucket
}

// Fetch downloads one object as an upload. objectPath may carry the
// "{bucket}/" prefix.
func (s *Store) Fetch(ctx context.Context, objectPath string) (*models.Upload, error) {
	objectName := ObjectName(s.bucket, objectPath)

	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat object %s: %w", objectName, err)
	}
	if s.maxSize > 0 && info.Size > s.maxSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, objectName, info.Size)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", objectName, err)
	}

	contentType := info.ContentType
	if contentType == "" || contentType == "application/octet-stream" || contentType == "binary/octet-stream" {
		contentType = ContentTypeFromName(objectName)
	}

	return &models.Upload{
		Name:        path.Base(objectName),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// Ping checks the bucket is still reachable
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucket)
	return err
}

// ObjectName strips a leading "{bucket}/" from objectPath
func ObjectName(bucket, objectPath string) string {
	objectPath = strings.TrimPrefix(objectPath, "/")
	if len(objectPath) > len(bucket)+1 && objectPath[:len(bucket)+1] == bucket+"/" {
		return objectPath[len(bucket)+1:]
	}
	return objectPath
}

// ContentTypeFromName maps a file extension to its content type. Unknown
// extensions return "" so the caller sniffs the bytes.
func ContentTypeFromName(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	default:
		return ""
	}
}
