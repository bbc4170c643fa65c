package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync/atomic"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/btu-burial/backend/internal/config"
)

// MinioStore stores news images in an S3-compatible bucket (MinIO locally,
// any S3 provider in production — the endpoint and credentials are the only
// difference).
type MinioStore struct {
	client *minio.Client
	bucket string

	// bucketReady memoizes a successful bucket bootstrap; a failed attempt
	// leaves it unset so the next request retries.
	bucketReady atomic.Bool
}

// NewMinioStore creates the S3 client. No round-trip happens here; the bucket
// is ensured lazily on first use so a dead endpoint cannot block startup.
func NewMinioStore(cfg *config.Config) (*MinioStore, error) {
	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	return &MinioStore{client: client, bucket: cfg.StorageBucket}, nil
}

// EnsureContainer locates or creates the bucket and applies a public-read
// policy. BucketExists-before-MakeBucket keeps racing cold starts idempotent.
func (s *MinioStore) EnsureContainer(ctx context.Context) error {
	if s.bucketReady.Load() {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("%w: check bucket: %v", ErrUnavailable, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			// Another cold start may have won the race.
			if again, err2 := s.client.BucketExists(ctx, s.bucket); err2 != nil || !again {
				return fmt.Errorf("create bucket %q: %w", s.bucket, err)
			}
		} else {
			log.Printf("storage: created bucket %q", s.bucket)
		}
	}

	if err := s.client.SetBucketPolicy(ctx, s.bucket, publicReadPolicy(s.bucket)); err != nil {
		return fmt.Errorf("set bucket policy: %w", err)
	}

	s.bucketReady.Store(true)
	return nil
}

// Put streams the content into the bucket under the given key, which becomes
// the blob token.
func (s *MinioStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if err := s.EnsureContainer(ctx); err != nil {
		return "", err
	}

	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%w: put object %q: %v", ErrTransferFailed, name, err)
	}
	return name, nil
}

// Get stats the object first so non-images are rejected before the body is
// transferred, then opens the content stream.
func (s *MinioStore) Get(ctx context.Context, token string) (string, io.ReadCloser, error) {
	if err := s.EnsureContainer(ctx); err != nil {
		return "", nil, err
	}

	info, err := s.client.StatObject(ctx, s.bucket, token, minio.StatObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("stat object %q: %w", token, err)
	}
	if !strings.HasPrefix(info.ContentType, "image/") {
		return "", nil, ErrNotAnImage
	}

	obj, err := s.client.GetObject(ctx, s.bucket, token, minio.GetObjectOptions{})
	if err != nil {
		return "", nil, fmt.Errorf("get object %q: %w", token, err)
	}
	return info.ContentType, obj, nil
}

// Delete removes the object; minio treats deleting a missing key as success,
// which matches the idempotent delete contract.
func (s *MinioStore) Delete(ctx context.Context, token string) error {
	if err := s.EnsureContainer(ctx); err != nil {
		return err
	}
	return s.client.RemoveObject(ctx, s.bucket, token, minio.RemoveObjectOptions{})
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

// publicReadPolicy returns an S3 bucket policy JSON that allows anonymous GET
// on all objects.
func publicReadPolicy(bucket string) string {
	policy := map[string]interface{}{
		"Version": "2012-10-17",
		"Statement": []map[string]interface{}{
			{
				"Effect":    "Allow",
				"Principal": "*",
				"Action":    "s3:GetObject",
				"Resource":  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	b, _ := json.Marshal(policy)
	return string(b)
}
