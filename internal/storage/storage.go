// Package storage provides the object-storage backends that hold news images.
// A backend is selected once at startup; handlers never branch on which one is
// active. When no backend is configured (or its bootstrap fails) the Disabled
// implementation is used and upload features degrade instead of crashing.
package storage

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/btu-burial/backend/internal/config"
)

// Store is the interface every image backend implements. Tokens are the bare
// logical names produced by Put; callers resolve stored references to tokens
// through the imageref package before calling Get or Delete.
type Store interface {
	// EnsureContainer idempotently locates or creates the folder/bucket that
	// scopes all uploads. Implementations memoize success so warm requests
	// skip the round-trip; a failed attempt must not poison the cache.
	EnsureContainer(ctx context.Context) error

	// Put stores the content under the given logical name and returns the
	// token that addresses it from now on.
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)

	// Get returns the content type and a stream for the blob. The content
	// type is resolved before any body bytes are transferred so callers can
	// reject non-images cheaply.
	Get(ctx context.Context, token string) (string, io.ReadCloser, error)

	// Delete removes the blob. Absence of the target is not an error.
	Delete(ctx context.Context, token string) error
}

// Error taxonomy shared by all backends.
var (
	// ErrUnavailable means the backend is not configured or not reachable.
	// Callers degrade the feature rather than fail the process.
	ErrUnavailable = errors.New("storage backend unavailable")

	// ErrNotFound means the token does not resolve to a blob.
	ErrNotFound = errors.New("blob not found")

	// ErrNotAnImage means the blob's content type is not image/*.
	ErrNotAnImage = errors.New("blob is not an image")

	// ErrTransferFailed means the transfer failed after exhausting retries.
	ErrTransferFailed = errors.New("blob transfer failed")
)

// New selects and constructs the backend named by STORAGE_BACKEND. It never
// returns an error: a misconfigured backend yields Disabled so the rest of
// the service keeps working without images.
func New(cfg *config.Config) Store {
	switch cfg.StorageBackend {
	case "drive":
		return NewDriveStore(cfg)
	case "ftp":
		if cfg.FTPHost == "" || cfg.FTPUser == "" {
			log.Println("storage: ftp backend selected but FTP_HOST/FTP_USER not set, image uploads disabled")
			return Disabled{}
		}
		return NewFTPStore(cfg)
	case "s3":
		s, err := NewMinioStore(cfg)
		if err != nil {
			log.Printf("storage: s3 backend init failed, image uploads disabled: %v", err)
			return Disabled{}
		}
		return s
	case "none", "":
		log.Println("storage: no backend configured, image uploads disabled")
		return Disabled{}
	default:
		log.Printf("storage: unknown backend %q, image uploads disabled", cfg.StorageBackend)
		return Disabled{}
	}
}

// Disabled is the null backend used when storage is not configured. Every
// operation reports ErrUnavailable.
type Disabled struct{}

func (Disabled) EnsureContainer(context.Context) error { return ErrUnavailable }

func (Disabled) Put(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrUnavailable
}

func (Disabled) Get(context.Context, string) (string, io.ReadCloser, error) {
	return "", nil, ErrUnavailable
}

func (Disabled) Delete(context.Context, string) error { return ErrUnavailable }
