package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/btu-burial/backend/internal/config"
)

// DriveStore stores news images in a Google Drive folder owned by a service
// account. The client and the upload folder ID are resolved lazily on first
// use and cached for the life of the process; a failed attempt leaves the
// cache empty so the next request retries instead of staying broken forever.
type DriveStore struct {
	cfg *config.Config

	mu       sync.Mutex
	svc      *drive.Service
	folderID string
}

// NewDriveStore creates a DriveStore. No network I/O happens until the first
// operation, so a missing credential never blocks startup.
func NewDriveStore(cfg *config.Config) *DriveStore {
	return &DriveStore{cfg: cfg}
}

// client returns the cached Drive service, resolving credentials and running a
// cheap connectivity probe on first call.
func (s *DriveStore) client(ctx context.Context) (*drive.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.svc != nil {
		return s.svc, nil
	}

	sa, err := ResolveCredentials(s.cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	raw, err := sa.JSON()
	if err != nil {
		return nil, fmt.Errorf("%w: encode credentials: %v", ErrUnavailable, err)
	}

	svc, err := drive.NewService(ctx,
		option.WithCredentialsJSON(raw),
		option.WithScopes(drive.DriveFileScope, drive.DriveMetadataReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: create drive client: %v", ErrUnavailable, err)
	}

	// Cheap read-only call to prove the credentials actually work before
	// caching the client.
	if _, err := svc.Files.List().PageSize(1).Fields("files(id)").Context(ctx).Do(); err != nil {
		log.Printf("storage: drive connectivity check failed: %v", err)
		return nil, fmt.Errorf("%w: connectivity check: %v", ErrUnavailable, err)
	}

	log.Printf("storage: drive client ready (service account %s)", sa.ClientEmail)
	s.svc = svc
	return svc, nil
}

// EnsureContainer locates or creates the upload folder and makes it publicly
// readable. Query-before-create keeps concurrent cold starts idempotent: both
// racers either find the same folder or create-and-reuse without error.
func (s *DriveStore) EnsureContainer(ctx context.Context) error {
	_, err := s.folder(ctx)
	return err
}

func (s *DriveStore) folder(ctx context.Context) (string, error) {
	svc, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.folderID != "" {
		return s.folderID, nil
	}

	name := s.cfg.DriveFolderName
	query := fmt.Sprintf("mimeType='application/vnd.google-apps.folder' and name='%s' and trashed=false", name)
	list, err := svc.Files.List().Q(query).Fields("files(id, name)").Spaces("drive").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("list upload folder: %w", err)
	}
	if len(list.Files) > 0 {
		s.folderID = list.Files[0].Id
		return s.folderID, nil
	}

	folder, err := svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: "application/vnd.google-apps.folder",
	}).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create upload folder: %w", err)
	}

	if _, err := svc.Permissions.Create(folder.Id, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("set folder permissions: %w", err)
	}

	log.Printf("storage: created upload folder %s (%s)", name, folder.Id)
	s.folderID = folder.Id
	return s.folderID, nil
}

// Put uploads the content into the upload folder, grants public read so the
// blob is independently fetchable, and returns the Drive file ID as the token.
func (s *DriveStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	folderID, err := s.folder(ctx)
	if err != nil {
		return "", err
	}
	svc, err := s.client(ctx)
	if err != nil {
		return "", err
	}

	file, err := svc.Files.Create(&drive.File{
		Name:     name,
		Parents:  []string{folderID},
		MimeType: contentType,
	}).Media(r, googleapi.ContentType(contentType)).Fields("id").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	if _, err := svc.Permissions.Create(file.Id, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("set file permissions: %w", err)
	}

	return file.Id, nil
}

// Get resolves the file's content type first and only then opens the media
// stream, so non-image references are rejected without transferring the body.
func (s *DriveStore) Get(ctx context.Context, token string) (string, io.ReadCloser, error) {
	svc, err := s.client(ctx)
	if err != nil {
		return "", nil, err
	}

	meta, err := svc.Files.Get(token).Fields("id, mimeType").Context(ctx).Do()
	if err != nil {
		if isDriveNotFound(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("get file metadata: %w", err)
	}
	if !strings.HasPrefix(meta.MimeType, "image/") {
		return "", nil, ErrNotAnImage
	}

	resp, err := svc.Files.Get(token).Context(ctx).Download()
	if err != nil {
		if isDriveNotFound(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("download file: %w", err)
	}

	return meta.MimeType, resp.Body, nil
}

// Delete removes the file. A file that is already gone is treated as deleted.
func (s *DriveStore) Delete(ctx context.Context, token string) error {
	svc, err := s.client(ctx)
	if err != nil {
		return err
	}

	if err := svc.Files.Delete(token).Context(ctx).Do(); err != nil && !isDriveNotFound(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func isDriveNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
