package news

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/btu-burial/backend/internal/imageref"
	"github.com/btu-burial/backend/internal/storage"
)

// ErrValidation is returned when a creation request carries neither text nor
// an image. It is checked before any storage or database I/O so a rejected
// request can never leave an orphaned blob behind.
var ErrValidation = errors.New("either text or image is required")

// Upload is an image file pulled out of a multipart request.
type Upload struct {
	Filename string
	Size     int64
	Data     []byte
}

// Pagination is the page metadata returned alongside a listing.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
}

// repo is the subset of repository behavior the service depends on.
type repo interface {
	Insert(ctx context.Context, text, imageURL *string) (*Item, error)
	GetByID(ctx context.Context, id int64) (*Item, error)
	List(ctx context.Context, limit, offset int) ([]Item, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id int64) error
}

// Service coordinates the news row in the database with the image blob in the
// storage backend, keeping the two consistent under partial failure.
type Service struct {
	repo  repo
	store storage.Store
}

// NewService creates a new news Service.
func NewService(repo repo, store storage.Store) *Service {
	return &Service{repo: repo, store: store}
}

// Create validates the submission, uploads the image if one is present, and
// persists the row.
//
// Upload policy: when the storage backend is unavailable the post degrades to
// text-only with a warning log; any other upload failure fails the whole
// request. If the database insert fails after a successful upload, the blob
// is deleted again so no blob survives without an owning row.
func (s *Service) Create(ctx context.Context, text string, upload *Upload) (*Item, error) {
	if text == "" && upload == nil {
		return nil, ErrValidation
	}

	var imageURL *string
	var token string
	if upload != nil {
		name := generateFilename(upload.Filename)
		contentType := contentTypeForExtension(path.Ext(name))

		ref, err := s.store.Put(ctx, name, bytes.NewReader(upload.Data), upload.Size, contentType)
		switch {
		case errors.Is(err, storage.ErrUnavailable):
			log.Printf("news: storage backend unavailable, posting without image")
		case err != nil:
			return nil, fmt.Errorf("upload image: %w", err)
		default:
			token = ref
			stored := imageref.ToStored(ref)
			imageURL = &stored
		}
	}

	item, err := s.repo.Insert(ctx, nilIfEmpty(text), imageURL)
	if err != nil {
		if token != "" {
			// Compensate: the row never existed, so the blob must not either.
			if delErr := s.store.Delete(ctx, token); delErr != nil {
				log.Printf("news: compensating blob delete for %s failed: %v", token, delErr)
			}
		}
		return nil, err
	}

	item.ImageURL = imageref.ToExternal(item.ImageURL)
	return item, nil
}

// List returns one page of news with image references rewritten to proxy
// paths, plus pagination metadata.
func (s *Service) List(ctx context.Context, page, limit int) ([]Item, *Pagination, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	items, err := s.repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, nil, err
	}
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, nil, err
	}

	for i := range items {
		items[i].ImageURL = imageref.ToExternal(items[i].ImageURL)
	}

	return items, &Pagination{
		CurrentPage: page,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		TotalItems:  total,
	}, nil
}

// Delete removes a news item and, best-effort, its backing blob. A blob that
// is already gone, or a backend that refuses the delete, never blocks the row
// deletion; otherwise the record would be stranded in the admin UI.
func (s *Service) Delete(ctx context.Context, id int64) error {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if token := blobToken(item.ImageURL); token != "" {
		if err := s.store.Delete(ctx, token); err != nil {
			log.Printf("news: blob delete for item %d (token %s) failed, continuing: %v", id, token, err)
		}
	}

	return s.repo.Delete(ctx, id)
}

// blobToken resolves a stored reference to the backend token, or "" when the
// reference is absent or points at retired hosting no backend can delete.
func blobToken(stored *string) string {
	external := imageref.ToExternal(stored)
	if external == nil {
		return ""
	}
	return imageref.ExtractToken(*external)
}

// generateFilename builds a collision-resistant logical name preserving the
// original extension.
func generateFilename(original string) string {
	ext := strings.ToLower(path.Ext(original))
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("news-%d-%s%s", time.Now().UnixMilli(), suffix, ext)
}

func contentTypeForExtension(ext string) string {
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
