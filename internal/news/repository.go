// Package news manages the news feed: posts with optional image attachments
// held in the configured storage backend.
package news

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Item is a single news post. ImageURL holds the raw storage reference as
// persisted; it is normalized to a proxy path at the serialization boundary.
type Item struct {
	ID        int64     `json:"id"`
	Text      *string   `json:"text"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrNotFound is returned when a news item does not exist.
var ErrNotFound = errors.New("news item not found")

// Repository handles all news database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Insert persists a news row and returns the created record.
func (r *Repository) Insert(ctx context.Context, text, imageURL *string) (*Item, error) {
	item := &Item{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO news (text, image_url)
		 VALUES ($1, $2)
		 RETURNING id, text, image_url, created_at`,
		text, imageURL,
	).Scan(&item.ID, &item.Text, &item.ImageURL, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert news: %w", err)
	}
	return item, nil
}

// GetByID fetches a single news item.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Item, error) {
	item := &Item{}
	err := r.db.QueryRow(ctx,
		`SELECT id, text, image_url, created_at FROM news WHERE id = $1`,
		id,
	).Scan(&item.ID, &item.Text, &item.ImageURL, &item.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get news by id: %w", err)
	}
	return item, nil
}

// List returns one page of news ordered newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, text, image_url, created_at
		 FROM news
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	items := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Text, &item.ImageURL, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan news row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Count returns the total number of news items.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM news`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count news: %w", err)
	}
	return total, nil
}

// Delete removes a news row.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
