// Package admin handles the administrator surface: login, dashboard
// aggregation, and survey analysis.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// User is an administrator account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// RecentSubmission is one entry in the dashboard's recent-activity feed.
type RecentSubmission struct {
	Type      string    `json:"type"`
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// CountByValue is one bucket of a grouped survey count.
type CountByValue struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ErrNotFound is returned when an admin user does not exist.
var ErrNotFound = errors.New("admin user not found")

// Repository handles admin database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new admin Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetByUsername fetches an admin account by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	u := &User{}
	err := r.db.QueryRow(ctx,
		`SELECT id, username, password, created_at FROM admin_users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get admin by username: %w", err)
	}
	return u, nil
}

// Recent returns the five most recent submissions across the forms that carry
// a human-readable title.
func (r *Repository) Recent(ctx context.Context) ([]RecentSubmission, error) {
	rows, err := r.db.Query(ctx, `
		(SELECT 'members' AS type, id, full_name AS title, created_at FROM members ORDER BY created_at DESC LIMIT 5)
		UNION ALL
		(SELECT 'funeral_notices' AS type, id, deceased_name AS title, created_at FROM funeral_notices ORDER BY created_at DESC LIMIT 5)
		UNION ALL
		(SELECT 'contact_messages' AS type, id, name AS title, created_at FROM contact_messages ORDER BY created_at DESC LIMIT 5)
		ORDER BY created_at DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("recent submissions: %w", err)
	}
	defer rows.Close()

	recent := []RecentSubmission{}
	for rows.Next() {
		var item RecentSubmission
		if err := rows.Scan(&item.Type, &item.ID, &item.Title, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recent submission: %w", err)
		}
		recent = append(recent, item)
	}
	return recent, rows.Err()
}

// SurveyCounts returns survey responses grouped and counted by the given
// column. Only called with registry-known identifiers.
func (r *Repository) SurveyCounts(ctx context.Context, column string) ([]CountByValue, error) {
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s, COUNT(*) FROM survey_responses GROUP BY %s`, column, column))
	if err != nil {
		return nil, fmt.Errorf("survey counts by %s: %w", column, err)
	}
	defer rows.Close()

	counts := []CountByValue{}
	for rows.Next() {
		var c CountByValue
		if err := rows.Scan(&c.Value, &c.Count); err != nil {
			return nil, fmt.Errorf("scan survey count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
