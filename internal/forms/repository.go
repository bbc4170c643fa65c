package forms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a submission row does not exist.
var ErrNotFound = errors.New("record not found")

// Repository handles persistence for all submission forms. Table and column
// identifiers are always taken from the registry, never from request input,
// so building them into SQL text is safe; all values go through placeholders.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new forms Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func columnList(def Definition) string {
	cols := make([]string, 0, len(def.Fields)+1)
	for _, f := range def.Fields {
		cols = append(cols, f.Column)
	}
	cols = append(cols, "id")
	return strings.Join(cols, ", ")
}

// rowToMap zips one result row into the JSON object shape the admin UI reads.
func rowToMap(def Definition, values []any) map[string]any {
	record := make(map[string]any, len(def.Fields)+1)
	for i, f := range def.Fields {
		record[f.JSON] = values[i]
	}
	record["id"] = values[len(def.Fields)]
	return record
}

// ListPage returns one page of submissions, newest first, optionally filtered
// by read status.
func (r *Repository) ListPage(ctx context.Context, def Definition, status string, limit, offset int) ([]map[string]any, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s`, columnList(def), def.Table)
	args := []any{}
	if status == "read" || status == "unread" {
		query += ` WHERE read_status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", def.Name, err)
	}
	defer rows.Close()

	records := []map[string]any{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", def.Name, err)
		}
		records = append(records, rowToMap(def, values))
	}
	return records, rows.Err()
}

// Counts returns the total and unread submission counts for a table.
func (r *Repository) Counts(ctx context.Context, table string) (total, unread int, err error) {
	query := fmt.Sprintf(
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE read_status = 'unread') FROM %s`, table)
	if err := r.db.QueryRow(ctx, query).Scan(&total, &unread); err != nil {
		return 0, 0, fmt.Errorf("count %s: %w", table, err)
	}
	return total, unread, nil
}

// SetReadStatus updates a submission's read flag and returns the updated record.
func (r *Repository) SetReadStatus(ctx context.Context, def Definition, id int64, readStatus string) (map[string]any, error) {
	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET read_status = $1 WHERE id = $2`, def.Table),
		readStatus, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update read status on %s: %w", def.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	row := r.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, columnList(def), def.Table), id)
	values, err := rowValues(row, len(def.Fields)+1)
	if err != nil {
		return nil, fmt.Errorf("reload %s record: %w", def.Name, err)
	}
	return rowToMap(def, values), nil
}

// Reply stores the admin's reply, moves the submission to the given status,
// and marks it read.
func (r *Repository) Reply(ctx context.Context, def Definition, id int64, reply *string, status string) error {
	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET admin_reply = $1, status = $2, read_status = 'read' WHERE id = $3`, def.Table),
		reply, status, id,
	)
	if err != nil {
		return fmt.Errorf("update reply on %s: %w", def.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a submission row.
func (r *Repository) Delete(ctx context.Context, def Definition, id int64) error {
	tag, err := r.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, def.Table), id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", def.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertMember stores a membership application.
func (r *Repository) InsertMember(ctx context.Context, fullName, contactNumber, idNumber, schoolName, officeContact string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO members (full_name, contact_number, id_number, school_name, office_contact)
		 VALUES ($1, $2, $3, $4, $5)`,
		fullName, contactNumber, idNumber, schoolName, officeContact,
	)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// InsertFuneralNotice stores a funeral notice.
func (r *Repository) InsertFuneralNotice(ctx context.Context, yourName, idNumber, deceasedName string, dependentName *string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO funeral_notices (your_name, id_number, deceased_name, dependent_name)
		 VALUES ($1, $2, $3, $4)`,
		yourName, idNumber, deceasedName, dependentName,
	)
	if err != nil {
		return fmt.Errorf("insert funeral notice: %w", err)
	}
	return nil
}

// InsertContactMessage stores a contact message.
func (r *Repository) InsertContactMessage(ctx context.Context, name, contactNumber, message string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO contact_messages (name, contact_number, message)
		 VALUES ($1, $2, $3)`,
		name, contactNumber, message,
	)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}

// InsertSurveyResponse stores a satisfaction survey response.
func (r *Repository) InsertSurveyResponse(ctx context.Context, s SurveyResponse) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO survey_responses
		 (satisfaction, addressed, response_time, courtesy, helpful, expectations, suggestions, recommend, difficulties, overall)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		s.Satisfaction, s.Addressed, s.ResponseTime, s.Courtesy, s.Helpful,
		s.Expectations, s.Suggestions, s.Recommend, s.Difficulties, s.Overall,
	)
	if err != nil {
		return fmt.Errorf("insert survey response: %w", err)
	}
	return nil
}

// InsertElectionRegistration stores an election registration with its
// generated unique ID.
func (r *Repository) InsertElectionRegistration(ctx context.Context, fullName, idNumber, contactNumber, uniqueID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO election_registrations (full_name, id_number, contact_number, unique_id)
		 VALUES ($1, $2, $3, $4)`,
		fullName, idNumber, contactNumber, uniqueID,
	)
	if err != nil {
		return fmt.Errorf("insert election registration: %w", err)
	}
	return nil
}

// rowScanner is satisfied by pgx.Row for single-row generic scans.
type rowScanner interface {
	Scan(dest ...any) error
}

func rowValues(row rowScanner, n int) ([]any, error) {
	values := make([]any, n)
	dests := make([]any, n)
	for i := range values {
		dests[i] = &values[i]
	}
	if err := row.Scan(dests...); err != nil {
		return nil, err
	}
	return values, nil
}
