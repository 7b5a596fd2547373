package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loomchat/loom/internal/models"
)

// Line repository errors.
var (
	ErrLineNotFound = errors.New("line not found")
)

// LineRepository handles line persistence.
type LineRepository struct {
	db *DB
}

// NewLineRepository creates a new LineRepository.
func NewLineRepository(db *DB) *LineRepository {
	return &LineRepository{db: db}
}

// Create inserts a new line, minting an id and timestamps when missing.
func (r *LineRepository) Create(ctx context.Context, line *models.Line, isMain bool) error {
	if line.ID == "" {
		line.ID = uuid.New().String()
	}
	if line.CreatedAt.IsZero() {
		line.CreatedAt = time.Now().UTC()
	}
	if line.UpdatedAt.IsZero() {
		line.UpdatedAt = line.CreatedAt
	}
	if err := models.ValidateLine(*line); err != nil {
		return err
	}

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO lines (id, name, parent_line_id, is_main, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		line.ID, line.Name, nullable(line.ParentLineID), boolToInt(isMain),
		formatTime(line.CreatedAt), formatTime(line.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert line: %w", err)
	}

	for _, tagID := range line.TagIDs {
		if err := r.AttachTag(ctx, line.ID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// Get fetches a line by id.
func (r *LineRepository) Get(ctx context.Context, id string) (*models.Line, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, parent_line_id, created_at, updated_at FROM lines WHERE id = ?`, id)
	line, err := scanLine(row)
	if err != nil {
		return nil, err
	}
	line.TagIDs, err = r.tagIDs(ctx, line.ID)
	if err != nil {
		return nil, err
	}
	return line, nil
}

// List returns all lines ordered by creation time.
func (r *LineRepository) List(ctx context.Context) ([]*models.Line, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, name, parent_line_id, created_at, updated_at FROM lines
		 ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.Line
	for rows.Next() {
		line, err := scanLine(rows)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, line := range lines {
		if line.TagIDs, err = r.tagIDs(ctx, line.ID); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

// MainLineID returns the id of the line flagged as main, or empty when none
// is flagged.
func (r *LineRepository) MainLineID(ctx context.Context) (string, error) {
	var id string
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id FROM lines WHERE is_main = 1 LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query main line: %w", err)
	}
	return id, nil
}

// Rename updates a line's display name.
func (r *LineRepository) Rename(ctx context.Context, id, name string, now time.Time) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE lines SET name = ?, updated_at = ? WHERE id = ?`,
		name, formatTime(now), id)
	if err != nil {
		return fmt.Errorf("rename line: %w", err)
	}
	return requireRow(result, ErrLineNotFound)
}

// SetParent rewrites a line's parent pointer. The caller is expected to
// have run the mutation guard first; this method does not re-validate the
// graph.
func (r *LineRepository) SetParent(ctx context.Context, tx *sql.Tx, id, parentID string, now time.Time) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE lines SET parent_line_id = ?, updated_at = ? WHERE id = ?`,
		nullable(parentID), formatTime(now), id)
	if err != nil {
		return fmt.Errorf("set parent: %w", err)
	}
	return requireRow(result, ErrLineNotFound)
}

// Delete removes a line row and its tag attachments.
func (r *LineRepository) Delete(ctx context.Context, tx *sql.Tx, id string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM line_tags WHERE line_id = ?`, id); err != nil {
		return fmt.Errorf("detach tags: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM lines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete line: %w", err)
	}
	return requireRow(result, ErrLineNotFound)
}

// AttachTag links a tag to a line. Attaching twice is a no-op.
func (r *LineRepository) AttachTag(ctx context.Context, lineID, tagID string) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO line_tags (line_id, tag_id) VALUES (?, ?)`, lineID, tagID)
	if err != nil {
		return fmt.Errorf("attach tag: %w", err)
	}
	return nil
}

func (r *LineRepository) tagIDs(ctx context.Context, lineID string) ([]string, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT tag_id FROM line_tags WHERE line_id = ? ORDER BY tag_id`, lineID)
	if err != nil {
		return nil, fmt.Errorf("query line tags: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLine(row rowScanner) (*models.Line, error) {
	var (
		line      models.Line
		parent    sql.NullString
		createdAt string
		updatedAt string
	)
	err := row.Scan(&line.ID, &line.Name, &parent, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan line: %w", err)
	}
	line.ParentLineID = parent.String
	if line.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if line.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &line, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func requireRow(result sql.Result, notFound error) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return notFound
	}
	return nil
}
