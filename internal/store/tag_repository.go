package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/loomchat/loom/internal/models"
)

// Tag repository errors.
var (
	ErrTagNotFound = errors.New("tag not found")
	ErrInvalidTag  = errors.New("invalid tag")
)

// TagRepository handles tag persistence.
type TagRepository struct {
	db *DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create inserts a new tag, minting an id when missing.
func (r *TagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if strings.TrimSpace(tag.Name) == "" {
		return ErrInvalidTag
	}
	if tag.ID == "" {
		tag.ID = uuid.New().String()
	}
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO tags (id, name, color) VALUES (?, ?, ?)`,
		tag.ID, tag.Name, tag.Color)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

// List returns all tags ordered by name.
func (r *TagRepository) List(ctx context.Context) ([]*models.Tag, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, name, color FROM tags ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.Color); err != nil {
			return nil, err
		}
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}

// FindByName looks a tag up by exact name.
func (r *TagRepository) FindByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, color FROM tags WHERE name = ? LIMIT 1`, name).
		Scan(&tag.ID, &tag.Name, &tag.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query tag: %w", err)
	}
	return &tag, nil
}
