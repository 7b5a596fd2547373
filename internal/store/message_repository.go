package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/loomchat/loom/internal/models"
)

// Message repository errors.
var (
	ErrMessageNotFound = errors.New("message not found")
)

// MessageRepository handles message persistence.
type MessageRepository struct {
	db *DB
}

// NewMessageRepository creates a new MessageRepository.
func NewMessageRepository(db *DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message, minting an id and timestamp when missing.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.Type == "" {
		msg.Type = models.MessageTypeText
	}
	if err := models.ValidateMessage(*msg); err != nil {
		return err
	}

	metadata, err := marshalMetadata(msg.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.conn.ExecContext(ctx,
		`INSERT INTO messages (id, line_id, content, timestamp, updated_at, type, metadata, deleted)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.ID, msg.LineID, msg.Content, formatTime(msg.Timestamp),
		nullableTime(msg.UpdatedAt), string(msg.Type), metadata, boolToInt(msg.Deleted))
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// Get fetches a message by id.
func (r *MessageRepository) Get(ctx context.Context, id string) (*models.Message, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, line_id, content, timestamp, updated_at, type, metadata, deleted
		 FROM messages WHERE id = ?`, id)
	return scanMessage(row)
}

// List returns every message, including soft-deleted ones, ordered by
// timestamp. Snapshot loading wants the complete collection; timeline
// composition handles the deleted flag itself.
func (r *MessageRepository) List(ctx context.Context) ([]*models.Message, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, line_id, content, timestamp, updated_at, type, metadata, deleted
		 FROM messages ORDER BY timestamp, id`)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// UpdateContent edits a message body in place.
func (r *MessageRepository) UpdateContent(ctx context.Context, id, content string, now time.Time) error {
	result, err := r.db.conn.ExecContext(ctx,
		`UPDATE messages SET content = ?, updated_at = ? WHERE id = ?`,
		content, formatTime(now), id)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	return requireRow(result, ErrMessageNotFound)
}

// MoveToLine reassigns messages to another line inside a transaction.
func (r *MessageRepository) MoveToLine(ctx context.Context, tx *sql.Tx, ids []string, lineID string, now time.Time) error {
	for _, id := range ids {
		result, err := tx.ExecContext(ctx,
			`UPDATE messages SET line_id = ?, updated_at = ? WHERE id = ?`,
			lineID, formatTime(now), id)
		if err != nil {
			return fmt.Errorf("move message %s: %w", id, err)
		}
		if err := requireRow(result, ErrMessageNotFound); err != nil {
			return err
		}
	}
	return nil
}

// SoftDelete flags a message as deleted without removing the row.
func (r *MessageRepository) SoftDelete(ctx context.Context, tx *sql.Tx, id string, now time.Time) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE messages SET deleted = 1, updated_at = ? WHERE id = ?`,
		formatTime(now), id)
	if err != nil {
		return fmt.Errorf("soft delete message: %w", err)
	}
	return requireRow(result, ErrMessageNotFound)
}

func scanMessage(row rowScanner) (*models.Message, error) {
	var (
		msg       models.Message
		timestamp string
		updatedAt sql.NullString
		msgType   string
		metadata  sql.NullString
		deleted   int
	)
	err := row.Scan(&msg.ID, &msg.LineID, &msg.Content, &timestamp, &updatedAt, &msgType, &metadata, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan message: %w", err)
	}
	if msg.Timestamp, err = parseTime(timestamp); err != nil {
		return nil, fmt.Errorf("parse timestamp: %w", err)
	}
	if updatedAt.Valid {
		parsed, err := parseTime(updatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parse updated_at: %w", err)
		}
		msg.UpdatedAt = &parsed
	}
	msg.Type = models.MessageType(msgType)
	msg.Deleted = deleted != 0
	if metadata.Valid && metadata.String != "" {
		var meta models.MessageMetadata
		if err := json.Unmarshal([]byte(metadata.String), &meta); err != nil {
			return nil, fmt.Errorf("parse metadata: %w", err)
		}
		msg.Metadata = &meta
	}
	return &msg, nil
}

func marshalMetadata(meta *models.MessageMetadata) (any, error) {
	if meta == nil {
		return nil, nil
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return string(data), nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
