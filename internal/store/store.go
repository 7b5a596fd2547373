package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/loomchat/loom/internal/engine"
	"github.com/loomchat/loom/internal/models"
)

// Store bundles the repositories over one database and offers the two
// operations the engine's contract names: load a consistent snapshot, and
// apply an accepted mutation descriptor.
type Store struct {
	db       *DB
	Lines    *LineRepository
	Messages *MessageRepository
	Tags     *TagRepository
}

// New creates a Store over an open database.
func New(db *DB) *Store {
	return &Store{
		db:       db,
		Lines:    NewLineRepository(db),
		Messages: NewMessageRepository(db),
		Tags:     NewTagRepository(db),
	}
}

// Open opens the database at path and returns a Store over it.
func Open(path string, busyTimeoutMs int) (*Store, error) {
	db, err := OpenDB(path, busyTimeoutMs)
	if err != nil {
		return nil, err
	}
	return New(db), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Snapshot loads the full line, message, and tag collections as one
// consistent point-in-time snapshot for the engine to compute over.
func (s *Store) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := models.NewSnapshot()

	lines, err := s.Lines.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load lines: %w", err)
	}
	for _, line := range lines {
		snap.Lines[line.ID] = *line
	}

	messages, err := s.Messages.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	for _, msg := range messages {
		snap.Messages[msg.ID] = *msg
	}

	tags, err := s.Tags.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	for _, tag := range tags {
		snap.Tags[tag.ID] = *tag
	}

	if snap.MainLineID, err = s.Lines.MainLineID(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

// Apply persists a mutation descriptor accepted by the engine's guard. The
// descriptor comes out of engine.Reparent, engine.DeleteLine and friends;
// the store trusts the guard and only executes the write.
func (s *Store) Apply(ctx context.Context, mut engine.Mutation, now time.Time) error {
	return s.db.TransactionWithRetry(ctx, func(tx *sql.Tx) error {
		switch mut.Kind {
		case engine.MutationReparent:
			return s.Lines.SetParent(ctx, tx, mut.LineID, mut.NewParentID, now)
		case engine.MutationDeleteLine:
			return s.Lines.Delete(ctx, tx, mut.LineID)
		case engine.MutationMoveMessages:
			return s.Messages.MoveToLine(ctx, tx, mut.MessageIDs, mut.TargetLineID, now)
		case engine.MutationDeleteMessage:
			for _, id := range mut.MessageIDs {
				if err := s.Messages.SoftDelete(ctx, tx, id, now); err != nil {
					return err
				}
			}
			return nil
		default:
			return fmt.Errorf("unknown mutation kind %q", mut.Kind)
		}
	})
}
