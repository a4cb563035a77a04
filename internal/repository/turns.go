package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"adventure-agent/internal/domain"
)

// TurnStore is the append-only log of conversation turns. Rows are never
// physically deleted; deleted=1 marks a turn as archived.
type TurnStore struct {
	db *sql.DB
}

// NewTurnStore creates a TurnStore over the given pool.
func NewTurnStore(db *sql.DB) (*TurnStore, error) {
	if db == nil {
		return nil, errors.New("repository: db must not be nil")
	}
	return &TurnStore{db: db}, nil
}

// InsertTurn appends an inbound turn authored by userID.
func (s *TurnStore) InsertTurn(ctx context.Context, id, userID, content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("repository: InsertTurn: content must not be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (messageId, userId, content, created_on, deleted) VALUES (?, ?, ?, ?, 0)`,
		id, userID, content, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("repository: InsertTurn: %w", err)
	}
	return nil
}

// InsertReply appends an outbound turn authored by userID (the bot) that
// replies to replyTo.
func (s *TurnStore) InsertReply(ctx context.Context, id, userID, replyTo, content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("repository: InsertReply: content must not be empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (messageId, userId, content, reply_to, created_on, deleted) VALUES (?, ?, ?, ?, ?, 0)`,
		id, userID, content, replyTo, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("repository: InsertReply: %w", err)
	}
	return nil
}

// ActiveTurns returns the non-archived turns that belong to userID (authored
// by them or replied to them) in ascending created_on order. When limit > 0
// only the most recent limit turns are returned, still ascending.
func (s *TurnStore) ActiveTurns(ctx context.Context, userID string, limit int) ([]domain.Turn, error) {
	query := `SELECT messageId, userId, content, reply_to, created_on, deleted
		FROM messages
		WHERE (userId = ? OR reply_to = ?) AND deleted = 0
		ORDER BY created_on ASC`
	args := []any{userID, userID}

	if limit > 0 {
		// Query newest first so LIMIT keeps the most recent context, then
		// reverse back to chronological order for prompt assembly.
		query = `SELECT messageId, userId, content, reply_to, created_on, deleted
			FROM messages
			WHERE (userId = ? OR reply_to = ?) AND deleted = 0
			ORDER BY created_on DESC
			LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository: ActiveTurns query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []domain.Turn
	for rows.Next() {
		turn, err := scanTurn(rows)
		if err != nil {
			return nil, fmt.Errorf("repository: ActiveTurns scan: %w", err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: ActiveTurns rows: %w", err)
	}

	if limit > 0 {
		for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
			turns[i], turns[j] = turns[j], turns[i]
		}
	}
	return turns, nil
}

// ArchiveTurns soft-deletes every active turn belonging to userID and returns
// the number of rows changed. Calling it again is a no-op.
func (s *TurnStore) ArchiveTurns(ctx context.Context, userID string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE messages SET deleted = 1 WHERE (userId = ? OR reply_to = ?) AND deleted = 0`,
		userID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("repository: ArchiveTurns: %w", err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repository: ArchiveTurns rows affected: %w", err)
	}
	return count, nil
}

func scanTurn(rows *sql.Rows) (domain.Turn, error) {
	var (
		turn    domain.Turn
		replyTo sql.NullString
		deleted int
	)
	if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Content, &replyTo, &turn.CreatedOn, &deleted); err != nil {
		return domain.Turn{}, err
	}
	turn.ReplyTo = replyTo.String
	turn.Archived = deleted != 0
	return turn, nil
}
