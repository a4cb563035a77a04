package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// sentinelSummary is the placeholder stored for a user with no summary yet.
// It never escapes this package: reads translate it to ok=false.
const sentinelSummary = "N/A"

// SummaryStore keeps at most one live summary row per user.
type SummaryStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewSummaryStore creates a SummaryStore over the given pool.
func NewSummaryStore(db *sql.DB, log *slog.Logger) (*SummaryStore, error) {
	if db == nil {
		return nil, errors.New("repository: db must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &SummaryStore{db: db, log: log}, nil
}

// Summary returns the stored summary text for userID. ok is false when the
// user has no summary yet (missing row or sentinel placeholder).
//
// The read is self-healing: when no row exists a sentinel row is created and
// the read is retried exactly once. A user with more than one row is a logged
// unexpected-state condition; the first row wins.
func (s *SummaryStore) Summary(ctx context.Context, userID string) (string, bool, error) {
	text, found, err := s.readSummary(ctx, userID)
	if err != nil {
		return "", false, err
	}
	if !found {
		if err := s.insertSentinel(ctx, userID); err != nil {
			return "", false, err
		}
		text, found, err = s.readSummary(ctx, userID)
		if err != nil {
			return "", false, err
		}
		if !found {
			return "", false, fmt.Errorf("repository: Summary: row missing after create for user %s", userID)
		}
	}
	if text == sentinelSummary || text == "" {
		return "", false, nil
	}
	return text, true, nil
}

// UpsertSummary overwrites the summary text for userID, creating the row if
// it does not exist yet.
func (s *SummaryStore) UpsertSummary(ctx context.Context, userID, text string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE summary SET summary = ?, updated_on = ? WHERE userId = ?`,
		text, time.Now().UTC(), userID,
	)
	if err != nil {
		return fmt.Errorf("repository: UpsertSummary update: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("repository: UpsertSummary rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO summary (userId, summary, updated_on) VALUES (?, ?, ?)`,
		userID, text, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("repository: UpsertSummary insert: %w", err)
	}
	return nil
}

// ResetSummary puts the user back into the "no summary yet" state.
func (s *SummaryStore) ResetSummary(ctx context.Context, userID string) error {
	if err := s.UpsertSummary(ctx, userID, sentinelSummary); err != nil {
		return fmt.Errorf("repository: ResetSummary: %w", err)
	}
	return nil
}

func (s *SummaryStore) readSummary(ctx context.Context, userID string) (text string, found bool, err error) {
	rows, err := s.db.QueryContext(ctx, `SELECT summary FROM summary WHERE userId = ?`, userID)
	if err != nil {
		return "", false, fmt.Errorf("repository: Summary query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	count := 0
	for rows.Next() {
		count++
		if count == 1 {
			if err := rows.Scan(&text); err != nil {
				return "", false, fmt.Errorf("repository: Summary scan: %w", err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return "", false, fmt.Errorf("repository: Summary rows: %w", err)
	}
	if count > 1 {
		s.log.Error("multiple summary rows for user, using first", "userId", userID, "rows", count)
	}
	return text, count > 0, nil
}

func (s *SummaryStore) insertSentinel(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO summary (userId, summary, updated_on) VALUES (?, ?, ?)`,
		userID, sentinelSummary, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("repository: Summary create sentinel: %w", err)
	}
	return nil
}
