package usecase

import (
	"context"
	"errors"
	"log/slog"

	"adventure-agent/internal/domain"
)

// DefaultHistoryWindow is the number of active turns considered per history
// assembly when no window is configured.
const DefaultHistoryWindow = 10

// TurnStore is the append-only log of conversation turns.
type TurnStore interface {
	InsertTurn(ctx context.Context, id, userID, content string) error
	InsertReply(ctx context.Context, id, userID, replyTo, content string) error
	ActiveTurns(ctx context.Context, userID string, limit int) ([]domain.Turn, error)
	ArchiveTurns(ctx context.Context, userID string) (int64, error)
}

// SummaryStore holds the rolling per-user summary. ok=false means the user
// has no summary yet.
type SummaryStore interface {
	Summary(ctx context.Context, userID string) (text string, ok bool, err error)
	UpsertSummary(ctx context.Context, userID, text string) error
	ResetSummary(ctx context.Context, userID string) error
}

// transcriptCompactor folds a rendered transcript into the user's running
// summary and returns the new summary text.
type transcriptCompactor interface {
	Compact(ctx context.Context, transcript, userID string) (string, error)
}

// Assembler builds the bounded context sent to the completion service for a
// reply within an existing adventure thread.
type Assembler struct {
	turns     TurnStore
	summaries SummaryStore
	compactor transcriptCompactor
	botID     string
	persona   string
	window    int
	log       *slog.Logger
}

// NewAssembler creates an Assembler. window <= 0 falls back to
// DefaultHistoryWindow.
func NewAssembler(turns TurnStore, summaries SummaryStore, compactor transcriptCompactor, botID, persona string, window int, log *slog.Logger) (*Assembler, error) {
	if turns == nil {
		return nil, errors.New("usecase: turn store must not be nil")
	}
	if summaries == nil {
		return nil, errors.New("usecase: summary store must not be nil")
	}
	if compactor == nil {
		return nil, errors.New("usecase: compactor must not be nil")
	}
	if botID == "" {
		return nil, errors.New("usecase: bot id must not be empty")
	}
	if window <= 0 {
		window = DefaultHistoryWindow
	}
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{
		turns:     turns,
		summaries: summaries,
		compactor: compactor,
		botID:     botID,
		persona:   persona,
		window:    window,
		log:       log,
	}, nil
}

// Assemble produces the ordered role-tagged message list for a threaded
// reply: persona, running summary, recent transcript, then the inbound text.
//
// A full window signals there may be more history than the window holds, so
// the accumulated turns are compacted into the summary before assembly. The
// compaction is synchronous: the reply about to be generated should see the
// freshest summary. A failed compaction keeps the previous summary and is not
// fatal to the reply.
func (a *Assembler) Assemble(ctx context.Context, userID, inbound string) ([]domain.ChatMessage, error) {
	turns, err := a.turns.ActiveTurns(ctx, userID, a.window)
	if err != nil {
		return nil, newError(ErrorStore, "fetch_active_turns", err)
	}

	transcript := transcriptOf(turns, a.botID)

	summary, hasSummary, err := a.summaries.Summary(ctx, userID)
	if err != nil {
		return nil, newError(ErrorStore, "fetch_summary", err)
	}

	if len(turns) == a.window {
		newSummary, err := a.compactor.Compact(ctx, transcript, userID)
		if err != nil {
			a.log.Error("compaction failed, keeping previous summary", "userId", userID, "err", err)
		} else {
			summary, hasSummary = newSummary, true
		}
	}

	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: a.persona},
		{Role: domain.RoleAssistant, Content: summaryLine(summary, hasSummary)},
		{Role: domain.RoleAssistant, Content: transcript},
		{Role: domain.RoleUser, Content: inbound},
	}, nil
}
