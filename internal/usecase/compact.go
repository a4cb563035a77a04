package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"adventure-agent/internal/domain"
)

// CompletionService generates text from a role-tagged message list under an
// output-length budget.
type CompletionService interface {
	Complete(ctx context.Context, model string, messages []domain.ChatMessage, maxTokens int) (string, error)
}

// Compactor folds accumulated active turns into the user's running summary
// and archives them.
type Compactor struct {
	turns       TurnStore
	summaries   SummaryStore
	llm         CompletionService
	model       string // summarization model, distinct from the chat model
	instruction string // summarization persona
	maxTokens   int
	log         *slog.Logger
}

// NewCompactor creates a Compactor.
func NewCompactor(turns TurnStore, summaries SummaryStore, llm CompletionService, model, instruction string, maxTokens int, log *slog.Logger) (*Compactor, error) {
	if turns == nil {
		return nil, errors.New("usecase: turn store must not be nil")
	}
	if summaries == nil {
		return nil, errors.New("usecase: summary store must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: completion service must not be nil")
	}
	if model == "" {
		return nil, errors.New("usecase: summarization model must not be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Compactor{
		turns:       turns,
		summaries:   summaries,
		llm:         llm,
		model:       model,
		instruction: instruction,
		maxTokens:   maxTokens,
		log:         log,
	}, nil
}

// Compact merges transcript into the user's summary, persists the result and
// archives the folded turns. It returns the new summary text.
//
// The summary write commits before the archive. If the process dies in
// between, the next compaction re-merges the same turns into the summary,
// which the merge instruction tolerates; archiving first would instead lose
// un-summarized content permanently. The two writes are independent
// best-effort statements, not a transaction.
func (c *Compactor) Compact(ctx context.Context, transcript, userID string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", newError(ErrorInvalidInput, "empty_transcript", nil)
	}

	prior, hasPrior, err := c.summaries.Summary(ctx, userID)
	if err != nil {
		return "", newError(ErrorStore, "fetch_summary", err)
	}

	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: c.instruction},
		{Role: domain.RoleUser, Content: compactionPrompt(prior, hasPrior, transcript)},
	}
	updated, err := c.llm.Complete(ctx, c.model, messages, c.maxTokens)
	if err != nil {
		return "", newError(ErrorCompletion, "summarize", err)
	}
	if strings.TrimSpace(updated) == "" {
		return "", newError(ErrorCompletion, "empty_summary_output", nil)
	}

	if err := c.summaries.UpsertSummary(ctx, userID, updated); err != nil {
		return "", newError(ErrorStore, "persist_summary", err)
	}

	archived, err := c.turns.ArchiveTurns(ctx, userID)
	if err != nil {
		// The summary is already committed; the still-active turns will be
		// re-merged by the next compaction.
		c.log.Error("archive after compaction failed", "userId", userID, "err", err)
		return updated, nil
	}
	c.log.Info("compacted turns into summary", "userId", userID, "archived", archived)

	return updated, nil
}
