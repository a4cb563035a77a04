package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"adventure-agent/internal/domain"
)

// Messenger is the chat transport consumed by the router. Implementations
// send a single message at a time; chunking is the router's job.
type Messenger interface {
	Send(ctx context.Context, channelID, content string) (sentID string, err error)
	Reply(ctx context.Context, channelID, messageID, content string) (sentID string, err error)
	StartThread(ctx context.Context, channelID, messageID, name, reason string) (threadID string, err error)
	AddThreadMember(ctx context.Context, threadID, userID string) error
}

// contextAssembler builds the bounded completion context for a threaded
// reply.
type contextAssembler interface {
	Assemble(ctx context.Context, userID, inbound string) ([]domain.ChatMessage, error)
}

// RouterConfig carries the router's fixed settings.
type RouterConfig struct {
	BotID     string
	Prefix    string // command prefix that starts a new adventure
	Persona   string
	Model     string
	MaxTokens int
}

// Router classifies each inbound message and drives the assembler, stores and
// transport accordingly.
type Router struct {
	assembler contextAssembler
	turns     TurnStore
	summaries SummaryStore
	llm       CompletionService
	messenger Messenger
	ownership *ThreadOwnership
	cfg       RouterConfig
	rules     []rule
	log       *slog.Logger
}

// NewRouter creates a Router.
func NewRouter(assembler contextAssembler, turns TurnStore, summaries SummaryStore, llm CompletionService, messenger Messenger, ownership *ThreadOwnership, cfg RouterConfig, log *slog.Logger) (*Router, error) {
	if assembler == nil {
		return nil, errors.New("usecase: assembler must not be nil")
	}
	if turns == nil {
		return nil, errors.New("usecase: turn store must not be nil")
	}
	if summaries == nil {
		return nil, errors.New("usecase: summary store must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: completion service must not be nil")
	}
	if messenger == nil {
		return nil, errors.New("usecase: messenger must not be nil")
	}
	if ownership == nil {
		return nil, errors.New("usecase: thread ownership must not be nil")
	}
	if cfg.BotID == "" {
		return nil, errors.New("usecase: bot id must not be empty")
	}
	if cfg.Prefix == "" {
		return nil, errors.New("usecase: command prefix must not be empty")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Router{
		assembler: assembler,
		turns:     turns,
		summaries: summaries,
		llm:       llm,
		messenger: messenger,
		ownership: ownership,
		cfg:       cfg,
		rules:     classificationRules(ownership, cfg.BotID, cfg.Prefix),
		log:       log,
	}, nil
}

// HandleMessage processes one inbound message end to end. Errors are returned
// for the task boundary to log; the user sees silence on failure.
func (r *Router) HandleMessage(ctx context.Context, m domain.InboundMessage) error {
	c := classify(r.rules, m)
	if c == Ignored {
		return nil
	}
	r.log.Info("handling message", "classification", c.String(), "userId", m.AuthorID, "channelId", m.ChannelID)

	switch c {
	case ThreadedReply:
		return r.handleThreadedReply(ctx, m)
	case NewTopLevelRequest:
		return r.handleNewAdventure(ctx, m)
	case SummaryRequest:
		return r.handleSummaryRequest(ctx, m)
	case HelpRequest:
		return r.handleHelpRequest(ctx, m)
	}
	return nil
}

// handleNewAdventure starts a fresh story: prior state is purged, the opening
// is generated from persona and message alone, and the conversation moves
// into a newly created thread owned by this bot instance.
func (r *Router) handleNewAdventure(ctx context.Context, m domain.InboundMessage) error {
	r.purgeUser(ctx, m.AuthorID)

	if err := r.turns.InsertTurn(ctx, m.ID, m.AuthorID, m.Content); err != nil {
		r.log.Error("record inbound turn failed", "userId", m.AuthorID, "err", err)
	}

	messages := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: r.cfg.Persona},
		{Role: domain.RoleUser, Content: m.Content},
	}
	reply, err := r.llm.Complete(ctx, r.cfg.Model, messages, r.cfg.MaxTokens)
	if err != nil {
		return newError(ErrorCompletion, "opening_completion", err)
	}
	if strings.TrimSpace(reply) == "" {
		r.log.Warn("empty completion output, not replying", "userId", m.AuthorID)
		return nil
	}

	threadID, err := r.messenger.StartThread(ctx, m.ChannelID, m.ID, m.AuthorName+" Adventure", "Solo Adventure")
	if err != nil {
		return newError(ErrorTransport, "start_thread", err)
	}
	r.ownership.Claim(threadID, r.cfg.BotID)

	if err := r.messenger.AddThreadMember(ctx, threadID, m.AuthorID); err != nil {
		r.log.Error("add author to thread failed", "threadId", threadID, "err", err)
	}
	if err := r.messenger.AddThreadMember(ctx, threadID, r.cfg.BotID); err != nil {
		r.log.Error("add bot to thread failed", "threadId", threadID, "err", err)
	}

	send := func(chunk string) (string, error) {
		return r.messenger.Send(ctx, threadID, chunk)
	}
	return r.deliverAndRecord(ctx, send, m.AuthorID, reply)
}

// handleThreadedReply continues an existing story inside the user's thread.
func (r *Router) handleThreadedReply(ctx context.Context, m domain.InboundMessage) error {
	messages, err := r.assembler.Assemble(ctx, m.AuthorID, m.Content)
	if err != nil {
		return err
	}

	if err := r.turns.InsertTurn(ctx, m.ID, m.AuthorID, m.Content); err != nil {
		r.log.Error("record inbound turn failed", "userId", m.AuthorID, "err", err)
	}

	reply, err := r.llm.Complete(ctx, r.cfg.Model, messages, r.cfg.MaxTokens)
	if err != nil {
		return newError(ErrorCompletion, "threaded_completion", err)
	}
	if strings.TrimSpace(reply) == "" {
		r.log.Warn("empty completion output, not replying", "userId", m.AuthorID)
		return nil
	}

	send := func(chunk string) (string, error) {
		return r.messenger.Reply(ctx, m.ChannelID, m.ID, chunk)
	}
	return r.deliverAndRecord(ctx, send, m.AuthorID, reply)
}

// handleSummaryRequest sends the current summary without mutating turns.
func (r *Router) handleSummaryRequest(ctx context.Context, m domain.InboundMessage) error {
	text, ok, err := r.summaries.Summary(ctx, m.AuthorID)
	if err != nil {
		return newError(ErrorStore, "fetch_summary", err)
	}
	if !ok {
		text = "There is no story summary yet. Start an adventure first!"
	}
	return r.deliver(ctx, m.ChannelID, text)
}

// handleHelpRequest sends static informational text.
func (r *Router) handleHelpRequest(ctx context.Context, m domain.InboundMessage) error {
	return r.deliver(ctx, m.ChannelID, helpText)
}

// purgeUser archives all active turns and resets the summary before a new
// top-level request. Both steps are best-effort.
func (r *Router) purgeUser(ctx context.Context, userID string) {
	if _, err := r.turns.ArchiveTurns(ctx, userID); err != nil {
		r.log.Error("archive turns failed during purge", "userId", userID, "err", err)
	}
	if err := r.summaries.ResetSummary(ctx, userID); err != nil {
		r.log.Error("reset summary failed during purge", "userId", userID, "err", err)
	}
}

// deliver chunks text to the transport limit and sends the chunks in order,
// awaiting each send before the next.
func (r *Router) deliver(ctx context.Context, channelID, text string) error {
	for _, chunk := range chunkMessage(text, maxMessageLength) {
		if _, err := r.messenger.Send(ctx, channelID, chunk); err != nil {
			return newError(ErrorTransport, "send_chunk", err)
		}
	}
	return nil
}

// deliverAndRecord sends text in order via send and persists every delivered
// chunk as a reply turn attributed to replyTo. A failed send stops the
// sequence; chunks already delivered stay recorded.
func (r *Router) deliverAndRecord(ctx context.Context, send func(chunk string) (string, error), replyTo, text string) error {
	for _, chunk := range chunkMessage(text, maxMessageLength) {
		sentID, err := send(chunk)
		if err != nil {
			return newError(ErrorTransport, "send_chunk", err)
		}
		if sentID == "" {
			sentID = newID()
		}
		if err := r.turns.InsertReply(ctx, sentID, r.cfg.BotID, replyTo, chunk); err != nil {
			r.log.Error("record reply turn failed", "userId", replyTo, "err", err)
		}
	}
	return nil
}

// newID is the fallback identifier for persisted reply turns when the
// transport does not return a message ID. Overridable in tests.
var newID = func() string {
	return uuid.NewString()
}
