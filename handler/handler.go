package handler

import (
	"context"
	"log/slog"
	"sync"

	"adventure-agent/internal/domain"
)

// MessageRouter decides what, if anything, to do with an inbound message.
type MessageRouter interface {
	HandleMessage(ctx context.Context, m domain.InboundMessage) error
}

// Handler dispatches gateway events to the router. Each message is processed
// on its own goroutine so a slow completion never blocks the gateway reader.
type Handler struct {
	router MessageRouter
	log    *slog.Logger
	wg     sync.WaitGroup
}

func New(router MessageRouter, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{router: router, log: log}
}

// OnMessage hands the message to the router asynchronously. Routing errors are
// logged, never fatal: a single bad message must not take the process down.
func (h *Handler) OnMessage(m domain.InboundMessage) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				h.log.Error("message handling panicked", "messageId", m.ID, "panic", r)
			}
		}()

		if err := h.router.HandleMessage(context.Background(), m); err != nil {
			h.log.Error("message handling failed", "messageId", m.ID, "userId", m.AuthorID, "err", err)
		}
	}()
}

// Wait blocks until all in-flight messages have been processed.
func (h *Handler) Wait() {
	h.wg.Wait()
}
