package presence

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

// DefaultInterval is how often the displayed activity changes.
const DefaultInterval = 5 * time.Hour

// defaultPhrases is the fixed pool of displayed activities.
var defaultPhrases = []string{
	"Going on an adventure",
	"Listening to the bard",
	"Taking orders in the tavern",
	"Serving drinks at the bar",
}

// StatusSetter sets the bot's displayed activity on the chat platform.
type StatusSetter interface {
	SetActivity(name string) error
}

// Rotator picks a random phrase from a fixed list and sets it as the bot's
// status, once at startup and then on every tick.
type Rotator struct {
	setter   StatusSetter
	phrases  []string
	interval time.Duration
	pick     func(n int) int
	log      *slog.Logger
}

type Option func(*Rotator)

// WithInterval overrides the rotation interval.
func WithInterval(d time.Duration) Option {
	return func(r *Rotator) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithPhrases overrides the phrase pool.
func WithPhrases(phrases []string) Option {
	return func(r *Rotator) {
		if len(phrases) > 0 {
			r.phrases = phrases
		}
	}
}

// WithPick overrides the random index selection, for deterministic tests.
func WithPick(pick func(n int) int) Option {
	return func(r *Rotator) {
		r.pick = pick
	}
}

// NewRotator creates a Rotator with the default phrase pool and interval.
func NewRotator(setter StatusSetter, log *slog.Logger, opts ...Option) (*Rotator, error) {
	if setter == nil {
		return nil, errors.New("presence: status setter must not be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	r := &Rotator{
		setter:   setter,
		phrases:  defaultPhrases,
		interval: DefaultInterval,
		pick:     rand.Intn,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run sets an initial activity and rotates it on every interval until ctx is
// canceled. A failed status update is logged and retried on the next tick.
func (r *Rotator) Run(ctx context.Context) error {
	r.rotate()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.rotate()
		}
	}
}

func (r *Rotator) rotate() {
	phrase := r.phrases[r.pick(len(r.phrases))]
	if err := r.setter.SetActivity(phrase); err != nil {
		r.log.Error("set activity failed", "activity", phrase, "err", err)
		return
	}
	r.log.Info("activity updated", "activity", phrase)
}
