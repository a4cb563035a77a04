package usecase

import (
	"strings"

	"adventure-agent/internal/domain"
)

// Classification is the router's verdict for one inbound message.
type Classification int

const (
	Ignored Classification = iota
	ThreadedReply
	NewTopLevelRequest
	SummaryRequest
	HelpRequest
)

func (c Classification) String() string {
	switch c {
	case ThreadedReply:
		return "threaded-reply"
	case NewTopLevelRequest:
		return "new-top-level-request"
	case SummaryRequest:
		return "summary-request"
	case HelpRequest:
		return "help-request"
	default:
		return "ignored"
	}
}

// Meta-commands, matched case-insensitively.
const (
	summaryCommand = "!summary"
	helpCommand    = "!help"
)

// ownershipReader answers who created a thread, if known to this process.
type ownershipReader interface {
	Owner(threadID string) (string, bool)
}

// rule is one step of the classification policy. Rules are evaluated
// top-to-bottom; the first match wins.
type rule struct {
	name  string
	apply func(m domain.InboundMessage) (Classification, bool)
}

func classificationRules(ownership ownershipReader, botID, prefix string) []rule {
	prefix = strings.ToLower(prefix)

	isCommandPrefix := func(content string) bool {
		return prefix != "" && strings.HasPrefix(strings.ToLower(content), prefix)
	}
	isReservedCommand := func(content string) bool {
		lower := strings.ToLower(strings.TrimSpace(content))
		return isCommandPrefix(lower) || lower == summaryCommand || lower == helpCommand
	}

	return []rule{
		{
			name: "bot-author",
			apply: func(m domain.InboundMessage) (Classification, bool) {
				return Ignored, m.AuthorIsBot
			},
		},
		{
			name: "foreign-thread",
			apply: func(m domain.InboundMessage) (Classification, bool) {
				owner, known := ownership.Owner(m.ChannelID)
				return Ignored, known && owner != botID
			},
		},
		{
			name: "own-adventure-reply",
			apply: func(m domain.InboundMessage) (Classification, bool) {
				inOwnThread := m.AuthorName != "" && strings.Contains(m.ChannelName, m.AuthorName)
				return ThreadedReply, inOwnThread && !isReservedCommand(m.Content)
			},
		},
		{
			name: "new-adventure",
			apply: func(m domain.InboundMessage) (Classification, bool) {
				return NewTopLevelRequest, isCommandPrefix(m.Content)
			},
		},
		{
			name: "summary-request",
			apply: func(m domain.InboundMessage) (Classification, bool) {
				return SummaryRequest, strings.EqualFold(strings.TrimSpace(m.Content), summaryCommand)
			},
		},
		{
			name: "help-request",
			apply: func(m domain.InboundMessage) (Classification, bool) {
				return HelpRequest, strings.EqualFold(strings.TrimSpace(m.Content), helpCommand)
			},
		},
	}
}

// classify runs the ordered rule list; anything unmatched is ignored.
func classify(rules []rule, m domain.InboundMessage) Classification {
	for _, r := range rules {
		if c, ok := r.apply(m); ok {
			return c
		}
	}
	return Ignored
}
