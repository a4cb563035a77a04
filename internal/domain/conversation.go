package domain

import "time"

// Turn is a single persisted conversation message, inbound or outbound.
type Turn struct {
	ID        string
	UserID    string
	Content   string
	ReplyTo   string // user the bot replied to; empty for inbound turns
	CreatedOn time.Time
	Archived  bool
}

// Summary is the rolling narrative summary kept for one user.
type Summary struct {
	UserID    string
	Text      string
	UpdatedOn time.Time
}

// InboundMessage is a message event delivered by the chat transport.
type InboundMessage struct {
	ID          string
	ChannelID   string
	ChannelName string
	AuthorID    string
	AuthorName  string // display name, used for thread matching
	AuthorIsBot bool
	Content     string
}
