package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"adventure-agent/internal/domain"
)

// Handler receives every message event observed by the session.
type Handler interface {
	OnMessage(m domain.InboundMessage)
}

// Session is a thin adapter between the gateway and the conversation core.
// It implements the usecase Messenger and presence StatusSetter interfaces.
type Session struct {
	s   *discordgo.Session
	log *slog.Logger
}

// New creates a session for the given bot token. The session is not connected
// until Open is called.
func New(token string, log *slog.Logger) (*Session, error) {
	if token == "" {
		return nil, errors.New("discord: token must not be empty")
	}
	if log == nil {
		log = slog.Default()
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	return &Session{s: s, log: log}, nil
}

// Open registers the message handler and connects to the gateway.
func (d *Session) Open(h Handler) error {
	if h == nil {
		return errors.New("discord: handler must not be nil")
	}

	d.s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		d.log.Info("gateway ready", "user", r.User.Username, "id", r.User.ID)
	})
	d.s.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		h.OnMessage(d.toInbound(m))
	})

	if err := d.s.Open(); err != nil {
		return fmt.Errorf("discord: open gateway: %w", err)
	}
	return nil
}

// Close disconnects from the gateway.
func (d *Session) Close() error {
	return d.s.Close()
}

// Send posts content to a channel or thread and returns the sent message ID.
func (d *Session) Send(_ context.Context, channelID, content string) (string, error) {
	msg, err := d.s.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", fmt.Errorf("discord: send message: %w", err)
	}
	return msg.ID, nil
}

// Reply posts content as a reply to a specific message.
func (d *Session) Reply(_ context.Context, channelID, messageID, content string) (string, error) {
	msg, err := d.s.ChannelMessageSendReply(channelID, content, &discordgo.MessageReference{
		MessageID: messageID,
		ChannelID: channelID,
	})
	if err != nil {
		return "", fmt.Errorf("discord: send reply: %w", err)
	}
	return msg.ID, nil
}

// StartThread opens a thread on an existing message.
func (d *Session) StartThread(_ context.Context, channelID, messageID, name, reason string) (string, error) {
	thread, err := d.s.MessageThreadStartComplex(channelID, messageID, &discordgo.ThreadStart{
		Name:                name,
		AutoArchiveDuration: 1440,
	}, discordgo.WithAuditLogReason(reason))
	if err != nil {
		return "", fmt.Errorf("discord: start thread: %w", err)
	}
	return thread.ID, nil
}

// AddThreadMember adds a user to a thread.
func (d *Session) AddThreadMember(_ context.Context, threadID, userID string) error {
	if err := d.s.ThreadMemberAdd(threadID, userID); err != nil {
		return fmt.Errorf("discord: add thread member: %w", err)
	}
	return nil
}

// SetActivity sets the bot's displayed "watching" status.
func (d *Session) SetActivity(name string) error {
	if err := d.s.UpdateWatchStatus(0, name); err != nil {
		return fmt.Errorf("discord: update status: %w", err)
	}
	return nil
}

func (d *Session) toInbound(m *discordgo.MessageCreate) domain.InboundMessage {
	return domain.InboundMessage{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		ChannelName: d.channelName(m.ChannelID),
		AuthorID:    m.Author.ID,
		AuthorName:  displayName(m.Author, m.Member),
		AuthorIsBot: m.Author.Bot,
		Content:     m.Content,
	}
}

// channelName resolves a channel's display name, preferring the gateway state
// cache over a REST lookup.
func (d *Session) channelName(channelID string) string {
	if ch, err := d.s.State.Channel(channelID); err == nil {
		return ch.Name
	}
	ch, err := d.s.Channel(channelID)
	if err != nil {
		d.log.Warn("channel lookup failed", "channelId", channelID, "err", err)
		return ""
	}
	return ch.Name
}

// displayName mirrors how members are shown in a guild: nickname first, then
// the global display name, then the account name.
func displayName(author *discordgo.User, member *discordgo.Member) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if author.GlobalName != "" {
		return author.GlobalName
	}
	return author.Username
}
