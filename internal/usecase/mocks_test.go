package usecase

import (
	"context"
	"errors"
	"fmt"

	"adventure-agent/internal/domain"
)

// opLog records cross-mock call ordering for sequencing assertions.
type opLog struct {
	ops []string
}

func (l *opLog) record(op string) {
	if l != nil {
		l.ops = append(l.ops, op)
	}
}

type insertedTurn struct {
	id      string
	userID  string
	content string
}

type insertedReply struct {
	id      string
	userID  string
	replyTo string
	content string
}

type mockTurnStore struct {
	seq *opLog

	active    []domain.Turn
	activeErr error

	turns         []insertedTurn
	insertTurnErr error

	replies        []insertedReply
	insertReplyErr error

	archivedUsers []string
	archiveCount  int64
	archiveErr    error
}

func (m *mockTurnStore) InsertTurn(_ context.Context, id, userID, content string) error {
	if m.insertTurnErr != nil {
		return m.insertTurnErr
	}
	m.turns = append(m.turns, insertedTurn{id: id, userID: userID, content: content})
	return nil
}

func (m *mockTurnStore) InsertReply(_ context.Context, id, userID, replyTo, content string) error {
	if m.insertReplyErr != nil {
		return m.insertReplyErr
	}
	m.replies = append(m.replies, insertedReply{id: id, userID: userID, replyTo: replyTo, content: content})
	return nil
}

func (m *mockTurnStore) ActiveTurns(_ context.Context, _ string, _ int) ([]domain.Turn, error) {
	return m.active, m.activeErr
}

func (m *mockTurnStore) ArchiveTurns(_ context.Context, userID string) (int64, error) {
	if m.archiveErr != nil {
		return 0, m.archiveErr
	}
	m.seq.record("archive")
	m.archivedUsers = append(m.archivedUsers, userID)
	return m.archiveCount, nil
}

type mockSummaryStore struct {
	seq *opLog

	text string
	ok   bool
	err  error

	upserts   []string
	upsertErr error

	resets   int
	resetErr error
}

func (m *mockSummaryStore) Summary(_ context.Context, _ string) (string, bool, error) {
	return m.text, m.ok, m.err
}

func (m *mockSummaryStore) UpsertSummary(_ context.Context, _ string, text string) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.seq.record("upsert")
	m.upserts = append(m.upserts, text)
	m.text, m.ok = text, true
	return nil
}

func (m *mockSummaryStore) ResetSummary(_ context.Context, _ string) error {
	if m.resetErr != nil {
		return m.resetErr
	}
	m.resets++
	m.text, m.ok = "", false
	return nil
}

type completionCall struct {
	model     string
	messages  []domain.ChatMessage
	maxTokens int
}

type mockLLM struct {
	out   string
	err   error
	calls []completionCall

	// complete overrides the canned output when set.
	complete func(model string, messages []domain.ChatMessage) (string, error)
}

func (m *mockLLM) Complete(_ context.Context, model string, messages []domain.ChatMessage, maxTokens int) (string, error) {
	m.calls = append(m.calls, completionCall{model: model, messages: messages, maxTokens: maxTokens})
	if m.complete != nil {
		return m.complete(model, messages)
	}
	return m.out, m.err
}

type sentMessage struct {
	channelID string
	messageID string // set for replies
	content   string
}

type mockMessenger struct {
	sent    []sentMessage
	sendErr error
	// sendErrAfter is how many sends succeed before sendErr applies.
	sendErrAfter int
	// emptySentIDs makes Send/Reply return no message ID.
	emptySentIDs bool

	threadID        string
	threadChannelID string
	threadMessageID string
	threadName      string
	threadReason    string
	startThreadErr  error

	members []string
}

func (m *mockMessenger) nextID() string {
	if m.emptySentIDs {
		return ""
	}
	return fmt.Sprintf("sent-%d", len(m.sent)+1)
}

func (m *mockMessenger) send(channelID, messageID, content string) (string, error) {
	if m.sendErr != nil && len(m.sent) >= m.sendErrAfter {
		return "", m.sendErr
	}
	id := m.nextID()
	m.sent = append(m.sent, sentMessage{channelID: channelID, messageID: messageID, content: content})
	return id, nil
}

func (m *mockMessenger) Send(_ context.Context, channelID, content string) (string, error) {
	return m.send(channelID, "", content)
}

func (m *mockMessenger) Reply(_ context.Context, channelID, messageID, content string) (string, error) {
	return m.send(channelID, messageID, content)
}

func (m *mockMessenger) StartThread(_ context.Context, channelID, messageID, name, reason string) (string, error) {
	if m.startThreadErr != nil {
		return "", m.startThreadErr
	}
	m.threadChannelID = channelID
	m.threadMessageID = messageID
	m.threadName = name
	m.threadReason = reason
	if m.threadID == "" {
		m.threadID = "thread-1"
	}
	return m.threadID, nil
}

func (m *mockMessenger) AddThreadMember(_ context.Context, _ string, userID string) error {
	m.members = append(m.members, userID)
	return nil
}

type compactCall struct {
	transcript string
	userID     string
}

type mockCompactor struct {
	out   string
	err   error
	calls []compactCall
}

func (m *mockCompactor) Compact(_ context.Context, transcript, userID string) (string, error) {
	m.calls = append(m.calls, compactCall{transcript: transcript, userID: userID})
	return m.out, m.err
}

type mockAssembler struct {
	msgs  []domain.ChatMessage
	err   error
	calls int
}

func (m *mockAssembler) Assemble(_ context.Context, _, _ string) ([]domain.ChatMessage, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.msgs, nil
}

var errBoom = errors.New("boom")
