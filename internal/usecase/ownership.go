package usecase

import "sync"

// ThreadOwnership maps a conversation thread to the bot instance that created
// it, so multiple bot instances sharing a guild do not answer each other's
// threads. It is process-local by design: after a restart old threads are no
// longer recognized as self-owned and fall through to default handling.
type ThreadOwnership struct {
	mu     sync.RWMutex
	owners map[string]string
}

// NewThreadOwnership creates an empty ownership map.
func NewThreadOwnership() *ThreadOwnership {
	return &ThreadOwnership{owners: make(map[string]string)}
}

// Claim records botID as the creator of threadID.
func (o *ThreadOwnership) Claim(threadID, botID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.owners[threadID] = botID
}

// Owner returns the bot that created threadID, if any instance in this
// process did.
func (o *ThreadOwnership) Owner(threadID string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	botID, ok := o.owners[threadID]
	return botID, ok
}
