// Package engine implements the contextual lead-scoring pipeline: per-user
// rolling message contexts, readiness and eviction policy, result caching,
// dedup and cool-down gating, and exactly-once lead emission.
package engine

import (
	"sync"
	"time"

	"github.com/leadscout/leadscout/internal/ai"
)

const (
	// A partially-filled context becomes ready once the user has gone
	// quiet for this long.
	quietPeriod = 30 * time.Minute

	// A context is ready regardless of quiet time once it holds this many
	// messages.
	burstThreshold = 3
)

// Message is a single inbound message event as seen by the engine.
type Message struct {
	ChatID       int64
	MessageID    int
	UserID       int64
	Username     string
	FirstName    string
	LastName     string
	Text         string
	Timestamp    time.Time
	ChatKind     string
	ChatTitle    string
	ChatUsername string
}

type contextMessage struct {
	Text       string
	SourceTime time.Time
	MessageID  int
	RecordedAt time.Time
}

type userContext struct {
	userID       int64
	username     string
	firstName    string
	lastName     string
	channelTitle string
	channelKind  string
	firstSeen    time.Time
	lastActivity time.Time
	messages     []contextMessage
}

// contextStore owns the per-user rolling contexts. All access goes through
// its methods; the internal lock is never held across I/O.
type contextStore struct {
	mu       sync.Mutex
	contexts map[int64]*userContext

	minMessages int
	maxMessages int
	window      time.Duration

	now func() time.Time
}

func newContextStore(minMessages, maxMessages, windowHours int) *contextStore {
	return &contextStore{
		contexts:    make(map[int64]*userContext),
		minMessages: minMessages,
		maxMessages: maxMessages,
		window:      time.Duration(windowHours) * time.Hour,
		now:         time.Now,
	}
}

// Record appends a message to the user's context, refreshing the profile
// snapshot with the latest seen values and truncating the message list to the
// configured cap (oldest dropped first). Every record also sweeps contexts
// whose last activity is older than twice the context window.
func (s *contextStore) Record(msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	uc, ok := s.contexts[msg.UserID]
	if !ok {
		uc = &userContext{
			userID:    msg.UserID,
			firstSeen: now,
		}
		s.contexts[msg.UserID] = uc
	}

	uc.username = msg.Username
	uc.firstName = msg.FirstName
	uc.lastName = msg.LastName
	uc.channelTitle = msg.ChatTitle
	uc.channelKind = msg.ChatKind
	uc.lastActivity = now

	uc.messages = append(uc.messages, contextMessage{
		Text:       msg.Text,
		SourceTime: msg.Timestamp,
		MessageID:  msg.MessageID,
		RecordedAt: now,
	})
	if len(uc.messages) > s.maxMessages {
		uc.messages = uc.messages[len(uc.messages)-s.maxMessages:]
	}

	s.sweepLocked(now)
}

// IsReady reports whether a user's context has accumulated enough signal to
// evaluate: at least the configured minimum of messages, and either a quiet
// period since the last activity or a full burst.
func (s *contextStore) IsReady(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	uc, ok := s.contexts[userID]
	if !ok || len(uc.messages) < s.minMessages {
		return false
	}

	if s.now().Sub(uc.lastActivity) > quietPeriod {
		return true
	}
	return len(uc.messages) >= burstThreshold
}

// Snapshot returns a copy of the user's context suitable for evaluation, or
// nil if no context exists. The copy shares nothing with the store, so
// callers can hand it to a slow classifier without holding any lock.
func (s *contextStore) Snapshot(userID int64) *ai.UserContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	uc, ok := s.contexts[userID]
	if !ok {
		return nil
	}

	messages := make([]ai.ContextMessage, len(uc.messages))
	for i, m := range uc.messages {
		messages[i] = ai.ContextMessage{Text: m.Text, Date: m.SourceTime}
	}

	return &ai.UserContext{
		UserID:       uc.userID,
		Username:     uc.username,
		FirstName:    uc.firstName,
		LastName:     uc.lastName,
		ChannelTitle: uc.channelTitle,
		ChannelType:  uc.channelKind,
		FirstSeen:    uc.firstSeen,
		LastActivity: uc.lastActivity,
		Messages:     messages,
	}
}

// Sweep removes contexts whose last activity predates twice the context
// window and returns how many were removed.
func (s *contextStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *contextStore) sweepLocked(now time.Time) int {
	cutoff := now.Add(-2 * s.window)
	removed := 0
	for id, uc := range s.contexts {
		if uc.lastActivity.Before(cutoff) {
			delete(s.contexts, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of active contexts.
func (s *contextStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.contexts)
}
