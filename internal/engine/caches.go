package engine

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/leadscout/leadscout/internal/leadscore"
)

const (
	analysisCacheCap = 1000
	seenMessagesCap  = 10000
	recentLeadMaxAge = time.Hour
)

// analysisCache maps a context fingerprint to a classifier result. The cache
// is bounded; when an insert would exceed the cap, the oldest half of the
// entries is dropped in one batch.
type analysisCache struct {
	mu      sync.Mutex
	entries map[string]*leadscore.Analysis
	order   []string
	cap     int
}

func newAnalysisCache(capacity int) *analysisCache {
	return &analysisCache{
		entries: make(map[string]*leadscore.Analysis),
		cap:     capacity,
	}
}

func (c *analysisCache) Get(fingerprint string) (*leadscore.Analysis, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	a, ok := c.entries[fingerprint]
	return a, ok
}

func (c *analysisCache) Put(fingerprint string, a *leadscore.Analysis) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[fingerprint]; !exists {
		c.order = append(c.order, fingerprint)
	}
	c.entries[fingerprint] = a

	if len(c.entries) > c.cap {
		drop := c.order[:len(c.order)/2]
		for _, key := range drop {
			delete(c.entries, key)
		}
		c.order = append([]string(nil), c.order[len(c.order)/2:]...)
	}
}

func (c *analysisCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// seenMessages deduplicates raw message identity (chatID, messageID) to guard
// against transport-level redelivery. The set is capped; the oldest half is
// pruned in bulk once the cap is exceeded.
type seenMessages struct {
	mu    sync.Mutex
	keys  map[string]struct{}
	order []string
	cap   int
}

func newSeenMessages(capacity int) *seenMessages {
	return &seenMessages{
		keys: make(map[string]struct{}),
		cap:  capacity,
	}
}

// MarkSeen records the message identity and reports whether it had been seen
// before. Check and insert are a single atomic step.
func (s *seenMessages) MarkSeen(chatID int64, messageID int) bool {
	key := fmt.Sprintf("%d:%d", chatID, messageID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.keys[key]; seen {
		return true
	}
	s.keys[key] = struct{}{}
	s.order = append(s.order, key)

	if len(s.keys) > s.cap {
		drop := s.order[:len(s.order)/2]
		for _, k := range drop {
			delete(s.keys, k)
		}
		s.order = append([]string(nil), s.order[len(s.order)/2:]...)
	}
	return false
}

func (s *seenMessages) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

// cooldownGate tracks the last accepted evaluation per user and rejects
// re-evaluation within the configured window.
type cooldownGate struct {
	mu     sync.Mutex
	last   map[int64]time.Time
	window time.Duration
	now    func() time.Time
}

func newCooldownGate(windowHours int) *cooldownGate {
	return &cooldownGate{
		last:   make(map[int64]time.Time),
		window: time.Duration(windowHours) * time.Hour,
		now:    time.Now,
	}
}

// Active reports whether the user is inside the cool-down window.
func (g *cooldownGate) Active(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.last[userID]
	if !ok {
		return false
	}
	return g.now().Sub(last) < g.window
}

// Stamp records an accepted evaluation for the user at the current time.
func (g *cooldownGate) Stamp(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last[userID] = g.now()
}

func (g *cooldownGate) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.last)
}

// recentLeadCache remembers (userID, content hash) pairs for recently emitted
// leads so near-identical content cannot produce a duplicate within the hour.
type recentLeadCache struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func newRecentLeadCache() *recentLeadCache {
	return &recentLeadCache{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func leadContentKey(userID int64, content string) string {
	return fmt.Sprintf("%d:%x", userID, sha256.Sum256([]byte(content)))
}

func (c *recentLeadCache) Has(userID int64, content string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	stamped, ok := c.entries[leadContentKey(userID, content)]
	if !ok {
		return false
	}
	return c.now().Sub(stamped) < recentLeadMaxAge
}

// Add records an emitted lead and prunes entries older than an hour.
func (c *recentLeadCache) Add(userID int64, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[leadContentKey(userID, content)] = now

	for key, stamped := range c.entries {
		if now.Sub(stamped) >= recentLeadMaxAge {
			delete(c.entries, key)
		}
	}
}

// Prune drops expired entries; called from the scheduled sweep.
func (c *recentLeadCache) Prune() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, stamped := range c.entries {
		if now.Sub(stamped) >= recentLeadMaxAge {
			delete(c.entries, key)
		}
	}
}
