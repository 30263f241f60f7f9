package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/leadscout/leadscout/internal/config"
	"github.com/leadscout/leadscout/internal/database"
)

type fakeStore struct {
	mu sync.Mutex

	leads     []*database.Lead
	statCalls int
	leadStats int
	createErr error
	recentErr error
	hasRecent bool
	statErr   error
}

func (s *fakeStore) CreateLead(_ context.Context, lead *database.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.leads = append(s.leads, lead)
	return nil
}

func (s *fakeStore) HasRecentLead(_ context.Context, _ int64, _ time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasRecent, s.recentErr
}

func (s *fakeStore) IncrementChannelStats(_ context.Context, _ string, _ int, leadFound bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statCalls++
	if leadFound {
		s.leadStats++
	}
	return s.statErr
}

func (s *fakeStore) leadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *fakeNotifier) NotifyLead(_ context.Context, _ *database.Lead) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func testParsingConfig() config.ParsingConfig {
	return config.ParsingConfig{
		Enabled:                true,
		MinConfidenceScore:     70,
		MinInterestScore:       60,
		ContextWindowHours:     24,
		MinMessagesForAnalysis: 1,
		MaxContextMessages:     10,
		Channels:               []string{"-100500", "@testgroup"},
	}
}

func newTestEngine(store *fakeStore, notifier *fakeNotifier) *Engine {
	return New(Options{
		Parsing:  testParsingConfig(),
		Scorer:   nil,
		Timeout:  time.Second,
		Store:    store,
		Notifier: notifier,
		Logger:   testLogger(),
	})
}

// leadBurst sends three strong messages so the burst readiness threshold is
// met and the heuristic path accepts.
func leadBurst(eng *Engine, userID int64, startID int) {
	for i := range burstThreshold {
		msg := testMessage(userID, startID+i, "сколько стоит ваша CRM?")
		eng.ProcessMessage(context.Background(), msg)
	}
}

func TestEngineEmitsLead(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	notifier := &fakeNotifier{}
	eng := newTestEngine(store, notifier)

	leadBurst(eng, 1, 1)

	if store.leadCount() != 1 {
		t.Fatalf("leads created = %d, want 1", store.leadCount())
	}
	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1", notifier.count())
	}

	lead := store.leads[0]
	if lead.TelegramID != 1 {
		t.Errorf("TelegramID = %d, want 1", lead.TelegramID)
	}
	if lead.SourceChannel != "@testgroup" {
		t.Errorf("SourceChannel = %q, want %q", lead.SourceChannel, "@testgroup")
	}
	if lead.InterestScore < 60 {
		t.Errorf("InterestScore = %d, want >= 60", lead.InterestScore)
	}
	if status := eng.Status(); status.LeadsEmitted != 1 {
		t.Errorf("Status().LeadsEmitted = %d, want 1", status.LeadsEmitted)
	}
}

func TestEngineDuplicateDeliveryIsNoOp(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	eng := newTestEngine(store, &fakeNotifier{})

	msg := testMessage(1, 7, "сколько стоит ваша CRM?")
	eng.ProcessMessage(context.Background(), msg)
	eng.ProcessMessage(context.Background(), msg)

	if store.statCalls != 1 {
		t.Errorf("stat increments = %d, want 1 (second delivery must be a no-op)", store.statCalls)
	}
	if snap := eng.contexts.Snapshot(1); len(snap.Messages) != 1 {
		t.Errorf("context length = %d, want 1", len(snap.Messages))
	}
}

func TestEngineCooldownBlocksSecondLead(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	notifier := &fakeNotifier{}
	eng := newTestEngine(store, notifier)

	leadBurst(eng, 1, 1)
	leadBurst(eng, 1, 100)

	if store.leadCount() != 1 {
		t.Fatalf("leads created = %d, want 1 (cool-down must block the second)", store.leadCount())
	}

	// After the window passes, the same user can qualify again.
	eng.cooldown.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	eng.recentLeads.now = eng.cooldown.now
	leadBurst(eng, 1, 200)

	if store.leadCount() != 2 {
		t.Errorf("leads created = %d, want 2 after cool-down expiry", store.leadCount())
	}
}

func TestEngineIgnoresUnmonitoredChat(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	eng := newTestEngine(store, &fakeNotifier{})

	msg := testMessage(1, 1, "сколько стоит ваша CRM?")
	msg.ChatID = -999
	msg.ChatUsername = "elsewhere"
	for i := range 5 {
		msg.MessageID = i + 1
		eng.ProcessMessage(context.Background(), msg)
	}

	if store.leadCount() != 0 {
		t.Errorf("leads created = %d for unmonitored chat, want 0", store.leadCount())
	}
	if store.statCalls != 0 {
		t.Errorf("stat increments = %d for unmonitored chat, want 0", store.statCalls)
	}
}

func TestEngineDisabled(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	cfg := testParsingConfig()
	cfg.Enabled = false
	eng := New(Options{
		Parsing: cfg,
		Timeout: time.Second,
		Store:   store,
		Logger:  testLogger(),
	})

	leadBurst(eng, 1, 1)

	if store.statCalls != 0 || store.leadCount() != 0 {
		t.Errorf("disabled engine touched the store: stats=%d leads=%d", store.statCalls, store.leadCount())
	}
}

func TestEngineToleratesDownstreamFailures(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		createErr: errors.New("disk full"),
		statErr:   errors.New("disk full"),
		recentErr: errors.New("disk full"),
	}
	notifier := &fakeNotifier{}
	eng := newTestEngine(store, notifier)

	leadBurst(eng, 1, 1)

	// The decision stands and the notification still goes out even though
	// every write failed.
	if notifier.count() != 1 {
		t.Errorf("notifications = %d, want 1 despite store failures", notifier.count())
	}
	if !eng.cooldown.Active(1) {
		t.Error("cool-down not stamped after downstream failure")
	}
}

func TestEngineStoreBackstopBlocksEmission(t *testing.T) {
	t.Parallel()

	store := &fakeStore{hasRecent: true}
	notifier := &fakeNotifier{}
	eng := newTestEngine(store, notifier)

	leadBurst(eng, 1, 1)

	if store.leadCount() != 0 {
		t.Errorf("leads created = %d, want 0 (store already has a recent lead)", store.leadCount())
	}
	if notifier.count() != 0 {
		t.Errorf("notifications = %d, want 0", notifier.count())
	}
}

func TestEngineRejectedEvaluationStillCountsMessage(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	eng := newTestEngine(store, &fakeNotifier{})

	for i := range burstThreshold {
		eng.ProcessMessage(context.Background(), testMessage(1, i+1, "привет"))
	}

	if store.leadCount() != 0 {
		t.Errorf("leads created = %d for weak messages, want 0", store.leadCount())
	}
	if store.statCalls != burstThreshold {
		t.Errorf("stat increments = %d, want %d", store.statCalls, burstThreshold)
	}
	if store.leadStats != 0 {
		t.Errorf("leadFound increments = %d, want 0", store.leadStats)
	}
}

func TestEngineStatusSnapshot(t *testing.T) {
	t.Parallel()

	eng := newTestEngine(&fakeStore{}, &fakeNotifier{})
	eng.ProcessMessage(context.Background(), testMessage(1, 1, "привет"))
	eng.ProcessMessage(context.Background(), testMessage(2, 2, "привет"))

	status := eng.Status()
	if !status.Enabled {
		t.Error("Status().Enabled = false, want true")
	}
	if status.ActiveContexts != 2 {
		t.Errorf("ActiveContexts = %d, want 2", status.ActiveContexts)
	}
	if status.SeenMessages != 2 {
		t.Errorf("SeenMessages = %d, want 2", status.SeenMessages)
	}
}
