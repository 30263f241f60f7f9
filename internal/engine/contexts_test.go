package engine

import (
	"fmt"
	"testing"
	"time"
)

func testMessage(userID int64, messageID int, text string) Message {
	return Message{
		ChatID:       -100500,
		MessageID:    messageID,
		UserID:       userID,
		Username:     "tester",
		FirstName:    "Test",
		Text:         text,
		Timestamp:    time.Now(),
		ChatKind:     "supergroup",
		ChatTitle:    "Test Group",
		ChatUsername: "testgroup",
	}
}

func TestContextStoreTruncation(t *testing.T) {
	t.Parallel()

	store := newContextStore(1, 5, 24)

	for i := range 20 {
		store.Record(testMessage(1, i+1, fmt.Sprintf("message %d", i+1)))
	}

	snap := store.Snapshot(1)
	if snap == nil {
		t.Fatal("Snapshot returned nil for recorded user")
	}
	if len(snap.Messages) != 5 {
		t.Fatalf("message count = %d, want 5", len(snap.Messages))
	}
	// Oldest entries dropped first; the newest five remain in order.
	if snap.Messages[0].Text != "message 16" || snap.Messages[4].Text != "message 20" {
		t.Errorf("unexpected window: first=%q last=%q", snap.Messages[0].Text, snap.Messages[4].Text)
	}
}

func TestContextStoreReadiness(t *testing.T) {
	t.Parallel()

	t.Run("below minimum never ready", func(t *testing.T) {
		t.Parallel()

		store := newContextStore(2, 10, 24)
		store.Record(testMessage(1, 1, "one"))

		if store.IsReady(1) {
			t.Error("context with fewer than minimum messages reported ready")
		}
	})

	t.Run("burst makes ready", func(t *testing.T) {
		t.Parallel()

		store := newContextStore(1, 10, 24)
		for i := range burstThreshold {
			store.Record(testMessage(1, i+1, "ищу crm"))
		}

		if !store.IsReady(1) {
			t.Errorf("context with %d messages not ready", burstThreshold)
		}
	})

	t.Run("quiet period makes ready", func(t *testing.T) {
		t.Parallel()

		store := newContextStore(1, 10, 24)
		now := time.Now()
		store.now = func() time.Time { return now }
		store.Record(testMessage(1, 1, "one"))

		if store.IsReady(1) {
			t.Fatal("single fresh message should not be ready")
		}

		store.now = func() time.Time { return now.Add(quietPeriod + time.Minute) }
		if !store.IsReady(1) {
			t.Error("context not ready after quiet period elapsed")
		}
	})

	t.Run("readiness is monotonic", func(t *testing.T) {
		t.Parallel()

		store := newContextStore(1, 10, 24)
		for i := range 10 {
			store.Record(testMessage(1, i+1, "msg"))
			if i+1 >= burstThreshold && !store.IsReady(1) {
				t.Fatalf("context un-readied itself at message %d", i+1)
			}
		}
	})

	t.Run("unknown user not ready", func(t *testing.T) {
		t.Parallel()

		store := newContextStore(1, 10, 24)
		if store.IsReady(42) {
			t.Error("unknown user reported ready")
		}
	})
}

func TestContextStoreEviction(t *testing.T) {
	t.Parallel()

	store := newContextStore(1, 10, 24)
	now := time.Now()
	store.now = func() time.Time { return now }

	store.Record(testMessage(1, 1, "stale user"))

	// Another user's message past the eviction horizon sweeps user 1 out.
	store.now = func() time.Time { return now.Add(48*time.Hour + time.Minute) }
	store.Record(testMessage(2, 2, "fresh user"))

	if snap := store.Snapshot(1); snap != nil {
		t.Error("stale context survived the sweep")
	}
	if snap := store.Snapshot(2); snap == nil {
		t.Error("fresh context evicted")
	}
	if store.Len() != 1 {
		t.Errorf("store length = %d, want 1", store.Len())
	}
}

func TestContextStoreProfileRefresh(t *testing.T) {
	t.Parallel()

	store := newContextStore(1, 10, 24)

	first := testMessage(1, 1, "hello")
	first.Username = "old_name"
	store.Record(first)

	second := testMessage(1, 2, "world")
	second.Username = "new_name"
	store.Record(second)

	snap := store.Snapshot(1)
	if snap.Username != "new_name" {
		t.Errorf("Username = %q, want latest seen value %q", snap.Username, "new_name")
	}
	if snap.LastActivity.Before(snap.FirstSeen) {
		t.Error("LastActivity precedes FirstSeen")
	}
}

func TestContextStoreSnapshotIsCopy(t *testing.T) {
	t.Parallel()

	store := newContextStore(1, 10, 24)
	store.Record(testMessage(1, 1, "original"))

	snap := store.Snapshot(1)
	snap.Messages[0].Text = "mutated"

	if again := store.Snapshot(1); again.Messages[0].Text != "original" {
		t.Error("snapshot shares storage with the store")
	}
}
