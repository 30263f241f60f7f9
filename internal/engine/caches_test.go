package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/leadscout/leadscout/internal/leadscore"
)

func TestAnalysisCacheBound(t *testing.T) {
	t.Parallel()

	cache := newAnalysisCache(10)
	a := &leadscore.Analysis{IsLead: true, ConfidenceScore: 90}

	for i := range 100 {
		cache.Put(fmt.Sprintf("fp-%d", i), a)
		if cache.Len() > 10 {
			t.Fatalf("cache size %d exceeds cap after insert %d", cache.Len(), i)
		}
	}
}

func TestAnalysisCacheOldestHalfEvicted(t *testing.T) {
	t.Parallel()

	cache := newAnalysisCache(4)
	a := &leadscore.Analysis{}

	for i := range 5 {
		cache.Put(fmt.Sprintf("fp-%d", i), a)
	}

	// Inserting the fifth entry drops the oldest half.
	if _, ok := cache.Get("fp-0"); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := cache.Get("fp-4"); !ok {
		t.Error("newest entry evicted")
	}
}

func TestAnalysisCacheUpdateDoesNotGrow(t *testing.T) {
	t.Parallel()

	cache := newAnalysisCache(10)
	for range 50 {
		cache.Put("same-key", &leadscore.Analysis{})
	}
	if cache.Len() != 1 {
		t.Errorf("cache size = %d after repeated puts of one key, want 1", cache.Len())
	}
}

func TestSeenMessages(t *testing.T) {
	t.Parallel()

	t.Run("second delivery detected", func(t *testing.T) {
		t.Parallel()

		seen := newSeenMessages(100)
		if seen.MarkSeen(1, 10) {
			t.Error("first delivery reported as seen")
		}
		if !seen.MarkSeen(1, 10) {
			t.Error("second delivery not reported as seen")
		}
		if seen.MarkSeen(1, 11) {
			t.Error("distinct message reported as seen")
		}
		if seen.MarkSeen(2, 10) {
			t.Error("same message id in another chat reported as seen")
		}
	})

	t.Run("bounded with bulk prune", func(t *testing.T) {
		t.Parallel()

		seen := newSeenMessages(10)
		for i := range 200 {
			seen.MarkSeen(1, i)
			if seen.Len() > 10 {
				t.Fatalf("seen set size %d exceeds cap", seen.Len())
			}
		}
	})
}

func TestCooldownGate(t *testing.T) {
	t.Parallel()

	gate := newCooldownGate(24)
	now := time.Now()
	gate.now = func() time.Time { return now }

	if gate.Active(1) {
		t.Error("gate active for never-stamped user")
	}

	gate.Stamp(1)
	if !gate.Active(1) {
		t.Error("gate not active immediately after stamp")
	}

	gate.now = func() time.Time { return now.Add(23 * time.Hour) }
	if !gate.Active(1) {
		t.Error("gate expired before the window elapsed")
	}

	gate.now = func() time.Time { return now.Add(24*time.Hour + time.Second) }
	if gate.Active(1) {
		t.Error("gate still active after the window elapsed")
	}
}

func TestRecentLeadCache(t *testing.T) {
	t.Parallel()

	cache := newRecentLeadCache()
	now := time.Now()
	cache.now = func() time.Time { return now }

	cache.Add(1, "нужна crm система")

	if !cache.Has(1, "нужна crm система") {
		t.Error("recently added lead content not found")
	}
	if cache.Has(1, "совсем другой текст") {
		t.Error("different content reported as recent")
	}
	if cache.Has(2, "нужна crm система") {
		t.Error("same content for different user reported as recent")
	}

	cache.now = func() time.Time { return now.Add(time.Hour + time.Minute) }
	if cache.Has(1, "нужна crm система") {
		t.Error("expired entry still reported as recent")
	}

	cache.Prune()
	if len(cache.entries) != 0 {
		t.Errorf("entries remain after prune: %d", len(cache.entries))
	}
}
