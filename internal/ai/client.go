// Package ai implements the remote lead classifiers. Two providers are
// supported, Gemini and Claude; both take a user's accumulated context and
// return a structured lead analysis.
package ai

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leadscout/leadscout/internal/config"
	"github.com/leadscout/leadscout/internal/leadscore"
)

// ContextMessage is a single message inside a user context, in arrival order.
type ContextMessage struct {
	Text string
	Date time.Time
}

// UserContext is the material handed to a classifier: who the user is, where
// they wrote, and everything they said within the context window.
type UserContext struct {
	UserID       int64
	Username     string
	FirstName    string
	LastName     string
	ChannelTitle string
	ChannelType  string
	FirstSeen    time.Time
	LastActivity time.Time
	Messages     []ContextMessage
}

// ActivitySpanHours returns the time between the first and last message, in hours.
func (uc *UserContext) ActivitySpanHours() float64 {
	return uc.LastActivity.Sub(uc.FirstSeen).Hours()
}

// Scorer defines the interface for remote lead classification. Implementations
// must honor context cancellation; the caller bounds every call with a timeout.
type Scorer interface {
	AnalyzeContext(ctx context.Context, uc *UserContext) (*leadscore.Analysis, error)
}

// NewScorer creates the classifier selected by the configuration. Provider
// "none" returns a nil Scorer; the engine then runs in heuristic-only mode.
func NewScorer(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Scorer, error) {
	switch cfg.Provider {
	case "gemini":
		return newGeminiScorer(ctx, cfg, log)
	case "claude":
		return newClaudeScorer(cfg, log)
	case "none":
		log.Info("AI classification disabled, heuristic scoring only")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q", cfg.Provider)
	}
}
