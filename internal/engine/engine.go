package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leadscout/leadscout/internal/ai"
	"github.com/leadscout/leadscout/internal/config"
	"github.com/leadscout/leadscout/internal/database"
	"github.com/leadscout/leadscout/internal/leadscore"
)

// LeadStore is the slice of the durable store the engine needs.
type LeadStore interface {
	CreateLead(ctx context.Context, lead *database.Lead) error
	HasRecentLead(ctx context.Context, telegramID int64, since time.Time) (bool, error)
	IncrementChannelStats(ctx context.Context, identifier string, messageID int, leadFound bool) error
}

// LeadNotifier delivers an emitted lead to the configured recipients.
// Delivery failures are the notifier's to log; the engine does not retry.
type LeadNotifier interface {
	NotifyLead(ctx context.Context, lead *database.Lead)
}

// Options configures a new Engine.
type Options struct {
	Parsing  config.ParsingConfig
	Scorer   ai.Scorer
	Timeout  time.Duration
	Store    LeadStore
	Notifier LeadNotifier
	Logger   *slog.Logger
}

// Engine is the single entry point of the lead-scoring pipeline. One call to
// ProcessMessage carries a message through dedup, context accumulation,
// readiness, evaluation, gating, and emission.
type Engine struct {
	cfg config.ParsingConfig
	log *slog.Logger

	contexts    *contextStore
	evaluator   *evaluator
	seen        *seenMessages
	cooldown    *cooldownGate
	recentLeads *recentLeadCache

	store    LeadStore
	notifier LeadNotifier

	leadsEmitted atomic.Int64

	// Serializes the pipeline per user so two messages from the same user
	// cannot race past the dedup gate. Different users proceed in parallel.
	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex
}

// New creates the engine with all state empty.
func New(opts Options) *Engine {
	log := opts.Logger.With("component", "engine")
	return &Engine{
		cfg: opts.Parsing,
		log: log,
		contexts: newContextStore(
			opts.Parsing.MinMessagesForAnalysis,
			opts.Parsing.MaxContextMessages,
			opts.Parsing.ContextWindowHours,
		),
		evaluator: newEvaluator(
			opts.Scorer,
			opts.Timeout,
			opts.Parsing.MinConfidenceScore,
			opts.Parsing.MinInterestScore,
			log,
		),
		seen:        newSeenMessages(seenMessagesCap),
		cooldown:    newCooldownGate(opts.Parsing.ContextWindowHours),
		recentLeads: newRecentLeadCache(),
		store:       opts.Store,
		notifier:    opts.Notifier,
		locks:       make(map[int64]*sync.Mutex),
	}
}

func (e *Engine) userLock(userID int64) *sync.Mutex {
	e.locksMu.Lock()
	defer e.locksMu.Unlock()

	mu, ok := e.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[userID] = mu
	}
	return mu
}

// ProcessMessage runs one message through the full pipeline. It never returns
// an error: every failure is either recovered (scorer fallback) or logged
// (downstream writes); the sender is never told anything went wrong.
func (e *Engine) ProcessMessage(ctx context.Context, msg Message) {
	if !e.cfg.Enabled || msg.Text == "" {
		return
	}
	if !e.cfg.IsChannelMonitored(msg.ChatID, msg.ChatUsername) {
		return
	}

	mu := e.userLock(msg.UserID)
	mu.Lock()
	defer mu.Unlock()

	if e.seen.MarkSeen(msg.ChatID, msg.MessageID) {
		e.log.DebugContext(ctx, "Duplicate message delivery ignored",
			"chat_id", msg.ChatID, "message_id", msg.MessageID)
		return
	}

	e.contexts.Record(msg)

	channel := channelIdentifier(msg)
	leadFound := e.maybeEvaluate(ctx, msg, channel)

	if err := e.store.IncrementChannelStats(ctx, channel, msg.MessageID, leadFound); err != nil {
		e.log.WarnContext(ctx, "Failed to update channel stats", "channel", channel, "error", err)
	}
}

// maybeEvaluate runs readiness, cool-down, evaluation, and emission for the
// user. It reports whether a lead was emitted. Caller holds the user lock.
func (e *Engine) maybeEvaluate(ctx context.Context, msg Message, channel string) bool {
	if !e.contexts.IsReady(msg.UserID) {
		e.log.DebugContext(ctx, "Context not ready for evaluation", "user_id", msg.UserID)
		return false
	}
	if e.cooldown.Active(msg.UserID) {
		e.log.DebugContext(ctx, "User inside cool-down window", "user_id", msg.UserID)
		return false
	}

	snapshot := e.contexts.Snapshot(msg.UserID)
	if snapshot == nil {
		return false
	}

	eval := e.evaluator.Evaluate(ctx, snapshot)
	if !e.evaluator.Accepted(eval) {
		e.log.DebugContext(ctx, "Evaluation rejected",
			"user_id", msg.UserID, "source", eval.Source, "score", eval.Analysis.ConfidenceScore)
		return false
	}

	content := contextText(snapshot)

	if e.recentLeads.Has(msg.UserID, content) {
		e.log.DebugContext(ctx, "Near-identical lead content seen recently", "user_id", msg.UserID)
		return false
	}

	// Store backstop against leads emitted before a restart. A store error
	// permits emission; losing a lead is worse than a rare duplicate.
	since := e.cooldown.now().Add(-time.Duration(e.cfg.ContextWindowHours) * time.Hour)
	if has, err := e.store.HasRecentLead(ctx, msg.UserID, since); err != nil {
		e.log.WarnContext(ctx, "Recent-lead check failed, permitting emission",
			"user_id", msg.UserID, "error", err)
	} else if has {
		e.log.DebugContext(ctx, "Lead already stored within the window", "user_id", msg.UserID)
		return false
	}

	// The decision is final once reached; gates are stamped before the
	// side effects so a downstream failure cannot reopen them.
	e.cooldown.Stamp(msg.UserID)
	e.recentLeads.Add(msg.UserID, content)

	lead := buildLead(msg, snapshot, eval.Analysis, channel, content)
	if err := e.store.CreateLead(ctx, lead); err != nil {
		e.log.ErrorContext(ctx, "Failed to persist lead", "user_id", msg.UserID, "error", err)
	}

	e.leadsEmitted.Add(1)
	e.log.InfoContext(ctx, "Lead emitted",
		"user_id", msg.UserID, "username", msg.Username, "channel", channel,
		"score", eval.Analysis.ConfidenceScore, "quality", eval.Analysis.Quality, "source", eval.Source)

	if e.notifier != nil {
		e.notifier.NotifyLead(ctx, lead)
	}
	return true
}

// Sweep evicts stale contexts and prunes the recent-lead cache. Wired to a
// scheduled task so a traffic burst cannot starve cleanup.
func (e *Engine) Sweep(ctx context.Context) {
	removed := e.contexts.Sweep()
	e.recentLeads.Prune()
	if removed > 0 {
		e.log.InfoContext(ctx, "Swept stale user contexts", "removed", removed)
	}
}

// Status is a point-in-time snapshot of engine state for the admin surface.
type Status struct {
	Enabled            bool
	Channels           []string
	MinConfidenceScore int
	MinInterestScore   int
	ContextWindowHours int
	ActiveContexts     int
	AnalysisCacheSize  int
	SeenMessages       int
	UsersOnCooldown    int
	LeadsEmitted       int64
}

// Status reports the engine's current state.
func (e *Engine) Status() Status {
	return Status{
		Enabled:            e.cfg.Enabled,
		Channels:           e.cfg.Channels,
		MinConfidenceScore: e.cfg.MinConfidenceScore,
		MinInterestScore:   e.cfg.MinInterestScore,
		ContextWindowHours: e.cfg.ContextWindowHours,
		ActiveContexts:     e.contexts.Len(),
		AnalysisCacheSize:  e.evaluator.cache.Len(),
		SeenMessages:       e.seen.Len(),
		UsersOnCooldown:    e.cooldown.Len(),
		LeadsEmitted:       e.leadsEmitted.Load(),
	}
}

func channelIdentifier(msg Message) string {
	if msg.ChatUsername != "" {
		return "@" + strings.TrimPrefix(msg.ChatUsername, "@")
	}
	return strconv.FormatInt(msg.ChatID, 10)
}

// contextText concatenates the context's message texts, newest last.
func contextText(uc *ai.UserContext) string {
	texts := make([]string, len(uc.Messages))
	for i, m := range uc.Messages {
		texts[i] = m.Text
	}
	return strings.Join(texts, "\n")
}

func buildLead(msg Message, uc *ai.UserContext, a *leadscore.Analysis, channel, content string) *database.Lead {
	return &database.Lead{
		TelegramID:        msg.UserID,
		Username:          msg.Username,
		FirstName:         msg.FirstName,
		LastName:          msg.LastName,
		SourceChannel:     channel,
		InterestScore:     a.ConfidenceScore,
		MessageText:       content,
		MessageDate:       msg.Timestamp,
		LeadQuality:       string(a.Quality),
		Interests:         encodeList(a.Interests),
		BuyingSignals:     encodeList(a.BuyingSignals),
		PainPoints:        encodeList(a.PainPoints),
		UrgencyLevel:      string(a.Urgency),
		RecommendedAction: a.RecommendedAction,
		EstimatedBudget:   nullString(a.EstimatedBudget),
		Timeline:          nullString(a.Timeline),
		DecisionStage:     string(a.DecisionStage),
	}
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
