package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/leadscout/leadscout/internal/ai"
	"github.com/leadscout/leadscout/internal/leadscore"
)

// fingerprintMessages is how many of the most recent message texts feed the
// analysis cache fingerprint.
const fingerprintMessages = 5

// Source identifies where an evaluation result came from.
type Source string

const (
	SourceCache     Source = "cache"
	SourceRemote    Source = "remote"
	SourceHeuristic Source = "heuristic"
)

// Evaluation is the outcome of evaluating a ripe user context.
type Evaluation struct {
	Analysis *leadscore.Analysis
	Source   Source
}

// evaluator orchestrates the remote classifier with the heuristic fallback
// and owns the fingerprint-keyed analysis cache.
type evaluator struct {
	scorer  ai.Scorer
	cache   *analysisCache
	timeout time.Duration

	minConfidence int
	minInterest   int

	log *slog.Logger
}

func newEvaluator(scorer ai.Scorer, timeout time.Duration, minConfidence, minInterest int, log *slog.Logger) *evaluator {
	return &evaluator{
		scorer:        scorer,
		cache:         newAnalysisCache(analysisCacheCap),
		timeout:       timeout,
		minConfidence: minConfidence,
		minInterest:   minInterest,
		log:           log,
	}
}

// Evaluate classifies a user context. Order of precedence: cached result for
// the same fingerprint, then the remote classifier under a hard timeout, then
// the deterministic heuristic. Only successful remote results are cached; a
// fallback judgment must not mask a later, better remote answer.
func (e *evaluator) Evaluate(ctx context.Context, uc *ai.UserContext) *Evaluation {
	fp := fingerprint(uc)

	if cached, ok := e.cache.Get(fp); ok {
		e.log.DebugContext(ctx, "Analysis cache hit", "user_id", uc.UserID)
		return &Evaluation{Analysis: cached, Source: SourceCache}
	}

	if e.scorer != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		analysis, err := e.scorer.AnalyzeContext(callCtx, uc)
		cancel()

		switch {
		case err == nil:
			e.cache.Put(fp, analysis)
			e.log.InfoContext(ctx, "Remote analysis complete",
				"user_id", uc.UserID, "is_lead", analysis.IsLead, "confidence", analysis.ConfidenceScore)
			return &Evaluation{Analysis: analysis, Source: SourceRemote}

		case errors.Is(err, context.DeadlineExceeded):
			e.log.WarnContext(ctx, "Remote analysis timed out, falling back to heuristic",
				"user_id", uc.UserID, "timeout", e.timeout)

		default:
			e.log.WarnContext(ctx, "Remote analysis failed, falling back to heuristic",
				"user_id", uc.UserID, "error", err)
		}
	}

	score := bestHeuristicScore(uc)
	analysis := leadscore.FromHeuristicScore(score, e.minInterest)
	e.log.DebugContext(ctx, "Heuristic analysis complete",
		"user_id", uc.UserID, "score", score, "is_lead", analysis.IsLead)
	return &Evaluation{Analysis: analysis, Source: SourceHeuristic}
}

// Accepted applies the acceptance rule for an evaluation: remote and cached
// judgments must be marked as leads at or above the confidence threshold;
// heuristic judgments use the lower interest threshold.
func (e *evaluator) Accepted(eval *Evaluation) bool {
	if eval == nil || eval.Analysis == nil || !eval.Analysis.IsLead {
		return false
	}
	if eval.Source == SourceHeuristic {
		return eval.Analysis.ConfidenceScore >= e.minInterest
	}
	return eval.Analysis.ConfidenceScore >= e.minConfidence
}

// bestHeuristicScore scores each message in the context independently and
// returns the highest. A single strong message is a stronger signal than the
// average of a diluted context.
func bestHeuristicScore(uc *ai.UserContext) int {
	best := 0
	for _, m := range uc.Messages {
		if s := leadscore.HeuristicScore(m.Text); s > best {
			best = s
		}
	}
	return best
}

// fingerprint derives the analysis cache key from the full content of the
// last few message texts.
func fingerprint(uc *ai.UserContext) string {
	h := sha256.New()
	messages := uc.Messages
	if len(messages) > fingerprintMessages {
		messages = messages[len(messages)-fingerprintMessages:]
	}
	for _, m := range messages {
		h.Write([]byte(m.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
