// Package leadscore defines the lead analysis result model, the defensive
// decoding of remote classifier judgments, and the deterministic heuristic
// scorer used when no classifier is available.
package leadscore

// Quality grades how ready a prospect appears to be.
type Quality string

const (
	QualityHot     Quality = "hot"
	QualityWarm    Quality = "warm"
	QualityCold    Quality = "cold"
	QualityNotLead Quality = "not_lead"
)

// Urgency grades how soon the prospect needs a solution.
type Urgency string

const (
	UrgencyImmediate Urgency = "immediate"
	UrgencyShortTerm Urgency = "short_term"
	UrgencyLongTerm  Urgency = "long_term"
	UrgencyNone      Urgency = "none"
)

// DecisionStage places the prospect in the buying journey.
type DecisionStage string

const (
	StageAwareness     DecisionStage = "awareness"
	StageConsideration DecisionStage = "consideration"
	StageDecision      DecisionStage = "decision"
	StagePostPurchase  DecisionStage = "post_purchase"
)

// Analysis is the classifier's judgment of a user context. ConfidenceScore is
// always within [0,100] and enum fields always hold a known value; Decode and
// FromHeuristicScore enforce this regardless of upstream input.
type Analysis struct {
	IsLead            bool
	ConfidenceScore   int
	Quality           Quality
	Interests         []string
	BuyingSignals     []string
	PainPoints        []string
	KeyInsights       []string
	Urgency           Urgency
	RecommendedAction string
	EstimatedBudget   string
	Timeline          string
	DecisionStage     DecisionStage
}

// FromHeuristicScore synthesizes a minimal Analysis from a heuristic score.
// Enrichment fields stay at their neutral defaults; only the lead decision
// and the score carry information.
func FromHeuristicScore(score, minScore int) *Analysis {
	return &Analysis{
		IsLead:          score >= minScore,
		ConfidenceScore: clampScore(score),
		Quality:         QualityNotLead,
		Urgency:         UrgencyNone,
		DecisionStage:   StageAwareness,
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func normalizeQuality(s string) Quality {
	switch Quality(s) {
	case QualityHot, QualityWarm, QualityCold, QualityNotLead:
		return Quality(s)
	default:
		return QualityNotLead
	}
}

func normalizeUrgency(s string) Urgency {
	switch Urgency(s) {
	case UrgencyImmediate, UrgencyShortTerm, UrgencyLongTerm, UrgencyNone:
		return Urgency(s)
	default:
		return UrgencyNone
	}
}

func normalizeStage(s string) DecisionStage {
	switch DecisionStage(s) {
	case StageAwareness, StageConsideration, StageDecision, StagePostPurchase:
		return DecisionStage(s)
	default:
		return StageAwareness
	}
}
