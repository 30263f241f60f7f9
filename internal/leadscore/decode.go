package leadscore

import (
	"encoding/json"
	"regexp"
)

// rawAnalysis is the strict intermediate schema for classifier responses.
// Every field is optional; defaulting happens in one place, Decode.
type rawAnalysis struct {
	IsLead            bool     `json:"is_lead"`
	ConfidenceScore   float64  `json:"confidence_score"`
	LeadQuality       string   `json:"lead_quality"`
	Interests         []string `json:"interests"`
	BuyingSignals     []string `json:"buying_signals"`
	UrgencyLevel      string   `json:"urgency_level"`
	RecommendedAction string   `json:"recommended_action"`
	KeyInsights       []string `json:"key_insights"`
	EstimatedBudget   *string  `json:"estimated_budget"`
	Timeline          *string  `json:"timeline"`
	PainPoints        []string `json:"pain_points"`
	DecisionStage     string   `json:"decision_stage"`
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// Decode parses a classifier response into an Analysis. The response may wrap
// the JSON object in prose or code fences; the first balanced-looking object
// is extracted. Missing or malformed fields default to safe neutral values
// (not a lead, score 0, enums at their none/unknown variant); Decode never
// fails, so a degraded response yields a conservative judgment instead of an
// error deeper in the pipeline.
func Decode(responseText string) *Analysis {
	raw := rawAnalysis{}

	if jsonStr := jsonObjectRe.FindString(responseText); jsonStr != "" {
		// A partial unmarshal still fills the fields it could read;
		// the zero values of the rest are exactly the neutral defaults.
		_ = json.Unmarshal([]byte(jsonStr), &raw)
	}

	a := &Analysis{
		IsLead:            raw.IsLead,
		ConfidenceScore:   clampScore(int(raw.ConfidenceScore)),
		Quality:           normalizeQuality(raw.LeadQuality),
		Interests:         raw.Interests,
		BuyingSignals:     raw.BuyingSignals,
		PainPoints:        raw.PainPoints,
		KeyInsights:       raw.KeyInsights,
		Urgency:           normalizeUrgency(raw.UrgencyLevel),
		RecommendedAction: raw.RecommendedAction,
		DecisionStage:     normalizeStage(raw.DecisionStage),
	}
	if raw.EstimatedBudget != nil {
		a.EstimatedBudget = *raw.EstimatedBudget
	}
	if raw.Timeline != nil {
		a.Timeline = *raw.Timeline
	}
	return a
}
