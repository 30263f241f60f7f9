package database

import (
	"database/sql"
	"time"
)

// Lead represents a stored sales lead found in a monitored channel. The
// enrichment columns mirror the classifier's analysis; list-valued fields
// (interests, buying signals, pain points) are stored JSON-encoded.
type Lead struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`

	TelegramID    int64     `db:"telegram_id"`
	Username      string    `db:"username"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	SourceChannel string    `db:"source_channel"`
	InterestScore int       `db:"interest_score"`
	MessageText   string    `db:"message_text"`
	MessageDate   time.Time `db:"message_date"`

	LeadQuality       string         `db:"lead_quality"`
	Interests         string         `db:"interests"`
	BuyingSignals     string         `db:"buying_signals"`
	PainPoints        string         `db:"pain_points"`
	UrgencyLevel      string         `db:"urgency_level"`
	RecommendedAction string         `db:"recommended_action"`
	EstimatedBudget   sql.NullString `db:"estimated_budget"`
	Timeline          sql.NullString `db:"timeline"`
	DecisionStage     string         `db:"decision_stage"`
}

// Channel represents a monitored channel and its accumulated statistics.
type Channel struct {
	ID        uint      `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	Identifier     string `db:"identifier"`
	Title          string `db:"title"`
	Enabled        bool   `db:"enabled"`
	MessagesParsed int64  `db:"messages_parsed"`
	LeadsFound     int64  `db:"leads_found"`
	LastMessageID  int64  `db:"last_message_id"`
}
