package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// CreateLead inserts a new lead record.
	CreateLead(ctx context.Context, lead *Lead) error

	// GetRecentLeads retrieves the most recent 'limit' leads.
	GetRecentLeads(ctx context.Context, limit int) ([]Lead, error)

	// CountLeads returns the total number of stored leads.
	CountLeads(ctx context.Context) (int64, error)

	// HasRecentLead reports whether a lead for the user was created at or
	// after 'since'.
	HasRecentLead(ctx context.Context, telegramID int64, since time.Time) (bool, error)

	// UpsertChannel inserts a channel row or re-enables an existing one.
	UpsertChannel(ctx context.Context, identifier, title string) error

	// IncrementChannelStats bumps parse counters for a channel after a
	// message has been evaluated.
	IncrementChannelStats(ctx context.Context, identifier string, messageID int, leadFound bool) error

	// GetChannels retrieves all known channels with their statistics.
	GetChannels(ctx context.Context) ([]Channel, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateLead inserts a new lead record.
func (s *sqlxStore) CreateLead(ctx context.Context, lead *Lead) error {
	if lead == nil {
		return fmt.Errorf("cannot save nil lead")
	}
	if lead.TelegramID == 0 {
		return fmt.Errorf("lead must have a non-zero telegram_id")
	}
	if lead.MessageText == "" {
		return fmt.Errorf("lead must have non-empty message text")
	}

	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO leads (
            created_at, telegram_id, username, first_name, last_name,
            source_channel, interest_score, message_text, message_date,
            lead_quality, interests, buying_signals, pain_points,
            urgency_level, recommended_action, estimated_budget, timeline, decision_stage
        ) VALUES (
            :created_at, :telegram_id, :username, :first_name, :last_name,
            :source_channel, :interest_score, :message_text, :message_date,
            :lead_quality, :interests, :buying_signals, :pain_points,
            :urgency_level, :recommended_action, :estimated_budget, :timeline, :decision_stage
        );
    `

	result, err := s.db.NamedExecContext(ctx, query, lead)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving lead", "telegram_id", lead.TelegramID, "error", err)
		return fmt.Errorf("failed to save lead (user %d): %w", lead.TelegramID, err)
	}

	if id, err := result.LastInsertId(); err == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		lead.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving lead",
			"telegram_id", lead.TelegramID, "error", err)
	}

	s.logger.DebugContext(ctx, "Lead saved successfully",
		"telegram_id", lead.TelegramID, "lead_id", lead.ID, "score", lead.InterestScore)
	return nil
}

// GetRecentLeads retrieves the most recent 'limit' leads.
func (s *sqlxStore) GetRecentLeads(ctx context.Context, limit int) ([]Lead, error) {
	if limit <= 0 {
		limit = 10
	} else if limit > 100 {
		limit = 100
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var leads []Lead
	query := `
        SELECT id, created_at, telegram_id, username, first_name, last_name,
               source_channel, interest_score, message_text, message_date,
               lead_quality, interests, buying_signals, pain_points,
               urgency_level, recommended_action, estimated_budget, timeline, decision_stage
        FROM leads
        ORDER BY created_at DESC
        LIMIT ?;
    `

	err := s.db.SelectContext(ctx, &leads, query, limit)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching leads", "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent leads", "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get recent leads: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched recent leads successfully", "count", len(leads))
	return leads, nil
}

// CountLeads returns the total number of stored leads.
func (s *sqlxStore) CountLeads(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM leads`); err != nil {
		s.logger.ErrorContext(ctx, "Error counting leads", "error", err)
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

// HasRecentLead reports whether a lead for the user was created at or after 'since'.
func (s *sqlxStore) HasRecentLead(ctx context.Context, telegramID int64, since time.Time) (bool, error) {
	if telegramID == 0 {
		return false, fmt.Errorf("telegram_id cannot be zero")
	}

	var id uint
	query := `SELECT id FROM leads WHERE telegram_id = ? AND created_at >= ? LIMIT 1`
	err := s.db.GetContext(ctx, &id, query, telegramID, since.UTC())

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		s.logger.ErrorContext(ctx, "Error checking for recent lead", "telegram_id", telegramID, "error", err)
		return false, fmt.Errorf("failed to check for recent lead (user %d): %w", telegramID, err)
	}
	return true, nil
}

// UpsertChannel inserts a channel row or re-enables an existing one.
func (s *sqlxStore) UpsertChannel(ctx context.Context, identifier, title string) error {
	if identifier == "" {
		return fmt.Errorf("channel identifier cannot be empty")
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO channels (created_at, updated_at, identifier, title, enabled)
        VALUES (?, ?, ?, ?, 1)
        ON CONFLICT(identifier) DO UPDATE SET
            title = excluded.title,
            enabled = 1,
            updated_at = excluded.updated_at;
    `

	if _, err := s.db.ExecContext(ctx, query, now, now, identifier, title); err != nil {
		s.logger.ErrorContext(ctx, "Error upserting channel", "identifier", identifier, "error", err)
		return fmt.Errorf("failed to upsert channel %s: %w", identifier, err)
	}

	s.logger.DebugContext(ctx, "Channel upserted", "identifier", identifier)
	return nil
}

// IncrementChannelStats bumps parse counters for a channel.
func (s *sqlxStore) IncrementChannelStats(ctx context.Context, identifier string, messageID int, leadFound bool) error {
	if identifier == "" {
		return fmt.Errorf("channel identifier cannot be empty")
	}

	leadIncrement := 0
	if leadFound {
		leadIncrement = 1
	}

	query := `
        UPDATE channels SET
            messages_parsed = messages_parsed + 1,
            leads_found = leads_found + ?,
            last_message_id = ?,
            updated_at = ?
        WHERE identifier = ?;
    `

	result, err := s.db.ExecContext(ctx, query, leadIncrement, messageID, time.Now().UTC(), identifier)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating channel stats", "identifier", identifier, "error", err)
		return fmt.Errorf("failed to update stats for channel %s: %w", identifier, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		// Channel row missing (e.g. added to config without restart); create it on the fly.
		if upsertErr := s.UpsertChannel(ctx, identifier, identifier); upsertErr != nil {
			return upsertErr
		}
		_, err = s.db.ExecContext(ctx, query, leadIncrement, messageID, time.Now().UTC(), identifier)
		if err != nil {
			return fmt.Errorf("failed to update stats for channel %s: %w", identifier, err)
		}
	}

	return nil
}

// GetChannels retrieves all known channels with their statistics.
func (s *sqlxStore) GetChannels(ctx context.Context) ([]Channel, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var channels []Channel
	query := `
        SELECT id, created_at, updated_at, identifier, title, enabled,
               messages_parsed, leads_found, last_message_id
        FROM channels
        ORDER BY identifier;
    `

	if err := s.db.SelectContext(ctx, &channels, query); err != nil {
		s.logger.ErrorContext(ctx, "Error getting channels", "error", err)
		return nil, fmt.Errorf("failed to get channels: %w", err)
	}

	s.logger.DebugContext(ctx, "Fetched channels successfully", "count", len(channels))
	return channels, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
