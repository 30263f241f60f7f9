package config

import "time"

// Default values for configuration
const (
	// Log defaults
	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	// Database defaults
	DefaultDBPath = "storage.db"

	// AI defaults
	DefaultAIProvider = "none"
	DefaultAITimeout  = 15 * time.Second

	// Parsing defaults mirror the thresholds the engine was tuned with.
	DefaultMinConfidenceScore     = 70
	DefaultMinInterestScore       = 60
	DefaultContextWindowHours     = 24
	DefaultMinMessagesForAnalysis = 1
	DefaultMaxContextMessages     = 10
)

// Default AI model per provider, applied when ai.model is left empty.
var DefaultAIModels = map[string]string{
	"gemini": "gemini-2.0-flash",
	"claude": "claude-3-5-haiku-20241022",
}

// Default user-visible messages.
var DefaultMessages = MessagesConfig{
	Welcome:       "👋 Welcome! This bot watches configured channels for sales leads. Use /help to see available commands.",
	Help:          "Available commands:\n/start — start the bot\n/help — this message\n\nAdmin commands:\n/status — engine status\n/leads — recent leads\n/channels — monitored channels\n/stats — totals",
	NotAuthorized: "🚫 Access denied. Please contact the administrator.",
	GeneralError:  "❌ An error occurred. Please try again later.",
}

// Default scheduler tasks: a frequent context sweep and nightly SQL maintenance.
var DefaultSchedulerTasks = map[string]TaskConfig{
	"context_sweep":   {Enabled: true, Schedule: "0 */5 * * * *"},
	"sql_maintenance": {Enabled: true, Schedule: "0 0 4 * * *"},
}
