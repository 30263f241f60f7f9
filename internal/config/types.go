// Package config manages application configuration from environment variables,
// config files, and default values.
package config

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration. Values can be set via environment
// variables prefixed with BOT_ (e.g., BOT_TELEGRAM_TOKEN) or through config.yaml.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	AI        AIConfig        `mapstructure:"ai"`
	Parsing   ParsingConfig   `mapstructure:"parsing"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LogConfig controls log level and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// BotInfo holds the bot identity retrieved from Telegram at startup.
type BotInfo struct {
	ID        int64
	Username  string
	FirstName string
}

// TelegramConfig holds the bot token and the admin recipient list used both
// for command authorization and lead notification fan-out.
type TelegramConfig struct {
	Token    string  `mapstructure:"token"     validate:"required"`
	AdminIDs []int64 `mapstructure:"admin_ids"`

	// Populated at runtime after GetMe, not from the config file.
	BotInfo BotInfo `mapstructure:"-"`
}

// IsAdmin reports whether a user is on the configured admin list.
func (t *TelegramConfig) IsAdmin(userID int64) bool {
	for _, id := range t.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AIConfig selects and configures the remote lead classifier. Provider "none"
// runs the bot in heuristic-only mode.
type AIConfig struct {
	Provider string        `mapstructure:"provider" validate:"required,oneof=gemini claude none"`
	Token    string        `mapstructure:"token"    validate:"required_unless=Provider none"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"required,min=1s,max=10m"`
}

// ParsingConfig controls the lead-scoring engine: which channels are watched,
// acceptance thresholds, and the shape of the per-user context window.
type ParsingConfig struct {
	Enabled                bool `mapstructure:"enabled"`
	MinConfidenceScore     int  `mapstructure:"min_confidence_score"      validate:"min=0,max=100"`
	MinInterestScore       int  `mapstructure:"min_interest_score"        validate:"min=0,max=100"`
	ContextWindowHours     int  `mapstructure:"context_window_hours"      validate:"min=1"`
	MinMessagesForAnalysis int  `mapstructure:"min_messages_for_analysis" validate:"min=1"`
	MaxContextMessages     int  `mapstructure:"max_context_messages"      validate:"min=1"`

	// Channels is normalized from the raw config value, which may mix
	// numeric IDs and @usernames. See normalizeChannels.
	Channels []string `mapstructure:"-"`
}

// IsChannelMonitored reports whether a chat is on the configured allow-list,
// matching either by numeric ID or by username (with or without a leading @).
func (p *ParsingConfig) IsChannelMonitored(chatID int64, chatUsername string) bool {
	if !p.Enabled {
		return false
	}

	id := strconv.FormatInt(chatID, 10)
	for _, ch := range p.Channels {
		if ch == id {
			return true
		}
	}

	if chatUsername == "" {
		return false
	}
	bare := strings.TrimPrefix(chatUsername, "@")
	for _, ch := range p.Channels {
		if ch == bare || ch == "@"+bare {
			return true
		}
	}
	return false
}

// TaskConfig enables a scheduled task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// MessagesConfig holds user-visible message templates.
type MessagesConfig struct {
	Welcome       string `mapstructure:"welcome"        validate:"required"`
	Help          string `mapstructure:"help"           validate:"required"`
	NotAuthorized string `mapstructure:"not_authorized" validate:"required"`
	GeneralError  string `mapstructure:"general_error"  validate:"required"`
}
