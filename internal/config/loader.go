package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load loads and validates configuration from:
// 1. Default values
// 2. The config file at configPath (optional)
// 3. BOT_* environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional; defaults plus env vars may be enough.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
		}
		slog.Info("Config file not found, using defaults and environment", "path", configPath)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	cfg.Parsing.Channels = normalizeChannels(v.Get("parsing.channels"))

	if cfg.AI.Model == "" {
		cfg.AI.Model = DefaultAIModels[cfg.AI.Provider]
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	slog.Info("Configuration loaded",
		"ai_provider", cfg.AI.Provider,
		"channels", len(cfg.Parsing.Channels),
		"min_confidence_score", cfg.Parsing.MinConfidenceScore,
		"context_window_hours", cfg.Parsing.ContextWindowHours)

	return cfg, nil
}

// setDefaults sets default values for optional configuration parameters.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("ai.provider", DefaultAIProvider)
	v.SetDefault("ai.timeout", DefaultAITimeout)

	v.SetDefault("parsing.enabled", true)
	v.SetDefault("parsing.min_confidence_score", DefaultMinConfidenceScore)
	v.SetDefault("parsing.min_interest_score", DefaultMinInterestScore)
	v.SetDefault("parsing.context_window_hours", DefaultContextWindowHours)
	v.SetDefault("parsing.min_messages_for_analysis", DefaultMinMessagesForAnalysis)
	v.SetDefault("parsing.max_context_messages", DefaultMaxContextMessages)

	v.SetDefault("messages.welcome", DefaultMessages.Welcome)
	v.SetDefault("messages.help", DefaultMessages.Help)
	v.SetDefault("messages.not_authorized", DefaultMessages.NotAuthorized)
	v.SetDefault("messages.general_error", DefaultMessages.GeneralError)

	v.SetDefault("scheduler.tasks", DefaultSchedulerTasks)
}

// normalizeChannels converts the raw parsing.channels value into a string
// slice. Channel lists commonly mix numeric chat IDs and @usernames, and YAML
// parses the former as integers. Anything unrecognizable degrades to an empty
// set rather than failing startup.
func normalizeChannels(raw any) []string {
	switch val := raw.(type) {
	case nil:
		return nil
	case []string:
		return val
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case int:
		return []string{strconv.Itoa(val)}
	case int64:
		return []string{strconv.FormatInt(val, 10)}
	case []any:
		channels := make([]string, 0, len(val))
		for _, entry := range val {
			switch e := entry.(type) {
			case string:
				channels = append(channels, e)
			case int:
				channels = append(channels, strconv.Itoa(e))
			case int64:
				channels = append(channels, strconv.FormatInt(e, 10))
			case float64:
				channels = append(channels, strconv.FormatInt(int64(e), 10))
			default:
				slog.Warn("Ignoring unrecognized channel entry in config", "entry", entry)
			}
		}
		return channels
	default:
		slog.Warn("Unrecognized parsing.channels format in config, monitoring no channels", "value", raw)
		return nil
	}
}
