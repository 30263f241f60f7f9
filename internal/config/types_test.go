package config

import (
	"testing"
)

func TestIsChannelMonitored(t *testing.T) {
	t.Parallel()

	cfg := &ParsingConfig{
		Enabled:  true,
		Channels: []string{"-1001234567890", "@saleschat", "devgroup"},
	}

	tests := []struct {
		name     string
		chatID   int64
		username string
		want     bool
	}{
		{"numeric id match", -1001234567890, "", true},
		{"numeric id mismatch", -42, "", false},
		{"username matches @ entry", -42, "saleschat", true},
		{"username with @ matches @ entry", -42, "@saleschat", true},
		{"username matches bare entry", -42, "devgroup", true},
		{"username with @ matches bare entry", -42, "@devgroup", true},
		{"username mismatch", -42, "randomchat", false},
		{"empty username and unknown id", -42, "", false},
		{"id match wins even with unknown username", -1001234567890, "randomchat", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := cfg.IsChannelMonitored(tt.chatID, tt.username); got != tt.want {
				t.Errorf("IsChannelMonitored(%d, %q) = %v, want %v", tt.chatID, tt.username, got, tt.want)
			}
		})
	}
}

func TestIsChannelMonitoredDisabled(t *testing.T) {
	t.Parallel()

	cfg := &ParsingConfig{
		Enabled:  false,
		Channels: []string{"@saleschat"},
	}

	if cfg.IsChannelMonitored(-42, "saleschat") {
		t.Error("disabled parsing reported a channel as monitored")
	}
}

func TestIsAdmin(t *testing.T) {
	t.Parallel()

	cfg := &TelegramConfig{AdminIDs: []int64{111, 222}}

	tests := []struct {
		name   string
		userID int64
		want   bool
	}{
		{"first admin", 111, true},
		{"second admin", 222, true},
		{"not an admin", 333, false},
		{"zero id", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := cfg.IsAdmin(tt.userID); got != tt.want {
				t.Errorf("IsAdmin(%d) = %v, want %v", tt.userID, got, tt.want)
			}
		})
	}
}

func TestIsAdminEmptyList(t *testing.T) {
	t.Parallel()

	cfg := &TelegramConfig{}
	if cfg.IsAdmin(111) {
		t.Error("empty admin list authorized a user")
	}
}
