package handlers

import (
	"log/slog"

	"github.com/leadscout/leadscout/internal/config"
	"github.com/leadscout/leadscout/internal/database"
	"github.com/leadscout/leadscout/internal/engine"
)

// HandlerDeps provides dependencies for Telegram command and message
// handlers. It is passed by pointer because the engine is wired in after the
// bot instance exists (the engine's notifier needs the bot to send with).
type HandlerDeps struct {
	Logger *slog.Logger
	Config *config.Config
	Store  database.Store
	Engine *engine.Engine
}
