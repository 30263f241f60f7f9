// Package tasks implements the bot's scheduled tasks: the engine sweep and
// database maintenance.
package tasks

import (
	"log/slog"

	"github.com/leadscout/leadscout/internal/config"
	"github.com/leadscout/leadscout/internal/database"
	"github.com/leadscout/leadscout/internal/engine"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Engine *engine.Engine
	Config *config.Config
}
