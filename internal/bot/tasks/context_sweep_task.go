package tasks

import (
	"context"
)

// newContextSweepTask creates the scheduled task that evicts stale user
// contexts and prunes the engine's age-based caches. Running it on a fixed
// cadence keeps cleanup going even when no messages arrive.
func newContextSweepTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "context_sweep")

	return func(ctx context.Context) error {
		deps.Engine.Sweep(ctx)
		log.DebugContext(ctx, "Context sweep completed")
		return nil
	}
}
