package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"pubchat/pkg/logger"
)

// StartSweeper runs the idle-channel sweep on a cron schedule until ctx
// is cancelled. An empty cron expression selects an hourly sweep.
func StartSweeper(ctx context.Context, h *Hub, cronExpr string, idle time.Duration) error {
	if cronExpr == "" {
		cronExpr = "0 * * * *"
	}
	if !gronx.IsValid(cronExpr) {
		return fmt.Errorf("invalid sweep schedule %q", cronExpr)
	}
	if idle <= 0 {
		idle = time.Hour
	}

	go func() {
		for {
			next, err := gronx.NextTickAfter(cronExpr, time.Now().UTC(), false)
			if err != nil {
				logger.Error("sweep_next_tick_failed", "error", err)
				select {
				case <-ctx.Done():
					return
				case <-time.After(30 * time.Second):
				}
				continue
			}
			wait := time.Until(next)
			if wait < 0 {
				wait = 0
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}

			h.SweepIdle(idle)

			// Avoid a tight loop when the tick fires early.
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
		}
	}()

	logger.Info("sweeper_started", "schedule", cronExpr, "idle_period", idle.String())
	return nil
}
