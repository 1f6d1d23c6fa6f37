package services

import (
	"context"
	"time"

	"github.com/terraincognita07/cyclecore/internal/logger"
)

const DefaultSchedulerInterval = 6 * time.Hour

// LifecycleScheduler periodically refreshes every user whose learning state
// is eligible for an update.
type LifecycleScheduler struct {
	manager  *LifecycleManager
	interval time.Duration
	log      *logger.Logger
}

func NewLifecycleScheduler(manager *LifecycleManager, interval time.Duration, log *logger.Logger) *LifecycleScheduler {
	if interval <= 0 {
		interval = DefaultSchedulerInterval
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &LifecycleScheduler{
		manager:  manager,
		interval: interval,
		log:      log.With("component", "learning_scheduler"),
	}
}

// Start runs one pass immediately and then one per interval until ctx is
// cancelled. It returns without blocking.
func (scheduler *LifecycleScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(scheduler.interval)
	go func() {
		defer ticker.Stop()

		scheduler.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				scheduler.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce returns the number of updates that were attempted.
func (scheduler *LifecycleScheduler) RunOnce(ctx context.Context) int {
	userIDs, err := scheduler.manager.KnownUsers()
	if err != nil {
		scheduler.log.Error("list learning users failed", "error", err)
		return 0
	}

	attempted := 0
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return attempted
		}
		result, ok := scheduler.manager.CheckAndUpdate(ctx, userID)
		if !ok {
			continue
		}
		attempted++
		if !result.Success {
			scheduler.log.Warn("model update failed", "user", userID, "errors", result.Errors)
			continue
		}
		scheduler.log.Info("model updated",
			"user", userID,
			"version", result.ModelVersion,
			"accuracy", result.NewAccuracy,
		)
	}
	return attempted
}
