package rescan

import (
	"context"
	"time"

	"go.uber.org/zap"

	modsvc "github.com/sylveur65/Projet-goodyfans-sub000/internal/services/moderation"
)

const defaultInterval = 6 * time.Hour

// Moderator runs a bulk pass over the catalog.
type Moderator interface {
	ModerateAll(ctx context.Context) (modsvc.BulkResult, error)
}

// Job periodically re-moderates the whole catalog so threshold or heuristic
// changes propagate to items scanned under older rules.
type Job struct {
	moderator Moderator
	interval  time.Duration
	logger    *zap.Logger
}

func New(moderator Moderator, interval time.Duration, logger *zap.Logger) *Job {
	if interval <= 0 {
		interval = defaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Job{moderator: moderator, interval: interval, logger: logger}
}

// Start blocks until ctx is cancelled, running one pass per interval.
func (j *Job) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := j.Run(ctx); err != nil {
				j.logger.Error("rescan pass failed", zap.Error(err))
			}
		}
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.moderator == nil {
		return nil
	}

	result, err := j.moderator.ModerateAll(ctx)
	if err != nil {
		return err
	}

	j.logger.Info("rescan pass completed",
		zap.Int("processed", result.Processed),
		zap.Int("approved", result.Approved),
		zap.Int("rejected", result.Rejected),
		zap.Int("pending", result.Pending),
		zap.Int("errors", len(result.Errors)),
	)
	return nil
}
