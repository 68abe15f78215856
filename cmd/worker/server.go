package main

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"pubops-backend/internal/config"
	"pubops-backend/internal/infrastructure/queue"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
)

// newWorkerServer configures asynq with the two application queues.
// Maintenance work (object cleanup) gets a smaller share than consolidation.
func newWorkerServer(cfg *config.Config) *asynq.Server {
	return asynq.NewServer(
		queue.RedisOpt(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				shared.QueueDefault:     6,
				shared.QueueMaintenance: 3,
			},
			ShutdownTimeout: 30 * time.Second,
			RetryDelayFunc:  retryDelay,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				log.Error().
					Err(err).
					Str("type", task.Type()).
					Str("code", apperror.CodeOf(err)).
					Int("retried", retried).
					Int("max_retry", maxRetry).
					Msg("task failed")
			}),
		},
	)
}

// retryDelay waits out a held consolidation lock instead of backing off exponentially
func retryDelay(n int, err error, task *asynq.Task) time.Duration {
	if task.Type() == shared.TypeConsolidateContributors && apperror.IsConflict(err) {
		return time.Minute
	}
	return asynq.DefaultRetryDelayFunc(n, err, task)
}
