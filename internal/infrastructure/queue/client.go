package queue

import (
	"context"

	"github.com/hibiken/asynq"
)

// Enqueuer is the subset of *asynq.Client that services depend on
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func NewClient(redisAddr, password string, db int) *asynq.Client {
	return asynq.NewClient(RedisOpt(redisAddr, password, db))
}

func RedisOpt(redisAddr, password string, db int) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	}
}
