package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// NewTask JSON-encodes payload into a task of typeName
func NewTask(typeName string, payload any, opts ...asynq.Option) (*asynq.Task, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", typeName, err)
	}
	return asynq.NewTask(typeName, raw, opts...), nil
}

// Enqueue builds and enqueues a task in one step
func Enqueue(ctx context.Context, client Enqueuer, typeName string, payload any, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	task, err := NewTask(typeName, payload, opts...)
	if err != nil {
		return nil, err
	}
	info, err := client.EnqueueContext(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("enqueue %s: %w", typeName, err)
	}
	return info, nil
}

// Decode unmarshals a task payload
func Decode[T any](task *asynq.Task) (T, error) {
	var payload T
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, fmt.Errorf("unmarshal %s payload: %w", task.Type(), err)
	}
	return payload, nil
}
