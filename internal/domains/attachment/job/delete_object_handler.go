package job

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"pubops-backend/internal/infrastructure/queue"
	"pubops-backend/internal/shared"
)

// ObjectRemover deletes stored objects
type ObjectRemover interface {
	Delete(ctx context.Context, key string) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// DeleteObjectHandler processes attachment:delete_object tasks
type DeleteObjectHandler struct {
	store ObjectRemover
}

func NewDeleteObjectHandler(store ObjectRemover) *DeleteObjectHandler {
	return &DeleteObjectHandler{store: store}
}

func (h *DeleteObjectHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.Decode[shared.DeleteObjectPayload](task)
	if err != nil {
		log.Error().Err(err).Msg("failed to decode delete object payload")
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	switch {
	case payload.ObjectKey != "":
		if err := h.store.Delete(ctx, payload.ObjectKey); err != nil {
			return fmt.Errorf("delete object %s: %w", payload.ObjectKey, err)
		}
		log.Info().Str("object_key", payload.ObjectKey).Msg("attachment object deleted")
	case payload.Prefix != "":
		if err := h.store.DeleteByPrefix(ctx, payload.Prefix); err != nil {
			return fmt.Errorf("delete objects under %s: %w", payload.Prefix, err)
		}
		log.Info().Str("prefix", payload.Prefix).Msg("attachment objects deleted")
	default:
		log.Warn().Msg("delete object task without key or prefix")
		return fmt.Errorf("%w: empty delete object payload", asynq.SkipRetry)
	}
	return nil
}
