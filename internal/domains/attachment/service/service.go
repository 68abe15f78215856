package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	accessService "pubops-backend/internal/domains/access/service"
	"pubops-backend/internal/domains/attachment/model"
	"pubops-backend/internal/domains/attachment/repository"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/recorder"
	"pubops-backend/internal/infrastructure/queue"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/pkg/database"
)

// ObjectStore is the part of the object storage the API process needs.
// Deletes go through the worker.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

type ServiceInterface interface {
	ListByBook(ctx context.Context, actor shared.Actor, bookID int64) ([]model.Attachment, error)
	Upload(ctx context.Context, actor shared.Actor, bookID int64, upload model.Upload) (*model.Attachment, error)
	// Open returns the metadata and a reader over the content. Caller closes it.
	Open(ctx context.Context, actor shared.Actor, id int64) (*model.Attachment, io.ReadCloser, error)
	Remove(ctx context.Context, actor shared.Actor, id int64) error
}

type attachmentService struct {
	repo     repository.RepositoryInterface
	tx       database.Transactor
	gate     *accessService.BookGate
	history  recorder.ChangeRecorder
	store    ObjectStore
	jobs     queue.Enqueuer
	maxBytes int64
}

func NewAttachmentService(
	repo repository.RepositoryInterface,
	tx database.Transactor,
	gate *accessService.BookGate,
	history recorder.ChangeRecorder,
	store ObjectStore,
	jobs queue.Enqueuer,
	maxBytes int64,
) ServiceInterface {
	if maxBytes <= 0 {
		maxBytes = model.DefaultMaxUploadBytes
	}
	return &attachmentService{
		repo:     repo,
		tx:       tx,
		gate:     gate,
		history:  history,
		store:    store,
		jobs:     jobs,
		maxBytes: maxBytes,
	}
}

func (s *attachmentService) ListByBook(ctx context.Context, actor shared.Actor, bookID int64) ([]model.Attachment, error) {
	if err := s.gate.Read(ctx, actor, bookID); err != nil {
		return nil, err
	}
	return s.repo.ListByBook(ctx, bookID)
}

// Upload stores the object first and then writes the metadata row. If the
// row cannot be written the orphaned object is queued for deletion.
func (s *attachmentService) Upload(ctx context.Context, actor shared.Actor, bookID int64, upload model.Upload) (*model.Attachment, error) {
	if upload.Body == nil || upload.Size <= 0 {
		return nil, model.NewMissingFile()
	}
	if upload.Size > s.maxBytes {
		return nil, model.NewFileTooLarge(upload.Size, s.maxBytes)
	}
	if err := s.gate.Write(ctx, actor, bookID); err != nil {
		return nil, err
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := model.CleanFileName(upload.FileName)

	a := &model.Attachment{
		BookID:      bookID,
		FileName:    name,
		ContentType: contentType,
		SizeBytes:   upload.Size,
		ObjectKey:   model.ObjectKey(bookID, uuid.NewString(), name),
		CreatedBy:   &actor.ID,
	}

	if err := s.store.Put(ctx, a.ObjectKey, upload.Body, upload.Size, contentType); err != nil {
		log.Error().Err(err).Str("object_key", a.ObjectKey).Msg("attachment upload failed")
		return nil, apperror.Storage(err)
	}

	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		if err := s.repo.CreateWithTx(ctx, tx, a); err != nil {
			return err
		}
		return s.history.RecordCreate(ctx, tx, historyModel.EntityAttachment, a.ID, actor, a)
	})
	if err != nil {
		s.enqueueDelete(ctx, a.ObjectKey)
		return nil, err
	}

	log.Info().
		Int64("attachment_id", a.ID).
		Int64("book_id", bookID).
		Int64("size_bytes", a.SizeBytes).
		Msg("attachment uploaded")
	return a, nil
}

// Open hides attachments of books outside the scope behind ATTACHMENT_NOT_FOUND
func (s *attachmentService) Open(ctx context.Context, actor shared.Actor, id int64) (*model.Attachment, io.ReadCloser, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, model.NewAttachmentNotFound(id)
	}
	if err := s.gate.Read(ctx, actor, a.BookID); err != nil {
		if apperror.IsNotFound(err) {
			return nil, nil, model.NewAttachmentNotFound(id)
		}
		return nil, nil, err
	}

	body, err := s.store.Open(ctx, a.ObjectKey)
	if err != nil {
		log.Error().Err(err).Str("object_key", a.ObjectKey).Msg("attachment download failed")
		return nil, nil, apperror.Storage(err)
	}
	return a, body, nil
}

// Remove deletes the metadata row in a transaction and leaves the object to
// the worker
func (s *attachmentService) Remove(ctx context.Context, actor shared.Actor, id int64) error {
	var removed *model.Attachment
	err := s.tx.WithTransaction(ctx, func(tx pgx.Tx) error {
		current, err := s.repo.GetForUpdateWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return model.NewAttachmentNotFound(id)
		}
		if err := s.gate.Write(ctx, actor, current.BookID); err != nil {
			return err
		}
		if err := s.repo.DeleteWithTx(ctx, tx, id); err != nil {
			return err
		}
		removed = current
		return s.history.RecordDelete(ctx, tx, historyModel.EntityAttachment, id, actor, current)
	})
	if err != nil {
		return err
	}

	log.Info().Int64("attachment_id", id).Int64("actor_id", actor.ID).Msg("attachment removed")
	s.enqueueDelete(ctx, removed.ObjectKey)
	return nil
}

func (s *attachmentService) enqueueDelete(ctx context.Context, key string) {
	payload := shared.DeleteObjectPayload{ObjectKey: key}
	if _, err := queue.Enqueue(ctx, s.jobs, shared.TypeDeleteAttachmentObject, payload,
		asynq.Queue(shared.QueueMaintenance), asynq.MaxRetry(5)); err != nil {
		log.Warn().Err(err).Str("object_key", key).Msg("failed to enqueue object deletion")
	}
}
