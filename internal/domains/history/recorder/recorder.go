// Package recorder turns entity changes into append-only ChangeRecords.
// Every method appends inside the caller's transaction, so a failed append
// fails the primary write with it.
package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/infrastructure/metrics"
	"pubops-backend/internal/shared"
)

// Appender persists normalized records
type Appender interface {
	AppendWithTx(ctx context.Context, tx pgx.Tx, records []model.ChangeRecord) error
}

// ChangeRecorder is what entity services depend on
type ChangeRecorder interface {
	Record(ctx context.Context, tx pgx.Tx, entityType model.EntityType, entityID int64, actor shared.Actor, edits []model.FieldEdit) error
	RecordDiff(ctx context.Context, tx pgx.Tx, entityType model.EntityType, entityID int64, actor shared.Actor, before, after any) error
	RecordCreate(ctx context.Context, tx pgx.Tx, entityType model.EntityType, entityID int64, actor shared.Actor, entity any) error
	RecordDelete(ctx context.Context, tx pgx.Tx, entityType model.EntityType, entityID int64, actor shared.Actor, entity any) error
}

type Recorder struct {
	repo Appender
}

func New(repo Appender) *Recorder {
	return &Recorder{repo: repo}
}

// Record validates edits and appends one ChangeRecord per edit.
// No edits is a no-op.
func (r *Recorder) Record(ctx context.Context, tx pgx.Tx, entityType model.EntityType, entityID int64, actor shared.Actor, edits []model.FieldEdit) error {
	if len(edits) == 0 {
		return nil
	}

	records, err := normalize(entityType, entityID, actor, edits)
	if err != nil {
		return err
	}

	if err := r.repo.AppendWithTx(ctx, tx, records); err != nil {
		return fmt.Errorf("append %s history: %w", entityType, err)
	}

	metrics.HistoryRecordsTotal.WithLabelValues(string(entityType)).Add(float64(len(records)))
	return nil
}

// RecordDiff snapshots before and after and records their difference
func (r *Recorder) RecordDiff(ctx context.Context, tx pgx.Tx, entityType model.EntityType, entityID int64, actor shared.Actor, before, after any) error {
	b, err := Snapshot(before)
	if err != nil {
		return err
	}
	a, err := Snapshot(after)
	if err != nil {
		return err
	}
	return r.Record(ctx, tx, entityType, entityID, actor, Diff(b, a))
}

// RecordCreate records one add per non-null field of entity
func (r *Recorder) RecordCreate(ctx context.Context, tx pgx.Tx, entityType model.EntityType, entityID int64, actor shared.Actor, entity any) error {
	after, err := Snapshot(entity)
	if err != nil {
		return err
	}
	return r.Record(ctx, tx, entityType, entityID, actor, Diff(nil, after))
}

// RecordDelete records one remove per non-null field of entity
func (r *Recorder) RecordDelete(ctx context.Context, tx pgx.Tx, entityType model.EntityType, entityID int64, actor shared.Actor, entity any) error {
	before, err := Snapshot(entity)
	if err != nil {
		return err
	}
	return r.Record(ctx, tx, entityType, entityID, actor, Diff(before, nil))
}

func normalize(entityType model.EntityType, entityID int64, actor shared.Actor, edits []model.FieldEdit) ([]model.ChangeRecord, error) {
	if !entityType.Valid() {
		return nil, model.NewInvalidEntityType(string(entityType))
	}
	if entityID <= 0 {
		return nil, model.NewInvalidChange("entity id must be positive")
	}
	if actor.ID <= 0 {
		return nil, model.NewInvalidChange("change requires an actor")
	}

	records := make([]model.ChangeRecord, 0, len(edits))
	for i, e := range edits {
		if !e.Op.Valid() {
			return nil, model.NewInvalidChange(fmt.Sprintf("edit %d: unknown op %q", i, e.Op))
		}
		if !strings.HasPrefix(e.Path, "/") {
			return nil, model.NewInvalidChange(fmt.Sprintf("edit %d: path %q is not a JSON pointer", i, e.Path))
		}

		var value json.RawMessage
		if e.Op != model.OpRemove {
			raw, err := json.Marshal(e.Value)
			if err != nil {
				return nil, model.NewInvalidChange(fmt.Sprintf("edit %d: value is not JSON-serializable", i)).
					WithDetail("path", e.Path)
			}
			value = raw
		}

		records = append(records, model.ChangeRecord{
			EntityType: entityType,
			EntityID:   entityID,
			ActorID:    actor.ID,
			ActorEmail: actor.Email,
			Op:         e.Op,
			Path:       e.Path,
			Value:      value,
		})
	}
	return records, nil
}
