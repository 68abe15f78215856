package testhelpers

import (
	"context"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	accessModel "pubops-backend/internal/domains/access/model"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/shared"
	"pubops-backend/pkg/database"
)

// Transactor runs fn with a nil tx. Repositories in unit tests are fakes
// and never touch it.
type Transactor struct {
	Calls int
}

func (t *Transactor) WithTransaction(_ context.Context, fn database.TxFunc) error {
	t.Calls++
	return fn(nil)
}

// Resolver grants a fixed set of ids; administrators are unrestricted
type Resolver struct {
	Imprints []int64
	Books    []int64
	Err      error
}

func (r *Resolver) Resolve(_ context.Context, actor shared.Actor, kind accessModel.Kind) (accessModel.Scope, error) {
	if r.Err != nil {
		return accessModel.Deny(), r.Err
	}
	if actor.IsAdmin() {
		return accessModel.Unrestricted(), nil
	}
	if kind == accessModel.KindImprint {
		return accessModel.NewScope(r.Imprints), nil
	}
	return accessModel.NewScope(r.Books), nil
}

func (r *Resolver) ResolveBooks(ctx context.Context, actor shared.Actor) (accessModel.BookScope, error) {
	imprints, err := r.Resolve(ctx, actor, accessModel.KindImprint)
	if err != nil {
		return accessModel.BookScope{}, err
	}
	books, err := r.Resolve(ctx, actor, accessModel.KindBook)
	if err != nil {
		return accessModel.BookScope{}, err
	}
	return accessModel.BookScope{Imprints: imprints, Books: books}, nil
}

// Books maps book id to owning imprint id
type Books map[int64]int64

func (b Books) BookImprint(_ context.Context, bookID int64) (int64, bool, error) {
	imprintID, ok := b[bookID]
	return imprintID, ok, nil
}

// HistoryLog is an in-memory history appender
type HistoryLog struct {
	mu      sync.Mutex
	Records []historyModel.ChangeRecord
	Err     error
}

func (h *HistoryLog) AppendWithTx(_ context.Context, _ pgx.Tx, records []historyModel.ChangeRecord) error {
	if h.Err != nil {
		return h.Err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Records = append(h.Records, records...)
	return nil
}

// For returns the records of one entity in append order
func (h *HistoryLog) For(entityType historyModel.EntityType, entityID int64) []historyModel.ChangeRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []historyModel.ChangeRecord
	for _, r := range h.Records {
		if r.EntityType == entityType && r.EntityID == entityID {
			out = append(out, r)
		}
	}
	return out
}

// Enqueuer captures tasks instead of sending them to Redis
type Enqueuer struct {
	mu    sync.Mutex
	Tasks []*asynq.Task
	Err   error
}

func (e *Enqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if e.Err != nil {
		return nil, e.Err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Tasks = append(e.Tasks, task)
	return &asynq.TaskInfo{ID: task.Type(), Type: task.Type(), Payload: task.Payload()}, nil
}

var (
	Admin  = shared.Actor{ID: 1, Email: "admin@example.com", Roles: []string{shared.RoleAdmin}}
	Editor = shared.Actor{ID: 7, Email: "editor@example.com"}
)
