package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"pubops-backend/internal/domains/access/model"
	"pubops-backend/internal/infrastructure/metrics"
	"pubops-backend/internal/shared"
)

// GrantReader is the lookup side of the ownership mapping
type GrantReader interface {
	ListResourceIDs(ctx context.Context, userID int64, kind model.Kind) ([]int64, error)
}

// ScopeResolver is what domain services depend on
type ScopeResolver interface {
	Resolve(ctx context.Context, actor shared.Actor, kind model.Kind) (model.Scope, error)
	ResolveBooks(ctx context.Context, actor shared.Actor) (model.BookScope, error)
}

// Resolver derives an actor's access scope per request. Nothing is cached:
// grant changes take effect on the next request.
type Resolver struct {
	grants GrantReader
}

func NewResolver(grants GrantReader) *Resolver {
	return &Resolver{grants: grants}
}

// Resolve returns the actor's scope for kind. Administrators are
// unrestricted without a lookup. On lookup failure the scope is Deny()
// and the error is returned, so callers can never fall open.
func (r *Resolver) Resolve(ctx context.Context, actor shared.Actor, kind model.Kind) (model.Scope, error) {
	if !kind.Valid() {
		metrics.AccessScopeResolutions.WithLabelValues("error").Inc()
		return model.Deny(), model.NewInvalidKind(string(kind))
	}

	if actor.IsAdmin() {
		metrics.AccessScopeResolutions.WithLabelValues("unrestricted").Inc()
		return model.Unrestricted(), nil
	}

	ids, err := r.grants.ListResourceIDs(ctx, actor.ID, kind)
	if err != nil {
		metrics.AccessScopeResolutions.WithLabelValues("error").Inc()
		log.Error().Err(err).Int64("actor_id", actor.ID).Str("kind", string(kind)).Msg("access scope lookup failed")
		return model.Deny(), fmt.Errorf("resolve %s scope: %w", kind, err)
	}

	if len(ids) == 0 {
		metrics.AccessScopeResolutions.WithLabelValues("empty").Inc()
		return model.Deny(), nil
	}

	metrics.AccessScopeResolutions.WithLabelValues("scoped").Inc()
	return model.NewScope(ids), nil
}

// ResolveBooks combines the imprint and explicit book scopes
func (r *Resolver) ResolveBooks(ctx context.Context, actor shared.Actor) (model.BookScope, error) {
	imprints, err := r.Resolve(ctx, actor, model.KindImprint)
	if err != nil {
		return model.BookScope{}, err
	}

	books, err := r.Resolve(ctx, actor, model.KindBook)
	if err != nil {
		return model.BookScope{}, err
	}

	return model.BookScope{Imprints: imprints, Books: books}, nil
}
