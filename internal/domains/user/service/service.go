package service

import (
	"context"

	accessModel "pubops-backend/internal/domains/access/model"
	accessService "pubops-backend/internal/domains/access/service"
	"pubops-backend/internal/domains/user/model"
	"pubops-backend/internal/domains/user/repository"
	"pubops-backend/internal/shared"
)

type ServiceInterface interface {
	Me(ctx context.Context, actor shared.Actor) (*model.Me, error)
}

type userService struct {
	repo     repository.RepositoryInterface
	resolver accessService.ScopeResolver
}

func NewUserService(repo repository.RepositoryInterface, resolver accessService.ScopeResolver) ServiceInterface {
	return &userService{repo: repo, resolver: resolver}
}

// Me describes the caller as the API sees them: identity from the token,
// profile fields from the users table when a row exists.
func (s *userService) Me(ctx context.Context, actor shared.Actor) (*model.Me, error) {
	imprints, err := s.resolver.Resolve(ctx, actor, accessModel.KindImprint)
	if err != nil {
		return nil, err
	}
	books, err := s.resolver.Resolve(ctx, actor, accessModel.KindBook)
	if err != nil {
		return nil, err
	}

	me := &model.Me{
		ID:                actor.ID,
		Email:             actor.Email,
		Roles:             actor.Roles,
		AllowedImprintIDs: imprints,
		AllowedBookIDs:    books,
	}
	if me.Roles == nil {
		me.Roles = []string{}
	}

	u, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if u != nil {
		me.FullName = u.FullName
	}
	return me, nil
}
