package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"pubops-backend/internal/domains/contributor/model"
)

// RuleReader is the lookup side of the assignment uniqueness rules
type RuleReader interface {
	GetForUpdateWithTx(ctx context.Context, tx pgx.Tx, id int64) (*model.Contributor, error)
	RoleExistsWithTx(ctx context.Context, tx pgx.Tx, a model.Assignment, excludeID int64) (bool, error)
	RoleHoldersWithTx(ctx context.Context, tx pgx.Tx, a model.Assignment, excludeID int64) ([]model.Contributor, error)
}

// Rules rejects duplicate role assignments before the unique constraint
// would, so callers get a descriptive code.
type Rules struct {
	repo RuleReader
}

func NewRules(repo RuleReader) *Rules {
	return &Rules{repo: repo}
}

// CheckAssignment validates candidate against every assignment except the
// row excludeID (0 on create). The exact triple is checked first, then a
// different contributor with the same published and legal name holding
// the same role on the same book.
func (r *Rules) CheckAssignment(ctx context.Context, tx pgx.Tx, candidate model.Assignment, excludeID int64) error {
	exists, err := r.repo.RoleExistsWithTx(ctx, tx, candidate, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return model.NewDuplicateBookContributorRole(candidate)
	}

	contributor, err := r.repo.GetForUpdateWithTx(ctx, tx, candidate.ContributorID)
	if err != nil {
		return err
	}
	if contributor == nil {
		return model.NewUnknownContributor(candidate.ContributorID)
	}

	holders, err := r.repo.RoleHoldersWithTx(ctx, tx, candidate, excludeID)
	if err != nil {
		return err
	}
	for _, h := range holders {
		if h.ID != contributor.ID && contributor.SamePerson(h) {
			return model.NewDuplicateContributorRole(candidate, h.ID)
		}
	}
	return nil
}
