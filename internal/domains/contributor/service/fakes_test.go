package service

import (
	"context"
	"maps"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pubops-backend/internal/domains/contributor/model"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/infrastructure/cache"
	"pubops-backend/internal/shared/utils"
	"pubops-backend/pkg/database"
)

// fakeRepository is an in-memory contributor store that enforces the same
// unique and foreign key constraints as the schema
type fakeRepository struct {
	contributors map[int64]model.Contributor
	roles        map[int64]model.BookContributorRole
	books        map[int64]int64 // book id -> imprint id
	nextID       int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		contributors: map[int64]model.Contributor{},
		roles:        map[int64]model.BookContributorRole{},
		books:        map[int64]int64{42: 3, 50: 9},
		nextID:       1000,
	}
}

func (f *fakeRepository) addContributor(id int64, published, legal string) {
	f.contributors[id] = model.Contributor{ID: id, PublishedName: published, LegalName: legal}
}

func (f *fakeRepository) addRole(id, bookID, contributorID int64, role model.Role) {
	f.roles[id] = model.BookContributorRole{ID: id, BookID: bookID, ContributorID: contributorID, Role: role}
}

func (f *fakeRepository) clone() *fakeRepository {
	return &fakeRepository{
		contributors: maps.Clone(f.contributors),
		roles:        maps.Clone(f.roles),
		books:        maps.Clone(f.books),
		nextID:       f.nextID,
	}
}

func (f *fakeRepository) restore(from *fakeRepository) {
	f.contributors, f.roles, f.books, f.nextID = from.contributors, from.roles, from.books, from.nextID
}

func (f *fakeRepository) sortedContributors(match func(model.Contributor) bool) []model.Contributor {
	out := []model.Contributor{}
	for _, c := range f.contributors {
		if match(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRepository) Find(_ context.Context, _ model.Filter) ([]model.Contributor, int64, error) {
	out := f.sortedContributors(func(model.Contributor) bool { return true })
	return out, int64(len(out)), nil
}

func (f *fakeRepository) GetByID(_ context.Context, id int64) (*model.Contributor, error) {
	c, ok := f.contributors[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeRepository) GetForUpdateWithTx(ctx context.Context, _ pgx.Tx, id int64) (*model.Contributor, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRepository) FindByPublishedNameWithTx(_ context.Context, _ pgx.Tx, normalized string) ([]model.Contributor, error) {
	return f.sortedContributors(func(c model.Contributor) bool {
		return utils.NormalizeName(c.PublishedName) == normalized
	}), nil
}

func (f *fakeRepository) CreateWithTx(_ context.Context, _ pgx.Tx, c *model.Contributor) error {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now()
	f.contributors[c.ID] = *c
	return nil
}

func (f *fakeRepository) UpdateWithTx(_ context.Context, _ pgx.Tx, c *model.Contributor) error {
	f.contributors[c.ID] = *c
	return nil
}

func (f *fakeRepository) DeleteWithTx(_ context.Context, _ pgx.Tx, id int64) error {
	for _, r := range f.roles {
		if r.ContributorID == id {
			return &pgconn.PgError{Code: "23503", ConstraintName: "book_contributor_roles_contributor_id_fkey"}
		}
	}
	delete(f.contributors, id)
	return nil
}

func (f *fakeRepository) ListRolesByBook(_ context.Context, bookID int64) ([]model.RoleDetail, error) {
	out := []model.RoleDetail{}
	for _, r := range f.sortedRoles() {
		if r.BookID == bookID {
			c := f.contributors[r.ContributorID]
			out = append(out, model.RoleDetail{BookContributorRole: r, PublishedName: c.PublishedName, LegalName: c.LegalName})
		}
	}
	return out, nil
}

func (f *fakeRepository) sortedRoles() []model.BookContributorRole {
	out := make([]model.BookContributorRole, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeRepository) GetRoleForUpdateWithTx(_ context.Context, _ pgx.Tx, id int64) (*model.BookContributorRole, error) {
	r, ok := f.roles[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeRepository) ListRolesByContributorWithTx(_ context.Context, _ pgx.Tx, contributorID int64) ([]model.BookContributorRole, error) {
	out := []model.BookContributorRole{}
	for _, r := range f.sortedRoles() {
		if r.ContributorID == contributorID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepository) RoleExistsWithTx(_ context.Context, _ pgx.Tx, a model.Assignment, excludeID int64) (bool, error) {
	for _, r := range f.roles {
		if r.ID != excludeID && r.BookID == a.BookID && r.ContributorID == a.ContributorID && r.Role == a.Role {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepository) RoleHoldersWithTx(_ context.Context, _ pgx.Tx, a model.Assignment, excludeID int64) ([]model.Contributor, error) {
	holders := map[int64]bool{}
	for _, r := range f.roles {
		if r.ID != excludeID && r.BookID == a.BookID && r.Role == a.Role && r.ContributorID != a.ContributorID {
			holders[r.ContributorID] = true
		}
	}
	return f.sortedContributors(func(c model.Contributor) bool { return holders[c.ID] }), nil
}

func (f *fakeRepository) checkTriple(role *model.BookContributorRole) error {
	for _, r := range f.roles {
		if r.ID != role.ID && r.BookID == role.BookID && r.ContributorID == role.ContributorID && r.Role == role.Role {
			return &pgconn.PgError{Code: "23505", ConstraintName: "book_contributor_roles_book_contributor_role_key"}
		}
	}
	return nil
}

func (f *fakeRepository) CreateRoleWithTx(_ context.Context, _ pgx.Tx, role *model.BookContributorRole) error {
	if err := f.checkTriple(role); err != nil {
		return err
	}
	f.nextID++
	role.ID = f.nextID
	f.roles[role.ID] = *role
	return nil
}

func (f *fakeRepository) UpdateRoleWithTx(_ context.Context, _ pgx.Tx, role *model.BookContributorRole) error {
	if err := f.checkTriple(role); err != nil {
		return err
	}
	f.roles[role.ID] = *role
	return nil
}

func (f *fakeRepository) DeleteRoleWithTx(_ context.Context, _ pgx.Tx, id int64) error {
	delete(f.roles, id)
	return nil
}

func (f *fakeRepository) BookImprint(_ context.Context, bookID int64) (int64, bool, error) {
	imprint, ok := f.books[bookID]
	return imprint, ok, nil
}

// rollbackTransactor restores the fake store when fn fails
type rollbackTransactor struct {
	repo *fakeRepository
}

func (t *rollbackTransactor) WithTransaction(_ context.Context, fn database.TxFunc) error {
	snapshot := t.repo.clone()
	if err := fn(nil); err != nil {
		t.repo.restore(snapshot)
		return err
	}
	return nil
}

type fakeReassigner struct {
	counts map[int64]int64 // source id -> records held
	moves  [][2]int64
}

func (f *fakeReassigner) ReassignWithTx(_ context.Context, _ pgx.Tx, _ historyModel.EntityType, fromID, toID int64) (int64, error) {
	n := f.counts[fromID]
	f.counts[toID] += n
	delete(f.counts, fromID)
	f.moves = append(f.moves, [2]int64{fromID, toID})
	return n, nil
}

type fakeLock struct{ locker *fakeLocker }

func (l *fakeLock) Release(context.Context) error {
	l.locker.held = false
	l.locker.releases++
	return nil
}

type fakeLocker struct {
	held     bool
	releases int
}

func (f *fakeLocker) AcquireLock(context.Context, string, time.Duration) (cache.Releaser, error) {
	if f.held {
		return nil, cache.ErrLockHeld
	}
	f.held = true
	return &fakeLock{locker: f}, nil
}
