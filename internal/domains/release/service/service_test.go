package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessService "pubops-backend/internal/domains/access/service"
	historyModel "pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/recorder"
	"pubops-backend/internal/domains/release/model"
	"pubops-backend/internal/shared/apperror"
	"pubops-backend/internal/shared/utils"
	"pubops-backend/internal/testhelpers"
)

type mockRepository struct {
	releases map[int64]model.Release
	prices   map[int64]model.Price
	nextID   int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{releases: map[int64]model.Release{}, prices: map[int64]model.Price{}, nextID: 100}
}

func (m *mockRepository) detail(r model.Release) model.ReleaseDetail {
	d := model.ReleaseDetail{Release: r, BookTitle: "Book", Prices: []model.Price{}}
	for _, p := range m.prices {
		if p.ReleaseID == r.ID {
			d.Prices = append(d.Prices, p)
		}
	}
	return d
}

func (m *mockRepository) ListByBook(_ context.Context, bookID int64) ([]model.ReleaseDetail, error) {
	out := []model.ReleaseDetail{}
	for _, r := range m.releases {
		if r.BookID == bookID {
			out = append(out, m.detail(r))
		}
	}
	return out, nil
}

func (m *mockRepository) GetByID(_ context.Context, id int64) (*model.ReleaseDetail, error) {
	r, ok := m.releases[id]
	if !ok {
		return nil, nil
	}
	d := m.detail(r)
	return &d, nil
}

func (m *mockRepository) GetForUpdateWithTx(_ context.Context, _ pgx.Tx, id int64) (*model.Release, error) {
	r, ok := m.releases[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *mockRepository) CreateWithTx(_ context.Context, _ pgx.Tx, r *model.Release) error {
	m.nextID++
	r.ID = m.nextID
	m.releases[r.ID] = *r
	return nil
}

func (m *mockRepository) UpdateWithTx(_ context.Context, _ pgx.Tx, r *model.Release) error {
	m.releases[r.ID] = *r
	return nil
}

func (m *mockRepository) DeleteWithTx(_ context.Context, _ pgx.Tx, id int64) error {
	delete(m.releases, id)
	for pid, p := range m.prices {
		if p.ReleaseID == id {
			delete(m.prices, pid)
		}
	}
	return nil
}

func (m *mockRepository) ListPricesWithTx(_ context.Context, _ pgx.Tx, releaseID int64) ([]model.Price, error) {
	return m.detail(model.Release{ID: releaseID}).Prices, nil
}

func (m *mockRepository) GetPriceForUpdateWithTx(_ context.Context, _ pgx.Tx, id int64) (*model.Price, error) {
	p, ok := m.prices[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *mockRepository) CreatePriceWithTx(_ context.Context, _ pgx.Tx, p *model.Price) error {
	for _, existing := range m.prices {
		if existing.ReleaseID == p.ReleaseID && existing.Currency == p.Currency {
			return &pgconn.PgError{Code: "23505", ConstraintName: "release_prices_release_currency_key"}
		}
	}
	m.nextID++
	p.ID = m.nextID
	m.prices[p.ID] = *p
	return nil
}

func (m *mockRepository) UpdatePriceWithTx(_ context.Context, _ pgx.Tx, p *model.Price) error {
	m.prices[p.ID] = *p
	return nil
}

func (m *mockRepository) DeletePriceWithTx(_ context.Context, _ pgx.Tx, id int64) error {
	delete(m.prices, id)
	return nil
}

type fixture struct {
	svc  ServiceInterface
	repo *mockRepository
	log  *testhelpers.HistoryLog
}

// setup grants the editor imprint 3, which owns book 42; book 50 belongs to imprint 9
func setup() fixture {
	f := fixture{repo: newMockRepository(), log: &testhelpers.HistoryLog{}}
	gate := accessService.NewBookGate(&testhelpers.Resolver{Imprints: []int64{3}}, testhelpers.Books{42: 3, 50: 9})
	f.svc = NewReleaseService(f.repo, &testhelpers.Transactor{}, gate, recorder.New(f.log))
	return f
}

func paths(records []historyModel.ChangeRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Path)
	}
	return out
}

func TestCreateRelease(t *testing.T) {
	f := setup()

	rel, err := f.svc.Create(context.Background(), testhelpers.Editor, 42, model.CreateReleaseRequest{Format: model.FormatEbook})
	require.NoError(t, err)

	assert.Equal(t, model.StatusPlanned, rel.Status)
	assert.Equal(t, []string{"/book_id", "/format", "/status"}, paths(f.log.For(historyModel.EntityRelease, rel.ID)))
}

func TestCreateRelease_Access(t *testing.T) {
	f := setup()

	_, err := f.svc.Create(context.Background(), testhelpers.Editor, 50, model.CreateReleaseRequest{Format: model.FormatEbook})
	assert.Equal(t, "ACCESS_DENIED", apperror.CodeOf(err))

	_, err = f.svc.Create(context.Background(), testhelpers.Editor, 404, model.CreateReleaseRequest{Format: model.FormatEbook})
	assert.Equal(t, "BOOK_NOT_FOUND", apperror.CodeOf(err))

	_, err = f.svc.Create(context.Background(), testhelpers.Editor, 42, model.CreateReleaseRequest{Format: "scroll"})
	assert.True(t, apperror.IsValidation(err))

	assert.Empty(t, f.repo.releases)
}

func TestGetRelease_OutOfScopeIsNotFound(t *testing.T) {
	f := setup()
	f.repo.releases[1] = model.Release{ID: 1, BookID: 50, Format: model.FormatPaperback}

	_, err := f.svc.Get(context.Background(), testhelpers.Editor, 1)
	assert.Equal(t, "RELEASE_NOT_FOUND", apperror.CodeOf(err))

	rel, err := f.svc.Get(context.Background(), testhelpers.Admin, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(50), rel.BookID)
}

func TestPatchRelease_ClearsDate(t *testing.T) {
	f := setup()
	date := utils.NewDate(2026, time.March, 1)
	f.repo.releases[1] = model.Release{ID: 1, BookID: 42, Format: model.FormatPaperback, Status: model.StatusPlanned, ReleaseDate: &date}

	var req model.UpdateReleaseRequest
	require.NoError(t, json.Unmarshal([]byte(`{"release_date": null, "status": "scheduled"}`), &req))

	rel, err := f.svc.Patch(context.Background(), testhelpers.Editor, 1, req)
	require.NoError(t, err)
	assert.Nil(t, rel.ReleaseDate)

	records := f.log.For(historyModel.EntityRelease, 1)
	require.Len(t, records, 2)
	assert.Equal(t, historyModel.OpRemove, records[0].Op)
	assert.Equal(t, "/release_date", records[0].Path)
	assert.Equal(t, historyModel.OpReplace, records[1].Op)
	assert.JSONEq(t, `"scheduled"`, string(records[1].Value))
}

func TestAddPrice(t *testing.T) {
	f := setup()
	f.repo.releases[1] = model.Release{ID: 1, BookID: 42, Format: model.FormatHardcover}

	p, err := f.svc.AddPrice(context.Background(), testhelpers.Editor, 1, model.CreatePriceRequest{
		Currency: "eur",
		Amount:   decimal.RequireFromString("24.999"),
	})
	require.NoError(t, err)
	assert.Equal(t, "EUR", p.Currency)
	assert.True(t, decimal.RequireFromString("25.00").Equal(p.Amount))

	records := f.log.For(historyModel.EntityPrice, p.ID)
	assert.Equal(t, []string{"/amount", "/currency", "/release_id"}, paths(records))

	_, err = f.svc.AddPrice(context.Background(), testhelpers.Editor, 1, model.CreatePriceRequest{Currency: "EUR", Amount: decimal.NewFromInt(10)})
	assert.Equal(t, "DUPLICATE_PRICE", apperror.Translate(err).Code)
}

func TestAddPrice_Invalid(t *testing.T) {
	f := setup()
	f.repo.releases[1] = model.Release{ID: 1, BookID: 42}

	tests := []model.CreatePriceRequest{
		{Currency: "EUR", Amount: decimal.Zero},
		{Currency: "EUR", Amount: decimal.NewFromInt(-5)},
		{Currency: "EURO", Amount: decimal.NewFromInt(5)},
		{Currency: "", Amount: decimal.NewFromInt(5)},
	}
	for _, req := range tests {
		_, err := f.svc.AddPrice(context.Background(), testhelpers.Editor, 1, req)
		assert.True(t, apperror.IsValidation(err), "%+v", req)
	}
	assert.Empty(t, f.repo.prices)
}

func TestPatchPrice_MustBelongToRelease(t *testing.T) {
	f := setup()
	f.repo.releases[1] = model.Release{ID: 1, BookID: 42}
	f.repo.releases[2] = model.Release{ID: 2, BookID: 42}
	f.repo.prices[7] = model.Price{ID: 7, ReleaseID: 2, Currency: "USD", Amount: decimal.NewFromInt(20)}

	amount := decimal.NewFromInt(18)
	_, err := f.svc.PatchPrice(context.Background(), testhelpers.Editor, 1, 7, model.UpdatePriceRequest{Amount: &amount})
	assert.Equal(t, "PRICE_NOT_FOUND", apperror.CodeOf(err))

	p, err := f.svc.PatchPrice(context.Background(), testhelpers.Editor, 2, 7, model.UpdatePriceRequest{Amount: &amount})
	require.NoError(t, err)
	assert.True(t, amount.Equal(p.Amount))
	assert.Equal(t, []string{"/amount"}, paths(f.log.For(historyModel.EntityPrice, 7)))
}

func TestRemoveRelease_RecordsPriceRemovals(t *testing.T) {
	f := setup()
	f.repo.releases[1] = model.Release{ID: 1, BookID: 42, Format: model.FormatEbook, Status: model.StatusPlanned}
	f.repo.prices[7] = model.Price{ID: 7, ReleaseID: 1, Currency: "USD", Amount: decimal.NewFromInt(20)}

	require.NoError(t, f.svc.Remove(context.Background(), testhelpers.Editor, 1))

	assert.Empty(t, f.repo.releases)
	assert.Empty(t, f.repo.prices)
	assert.Len(t, f.log.For(historyModel.EntityPrice, 7), 3)
	assert.Len(t, f.log.For(historyModel.EntityRelease, 1), 3)
}

func TestRemoveRelease_OutOfScope(t *testing.T) {
	f := setup()
	f.repo.releases[1] = model.Release{ID: 1, BookID: 50, Format: model.FormatEbook}

	err := f.svc.Remove(context.Background(), testhelpers.Editor, 1)

	assert.Equal(t, "ACCESS_DENIED", apperror.CodeOf(err))
	assert.Contains(t, f.repo.releases, int64(1))
}
