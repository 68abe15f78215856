package service

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	accessModel "pubops-backend/internal/domains/access/model"
	accessService "pubops-backend/internal/domains/access/service"
	"pubops-backend/internal/domains/history/model"
	"pubops-backend/internal/domains/history/repository"
	"pubops-backend/internal/shared"
	"pubops-backend/internal/shared/utils"
)

// MaxExportRows caps a single spreadsheet export
const MaxExportRows = 10000

// ServiceInterface is the read side of the change history
type ServiceInterface interface {
	List(ctx context.Context, actor shared.Actor, entityType model.EntityType, entityID int64, page utils.Page) ([]model.ChangeRecord, int64, error)
	Export(ctx context.Context, actor shared.Actor, entityType model.EntityType, entityID int64) (*excelize.File, error)
}

type historyService struct {
	repo     repository.RepositoryInterface
	owners   repository.OwnerLookup
	resolver accessService.ScopeResolver
}

func NewHistoryService(repo repository.RepositoryInterface, owners repository.OwnerLookup, resolver accessService.ScopeResolver) ServiceInterface {
	return &historyService{repo: repo, owners: owners, resolver: resolver}
}

func (s *historyService) List(ctx context.Context, actor shared.Actor, entityType model.EntityType, entityID int64, page utils.Page) ([]model.ChangeRecord, int64, error) {
	if err := s.ensureVisible(ctx, actor, entityType, entityID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByEntity(ctx, entityType, entityID, page)
}

func (s *historyService) Export(ctx context.Context, actor shared.Actor, entityType model.EntityType, entityID int64) (*excelize.File, error) {
	if err := s.ensureVisible(ctx, actor, entityType, entityID); err != nil {
		return nil, err
	}

	records, err := s.repo.ListAllByEntity(ctx, entityType, entityID, MaxExportRows)
	if err != nil {
		return nil, err
	}
	return buildHistoryWorkbook(entityType, entityID, records)
}

// ensureVisible applies the owning resource's read scope. Entities that
// no longer exist are only visible to administrators.
func (s *historyService) ensureVisible(ctx context.Context, actor shared.Actor, entityType model.EntityType, entityID int64) error {
	if !entityType.Valid() {
		return model.NewInvalidEntityType(string(entityType))
	}
	if actor.IsAdmin() {
		return nil
	}

	notFound := model.NewEntityNotFound(entityType, entityID)

	switch entityType {
	case model.EntityContributor:
		return nil

	case model.EntityImprint:
		scope, err := s.resolver.Resolve(ctx, actor, accessModel.KindImprint)
		if err != nil {
			return err
		}
		if err := accessModel.CheckRead(scope.Allows(entityID), notFound); err != nil {
			return err
		}
		exists, err := s.owners.ImprintExists(ctx, entityID)
		if err != nil {
			return err
		}
		return accessModel.CheckRead(exists, notFound)

	default:
		bookID, imprintID, found, err := s.owners.BookOwner(ctx, entityType, entityID)
		if err != nil {
			return err
		}
		if !found {
			return notFound
		}
		scope, err := s.resolver.ResolveBooks(ctx, actor)
		if err != nil {
			return err
		}
		return accessModel.CheckRead(scope.Allows(bookID, imprintID), notFound)
	}
}

func buildHistoryWorkbook(entityType model.EntityType, entityID int64, records []model.ChangeRecord) (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "History"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headers := []string{"Record ID", "Entity Type", "Entity ID", "Timestamp", "Actor ID", "Actor Email", "Op", "Path", "Value"}
	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		f.SetCellStyle(sheetName, "A1", "I1", headerStyle)
	}

	for i, rec := range records {
		row := i + 2
		cell := func(col int) string {
			name, _ := excelize.CoordinatesToCellName(col, row)
			return name
		}

		f.SetCellValue(sheetName, cell(1), rec.ID)
		f.SetCellValue(sheetName, cell(2), string(entityType))
		f.SetCellValue(sheetName, cell(3), entityID)
		f.SetCellValue(sheetName, cell(4), rec.Timestamp.UTC().Format("2006-01-02 15:04:05.000"))
		f.SetCellValue(sheetName, cell(5), rec.ActorID)
		f.SetCellValue(sheetName, cell(6), rec.ActorEmail)
		f.SetCellValue(sheetName, cell(7), string(rec.Op))
		f.SetCellValue(sheetName, cell(8), rec.Path)
		if rec.Value != nil {
			f.SetCellValue(sheetName, cell(9), string(rec.Value))
		} else {
			f.SetCellValue(sheetName, cell(9), "null")
		}
	}

	return f, nil
}
