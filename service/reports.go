package service

import (
	"context"

	"finreport/dto"
	"finreport/models"
	"finreport/pkg/crud"

	"gorm.io/gorm"
)

var reportSchema = crud.Schema{Name: "Report", Columns: dto.ReportSortColumns}

type (
	ReportFinancialData = Children[models.Report, models.FinancialData, dto.FinancialData, dto.FinancialDataWhereInput]
	ReportSummaries     = Children[models.Report, models.Summary, dto.Summary, dto.SummaryWhereInput]
)

// Reports serves the Report resource and its two child relations.
type Reports struct {
	*resource[models.Report, dto.Report, dto.ReportWhereInput]

	FinancialDataItems *ReportFinancialData
	Summaries          *ReportSummaries
}

func newReports(db *gorm.DB, items *resource[models.FinancialData, dto.FinancialData, dto.FinancialDataWhereInput], summaries *resource[models.Summary, dto.Summary, dto.SummaryWhereInput]) *Reports {
	childIDs := []string{"id", "report_id"}
	return &Reports{
		resource: newResource[models.Report, dto.Report, dto.ReportWhereInput](db, reportSchema, dto.ReportFromModel,
			crud.Preload{Association: "FinancialDataItems", Columns: childIDs},
			crud.Preload{Association: "Summaries", Columns: childIDs},
		),
		FinancialDataItems: newChildren[models.Report](db, "financialDataItems", "report_id", items),
		Summaries:          newChildren[models.Report](db, "summaries", "report_id", summaries),
	}
}

// Create inserts the report. Child ids in the input are attached to it and
// ids that do not resolve are skipped.
func (s *Reports) Create(ctx context.Context, in dto.ReportCreateInput) (dto.Report, error) {
	rec := in.Model()
	return s.create(ctx, &rec, nil, func(tx *gorm.DB) error {
		return s.assignChildren(ctx, tx, rec.ID, in.FinancialDataItems, in.Summaries)
	})
}

// Update merges the sent fields. A sent child id list replaces the
// corresponding collection.
func (s *Reports) Update(ctx context.Context, id string, in dto.ReportUpdateInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return s.update(ctx, id, in.Changes(), func(tx *gorm.DB, _ map[string]any) error {
		return s.assignChildren(ctx, tx, id, in.FinancialDataItems, in.Summaries)
	})
}

func (s *Reports) assignChildren(ctx context.Context, tx *gorm.DB, id string, items, summaries dto.IDList) error {
	if items != nil {
		if err := s.FinancialDataItems.assign(ctx, tx, id, items.Strings()); err != nil {
			return err
		}
	}
	if summaries != nil {
		if err := s.Summaries.assign(ctx, tx, id, summaries.Strings()); err != nil {
			return err
		}
	}
	return nil
}
