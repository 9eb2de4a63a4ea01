package service

import (
	"context"
	"fmt"

	"finreport/dto"
	"finreport/models"
	"finreport/pkg/crud"
	"finreport/pkg/nullable"

	"gorm.io/gorm"
)

var financialDataSchema = crud.Schema{Name: "FinancialData", Columns: dto.FinancialDataSortColumns}

// FinancialDataItems serves the FinancialData resource.
type FinancialDataItems struct {
	*resource[models.FinancialData, dto.FinancialData, dto.FinancialDataWhereInput]

	reports *Reports
}

func (s *FinancialDataItems) Create(ctx context.Context, in dto.FinancialDataCreateInput) (dto.FinancialData, error) {
	rec := in.Model()
	return s.create(ctx, &rec, func(tx *gorm.DB) error {
		var err error
		rec.ReportID, err = resolveParent(ctx, s.reports.repo.WithTx(tx), in.ReportID)
		return err
	}, nil)
}

func (s *FinancialDataItems) Update(ctx context.Context, id string, in dto.FinancialDataUpdateInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return s.update(ctx, id, in.Changes(), func(tx *gorm.DB, changes map[string]any) error {
		return setParent(ctx, s.reports.repo.WithTx(tx), changes, in.ReportID)
	})
}

// Report returns the report the item belongs to.
func (s *FinancialDataItems) Report(ctx context.Context, id string) (dto.Report, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return dto.Report{}, err
	}
	return parentOf(ctx, s.reports, "FinancialData", id, rec.ReportID)
}

// resolveParent returns id when it names an existing report, and nil when
// it is nil or does not resolve.
func resolveParent(ctx context.Context, reports *crud.Repository[models.Report], id *string) (*string, error) {
	if id == nil {
		return nil, nil
	}
	ok, err := reports.Exists(ctx, *id)
	if err != nil || !ok {
		return nil, err
	}
	parent := *id
	return &parent, nil
}

// setParent records the report_id change: null detaches, an existing report
// id attaches, an unknown id leaves the link unchanged.
func setParent(ctx context.Context, reports *crud.Repository[models.Report], changes map[string]any, v nullable.Value[string]) error {
	if !v.IsSet() {
		return nil
	}
	if v.IsNull() {
		changes["report_id"] = nil
		return nil
	}
	id, _ := v.Get()
	parent, err := resolveParent(ctx, reports, &id)
	if err != nil {
		return err
	}
	if parent != nil {
		changes["report_id"] = *parent
	}
	return nil
}

func parentOf(ctx context.Context, reports *Reports, entity, id string, reportID *string) (dto.Report, error) {
	if reportID == nil {
		return dto.Report{}, fmt.Errorf("%s %q has no report: %w", entity, id, crud.ErrNotFound)
	}
	return reports.Get(ctx, *reportID)
}
