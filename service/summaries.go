package service

import (
	"context"

	"finreport/dto"
	"finreport/models"
	"finreport/pkg/crud"

	"gorm.io/gorm"
)

var summarySchema = crud.Schema{Name: "Summary", Columns: dto.SummarySortColumns}

// Summaries serves the Summary resource.
type Summaries struct {
	*resource[models.Summary, dto.Summary, dto.SummaryWhereInput]

	reports *Reports
}

func (s *Summaries) Create(ctx context.Context, in dto.SummaryCreateInput) (dto.Summary, error) {
	rec := in.Model()
	return s.create(ctx, &rec, func(tx *gorm.DB) error {
		var err error
		rec.ReportID, err = resolveParent(ctx, s.reports.repo.WithTx(tx), in.ReportID)
		return err
	}, nil)
}

func (s *Summaries) Update(ctx context.Context, id string, in dto.SummaryUpdateInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return s.update(ctx, id, in.Changes(), func(tx *gorm.DB, changes map[string]any) error {
		return setParent(ctx, s.reports.repo.WithTx(tx), changes, in.ReportID)
	})
}

// Report returns the report the summary belongs to.
func (s *Summaries) Report(ctx context.Context, id string) (dto.Report, error) {
	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return dto.Report{}, err
	}
	return parentOf(ctx, s.reports, "Summary", id, rec.ReportID)
}
