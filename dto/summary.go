package dto

import (
	"time"

	"finreport/models"
	"finreport/pkg/crud"
	"finreport/pkg/nullable"
)

type Summary struct {
	ID             string     `json:"id"`
	SummaryContent *string    `json:"summaryContent"`
	GeneratedDate  *time.Time `json:"generatedDate"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	ReportID       *string    `json:"reportId"`
}

type SummaryCreateInput struct {
	ID             *string    `json:"id" binding:"omitempty,min=1,max=64"`
	SummaryContent *string    `json:"summaryContent" binding:"omitempty,max=1000"`
	GeneratedDate  *time.Time `json:"generatedDate"`
	CreatedAt      *time.Time `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt"`
	ReportID       *string    `json:"reportId"`
}

type SummaryUpdateInput struct {
	SummaryContent nullable.Value[string]    `json:"summaryContent"`
	GeneratedDate  nullable.Value[time.Time] `json:"generatedDate"`
	CreatedAt      *time.Time                `json:"createdAt"`
	UpdatedAt      *time.Time                `json:"updatedAt"`
	ReportID       nullable.Value[string]    `json:"reportId"`
}

type SummaryWhereInput struct {
	ID             *string    `form:"id"`
	SummaryContent *string    `form:"summaryContent"`
	GeneratedDate  *time.Time `form:"generatedDate"`
	CreatedAt      *time.Time `form:"createdAt"`
	CreatedAtGte   *time.Time `form:"createdAtGte"`
	CreatedAtLte   *time.Time `form:"createdAtLte"`
	UpdatedAt      *time.Time `form:"updatedAt"`
	ReportID       *string    `form:"reportId"`
}

func (w SummaryWhereInput) Conditions() []crud.Condition {
	return crud.Where(
		crud.Eq("id", w.ID),
		crud.Eq("summary_content", w.SummaryContent),
		crud.Eq("generated_date", w.GeneratedDate),
		crud.Eq("created_at", w.CreatedAt),
		crud.Gte("created_at", w.CreatedAtGte),
		crud.Lte("created_at", w.CreatedAtLte),
		crud.Eq("updated_at", w.UpdatedAt),
		crud.Eq("report_id", w.ReportID),
	)
}

var SummarySortColumns = map[string]string{
	"id":             "id",
	"summaryContent": "summary_content",
	"generatedDate":  "generated_date",
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
	"reportId":       "report_id",
}

func SummaryFromModel(m models.Summary) Summary {
	return Summary{
		ID:             m.ID,
		SummaryContent: m.SummaryContent,
		GeneratedDate:  m.GeneratedDate,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		ReportID:       m.ReportID,
	}
}

func (in SummaryCreateInput) Model() models.Summary {
	m := models.Summary{SummaryContent: in.SummaryContent, GeneratedDate: in.GeneratedDate}
	if in.ID != nil {
		m.ID = *in.ID
	}
	if in.CreatedAt != nil {
		m.CreatedAt = *in.CreatedAt
	}
	if in.UpdatedAt != nil {
		m.UpdatedAt = *in.UpdatedAt
	}
	return m
}

func (in SummaryUpdateInput) Validate() error {
	return checkText("summaryContent", in.SummaryContent)
}

func (in SummaryUpdateInput) Changes() map[string]any {
	changes := map[string]any{}
	setColumn(changes, "summary_content", in.SummaryContent)
	setColumn(changes, "generated_date", in.GeneratedDate)
	if in.CreatedAt != nil {
		changes["created_at"] = *in.CreatedAt
	}
	if in.UpdatedAt != nil {
		changes["updated_at"] = *in.UpdatedAt
	}
	return changes
}
