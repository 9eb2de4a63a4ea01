package dto

import (
	"errors"
	"time"

	"finreport/models"
	"finreport/pkg/crud"
	"finreport/pkg/nullable"
)

// Report is the response shape. Child relations are rendered as ids.
type Report struct {
	ID                 string     `json:"id"`
	Title              *string    `json:"title"`
	Content            *string    `json:"content"`
	PublishedDate      *time.Time `json:"publishedDate"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	FinancialDataItems []string   `json:"financialDataItems"`
	Summaries          []string   `json:"summaries"`
}

type ReportCreateInput struct {
	ID                 *string    `json:"id" binding:"omitempty,min=1,max=64"`
	Title              *string    `json:"title" binding:"omitempty,max=1000"`
	Content            *string    `json:"content" binding:"omitempty,max=1000"`
	PublishedDate      *time.Time `json:"publishedDate"`
	CreatedAt          *time.Time `json:"createdAt"`
	UpdatedAt          *time.Time `json:"updatedAt"`
	FinancialDataItems IDList     `json:"financialDataItems"`
	Summaries          IDList     `json:"summaries"`
}

// ReportUpdateInput carries only the fields to change. Sending null clears
// an optional field; leaving it out keeps the stored value. The id lists,
// when sent, replace the report's children.
type ReportUpdateInput struct {
	Title              nullable.Value[string]    `json:"title"`
	Content            nullable.Value[string]    `json:"content"`
	PublishedDate      nullable.Value[time.Time] `json:"publishedDate"`
	CreatedAt          *time.Time                `json:"createdAt"`
	UpdatedAt          *time.Time                `json:"updatedAt"`
	FinancialDataItems IDList                    `json:"financialDataItems"`
	Summaries          IDList                    `json:"summaries"`
}

type ReportWhereInput struct {
	ID            *string    `form:"id"`
	Title         *string    `form:"title"`
	Content       *string    `form:"content"`
	PublishedDate *time.Time `form:"publishedDate"`
	CreatedAt     *time.Time `form:"createdAt"`
	CreatedAtGte  *time.Time `form:"createdAtGte"`
	CreatedAtLte  *time.Time `form:"createdAtLte"`
	UpdatedAt     *time.Time `form:"updatedAt"`
}

func (w ReportWhereInput) Conditions() []crud.Condition {
	return crud.Where(
		crud.Eq("id", w.ID),
		crud.Eq("title", w.Title),
		crud.Eq("content", w.Content),
		crud.Eq("published_date", w.PublishedDate),
		crud.Eq("created_at", w.CreatedAt),
		crud.Gte("created_at", w.CreatedAtGte),
		crud.Lte("created_at", w.CreatedAtLte),
		crud.Eq("updated_at", w.UpdatedAt),
	)
}

// ReportSortColumns maps sortable wire fields to columns.
var ReportSortColumns = map[string]string{
	"id":            "id",
	"title":         "title",
	"content":       "content",
	"publishedDate": "published_date",
	"createdAt":     "created_at",
	"updatedAt":     "updated_at",
}

func ReportFromModel(m models.Report) Report {
	return Report{
		ID:                 m.ID,
		Title:              m.Title,
		Content:            m.Content,
		PublishedDate:      m.PublishedDate,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		FinancialDataItems: idsOf(m.FinancialDataItems, func(f models.FinancialData) string { return f.ID }),
		Summaries:          idsOf(m.Summaries, func(s models.Summary) string { return s.ID }),
	}
}

// Model builds the record to insert. Children are attached by the service.
func (in ReportCreateInput) Model() models.Report {
	m := models.Report{
		Title:         in.Title,
		Content:       in.Content,
		PublishedDate: in.PublishedDate,
	}
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

func (in ReportUpdateInput) Validate() error {
	return errors.Join(checkText("title", in.Title), checkText("content", in.Content))
}

// Changes returns the column assignments for the fields that were sent.
func (in ReportUpdateInput) Changes() map[string]any {
	changes := map[string]any{}
	setColumn(changes, "title", in.Title)
	setColumn(changes, "content", in.Content)
	setColumn(changes, "published_date", in.PublishedDate)
	if in.CreatedAt != nil {
		changes["created_at"] = *in.CreatedAt
	}
	if in.UpdatedAt != nil {
		changes["updated_at"] = *in.UpdatedAt
	}
	return changes
}
