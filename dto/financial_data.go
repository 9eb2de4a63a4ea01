package dto

import (
	"errors"
	"fmt"
	"time"

	"finreport/models"
	"finreport/pkg/crud"
	"finreport/pkg/nullable"
)

type FinancialData struct {
	ID          string    `json:"id"`
	DataPoint   *float64  `json:"dataPoint"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	ReportID    *string   `json:"reportId"`
}

type FinancialDataCreateInput struct {
	ID          *string    `json:"id" binding:"omitempty,min=1,max=64"`
	DataPoint   *float64   `json:"dataPoint" binding:"omitempty,min=-999999999,max=999999999"`
	Description *string    `json:"description" binding:"omitempty,max=1000"`
	CreatedAt   *time.Time `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
	// ReportID links the new row to an existing report. An id that does not
	// resolve is ignored.
	ReportID *string `json:"reportId"`
}

type FinancialDataUpdateInput struct {
	DataPoint   nullable.Value[float64] `json:"dataPoint"`
	Description nullable.Value[string]  `json:"description"`
	CreatedAt   *time.Time              `json:"createdAt"`
	UpdatedAt   *time.Time              `json:"updatedAt"`
	ReportID    nullable.Value[string]  `json:"reportId"`
}

type FinancialDataWhereInput struct {
	ID           *string    `form:"id"`
	DataPoint    *float64   `form:"dataPoint"`
	DataPointGte *float64   `form:"dataPointGte"`
	DataPointLte *float64   `form:"dataPointLte"`
	Description  *string    `form:"description"`
	CreatedAt    *time.Time `form:"createdAt"`
	CreatedAtGte *time.Time `form:"createdAtGte"`
	CreatedAtLte *time.Time `form:"createdAtLte"`
	UpdatedAt    *time.Time `form:"updatedAt"`
	ReportID     *string    `form:"reportId"`
}

func (w FinancialDataWhereInput) Conditions() []crud.Condition {
	return crud.Where(
		crud.Eq("id", w.ID),
		crud.Eq("data_point", w.DataPoint),
		crud.Gte("data_point", w.DataPointGte),
		crud.Lte("data_point", w.DataPointLte),
		crud.Eq("description", w.Description),
		crud.Eq("created_at", w.CreatedAt),
		crud.Gte("created_at", w.CreatedAtGte),
		crud.Lte("created_at", w.CreatedAtLte),
		crud.Eq("updated_at", w.UpdatedAt),
		crud.Eq("report_id", w.ReportID),
	)
}

var FinancialDataSortColumns = map[string]string{
	"id":          "id",
	"dataPoint":   "data_point",
	"description": "description",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"reportId":    "report_id",
}

func FinancialDataFromModel(m models.FinancialData) FinancialData {
	return FinancialData{
		ID:          m.ID,
		DataPoint:   m.DataPoint,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		ReportID:    m.ReportID,
	}
}

// Model builds the record to insert. ReportID is resolved by the service.
func (in FinancialDataCreateInput) Model() models.FinancialData {
	m := models.FinancialData{DataPoint: in.DataPoint, Description: in.Description}
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

func (in FinancialDataUpdateInput) Validate() error {
	var rangeErr error
	if v, ok := in.DataPoint.Get(); ok && (v < -models.DataPointLimit || v > models.DataPointLimit) {
		rangeErr = fmt.Errorf("%w: dataPoint must be within ±%d", ErrValidation, models.DataPointLimit)
	}
	return errors.Join(rangeErr, checkText("description", in.Description))
}

// Changes returns the column assignments for the scalar fields that were
// sent. ReportID is resolved by the service.
func (in FinancialDataUpdateInput) Changes() map[string]any {
	changes := map[string]any{}
	setColumn(changes, "data_point", in.DataPoint)
	setColumn(changes, "description", in.Description)
	if in.CreatedAt != nil {
		changes["created_at"] = *in.CreatedAt
	}
	if in.UpdatedAt != nil {
		changes["updated_at"] = *in.UpdatedAt
	}
	return changes
}
