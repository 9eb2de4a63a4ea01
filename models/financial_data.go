package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DataPointLimit bounds the absolute value of FinancialData.DataPoint.
const DataPointLimit = 999999999

// FinancialData is a single numeric data point, optionally attached to a Report.
type FinancialData struct {
	ID string `gorm:"primaryKey;size:64"`
	// DataPoint stays within ±DataPointLimit.
	DataPoint   *float64
	Description *string   `gorm:"size:1000"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	Version     int64     `gorm:"not null;default:1"`
	ReportID    *string   `gorm:"size:64;index"`
	Report      *Report   `gorm:"foreignKey:ReportID"`
}

func (FinancialData) TableName() string { return "financial_data" }

func (f FinancialData) PrimaryKey() string { return f.ID }

func (f *FinancialData) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.Version == 0 {
		f.Version = 1
	}
	return nil
}
