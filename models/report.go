package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report is the parent record owning financial data points and summaries.
// The foreign keys live on the child tables.
type Report struct {
	ID            string  `gorm:"primaryKey;size:64"`
	Title         *string `gorm:"size:1000"`
	Content       *string `gorm:"size:1000"`
	PublishedDate *time.Time
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
	// Version is bumped on every write and checked by conditional updates.
	Version int64 `gorm:"not null;default:1"`

	FinancialDataItems []FinancialData `gorm:"foreignKey:ReportID"`
	Summaries          []Summary       `gorm:"foreignKey:ReportID"`
}

func (Report) TableName() string { return "reports" }

func (r Report) PrimaryKey() string { return r.ID }

// BeforeCreate assigns a generated id when the caller did not supply one.
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Version == 0 {
		r.Version = 1
	}
	return nil
}
