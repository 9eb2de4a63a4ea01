package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Summary stores a summary text for a report. No text is generated here;
// SummaryContent is whatever the client stored.
type Summary struct {
	ID             string  `gorm:"primaryKey;size:64"`
	SummaryContent *string `gorm:"size:1000"`
	GeneratedDate  *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
	Version        int64     `gorm:"not null;default:1"`
	ReportID       *string   `gorm:"size:64;index"`
	Report         *Report   `gorm:"foreignKey:ReportID"`
}

func (Summary) TableName() string { return "summaries" }

func (s Summary) PrimaryKey() string { return s.ID }

func (s *Summary) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
