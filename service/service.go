package service

import (
	"finreport/dto"
	"finreport/models"

	"gorm.io/gorm"
)

// Services bundles the resource services sharing one database handle.
type Services struct {
	Reports            *Reports
	Summaries          *Summaries
	FinancialDataItems *FinancialDataItems
	Users              *Users
}

func New(db *gorm.DB) *Services {
	items := newResource[models.FinancialData, dto.FinancialData, dto.FinancialDataWhereInput](db, financialDataSchema, dto.FinancialDataFromModel)
	summaries := newResource[models.Summary, dto.Summary, dto.SummaryWhereInput](db, summarySchema, dto.SummaryFromModel)
	reports := newReports(db, items, summaries)
	return &Services{
		Reports:            reports,
		Summaries:          &Summaries{resource: summaries, reports: reports},
		FinancialDataItems: &FinancialDataItems{resource: items, reports: reports},
		Users:              &Users{resource: newResource[models.User, dto.User, dto.UserWhereInput](db, userSchema, dto.UserFromModel)},
	}
}
