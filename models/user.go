package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User model
type User struct {
	ID        string  `gorm:"primaryKey;size:64"`
	Username  string  `gorm:"size:255;not null;uniqueIndex"`
	Password  []byte  `gorm:"not null"` // bcrypt hash
	FirstName *string `gorm:"size:255"`
	LastName  *string `gorm:"size:255"`
	// Roles is a JSON array of role names, e.g. ["admin"].
	Roles     datatypes.JSON
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int64     `gorm:"not null;default:1"`
}

func (User) TableName() string { return "users" }

func (u User) PrimaryKey() string { return u.ID }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Version == 0 {
		u.Version = 1
	}
	return nil
}
