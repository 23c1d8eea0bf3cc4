package models

import (
	"time"
)

// User model. Vendors carry a Company; direksi (approvers) usually do not.
type User struct {
	ID             uint `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      *time.Time `gorm:"index"`
	Username       string     `gorm:"size:255;not null;unique"`
	HashedPassword []byte     `gorm:"not null"`
	Name           string     `gorm:"size:255;not null"`
	Company        string     `gorm:"size:255"`
	RoleID         *uint      `gorm:"index"`
	Role           Role       `gorm:"foreignKey:RoleID;references:ID"`
}
