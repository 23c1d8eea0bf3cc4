package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BAPPWorkItem is one inspected line of work. Position fixes the order used in the PDF table.
type BAPPWorkItem struct {
	ID              uint `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	BAPPID          uint            `gorm:"column:bapp_id;index;not null"`
	Position        int             `gorm:"not null;default:0"`
	WorkItemName    string          `gorm:"size:255;not null"`
	Description     string          `gorm:"type:text"`
	PlannedProgress decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	ActualProgress  decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0"`
	Unit            string          `gorm:"size:32"`
	Quality         string          `gorm:"size:32"`
}

func (BAPPWorkItem) TableName() string { return "bapp_work_items" }
