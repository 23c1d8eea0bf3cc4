package models

import "time"

// BAPP is a work-completion inspection report (Berita Acara Pemeriksaan Pekerjaan).
// Rows are owned by the report-management side; this service only reads them.
type BAPP struct {
	ID                 uint `gorm:"primaryKey"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
	BAPPNumber         string           `gorm:"column:bapp_number;size:128;uniqueIndex;not null"`
	ContractNumber     string           `gorm:"size:128;not null"`
	ProjectName        string           `gorm:"size:255;not null"`
	ProjectLocation    string           `gorm:"size:255"`
	StartDate          time.Time        `gorm:"type:date;not null"`
	EndDate            time.Time        `gorm:"type:date;not null"`
	CompletionDate     time.Time        `gorm:"type:date;not null"`
	Notes              *string          `gorm:"type:text"`
	Status             string           `gorm:"size:32;not null;default:draft;index"`
	VendorID           uint             `gorm:"index;not null"`
	Vendor             User             `gorm:"foreignKey:VendorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"`
	DireksiPekerjaanID *uint            `gorm:"index"`
	DireksiPekerjaan   *User            `gorm:"foreignKey:DireksiPekerjaanID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	WorkItems          []BAPPWorkItem   `gorm:"foreignKey:BAPPID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Attachments        []BAPPAttachment `gorm:"foreignKey:BAPPID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// TableName keeps the table name stable regardless of gorm's pluralisation of the acronym.
func (BAPP) TableName() string { return "bapps" }
