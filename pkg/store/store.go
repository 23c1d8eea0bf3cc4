// Package store implements the bapp ports on top of gorm.
package store

import (
	"context"
	"errors"
	"fmt"

	"bapp/models"
	"bapp/pkg/bapp"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store reads BAPP aggregates and keeps attachment rows.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var (
	_ bapp.ReportProvider  = (*Store)(nil)
	_ bapp.AttachmentStore = (*Store)(nil)
)

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, bapp.ErrNotFound)
	}
	return err
}

// FindReport loads a report with its parties, ordered work items and
// attachments (uploader included).
func (s *Store) FindReport(ctx context.Context, id uint) (*bapp.Report, error) {
	var row models.BAPP
	err := s.db.WithContext(ctx).
		Preload("Vendor.Role").
		Preload("DireksiPekerjaan.Role").
		Preload("WorkItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc, id asc")
		}).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc, id desc")
		}).
		Preload("Attachments.Uploader.Role").
		First(&row, id).Error
	if err != nil {
		return nil, notFound(err, "bapp")
	}
	return ToReport(&row), nil
}

func (s *Store) ReportExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.BAPP{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) CreateAttachment(ctx context.Context, a *bapp.Attachment) error {
	row := FromAttachment(a)
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
		return err
	}
	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	return nil
}

func (s *Store) ListAttachments(ctx context.Context, reportID uint) ([]bapp.Attachment, error) {
	var rows []models.BAPPAttachment
	err := s.db.WithContext(ctx).
		Preload("Uploader.Role").
		Where("bapp_id = ?", reportID).
		Order("created_at desc, id desc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]bapp.Attachment, 0, len(rows))
	for i := range rows {
		out = append(out, ToAttachment(&rows[i]))
	}
	return out, nil
}

func (s *Store) FindAttachment(ctx context.Context, id uint) (*bapp.Attachment, error) {
	var row models.BAPPAttachment
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, notFound(err, "attachment")
	}
	a := ToAttachment(&row)
	return &a, nil
}

func (s *Store) DeleteAttachment(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.BAPPAttachment{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("attachment %d: %w", id, bapp.ErrNotFound)
	}
	return nil
}
