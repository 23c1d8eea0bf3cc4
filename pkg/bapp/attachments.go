package bapp

import (
	"context"
	"errors"
	"sort"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// StagedFile is a file already written to its final content path by the
// upload collaborator.
type StagedFile struct {
	Path         string
	FileName     string
	OriginalName string
	ContentType  string
	Size         int64
}

// UploadInput is what an upload handler hands to the orchestrator.
type UploadInput struct {
	ReportID       uint           `validate:"required"`
	Classification Classification `validate:"required,oneof=signature document"`
	UploaderID     uint           `validate:"required"`
	File           *StagedFile
}

// ServedFile is what the file-serving endpoint streams.
type ServedFile struct {
	Path        string
	FileName    string
	ContentType string
}

// AttachmentService keeps attachment records and their files in lock-step.
type AttachmentService struct {
	reports     ReportProvider
	attachments AttachmentStore
	files       FileStore
	validate    *validator.Validate
	log         logrus.FieldLogger
}

func NewAttachmentService(reports ReportProvider, attachments AttachmentStore, files FileStore, log logrus.FieldLogger) *AttachmentService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AttachmentService{
		reports:     reports,
		attachments: attachments,
		files:       files,
		validate:    validator.New(),
		log:         log,
	}
}

// Upload records an already staged file. Every rejection after the file was
// staged removes it again.
func (s *AttachmentService) Upload(ctx context.Context, in UploadInput) (*Attachment, error) {
	if in.File == nil || in.File.Path == "" {
		return nil, NewError(ErrValidation, "file is required for upload", nil)
	}
	if err := s.validate.Struct(in); err != nil {
		s.discard(ctx, in.File.Path, "missing fields")
		return nil, NewError(ErrValidation, "bappId and fileType are required", err)
	}

	exists, err := s.reports.ReportExists(ctx, in.ReportID)
	if err != nil {
		s.discard(ctx, in.File.Path, "report lookup failed")
		return nil, NewError(ErrPersistence, "error uploading attachment", err)
	}
	if !exists {
		s.discard(ctx, in.File.Path, "report not found")
		return nil, NewError(ErrNotFound, "BAPP not found", nil)
	}

	att := &Attachment{
		ReportID:       in.ReportID,
		Classification: in.Classification,
		Path:           in.File.Path,
		FileName:       in.File.FileName,
		OriginalName:   in.File.OriginalName,
		ContentType:    in.File.ContentType,
		Size:           in.File.Size,
		UploaderID:     in.UploaderID,
	}
	if err := s.attachments.CreateAttachment(ctx, att); err != nil {
		s.discard(ctx, in.File.Path, "record create failed")
		return nil, NewError(ErrPersistence, "error uploading attachment", err)
	}
	s.log.WithFields(logrus.Fields{
		"attachment_id": att.ID,
		"bapp_id":       att.ReportID,
		"file_type":     att.Classification,
		"uploaded_by":   att.UploaderID,
	}).Info("[upload.complete]")
	return att, nil
}

// discard removes a staged file after a rejected upload. It runs even if the
// request context is already cancelled.
func (s *AttachmentService) discard(ctx context.Context, path, reason string) {
	if err := s.files.Remove(context.WithoutCancel(ctx), path); err != nil {
		s.log.WithFields(logrus.Fields{
			"path":   path,
			"reason": reason,
			"error":  err.Error(),
		}).Error("[upload.rollback]")
	}
}

// Delete removes an attachment. Only the uploader or an administrator may do
// so. A file that cannot be removed is logged and the record still goes.
func (s *AttachmentService) Delete(ctx context.Context, id, requesterID uint, requesterRole string) error {
	att, err := s.attachments.FindAttachment(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewError(ErrNotFound, "attachment not found", nil)
		}
		return NewError(ErrPersistence, "error deleting attachment", err)
	}
	if att.UploaderID != requesterID && requesterRole != RoleAdministrator {
		return NewError(ErrForbidden, "not authorized to delete this attachment", nil)
	}
	if err := s.files.Remove(ctx, att.Path); err != nil {
		s.log.WithFields(logrus.Fields{
			"attachment_id": att.ID,
			"path":          att.Path,
			"error":         err.Error(),
		}).Warn("[attachment.delete] file removal failed")
	}
	if err := s.attachments.DeleteAttachment(ctx, id); err != nil {
		return NewError(ErrPersistence, "error deleting attachment", err)
	}
	s.log.WithFields(logrus.Fields{
		"attachment_id": att.ID,
		"requested_by":  requesterID,
	}).Info("[attachment.delete]")
	return nil
}

// List returns a report's attachments, newest first.
func (s *AttachmentService) List(ctx context.Context, reportID uint) ([]Attachment, error) {
	atts, err := s.attachments.ListAttachments(ctx, reportID)
	if err != nil {
		return nil, NewError(ErrPersistence, "error fetching attachments", err)
	}
	sort.SliceStable(atts, func(i, j int) bool {
		if atts[i].CreatedAt.Equal(atts[j].CreatedAt) {
			return atts[i].ID > atts[j].ID
		}
		return atts[i].CreatedAt.After(atts[j].CreatedAt)
	})
	return atts, nil
}

// FetchFileForServing resolves the stored path of an attachment.
func (s *AttachmentService) FetchFileForServing(ctx context.Context, id uint) (*ServedFile, error) {
	att, err := s.attachments.FindAttachment(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewError(ErrNotFound, "file not found", nil)
		}
		return nil, NewError(ErrPersistence, "error serving file", err)
	}
	ct := att.ContentType
	if ct == "" {
		if mt, err := mimetype.DetectFile(att.Path); err == nil {
			ct = mt.String()
		} else {
			ct = "application/octet-stream"
		}
	}
	return &ServedFile{Path: att.Path, FileName: att.FileName, ContentType: ct}, nil
}
