package bapp

import (
	"context"
	"io"
)

// ReportProvider loads report aggregates. Implementations return an error
// matching ErrNotFound when the report does not exist.
type ReportProvider interface {
	FindReport(ctx context.Context, id uint) (*Report, error)
	ReportExists(ctx context.Context, id uint) (bool, error)
}

// AttachmentStore persists attachment metadata. FindAttachment returns an
// error matching ErrNotFound for unknown ids.
type AttachmentStore interface {
	CreateAttachment(ctx context.Context, a *Attachment) error
	ListAttachments(ctx context.Context, reportID uint) ([]Attachment, error)
	FindAttachment(ctx context.Context, id uint) (*Attachment, error)
	DeleteAttachment(ctx context.Context, id uint) error
}

// FileStore holds the bytes behind attachments. Remove must succeed when the
// file is already gone.
type FileStore interface {
	Save(ctx context.Context, dir, name string, r io.Reader, limit int64) (string, int64, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Remove(ctx context.Context, path string) error
}

// Renderer writes a finished report to w.
type Renderer interface {
	Render(r *Report, sigs Signatures, w io.Writer) error
}
