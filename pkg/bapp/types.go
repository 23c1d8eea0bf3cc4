// Package bapp holds the BAPP report aggregate, the attachment and export
// orchestrators, and the ports they talk to.
package bapp

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Status of a BAPP as set by the report-management side.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusInReview  Status = "in_review"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusRevision  Status = "revision"
)

// Classification of an attachment.
type Classification string

const (
	ClassSignature Classification = "signature"
	ClassDocument  Classification = "document"
)

// Valid reports whether c is one of the known classifications.
func (c Classification) Valid() bool {
	return c == ClassSignature || c == ClassDocument
}

// RoleAdministrator may delete any attachment.
const RoleAdministrator = "administrator"

// Party is a user identity as it appears on a report.
type Party struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Role    string `json:"role,omitempty"`
}

// WorkItem is one row of the inspection table.
type WorkItem struct {
	Name            string          `json:"workItemName"`
	Description     string          `json:"description"`
	PlannedProgress decimal.Decimal `json:"plannedProgress"`
	ActualProgress  decimal.Decimal `json:"actualProgress"`
	Unit            string          `json:"unit"`
	Quality         string          `json:"quality"`
}

// Report is the read-only aggregate rendered into the PDF.
type Report struct {
	ID              uint         `json:"id"`
	BAPPNumber      string       `json:"bappNumber"`
	ContractNumber  string       `json:"contractNumber"`
	ProjectName     string       `json:"projectName"`
	ProjectLocation string       `json:"projectLocation"`
	StartDate       time.Time    `json:"startDate"`
	EndDate         time.Time    `json:"endDate"`
	CompletionDate  time.Time    `json:"completionDate"`
	Notes           *string      `json:"notes,omitempty"`
	Status          Status       `json:"status"`
	Vendor          Party        `json:"vendor"`
	Approver        *Party       `json:"direksiPekerjaan,omitempty"`
	WorkItems       []WorkItem   `json:"workItems"`
	Attachments     []Attachment `json:"attachments,omitempty"`
}

// Attachment is the metadata of a stored file tied to a report.
type Attachment struct {
	ID             uint           `json:"id"`
	ReportID       uint           `json:"bappId"`
	Classification Classification `json:"fileType"`
	Path           string         `json:"filePath"`
	FileName       string         `json:"fileName"`
	OriginalName   string         `json:"originalName,omitempty"`
	ContentType    string         `json:"contentType,omitempty"`
	Size           int64          `json:"size"`
	UploaderID     uint           `json:"uploadedBy"`
	Uploader       *Party         `json:"uploadedByUser,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Signatures maps signing roles to absolute image paths. Empty means no image.
type Signatures struct {
	Vendor   string
	Approver string
}

// maxNumberBytes keeps generated file names well under the 255-byte limit
// of common filesystems.
const maxNumberBytes = 100

// SanitizeNumber replaces path separators (and the temp-pattern wildcard) so a
// report number can be embedded in a file name.
func SanitizeNumber(number string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", "*", "_", "\x00", "")
	s := strings.TrimSpace(r.Replace(number))
	if s == "" {
		return "unnumbered"
	}
	if len(s) > maxNumberBytes {
		cut := maxNumberBytes
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}
