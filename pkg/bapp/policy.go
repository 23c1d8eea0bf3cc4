package bapp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	DefaultSignatureMaxBytes int64 = 2 * 1024 * 1024
	DefaultDocumentMaxBytes  int64 = 10 * 1024 * 1024
)

// Rule is the admission rule for one classification. An empty MIMETypes
// set means the declared MIME type is not checked.
type Rule struct {
	Extensions map[string]bool
	MIMETypes  map[string]bool
	MaxBytes   int64
	// Sniff re-checks the stored bytes against MIMETypes.
	Sniff bool
}

// Policy decides which incoming files are accepted before they reach the
// attachment orchestrator.
type Policy struct {
	Rules map[Classification]Rule
}

// DefaultPolicy: raster images for signatures, office documents otherwise.
func DefaultPolicy(signatureMax, documentMax int64) Policy {
	if signatureMax <= 0 {
		signatureMax = DefaultSignatureMaxBytes
	}
	if documentMax <= 0 {
		documentMax = DefaultDocumentMaxBytes
	}
	return Policy{Rules: map[Classification]Rule{
		ClassSignature: {
			Extensions: map[string]bool{".jpeg": true, ".jpg": true, ".png": true},
			MIMETypes:  map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true},
			MaxBytes:   signatureMax,
			Sniff:      true,
		},
		ClassDocument: {
			Extensions: map[string]bool{".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true},
			MaxBytes:   documentMax,
		},
	}}
}

// Limit returns the size bound for c, or 0 when c is unknown.
func (p Policy) Limit(c Classification) int64 {
	return p.Rules[c].MaxBytes
}

// Admit checks the declared properties of an incoming file.
func (p Policy) Admit(c Classification, originalName, declaredMIME string, size int64) error {
	rule, ok := p.Rules[c]
	if !ok {
		return NewError(ErrValidation, fmt.Sprintf("unknown file type %q", c), nil)
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if !rule.Extensions[ext] {
		return NewError(ErrValidation, fmt.Sprintf("extension %q is not allowed for %s files", ext, c), nil)
	}
	if len(rule.MIMETypes) > 0 {
		mt := strings.ToLower(strings.TrimSpace(strings.Split(declaredMIME, ";")[0]))
		if !rule.MIMETypes[mt] {
			return NewError(ErrValidation, fmt.Sprintf("content type %q is not allowed for %s files", declaredMIME, c), nil)
		}
	}
	if size > rule.MaxBytes {
		return NewError(ErrValidation, fmt.Sprintf("file too large (max %d bytes)", rule.MaxBytes), nil)
	}
	return nil
}

// Verify sniffs a staged file and returns its detected MIME type. For rules
// with Sniff set the detected type must be in MIMETypes.
func (p Policy) Verify(c Classification, path string) (string, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", NewError(ErrStorage, "cannot read staged file", err)
	}
	rule := p.Rules[c]
	if rule.Sniff && !rule.MIMETypes[mt.String()] {
		return "", NewError(ErrValidation, fmt.Sprintf("file content %s does not match an allowed type", mt.String()), nil)
	}
	return mt.String(), nil
}
