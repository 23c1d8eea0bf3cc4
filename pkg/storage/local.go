// Package storage keeps attachment bytes on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"bapp/pkg/bapp"

	"github.com/google/uuid"
)

// Sub-directories of the upload base, one per classification.
const (
	SignatureDir = "signatures"
	DocumentDir  = "documents"
	TempDir      = "temp"
)

// LocalStorage stores files under a single absolute base directory.
type LocalStorage struct {
	basePath string
}

// NewLocalStorage resolves basePath to an absolute, cleaned path.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve upload base: %w", err)
	}
	return &LocalStorage{basePath: abs}, nil
}

// Base is the absolute upload root.
func (s *LocalStorage) Base() string { return s.basePath }

// DirFor returns the directory name for a classification, relative to Base.
func DirFor(c bapp.Classification) string {
	if c == bapp.ClassSignature {
		return SignatureDir
	}
	return DocumentDir
}

// EnsureLayout creates the base directory and its fixed sub-directories.
func (s *LocalStorage) EnsureLayout() error {
	for _, d := range []string{SignatureDir, DocumentDir, TempDir} {
		if err := os.MkdirAll(filepath.Join(s.basePath, d), 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", d, err)
		}
	}
	return nil
}

// Save writes r to Base/dir/name and returns the absolute path and byte
// count. More than limit bytes (when limit > 0) removes the partial file and
// fails with bapp.ErrValidation.
func (s *LocalStorage) Save(_ context.Context, dir, name string, r io.Reader, limit int64) (string, int64, error) {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return "", 0, bapp.NewError(bapp.ErrValidation, "invalid file name", nil)
	}
	target := filepath.Join(s.basePath, dir)
	if !s.contains(target) {
		return "", 0, bapp.NewError(bapp.ErrValidation, "invalid directory", nil)
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", 0, bapp.NewError(bapp.ErrStorage, "create dir", err)
	}

	storagePath := filepath.Join(target, name)
	f, err := os.OpenFile(storagePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", 0, bapp.NewError(bapp.ErrStorage, "create file", err)
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()
	switch {
	case copyErr != nil:
		_ = os.Remove(storagePath)
		return "", 0, bapp.NewError(bapp.ErrStorage, "write file", copyErr)
	case limit > 0 && n > limit:
		_ = os.Remove(storagePath)
		return "", 0, bapp.NewError(bapp.ErrValidation, fmt.Sprintf("file too large (max %d bytes)", limit), nil)
	case closeErr != nil:
		_ = os.Remove(storagePath)
		return "", 0, bapp.NewError(bapp.ErrStorage, "write file", closeErr)
	}
	return storagePath, n, nil
}

func (s *LocalStorage) Open(_ context.Context, storagePath string) (io.ReadCloser, error) {
	f, err := os.Open(storagePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, bapp.NewError(bapp.ErrNotFound, "file not found", err)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (s *LocalStorage) Remove(_ context.Context, storagePath string) error {
	if err := os.Remove(storagePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Stage stores an incoming upload under a fresh UUID name that keeps the
// lower-cased original extension.
func (s *LocalStorage) Stage(ctx context.Context, c bapp.Classification, originalName, contentType string, r io.Reader, limit int64) (*bapp.StagedFile, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	p, n, err := s.Save(ctx, DirFor(c), name, r, limit)
	if err != nil {
		return nil, err
	}
	return &bapp.StagedFile{
		Path:         p,
		FileName:     name,
		OriginalName: filepath.Base(originalName),
		ContentType:  contentType,
		Size:         n,
	}, nil
}

func (s *LocalStorage) contains(p string) bool {
	rel, err := filepath.Rel(s.basePath, p)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
