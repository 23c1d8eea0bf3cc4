package bapp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

type memReports struct {
	mu      sync.Mutex
	reports map[uint]*Report
	err     error
}

func newMemReports(rs ...*Report) *memReports {
	m := &memReports{reports: map[uint]*Report{}}
	for _, r := range rs {
		m.reports[r.ID] = r
	}
	return m
}

func (m *memReports) FindReport(_ context.Context, id uint) (*Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memReports) ReportExists(ctx context.Context, id uint) (bool, error) {
	_, err := m.FindReport(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

type memAttachments struct {
	mu        sync.Mutex
	next      uint
	rows      map[uint]Attachment
	createErr error
	deleteErr error
	clock     func() time.Time
}

func newMemAttachments() *memAttachments {
	return &memAttachments{rows: map[uint]Attachment{}, clock: time.Now}
}

func (m *memAttachments) CreateAttachment(_ context.Context, a *Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.next++
	a.ID = m.next
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.clock()
	}
	m.rows[a.ID] = *a
	return nil
}

func (m *memAttachments) ListAttachments(_ context.Context, reportID uint) ([]Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Attachment
	for id := uint(1); id <= m.next; id++ {
		if a, ok := m.rows[id]; ok && a.ReportID == reportID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAttachments) FindAttachment(_ context.Context, id uint) (*Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (m *memAttachments) DeleteAttachment(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.rows, id)
	return nil
}

// diskFiles is a FileStore over the real filesystem, enough for the
// orchestrator tests.
type diskFiles struct {
	removeErr error
}

func (d *diskFiles) Save(_ context.Context, dir, name string, r io.Reader, _ int64) (string, int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, err
	}
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	n, err := io.Copy(f, r)
	return p, n, err
}

func (d *diskFiles) Open(_ context.Context, path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func (d *diskFiles) Remove(_ context.Context, path string) error {
	if d.removeErr != nil {
		return d.removeErr
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

type stubRenderer struct {
	mu    sync.Mutex
	err   error
	body  []byte
	calls []Signatures
}

func (s *stubRenderer) Render(r *Report, sigs Signatures, w io.Writer) error {
	s.mu.Lock()
	s.calls = append(s.calls, sigs)
	s.mu.Unlock()
	body := s.body
	if body == nil {
		body = []byte("%PDF-1.3 " + r.BAPPNumber)
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	return s.err
}

func quietLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	return log, hook
}

func stage(dir, name string, content []byte) *StagedFile {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, content, 0o644); err != nil {
		panic(err)
	}
	return &StagedFile{Path: p, FileName: name, OriginalName: "ttd.png", ContentType: "image/png", Size: int64(len(content))}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func pngBytes() []byte {
	return bytes.Clone(pngHeader)
}
