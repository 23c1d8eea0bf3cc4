package bapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ReportPrefix starts every generated PDF file name.
const ReportPrefix = "BAPP"

// Exporter renders reports into temporary files and hands them out for streaming.
type Exporter struct {
	reports  ReportProvider
	renderer Renderer
	tempDir  string
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewExporter(reports ReportProvider, renderer Renderer, tempDir string, log logrus.FieldLogger) *Exporter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Exporter{
		reports:  reports,
		renderer: renderer,
		tempDir:  tempDir,
		log:      log,
		now:      time.Now,
	}
}

// Export renders report id into a fresh temporary file. The caller must
// Close (or StreamTo) the returned Export; both remove the file.
func (e *Exporter) Export(ctx context.Context, id uint) (*Export, error) {
	report, err := e.reports.FindReport(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, NewError(ErrNotFound, "BAPP not found", nil)
		}
		return nil, NewError(ErrPersistence, "error loading BAPP", err)
	}
	sigs := ResolveSignatures(report)

	now := e.now()
	number := SanitizeNumber(report.BAPPNumber)
	if err := os.MkdirAll(e.tempDir, 0o755); err != nil {
		return nil, NewError(ErrStorage, "error preparing temp directory", err)
	}
	f, err := os.CreateTemp(e.tempDir, fmt.Sprintf("%s_%s_%d_*.pdf", ReportPrefix, number, now.UnixNano()))
	if err != nil {
		return nil, NewError(ErrStorage, "error creating temp file", err)
	}
	path := f.Name()
	fail := func(kind error, msg string, cause error) (*Export, error) {
		_ = f.Close()
		e.removeTemp(path)
		return nil, NewError(kind, msg, cause)
	}

	if err := e.renderer.Render(report, sigs, f); err != nil {
		return fail(ErrRender, "error generating BAPP PDF", err)
	}
	if err := ctx.Err(); err != nil {
		return fail(ErrRender, "export cancelled", err)
	}
	if err := f.Sync(); err != nil {
		return fail(ErrStorage, "error flushing BAPP PDF", err)
	}
	info, err := f.Stat()
	if err != nil {
		return fail(ErrStorage, "error reading BAPP PDF", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fail(ErrStorage, "error reading BAPP PDF", err)
	}

	e.log.WithFields(logrus.Fields{
		"bapp_id": report.ID,
		"path":    path,
		"bytes":   info.Size(),
	}).Info("[export.rendered]")
	return &Export{
		FileName: fmt.Sprintf("%s_%s_%s.pdf", ReportPrefix, number, now.Format("20060102-150405")),
		Path:     path,
		size:     info.Size(),
		file:     f,
		log:      e.log,
	}, nil
}

func (e *Exporter) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		e.log.WithFields(logrus.Fields{"path": path, "error": err.Error()}).Error("[export.cleanup]")
	}
}

// Export is a rendered PDF waiting to be streamed. It owns a temporary file
// that is removed on Close.
type Export struct {
	// FileName is the suggested download name.
	FileName string
	Path     string

	size     int64
	file     *os.File
	log      logrus.FieldLogger
	once     sync.Once
	closeErr error
}

// Size of the rendered PDF in bytes.
func (x *Export) Size() int64 { return x.size }

func (x *Export) Read(p []byte) (int, error) { return x.file.Read(p) }

// Close releases the file handle and deletes the artifact. Safe to call twice.
func (x *Export) Close() error {
	x.once.Do(func() {
		cerr := x.file.Close()
		rerr := os.Remove(x.Path)
		if errors.Is(rerr, fs.ErrNotExist) {
			rerr = nil
		}
		x.closeErr = errors.Join(cerr, rerr)
		if x.closeErr != nil && x.log != nil {
			x.log.WithFields(logrus.Fields{"path": x.Path, "error": x.closeErr.Error()}).Error("[export.cleanup]")
		}
	})
	return x.closeErr
}

// StreamTo copies the PDF to w and then removes it, whether the copy
// finished, failed, or ctx was cancelled.
func (x *Export) StreamTo(ctx context.Context, w io.Writer) (int64, error) {
	defer x.Close()
	n, err := io.Copy(w, ctxReader{ctx: ctx, r: x.file})
	if err != nil {
		return n, NewError(ErrStorage, "error streaming BAPP PDF", err)
	}
	return n, nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
