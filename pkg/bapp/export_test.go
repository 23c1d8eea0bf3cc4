package bapp

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestExporter(t *testing.T, r Renderer, reports ...*Report) (*Exporter, string) {
	t.Helper()
	log, _ := quietLogger()
	dir := filepath.Join(t.TempDir(), "temp")
	e := NewExporter(newMemReports(reports...), r, dir, log)
	e.now = func() time.Time { return time.Date(2024, 8, 20, 14, 30, 5, 0, time.UTC) }
	return e, dir
}

func leftovers(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

var slashedReport = &Report{ID: 7, BAPPNumber: "001/BAPP/VIII/2024", Vendor: Party{ID: 2}}

func TestExportStreamsAndCleansUp(t *testing.T) {
	e, dir := newTestExporter(t, &stubRenderer{}, slashedReport)

	x, err := e.Export(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, "BAPP_001_BAPP_VIII_2024_20240820-143005.pdf", x.FileName)
	require.Equal(t, dir, filepath.Dir(x.Path))
	require.True(t, strings.HasPrefix(filepath.Base(x.Path), "BAPP_001_BAPP_VIII_2024_"))
	require.True(t, exists(x.Path))

	var buf bytes.Buffer
	n, err := x.StreamTo(context.Background(), &buf)
	require.NoError(t, err)
	require.Equal(t, x.Size(), n)
	require.Equal(t, "%PDF-1.3 001/BAPP/VIII/2024", buf.String())
	require.False(t, exists(x.Path))
	require.Empty(t, leftovers(t, dir))

	require.NoError(t, x.Close(), "second close is a no-op")
}

func TestExportCleansUpAfterWriterFailure(t *testing.T) {
	e, dir := newTestExporter(t, &stubRenderer{}, slashedReport)
	x, err := e.Export(context.Background(), 7)
	require.NoError(t, err)

	_, err = x.StreamTo(context.Background(), brokenPipe{})
	require.True(t, errors.Is(err, ErrStorage))
	require.Empty(t, leftovers(t, dir))
}

func TestExportCleansUpAfterCancel(t *testing.T) {
	e, dir := newTestExporter(t, &stubRenderer{}, slashedReport)
	x, err := e.Export(context.Background(), 7)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	n, err := x.StreamTo(ctx, &buf)
	require.Zero(t, n)
	require.True(t, errors.Is(err, context.Canceled))
	require.Empty(t, leftovers(t, dir))
}

func TestExportCloseWithoutStreaming(t *testing.T) {
	e, dir := newTestExporter(t, &stubRenderer{}, slashedReport)
	x, err := e.Export(context.Background(), 7)
	require.NoError(t, err)

	require.NoError(t, x.Close())
	require.Empty(t, leftovers(t, dir))
}

func TestExportRenderFailureLeavesNoFile(t *testing.T) {
	e, dir := newTestExporter(t, &stubRenderer{err: errors.New("bad image")}, slashedReport)

	x, err := e.Export(context.Background(), 7)
	require.Nil(t, x)
	require.True(t, errors.Is(err, ErrRender))
	require.Empty(t, leftovers(t, dir))
}

func TestExportCancelledBeforeHandOff(t *testing.T) {
	e, dir := newTestExporter(t, &stubRenderer{}, slashedReport)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Export(ctx, 7)
	require.Error(t, err)
	require.Empty(t, leftovers(t, dir))
}

func TestExportLongMultibyteNumber(t *testing.T) {
	wide := &Report{ID: 9, BAPPNumber: strings.Repeat("報", 100), Vendor: Party{ID: 2}}
	e, dir := newTestExporter(t, &stubRenderer{}, wide)

	x, err := e.Export(context.Background(), 9)
	require.NoError(t, err)
	require.LessOrEqual(t, len(filepath.Base(x.Path)), 255)
	require.LessOrEqual(t, len(x.FileName), 255)
	require.True(t, strings.HasPrefix(x.FileName, "BAPP_"+strings.Repeat("報", 33)+"_"))

	var buf bytes.Buffer
	_, err = x.StreamTo(context.Background(), &buf)
	require.NoError(t, err)
	require.Empty(t, leftovers(t, dir))
}

func TestExportUnknownReport(t *testing.T) {
	r := &stubRenderer{}
	e, dir := newTestExporter(t, r, slashedReport)

	_, err := e.Export(context.Background(), 8)
	require.True(t, errors.Is(err, ErrNotFound))
	require.Empty(t, r.calls, "renderer must not run")
	require.Empty(t, leftovers(t, dir))
}

func TestExportPassesResolvedSignatures(t *testing.T) {
	now := time.Now()
	report := &Report{
		ID:         9,
		BAPPNumber: "009",
		Vendor:     Party{ID: 2},
		Approver:   &Party{ID: 3},
		Attachments: []Attachment{
			{ID: 1, Classification: ClassSignature, UploaderID: 2, Path: "/data/signatures/v.png", CreatedAt: now},
			{ID: 2, Classification: ClassSignature, UploaderID: 3, Path: "/data/signatures/d.png", CreatedAt: now},
		},
	}
	r := &stubRenderer{}
	e, _ := newTestExporter(t, r, report)
	x, err := e.Export(context.Background(), 9)
	require.NoError(t, err)
	require.NoError(t, x.Close())

	require.Equal(t, []Signatures{{Vendor: "/data/signatures/v.png", Approver: "/data/signatures/d.png"}}, r.calls)
}

func TestConcurrentExportsUseDistinctFiles(t *testing.T) {
	e, dir := newTestExporter(t, &stubRenderer{}, slashedReport)

	const n = 8
	paths := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			x, err := e.Export(context.Background(), 7)
			if err != nil {
				t.Error(err)
				return
			}
			paths[i] = x.Path
			var buf bytes.Buffer
			if _, err := x.StreamTo(context.Background(), &buf); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, p := range paths {
		require.NotEmpty(t, p)
		require.False(t, seen[p], "duplicate temp path %s", p)
		seen[p] = true
	}
	require.Empty(t, leftovers(t, dir))
}

type brokenPipe struct{}

func (brokenPipe) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }
