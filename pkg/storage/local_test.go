package storage

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bapp/pkg/bapp"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.EnsureLayout())
	return s
}

func TestStageKeepsExtensionAndAbsolutePath(t *testing.T) {
	s := newStore(t)
	sf, err := s.Stage(context.Background(), bapp.ClassSignature, "Tanda Tangan.PNG", "image/png", strings.NewReader("data"), 100)
	require.NoError(t, err)

	require.True(t, filepath.IsAbs(sf.Path))
	require.Equal(t, filepath.Join(s.Base(), SignatureDir), filepath.Dir(sf.Path))
	require.True(t, strings.HasSuffix(sf.FileName, ".png"))
	require.Equal(t, "Tanda Tangan.PNG", sf.OriginalName)
	require.EqualValues(t, 4, sf.Size)

	other, err := s.Stage(context.Background(), bapp.ClassSignature, "Tanda Tangan.PNG", "image/png", strings.NewReader("data"), 100)
	require.NoError(t, err)
	require.NotEqual(t, sf.Path, other.Path)

	doc, err := s.Stage(context.Background(), bapp.ClassDocument, "kontrak.pdf", "application/pdf", strings.NewReader("%PDF"), 100)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(s.Base(), DocumentDir), filepath.Dir(doc.Path))
}

func TestSaveOverLimitLeavesNothing(t *testing.T) {
	s := newStore(t)
	_, _, err := s.Save(context.Background(), SignatureDir, "big.png", bytes.NewReader(make([]byte, 11)), 10)
	require.True(t, errors.Is(err, bapp.ErrValidation))

	entries, err := os.ReadDir(filepath.Join(s.Base(), SignatureDir))
	require.NoError(t, err)
	require.Empty(t, entries)

	p, n, err := s.Save(context.Background(), SignatureDir, "fits.png", bytes.NewReader(make([]byte, 10)), 10)
	require.NoError(t, err)
	require.EqualValues(t, 10, n)
	require.FileExists(t, p)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestSaveReadErrorLeavesNothing(t *testing.T) {
	s := newStore(t)
	_, _, err := s.Save(context.Background(), DocumentDir, "x.pdf", io.MultiReader(strings.NewReader("abc"), failingReader{}), 0)
	require.True(t, errors.Is(err, bapp.ErrStorage))
	require.NoFileExists(t, filepath.Join(s.Base(), DocumentDir, "x.pdf"))
}

func TestSaveRejectsEscapingPaths(t *testing.T) {
	s := newStore(t)
	_, _, err := s.Save(context.Background(), "../outside", "a.png", strings.NewReader("x"), 0)
	require.True(t, errors.Is(err, bapp.ErrValidation))
	_, _, err = s.Save(context.Background(), SignatureDir, "../a.png", strings.NewReader("x"), 0)
	require.True(t, errors.Is(err, bapp.ErrValidation))
}

func TestRemoveToleratesMissing(t *testing.T) {
	s := newStore(t)
	p, _, err := s.Save(context.Background(), DocumentDir, "a.pdf", strings.NewReader("x"), 0)
	require.NoError(t, err)

	require.NoError(t, s.Remove(context.Background(), p))
	require.NoFileExists(t, p)
	require.NoError(t, s.Remove(context.Background(), p))
}

func TestOpenMissing(t *testing.T) {
	s := newStore(t)
	_, err := s.Open(context.Background(), filepath.Join(s.Base(), "nope"))
	require.True(t, errors.Is(err, bapp.ErrNotFound))
}

func TestShrinkImage(t *testing.T) {
	dir := t.TempDir()
	wide := filepath.Join(dir, "wide.png")
	require.NoError(t, imaging.Save(imaging.New(2400, 600, color.NRGBA{0, 0, 0, 255}), wide))
	sf := &bapp.StagedFile{Path: wide}

	changed, err := ShrinkImage(sf, MaxSignatureWidth)
	require.NoError(t, err)
	require.True(t, changed)
	img, err := imaging.Open(wide)
	require.NoError(t, err)
	require.Equal(t, MaxSignatureWidth, img.Bounds().Dx())
	require.Equal(t, 300, img.Bounds().Dy())
	info, _ := os.Stat(wide)
	require.Equal(t, info.Size(), sf.Size)

	small := filepath.Join(dir, "small.jpg")
	require.NoError(t, imaging.Save(imaging.New(300, 100, color.NRGBA{0, 0, 0, 255}), small))
	changed, err = ShrinkImage(&bapp.StagedFile{Path: small}, MaxSignatureWidth)
	require.NoError(t, err)
	require.False(t, changed)
}
