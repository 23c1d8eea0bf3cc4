package bapp

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyAdmit(t *testing.T) {
	p := DefaultPolicy(0, 0)
	require.Equal(t, DefaultSignatureMaxBytes, p.Limit(ClassSignature))
	require.Equal(t, DefaultDocumentMaxBytes, p.Limit(ClassDocument))

	cases := []struct {
		name string
		c    Classification
		file string
		mime string
		size int64
		ok   bool
	}{
		{"png signature", ClassSignature, "ttd.PNG", "image/png", 1024, true},
		{"jpeg with charset param", ClassSignature, "ttd.jpeg", "image/jpeg; charset=binary", 1024, true},
		{"gif signature", ClassSignature, "ttd.gif", "image/gif", 1024, false},
		{"png name but text mime", ClassSignature, "ttd.png", "text/plain", 1024, false},
		{"signature at limit", ClassSignature, "ttd.jpg", "image/jpg", DefaultSignatureMaxBytes, true},
		{"signature over limit", ClassSignature, "ttd.jpg", "image/jpeg", DefaultSignatureMaxBytes + 1, false},
		{"xlsx document", ClassDocument, "rekap.xlsx", "application/octet-stream", 4096, true},
		{"exe document", ClassDocument, "setup.exe", "application/octet-stream", 4096, false},
		{"no extension", ClassDocument, "README", "", 10, false},
		{"document over limit", ClassDocument, "scan.pdf", "application/pdf", DefaultDocumentMaxBytes + 1, false},
		{"unknown class", "photo", "a.png", "image/png", 1, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := p.Admit(tc.c, tc.file, tc.mime, tc.size)
			if tc.ok {
				require.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, ErrValidation), "got %v", err)
		})
	}
}

func TestPolicyVerify(t *testing.T) {
	p := DefaultPolicy(0, 0)
	dir := t.TempDir()

	png := filepath.Join(dir, "real.png")
	require.NoError(t, os.WriteFile(png, pngBytes(), 0o644))
	mt, err := p.Verify(ClassSignature, png)
	require.NoError(t, err)
	require.Equal(t, "image/png", mt)

	fake := filepath.Join(dir, "fake.png")
	require.NoError(t, os.WriteFile(fake, []byte("#!/bin/sh\necho hi\n"), 0o644))
	_, err = p.Verify(ClassSignature, fake)
	require.True(t, errors.Is(err, ErrValidation))

	// documents are not sniffed against a list
	mt, err = p.Verify(ClassDocument, fake)
	require.NoError(t, err)
	require.NotEmpty(t, mt)

	_, err = p.Verify(ClassSignature, filepath.Join(dir, "missing.png"))
	require.True(t, errors.Is(err, ErrStorage))
}
