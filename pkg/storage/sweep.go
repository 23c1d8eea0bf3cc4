package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"bapp/pkg/bapp"
)

// SweepTemp removes export artifacts in dir whose modification time is older
// than maxAge. With dryRun set nothing is deleted. It returns the paths that
// were (or would have been) removed.
func SweepTemp(dir string, maxAge time.Duration, now time.Time, dryRun bool) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, bapp.ReportPrefix+"_*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("glob temp dir: %w", err)
	}
	var removed []string
	var errs []error
	for _, p := range matches {
		info, err := os.Stat(p)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
			continue
		}
		if !info.Mode().IsRegular() || now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if !dryRun {
			if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
				continue
			}
		}
		removed = append(removed, p)
	}
	return removed, errors.Join(errs...)
}
