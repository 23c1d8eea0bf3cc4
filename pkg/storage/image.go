package storage

import (
	"fmt"
	"os"

	"bapp/pkg/bapp"

	"github.com/disintegration/imaging"
)

// MaxSignatureWidth is the widest signature image kept as uploaded.
const MaxSignatureWidth = 1200

// ShrinkImage downscales the staged image in place when it is wider than
// maxWidth, keeping the aspect ratio. It updates sf.Size and reports whether
// the file was rewritten.
func ShrinkImage(sf *bapp.StagedFile, maxWidth int) (bool, error) {
	img, err := imaging.Open(sf.Path, imaging.AutoOrientation(true))
	if err != nil {
		return false, bapp.NewError(bapp.ErrValidation, "cannot decode image", err)
	}
	if img.Bounds().Dx() <= maxWidth {
		return false, nil
	}
	resized := imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	if err := imaging.Save(resized, sf.Path); err != nil {
		return false, bapp.NewError(bapp.ErrStorage, "rewrite image", err)
	}
	info, err := os.Stat(sf.Path)
	if err != nil {
		return false, fmt.Errorf("stat resized image: %w", err)
	}
	sf.Size = info.Size()
	return true, nil
}
