package pdfreport

import (
	"bytes"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// loadSignature decodes a signature image and re-encodes it as an opaque PNG
// so the PDF writer only ever sees one well-formed format.
func loadSignature(path string) ([]byte, image.Point, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, image.Point{}, err
	}
	b := img.Bounds()
	flat := imaging.New(b.Dx(), b.Dy(), color.NRGBA{255, 255, 255, 255})
	flat = imaging.Overlay(flat, img, image.Pt(0, 0), 1.0)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, flat, imaging.PNG); err != nil {
		return nil, image.Point{}, err
	}
	return buf.Bytes(), image.Pt(b.Dx(), b.Dy()), nil
}

// fitBox scales size into a maxW x maxH box keeping the aspect ratio.
func fitBox(size image.Point, maxW, maxH float64) (float64, float64) {
	if size.X <= 0 || size.Y <= 0 {
		return maxW, maxH
	}
	w := maxW
	h := maxW * float64(size.Y) / float64(size.X)
	if h > maxH {
		h = maxH
		w = maxH * float64(size.X) / float64(size.Y)
	}
	return w, h
}
