package raster

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales a supersampled frame to the target resolution with
// CatmullRom filtering (close to Lanczos, much cheaper). Frames are
// opaque, so no premultiplication pass is needed.
func Downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
