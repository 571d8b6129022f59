package imaging

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// PreviewMaxWidth caps preview bitmaps for display efficiency.
const PreviewMaxWidth = 300

// ShrinkToWidth downsamples img so its width does not exceed maxWidth,
// preserving aspect ratio. Images already narrow enough are returned as-is.
func ShrinkToWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxWidth {
		return img
	}

	ratio := float64(maxWidth) / float64(b.Dx())
	height := int(float64(b.Dy())*ratio + 0.5)
	if height < 1 {
		height = 1
	}

	return Scale(img, maxWidth, height)
}

// Scale resamples img to exactly width x height using Catmull-Rom
// interpolation.
func Scale(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
