package imaging

import (
	"image"
	idraw "image/draw"
)

// Rotate returns a new bitmap rotated clockwise by the given number of
// degrees (any multiple of 90). The canvas expands for 90/270. The source is
// never modified; a rotation of 0 still returns a fresh copy so that callers
// can treat the result as exclusively owned.
func Rotate(img image.Image, degrees int) *image.RGBA {
	degrees = ((degrees % 360) + 360) % 360

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch degrees {
	case 90:
		dst := image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.Set(h-1-y, x, img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
		return dst
	case 180:
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.Set(w-1-x, h-1-y, img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
		return dst
	case 270:
		dst := image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.Set(y, w-1-x, img.At(b.Min.X+x, b.Min.Y+y))
			}
		}
		return dst
	default:
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		idraw.Draw(dst, dst.Bounds(), img, b.Min, idraw.Src)
		return dst
	}
}
