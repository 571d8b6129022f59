// Package imaging holds the raster operations shared by the document
// services: 90-degree rotation, preview downsampling, image codecs, and the
// fit/fill/stretch geometry used when placing images onto PDF pages.
package imaging

import (
	"image"
	"image/color"
	idraw "image/draw"

	xdraw "golang.org/x/image/draw"
)

// FitMode selects how an image is placed within a target page.
type FitMode string

const (
	// FitContain scales to fit inside the page, centered, possibly leaving
	// letterbox borders.
	FitContain FitMode = "fit"
	// FitCover scales to cover the whole page, centered, cropping overflow.
	FitCover FitMode = "fill"
	// FitStretch scales each axis independently to exactly the page size.
	FitStretch FitMode = "stretch"
)

// Orientation of a target page.
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Page sizes in points at 72 DPI, portrait.
var pageSizes = map[string][2]float64{
	"A4":     {595, 842},
	"Letter": {612, 792},
	"Legal":  {612, 1008},
	"A3":     {842, 1191},
	"A5":     {420, 595},
}

// PageSizePt returns the page dimensions in points for a named size and
// orientation. Unknown names fall back to A4.
func PageSizePt(name string, orientation Orientation) (w, h float64) {
	size, ok := pageSizes[name]
	if !ok {
		size = pageSizes["A4"]
	}
	if orientation == Landscape {
		return size[1], size[0]
	}
	return size[0], size[1]
}

// Rect is a placement rectangle in page coordinates.
type Rect struct {
	X, Y, W, H float64
}

// PlaceRect computes where an image of size (imgW, imgH) lands on a page of
// size (pageW, pageH) under the given fit mode. For FitCover the rectangle
// extends past the page bounds; the caller crops by clipping to the page.
func PlaceRect(imgW, imgH, pageW, pageH float64, mode FitMode) Rect {
	if imgW <= 0 || imgH <= 0 {
		return Rect{W: pageW, H: pageH}
	}

	switch mode {
	case FitCover:
		scale := max(pageW/imgW, pageH/imgH)
		w, h := imgW*scale, imgH*scale
		return Rect{X: (pageW - w) / 2, Y: (pageH - h) / 2, W: w, H: h}
	case FitStretch:
		return Rect{W: pageW, H: pageH}
	default: // FitContain
		scale := min(pageW/imgW, pageH/imgH)
		w, h := imgW*scale, imgH*scale
		return Rect{X: (pageW - w) / 2, Y: (pageH - h) / 2, W: w, H: h}
	}
}

// ComposePage draws img onto a white page canvas. Page dimensions are given
// in points; scale converts points to canvas pixels (e.g. 150.0/72 for a
// 150 DPI canvas, 0.3 for preview mockups). Overflow in FitCover mode is
// clipped at the canvas edge.
func ComposePage(img image.Image, pageW, pageH float64, mode FitMode, scale float64) *image.RGBA {
	cw := int(pageW*scale + 0.5)
	ch := int(pageH*scale + 0.5)
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}

	canvas := image.NewRGBA(image.Rect(0, 0, cw, ch))
	idraw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, idraw.Src)

	b := img.Bounds()
	place := PlaceRect(float64(b.Dx()), float64(b.Dy()), pageW, pageH, mode)

	dst := image.Rect(
		int(place.X*scale+0.5),
		int(place.Y*scale+0.5),
		int((place.X+place.W)*scale+0.5),
		int((place.Y+place.H)*scale+0.5),
	)

	// Scale clips to the canvas bounds, which is exactly the crop FitCover needs.
	xdraw.CatmullRom.Scale(canvas, dst, img, b, xdraw.Over, nil)

	return canvas
}
