package imaging

import (
	"image"
	"image/color"
	idraw "image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/ztrue/tracerr"
	"golang.org/x/image/tiff"

	// decoders for the supported input formats
	_ "image/gif"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Format is an output image codec.
type Format string

const (
	PNG  Format = "PNG"
	JPEG Format = "JPEG"
	TIFF Format = "TIFF"
)

// ExportJPEGQuality is the quality used for page images written at export
// time; embedded PDF page images use EmbedJPEGQuality.
const (
	ExportJPEGQuality = 95
	EmbedJPEGQuality  = 90
)

// FileExt returns the lowercase filename extension for a format.
func FileExt(f Format) string {
	return strings.ToLower(string(f))
}

// Encode writes img to w in the given format. JPEG uses quality 95, PNG the
// default compression level, TIFF deflate (the x/image encoder has no LZW
// write path, so deflate stands in as the lossless option).
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case JPEG:
		return tracerr.Wrap(jpeg.Encode(w, img, &jpeg.Options{Quality: ExportJPEGQuality}))
	case TIFF:
		return tracerr.Wrap(tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}))
	default:
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		return tracerr.Wrap(enc.Encode(w, img))
	}
}

// EncodeFile writes img to path in the given format.
func EncodeFile(path string, img image.Image, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer file.Close()

	return Encode(file, img, f)
}

// DecodeFile loads an image from disk. Transparency (alpha channel or
// palette) is flattened onto a white background so the result is always
// opaque, matching what ends up on a PDF page.
func DecodeFile(path string) (image.Image, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", tracerr.Wrap(err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", tracerr.Wrap(err)
	}

	return Flatten(img), format, nil
}

// Flatten composites img onto a white background, producing an opaque RGBA
// bitmap.
func Flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	idraw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, idraw.Src)
	idraw.Draw(dst, dst.Bounds(), img, b.Min, idraw.Over)
	return dst
}
