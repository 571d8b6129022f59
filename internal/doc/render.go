package doc

import (
	"context"
	"fmt"
	"image"
	"os"

	fitz "github.com/gen2brain/go-fitz"
	"golang.org/x/sync/errgroup"

	"github.com/Felipe10812/Extractor-de-PDF/internal/imaging"
)

const (
	// exportDPI targets print quality for rendered page bitmaps.
	exportDPI = 300.0
	// previewDPI is 2x the 72 DPI base; previews are then capped at 300px wide.
	previewDPI = 144.0
)

// renderPDFPage rasterizes one page of the PDF at path. The document is
// reopened per call; renders are infrequent, user-triggered events and
// reopening keeps concurrent renders of different pages safe without a
// handle-locking scheme. Failures are reported on stderr and yield nil so a
// bad page never aborts a batch.
func renderPDFPage(path string, pageNum int, scale float64, forExport bool) image.Image {
	fdoc, err := fitz.New(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening %s: %v\n", path, err)
		return nil
	}
	defer fdoc.Close()

	if pageNum < 1 || pageNum > fdoc.NumPage() {
		return nil
	}

	dpi := previewDPI
	if forExport {
		dpi = exportDPI
	} else if scale != 1.0 {
		dpi = 72.0 * scale
	}

	img, err := fdoc.ImageDPI(pageNum-1, dpi)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error rendering page %d of %s: %v\n", pageNum, path, err)
		return nil
	}

	if !forExport {
		return imaging.ShrinkToWidth(img, imaging.PreviewMaxWidth)
	}
	return img
}

// RenderPages renders a batch of pages with bounded parallelism, for
// populating previews. Results line up with numbers; a page that fails to
// render leaves a nil slot. Cancelling ctx stops the remaining work.
func RenderPages(ctx context.Context, svc Service, numbers []int, concurrency int) ([]image.Image, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	results := make([]image.Image, len(numbers))

	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)

	for i, number := range numbers {
		i, number := i, number
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			results[i] = svc.RenderPage(number, 1.0, false)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
