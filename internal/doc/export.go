package doc

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ztrue/tracerr"

	"github.com/Felipe10812/Extractor-de-PDF/internal/imaging"
	"github.com/Felipe10812/Extractor-de-PDF/internal/pages"
)

// pageSource resolves a working-set entry back to the source document page
// it came from. Pages travel with their provenance (source index + original
// page number) so reordering the working set reorders exported content.
type pageSource interface {
	// resolve returns the source file and 1-based local page for a ref, or
	// ok=false when the ref maps to no loadable source page.
	resolve(ref *pages.PageRef) (path string, localPage int, ok bool)
	// base is the filename stem for exported files.
	base() string
}

// exportCombinedPDF writes all active pages, ascending by display number,
// with their stored rotations applied, into one output PDF.
func exportCombinedPDF(src pageSource, conf *model.Configuration, m *pages.Manager, outputPath string, progress Progress) error {
	active := m.ActivePagesSorted()
	if len(active) == 0 {
		return ErrNoActivePages
	}

	tmpDir, err := os.MkdirTemp("", "extractor-")
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer os.RemoveAll(tmpDir)

	total := len(active)
	parts := make([]string, 0, total)

	for i, ref := range active {
		if err := report(progress, i, total, fmt.Sprintf("Processing page %d", ref.PageNumber)); err != nil {
			return err
		}

		path, local, ok := src.resolve(ref)
		if !ok {
			fmt.Fprintf(os.Stderr, "skipping page %d: no source page\n", ref.PageNumber)
			continue
		}

		part := filepath.Join(tmpDir, fmt.Sprintf("part_%04d.pdf", i))
		if err := extractSinglePage(path, local, ref.Rotation, part, conf); err != nil {
			fmt.Fprintf(os.Stderr, "skipping page %d: %v\n", ref.PageNumber, err)
			continue
		}
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		return ErrNoActivePages
	}

	if err := report(progress, total, total, "Saving combined PDF..."); err != nil {
		return err
	}
	if err := mergeParts(parts, outputPath, conf); err != nil {
		return err
	}

	return report(progress, total, total, "Done")
}

// exportIndividualPDFs writes one single-page PDF per active page into
// outputFolder, named {base}_pagina_{n:03d}.pdf, and returns the number of
// files written.
func exportIndividualPDFs(src pageSource, conf *model.Configuration, m *pages.Manager, outputFolder string, progress Progress) (int, error) {
	active := m.ActivePagesSorted()
	if len(active) == 0 {
		return 0, ErrNoActivePages
	}

	if err := os.MkdirAll(outputFolder, os.ModePerm); err != nil {
		return 0, tracerr.Wrap(err)
	}

	total := len(active)
	count := 0

	for i, ref := range active {
		if err := report(progress, i, total, fmt.Sprintf("Creating PDF for page %d", ref.PageNumber)); err != nil {
			return count, err
		}

		path, local, ok := src.resolve(ref)
		if !ok {
			fmt.Fprintf(os.Stderr, "skipping page %d: no source page\n", ref.PageNumber)
			continue
		}

		name := pdfPageFileName(src.base(), ref.PageNumber, "pdf")
		if err := extractSinglePage(path, local, ref.Rotation, filepath.Join(outputFolder, name), conf); err != nil {
			fmt.Fprintf(os.Stderr, "skipping page %d: %v\n", ref.PageNumber, err)
			continue
		}
		count++
	}

	if err := report(progress, total, total, "Done"); err != nil {
		return count, err
	}
	return count, nil
}

// exportIndividualPDFsZip streams one single-page PDF per active page into a
// ZIP archive at outputPath.
func exportIndividualPDFsZip(src pageSource, conf *model.Configuration, m *pages.Manager, outputPath string, progress Progress) (int, error) {
	active := m.ActivePagesSorted()
	if len(active) == 0 {
		return 0, ErrNoActivePages
	}

	tmpDir, err := os.MkdirTemp("", "extractor-")
	if err != nil {
		return 0, tracerr.Wrap(err)
	}
	defer os.RemoveAll(tmpDir)

	if err := ensureParentDir(outputPath); err != nil {
		return 0, err
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return 0, tracerr.Wrap(err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	total := len(active)
	count := 0

	for i, ref := range active {
		if err := report(progress, i, total, fmt.Sprintf("Creating PDF for page %d", ref.PageNumber)); err != nil {
			return count, err
		}

		path, local, ok := src.resolve(ref)
		if !ok {
			fmt.Fprintf(os.Stderr, "skipping page %d: no source page\n", ref.PageNumber)
			continue
		}

		part := filepath.Join(tmpDir, fmt.Sprintf("part_%04d.pdf", i))
		if err := extractSinglePage(path, local, ref.Rotation, part, conf); err != nil {
			fmt.Fprintf(os.Stderr, "skipping page %d: %v\n", ref.PageNumber, err)
			continue
		}

		name := pdfPageFileName(src.base(), ref.PageNumber, "pdf")
		if err := zipAddFile(zw, name, part); err != nil {
			return count, err
		}
		count++
	}

	if err := report(progress, total, total, "Saving ZIP archive..."); err != nil {
		return count, err
	}
	return count, nil
}

// exportImagesZip renders each active page at export quality, applies its
// rotation, encodes it in the requested format and streams it into a ZIP
// archive. nameFor decides the per-entry filename.
func exportImagesZip(render func(*pages.PageRef) image.Image, nameFor func(*pages.PageRef) string, m *pages.Manager, outputPath string, format imaging.Format, progress Progress) (int, error) {
	active := m.ActivePagesSorted()
	if len(active) == 0 {
		return 0, ErrNoActivePages
	}

	if err := ensureParentDir(outputPath); err != nil {
		return 0, err
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return 0, tracerr.Wrap(err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	total := len(active)
	count := 0

	for i, ref := range active {
		if err := report(progress, i, total, fmt.Sprintf("Processing page %d", ref.PageNumber)); err != nil {
			return count, err
		}

		img := render(ref)
		if img == nil {
			fmt.Fprintf(os.Stderr, "skipping page %d: no source image\n", ref.PageNumber)
			continue
		}
		if ref.Rotation != 0 {
			img = imaging.Rotate(img, ref.Rotation)
		}

		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, format); err != nil {
			fmt.Fprintf(os.Stderr, "skipping page %d: %v\n", ref.PageNumber, err)
			continue
		}

		w, err := zw.Create(nameFor(ref))
		if err != nil {
			return count, tracerr.Wrap(err)
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return count, tracerr.Wrap(err)
		}
		count++
	}

	if err := report(progress, total, total, "Saving ZIP archive..."); err != nil {
		return count, err
	}
	return count, nil
}

// exportImagesFolder is the folder counterpart of exportImagesZip.
func exportImagesFolder(render func(*pages.PageRef) image.Image, nameFor func(*pages.PageRef) string, m *pages.Manager, outputFolder string, format imaging.Format, progress Progress) (int, error) {
	active := m.ActivePagesSorted()
	if len(active) == 0 {
		return 0, ErrNoActivePages
	}

	if err := os.MkdirAll(outputFolder, os.ModePerm); err != nil {
		return 0, tracerr.Wrap(err)
	}

	total := len(active)
	count := 0

	for i, ref := range active {
		if err := report(progress, i, total, fmt.Sprintf("Processing page %d", ref.PageNumber)); err != nil {
			return count, err
		}

		img := render(ref)
		if img == nil {
			fmt.Fprintf(os.Stderr, "skipping page %d: no source image\n", ref.PageNumber)
			continue
		}
		if ref.Rotation != 0 {
			img = imaging.Rotate(img, ref.Rotation)
		}

		name := nameFor(ref)
		if err := imaging.EncodeFile(filepath.Join(outputFolder, name), img, format); err != nil {
			fmt.Fprintf(os.Stderr, "skipping page %d: %v\n", ref.PageNumber, err)
			continue
		}
		count++

		if err := report(progress, i+1, total, "Saved: "+name); err != nil {
			return count, err
		}
	}

	return count, nil
}
