package doc

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ztrue/tracerr"

	"github.com/Felipe10812/Extractor-de-PDF/internal/imaging"
	"github.com/Felipe10812/Extractor-de-PDF/internal/pages"
)

// PDFSourceInfo describes one loaded PDF inside the merger. StartPage and
// EndPage are the source's inclusive range in the virtual concatenated
// sequence; ranges are contiguous, non-overlapping, and fixed once the
// merger is built.
type PDFSourceInfo struct {
	Path      string
	Name      string
	PageCount int
	StartPage int
	EndPage   int
}

// PDFMergerService virtually concatenates multiple PDFs: global page numbers
// run 1..sum(pageCounts) across sources in load order, and every
// page-indexed operation resolves a global number to (source, local page)
// first.
type PDFMergerService struct {
	sources []PDFSourceInfo
	total   int
	conf    *model.Configuration
}

// NewPDFMergerService opens every path and assigns the contiguous global
// ranges. Any unreadable document fails the whole load.
func NewPDFMergerService(paths []string) (*PDFMergerService, error) {
	s := &PDFMergerService{conf: newPDFConfig()}

	current := 1
	for _, path := range paths {
		count, err := pdfPageCount(path)
		if err != nil {
			return nil, tracerr.Wrap(fmt.Errorf("loading %s: %w", path, err))
		}
		s.sources = append(s.sources, PDFSourceInfo{
			Path:      path,
			Name:      filepath.Base(path),
			PageCount: count,
			StartPage: current,
			EndPage:   current + count - 1,
		})
		current += count
	}
	s.total = current - 1

	return s, nil
}

// Sources returns the per-document metadata in load order.
func (s *PDFMergerService) Sources() []PDFSourceInfo { return s.sources }

// SourceCount returns the number of loaded documents.
func (s *PDFMergerService) SourceCount() int { return len(s.sources) }

// TotalPages reports the combined page count of all sources.
func (s *PDFMergerService) TotalPages() int { return s.total }

// Resolve maps a global page number to its source document index and
// 1-based local page, or (-1, 0) when no source covers the number. Callers
// building a working set record the result as page provenance.
func (s *PDFMergerService) Resolve(globalPage int) (sourceIndex, localPage int) {
	return s.findSource(globalPage)
}

// findSource maps a global page number to its source document and 1-based
// local page. Linear scan; document counts are small. Returns index -1 when
// no source covers the number.
func (s *PDFMergerService) findSource(globalPage int) (sourceIndex, localPage int) {
	for i, src := range s.sources {
		if globalPage >= src.StartPage && globalPage <= src.EndPage {
			return i, globalPage - src.StartPage + 1
		}
	}
	return -1, 0
}

// RenderPage rasterizes the page at a global page number.
func (s *PDFMergerService) RenderPage(number int, scale float64, forExport bool) image.Image {
	idx, local := s.findSource(number)
	if idx < 0 {
		return nil
	}
	return renderPDFPage(s.sources[idx].Path, local, scale, forExport)
}

// Extract copies the valid requested global pages, in the order given, into
// a new PDF. Pages that resolve to no source are skipped.
func (s *PDFMergerService) Extract(pageNums []int, outputPath string) (int, error) {
	tmpDir, err := os.MkdirTemp("", "extractor-")
	if err != nil {
		return 0, tracerr.Wrap(err)
	}
	defer os.RemoveAll(tmpDir)

	parts := make([]string, 0, len(pageNums))
	for i, p := range pageNums {
		idx, local := s.findSource(p)
		if idx < 0 {
			continue
		}
		part := filepath.Join(tmpDir, fmt.Sprintf("part_%04d.pdf", i))
		if err := extractSinglePage(s.sources[idx].Path, local, 0, part, s.conf); err != nil {
			fmt.Fprintf(os.Stderr, "skipping page %d: %v\n", p, err)
			continue
		}
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		return 0, nil
	}
	if err := mergeParts(parts, outputPath, s.conf); err != nil {
		return 0, err
	}
	return len(parts), nil
}

// ExportCombinedPDF writes the active pages, ascending by display number
// with rotations applied, into one PDF drawn from all sources.
func (s *PDFMergerService) ExportCombinedPDF(m *pages.Manager, outputPath string, progress Progress) error {
	return exportCombinedPDF(s, s.conf, m, outputPath, progress)
}

// ExportIndividualPDFs writes one PDF file per active page into outputFolder.
func (s *PDFMergerService) ExportIndividualPDFs(m *pages.Manager, outputFolder string, progress Progress) (int, error) {
	return exportIndividualPDFs(s, s.conf, m, outputFolder, progress)
}

// ExportIndividualPDFsZip writes one PDF per active page into a ZIP archive.
func (s *PDFMergerService) ExportIndividualPDFsZip(m *pages.Manager, outputPath string, progress Progress) (int, error) {
	return exportIndividualPDFsZip(s, s.conf, m, outputPath, progress)
}

// ExportImagesZip renders the active pages at export quality into a ZIP of
// images.
func (s *PDFMergerService) ExportImagesZip(m *pages.Manager, outputPath string, format imaging.Format, progress Progress) (int, error) {
	return exportImagesZip(s.renderForExport, s.imageName(format), m, outputPath, format, progress)
}

// ExportImagesFolder renders the active pages at export quality into a
// folder of images.
func (s *PDFMergerService) ExportImagesFolder(m *pages.Manager, outputFolder string, format imaging.Format, progress Progress) (int, error) {
	return exportImagesFolder(s.renderForExport, s.imageName(format), m, outputFolder, format, progress)
}

// resolve maps a working-set entry to its source file and local page via the
// provenance recorded at load time. Content follows the ref through
// reorders; an entry whose provenance no longer matches a loaded source is
// skipped.
func (s *PDFMergerService) resolve(ref *pages.PageRef) (string, int, bool) {
	if ref.SourceIndex < 0 || ref.SourceIndex >= len(s.sources) {
		return "", 0, false
	}
	src := s.sources[ref.SourceIndex]
	if ref.OriginalPage < 1 || ref.OriginalPage > src.PageCount {
		return "", 0, false
	}
	return src.Path, ref.OriginalPage, true
}

func (s *PDFMergerService) base() string {
	return fmt.Sprintf("merged_%d_pdfs", len(s.sources))
}

func (s *PDFMergerService) renderForExport(ref *pages.PageRef) image.Image {
	path, local, ok := s.resolve(ref)
	if !ok {
		return nil
	}
	return renderPDFPage(path, local, 1.0, true)
}

func (s *PDFMergerService) imageName(format imaging.Format) func(*pages.PageRef) string {
	ext := imaging.FileExt(format)
	return func(ref *pages.PageRef) string {
		return pdfPageFileName(s.base(), ref.PageNumber, ext)
	}
}
