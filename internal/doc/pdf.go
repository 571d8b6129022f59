package doc

import (
	"image"
	"strconv"

	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ztrue/tracerr"

	"github.com/Felipe10812/Extractor-de-PDF/internal/imaging"
	"github.com/Felipe10812/Extractor-de-PDF/internal/pages"
)

// PDFService is the single-document engine: page extraction, rendering and
// export for one loaded PDF.
type PDFService struct {
	path  string
	total int
	conf  *model.Configuration
}

// NewPDFService opens a PDF and reads its page count.
func NewPDFService(path string) (*PDFService, error) {
	total, err := pdfPageCount(path)
	if err != nil {
		return nil, err
	}
	return &PDFService{path: path, total: total, conf: newPDFConfig()}, nil
}

// Path returns the source document path.
func (s *PDFService) Path() string { return s.path }

// TotalPages reports the document's page count.
func (s *PDFService) TotalPages() int { return s.total }

// RenderPage rasterizes a 1-based page. See Service for the scale contract.
func (s *PDFService) RenderPage(number int, scale float64, forExport bool) image.Image {
	if number < 1 || number > s.total {
		return nil
	}
	return renderPDFPage(s.path, number, scale, forExport)
}

// Extract copies the valid requested pages, in the order given, into a new
// PDF at outputPath. Invalid page numbers are skipped. Returns the number of
// pages copied; nothing is written when no page is valid.
func (s *PDFService) Extract(pageNums []int, outputPath string) (int, error) {
	selected := make([]string, 0, len(pageNums))
	for _, p := range pageNums {
		if p >= 1 && p <= s.total {
			selected = append(selected, strconv.Itoa(p))
		}
	}
	if len(selected) == 0 {
		return 0, nil
	}

	if err := ensureParentDir(outputPath); err != nil {
		return 0, err
	}
	if err := pdfcpuapi.CollectFile(s.path, outputPath, selected, s.conf); err != nil {
		return 0, tracerr.Wrap(err)
	}
	return len(selected), nil
}

// ExportCombinedPDF writes the active pages, sorted ascending by display
// number with rotations applied, into one PDF.
func (s *PDFService) ExportCombinedPDF(m *pages.Manager, outputPath string, progress Progress) error {
	return exportCombinedPDF(s, s.conf, m, outputPath, progress)
}

// ExportIndividualPDFs writes one PDF file per active page into outputFolder.
func (s *PDFService) ExportIndividualPDFs(m *pages.Manager, outputFolder string, progress Progress) (int, error) {
	return exportIndividualPDFs(s, s.conf, m, outputFolder, progress)
}

// ExportIndividualPDFsZip writes one PDF per active page into a ZIP archive.
func (s *PDFService) ExportIndividualPDFsZip(m *pages.Manager, outputPath string, progress Progress) (int, error) {
	return exportIndividualPDFsZip(s, s.conf, m, outputPath, progress)
}

// ExportImagesZip renders the active pages at export quality into a ZIP of
// images.
func (s *PDFService) ExportImagesZip(m *pages.Manager, outputPath string, format imaging.Format, progress Progress) (int, error) {
	return exportImagesZip(s.renderForExport, s.imageName(format), m, outputPath, format, progress)
}

// ExportImagesFolder renders the active pages at export quality into a
// folder of images.
func (s *PDFService) ExportImagesFolder(m *pages.Manager, outputFolder string, format imaging.Format, progress Progress) (int, error) {
	return exportImagesFolder(s.renderForExport, s.imageName(format), m, outputFolder, format, progress)
}

func (s *PDFService) resolve(ref *pages.PageRef) (string, int, bool) {
	if ref.OriginalPage < 1 || ref.OriginalPage > s.total {
		return "", 0, false
	}
	return s.path, ref.OriginalPage, true
}

func (s *PDFService) base() string { return stem(s.path) }

func (s *PDFService) renderForExport(ref *pages.PageRef) image.Image {
	_, local, ok := s.resolve(ref)
	if !ok {
		return nil
	}
	return renderPDFPage(s.path, local, 1.0, true)
}

func (s *PDFService) imageName(format imaging.Format) func(*pages.PageRef) string {
	ext := imaging.FileExt(format)
	return func(ref *pages.PageRef) string {
		return pdfPageFileName(s.base(), ref.PageNumber, ext)
	}
}
