package doc

import (
	"archive/zip"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/ztrue/tracerr"

	"github.com/Felipe10812/Extractor-de-PDF/internal/imaging"
	"github.com/Felipe10812/Extractor-de-PDF/internal/pages"
)

// embedScale converts page points to canvas pixels for embedded page images
// (150 DPI over the 72 DPI point base).
const embedScale = 150.0 / 72.0

// previewScale shrinks page mockups to 30% of true page size.
const previewScale = 0.3

// ImageInfo is the per-image metadata record built at load time. Err marks
// an unreadable file; such entries stay in the list but render as nil and
// are excluded from the page count.
type ImageInfo struct {
	Path   string
	Index  int // 1-based position in the load list
	Name   string
	Format string
	Width  int
	Height int
	Err    error
}

// ImageService treats a flat list of standalone images as document pages and
// converts them into PDFs or re-encoded image sets.
type ImageService struct {
	infos []ImageInfo
	valid int
}

// NewImageService probes every image path. Unreadable files are recorded
// with an error marker rather than failing the load.
func NewImageService(paths []string) *ImageService {
	s := &ImageService{}

	for i, path := range paths {
		info := ImageInfo{Path: path, Index: i + 1, Name: filepath.Base(path)}

		img, format, err := decodeImageConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading image %s: %v\n", path, err)
			info.Err = err
		} else {
			info.Format = format
			info.Width = img.Width
			info.Height = img.Height
			s.valid++
		}
		s.infos = append(s.infos, info)
	}

	return s
}

func decodeImageConfig(path string) (image.Config, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, "", tracerr.Wrap(err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return image.Config{}, "", tracerr.Wrap(err)
	}
	return cfg, format, nil
}

// Infos returns the metadata records in load order, error entries included.
func (s *ImageService) Infos() []ImageInfo { return s.infos }

// TotalPages counts only the successfully loaded images.
func (s *ImageService) TotalPages() int { return s.valid }

// RenderPage decodes the 1-based image, flattened to opaque RGB. Preview
// mode applies the explicit scale factor, or the 300px-width cap when scale
// is 1.0; export mode keeps full resolution.
func (s *ImageService) RenderPage(number int, scale float64, forExport bool) image.Image {
	if number < 1 || number > len(s.infos) {
		return nil
	}
	info := s.infos[number-1]
	if info.Err != nil {
		return nil
	}

	img, _, err := imaging.DecodeFile(info.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error rendering image %d: %v\n", number, err)
		return nil
	}

	if forExport {
		return img
	}
	if scale != 1.0 {
		b := img.Bounds()
		w := int(float64(b.Dx())*scale + 0.5)
		h := int(float64(b.Dy())*scale + 0.5)
		if w < 1 || h < 1 {
			return nil
		}
		return imaging.Scale(img, w, h)
	}
	return imaging.ShrinkToWidth(img, imaging.PreviewMaxWidth)
}

// Extract is not applicable to standalone images; images are exported by
// conversion or copying instead.
func (s *ImageService) Extract(pageNums []int, outputPath string) (int, error) {
	return 0, nil
}

// ConvertToPDF builds one PDF with a page per active image, placing each
// image according to the configured page size, orientation and fit mode.
func (s *ImageService) ConvertToPDF(m *pages.Manager, outputPath string, opts PDFPageOptions, progress Progress) error {
	active := m.ActivePagesSorted()
	if len(active) == 0 {
		return ErrNoActivePages
	}

	pageW, pageH := imaging.PageSizePt(opts.PageSize, opts.Orientation)

	tmpDir, err := os.MkdirTemp("", "extractor-")
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer os.RemoveAll(tmpDir)

	total := len(active)
	files := make([]string, 0, total)

	for i, ref := range active {
		if err := report(progress, i, total, fmt.Sprintf("Processing image %d", ref.PageNumber)); err != nil {
			return err
		}

		canvas := s.composePage(ref, pageW, pageH, opts.Fit, embedScale)
		if canvas == nil {
			continue
		}

		path := filepath.Join(tmpDir, fmt.Sprintf("page_%04d.jpg", i))
		if err := writeJPEG(path, canvas, imaging.EmbedJPEGQuality); err != nil {
			fmt.Fprintf(os.Stderr, "skipping image %d: %v\n", ref.PageNumber, err)
			continue
		}
		files = append(files, path)
	}

	if len(files) == 0 {
		return ErrNoActivePages
	}

	if err := report(progress, total, total, "Saving PDF..."); err != nil {
		return err
	}
	if err := s.importImages(files, outputPath, pageW, pageH); err != nil {
		return err
	}

	return report(progress, total, total, "Done")
}

// ConvertToIndividualPDFsZip builds one single-page PDF per active image and
// streams them into a ZIP archive.
func (s *ImageService) ConvertToIndividualPDFsZip(m *pages.Manager, outputPath string, opts PDFPageOptions, progress Progress) (int, error) {
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

	pageW, pageH := imaging.PageSizePt(opts.PageSize, opts.Orientation)
	total := len(active)
	count := 0

	for i, ref := range active {
		if err := report(progress, i, total, fmt.Sprintf("Creating PDF for image %d", ref.PageNumber)); err != nil {
			return count, err
		}

		part, err := s.buildSinglePDF(ref, tmpDir, i, pageW, pageH, opts.Fit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping image %d: %v\n", ref.PageNumber, err)
			continue
		}
		if part == "" {
			continue
		}

		if err := zipAddFile(zw, s.pdfName(ref), part); err != nil {
			return count, err
		}
		count++
	}

	if err := report(progress, total, total, "Saving ZIP archive..."); err != nil {
		return count, err
	}
	return count, nil
}

// ConvertToIndividualPDFsFolder builds one single-page PDF per active image
// in outputFolder.
func (s *ImageService) ConvertToIndividualPDFsFolder(m *pages.Manager, outputFolder string, opts PDFPageOptions, progress Progress) (int, error) {
	active := m.ActivePagesSorted()
	if len(active) == 0 {
		return 0, ErrNoActivePages
	}

	if err := os.MkdirAll(outputFolder, os.ModePerm); err != nil {
		return 0, tracerr.Wrap(err)
	}

	tmpDir, err := os.MkdirTemp("", "extractor-")
	if err != nil {
		return 0, tracerr.Wrap(err)
	}
	defer os.RemoveAll(tmpDir)

	pageW, pageH := imaging.PageSizePt(opts.PageSize, opts.Orientation)
	total := len(active)
	count := 0

	for i, ref := range active {
		if err := report(progress, i, total, fmt.Sprintf("Creating PDF for image %d", ref.PageNumber)); err != nil {
			return count, err
		}

		name := s.pdfName(ref)
		part, err := s.buildSinglePDF(ref, tmpDir, i, pageW, pageH, opts.Fit)
		if err != nil || part == "" {
			if err != nil {
				fmt.Fprintf(os.Stderr, "skipping image %d: %v\n", ref.PageNumber, err)
			}
			continue
		}
		if err := os.Rename(part, filepath.Join(outputFolder, name)); err != nil {
			return count, tracerr.Wrap(err)
		}
		count++

		if err := report(progress, i+1, total, "Saved: "+name); err != nil {
			return count, err
		}
	}

	return count, nil
}

// PreviewPDFPages produces downscaled mockups of each resulting PDF page
// using the same fit geometry as the real conversion. Purely for display;
// never part of an export.
func (s *ImageService) PreviewPDFPages(m *pages.Manager, opts PDFPageOptions) []image.Image {
	pageW, pageH := imaging.PageSizePt(opts.PageSize, opts.Orientation)

	var previews []image.Image
	for _, ref := range m.ActivePagesSorted() {
		img := s.renderForPreview(ref)
		if img == nil {
			continue
		}
		if ref.Rotation != 0 {
			img = imaging.Rotate(img, ref.Rotation)
		}
		canvas := imaging.ComposePage(img, pageW, pageH, opts.Fit, previewScale)
		drawPageBorder(canvas)
		previews = append(previews, canvas)
	}
	return previews
}

// ExportImagesZip re-encodes the active images into a ZIP archive.
func (s *ImageService) ExportImagesZip(m *pages.Manager, outputPath string, format imaging.Format, progress Progress) (int, error) {
	return exportImagesZip(s.renderForExport, s.imageName(format), m, outputPath, format, progress)
}

// ExportImagesFolder re-encodes the active images into a folder.
func (s *ImageService) ExportImagesFolder(m *pages.Manager, outputFolder string, format imaging.Format, progress Progress) (int, error) {
	return exportImagesFolder(s.renderForExport, s.imageName(format), m, outputFolder, format, progress)
}

// DefaultBaseName synthesizes an output name for combined exports over the
// whole image list.
func (s *ImageService) DefaultBaseName() string {
	return fmt.Sprintf("imagenes_%d_items", len(s.infos))
}

// info returns the metadata record a working-set entry points at, or nil.
func (s *ImageService) info(ref *pages.PageRef) *ImageInfo {
	if ref.OriginalPage < 1 || ref.OriginalPage > len(s.infos) {
		return nil
	}
	return &s.infos[ref.OriginalPage-1]
}

func (s *ImageService) renderForExport(ref *pages.PageRef) image.Image {
	return s.RenderPage(ref.OriginalPage, 1.0, true)
}

func (s *ImageService) renderForPreview(ref *pages.PageRef) image.Image {
	return s.RenderPage(ref.OriginalPage, 1.0, false)
}

// composePage renders the entry's image (rotated) onto a page canvas, or nil
// when the image cannot be loaded.
func (s *ImageService) composePage(ref *pages.PageRef, pageW, pageH float64, fit imaging.FitMode, scale float64) image.Image {
	img := s.renderForExport(ref)
	if img == nil {
		return nil
	}
	if ref.Rotation != 0 {
		img = imaging.Rotate(img, ref.Rotation)
	}
	return imaging.ComposePage(img, pageW, pageH, fit, scale)
}

// buildSinglePDF writes one page canvas as a standalone PDF in tmpDir and
// returns its path, or "" when the source image is unloadable.
func (s *ImageService) buildSinglePDF(ref *pages.PageRef, tmpDir string, seq int, pageW, pageH float64, fit imaging.FitMode) (string, error) {
	canvas := s.composePage(ref, pageW, pageH, fit, embedScale)
	if canvas == nil {
		return "", nil
	}

	jpgPath := filepath.Join(tmpDir, fmt.Sprintf("img_%04d.jpg", seq))
	if err := writeJPEG(jpgPath, canvas, imaging.EmbedJPEGQuality); err != nil {
		return "", err
	}

	pdfPath := filepath.Join(tmpDir, fmt.Sprintf("img_%04d.pdf", seq))
	if err := s.importImages([]string{jpgPath}, pdfPath, pageW, pageH); err != nil {
		return "", err
	}
	return pdfPath, nil
}

// importImages synthesizes PDF pages of exactly pageW x pageH points from
// pre-composed page canvases. The canvases share the page aspect ratio, so a
// relative scale of 1.0 fills each page edge to edge.
func (s *ImageService) importImages(files []string, outputPath string, pageW, pageH float64) error {
	desc := fmt.Sprintf("dim:%d %d, pos:c, sc:1.0 rel", int(pageW+0.5), int(pageH+0.5))
	imp, err := pdfcpu.ParseImportDetails(desc, types.POINTS)
	if err != nil {
		return tracerr.Wrap(err)
	}

	if err := ensureParentDir(outputPath); err != nil {
		return err
	}
	if err := pdfcpuapi.ImportImagesFile(files, outputPath, imp, newPDFConfig()); err != nil {
		return tracerr.Wrap(err)
	}
	return nil
}

func (s *ImageService) pdfName(ref *pages.PageRef) string {
	if info := s.info(ref); info != nil {
		return imageFileName(stem(info.Name), ref.PageNumber, "pdf")
	}
	return imageFileName("imagen", ref.PageNumber, "pdf")
}

func (s *ImageService) imageName(format imaging.Format) func(*pages.PageRef) string {
	ext := imaging.FileExt(format)
	return func(ref *pages.PageRef) string {
		if info := s.info(ref); info != nil {
			return imageFileName(stem(info.Name), ref.PageNumber, ext)
		}
		return imageFileName("imagen", ref.PageNumber, ext)
	}
}

func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return tracerr.Wrap(err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		return tracerr.Wrap(err)
	}
	return nil
}

// drawPageBorder outlines a preview canvas with a light gray 1px frame to
// suggest the page edge.
func drawPageBorder(canvas *image.RGBA) {
	b := canvas.Bounds()
	gray := color.RGBA{200, 200, 200, 255}
	for x := b.Min.X; x < b.Max.X; x++ {
		canvas.Set(x, b.Min.Y, gray)
		canvas.Set(x, b.Max.Y-1, gray)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		canvas.Set(b.Min.X, y, gray)
		canvas.Set(b.Max.X-1, y, gray)
	}
}
