package doc

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Felipe10812/Extractor-de-PDF/internal/imaging"
	"github.com/Felipe10812/Extractor-de-PDF/internal/pages"
)

func testMerger() *PDFMergerService {
	// three documents of 3, 5 and 2 pages: global ranges 1-3, 4-8, 9-10
	return &PDFMergerService{
		sources: []PDFSourceInfo{
			{Path: "/tmp/a.pdf", Name: "a.pdf", PageCount: 3, StartPage: 1, EndPage: 3},
			{Path: "/tmp/b.pdf", Name: "b.pdf", PageCount: 5, StartPage: 4, EndPage: 8},
			{Path: "/tmp/c.pdf", Name: "c.pdf", PageCount: 2, StartPage: 9, EndPage: 10},
		},
		total: 10,
		conf:  newPDFConfig(),
	}
}

func TestMergerResolve(t *testing.T) {
	s := testMerger()

	cases := []struct {
		global    int
		wantIdx   int
		wantLocal int
	}{
		{1, 0, 1},
		{3, 0, 3},
		{4, 1, 1},
		{8, 1, 5},
		{9, 2, 1},
		{10, 2, 2},
	}
	for _, c := range cases {
		idx, local := s.Resolve(c.global)
		assert.Equal(t, c.wantIdx, idx, "global page %d", c.global)
		assert.Equal(t, c.wantLocal, local, "global page %d", c.global)
	}
}

func TestMergerResolveOutOfRange(t *testing.T) {
	s := testMerger()

	for _, global := range []int{0, -1, 11} {
		idx, local := s.Resolve(global)
		assert.Equal(t, -1, idx, "global page %d", global)
		assert.Equal(t, 0, local, "global page %d", global)
	}
}

func TestMergerResolveRef(t *testing.T) {
	s := testMerger()

	path, local, ok := s.resolve(&pages.PageRef{SourceIndex: 1, OriginalPage: 4})
	require.True(t, ok)
	assert.Equal(t, "/tmp/b.pdf", path)
	assert.Equal(t, 4, local)

	_, _, ok = s.resolve(&pages.PageRef{SourceIndex: 1, OriginalPage: 6})
	assert.False(t, ok, "local page beyond the source's count")

	_, _, ok = s.resolve(&pages.PageRef{SourceIndex: 3, OriginalPage: 1})
	assert.False(t, ok, "unknown source index")
}

func TestMergerBaseName(t *testing.T) {
	assert.Equal(t, "merged_3_pdfs", testMerger().base())
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "report_pagina_007.pdf", pdfPageFileName("report", 7, "pdf"))
	assert.Equal(t, "report_pagina_012.png", pdfPageFileName("report", 12, "png"))
	assert.Equal(t, "photo_003.jpeg", imageFileName("photo", 3, "jpeg"))
}

func TestStem(t *testing.T) {
	assert.Equal(t, "report", stem("/data/docs/report.pdf"))
	assert.Equal(t, "archive.tar", stem("archive.tar.gz"))
	assert.Equal(t, "noext", stem("noext"))
}

func TestReport(t *testing.T) {
	assert.NoError(t, report(nil, 1, 2, "x"), "nil callback never cancels")

	var gotCurrent, gotTotal int
	var gotStatus string
	p := Progress(func(current, total int, status string) bool {
		gotCurrent, gotTotal, gotStatus = current, total, status
		return true
	})
	assert.NoError(t, report(p, 3, 9, "working"))
	assert.Equal(t, 3, gotCurrent)
	assert.Equal(t, 9, gotTotal)
	assert.Equal(t, "working", gotStatus)

	cancel := Progress(func(int, int, string) bool { return false })
	assert.ErrorIs(t, report(cancel, 0, 1, ""), ErrCancelled)
}

func TestExportImagesFolderCancellation(t *testing.T) {
	m := pages.NewManager()
	m.AddPage(1, nil)

	render := func(*pages.PageRef) image.Image {
		return image.NewRGBA(image.Rect(0, 0, 4, 4))
	}
	nameFor := func(ref *pages.PageRef) string {
		return imageFileName("x", ref.PageNumber, "png")
	}
	cancel := Progress(func(int, int, string) bool { return false })

	count, err := exportImagesFolder(render, nameFor, m, t.TempDir(), imaging.PNG, cancel)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, 0, count)
}

func TestExportImagesFolderWritesFiles(t *testing.T) {
	m := pages.NewManager()
	m.AddPage(1, nil)
	m.AddPage(2, nil)
	require.True(t, m.RotatePage(2, 90))

	render := func(*pages.PageRef) image.Image {
		return image.NewRGBA(image.Rect(0, 0, 6, 4))
	}
	nameFor := func(ref *pages.PageRef) string {
		return imageFileName("x", ref.PageNumber, "png")
	}

	dir := t.TempDir()
	count, err := exportImagesFolder(render, nameFor, m, dir, imaging.PNG, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// page 2 carries a 90 degree rotation, so its file has swapped dimensions
	img, _, err := imaging.DecodeFile(filepath.Join(dir, "x_002.png"))
	require.NoError(t, err)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
}

func TestExportImagesFolderNoActivePages(t *testing.T) {
	m := pages.NewManager()
	m.AddPage(1, nil)
	require.True(t, m.DeletePage(1))

	render := func(*pages.PageRef) image.Image { return nil }
	nameFor := func(*pages.PageRef) string { return "x.png" }

	_, err := exportImagesFolder(render, nameFor, m, t.TempDir(), imaging.PNG, nil)
	assert.ErrorIs(t, err, ErrNoActivePages)
}

func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{40, 40, 40, 255})
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.EncodeFile(path, img, imaging.PNG))
	return path
}

func TestImageServiceLoad(t *testing.T) {
	dir := t.TempDir()
	good := writeTestPNG(t, dir, "photo.png", 40, 30)
	missing := filepath.Join(dir, "missing.png")

	svc := NewImageService([]string{good, missing})
	assert.Equal(t, 1, svc.TotalPages())

	infos := svc.Infos()
	require.Len(t, infos, 2)
	assert.Equal(t, "photo.png", infos[0].Name)
	assert.Equal(t, 1, infos[0].Index)
	assert.Equal(t, "png", infos[0].Format)
	assert.Equal(t, 40, infos[0].Width)
	assert.Equal(t, 30, infos[0].Height)
	assert.NoError(t, infos[0].Err)

	assert.Equal(t, 2, infos[1].Index)
	assert.Error(t, infos[1].Err)
}

func TestImageServiceRenderPage(t *testing.T) {
	dir := t.TempDir()
	good := writeTestPNG(t, dir, "photo.png", 640, 480)

	svc := NewImageService([]string{good})

	full := svc.RenderPage(1, 1.0, true)
	require.NotNil(t, full)
	assert.Equal(t, 640, full.Bounds().Dx())

	preview := svc.RenderPage(1, 1.0, false)
	require.NotNil(t, preview)
	assert.Equal(t, imaging.PreviewMaxWidth, preview.Bounds().Dx())

	half := svc.RenderPage(1, 0.5, false)
	require.NotNil(t, half)
	assert.Equal(t, 320, half.Bounds().Dx())

	assert.Nil(t, svc.RenderPage(0, 1.0, true))
	assert.Nil(t, svc.RenderPage(2, 1.0, true))
}

func TestImageServiceExtractIsNoop(t *testing.T) {
	svc := NewImageService(nil)
	count, err := svc.Extract([]int{1, 2}, "out.pdf")
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestImageServiceNaming(t *testing.T) {
	svc := &ImageService{
		infos: []ImageInfo{{Path: "/in/photo.jpg", Index: 1, Name: "photo.jpg"}},
		valid: 1,
	}

	ref := &pages.PageRef{PageNumber: 2, OriginalPage: 1}
	assert.Equal(t, "photo_002.pdf", svc.pdfName(ref))
	assert.Equal(t, "photo_002.png", svc.imageName(imaging.PNG)(ref))

	// entries without a backing record fall back to a generic stem
	orphan := &pages.PageRef{PageNumber: 3, OriginalPage: 9}
	assert.Equal(t, "imagen_003.pdf", svc.pdfName(orphan))

	assert.Equal(t, "imagenes_1_items", svc.DefaultBaseName())
}

func TestImageServicePreviewPDFPages(t *testing.T) {
	dir := t.TempDir()
	path := writeTestPNG(t, dir, "photo.png", 100, 100)

	svc := NewImageService([]string{path})
	m := pages.NewManager()
	m.AddSourcePage(1, nil, "photo.png", 0, 1)

	previews := svc.PreviewPDFPages(m, PDFPageOptions{
		PageSize:    "A4",
		Orientation: imaging.Portrait,
		Fit:         imaging.FitContain,
	})
	require.Len(t, previews, 1)

	// mockups are 30% of true page size with a light gray border
	b := previews[0].Bounds()
	assert.Equal(t, 179, b.Dx())
	assert.Equal(t, 253, b.Dy())

	rgba, ok := previews[0].(*image.RGBA)
	require.True(t, ok)
	assert.Equal(t, color.RGBA{200, 200, 200, 255}, rgba.RGBAAt(0, 0))
}

// makeTestPDF synthesizes a PDF with the given page count by importing one
// JPEG per page.
func makeTestPDF(t *testing.T, dir, name string, pageCount int) string {
	t.Helper()

	files := make([]string, 0, pageCount)
	for i := 0; i < pageCount; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 40, 60))
		img.Set(i, 0, color.RGBA{200, 0, 0, 255})
		path := filepath.Join(dir, fmt.Sprintf("%s_page_%d.jpg", name, i))
		require.NoError(t, imaging.EncodeFile(path, img, imaging.JPEG))
		files = append(files, path)
	}

	out := filepath.Join(dir, name+".pdf")
	require.NoError(t, pdfcpuapi.ImportImagesFile(files, out, nil, newPDFConfig()))
	return out
}

func TestPDFServiceExtract(t *testing.T) {
	dir := t.TempDir()
	src := makeTestPDF(t, dir, "src", 3)

	svc, err := NewPDFService(src)
	require.NoError(t, err)
	assert.Equal(t, 3, svc.TotalPages())

	out := filepath.Join(dir, "out.pdf")
	count, err := svc.Extract([]int{3, 1, 9}, out)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "out-of-range pages are skipped")

	got, err := pdfPageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestPDFServiceExtractNothingValid(t *testing.T) {
	dir := t.TempDir()
	src := makeTestPDF(t, dir, "src", 2)

	svc, err := NewPDFService(src)
	require.NoError(t, err)

	out := filepath.Join(dir, "out.pdf")
	count, err := svc.Extract([]int{5, 6}, out)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "nothing is written for an empty selection")
}

func TestCombinedExportPageCount(t *testing.T) {
	dir := t.TempDir()
	first := makeTestPDF(t, dir, "first", 3)
	second := makeTestPDF(t, dir, "second", 2)

	merger, err := NewPDFMergerService([]string{first, second})
	require.NoError(t, err)
	require.Equal(t, 5, merger.TotalPages())

	m := pages.NewManager()
	for n := 1; n <= merger.TotalPages(); n++ {
		idx, local := merger.Resolve(n)
		require.GreaterOrEqual(t, idx, 0)
		m.AddSourcePage(n, nil, merger.Sources()[idx].Name, idx, local)
	}

	require.True(t, m.DeletePage(2))
	require.True(t, m.RotatePage(4, 90))
	m.Reorder([]int{5, 1, 3, 4})

	out := filepath.Join(dir, "combined.pdf")
	require.NoError(t, merger.ExportCombinedPDF(m, out, nil))

	// one page per active entry, the deleted page gone
	got, err := pdfPageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestExportIndividualPDFs(t *testing.T) {
	dir := t.TempDir()
	src := makeTestPDF(t, dir, "src", 3)

	svc, err := NewPDFService(src)
	require.NoError(t, err)

	m := pages.NewManager()
	for n := 1; n <= 3; n++ {
		m.AddPage(n, nil)
	}
	require.True(t, m.DeletePage(3))

	outDir := filepath.Join(dir, "split")
	count, err := svc.ExportIndividualPDFs(m, outDir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, n := range []int{1, 2} {
		part := filepath.Join(outDir, pdfPageFileName("src", n, "pdf"))
		got, err := pdfPageCount(part)
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	}
}

func TestMergerExtract(t *testing.T) {
	dir := t.TempDir()
	first := makeTestPDF(t, dir, "first", 2)
	second := makeTestPDF(t, dir, "second", 2)

	merger, err := NewPDFMergerService([]string{first, second})
	require.NoError(t, err)

	out := filepath.Join(dir, "picked.pdf")
	count, err := merger.Extract([]int{4, 1, 9}, out)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := pdfPageCount(out)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestExportImagesFolderSkipsUnrenderable(t *testing.T) {
	m := pages.NewManager()
	m.AddPage(1, nil)
	m.AddPage(2, nil)

	render := func(ref *pages.PageRef) image.Image {
		if ref.PageNumber == 1 {
			return nil
		}
		return image.NewRGBA(image.Rect(0, 0, 4, 4))
	}
	nameFor := func(ref *pages.PageRef) string {
		return imageFileName("x", ref.PageNumber, "png")
	}

	dir := t.TempDir()
	count, err := exportImagesFolder(render, nameFor, m, dir, imaging.PNG, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, statErr := os.Stat(filepath.Join(dir, "x_001.png"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(dir, "x_002.png"))
	assert.NoError(t, statErr)
}

func TestEnsureParentDir(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b", "out.pdf")

	require.NoError(t, ensureParentDir(nested))
	info, err := os.Stat(filepath.Join(dir, "a", "b"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, ensureParentDir("bare.pdf"))
}
