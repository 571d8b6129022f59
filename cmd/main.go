package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	arg "github.com/alexflint/go-arg"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/ztrue/tracerr"

	"github.com/Felipe10812/Extractor-de-PDF/internal/doc"
	"github.com/Felipe10812/Extractor-de-PDF/internal/imaging"
	"github.com/Felipe10812/Extractor-de-PDF/internal/pagerange"
	"github.com/Felipe10812/Extractor-de-PDF/internal/pages"
)

type ExtractCmd struct {
	Inputs []string `arg:"positional,required" help:"input PDF file(s); several files are treated as one concatenated document"`
	Pages  string   `arg:"-p,--pages,required" help:"page selection, e.g. \"1,3,5-7\""`
	Output string   `arg:"-o,--output" help:"output PDF path (default: <input>_extracted.pdf)"`
}

type CombineCmd struct {
	Inputs []string `arg:"positional,required" help:"input PDF file(s)"`
	Pages  string   `arg:"-p,--pages" help:"page selection (default: all pages)"`
	Output string   `arg:"-o,--output" help:"output PDF path"`
	Rotate string   `arg:"-r,--rotate" help:"per-page clockwise rotations, e.g. \"3:90,5:180\""`
	Delete string   `arg:"-d,--delete" help:"pages to drop from the export, e.g. \"2,4\""`
	Order  string   `arg:"--order" help:"explicit page order, e.g. \"3,1,2\""`
}

type SplitCmd struct {
	Inputs []string `arg:"positional,required" help:"input PDF file(s)"`
	Pages  string   `arg:"-p,--pages" help:"page selection (default: all pages)"`
	Output string   `arg:"-o,--output" help:"output folder, or .zip path with --zip"`
	Rotate string   `arg:"-r,--rotate" help:"per-page clockwise rotations, e.g. \"3:90\""`
	Zip    bool     `arg:"-z,--zip" help:"write the individual PDFs into a ZIP archive"`
}

type ImagesCmd struct {
	Inputs []string `arg:"positional,required" help:"input PDF file(s)"`
	Pages  string   `arg:"-p,--pages" help:"page selection (default: all pages)"`
	Output string   `arg:"-o,--output" help:"output folder, or .zip path with --zip"`
	Format string   `arg:"-f,--format" help:"image format: PNG, JPEG or TIFF" default:"PNG"`
	Rotate string   `arg:"-r,--rotate" help:"per-page clockwise rotations"`
	Zip    bool     `arg:"-z,--zip" help:"write the images into a ZIP archive"`
}

type ConvertCmd struct {
	Inputs      []string `arg:"positional,required" help:"input image files (PNG/JPEG/BMP/TIFF/WEBP)"`
	Output      string   `arg:"-o,--output" help:"output path (PDF, folder, or .zip)"`
	PageSize    string   `arg:"-s,--size" help:"page size: A4, Letter, Legal, A3 or A5" default:"A4"`
	Orientation string   `arg:"--orientation" help:"portrait or landscape" default:"portrait"`
	Fit         string   `arg:"--fit" help:"fit mode: fit, fill or stretch" default:"fit"`
	Rotate      string   `arg:"-r,--rotate" help:"per-image clockwise rotations, e.g. \"2:90\""`
	Delete      string   `arg:"-d,--delete" help:"images to drop, e.g. \"3\""`
	Order       string   `arg:"--order" help:"explicit image order"`
	Individual  bool     `arg:"-i,--individual" help:"one PDF per image instead of a combined PDF"`
	Zip         bool     `arg:"-z,--zip" help:"with --individual: write the PDFs into a ZIP archive"`
	PreviewDir  string   `arg:"--preview" help:"write page-layout preview mockups to this folder instead of converting"`
}

type PreviewCmd struct {
	Inputs      []string `arg:"positional,required" help:"input PDF file(s)"`
	Pages       string   `arg:"-p,--pages" help:"page selection (default: all pages)"`
	Output      string   `arg:"-o,--output" help:"output folder for the thumbnails" default:"."`
	Concurrency int      `arg:"-c" help:"concurrent page renders. Defaults to (number of CPUs available - 1)"`
}

type Args struct {
	Extract    *ExtractCmd `arg:"subcommand:extract" help:"extract selected pages into a new PDF"`
	Combine    *CombineCmd `arg:"subcommand:combine" help:"export pages (rotated, filtered, reordered) as one combined PDF"`
	Split      *SplitCmd   `arg:"subcommand:split" help:"export each page as its own PDF"`
	Images     *ImagesCmd  `arg:"subcommand:images" help:"export pages as image files"`
	Convert    *ConvertCmd `arg:"subcommand:convert" help:"convert images into PDF(s)"`
	Preview    *PreviewCmd `arg:"subcommand:preview" help:"render page thumbnails for a quick look"`
	TerminalUI bool        `arg:"-t,--termui" help:"use the interactive terminal UI"`
}

var (
	infoTag    = color.New(color.FgCyan).SprintFunc()
	successTag = color.New(color.FgGreen).SprintFunc()
	warnTag    = color.New(color.FgYellow).SprintFunc()
)

func main() {
	if err := run(); err != nil {
		if err == doc.ErrCancelled {
			color.Yellow("Stopped: export was cancelled")
			os.Exit(1)
		}
		color.Red("ERROR: %v", err)
		os.Exit(1)
	}
}

func run() error {
	var args Args
	p := arg.MustParse(&args)

	if args.TerminalUI {
		RunTerminalUI()
		return nil
	}

	switch {
	case args.Extract != nil:
		return runExtract(args.Extract)
	case args.Combine != nil:
		return runCombine(args.Combine)
	case args.Split != nil:
		return runSplit(args.Split)
	case args.Images != nil:
		return runImages(args.Images)
	case args.Convert != nil:
		return runConvert(args.Convert)
	case args.Preview != nil:
		return runPreview(args.Preview)
	default:
		p.WriteHelp(os.Stderr)
		return fmt.Errorf("a command is required")
	}
}

// pdfEngine is the export surface shared by the single-document service and
// the multi-document merger.
type pdfEngine interface {
	doc.Service
	ExportCombinedPDF(*pages.Manager, string, doc.Progress) error
	ExportIndividualPDFs(*pages.Manager, string, doc.Progress) (int, error)
	ExportIndividualPDFsZip(*pages.Manager, string, doc.Progress) (int, error)
	ExportImagesZip(*pages.Manager, string, imaging.Format, doc.Progress) (int, error)
	ExportImagesFolder(*pages.Manager, string, imaging.Format, doc.Progress) (int, error)
}

// openPDFEngine loads one PDF as a plain service, or several as a merger with
// a virtual concatenated page sequence. The merger return is nil in the
// single-document case.
func openPDFEngine(inputs []string) (pdfEngine, *doc.PDFMergerService, string, error) {
	if len(inputs) == 1 {
		svc, err := doc.NewPDFService(inputs[0])
		if err != nil {
			return nil, nil, "", err
		}
		return svc, nil, fileStem(inputs[0]), nil
	}

	merger, err := doc.NewPDFMergerService(inputs)
	if err != nil {
		return nil, nil, "", err
	}
	return merger, merger, fmt.Sprintf("merged_%d_pdfs", merger.SourceCount()), nil
}

// buildWorkingSet seeds a page manager with the selected pages and their
// provenance. Bitmaps stay nil; the export engines re-render from source at
// export quality.
func buildWorkingSet(merger *doc.PDFMergerService, pageNums []int) *pages.Manager {
	m := pages.NewManager()
	for _, n := range pageNums {
		if merger != nil {
			idx, local := merger.Resolve(n)
			if idx < 0 {
				fmt.Fprintf(os.Stderr, "%s page %d is out of range, ignoring\n", warnTag("WARN:"), n)
				continue
			}
			m.AddSourcePage(n, nil, merger.Sources()[idx].Name, idx, local)
		} else {
			m.AddPage(n, nil)
		}
	}
	return m
}

// selectPages parses an optional page-range expression, defaulting to every
// page of the document.
func selectPages(expr string, total int) ([]int, error) {
	if expr == "" {
		all := make([]int, total)
		for i := range all {
			all[i] = i + 1
		}
		return all, nil
	}
	return pagerange.Parse(expr)
}

// applyEdits applies the rotate/delete/order command-line specs to a working
// set. Edits naming pages outside the selection warn and are ignored.
func applyEdits(m *pages.Manager, rotateSpec, deleteSpec, orderSpec string) error {
	if rotateSpec != "" {
		rotations, err := parseRotateSpec(rotateSpec)
		if err != nil {
			return err
		}
		for page, degrees := range rotations {
			if !m.RotatePage(page, degrees) {
				fmt.Fprintf(os.Stderr, "%s page %d not in selection, rotation ignored\n", warnTag("WARN:"), page)
			}
		}
	}

	if deleteSpec != "" {
		toDelete, err := pagerange.Parse(deleteSpec)
		if err != nil {
			return err
		}
		for _, page := range toDelete {
			if !m.DeletePage(page) {
				fmt.Fprintf(os.Stderr, "%s page %d not in selection, delete ignored\n", warnTag("WARN:"), page)
			}
		}
	}

	if orderSpec != "" {
		order, err := parseOrderSpec(orderSpec)
		if err != nil {
			return err
		}
		m.Reorder(order)
	}

	return nil
}

// parseRotateSpec parses "3:90,5:180" into page number to degrees.
func parseRotateSpec(spec string) (map[int]int, error) {
	rotations := make(map[int]int)
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		parts := strings.SplitN(token, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid rotation %q (expected page:degrees)", token)
		}
		page, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		degrees, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid rotation %q (expected page:degrees)", token)
		}
		if degrees%90 != 0 {
			return nil, fmt.Errorf("rotation for page %d must be a multiple of 90", page)
		}
		rotations[page] = degrees
	}
	return rotations, nil
}

// parseOrderSpec parses an explicit page order like "3,1,2". Unlike a page
// range, order is positional, so no ranges and no sorting.
func parseOrderSpec(spec string) ([]int, error) {
	var order []int
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("invalid page number %q in order", token)
		}
		order = append(order, n)
	}
	return order, nil
}

// newProgressBar adapts a terminal progress bar to the export progress
// callback. The bar is created lazily on the first report so its total
// matches what the export engine announces.
func newProgressBar(description string) doc.Progress {
	var bar *progressbar.ProgressBar
	return func(current, total int, status string) bool {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription(description),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		_ = bar.Set(current)
		return true
	}
}

func runExtract(cmd *ExtractCmd) error {
	engine, _, base, err := openPDFEngine(cmd.Inputs)
	if err != nil {
		return err
	}

	pageNums, err := pagerange.Parse(cmd.Pages)
	if err != nil {
		return err
	}

	output := cmd.Output
	if output == "" {
		output = base + "_extracted.pdf"
	}

	fmt.Printf("%s Extracting pages %s from %d page(s)\n", infoTag("INFO:"), pagerange.Format(pageNums), engine.TotalPages())

	start := time.Now()
	count, err := engine.Extract(pageNums, output)
	if err != nil {
		return tracerr.Wrap(err)
	}
	if count == 0 {
		return fmt.Errorf("no valid pages in selection (document has %d pages)", engine.TotalPages())
	}

	fmt.Printf("%s Extracted %d page(s) to %s in %s\n", successTag("SUCCESS:"), count, output, formatDuration(time.Since(start)))
	return nil
}

func runCombine(cmd *CombineCmd) error {
	engine, merger, base, err := openPDFEngine(cmd.Inputs)
	if err != nil {
		return err
	}

	pageNums, err := selectPages(cmd.Pages, engine.TotalPages())
	if err != nil {
		return err
	}

	m := buildWorkingSet(merger, pageNums)
	if err := applyEdits(m, cmd.Rotate, cmd.Delete, cmd.Order); err != nil {
		return err
	}

	output := cmd.Output
	if output == "" {
		output = base + "_combined.pdf"
	}

	fmt.Printf("%s Combining %d page(s) into %s\n", infoTag("INFO:"), m.SelectedCount(), output)

	start := time.Now()
	if err := engine.ExportCombinedPDF(m, output, newProgressBar("Exporting pages")); err != nil {
		return err
	}

	fmt.Printf("%s Combined PDF written in %s\n", successTag("SUCCESS:"), formatDuration(time.Since(start)))
	return nil
}

func runSplit(cmd *SplitCmd) error {
	engine, merger, base, err := openPDFEngine(cmd.Inputs)
	if err != nil {
		return err
	}

	pageNums, err := selectPages(cmd.Pages, engine.TotalPages())
	if err != nil {
		return err
	}

	m := buildWorkingSet(merger, pageNums)
	if err := applyEdits(m, cmd.Rotate, "", ""); err != nil {
		return err
	}

	output := cmd.Output
	useZip := cmd.Zip || strings.EqualFold(filepath.Ext(output), ".zip")
	if output == "" {
		if useZip {
			output = base + "_pages.zip"
		} else {
			output = base + "_pages"
		}
	}

	start := time.Now()
	var count int
	if useZip {
		count, err = engine.ExportIndividualPDFsZip(m, output, newProgressBar("Writing PDFs"))
	} else {
		count, err = engine.ExportIndividualPDFs(m, output, newProgressBar("Writing PDFs"))
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s Wrote %d PDF(s) to %s in %s\n", successTag("SUCCESS:"), count, output, formatDuration(time.Since(start)))
	return nil
}

func runImages(cmd *ImagesCmd) error {
	engine, merger, base, err := openPDFEngine(cmd.Inputs)
	if err != nil {
		return err
	}

	format, err := parseImageFormat(cmd.Format)
	if err != nil {
		return err
	}

	pageNums, err := selectPages(cmd.Pages, engine.TotalPages())
	if err != nil {
		return err
	}

	m := buildWorkingSet(merger, pageNums)
	if err := applyEdits(m, cmd.Rotate, "", ""); err != nil {
		return err
	}

	output := cmd.Output
	useZip := cmd.Zip || strings.EqualFold(filepath.Ext(output), ".zip")
	if output == "" {
		if useZip {
			output = base + "_images.zip"
		} else {
			output = base + "_images"
		}
	}

	start := time.Now()
	var count int
	if useZip {
		count, err = engine.ExportImagesZip(m, output, format, newProgressBar("Rendering pages"))
	} else {
		count, err = engine.ExportImagesFolder(m, output, format, newProgressBar("Rendering pages"))
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s Wrote %d image(s) to %s in %s\n", successTag("SUCCESS:"), count, output, formatDuration(time.Since(start)))
	return nil
}

func runConvert(cmd *ConvertCmd) error {
	svc := doc.NewImageService(cmd.Inputs)
	if svc.TotalPages() == 0 {
		return fmt.Errorf("none of the %d input image(s) could be loaded", len(cmd.Inputs))
	}

	for _, info := range svc.Infos() {
		if info.Err != nil {
			fmt.Fprintf(os.Stderr, "%s skipping %s: %v\n", warnTag("WARN:"), info.Name, info.Err)
		}
	}

	opts := doc.PDFPageOptions{
		PageSize:    cmd.PageSize,
		Orientation: imaging.Orientation(strings.ToLower(cmd.Orientation)),
		Fit:         imaging.FitMode(strings.ToLower(cmd.Fit)),
	}

	m := pages.NewManager()
	for _, info := range svc.Infos() {
		if info.Err != nil {
			continue
		}
		m.AddSourcePage(info.Index, nil, info.Name, 0, info.Index)
	}
	if err := applyEdits(m, cmd.Rotate, cmd.Delete, cmd.Order); err != nil {
		return err
	}

	if cmd.PreviewDir != "" {
		return writePreviews(svc, m, opts, cmd.PreviewDir)
	}

	output := cmd.Output
	start := time.Now()

	switch {
	case cmd.Individual && cmd.Zip:
		if output == "" {
			output = svc.DefaultBaseName() + ".zip"
		}
		count, err := svc.ConvertToIndividualPDFsZip(m, output, opts, newProgressBar("Creating PDFs"))
		if err != nil {
			return err
		}
		fmt.Printf("%s Wrote %d PDF(s) to %s in %s\n", successTag("SUCCESS:"), count, output, formatDuration(time.Since(start)))
	case cmd.Individual:
		if output == "" {
			output = svc.DefaultBaseName()
		}
		count, err := svc.ConvertToIndividualPDFsFolder(m, output, opts, newProgressBar("Creating PDFs"))
		if err != nil {
			return err
		}
		fmt.Printf("%s Wrote %d PDF(s) to %s in %s\n", successTag("SUCCESS:"), count, output, formatDuration(time.Since(start)))
	default:
		if output == "" {
			output = svc.DefaultBaseName() + ".pdf"
		}
		if err := svc.ConvertToPDF(m, output, opts, newProgressBar("Creating PDF")); err != nil {
			return err
		}
		fmt.Printf("%s PDF written to %s in %s\n", successTag("SUCCESS:"), output, formatDuration(time.Since(start)))
	}

	return nil
}

// writePreviews renders page-layout mockups into a folder so the fit mode can
// be checked before a long conversion.
func writePreviews(svc *doc.ImageService, m *pages.Manager, opts doc.PDFPageOptions, dir string) error {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return tracerr.Wrap(err)
	}

	previews := svc.PreviewPDFPages(m, opts)
	for i, img := range previews {
		if img == nil {
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("preview_%03d.png", i+1))
		if err := imaging.EncodeFile(path, img, imaging.PNG); err != nil {
			return err
		}
	}

	fmt.Printf("%s Wrote %d preview(s) to %s\n", successTag("SUCCESS:"), len(previews), dir)
	return nil
}

func runPreview(cmd *PreviewCmd) error {
	engine, _, base, err := openPDFEngine(cmd.Inputs)
	if err != nil {
		return err
	}

	pageNums, err := selectPages(cmd.Pages, engine.TotalPages())
	if err != nil {
		return err
	}

	concurrency := cmd.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU() - 1
		if concurrency <= 0 {
			concurrency = 1
		}
	}

	if err := os.MkdirAll(cmd.Output, os.ModePerm); err != nil {
		return tracerr.Wrap(err)
	}

	fmt.Printf("%s Rendering %d thumbnail(s) with concurrency %d\n", infoTag("INFO:"), len(pageNums), concurrency)

	thumbs, err := doc.RenderPages(context.Background(), engine, pageNums, concurrency)
	if err != nil {
		return tracerr.Wrap(err)
	}

	bar := progressbar.NewOptions(len(thumbs),
		progressbar.OptionSetDescription("Saving thumbnails"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	written := 0
	for i, img := range thumbs {
		_ = bar.Add(1)
		if img == nil {
			fmt.Fprintf(os.Stderr, "%s page %d could not be rendered\n", warnTag("WARN:"), pageNums[i])
			continue
		}
		path := filepath.Join(cmd.Output, fmt.Sprintf("%s_pagina_%03d.png", base, pageNums[i]))
		if err := imaging.EncodeFile(path, img, imaging.PNG); err != nil {
			return err
		}
		written++
	}

	fmt.Printf("%s Wrote %d thumbnail(s) to %s\n", successTag("SUCCESS:"), written, cmd.Output)
	return nil
}

func parseImageFormat(name string) (imaging.Format, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "PNG":
		return imaging.PNG, nil
	case "JPEG", "JPG":
		return imaging.JPEG, nil
	case "TIFF", "TIF":
		return imaging.TIFF, nil
	default:
		return "", fmt.Errorf("unsupported image format %q (use PNG, JPEG or TIFF)", name)
	}
}

func fileStem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// formatDuration formats time.Duration to a human-readable string (HH:MM:SS)
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
