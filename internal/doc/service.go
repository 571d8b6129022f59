// Package doc implements the document engines behind the page workbench: a
// single-PDF service, a multi-PDF merger, and an image-list service, each
// able to render pages to bitmaps and export a working-set snapshot to
// combined PDFs, individual PDFs, image ZIPs or image folders.
package doc

import (
	"archive/zip"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/ztrue/tracerr"

	"github.com/Felipe10812/Extractor-de-PDF/internal/imaging"
)

// Service is the capability surface the UI layer drives for any loaded
// document, independent of its concrete type.
type Service interface {
	// TotalPages reports the page count of the loaded document(s).
	TotalPages() int
	// RenderPage rasterizes a 1-based page to a bitmap. Export mode renders
	// at ~300 DPI; preview mode renders at 2x base scale and is capped at
	// 300px wide. Returns nil for out-of-range pages or render failures.
	RenderPage(number int, scale float64, forExport bool) image.Image
	// Extract copies the valid requested pages, in the order given, into a
	// new PDF at outputPath and returns the number of pages copied.
	Extract(pages []int, outputPath string) (int, error)
}

// Progress is invoked once per unit of export work with (current, total,
// status). Returning false cancels the export: the loop stops after the
// current unit and the operation returns ErrCancelled. Partial output
// already on disk is left in place.
type Progress func(current, total int, status string) bool

// ErrCancelled marks an export stopped early through its progress callback,
// distinct from a failure.
var ErrCancelled = errors.New("export cancelled")

// ErrNoActivePages is returned when an export is requested on a working set
// with no active pages.
var ErrNoActivePages = errors.New("no active pages to export")

// ExportFormat names a supported export target.
type ExportFormat string

const (
	PDFCombined         ExportFormat = "pdf_combined"
	PDFIndividual       ExportFormat = "pdf_individual"
	PDFIndividualZip    ExportFormat = "pdf_individual_zip"
	PDFIndividualFolder ExportFormat = "pdf_individual_folder"
	ImagesZip           ExportFormat = "images_zip"
	ImagesFolder        ExportFormat = "images_folder"
)

// ExportConfig is the plain record of recognized export options.
type ExportConfig struct {
	Format      ExportFormat
	OutputPath  string
	ImageFormat imaging.Format
	PageSize    string
	Orientation imaging.Orientation
	FitMode     imaging.FitMode
}

// PDFPageOptions configures image-to-PDF page synthesis.
type PDFPageOptions struct {
	PageSize    string
	Orientation imaging.Orientation
	Fit         imaging.FitMode
}

// report runs the progress callback, converting a false return into
// ErrCancelled. A nil callback never cancels.
func report(p Progress, current, total int, status string) error {
	if p != nil && !p(current, total, status) {
		return ErrCancelled
	}
	return nil
}

// pdfPageFileName builds the output name for one exported PDF-origin page.
func pdfPageFileName(base string, displayPage int, ext string) string {
	return fmt.Sprintf("%s_pagina_%03d.%s", base, displayPage, ext)
}

// imageFileName builds the output name for one exported image-origin page.
func imageFileName(base string, displayPage int, ext string) string {
	return fmt.Sprintf("%s_%03d.%s", base, displayPage, ext)
}

// stem returns a file's name without directory or extension.
func stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ensureParentDir creates the directory holding path if it does not exist.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return tracerr.Wrap(err)
	}
	return nil
}

// zipAddFile copies a file on disk into an open zip archive under name.
func zipAddFile(zw *zip.Writer, name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return tracerr.Wrap(err)
	}
	w, err := zw.Create(name)
	if err != nil {
		return tracerr.Wrap(err)
	}
	if _, err := w.Write(data); err != nil {
		return tracerr.Wrap(err)
	}
	return nil
}
