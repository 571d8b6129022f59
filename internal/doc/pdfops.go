package doc

import (
	"strconv"

	pdfcpuapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ztrue/tracerr"
)

// newPDFConfig returns the pdfcpu configuration shared by all page surgery.
func newPDFConfig() *model.Configuration {
	return model.NewDefaultConfiguration()
}

// pdfPageCount reads the page count of a PDF on disk.
func pdfPageCount(path string) (int, error) {
	count, err := pdfcpuapi.PageCountFile(path)
	if err != nil {
		return 0, tracerr.Wrap(err)
	}
	return count, nil
}

// extractSinglePage copies one page of srcPath into a new single-page PDF at
// outPath, applying a clockwise rotation when non-zero.
func extractSinglePage(srcPath string, localPage, rotation int, outPath string, conf *model.Configuration) error {
	selected := []string{strconv.Itoa(localPage)}
	if err := pdfcpuapi.TrimFile(srcPath, outPath, selected, conf); err != nil {
		return tracerr.Wrap(err)
	}
	if rotation != 0 {
		if err := pdfcpuapi.RotateFile(outPath, "", rotation, nil, conf); err != nil {
			return tracerr.Wrap(err)
		}
	}
	return nil
}

// mergeParts concatenates single-page part files into outputPath.
func mergeParts(parts []string, outputPath string, conf *model.Configuration) error {
	if err := ensureParentDir(outputPath); err != nil {
		return err
	}
	if err := pdfcpuapi.MergeCreateFile(parts, outputPath, false, conf); err != nil {
		return tracerr.Wrap(err)
	}
	return nil
}
