package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// ErrExtraction wraps every failure to turn a PDF into page text: wrong
// password, corrupt document, no text layer.
var ErrExtraction = errors.New("pdf extraction failed")

// Extractor turns PDF documents into one text blob per page. Pages without
// text are returned as empty strings so page numbering is preserved.
type Extractor struct {
	// Pdftotext enables the poppler pdftotext fallback when the Go library
	// cannot read the document.
	Pdftotext bool
	Logger    *zap.Logger
}

// New returns an Extractor. A nil logger is replaced with a no-op logger.
func New(pdftotext bool, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{Pdftotext: pdftotext, Logger: logger}
}

// ExtractFile reads the PDF at path. password may be empty.
func (e *Extractor) ExtractFile(path, password string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return e.extract(data, path, password)
}

// Extract reads a PDF held in memory. password may be empty.
func (e *Extractor) Extract(data []byte, password string) ([]string, error) {
	return e.extract(data, "", password)
}

func (e *Extractor) extract(data []byte, path, password string) ([]string, error) {
	pages, libErr := extractWithLibrary(data, password)
	if libErr == nil && hasText(pages) {
		return pages, nil
	}
	if libErr != nil {
		e.Logger.Debug("pdf library could not read document", zap.Error(libErr))
	}

	if e.Pdftotext {
		popplerPages, popplerErr := e.fallback(data, path, password)
		if popplerErr == nil && hasText(popplerPages) {
			return popplerPages, nil
		}
		if popplerErr != nil {
			e.Logger.Debug("pdftotext fallback failed", zap.Error(popplerErr))
		}
	}

	if libErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, libErr)
	}
	return nil, fmt.Errorf("%w: no text layer found; the PDF may be scanned or image-based", ErrExtraction)
}

// fallback runs pdftotext, writing data to a temporary file when the
// document did not come from disk.
func (e *Extractor) fallback(data []byte, path, password string) ([]string, error) {
	if path == "" {
		tmp, err := os.CreateTemp("", "statement-*.pdf")
		if err != nil {
			return nil, err
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return nil, err
		}
		if err := tmp.Close(); err != nil {
			return nil, err
		}
		path = tmp.Name()
	}
	return extractWithPdftotext(path, password)
}

// extractWithLibrary uses ledongthuc/pdf. Each page is rebuilt row by row,
// falling back to the page's plain text when row grouping fails.
func extractWithLibrary(data []byte, password string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	r, err := pdf.NewReaderEncrypted(bytes.NewReader(data), int64(len(data)), passwordOnce(password))
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, fmt.Errorf("PDF has no pages")
	}

	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text := pageTextByRow(page)
		if text == "" {
			text = pagePlainText(page)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

// passwordOnce offers password to the decrypter a single time; the library
// keeps asking until it gets an empty string.
func passwordOnce(password string) func() string {
	offered := false
	return func() string {
		if offered {
			return ""
		}
		offered = true
		return password
	}
}

func pageTextByRow(page pdf.Page) string {
	rows, err := page.GetTextByRow()
	if err != nil {
		return ""
	}
	var lines []string
	for _, row := range rows {
		var parts []string
		for _, word := range row.Content {
			parts = append(parts, word.S)
		}
		if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func pagePlainText(page pdf.Page) string {
	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		f := page.Font(name)
		fonts[name] = &f
	}
	text, err := page.GetPlainText(fonts)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// extractWithPdftotext uses the external pdftotext command from poppler-utils,
// one page at a time so page boundaries survive.
func extractWithPdftotext(filePath, password string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %v", err)
	}

	var pwArgs []string
	if password != "" {
		pwArgs = []string{"-upw", password}
	}

	numPages := pdfPageCount(filePath, pwArgs)
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		pageStr := strconv.Itoa(i)
		args := append([]string{"-layout", "-f", pageStr, "-l", pageStr}, pwArgs...)
		args = append(args, filePath, "-")
		out, err := exec.Command("pdftotext", args...).Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext page %d: %v", i, err)
		}
		pages = append(pages, strings.TrimSpace(string(out)))
	}
	return pages, nil
}

// pdfPageCount asks pdfinfo for the page count, defaulting to 1.
func pdfPageCount(filePath string, pwArgs []string) int {
	args := append(append([]string{}, pwArgs...), filePath)
	out, err := exec.Command("pdfinfo", args...).Output()
	if err != nil {
		return 1
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:")))
			if err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
