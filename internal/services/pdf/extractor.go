// Package pdf opens uploaded PDF documents and builds new documents from a
// selection of their pages.
//
// We use two pure Go libraries:
//   - ledongthuc/pdf reads the page tree to count pages on upload.
//   - pdfcpu copies pages into a fresh document and serializes it.
//
// Neither needs CGO or an external binary, so deployment stays a single binary.
package pdf

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfcpulib "github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrInvalidSourceDocument means the bytes could not be parsed as a PDF.
	ErrInvalidSourceDocument = errors.New("invalid source document")
	// ErrEmptySelection means Extract was asked for zero pages.
	ErrEmptySelection = errors.New("no pages selected")
	// ErrPageOutOfRange means an index does not exist in the source document.
	ErrPageOutOfRange = errors.New("page index out of range")
)

func init() {
	// pdfcpu otherwise creates ~/.config/pdfcpu on first use.
	api.DisableConfigDir()
}

// ExtractionError wraps whatever stopped Extract from producing a document.
// Go Pattern: A custom error type with Unwrap keeps errors.Is working on the
// underlying cause while still letting callers detect "extraction failed"
// with errors.As.
type ExtractionError struct {
	Pages int   // How many pages were requested
	Err   error // Underlying cause
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction of %d page(s) failed: %v", e.Pages, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Document is an uploaded PDF. The bytes are private and never modified,
// so one Document can feed any number of extractions.
type Document struct {
	data      []byte
	PageCount int
}

// Open parses data as a PDF and counts its pages.
// The bytes are copied, so the caller may reuse its buffer.
func Open(data []byte) (doc *Document, err error) {
	if !ValidatePDF(data) {
		return nil, fmt.Errorf("%w: missing %%PDF- header", ErrInvalidSourceDocument)
	}

	// ledongthuc/pdf panics on some kinds of corrupt structure instead of
	// returning an error; treat that as an unreadable document.
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrInvalidSourceDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSourceDocument, err)
	}

	pageCount := reader.NumPage()
	if pageCount < 1 {
		return nil, fmt.Errorf("%w: document has no pages", ErrInvalidSourceDocument)
	}

	return &Document{
		data:      bytes.Clone(data),
		PageCount: pageCount,
	}, nil
}

// Size returns the length of the source bytes.
func (d *Document) Size() int {
	return len(d.data)
}

// Extractor copies pages out of a Document with pdfcpu.
type Extractor struct {
	// Strict turns on pdfcpu's strict validation of the source. The default
	// relaxed mode accepts the small spec violations most real PDFs have.
	Strict bool
}

// defaultExtractor backs the package-level Extract.
var defaultExtractor = &Extractor{}

// Extract builds a new PDF from doc's pages at the given zero-based indices
// using the default Extractor.
func Extract(doc *Document, indices []int) ([]byte, error) {
	return defaultExtractor.Extract(doc, indices)
}

// Extract builds a new PDF holding the pages of doc at the given zero-based
// indices, in exactly the order given. A repeated index yields a repeated
// page. The result is a complete standalone document.
func (e *Extractor) Extract(doc *Document, indices []int) (out []byte, err error) {
	if len(indices) == 0 {
		return nil, &ExtractionError{Pages: 0, Err: ErrEmptySelection}
	}

	pageNrs := make([]int, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= doc.PageCount {
			return nil, &ExtractionError{
				Pages: len(indices),
				Err:   fmt.Errorf("%w: index %d, document has %d page(s)", ErrPageOutOfRange, idx, doc.PageCount),
			}
		}
		pageNrs[i] = idx + 1 // pdfcpu numbers pages from 1
	}

	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = &ExtractionError{Pages: len(indices), Err: fmt.Errorf("pdf library panic: %v", r)}
		}
	}()

	// A fresh configuration per call: pdfcpu writes into it while processing,
	// and batches may extract concurrently.
	conf := e.configuration()

	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(doc.data), conf)
	if err != nil {
		return nil, &ExtractionError{Pages: len(indices), Err: fmt.Errorf("%w: %w", ErrInvalidSourceDocument, err)}
	}

	// With the page cache on, a repeated page number reuses the already
	// migrated page object instead of copying its resources twice.
	dest, err := pdfcpulib.ExtractPages(ctx, pageNrs, true)
	if err != nil {
		return nil, &ExtractionError{Pages: len(indices), Err: err}
	}
	if dest.Configuration != nil {
		dest.Configuration.WriteObjectStream = false
		dest.Configuration.WriteXRefStream = false
	}

	var buf bytes.Buffer
	if err := api.WriteContext(dest, &buf); err != nil {
		return nil, &ExtractionError{Pages: len(indices), Err: fmt.Errorf("failed to write document: %w", err)}
	}
	if buf.Len() == 0 {
		return nil, &ExtractionError{Pages: len(indices), Err: errors.New("writer produced no output")}
	}

	return buf.Bytes(), nil
}

// configuration returns pdfcpu settings that produce a classic xref table,
// the form every PDF reader understands.
func (e *Extractor) configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if e.Strict {
		conf.ValidationMode = model.ValidationStrict
	}
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
