// Package batch runs page extraction over every document of one upload.
//
// Each document goes through the same steps on its own:
//
//	open the PDF → parse its page selection → extract the pages
//
// A document that fails any step is skipped with a warning; the rest of the
// batch carries on. The result is either a single PDF or a ZIP of all the
// extracted documents.
//
// Go Pattern: Failures are values here, not control flow. Every document
// gets exactly one Outcome, holding either an Output or a Warning, so the
// caller can report partial success without unwinding anything.
package batch

import (
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/Shimizu-Technology/pdf-page-extractor/internal/services/archive"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/services/pages"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/services/pdf"
)

// ArchiveName is the download name used when several documents succeed.
const ArchiveName = "extracted_pages.zip"

// PDFContentType is the media type of a single extracted document.
const PDFContentType = "application/pdf"

// ErrNothingToDeliver is returned by Deliverable when every document was skipped.
var ErrNothingToDeliver = errors.New("no documents were extracted")

// WarningKind classifies why a document was skipped.
type WarningKind string

const (
	WarnMalformedToken        WarningKind = "malformed_token"
	WarnOutOfBounds           WarningKind = "out_of_bounds"
	WarnInvalidRange          WarningKind = "invalid_range"
	WarnEmptySelection        WarningKind = "empty_selection"
	WarnInvalidSourceDocument WarningKind = "invalid_source_document"
	WarnExtractionError       WarningKind = "extraction_error"
)

// Extractor builds a new PDF from selected pages of a source document.
// *pdf.Extractor satisfies it; tests can swap in a fake.
type Extractor interface {
	Extract(doc *pdf.Document, indices []int) ([]byte, error)
}

// Document is one uploaded file and the page selection typed for it.
type Document struct {
	Name string // Original filename as uploaded
	Data []byte
	Spec string // Page selection, e.g. "1, 3, 5-7"
}

// Warning explains why a document was skipped.
type Warning struct {
	Document string      `json:"document"`
	Kind     WarningKind `json:"kind"`
	Message  string      `json:"message"`
}

// Output is a successfully extracted document.
type Output struct {
	Name string // Download name, "extracted_<original>"
	Data []byte
}

// Outcome records what happened to one input document.
// Exactly one of Output and Warning is set.
type Outcome struct {
	Document    string // Original filename
	Spec        string
	SourcePages int   // Page count of the upload; 0 if it could not be opened
	Selected    []int // Zero-based indices that were extracted
	Output      *Output
	Warning     *Warning
}

// Result holds one Outcome per input document, in input order.
type Result struct {
	Outcomes []Outcome
}

// Processor runs a batch.
type Processor struct {
	Extractor Extractor
	// Concurrency caps how many documents are processed at once.
	// Zero or one means strictly sequential.
	Concurrency int
}

// NewProcessor creates a processor. A nil extractor uses pdfcpu with
// relaxed validation.
func NewProcessor(ext Extractor, concurrency int) *Processor {
	if ext == nil {
		ext = &pdf.Extractor{}
	}
	return &Processor{Extractor: ext, Concurrency: concurrency}
}

// Process extracts pages from every document. It never fails as a whole;
// per-document problems are reported as warnings in the Result.
func (p *Processor) Process(docs []Document) *Result {
	outcomes := make([]Outcome, len(docs))

	if p.Concurrency <= 1 {
		for i, d := range docs {
			outcomes[i] = p.processOne(d)
		}
	} else {
		// Go Pattern: errgroup with SetLimit is a bounded worker pool in two
		// lines. Each goroutine owns exactly one slot of outcomes, so no
		// locking is needed; Wait() is the barrier before anyone reads them.
		var g errgroup.Group
		g.SetLimit(p.Concurrency)
		for i, d := range docs {
			g.Go(func() error {
				outcomes[i] = p.processOne(d)
				return nil
			})
		}
		_ = g.Wait() // workers never return errors
	}

	assignNames(outcomes)
	return &Result{Outcomes: outcomes}
}

// processOne runs a single document through open → parse → extract.
func (p *Processor) processOne(d Document) Outcome {
	out := Outcome{Document: d.Name, Spec: d.Spec}

	doc, err := pdf.Open(d.Data)
	if err != nil {
		out.Warning = newWarning(d.Name, err)
		return out
	}
	out.SourcePages = doc.PageCount

	indices, err := pages.Parse(d.Spec, doc.PageCount)
	if err != nil {
		out.Warning = newWarning(d.Name, err)
		return out
	}
	if len(indices) == 0 {
		out.Warning = &Warning{
			Document: d.Name,
			Kind:     WarnEmptySelection,
			Message:  fmt.Sprintf("page selection %q selects no pages; nothing to extract", d.Spec),
		}
		log.Printf("⚠️  Skipping %s: %s", d.Name, out.Warning.Message)
		return out
	}

	data, err := p.Extractor.Extract(doc, indices)
	if err != nil {
		out.Warning = newWarning(d.Name, err)
		return out
	}

	out.Selected = indices
	out.Output = &Output{Data: data}
	return out
}

// newWarning classifies err and logs the skip.
func newWarning(name string, err error) *Warning {
	w := &Warning{Document: name, Kind: classify(err), Message: err.Error()}
	log.Printf("⚠️  Skipping %s (%s): %v", name, w.Kind, err)
	return w
}

// classify maps an error from the pages or pdf packages to a WarningKind.
func classify(err error) WarningKind {
	switch {
	case errors.Is(err, pages.ErrMalformedToken):
		return WarnMalformedToken
	case errors.Is(err, pages.ErrOutOfBounds):
		return WarnOutOfBounds
	case errors.Is(err, pages.ErrInvalidRange):
		return WarnInvalidRange
	case errors.Is(err, pdf.ErrEmptySelection):
		return WarnEmptySelection
	case errors.Is(err, pdf.ErrInvalidSourceDocument):
		return WarnInvalidSourceDocument
	default:
		return WarnExtractionError
	}
}

// Outputs returns the successful documents in input order.
func (r *Result) Outputs() []Output {
	var outputs []Output
	for _, o := range r.Outcomes {
		if o.Output != nil {
			outputs = append(outputs, *o.Output)
		}
	}
	return outputs
}

// Warnings returns the skipped documents in input order.
func (r *Result) Warnings() []Warning {
	warnings := []Warning{}
	for _, o := range r.Outcomes {
		if o.Warning != nil {
			warnings = append(warnings, *o.Warning)
		}
	}
	return warnings
}

// Delivery is the single blob handed back to the user.
type Delivery struct {
	Name        string
	ContentType string
	Data        []byte
}

// Deliverable packages the result for download: the PDF itself when one
// document succeeded, a ZIP when several did.
func (r *Result) Deliverable() (*Delivery, error) {
	outputs := r.Outputs()

	switch len(outputs) {
	case 0:
		return nil, ErrNothingToDeliver
	case 1:
		return &Delivery{
			Name:        outputs[0].Name,
			ContentType: PDFContentType,
			Data:        outputs[0].Data,
		}, nil
	}

	entries := make([]archive.Entry, len(outputs))
	for i, o := range outputs {
		entries[i] = archive.Entry{Name: o.Name, Data: o.Data}
	}
	data, err := archive.Pack(entries)
	if err != nil {
		return nil, err
	}
	return &Delivery{
		Name:        ArchiveName,
		ContentType: archive.ContentType,
		Data:        data,
	}, nil
}
