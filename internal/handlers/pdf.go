// pdf.go handles the PDF page extraction HTTP endpoints.
//
// POST /api/v1/pdf/inspect         : Upload PDFs and get their page counts
// POST /api/v1/pdf/extract         : Upload PDFs with page selections, download the result
// GET  /api/v1/pdf/extractions/:id : Get one history record by ID
// GET  /api/v1/pdf/extractions     : List recent history records
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Shimizu-Technology/pdf-page-extractor/internal/database"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/middleware"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/models"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/services/batch"
	"github.com/Shimizu-Technology/pdf-page-extractor/internal/services/pages"
	pdfservice "github.com/Shimizu-Technology/pdf-page-extractor/internal/services/pdf"
)

// Multipart field names.
const (
	filesField = "files"
	pagesField = "pages"
)

// upload is one file read from the multipart request.
type upload struct {
	name string
	data []byte
}

// InspectPDFs reports the page count of every uploaded file so the web form
// can show "N pages" next to each file before the user types a selection.
// POST /api/v1/pdf/inspect
func (h *Handler) InspectPDFs(c *gin.Context) {
	uploads, ok := h.readUploads(c)
	if !ok {
		return
	}

	resp := models.InspectResponse{Documents: make([]models.DocumentInfo, 0, len(uploads))}
	for _, u := range uploads {
		info := models.DocumentInfo{Filename: u.name, Size: len(u.data)}
		if doc, err := pdfservice.Open(u.data); err != nil {
			info.Error = err.Error()
		} else {
			info.PageCount = doc.PageCount
		}
		resp.Documents = append(resp.Documents, info)
	}

	c.JSON(http.StatusOK, resp)
}

// ExtractPages runs page extraction over every uploaded file.
// POST /api/v1/pdf/extract
//
// Accepts multipart form data with one or more "files" and either one
// "pages" value per file (same order) or a single "pages" value for all.
// Responds with the PDF itself when one file succeeds, a ZIP when several
// do, and a JSON list of warnings when none do.
func (h *Handler) ExtractPages(c *gin.Context) {
	uploads, ok := h.readUploads(c)
	if !ok {
		return
	}

	docs, err := pairSelections(uploads, c.Request.MultipartForm.Value[pagesField])
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "pages_mismatch",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	batchID := uuid.New().String()
	result := h.Processor.Process(docs)
	h.recordHistory(c, batchID, result)

	warnings := toDocumentWarnings(result.Warnings())
	log.Printf("📄 Batch %s: %d extracted, %d skipped", batchID, len(result.Outputs()), len(warnings))

	c.Header("X-Batch-ID", batchID)

	delivery, err := result.Deliverable()
	if errors.Is(err, batch.ErrNothingToDeliver) {
		c.JSON(http.StatusUnprocessableEntity, models.ExtractFailureResponse{
			ErrorResponse: models.ErrorResponse{
				Error:   "nothing_extracted",
				Message: "None of the uploaded documents could be extracted. See warnings for details.",
				Code:    http.StatusUnprocessableEntity,
			},
			BatchID:  batchID,
			Warnings: warnings,
		})
		return
	}
	if err != nil {
		log.Printf("❌ Batch %s: failed to package results: %v", batchID, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "extraction_failed",
			Message: "Failed to package the extracted documents",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.Header("X-Extraction-Warnings", warningsHeader(warnings))
	c.Header("X-Extraction-Skipped", strconv.Itoa(len(warnings)))
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": delivery.Name}))

	c.Data(http.StatusOK, delivery.ContentType, delivery.Data)
}

// GetExtraction retrieves a single history record by ID.
// GET /api/v1/pdf/extractions/:id
func (h *Handler) GetExtraction(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	id := c.Param("id")
	notFound := models.ErrorResponse{
		Error:   "not_found",
		Message: "Extraction not found",
		Code:    http.StatusNotFound,
	}

	// A malformed ID can never match; skip the round trip to Postgres.
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusNotFound, notFound)
		return
	}

	record, err := h.DB.GetExtraction(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, notFound)
		return
	}
	if err != nil {
		log.Printf("Failed to get extraction %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to get extraction",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	// Authenticated clients only see their own records.
	if scope := historyScope(c); scope != "" && record.ClientID != scope {
		c.JSON(http.StatusNotFound, notFound)
		return
	}

	c.JSON(http.StatusOK, record)
}

// ListExtractions returns recent history records, newest first.
// GET /api/v1/pdf/extractions?limit=20&batch_id=...&status=skipped
func (h *Handler) ListExtractions(c *gin.Context) {
	if !h.historyEnabled(c) {
		return
	}

	var params models.ExtractionListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid query parameters: " + err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}
	if err := validateListParams(params); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
		return
	}

	extractions, err := h.DB.ListExtractions(c.Request.Context(), params, historyScope(c))
	if err != nil {
		log.Printf("Failed to list extractions: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "database_error",
			Message: "Failed to list extractions",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	if extractions == nil {
		extractions = []models.Extraction{}
	}

	c.JSON(http.StatusOK, extractions)
}

// readUploads enforces the upload limits and reads every "files" part into
// memory. On failure it writes the error response and returns false.
func (h *Handler) readUploads(c *gin.Context) ([]upload, bool) {
	// Limit request body size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Config.MaxRequestSize())

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Error:   "file_too_large",
				Message: fmt.Sprintf("Request exceeds the upload limit of %d bytes.", h.Config.MaxRequestSize()),
				Code:    http.StatusRequestEntityTooLarge,
			})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Upload PDF files as multipart form data with the field name 'files'.",
			Code:    http.StatusBadRequest,
		})
		return nil, false
	}

	headers := form.File[filesField]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "No PDF file provided. Upload one or more files with the field name 'files'.",
			Code:    http.StatusBadRequest,
		})
		return nil, false
	}
	if len(headers) > h.Config.MaxFiles {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "too_many_files",
			Message: fmt.Sprintf("At most %d files can be processed per request, got %d.", h.Config.MaxFiles, len(headers)),
			Code:    http.StatusBadRequest,
		})
		return nil, false
	}

	uploads := make([]upload, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.Config.MaxFileSize {
			c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
				Error:   "file_too_large",
				Message: fmt.Sprintf("File '%s' exceeds the limit of %d bytes.", fh.Filename, h.Config.MaxFileSize),
				Code:    http.StatusRequestEntityTooLarge,
			})
			return nil, false
		}

		// Validate file extension
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if ext != ".pdf" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_file_type",
				Message: fmt.Sprintf("Unsupported file format '%s' for '%s'. Only .pdf files are accepted.", ext, fh.Filename),
				Code:    http.StatusBadRequest,
			})
			return nil, false
		}

		data, err := readFile(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: fmt.Sprintf("Failed to read uploaded file '%s'", fh.Filename),
				Code:    http.StatusBadRequest,
			})
			return nil, false
		}
		uploads = append(uploads, upload{name: fh.Filename, data: data})
	}

	return uploads, true
}

// readFile opens one multipart part and reads it fully.
// Go Pattern: A helper keeps the defer scoped to one file instead of
// piling up in the caller's loop until every file has been read.
func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// pairSelections matches page selections to uploads: one per file in
// order, or a single selection shared by every file.
func pairSelections(uploads []upload, specs []string) ([]batch.Document, error) {
	switch {
	case len(specs) == 0:
		return nil, errors.New("no page selection provided; send a 'pages' value such as \"1, 3, 5-7\"")
	case len(specs) != 1 && len(specs) != len(uploads):
		return nil, fmt.Errorf("got %d page selections for %d files; send one per file or a single one for all files", len(specs), len(uploads))
	}

	docs := make([]batch.Document, len(uploads))
	for i, u := range uploads {
		spec := specs[0]
		if len(specs) > 1 {
			spec = specs[i]
		}
		docs[i] = batch.Document{Name: u.name, Data: u.data, Spec: spec}
	}
	return docs, nil
}

// warningsHeader renders warnings as JSON for a response header.
//
// Browsers decode header values as Latin-1, so every non-ASCII rune is
// written as a \uXXXX escape (a surrogate pair above U+FFFF). JSON.parse
// restores the original names. json.Marshal already escapes control
// characters, so the result is a single printable ASCII line.
func warningsHeader(warnings []models.DocumentWarning) string {
	data, err := json.Marshal(warnings)
	if err != nil {
		return "[]"
	}

	var sb strings.Builder
	sb.Grow(len(data))
	for _, r := range string(data) {
		switch {
		case r < utf8.RuneSelf:
			sb.WriteRune(r)
		case r > 0xFFFF:
			hi, lo := utf16.EncodeRune(r)
			fmt.Fprintf(&sb, "\\u%04x\\u%04x", hi, lo)
		default:
			fmt.Fprintf(&sb, "\\u%04x", r)
		}
	}
	return sb.String()
}

// toDocumentWarnings converts batch warnings to their API shape.
func toDocumentWarnings(warnings []batch.Warning) []models.DocumentWarning {
	out := make([]models.DocumentWarning, len(warnings))
	for i, w := range warnings {
		out[i] = models.DocumentWarning{Document: w.Document, Kind: string(w.Kind), Message: w.Message}
	}
	return out
}

// recordHistory stores one metadata row per document. History is best
// effort: a database failure is logged and the download still goes out.
func (h *Handler) recordHistory(c *gin.Context, batchID string, result *batch.Result) {
	if h.DB == nil {
		return
	}

	records := historyRecords(batchID, middleware.ClientID(c), result)
	if err := h.DB.CreateExtractions(c.Request.Context(), records); err != nil {
		log.Printf("⚠️  Failed to save extraction history for batch %s: %v", batchID, err)
	}
}

// historyRecords builds the history rows for one batch, in input order.
func historyRecords(batchID, clientID string, result *batch.Result) []*models.Extraction {
	records := make([]*models.Extraction, 0, len(result.Outcomes))
	for _, o := range result.Outcomes {
		e := &models.Extraction{
			BatchID:      batchID,
			OriginalName: o.Document,
			PageSpec:     o.Spec,
			SourcePages:  o.SourcePages,
			ClientID:     clientID,
		}
		if o.Output != nil {
			e.Status = models.StatusCompleted
			e.OutputName = o.Output.Name
			e.SelectedPages = pages.Format(o.Selected)
			e.PageCount = len(o.Selected)
		} else {
			e.Status = models.StatusSkipped
			e.WarningKind = string(o.Warning.Kind)
			e.ErrorMessage = o.Warning.Message
		}
		records = append(records, e)
	}
	return records
}

// historyEnabled writes a 503 and returns false when no database is configured.
func (h *Handler) historyEnabled(c *gin.Context) bool {
	if h.DB != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
		Error:   "history_disabled",
		Message: "Extraction history is disabled. Set DATABASE_URL to enable it.",
		Code:    http.StatusServiceUnavailable,
	})
	return false
}

// historyScope is the client whose records a request may see: the caller
// itself when authenticated, everyone when auth is off.
func historyScope(c *gin.Context) string {
	if middleware.GetSubject(c) == "" {
		return ""
	}
	return middleware.ClientID(c)
}

// validateListParams rejects filters that can never match.
func validateListParams(p models.ExtractionListParams) error {
	if p.BatchID != "" {
		if _, err := uuid.Parse(p.BatchID); err != nil {
			return fmt.Errorf("batch_id must be a UUID, got %q", p.BatchID)
		}
	}
	switch p.Status {
	case "", models.StatusCompleted, models.StatusSkipped:
		return nil
	default:
		return fmt.Errorf("status must be %q or %q, got %q", models.StatusCompleted, models.StatusSkipped, p.Status)
	}
}
