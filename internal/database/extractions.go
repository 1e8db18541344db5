// extractions.go handles extraction history records.
//
// One row is written per uploaded document per request. Rows hold only
// metadata (names, page selections, counts, outcome); document bytes are
// never stored.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Shimizu-Technology/pdf-page-extractor/internal/models"
)

// ErrNotFound is returned when no history record has the requested ID.
var ErrNotFound = errors.New("extraction not found")

// maxListLimit caps how many history rows one request can return.
const maxListLimit = 100

// CreateExtractions inserts all records of one batch in a single transaction,
// filling in each record's ID and CreatedAt.
//
// Go Pattern: A transaction makes the batch all-or-nothing: either every
// document of the request is recorded or none is.
func (db *DB) CreateExtractions(ctx context.Context, records []*models.Extraction) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback after a successful Commit is a no-op, so deferring it is safe.
	defer tx.Rollback()

	query := `
		INSERT INTO extractions (batch_id, original_name, output_name, page_spec, source_pages,
			selected_pages, page_count, status, warning_kind, error_message, client_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	for _, e := range records {
		err := tx.QueryRowContext(ctx, query,
			e.BatchID, e.OriginalName, e.OutputName, e.PageSpec, e.SourcePages,
			e.SelectedPages, e.PageCount, e.Status, e.WarningKind, e.ErrorMessage, e.ClientID,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert extraction for %s: %w", e.OriginalName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit extractions: %w", err)
	}
	return nil
}

// GetExtraction retrieves a single history record by ID.
func (db *DB) GetExtraction(ctx context.Context, id string) (*models.Extraction, error) {
	var e models.Extraction
	err := db.GetContext(ctx, &e, `SELECT * FROM extractions WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction %s: %w", id, err)
	}
	return &e, nil
}

// ListExtractions returns recent history, newest first.
// When clientID is non-empty only that client's records are returned.
func (db *DB) ListExtractions(ctx context.Context, params models.ExtractionListParams, clientID string) ([]models.Extraction, error) {
	if params.Limit < 1 || params.Limit > maxListLimit {
		params.Limit = 50
	}

	var conditions []string
	var args []interface{}
	argNum := 1

	if params.BatchID != "" {
		conditions = append(conditions, fmt.Sprintf("batch_id = $%d", argNum))
		args = append(args, params.BatchID)
		argNum++
	}
	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, params.Status)
		argNum++
	}
	if clientID != "" {
		conditions = append(conditions, fmt.Sprintf("client_id = $%d", argNum))
		args = append(args, clientID)
		argNum++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT * FROM extractions %s ORDER BY created_at DESC LIMIT $%d`, whereClause, argNum)
	args = append(args, params.Limit)

	var extractions []models.Extraction
	if err := db.SelectContext(ctx, &extractions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list extractions: %w", err)
	}
	return extractions, nil
}
