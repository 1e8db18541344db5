// Package archive bundles extracted documents into a single ZIP download.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"time"
)

// ContentType is the media type of a packed archive.
const ContentType = "application/zip"

// ErrDuplicateEntry is returned when two entries share a name.
var ErrDuplicateEntry = errors.New("duplicate archive entry")

// Entry is one file inside the archive.
type Entry struct {
	Name string
	Data []byte
}

// Pack writes entries into an in-memory ZIP, in order, compressed with
// Deflate. Entry names must be unique.
func Pack(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	modified := time.Now()
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		if seen[e.Name] {
			zw.Close()
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEntry, e.Name)
		}
		seen[e.Name] = true

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to create archive entry %s: %w", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			zw.Close()
			return nil, fmt.Errorf("failed to write archive entry %s: %w", e.Name, err)
		}
	}

	// Close writes the central directory; the archive is unreadable without it.
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
