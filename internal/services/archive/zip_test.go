package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestPack(t *testing.T) {
	entries := []Entry{
		{Name: "extracted_a.pdf", Data: []byte("first document")},
		{Name: "extracted_b.pdf", Data: []byte("second document")},
	}

	data, err := Pack(entries)
	if err != nil {
		t.Fatalf("Pack returned error: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a readable zip: %v", err)
	}
	if len(zr.File) != len(entries) {
		t.Fatalf("archive has %d entries, want %d", len(zr.File), len(entries))
	}

	for i, f := range zr.File {
		if f.Name != entries[i].Name {
			t.Errorf("entry %d name = %q, want %q", i, f.Name, entries[i].Name)
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		got, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		if !bytes.Equal(got, entries[i].Data) {
			t.Errorf("entry %s = %q, want %q", f.Name, got, entries[i].Data)
		}
	}
}

func TestPack_Empty(t *testing.T) {
	data, err := Pack(nil)
	if err != nil {
		t.Fatalf("Pack(nil) returned error: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a readable zip: %v", err)
	}
	if len(zr.File) != 0 {
		t.Errorf("archive has %d entries, want 0", len(zr.File))
	}
}

func TestPack_DuplicateNames(t *testing.T) {
	_, err := Pack([]Entry{
		{Name: "same.pdf", Data: []byte("a")},
		{Name: "same.pdf", Data: []byte("b")},
	})
	if !errors.Is(err, ErrDuplicateEntry) {
		t.Errorf("Pack error = %v, want ErrDuplicateEntry", err)
	}
}
