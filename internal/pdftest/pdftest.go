// Package pdftest builds small, valid PDF files for tests and reads back
// their page content streams.
//
// The generator writes every object by hand and computes the xref offsets,
// so tests never depend on fixture files on disk.
package pdftest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// PageText returns the label drawn on page n (1-based) by Numbered.
func PageText(n int) string {
	return fmt.Sprintf("Page %d", n)
}

// Numbered builds a PDF with n pages labelled "Page 1" .. "Page n".
func Numbered(n int) []byte {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = PageText(i + 1)
	}
	return Build(labels...)
}

// ContentStream returns the exact content stream Build writes for a label.
func ContentStream(label string) string {
	return fmt.Sprintf("BT /F1 24 Tf 72 720 Td (%s) Tj ET", label)
}

// Build writes a PDF with one page per label. Object layout:
// 1 catalog, 2 page tree, 3 font, then a page object and a content
// stream object for every label.
func Build(labels ...string) []byte {
	var buf bytes.Buffer
	offsets := []int{0} // object 0 is the free-list head

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets)-1, body)
	}

	buf.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	kids := new(bytes.Buffer)
	for i := range labels {
		fmt.Fprintf(kids, "%d 0 R ", 4+2*i)
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [ %s] /Count %d >>", kids.String(), len(labels)))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	for i, label := range labels {
		pageObj := 4 + 2*i
		writeObj(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			pageObj+1,
		))
		content := ContentStream(label)
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets))
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets), xrefStart)

	return buf.Bytes()
}

// PageContents returns the decoded content stream of every page, in page
// order. Array-valued /Contents are concatenated.
func PageContents(data []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	contents := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			return nil, fmt.Errorf("page %d not found", i)
		}

		var sb bytes.Buffer
		c := page.V.Key("Contents")
		if c.Kind() == pdf.Array {
			for j := 0; j < c.Len(); j++ {
				if err := copyStream(&sb, c.Index(j)); err != nil {
					return nil, fmt.Errorf("page %d: %w", i, err)
				}
			}
		} else if err := copyStream(&sb, c); err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		contents = append(contents, string(bytes.TrimSpace(sb.Bytes())))
	}
	return contents, nil
}

func copyStream(w io.Writer, v pdf.Value) error {
	rc := v.Reader()
	defer rc.Close()
	_, err := io.Copy(w, rc)
	return err
}
