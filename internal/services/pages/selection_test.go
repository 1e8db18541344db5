// selection_test.go tests page selection parsing.
package pages

import (
	"errors"
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		spec       string
		totalPages int
		want       []int
	}{
		{name: "singles and range", spec: "1,3,5-7", totalPages: 10, want: []int{0, 2, 4, 5, 6}},
		{name: "whitespace around tokens", spec: " 1 , 3 ,  5-7 ", totalPages: 10, want: []int{0, 2, 4, 5, 6}},
		{name: "whitespace inside range", spec: "2 - 4", totalPages: 5, want: []int{1, 2, 3}},
		{name: "duplicates collapse", spec: "1,1,2", totalPages: 5, want: []int{0, 1}},
		{name: "overlapping ranges collapse", spec: "1-3,2-4", totalPages: 5, want: []int{0, 1, 2, 3}},
		{name: "unsorted input comes back sorted", spec: "5,1,3", totalPages: 5, want: []int{0, 2, 4}},
		{name: "single page range", spec: "4-4", totalPages: 4, want: []int{3}},
		{name: "whole document", spec: "1-3", totalPages: 3, want: []int{0, 1, 2}},
		{name: "empty spec", spec: "", totalPages: 3, want: []int{}},
		{name: "only separators", spec: " , ,", totalPages: 3, want: []int{}},
		{name: "trailing comma", spec: "2,", totalPages: 3, want: []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.spec, tt.totalPages)
			if err != nil {
				t.Fatalf("Parse(%q, %d) returned error: %v", tt.spec, tt.totalPages, err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Parse(%q, %d) = %v, want %v", tt.spec, tt.totalPages, got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name       string
		spec       string
		totalPages int
		wantErr    error
		wantToken  string
	}{
		{name: "reversed range", spec: "5-3", totalPages: 10, wantErr: ErrInvalidRange, wantToken: "5-3"},
		{name: "range starting at zero", spec: "0-2", totalPages: 10, wantErr: ErrInvalidRange, wantToken: "0-2"},
		{name: "range past the end", spec: "8-11", totalPages: 10, wantErr: ErrInvalidRange, wantToken: "8-11"},
		{name: "page zero", spec: "0", totalPages: 5, wantErr: ErrOutOfBounds, wantToken: "0"},
		{name: "page past the end", spec: "6", totalPages: 5, wantErr: ErrOutOfBounds, wantToken: "6"},
		{name: "word", spec: "first", totalPages: 5, wantErr: ErrMalformedToken, wantToken: "first"},
		{name: "decimal", spec: "1.5", totalPages: 5, wantErr: ErrMalformedToken, wantToken: "1.5"},
		{name: "negative page", spec: "-3", totalPages: 5, wantErr: ErrMalformedToken, wantToken: "-3"},
		{name: "open ended range", spec: "3-", totalPages: 5, wantErr: ErrMalformedToken, wantToken: "3-"},
		{name: "too many dashes", spec: "1-2-3", totalPages: 5, wantErr: ErrMalformedToken, wantToken: "1-2-3"},
		{name: "first bad token wins", spec: "1, x, 9", totalPages: 5, wantErr: ErrMalformedToken, wantToken: "x"},
		{name: "bounds checked before later syntax", spec: "9, x", totalPages: 5, wantErr: ErrOutOfBounds, wantToken: "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.spec, tt.totalPages)
			if err == nil {
				t.Fatalf("Parse(%q, %d) = %v, want error %v", tt.spec, tt.totalPages, got, tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse(%q, %d) error = %v, want %v", tt.spec, tt.totalPages, err, tt.wantErr)
			}

			var selErr *SelectionError
			if !errors.As(err, &selErr) {
				t.Fatalf("error %v is not a *SelectionError", err)
			}
			if selErr.Token != tt.wantToken {
				t.Errorf("SelectionError.Token = %q, want %q", selErr.Token, tt.wantToken)
			}
			if selErr.TotalPages != tt.totalPages {
				t.Errorf("SelectionError.TotalPages = %d, want %d", selErr.TotalPages, tt.totalPages)
			}
		})
	}
}

// TestParse_ResultInvariants checks that every successful parse is strictly
// ascending and inside the document, across a spread of specs and sizes.
func TestParse_ResultInvariants(t *testing.T) {
	specs := []string{"1", "1-1", "2,1", "1-4,2-3", "3,3,3", "1,2,3,4,5,6,7,8", "7-8, 1-2, 4", ""}

	for total := 1; total <= 8; total++ {
		for _, spec := range specs {
			got, err := Parse(spec, total)
			if err != nil {
				continue
			}
			for i, idx := range got {
				if idx < 0 || idx >= total {
					t.Errorf("Parse(%q, %d): index %d out of [0,%d)", spec, total, idx, total)
				}
				if i > 0 && got[i-1] >= idx {
					t.Errorf("Parse(%q, %d) = %v is not strictly ascending", spec, total, got)
				}
			}
		}
	}
}

func TestSelectionError_Message(t *testing.T) {
	_, err := Parse("5-3", 10)
	want := `invalid range "5-3": start > end (5 > 3)`
	if err == nil || err.Error() != want {
		t.Errorf("error message = %v, want %q", err, want)
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		want    string
	}{
		{"empty", nil, ""},
		{"single", []int{0}, "1"},
		{"pair stays as two pages", []int{0, 1}, "1,2"},
		{"run becomes range", []int{0, 2, 4, 5, 6}, "1,3,5-7"},
		{"caller order kept", []int{4, 0, 1, 2}, "5,1-3"},
		{"duplicates kept", []int{2, 2}, "3,3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.indices); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.indices, got, tt.want)
			}
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	want := []int{0, 2, 3, 4, 9}
	got, err := Parse(Format(want), 10)
	if err != nil {
		t.Fatalf("Parse(Format(%v)) error: %v", want, err)
	}
	if !slices.Equal(got, want) {
		t.Errorf("Parse(Format(%v)) = %v", want, got)
	}
}
