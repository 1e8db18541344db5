// Package pages turns a human-entered page selection like "1, 3, 5-7"
// into a normalized set of zero-based page indices.
//
// Go Pattern: Parse is a pure function. It takes everything it needs as
// arguments and returns either a value or an error, never both. Callers
// decide what an empty result means; this package only validates syntax
// and bounds.
package pages

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Sentinel errors for each way a selection can be rejected.
// Go Pattern: Callers match these with errors.Is, so the concrete error
// value can carry extra detail (the offending token) without breaking checks.
var (
	ErrMalformedToken = errors.New("malformed token")
	ErrOutOfBounds    = errors.New("page out of bounds")
	ErrInvalidRange   = errors.New("invalid range")
)

// SelectionError describes the first token that failed validation.
type SelectionError struct {
	Kind       error  // One of the sentinel errors above
	Token      string // The token as the user typed it (trimmed)
	TotalPages int
	Detail     string
}

func (e *SelectionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%v %q: %s", e.Kind, e.Token, e.Detail)
	}
	return fmt.Sprintf("%v %q", e.Kind, e.Token)
}

// Unwrap lets errors.Is(err, pages.ErrInvalidRange) work.
func (e *SelectionError) Unwrap() error {
	return e.Kind
}

// Parse converts a 1-based, comma separated page spec into sorted,
// deduplicated, zero-based indices bounded by totalPages.
//
// Each token is either a single page ("3") or an inclusive range ("5-7").
// Whitespace around tokens and around range bounds is ignored, and empty
// tokens are skipped, so "" yields an empty (valid) result.
// Validation stops at the first bad token.
func Parse(spec string, totalPages int) ([]int, error) {
	seen := make(map[int]struct{})

	for _, raw := range strings.Split(spec, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}

		if strings.Contains(token, "-") {
			start, end, err := parseRange(token, totalPages)
			if err != nil {
				return nil, err
			}
			for p := start; p <= end; p++ {
				seen[p-1] = struct{}{}
			}
			continue
		}

		page, err := strconv.Atoi(token)
		if err != nil {
			return nil, &SelectionError{Kind: ErrMalformedToken, Token: token, TotalPages: totalPages, Detail: "not a page number"}
		}
		if page < 1 || page > totalPages {
			return nil, &SelectionError{
				Kind:       ErrOutOfBounds,
				Token:      token,
				TotalPages: totalPages,
				Detail:     fmt.Sprintf("page must be between 1 and %d", totalPages),
			}
		}
		seen[page-1] = struct{}{}
	}

	indices := make([]int, 0, len(seen))
	for i := range seen {
		indices = append(indices, i)
	}
	slices.Sort(indices)
	return indices, nil
}

// parseRange validates a "start-end" token and returns its 1-based bounds.
func parseRange(token string, totalPages int) (int, int, error) {
	parts := strings.Split(token, "-")
	if len(parts) != 2 {
		return 0, 0, &SelectionError{Kind: ErrMalformedToken, Token: token, TotalPages: totalPages, Detail: "range must look like start-end"}
	}

	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, &SelectionError{Kind: ErrMalformedToken, Token: token, TotalPages: totalPages, Detail: "range start is not a number"}
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, &SelectionError{Kind: ErrMalformedToken, Token: token, TotalPages: totalPages, Detail: "range end is not a number"}
	}

	switch {
	case start > end:
		return 0, 0, &SelectionError{Kind: ErrInvalidRange, Token: token, TotalPages: totalPages, Detail: fmt.Sprintf("start > end (%d > %d)", start, end)}
	case start < 1:
		return 0, 0, &SelectionError{Kind: ErrInvalidRange, Token: token, TotalPages: totalPages, Detail: "range must start at page 1 or later"}
	case end > totalPages:
		return 0, 0, &SelectionError{Kind: ErrInvalidRange, Token: token, TotalPages: totalPages, Detail: fmt.Sprintf("end page %d exceeds total pages (%d)", end, totalPages)}
	}

	return start, end, nil
}

// Format renders zero-based indices as a compact 1-based spec, collapsing
// consecutive runs into ranges: [0 2 4 5 6] becomes "1,3,5-7".
// Indices are rendered in the order given; only adjacent ascending runs collapse.
func Format(indices []int) string {
	var sb strings.Builder
	for i := 0; i < len(indices); {
		j := i
		for j+1 < len(indices) && indices[j+1] == indices[j]+1 {
			j++
		}

		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		if j-i >= 2 {
			fmt.Fprintf(&sb, "%d-%d", indices[i]+1, indices[j]+1)
		} else if j-i == 1 {
			fmt.Fprintf(&sb, "%d,%d", indices[i]+1, indices[j]+1)
		} else {
			sb.WriteString(strconv.Itoa(indices[i] + 1))
		}
		i = j + 1
	}
	return sb.String()
}
