package batch

import (
	"path/filepath"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// OutputPrefix is prepended to every extracted document's name.
const OutputPrefix = "extracted_"

// assignNames gives every successful outcome its download name. Names are
// unique within the batch: a repeated upload name gets _2, _3, ... before
// the extension, in input order.
func assignNames(outcomes []Outcome) {
	used := make(map[string]bool)
	for i := range outcomes {
		if outcomes[i].Output == nil {
			continue
		}

		base := OutputPrefix + CleanFilename(outcomes[i].Document)
		name := base
		ext := filepath.Ext(base)
		stem := strings.TrimSuffix(base, ext)
		for n := 2; used[name]; n++ {
			name = stem + "_" + strconv.Itoa(n) + ext
		}
		used[name] = true
		outcomes[i].Output.Name = name
	}
}

// CleanFilename reduces an uploaded filename to a safe archive entry name.
//
// Browsers on Windows may send a full path, and macOS sends decomposed
// Unicode (e + combining accent), so we keep only the base name, normalize
// to NFC, and drop control characters and path separators.
func CleanFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = norm.NFC.String(name)

	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == ':':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == ".." {
		return "document.pdf"
	}
	if len(name) > maxNameLen {
		name = truncateName(name)
	}
	return name
}

// Limits for cleaned names, in bytes.
const (
	maxNameLen = 200
	maxExtLen  = 16 // a longer "extension" is treated as part of the stem
)

// truncateName shortens name to at most maxNameLen bytes, keeping a short
// extension and never splitting a multibyte rune.
func truncateName(name string) string {
	ext := filepath.Ext(name)
	if len(ext) > maxExtLen {
		ext = ""
	}
	stem := strings.TrimSuffix(name, ext)

	cut := maxNameLen - len(ext)
	for cut > 0 && !utf8.RuneStart(stem[cut]) {
		cut--
	}
	return stem[:cut] + ext
}
