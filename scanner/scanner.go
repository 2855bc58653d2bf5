// Package scanner defines the scanner contract, the registry of all built-in
// scanners and the framework rule implementations. A scanner is a value, not
// a subclass: an identifier, a language set, a path predicate and a pure scan
// function, dispatched through table lookup.
package scanner

import (
	"path"
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

// Scanner inspects one file's evidence and AST and emits findings. Scan must
// be a pure function of its inputs and every emitted finding must carry a
// deterministic fingerprint.
type Scanner struct {
	// ID is the stable scanner identifier, e.g. "spring-rest-api".
	ID string
	// Languages lists the language tags the scanner operates on.
	Languages []ast.LanguageTag
	// Matches is the file-name or path predicate; nil matches any file of
	// the scanner's languages.
	Matches func(filePath string) bool
	// Scan emits findings. The AST is nil when no parser adapter covers the
	// file's language; scanners then work from the raw content.
	Scan func(ev *model.FileEvidence, file *ast.File) []model.Finding
}

// AppliesTo reports whether the scanner covers the given evidence.
func (s *Scanner) AppliesTo(ev *model.FileEvidence) bool {
	if len(s.Languages) > 0 {
		ok := false
		for _, tag := range s.Languages {
			if tag == ev.Language() {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if s.Matches != nil {
		return s.Matches(ev.Path())
	}
	return true
}

// confidence derives the finding confidence from the AST state.
func confidence(file *ast.File) model.Confidence {
	if file == nil || file.Degraded {
		return model.ConfidenceLow
	}
	return model.ConfidenceHigh
}

// matchBase builds a predicate matching exact base file names.
func matchBase(names ...string) func(string) bool {
	return func(filePath string) bool {
		base := path.Base(filePath)
		for _, name := range names {
			if base == name {
				return true
			}
		}
		return false
	}
}

// matchSuffix builds a predicate matching path suffixes.
func matchSuffix(suffixes ...string) func(string) bool {
	return func(filePath string) bool {
		for _, suffix := range suffixes {
			if strings.HasSuffix(filePath, suffix) {
				return true
			}
		}
		return false
	}
}

var quotedString = regexp.MustCompile(`['"]([^'"]*)['"]`)

// firstQuoted returns the first quoted literal inside raw text, or empty.
func firstQuoted(text string) string {
	m := quotedString.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// allQuoted returns every quoted literal inside raw text.
func allQuoted(text string) []string {
	var out []string
	for _, m := range quotedString.FindAllStringSubmatch(text, -1) {
		out = append(out, m[1])
	}
	return out
}
