package model

import (
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
)

// FileEvidence is the immutable input handed to parsers and scanners: a
// repository-relative path, the detected language, and the raw content read
// once during discovery.
type FileEvidence struct {
	path     string
	language ast.LanguageTag
	content  []byte
	lines    []int // byte offset of each line start, built on construction
}

// NewFileEvidence builds evidence for a file. The path is normalized to
// forward slashes; content is retained as given.
func NewFileEvidence(path string, language ast.LanguageTag, content []byte) *FileEvidence {
	ev := &FileEvidence{
		path:     strings.ReplaceAll(path, "\\", "/"),
		language: language,
		content:  content,
	}
	ev.lines = append(ev.lines, 0)
	for i, b := range content {
		if b == '\n' {
			ev.lines = append(ev.lines, i+1)
		}
	}
	return ev
}

// Path returns the repository-relative, slash-separated file path.
func (e *FileEvidence) Path() string { return e.path }

// Language returns the detected language tag.
func (e *FileEvidence) Language() ast.LanguageTag { return e.language }

// Content returns the raw file bytes.
func (e *FileEvidence) Content() []byte { return e.content }

// LineCount returns the number of lines in the file.
func (e *FileEvidence) LineCount() int { return len(e.lines) }

// LineAt converts a byte offset into a 1-based line number.
func (e *FileEvidence) LineAt(offset int) int {
	lo, hi := 0, len(e.lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if e.lines[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// LineText returns the text of the given 1-based line without its newline.
func (e *FileEvidence) LineText(line int) string {
	if line < 1 || line > len(e.lines) {
		return ""
	}
	start := e.lines[line-1]
	end := len(e.content)
	if line < len(e.lines) {
		end = e.lines[line] - 1
	}
	return strings.TrimRight(string(e.content[start:end]), "\r")
}
