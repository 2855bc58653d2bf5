package javascript

import (
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var (
	functionLine = regexp.MustCompile(`^\s*(?:export\s+)?(async\s+)?function\s+(\w+)\s*\(([^)]*)`)
	classLine    = regexp.MustCompile(`^\s*(?:export\s+)?class\s+(\w+)(?:\s+extends\s+([\w.]+))?`)
	memberCall   = regexp.MustCompile(`([\w.]+)\.(\w+)\s*\(\s*('[^']*'|"[^"]*"|` + "`[^`]*`" + `)?`)
)

// salvage recovers function, class and member-call structure line by line
// when the grammar path is unusable.
func salvage(ev *model.FileEvidence, language ast.LanguageTag) *ast.File {
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  language,
		Degraded:  true,
	}
	for line := 1; line <= ev.LineCount(); line++ {
		text := ev.LineText(line)
		if m := functionLine.FindStringSubmatch(text); m != nil {
			file.Functions = append(file.Functions, &ast.Function{
				Locatable:  ast.Locatable{Path: ev.Path(), Line: line},
				Name:       m[2],
				Parameters: splitParams(m[3]),
				Async:      strings.TrimSpace(m[1]) == "async",
			})
			continue
		}
		if m := classLine.FindStringSubmatch(text); m != nil {
			file.Types = append(file.Types, &ast.TypeDecl{
				Locatable:     ast.Locatable{Path: ev.Path(), Line: line},
				Name:          m[1],
				QualifiedName: m[1],
				Base:          m[2],
			})
			continue
		}
		for _, m := range memberCall.FindAllStringSubmatch(text, -1) {
			file.Calls = append(file.Calls, &ast.CallSite{
				Locatable: ast.Locatable{Path: ev.Path(), Line: line},
				Receiver:  m[1],
				Method:    m[2],
				Args:      strings.Trim(m[3], "'\"`"),
			})
		}
	}
	return file
}

func splitParams(raw string) []string {
	var params []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if idx := strings.IndexAny(part, ":="); idx > 0 {
			part = strings.TrimSpace(part[:idx])
		}
		params = append(params, part)
	}
	return params
}
