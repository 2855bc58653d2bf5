package golang

import (
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var (
	typeLine   = regexp.MustCompile(`^\s*type\s+(\w+)\s+struct\b`)
	funcLine   = regexp.MustCompile(`^\s*func\s+(?:\(\s*\w+\s+\*?(\w+)\s*\)\s+)?(\w+)\s*\(([^)]*)`)
	fieldLine  = regexp.MustCompile("^\\s*(\\w+)\\s+([\\w.\\[\\]*]+)(?:\\s+`([^`]*)`)?\\s*$")
	callLine   = regexp.MustCompile(`([\w.]+)\.(\w+)\s*\(([^)]*)\)`)
	braceClose = regexp.MustCompile(`^\s*}\s*$`)
)

// salvage recovers struct, function and call structure line by line when the
// grammar path is unusable.
func salvage(ev *model.FileEvidence) *ast.File {
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  ast.Go,
		Degraded:  true,
	}

	var currentStruct *ast.TypeDecl
	for line := 1; line <= ev.LineCount(); line++ {
		text := ev.LineText(line)
		if m := typeLine.FindStringSubmatch(text); m != nil {
			currentStruct = &ast.TypeDecl{
				Locatable:     ast.Locatable{Path: ev.Path(), Line: line},
				Name:          m[1],
				QualifiedName: m[1],
			}
			file.Types = append(file.Types, currentStruct)
			continue
		}
		if currentStruct != nil {
			if braceClose.MatchString(text) {
				currentStruct = nil
				continue
			}
			if m := fieldLine.FindStringSubmatch(text); m != nil {
				currentStruct.Fields = append(currentStruct.Fields, &ast.Field{
					Locatable: ast.Locatable{Path: ev.Path(), Line: line},
					Name:      m[1],
					Type:      m[2],
					Tag:       m[3],
				})
				continue
			}
		}
		if m := funcLine.FindStringSubmatch(text); m != nil {
			file.Functions = append(file.Functions, &ast.Function{
				Locatable:  ast.Locatable{Path: ev.Path(), Line: line},
				Name:       m[2],
				Receiver:   m[1],
				Parameters: splitParams(m[3]),
			})
			continue
		}
		for _, m := range callLine.FindAllStringSubmatch(text, -1) {
			file.Calls = append(file.Calls, &ast.CallSite{
				Locatable: ast.Locatable{Path: ev.Path(), Line: line},
				Receiver:  m[1],
				Method:    m[2],
				Args:      strings.TrimSpace(m[3]),
			})
		}
	}
	return file
}

func splitParams(raw string) []string {
	var params []string
	for _, part := range strings.Split(raw, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		params = append(params, fields[0])
	}
	return params
}
