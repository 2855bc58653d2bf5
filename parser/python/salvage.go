package python

import (
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var (
	decoratorLine = regexp.MustCompile(`^\s*@([\w.]+)\s*(?:\((.*)\))?\s*$`)
	defLine       = regexp.MustCompile(`^(\s*)(async\s+)?def\s+(\w+)\s*\(([^)]*)`)
	classLine     = regexp.MustCompile(`^\s*class\s+(\w+)\s*(?:\(([^)]*)\))?\s*:`)
	chainedCall   = regexp.MustCompile(`([\w.]+)\.(\w+)\s*\(([^)]*)\)`)
)

// salvage recovers declarations, decorators and chained call sites line by
// line when the grammar path is unusable.
func salvage(ev *model.FileEvidence) *ast.File {
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  ast.Python,
		Degraded:  true,
	}

	var pending []*ast.Annotation
	var currentClass *ast.TypeDecl
	for line := 1; line <= ev.LineCount(); line++ {
		text := ev.LineText(line)
		if m := decoratorLine.FindStringSubmatch(text); m != nil {
			pending = append(pending, &ast.Annotation{
				Locatable: ast.Locatable{Path: ev.Path(), Line: line},
				Name:      m[1],
				Args:      strings.TrimSpace(m[2]),
			})
			continue
		}
		if m := classLine.FindStringSubmatch(text); m != nil {
			decl := &ast.TypeDecl{
				Locatable:     ast.Locatable{Path: ev.Path(), Line: line},
				Name:          m[1],
				QualifiedName: m[1],
				Annotations:   pending,
			}
			for i, base := range splitBases(m[2]) {
				if i == 0 {
					decl.Base = base
				} else {
					decl.Interfaces = append(decl.Interfaces, base)
				}
			}
			pending = nil
			currentClass = decl
			file.Types = append(file.Types, decl)
			continue
		}
		if m := defLine.FindStringSubmatch(text); m != nil {
			fn := &ast.Function{
				Locatable:  ast.Locatable{Path: ev.Path(), Line: line},
				Name:       m[3],
				Parameters: splitParams(m[4]),
				Decorators: pending,
				Async:      strings.TrimSpace(m[2]) == "async",
			}
			pending = nil
			if len(m[1]) > 0 && currentClass != nil {
				fn.Receiver = currentClass.Name
				currentClass.Methods = append(currentClass.Methods, fn)
			} else {
				currentClass = nil
				file.Functions = append(file.Functions, fn)
			}
			continue
		}
		for _, m := range chainedCall.FindAllStringSubmatch(text, -1) {
			file.Calls = append(file.Calls, &ast.CallSite{
				Locatable: ast.Locatable{Path: ev.Path(), Line: line},
				Receiver:  m[1],
				Method:    m[2],
				Args:      strings.TrimSpace(m[3]),
			})
		}
		if strings.TrimSpace(text) != "" {
			pending = nil
		}
	}
	return file
}

func splitBases(raw string) []string {
	var bases []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			bases = append(bases, part)
		}
	}
	return bases
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
		part = strings.TrimLeft(part, "*")
		if part != "" {
			params = append(params, part)
		}
	}
	return params
}
