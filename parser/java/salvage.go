package java

import (
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var (
	annotationLine = regexp.MustCompile(`^\s*@(\w[\w.]*)\s*(?:\((.*)\))?\s*$`)
	typeLine       = regexp.MustCompile(`^\s*(?:public\s+|private\s+|protected\s+|abstract\s+|final\s+|static\s+|open\s+|data\s+|sealed\s+)*(?:class|interface|enum|object)\s+(\w+)`)
	extendsClause  = regexp.MustCompile(`extends\s+([\w.<>]+)`)
	kotlinBase     = regexp.MustCompile(`\w+\s*(?:\([^)]*\))?\s*:\s*([\w.]+)`)
	methodLine     = regexp.MustCompile(`^\s*(?:public\s+|private\s+|protected\s+|static\s+|final\s+|synchronized\s+|suspend\s+|override\s+)*(?:fun\s+(\w+)|[\w<>\[\],.\s]+\s+(\w+))\s*\(([^)]*)\)`)
	invocationLine = regexp.MustCompile(`([\w.]+)\.(\w+)\s*\(([^)]*)\)`)
)

// salvage recovers type, annotation and method structure line by line when
// the grammar parser is unavailable or the source does not parse cleanly.
func salvage(ev *model.FileEvidence, language ast.LanguageTag) *ast.File {
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  language,
		Degraded:  true,
	}

	var pending []*ast.Annotation
	var current *ast.TypeDecl
	for line := 1; line <= ev.LineCount(); line++ {
		text := ev.LineText(line)
		if m := annotationLine.FindStringSubmatch(text); m != nil {
			pending = append(pending, &ast.Annotation{
				Locatable: ast.Locatable{Path: ev.Path(), Line: line},
				Name:      m[1],
				Args:      strings.TrimSpace(m[2]),
			})
			continue
		}
		if m := typeLine.FindStringSubmatch(text); m != nil {
			decl := &ast.TypeDecl{
				Locatable:     ast.Locatable{Path: ev.Path(), Line: line},
				Name:          m[1],
				QualifiedName: m[1],
				Annotations:   pending,
			}
			if em := extendsClause.FindStringSubmatch(text); em != nil {
				decl.Base = em[1]
			} else if language == ast.Kotlin {
				if km := kotlinBase.FindStringSubmatch(text); km != nil {
					decl.Base = km[1]
				}
			}
			pending = nil
			current = decl
			file.Types = append(file.Types, decl)
			continue
		}
		if m := methodLine.FindStringSubmatch(text); m != nil && !strings.Contains(text, ";") {
			name := m[1]
			if name == "" {
				name = m[2]
			}
			if isReservedWord(name) {
				pending = nil
				continue
			}
			fn := &ast.Function{
				Locatable:  ast.Locatable{Path: ev.Path(), Line: line},
				Name:       name,
				Parameters: parameterNames(m[3]),
				Decorators: pending,
			}
			pending = nil
			if current != nil {
				fn.Receiver = current.Name
				current.Methods = append(current.Methods, fn)
			} else {
				file.Functions = append(file.Functions, fn)
			}
			continue
		}
		for _, m := range invocationLine.FindAllStringSubmatch(text, -1) {
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

// parameterNames extracts the parameter names from a raw parameter list,
// taking the last identifier of each comma-separated entry.
func parameterNames(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if colon := strings.Index(part, ":"); colon > 0 {
			part = strings.TrimSpace(part[:colon])
		}
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		name := fields[len(fields)-1]
		if colon := strings.Index(part, ":"); colon > 0 {
			name = fields[0]
		}
		names = append(names, strings.Trim(name, "."))
	}
	return names
}

func isReservedWord(name string) bool {
	switch name {
	case "if", "for", "while", "switch", "catch", "return", "new", "super", "this":
		return true
	}
	return false
}
