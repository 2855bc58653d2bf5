package csharp

import (
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var (
	attributeLine = regexp.MustCompile(`^\s*\[(\w+)\s*(?:\((.*)\))?\]\s*$`)
	classLine     = regexp.MustCompile(`^\s*(?:public\s+|internal\s+|private\s+|abstract\s+|sealed\s+|partial\s+|static\s+)*(?:class|interface|record)\s+(\w+)(?:\s*:\s*(.+?))?\s*(?:\{|$)`)
	methodLine    = regexp.MustCompile(`^\s*(?:public\s+|internal\s+|private\s+|protected\s+|static\s+|async\s+|virtual\s+|override\s+)+[\w<>\[\],.?]+\s+(\w+)\s*\(([^)]*)\)`)
	propertyLine  = regexp.MustCompile(`^\s*(?:public\s+|internal\s+|protected\s+)+([\w<>\[\],.?]+)\s+(\w+)\s*\{\s*get`)
)

// salvage recovers class, attribute and member structure line by line when
// the grammar path is unusable.
func salvage(ev *model.FileEvidence) *ast.File {
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  ast.CSharp,
		Degraded:  true,
	}

	var pending []*ast.Annotation
	var current *ast.TypeDecl
	for line := 1; line <= ev.LineCount(); line++ {
		text := ev.LineText(line)
		if m := attributeLine.FindStringSubmatch(text); m != nil {
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
			current = decl
			file.Types = append(file.Types, decl)
			continue
		}
		if m := propertyLine.FindStringSubmatch(text); m != nil && current != nil {
			current.Fields = append(current.Fields, &ast.Field{
				Locatable:   ast.Locatable{Path: ev.Path(), Line: line},
				Name:        m[2],
				Type:        m[1],
				Annotations: pending,
			})
			pending = nil
			continue
		}
		if m := methodLine.FindStringSubmatch(text); m != nil && !strings.Contains(text, ";") {
			fn := &ast.Function{
				Locatable:  ast.Locatable{Path: ev.Path(), Line: line},
				Name:       m[1],
				Parameters: splitParams(m[2]),
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
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		params = append(params, fields[len(fields)-1])
	}
	return params
}
