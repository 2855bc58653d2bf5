package ruby

import (
	"regexp"
	"strings"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

var (
	classLine     = regexp.MustCompile(`^\s*(class|module)\s+([A-Z]\w*(?:::[A-Z]\w*)*)(?:\s*<\s*([\w:]+))?`)
	defLine       = regexp.MustCompile(`^\s*def\s+(?:self\.)?(\w+[?!=]?)\s*(?:\(([^)]*)\))?`)
	directiveLine = regexp.MustCompile(`^\s*(before_action|after_action|around_action|skip_before_action|sidekiq_options|include|render|redirect_to)\b\s*(.*?)\s*$`)
	routeLine     = regexp.MustCompile(`^(\s*)(namespace|scope|resources|resource|get|post|put|patch|delete|root|match)\b\s*(.*?)\s*(do)?\s*$`)
	endLine       = regexp.MustCompile(`^(\s*)end\s*$`)
	callSiteLine  = regexp.MustCompile(`([A-Z]\w*(?:::\w+)*|\w+)\.(\w+[?!]?)\s*\(([^)]*)\)`)
)

type openBlock struct {
	block  *ast.RouteBlock
	indent int
}

// salvage recovers classes, methods, filter directives and routes-DSL lines
// when the grammar path is unusable. Malformed lines localize: the rest of
// the file still contributes structure.
func salvage(ev *model.FileEvidence) *ast.File {
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  ast.Ruby,
		Degraded:  true,
	}

	isRoutes := strings.HasSuffix(ev.Path(), "routes.rb")
	var current *ast.TypeDecl
	var stack []openBlock

	appendRoute := func(b *ast.RouteBlock) {
		if len(stack) > 0 {
			parent := stack[len(stack)-1].block
			parent.Children = append(parent.Children, b)
			return
		}
		file.RouteBlocks = append(file.RouteBlocks, b)
	}

	for line := 1; line <= ev.LineCount(); line++ {
		text := ev.LineText(line)
		if m := classLine.FindStringSubmatch(text); m != nil {
			current = &ast.TypeDecl{
				Locatable:     ast.Locatable{Path: ev.Path(), Line: line},
				Name:          m[2],
				QualifiedName: m[2],
				Base:          m[3],
			}
			file.Types = append(file.Types, current)
			continue
		}
		if m := defLine.FindStringSubmatch(text); m != nil {
			fn := &ast.Function{
				Locatable:  ast.Locatable{Path: ev.Path(), Line: line},
				Name:       m[1],
				Parameters: splitParams(m[2]),
			}
			if current != nil {
				fn.Receiver = current.Name
				current.Methods = append(current.Methods, fn)
			} else {
				file.Functions = append(file.Functions, fn)
			}
			continue
		}
		if m := directiveLine.FindStringSubmatch(text); m != nil {
			file.Directives = append(file.Directives, &ast.Directive{
				Locatable: ast.Locatable{Path: ev.Path(), Line: line},
				Name:      m[1],
				Args:      strings.Trim(m[2], "()"),
			})
			continue
		}
		if isRoutes {
			if m := routeLine.FindStringSubmatch(text); m != nil {
				args := strings.TrimSpace(m[3])
				block := &ast.RouteBlock{
					Locatable: ast.Locatable{Path: ev.Path(), Line: line},
					Keyword:   m[2],
					Arg:       CleanRouteArg(args),
					Extra:     args,
				}
				appendRoute(block)
				if m[4] == "do" {
					stack = append(stack, openBlock{block: block, indent: len(m[1])})
				}
				continue
			}
			if m := endLine.FindStringSubmatch(text); m != nil && len(stack) > 0 {
				if len(m[1]) <= stack[len(stack)-1].indent {
					stack = stack[:len(stack)-1]
				}
				continue
			}
		}
		for _, m := range callSiteLine.FindAllStringSubmatch(text, -1) {
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
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.TrimSuffix(part, ":")
		if idx := strings.IndexAny(part, " =:"); idx > 0 {
			part = part[:idx]
		}
		params = append(params, strings.TrimLeft(part, "*&"))
	}
	return params
}
