// Package golang parses Go sources into the AST facade, using the
// tree-sitter grammar with a regex salvage fallback. Scanners rely on struct
// tags and router-registration call sites.
package golang

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

// Adapter parses Go files.
type Adapter struct {
	grammar *sitter.Language
}

// New creates the Go adapter.
func New() *Adapter {
	return &Adapter{grammar: golang.GetLanguage()}
}

// Language returns ast.Go.
func (a *Adapter) Language() ast.LanguageTag { return ast.Go }

// Available reports whether the grammar parser is usable.
func (a *Adapter) Available() bool { return a.grammar != nil }

// Parse produces the AST facade for a Go file.
func (a *Adapter) Parse(ev *model.FileEvidence) (*ast.File, error) {
	if a.Available() {
		parser := sitter.NewParser()
		parser.SetLanguage(a.grammar)
		tree, err := parser.ParseCtx(context.Background(), nil, ev.Content())
		if err == nil {
			root := tree.RootNode()
			if !root.HasError() {
				return a.processFile(root, ev), nil
			}
		}
	}
	return salvage(ev), nil
}

// processFile extracts type, function and call-site structure from a parsed
// Go source file.
func (a *Adapter) processFile(root *sitter.Node, ev *model.FileEvidence) *ast.File {
	src := ev.Content()
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  ast.Go,
	}
	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "type_spec":
			if decl := parseTypeSpec(n, src, ev); decl != nil {
				file.Types = append(file.Types, decl)
			}
		case "function_declaration":
			if fn := parseFunction(n, src, ev, ""); fn != nil {
				file.Functions = append(file.Functions, fn)
			}
		case "method_declaration":
			receiver := ""
			if recv := n.ChildByFieldName("receiver"); recv != nil {
				receiver = strings.Trim(recv.Content(src), "()")
				if fields := strings.Fields(receiver); len(fields) > 0 {
					receiver = strings.TrimPrefix(fields[len(fields)-1], "*")
				}
			}
			if fn := parseFunction(n, src, ev, receiver); fn != nil {
				file.Functions = append(file.Functions, fn)
			}
		case "call_expression":
			if call := parseCall(n, src, ev); call != nil {
				file.Calls = append(file.Calls, call)
			}
		}
	})
	return file
}

// parseTypeSpec extracts a named type; struct types carry their fields and
// tags.
func parseTypeSpec(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.TypeDecl {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	decl := &ast.TypeDecl{
		Locatable:     locate(node, ev),
		Name:          nameNode.Content(src),
		QualifiedName: nameNode.Content(src),
	}
	typeNode := node.ChildByFieldName("type")
	if typeNode == nil || typeNode.Type() != "struct_type" {
		return decl
	}
	walk(typeNode, func(n *sitter.Node) {
		if n.Type() != "field_declaration" {
			return
		}
		field := &ast.Field{Locatable: locate(n, ev)}
		if fname := n.ChildByFieldName("name"); fname != nil {
			field.Name = fname.Content(src)
		}
		if ftype := n.ChildByFieldName("type"); ftype != nil {
			field.Type = ftype.Content(src)
		}
		if tag := n.ChildByFieldName("tag"); tag != nil {
			field.Tag = strings.Trim(tag.Content(src), "`\"")
		}
		if field.Name == "" && field.Type != "" {
			// embedded field
			field.Name = field.Type
		}
		if field.Name != "" {
			decl.Fields = append(decl.Fields, field)
		}
	})
	return decl
}

// parseFunction extracts a function or method with ordered parameter names.
func parseFunction(node *sitter.Node, src []byte, ev *model.FileEvidence, receiver string) *ast.Function {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	fn := &ast.Function{
		Locatable: locate(node, ev),
		Name:      nameNode.Content(src),
		Receiver:  receiver,
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(i)
			if param.Type() != "parameter_declaration" && param.Type() != "variadic_parameter_declaration" {
				continue
			}
			if pname := param.ChildByFieldName("name"); pname != nil {
				fn.Parameters = append(fn.Parameters, pname.Content(src))
			}
		}
	}
	return fn
}

// parseCall records selector call sites such as r.GET("/orders", list).
func parseCall(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.CallSite {
	function := node.ChildByFieldName("function")
	if function == nil || function.Type() != "selector_expression" {
		return nil
	}
	operand := function.ChildByFieldName("operand")
	field := function.ChildByFieldName("field")
	if operand == nil || field == nil {
		return nil
	}
	args := ""
	if arguments := node.ChildByFieldName("arguments"); arguments != nil {
		args = strings.TrimSuffix(strings.TrimPrefix(arguments.Content(src), "("), ")")
	}
	return &ast.CallSite{
		Locatable: locate(node, ev),
		Receiver:  operand.Content(src),
		Method:    field.Content(src),
		Args:      strings.TrimSpace(args),
	}
}

func walk(n *sitter.Node, visit func(*sitter.Node)) {
	visit(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), visit)
	}
}

func locate(n *sitter.Node, ev *model.FileEvidence) ast.Locatable {
	return ast.Locatable{Path: ev.Path(), Line: int(n.StartPoint().Row) + 1}
}
