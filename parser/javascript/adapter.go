// Package javascript parses JavaScript and TypeScript sources into the AST
// facade, using the tree-sitter grammars with a regex salvage fallback. The
// express-routes scanner relies on the extracted call sites.
package javascript

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

// Adapter parses JavaScript or TypeScript files, depending on the tag it was
// constructed with.
type Adapter struct {
	language ast.LanguageTag
	grammar  *sitter.Language
}

// New creates an adapter for ast.JavaScript or ast.TypeScript.
func New(language ast.LanguageTag) *Adapter {
	grammar := javascript.GetLanguage()
	if language == ast.TypeScript {
		grammar = typescript.GetLanguage()
	}
	return &Adapter{language: language, grammar: grammar}
}

// Language returns the tag this adapter handles.
func (a *Adapter) Language() ast.LanguageTag { return a.language }

// Available reports whether the grammar parser is usable.
func (a *Adapter) Available() bool { return a.grammar != nil }

// Parse produces the AST facade for a JavaScript or TypeScript file.
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
	return salvage(ev, a.language), nil
}

// processFile extracts functions, classes and member call sites from a
// parsed file.
func (a *Adapter) processFile(root *sitter.Node, ev *model.FileEvidence) *ast.File {
	src := ev.Content()
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  a.language,
	}
	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "function_declaration":
			if fn := parseFunction(n, src, ev); fn != nil {
				file.Functions = append(file.Functions, fn)
			}
		case "class_declaration":
			if decl := parseClass(n, src, ev); decl != nil {
				file.Types = append(file.Types, decl)
			}
		case "call_expression":
			if call := parseCall(n, src, ev); call != nil {
				file.Calls = append(file.Calls, call)
			}
		}
	})
	return file
}

// parseFunction extracts a function declaration with its parameter names.
func parseFunction(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.Function {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	fn := &ast.Function{
		Locatable: locate(node, ev),
		Name:      nameNode.Content(src),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(i)
			switch param.Type() {
			case "identifier":
				fn.Parameters = append(fn.Parameters, param.Content(src))
			case "required_parameter", "optional_parameter":
				if pattern := param.ChildByFieldName("pattern"); pattern != nil {
					fn.Parameters = append(fn.Parameters, pattern.Content(src))
				}
			}
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "async" {
			fn.Async = true
		}
	}
	return fn
}

// parseClass extracts a class declaration with its heritage clause.
func parseClass(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.TypeDecl {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	decl := &ast.TypeDecl{
		Locatable:     locate(node, ev),
		Name:          nameNode.Content(src),
		QualifiedName: nameNode.Content(src),
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() == "class_heritage" {
			decl.Base = strings.TrimSpace(strings.TrimPrefix(child.Content(src), "extends"))
		}
	}
	return decl
}

// parseCall records member call sites such as app.get('/orders', handler).
func parseCall(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.CallSite {
	function := node.ChildByFieldName("function")
	if function == nil || function.Type() != "member_expression" {
		return nil
	}
	object := function.ChildByFieldName("object")
	property := function.ChildByFieldName("property")
	if object == nil || property == nil {
		return nil
	}
	args := ""
	if arguments := node.ChildByFieldName("arguments"); arguments != nil {
		args = strings.TrimSuffix(strings.TrimPrefix(arguments.Content(src), "("), ")")
	}
	return &ast.CallSite{
		Locatable: locate(node, ev),
		Receiver:  object.Content(src),
		Method:    property.Content(src),
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
