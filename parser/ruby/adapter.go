// Package ruby parses Ruby sources into the AST facade, using the
// tree-sitter grammar with a regex salvage fallback. Beyond classes and
// methods it extracts Rails filter directives and the routes DSL as nested
// route blocks.
package ruby

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

// directiveNames are the bare calls recorded as framework directives.
var directiveNames = map[string]bool{
	"before_action":      true,
	"after_action":       true,
	"around_action":      true,
	"skip_before_action": true,
	"sidekiq_options":    true,
	"include":            true,
	"render":             true,
	"redirect_to":        true,
}

// Adapter parses Ruby files.
type Adapter struct {
	grammar *sitter.Language
}

// New creates the Ruby adapter.
func New() *Adapter {
	return &Adapter{grammar: ruby.GetLanguage()}
}

// Language returns ast.Ruby.
func (a *Adapter) Language() ast.LanguageTag { return ast.Ruby }

// Available reports whether the grammar parser is usable.
func (a *Adapter) Available() bool { return a.grammar != nil }

// Parse produces the AST facade for a Ruby file. A file the grammar cannot
// parse cleanly degrades to the salvage path; parse problems never abort the
// file.
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

// processFile extracts classes, modules, methods, directives and route
// blocks from a parsed Ruby file.
func (a *Adapter) processFile(root *sitter.Node, ev *model.FileEvidence) *ast.File {
	src := ev.Content()
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  ast.Ruby,
	}

	var visit func(n *sitter.Node, class *ast.TypeDecl)
	visit = func(n *sitter.Node, class *ast.TypeDecl) {
		switch n.Type() {
		case "class", "module":
			decl := parseClassNode(n, src, ev)
			if decl != nil {
				file.Types = append(file.Types, decl)
				class = decl
			}
		case "method":
			if fn := parseMethodNode(n, src, ev, class); fn != nil {
				if class != nil {
					class.Methods = append(class.Methods, fn)
				} else {
					file.Functions = append(file.Functions, fn)
				}
			}
		case "call":
			a.processCall(n, src, ev, file)
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i), class)
		}
	}
	visit(root, nil)

	file.RouteBlocks = extractRouteBlocks(root, src, ev)
	return file
}

// parseClassNode extracts a class or module declaration with its superclass.
func parseClassNode(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.TypeDecl {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	decl := &ast.TypeDecl{
		Locatable:     locate(node, ev),
		Name:          nameNode.Content(src),
		QualifiedName: nameNode.Content(src),
	}
	if superclass := node.ChildByFieldName("superclass"); superclass != nil {
		decl.Base = strings.TrimSpace(strings.TrimPrefix(superclass.Content(src), "<"))
	}
	return decl
}

// parseMethodNode extracts a method definition with its parameter names.
func parseMethodNode(node *sitter.Node, src []byte, ev *model.FileEvidence, class *ast.TypeDecl) *ast.Function {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	fn := &ast.Function{
		Locatable: locate(node, ev),
		Name:      nameNode.Content(src),
	}
	if class != nil {
		fn.Receiver = class.Name
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(i)
			switch param.Type() {
			case "identifier":
				fn.Parameters = append(fn.Parameters, param.Content(src))
			case "optional_parameter", "keyword_parameter":
				if pname := param.ChildByFieldName("name"); pname != nil {
					fn.Parameters = append(fn.Parameters, pname.Content(src))
				}
			}
		}
	}
	return fn
}

// processCall records framework directives and chained call sites such as
// HardWorker.perform_async(...).
func (a *Adapter) processCall(node *sitter.Node, src []byte, ev *model.FileEvidence, file *ast.File) {
	methodNode := node.ChildByFieldName("method")
	if methodNode == nil {
		return
	}
	method := methodNode.Content(src)
	args := ""
	if arguments := node.ChildByFieldName("arguments"); arguments != nil {
		args = strings.Trim(arguments.Content(src), "()")
	}
	receiver := ""
	if recv := node.ChildByFieldName("receiver"); recv != nil {
		receiver = recv.Content(src)
	}
	if receiver == "" && directiveNames[method] {
		file.Directives = append(file.Directives, &ast.Directive{
			Locatable: locate(node, ev),
			Name:      method,
			Args:      strings.TrimSpace(args),
		})
		return
	}
	if receiver != "" {
		file.Calls = append(file.Calls, &ast.CallSite{
			Locatable: locate(node, ev),
			Receiver:  receiver,
			Method:    method,
			Args:      strings.TrimSpace(args),
		})
	}
}

func locate(n *sitter.Node, ev *model.FileEvidence) ast.Locatable {
	return ast.Locatable{Path: ev.Path(), Line: int(n.StartPoint().Row) + 1}
}
