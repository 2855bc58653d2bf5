// Package python parses Python sources into the AST facade, using the
// tree-sitter grammar with a regex salvage fallback. Beyond declarations it
// extracts chained call sites (x.delay(...), x.apply_async(...)) and derives
// routes from decorator-annotated handlers.
package python

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

// Adapter parses Python files.
type Adapter struct {
	grammar *sitter.Language
}

// New creates the Python adapter.
func New() *Adapter {
	return &Adapter{grammar: python.GetLanguage()}
}

// Language returns ast.Python.
func (a *Adapter) Language() ast.LanguageTag { return ast.Python }

// Available reports whether the grammar parser is usable.
func (a *Adapter) Available() bool { return a.grammar != nil }

// Parse produces the AST facade for a Python file.
func (a *Adapter) Parse(ev *model.FileEvidence) (*ast.File, error) {
	if a.Available() {
		parser := sitter.NewParser()
		parser.SetLanguage(a.grammar)
		tree, err := parser.ParseCtx(context.Background(), nil, ev.Content())
		if err == nil {
			root := tree.RootNode()
			if !root.HasError() {
				file := a.processModule(root, ev)
				deriveRoutes(file)
				return file, nil
			}
		}
	}
	file := salvage(ev)
	deriveRoutes(file)
	return file, nil
}

// processModule extracts declarations and call sites from a parsed module.
func (a *Adapter) processModule(root *sitter.Node, ev *model.FileEvidence) *ast.File {
	src := ev.Content()
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  ast.Python,
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		a.processStatement(root.NamedChild(i), src, ev, file, nil)
	}
	collectCallSites(root, src, ev, file)
	return file
}

// processStatement handles one top-level or class-body statement. decorators
// carries the decorator list of an enclosing decorated_definition.
func (a *Adapter) processStatement(node *sitter.Node, src []byte, ev *model.FileEvidence, file *ast.File, decorators []*ast.Annotation) {
	switch node.Type() {
	case "decorated_definition":
		var anns []*ast.Annotation
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() == "decorator" {
				anns = append(anns, parseDecorator(child, src, ev))
			}
		}
		if definition := node.ChildByFieldName("definition"); definition != nil {
			a.processStatement(definition, src, ev, file, anns)
		}
	case "function_definition":
		fn := parseFunction(node, src, ev, decorators)
		file.Functions = append(file.Functions, fn)
	case "class_definition":
		decl := a.parseClass(node, src, ev, decorators, file)
		file.Types = append(file.Types, decl)
	}
}

// parseClass extracts a class with its bases, methods and model-style
// field assignments.
func (a *Adapter) parseClass(node *sitter.Node, src []byte, ev *model.FileEvidence, decorators []*ast.Annotation, file *ast.File) *ast.TypeDecl {
	decl := &ast.TypeDecl{
		Locatable:   locate(node, ev),
		Annotations: decorators,
	}
	if name := node.ChildByFieldName("name"); name != nil {
		decl.Name = name.Content(src)
		decl.QualifiedName = decl.Name
	}
	if superclasses := node.ChildByFieldName("superclasses"); superclasses != nil {
		for i := 0; i < int(superclasses.NamedChildCount()); i++ {
			base := superclasses.NamedChild(i).Content(src)
			if decl.Base == "" {
				decl.Base = base
			} else {
				decl.Interfaces = append(decl.Interfaces, base)
			}
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		for i := 0; i < int(body.NamedChildCount()); i++ {
			member := body.NamedChild(i)
			switch member.Type() {
			case "function_definition":
				fn := parseFunction(member, src, ev, nil)
				fn.Receiver = decl.Name
				decl.Methods = append(decl.Methods, fn)
			case "decorated_definition":
				var anns []*ast.Annotation
				for j := 0; j < int(member.NamedChildCount()); j++ {
					child := member.NamedChild(j)
					if child.Type() == "decorator" {
						anns = append(anns, parseDecorator(child, src, ev))
					}
				}
				if definition := member.ChildByFieldName("definition"); definition != nil && definition.Type() == "function_definition" {
					fn := parseFunction(definition, src, ev, anns)
					fn.Receiver = decl.Name
					decl.Methods = append(decl.Methods, fn)
				}
			case "expression_statement":
				if field := parseClassField(member, src, ev); field != nil {
					decl.Fields = append(decl.Fields, field)
				}
			}
		}
	}
	return decl
}

// parseClassField recognizes "name = Expression(...)" class attributes, the
// shape Django and SQLAlchemy model fields take.
func parseClassField(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.Field {
	if node.NamedChildCount() == 0 {
		return nil
	}
	assignment := node.NamedChild(0)
	if assignment.Type() != "assignment" {
		return nil
	}
	left := assignment.ChildByFieldName("left")
	right := assignment.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "identifier" {
		return nil
	}
	return &ast.Field{
		Locatable: locate(node, ev),
		Name:      left.Content(src),
		Type:      right.Content(src),
	}
}

// parseFunction extracts a function definition with parameter names and its
// async flag.
func parseFunction(node *sitter.Node, src []byte, ev *model.FileEvidence, decorators []*ast.Annotation) *ast.Function {
	fn := &ast.Function{
		Locatable:  locate(node, ev),
		Decorators: decorators,
	}
	if name := node.ChildByFieldName("name"); name != nil {
		fn.Name = name.Content(src)
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(i)
			switch param.Type() {
			case "identifier":
				fn.Parameters = append(fn.Parameters, param.Content(src))
			case "default_parameter", "typed_parameter", "typed_default_parameter":
				if pname := param.ChildByFieldName("name"); pname != nil {
					fn.Parameters = append(fn.Parameters, pname.Content(src))
				} else if param.NamedChildCount() > 0 && param.NamedChild(0).Type() == "identifier" {
					fn.Parameters = append(fn.Parameters, param.NamedChild(0).Content(src))
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

// parseDecorator turns "@app.get('/path')" into an annotation with name
// "app.get" and raw argument text.
func parseDecorator(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.Annotation {
	text := strings.TrimSpace(strings.TrimPrefix(node.Content(src), "@"))
	name, args := text, ""
	if open := strings.Index(text, "("); open >= 0 {
		name = text[:open]
		args = strings.TrimSuffix(strings.TrimSpace(text[open+1:]), ")")
	}
	return &ast.Annotation{
		Locatable: locate(node, ev),
		Name:      strings.TrimSpace(name),
		Args:      strings.TrimSpace(args),
	}
}

// collectCallSites walks the whole module for attribute call expressions,
// preserving the receiver chain verbatim.
func collectCallSites(root *sitter.Node, src []byte, ev *model.FileEvidence, file *ast.File) {
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == "call" {
			function := n.ChildByFieldName("function")
			arguments := n.ChildByFieldName("arguments")
			if function != nil && function.Type() == "attribute" {
				object := function.ChildByFieldName("object")
				attribute := function.ChildByFieldName("attribute")
				if object != nil && attribute != nil {
					args := ""
					if arguments != nil {
						args = strings.TrimSuffix(strings.TrimPrefix(arguments.Content(src), "("), ")")
					}
					file.Calls = append(file.Calls, &ast.CallSite{
						Locatable: locate(n, ev),
						Receiver:  object.Content(src),
						Method:    attribute.Content(src),
						Args:      strings.TrimSpace(args),
					})
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	visit(root)
}

func locate(n *sitter.Node, ev *model.FileEvidence) ast.Locatable {
	return ast.Locatable{Path: ev.Path(), Line: int(n.StartPoint().Row) + 1}
}
