// Package csharp parses C# sources into the AST facade, using the
// tree-sitter grammar with a regex salvage fallback.
package csharp

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

// Adapter parses C# files.
type Adapter struct {
	grammar *sitter.Language
}

// New creates the C# adapter.
func New() *Adapter {
	return &Adapter{grammar: csharp.GetLanguage()}
}

// Language returns ast.CSharp.
func (a *Adapter) Language() ast.LanguageTag { return ast.CSharp }

// Available reports whether the grammar parser is usable.
func (a *Adapter) Available() bool { return a.grammar != nil }

// Parse produces the AST facade for a C# file.
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

// processFile extracts classes with attributes, methods and properties from
// a parsed compilation unit, descending through namespaces.
func (a *Adapter) processFile(root *sitter.Node, ev *model.FileEvidence) *ast.File {
	src := ev.Content()
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  ast.CSharp,
	}
	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "class_declaration", "interface_declaration", "record_declaration":
			if decl := parseClassDeclaration(n, src, ev); decl != nil {
				file.Types = append(file.Types, decl)
			}
		case "invocation_expression":
			if call := parseInvocation(n, src, ev); call != nil {
				file.Calls = append(file.Calls, call)
			}
		}
	})
	return file
}

// parseClassDeclaration extracts one type declaration with its attribute
// lists, bases and members.
func parseClassDeclaration(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.TypeDecl {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	decl := &ast.TypeDecl{
		Locatable:     locate(node, ev),
		Name:          nameNode.Content(src),
		QualifiedName: nameNode.Content(src),
		Annotations:   parseAttributes(node, src, ev),
	}
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "base_list" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			base := child.NamedChild(j).Content(src)
			if decl.Base == "" {
				decl.Base = base
			} else {
				decl.Interfaces = append(decl.Interfaces, base)
			}
		}
	}
	body := node.ChildByFieldName("body")
	if body == nil {
		return decl
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_declaration":
			if fn := parseMethodDeclaration(member, src, ev, decl.Name); fn != nil {
				decl.Methods = append(decl.Methods, fn)
			}
		case "property_declaration", "field_declaration":
			if field := parseMemberField(member, src, ev); field != nil {
				decl.Fields = append(decl.Fields, field)
			}
		}
	}
	return decl
}

// parseMethodDeclaration extracts a method with its attributes and ordered
// parameter names.
func parseMethodDeclaration(node *sitter.Node, src []byte, ev *model.FileEvidence, receiver string) *ast.Function {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	fn := &ast.Function{
		Locatable:  locate(node, ev),
		Name:       nameNode.Content(src),
		Receiver:   receiver,
		Decorators: parseAttributes(node, src, ev),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(i)
			if param.Type() != "parameter" {
				continue
			}
			if pname := param.ChildByFieldName("name"); pname != nil {
				fn.Parameters = append(fn.Parameters, pname.Content(src))
			}
		}
	}
	return fn
}

// parseMemberField extracts a property or field declaration. DbSet<T>
// properties surface with their generic type text preserved.
func parseMemberField(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.Field {
	field := &ast.Field{
		Locatable:   locate(node, ev),
		Annotations: parseAttributes(node, src, ev),
	}
	if nameNode := node.ChildByFieldName("name"); nameNode != nil {
		field.Name = nameNode.Content(src)
	}
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		field.Type = typeNode.Content(src)
	}
	if field.Name == "" && node.Type() == "field_declaration" {
		// field_declaration wraps a variable_declaration with declarators
		walk(node, func(n *sitter.Node) {
			if field.Name == "" && n.Type() == "variable_declarator" && n.NamedChildCount() > 0 {
				field.Name = n.NamedChild(0).Content(src)
			}
		})
	}
	if field.Name == "" {
		return nil
	}
	return field
}

// parseInvocation records member invocation sites such as
// builder.MapGrpcService<GreeterService>() or consumer.Subscribe("topic").
func parseInvocation(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.CallSite {
	function := node.ChildByFieldName("function")
	if function == nil || function.Type() != "member_access_expression" {
		return nil
	}
	object := function.ChildByFieldName("expression")
	name := function.ChildByFieldName("name")
	if object == nil || name == nil {
		return nil
	}
	args := ""
	if arguments := node.ChildByFieldName("arguments"); arguments != nil {
		args = strings.TrimSuffix(strings.TrimPrefix(arguments.Content(src), "("), ")")
	}
	return &ast.CallSite{
		Locatable: locate(node, ev),
		Receiver:  object.Content(src),
		Method:    name.Content(src),
		Args:      strings.TrimSpace(args),
	}
}

// parseAttributes collects [Attribute] lists attached to a declaration.
func parseAttributes(node *sitter.Node, src []byte, ev *model.FileEvidence) []*ast.Annotation {
	var out []*ast.Annotation
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child.Type() != "attribute_list" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			attr := child.NamedChild(j)
			if attr.Type() != "attribute" {
				continue
			}
			ann := &ast.Annotation{Locatable: locate(attr, ev)}
			if nameNode := attr.ChildByFieldName("name"); nameNode != nil {
				ann.Name = nameNode.Content(src)
			}
			text := attr.Content(src)
			if open := strings.Index(text, "("); open >= 0 {
				ann.Args = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text[open+1:]), ")"))
			}
			if ann.Name != "" {
				out = append(out, ann)
			}
		}
	}
	return out
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
