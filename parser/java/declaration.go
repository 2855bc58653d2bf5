package java

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

// parseTypeDeclaration extracts a class, interface or enum declaration with
// its annotations, superclass, interfaces, methods and fields.
func parseTypeDeclaration(node *sitter.Node, src []byte, ev *model.FileEvidence, pkg string) *ast.TypeDecl {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	name := nameNode.Content(src)

	decl := &ast.TypeDecl{
		Locatable:     locate(node, ev),
		Name:          name,
		QualifiedName: name,
		Annotations:   parseModifierAnnotations(node, src, ev),
	}
	if pkg != "" {
		decl.QualifiedName = pkg + "." + name
	}

	if superclass := node.ChildByFieldName("superclass"); superclass != nil {
		decl.Base = strings.TrimSpace(strings.TrimPrefix(superclass.Content(src), "extends"))
	}
	if interfaces := node.ChildByFieldName("interfaces"); interfaces != nil {
		raw := strings.TrimSpace(strings.TrimPrefix(interfaces.Content(src), "implements"))
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				decl.Interfaces = append(decl.Interfaces, part)
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
		case "method_declaration", "constructor_declaration":
			if fn := parseMethodDeclaration(member, src, ev, name); fn != nil {
				decl.Methods = append(decl.Methods, fn)
			}
		case "field_declaration":
			if field := parseFieldDeclaration(member, src, ev); field != nil {
				decl.Fields = append(decl.Fields, field)
			}
		}
	}
	return decl
}

// parseMethodDeclaration extracts a method with its annotations and ordered
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
		Decorators: parseModifierAnnotations(node, src, ev),
	}
	if params := node.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(i)
			if param.Type() != "formal_parameter" && param.Type() != "spread_parameter" {
				continue
			}
			if pname := param.ChildByFieldName("name"); pname != nil {
				fn.Parameters = append(fn.Parameters, pname.Content(src))
			}
		}
	}
	return fn
}

// parseFieldDeclaration extracts a field with its annotations and declared
// type.
func parseFieldDeclaration(node *sitter.Node, src []byte, ev *model.FileEvidence) *ast.Field {
	declarator := node.ChildByFieldName("declarator")
	if declarator == nil {
		return nil
	}
	nameNode := declarator.ChildByFieldName("name")
	if nameNode == nil {
		return nil
	}
	field := &ast.Field{
		Locatable:   locate(node, ev),
		Name:        nameNode.Content(src),
		Annotations: parseModifierAnnotations(node, src, ev),
	}
	if typeNode := node.ChildByFieldName("type"); typeNode != nil {
		field.Type = typeNode.Content(src)
	}
	return field
}

// parseModifierAnnotations collects the annotations attached to a
// declaration through its modifiers node.
func parseModifierAnnotations(node *sitter.Node, src []byte, ev *model.FileEvidence) []*ast.Annotation {
	var out []*ast.Annotation
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "modifiers" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			ann := child.Child(j)
			switch ann.Type() {
			case "annotation", "marker_annotation":
				name, args := splitAnnotationText(ann.Content(src))
				out = append(out, &ast.Annotation{Locatable: locate(ann, ev), Name: name, Args: args})
			}
		}
	}
	return out
}

// splitAnnotationText splits "@Name(args)" into name and raw argument text.
func splitAnnotationText(text string) (string, string) {
	text = strings.TrimSpace(strings.TrimPrefix(text, "@"))
	open := strings.Index(text, "(")
	if open < 0 {
		return text, ""
	}
	name := strings.TrimSpace(text[:open])
	args := strings.TrimSpace(text[open+1:])
	args = strings.TrimSuffix(args, ")")
	return name, strings.TrimSpace(args)
}
