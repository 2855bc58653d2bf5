// Package java parses Java and Kotlin sources into the AST facade, using the
// tree-sitter grammars with a regex salvage fallback.
package java

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/kotlin"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

// Adapter parses Java or Kotlin files, depending on the tag it was
// constructed with.
type Adapter struct {
	language ast.LanguageTag
	grammar  *sitter.Language
}

// New creates an adapter for ast.Java or ast.Kotlin.
func New(language ast.LanguageTag) *Adapter {
	grammar := java.GetLanguage()
	if language == ast.Kotlin {
		grammar = kotlin.GetLanguage()
	}
	return &Adapter{language: language, grammar: grammar}
}

// Language returns the tag this adapter handles.
func (a *Adapter) Language() ast.LanguageTag { return a.language }

// Available reports whether the grammar parser is usable.
func (a *Adapter) Available() bool { return a.grammar != nil }

// Parse produces the AST facade for a Java or Kotlin file. A source the
// grammar cannot parse cleanly degrades to the salvage path.
func (a *Adapter) Parse(ev *model.FileEvidence) (*ast.File, error) {
	if a.Available() {
		parser := sitter.NewParser()
		parser.SetLanguage(a.grammar)
		tree, err := parser.ParseCtx(context.Background(), nil, ev.Content())
		if err == nil {
			root := tree.RootNode()
			if !root.HasError() {
				if a.language == ast.Kotlin {
					return a.processKotlinFile(root, ev), nil
				}
				return a.processJavaFile(root, ev), nil
			}
		}
	}
	return salvage(ev, a.language), nil
}

// processJavaFile extracts declared types, annotations and methods from a
// parsed Java compilation unit.
func (a *Adapter) processJavaFile(root *sitter.Node, ev *model.FileEvidence) *ast.File {
	src := ev.Content()
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  a.language,
	}

	pkg := ""
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			if name := child.NamedChild(0); name != nil {
				pkg = name.Content(src)
			}
		case "class_declaration", "interface_declaration", "enum_declaration", "annotation_type_declaration":
			if decl := parseTypeDeclaration(child, src, ev, pkg); decl != nil {
				file.Types = append(file.Types, decl)
			}
		}
	}
	collectInvocations(root, src, ev, file)
	return file
}

// collectInvocations records method invocation sites with an explicit
// receiver, e.g. builder.stream("orders").
func collectInvocations(root *sitter.Node, src []byte, ev *model.FileEvidence, file *ast.File) {
	walk(root, func(n *sitter.Node) {
		if n.Type() != "method_invocation" {
			return
		}
		object := n.ChildByFieldName("object")
		name := n.ChildByFieldName("name")
		if object == nil || name == nil {
			return
		}
		args := ""
		if arguments := n.ChildByFieldName("arguments"); arguments != nil {
			args = strings.Trim(arguments.Content(src), "()")
		}
		file.Calls = append(file.Calls, &ast.CallSite{
			Locatable: locate(n, ev),
			Receiver:  object.Content(src),
			Method:    name.Content(src),
			Args:      strings.TrimSpace(args),
		})
	})
}

// processKotlinFile extracts a best-effort type and function surface from a
// parsed Kotlin file. The Kotlin grammar names differ from Java's, so the
// walk matches node kinds anywhere in the tree.
func (a *Adapter) processKotlinFile(root *sitter.Node, ev *model.FileEvidence) *ast.File {
	src := ev.Content()
	file := &ast.File{
		Locatable: ast.Locatable{Path: ev.Path(), Line: 1},
		Language:  a.language,
	}
	walk(root, func(n *sitter.Node) {
		switch n.Type() {
		case "class_declaration", "object_declaration":
			decl := &ast.TypeDecl{
				Locatable: locate(n, ev),
			}
			for i := 0; i < int(n.NamedChildCount()); i++ {
				c := n.NamedChild(i)
				switch c.Type() {
				case "type_identifier":
					if decl.Name == "" {
						decl.Name = c.Content(src)
					}
				case "delegation_specifier":
					decl.Base = c.Content(src)
				case "modifiers":
					decl.Annotations = append(decl.Annotations, kotlinAnnotations(c, src, ev)...)
				}
			}
			if decl.Name != "" {
				decl.QualifiedName = decl.Name
				file.Types = append(file.Types, decl)
			}
		case "function_declaration":
			fn := &ast.Function{Locatable: locate(n, ev)}
			for i := 0; i < int(n.NamedChildCount()); i++ {
				c := n.NamedChild(i)
				switch c.Type() {
				case "simple_identifier":
					if fn.Name == "" {
						fn.Name = c.Content(src)
					}
				case "modifiers":
					fn.Decorators = append(fn.Decorators, kotlinAnnotations(c, src, ev)...)
				}
			}
			if fn.Name != "" {
				file.Functions = append(file.Functions, fn)
			}
		}
	})
	return file
}

func kotlinAnnotations(modifiers *sitter.Node, src []byte, ev *model.FileEvidence) []*ast.Annotation {
	var out []*ast.Annotation
	walk(modifiers, func(n *sitter.Node) {
		if n.Type() != "annotation" {
			return
		}
		text := n.Content(src)
		name, args := splitAnnotationText(text)
		out = append(out, &ast.Annotation{Locatable: locate(n, ev), Name: name, Args: args})
	})
	return out
}

// walk visits every node of the subtree in document order.
func walk(n *sitter.Node, visit func(*sitter.Node)) {
	visit(n)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), visit)
	}
}

func locate(n *sitter.Node, ev *model.FileEvidence) ast.Locatable {
	return ast.Locatable{Path: ev.Path(), Line: int(n.StartPoint().Row) + 1}
}
