// Package ast defines the language-tagged facade over per-language parse
// results. Scanners operate on these values only; they never see a raw
// tree-sitter tree or the regex salvage internals.
package ast

// LanguageTag identifies the source language of a file or node.
type LanguageTag string

const (
	Java       LanguageTag = "java"
	Kotlin     LanguageTag = "kotlin"
	Python     LanguageTag = "python"
	CSharp     LanguageTag = "csharp"
	Go         LanguageTag = "go"
	Ruby       LanguageTag = "ruby"
	JavaScript LanguageTag = "javascript"
	TypeScript LanguageTag = "typescript"
	Other      LanguageTag = "other"
)

// Locatable anchors a node to its source file and 1-based line.
type Locatable struct {
	Path string
	Line int
}

// File is the parse result for a single source file.
type File struct {
	Locatable
	Language LanguageTag

	// Degraded is set when the grammar parser was unavailable or failed and
	// the value was produced by the regex salvage path. Scanners tag findings
	// derived from a degraded file with low confidence.
	Degraded bool

	Types       []*TypeDecl
	Functions   []*Function
	Routes      []*Route
	Directives  []*Directive
	Calls       []*CallSite
	RouteBlocks []*RouteBlock
}

// TypeDecl represents a declared class, interface, struct, module or enum.
type TypeDecl struct {
	Locatable
	Name          string
	QualifiedName string
	Base          string
	Interfaces    []string
	Annotations   []*Annotation
	Methods       []*Function
	Fields        []*Field
}

// Annotation is a Java annotation, .NET attribute or Python decorator
// attached to a declaration. Args holds the raw argument text without the
// surrounding parentheses, verbatim.
type Annotation struct {
	Locatable
	Name string
	Args string
}

// Function represents a function or method declaration. Receiver carries the
// enclosing type name for methods and is empty for free functions.
type Function struct {
	Locatable
	Name       string
	Receiver   string
	Parameters []string
	Decorators []*Annotation
	Async      bool
}

// Field represents a member field or property of a type.
type Field struct {
	Locatable
	Name        string
	Type        string
	Tag         string
	Annotations []*Annotation
}

// Route is a declared route binding extracted directly by a parser, e.g. a
// module-level @app.get('/path') handler.
type Route struct {
	Locatable
	Verb    string
	Path    string
	Handler string
}

// Directive is a framework directive that is neither a declaration nor a
// route, e.g. Rails before_action or a sidekiq_options call. Args is the raw
// argument text.
type Directive struct {
	Locatable
	Name string
	Args string
}

// CallSite is a method invocation site with receiver resolution, e.g.
// send_email.delay('u@e', 'Hi') or r.GET("/x", handler).
type CallSite struct {
	Locatable
	Receiver string
	Method   string
	Args     string
}

// RouteBlock is one entry of a routing DSL, possibly nested. The Ruby
// adapter produces these for config/routes.rb: any entry written with a do
// block (namespace, scope, or nested resources) carries the block's entries
// as children; entries without a block are leaves.
type RouteBlock struct {
	Locatable
	Keyword  string
	Arg      string
	Extra    string
	Children []*RouteBlock
}

// AnnotationNamed reports the first annotation with the given name. Parsers
// store names without the @ sigil or [] brackets, so lookups use the bare
// name.
func (t *TypeDecl) AnnotationNamed(name string) *Annotation {
	return annotationNamed(t.Annotations, name)
}

// AnnotationNamed reports the first decorator with the given name.
func (f *Function) AnnotationNamed(name string) *Annotation {
	return annotationNamed(f.Decorators, name)
}

// AnnotationNamed reports the first field annotation with the given name.
func (f *Field) AnnotationNamed(name string) *Annotation {
	return annotationNamed(f.Annotations, name)
}

func annotationNamed(list []*Annotation, name string) *Annotation {
	for _, a := range list {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// TypeNamed retrieves a declared type by name.
func (f *File) TypeNamed(name string) *TypeDecl {
	for _, t := range f.Types {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// FunctionNamed retrieves a free function by name.
func (f *File) FunctionNamed(name string) *Function {
	for _, fn := range f.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}
