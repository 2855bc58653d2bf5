// Package parser defines the adapter contract over per-language parsers and
// the registry the pipeline dispatches through. Each adapter composes a
// tree-sitter grammar strategy with a regex salvage strategy; scanners only
// ever see the resulting ast.File.
package parser

import (
	"fmt"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
	"github.com/emilholmegaard/doc-architect/parser/csharp"
	"github.com/emilholmegaard/doc-architect/parser/golang"
	"github.com/emilholmegaard/doc-architect/parser/java"
	"github.com/emilholmegaard/doc-architect/parser/javascript"
	"github.com/emilholmegaard/doc-architect/parser/python"
	"github.com/emilholmegaard/doc-architect/parser/ruby"
)

// Adapter parses file evidence for one language.
type Adapter interface {
	// Language returns the tag this adapter handles.
	Language() ast.LanguageTag

	// Available reports whether the grammar parser is usable. When false the
	// adapter still parses via its regex salvage path.
	Available() bool

	// Parse produces the AST facade value for the evidence. Structural
	// problems the salvage path can tolerate degrade the result instead of
	// failing; an error means not even minimal structure could be recovered.
	Parse(ev *model.FileEvidence) (*ast.File, error)
}

// Registry maps language tags to adapters. It is built once at startup and
// read-only afterwards.
type Registry struct {
	adapters map[ast.LanguageTag]Adapter
	order    []ast.LanguageTag
}

// NewRegistry builds a registry from the given adapters. Registering two
// adapters for one tag is a programming error.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{adapters: make(map[ast.LanguageTag]Adapter, len(adapters))}
	for _, a := range adapters {
		tag := a.Language()
		if _, dup := r.adapters[tag]; dup {
			return nil, fmt.Errorf("duplicate parser adapter for language %q", tag)
		}
		r.adapters[tag] = a
		r.order = append(r.order, tag)
	}
	return r, nil
}

// For returns the adapter for a language tag, or nil when none is
// registered.
func (r *Registry) For(tag ast.LanguageTag) Adapter {
	return r.adapters[tag]
}

// Languages returns the registered tags in registration order.
func (r *Registry) Languages() []ast.LanguageTag {
	return r.order
}

// DefaultRegistry wires every built-in adapter.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		java.New(ast.Java),
		java.New(ast.Kotlin),
		python.New(),
		csharp.New(),
		golang.New(),
		ruby.New(),
		javascript.New(ast.JavaScript),
		javascript.New(ast.TypeScript),
	)
	if err != nil {
		// Static adapter set; duplicate registration cannot happen here.
		panic(err)
	}
	return r
}
