package ruby

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/emilholmegaard/doc-architect/ast"
	"github.com/emilholmegaard/doc-architect/model"
)

// routeKeywords are the routes-DSL calls captured into route blocks.
var routeKeywords = map[string]bool{
	"namespace": true,
	"scope":     true,
	"resources": true,
	"resource":  true,
	"get":       true,
	"post":      true,
	"put":       true,
	"patch":     true,
	"delete":    true,
	"root":      true,
	"match":     true,
}

// extractRouteBlocks finds the routes.draw block and converts its DSL calls
// into nested route blocks. Files without a draw block yield none.
func extractRouteBlocks(root *sitter.Node, src []byte, ev *model.FileEvidence) []*ast.RouteBlock {
	var drawBody *sitter.Node
	var find func(n *sitter.Node)
	find = func(n *sitter.Node) {
		if drawBody != nil {
			return
		}
		if n.Type() == "call" {
			if method := n.ChildByFieldName("method"); method != nil && method.Content(src) == "draw" {
				if block := n.ChildByFieldName("block"); block != nil {
					drawBody = block
					return
				}
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			find(n.NamedChild(i))
		}
	}
	find(root)
	if drawBody == nil {
		return nil
	}
	return collectRouteCalls(drawBody, src, ev)
}

// collectRouteCalls converts the direct DSL calls of a block body into route
// blocks, recursing into the do block of any routing DSL call.
func collectRouteCalls(body *sitter.Node, src []byte, ev *model.FileEvidence) []*ast.RouteBlock {
	var blocks []*ast.RouteBlock
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		if n.Type() == "call" {
			if block := parseRouteCall(n, src, ev); block != nil {
				blocks = append(blocks, block)
				return
			}
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			visit(n.NamedChild(i))
		}
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		visit(body.NamedChild(i))
	}
	return blocks
}

// parseRouteCall converts one DSL call into a route block, or nil when the
// call is not part of the routing vocabulary.
func parseRouteCall(n *sitter.Node, src []byte, ev *model.FileEvidence) *ast.RouteBlock {
	methodNode := n.ChildByFieldName("method")
	if methodNode == nil {
		return nil
	}
	keyword := methodNode.Content(src)
	if !routeKeywords[keyword] || n.ChildByFieldName("receiver") != nil {
		return nil
	}
	args := ""
	if arguments := n.ChildByFieldName("arguments"); arguments != nil {
		args = strings.Trim(arguments.Content(src), "()")
	}
	block := &ast.RouteBlock{
		Locatable: locate(n, ev),
		Keyword:   keyword,
		Arg:       CleanRouteArg(args),
		Extra:     strings.TrimSpace(args),
	}
	if inner := n.ChildByFieldName("block"); inner != nil {
		block.Children = collectRouteCalls(inner, src, ev)
	}
	return block
}

// CleanRouteArg extracts the primary argument of a DSL call: the first
// symbol or string literal, with the symbol colon and quotes stripped.
func CleanRouteArg(args string) string {
	args = strings.TrimSpace(args)
	if args == "" {
		return ""
	}
	first := args
	if comma := strings.Index(args, ","); comma >= 0 {
		first = args[:comma]
	}
	first = strings.TrimSpace(first)
	switch {
	case strings.HasPrefix(first, ":"):
		return strings.TrimPrefix(first, ":")
	case strings.HasPrefix(first, "'"), strings.HasPrefix(first, `"`):
		return strings.Trim(first, `'"`)
	}
	return first
}
