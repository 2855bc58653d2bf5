package model

import (
	"sort"

	"github.com/emilholmegaard/doc-architect/ast"
)

// Node is a component-like element of the architecture model: a service,
// module, data store, message broker queue or schema.
type Node struct {
	ID          string
	Fingerprint Fingerprint
	Kind        Kind
	Name        string
	Language    ast.LanguageTag
	Confidence  Confidence
	Endpoints   []Endpoint
	Provenance  []Provenance
}

// Endpoint is an HTTP endpoint attached to a component node.
type Endpoint struct {
	Fingerprint Fingerprint
	Verb        string
	Path        string
	Handler     string
	Provenance  []Provenance
}

// Edge is a directed relation between two nodes, referenced by fingerprint.
type Edge struct {
	Src        Fingerprint
	Dst        Fingerprint
	Kind       RelationKind
	Provenance []Provenance
}

// Architecture is the merged, immutable output of a scan. Nodes iterate in
// fingerprint order and edges in (src, dst, kind) order.
type Architecture struct {
	nodes []*Node
	edges []*Edge
	index map[Fingerprint]*Node
}

// NewArchitecture builds an architecture model from merged nodes and edges,
// establishing the stable iteration order.
func NewArchitecture(nodes []*Node, edges []*Edge) *Architecture {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Fingerprint < nodes[j].Fingerprint })
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Src != edges[j].Src {
			return edges[i].Src < edges[j].Src
		}
		if edges[i].Dst != edges[j].Dst {
			return edges[i].Dst < edges[j].Dst
		}
		return edges[i].Kind < edges[j].Kind
	})
	index := make(map[Fingerprint]*Node, len(nodes))
	for _, n := range nodes {
		index[n.Fingerprint] = n
	}
	return &Architecture{nodes: nodes, edges: edges, index: index}
}

// Nodes returns all nodes in fingerprint order. The slice is shared;
// callers must not mutate it.
func (a *Architecture) Nodes() []*Node { return a.nodes }

// Edges returns all edges in (src, dst, kind) order.
func (a *Architecture) Edges() []*Edge { return a.edges }

// Node looks a node up by fingerprint.
func (a *Architecture) Node(fp Fingerprint) *Node { return a.index[fp] }

// Equal reports whether two models are identical under the stable node and
// edge ordering, ignoring provenance.
func (a *Architecture) Equal(other *Architecture) bool {
	if len(a.nodes) != len(other.nodes) || len(a.edges) != len(other.edges) {
		return false
	}
	for i, n := range a.nodes {
		o := other.nodes[i]
		if n.Fingerprint != o.Fingerprint || n.Kind != o.Kind || n.Name != o.Name ||
			n.Language != o.Language || len(n.Endpoints) != len(o.Endpoints) {
			return false
		}
		for j, ep := range n.Endpoints {
			if ep.Fingerprint != o.Endpoints[j].Fingerprint {
				return false
			}
		}
	}
	for i, e := range a.edges {
		o := other.edges[i]
		if e.Src != o.Src || e.Dst != o.Dst || e.Kind != o.Kind {
			return false
		}
	}
	return true
}
