// Package merge canonicalizes scanner findings into the immutable
// architecture model: deduplicating nodes by fingerprint, attaching
// endpoints to components, pairing message producers with consumers and
// resolving explicit relations.
package merge

import (
	"sort"

	"github.com/emilholmegaard/doc-architect/model"
)

// ScannerOrder resolves a scanner ID to its registration index, used for
// deterministic tie-breaking. The scanner registry satisfies it.
type ScannerOrder interface {
	Order(id string) int
}

// Merger builds architecture models from finding sets.
type Merger struct {
	order ScannerOrder
}

// New creates a merger tie-breaking on the given registration order.
func New(order ScannerOrder) *Merger {
	return &Merger{order: order}
}

// Merge canonicalizes a finding set. The input is sorted by (path, line,
// scanner) first, so node identity selection does not depend on worker
// interleaving; merging the same set twice yields an equal model.
func (m *Merger) Merge(findings []model.Finding) *model.Architecture {
	sorted := make([]model.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return m.order.Order(a.Scanner) < m.order.Order(b.Scanner)
	})

	s := &state{
		merger: m,
		nodes:  map[model.Fingerprint]*model.Node{},
		chosen: map[model.Fingerprint]model.Finding{},
		edges:  map[edgeKey]*model.Edge{},
	}

	// Node-producing findings first so cross-references resolve against
	// declared nodes before anything is synthesized.
	for _, f := range sorted {
		switch f.Kind {
		case model.KindComponent, model.KindDataStore, model.KindSchema, model.KindMessageConsumer:
			s.addNode(f)
		}
	}
	var consumers []model.Finding
	for _, f := range sorted {
		switch f.Kind {
		case model.KindEndpoint:
			s.attachEndpoint(f)
		case model.KindDependency:
			s.addDependency(f)
		case model.KindRelation:
			s.addRelation(f)
		case model.KindMessageConsumer:
			consumers = append(consumers, f)
		}
	}
	for _, f := range sorted {
		if f.Kind == model.KindMessageProducer {
			s.pairProducer(f, consumers)
		}
	}

	nodes := make([]*model.Node, 0, len(s.nodes))
	for _, n := range s.nodes {
		nodes = append(nodes, n)
	}
	edges := make([]*model.Edge, 0, len(s.edges))
	for _, e := range s.edges {
		edges = append(edges, e)
	}
	return model.NewArchitecture(nodes, edges)
}

type edgeKey struct {
	src, dst model.Fingerprint
	kind     model.RelationKind
}

type state struct {
	merger *Merger
	nodes  map[model.Fingerprint]*model.Node
	// chosen remembers the finding that currently defines each node's
	// attributes, for confidence/registration-order tie-breaking.
	chosen map[model.Fingerprint]model.Finding
	edges  map[edgeKey]*model.Edge
}

// addNode groups findings by fingerprint: the first defines identity, later
// ones contribute provenance. A higher-confidence finding may take over the
// node's non-identity attributes; ties keep the earlier-registered scanner.
func (s *state) addNode(f model.Finding) {
	if node, ok := s.nodes[f.Fingerprint]; ok {
		node.Provenance = append(node.Provenance, f.Provenance())
		if s.wins(f, s.chosen[f.Fingerprint]) {
			node.Name = f.Name
			node.Language = f.Language
			node.Confidence = f.Confidence
			s.chosen[f.Fingerprint] = f
		}
		return
	}
	s.nodes[f.Fingerprint] = &model.Node{
		ID:          model.ID(f.Fingerprint),
		Fingerprint: f.Fingerprint,
		Kind:        f.Kind,
		Name:        f.Name,
		Language:    f.Language,
		Confidence:  f.Confidence,
		Provenance:  []model.Provenance{f.Provenance()},
	}
	s.chosen[f.Fingerprint] = f
}

// wins reports whether challenger should replace incumbent as the defining
// finding: higher confidence first, then earlier scanner registration.
func (s *state) wins(challenger, incumbent model.Finding) bool {
	if challenger.Confidence != incumbent.Confidence {
		return challenger.Confidence == model.ConfidenceHigh ||
			incumbent.Confidence == model.ConfidenceInferred
	}
	return s.merger.order.Order(challenger.Scanner) < s.merger.order.Order(incumbent.Scanner)
}

// ensureNode resolves a fingerprint to an existing node or synthesizes an
// inferred one from the fingerprint tuple.
func (s *state) ensureNode(fp model.Fingerprint, from model.Finding) *model.Node {
	if fp == "" {
		return nil
	}
	if node, ok := s.nodes[fp]; ok {
		return node
	}
	kind, name, language, ok := model.ParseFingerprint(fp)
	if !ok {
		return nil
	}
	node := &model.Node{
		ID:          model.ID(fp),
		Fingerprint: fp,
		Kind:        kind,
		Name:        name,
		Language:    language,
		Confidence:  model.ConfidenceInferred,
		Provenance:  []model.Provenance{from.Provenance()},
	}
	s.nodes[fp] = node
	s.chosen[fp] = model.Finding{
		Kind: kind, Scanner: from.Scanner, Confidence: model.ConfidenceInferred,
		Name: name, Language: language,
	}
	return node
}

// attachEndpoint adds an endpoint to its containing component, synthesizing
// an inferred component when no declared one matches. Conflicting endpoint
// attributes resolve by confidence, then scanner registration order.
func (s *state) attachEndpoint(f model.Finding) {
	node := s.ensureNode(f.Component, f)
	if node == nil {
		return
	}
	for i := range node.Endpoints {
		if node.Endpoints[i].Fingerprint == f.Fingerprint {
			node.Endpoints[i].Provenance = append(node.Endpoints[i].Provenance, f.Provenance())
			return
		}
	}
	node.Endpoints = append(node.Endpoints, model.Endpoint{
		Fingerprint: f.Fingerprint,
		Verb:        f.Verb,
		Path:        f.Route,
		Handler:     f.Handler,
		Provenance:  []model.Provenance{f.Provenance()},
	})
	sort.Slice(node.Endpoints, func(i, j int) bool {
		return node.Endpoints[i].Fingerprint < node.Endpoints[j].Fingerprint
	})
}

// addDependency produces a depends-on edge, synthesizing the target and, if
// named, the source.
func (s *state) addDependency(f model.Finding) {
	target := s.ensureNode(f.Target, f)
	if target == nil {
		return
	}
	if f.Source == "" {
		return
	}
	source := s.ensureNode(f.Source, f)
	if source == nil {
		return
	}
	kind := f.Relation
	if kind == "" {
		kind = model.RelationDependsOn
	}
	s.addEdge(source.Fingerprint, target.Fingerprint, kind, f)
}

// addRelation produces an explicit relation edge between two fingerprints.
func (s *state) addRelation(f model.Finding) {
	source := s.ensureNode(f.Source, f)
	target := s.ensureNode(f.Target, f)
	if source == nil || target == nil {
		return
	}
	kind := f.Relation
	if kind == "" {
		kind = model.RelationDependsOn
	}
	s.addEdge(source.Fingerprint, target.Fingerprint, kind, f)
}

// pairProducer matches a producer against consumers with the same topic or
// queue name and emits publishes edges.
func (s *state) pairProducer(f model.Finding, consumers []model.Finding) {
	source := s.ensureNode(f.Source, f)
	if source == nil {
		return
	}
	for _, consumer := range consumers {
		if consumer.Topic != f.Topic {
			continue
		}
		s.addEdge(source.Fingerprint, consumer.Fingerprint, model.RelationPublishes, f)
	}
}

func (s *state) addEdge(src, dst model.Fingerprint, kind model.RelationKind, f model.Finding) {
	key := edgeKey{src: src, dst: dst, kind: kind}
	if edge, ok := s.edges[key]; ok {
		edge.Provenance = append(edge.Provenance, f.Provenance())
		return
	}
	s.edges[key] = &model.Edge{
		Src:        src,
		Dst:        dst,
		Kind:       kind,
		Provenance: []model.Provenance{f.Provenance()},
	}
}
