package model

import "github.com/emilholmegaard/doc-architect/ast"

// Kind classifies a finding.
type Kind string

const (
	KindComponent       Kind = "component"
	KindEndpoint        Kind = "endpoint"
	KindDependency      Kind = "dependency"
	KindMessageProducer Kind = "message-producer"
	KindMessageConsumer Kind = "message-consumer"
	KindDataStore       Kind = "data-store"
	KindSchema          Kind = "schema"
	KindRelation        Kind = "relation"
)

// Confidence expresses how the evidence behind a finding was obtained.
type Confidence string

const (
	// ConfidenceHigh marks findings derived from a grammar-parsed AST.
	ConfidenceHigh Confidence = "high"
	// ConfidenceLow marks findings derived from text heuristics after the
	// grammar parser fell back.
	ConfidenceLow Confidence = "low"
	// ConfidenceInferred marks nodes the merger synthesized to satisfy a
	// cross-reference, with no direct declaration evidence.
	ConfidenceInferred Confidence = "inferred"
)

// RelationKind classifies an edge in the architecture model.
type RelationKind string

const (
	RelationCall      RelationKind = "sync-call"
	RelationPublishes RelationKind = "publishes"
	RelationConsumes  RelationKind = "consumes"
	RelationSchemaRef RelationKind = "schema-ref"
	RelationPersists  RelationKind = "persists"
	RelationDependsOn RelationKind = "depends-on"
)

// Finding is the single evidentiary record a scanner emits about one
// construct in one file. Payload fields are kind-specific; unused fields
// stay zero.
type Finding struct {
	Kind        Kind
	Scanner     string
	Path        string
	Line        int
	Confidence  Confidence
	Fingerprint Fingerprint

	// Name is the canonical construct name: component, table, schema, task
	// or queue name depending on Kind.
	Name     string
	Language ast.LanguageTag

	// Endpoint payload.
	Verb      string
	Route     string
	Handler   string
	Component Fingerprint

	// Messaging payload: topic or queue name.
	Topic string

	// Relation and dependency payload. Source defaults to the containing
	// component; Target names the other end.
	Source   Fingerprint
	Target   Fingerprint
	Relation RelationKind

	// Detail carries free-form evidence such as a dependency coordinate or
	// a schema type list.
	Detail string
}

// Provenance records where a finding came from, carried onto merged nodes
// and edges for auditability.
type Provenance struct {
	Scanner string
	Path    string
	Line    int
}

// Provenance derives the provenance record for this finding.
func (f Finding) Provenance() Provenance {
	return Provenance{Scanner: f.Scanner, Path: f.Path, Line: f.Line}
}
