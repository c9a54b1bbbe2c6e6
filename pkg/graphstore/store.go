// Package graphstore defines the graph index contract (C4): labelled nodes
// plus typed directed relationships with properties, and bounded BFS
// traversal. No teacher or pack repo carries a graph-store client (a broad
// sweep of the retrieved corpus found no neo4j/dgraph/gonum-graph import
// anywhere), matching spec.md's own framing that only the abstract
// interface matters; this package is therefore new code, grounded on the
// mutex-guarded map concurrency idiom the teacher applies throughout
// pkg/core/memory.go and pkg/storage/sqlite/client.go rather than on any
// single teacher file.
package graphstore

import "context"

// RelationshipType is a closed-ish set of edge kinds the engine writes.
// Spec.md §3 fixes three: RELATED_TO, SUPERSEDES, DERIVED_FROM.
type RelationshipType string

const (
	RelatedTo   RelationshipType = "RELATED_TO"
	Supersedes  RelationshipType = "SUPERSEDES"
	DerivedFrom RelationshipType = "DERIVED_FROM"
	Contradicts RelationshipType = "CONTRADICTS"
)

// Node is a labelled graph node. One memory node always carries the
// "Memory" label plus a label for its category (spec.md §3).
type Node struct {
	ID         string
	Labels     []string
	Properties map[string]interface{}
}

// Relationship is a directed, typed edge between two nodes.
type Relationship struct {
	ID         string
	SourceID   string
	TargetID   string
	Type       RelationshipType
	Properties map[string]interface{}
	CreatedAt  int64 // creation order (larger is newer); drives find_connected's deterministic visit order
}

// PropFilter is an equality conjunction over node properties used by
// FindNodesByLabel. A nil or empty filter matches every node with the label.
type PropFilter map[string]interface{}

// Store is the graph index contract (C4).
type Store interface {
	CreateNode(ctx context.Context, labels []string, props map[string]interface{}) (Node, error)
	CreateRelationship(ctx context.Context, srcID, dstID string, relType RelationshipType, props map[string]interface{}) (Relationship, error)
	GetNode(ctx context.Context, id string) (Node, error)
	FindNodesByLabel(ctx context.Context, label string, filter PropFilter) ([]Node, error)

	// FindConnected performs bounded BFS from nodeID, following directed
	// relationships of relType (empty relType means any type), up to
	// maxDepth hops. Visit order is deterministic: relationships out of a
	// given node are followed in ascending CreatedAt order, and a
	// visited-set prevents revisiting a node via a cycle.
	FindConnected(ctx context.Context, nodeID string, relType RelationshipType, maxDepth int) ([]Node, error)

	UpdateNode(ctx context.Context, id string, props map[string]interface{}) error

	// DeleteNode removes the node and every relationship incident to it (as
	// source or target).
	DeleteNode(ctx context.Context, id string) error

	DeleteRelationship(ctx context.Context, id string) error

	Close() error
}
