package graphstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/oblabs/memlifecycle/pkg/errs"
)

// InMemory is the mandatory reference Store implementation: a mutex-guarded
// map of nodes plus an adjacency index of outgoing relationships, in the
// same "map + sync.RWMutex next to the state it protects" shape the teacher
// uses for its vector client.
type InMemory struct {
	mu    sync.RWMutex
	nodes map[string]Node
	rels  map[string]Relationship
	// out maps a source node id to its outgoing relationship ids.
	out map[string][]string
	// relSeq is the last CreatedAt value handed to a relationship.
	relSeq int64
}

// NewInMemory creates an empty in-memory graph store.
func NewInMemory() *InMemory {
	return &InMemory{
		nodes: make(map[string]Node),
		rels:  make(map[string]Relationship),
		out:   make(map[string][]string),
	}
}

func (s *InMemory) CreateNode(ctx context.Context, labels []string, props map[string]interface{}) (Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	n := Node{ID: id, Labels: append([]string(nil), labels...), Properties: cloneProps(props)}
	s.nodes[id] = n
	return n, nil
}

func (s *InMemory) CreateRelationship(ctx context.Context, srcID, dstID string, relType RelationshipType, props map[string]interface{}) (Relationship, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[srcID]; !ok {
		return Relationship{}, errs.New("graphstore.CreateRelationship", errs.KindNotFound, errs.ErrNotFound)
	}
	if _, ok := s.nodes[dstID]; !ok {
		return Relationship{}, errs.New("graphstore.CreateRelationship", errs.KindNotFound, errs.ErrNotFound)
	}

	s.relSeq++
	r := Relationship{
		ID:         uuid.NewString(),
		SourceID:   srcID,
		TargetID:   dstID,
		Type:       relType,
		Properties: cloneProps(props),
		CreatedAt:  s.relSeq, // monotonically increasing insertion order stand-in
	}
	s.rels[r.ID] = r
	s.out[srcID] = append(s.out[srcID], r.ID)
	return r, nil
}

func (s *InMemory) GetNode(ctx context.Context, id string) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return Node{}, errs.New("graphstore.GetNode", errs.KindNotFound, errs.ErrNotFound)
	}
	return n, nil
}

func (s *InMemory) FindNodesByLabel(ctx context.Context, label string, filter PropFilter) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Node
	for _, n := range s.nodes {
		if !hasLabel(n, label) {
			continue
		}
		if !propsMatch(n.Properties, filter) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) FindConnected(ctx context.Context, nodeID string, relType RelationshipType, maxDepth int) ([]Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.nodes[nodeID]; !ok {
		return nil, errs.New("graphstore.FindConnected", errs.KindNotFound, errs.ErrNotFound)
	}
	if maxDepth <= 0 {
		return nil, nil
	}

	visited := map[string]bool{nodeID: true}
	type frontierEntry struct {
		id    string
		depth int
	}
	frontier := []frontierEntry{{id: nodeID, depth: 0}}
	var result []Node

	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		if cur.depth >= maxDepth {
			continue
		}

		relIDs := append([]string(nil), s.out[cur.id]...)
		sort.Slice(relIDs, func(i, j int) bool { return s.rels[relIDs[i]].CreatedAt < s.rels[relIDs[j]].CreatedAt })

		for _, rid := range relIDs {
			r := s.rels[rid]
			if relType != "" && r.Type != relType {
				continue
			}
			if visited[r.TargetID] {
				continue
			}
			visited[r.TargetID] = true
			if n, ok := s.nodes[r.TargetID]; ok {
				result = append(result, n)
			}
			frontier = append(frontier, frontierEntry{id: r.TargetID, depth: cur.depth + 1})
		}
	}

	return result, nil
}

func (s *InMemory) UpdateNode(ctx context.Context, id string, props map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return errs.New("graphstore.UpdateNode", errs.KindNotFound, errs.ErrNotFound)
	}
	for k, v := range props {
		n.Properties[k] = v
	}
	s.nodes[id] = n
	return nil
}

func (s *InMemory) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return nil
	}
	delete(s.nodes, id)
	delete(s.out, id)

	for rid, r := range s.rels {
		if r.SourceID == id || r.TargetID == id {
			delete(s.rels, rid)
		}
	}
	for src, relIDs := range s.out {
		kept := relIDs[:0]
		for _, rid := range relIDs {
			if _, ok := s.rels[rid]; ok {
				kept = append(kept, rid)
			}
		}
		s.out[src] = kept
	}
	return nil
}

func (s *InMemory) DeleteRelationship(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rels[id]
	if !ok {
		return nil
	}
	delete(s.rels, id)
	relIDs := s.out[r.SourceID]
	for i, rid := range relIDs {
		if rid == id {
			s.out[r.SourceID] = append(relIDs[:i], relIDs[i+1:]...)
			break
		}
	}
	return nil
}

func (s *InMemory) Close() error {
	return nil
}

func hasLabel(n Node, label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

func propsMatch(props map[string]interface{}, filter PropFilter) bool {
	for k, v := range filter {
		if props[k] != v {
			return false
		}
	}
	return true
}

func cloneProps(props map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
