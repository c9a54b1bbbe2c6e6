package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/oblabs/memlifecycle/pkg/errs"
)

// InMemory is the mandatory reference Store: a ConcurrentMap<id, Record>
// plus a user_id -> set<id> reverse index, matching spec.md §4.3's
// required shape. Grounded on the teacher's sqlite client's
// cosineSimilarity/sortByScore pattern (pkg/storage/sqlite/client.go) for
// the ranking logic, and on the mutex-guarded map idiom the teacher uses
// throughout pkg/core/memory.go for the concurrency model.
type InMemory struct {
	mu      sync.RWMutex
	records map[string]Record
	byUser  map[string]map[string]struct{}
}

// NewInMemory creates an empty in-memory vector store.
func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[string]Record),
		byUser:  make(map[string]map[string]struct{}),
	}
}

func (s *InMemory) Insert(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return errs.New("vectorstore.Insert", errs.KindInvalidInput, errs.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return errs.New("vectorstore.Insert", errs.KindInvalidInput, errs.ErrInvalidInput)
	}
	s.insertLocked(rec)
	return nil
}

func (s *InMemory) insertLocked(rec Record) {
	s.records[rec.ID] = rec
	set, ok := s.byUser[rec.Metadata.UserID]
	if !ok {
		set = make(map[string]struct{})
		s.byUser[rec.Metadata.UserID] = set
	}
	set[rec.ID] = struct{}{}
}

func (s *InMemory) BatchInsert(ctx context.Context, recs []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range recs {
		if r.ID == "" {
			return errs.New("vectorstore.BatchInsert", errs.KindInvalidInput, errs.ErrInvalidInput)
		}
		if _, exists := s.records[r.ID]; exists {
			return errs.New("vectorstore.BatchInsert", errs.KindInvalidInput, errs.ErrInvalidInput)
		}
	}
	for _, r := range recs {
		s.insertLocked(r)
	}
	return nil
}

func (s *InMemory) Update(ctx context.Context, id string, vector []float32, meta Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.records[id]
	if !ok {
		return errs.New("vectorstore.Update", errs.KindNotFound, errs.ErrNotFound)
	}

	if old.Metadata.UserID != meta.UserID {
		if set, ok := s.byUser[old.Metadata.UserID]; ok {
			delete(set, id)
		}
		set, ok := s.byUser[meta.UserID]
		if !ok {
			set = make(map[string]struct{})
			s.byUser[meta.UserID] = set
		}
		set[id] = struct{}{}
	}

	s.records[id] = Record{ID: id, Vector: vector, Metadata: meta}
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	delete(s.records, id)
	if set, ok := s.byUser[rec.Metadata.UserID]; ok {
		delete(set, id)
	}
	return nil
}

func (s *InMemory) DeleteByFilter(ctx context.Context, filter Filter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, rec := range s.records {
		if !matches(rec.Metadata, filter) {
			continue
		}
		delete(s.records, id)
		if set, ok := s.byUser[rec.Metadata.UserID]; ok {
			delete(set, id)
		}
		n++
	}
	return n, nil
}

func (s *InMemory) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, errs.New("vectorstore.Get", errs.KindNotFound, errs.ErrNotFound)
	}
	return rec, nil
}

func (s *InMemory) Search(ctx context.Context, query []float32, topK int, filter Filter) ([]Hit, error) {
	if topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids map[string]struct{}
	if filter.MatchUserID {
		ids = s.byUser[filter.UserID]
	}

	hits := make([]Hit, 0, len(ids))
	consider := func(id string) {
		rec, ok := s.records[id]
		if !ok || !matches(rec.Metadata, filter) {
			return
		}
		hits = append(hits, Hit{
			ID:       id,
			Score:    cosineSimilarity(query, rec.Vector),
			Metadata: rec.Metadata,
		})
	}

	if ids != nil {
		for id := range ids {
			consider(id)
		}
	} else {
		for id := range s.records {
			consider(id)
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		if hits[i].Metadata.CreatedAt != hits[j].Metadata.CreatedAt {
			return hits[i].Metadata.CreatedAt > hits[j].Metadata.CreatedAt
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (s *InMemory) Close() error {
	return nil
}

// matches reports whether meta satisfies every asserted field of filter.
func matches(meta Metadata, filter Filter) bool {
	if filter.MatchUserID && meta.UserID != filter.UserID {
		return false
	}
	if filter.MatchCategory && meta.Category != filter.Category {
		return false
	}
	if filter.MatchSuperseded && meta.Superseded != filter.Superseded {
		return false
	}
	return true
}

// cosineSimilarity mirrors the teacher's pkg/storage/sqlite/client.go
// cosineSimilarity, generalized to float32 and defined as 0 (not NaN) when
// either vector has zero norm, per spec.md §8's divide-by-zero boundary case.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
