package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/oblabs/memlifecycle/pkg/classifier"
	"github.com/oblabs/memlifecycle/pkg/conflict"
	"github.com/oblabs/memlifecycle/pkg/embedder"
	"github.com/oblabs/memlifecycle/pkg/errs"
	"github.com/oblabs/memlifecycle/pkg/graphstore"
	"github.com/oblabs/memlifecycle/pkg/llm"
	"github.com/oblabs/memlifecycle/pkg/llmjudge"
	"github.com/oblabs/memlifecycle/pkg/lock"
	"github.com/oblabs/memlifecycle/pkg/merge"
	"github.com/oblabs/memlifecycle/pkg/retry"
	"github.com/oblabs/memlifecycle/pkg/scorer"
	"github.com/oblabs/memlifecycle/pkg/vectorstore"
)

// defaultSearchLimit, defaultConflictTopK mirror spec.md §4.9/§4.7 defaults.
const (
	defaultConflictTopK         = conflict.DefaultTopK
	defaultSimilarityThreshold  = conflict.DefaultSimilarityThreshold
	defaultSearchLimit          = 10
	defaultLockTimeout          = 60 * time.Second
	defaultEmbedTimeout         = 10 * time.Second
	defaultLLMTimeout           = 30 * time.Second
	defaultStoreTimeout         = 5 * time.Second
)

// Engine is the memory lifecycle engine (C9). Per spec.md §9, it takes
// exactly four handles at construction (embedding, LLM, vector store,
// graph store) and owns nothing else; everything downstream of those four
// (classifier, scorer, conflict detector, merge strategy) is derived
// internally since they are pure functions of the LLM handle plus fixed
// policy, not independent resources the caller injects.
type Engine struct {
	embed embedder.Provider
	llmP  llm.Provider

	vectors vectorstore.Store
	graph   graphstore.Store

	judge      *llmjudge.Judge
	classifier *classifier.Classifier
	scorer     *scorer.Scorer
	detector   *conflict.Detector
	strategy   *merge.Strategy

	locks *lock.Keyed
	ids   *snowflake.Node

	// cache holds the full Memory record (content, properties, timestamps)
	// keyed by id. VectorStore/GraphStore only carry the slim projections
	// each needs for search/traversal; the engine is the source of truth
	// for the rest, matching spec.md §4.9's "load memory from an in-engine
	// cache or reconstruct from vector metadata".
	cacheMu sync.RWMutex
	cache   map[string]Memory

	// nodeOf maps a memory id to its graph node id.
	nodeOf map[string]string
}

// New constructs an Engine from its four required handles.
func New(embed embedder.Provider, llmP llm.Provider, vectors vectorstore.Store, graph graphstore.Store) (*Engine, error) {
	if embed == nil || vectors == nil || graph == nil {
		return nil, errs.New("engine.New", errs.KindFatal, errs.ErrFatal)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, errs.New("engine.New", errs.KindFatal, err)
	}

	judge := llmjudge.New(llmP)

	return &Engine{
		embed:      embed,
		llmP:       llmP,
		vectors:    vectors,
		graph:      graph,
		judge:      judge,
		classifier: classifier.New(judge),
		scorer:     scorer.New(judge),
		detector:   conflict.New(judge),
		strategy:   merge.New(judge),
		locks:      lock.New(),
		ids:        node,
		cache:      make(map[string]Memory),
		nodeOf:     make(map[string]string),
	}, nil
}

// Add implements spec.md §4.9's add operation.
func (e *Engine) Add(ctx context.Context, text, userID string, properties map[string]Scalar) (string, error) {
	if userID == "" {
		return "", errs.New("engine.Add", errs.KindInvalidInput, errs.ErrInvalidInput)
	}
	if err := validateContent(text); err != nil {
		return "", err
	}

	release, err := e.locks.Acquire(ctx, userID, defaultLockTimeout)
	if err != nil {
		return "", err
	}
	defer release()

	vec, err := e.embedWithRetry(ctx, text)
	if err != nil {
		return "", err
	}

	cat, confidence, source := e.classifier.Classify(ctx, text)
	importance := e.scorer.Score(ctx, cat, confidence, source == classifier.SourceLLM)

	hits, err := e.vectors.Search(ctx, vec, defaultConflictTopK, vectorstore.ForUser(userID))
	if err != nil {
		return "", errs.New("engine.Add", errs.KindProviderUnavailable, err)
	}

	candidates := make([]conflict.Candidate, 0, len(hits))
	for _, h := range hits {
		if h.Score < defaultSimilarityThreshold {
			continue
		}
		m, ok := e.getCached(h.ID)
		if !ok {
			continue
		}
		if normalizedHash(m.Content) == normalizedHash(text) {
			// Merge idempotence: identical content is NONE, no new memory.
			return m.ID, nil
		}
		candidates = append(candidates, conflict.Candidate{
			ID:         m.ID,
			Content:    m.Content,
			Category:   string(m.Category),
			Importance: m.Importance,
			Similarity: h.Score,
		})
	}

	verdicts := e.detector.Detect(ctx, conflict.NewMemory{Content: text, Category: string(cat)}, candidates)
	action := e.strategy.Decide(ctx, text, verdicts)

	now := nowNanos()
	newID := e.ids.Generate().String()

	newMem := Memory{
		ID:             newID,
		UserID:         userID,
		Content:        action.NewContent,
		Embedding:      vec,
		Category:       Category(cat),
		Importance:     importance,
		CreatedAt:      now,
		UpdatedAt:      now,
		LastAccessedAt: now,
		Properties:     properties,
	}

	switch action.Kind {
	case merge.Replace:
		if err := e.writeTwoPhase(ctx, newMem, nil, ""); err != nil {
			return "", err
		}
		if err := e.supersede(ctx, action.Target, newID); err != nil {
			return "", err
		}
		return newID, nil

	case merge.Merge:
		if err := e.writeTwoPhase(ctx, newMem, []string{action.Target}, graphstore.DerivedFrom); err != nil {
			return "", err
		}
		if err := e.supersede(ctx, action.Target, newID); err != nil {
			return "", err
		}
		return newID, nil

	case merge.KeepBothLink:
		if err := e.writeTwoPhase(ctx, newMem, []string{action.Target}, graphstore.Contradicts); err != nil {
			return "", err
		}
		return newID, nil

	default: // InsertNew
		if err := e.writeTwoPhase(ctx, newMem, action.ComplementaryTargets, graphstore.RelatedTo); err != nil {
			return "", err
		}
		return newID, nil
	}
}

// writeTwoPhase implements spec.md §4.9 step 6: vector store write then
// graph store write, compensating the vector write on graph failure.
func (e *Engine) writeTwoPhase(ctx context.Context, m Memory, linkTargets []string, relType graphstore.RelationshipType) error {
	rec := vectorstore.Record{
		ID:     m.ID,
		Vector: m.Embedding,
		Metadata: vectorstore.Metadata{
			UserID:     m.UserID,
			Category:   string(m.Category),
			Importance: m.Importance,
			CreatedAt:  m.CreatedAt,
			Superseded: false,
		},
	}
	if err := e.vectors.Insert(ctx, rec); err != nil {
		return errs.New("engine.writeTwoPhase", errs.KindProviderUnavailable, err)
	}

	node, err := e.graph.CreateNode(ctx, []string{"Memory", string(m.Category)}, map[string]interface{}{
		"memory_id": m.ID,
		"user_id":   m.UserID,
	})
	if err != nil {
		_ = e.vectors.Delete(ctx, m.ID)
		return errs.New("engine.writeTwoPhase", errs.KindStoreInconsistency, err)
	}

	for _, targetID := range linkTargets {
		targetNode, ok := e.nodeIDFor(targetID)
		if !ok {
			continue
		}
		if _, err := e.graph.CreateRelationship(ctx, node.ID, targetNode, relType, nil); err != nil {
			// Relationship failures don't unwind the two-phase write itself;
			// the memory and its node are already committed. Surfaced as
			// StoreInconsistency per spec.md §7 rather than rolled back.
			e.setCached(m)
			e.setNodeID(m.ID, node.ID)
			return errs.New("engine.writeTwoPhase", errs.KindStoreInconsistency, err)
		}
	}

	e.setCached(m)
	e.setNodeID(m.ID, node.ID)
	return nil
}

// supersede marks an existing memory retired by newID, per spec.md §4.8's
// post-conditions for REPLACE/MERGE.
func (e *Engine) supersede(ctx context.Context, oldID, newID string) error {
	m, ok := e.getCached(oldID)
	if !ok {
		return nil
	}
	m.SupersededBy = newID
	e.setCached(m)

	if rec, getErr := e.vectors.Get(ctx, oldID); getErr == nil {
		rec.Metadata.Superseded = true
		if updErr := e.vectors.Update(ctx, oldID, rec.Vector, rec.Metadata); updErr != nil {
			return errs.New("engine.supersede", errs.KindStoreInconsistency, updErr)
		}
	}

	if oldNode, ok := e.nodeIDFor(oldID); ok {
		if newNode, ok := e.nodeIDFor(newID); ok {
			_, _ = e.graph.CreateRelationship(ctx, newNode, oldNode, graphstore.Supersedes, nil)
		}
	}
	return nil
}

// Search implements spec.md §4.9's search operation.
func (e *Engine) Search(ctx context.Context, query, userID string, limit int) ([]Memory, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if userID == "" {
		return nil, errs.New("engine.Search", errs.KindInvalidInput, errs.ErrInvalidInput)
	}

	vec, err := e.embedWithRetry(ctx, query)
	if err != nil {
		return nil, err
	}

	hits, err := e.vectors.Search(ctx, vec, limit, vectorstore.ForUser(userID))
	if err != nil {
		return nil, errs.New("engine.Search", errs.KindProviderUnavailable, err)
	}

	results := make([]Memory, 0, len(hits))
	for _, h := range hits {
		m, ok := e.getCached(h.ID)
		if !ok {
			continue
		}
		m.Score = h.Score
		m.AccessCount++
		m.LastAccessedAt = nowNanos()
		e.setCached(m)
		results = append(results, m)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Importance > results[j].Importance
	})
	return results, nil
}

// Update implements spec.md §4.9's update operation. It does not re-run
// conflict detection by design.
func (e *Engine) Update(ctx context.Context, id, newText string) (Memory, error) {
	if err := validateContent(newText); err != nil {
		return Memory{}, err
	}

	m, ok := e.getCached(id)
	if !ok {
		return Memory{}, errs.New("engine.Update", errs.KindNotFound, errs.ErrNotFound)
	}

	release, err := e.locks.Acquire(ctx, id, defaultLockTimeout)
	if err != nil {
		return Memory{}, err
	}
	defer release()

	vec, err := e.embedWithRetry(ctx, newText)
	if err != nil {
		return Memory{}, err
	}

	m.Content = newText
	m.Embedding = vec
	m.UpdatedAt = nowNanos()

	if err := e.vectors.Update(ctx, id, vec, vectorstore.Metadata{
		UserID:     m.UserID,
		Category:   string(m.Category),
		Importance: m.Importance,
		CreatedAt:  m.CreatedAt,
		Superseded: !m.Active(),
	}); err != nil {
		return Memory{}, errs.New("engine.Update", errs.KindProviderUnavailable, err)
	}

	if nodeID, ok := e.nodeIDFor(id); ok {
		_ = e.graph.UpdateNode(ctx, nodeID, map[string]interface{}{"content_updated_at": m.UpdatedAt})
	}

	e.setCached(m)
	return m, nil
}

// Delete implements spec.md §4.9's delete operation: hard, idempotent.
func (e *Engine) Delete(ctx context.Context, id string) error {
	if err := e.vectors.Delete(ctx, id); err != nil {
		return errs.New("engine.Delete", errs.KindProviderUnavailable, err)
	}

	if nodeID, ok := e.nodeIDFor(id); ok {
		if err := e.graph.DeleteNode(ctx, nodeID); err != nil {
			return errs.New("engine.Delete", errs.KindStoreInconsistency, err)
		}
	}

	e.cacheMu.Lock()
	delete(e.cache, id)
	delete(e.nodeOf, id)
	e.cacheMu.Unlock()
	return nil
}

// Get returns one memory by id, or NotFound.
func (e *Engine) Get(ctx context.Context, id string) (Memory, error) {
	m, ok := e.getCached(id)
	if !ok {
		return Memory{}, errs.New("engine.Get", errs.KindNotFound, errs.ErrNotFound)
	}
	return m, nil
}

// GetAll implements spec.md §4.9's getAll: active memories only, newest first.
func (e *Engine) GetAll(ctx context.Context, userID string) ([]Memory, error) {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	var out []Memory
	for _, m := range e.cache {
		if m.UserID == userID && m.Active() {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

// GetHistory implements spec.md §4.9's getHistory: every memory, including
// superseded, oldest first.
func (e *Engine) GetHistory(ctx context.Context, userID string) ([]Memory, error) {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	var out []Memory
	for _, m := range e.cache {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// Close releases the engine's providers and stores. Idempotent.
func (e *Engine) Close() error {
	_ = e.embed.Close()
	if e.llmP != nil {
		_ = e.llmP.Close()
	}
	_ = e.vectors.Close()
	_ = e.graph.Close()
	return nil
}

func (e *Engine) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := retry.Do(ctx, "engine.embed", func(ctx context.Context) error {
		v, err := e.embed.Embed(ctx, text)
		if err != nil {
			return err
		}
		vec = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vec, nil
}

func (e *Engine) getCached(id string) (Memory, bool) {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()
	m, ok := e.cache[id]
	return m, ok
}

func (e *Engine) setCached(m Memory) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	e.cache[m.ID] = m
}

func (e *Engine) nodeIDFor(memoryID string) (string, bool) {
	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()
	id, ok := e.nodeOf[memoryID]
	return id, ok
}

func (e *Engine) setNodeID(memoryID, nodeID string) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()
	e.nodeOf[memoryID] = nodeID
}

func nowNanos() int64 {
	return time.Now().UnixNano()
}
