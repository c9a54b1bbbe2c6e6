package engine

import (
	"context"
	"sync"
)

// AddResult is the outcome of an asynchronous Add.
type AddResult struct {
	ID    string
	Error error
}

// MemoryResult is the outcome of an asynchronous Update or Get.
type MemoryResult struct {
	Memory Memory
	Error  error
}

// ListResult is the outcome of an asynchronous Search, GetAll, or GetHistory.
type ListResult struct {
	Memories []Memory
	Error    error
}

// VoidResult is the outcome of an asynchronous Delete.
type VoidResult struct {
	Error error
}

// AsyncEngine wraps Engine so every public operation returns a future
// (a receive-only channel), per spec.md §5's "parallel threads with
// asynchronous completion handles" scheduling model. Grounded on the
// teacher's pkg/core/async_memory.go AsyncClient: same one-goroutine-per-
// call, buffered-channel-of-1, WaitGroup-tracked shape, generalized from
// the teacher's Add/Search/Get/Update/Delete surface to this engine's
// add/search/update/delete/getAll/getHistory surface.
type AsyncEngine struct {
	*Engine
	wg sync.WaitGroup
}

// NewAsync wraps an existing Engine for asynchronous use.
func NewAsync(e *Engine) *AsyncEngine {
	return &AsyncEngine{Engine: e}
}

// AddAsync runs Add in a goroutine and returns a future for its result.
func (a *AsyncEngine) AddAsync(ctx context.Context, text, userID string, properties map[string]Scalar) <-chan *AddResult {
	out := make(chan *AddResult, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		id, err := a.Add(ctx, text, userID, properties)
		out <- &AddResult{ID: id, Error: err}
		close(out)
	}()
	return out
}

// SearchAsync runs Search in a goroutine and returns a future for its result.
func (a *AsyncEngine) SearchAsync(ctx context.Context, query, userID string, limit int) <-chan *ListResult {
	out := make(chan *ListResult, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		memories, err := a.Search(ctx, query, userID, limit)
		out <- &ListResult{Memories: memories, Error: err}
		close(out)
	}()
	return out
}

// UpdateAsync runs Update in a goroutine and returns a future for its result.
func (a *AsyncEngine) UpdateAsync(ctx context.Context, id, newText string) <-chan *MemoryResult {
	out := make(chan *MemoryResult, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		m, err := a.Update(ctx, id, newText)
		out <- &MemoryResult{Memory: m, Error: err}
		close(out)
	}()
	return out
}

// DeleteAsync runs Delete in a goroutine and returns a future for its result.
func (a *AsyncEngine) DeleteAsync(ctx context.Context, id string) <-chan *VoidResult {
	out := make(chan *VoidResult, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		err := a.Delete(ctx, id)
		out <- &VoidResult{Error: err}
		close(out)
	}()
	return out
}

// GetAllAsync runs GetAll in a goroutine and returns a future for its result.
func (a *AsyncEngine) GetAllAsync(ctx context.Context, userID string) <-chan *ListResult {
	out := make(chan *ListResult, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		memories, err := a.GetAll(ctx, userID)
		out <- &ListResult{Memories: memories, Error: err}
		close(out)
	}()
	return out
}

// GetHistoryAsync runs GetHistory in a goroutine and returns a future for its result.
func (a *AsyncEngine) GetHistoryAsync(ctx context.Context, userID string) <-chan *ListResult {
	out := make(chan *ListResult, 1)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		memories, err := a.GetHistory(ctx, userID)
		out <- &ListResult{Memories: memories, Error: err}
		close(out)
	}()
	return out
}

// Wait blocks until every goroutine started by this AsyncEngine has finished.
func (a *AsyncEngine) Wait() {
	a.wg.Wait()
}
