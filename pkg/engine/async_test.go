package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncEngine_AddAndSearchRoundTrip(t *testing.T) {
	ctx := context.Background()
	async := NewAsync(newTestEngine(t, nil))

	addResult := <-async.AddAsync(ctx, "I enjoy long distance running", "u1", nil)
	require.NoError(t, addResult.Error)
	require.NotEmpty(t, addResult.ID)

	searchResult := <-async.SearchAsync(ctx, "running", "u1", 10)
	require.NoError(t, searchResult.Error)
	assert.NotEmpty(t, searchResult.Memories)

	async.Wait()
}

func TestAsyncEngine_DeleteThenGetAllAsync(t *testing.T) {
	ctx := context.Background()
	async := NewAsync(newTestEngine(t, nil))

	addResult := <-async.AddAsync(ctx, "I collect vintage stamps", "u1", nil)
	require.NoError(t, addResult.Error)

	delResult := <-async.DeleteAsync(ctx, addResult.ID)
	require.NoError(t, delResult.Error)

	listResult := <-async.GetAllAsync(ctx, "u1")
	require.NoError(t, listResult.Error)
	assert.Empty(t, listResult.Memories)

	async.Wait()
}

func TestAsyncEngine_WaitReturnsAfterAllInFlightCallsFinish(t *testing.T) {
	ctx := context.Background()
	async := NewAsync(newTestEngine(t, nil))

	for i := 0; i < 5; i++ {
		async.AddAsync(ctx, "background work item", "u1", nil)
	}

	done := make(chan struct{})
	go func() {
		async.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after in-flight async calls completed")
	}
}
