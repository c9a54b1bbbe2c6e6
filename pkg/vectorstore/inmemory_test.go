package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemory_InsertAndSearch(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	require.NoError(t, s.Insert(ctx, Record{
		ID:     "m1",
		Vector: []float32{1, 0, 0},
		Metadata: Metadata{
			UserID: "u1", Category: "FACT", CreatedAt: 1,
		},
	}))
	require.NoError(t, s.Insert(ctx, Record{
		ID:     "m2",
		Vector: []float32{0, 1, 0},
		Metadata: Metadata{
			UserID: "u1", Category: "FACT", CreatedAt: 2,
		},
	}))

	hits, err := s.Search(ctx, []float32{1, 0, 0}, 10, ForUser("u1"))
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "m1", hits[0].ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestInMemory_Search_UserIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	require.NoError(t, s.Insert(ctx, Record{ID: "a", Vector: []float32{1, 0}, Metadata: Metadata{UserID: "u1"}}))
	require.NoError(t, s.Insert(ctx, Record{ID: "b", Vector: []float32{1, 0}, Metadata: Metadata{UserID: "u2"}}))

	hits, err := s.Search(ctx, []float32{1, 0}, 10, ForUser("u1"))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "a", hits[0].ID)
}

func TestInMemory_Search_TopKZero(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	require.NoError(t, s.Insert(ctx, Record{ID: "a", Vector: []float32{1}, Metadata: Metadata{UserID: "u1"}}))

	hits, err := s.Search(ctx, []float32{1}, 0, ForUser("u1"))
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestInMemory_Search_TieBreakByCreatedAtThenID(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	require.NoError(t, s.Insert(ctx, Record{ID: "z", Vector: []float32{1, 0}, Metadata: Metadata{UserID: "u1", CreatedAt: 5}}))
	require.NoError(t, s.Insert(ctx, Record{ID: "a", Vector: []float32{1, 0}, Metadata: Metadata{UserID: "u1", CreatedAt: 5}}))
	require.NoError(t, s.Insert(ctx, Record{ID: "m", Vector: []float32{1, 0}, Metadata: Metadata{UserID: "u1", CreatedAt: 1}}))

	hits, err := s.Search(ctx, []float32{1, 0}, 10, ForUser("u1"))
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, []string{"a", "z", "m"}, []string{hits[0].ID, hits[1].ID, hits[2].ID})
}

func TestInMemory_ZeroVectorNoDivideByZero(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	require.NoError(t, s.Insert(ctx, Record{ID: "a", Vector: []float32{0, 0}, Metadata: Metadata{UserID: "u1"}}))

	hits, err := s.Search(ctx, []float32{0, 0}, 10, ForUser("u1"))
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, 0.0, hits[0].Score)
}

func TestInMemory_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	require.NoError(t, s.Insert(ctx, Record{ID: "a", Vector: []float32{1}, Metadata: Metadata{UserID: "u1"}}))

	require.NoError(t, s.Delete(ctx, "a"))
	require.NoError(t, s.Delete(ctx, "a"))

	_, err := s.Get(ctx, "a")
	assert.Error(t, err)
}

func TestInMemory_Search_EmptyUser(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	hits, err := s.Search(ctx, []float32{1}, 10, ForUser("nobody"))
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestInMemory_ConcurrentInsert(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(i int) {
			_ = s.Insert(ctx, Record{
				ID:       idFor(i),
				Vector:   []float32{float32(i), 1},
				Metadata: Metadata{UserID: "u1", CreatedAt: int64(i)},
			})
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}

	hits, err := s.Search(ctx, []float32{1, 1}, 100, ForUser("u1"))
	require.NoError(t, err)
	assert.Len(t, hits, 20)
}

func idFor(i int) string {
	return "id-" + string(rune('a'+i))
}
