package index

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramigb/semantic-skeletonizer/internal/skeleton"
)

func TestIndex_SetGetSnapshot(t *testing.T) {
	idx := New()
	assert.True(t, idx.Empty())

	fs := skeleton.FileSkeleton{Functions: []string{"function f() {}"}}
	idx.Set("a.ts", fs)

	got, ok := idx.Get("a.ts")
	require.True(t, ok)
	assert.Equal(t, fs, got)

	snap := idx.Snapshot()
	require.Contains(t, snap, "a.ts")
	assert.Equal(t, fs, snap["a.ts"])

	assert.Equal(t, 1, idx.Len())
	assert.False(t, idx.Empty())
}

func TestIndex_OverwriteWholesale(t *testing.T) {
	idx := New()
	idx.Set("a.ts", skeleton.FileSkeleton{Functions: []string{"f"}})
	idx.Set("a.ts", skeleton.FileSkeleton{Functions: []string{"g"}})

	got, ok := idx.Get("a.ts")
	require.True(t, ok)
	assert.Equal(t, []string{"g"}, got.Functions)
}

func TestIndex_MissingKey(t *testing.T) {
	idx := New()
	_, ok := idx.Get("nope.ts")
	assert.False(t, ok)
}

func TestIndex_ConcurrentReadersWriters(t *testing.T) {
	idx := New()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		path := "file.ts"
		go func() {
			defer wg.Done()
			idx.Set(path, skeleton.FileSkeleton{Functions: []string{"f"}})
		}()
		go func() {
			defer wg.Done()
			_, _ = idx.Get(path)
			_ = idx.Snapshot()
		}()
	}
	wg.Wait()
}

func TestIndex_Delete(t *testing.T) {
	idx := New()
	idx.Set("a.ts", skeleton.FileSkeleton{})
	idx.Delete("a.ts")
	_, ok := idx.Get("a.ts")
	assert.False(t, ok)
}
