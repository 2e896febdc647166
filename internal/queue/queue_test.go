package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frame struct {
	ID   int
	Time float64
}

func TestQueue_New(t *testing.T) {
	q := New[frame]()
	require.NotNil(t, q)
	assert.True(t, q.Empty())
	assert.Equal(t, 0, q.Len())
}

func TestQueue_PushAndDrainAll(t *testing.T) {
	q := New[frame]()
	q.Push(frame{ID: 1}, frame{ID: 2})
	q.Push(frame{ID: 3})

	items := q.Drain(0)
	require.Len(t, items, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{items[0].ID, items[1].ID, items[2].ID})
	assert.True(t, q.Empty())
}

func TestQueue_DrainBounded(t *testing.T) {
	q := New[frame]()
	for i := 1; i <= 5; i++ {
		q.Push(frame{ID: i})
	}

	first := q.Drain(2)
	require.Len(t, first, 2)
	assert.Equal(t, 1, first[0].ID)
	assert.Equal(t, 3, q.Len())

	rest := q.Drain(10)
	require.Len(t, rest, 3)
	assert.Equal(t, 3, rest[0].ID)
	assert.Equal(t, 5, rest[2].ID)
}

func TestQueue_DrainEmpty(t *testing.T) {
	q := New[frame]()
	assert.Empty(t, q.Drain(0))
	assert.Empty(t, q.Drain(3))
}

func TestQueue_DrainedSliceIsIndependent(t *testing.T) {
	q := New[frame]()
	q.Push(frame{ID: 1}, frame{ID: 2})
	items := q.Drain(1)
	q.Push(frame{ID: 9})

	items[0].ID = 42
	rest := q.Drain(0)
	assert.Equal(t, []int{2, 9}, []int{rest[0].ID, rest[1].ID})
}

func TestQueue_RequeueGoesToFront(t *testing.T) {
	q := New[frame]()
	q.Push(frame{ID: 1}, frame{ID: 2}, frame{ID: 3})
	batch := q.Drain(2)
	q.Push(frame{ID: 4})

	q.Requeue(batch)

	items := q.Drain(0)
	ids := make([]int, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	assert.Equal(t, []int{1, 2, 3, 4}, ids)
}

func TestQueue_RequeueNothing(t *testing.T) {
	q := New[frame]()
	q.Requeue(nil)
	assert.True(t, q.Empty())
}

func TestQueue_Clear(t *testing.T) {
	q := New[frame]()
	q.Push(frame{ID: 1}, frame{ID: 2})
	q.Clear()
	assert.True(t, q.Empty())

	q.Push(frame{ID: 3})
	assert.Equal(t, 1, q.Len())
}

func TestQueue_ConcurrentPushDrain(t *testing.T) {
	q := New[frame]()
	const writers, perWriter = 8, 250

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				q.Push(frame{ID: w*perWriter + i})
			}
		}(w)
	}

	var mu sync.Mutex
	drained := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			n := len(q.Drain(50))
			mu.Lock()
			drained += n
			total := drained
			mu.Unlock()
			if total == writers*perWriter {
				return
			}
		}
	}()

	wg.Wait()
	<-done
	assert.Equal(t, writers*perWriter, drained)
	assert.True(t, q.Empty())
}
