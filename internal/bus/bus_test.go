package bus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishOrder(t *testing.T) {
	b := New()
	var got []string

	b.Subscribe(EditorSubmit, func(any) { got = append(got, "first") })
	b.Subscribe(EditorSubmit, func(any) { got = append(got, "second") })
	b.Subscribe(EditorSubmitted, func(any) { got = append(got, "other topic") })

	b.Publish(EditorSubmit, nil)

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestPublishPayload(t *testing.T) {
	b := New()
	var got Notify

	b.Subscribe(EditorNotify, func(p any) { got = p.(Notify) })
	b.Publish(EditorNotify, Notify{Msg: "saved", Type: "s"})

	assert.Equal(t, "saved", got.Msg)
	assert.EqualValues(t, "s", got.Type)
}

func TestDisposer(t *testing.T) {
	b := New()
	calls := 0

	dispose := b.Subscribe(EditorOpen, func(any) { calls++ })
	require.Equal(t, 1, b.Count(EditorOpen))

	b.Publish(EditorOpen, nil)
	dispose()
	dispose()
	b.Publish(EditorOpen, nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, b.Count(EditorOpen))
}

func TestDisposeKeepsOtherSubscribers(t *testing.T) {
	b := New()
	var got []int

	d1 := b.Subscribe(EditorClose, func(any) { got = append(got, 1) })
	b.Subscribe(EditorClose, func(any) { got = append(got, 2) })
	d3 := b.Subscribe(EditorClose, func(any) { got = append(got, 3) })

	d1()
	d3()
	b.Publish(EditorClose, nil)

	assert.Equal(t, []int{2}, got)
}

func TestHandlerMayDisposeDuringPublish(t *testing.T) {
	b := New()
	var got []string

	var dispose func()
	dispose = b.Subscribe(ListInsert, func(any) {
		got = append(got, "self-disposing")
		dispose()
	})
	b.Subscribe(ListInsert, func(any) { got = append(got, "second") })

	b.Publish(ListInsert, nil)
	b.Publish(ListInsert, nil)

	assert.Equal(t, []string{"self-disposing", "second", "second"}, got)
}

func TestHandlerMayPublish(t *testing.T) {
	b := New()
	submitted := false

	b.Subscribe(EditorSubmit, func(any) { b.Publish(EditorSubmitted, nil) })
	b.Subscribe(EditorSubmitted, func(any) { submitted = true })

	b.Publish(EditorSubmit, nil)

	assert.True(t, submitted)
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	b := New()
	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			dispose := b.Subscribe(UserChanged, func(any) {
				mu.Lock()
				count++
				mu.Unlock()
			})
			b.Publish(UserChanged, nil)
			dispose()
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, count, 20)
	assert.Equal(t, 0, b.Count(UserChanged))
}
