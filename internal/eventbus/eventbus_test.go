package eventbus

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type ping struct{ n int }

type pong struct{}

func TestDispatchByType(t *testing.T) {
	b := New()
	var pings []int
	pongs := 0
	On(b, func(_ context.Context, p ping) { pings = append(pings, p.n) })
	On(b, func(context.Context, pong) { pongs++ })

	Emit(context.Background(), b, ping{1})
	Emit(context.Background(), b, ping{2})
	Emit(context.Background(), b, pong{})

	assert.Equal(t, []int{1, 2}, pings)
	assert.Equal(t, 1, pongs)
}

func TestUnsubscribeRemovesOnlyItsHandler(t *testing.T) {
	b := New()
	var got []string
	handler := func(name string) Handler[ping] {
		return func(context.Context, ping) { got = append(got, name) }
	}
	On(b, handler("first"))
	unsubscribe := On(b, handler("second"))
	On(b, handler("third"))

	unsubscribe()
	unsubscribe()
	Emit(context.Background(), b, ping{})

	assert.Equal(t, []string{"first", "third"}, got)
}

func TestUnsubscribeLastHandler(t *testing.T) {
	b := New()
	calls := 0
	unsubscribe := On(b, func(context.Context, ping) { calls++ })
	unsubscribe()
	Emit(context.Background(), b, ping{})
	assert.Zero(t, calls)
	assert.Empty(t, b.handlers)
}

func TestGlobalBus(t *testing.T) {
	Use(nil)
	calls := 0
	// no bus installed: subscribing and publishing are no-ops
	Subscribe(func(context.Context, ping) { calls++ })()
	Publish(context.Background(), ping{})

	Use(New())
	defer Use(nil)
	unsubscribe := Subscribe(func(context.Context, ping) { calls++ })
	Publish(context.Background(), ping{})
	unsubscribe()
	Publish(context.Background(), ping{})
	assert.Equal(t, 1, calls)
}

func TestConcurrentPublish(t *testing.T) {
	b := New()
	var mu sync.Mutex
	total := 0
	On(b, func(_ context.Context, p ping) {
		mu.Lock()
		total += p.n
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Emit(context.Background(), b, ping{1})
			On(b, func(context.Context, pong) {})()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, total)
}
