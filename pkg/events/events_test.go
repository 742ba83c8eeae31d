package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublish_DeliversToAllSubscribers(t *testing.T) {
	b := New()
	var mu sync.Mutex
	var received []Event

	var wg sync.WaitGroup
	wg.Add(2)
	b.Subscribe("row_inserted", func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		wg.Done()
	})
	b.Subscribe("row_inserted", func(e Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		wg.Done()
	})

	b.Publish("row_inserted", map[string]any{"table": "memory_documents"})

	waitTimeout(&wg, time.Second)
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, received, 2)
}

func TestPublish_NoSubscribersIsNoop(t *testing.T) {
	b := New()
	assert.NotPanics(t, func() {
		b.Publish("training_required", nil)
	})
}

func TestPublish_PanickingHandlerDoesNotCrash(t *testing.T) {
	b := New()
	var wg sync.WaitGroup
	wg.Add(1)
	b.Subscribe("x", func(e Event) {
		defer wg.Done()
		panic("boom")
	})

	assert.NotPanics(t, func() {
		b.Publish("x", nil)
	})
	waitTimeout(&wg, time.Second)
}

func waitTimeout(wg *sync.WaitGroup, timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
