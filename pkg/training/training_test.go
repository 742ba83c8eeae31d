package training

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldicp/aldicp/pkg/config"
	"github.com/aldicp/aldicp/pkg/events"
)

func testConfig() *config.Config {
	return &config.Config{
		Training: map[string]config.TrainingPolicy{
			// MinRows above RowThreshold, so the first-training rule cannot
			// fire before the row threshold is reached.
			"*": {RowThreshold: 5, MinRows: 10, TimeThresholdHours: 24, TrainingType: "incremental"},
		},
	}
}

func TestOnInserted_FiresAtRowThreshold(t *testing.T) {
	bus := events.New()
	fired := make(chan events.Event, 1)
	bus.Subscribe("training_required", func(e events.Event) { fired <- e })

	tr := New(testConfig(), nil, bus)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		tr.OnInserted(ctx, "memory_documents")
	}

	select {
	case e := <-fired:
		assert.Equal(t, "memory_documents", e.Payload["table"])
	case <-time.After(time.Second):
		t.Fatal("expected training_required to fire")
	}
}

func TestOnInserted_DoesNotFireBelowThreshold(t *testing.T) {
	bus := events.New()
	fired := make(chan events.Event, 1)
	bus.Subscribe("training_required", func(e events.Event) { fired <- e })

	tr := New(testConfig(), nil, bus)
	tr.OnInserted(context.Background(), "memory_documents")

	select {
	case <-fired:
		t.Fatal("should not have fired yet")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestForceTraining_BypassesThresholds(t *testing.T) {
	bus := events.New()
	fired := make(chan events.Event, 1)
	bus.Subscribe("training_required", func(e events.Event) { fired <- e })

	tr := New(testConfig(), nil, bus)
	tr.ForceTraining(context.Background(), "memory_documents")

	select {
	case e := <-fired:
		assert.Equal(t, "memory_documents", e.Payload["table"])
	case <-time.After(time.Second):
		t.Fatal("expected ForceTraining to fire unconditionally")
	}
}

func TestOnInserted_CounterResetsAfterFiring(t *testing.T) {
	bus := events.New()
	tr := New(testConfig(), nil, bus)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		tr.OnInserted(ctx, "memory_documents")
	}
	tr.mu.Lock()
	newRows := tr.counters["memory_documents"].newRows
	tr.mu.Unlock()
	require.Equal(t, 0, newRows)
}
