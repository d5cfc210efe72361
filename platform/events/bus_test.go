package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type pinged struct {
	BaseEvent
}

func (pinged) EventName() string { return "test.pinged" }

func TestPublishRunsAllHandlers(t *testing.T) {
	bus := NewInMemoryBus(nil)
	var calls atomic.Int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, e Event) error {
			calls.Add(1)
			return nil
		}))
	}

	ctx, cancel := context.WithCancel(context.Background())
	bus.Publish(ctx, pinged{BaseEvent: NewBaseEvent()})
	cancel()
	bus.Wait()

	if calls.Load() != 3 {
		t.Fatalf("handlers called %d times, want 3", calls.Load())
	}
}

func TestPublishSyncStopsAtFirstError(t *testing.T) {
	bus := NewInMemoryBus(nil)
	boom := errors.New("boom")
	var second bool
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error { return boom }))
	bus.Subscribe("test.pinged", HandlerFunc(func(context.Context, Event) error { second = true; return nil }))

	if err := bus.PublishSync(context.Background(), pinged{}); !errors.Is(err, boom) {
		t.Fatalf("PublishSync error = %v, want boom", err)
	}
	if second {
		t.Fatal("second handler should not run after an error")
	}
}

func TestNewBaseEvent(t *testing.T) {
	before := time.Now()
	a, b := NewBaseEvent(), NewBaseEvent()
	if a.OccurredAt().Before(before) {
		t.Fatal("timestamp should not precede creation")
	}
	if a.EventID() == "" || a.EventID() == b.EventID() {
		t.Fatalf("event ids should be unique, got %q and %q", a.EventID(), b.EventID())
	}
}
