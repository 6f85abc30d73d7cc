package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToAllHandlers(t *testing.T) {
	bus := NewBus()
	var got []string

	bus.Subscribe(EventOrderRequested, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.OrderID)
		return errors.New("boom")
	})
	bus.Subscribe(EventOrderRequested, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.OrderID)
		panic("mailer exploded")
	})
	bus.Subscribe(EventOrderRequested, func(_ context.Context, e Event) error {
		got = append(got, "third:"+e.OrderID)
		return nil
	})
	bus.Subscribe(EventOrderStatusChanged, func(context.Context, Event) error {
		t.Fatal("unrelated handler invoked")
		return nil
	})

	err := bus.Publish(context.Background(), New(EventOrderRequested, "o1", "u1", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order_requested handler 0: boom")
	assert.Contains(t, err.Error(), "order_requested handler 1: panic: mailer exploded")
	assert.Equal(t, []string{"first:o1", "second:o1", "third:o1"}, got)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	event := New(EventOrderStatusChanged, "o2", "admin", OrderStatusChangedPayload{})
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.NoError(t, bus.Publish(context.Background(), event))
}

func TestSubscribeDuringPublish(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Subscribe(EventOrderRequested, func(ctx context.Context, e Event) error {
		calls++
		bus.Subscribe(EventOrderRequested, func(context.Context, Event) error {
			calls++
			return nil
		})
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), New(EventOrderRequested, "o", "u", nil)))
	assert.Equal(t, 1, calls)
}
