package dispatcher

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/procurement-drafts/internal/domain/event"
)

type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func fieldEvent(field string) *event.Event {
	return event.NewEvent(event.TypeFieldChanged, "sess", 1, map[string]interface{}{event.KeyField: field})
}

func TestDispatch_RunsHandlersInOrder(t *testing.T) {
	d := NewDispatcher()
	var order []int

	d.Subscribe(event.TypeFieldChanged, func(ctx context.Context, evt *event.Event) error {
		order = append(order, 1)
		return nil
	})
	d.Subscribe(event.TypeFieldChanged, func(ctx context.Context, evt *event.Event) error {
		order = append(order, 2)
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), fieldEvent("purpose")))
	assert.Equal(t, []int{1, 2}, order)
}

func TestDispatch_StopsAtFirstError(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))
	boom := errors.New("boom")
	called := false

	d.Subscribe(event.TypeDocumentSaved, func(ctx context.Context, evt *event.Event) error { return boom })
	d.Subscribe(event.TypeDocumentSaved, func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeDocumentSaved, "s", 1, nil))

	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
	assert.Equal(t, 1, logger.ErrorCount())
}

func TestDispatch_RecoversPanic(t *testing.T) {
	d := NewDispatcher()
	d.Subscribe(event.TypeDocumentSaved, func(ctx context.Context, evt *event.Event) error {
		panic("test panic")
	})

	err := d.Dispatch(context.Background(), event.NewEvent(event.TypeDocumentSaved, "s", 1, nil))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic")
}

func TestSubscribe_GeneratesUniqueNames(t *testing.T) {
	d := NewDispatcher()
	noop := func(ctx context.Context, evt *event.Event) error { return nil }

	first := d.Subscribe(event.TypeFieldChanged, noop)
	d.Unsubscribe(event.TypeFieldChanged, first)
	second := d.Subscribe(event.TypeFieldChanged, noop)
	third := d.Subscribe(event.TypeFieldChanged, noop)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, second, third)
	assert.Len(t, d.ListHandlers(event.TypeFieldChanged), 2)
}

func TestUnsubscribe(t *testing.T) {
	d := NewDispatcher()
	var calls atomic.Int32

	d.SubscribeNamed(event.TypeFieldChanged, "keep", func(ctx context.Context, evt *event.Event) error {
		calls.Add(1)
		return nil
	})
	d.SubscribeNamed(event.TypeFieldChanged, "drop", func(ctx context.Context, evt *event.Event) error {
		calls.Add(10)
		return nil
	})
	d.Unsubscribe(event.TypeFieldChanged, "drop")

	require.NoError(t, d.Dispatch(context.Background(), fieldEvent("purpose")))
	assert.Equal(t, int32(1), calls.Load())

	infos := d.ListHandlers(event.TypeFieldChanged)
	require.Len(t, infos, 1)
	assert.Equal(t, "keep", infos[0].Name)
	assert.Nil(t, infos[0].Handler)
}

func TestUnsubscribe_FromInsideHandler(t *testing.T) {
	d := NewDispatcher()
	var name string
	name = d.Subscribe(event.TypeFieldChanged, func(ctx context.Context, evt *event.Event) error {
		d.Unsubscribe(event.TypeFieldChanged, name)
		return nil
	})

	require.NoError(t, d.Dispatch(context.Background(), fieldEvent("x")))
	assert.Empty(t, d.ListHandlers(event.TypeFieldChanged))
}

func TestFieldFilter(t *testing.T) {
	d := NewDispatcher()
	var seen []string

	d.Subscribe(event.TypeFieldChanged, FieldFilter("purpose", func(ctx context.Context, evt *event.Event) error {
		seen = append(seen, evt.Field())
		return nil
	}))

	require.NoError(t, d.Dispatch(context.Background(), fieldEvent("vendor")))
	require.NoError(t, d.Dispatch(context.Background(), fieldEvent("purpose")))

	assert.Equal(t, []string{"purpose"}, seen)
}

func TestDispatchAsync_CloseWaits(t *testing.T) {
	d := NewDispatcher()
	var done atomic.Int32

	for i := 0; i < 3; i++ {
		d.Subscribe(event.TypeDocumentSaved, func(ctx context.Context, evt *event.Event) error {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
			return nil
		})
	}

	d.DispatchAsync(context.Background(), event.NewEvent(event.TypeDocumentSaved, "s", 1, nil))
	require.NoError(t, d.Close())

	assert.Equal(t, int32(3), done.Load())
}

func TestClose(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))

	require.NoError(t, d.Close())
	assert.Error(t, d.Close())
	assert.ErrorIs(t, d.Dispatch(context.Background(), fieldEvent("x")), ErrClosed)

	d.DispatchAsync(context.Background(), fieldEvent("x"))
	assert.Equal(t, 1, logger.ErrorCount())
}
