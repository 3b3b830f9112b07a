package hooks

import (
	"context"
	"errors"
	"testing"

	"github.com/soyeahso/toolchat/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func TestManager_On_And_Emit(t *testing.T) {
	m := testManager()

	var called bool
	m.On(EventChatStart, "test", func(_ context.Context, p Payload) error {
		called = true
		assert.Equal(t, EventChatStart, p.Event)
		return nil
	})

	m.Emit(context.Background(), EventChatStart, nil)
	assert.True(t, called)
}

func TestManager_Emit_MultipleHandlers(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventToolStart, "first", func(_ context.Context, _ Payload) error {
		order = append(order, "first")
		return nil
	})
	m.On(EventToolStart, "second", func(_ context.Context, _ Payload) error {
		order = append(order, "second")
		return nil
	})

	m.Emit(context.Background(), EventToolStart, nil)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestManager_Emit_WithData(t *testing.T) {
	m := testManager()

	var gotData map[string]any
	m.On(EventToolStart, "test", func(_ context.Context, p Payload) error {
		gotData = p.Data
		return nil
	})

	m.Emit(context.Background(), EventToolStart, map[string]any{
		"agent": "news",
		"tool":  "get_top_headlines",
	})

	assert.Equal(t, "news", gotData["agent"])
	assert.Equal(t, "get_top_headlines", gotData["tool"])
}

func TestManager_Emit_HandlerError(t *testing.T) {
	m := testManager()

	var secondCalled bool
	m.On(EventChatStart, "failing", func(_ context.Context, _ Payload) error {
		return errors.New("handler broke")
	})
	m.On(EventChatStart, "second", func(_ context.Context, _ Payload) error {
		secondCalled = true
		return nil
	})

	// Should not panic; second handler should still run
	m.Emit(context.Background(), EventChatStart, nil)
	assert.True(t, secondCalled)
}

func TestManager_Emit_NoHandlers(t *testing.T) {
	m := testManager()
	// Should not panic
	m.Emit(context.Background(), EventChatEnd, nil)
}

func TestManager_Emit_NilManager(t *testing.T) {
	var m *Manager
	m.Emit(context.Background(), EventToolStart, nil)
}

func TestManager_Off(t *testing.T) {
	m := testManager()

	var callCount int
	m.On(EventChatStart, "removable", func(_ context.Context, _ Payload) error {
		callCount++
		return nil
	})

	m.Emit(context.Background(), EventChatStart, nil)
	assert.Equal(t, 1, callCount)

	m.Off(EventChatStart, "removable")
	m.Emit(context.Background(), EventChatStart, nil)
	assert.Equal(t, 1, callCount) // should not have been called again
}

func TestManager_Off_KeepsOthers(t *testing.T) {
	m := testManager()

	var keepCalled int
	m.On(EventChatStart, "remove-me", func(_ context.Context, _ Payload) error { return nil })
	m.On(EventChatStart, "keep-me", func(_ context.Context, _ Payload) error {
		keepCalled++
		return nil
	})

	m.Off(EventChatStart, "remove-me")
	m.Emit(context.Background(), EventChatStart, nil)
	assert.Equal(t, 1, keepCalled)
}

func TestManager_Count(t *testing.T) {
	m := testManager()

	assert.Equal(t, 0, m.Count(EventChatStart))

	m.On(EventChatStart, "h1", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 1, m.Count(EventChatStart))

	m.On(EventChatStart, "h2", func(_ context.Context, _ Payload) error { return nil })
	assert.Equal(t, 2, m.Count(EventChatStart))
}

func TestAllEvents_NotEmpty(t *testing.T) {
	require.NotEmpty(t, AllEvents)
	assert.Contains(t, AllEvents, EventBeforeAgentRun)
	assert.Contains(t, AllEvents, EventAfterAgentRun)
	assert.Contains(t, AllEvents, EventToolStart)
	assert.Contains(t, AllEvents, EventToolEnd)
}
