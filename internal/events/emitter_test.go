package events

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	err      error
	received []*TaskRequestEvent
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event *TaskRequestEvent) error {
	h.received = append(h.received, event)
	return h.err
}

func TestEmitEvent_DispatchesToAllHandlers(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.Default())
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := NewTaskRequestEvent("grade_recompute", map[string]string{"k": "v"})
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Len(t, first.received, 1)
	assert.Len(t, second.received, 1)
}

func TestEmitEvent_HandlerErrorDoesNotStopOthers(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.Default())
	failing := &recordingHandler{err: errors.New("handler failed")}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	event, err := NewTaskRequestEvent("grade_recompute", nil)
	require.NoError(t, err)

	err = emitter.EmitEvent(context.Background(), event)
	assert.ErrorIs(t, err, failing.err)
	assert.Len(t, healthy.received, 1)
}

func TestEmitEvent_NoHandlers(t *testing.T) {
	emitter := NewInMemoryEventEmitter(slog.Default())

	event, err := NewTaskRequestEvent("grade_recompute", nil)
	require.NoError(t, err)

	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}
