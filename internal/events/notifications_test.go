package events

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActivityCompletedEvent(t *testing.T) {
	userID := uuid.New()
	metadata := map[string]string{
		"activity_id": uuid.NewString(),
		"course_id":   uuid.NewString(),
	}

	event := NewActivityCompletedEvent(userID, "Activity completed", "You completed \"Tarea 1\"", metadata)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, EventActivityCompleted, event.Type)
	assert.Equal(t, userID, event.UserID)
	assert.Equal(t, metadata, event.Metadata)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestLoggingNotifier_Notify(t *testing.T) {
	notifier := NewLoggingNotifier(slog.Default())
	event := NewActivityCompletedEvent(uuid.New(), "Activity completed", "done", nil)

	require.NoError(t, notifier.Notify(context.Background(), event))
}

func TestNewLoggingNotifier_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		notifier := NewLoggingNotifier(nil)
		_ = notifier.Notify(context.Background(), NewActivityCompletedEvent(uuid.New(), "t", "m", nil))
	})
}
