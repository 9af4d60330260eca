package mocks

import (
	"context"
	"sync"

	"github.com/aulaops/aula-api/internal/events"
)

// MockEventEmitter implements events.EventEmitter, recording emitted events.
type MockEventEmitter struct {
	mu      sync.Mutex
	Err     error
	Emitted []*events.TaskRequestEvent
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Emitted = append(m.Emitted, event)
	return m.Err
}

// EmittedEvents returns a snapshot of the emitted events.
func (m *MockEventEmitter) EmittedEvents() []*events.TaskRequestEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]*events.TaskRequestEvent, len(m.Emitted))
	copy(snapshot, m.Emitted)
	return snapshot
}

// MockNotifier implements events.Notifier, recording delivered notifications.
// Notified is closed-over by a channel so tests can wait for asynchronous
// deliveries.
type MockNotifier struct {
	mu       sync.Mutex
	Err      error
	Received []*events.NotificationEvent
	done     chan struct{}
}

// NewMockNotifier creates a MockNotifier whose Wait method unblocks after
// the first delivery.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{done: make(chan struct{}, 16)}
}

func (m *MockNotifier) Notify(ctx context.Context, event *events.NotificationEvent) error {
	m.mu.Lock()
	m.Received = append(m.Received, event)
	m.mu.Unlock()

	select {
	case m.done <- struct{}{}:
	default:
	}
	return m.Err
}

// Wait blocks until a notification is delivered or the context is done.
func (m *MockNotifier) Wait(ctx context.Context) bool {
	select {
	case <-m.done:
		return true
	case <-ctx.Done():
		return false
	}
}

// ReceivedEvents returns a snapshot of the delivered notifications.
func (m *MockNotifier) ReceivedEvents() []*events.NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]*events.NotificationEvent, len(m.Received))
	copy(snapshot, m.Received)
	return snapshot
}
