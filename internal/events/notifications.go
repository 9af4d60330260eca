package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Notification event types.
const (
	// EventActivityCompleted is emitted after an activity completion has
	// been persisted and its grade cascade committed.
	EventActivityCompleted = "ACTIVITY_COMPLETED"
)

// NotificationEvent represents a user-facing notification. Delivery is
// best-effort: completion never fails because a notification could not be
// delivered.
type NotificationEvent struct {
	// ID is a unique identifier for this notification
	ID uuid.UUID `json:"id"`

	// Type indicates the notification type
	Type string `json:"type"`

	// UserID identifies the recipient
	UserID uuid.UUID `json:"user_id"`

	// Title is the short headline shown to the user
	Title string `json:"title"`

	// Message is the notification body
	Message string `json:"message"`

	// Metadata carries entity identifiers the client can navigate with
	Metadata map[string]string `json:"metadata,omitempty"`

	// CreatedAt is the timestamp when the notification was created
	CreatedAt time.Time `json:"created_at"`
}

// NewActivityCompletedEvent creates the notification emitted when a user
// completes an activity.
func NewActivityCompletedEvent(userID uuid.UUID, title, message string, metadata map[string]string) *NotificationEvent {
	return &NotificationEvent{
		ID:        uuid.New(),
		Type:      EventActivityCompleted,
		UserID:    userID,
		Title:     title,
		Message:   message,
		Metadata:  metadata,
		CreatedAt: time.Now(),
	}
}

// Notifier defines an interface for components that deliver notifications.
type Notifier interface {
	// Notify delivers the given notification. Returns an error if delivery
	// fails; callers treat delivery as best-effort.
	Notify(ctx context.Context, event *NotificationEvent) error
}

// LoggingNotifier is a Notifier that writes notifications to the structured
// log. It stands in for an external push or messaging integration and is
// the default delivery target.
type LoggingNotifier struct {
	logger *slog.Logger
}

// NewLoggingNotifier creates a new LoggingNotifier.
func NewLoggingNotifier(logger *slog.Logger) *LoggingNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingNotifier{
		logger: logger.With(slog.String("component", "logging_notifier")),
	}
}

// Ensure LoggingNotifier implements Notifier interface
var _ Notifier = (*LoggingNotifier)(nil)

// Notify implements Notifier.Notify
func (n *LoggingNotifier) Notify(ctx context.Context, event *NotificationEvent) error {
	attrs := []any{
		slog.String("notification_id", event.ID.String()),
		slog.String("notification_type", event.Type),
		slog.String("user_id", event.UserID.String()),
		slog.String("title", event.Title),
		slog.String("message", event.Message),
	}
	for key, value := range event.Metadata {
		attrs = append(attrs, slog.String("meta_"+key, value))
	}

	n.logger.InfoContext(ctx, "notification emitted", attrs...)
	return nil
}
