// Package events decouples the completion flow from its side effects.
//
// Two kinds of events flow through here: TaskRequestEvent, which asks for a
// background task (today only grade recomputes) without importing the task
// package, and NotificationEvent, which describes a user-facing notification
// handed to a Notifier. Services emit; registered handlers react.
package events
