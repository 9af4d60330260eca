// Package service provides the application-level services of the
// progress-and-grading engine: enrollment initialization, activity
// authoring with weight validation, activity completion, lesson progress
// advancement and grade reporting. Services own transaction boundaries
// and orchestrate stores; they never reach into the storage engine
// directly.
package service
