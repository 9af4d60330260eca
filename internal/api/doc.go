// Package api provides the HTTP handlers of the progress-and-grading
// engine: enrollment ingestion, submission ingestion and completion,
// activity authoring, lesson progress and grade reporting. Handlers
// validate and convert loosely-typed payloads at the boundary; the
// services below never see untyped maps.
package api
