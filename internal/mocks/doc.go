// Package mocks provides hand-written test doubles for the store and
// service interfaces. Each mock keeps simple in-memory state and exposes
// Fn fields to override individual methods per test.
package mocks
