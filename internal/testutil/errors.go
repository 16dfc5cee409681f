// Package testutil provides mock errors and fixtures shared by stepwire tests.
//
// It should only be imported by test files (*_test.go).
package testutil

import "errors"

// Mock errors for testing purposes.
// These errors stand in for failures raised by step code and world hooks.
var (
	// ErrMockNoFixtures indicates a mock world could not load its fixtures.
	ErrMockNoFixtures = errors.New("no fixtures")

	// ErrMockCloseFailed indicates a mock resource failed to close.
	ErrMockCloseFailed = errors.New("close failed")

	// ErrMockConnectionReset indicates a mock connection was dropped.
	ErrMockConnectionReset = errors.New("connection reset")

	// ErrMockDiskFull indicates a mock writer ran out of space.
	ErrMockDiskFull = errors.New("disk full")
)
