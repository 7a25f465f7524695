// Package utils provides shared utility functions used across the application.
//
// Go Learning Note — "pkg/" Directory Convention:
// Code under pkg/ is intended to be importable by external projects (unlike
// internal/ which is compiler-enforced private). This is a community convention,
// not a Go language feature.
package utils

import (
	"github.com/google/uuid"
)

// NewRequestID creates a random UUID v4 string used to correlate the log lines
// of one webhook delivery.
//
// Go Learning Note — "github.com/google/uuid":
// uuid.New() creates a v4 (random) UUID like
// "550e8400-e29b-41d4-a716-446655440000". It needs no coordination between
// instances, so every replica behind the load balancer can mint its own.
func NewRequestID() string {
	return uuid.New().String()
}

// RequestIDOrNew returns candidate when it is a well-formed UUID, otherwise a
// fresh one. Upstream proxies may forward an X-Request-ID we should keep.
func RequestIDOrNew(candidate string) string {
	if id, err := uuid.Parse(candidate); err == nil {
		return id.String()
	}
	return NewRequestID()
}
