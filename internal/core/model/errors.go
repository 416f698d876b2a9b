package model

import (
	"errors"
	"fmt"
)

var (
	// ErrBadInput marks a request the core cannot act on (bad parameter, malformed record).
	ErrBadInput = errors.New("bad input")
	// ErrNodeNotFound marks a key that is not a node of the graph.
	ErrNodeNotFound = errors.New("node not found")
	// ErrInsufficientData marks a validation request without enough citation links.
	ErrInsufficientData = errors.New("insufficient citation data")
)

// NotFound wraps ErrNodeNotFound with the missing key.
func NotFound(key string) error {
	return fmt.Errorf("%w: %s", ErrNodeNotFound, key)
}

// BadInput wraps ErrBadInput with a formatted reason.
func BadInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadInput, fmt.Sprintf(format, args...))
}
