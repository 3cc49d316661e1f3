package provider

import (
	"context"

	"github.com/google/uuid"
)

// Noop is a no-operation implementation of the Provider interface.
// It accepts every delivery and fabricates a message ID. Used for disabled
// channels and local development so the dispatch flow needs no nil checks.
type Noop struct{}

// NewNoop creates a new Noop provider.
func NewNoop() *Noop {
	return &Noop{}
}

// Send accepts the delivery without doing anything and returns a synthetic
// message ID.
func (n *Noop) Send(_ context.Context, _ Delivery) (string, error) {
	return "noop-" + uuid.New().String(), nil
}
