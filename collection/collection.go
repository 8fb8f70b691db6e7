// Package collection provides access to the set of proposal documents. The
// batch rewriter only depends on the Enumerator and Store ports.
package collection

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document identifier is unknown.
var ErrNotFound = errors.New("document not found")

// Enumerator lists document identifiers.
type Enumerator interface {
	List(ctx context.Context) ([]string, error)
}

// Store reads and writes whole documents by identifier.
type Store interface {
	Read(ctx context.Context, id string) ([]byte, error)
	Write(ctx context.Context, id string, content []byte) error
}

// Collection is a document set that can be listed, read and written.
type Collection interface {
	Enumerator
	Store
}
