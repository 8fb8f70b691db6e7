package collection

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Memory is an in-memory collection. Failures can be injected for tests.
type Memory struct {
	mu     sync.Mutex
	docs   map[string][]byte
	writes map[string]int

	// ListErr, when set, is returned by List.
	ListErr error

	// ReadErrs and WriteErrs fail Read and Write for specific identifiers.
	ReadErrs  map[string]error
	WriteErrs map[string]error
}

// NewMemory creates a collection holding a copy of docs.
func NewMemory(docs map[string]string) *Memory {
	m := &Memory{
		docs:      make(map[string][]byte, len(docs)),
		writes:    make(map[string]int),
		ReadErrs:  make(map[string]error),
		WriteErrs: make(map[string]error),
	}
	for id, content := range docs {
		m.docs[id] = []byte(content)
	}
	return m
}

// List implements Enumerator. Identifiers are sorted.
func (m *Memory) List(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ListErr != nil {
		return nil, m.ListErr
	}
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// Read implements Store.
func (m *Memory) Read(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ReadErrs[id]; err != nil {
		return nil, err
	}
	data, ok := m.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return slices.Clone(data), nil
}

// Write implements Store.
func (m *Memory) Write(_ context.Context, id string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.WriteErrs[id]; err != nil {
		return err
	}
	m.docs[id] = slices.Clone(content)
	m.writes[id]++
	return nil
}

// Content returns the current content of a document.
func (m *Memory) Content(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.docs[id])
}

// Writes returns how many times a document was written.
func (m *Memory) Writes(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[id]
}
