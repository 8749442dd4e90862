package fieldvalues

import (
	"context"
	"sync"

	"github.com/goliatone/go-sitetree/domain"
	"github.com/google/uuid"
)

type pairKey struct {
	pageID  uuid.UUID
	fieldID uuid.UUID
}

// MemoryStore is an in-memory value store for scaffolding/tests. One instance
// backs exactly one field type.
type MemoryStore struct {
	mu        sync.RWMutex
	fieldType domain.FieldType
	rows      map[pairKey]any
}

// NewMemoryStore constructs a store for the supplied field type.
func NewMemoryStore(t domain.FieldType) *MemoryStore {
	return &MemoryStore{
		fieldType: t,
		rows:      make(map[pairKey]any),
	}
}

// NewMemoryStores builds the full dispatch table with one memory store per type.
func NewMemoryStores() StoreSet {
	set := make(StoreSet, len(domain.FieldTypes()))
	for _, t := range domain.FieldTypes() {
		set[t] = NewMemoryStore(t)
	}
	return set
}

// Type reports which field type the store backs.
func (m *MemoryStore) Type() domain.FieldType {
	return m.fieldType
}

// Get returns the stored value, or the type's zero value when absent.
func (m *MemoryStore) Get(_ context.Context, pageID, fieldID uuid.UUID) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.rows[pairKey{pageID, fieldID}]
	if !ok {
		return ZeroValue(m.fieldType), nil
	}
	return value, nil
}

// Set writes the value after coercion.
func (m *MemoryStore) Set(_ context.Context, pageID, fieldID uuid.UUID, value any) error {
	coerced, err := Coerce(m.fieldType, value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[pairKey{pageID, fieldID}] = coerced
	return nil
}

// CreateDefault inserts a defaulted row unless one already exists.
func (m *MemoryStore) CreateDefault(_ context.Context, pageID, fieldID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{pageID, fieldID}
	if _, ok := m.rows[key]; ok {
		return nil
	}
	m.rows[key] = ZeroValue(m.fieldType)
	return nil
}

// Remove deletes the row when present.
func (m *MemoryStore) Remove(_ context.Context, pageID, fieldID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, pairKey{pageID, fieldID})
	return nil
}

// RemoveAllForPage drops every row owned by the page.
func (m *MemoryStore) RemoveAllForPage(_ context.Context, pageID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.rows {
		if key.pageID == pageID {
			delete(m.rows, key)
		}
	}
	return nil
}

// ResetAll satisfies BooleanResetter for the boolean variant.
func (m *MemoryStore) ResetAll(_ context.Context, pageID uuid.UUID, fieldIDs []uuid.UUID) error {
	if m.fieldType != domain.FieldTypeBoolean {
		return &StoreUnavailableError{Type: m.fieldType}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, fieldID := range fieldIDs {
		m.rows[pairKey{pageID, fieldID}] = false
	}
	return nil
}

// Snapshot copies the current rows and returns a function restoring them, so
// a failed unit of work can roll the store back.
func (m *MemoryStore) Snapshot() func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := make(map[pairKey]any, len(m.rows))
	for key, value := range m.rows {
		saved[key] = value
	}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.rows = saved
	}
}

// RowCount reports how many rows the store holds for a page; used by tests to
// assert cascade cardinality.
func (m *MemoryStore) RowCount(pageID uuid.UUID) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for key := range m.rows {
		if key.pageID == pageID {
			count++
		}
	}
	return count
}

// HasRow reports whether a row exists for the (page, field) pair.
func (m *MemoryStore) HasRow(pageID, fieldID uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.rows[pairKey{pageID, fieldID}]
	return ok
}
