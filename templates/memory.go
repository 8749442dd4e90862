package templates

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryTemplateRepository is an in-memory template store for scaffolding/tests.
type MemoryTemplateRepository struct {
	mu        sync.RWMutex
	templates map[uuid.UUID]*Template
	codeIndex map[string]uuid.UUID
}

// NewMemoryTemplateRepository constructs the repository.
func NewMemoryTemplateRepository() *MemoryTemplateRepository {
	return &MemoryTemplateRepository{
		templates: make(map[uuid.UUID]*Template),
		codeIndex: make(map[string]uuid.UUID),
	}
}

// Create inserts the supplied template.
func (m *MemoryTemplateRepository) Create(_ context.Context, record *Template) (*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := cloneTemplate(record)
	m.templates[copied.ID] = copied
	m.codeIndex[copied.CodeName] = copied.ID
	return cloneTemplate(copied), nil
}

// GetByID retrieves a template by identifier.
func (m *MemoryTemplateRepository) GetByID(_ context.Context, id uuid.UUID) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.templates[id]
	if !ok {
		return nil, &TemplateNotFoundError{Key: id.String()}
	}
	return cloneTemplate(record), nil
}

// GetByCodeName retrieves a template by its unique code name.
func (m *MemoryTemplateRepository) GetByCodeName(_ context.Context, codeName string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.codeIndex[codeName]
	if !ok {
		return nil, &TemplateNotFoundError{Key: codeName}
	}
	return cloneTemplate(m.templates[id]), nil
}

// List returns every template ordered by creation time.
func (m *MemoryTemplateRepository) List(_ context.Context) ([]*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Template, 0, len(m.templates))
	for _, record := range m.templates {
		out = append(out, cloneTemplate(record))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CodeName < out[j].CodeName
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update persists metadata changes for a template.
func (m *MemoryTemplateRepository) Update(_ context.Context, record *Template) (*Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.templates[record.ID]
	if !ok {
		return nil, &TemplateNotFoundError{Key: record.ID.String()}
	}
	delete(m.codeIndex, current.CodeName)
	updated := cloneTemplate(record)
	m.templates[updated.ID] = updated
	m.codeIndex[updated.CodeName] = updated.ID
	return cloneTemplate(updated), nil
}

// Delete removes the template.
func (m *MemoryTemplateRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.templates[id]
	if !ok {
		return &TemplateNotFoundError{Key: id.String()}
	}
	delete(m.codeIndex, record.CodeName)
	delete(m.templates, id)
	return nil
}

// MemoryFieldRepository is an in-memory field store for scaffolding/tests.
type MemoryFieldRepository struct {
	mu     sync.RWMutex
	fields map[uuid.UUID]*Field
}

// NewMemoryFieldRepository constructs the repository.
func NewMemoryFieldRepository() *MemoryFieldRepository {
	return &MemoryFieldRepository{fields: make(map[uuid.UUID]*Field)}
}

// Create inserts the supplied field.
func (m *MemoryFieldRepository) Create(_ context.Context, record *Field) (*Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := cloneField(record)
	m.fields[copied.ID] = copied
	return cloneField(copied), nil
}

// GetByID retrieves a field by identifier.
func (m *MemoryFieldRepository) GetByID(_ context.Context, id uuid.UUID) (*Field, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.fields[id]
	if !ok {
		return nil, &FieldNotFoundError{Key: id.String()}
	}
	return cloneField(record), nil
}

// ListByTemplate returns the template's fields ordered by position.
func (m *MemoryFieldRepository) ListByTemplate(_ context.Context, templateID uuid.UUID) ([]*Field, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Field, 0)
	for _, record := range m.fields {
		if record.TemplateID == templateID {
			out = append(out, cloneField(record))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

// Update persists changes for a field.
func (m *MemoryFieldRepository) Update(_ context.Context, record *Field) (*Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fields[record.ID]; !ok {
		return nil, &FieldNotFoundError{Key: record.ID.String()}
	}
	updated := cloneField(record)
	m.fields[updated.ID] = updated
	return cloneField(updated), nil
}

// UpdatePositions persists position changes for the supplied fields.
func (m *MemoryFieldRepository) UpdatePositions(_ context.Context, records []*Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range records {
		current, ok := m.fields[record.ID]
		if !ok {
			return &FieldNotFoundError{Key: record.ID.String()}
		}
		current.Position = record.Position
		current.UpdatedAt = record.UpdatedAt
	}
	return nil
}

// Delete removes the field.
func (m *MemoryFieldRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.fields[id]; !ok {
		return &FieldNotFoundError{Key: id.String()}
	}
	delete(m.fields, id)
	return nil
}

func cloneTemplate(record *Template) *Template {
	if record == nil {
		return nil
	}
	copied := *record
	if len(record.Fields) > 0 {
		copied.Fields = make([]*Field, 0, len(record.Fields))
		for _, field := range record.Fields {
			copied.Fields = append(copied.Fields, cloneField(field))
		}
	}
	return &copied
}

func cloneField(record *Field) *Field {
	if record == nil {
		return nil
	}
	copied := *record
	return &copied
}
