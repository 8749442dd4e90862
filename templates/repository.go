package templates

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewTemplateRepository(db *bun.DB) repository.Repository[*Template] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Template]{
		NewRecord: func() *Template { return &Template{} },
		GetID: func(t *Template) uuid.UUID {
			return t.ID
		},
		SetID: func(t *Template, id uuid.UUID) {
			t.ID = id
		},
		GetIdentifier: func() string {
			return "code_name"
		},
		GetIdentifierValue: func(t *Template) string {
			return t.CodeName
		},
	})
}

func NewFieldRepository(db *bun.DB) repository.Repository[*Field] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Field]{
		NewRecord: func() *Field { return &Field{} },
		GetID: func(f *Field) uuid.UUID {
			return f.ID
		},
		SetID: func(f *Field, id uuid.UUID) {
			f.ID = id
		},
		GetIdentifier:      nil,
		GetIdentifierValue: nil,
	})
}
