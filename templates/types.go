package templates

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sitetree/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Template is a named schema shared by every page bound to it.
type Template struct {
	bun.BaseModel `bun:"table:templates,alias:t"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name      string    `bun:"name,notnull" json:"name"`
	CodeName  string    `bun:"code_name,notnull,unique" json:"code_name"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	Fields []*Field `bun:"rel:has-many,join:id=template_id" json:"fields,omitempty"`
}

// Field declares one typed, named attribute of a template. Position keeps the
// field list contiguous and is the canonical iteration order.
type Field struct {
	bun.BaseModel `bun:"table:template_fields,alias:tf"`

	ID         uuid.UUID        `bun:",pk,type:uuid" json:"id"`
	TemplateID uuid.UUID        `bun:"template_id,notnull,type:uuid" json:"template_id"`
	Name       string           `bun:"name,notnull" json:"name"`
	CodeName   string           `bun:"code_name,notnull" json:"code_name"`
	Type       domain.FieldType `bun:"type_tag,notnull" json:"type_tag"`
	Position   int              `bun:"position,notnull" json:"position"`
	CreatedAt  time.Time        `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time        `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Service exposes the template registry and field catalog use cases.
type Service interface {
	CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*Template, error)
	GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error)
	GetTemplateByCodeName(ctx context.Context, codeName string) (*Template, error)
	FirstTemplate(ctx context.Context) (*Template, error)
	ListTemplates(ctx context.Context) ([]*Template, error)
	CountTemplates(ctx context.Context) (int, error)
	DeleteTemplate(ctx context.Context, id uuid.UUID) error

	AddField(ctx context.Context, req AddFieldRequest) (*Field, error)
	RemoveField(ctx context.Context, fieldID uuid.UUID) error
	ReorderField(ctx context.Context, fieldID uuid.UUID, position int) (*Field, error)
	FieldsOf(ctx context.Context, templateID uuid.UUID) ([]*Field, error)
	FieldByCodeName(ctx context.Context, templateID uuid.UUID, codeName string) (*Field, error)
	JSONSchema(ctx context.Context, templateID uuid.UUID) (map[string]any, error)
}

// TemplateRepository persists template records.
type TemplateRepository interface {
	Create(ctx context.Context, record *Template) (*Template, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Template, error)
	GetByCodeName(ctx context.Context, codeName string) (*Template, error)
	List(ctx context.Context) ([]*Template, error)
	Update(ctx context.Context, record *Template) (*Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FieldRepository persists template field records.
type FieldRepository interface {
	Create(ctx context.Context, record *Field) (*Field, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Field, error)
	ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]*Field, error)
	Update(ctx context.Context, record *Field) (*Field, error)
	UpdatePositions(ctx context.Context, records []*Field) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// PageIndex reports which pages are bound to a template. Implemented by the
// page repository so the catalog can cascade value-row lifecycle without
// depending on the pages package.
type PageIndex interface {
	PageIDsByTemplate(ctx context.Context, templateID uuid.UUID) ([]uuid.UUID, error)
}

// ValueMaterializer creates and destroys typed value rows. Implemented by the
// fieldvalues facade.
type ValueMaterializer interface {
	CreateDefault(ctx context.Context, pageID, fieldID uuid.UUID, t domain.FieldType) error
	Remove(ctx context.Context, pageID, fieldID uuid.UUID, t domain.FieldType) error
}

// CreateTemplateRequest captures the payload required to register a template.
type CreateTemplateRequest struct {
	Name     string
	CodeName string
	ID       uuid.UUID // optional, for deterministic imports
}

// Validate reports the request problems keyed by field. CodeName is optional;
// the registry derives it from the name when blank.
func (r CreateTemplateRequest) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = validation.NewError("templates.create.name_required", "name is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// AddFieldRequest captures the payload required to append a field to a template.
type AddFieldRequest struct {
	TemplateID uuid.UUID
	Name       string
	CodeName   string
	Type       domain.FieldType
	ID         uuid.UUID // optional, for deterministic imports
}

// Validate reports the request problems keyed by field.
func (r AddFieldRequest) Validate() error {
	errs := validation.Errors{}
	if r.TemplateID == uuid.Nil {
		errs["template_id"] = validation.NewError("templates.field.template_required", "template_id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = validation.NewError("templates.field.name_required", "name is required")
	}
	if strings.TrimSpace(r.CodeName) == "" {
		errs["code_name"] = validation.NewError("templates.field.code_name_required", "code_name is required")
	}
	if strings.TrimSpace(string(r.Type)) == "" {
		errs["type_tag"] = validation.NewError("templates.field.type_required", "type_tag is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
