package pages

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sitetree/domain"
	"github.com/goliatone/go-sitetree/templates"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is a node in the global nested-set tree. Left/Right encode the
// pre-order bounds: a page's descendants are exactly the pages whose bounds
// fall strictly inside its own.
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID          uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	TemplateID  uuid.UUID  `bun:"template_id,notnull,type:uuid" json:"template_id"`
	ParentID    *uuid.UUID `bun:"parent_id,type:uuid,nullzero" json:"parent_id,omitempty"`
	Left        int        `bun:"lft,notnull" json:"left"`
	Right       int        `bun:"rgt,notnull" json:"right"`
	Depth       int        `bun:"depth,notnull" json:"depth"`
	Name        string     `bun:"name,notnull" json:"name"`
	Title       string     `bun:"title" json:"title"`
	Keywords    string     `bun:"keywords" json:"keywords"`
	Description string     `bun:"description" json:"description"`
	URL         string     `bun:"url,notnull" json:"url"`
	FullURL     string     `bun:"full_url,notnull" json:"full_url"`
	Active      bool       `bun:"active,notnull,default:true" json:"active"`
	AutoURL     bool       `bun:"auto_url,notnull,default:true" json:"auto_url"`
	Link        string     `bun:"link" json:"link,omitempty"`
	InMenu      bool       `bun:"in_menu,notnull,default:true" json:"in_menu"`
	InMap       bool       `bun:"in_map,notnull,default:true" json:"in_map"`
	InNav       bool       `bun:"in_nav,notnull,default:true" json:"in_nav"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// IsDescendantOf reports whether the page's bounds fall strictly inside the
// other page's bounds.
func (p *Page) IsDescendantOf(other *Page) bool {
	return p != nil && other != nil && p.Left > other.Left && p.Right < other.Right
}

// Service describes page tree management capabilities.
type Service interface {
	Create(ctx context.Context, req CreatePageRequest) (*Page, error)
	Get(ctx context.Context, id uuid.UUID) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	Update(ctx context.Context, req UpdatePageRequest) (*Page, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Move(ctx context.Context, req MovePageRequest) (*Page, error)

	ResolveByPath(ctx context.Context, path string) (*Page, error)
	AncestorsOf(ctx context.Context, id uuid.UUID) ([]*Page, error)
	DescendantsOf(ctx context.Context, id uuid.UUID) ([]*Page, error)
	DynamicLookup(ctx context.Context, pageID uuid.UUID, name string) (Lookup, error)

	Field(ctx context.Context, pageID uuid.UUID, codeName string) (*templates.Field, error)
	GetFieldValue(ctx context.Context, pageID uuid.UUID, codeName string) (any, error)
	SetFieldValue(ctx context.Context, pageID uuid.UUID, codeName string, value any) error
	UpdateFieldsValues(ctx context.Context, pageID uuid.UUID, payload map[string]any, resetBooleans bool) error
	AsStructuredOutput(ctx context.Context, pageID uuid.UUID) (map[string]any, error)
}

// FullURLUpdate pairs a page with its recomputed full URL for bulk persistence.
type FullURLUpdate struct {
	ID      uuid.UUID
	FullURL string
}

// PageRepository persists the page arena. Tree mutations are bulk operations
// so bound renumbering is all-or-nothing.
type PageRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Page, error)
	GetByFullURL(ctx context.Context, fullURL string) (*Page, error)
	First(ctx context.Context) (*Page, error)
	List(ctx context.Context) ([]*Page, error)
	Update(ctx context.Context, record *Page) (*Page, error)
	PageIDsByTemplate(ctx context.Context, templateID uuid.UUID) ([]uuid.UUID, error)

	AncestorsOf(ctx context.Context, page *Page) ([]*Page, error)
	DescendantsOf(ctx context.Context, page *Page) ([]*Page, error)

	// InsertAsLastChild opens a nested-set gap under parent (nil for a new
	// root) and inserts the record with fresh bounds.
	InsertAsLastChild(ctx context.Context, record *Page, parent *Page) (*Page, error)
	// RemoveSubtree deletes the page with its descendants, closes the bound
	// gap, and returns the removed identifiers for value-row cascades.
	RemoveSubtree(ctx context.Context, page *Page) ([]uuid.UUID, error)
	// MoveSubtree relocates the page (and its subtree) under newParent (nil
	// for root level), renumbering bounds and depths.
	MoveSubtree(ctx context.Context, page *Page, newParent *Page) error
	// UpdateFullURLs persists recomputed descendant URLs in bulk.
	UpdateFullURLs(ctx context.Context, updates []FullURLUpdate) error
}

// TemplateRegistry is the narrow read surface the page tree needs from the
// template service.
type TemplateRegistry interface {
	GetTemplate(ctx context.Context, id uuid.UUID) (*templates.Template, error)
	GetTemplateByCodeName(ctx context.Context, codeName string) (*templates.Template, error)
	FirstTemplate(ctx context.Context) (*templates.Template, error)
	FieldsOf(ctx context.Context, templateID uuid.UUID) ([]*templates.Field, error)
	FieldByCodeName(ctx context.Context, templateID uuid.UUID, codeName string) (*templates.Field, error)
	JSONSchema(ctx context.Context, templateID uuid.UUID) (map[string]any, error)
}

// ValueStore is the narrow surface the page tree needs from the typed value
// stores.
type ValueStore interface {
	Get(ctx context.Context, pageID, fieldID uuid.UUID, t domain.FieldType) (any, error)
	Set(ctx context.Context, pageID, fieldID uuid.UUID, t domain.FieldType, value any) error
	ApplyDefaults(ctx context.Context, pageID uuid.UUID, fields map[uuid.UUID]domain.FieldType) error
	RemoveAllForPage(ctx context.Context, pageID uuid.UUID) error
	ResetBooleans(ctx context.Context, pageID uuid.UUID, fieldIDs []uuid.UUID) error
}

// PayloadValidator checks a bulk update payload against a template-derived
// JSON schema.
type PayloadValidator func(schema map[string]any, payload map[string]any) error

// CreatePageRequest captures the payload required to create a page.
type CreatePageRequest struct {
	ID          uuid.UUID // optional, for deterministic imports
	TemplateID  uuid.UUID // optional, defaults to the first registered template
	ParentID    *uuid.UUID
	Name        string
	Title       string
	Keywords    string
	Description string
	URL         string
	AutoURL     bool
	Link        string
	Active      bool
	InMenu      bool
	InMap       bool
	InNav       bool
}

// Validate reports the request problems keyed by field.
func (r CreatePageRequest) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = validation.NewError("pages.create.name_required", "name is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdatePageRequest captures the mutable fields for an existing page. Nil
// pointers leave the current value untouched.
type UpdatePageRequest struct {
	ID          uuid.UUID
	Name        *string
	Title       *string
	Keywords    *string
	Description *string
	URL         *string
	AutoURL     *bool
	Link        *string
	Active      *bool
	InMenu      *bool
	InMap       *bool
	InNav       *bool
}

// Validate reports the request problems keyed by field.
func (r UpdatePageRequest) Validate() error {
	errs := validation.Errors{}
	if r.ID == uuid.Nil {
		errs["id"] = validation.NewError("pages.update.id_required", "page id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MovePageRequest relocates a page (and its subtree) under a new parent.
type MovePageRequest struct {
	PageID      uuid.UUID
	NewParentID *uuid.UUID
}

// Validate reports the request problems keyed by field.
func (r MovePageRequest) Validate() error {
	errs := validation.Errors{}
	if r.PageID == uuid.Nil {
		errs["page_id"] = validation.NewError("pages.move.page_required", "page id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
