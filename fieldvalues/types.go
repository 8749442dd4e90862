package fieldvalues

import (
	"context"
	"time"

	"github.com/goliatone/go-sitetree/domain"
	"github.com/goliatone/go-sitetree/internal/logging"
	"github.com/goliatone/go-sitetree/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// StringValue stores one string field value per (page, field) pair.
type StringValue struct {
	bun.BaseModel `bun:"table:string_values,alias:strv"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	FieldID   uuid.UUID `bun:"field_id,notnull,type:uuid" json:"field_id"`
	Value     string    `bun:"value" json:"value"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// IntegerValue stores one integer field value per (page, field) pair.
type IntegerValue struct {
	bun.BaseModel `bun:"table:integer_values,alias:intv"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	FieldID   uuid.UUID `bun:"field_id,notnull,type:uuid" json:"field_id"`
	Value     int64     `bun:"value" json:"value"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// FloatValue stores one float field value per (page, field) pair.
type FloatValue struct {
	bun.BaseModel `bun:"table:float_values,alias:fltv"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	FieldID   uuid.UUID `bun:"field_id,notnull,type:uuid" json:"field_id"`
	Value     float64   `bun:"value" json:"value"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// BooleanValue stores one boolean field value per (page, field) pair.
type BooleanValue struct {
	bun.BaseModel `bun:"table:boolean_values,alias:boolv"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	FieldID   uuid.UUID `bun:"field_id,notnull,type:uuid" json:"field_id"`
	Value     bool      `bun:"value,notnull,default:false" json:"value"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// TextValue stores one long-form text value per (page, field) pair.
type TextValue struct {
	bun.BaseModel `bun:"table:text_values,alias:txtv"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	FieldID   uuid.UUID `bun:"field_id,notnull,type:uuid" json:"field_id"`
	Value     string    `bun:"value" json:"value"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// DateValue stores one date value per (page, field) pair.
type DateValue struct {
	bun.BaseModel `bun:"table:date_values,alias:datev"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	FieldID   uuid.UUID `bun:"field_id,notnull,type:uuid" json:"field_id"`
	Value     time.Time `bun:"value,nullzero" json:"value"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// HTMLValue stores one rich-text value per (page, field) pair.
type HTMLValue struct {
	bun.BaseModel `bun:"table:html_values,alias:htmlv"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	FieldID   uuid.UUID `bun:"field_id,notnull,type:uuid" json:"field_id"`
	Value     string    `bun:"value" json:"value"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// ImageValue stores one image reference per (page, field) pair.
type ImageValue struct {
	bun.BaseModel `bun:"table:image_values,alias:imgv"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	PageID    uuid.UUID `bun:"page_id,notnull,type:uuid" json:"page_id"`
	FieldID   uuid.UUID `bun:"field_id,notnull,type:uuid" json:"field_id"`
	Value     string    `bun:"value" json:"value"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Store is the uniform contract every value-store variant satisfies.
type Store interface {
	Type() domain.FieldType
	Get(ctx context.Context, pageID, fieldID uuid.UUID) (any, error)
	Set(ctx context.Context, pageID, fieldID uuid.UUID, value any) error
	CreateDefault(ctx context.Context, pageID, fieldID uuid.UUID) error
	Remove(ctx context.Context, pageID, fieldID uuid.UUID) error
	RemoveAllForPage(ctx context.Context, pageID uuid.UUID) error
}

// BooleanResetter is the optional bulk extension the boolean variant exposes
// so an update payload omitting a checkbox reads as unchecked.
type BooleanResetter interface {
	ResetAll(ctx context.Context, pageID uuid.UUID, fieldIDs []uuid.UUID) error
}

// StoreSet bundles one store per field type. The mapping is a static dispatch
// table keyed by the type enum; no string-based reflection is involved.
type StoreSet map[domain.FieldType]Store

// Values routes value operations to the type-appropriate store variant.
type Values struct {
	stores StoreSet
	logger interfaces.Logger
}

// ValuesOption configures the values facade.
type ValuesOption func(*Values)

// WithLogger attaches a logger provider to the facade.
func WithLogger(provider interfaces.LoggerProvider) ValuesOption {
	return func(v *Values) {
		v.logger = logging.ValuesLogger(provider)
	}
}

// NewValues constructs the facade from a store set.
func NewValues(stores StoreSet, opts ...ValuesOption) *Values {
	v := &Values{stores: stores, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Values) store(t domain.FieldType) (Store, error) {
	store, ok := v.stores[t]
	if !ok || store == nil {
		return nil, &StoreUnavailableError{Type: t}
	}
	return store, nil
}

// Get returns the stored value, or the type's zero value when no row exists.
func (v *Values) Get(ctx context.Context, pageID, fieldID uuid.UUID, t domain.FieldType) (any, error) {
	store, err := v.store(t)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, pageID, fieldID)
}

// Set writes the value for (page, field), coercing to the declared type.
func (v *Values) Set(ctx context.Context, pageID, fieldID uuid.UUID, t domain.FieldType, value any) error {
	store, err := v.store(t)
	if err != nil {
		return err
	}
	return store.Set(ctx, pageID, fieldID, value)
}

// CreateDefault materializes a defaulted row; safe to call twice.
func (v *Values) CreateDefault(ctx context.Context, pageID, fieldID uuid.UUID, t domain.FieldType) error {
	store, err := v.store(t)
	if err != nil {
		return err
	}
	return store.CreateDefault(ctx, pageID, fieldID)
}

// ApplyDefaults materializes a defaulted row for every listed field, routing
// each to its type's store. Safe to repeat.
func (v *Values) ApplyDefaults(ctx context.Context, pageID uuid.UUID, fields map[uuid.UUID]domain.FieldType) error {
	for fieldID, t := range fields {
		if err := v.CreateDefault(ctx, pageID, fieldID, t); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes the row when present.
func (v *Values) Remove(ctx context.Context, pageID, fieldID uuid.UUID, t domain.FieldType) error {
	store, err := v.store(t)
	if err != nil {
		return err
	}
	return store.Remove(ctx, pageID, fieldID)
}

// RemoveAllForPage drops every value row owned by the page, across all stores.
func (v *Values) RemoveAllForPage(ctx context.Context, pageID uuid.UUID) error {
	for _, t := range domain.FieldTypes() {
		store, ok := v.stores[t]
		if !ok || store == nil {
			continue
		}
		if err := store.RemoveAllForPage(ctx, pageID); err != nil {
			return err
		}
	}
	return nil
}

// ResetBooleans sets every supplied boolean field of the page to false.
func (v *Values) ResetBooleans(ctx context.Context, pageID uuid.UUID, fieldIDs []uuid.UUID) error {
	if len(fieldIDs) == 0 {
		return nil
	}
	store, err := v.store(domain.FieldTypeBoolean)
	if err != nil {
		return err
	}
	if resetter, ok := store.(BooleanResetter); ok {
		return resetter.ResetAll(ctx, pageID, fieldIDs)
	}
	for _, fieldID := range fieldIDs {
		if err := store.Set(ctx, pageID, fieldID, false); err != nil {
			return err
		}
	}
	return nil
}
