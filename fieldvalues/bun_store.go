package fieldvalues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-sitetree/domain"
	"github.com/goliatone/go-sitetree/internal/dbtx"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// valueHandlers adapts one typed value model to the generic bun store, in the
// spirit of go-repository-bun's ModelHandlers.
type valueHandlers[T any] struct {
	NewRow   func() T
	SetKeys  func(row T, id, pageID, fieldID uuid.UUID)
	SetValue func(row T, value any)
	Value    func(row T) any
	Touch    func(row T, now time.Time)
}

// BunStore persists one value-table variant through bun.
type BunStore[T any] struct {
	db        *bun.DB
	fieldType domain.FieldType
	handlers  valueHandlers[T]
}

func newBunStore[T any](db *bun.DB, t domain.FieldType, handlers valueHandlers[T]) *BunStore[T] {
	return &BunStore[T]{db: db, fieldType: t, handlers: handlers}
}

// Type reports which field type the store backs.
func (s *BunStore[T]) Type() domain.FieldType {
	return s.fieldType
}

// idb resolves the connection for the call: the transaction carried by the
// context when one is open, the shared database otherwise.
func (s *BunStore[T]) idb(ctx context.Context) bun.IDB {
	return dbtx.Resolve(ctx, s.db)
}

// Get returns the stored value, or the type's zero value when no row exists.
func (s *BunStore[T]) Get(ctx context.Context, pageID, fieldID uuid.UUID) (any, error) {
	row := s.handlers.NewRow()
	err := s.idb(ctx).NewSelect().
		Model(row).
		Where("page_id = ?", pageID).
		Where("field_id = ?", fieldID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return ZeroValue(s.fieldType), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s value store: %w", s.fieldType, err)
	}
	return s.handlers.Value(row), nil
}

// Set writes the coerced value for (page, field), inserting the row when the
// lifecycle guarantee was violated and none exists yet.
func (s *BunStore[T]) Set(ctx context.Context, pageID, fieldID uuid.UUID, value any) error {
	coerced, err := Coerce(s.fieldType, value)
	if err != nil {
		if mismatch := new(TypeMismatchError); errors.As(err, &mismatch) {
			mismatch.FieldID = fieldID
		}
		return err
	}

	return s.idb(ctx).RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		row := s.handlers.NewRow()
		s.handlers.SetValue(row, coerced)
		s.handlers.Touch(row, now)
		res, err := tx.NewUpdate().
			Model(row).
			Column("value", "updated_at").
			Where("page_id = ?", pageID).
			Where("field_id = ?", fieldID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("%s value store: %w", s.fieldType, err)
		}
		if affected, err := res.RowsAffected(); err == nil && affected > 0 {
			return nil
		}

		inserted := s.handlers.NewRow()
		s.handlers.SetKeys(inserted, uuid.New(), pageID, fieldID)
		s.handlers.SetValue(inserted, coerced)
		s.handlers.Touch(inserted, now)
		if _, err := tx.NewInsert().Model(inserted).Exec(ctx); err != nil {
			return fmt.Errorf("%s value store: %w", s.fieldType, err)
		}
		return nil
	})
}

// CreateDefault inserts a defaulted row unless one already exists for the pair.
func (s *BunStore[T]) CreateDefault(ctx context.Context, pageID, fieldID uuid.UUID) error {
	return s.idb(ctx).RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().
			Model(s.handlers.NewRow()).
			Where("page_id = ?", pageID).
			Where("field_id = ?", fieldID).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("%s value store: %w", s.fieldType, err)
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		row := s.handlers.NewRow()
		s.handlers.SetKeys(row, uuid.New(), pageID, fieldID)
		s.handlers.SetValue(row, ZeroValue(s.fieldType))
		s.handlers.Touch(row, now)
		if _, err := tx.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("%s value store: %w", s.fieldType, err)
		}
		return nil
	})
}

// Remove deletes the row for the pair; no-op when absent.
func (s *BunStore[T]) Remove(ctx context.Context, pageID, fieldID uuid.UUID) error {
	if _, err := s.idb(ctx).NewDelete().
		Model(s.handlers.NewRow()).
		Where("page_id = ?", pageID).
		Where("field_id = ?", fieldID).
		Exec(ctx); err != nil {
		return fmt.Errorf("%s value store: %w", s.fieldType, err)
	}
	return nil
}

// RemoveAllForPage drops every row owned by the page.
func (s *BunStore[T]) RemoveAllForPage(ctx context.Context, pageID uuid.UUID) error {
	if _, err := s.idb(ctx).NewDelete().
		Model(s.handlers.NewRow()).
		Where("page_id = ?", pageID).
		Exec(ctx); err != nil {
		return fmt.Errorf("%s value store: %w", s.fieldType, err)
	}
	return nil
}

// BunBooleanStore extends the generic store with the bulk reset used before a
// full field-set update.
type BunBooleanStore struct {
	*BunStore[*BooleanValue]
}

// ResetAll sets every supplied boolean field of the page to false in one statement.
func (s *BunBooleanStore) ResetAll(ctx context.Context, pageID uuid.UUID, fieldIDs []uuid.UUID) error {
	if len(fieldIDs) == 0 {
		return nil
	}
	if _, err := s.idb(ctx).NewUpdate().
		Model((*BooleanValue)(nil)).
		Set("value = ?", false).
		Set("updated_at = ?", time.Now().UTC()).
		Where("page_id = ?", pageID).
		Where("field_id IN (?)", bun.In(fieldIDs)).
		Exec(ctx); err != nil {
		return fmt.Errorf("boolean value store: %w", err)
	}
	return nil
}

// NewBunStores builds the full dispatch table backed by bun, one table per type.
func NewBunStores(db *bun.DB) StoreSet {
	return StoreSet{
		domain.FieldTypeString: newBunStore(db, domain.FieldTypeString, valueHandlers[*StringValue]{
			NewRow: func() *StringValue { return &StringValue{} },
			SetKeys: func(row *StringValue, id, pageID, fieldID uuid.UUID) {
				row.ID, row.PageID, row.FieldID = id, pageID, fieldID
			},
			SetValue: func(row *StringValue, value any) { row.Value, _ = value.(string) },
			Value:    func(row *StringValue) any { return row.Value },
			Touch:    func(row *StringValue, now time.Time) { touchTimestamps(&row.CreatedAt, &row.UpdatedAt, now) },
		}),
		domain.FieldTypeInteger: newBunStore(db, domain.FieldTypeInteger, valueHandlers[*IntegerValue]{
			NewRow: func() *IntegerValue { return &IntegerValue{} },
			SetKeys: func(row *IntegerValue, id, pageID, fieldID uuid.UUID) {
				row.ID, row.PageID, row.FieldID = id, pageID, fieldID
			},
			SetValue: func(row *IntegerValue, value any) { row.Value, _ = value.(int64) },
			Value:    func(row *IntegerValue) any { return row.Value },
			Touch:    func(row *IntegerValue, now time.Time) { touchTimestamps(&row.CreatedAt, &row.UpdatedAt, now) },
		}),
		domain.FieldTypeFloat: newBunStore(db, domain.FieldTypeFloat, valueHandlers[*FloatValue]{
			NewRow: func() *FloatValue { return &FloatValue{} },
			SetKeys: func(row *FloatValue, id, pageID, fieldID uuid.UUID) {
				row.ID, row.PageID, row.FieldID = id, pageID, fieldID
			},
			SetValue: func(row *FloatValue, value any) { row.Value, _ = value.(float64) },
			Value:    func(row *FloatValue) any { return row.Value },
			Touch:    func(row *FloatValue, now time.Time) { touchTimestamps(&row.CreatedAt, &row.UpdatedAt, now) },
		}),
		domain.FieldTypeBoolean: &BunBooleanStore{
			BunStore: newBunStore(db, domain.FieldTypeBoolean, valueHandlers[*BooleanValue]{
				NewRow: func() *BooleanValue { return &BooleanValue{} },
				SetKeys: func(row *BooleanValue, id, pageID, fieldID uuid.UUID) {
					row.ID, row.PageID, row.FieldID = id, pageID, fieldID
				},
				SetValue: func(row *BooleanValue, value any) { row.Value, _ = value.(bool) },
				Value:    func(row *BooleanValue) any { return row.Value },
				Touch:    func(row *BooleanValue, now time.Time) { touchTimestamps(&row.CreatedAt, &row.UpdatedAt, now) },
			}),
		},
		domain.FieldTypeText: newBunStore(db, domain.FieldTypeText, valueHandlers[*TextValue]{
			NewRow: func() *TextValue { return &TextValue{} },
			SetKeys: func(row *TextValue, id, pageID, fieldID uuid.UUID) {
				row.ID, row.PageID, row.FieldID = id, pageID, fieldID
			},
			SetValue: func(row *TextValue, value any) { row.Value, _ = value.(string) },
			Value:    func(row *TextValue) any { return row.Value },
			Touch:    func(row *TextValue, now time.Time) { touchTimestamps(&row.CreatedAt, &row.UpdatedAt, now) },
		}),
		domain.FieldTypeDate: newBunStore(db, domain.FieldTypeDate, valueHandlers[*DateValue]{
			NewRow: func() *DateValue { return &DateValue{} },
			SetKeys: func(row *DateValue, id, pageID, fieldID uuid.UUID) {
				row.ID, row.PageID, row.FieldID = id, pageID, fieldID
			},
			SetValue: func(row *DateValue, value any) { row.Value, _ = value.(time.Time) },
			Value:    func(row *DateValue) any { return row.Value },
			Touch:    func(row *DateValue, now time.Time) { touchTimestamps(&row.CreatedAt, &row.UpdatedAt, now) },
		}),
		domain.FieldTypeHTML: newBunStore(db, domain.FieldTypeHTML, valueHandlers[*HTMLValue]{
			NewRow: func() *HTMLValue { return &HTMLValue{} },
			SetKeys: func(row *HTMLValue, id, pageID, fieldID uuid.UUID) {
				row.ID, row.PageID, row.FieldID = id, pageID, fieldID
			},
			SetValue: func(row *HTMLValue, value any) { row.Value, _ = value.(string) },
			Value:    func(row *HTMLValue) any { return row.Value },
			Touch:    func(row *HTMLValue, now time.Time) { touchTimestamps(&row.CreatedAt, &row.UpdatedAt, now) },
		}),
		domain.FieldTypeImage: newBunStore(db, domain.FieldTypeImage, valueHandlers[*ImageValue]{
			NewRow: func() *ImageValue { return &ImageValue{} },
			SetKeys: func(row *ImageValue, id, pageID, fieldID uuid.UUID) {
				row.ID, row.PageID, row.FieldID = id, pageID, fieldID
			},
			SetValue: func(row *ImageValue, value any) { row.Value, _ = value.(string) },
			Value:    func(row *ImageValue) any { return row.Value },
			Touch:    func(row *ImageValue, now time.Time) { touchTimestamps(&row.CreatedAt, &row.UpdatedAt, now) },
		}),
	}
}

func touchTimestamps(createdAt, updatedAt *time.Time, now time.Time) {
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}
