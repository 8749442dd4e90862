package fieldvalues_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-sitetree/domain"
	"github.com/goliatone/go-sitetree/fieldvalues"
	"github.com/google/uuid"
)

func TestValuesCreateDefaultIsIdempotent(t *testing.T) {
	ctx := context.Background()
	stores := fieldvalues.NewMemoryStores()
	values := fieldvalues.NewValues(stores)

	pageID := uuid.New()
	fieldID := uuid.New()

	if err := values.Set(ctx, pageID, fieldID, domain.FieldTypeString, "hello"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := values.CreateDefault(ctx, pageID, fieldID, domain.FieldTypeString); err != nil {
		t.Fatalf("create default: %v", err)
	}

	got, err := values.Get(ctx, pageID, fieldID, domain.FieldTypeString)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "hello" {
		t.Fatalf("create default overwrote existing value: %v", got)
	}

	store := stores[domain.FieldTypeString].(*fieldvalues.MemoryStore)
	if count := store.RowCount(pageID); count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

func TestValuesGetDefaultsWhenAbsent(t *testing.T) {
	ctx := context.Background()
	values := fieldvalues.NewValues(fieldvalues.NewMemoryStores())

	got, err := values.Get(ctx, uuid.New(), uuid.New(), domain.FieldTypeInteger)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != int64(0) {
		t.Fatalf("missing integer row should read 0, got %v", got)
	}
}

func TestValuesRemoveAllForPage(t *testing.T) {
	ctx := context.Background()
	stores := fieldvalues.NewMemoryStores()
	values := fieldvalues.NewValues(stores)

	pageID := uuid.New()
	otherPage := uuid.New()
	if err := values.Set(ctx, pageID, uuid.New(), domain.FieldTypeString, "a"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := values.Set(ctx, pageID, uuid.New(), domain.FieldTypeBoolean, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := values.Set(ctx, otherPage, uuid.New(), domain.FieldTypeString, "b"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := values.RemoveAllForPage(ctx, pageID); err != nil {
		t.Fatalf("remove all: %v", err)
	}

	for _, fieldType := range domain.FieldTypes() {
		store := stores[fieldType].(*fieldvalues.MemoryStore)
		if count := store.RowCount(pageID); count != 0 {
			t.Fatalf("%s store still holds %d rows", fieldType, count)
		}
	}
	stringStore := stores[domain.FieldTypeString].(*fieldvalues.MemoryStore)
	if count := stringStore.RowCount(otherPage); count != 1 {
		t.Fatalf("other page's rows should survive, got %d", count)
	}
}

func TestValuesResetBooleans(t *testing.T) {
	ctx := context.Background()
	stores := fieldvalues.NewMemoryStores()
	values := fieldvalues.NewValues(stores)

	pageID := uuid.New()
	featured := uuid.New()
	archived := uuid.New()
	for _, fieldID := range []uuid.UUID{featured, archived} {
		if err := values.Set(ctx, pageID, fieldID, domain.FieldTypeBoolean, true); err != nil {
			t.Fatalf("set: %v", err)
		}
	}

	if err := values.ResetBooleans(ctx, pageID, []uuid.UUID{featured, archived}); err != nil {
		t.Fatalf("reset: %v", err)
	}

	for _, fieldID := range []uuid.UUID{featured, archived} {
		got, err := values.Get(ctx, pageID, fieldID, domain.FieldTypeBoolean)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got != false {
			t.Fatalf("boolean should reset to false, got %v", got)
		}
	}
}

func TestValuesSetRejectsMismatch(t *testing.T) {
	ctx := context.Background()
	values := fieldvalues.NewValues(fieldvalues.NewMemoryStores())

	err := values.Set(ctx, uuid.New(), uuid.New(), domain.FieldTypeInteger, "nonsense")
	if err == nil {
		t.Fatal("expected type mismatch error")
	}
}
