package fieldvalues_test

import (
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-sitetree/domain"
	"github.com/goliatone/go-sitetree/fieldvalues"
)

func TestCoerceInteger(t *testing.T) {
	if got, err := fieldvalues.Coerce(domain.FieldTypeInteger, "42"); err != nil || got != int64(42) {
		t.Fatalf("string input: got %v, err %v", got, err)
	}
	if got, err := fieldvalues.Coerce(domain.FieldTypeInteger, 7.0); err != nil || got != int64(7) {
		t.Fatalf("integral float: got %v, err %v", got, err)
	}
	if _, err := fieldvalues.Coerce(domain.FieldTypeInteger, 7.5); !errors.Is(err, fieldvalues.ErrTypeMismatch) {
		t.Fatalf("fractional float should fail, got %v", err)
	}
	if _, err := fieldvalues.Coerce(domain.FieldTypeInteger, "not a number"); !errors.Is(err, fieldvalues.ErrTypeMismatch) {
		t.Fatalf("garbage string should fail, got %v", err)
	}
}

func TestCoerceFloat(t *testing.T) {
	got, err := fieldvalues.Coerce(domain.FieldTypeFloat, "19.99")
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	if got != 19.99 {
		t.Fatalf("got %v, want 19.99", got)
	}
}

func TestCoerceBoolean(t *testing.T) {
	truthy := []any{true, 1, "true", "1", "on", "yes"}
	for _, input := range truthy {
		got, err := fieldvalues.Coerce(domain.FieldTypeBoolean, input)
		if err != nil || got != true {
			t.Fatalf("Coerce(boolean, %v) = %v, %v", input, got, err)
		}
	}
	falsy := []any{false, 0, "false", "0", "off", ""}
	for _, input := range falsy {
		got, err := fieldvalues.Coerce(domain.FieldTypeBoolean, input)
		if err != nil || got != false {
			t.Fatalf("Coerce(boolean, %v) = %v, %v", input, got, err)
		}
	}
	if _, err := fieldvalues.Coerce(domain.FieldTypeBoolean, "maybe"); !errors.Is(err, fieldvalues.ErrTypeMismatch) {
		t.Fatalf("ambiguous string should fail, got %v", err)
	}
}

func TestCoerceDate(t *testing.T) {
	got, err := fieldvalues.Coerce(domain.FieldTypeDate, "2024-06-01")
	if err != nil {
		t.Fatalf("coerce: %v", err)
	}
	parsed, ok := got.(time.Time)
	if !ok || parsed.Year() != 2024 || parsed.Month() != time.June {
		t.Fatalf("got %v", got)
	}
}

func TestCoerceNilDefaults(t *testing.T) {
	for _, fieldType := range domain.FieldTypes() {
		got, err := fieldvalues.Coerce(fieldType, nil)
		if err != nil {
			t.Fatalf("Coerce(%s, nil): %v", fieldType, err)
		}
		if got != fieldvalues.ZeroValue(fieldType) {
			t.Fatalf("Coerce(%s, nil) = %v, want zero value", fieldType, got)
		}
	}
}
