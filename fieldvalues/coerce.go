package fieldvalues

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-sitetree/domain"
)

const dateLayout = "2006-01-02"

// Coerce converts an arbitrary input into the native representation for the
// field type: string, int64, float64, bool, or time.Time. Inputs that cannot
// be converted fail with a TypeMismatchError.
func Coerce(t domain.FieldType, value any) (any, error) {
	if value == nil {
		return ZeroValue(t), nil
	}
	switch t {
	case domain.FieldTypeString, domain.FieldTypeText, domain.FieldTypeHTML, domain.FieldTypeImage:
		return coerceString(t, value)
	case domain.FieldTypeInteger:
		return coerceInteger(value)
	case domain.FieldTypeFloat:
		return coerceFloat(value)
	case domain.FieldTypeBoolean:
		return coerceBoolean(value)
	case domain.FieldTypeDate:
		return coerceDate(value)
	}
	return nil, &StoreUnavailableError{Type: t}
}

// ZeroValue returns the defaulted value stored when a row is materialized.
func ZeroValue(t domain.FieldType) any {
	switch t {
	case domain.FieldTypeInteger:
		return int64(0)
	case domain.FieldTypeFloat:
		return float64(0)
	case domain.FieldTypeBoolean:
		return false
	case domain.FieldTypeDate:
		return time.Time{}
	default:
		return ""
	}
}

func coerceString(t domain.FieldType, value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return nil, &TypeMismatchError{Type: t, Value: value}
}

func coerceInteger(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int64(v), nil
		}
	case float32:
		if float64(v) == math.Trunc(float64(v)) {
			return int64(v), nil
		}
	case string:
		if parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return parsed, nil
		}
	}
	return nil, &TypeMismatchError{Type: domain.FieldTypeInteger, Value: value}
}

func coerceFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return parsed, nil
		}
	}
	return nil, &TypeMismatchError{Type: domain.FieldTypeFloat, Value: value}
}

func coerceBoolean(value any) (any, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case int:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case float64:
		return v != 0, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "on", "yes":
			return true, nil
		case "false", "0", "off", "no", "":
			return false, nil
		}
	}
	return nil, &TypeMismatchError{Type: domain.FieldTypeBoolean, Value: value}
}

func coerceDate(value any) (any, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return time.Time{}, nil
		}
		if parsed, err := time.Parse(time.RFC3339, trimmed); err == nil {
			return parsed, nil
		}
		if parsed, err := time.Parse(dateLayout, trimmed); err == nil {
			return parsed, nil
		}
	}
	return nil, &TypeMismatchError{Type: domain.FieldTypeDate, Value: value}
}
