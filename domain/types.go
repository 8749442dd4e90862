package domain

import "strings"

// FieldType identifies which value store backs a template field.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInteger FieldType = "integer"
	FieldTypeFloat   FieldType = "float"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeText    FieldType = "text"
	FieldTypeDate    FieldType = "date"
	FieldTypeHTML    FieldType = "html"
	FieldTypeImage   FieldType = "image"
)

// FieldTypes lists every supported field type in a stable order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeString,
		FieldTypeInteger,
		FieldTypeFloat,
		FieldTypeBoolean,
		FieldTypeText,
		FieldTypeDate,
		FieldTypeHTML,
		FieldTypeImage,
	}
}

// ParseFieldType normalizes and validates a field type tag.
func ParseFieldType(value string) (FieldType, bool) {
	tag := FieldType(strings.ToLower(strings.TrimSpace(value)))
	switch tag {
	case FieldTypeString, FieldTypeInteger, FieldTypeFloat, FieldTypeBoolean,
		FieldTypeText, FieldTypeDate, FieldTypeHTML, FieldTypeImage:
		return tag, true
	}
	return "", false
}

func (t FieldType) String() string {
	return string(t)
}

// Valid reports whether the tag names a known field type.
func (t FieldType) Valid() bool {
	_, ok := ParseFieldType(string(t))
	return ok
}
