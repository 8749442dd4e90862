package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions
// (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// TemplateUUID derives the identifier for an imported template.
func TemplateUUID(codeName string) uuid.UUID {
	return UUID("go-sitetree:template:" + strings.ToLower(strings.TrimSpace(codeName)))
}

// FieldUUID derives the identifier for an imported template field.
func FieldUUID(templateID uuid.UUID, codeName string) uuid.UUID {
	return UUID("go-sitetree:field:" + templateID.String() + ":" + strings.ToLower(strings.TrimSpace(codeName)))
}

// PageUUID derives the identifier for an imported page from its full URL.
func PageUUID(fullURL string) uuid.UUID {
	return UUID("go-sitetree:page:" + strings.TrimSpace(fullURL))
}
