package pages

import "github.com/goliatone/go-sitetree/templates"

// LookupKind tags the result of a dynamic accessor resolution.
type LookupKind int

const (
	// LookupNone marks a miss. Dynamic lookups never fail hard; a name that
	// resolves to nothing yields an empty result.
	LookupNone LookupKind = iota
	// LookupFieldValue marks a field accessor hit on the page's template.
	LookupFieldValue
	// LookupPage marks a single-page hit: the nearest ancestor bound to the
	// template named by the accessor.
	LookupPage
	// LookupPages marks a multi-page hit: the descendants bound to the
	// template named by the pluralized accessor, in pre-order.
	LookupPages
)

// Lookup is the tagged result of DynamicLookup. Exactly the member matching
// Kind is populated.
type Lookup struct {
	Kind  LookupKind
	Field *templates.Field
	Value any
	Page  *Page
	Pages []*Page
}

// None reports whether the lookup resolved to nothing.
func (l Lookup) None() bool {
	return l.Kind == LookupNone
}
