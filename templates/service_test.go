package templates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-sitetree/domain"
	"github.com/goliatone/go-sitetree/fieldvalues"
	"github.com/goliatone/go-sitetree/templates"
	"github.com/google/uuid"
)

type staticPageIndex struct {
	ids []uuid.UUID
}

func (s staticPageIndex) PageIDsByTemplate(context.Context, uuid.UUID) ([]uuid.UUID, error) {
	return s.ids, nil
}

func newCatalog(t *testing.T, opts ...templates.ServiceOption) templates.Service {
	t.Helper()
	return templates.NewService(
		templates.NewMemoryTemplateRepository(),
		templates.NewMemoryFieldRepository(),
		opts...,
	)
}

func TestCreateTemplateDerivesCodeName(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)

	created, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Landing Page"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CodeName != "landing_page" {
		t.Fatalf("code name = %q, want landing_page", created.CodeName)
	}
}

func TestCreateTemplateRejectsDuplicateCodeName(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)

	if _, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Product", CodeName: "product"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Product Two", CodeName: "product"})
	if !errors.Is(err, templates.ErrTemplateExists) {
		t.Fatalf("expected ErrTemplateExists, got %v", err)
	}
}

func TestFirstTemplateReturnsOldest(t *testing.T) {
	ctx := context.Background()
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	catalog := newCatalog(t, templates.WithClock(func() time.Time {
		current = current.Add(time.Minute)
		return current
	}))

	if _, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "First", CodeName: "first"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Second", CodeName: "second"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	first, err := catalog.FirstTemplate(ctx)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	if first.CodeName != "first" {
		t.Fatalf("first template = %q, want first", first.CodeName)
	}
}

func TestAddFieldRejectsReservedNames(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)

	tmpl, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Product", CodeName: "product"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	cases := []struct {
		name     string
		codeName string
	}{
		{"direct hit", "children"},
		{"singular of reserved plural", "urls"},
		{"plural of candidate reserved", "keyword"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := catalog.AddField(ctx, templates.AddFieldRequest{
				TemplateID: tmpl.ID,
				Name:       "Broken",
				CodeName:   tc.codeName,
				Type:       domain.FieldTypeString,
			})
			var reserved *templates.ReservedNameError
			if !errors.As(err, &reserved) {
				t.Fatalf("expected ReservedNameError for %q, got %v", tc.codeName, err)
			}
		})
	}
}

func TestAddFieldRejectsDuplicateCodeName(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)

	tmpl, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Product", CodeName: "product"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := catalog.AddField(ctx, templates.AddFieldRequest{
		TemplateID: tmpl.ID, Name: "Price", CodeName: "price", Type: domain.FieldTypeFloat,
	}); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err = catalog.AddField(ctx, templates.AddFieldRequest{
		TemplateID: tmpl.ID, Name: "Price Again", CodeName: "price", Type: domain.FieldTypeString,
	})
	if !errors.Is(err, templates.ErrCodeNameTaken) {
		t.Fatalf("expected ErrCodeNameTaken, got %v", err)
	}

	// Uniqueness is scoped per template.
	other, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Service", CodeName: "service"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := catalog.AddField(ctx, templates.AddFieldRequest{
		TemplateID: other.ID, Name: "Price", CodeName: "price", Type: domain.FieldTypeFloat,
	}); err != nil {
		t.Fatalf("same code name on another template should succeed, got %v", err)
	}
}

func TestRequestValidation(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)

	if _, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "   "}); !errors.Is(err, templates.ErrNameRequired) {
		t.Fatalf("blank template name: expected ErrNameRequired, got %v", err)
	}

	tmpl, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Product"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := catalog.AddField(ctx, templates.AddFieldRequest{
		TemplateID: tmpl.ID, Name: " ", CodeName: "price", Type: domain.FieldTypeFloat,
	}); !errors.Is(err, templates.ErrNameRequired) {
		t.Fatalf("blank field name: expected ErrNameRequired, got %v", err)
	}
	if _, err := catalog.AddField(ctx, templates.AddFieldRequest{
		TemplateID: tmpl.ID, Name: "Price", Type: domain.FieldTypeFloat,
	}); !errors.Is(err, templates.ErrCodeNameRequired) {
		t.Fatalf("blank code name: expected ErrCodeNameRequired, got %v", err)
	}
	if _, err := catalog.AddField(ctx, templates.AddFieldRequest{
		TemplateID: tmpl.ID, Name: "Price", CodeName: "price",
	}); !errors.Is(err, templates.ErrFieldTypeUnknown) {
		t.Fatalf("blank type: expected ErrFieldTypeUnknown, got %v", err)
	}
	if _, err := catalog.AddField(ctx, templates.AddFieldRequest{
		Name: "Price", CodeName: "price", Type: domain.FieldTypeFloat,
	}); !errors.Is(err, templates.ErrTemplateNotFound) {
		t.Fatalf("missing template: expected ErrTemplateNotFound, got %v", err)
	}
}

func TestAddFieldMaterializesRowsForBoundPages(t *testing.T) {
	ctx := context.Background()
	pageIDs := []uuid.UUID{uuid.New(), uuid.New()}
	stores := fieldvalues.NewMemoryStores()
	values := fieldvalues.NewValues(stores)
	catalog := newCatalog(t,
		templates.WithPageIndex(staticPageIndex{ids: pageIDs}),
		templates.WithValueMaterializer(values),
	)

	tmpl, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Product", CodeName: "product"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	field, err := catalog.AddField(ctx, templates.AddFieldRequest{
		TemplateID: tmpl.ID, Name: "Price", CodeName: "price", Type: domain.FieldTypeFloat,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	floatStore := stores[domain.FieldTypeFloat].(*fieldvalues.MemoryStore)
	for _, pageID := range pageIDs {
		if !floatStore.HasRow(pageID, field.ID) {
			t.Fatalf("page %s missing defaulted row", pageID)
		}
	}

	if err := catalog.RemoveField(ctx, field.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	for _, pageID := range pageIDs {
		if floatStore.HasRow(pageID, field.ID) {
			t.Fatalf("page %s still has row after field removal", pageID)
		}
	}
}

func TestRemoveFieldCompactsPositions(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)

	tmpl, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Product", CodeName: "product"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var middle *templates.Field
	for i, codeName := range []string{"price", "sku", "weight"} {
		field, err := catalog.AddField(ctx, templates.AddFieldRequest{
			TemplateID: tmpl.ID, Name: codeName, CodeName: codeName, Type: domain.FieldTypeString,
		})
		if err != nil {
			t.Fatalf("add %s: %v", codeName, err)
		}
		if i == 1 {
			middle = field
		}
	}

	if err := catalog.RemoveField(ctx, middle.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}

	fields, err := catalog.FieldsOf(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(fields))
	}
	for i, field := range fields {
		if field.Position != i {
			t.Fatalf("field %s at position %d, want %d", field.CodeName, field.Position, i)
		}
	}
}

func TestReorderField(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)

	tmpl, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Product", CodeName: "product"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	var last *templates.Field
	for _, codeName := range []string{"price", "sku", "weight"} {
		last, err = catalog.AddField(ctx, templates.AddFieldRequest{
			TemplateID: tmpl.ID, Name: codeName, CodeName: codeName, Type: domain.FieldTypeString,
		})
		if err != nil {
			t.Fatalf("add %s: %v", codeName, err)
		}
	}

	moved, err := catalog.ReorderField(ctx, last.ID, 0)
	if err != nil {
		t.Fatalf("reorder: %v", err)
	}
	if moved.Position != 0 {
		t.Fatalf("moved position = %d, want 0", moved.Position)
	}

	fields, err := catalog.FieldsOf(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	order := []string{"weight", "price", "sku"}
	for i, want := range order {
		if fields[i].CodeName != want {
			t.Fatalf("position %d = %q, want %q", i, fields[i].CodeName, want)
		}
	}
}

func TestJSONSchemaReflectsFieldTypes(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)

	tmpl, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Product", CodeName: "product"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for codeName, fieldType := range map[string]domain.FieldType{
		"price":    domain.FieldTypeFloat,
		"stock":    domain.FieldTypeInteger,
		"featured": domain.FieldTypeBoolean,
		"body":     domain.FieldTypeHTML,
	} {
		if _, err := catalog.AddField(ctx, templates.AddFieldRequest{
			TemplateID: tmpl.ID, Name: codeName, CodeName: codeName, Type: fieldType,
		}); err != nil {
			t.Fatalf("add %s: %v", codeName, err)
		}
	}

	schema, err := catalog.JSONSchema(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if schema["type"] != "object" {
		t.Fatalf("schema type = %v", schema["type"])
	}
	properties, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties missing: %v", schema)
	}
	for _, codeName := range []string{"price", "stock", "featured", "body"} {
		if _, ok := properties[codeName]; !ok {
			t.Fatalf("schema missing property %q", codeName)
		}
	}
	if schema["additionalProperties"] != false {
		t.Fatal("schema should reject unknown properties")
	}
}
