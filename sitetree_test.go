package sitetree_test

import (
	"context"
	"errors"
	"testing"

	sitetree "github.com/goliatone/go-sitetree"
	"github.com/goliatone/go-sitetree/domain"
	"github.com/goliatone/go-sitetree/pages"
	"github.com/goliatone/go-sitetree/pkg/testsupport"
	"github.com/goliatone/go-sitetree/templates"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func newSQLModule(t *testing.T) *sitetree.Module {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	db := bun.NewDB(sqlDB, sqlitedialect.New())

	migrations := sitetree.GetMigrationsFS()
	entries, err := migrations.ReadDir("data/sql/migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	for _, entry := range entries {
		script, err := migrations.ReadFile("data/sql/migrations/" + entry.Name())
		if err != nil {
			t.Fatalf("read %s: %v", entry.Name(), err)
		}
		if _, err := db.Exec(string(script)); err != nil {
			t.Fatalf("apply %s: %v", entry.Name(), err)
		}
	}

	cfg := sitetree.DefaultConfig()
	cfg.Logging.Enabled = false
	cfg.Storage.DB = db

	module, err := sitetree.New(cfg)
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	return module
}

func TestModuleEndToEndWithSQL(t *testing.T) {
	ctx := context.Background()
	module := newSQLModule(t)

	catalog := module.Templates()
	tree := module.Pages()

	defaultTmpl, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Default", CodeName: "default"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	product, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{Name: "Product", CodeName: "product"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	for codeName, fieldType := range map[string]domain.FieldType{
		"price":    domain.FieldTypeFloat,
		"featured": domain.FieldTypeBoolean,
		"body":     domain.FieldTypeHTML,
	} {
		if _, err := catalog.AddField(ctx, templates.AddFieldRequest{
			TemplateID: product.ID, Name: codeName, CodeName: codeName, Type: fieldType,
		}); err != nil {
			t.Fatalf("add %s: %v", codeName, err)
		}
	}

	home, err := tree.Create(ctx, pages.CreatePageRequest{TemplateID: defaultTmpl.ID, Name: "Home", Active: true})
	if err != nil {
		t.Fatalf("create home: %v", err)
	}
	shop, err := tree.Create(ctx, pages.CreatePageRequest{TemplateID: defaultTmpl.ID, ParentID: &home.ID, Name: "Магазин", Active: true})
	if err != nil {
		t.Fatalf("create shop: %v", err)
	}
	if shop.FullURL != "/home/magazin" {
		t.Fatalf("shop full url = %q, want /home/magazin", shop.FullURL)
	}

	widget, err := tree.Create(ctx, pages.CreatePageRequest{TemplateID: product.ID, ParentID: &shop.ID, Name: "Widget", Active: true})
	if err != nil {
		t.Fatalf("create widget: %v", err)
	}

	if err := tree.UpdateFieldsValues(ctx, widget.ID, map[string]any{
		"price":    "19.99",
		"featured": true,
	}, false); err != nil {
		t.Fatalf("update values: %v", err)
	}

	price, err := tree.GetFieldValue(ctx, widget.ID, "price")
	if err != nil {
		t.Fatalf("get price: %v", err)
	}
	if price != 19.99 {
		t.Fatalf("price = %v, want 19.99", price)
	}

	// Omitted checkbox with resetBooleans flips featured back to false.
	if err := tree.UpdateFieldsValues(ctx, widget.ID, map[string]any{}, true); err != nil {
		t.Fatalf("reset: %v", err)
	}
	featured, err := tree.GetFieldValue(ctx, widget.ID, "featured")
	if err != nil {
		t.Fatalf("get featured: %v", err)
	}
	if featured != false {
		t.Fatalf("featured = %v, want false", featured)
	}

	resolved, err := tree.ResolveByPath(ctx, "/home/magazin/widget")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.ID != widget.ID {
		t.Fatalf("resolved %s", resolved.Name)
	}

	lookup, err := tree.DynamicLookup(ctx, shop.ID, "products")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if lookup.Kind != pages.LookupPages || len(lookup.Pages) != 1 {
		t.Fatalf("products lookup = %+v", lookup)
	}

	name := "Store"
	renamed, err := tree.Update(ctx, pages.UpdatePageRequest{ID: shop.ID, Name: &name})
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.FullURL != "/home/store" {
		t.Fatalf("renamed full url = %q", renamed.FullURL)
	}
	cascaded, err := tree.Get(ctx, widget.ID)
	if err != nil {
		t.Fatalf("get widget: %v", err)
	}
	if cascaded.FullURL != "/home/store/widget" {
		t.Fatalf("cascaded full url = %q", cascaded.FullURL)
	}

	moved, err := tree.Move(ctx, pages.MovePageRequest{PageID: widget.ID, NewParentID: &home.ID})
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if moved.FullURL != "/home/widget" {
		t.Fatalf("moved full url = %q", moved.FullURL)
	}

	if err := tree.Delete(ctx, shop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := tree.ResolveByPath(ctx, "/home/store"); !errors.Is(err, pages.ErrPathNotFound) {
		t.Fatalf("deleted page should be unresolvable, got %v", err)
	}

	output, err := tree.AsStructuredOutput(ctx, widget.ID)
	if err != nil {
		t.Fatalf("output: %v", err)
	}
	if output["full_url"] != "/home/widget" {
		t.Fatalf("output full_url = %v", output["full_url"])
	}
	if output["price"] != 19.99 {
		t.Fatalf("output price = %v", output["price"])
	}

	doc := []byte(`---
template: product
name: Gadget
parent: /home
price: 42.5
---

The gadget description.
`)
	imported, err := module.Markdown().ImportSource(ctx, doc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported.FullURL != "/home/gadget" {
		t.Fatalf("imported full url = %q", imported.FullURL)
	}
}
