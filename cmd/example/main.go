package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	sitetree "github.com/goliatone/go-sitetree"
	"github.com/goliatone/go-sitetree/domain"
	"github.com/goliatone/go-sitetree/pages"
	"github.com/goliatone/go-sitetree/templates"
)

func main() {
	ctx := context.Background()

	cfg := sitetree.DefaultConfig()
	module, err := sitetree.New(cfg)
	if err != nil {
		log.Fatalf("sitetree: %v", err)
	}

	catalog := module.Templates()
	tree := module.Pages()

	defaultTmpl, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{
		Name:     "Default",
		CodeName: "default",
	})
	if err != nil {
		log.Fatalf("create template: %v", err)
	}

	product, err := catalog.CreateTemplate(ctx, templates.CreateTemplateRequest{
		Name:     "Product",
		CodeName: "product",
	})
	if err != nil {
		log.Fatalf("create template: %v", err)
	}

	fields := []templates.AddFieldRequest{
		{TemplateID: product.ID, Name: "Price", CodeName: "price", Type: domain.FieldTypeFloat},
		{TemplateID: product.ID, Name: "Featured", CodeName: "featured", Type: domain.FieldTypeBoolean},
		{TemplateID: product.ID, Name: "Body", CodeName: "body", Type: domain.FieldTypeHTML},
	}
	for _, req := range fields {
		if _, err := catalog.AddField(ctx, req); err != nil {
			log.Fatalf("add field %s: %v", req.CodeName, err)
		}
	}

	home, err := tree.Create(ctx, pages.CreatePageRequest{
		TemplateID: defaultTmpl.ID,
		Name:       "Home",
		Active:     true,
	})
	if err != nil {
		log.Fatalf("create page: %v", err)
	}

	shop, err := tree.Create(ctx, pages.CreatePageRequest{
		TemplateID: defaultTmpl.ID,
		ParentID:   &home.ID,
		Name:       "Магазин",
		Active:     true,
	})
	if err != nil {
		log.Fatalf("create page: %v", err)
	}

	widget, err := tree.Create(ctx, pages.CreatePageRequest{
		TemplateID: product.ID,
		ParentID:   &shop.ID,
		Name:       "Widget",
		Active:     true,
	})
	if err != nil {
		log.Fatalf("create page: %v", err)
	}

	if err := tree.UpdateFieldsValues(ctx, widget.ID, map[string]any{
		"price":    "19.99",
		"featured": true,
	}, false); err != nil {
		log.Fatalf("update values: %v", err)
	}

	resolved, err := tree.ResolveByPath(ctx, widget.FullURL)
	if err != nil {
		log.Fatalf("resolve: %v", err)
	}
	fmt.Printf("resolved %s (template %s)\n", resolved.FullURL, product.CodeName)

	lookup, err := tree.DynamicLookup(ctx, shop.ID, "products")
	if err != nil {
		log.Fatalf("lookup: %v", err)
	}
	fmt.Printf("shop has %d products\n", len(lookup.Pages))

	doc := []byte(`---
template: product
name: Gadget
parent: ` + shop.FullURL + `
price: 42.5
featured: true
---

# Gadget

The **better** widget.
`)
	imported, err := module.Markdown().ImportSource(ctx, doc)
	if err != nil {
		log.Fatalf("import: %v", err)
	}

	output, err := tree.AsStructuredOutput(ctx, imported.ID)
	if err != nil {
		log.Fatalf("structured output: %v", err)
	}
	encoded, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(encoded))
}
