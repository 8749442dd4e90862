package markdown

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-sitetree/domain"
	"github.com/goliatone/go-sitetree/internal/identity"
	"github.com/goliatone/go-sitetree/pages"
	"github.com/goliatone/go-sitetree/pkg/interfaces"
	"github.com/goliatone/go-sitetree/slugs"
	"github.com/goliatone/go-sitetree/templates"
	"github.com/google/uuid"
)

var (
	ErrPagesServiceRequired    = errors.New("markdown importer: pages service is required")
	ErrTemplateServiceRequired = errors.New("markdown importer: template service is required")
	ErrNameMissing             = errors.New("markdown importer: frontmatter name or title is required")
)

// ImporterConfig encapsulates the services a Markdown import writes through.
type ImporterConfig struct {
	Pages     pages.Service
	Templates templates.Service
	Logger    interfaces.Logger
}

// Importer turns Markdown documents with frontmatter into pages. Imports are
// idempotent: a document resolving to an existing full URL updates that page
// instead of creating a duplicate.
type Importer struct {
	pages     pages.Service
	templates templates.Service
	renderer  *Renderer
	logger    interfaces.Logger
}

// NewImporter builds an Importer from the supplied configuration.
func NewImporter(cfg ImporterConfig) *Importer {
	return &Importer{
		pages:     cfg.Pages,
		templates: cfg.Templates,
		renderer:  NewRenderer(),
		logger:    cfg.Logger,
	}
}

// ImportSource parses, creates or updates, and populates a page from raw
// Markdown source.
func (i *Importer) ImportSource(ctx context.Context, source []byte) (*pages.Page, error) {
	doc, err := ParseDocument(source)
	if err != nil {
		return nil, err
	}
	return i.ImportDocument(ctx, doc)
}

// ImportDocument imports a single parsed document.
func (i *Importer) ImportDocument(ctx context.Context, doc *Document) (*pages.Page, error) {
	if i.pages == nil {
		return nil, ErrPagesServiceRequired
	}
	if i.templates == nil {
		return nil, ErrTemplateServiceRequired
	}

	name := strings.TrimSpace(doc.Meta.Name)
	if name == "" {
		name = strings.TrimSpace(doc.Meta.Title)
	}
	if name == "" {
		return nil, ErrNameMissing
	}

	tmpl, err := i.resolveTemplate(ctx, doc.Meta.Template)
	if err != nil {
		return nil, err
	}

	var parentID *uuid.UUID
	parentPath := ""
	if trimmed := strings.TrimSpace(doc.Meta.Parent); trimmed != "" {
		parent, err := i.pages.ResolveByPath(ctx, trimmed)
		if err != nil {
			return nil, fmt.Errorf("markdown importer: resolve parent %s: %w", trimmed, err)
		}
		parentID = &parent.ID
		parentPath = parent.FullURL
	}

	slug := slugs.ForPage(name, doc.Meta.Slug, strings.TrimSpace(doc.Meta.Slug) == "")
	fullURL := parentPath + "/" + slug

	page, err := i.pages.ResolveByPath(ctx, fullURL)
	if err != nil {
		page, err = i.pages.Create(ctx, pages.CreatePageRequest{
			ID:          identity.PageUUID(fullURL),
			TemplateID:  tmpl.ID,
			ParentID:    parentID,
			Name:        name,
			Title:       doc.Meta.Title,
			Keywords:    doc.Meta.Keywords,
			Description: doc.Meta.Description,
			URL:         slug,
			Active:      doc.Meta.Active,
			InMenu:      true,
			InMap:       true,
			InNav:       true,
		})
		if err != nil {
			return nil, fmt.Errorf("markdown importer: create page %s: %w", fullURL, err)
		}
		if i.logger != nil {
			i.logger.Info("page imported", "full_url", page.FullURL, "template", tmpl.CodeName)
		}
	}

	payload, err := i.buildPayload(ctx, tmpl, doc)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := i.pages.UpdateFieldsValues(ctx, page.ID, payload, false); err != nil {
			return nil, fmt.Errorf("markdown importer: field values %s: %w", fullURL, err)
		}
	}
	return page, nil
}

func (i *Importer) resolveTemplate(ctx context.Context, codeName string) (*templates.Template, error) {
	trimmed := strings.TrimSpace(codeName)
	if trimmed == "" {
		tmpl, err := i.templates.FirstTemplate(ctx)
		if err != nil {
			return nil, fmt.Errorf("markdown importer: no template available: %w", err)
		}
		return tmpl, nil
	}
	tmpl, err := i.templates.GetTemplateByCodeName(ctx, trimmed)
	if err != nil {
		return nil, fmt.Errorf("markdown importer: template %s: %w", trimmed, err)
	}
	return tmpl, nil
}

// buildPayload keeps only frontmatter keys that name template fields and
// renders the Markdown body into the document's HTML field.
func (i *Importer) buildPayload(ctx context.Context, tmpl *templates.Template, doc *Document) (map[string]any, error) {
	fields, err := i.templates.FieldsOf(ctx, tmpl.ID)
	if err != nil {
		return nil, err
	}

	payload := make(map[string]any, len(doc.Meta.Fields)+1)
	byCode := make(map[string]*templates.Field, len(fields))
	for _, field := range fields {
		byCode[field.CodeName] = field
	}
	for key, value := range doc.Meta.Fields {
		if _, ok := byCode[key]; ok {
			payload[key] = value
		}
	}

	if body := strings.TrimSpace(string(doc.Body)); body != "" {
		if target := bodyTarget(doc.Meta.BodyField, fields); target != nil {
			rendered, err := i.renderer.Render(doc.Body)
			if err != nil {
				return nil, err
			}
			payload[target.CodeName] = string(rendered)
		}
	}
	return payload, nil
}

// bodyTarget picks the html field the rendered body lands in: the explicitly
// named field when present, otherwise the template's first html field.
func bodyTarget(bodyField string, fields []*templates.Field) *templates.Field {
	named := strings.TrimSpace(bodyField)
	for _, field := range fields {
		if field.Type != domain.FieldTypeHTML {
			continue
		}
		if named == "" || field.CodeName == named {
			return field
		}
	}
	return nil
}
