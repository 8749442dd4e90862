package pages

import (
	"context"
	"strings"
	"time"

	pluralize "github.com/gertd/go-pluralize"
	"github.com/goliatone/go-sitetree/domain"
	"github.com/goliatone/go-sitetree/internal/logging"
	"github.com/goliatone/go-sitetree/internal/validation"
	"github.com/goliatone/go-sitetree/pkg/interfaces"
	"github.com/goliatone/go-sitetree/slugs"
	"github.com/goliatone/go-sitetree/templates"
	"github.com/google/uuid"
)

// IDGenerator produces identifiers for new records.
type IDGenerator func() uuid.UUID

// ServiceOption configures the page service.
type ServiceOption func(*service)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

// WithLogger attaches a logger provider to the service.
func WithLogger(provider interfaces.LoggerProvider) ServiceOption {
	return func(s *service) {
		s.logger = logging.PagesLogger(provider)
	}
}

// WithPluralize overrides the pluralization client used by dynamic lookup.
// Share the catalog's client so both sides apply the same linguistic rule.
func WithPluralize(client *pluralize.Client) ServiceOption {
	return func(s *service) {
		if client != nil {
			s.plural = client
		}
	}
}

// WithPayloadValidator overrides the schema validation applied to bulk field
// updates. Pass nil to disable validation.
func WithPayloadValidator(validate PayloadValidator) ServiceOption {
	return func(s *service) {
		s.validate = validate
	}
}

// WithTransactor wires the unit-of-work runner so every mutating operation
// commits its tree renumbering, URL cascade, and value-row changes together.
func WithTransactor(tx Transactor) ServiceOption {
	return func(s *service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

type service struct {
	repo     PageRepository
	registry TemplateRegistry
	values   ValueStore
	plural   *pluralize.Client
	validate PayloadValidator
	tx       Transactor
	now      func() time.Time
	id       IDGenerator
	logger   interfaces.Logger
}

// NewService constructs the page tree service.
func NewService(repo PageRepository, registry TemplateRegistry, values ValueStore, opts ...ServiceOption) Service {
	s := &service{
		repo:     repo,
		registry: registry,
		values:   values,
		plural:   pluralize.NewClient(),
		validate: validation.ValidatePayload,
		tx:       passthroughTransactor{},
		now:      time.Now,
		id:       uuid.New,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create inserts a page as the last child of its parent (or as a new root),
// derives slug and full URL, and materializes one defaulted value row per
// field of the assigned template.
func (s *service) Create(ctx context.Context, req CreatePageRequest) (*Page, error) {
	if err := req.Validate(); err != nil {
		return nil, requestError(err)
	}
	name := strings.TrimSpace(req.Name)

	templateID := req.TemplateID
	if templateID == uuid.Nil {
		first, err := s.registry.FirstTemplate(ctx)
		if err != nil {
			return nil, ErrNoTemplate
		}
		templateID = first.ID
	} else if _, err := s.registry.GetTemplate(ctx, templateID); err != nil {
		return nil, err
	}

	var parent *Page
	if req.ParentID != nil {
		found, err := s.repo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, ErrParentNotFound
		}
		parent = found
	}

	auto := req.AutoURL || strings.TrimSpace(req.URL) == ""
	url := slugs.ForPage(name, req.URL, auto)

	now := s.now()
	record := &Page{
		ID:          req.ID,
		TemplateID:  templateID,
		ParentID:    req.ParentID,
		Name:        name,
		Title:       req.Title,
		Keywords:    req.Keywords,
		Description: req.Description,
		URL:         url,
		FullURL:     joinFullURL(parent, url),
		Active:      req.Active,
		AutoURL:     auto,
		Link:        req.Link,
		InMenu:      req.InMenu,
		InMap:       req.InMap,
		InNav:       req.InNav,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if record.ID == uuid.Nil {
		record.ID = s.id()
	}

	fields, err := s.registry.FieldsOf(ctx, templateID)
	if err != nil {
		return nil, err
	}
	defaults := make(map[uuid.UUID]domain.FieldType, len(fields))
	for _, field := range fields {
		defaults[field.ID] = field.Type
	}

	var created *Page
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.repo.InsertAsLastChild(ctx, record, parent)
		if err != nil {
			return err
		}
		return s.values.ApplyDefaults(ctx, created.ID, defaults)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("page created", "page_id", created.ID, "full_url", created.FullURL)
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Page, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns every page in tree order (left bound ascending).
func (s *service) List(ctx context.Context) ([]*Page, error) {
	return s.repo.List(ctx)
}

// Update applies the supplied attributes, re-derives slug and full URL, and
// cascades the new URL prefix to every descendant when it changed.
func (s *service) Update(ctx context.Context, req UpdatePageRequest) (*Page, error) {
	if err := req.Validate(); err != nil {
		return nil, requestError(err)
	}
	page, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	applyUpdate(page, req)
	if strings.TrimSpace(page.Name) == "" {
		return nil, ErrNameRequired
	}

	oldFullURL := page.FullURL
	page.URL = slugs.ForPage(page.Name, page.URL, page.AutoURL)

	var parent *Page
	if page.ParentID != nil {
		parent, err = s.repo.GetByID(ctx, *page.ParentID)
		if err != nil {
			return nil, ErrParentNotFound
		}
	}
	page.FullURL = joinFullURL(parent, page.URL)
	page.UpdatedAt = s.now()

	var updated *Page
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.repo.Update(ctx, page)
		if err != nil {
			return err
		}
		if updated.FullURL != oldFullURL {
			return s.cascadeFullURL(ctx, updated, oldFullURL)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if updated.FullURL != oldFullURL {
		s.logger.Debug("page url cascade", "page_id", updated.ID, "old", oldFullURL, "new", updated.FullURL)
	}
	return updated, nil
}

// Delete removes the page with its subtree, closing the nested-set gap, and
// drops every value row owned by the removed pages.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	var removed []uuid.UUID
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		removed, err = s.repo.RemoveSubtree(ctx, page)
		if err != nil {
			return err
		}
		for _, pageID := range removed {
			if err := s.values.RemoveAllForPage(ctx, pageID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("page deleted", "page_id", id, "removed", len(removed))
	return nil
}

// Move relocates a page (and its subtree) under a new parent and cascades the
// resulting URL prefix change.
func (s *service) Move(ctx context.Context, req MovePageRequest) (*Page, error) {
	if err := req.Validate(); err != nil {
		return nil, requestError(err)
	}
	page, err := s.repo.GetByID(ctx, req.PageID)
	if err != nil {
		return nil, err
	}

	var newParent *Page
	if req.NewParentID != nil {
		if *req.NewParentID == page.ID {
			return nil, ErrParentCycle
		}
		newParent, err = s.repo.GetByID(ctx, *req.NewParentID)
		if err != nil {
			return nil, ErrParentNotFound
		}
		if newParent.IsDescendantOf(page) {
			return nil, ErrParentCycle
		}
	}

	var updated *Page
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.repo.MoveSubtree(ctx, page, newParent); err != nil {
			return err
		}

		moved, err := s.repo.GetByID(ctx, page.ID)
		if err != nil {
			return err
		}
		oldFullURL := moved.FullURL
		moved.FullURL = joinFullURL(newParent, moved.URL)
		moved.UpdatedAt = s.now()
		updated, err = s.repo.Update(ctx, moved)
		if err != nil {
			return err
		}
		if updated.FullURL != oldFullURL {
			return s.cascadeFullURL(ctx, updated, oldFullURL)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ResolveByPath matches a full URL exactly. An empty or root path resolves to
// the first page in tree order.
func (s *service) ResolveByPath(ctx context.Context, path string) (*Page, error) {
	normalized := normalizePath(path)
	if normalized == "/" {
		first, err := s.repo.First(ctx)
		if err != nil {
			return nil, &PathNotFoundError{Path: path}
		}
		return first, nil
	}
	page, err := s.repo.GetByFullURL(ctx, normalized)
	if err != nil {
		return nil, &PathNotFoundError{Path: normalized}
	}
	return page, nil
}

func (s *service) AncestorsOf(ctx context.Context, id uuid.UUID) ([]*Page, error) {
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.AncestorsOf(ctx, page)
}

func (s *service) DescendantsOf(ctx context.Context, id uuid.UUID) ([]*Page, error) {
	page, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.DescendantsOf(ctx, page)
}

// DynamicLookup resolves an arbitrary accessor name against the page:
// template field first, then template code name, where a plural accessor
// collects the descendants bound to that template and a singular accessor
// finds the nearest such ancestor. Misses resolve to LookupNone, not errors.
func (s *service) DynamicLookup(ctx context.Context, pageID uuid.UUID, name string) (Lookup, error) {
	page, err := s.repo.GetByID(ctx, pageID)
	if err != nil {
		return Lookup{}, err
	}

	name = strings.TrimSuffix(strings.TrimSpace(name), "=")
	if name == "" {
		return Lookup{Kind: LookupNone}, nil
	}

	if field, err := s.registry.FieldByCodeName(ctx, page.TemplateID, name); err == nil {
		value, err := s.values.Get(ctx, page.ID, field.ID, field.Type)
		if err != nil {
			return Lookup{}, err
		}
		return Lookup{Kind: LookupFieldValue, Field: field, Value: value}, nil
	}

	singular := s.plural.Singular(name)
	tmpl, err := s.registry.GetTemplateByCodeName(ctx, singular)
	if err != nil || tmpl == nil {
		return Lookup{Kind: LookupNone}, nil
	}

	if s.plural.IsPlural(name) {
		descendants, err := s.repo.DescendantsOf(ctx, page)
		if err != nil {
			return Lookup{}, err
		}
		matched := make([]*Page, 0)
		for _, descendant := range descendants {
			if descendant.TemplateID == tmpl.ID {
				matched = append(matched, descendant)
			}
		}
		if len(matched) > 0 {
			return Lookup{Kind: LookupPages, Pages: matched}, nil
		}
	}

	ancestors, err := s.repo.AncestorsOf(ctx, page)
	if err != nil {
		return Lookup{}, err
	}
	for i := len(ancestors) - 1; i >= 0; i-- {
		if ancestors[i].TemplateID == tmpl.ID {
			return Lookup{Kind: LookupPage, Page: ancestors[i]}, nil
		}
	}
	return Lookup{Kind: LookupNone}, nil
}

// Field resolves a field declaration by code name on the page's template.
func (s *service) Field(ctx context.Context, pageID uuid.UUID, codeName string) (*templates.Field, error) {
	page, err := s.repo.GetByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return s.registry.FieldByCodeName(ctx, page.TemplateID, codeName)
}

// GetFieldValue reads the stored value for the named field.
func (s *service) GetFieldValue(ctx context.Context, pageID uuid.UUID, codeName string) (any, error) {
	page, err := s.repo.GetByID(ctx, pageID)
	if err != nil {
		return nil, err
	}
	field, err := s.registry.FieldByCodeName(ctx, page.TemplateID, codeName)
	if err != nil {
		return nil, err
	}
	return s.values.Get(ctx, page.ID, field.ID, field.Type)
}

// SetFieldValue writes the value for the named field, coercing to its type.
func (s *service) SetFieldValue(ctx context.Context, pageID uuid.UUID, codeName string, value any) error {
	page, err := s.repo.GetByID(ctx, pageID)
	if err != nil {
		return err
	}
	field, err := s.registry.FieldByCodeName(ctx, page.TemplateID, codeName)
	if err != nil {
		return err
	}
	return s.values.Set(ctx, page.ID, field.ID, field.Type, value)
}

// UpdateFieldsValues applies a bulk payload keyed by field code name. With
// resetBooleans, every boolean field is first set to false so an omitted
// checkbox reads as unchecked rather than unchanged.
func (s *service) UpdateFieldsValues(ctx context.Context, pageID uuid.UUID, payload map[string]any, resetBooleans bool) error {
	page, err := s.repo.GetByID(ctx, pageID)
	if err != nil {
		return err
	}
	fields, err := s.registry.FieldsOf(ctx, page.TemplateID)
	if err != nil {
		return err
	}

	if s.validate != nil {
		schema, err := s.registry.JSONSchema(ctx, page.TemplateID)
		if err != nil {
			return err
		}
		if err := s.validate(schema, payload); err != nil {
			return err
		}
	}

	if resetBooleans {
		boolIDs := make([]uuid.UUID, 0)
		for _, field := range fields {
			if field.Type == domain.FieldTypeBoolean {
				boolIDs = append(boolIDs, field.ID)
			}
		}
		if err := s.values.ResetBooleans(ctx, page.ID, boolIDs); err != nil {
			return err
		}
	}

	for _, field := range fields {
		value, ok := payload[field.CodeName]
		if !ok {
			continue
		}
		if err := s.values.Set(ctx, page.ID, field.ID, field.Type, value); err != nil {
			return err
		}
	}
	return nil
}

// AsStructuredOutput merges the page attributes with its field values into a
// single name/value mapping. Field iteration follows catalog position order.
func (s *service) AsStructuredOutput(ctx context.Context, pageID uuid.UUID) (map[string]any, error) {
	page, err := s.repo.GetByID(ctx, pageID)
	if err != nil {
		return nil, err
	}

	out := map[string]any{
		"id":          page.ID,
		"template_id": page.TemplateID,
		"name":        page.Name,
		"title":       page.Title,
		"keywords":    page.Keywords,
		"description": page.Description,
		"url":         page.URL,
		"full_url":    page.FullURL,
		"active":      page.Active,
		"auto_url":    page.AutoURL,
		"link":        page.Link,
		"in_menu":     page.InMenu,
		"in_map":      page.InMap,
		"in_nav":      page.InNav,
	}
	if page.ParentID != nil {
		out["parent_id"] = *page.ParentID
	}

	fields, err := s.registry.FieldsOf(ctx, page.TemplateID)
	if err != nil {
		return nil, err
	}
	for _, field := range fields {
		value, err := s.values.Get(ctx, page.ID, field.ID, field.Type)
		if err != nil {
			return nil, err
		}
		out[field.CodeName] = value
	}
	return out, nil
}

func (s *service) cascadeFullURL(ctx context.Context, page *Page, oldFullURL string) error {
	descendants, err := s.repo.DescendantsOf(ctx, page)
	if err != nil {
		return err
	}
	if len(descendants) == 0 {
		return nil
	}
	updates := make([]FullURLUpdate, 0, len(descendants))
	for _, descendant := range descendants {
		updates = append(updates, FullURLUpdate{
			ID:      descendant.ID,
			FullURL: page.FullURL + strings.TrimPrefix(descendant.FullURL, oldFullURL),
		})
	}
	return s.repo.UpdateFullURLs(ctx, updates)
}

func applyUpdate(page *Page, req UpdatePageRequest) {
	if req.Name != nil {
		page.Name = strings.TrimSpace(*req.Name)
	}
	if req.Title != nil {
		page.Title = *req.Title
	}
	if req.Keywords != nil {
		page.Keywords = *req.Keywords
	}
	if req.Description != nil {
		page.Description = *req.Description
	}
	if req.URL != nil {
		page.URL = *req.URL
	}
	if req.AutoURL != nil {
		page.AutoURL = *req.AutoURL
	}
	if req.Link != nil {
		page.Link = *req.Link
	}
	if req.Active != nil {
		page.Active = *req.Active
	}
	if req.InMenu != nil {
		page.InMenu = *req.InMenu
	}
	if req.InMap != nil {
		page.InMap = *req.InMap
	}
	if req.InNav != nil {
		page.InNav = *req.InNav
	}
}

func joinFullURL(parent *Page, url string) string {
	if parent == nil {
		return "/" + url
	}
	return strings.TrimSuffix(parent.FullURL, "/") + "/" + url
}

func normalizePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == "/" {
		return "/"
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimSuffix(trimmed, "/")
}
