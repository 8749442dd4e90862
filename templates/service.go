package templates

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"time"

	pluralize "github.com/gertd/go-pluralize"
	"github.com/goliatone/go-sitetree/domain"
	"github.com/goliatone/go-sitetree/internal/logging"
	"github.com/goliatone/go-sitetree/pkg/interfaces"
	"github.com/goliatone/go-sitetree/slugs"
	"github.com/google/uuid"
)

// defaultReservedNames are the accessors already resolvable on a page. A field
// code name that collides with one of these (or with its singular or plural
// form) would make dynamic lookup ambiguous.
var defaultReservedNames = []string{
	"id", "name", "title", "keywords", "description",
	"url", "full_url", "link", "active", "auto_url",
	"in_menu", "in_map", "in_nav",
	"template", "template_id", "parent", "parent_id",
	"left", "right", "depth",
	"field", "fields", "page", "pages",
	"child", "children", "ancestor", "ancestors",
	"descendant", "descendants", "path",
	"created_at", "updated_at",
}

var codeNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// IDGenerator produces identifiers for new records.
type IDGenerator func() uuid.UUID

// ServiceOption configures the template service.
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
		s.logger = logging.TemplatesLogger(provider)
	}
}

// WithReservedNames replaces the default reserved accessor list. Deployments
// whose code names trip the linguistic check can tune the list instead of
// patching the rule.
func WithReservedNames(names []string) ServiceOption {
	return func(s *service) {
		if len(names) > 0 {
			s.reserved = normalizeReserved(names)
		}
	}
}

// WithPluralize overrides the pluralization client consulted by the
// reserved-name check and exposed to dynamic lookup consumers.
func WithPluralize(client *pluralize.Client) ServiceOption {
	return func(s *service) {
		if client != nil {
			s.plural = client
		}
	}
}

// WithPageIndex wires the page lookup used to cascade value rows.
func WithPageIndex(index PageIndex) ServiceOption {
	return func(s *service) {
		if index != nil {
			s.pages = index
		}
	}
}

// WithValueMaterializer wires the typed value stores used to cascade rows.
func WithValueMaterializer(values ValueMaterializer) ServiceOption {
	return func(s *service) {
		if values != nil {
			s.values = values
		}
	}
}

type service struct {
	templates TemplateRepository
	fields    FieldRepository
	pages     PageIndex
	values    ValueMaterializer
	plural    *pluralize.Client
	reserved  map[string]struct{}
	now       func() time.Time
	id        IDGenerator
	logger    interfaces.Logger
}

// NewService constructs the template registry and field catalog.
func NewService(templateRepo TemplateRepository, fieldRepo FieldRepository, opts ...ServiceOption) Service {
	s := &service{
		templates: templateRepo,
		fields:    fieldRepo,
		plural:    pluralize.NewClient(),
		reserved:  normalizeReserved(defaultReservedNames),
		now:       time.Now,
		id:        uuid.New,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pluralizer exposes the configured pluralization client so the page service
// shares the same linguistic rule for dynamic lookup.
func Pluralizer(svc Service) *pluralize.Client {
	if s, ok := svc.(*service); ok {
		return s.plural
	}
	return pluralize.NewClient()
}

func (s *service) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*Template, error) {
	if err := req.Validate(); err != nil {
		return nil, requestError(err)
	}
	name := strings.TrimSpace(req.Name)
	codeName := strings.TrimSpace(req.CodeName)
	if codeName == "" {
		codeName = slugs.Generate(name)
		codeName = strings.ReplaceAll(codeName, "-", "_")
	}
	if !codeNamePattern.MatchString(codeName) {
		return nil, ErrCodeNameInvalid
	}
	if existing, err := s.templates.GetByCodeName(ctx, codeName); err == nil && existing != nil {
		return nil, ErrTemplateExists
	}

	now := s.now()
	record := &Template{
		ID:        req.ID,
		Name:      name,
		CodeName:  codeName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if record.ID == uuid.Nil {
		record.ID = s.id()
	}

	created, err := s.templates.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("template created", "template_id", created.ID, "code_name", created.CodeName)
	return created, nil
}

func (s *service) GetTemplate(ctx context.Context, id uuid.UUID) (*Template, error) {
	return s.templates.GetByID(ctx, id)
}

func (s *service) GetTemplateByCodeName(ctx context.Context, codeName string) (*Template, error) {
	return s.templates.GetByCodeName(ctx, strings.TrimSpace(codeName))
}

// FirstTemplate returns the oldest registered template. Pages created without
// an explicit template fall back to it.
func (s *service) FirstTemplate(ctx context.Context) (*Template, error) {
	records, err := s.templates.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &TemplateNotFoundError{}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CodeName < records[j].CodeName
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records[0], nil
}

func (s *service) ListTemplates(ctx context.Context) ([]*Template, error) {
	return s.templates.List(ctx)
}

func (s *service) CountTemplates(ctx context.Context) (int, error) {
	records, err := s.templates.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// DeleteTemplate removes the template, its fields, and every value row held
// by pages bound to it.
func (s *service) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.templates.GetByID(ctx, id); err != nil {
		return err
	}

	fields, err := s.fields.ListByTemplate(ctx, id)
	if err != nil {
		return err
	}
	for _, field := range fields {
		if err := s.removeFieldRows(ctx, field); err != nil {
			return err
		}
		if err := s.fields.Delete(ctx, field.ID); err != nil {
			return err
		}
	}
	if err := s.templates.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("template deleted", "template_id", id, "fields", len(fields))
	return nil
}

// AddField appends a typed field to the template and materializes one
// defaulted value row per page already bound to the template.
func (s *service) AddField(ctx context.Context, req AddFieldRequest) (*Field, error) {
	if err := req.Validate(); err != nil {
		return nil, requestError(err)
	}
	name := strings.TrimSpace(req.Name)
	codeName := strings.TrimSpace(req.CodeName)
	if !codeNamePattern.MatchString(codeName) {
		return nil, ErrCodeNameInvalid
	}
	fieldType, ok := domain.ParseFieldType(string(req.Type))
	if !ok {
		return nil, ErrFieldTypeUnknown
	}
	if _, err := s.templates.GetByID(ctx, req.TemplateID); err != nil {
		return nil, err
	}

	siblings, err := s.fields.ListByTemplate(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	for _, sibling := range siblings {
		if sibling.CodeName == codeName {
			return nil, ErrCodeNameTaken
		}
	}
	if collides, hit := s.reservedCollision(codeName); hit {
		return nil, &ReservedNameError{CodeName: codeName, Collides: collides}
	}

	now := s.now()
	record := &Field{
		ID:         req.ID,
		TemplateID: req.TemplateID,
		Name:       name,
		CodeName:   codeName,
		Type:       fieldType,
		Position:   len(siblings),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if record.ID == uuid.Nil {
		record.ID = s.id()
	}

	created, err := s.fields.Create(ctx, record)
	if err != nil {
		return nil, err
	}

	if s.pages != nil && s.values != nil {
		pageIDs, err := s.pages.PageIDsByTemplate(ctx, req.TemplateID)
		if err != nil {
			return nil, err
		}
		for _, pageID := range pageIDs {
			if err := s.values.CreateDefault(ctx, pageID, created.ID, created.Type); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Debug("field added", "template_id", req.TemplateID, "code_name", codeName, "type", fieldType)
	return created, nil
}

// RemoveField destroys the value rows held for the field across every bound
// page, deletes the field, and compacts sibling positions.
func (s *service) RemoveField(ctx context.Context, fieldID uuid.UUID) error {
	field, err := s.fields.GetByID(ctx, fieldID)
	if err != nil {
		return err
	}

	if err := s.removeFieldRows(ctx, field); err != nil {
		return err
	}
	if err := s.fields.Delete(ctx, field.ID); err != nil {
		return err
	}

	siblings, err := s.fields.ListByTemplate(ctx, field.TemplateID)
	if err != nil {
		return err
	}
	changed := make([]*Field, 0, len(siblings))
	for i, sibling := range siblings {
		if sibling.Position != i {
			sibling.Position = i
			sibling.UpdatedAt = s.now()
			changed = append(changed, sibling)
		}
	}
	if len(changed) > 0 {
		if err := s.fields.UpdatePositions(ctx, changed); err != nil {
			return err
		}
	}
	return nil
}

// ReorderField moves the field within its template's ordered list, shifting
// siblings. Stored values are untouched.
func (s *service) ReorderField(ctx context.Context, fieldID uuid.UUID, position int) (*Field, error) {
	field, err := s.fields.GetByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}

	siblings, err := s.fields.ListByTemplate(ctx, field.TemplateID)
	if err != nil {
		return nil, err
	}
	if position < 0 {
		position = 0
	}
	if position > len(siblings)-1 {
		position = len(siblings) - 1
	}

	reordered := make([]*Field, 0, len(siblings))
	for _, sibling := range siblings {
		if sibling.ID != field.ID {
			reordered = append(reordered, sibling)
		}
	}
	reordered = append(reordered[:position], append([]*Field{field}, reordered[position:]...)...)

	changed := make([]*Field, 0, len(reordered))
	var moved *Field
	for i, sibling := range reordered {
		if sibling.Position != i {
			sibling.Position = i
			sibling.UpdatedAt = s.now()
			changed = append(changed, sibling)
		}
		if sibling.ID == field.ID {
			moved = sibling
		}
	}
	if len(changed) > 0 {
		if err := s.fields.UpdatePositions(ctx, changed); err != nil {
			return nil, err
		}
	}
	return moved, nil
}

func (s *service) FieldsOf(ctx context.Context, templateID uuid.UUID) ([]*Field, error) {
	return s.fields.ListByTemplate(ctx, templateID)
}

func (s *service) FieldByCodeName(ctx context.Context, templateID uuid.UUID, codeName string) (*Field, error) {
	fields, err := s.fields.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	codeName = strings.TrimSpace(codeName)
	for _, field := range fields {
		if field.CodeName == codeName {
			return field, nil
		}
	}
	return nil, &FieldNotFoundError{Key: codeName}
}

// JSONSchema derives a JSON schema document from the template's field list,
// used to validate bulk field-update payloads.
func (s *service) JSONSchema(ctx context.Context, templateID uuid.UUID) (map[string]any, error) {
	fields, err := s.fields.ListByTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}

	properties := make(map[string]any, len(fields))
	for _, field := range fields {
		properties[field.CodeName] = fieldSchema(field.Type)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}, nil
}

func fieldSchema(t domain.FieldType) map[string]any {
	switch t {
	case domain.FieldTypeInteger:
		return map[string]any{"type": []any{"integer", "string", "null"}}
	case domain.FieldTypeFloat:
		return map[string]any{"type": []any{"number", "string", "null"}}
	case domain.FieldTypeBoolean:
		return map[string]any{"type": []any{"boolean", "string", "integer", "null"}}
	default:
		// string, text, date, html, image all arrive as strings on the wire.
		return map[string]any{"type": []any{"string", "null"}}
	}
}

func (s *service) removeFieldRows(ctx context.Context, field *Field) error {
	if s.pages == nil || s.values == nil {
		return nil
	}
	pageIDs, err := s.pages.PageIDsByTemplate(ctx, field.TemplateID)
	if err != nil {
		return err
	}
	for _, pageID := range pageIDs {
		if err := s.values.Remove(ctx, pageID, field.ID, field.Type); err != nil {
			return err
		}
	}
	return nil
}

// reservedCollision checks the candidate plus its singular and plural forms
// against the reserved accessor set.
func (s *service) reservedCollision(codeName string) (string, bool) {
	candidates := []string{codeName}
	if s.plural != nil {
		if singular := s.plural.Singular(codeName); singular != codeName {
			candidates = append(candidates, singular)
		}
		if plural := s.plural.Plural(codeName); plural != codeName {
			candidates = append(candidates, plural)
		}
	}
	for _, candidate := range candidates {
		if _, ok := s.reserved[candidate]; ok {
			return candidate, true
		}
	}
	return "", false
}

func normalizeReserved(names []string) map[string]struct{} {
	out := make(map[string]struct{}, len(names))
	for _, name := range names {
		if trimmed := strings.ToLower(strings.TrimSpace(name)); trimmed != "" {
			out[trimmed] = struct{}{}
		}
	}
	return out
}
