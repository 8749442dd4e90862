package sitetree

import (
	"github.com/goliatone/go-sitetree/fieldvalues"
	"github.com/goliatone/go-sitetree/internal/logging"
	"github.com/goliatone/go-sitetree/internal/logging/gologger"
	"github.com/goliatone/go-sitetree/internal/markdown"
	"github.com/goliatone/go-sitetree/pages"
	"github.com/goliatone/go-sitetree/pkg/interfaces"
	"github.com/goliatone/go-sitetree/templates"
)

// TemplateService exports the template registry contract for consumers of the
// sitetree package.
type TemplateService = templates.Service

// PageService exports the page tree service contract.
type PageService = pages.Service

// ValueService exports the typed value store facade.
type ValueService = *fieldvalues.Values

// Importer exports the Markdown import helper.
type Importer = markdown.Importer

// Module is the top level sitetree runtime façade. It owns the wiring between
// the template registry, the page tree, and the typed value stores.
type Module struct {
	config    Config
	provider  interfaces.LoggerProvider
	templates templates.Service
	pages     pages.Service
	values    *fieldvalues.Values
	importer  *markdown.Importer
}

// Option configures the module beyond what Config carries.
type Option func(*moduleOptions)

type moduleOptions struct {
	templateOpts []templates.ServiceOption
	pageOpts     []pages.ServiceOption
}

// WithTemplateOptions appends options applied to the template registry.
func WithTemplateOptions(opts ...templates.ServiceOption) Option {
	return func(o *moduleOptions) {
		o.templateOpts = append(o.templateOpts, opts...)
	}
}

// WithPageOptions appends options applied to the page tree service.
func WithPageOptions(opts ...pages.ServiceOption) Option {
	return func(o *moduleOptions) {
		o.pageOpts = append(o.pageOpts, opts...)
	}
}

// New constructs a sitetree module from the provided configuration. Options
// apply on top of the config-driven wiring.
func New(cfg Config, opts ...Option) (*Module, error) {
	mo := &moduleOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(mo)
		}
	}

	m := &Module{config: cfg}

	if cfg.Logging.Enabled {
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
		})
		if err != nil {
			return nil, err
		}
		m.provider = provider
	}

	var (
		templateRepo templates.TemplateRepository
		fieldRepo    templates.FieldRepository
		pageRepo     pages.PageRepository
		stores       fieldvalues.StoreSet
		transactor   pages.Transactor
	)
	if cfg.Storage.DB != nil {
		templateRepo = templates.NewBunTemplateRepositoryWithCache(cfg.Storage.DB, cfg.Cache.Service, cfg.Cache.KeySerializer)
		fieldRepo = templates.NewBunFieldRepositoryWithCache(cfg.Storage.DB, cfg.Cache.Service, cfg.Cache.KeySerializer)
		pageRepo = pages.NewBunPageRepositoryWithCache(cfg.Storage.DB, cfg.Cache.Service, cfg.Cache.KeySerializer)
		stores = fieldvalues.NewBunStores(cfg.Storage.DB)
		transactor = pages.NewBunTransactor(cfg.Storage.DB)
	} else {
		templateRepo = templates.NewMemoryTemplateRepository()
		fieldRepo = templates.NewMemoryFieldRepository()
		memPages := pages.NewMemoryPageRepository()
		pageRepo = memPages
		stores = fieldvalues.NewMemoryStores()
		parts := []pages.Snapshotter{memPages}
		for _, store := range stores {
			if snap, ok := store.(pages.Snapshotter); ok {
				parts = append(parts, snap)
			}
		}
		transactor = pages.NewMemoryTransactor(parts...)
	}

	valueOpts := []fieldvalues.ValuesOption{}
	if m.provider != nil {
		valueOpts = append(valueOpts, fieldvalues.WithLogger(m.provider))
	}
	m.values = fieldvalues.NewValues(stores, valueOpts...)

	tmplOpts := []templates.ServiceOption{
		templates.WithPageIndex(pageRepo),
		templates.WithValueMaterializer(m.values),
	}
	if m.provider != nil {
		tmplOpts = append(tmplOpts, templates.WithLogger(m.provider))
	}
	tmplOpts = append(tmplOpts, mo.templateOpts...)
	m.templates = templates.NewService(templateRepo, fieldRepo, tmplOpts...)

	pgOpts := []pages.ServiceOption{
		pages.WithTransactor(transactor),
		pages.WithPluralize(templates.Pluralizer(m.templates)),
	}
	if m.provider != nil {
		pgOpts = append(pgOpts, pages.WithLogger(m.provider))
	}
	if !cfg.Features.PayloadValidation {
		pgOpts = append(pgOpts, pages.WithPayloadValidator(nil))
	}
	pgOpts = append(pgOpts, mo.pageOpts...)
	m.pages = pages.NewService(pageRepo, m.templates, m.values, pgOpts...)

	importerCfg := markdown.ImporterConfig{
		Pages:     m.pages,
		Templates: m.templates,
	}
	if m.provider != nil {
		importerCfg.Logger = logging.ImportLogger(m.provider)
	}
	m.importer = markdown.NewImporter(importerCfg)

	return m, nil
}

// Templates returns the configured template registry.
func (m *Module) Templates() TemplateService {
	return m.templates
}

// Pages returns the configured page tree service.
func (m *Module) Pages() PageService {
	return m.pages
}

// Values returns the typed value store facade.
func (m *Module) Values() ValueService {
	return m.values
}

// Markdown returns the Markdown import helper.
func (m *Module) Markdown() *Importer {
	return m.importer
}
