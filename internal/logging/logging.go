package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-sitetree/pkg/interfaces"
)

const (
	rootModule      = "sitetree"
	pagesModule     = "sitetree.pages"
	templatesModule = "sitetree.templates"
	valuesModule    = "sitetree.fieldvalues"
	importModule    = "sitetree.import"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{"module": module})
}

// PagesLogger returns the logger namespace reserved for the page tree service.
func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

// TemplatesLogger returns the logger namespace reserved for the field catalog.
func TemplatesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, templatesModule)
}

// ValuesLogger returns the logger namespace reserved for the value stores.
func ValuesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, valuesModule)
}

// ImportLogger returns the logger namespace reserved for the markdown importer.
func ImportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, importModule)
}

// WithFields attaches structured fields to a logger when the implementation
// supports the optional FieldsLogger extension. Callers can pass nil or an
// empty map to skip allocation safely.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		maps.Copy(copied, fields)
		return fieldsLogger.WithFields(copied)
	}

	return logger
}

// NoOp returns a logger that swallows every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
