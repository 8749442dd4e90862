package templates

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunTemplateRepository persists templates through bun.
type BunTemplateRepository struct {
	db   *bun.DB
	repo repository.Repository[*Template]
}

// NewBunTemplateRepository constructs a TemplateRepository backed by bun.
func NewBunTemplateRepository(db *bun.DB) *BunTemplateRepository {
	return NewBunTemplateRepositoryWithCache(db, nil, nil)
}

// NewBunTemplateRepositoryWithCache constructs a TemplateRepository backed by
// bun with optional read-through caching.
func NewBunTemplateRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunTemplateRepository {
	return &BunTemplateRepository{
		db:   db,
		repo: wrapWithCache(NewTemplateRepository(db), cacheService, keySerializer),
	}
}

func (r *BunTemplateRepository) Create(ctx context.Context, record *Template) (*Template, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("template repository error: %w", err)
	}
	return created, nil
}

func (r *BunTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*Template, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapTemplateError(err, id.String())
	}
	return record, nil
}

func (r *BunTemplateRepository) GetByCodeName(ctx context.Context, codeName string) (*Template, error) {
	record, err := r.repo.GetByIdentifier(ctx, codeName)
	if err != nil {
		return nil, mapTemplateError(err, codeName)
	}
	return record, nil
}

func (r *BunTemplateRepository) List(ctx context.Context) ([]*Template, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Order("created_at ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("template repository error: %w", err)
	}
	return records, nil
}

func (r *BunTemplateRepository) Update(ctx context.Context, record *Template) (*Template, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("name", "code_name", "updated_at"),
	)
	if err != nil {
		return nil, mapTemplateError(err, record.ID.String())
	}
	return updated, nil
}

func (r *BunTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Template{ID: id}); err != nil {
		return mapTemplateError(err, id.String())
	}
	return nil
}

// BunFieldRepository persists template fields through bun.
type BunFieldRepository struct {
	db   *bun.DB
	repo repository.Repository[*Field]
}

// NewBunFieldRepository constructs a FieldRepository backed by bun.
func NewBunFieldRepository(db *bun.DB) *BunFieldRepository {
	return NewBunFieldRepositoryWithCache(db, nil, nil)
}

// NewBunFieldRepositoryWithCache constructs a FieldRepository backed by bun
// with optional read-through caching.
func NewBunFieldRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunFieldRepository {
	return &BunFieldRepository{
		db:   db,
		repo: wrapWithCache(NewFieldRepository(db), cacheService, keySerializer),
	}
}

func (r *BunFieldRepository) Create(ctx context.Context, record *Field) (*Field, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("field repository error: %w", err)
	}
	return created, nil
}

func (r *BunFieldRepository) GetByID(ctx context.Context, id uuid.UUID) (*Field, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapFieldError(err, id.String())
	}
	return record, nil
}

func (r *BunFieldRepository) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]*Field, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.template_id = ?", templateID)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("position ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("field repository error: %w", err)
	}
	return records, nil
}

func (r *BunFieldRepository) Update(ctx context.Context, record *Field) (*Field, error) {
	updated, err := r.repo.Update(ctx, record,
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns("name", "code_name", "type_tag", "position", "updated_at"),
	)
	if err != nil {
		return nil, mapFieldError(err, record.ID.String())
	}
	return updated, nil
}

// UpdatePositions persists sibling position shifts in a single transaction so
// the catalog's "acts as list" invariant never observes a partial compaction.
func (r *BunFieldRepository) UpdatePositions(ctx context.Context, records []*Field) error {
	if r.db == nil {
		return fmt.Errorf("field repository: database not configured")
	}
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, record := range records {
			if record == nil {
				continue
			}
			if _, err := tx.NewUpdate().
				Model(record).
				Column("position", "updated_at").
				WherePK().
				Exec(ctx); err != nil {
				return fmt.Errorf("update field position: %w", err)
			}
		}
		return nil
	})
}

func (r *BunFieldRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.repo.Delete(ctx, &Field{ID: id}); err != nil {
		return mapFieldError(err, id.String())
	}
	return nil
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

func mapTemplateError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &TemplateNotFoundError{Key: key}
	}
	return fmt.Errorf("template repository error: %w", err)
}

func mapFieldError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &FieldNotFoundError{Key: key}
	}
	return fmt.Errorf("field repository error: %w", err)
}
