package pages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-sitetree/internal/dbtx"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunPageRepository persists the page tree through bun. Every tree mutation
// runs inside a transaction so the nested-set bounds are renumbered
// all-or-nothing.
type BunPageRepository struct {
	db   *bun.DB
	repo repository.Repository[*Page]
}

// NewBunPageRepository constructs a PageRepository backed by bun.
func NewBunPageRepository(db *bun.DB) *BunPageRepository {
	return NewBunPageRepositoryWithCache(db, nil, nil)
}

// NewBunPageRepositoryWithCache constructs a PageRepository backed by bun with
// optional read-through caching on the record lookups.
func NewBunPageRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPageRepository {
	base := NewPageRecordRepository(db)
	if cacheService != nil && keySerializer != nil {
		base = repositorycache.New(base, cacheService, keySerializer)
	}
	return &BunPageRepository{
		db:   db,
		repo: base,
	}
}

// idb resolves the connection for the call: the transaction carried by the
// context when one is open, the shared database otherwise.
func (r *BunPageRepository) idb(ctx context.Context) bun.IDB {
	return dbtx.Resolve(ctx, r.db)
}

func (r *BunPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	var record *Page
	var err error
	if tx, ok := dbtx.From(ctx); ok {
		record, err = r.repo.GetByIDTx(ctx, tx, id.String())
	} else {
		record, err = r.repo.GetByID(ctx, id.String())
	}
	if err != nil {
		return nil, mapPageError(err, id.String())
	}
	return record, nil
}

func (r *BunPageRepository) GetByFullURL(ctx context.Context, fullURL string) (*Page, error) {
	var record *Page
	var err error
	if tx, ok := dbtx.From(ctx); ok {
		record, err = r.repo.GetByIdentifierTx(ctx, tx, fullURL)
	} else {
		record, err = r.repo.GetByIdentifier(ctx, fullURL)
	}
	if err != nil {
		return nil, mapPageError(err, fullURL)
	}
	return record, nil
}

func (r *BunPageRepository) First(ctx context.Context) (*Page, error) {
	record := &Page{}
	err := r.idb(ctx).NewSelect().
		Model(record).
		Order("lft ASC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, mapPageError(err, "")
	}
	return record, nil
}

func (r *BunPageRepository) List(ctx context.Context) ([]*Page, error) {
	records := make([]*Page, 0)
	err := r.idb(ctx).NewSelect().
		Model(&records).
		Order("lft ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	return records, nil
}

// Update persists attribute changes. Tree bounds are owned by the bulk
// operations and never written here.
func (r *BunPageRepository) Update(ctx context.Context, record *Page) (*Page, error) {
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(record.ID.String()),
		repository.UpdateColumns(
			"template_id", "parent_id", "name", "title", "keywords",
			"description", "url", "full_url", "active", "auto_url", "link",
			"in_menu", "in_map", "in_nav", "updated_at",
		),
	}
	var updated *Page
	var err error
	if tx, ok := dbtx.From(ctx); ok {
		updated, err = r.repo.UpdateTx(ctx, tx, record, criteria...)
	} else {
		updated, err = r.repo.Update(ctx, record, criteria...)
	}
	if err != nil {
		return nil, mapPageError(err, record.ID.String())
	}
	return updated, nil
}

func (r *BunPageRepository) PageIDsByTemplate(ctx context.Context, templateID uuid.UUID) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0)
	err := r.idb(ctx).NewSelect().
		Model((*Page)(nil)).
		Column("id").
		Where("template_id = ?", templateID).
		Order("lft ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	return ids, nil
}

func (r *BunPageRepository) AncestorsOf(ctx context.Context, page *Page) ([]*Page, error) {
	records := make([]*Page, 0)
	err := r.idb(ctx).NewSelect().
		Model(&records).
		Where("lft < ?", page.Left).
		Where("rgt > ?", page.Right).
		Order("lft ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	return records, nil
}

func (r *BunPageRepository) DescendantsOf(ctx context.Context, page *Page) ([]*Page, error) {
	records := make([]*Page, 0)
	err := r.idb(ctx).NewSelect().
		Model(&records).
		Where("lft > ?", page.Left).
		Where("rgt < ?", page.Right).
		Order("lft ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	return records, nil
}

func (r *BunPageRepository) InsertAsLastChild(ctx context.Context, record *Page, parent *Page) (*Page, error) {
	err := r.idb(ctx).RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if parent == nil {
			maxRight, err := r.maxRight(ctx, tx)
			if err != nil {
				return err
			}
			record.Left = maxRight + 1
			record.Right = record.Left + 1
			record.Depth = 0
			record.ParentID = nil
		} else {
			anchor := &Page{}
			if err := tx.NewSelect().Model(anchor).Where("id = ?", parent.ID).Scan(ctx); err != nil {
				return fmt.Errorf("load parent: %w", err)
			}
			gapAt := anchor.Right
			if _, err := tx.NewUpdate().
				Model((*Page)(nil)).
				Set("rgt = rgt + 2").
				Where("rgt >= ?", gapAt).
				Exec(ctx); err != nil {
				return fmt.Errorf("open gap: %w", err)
			}
			if _, err := tx.NewUpdate().
				Model((*Page)(nil)).
				Set("lft = lft + 2").
				Where("lft > ?", gapAt).
				Exec(ctx); err != nil {
				return fmt.Errorf("open gap: %w", err)
			}
			record.Left = gapAt
			record.Right = gapAt + 1
			record.Depth = anchor.Depth + 1
			parentID := anchor.ID
			record.ParentID = &parentID
		}
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return fmt.Errorf("insert page: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	return record, nil
}

func (r *BunPageRepository) RemoveSubtree(ctx context.Context, page *Page) ([]uuid.UUID, error) {
	removed := make([]uuid.UUID, 0)
	err := r.idb(ctx).RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		root := &Page{}
		if err := tx.NewSelect().Model(root).Where("id = ?", page.ID).Scan(ctx); err != nil {
			return fmt.Errorf("load page: %w", err)
		}
		width := root.Right - root.Left + 1

		if err := tx.NewSelect().
			Model((*Page)(nil)).
			Column("id").
			Where("lft >= ?", root.Left).
			Where("rgt <= ?", root.Right).
			Order("lft ASC").
			Scan(ctx, &removed); err != nil {
			return fmt.Errorf("collect subtree: %w", err)
		}
		if _, err := tx.NewDelete().
			Model((*Page)(nil)).
			Where("lft >= ?", root.Left).
			Where("rgt <= ?", root.Right).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete subtree: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*Page)(nil)).
			Set("lft = lft - ?", width).
			Where("lft > ?", root.Right).
			Exec(ctx); err != nil {
			return fmt.Errorf("close gap: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*Page)(nil)).
			Set("rgt = rgt - ?", width).
			Where("rgt > ?", root.Right).
			Exec(ctx); err != nil {
			return fmt.Errorf("close gap: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("page repository error: %w", err)
	}
	return removed, nil
}

// MoveSubtree relocates a subtree with the negative-marking technique: the
// subtree's bounds are negated so the gap close and gap open passes only see
// the rest of the tree, then the marked rows are shifted into place.
func (r *BunPageRepository) MoveSubtree(ctx context.Context, page *Page, newParent *Page) error {
	err := r.idb(ctx).RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		root := &Page{}
		if err := tx.NewSelect().Model(root).Where("id = ?", page.ID).Scan(ctx); err != nil {
			return fmt.Errorf("load page: %w", err)
		}
		origLeft, origRight, origDepth := root.Left, root.Right, root.Depth
		width := origRight - origLeft + 1

		if newParent != nil {
			anchor := &Page{}
			if err := tx.NewSelect().Model(anchor).Where("id = ?", newParent.ID).Scan(ctx); err != nil {
				return fmt.Errorf("load parent: %w", err)
			}
			if anchor.Left > origLeft && anchor.Right < origRight {
				return ErrParentCycle
			}
		}

		if _, err := tx.NewUpdate().
			Model((*Page)(nil)).
			Set("lft = -lft").
			Set("rgt = -rgt").
			Where("lft >= ?", origLeft).
			Where("rgt <= ?", origRight).
			Exec(ctx); err != nil {
			return fmt.Errorf("mark subtree: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*Page)(nil)).
			Set("lft = lft - ?", width).
			Where("lft > ?", origRight).
			Exec(ctx); err != nil {
			return fmt.Errorf("close gap: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*Page)(nil)).
			Set("rgt = rgt - ?", width).
			Where("rgt > ?", origRight).
			Exec(ctx); err != nil {
			return fmt.Errorf("close gap: %w", err)
		}

		var newLeft, depthDelta int
		var parentID *uuid.UUID
		if newParent == nil {
			maxRight, err := r.maxRight(ctx, tx)
			if err != nil {
				return err
			}
			newLeft = maxRight + 1
			depthDelta = -origDepth
		} else {
			anchor := &Page{}
			if err := tx.NewSelect().Model(anchor).Where("id = ?", newParent.ID).Scan(ctx); err != nil {
				return fmt.Errorf("load parent: %w", err)
			}
			gapAt := anchor.Right
			if _, err := tx.NewUpdate().
				Model((*Page)(nil)).
				Set("rgt = rgt + ?", width).
				Where("rgt >= ?", gapAt).
				Exec(ctx); err != nil {
				return fmt.Errorf("open gap: %w", err)
			}
			if _, err := tx.NewUpdate().
				Model((*Page)(nil)).
				Set("lft = lft + ?", width).
				Where("lft > ?", gapAt).
				Exec(ctx); err != nil {
				return fmt.Errorf("open gap: %w", err)
			}
			newLeft = gapAt
			depthDelta = anchor.Depth + 1 - origDepth
			id := anchor.ID
			parentID = &id
		}

		offset := newLeft - origLeft
		if _, err := tx.NewUpdate().
			Model((*Page)(nil)).
			Set("lft = -lft + ?", offset).
			Set("rgt = -rgt + ?", offset).
			Set("depth = depth + ?", depthDelta).
			Where("lft < 0").
			Exec(ctx); err != nil {
			return fmt.Errorf("place subtree: %w", err)
		}
		if _, err := tx.NewUpdate().
			Model((*Page)(nil)).
			Set("parent_id = ?", parentID).
			Where("id = ?", root.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("reparent: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("page repository error: %w", err)
	}
	return nil
}

func (r *BunPageRepository) UpdateFullURLs(ctx context.Context, updates []FullURLUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	err := r.idb(ctx).RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, update := range updates {
			if _, err := tx.NewUpdate().
				Model((*Page)(nil)).
				Set("full_url = ?", update.FullURL).
				Where("id = ?", update.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("update full url: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("page repository error: %w", err)
	}
	return nil
}

func (r *BunPageRepository) maxRight(ctx context.Context, tx bun.Tx) (int, error) {
	var maxRight int
	if err := tx.NewSelect().
		Model((*Page)(nil)).
		ColumnExpr("COALESCE(MAX(rgt), 0)").
		Scan(ctx, &maxRight); err != nil {
		return 0, fmt.Errorf("max right bound: %w", err)
	}
	return maxRight, nil
}

func mapPageError(err error, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &PageNotFoundError{Key: key}
	}
	return fmt.Errorf("page repository error: %w", err)
}
