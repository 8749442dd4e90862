package pages

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryPageRepository keeps the page arena in process memory. Bulk tree
// mutations run under a single write lock so bound renumbering is atomic.
type MemoryPageRepository struct {
	mu    sync.RWMutex
	pages map[uuid.UUID]*Page
}

// NewMemoryPageRepository builds an empty in-memory page arena.
func NewMemoryPageRepository() *MemoryPageRepository {
	return &MemoryPageRepository{
		pages: map[uuid.UUID]*Page{},
	}
}

func (r *MemoryPageRepository) GetByID(ctx context.Context, id uuid.UUID) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.pages[id]
	if !ok {
		return nil, &PageNotFoundError{Key: id.String()}
	}
	return clonePage(record), nil
}

func (r *MemoryPageRepository) GetByFullURL(ctx context.Context, fullURL string) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, record := range r.pages {
		if record.FullURL == fullURL {
			return clonePage(record), nil
		}
	}
	return nil, &PageNotFoundError{Key: fullURL}
}

// First returns the page with the lowest left bound, the head of tree order.
func (r *MemoryPageRepository) First(ctx context.Context) (*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var first *Page
	for _, record := range r.pages {
		if first == nil || record.Left < first.Left {
			first = record
		}
	}
	if first == nil {
		return nil, ErrPageNotFound
	}
	return clonePage(first), nil
}

func (r *MemoryPageRepository) List(ctx context.Context) ([]*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.orderedLocked(), nil
}

// Update persists attribute changes. The stored tree bounds win over the
// incoming record so a stale caller cannot corrupt the encoding.
func (r *MemoryPageRepository) Update(ctx context.Context, record *Page) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.pages[record.ID]
	if !ok {
		return nil, &PageNotFoundError{Key: record.ID.String()}
	}
	next := clonePage(record)
	next.Left = current.Left
	next.Right = current.Right
	next.Depth = current.Depth
	r.pages[next.ID] = next
	return clonePage(next), nil
}

func (r *MemoryPageRepository) PageIDsByTemplate(ctx context.Context, templateID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0)
	for _, record := range r.orderedLocked() {
		if record.TemplateID == templateID {
			ids = append(ids, record.ID)
		}
	}
	return ids, nil
}

// AncestorsOf returns the chain enclosing the page, root first.
func (r *MemoryPageRepository) AncestorsOf(ctx context.Context, page *Page) ([]*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	current, ok := r.pages[page.ID]
	if !ok {
		return nil, &PageNotFoundError{Key: page.ID.String()}
	}
	ancestors := make([]*Page, 0)
	for _, record := range r.orderedLocked() {
		if record.Left < current.Left && record.Right > current.Right {
			ancestors = append(ancestors, record)
		}
	}
	return ancestors, nil
}

// DescendantsOf returns the subtree below the page in pre-order.
func (r *MemoryPageRepository) DescendantsOf(ctx context.Context, page *Page) ([]*Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	current, ok := r.pages[page.ID]
	if !ok {
		return nil, &PageNotFoundError{Key: page.ID.String()}
	}
	descendants := make([]*Page, 0)
	for _, record := range r.orderedLocked() {
		if record.Left > current.Left && record.Right < current.Right {
			descendants = append(descendants, record)
		}
	}
	return descendants, nil
}

func (r *MemoryPageRepository) InsertAsLastChild(ctx context.Context, record *Page, parent *Page) (*Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := clonePage(record)
	if parent == nil {
		next.Left = r.maxRightLocked() + 1
		next.Right = next.Left + 1
		next.Depth = 0
		next.ParentID = nil
	} else {
		anchor, ok := r.pages[parent.ID]
		if !ok {
			return nil, &PageNotFoundError{Key: parent.ID.String()}
		}
		gapAt := anchor.Right
		for _, stored := range r.pages {
			if stored.Right >= gapAt {
				stored.Right += 2
			}
			if stored.Left > gapAt {
				stored.Left += 2
			}
		}
		next.Left = gapAt
		next.Right = gapAt + 1
		next.Depth = anchor.Depth + 1
		parentID := anchor.ID
		next.ParentID = &parentID
	}
	r.pages[next.ID] = next
	return clonePage(next), nil
}

func (r *MemoryPageRepository) RemoveSubtree(ctx context.Context, page *Page) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	root, ok := r.pages[page.ID]
	if !ok {
		return nil, &PageNotFoundError{Key: page.ID.String()}
	}
	left, right := root.Left, root.Right
	width := right - left + 1

	removed := make([]uuid.UUID, 0)
	for id, stored := range r.pages {
		if stored.Left >= left && stored.Right <= right {
			removed = append(removed, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool {
		return r.pages[removed[i]].Left < r.pages[removed[j]].Left
	})
	for _, id := range removed {
		delete(r.pages, id)
	}
	for _, stored := range r.pages {
		if stored.Left > right {
			stored.Left -= width
		}
		if stored.Right > right {
			stored.Right -= width
		}
	}
	return removed, nil
}

func (r *MemoryPageRepository) MoveSubtree(ctx context.Context, page *Page, newParent *Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	root, ok := r.pages[page.ID]
	if !ok {
		return &PageNotFoundError{Key: page.ID.String()}
	}
	origLeft, origRight, origDepth := root.Left, root.Right, root.Depth
	width := origRight - origLeft + 1

	subtree := make(map[uuid.UUID]bool, width/2)
	for id, stored := range r.pages {
		if stored.Left >= origLeft && stored.Right <= origRight {
			subtree[id] = true
		}
	}
	if newParent != nil {
		if _, ok := r.pages[newParent.ID]; !ok {
			return &PageNotFoundError{Key: newParent.ID.String()}
		}
		if subtree[newParent.ID] {
			return ErrParentCycle
		}
	}

	// Close the gap left by the subtree; its own bounds stay untouched until
	// the final shift.
	for id, stored := range r.pages {
		if subtree[id] {
			continue
		}
		if stored.Left > origRight {
			stored.Left -= width
		}
		if stored.Right > origRight {
			stored.Right -= width
		}
	}

	var newLeft, depthDelta int
	if newParent == nil {
		maxRight := 0
		for id, stored := range r.pages {
			if subtree[id] {
				continue
			}
			if stored.Right > maxRight {
				maxRight = stored.Right
			}
		}
		newLeft = maxRight + 1
		depthDelta = -origDepth
		root.ParentID = nil
	} else {
		anchor := r.pages[newParent.ID]
		gapAt := anchor.Right
		for id, stored := range r.pages {
			if subtree[id] {
				continue
			}
			if stored.Right >= gapAt {
				stored.Right += width
			}
			if stored.Left > gapAt {
				stored.Left += width
			}
		}
		newLeft = gapAt
		depthDelta = anchor.Depth + 1 - origDepth
		parentID := anchor.ID
		root.ParentID = &parentID
	}

	offset := newLeft - origLeft
	for id := range subtree {
		stored := r.pages[id]
		stored.Left += offset
		stored.Right += offset
		stored.Depth += depthDelta
	}
	return nil
}

func (r *MemoryPageRepository) UpdateFullURLs(ctx context.Context, updates []FullURLUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, update := range updates {
		stored, ok := r.pages[update.ID]
		if !ok {
			return &PageNotFoundError{Key: update.ID.String()}
		}
		stored.FullURL = update.FullURL
	}
	return nil
}

// Snapshot copies the arena and returns a function restoring it, so a failed
// unit of work can roll the tree back.
func (r *MemoryPageRepository) Snapshot() func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := make(map[uuid.UUID]*Page, len(r.pages))
	for id, record := range r.pages {
		saved[id] = clonePage(record)
	}
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.pages = saved
	}
}

func (r *MemoryPageRepository) maxRightLocked() int {
	max := 0
	for _, stored := range r.pages {
		if stored.Right > max {
			max = stored.Right
		}
	}
	return max
}

func (r *MemoryPageRepository) orderedLocked() []*Page {
	records := make([]*Page, 0, len(r.pages))
	for _, stored := range r.pages {
		records = append(records, clonePage(stored))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Left < records[j].Left
	})
	return records
}

func clonePage(record *Page) *Page {
	if record == nil {
		return nil
	}
	clone := *record
	if record.ParentID != nil {
		parentID := *record.ParentID
		clone.ParentID = &parentID
	}
	return &clone
}
