package pages_test

import (
	"context"
	"sort"
	"testing"

	"github.com/goliatone/go-sitetree/pages"
)

// checkEncoding asserts the nested-set invariants: bounds are a permutation
// of 1..2n, every node's left is below its right, and each child's bounds sit
// strictly inside its parent's.
func checkEncoding(t *testing.T, records []*pages.Page) {
	t.Helper()

	bounds := make([]int, 0, len(records)*2)
	byID := make(map[string]*pages.Page, len(records))
	for _, record := range records {
		if record.Left >= record.Right {
			t.Fatalf("page %s has inverted bounds [%d, %d]", record.Name, record.Left, record.Right)
		}
		bounds = append(bounds, record.Left, record.Right)
		byID[record.ID.String()] = record
	}
	sort.Ints(bounds)
	for i, bound := range bounds {
		if bound != i+1 {
			t.Fatalf("bounds are not a permutation of 1..%d: %v", len(bounds), bounds)
		}
	}
	for _, record := range records {
		if record.ParentID == nil {
			if record.Depth != 0 {
				t.Fatalf("root %s has depth %d", record.Name, record.Depth)
			}
			continue
		}
		parent, ok := byID[record.ParentID.String()]
		if !ok {
			t.Fatalf("page %s references missing parent", record.Name)
		}
		if !record.IsDescendantOf(parent) {
			t.Fatalf("page %s [%d, %d] outside parent %s [%d, %d]",
				record.Name, record.Left, record.Right, parent.Name, parent.Left, parent.Right)
		}
		if record.Depth != parent.Depth+1 {
			t.Fatalf("page %s depth %d under parent depth %d", record.Name, record.Depth, parent.Depth)
		}
	}
}

func TestMemoryRepositoryKeepsEncodingValid(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tmpl := f.template(t, "Default", "default")

	home := f.page(t, tmpl, nil, "Home")
	shop := f.page(t, tmpl, home, "Shop")
	f.page(t, tmpl, shop, "Widget")
	archive := f.page(t, tmpl, home, "Archive")
	blog := f.page(t, tmpl, nil, "Blog")
	f.page(t, tmpl, blog, "First Post")

	records, err := f.repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	checkEncoding(t, records)

	if _, err := f.tree.Move(ctx, pages.MovePageRequest{PageID: shop.ID, NewParentID: &archive.ID}); err != nil {
		t.Fatalf("move: %v", err)
	}
	records, err = f.repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	checkEncoding(t, records)

	// Detach the blog subtree to root level next to home.
	post, err := f.tree.ResolveByPath(ctx, "/blog/first-post")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := f.tree.Move(ctx, pages.MovePageRequest{PageID: post.ID, NewParentID: nil}); err != nil {
		t.Fatalf("move to root: %v", err)
	}
	records, err = f.repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	checkEncoding(t, records)

	if err := f.tree.Delete(ctx, archive.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	records, err = f.repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	checkEncoding(t, records)
}
