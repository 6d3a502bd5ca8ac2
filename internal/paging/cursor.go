package paging

import "context"

// CursorFetch retrieves one page at the given URL and returns its records
// plus the opaque next-page link, empty when this is the last page.
type CursorFetch[T any] func(ctx context.Context, url string) (items []T, next string, err error)

// Cursor pages through a collection using an opaque next-link convention
// (e.g. @odata.nextLink). Pages are issued back-to-back.
type Cursor[T any] struct {
	fetch CursorFetch[T]
	next  string
	done  bool
}

// NewCursor creates a cursor pager starting at the given URL.
func NewCursor[T any](start string, fetch CursorFetch[T]) *Cursor[T] {
	return &Cursor[T]{fetch: fetch, next: start}
}

// Next implements the Pager interface.
func (c *Cursor[T]) Next(ctx context.Context) ([]T, bool, error) {
	if c.done {
		return nil, false, nil
	}

	items, next, err := c.fetch(ctx, c.next)
	if err != nil {
		c.done = true
		return nil, false, err
	}

	c.next = next
	c.done = next == ""
	return items, !c.done, nil
}
