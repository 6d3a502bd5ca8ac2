// Package paging unifies the two page-enumeration conventions the directory
// APIs use behind one capability: fetch the next page given current cursor
// state, and report whether more pages remain. Pagination within one fetch is
// strictly sequential; each page's cursor depends on the previous result.
package paging

import "context"

// Pager yields successive pages of records. A Pager is finite and
// non-restartable: once Next reports no more pages, further calls return
// empty pages.
type Pager[T any] interface {
	// Next fetches the next page. It returns the page's records and whether
	// more pages remain. A fetch error aborts the sequence; records from
	// earlier pages must be discarded by the caller.
	Next(ctx context.Context) ([]T, bool, error)
}

// Collect drains a pager into a single slice, failing fast on the first
// page-fetch error.
func Collect[T any](ctx context.Context, p Pager[T]) ([]T, error) {
	var out []T
	for {
		page, more, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		if !more {
			return out, nil
		}
	}
}
