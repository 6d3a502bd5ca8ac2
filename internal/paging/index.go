package paging

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 100

// DefaultPageInterval is the minimum spacing between page requests, a
// courtesy delay for vendor rate limits.
const DefaultPageInterval = time.Second

// IndexFetch retrieves one page at the given 1-based start index and returns
// its records plus the server-reported total result count.
type IndexFetch[T any] func(ctx context.Context, startIndex, count int) (items []T, total int, err error)

// Index pages through a collection using 1-based startIndex/count offset
// paging. Fetching stops when startIndex+count exceeds the reported total,
// or when a page comes back smaller than requested — the short-page check
// covers totals changing between calls. A rate limiter spaces out page
// requests; the first page is issued immediately.
type Index[T any] struct {
	fetch   IndexFetch[T]
	count   int
	start   int
	limiter *rate.Limiter
	done    bool
}

// IndexOption configures an Index pager.
type IndexOption[T any] func(*Index[T])

// WithPageSize sets the page size.
func WithPageSize[T any](count int) IndexOption[T] {
	return func(p *Index[T]) {
		if count > 0 {
			p.count = count
		}
	}
}

// WithPageInterval sets the minimum spacing between page requests.
// A non-positive interval disables the delay.
func WithPageInterval[T any](interval time.Duration) IndexOption[T] {
	return func(p *Index[T]) {
		if interval <= 0 {
			p.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		p.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// NewIndex creates an offset/count pager starting at index 1.
func NewIndex[T any](fetch IndexFetch[T], opts ...IndexOption[T]) *Index[T] {
	p := &Index[T]{
		fetch:   fetch,
		count:   DefaultPageSize,
		start:   1,
		limiter: rate.NewLimiter(rate.Every(DefaultPageInterval), 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Next implements the Pager interface.
func (p *Index[T]) Next(ctx context.Context) ([]T, bool, error) {
	if p.done {
		return nil, false, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		p.done = true
		return nil, false, err
	}

	items, total, err := p.fetch(ctx, p.start, p.count)
	if err != nil {
		p.done = true
		return nil, false, err
	}

	if len(items) < p.count || p.start+p.count > total {
		p.done = true
		return items, false, nil
	}

	p.start += p.count
	return items, true, nil
}

// StartIndex returns the start index of the next page to fetch, for error
// reporting by fetch callbacks.
func (p *Index[T]) StartIndex() int {
	return p.start
}
