package paging

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndexServer simulates an offset/count collection of n records.
func fakeIndexServer(n int, calls *int) IndexFetch[int] {
	return func(_ context.Context, startIndex, count int) ([]int, int, error) {
		*calls++
		var items []int
		for i := startIndex; i < startIndex+count && i <= n; i++ {
			items = append(items, i)
		}
		return items, n, nil
	}
}

func TestIndexPagerTermination(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		pageSize  int
		wantCalls int
	}{
		{"empty collection", 0, 100, 1},
		{"single partial page", 42, 100, 1},
		{"exactly one page", 100, 100, 1},
		{"two and a half pages", 250, 100, 3},
		{"exact multiple", 200, 100, 2},
		{"page size one", 3, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			p := NewIndex(fakeIndexServer(tt.total, &calls),
				WithPageSize[int](tt.pageSize),
				WithPageInterval[int](0))

			items, err := Collect[int](context.Background(), p)
			require.NoError(t, err)

			assert.Len(t, items, tt.total, "should return exactly totalResults records")
			assert.Equal(t, tt.wantCalls, calls, "should issue exactly ceil(N/k) page requests")
		})
	}
}

func TestIndexPagerShortPageStopsEarly(t *testing.T) {
	// Server claims 300 results but only ever serves 150: a total that
	// changed between calls must not loop forever.
	calls := 0
	fetch := func(_ context.Context, startIndex, count int) ([]int, int, error) {
		calls++
		var items []int
		for i := startIndex; i < startIndex+count && i <= 150; i++ {
			items = append(items, i)
		}
		return items, 300, nil
	}

	p := NewIndex(fetch, WithPageSize[int](100), WithPageInterval[int](0))
	items, err := Collect[int](context.Background(), p)
	require.NoError(t, err)

	assert.Len(t, items, 150)
	assert.Equal(t, 2, calls)
}

func TestIndexPagerFetchErrorAborts(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, startIndex, count int) ([]int, int, error) {
		calls++
		if startIndex > 100 {
			return nil, 0, fmt.Errorf("page %d unavailable", startIndex)
		}
		items := make([]int, count)
		return items, 500, nil
	}

	p := NewIndex(fetch, WithPageSize[int](100), WithPageInterval[int](0))
	items, err := Collect[int](context.Background(), p)

	require.Error(t, err)
	assert.Nil(t, items, "partial results must be discarded on failure")

	// Pager is not restartable after an error.
	page, more, err := p.Next(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, page)
	assert.False(t, more)
}

func TestIndexPagerSequentialIndexes(t *testing.T) {
	var starts []int
	fetch := func(_ context.Context, startIndex, count int) ([]int, int, error) {
		starts = append(starts, startIndex)
		return make([]int, count), 250, nil
	}

	p := NewIndex(fetch, WithPageSize[int](100), WithPageInterval[int](0))
	for {
		_, more, err := p.Next(context.Background())
		require.NoError(t, err)
		if !more {
			break
		}
	}

	assert.Equal(t, []int{1, 101, 201}, starts[:3])
}

func TestCursorPagerFollowsNextLinks(t *testing.T) {
	pages := map[string]struct {
		items []string
		next  string
	}{
		"/members":        {items: []string{"a", "b"}, next: "/members?page=2"},
		"/members?page=2": {items: []string{"c"}, next: "/members?page=3"},
		"/members?page=3": {items: []string{"d"}, next: ""},
	}

	var visited []string
	fetch := func(_ context.Context, url string) ([]string, string, error) {
		visited = append(visited, url)
		page := pages[url]
		return page.items, page.next, nil
	}

	p := NewCursor("/members", fetch)
	items, err := Collect[string](context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c", "d"}, items)
	assert.Equal(t, []string{"/members", "/members?page=2", "/members?page=3"}, visited)
}

func TestCursorPagerSinglePage(t *testing.T) {
	fetch := func(_ context.Context, url string) ([]string, string, error) {
		return []string{"only"}, "", nil
	}

	p := NewCursor("/members", fetch)

	page, more, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, page)
	assert.False(t, more)

	// Exhausted pager stays exhausted.
	page, more, err = p.Next(context.Background())
	require.NoError(t, err)
	assert.Empty(t, page)
	assert.False(t, more)
}

func TestCursorPagerErrorAborts(t *testing.T) {
	fetch := func(_ context.Context, url string) ([]string, string, error) {
		return nil, "", fmt.Errorf("boom")
	}

	p := NewCursor("/members", fetch)
	_, err := Collect[string](context.Background(), p)
	require.Error(t, err)
}

func TestIndexPagerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetch := func(_ context.Context, startIndex, count int) ([]int, int, error) {
		return make([]int, count), 1000, nil
	}

	// With the default 1s interval the second page waits on the limiter,
	// which must honor the cancelled context.
	p := NewIndex(fetch, WithPageSize[int](100))
	_, _, err := p.Next(ctx)
	require.Error(t, err)
}
