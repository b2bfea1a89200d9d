package services

import (
	"context"
	"net/url"
	"strconv"

	"ttx/internal/models"
)

// PageSize is the fixed number of records requested per page from tools that
// expose page-based listing.
const PageSize = 100

// FetchAllPages repeatedly requests path with page incrementing from 1 until
// a page returns fewer than [PageSize] records. When the total is an exact
// multiple of the page size, one extra empty-page request occurs and is
// itself the stop signal. The client's pacing applies between pages.
func FetchAllPages[T any](ctx context.Context, c *Client, tool models.ToolName, path string, extra url.Values) ([]T, error) {
	var all []T

	for page := 1; ; page++ {
		query := url.Values{}
		for k, vs := range extra {
			for _, v := range vs {
				query.Add(k, v)
			}
		}
		query.Set("page", strconv.Itoa(page))
		query.Set("page-size", strconv.Itoa(PageSize))

		var batch []T
		if err := c.Get(ctx, tool, path, query, &batch); err != nil {
			return nil, err
		}

		all = append(all, batch...)
		if len(batch) < PageSize {
			return all, nil
		}
	}
}
