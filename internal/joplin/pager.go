package joplin

import (
	"context"

	"github.com/taigrr/joplin-cli/internal/types"
)

// PageFunc fetches one page of a list endpoint.
type PageFunc[T any] func(ctx context.Context, p types.ListParams) (types.Page[T], error)

// All walks every page starting at p.Page (1 when unset) and returns the
// items in server order. It stops when the server reports no further pages
// or returns an empty page.
func All[T any](ctx context.Context, fetch PageFunc[T], p types.ListParams) ([]T, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	var all []T
	for {
		page, err := fetch(ctx, p)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)
		if !page.HasMore || len(page.Items) == 0 {
			return all, nil
		}
		p.Page++
	}
}
