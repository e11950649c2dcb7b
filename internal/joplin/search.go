package joplin

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/taigrr/joplin-cli/internal/types"
)

// SearchService maps GET /search.
type SearchService struct {
	c *Client
}

// Search runs a full-text query on the server.
func (s *SearchService) Search(ctx context.Context, p types.SearchParams) (types.Page[types.SearchHit], error) {
	if err := s.c.check(p); err != nil {
		return types.Page[types.SearchHit]{}, err
	}
	q := url.Values{"query": {p.Query}}
	if p.Type != "" {
		q.Set("type", p.Type)
	}
	if len(p.Fields) > 0 {
		q.Set("fields", strings.Join(p.Fields, ","))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.OrderBy != "" {
		q.Set("order_by", p.OrderBy)
	}
	if p.OrderDir != "" {
		q.Set("order_dir", p.OrderDir)
	}

	var page types.Page[types.SearchHit]
	if err := s.c.getJSON(ctx, "/search", q, &page); err != nil {
		return types.Page[types.SearchHit]{}, err
	}
	return page, nil
}
