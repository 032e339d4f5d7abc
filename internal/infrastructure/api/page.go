package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"hirepath/internal/domain"
)

// PageQuery addresses one page of a collection. A non-empty Cursor is the server's opaque next URL
// and takes precedence over Filters.
type PageQuery struct {
	Filters map[string]string
	Cursor  string
}

func (q PageQuery) request(path string) request {
	if q.Cursor != "" {
		return request{method: http.MethodGet, path: q.Cursor, auth: true}
	}
	var query map[string]string
	if len(q.Filters) > 0 {
		query = make(map[string]string, len(q.Filters))
		for k, v := range q.Filters {
			if v != "" {
				query[k] = v
			}
		}
	}
	return request{method: http.MethodGet, path: path, query: query, auth: true}
}

// pageOf decodes either a paginated envelope or a bare JSON array. A bare array is one complete
// page with no cursor.
type pageOf[T any] struct {
	domain.Page[T]
}

func (p *pageOf[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var items []T
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		p.Page = domain.Page[T]{Results: items, Count: len(items)}
		return nil
	}
	var page domain.Page[T]
	if err := json.Unmarshal(b, &page); err != nil {
		return err
	}
	if page.Results == nil {
		page.Results = []T{}
	}
	p.Page = page
	return nil
}

func fetchPage[T any](ctx context.Context, c *Client, path string, q PageQuery) (domain.Page[T], error) {
	var out pageOf[T]
	if err := c.do(ctx, q.request(path), &out); err != nil {
		return domain.Page[T]{}, err
	}
	return out.Page, nil
}
