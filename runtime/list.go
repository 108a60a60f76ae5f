package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrPaginatorDone is returned by Paginator.Next once the last page was read.
var ErrPaginatorDone = errors.New("runtime: no more pages")

// List is the envelope of every paginated collection response.
type List[T any] struct {
	Object     string  `json:"object"`
	Data       []T     `json:"data"`
	HasMore    bool    `json:"has_more"`
	URL        string  `json:"url"`
	TotalCount *uint64 `json:"total_count,omitempty"`
}

// PageParams wraps the request parameters of a list call together with the
// cursor of the page to fetch. Client implementations encode Params first and
// then add starting_after when StartingAfter is set.
type PageParams struct {
	Params        any
	StartingAfter string
}

// Paginator walks a cursor-paginated list endpoint page by page.
type Paginator[T any] struct {
	client Client
	path   string
	params any
	cursor string
	done   bool
}

// NewPaginator returns a paginator over path using params for every page.
func NewPaginator[T any](client Client, path string, params any) *Paginator[T] {
	return &Paginator[T]{client: client, path: path, params: params}
}

// Path returns the URL path the paginator fetches from.
func (p *Paginator[T]) Path() string { return p.path }

// Done reports whether the last page has been fetched.
func (p *Paginator[T]) Done() bool { return p.done }

// page is what Next decodes a list response into. Items are decoded from
// their raw bytes so their ids can be read without encoding them again.
type page[T any] struct {
	items   []T
	ids     []string
	hasMore bool
}

func (p *page[T]) UnmarshalJSON(data []byte) error {
	var env struct {
		Data    []json.RawMessage `json:"data"`
		HasMore bool              `json:"has_more"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	out := page[T]{hasMore: env.HasMore}
	for _, raw := range env.Data {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return err
		}
		id, err := itemID(raw)
		if err != nil {
			return err
		}
		out.items = append(out.items, item)
		out.ids = append(out.ids, id)
	}
	*p = out
	return nil
}

// itemID reads the id member of one raw list item.
func itemID(raw []byte) (string, error) {
	var ref struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil {
		return "", err
	}
	return ref.ID, nil
}

// Next fetches the next page.
func (p *Paginator[T]) Next(ctx context.Context) ([]T, error) {
	if p.done {
		return nil, ErrPaginatorDone
	}
	var pg page[T]
	if err := p.client.GetQuery(ctx, p.path, PageParams{Params: p.params, StartingAfter: p.cursor}, &pg); err != nil {
		return nil, err
	}
	if !pg.hasMore || len(pg.items) == 0 {
		p.done = true
		return pg.items, nil
	}
	last := pg.ids[len(pg.ids)-1]
	if last == "" {
		var zero T
		return nil, fmt.Errorf("runtime: list item %T has no id to paginate from", zero)
	}
	p.cursor = last
	return pg.items, nil
}

// All drains the paginator.
func (p *Paginator[T]) All(ctx context.Context) ([]T, error) {
	var out []T
	for !p.done {
		page, err := p.Next(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, page...)
	}
	return out, nil
}
