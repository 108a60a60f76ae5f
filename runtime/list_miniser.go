//go:build stripe_miniser

package runtime

import (
	"github.com/blimu-dev/stripegen/runtime/miniser"
)

func (l *List[T]) DecodeMin(d *miniser.Decoder) error {
	var data *[]T
	var hasMore *bool
	var object, url *string
	var total *uint64
	err := d.Object(func(key string) error {
		switch key {
		case "object":
			return miniser.Into(d, &object)
		case "data":
			return miniser.IntoSlice(d, &data)
		case "has_more":
			return miniser.Into(d, &hasMore)
		case "url":
			return miniser.Into(d, &url)
		case "total_count":
			return miniser.Into(d, &total)
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return err
	}
	if data == nil {
		return miniser.MissingField("List", "data")
	}
	if hasMore == nil {
		return miniser.MissingField("List", "has_more")
	}
	*l = List[T]{Data: *data, HasMore: *hasMore, TotalCount: total}
	if object != nil {
		l.Object = *object
	}
	if url != nil {
		l.URL = *url
	}
	return nil
}

func (p *page[T]) DecodeMin(d *miniser.Decoder) error {
	var out page[T]
	var hasMore *bool
	err := d.Object(func(key string) error {
		switch key {
		case "data":
			if d.Null() {
				return nil
			}
			return d.Array(func() error {
				raw, err := d.Raw()
				if err != nil {
					return err
				}
				var item *T
				if err := miniser.Into(miniser.NewDecoder(raw), &item); err != nil {
					return err
				}
				if item == nil {
					item = new(T)
				}
				id, err := itemID(raw)
				if err != nil {
					return err
				}
				out.items = append(out.items, *item)
				out.ids = append(out.ids, id)
				return nil
			})
		case "has_more":
			return miniser.Into(d, &hasMore)
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return err
	}
	if hasMore != nil {
		out.hasMore = *hasMore
	}
	*p = out
	return nil
}
