package runtime

import (
	"encoding/json"
)

// Expandable is a field that carries either a bare ID or, when the caller
// asked for expansion, the full object.
type Expandable[I ~string, T any] struct {
	ID     I
	Object *T
}

// IsExpanded reports whether the object form was received.
func (e Expandable[I, T]) IsExpanded() bool { return e.Object != nil }

func (e Expandable[I, T]) MarshalJSON() ([]byte, error) {
	if e.Object != nil {
		return json.Marshal(e.Object)
	}
	return json.Marshal(e.ID)
}

func (e *Expandable[I, T]) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var id I
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*e = Expandable[I, T]{ID: id}
		return nil
	}
	obj := new(T)
	if err := json.Unmarshal(data, obj); err != nil {
		return err
	}
	var ref struct {
		ID I `json:"id"`
	}
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}
	*e = Expandable[I, T]{ID: ref.ID, Object: obj}
	return nil
}

// ExpandableID is the cross-package form of Expandable. Only the ID type
// crosses the package boundary; an expanded object is kept undecoded in Raw.
type ExpandableID[I ~string] struct {
	ID  I
	Raw json.RawMessage
}

// IsExpanded reports whether the object form was received.
func (e ExpandableID[I]) IsExpanded() bool { return len(e.Raw) > 0 }

// Decode decodes the expanded object into v.
func (e ExpandableID[I]) Decode(v any) error {
	if len(e.Raw) == 0 {
		return &NotExpandedError{ID: string(e.ID)}
	}
	return json.Unmarshal(e.Raw, v)
}

func (e ExpandableID[I]) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	return json.Marshal(e.ID)
}

func (e *ExpandableID[I]) UnmarshalJSON(data []byte) error {
	if isJSONString(data) {
		var id I
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*e = ExpandableID[I]{ID: id}
		return nil
	}
	var ref struct {
		ID I `json:"id"`
	}
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}
	*e = ExpandableID[I]{ID: ref.ID, Raw: append(json.RawMessage(nil), data...)}
	return nil
}

// NotExpandedError is returned when decoding an ExpandableID that only holds an ID.
type NotExpandedError struct {
	ID string
}

func (e *NotExpandedError) Error() string {
	return "runtime: " + e.ID + " was not expanded"
}

func isJSONString(data []byte) bool {
	for _, c := range data {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			return true
		default:
			return false
		}
	}
	return false
}
