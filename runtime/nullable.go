package runtime

import (
	"bytes"
	"encoding/json"
)

type nullState uint8

const (
	absent nullState = iota
	null
	present
)

// Nullable is a request field where an explicit null differs from absence.
// The zero value is absent, which IsZero reports to encoders.
type Nullable[T any] struct {
	value T
	state nullState
}

// Some returns a Nullable holding v.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{value: v, state: present}
}

// Null returns an explicit null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{state: null}
}

// IsZero reports whether the field is absent.
func (n Nullable[T]) IsZero() bool { return n.state == absent }

// IsNull reports whether the field is an explicit null.
func (n Nullable[T]) IsNull() bool { return n.state == null }

// Get returns the value and whether one is present.
func (n Nullable[T]) Get() (T, bool) {
	return n.value, n.state == present
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.state != present {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Null[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}
