// Package miniser is the decode-only codec used by generated types built with
// the stripe_miniser tag. Generated DecodeMin methods walk the input once,
// filling a builder slot per field, instead of going through reflection.
package miniser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Unmarshaler is implemented by generated types that decode themselves.
type Unmarshaler interface {
	DecodeMin(d *Decoder) error
}

// MissingFieldError is returned when a required field was absent or null.
type MissingFieldError struct {
	Type  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("miniser: %s: missing required field %q", e.Type, e.Field)
}

// MissingField returns a MissingFieldError for field of typ.
func MissingField(typ, field string) error {
	return &MissingFieldError{Type: typ, Field: field}
}

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("miniser: %s at offset %d", e.Msg, e.Offset)
}

// Decoder reads JSON values from an in-memory document.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder returns a decoder positioned at the start of data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Decode decodes data into v and rejects trailing input.
func Decode(data []byte, v Unmarshaler) error {
	d := NewDecoder(data)
	if err := v.DecodeMin(d); err != nil {
		return err
	}
	d.ws()
	if d.pos != len(d.data) {
		return d.errorf("trailing data")
	}
	return nil
}

func (d *Decoder) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: d.pos, Msg: fmt.Sprintf(format, args...)}
}

func (d *Decoder) ws() {
	for d.pos < len(d.data) {
		switch d.data[d.pos] {
		case ' ', '\t', '\n', '\r':
			d.pos++
		default:
			return
		}
	}
}

func (d *Decoder) peek() (byte, error) {
	d.ws()
	if d.pos >= len(d.data) {
		return 0, io.ErrUnexpectedEOF
	}
	return d.data[d.pos], nil
}

func (d *Decoder) expect(c byte) error {
	got, err := d.peek()
	if err != nil {
		return err
	}
	if got != c {
		return d.errorf("expected %q, found %q", c, got)
	}
	d.pos++
	return nil
}

// Null consumes a JSON null and reports whether one was present.
func (d *Decoder) Null() bool {
	d.ws()
	if bytes.HasPrefix(d.data[d.pos:], []byte("null")) {
		d.pos += 4
		return true
	}
	return false
}

// Object walks a JSON object. fn is called once per key and must consume
// exactly one value, either by decoding it or by calling Skip.
func (d *Decoder) Object(fn func(key string) error) error {
	if err := d.expect('{'); err != nil {
		return err
	}
	if c, err := d.peek(); err != nil {
		return err
	} else if c == '}' {
		d.pos++
		return nil
	}
	for {
		key, err := d.String()
		if err != nil {
			return err
		}
		if err := d.expect(':'); err != nil {
			return err
		}
		if err := fn(key); err != nil {
			return err
		}
		c, err := d.peek()
		if err != nil {
			return err
		}
		d.pos++
		switch c {
		case ',':
		case '}':
			return nil
		default:
			d.pos--
			return d.errorf("expected ',' or '}' in object")
		}
	}
}

// Array walks a JSON array calling fn for each element.
func (d *Decoder) Array(fn func() error) error {
	if err := d.expect('['); err != nil {
		return err
	}
	if c, err := d.peek(); err != nil {
		return err
	} else if c == ']' {
		d.pos++
		return nil
	}
	for {
		if err := fn(); err != nil {
			return err
		}
		c, err := d.peek()
		if err != nil {
			return err
		}
		d.pos++
		switch c {
		case ',':
		case ']':
			return nil
		default:
			d.pos--
			return d.errorf("expected ',' or ']' in array")
		}
	}
}

// String decodes a JSON string.
func (d *Decoder) String() (string, error) {
	if c, err := d.peek(); err != nil {
		return "", err
	} else if c != '"' {
		return "", d.errorf("expected string")
	}
	start := d.pos
	end, escaped, err := d.scanString(start)
	if err != nil {
		return "", err
	}
	d.pos = end
	raw := d.data[start:end]
	if !escaped {
		return string(raw[1 : len(raw)-1]), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return s, nil
}

func (d *Decoder) scanString(i int) (int, bool, error) {
	escaped := false
	for j := i + 1; j < len(d.data); j++ {
		switch d.data[j] {
		case '\\':
			escaped = true
			j++
		case '"':
			return j + 1, escaped, nil
		}
	}
	return 0, false, io.ErrUnexpectedEOF
}

// Skip consumes one value of any kind.
func (d *Decoder) Skip() error {
	c, err := d.peek()
	if err != nil {
		return err
	}
	switch c {
	case '"':
		end, _, err := d.scanString(d.pos)
		if err != nil {
			return err
		}
		d.pos = end
		return nil
	case '{':
		return d.Object(func(string) error { return d.Skip() })
	case '[':
		return d.Array(d.Skip)
	case 't':
		return d.literal("true")
	case 'f':
		return d.literal("false")
	case 'n':
		return d.literal("null")
	default:
		return d.number()
	}
}

func (d *Decoder) literal(lit string) error {
	if !bytes.HasPrefix(d.data[d.pos:], []byte(lit)) || !d.delimAt(d.pos+len(lit)) {
		return d.errorf("invalid literal, want %s", lit)
	}
	d.pos += len(lit)
	return nil
}

// number consumes -?int frac? exp? as in RFC 8259.
func (d *Decoder) number() error {
	start := d.pos
	i := d.pos
	if i < len(d.data) && d.data[i] == '-' {
		i++
	}
	switch {
	case i < len(d.data) && d.data[i] == '0':
		i++
	case i < len(d.data) && isDigit(d.data[i]):
		i = d.digits(i)
	default:
		return d.errorf("unexpected %q", d.data[start])
	}
	if i < len(d.data) && d.data[i] == '.' {
		if i+1 >= len(d.data) || !isDigit(d.data[i+1]) {
			d.pos = i
			return d.errorf("invalid number fraction")
		}
		i = d.digits(i + 1)
	}
	if i < len(d.data) && (d.data[i] == 'e' || d.data[i] == 'E') {
		i++
		if i < len(d.data) && (d.data[i] == '+' || d.data[i] == '-') {
			i++
		}
		if i >= len(d.data) || !isDigit(d.data[i]) {
			d.pos = i
			return d.errorf("invalid number exponent")
		}
		i = d.digits(i)
	}
	if !d.delimAt(i) {
		d.pos = i
		return d.errorf("invalid character in number")
	}
	d.pos = i
	return nil
}

func (d *Decoder) digits(i int) int {
	for i < len(d.data) && isDigit(d.data[i]) {
		i++
	}
	return i
}

// delimAt reports whether a scalar may end right before i.
func (d *Decoder) delimAt(i int) bool {
	return i >= len(d.data) || isDelim(d.data[i])
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Raw consumes one value and returns its bytes.
func (d *Decoder) Raw() (json.RawMessage, error) {
	d.ws()
	start := d.pos
	if err := d.Skip(); err != nil {
		return nil, err
	}
	return json.RawMessage(d.data[start:d.pos]), nil
}

func isDelim(c byte) bool {
	switch c {
	case ',', '}', ']', ':', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// Into decodes one value into a fresh *T stored in slot. A null leaves slot
// nil. Types implementing Unmarshaler decode through DecodeMin; everything
// else, including enums and IDs, goes through their JSON or text unmarshalers.
func Into[T any](d *Decoder, slot **T) error {
	if d.Null() {
		*slot = nil
		return nil
	}
	v := new(T)
	if u, ok := any(v).(Unmarshaler); ok {
		if err := u.DecodeMin(d); err != nil {
			return err
		}
		*slot = v
		return nil
	}
	raw, err := d.Raw()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return err
	}
	*slot = v
	return nil
}

// IntoSlice decodes a JSON array element by element.
func IntoSlice[T any](d *Decoder, slot **[]T) error {
	if d.Null() {
		*slot = nil
		return nil
	}
	out := make([]T, 0)
	err := d.Array(func() error {
		var elem *T
		if err := Into(d, &elem); err != nil {
			return err
		}
		if elem == nil {
			var zero T
			out = append(out, zero)
			return nil
		}
		out = append(out, *elem)
		return nil
	})
	if err != nil {
		return err
	}
	*slot = &out
	return nil
}

// IntoMap decodes a JSON object with arbitrary keys.
func IntoMap[T any](d *Decoder, slot **map[string]T) error {
	if d.Null() {
		*slot = nil
		return nil
	}
	out := make(map[string]T)
	err := d.Object(func(key string) error {
		var elem *T
		if err := Into(d, &elem); err != nil {
			return err
		}
		if elem == nil {
			var zero T
			out[key] = zero
			return nil
		}
		out[key] = *elem
		return nil
	})
	if err != nil {
		return err
	}
	*slot = &out
	return nil
}
