package runtime

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NoVariantError is returned when no variant of a union accepts the input.
type NoVariantError struct {
	Type string
	Tag  string
}

func (e *NoVariantError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("runtime: unknown %s variant %q", e.Type, e.Tag)
	}
	return fmt.Sprintf("runtime: no %s variant matches", e.Type)
}

// Discriminator reads the string value of field from a JSON object.
func Discriminator(data []byte, field string) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", err
	}
	raw, ok := obj[field]
	if !ok {
		return "", fmt.Errorf("runtime: discriminator %q missing", field)
	}
	var tag string
	if err := json.Unmarshal(raw, &tag); err != nil {
		return "", fmt.Errorf("runtime: discriminator %q: %w", field, err)
	}
	return tag, nil
}

// WithTag marshals v and makes sure field carries tag in the result.
func WithTag(v any, field, tag string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if _, ok := obj[field]; ok {
		return data, nil
	}
	quoted, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}
	obj[field] = quoted
	return json.Marshal(obj)
}

// IsLiteral reports whether data is the JSON string lit.
func IsLiteral(data []byte, lit string) bool {
	quoted, err := json.Marshal(lit)
	if err != nil {
		return false
	}
	return bytes.Equal(bytes.TrimSpace(data), quoted)
}
