package generrors

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		path     string
	}{
		{"load", NewLoadError(LoadUnresolvedRef, "/components/schemas/a/properties/b", "missing", nil), ErrInput, "/components/schemas/a/properties/b"},
		{"inference", NewInferenceError(UnmappedType, "widget", "kind", "unsupported %s", "not"), ErrInference, "widget"},
		{"planning", &PlanningError{Path: "alpha", Message: "cycle"}, ErrPlanning, "alpha"},
		{"emission", &EmissionError{Path: "beta", File: "beta/types.go", Message: "unresolved"}, ErrEmission, "beta"},
		{"io", &IOError{Op: "write", Path: "/tmp/x", Cause: os.ErrPermission}, ErrIO, "/tmp/x"},
		{"config", &ConfigError{Option: "jobs", Value: -1, Message: "must be positive"}, ErrUsage, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("stage: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.path, Path(wrapped))
		})
	}
}

func TestUnwrapCause(t *testing.T) {
	err := &IOError{Op: "rename", Path: "a.go", Cause: os.ErrPermission}
	assert.True(t, errors.Is(err, os.ErrPermission))

	load := NewLoadError(LoadParse, "openapi.json", "", errors.New("bad json"))
	assert.EqualError(t, load, "stripe-gen: load error (parse) at openapi.json: bad json")
}

func TestInferenceMessage(t *testing.T) {
	err := NewInferenceError(ConflictingNullability, "widget_or_deleted", "variants[0]", "variant is nullable")
	assert.EqualError(t, err, "stripe-gen: conflicting-nullability in widget_or_deleted.variants[0]: variant is nullable")
}
