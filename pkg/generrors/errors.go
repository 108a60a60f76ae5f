// Package generrors defines the error taxonomy of the generator. Every stage
// returns one of the typed errors below so the CLI can map failures to exit
// codes and point at the offending component path.
package generrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched with errors.Is.
var (
	// ErrInput covers malformed documents, override files and references.
	ErrInput = errors.New("stripe-gen: input error")
	// ErrInference covers schema shapes the IR cannot represent.
	ErrInference = errors.New("stripe-gen: inference error")
	// ErrPlanning means the partition planner could not break a module cycle.
	ErrPlanning = errors.New("stripe-gen: planning error")
	// ErrEmission covers unresolved imports and self-check failures.
	ErrEmission = errors.New("stripe-gen: emission error")
	// ErrIO covers output tree failures.
	ErrIO = errors.New("stripe-gen: i/o error")
	// ErrUsage covers invalid flags and configuration.
	ErrUsage = errors.New("stripe-gen: usage error")
)

// LoadKind classifies a LoadError.
type LoadKind string

const (
	LoadParse         LoadKind = "parse"
	LoadUnresolvedRef LoadKind = "unresolved-ref"
	LoadDuplicateName LoadKind = "duplicate-name"
	LoadOverride      LoadKind = "override"
)

// LoadError is returned by the schema loader and the override store.
type LoadError struct {
	Kind LoadKind
	// Where is a JSON pointer into the document, or a file path for overrides.
	Where   string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("stripe-gen: load error (")
	b.WriteString(string(e.Kind))
	b.WriteString(")")
	if e.Where != "" {
		b.WriteString(" at ")
		b.WriteString(e.Where)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() error { return e.Cause }

func (e *LoadError) Is(target error) bool { return target == ErrInput }

// NewLoadError creates a LoadError.
func NewLoadError(kind LoadKind, where, message string, cause error) *LoadError {
	return &LoadError{Kind: kind, Where: where, Message: message, Cause: cause}
}

// InferenceKind classifies an InferenceError.
type InferenceKind string

const (
	UnmappedType           InferenceKind = "unmapped-type"
	ConflictingNullability InferenceKind = "conflicting-nullability"
	InvalidDiscriminator   InferenceKind = "invalid-discriminator"
)

// InferenceError is returned when a schema cannot be mapped onto the IR.
type InferenceError struct {
	Path    string
	Field   string
	Kind    InferenceKind
	Message string
}

func (e *InferenceError) Error() string {
	var b strings.Builder
	b.WriteString("stripe-gen: ")
	b.WriteString(string(e.Kind))
	b.WriteString(" in ")
	b.WriteString(e.Path)
	if e.Field != "" {
		b.WriteString(".")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

func (e *InferenceError) Is(target error) bool { return target == ErrInference }

// NewInferenceError creates an InferenceError.
func NewInferenceError(kind InferenceKind, path, field, format string, args ...any) *InferenceError {
	return &InferenceError{Kind: kind, Path: path, Field: field, Message: fmt.Sprintf(format, args...)}
}

// PlanningError is returned when the module graph stays cyclic.
type PlanningError struct {
	Path    string
	Message string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("stripe-gen: planning error at %s: %s", e.Path, e.Message)
}

func (e *PlanningError) Is(target error) bool { return target == ErrPlanning }

// EmissionError is returned by the emitter and the emission self-check.
type EmissionError struct {
	Path    string
	File    string
	Message string
	Cause   error
}

func (e *EmissionError) Error() string {
	var b strings.Builder
	b.WriteString("stripe-gen: emission error")
	if e.Path != "" {
		b.WriteString(" for ")
		b.WriteString(e.Path)
	}
	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *EmissionError) Unwrap() error { return e.Cause }

func (e *EmissionError) Is(target error) bool { return target == ErrEmission }

// IOError wraps failures writing the output tree.
type IOError struct {
	Op    string
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("stripe-gen: %s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *IOError) Unwrap() error { return e.Cause }

func (e *IOError) Is(target error) bool { return target == ErrIO }

// ConfigError reports an invalid option.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("stripe-gen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("stripe-gen: config error for %q: %s", e.Option, e.Message)
}

func (e *ConfigError) Is(target error) bool { return target == ErrUsage }

// Path extracts the component path carried by err, if any.
func Path(err error) string {
	var (
		load *LoadError
		inf  *InferenceError
		plan *PlanningError
		emit *EmissionError
		io   *IOError
	)
	switch {
	case errors.As(err, &inf):
		return inf.Path
	case errors.As(err, &plan):
		return plan.Path
	case errors.As(err, &emit):
		return emit.Path
	case errors.As(err, &load):
		return load.Where
	case errors.As(err, &io):
		return io.Path
	}
	return ""
}
