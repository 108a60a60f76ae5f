// Package overrides holds the hand-maintained knowledge the OpenAPI document
// lacks: ID prefixes, preferred names, family placement, field renames, type
// substitutions, enum openness and resource marks. A lookup miss always means
// "no override".
package overrides

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/imdario/mergo"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/stripegen/pkg/generrors"
)

// EnumPolicy is the open/closed annotation of a string enum.
type EnumPolicy string

const (
	EnumOpen   EnumPolicy = "open"
	EnumClosed EnumPolicy = "closed"
)

// Type substitutions accepted in the "types" section. A value may also be
// "ref:<component path>".
var substitutions = map[string]bool{
	"string": true, "i64": true, "u64": true, "f64": true, "bool": true,
	"timestamp": true, "currency": true, "json": true,
}

// RefPrefix marks a type substitution that points at another component.
const RefPrefix = "ref:"

// File is the shape of an override file. YAML and JSON are both accepted.
type File struct {
	// Renames maps a component or promoted path to its Go type name.
	Renames map[string]string `yaml:"renames,omitempty"`
	// Families places a path into a named family module.
	Families map[string]string `yaml:"families,omitempty"`
	// FieldRenames maps path -> wire field name -> Go field name.
	FieldRenames map[string]map[string]string `yaml:"fieldRenames,omitempty"`
	// Types maps path -> wire field name -> substitution.
	Types map[string]map[string]string `yaml:"types,omitempty"`
	// Enums maps an enum path to "open" or "closed".
	Enums map[string]EnumPolicy `yaml:"enums,omitempty"`
	// Resources marks paths as top-level resources that own an ID newtype.
	Resources map[string]bool `yaml:"resources,omitempty"`
}

// Store is the merged, read-only override set.
type Store struct {
	prefixes map[string][]string
	file     File
}

// New returns an empty store.
func New() *Store {
	return &Store{prefixes: map[string][]string{}}
}

// Load reads the id prefix table (optional, "" to skip) and the override
// files. Files merge in order with later values winning.
func Load(prefixFile string, files ...string) (*Store, error) {
	s := New()
	if prefixFile != "" {
		data, err := os.ReadFile(prefixFile)
		if err != nil {
			return nil, generrors.NewLoadError(generrors.LoadOverride, prefixFile, "read id prefixes", err)
		}
		prefixes, err := ParsePrefixes(data)
		if err != nil {
			return nil, generrors.NewLoadError(generrors.LoadOverride, prefixFile, err.Error(), nil)
		}
		s.prefixes = prefixes
	}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, generrors.NewLoadError(generrors.LoadOverride, path, "read overrides", err)
		}
		f, err := ParseFile(data)
		if err != nil {
			return nil, generrors.NewLoadError(generrors.LoadOverride, path, err.Error(), nil)
		}
		if err := s.Merge(f); err != nil {
			return nil, generrors.NewLoadError(generrors.LoadOverride, path, "merge", err)
		}
	}
	return s, nil
}

// ParsePrefixes decodes `{ "<path>": "<prefix>" | ["<prefix>", ...] }`.
func ParsePrefixes(data []byte) (map[string][]string, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid id prefixes: %w", err)
	}
	out := make(map[string][]string, len(raw))
	for path, v := range raw {
		var prefixes []string
		switch v := v.(type) {
		case string:
			prefixes = []string{v}
		case []any:
			list, err := cast.ToStringSliceE(v)
			if err != nil {
				return nil, fmt.Errorf("prefixes of %q: %w", path, err)
			}
			prefixes = list
		default:
			return nil, fmt.Errorf("prefixes of %q must be a string or a list, got %T", path, v)
		}
		for _, p := range prefixes {
			if p == "" || strings.Contains(p, "_") {
				return nil, fmt.Errorf("invalid prefix %q for %q", p, path)
			}
		}
		out[path] = prefixes
	}
	return out, nil
}

// ParseFile decodes and checks one override file.
func ParseFile(data []byte) (File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return File{}, fmt.Errorf("invalid override file: %w", err)
	}
	for _, path := range sortedKeys(f.Enums) {
		if p := f.Enums[path]; p != EnumOpen && p != EnumClosed {
			return File{}, fmt.Errorf("enum policy of %q must be open or closed, got %q", path, p)
		}
	}
	for _, path := range sortedKeys(f.Types) {
		for _, field := range sortedKeys(f.Types[path]) {
			sub := f.Types[path][field]
			if !substitutions[sub] && (!strings.HasPrefix(sub, RefPrefix) || len(sub) == len(RefPrefix)) {
				return File{}, fmt.Errorf("unknown type substitution %q for %s.%s", sub, path, field)
			}
		}
	}
	return f, nil
}

// Merge folds f into the store, f winning on conflicts.
func (s *Store) Merge(f File) error {
	return mergo.Merge(&s.file, f, mergo.WithOverride)
}

// SetPrefixes replaces the prefixes of path.
func (s *Store) SetPrefixes(path string, prefixes ...string) {
	s.prefixes[path] = prefixes
}

// Prefixes returns the registered ID prefixes of a resource path.
func (s *Store) Prefixes(path string) []string {
	return s.prefixes[path]
}

// Rename returns the preferred Go type name of path.
func (s *Store) Rename(path string) (string, bool) {
	name, ok := s.file.Renames[path]
	return name, ok && name != ""
}

// Family returns the family module path is pinned to.
func (s *Store) Family(path string) (string, bool) {
	family, ok := s.file.Families[path]
	return family, ok && family != ""
}

// FieldName returns the Go name of a field.
func (s *Store) FieldName(path, field string) (string, bool) {
	name, ok := s.file.FieldRenames[path][field]
	return name, ok && name != ""
}

// Type returns the type substitution of a field.
func (s *Store) Type(path, field string) (string, bool) {
	sub, ok := s.file.Types[path][field]
	return sub, ok
}

// Enum returns the open/closed annotation of an enum.
func (s *Store) Enum(path string) (EnumPolicy, bool) {
	p, ok := s.file.Enums[path]
	return p, ok
}

// IsResource reports whether path is marked as a resource.
func (s *Store) IsResource(path string) bool {
	return s.file.Resources[path]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
