// Package openapi loads the provider's OpenAPI document and normalizes it
// into a Graph: every reference checked, every inline object, enum and union
// given a stable synthetic name, and property order preserved.
package openapi

import (
	"context"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/stripegen/pkg/generrors"
)

// LoadOptions tunes LoadDocument.
type LoadOptions struct {
	// Names overrides the Go type name for a path. A miss keeps the derived name.
	Names func(path string) (string, bool)
	// Validate runs OpenAPI validation after loading.
	Validate bool
}

var supportedVersions = func() *semver.Constraints {
	c, err := semver.NewConstraint(">= 3.0.0, < 3.2.0")
	if err != nil {
		panic(err)
	}
	return c
}()

// LoadDocument loads an OpenAPI document from a local file path. The
// generator never fetches over the network.
func LoadDocument(ctx context.Context, input string, opts LoadOptions) (*Graph, error) {
	data, err := os.ReadFile(input)
	if err != nil {
		return nil, generrors.NewLoadError(generrors.LoadParse, input, "read document", err)
	}
	return LoadData(ctx, data, opts)
}

// LoadData normalizes an in-memory document.
func LoadData(ctx context.Context, data []byte, opts LoadOptions) (*Graph, error) {
	idx, err := buildIndex(data)
	if err != nil {
		return nil, err
	}
	if err := idx.checkRefs(); err != nil {
		return nil, err
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, generrors.NewLoadError(generrors.LoadParse, "", "invalid OpenAPI document", err)
	}

	version, err := semver.NewVersion(doc.OpenAPI)
	if err != nil {
		return nil, generrors.NewLoadError(generrors.LoadParse, "/openapi", fmt.Sprintf("invalid version %q", doc.OpenAPI), err)
	}
	if !supportedVersions.Check(version) {
		return nil, generrors.NewLoadError(generrors.LoadParse, "/openapi", fmt.Sprintf("unsupported OpenAPI version %s", version), nil)
	}
	if opts.Validate {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, generrors.NewLoadError(generrors.LoadParse, "", "validation failed", err)
		}
	}

	names := opts.Names
	if names == nil {
		names = func(string) (string, bool) { return "", false }
	}
	g := &Graph{
		Doc:      doc,
		Version:  version,
		named:    make(map[string]*Named),
		inline:   make(map[*openapi3.Schema]*Named),
		names:    make(map[string]string),
		order:    make(map[*openapi3.Schema][]string),
		index:    idx,
		nameHook: names,
	}
	if err := g.normalize(); err != nil {
		return nil, err
	}
	if err := g.checkDiscriminators(); err != nil {
		return nil, err
	}
	return g, nil
}

// ValidateDocument loads and validates an OpenAPI document
func ValidateDocument(ctx context.Context, input string) error {
	_, err := LoadDocument(ctx, input, LoadOptions{Validate: true})
	return err
}

// checkDiscriminators makes sure every discriminator mapping targets a
// component and that no two wire values share a target.
func (g *Graph) checkDiscriminators() error {
	for _, path := range sortedNamed(g.named) {
		n := g.named[path]
		d := n.Schema.Discriminator
		if d == nil {
			continue
		}
		targets := make(map[string]string, len(d.Mapping))
		for _, value := range sortedMapping(d.Mapping) {
			ref := d.Mapping[value]
			target := RefPath(ref)
			if _, ok := g.Component(target); !ok {
				return generrors.NewLoadError(generrors.LoadUnresolvedRef, n.Pointer+"/discriminator/mapping/"+value,
					"discriminator target "+ref+" is not a component", nil)
			}
			if prev, ok := targets[target]; ok {
				return generrors.NewLoadError(generrors.LoadDuplicateName, n.Pointer+"/discriminator/mapping/"+value,
					fmt.Sprintf("values %q and %q both map to %s", prev, value, target), nil)
			}
			targets[target] = value
		}
	}
	return nil
}
