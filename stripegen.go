// Package stripegen generates a typed Go client for the Stripe API from its
// OpenAPI document.
//
// The generator loads and normalizes the document, infers one Go definition
// per schema, groups the definitions into packages by resource family and
// writes one package per family plus a shared package of ID types. The
// generated code compiles against the runtime package of this module.
//
// Quick Start:
//
//	import "github.com/blimu-dev/stripegen"
//
//	res, err := stripegen.Generate(ctx, stripegen.Options{
//		Spec:       "./openapi/spec3.json",
//		IDPrefixes: "./openapi/id_prefixes.json",
//		OutDir:     "./stripe",
//		Module:     "github.com/acme/stripe",
//	})
//
// For more control, see the generator package.
package stripegen

import (
	"context"
	"io"
	"log/slog"

	"github.com/blimu-dev/stripegen/pkg/config"
	"github.com/blimu-dev/stripegen/pkg/generator"
)

// Options configures a generation run. Zero values take the defaults of
// the config package.
type Options struct {
	Spec       string
	OutDir     string
	Module     string
	Runtime    string
	IDPrefixes string
	Overrides  []string
	// Include restricts generation to component paths matching the regex.
	Include string
	Targets []string
	Jobs    int
	MinSer  bool
	GoMod   bool
	// Check compares instead of writing and reports drift as ErrDrift.
	Check bool
	// Diff receives check-mode diffs; nil means os.Stdout.
	Diff io.Writer
	// Logger receives stage logs; nil means slog.Default().
	Logger *slog.Logger
}

// Result summarizes a generation run.
type Result = generator.Result

func (o Options) config() (*config.Config, error) {
	cfg := &config.Config{
		Spec:       o.Spec,
		OutDir:     o.OutDir,
		Module:     o.Module,
		Runtime:    o.Runtime,
		IDPrefixes: o.IDPrefixes,
		Overrides:  o.Overrides,
		Include:    o.Include,
		Targets:    o.Targets,
		Jobs:       o.Jobs,
		MinSer:     o.MinSer,
		GoMod:      o.GoMod,
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Generate writes the client packages described by opts.
func Generate(ctx context.Context, opts Options) (*Result, error) {
	cfg, err := opts.config()
	if err != nil {
		return nil, err
	}
	return generator.NewService(opts.Logger).Generate(ctx, cfg, generator.GenerateOptions{Check: opts.Check, Diff: opts.Diff})
}

// GenerateFromConfig runs the generator with a stripe-gen.yaml file.
func GenerateFromConfig(ctx context.Context, configPath string) (*Result, error) {
	return generator.GenerateFromConfig(ctx, configPath)
}

// Validate loads the document, infers every definition and plans the
// packages without writing anything.
//
// Example:
//
//	if err := stripegen.Validate(ctx, stripegen.Options{Spec: "./openapi/spec3.json"}); err != nil {
//		log.Fatalf("invalid document: %v", err)
//	}
func Validate(ctx context.Context, opts Options) error {
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	cfg, err := opts.config()
	if err != nil {
		return err
	}
	_, _, err = generator.NewService(opts.Logger).Prepare(ctx, cfg)
	return err
}
