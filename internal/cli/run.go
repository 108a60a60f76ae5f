package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/blimu-dev/stripegen/pkg/config"
	"github.com/blimu-dev/stripegen/pkg/generator"
)

// Params are the command-line options shared by generate, validate and
// watch. Flags override values loaded from ConfigPath.
type Params struct {
	ConfigPath   string
	Spec         string
	OutDir       string
	IDPrefixes   string
	Overrides    []string
	Include      string
	Module       string
	Runtime      string
	Targets      []string
	Jobs         int
	MinSer       bool
	GoMod        bool
	SelfCheck    bool
	ValidateSpec bool
	Check        bool
}

// BuildConfig merges the config file, if any, with the flags and validates
// the result.
func BuildConfig(p Params) (*config.Config, error) {
	cfg := &config.Config{}
	if p.ConfigPath != "" {
		loaded, err := config.Load(p.ConfigPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if p.Spec != "" {
		cfg.Spec = absPath(p.Spec)
	}
	if p.OutDir != "" {
		cfg.OutDir = absPath(p.OutDir)
	}
	if cfg.OutDir == "" {
		cfg.OutDir = absPath(".")
	}
	if p.IDPrefixes != "" {
		cfg.IDPrefixes = absPath(p.IDPrefixes)
	}
	for _, o := range p.Overrides {
		cfg.Overrides = append(cfg.Overrides, absPath(o))
	}
	if p.Include != "" {
		cfg.Include = p.Include
	}
	if p.Module != "" {
		cfg.Module = p.Module
	}
	if p.Runtime != "" {
		cfg.Runtime = p.Runtime
	}
	if len(p.Targets) > 0 {
		cfg.Targets = p.Targets
	}
	if p.Jobs > 0 {
		cfg.Jobs = p.Jobs
	}
	cfg.MinSer = cfg.MinSer || p.MinSer
	cfg.GoMod = cfg.GoMod || p.GoMod
	cfg.SelfCheck = cfg.SelfCheck || p.SelfCheck
	cfg.ValidateSpec = cfg.ValidateSpec || p.ValidateSpec

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunGenerate generates, or with Check compares, the output tree. Check-mode
// diffs go to stdout.
func RunGenerate(ctx context.Context, p Params, stdout io.Writer, logger *slog.Logger) error {
	cfg, err := BuildConfig(p)
	if err != nil {
		return err
	}
	_, err = generator.NewService(logger).Generate(ctx, cfg, generator.GenerateOptions{
		Check: p.Check,
		Diff:  stdout,
	})
	return err
}

// RunValidate loads, infers and plans without writing anything.
func RunValidate(ctx context.Context, p Params, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, err := BuildConfig(p)
	if err != nil {
		return err
	}
	r, plan, err := generator.NewService(logger).Prepare(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("document is valid",
		"spec", cfg.Spec,
		"definitions", len(r.Nodes),
		"requests", len(r.Requests),
		"modules", len(plan.Modules),
		"demoted", len(plan.DemotedEdges()),
	)
	return nil
}
