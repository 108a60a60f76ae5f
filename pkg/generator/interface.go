package generator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/blimu-dev/stripegen/pkg/config"
	"github.com/blimu-dev/stripegen/pkg/generator/golang"
	"github.com/blimu-dev/stripegen/pkg/generator/manifest"
	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/ir"
	"github.com/blimu-dev/stripegen/pkg/openapi"
	"github.com/blimu-dev/stripegen/pkg/overrides"
	"github.com/blimu-dev/stripegen/pkg/partition"
	"github.com/blimu-dev/stripegen/pkg/verify"
	"github.com/blimu-dev/stripegen/pkg/writer"
)

// Generator defines the interface for output targets
type Generator interface {
	// Generate renders the files of this target for a planned IR
	Generate(ctx context.Context, cfg *config.Config, r *ir.IR, plan *partition.Plan) ([]writer.File, error)
	// GetType returns the type identifier for this generator (e.g., "go")
	GetType() string
}

// Registry manages available generators
type Registry struct {
	generators map[string]Generator
}

// NewRegistry creates a new generator registry
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
	}
}

// Register adds a generator to the registry
func (r *Registry) Register(gen Generator) {
	r.generators[gen.GetType()] = gen
}

// Get retrieves a generator by type
func (r *Registry) Get(genType string) (Generator, bool) {
	gen, exists := r.generators[genType]
	return gen, exists
}

// GetAvailableTypes returns all registered generator types in sorted order
func (r *Registry) GetAvailableTypes() []string {
	types := make([]string, 0, len(r.generators))
	for t := range r.generators {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// GenerateOptions contains options for a generation run
type GenerateOptions struct {
	// Check compares the output with the tree on disk instead of writing.
	Check bool
	// Diff receives the unified diffs of a check run. Defaults to os.Stdout.
	Diff io.Writer
}

// Result describes a finished run.
type Result struct {
	IR    *ir.IR
	Plan  *partition.Plan
	Files []writer.File
	Stats writer.Stats
}

// Service provides high-level generation functionality
type Service struct {
	registry *Registry
	logger   *slog.Logger
}

// NewService creates a new generator service with the default targets.
// A nil logger uses slog.Default().
func NewService(logger *slog.Logger) *Service {
	registry := NewRegistry()
	registry.Register(golang.NewGoGenerator())
	registry.Register(manifest.NewGenerator())
	return NewServiceWithRegistry(registry, logger)
}

// NewServiceWithRegistry creates a new generator service with a custom registry
func NewServiceWithRegistry(registry *Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		registry: registry,
		logger:   logger,
	}
}

// GetRegistry returns the generator registry
func (s *Service) GetRegistry() *Registry {
	return s.registry
}

// Prepare loads the document and the overrides, infers the IR and plans the
// modules. Nothing is written.
func (s *Service) Prepare(ctx context.Context, cfg *config.Config) (*ir.IR, *partition.Plan, error) {
	start := time.Now()
	store, err := overrides.Load(cfg.IDPrefixes, cfg.Overrides...)
	if err != nil {
		return nil, nil, err
	}

	g, err := openapi.LoadDocument(ctx, cfg.Spec, openapi.LoadOptions{
		Names:    store.Rename,
		Validate: cfg.ValidateSpec,
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("loaded document", "spec", cfg.Spec, "openapi", g.Version.String(), "elapsed", time.Since(start))

	include, err := cfg.IncludePattern()
	if err != nil {
		return nil, nil, err
	}
	start = time.Now()
	r, err := BuildIR(g, InferOptions{Overrides: store, Include: include})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("inferred IR", "nodes", len(r.Nodes), "requests", len(r.Requests), "elapsed", time.Since(start))

	start = time.Now()
	plan, err := partition.Build(r)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Debug("planned modules", "modules", len(plan.Modules), "demoted", len(plan.DemotedEdges()), "elapsed", time.Since(start))
	return r, plan, nil
}

// Render runs every configured target and checks the emitted Go sources.
func (s *Service) Render(ctx context.Context, cfg *config.Config, r *ir.IR, plan *partition.Plan) ([]writer.File, error) {
	start := time.Now()
	render := func(ctx context.Context) ([]writer.File, error) {
		return s.renderTargets(ctx, cfg, r, plan)
	}
	files, err := render(ctx)
	if err != nil {
		return nil, err
	}
	if err := verify.Files(files, verify.Options{Module: cfg.Module, Runtime: cfg.Runtime}); err != nil {
		return nil, err
	}
	if cfg.SelfCheck {
		if err := verify.Deterministic(ctx, render); err != nil {
			return nil, err
		}
	}
	s.logger.Debug("rendered output", "files", len(files), "elapsed", time.Since(start))
	return files, nil
}

func (s *Service) renderTargets(ctx context.Context, cfg *config.Config, r *ir.IR, plan *partition.Plan) ([]writer.File, error) {
	var files []writer.File
	for _, target := range cfg.Targets {
		gen, exists := s.registry.Get(target)
		if !exists {
			return nil, &generrors.ConfigError{
				Option:  "target",
				Value:   target,
				Message: fmt.Sprintf("unsupported target (available: %s)", strings.Join(s.registry.GetAvailableTypes(), ", ")),
			}
		}
		out, err := gen.Generate(ctx, cfg, r, plan)
		if err != nil {
			return nil, err
		}
		files = append(files, out...)
	}
	writer.SortFiles(files)
	return files, nil
}

// Generate runs the whole pipeline for cfg and writes, or checks, the
// output tree.
func (s *Service) Generate(ctx context.Context, cfg *config.Config, opts GenerateOptions) (*Result, error) {
	r, plan, err := s.Prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}
	files, err := s.Render(ctx, cfg, r, plan)
	if err != nil {
		return nil, err
	}
	res := &Result{IR: r, Plan: plan, Files: files}

	wopts := writer.Options{
		Dir:     cfg.OutDir,
		Jobs:    cfg.Jobs,
		Exclude: cfg.ShouldExcludeFile,
		Prune:   true,
		Logger:  s.logger,
	}
	if opts.Check {
		diff := opts.Diff
		if diff == nil {
			diff = os.Stdout
		}
		if err := writer.Check(ctx, files, wopts, diff); err != nil {
			return res, err
		}
		s.logger.Info("output is up to date", "dir", cfg.OutDir, "files", len(files))
		return res, nil
	}

	// Ensure output directory exists before pre-commands
	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return res, &generrors.IOError{Op: "mkdir", Path: cfg.OutDir, Cause: err}
	}

	// Execute pre-generation commands if specified
	if err := s.executePreCommands(ctx, cfg); err != nil {
		return res, fmt.Errorf("pre-generation commands failed: %w", err)
	}

	res.Stats, err = writer.Write(ctx, files, wopts)
	if err != nil {
		return res, err
	}

	// Execute post-generation commands if specified
	if err := s.executePostGenCommands(ctx, cfg); err != nil {
		return res, fmt.Errorf("post-generation commands failed: %w", err)
	}

	s.logger.Info("generated client",
		"dir", cfg.OutDir,
		"modules", len(plan.Modules),
		"requests", len(r.Requests),
		"written", res.Stats.Written,
		"unchanged", res.Stats.Unchanged,
		"pruned", res.Stats.Pruned,
	)
	return res, nil
}

// executePreCommands executes the pre-generation command
func (s *Service) executePreCommands(ctx context.Context, cfg *config.Config) error {
	command := cfg.GetPreCommand()
	if len(command) == 0 {
		return nil // No command to execute
	}

	return s.executeCommand(ctx, command, cfg.OutDir, "pre-command")
}

// executePostGenCommands executes the post-generation command
func (s *Service) executePostGenCommands(ctx context.Context, cfg *config.Config) error {
	command := cfg.GetPostCommand()
	if len(command) == 0 {
		return nil // No command to execute
	}

	return s.executeCommand(ctx, command, cfg.OutDir, "post-command")
}

// executeCommand executes a single command in Docker Compose array format
func (s *Service) executeCommand(ctx context.Context, command []string, workDir, commandLabel string) error {
	if len(command) == 0 {
		return nil // Skip empty commands
	}

	// Create command with first element as executable and rest as arguments
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = workDir      // Execute in the specified directory
	cmd.Stdout = os.Stdout // Forward stdout to see command output
	cmd.Stderr = os.Stderr // Forward stderr to see errors

	cmdDescription := strings.Join(command, " ")
	s.logger.Debug("running command", "label", commandLabel, "command", cmdDescription, "dir", workDir)

	// Execute the command
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s (%s) failed: %w", commandLabel, cmdDescription, err)
	}

	return nil
}
