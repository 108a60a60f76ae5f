package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/stripegen/pkg/generrors"
)

const (
	// DefaultRuntime is the import path generated code compiles against.
	DefaultRuntime = "github.com/blimu-dev/stripegen/runtime"
	// DefaultModule is the import path of the output root when none is configured.
	DefaultModule = "example.com/stripe"
	// TargetGo emits Go packages; TargetPlan emits the partition manifest.
	TargetGo   = "go"
	TargetPlan = "plan"
)

// Config represents the complete configuration for a generator run
type Config struct {
	// Spec is the OpenAPI document (JSON or YAML).
	Spec string `yaml:"spec" validate:"required"`
	// OutDir is the root of the generated tree.
	OutDir string `yaml:"outDir" validate:"required"`
	// Module is the Go import path that OutDir corresponds to.
	Module string `yaml:"module" validate:"required"`
	// Runtime is the import path of the runtime package.
	Runtime string `yaml:"runtime" validate:"required"`
	// IDPrefixes is the id_prefixes.json table.
	IDPrefixes string `yaml:"idPrefixes"`
	// Overrides are additional override files merged in order, later wins.
	Overrides []string `yaml:"overrides"`
	// Include is an optional regex over component paths.
	Include string `yaml:"include"`
	// Targets selects the generators to run.
	Targets []string `yaml:"targets" validate:"min=1,dive,oneof=go plan"`
	// Jobs is the worker count for emission and writing.
	Jobs int `yaml:"jobs" validate:"gte=0"`
	// MinSer emits the build-tagged min-ser decoders.
	MinSer bool `yaml:"minSer"`
	// GoMod emits a go.mod at the output root.
	GoMod bool `yaml:"goMod"`
	// SelfCheck renders every file twice and fails on any difference.
	SelfCheck bool `yaml:"selfCheck"`
	// ValidateSpec runs OpenAPI validation on the document after loading.
	ValidateSpec bool `yaml:"validateSpec"`
	// PreCommand is an optional command to run before generation starts.
	// Uses Docker Compose array format: ["git", "stash"]
	// The command will be executed in the output directory.
	PreCommand []string `yaml:"preCommand"`
	// PostCommand is an optional command to run after generation completes.
	// Uses Docker Compose array format: ["go", "build", "./..."]
	// The command will be executed in the output directory.
	PostCommand []string `yaml:"postCommand"`
	// ExcludeFiles is a list of file paths (relative to outDir) that should not be generated
	// Example: ["README.md", "checkout/requests.go"]
	ExcludeFiles []string `yaml:"exclude"`
}

// GetPreCommand returns the pre-generation command to execute.
func (c *Config) GetPreCommand() []string {
	return c.PreCommand
}

// GetPostCommand returns the post-generation command to execute.
func (c *Config) GetPostCommand() []string {
	return c.PostCommand
}

// HasTarget reports whether target is enabled.
func (c *Config) HasTarget(target string) bool {
	for _, t := range c.Targets {
		if t == target {
			return true
		}
	}
	return false
}

// IncludePattern compiles Include. A nil pattern matches everything.
func (c *Config) IncludePattern() (*regexp.Regexp, error) {
	if c.Include == "" {
		return nil, nil
	}
	re, err := regexp.Compile(c.Include)
	if err != nil {
		return nil, &generrors.ConfigError{Option: "include", Value: c.Include, Message: err.Error()}
	}
	return re, nil
}

// ShouldExcludeFile checks if a file path should be excluded based on the ExcludeFiles list.
// targetPath may be absolute or relative to OutDir.
func (c *Config) ShouldExcludeFile(targetPath string) bool {
	if len(c.ExcludeFiles) == 0 {
		return false
	}

	relPath := targetPath
	if filepath.IsAbs(targetPath) {
		rel, err := filepath.Rel(c.OutDir, targetPath)
		if err != nil {
			return false
		}
		relPath = rel
	}

	relPath = filepath.ToSlash(relPath)
	if relPath == "." {
		relPath = ""
	}

	for _, excludePattern := range c.ExcludeFiles {
		normalizedExclude := strings.TrimSuffix(filepath.ToSlash(excludePattern), "/")

		if relPath == normalizedExclude {
			return true
		}

		// "checkout/" excludes everything below checkout
		if normalizedExclude != "" && strings.HasPrefix(relPath, normalizedExclude+"/") {
			return true
		}
	}

	return false
}

// ApplyDefaults fills unset options.
func (c *Config) ApplyDefaults() {
	if c.Runtime == "" {
		c.Runtime = DefaultRuntime
	}
	if c.Module == "" {
		c.Module = DefaultModule
	}
	if len(c.Targets) == 0 {
		c.Targets = []string{TargetGo}
	}
	if c.Jobs == 0 {
		c.Jobs = runtime.GOMAXPROCS(0)
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration and reports the first invalid option.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &generrors.ConfigError{
				Option:  fe.Namespace(),
				Value:   fe.Value(),
				Message: fmt.Sprintf("failed %q validation", fe.Tag()),
			}
		}
		return &generrors.ConfigError{Option: "config", Message: err.Error()}
	}
	if _, err := c.IncludePattern(); err != nil {
		return err
	}
	return nil
}

// Load loads configuration from a YAML file. Relative paths are resolved
// against the directory holding the file. The result is not validated so
// that flags can still fill in missing options.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &generrors.ConfigError{Option: "config", Value: path, Message: err.Error()}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &generrors.ConfigError{Option: "config", Value: path, Message: err.Error()}
	}
	base := filepath.Dir(path)
	cfg.Spec = resolve(base, cfg.Spec)
	cfg.OutDir = resolve(base, cfg.OutDir)
	cfg.IDPrefixes = resolve(base, cfg.IDPrefixes)
	for i, o := range cfg.Overrides {
		cfg.Overrides[i] = resolve(base, o)
	}
	return &cfg, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(filepath.Join(base, p))
	if err != nil {
		return filepath.Join(base, p)
	}
	return abs
}
