package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/stripegen/pkg/generrors"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stripe-gen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
spec: openapi/spec3.json
outDir: out
module: github.com/acme/stripe
idPrefixes: id_prefixes.json
overrides: [overrides.yaml]
include: "^(widget|checkout)"
minSer: true
exclude: ["README.md"]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "openapi", "spec3.json"), cfg.Spec)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutDir)
	assert.Equal(t, filepath.Join(dir, "id_prefixes.json"), cfg.IDPrefixes)
	assert.Equal(t, []string{filepath.Join(dir, "overrides.yaml")}, cfg.Overrides)
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultRuntime, cfg.Runtime)
	assert.Equal(t, []string{TargetGo}, cfg.Targets)
	assert.Positive(t, cfg.Jobs)
	assert.True(t, cfg.MinSer)

	re, err := cfg.IncludePattern()
	require.NoError(t, err)
	assert.True(t, re.MatchString("checkout.session"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		option string
	}{
		{"missing spec", func(c *Config) { c.Spec = "" }, "Config.Spec"},
		{"bad target", func(c *Config) { c.Targets = []string{"rust"} }, "Config.Targets[0]"},
		{"negative jobs", func(c *Config) { c.Jobs = -2 }, "Config.Jobs"},
		{"bad include", func(c *Config) { c.Include = "(" }, "include"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Spec: "spec.json", OutDir: "out"}
			cfg.ApplyDefaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			var cerr *generrors.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.option, cerr.Option)
			assert.ErrorIs(t, err, generrors.ErrUsage)
		})
	}
}

func TestShouldExcludeFile(t *testing.T) {
	cfg := &Config{OutDir: "/out", ExcludeFiles: []string{"README.md", "checkout/"}}
	tests := []struct {
		path string
		want bool
	}{
		{"/out/README.md", true},
		{"README.md", true},
		{"/out/checkout/types.go", true},
		{"checkout/requests.go", true},
		{"/out/widget/types.go", false},
		{"checkoutx/types.go", false},
	}
	for _, tt := range tests {
		if got := cfg.ShouldExcludeFile(tt.path); got != tt.want {
			t.Errorf("ShouldExcludeFile(%q) = %v, expected %v", tt.path, got, tt.want)
		}
	}
}
