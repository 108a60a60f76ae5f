package generator

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/stripegen/pkg/config"
	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/writer"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	spec, err := filepath.Abs(filepath.Join("..", "..", "testdata", "widgets.json"))
	require.NoError(t, err)
	cfg := &config.Config{
		Spec:       spec,
		OutDir:     t.TempDir(),
		IDPrefixes: filepath.Join("..", "..", "testdata", "id_prefixes.json"),
		Targets:    []string{config.TargetGo, config.TargetPlan},
		Jobs:       2,
		SelfCheck:  true,
	}
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())
	return cfg
}

func quietService() *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRegistry(t *testing.T) {
	s := quietService()
	assert.Equal(t, []string{config.TargetGo, config.TargetPlan}, s.GetRegistry().GetAvailableTypes())
	_, ok := s.GetRegistry().Get("typescript")
	assert.False(t, ok)
}

func TestServiceGenerate(t *testing.T) {
	cfg := testConfig(t)
	s := quietService()

	res, err := s.Generate(context.Background(), cfg, GenerateOptions{})
	require.NoError(t, err)
	assert.Equal(t, len(res.Files), res.Stats.Written)
	for _, rel := range []string{"widget/types.go", "shared/ids.go", "doc.go", "README.md", "stripe-gen.plan.yaml"} {
		_, err := os.Stat(filepath.Join(cfg.OutDir, filepath.FromSlash(rel)))
		assert.NoError(t, err, rel)
	}

	res, err = s.Generate(context.Background(), cfg, GenerateOptions{})
	require.NoError(t, err)
	assert.Zero(t, res.Stats.Written)
	assert.Equal(t, len(res.Files), res.Stats.Unchanged)

	var diff bytes.Buffer
	_, err = s.Generate(context.Background(), cfg, GenerateOptions{Check: true, Diff: &diff})
	require.NoError(t, err)
	assert.Empty(t, diff.String())
}

func TestServiceCheckDetectsDrift(t *testing.T) {
	cfg := testConfig(t)
	s := quietService()
	_, err := s.Generate(context.Background(), cfg, GenerateOptions{})
	require.NoError(t, err)

	target := filepath.Join(cfg.OutDir, "widget", "enums.go")
	require.NoError(t, os.WriteFile(target, []byte("// "+writer.GeneratedHeader+"\n\npackage widget\n"), 0o644))

	var diff bytes.Buffer
	_, err = s.Generate(context.Background(), cfg, GenerateOptions{Check: true, Diff: &diff})
	require.ErrorIs(t, err, writer.ErrDrift)
	assert.Contains(t, diff.String(), "+++ b/widget/enums.go")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "// "+writer.GeneratedHeader+"\n\npackage widget\n", string(data))
}

func TestServiceExclude(t *testing.T) {
	cfg := testConfig(t)
	cfg.ExcludeFiles = []string{"README.md", "card/"}

	_, err := quietService().Generate(context.Background(), cfg, GenerateOptions{})
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(cfg.OutDir, "README.md"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(cfg.OutDir, "card"))
	assert.True(t, os.IsNotExist(err))
}

func TestServiceUnsupportedTarget(t *testing.T) {
	cfg := testConfig(t)
	cfg.Targets = []string{"typescript"}

	_, err := quietService().Generate(context.Background(), cfg, GenerateOptions{})
	require.ErrorIs(t, err, generrors.ErrUsage)
	assert.Contains(t, err.Error(), "typescript")
}

func TestServicePrepareReportsInputErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.Spec = filepath.Join(t.TempDir(), "missing.json")

	_, _, err := quietService().Prepare(context.Background(), cfg)
	require.ErrorIs(t, err, generrors.ErrInput)
}

func TestServicePostCommand(t *testing.T) {
	cfg := testConfig(t)
	cfg.PostCommand = []string{"stripe-gen-command-that-does-not-exist"}

	_, err := quietService().Generate(context.Background(), cfg, GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "post-command")
}

func TestValidateSpec(t *testing.T) {
	require.NoError(t, ValidateSpec(context.Background(), filepath.Join("..", "..", "testdata", "widgets.json")))
	err := ValidateSpec(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, generrors.ErrInput)
}

func TestGenerateFromConfig(t *testing.T) {
	dir := t.TempDir()
	spec, err := filepath.Abs(filepath.Join("..", "..", "testdata", "widgets.json"))
	require.NoError(t, err)
	path := filepath.Join(dir, "stripe-gen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("spec: "+spec+"\noutDir: out\ntargets: [plan]\n"), 0o644))

	res, err := GenerateFromConfig(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	_, err = os.Stat(filepath.Join(dir, "out", "stripe-gen.plan.yaml"))
	assert.NoError(t, err)
}
