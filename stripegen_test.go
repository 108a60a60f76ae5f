package stripegen_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/stripegen"
	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/writer"
)

func TestGenerateAndValidate(t *testing.T) {
	opts := stripegen.Options{
		Spec:       filepath.Join("testdata", "widgets.json"),
		IDPrefixes: filepath.Join("testdata", "id_prefixes.json"),
		OutDir:     t.TempDir(),
		Module:     "github.com/acme/stripe",
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	require.NoError(t, stripegen.Validate(context.Background(), opts))

	res, err := stripegen.Generate(context.Background(), opts)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Files)

	opts.Check = true
	opts.Diff = io.Discard
	opts.Module = "github.com/acme/other"
	_, err = stripegen.Generate(context.Background(), opts)
	assert.ErrorIs(t, err, writer.ErrDrift)
}

func TestValidateMissingDocument(t *testing.T) {
	err := stripegen.Validate(context.Background(), stripegen.Options{
		Spec:   filepath.Join(t.TempDir(), "missing.json"),
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.ErrorIs(t, err, generrors.ErrInput)
}
