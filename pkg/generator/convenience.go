package generator

import (
	"context"
	"path/filepath"

	"github.com/blimu-dev/stripegen/pkg/config"
	"github.com/blimu-dev/stripegen/pkg/openapi"
)

// GenerateFromConfig is a convenience function for generating from a config file
func GenerateFromConfig(ctx context.Context, configPath string) (*Result, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if cfg.OutDir == "" {
		cfg.OutDir = filepath.Dir(configPath)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewService(nil).Generate(ctx, cfg, GenerateOptions{})
}

// ValidateSpec loads and validates an OpenAPI document
func ValidateSpec(ctx context.Context, specPath string) error {
	return openapi.ValidateDocument(ctx, specPath)
}
