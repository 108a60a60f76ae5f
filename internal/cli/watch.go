package cli

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/blimu-dev/stripegen/pkg/config"
	"github.com/blimu-dev/stripegen/pkg/generrors"
)

// watchDebounce groups the bursts of events editors produce on save.
var watchDebounce = 200 * time.Millisecond

// RunWatch generates once and then again after every change to the document,
// the override files or the config file, until ctx is cancelled. Generation
// failures are logged and do not stop the watch.
func RunWatch(ctx context.Context, p Params, stdout io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	p.Check = false
	cfg, err := BuildConfig(p)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &generrors.IOError{Op: "watch", Path: cfg.Spec, Cause: err}
	}
	defer watcher.Close()

	inputs := watchedInputs(cfg, p.ConfigPath)
	dirs := make(map[string]bool)
	for in := range inputs {
		dir := filepath.Dir(in)
		if dirs[dir] {
			continue
		}
		// Directories, not files: editors replace files on save.
		if err := watcher.Add(dir); err != nil {
			return &generrors.IOError{Op: "watch", Path: dir, Cause: err}
		}
		dirs[dir] = true
	}

	regenerate := func() {
		if err := RunGenerate(ctx, p, stdout, logger); err != nil {
			logger.Error("generation failed", "err", err)
		}
	}
	regenerate()
	logger.Info("watching for changes", "files", len(inputs))

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !inputs[filepath.Clean(ev.Name)] || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("input changed", "path", ev.Name, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		case <-fire:
			fire = nil
			regenerate()
		}
	}
}

func watchedInputs(cfg *config.Config, configPath string) map[string]bool {
	inputs := map[string]bool{filepath.Clean(cfg.Spec): true}
	if cfg.IDPrefixes != "" {
		inputs[filepath.Clean(cfg.IDPrefixes)] = true
	}
	for _, o := range cfg.Overrides {
		inputs[filepath.Clean(o)] = true
	}
	if configPath != "" {
		inputs[filepath.Clean(absPath(configPath))] = true
	}
	return inputs
}
