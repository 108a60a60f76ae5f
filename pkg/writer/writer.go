// Package writer places generated files on disk. Every file is written to a
// temporary sibling and renamed into place, so a cancelled or failed run never
// leaves a partial file behind.
package writer

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/blimu-dev/stripegen/pkg/generrors"
)

// Options controls a write.
type Options struct {
	// Dir is the output root.
	Dir string
	// Jobs bounds the number of files written concurrently.
	Jobs int
	// Exclude reports whether a path relative to Dir must be left alone.
	Exclude func(rel string) bool
	// Prune removes generated files under Dir that are no longer produced.
	Prune  bool
	Logger *slog.Logger
}

func (o Options) excluded(rel string) bool {
	return o.Exclude != nil && o.Exclude(rel)
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Stats counts what a write did.
type Stats struct {
	Written   int
	Unchanged int
	Excluded  int
	Pruned    int
}

// Write places files under opts.Dir. Files whose content is already on disk
// are not rewritten.
func Write(ctx context.Context, files []File, opts Options) (Stats, error) {
	var (
		mu    sync.Mutex
		stats Stats
	)
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return stats, &generrors.IOError{Op: "mkdir", Path: opts.Dir, Cause: err}
	}

	eg, gctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		eg.SetLimit(opts.Jobs)
	}
	for _, f := range files {
		if opts.excluded(f.Path) {
			mu.Lock()
			stats.Excluded++
			mu.Unlock()
			continue
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			changed, err := writeFile(filepath.Join(opts.Dir, filepath.FromSlash(f.Path)), f.Data)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if changed {
				stats.Written++
			} else {
				stats.Unchanged++
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return stats, err
	}

	if opts.Prune {
		pruned, err := prune(ctx, files, opts)
		stats.Pruned = len(pruned)
		if err != nil {
			return stats, err
		}
	}
	opts.logger().Debug("wrote output tree", "dir", opts.Dir,
		"written", stats.Written, "unchanged", stats.Unchanged,
		"excluded", stats.Excluded, "pruned", stats.Pruned)
	return stats, nil
}

// writeFile replaces target with data and reports whether anything changed.
func writeFile(target string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, &generrors.IOError{Op: "mkdir", Path: dir, Cause: err}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".tmp-*")
	if err != nil {
		return false, &generrors.IOError{Op: "create", Path: target, Cause: err}
	}
	cleanup := func(op string, cause error) (bool, error) {
		tmp.Close()
		os.Remove(tmp.Name())
		return false, &generrors.IOError{Op: op, Path: target, Cause: cause}
	}
	if _, err := tmp.Write(data); err != nil {
		return cleanup("write", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return cleanup("chmod", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return false, &generrors.IOError{Op: "close", Path: target, Cause: err}
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return false, &generrors.IOError{Op: "rename", Path: target, Cause: err}
	}
	return true, nil
}

// stale lists generated files under opts.Dir, relative and in slash form,
// that files no longer produces.
func stale(files []File, opts Options) ([]string, error) {
	produced := make(map[string]bool, len(files))
	for _, f := range files {
		produced[f.Path] = true
	}
	var out []string
	err := filepath.WalkDir(opts.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != opts.Dir && d.Name()[0] == '.' {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(opts.Dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if produced[rel] || opts.excluded(rel) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if IsGenerated(data) {
			out = append(out, rel)
		}
		return nil
	})
	if err != nil {
		return nil, &generrors.IOError{Op: "walk", Path: opts.Dir, Cause: err}
	}
	sort.Strings(out)
	return out, nil
}

func prune(ctx context.Context, files []File, opts Options) ([]string, error) {
	old, err := stale(files, opts)
	if err != nil {
		return nil, err
	}
	var pruned []string
	for _, rel := range old {
		if err := ctx.Err(); err != nil {
			return pruned, err
		}
		path := filepath.Join(opts.Dir, filepath.FromSlash(rel))
		if err := os.Remove(path); err != nil {
			return pruned, &generrors.IOError{Op: "remove", Path: path, Cause: err}
		}
		pruned = append(pruned, rel)
		opts.logger().Debug("pruned stale file", "path", rel)
		removeEmptyParents(opts.Dir, filepath.Dir(path))
	}
	return pruned, nil
}

// removeEmptyParents deletes dir and its ancestors below root while they are
// empty.
func removeEmptyParents(root, dir string) {
	root = filepath.Clean(root)
	for dir != root && len(dir) > len(root) {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if os.Remove(dir) != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
