package writer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/blimu-dev/stripegen/pkg/generrors"
)

// ErrDrift is returned by Check when the tree on disk differs from what
// would be generated.
var ErrDrift = errors.New("stripe-gen: generated tree is out of date")

// DriftError lists the paths that differ.
type DriftError struct {
	Paths []string
}

func (e *DriftError) Error() string {
	return fmt.Sprintf("%v: %d file(s) differ: %s", ErrDrift, len(e.Paths), strings.Join(e.Paths, ", "))
}

func (e *DriftError) Is(target error) bool { return target == ErrDrift }

// Check renders files into a scratch directory, compares the result with
// opts.Dir and prints a unified diff for every difference to out. Nothing
// under opts.Dir is modified.
func Check(ctx context.Context, files []File, opts Options, out io.Writer) error {
	scratch, err := os.MkdirTemp("", "stripe-gen-check-*")
	if err != nil {
		return &generrors.IOError{Op: "mkdtemp", Path: os.TempDir(), Cause: err}
	}
	defer os.RemoveAll(scratch)

	staged := opts
	staged.Dir = scratch
	staged.Prune = false
	if _, err := Write(ctx, files, staged); err != nil {
		return err
	}

	var drift []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.excluded(f.Path) {
			continue
		}
		want, err := os.ReadFile(filepath.Join(scratch, filepath.FromSlash(f.Path)))
		if err != nil {
			return &generrors.IOError{Op: "read", Path: f.Path, Cause: err}
		}
		have, err := readIfExists(filepath.Join(opts.Dir, filepath.FromSlash(f.Path)))
		if err != nil {
			return err
		}
		if bytes.Equal(have, want) {
			continue
		}
		drift = append(drift, f.Path)
		if err := writeDiff(out, f.Path, have, want); err != nil {
			return err
		}
	}

	if opts.Prune {
		old, err := stale(files, opts)
		if err != nil {
			return err
		}
		for _, rel := range old {
			have, err := readIfExists(filepath.Join(opts.Dir, filepath.FromSlash(rel)))
			if err != nil {
				return err
			}
			drift = append(drift, rel)
			if err := writeDiff(out, rel, have, nil); err != nil {
				return err
			}
		}
	}

	if len(drift) > 0 {
		return &DriftError{Paths: drift}
	}
	return nil
}

func readIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &generrors.IOError{Op: "read", Path: path, Cause: err}
	}
	return data, nil
}

func writeDiff(out io.Writer, rel string, have, want []byte) error {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(have)),
		B:        difflib.SplitLines(string(want)),
		FromFile: "a/" + rel,
		ToFile:   "b/" + rel,
		Context:  3,
	}
	if have == nil {
		diff.A = nil
		diff.FromFile = "/dev/null"
	}
	if want == nil {
		diff.B = nil
		diff.ToFile = "/dev/null"
	}
	if err := difflib.WriteUnifiedDiff(out, diff); err != nil {
		return &generrors.IOError{Op: "diff", Path: rel, Cause: err}
	}
	return nil
}
