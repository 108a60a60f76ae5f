// Package verify checks an emitted tree before it is written: every Go file
// parses, every reference into a generated package names a declared symbol,
// and the package import graph is acyclic.
package verify

import (
	"bytes"
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/partition"
	"github.com/blimu-dev/stripegen/pkg/writer"
)

// Options names the import paths the checks need.
type Options struct {
	// Module is the import path of the output root.
	Module string
	// Runtime is the import path of the runtime package. Imports below it are
	// never treated as generated packages.
	Runtime string
}

type parsedFile struct {
	path string
	dir  string
	file *ast.File
}

// Files checks the Go sources among files.
func Files(files []writer.File, opts Options) error {
	fset := token.NewFileSet()
	var parsed []parsedFile
	decls := make(map[string]map[string]bool)
	for _, f := range files {
		if !strings.HasSuffix(f.Path, ".go") {
			continue
		}
		af, err := parser.ParseFile(fset, f.Path, f.Data, parser.SkipObjectResolution)
		if err != nil {
			return &generrors.EmissionError{File: f.Path, Message: "emitted file does not parse", Cause: err}
		}
		dir := path.Dir(f.Path)
		if decls[dir] == nil {
			decls[dir] = make(map[string]bool)
		}
		for name := range topLevel(af) {
			decls[dir][name] = true
		}
		parsed = append(parsed, parsedFile{path: f.Path, dir: dir, file: af})
	}

	deps := make(map[string][]string)
	for _, pf := range parsed {
		imported, err := opts.generatedImports(pf, decls)
		if err != nil {
			return err
		}
		for local, target := range imported {
			if target == pf.dir {
				return &generrors.EmissionError{File: pf.path, Message: fmt.Sprintf("package %s imports itself", target)}
			}
			deps[pf.dir] = append(deps[pf.dir], target)
			if err := checkSelectors(pf, local, target, decls[target]); err != nil {
				return err
			}
		}
	}

	if cycles := partition.Cycles(deps); len(cycles) > 0 {
		return &generrors.EmissionError{
			Path:    strings.Join(cycles[0], ", "),
			Message: "import cycle between generated packages",
		}
	}
	return nil
}

// topLevel returns the package-scope identifiers declared by f. Methods are
// not package-scope and are skipped.
func topLevel(f *ast.File) map[string]bool {
	out := make(map[string]bool)
	for _, d := range f.Decls {
		switch d := d.(type) {
		case *ast.FuncDecl:
			if d.Recv == nil {
				out[d.Name.Name] = true
			}
		case *ast.GenDecl:
			for _, s := range d.Specs {
				switch s := s.(type) {
				case *ast.TypeSpec:
					out[s.Name.Name] = true
				case *ast.ValueSpec:
					for _, n := range s.Names {
						out[n.Name] = true
					}
				}
			}
		}
	}
	return out
}

// generatedImports maps the local name of every generated import of pf to
// its module directory.
func (o Options) generatedImports(pf parsedFile, decls map[string]map[string]bool) (map[string]string, error) {
	out := make(map[string]string)
	for _, spec := range pf.file.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return nil, &generrors.EmissionError{File: pf.path, Message: "malformed import", Cause: err}
		}
		if o.Runtime != "" && (p == o.Runtime || strings.HasPrefix(p, o.Runtime+"/")) {
			continue
		}
		if !strings.HasPrefix(p, o.Module+"/") {
			continue
		}
		target := strings.TrimPrefix(p, o.Module+"/")
		if _, ok := decls[target]; !ok {
			return nil, &generrors.EmissionError{Path: target, File: pf.path, Message: fmt.Sprintf("import of %q names no emitted package", p)}
		}
		local := path.Base(p)
		if spec.Name != nil {
			local = spec.Name.Name
		}
		out[local] = target
	}
	return out, nil
}

func checkSelectors(pf parsedFile, local, target string, declared map[string]bool) error {
	var missing []string
	ast.Inspect(pf.file, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		if x, ok := sel.X.(*ast.Ident); ok && x.Name == local && !declared[sel.Sel.Name] {
			missing = append(missing, sel.Sel.Name)
		}
		return true
	})
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &generrors.EmissionError{
		Path:    target + "." + missing[0],
		File:    pf.path,
		Message: "reference to a symbol the package does not declare",
	}
}

// Deterministic renders twice and reports the first file whose bytes differ.
func Deterministic(ctx context.Context, render func(context.Context) ([]writer.File, error)) error {
	first, err := render(ctx)
	if err != nil {
		return err
	}
	second, err := render(ctx)
	if err != nil {
		return err
	}
	byPath := make(map[string][]byte, len(first))
	for _, f := range first {
		byPath[f.Path] = f.Data
	}
	if len(first) != len(second) {
		return &generrors.EmissionError{Message: fmt.Sprintf("renders produced %d and %d files", len(first), len(second))}
	}
	for _, f := range second {
		data, ok := byPath[f.Path]
		if !ok || !bytes.Equal(data, f.Data) {
			return &generrors.EmissionError{File: f.Path, Message: "output differs between two renders"}
		}
	}
	return nil
}
