// Package golang emits the Go client packages for a planned IR: one package
// per module holding its types, enums, ID newtypes, request builders and the
// optional min-ser decoders, plus the root documentation files.
package golang

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"

	"github.com/blimu-dev/stripegen/pkg/config"
	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/ir"
	"github.com/blimu-dev/stripegen/pkg/partition"
	"github.com/blimu-dev/stripegen/pkg/writer"
)

// MinSerTag is the build tag guarding the min-ser decoders.
const MinSerTag = "stripe_miniser"

// Options controls emission.
type Options struct {
	// Module is the import path of the output root.
	Module string
	// Runtime is the import path of the runtime package.
	Runtime string
	// MinSer emits miniser.go files.
	MinSer bool
	// GoMod emits a go.mod at the output root.
	GoMod bool
	// Jobs bounds the number of files rendered concurrently.
	Jobs int
}

// GoGenerator renders Go packages.
type GoGenerator struct{}

// NewGoGenerator creates a new Go generator
func NewGoGenerator() *GoGenerator {
	return &GoGenerator{}
}

// GetType returns the generator type identifier
func (g *GoGenerator) GetType() string {
	return config.TargetGo
}

// Generate renders the Go packages configured by cfg.
func (g *GoGenerator) Generate(ctx context.Context, cfg *config.Config, r *ir.IR, plan *partition.Plan) ([]writer.File, error) {
	return g.Emit(ctx, r, plan, Options{
		Module:  cfg.Module,
		Runtime: cfg.Runtime,
		MinSer:  cfg.MinSer,
		GoMod:   cfg.GoMod,
		Jobs:    cfg.Jobs,
	})
}

// Emit renders every file of the output tree. The result is sorted by path
// and does not depend on Jobs.
func (g *GoGenerator) Emit(ctx context.Context, r *ir.IR, plan *partition.Plan, opts Options) ([]writer.File, error) {
	e := &emitter{ir: r, plan: plan, opts: opts}
	tasks := e.tasks()

	var mu sync.Mutex
	files := make([]writer.File, 0, len(tasks))

	eg, ctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		eg.SetLimit(opts.Jobs)
	}
	for _, t := range tasks {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := t.render()
			if err != nil {
				return err
			}
			if data == nil {
				return nil
			}
			mu.Lock()
			files = append(files, writer.File{Path: t.path, Data: data})
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	writer.SortFiles(files)
	return files, nil
}

type task struct {
	path   string
	render func() ([]byte, error)
}

type emitter struct {
	ir   *ir.IR
	plan *partition.Plan
	opts Options
}

func (e *emitter) tasks() []task {
	var out []task
	for _, module := range e.plan.Modules {
		out = append(out,
			e.goTask(module, partition.FileTypes, e.genTypes),
			e.goTask(module, partition.FileEnums, e.genEnums),
			e.goTask(module, partition.FileIDs, e.genIDs),
			e.goTask(module, partition.FileRequests, e.genRequests),
		)
		if e.opts.MinSer {
			out = append(out, e.goTask(module, "miniser.go", e.genMinSer))
		}
	}
	out = append(out,
		task{path: "doc.go", render: e.renderDoc},
		task{path: "README.md", render: e.renderReadme},
	)
	if e.opts.GoMod {
		out = append(out, task{path: "go.mod", render: e.renderGoMod})
	}
	return out
}

// generator fills f and reports whether it declared anything.
type generator func(f *fileGen) bool

func (e *emitter) goTask(module string, kind partition.FileKind, gen generator) task {
	return task{
		path: path.Join(module, string(kind)),
		render: func() ([]byte, error) {
			f := e.newFile(module, string(kind))
			if !gen(f) {
				return nil, f.err
			}
			if f.err != nil {
				return nil, f.err
			}
			var buf bytes.Buffer
			if err := f.Render(&buf); err != nil {
				return nil, &generrors.EmissionError{Path: module, File: f.name, Message: "render", Cause: err}
			}
			return buf.Bytes(), nil
		},
	}
}

// fileGen is one Go file under construction. The first resolution failure is
// kept in err and aborts the file.
type fileGen struct {
	*jen.File
	e      *emitter
	module string
	name   string
	err    error
}

func (e *emitter) newFile(module, name string) *fileGen {
	f := jen.NewFilePathName(e.pkgPath(module), module)
	f.HeaderComment(writer.GeneratedHeader)
	f.ImportName(e.opts.Runtime, "runtime")
	f.ImportName(e.opts.Runtime+"/miniser", "miniser")
	for _, m := range e.plan.Modules {
		f.ImportName(e.pkgPath(m), m)
	}
	return &fileGen{File: f, e: e, module: module, name: path.Join(module, name)}
}

func (e *emitter) pkgPath(module string) string {
	return path.Join(e.opts.Module, module)
}

func (f *fileGen) fail(path, format string, args ...any) {
	if f.err == nil {
		f.err = &generrors.EmissionError{Path: path, File: f.name, Message: fmt.Sprintf(format, args...)}
	}
}

// node resolves path and records an error when it is not planned.
func (f *fileGen) node(path string) (*ir.Node, string, bool) {
	n, ok := f.e.ir.Nodes[path]
	if !ok {
		f.fail(path, "reference to undefined definition")
		return nil, "", false
	}
	module := f.e.plan.Module(path)
	if module == "" {
		f.fail(path, "definition has no owning module")
		return nil, "", false
	}
	return n, module, true
}

// qual names the definition at path from the current module.
func (f *fileGen) qual(path string) *jen.Statement {
	n, module, ok := f.node(path)
	if !ok {
		return jen.Id("invalid")
	}
	return jen.Qual(f.e.pkgPath(module), n.Name)
}

// rt names a runtime symbol.
func (f *fileGen) rt(name string) *jen.Statement {
	return jen.Qual(f.e.opts.Runtime, name)
}

// owned returns the definitions of the current module with the given kind.
func (f *fileGen) owned(kinds ...ir.NodeKind) []*ir.Node {
	var out []*ir.Node
	for _, p := range f.e.plan.Definitions(f.module) {
		n, ok := f.e.ir.Nodes[p]
		if !ok {
			f.fail(p, "planned definition is missing from the IR")
			continue
		}
		for _, k := range kinds {
			if n.Kind == k {
				out = append(out, n)
				break
			}
		}
	}
	return out
}
