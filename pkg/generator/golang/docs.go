package golang

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"golang.org/x/tools/imports"

	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/ir"
	"github.com/blimu-dev/stripegen/pkg/partition"
	"github.com/blimu-dev/stripegen/pkg/writer"
)

//go:embed templates/*
var templatesFS embed.FS

var templates = template.Must(
	template.New("").Funcs(sprig.TxtFuncMap()).ParseFS(templatesFS, "templates/*.gotmpl"),
)

type moduleSummary struct {
	Name     string
	Types    []string
	Requests []string
	Imports  []string
}

type usageExample struct {
	Module   string
	Request  string
	Args     string
	PathArgs string
}

type docData struct {
	Header    string
	Package   string
	Module    string
	Runtime   string
	MinSer    bool
	MinSerTag string
	Modules   []moduleSummary
	Demoted   []partition.Edge
	Example   usageExample
}

func (e *emitter) docData() docData {
	d := docData{
		Header:    writer.GeneratedHeader,
		Package:   rootPackageName(e.opts.Module),
		Module:    e.opts.Module,
		Runtime:   e.opts.Runtime,
		MinSer:    e.opts.MinSer,
		MinSerTag: MinSerTag,
		Demoted:   e.plan.DemotedEdges(),
	}
	for _, m := range e.plan.Modules {
		s := moduleSummary{Name: m, Imports: e.plan.Imports(m)}
		for _, p := range e.plan.Definitions(m) {
			if n, ok := e.ir.Nodes[p]; ok {
				s.Types = append(s.Types, n.Name)
			}
		}
		for _, req := range e.plan.Requests(m) {
			s.Requests = append(s.Requests, req.Name)
		}
		d.Modules = append(d.Modules, s)
	}
	d.Example = e.example()
	return d
}

// example picks the first request in name order for the README snippet.
func (e *emitter) example() usageExample {
	reqs := append([]*ir.Request(nil), e.ir.Requests...)
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].Name < reqs[j].Name })
	if len(reqs) == 0 {
		return usageExample{Module: partition.Shared, Request: "Request"}
	}
	req := reqs[0]
	module := e.plan.RequestModule(req.Name)
	var args, pathArgs []string
	for _, p := range req.Params {
		if p.Required && !p.Type.IsNullable() {
			args = append(args, e.argName(module, p.Wire))
		}
	}
	for _, p := range orderPathParams(req) {
		pathArgs = append(pathArgs, ", "+e.argName(module, p.Wire))
	}
	return usageExample{
		Module:   module,
		Request:  req.Name,
		Args:     strings.Join(args, ", "),
		PathArgs: strings.Join(pathArgs, ""),
	}
}

func (e *emitter) execute(name string) ([]byte, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, e.docData()); err != nil {
		return nil, &generrors.EmissionError{File: name, Message: fmt.Sprintf("execute template %q", name), Cause: err}
	}
	return buf.Bytes(), nil
}

func (e *emitter) renderDoc() ([]byte, error) {
	src, err := e.execute("doc.go.gotmpl")
	if err != nil {
		return nil, err
	}
	formatted, err := imports.Process("doc.go", src, nil)
	if err != nil {
		return nil, &generrors.EmissionError{File: "doc.go", Message: "format", Cause: err}
	}
	return formatted, nil
}

func (e *emitter) renderReadme() ([]byte, error) {
	return e.execute("README.md.gotmpl")
}

func (e *emitter) renderGoMod() ([]byte, error) {
	return e.execute("go.mod.gotmpl")
}
