// Package manifest renders the partition plan as YAML so placement decisions
// can be reviewed alongside the generated tree.
package manifest

import (
	"bytes"
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/blimu-dev/stripegen/pkg/config"
	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/ir"
	"github.com/blimu-dev/stripegen/pkg/partition"
	"github.com/blimu-dev/stripegen/pkg/writer"
)

// FileName is the manifest path relative to the output root.
const FileName = "stripe-gen.plan.yaml"

// Manifest is the serialized plan.
type Manifest struct {
	Modules []Module `yaml:"modules"`
	Demoted []Edge   `yaml:"demoted,omitempty"`
}

// Module is one generated package.
type Module struct {
	Name     string       `yaml:"name"`
	Imports  []string     `yaml:"imports,omitempty"`
	Types    []Definition `yaml:"types,omitempty"`
	Requests []Request    `yaml:"requests,omitempty"`
}

// Definition is a placed IR node.
type Definition struct {
	Path string `yaml:"path"`
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
	File string `yaml:"file"`
}

// Request is a placed request builder.
type Request struct {
	Name   string `yaml:"name"`
	Method string `yaml:"method"`
	Path   string `yaml:"path"`
}

// Edge is a demoted module dependency.
type Edge struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Build collects the manifest of plan.
func Build(r *ir.IR, plan *partition.Plan) *Manifest {
	m := &Manifest{}
	for _, name := range plan.Modules {
		mod := Module{Name: name, Imports: plan.Imports(name)}
		for _, p := range plan.Definitions(name) {
			n, ok := r.Node(p)
			if !ok {
				continue
			}
			addr, _ := plan.Address(p)
			mod.Types = append(mod.Types, Definition{Path: p, Name: n.Name, Kind: string(n.Kind), File: string(addr.File)})
		}
		for _, req := range plan.Requests(name) {
			mod.Requests = append(mod.Requests, Request{Name: req.Name, Method: req.Method, Path: req.Path})
		}
		m.Modules = append(m.Modules, mod)
	}
	for _, e := range plan.DemotedEdges() {
		m.Demoted = append(m.Demoted, Edge{From: e.From, To: e.To})
	}
	return m
}

// Render encodes m behind the generated-code header.
func Render(m *Manifest) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", writer.GeneratedHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, &generrors.EmissionError{File: FileName, Message: "encode plan", Cause: err}
	}
	if err := enc.Close(); err != nil {
		return nil, &generrors.EmissionError{File: FileName, Message: "encode plan", Cause: err}
	}
	return buf.Bytes(), nil
}

// Generator emits the manifest as the "plan" target.
type Generator struct{}

// NewGenerator creates a new manifest generator
func NewGenerator() *Generator {
	return &Generator{}
}

// GetType returns the generator type identifier
func (g *Generator) GetType() string {
	return config.TargetPlan
}

// Generate renders the manifest file.
func (g *Generator) Generate(_ context.Context, _ *config.Config, r *ir.IR, plan *partition.Plan) ([]writer.File, error) {
	return g.Emit(r, plan)
}

// Emit renders the manifest file.
func (g *Generator) Emit(r *ir.IR, plan *partition.Plan) ([]writer.File, error) {
	data, err := Render(Build(r, plan))
	if err != nil {
		return nil, err
	}
	return []writer.File{{Path: FileName, Data: data}}, nil
}
