// Package partition assigns every IR definition and request to a module
// (one Go package per family plus a shared package) so that the module
// import graph is acyclic.
package partition

import (
	"fmt"
	"sort"

	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/ir"
	"github.com/blimu-dev/stripegen/pkg/utils"
)

// Shared is the module holding definitions used by several families.
const Shared = "shared"

// FileKind is the file a definition is emitted into.
type FileKind string

const (
	FileTypes    FileKind = "types.go"
	FileEnums    FileKind = "enums.go"
	FileIDs      FileKind = "ids.go"
	FileRequests FileKind = "requests.go"
)

// Address is where a definition lives.
type Address struct {
	Module string
	File   FileKind
}

// Edge is a dependency between two modules.
type Edge struct {
	From string
	To   string
}

// Plan is the output of the planner. It is immutable once Build returns.
type Plan struct {
	// Modules lists every module in sorted order.
	Modules []string

	owner    map[string]string
	requests map[string]string
	demoted  map[Edge]bool
	imports  map[string][]string
	ir       *ir.IR
}

// Address returns the module and file of the definition at path.
func (p *Plan) Address(path string) (Address, bool) {
	module, ok := p.owner[path]
	if !ok {
		return Address{}, false
	}
	return Address{Module: module, File: fileOf(p.ir.Nodes[path])}, true
}

// Module returns the module owning path.
func (p *Plan) Module(path string) string { return p.owner[path] }

// RequestModule returns the module of the named request.
func (p *Plan) RequestModule(name string) string { return p.requests[name] }

// Demoted reports whether expandable fields in module from that point at the
// definition target are emitted ID-only.
func (p *Plan) Demoted(from, target string) bool {
	return p.demoted[Edge{From: from, To: p.owner[target]}]
}

// DemotedEdges returns the demoted module edges in sorted order.
func (p *Plan) DemotedEdges() []Edge {
	out := make([]Edge, 0, len(p.demoted))
	for e := range p.demoted {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// Imports returns the modules that module depends on, sorted.
func (p *Plan) Imports(module string) []string { return p.imports[module] }

// Definitions returns the paths owned by module in sorted order.
func (p *Plan) Definitions(module string) []string {
	var out []string
	for _, path := range p.ir.Paths() {
		if p.owner[path] == module {
			out = append(out, path)
		}
	}
	return out
}

// Requests returns the requests of module in IR order.
func (p *Plan) Requests(module string) []*ir.Request {
	var out []*ir.Request
	for _, req := range p.ir.Requests {
		if p.requests[req.Name] == module {
			out = append(out, req)
		}
	}
	return out
}

func fileOf(n *ir.Node) FileKind {
	switch n.Kind {
	case ir.KindEnum:
		return FileEnums
	case ir.KindID:
		return FileIDs
	}
	return FileTypes
}

// ModuleName maps a family onto a Go package name. A family that would
// collide with the shared module is renamed.
func ModuleName(family string) string {
	name := utils.PackageName(family)
	if name == Shared {
		return Shared + "family"
	}
	return name
}

// Build plans the modules of r.
//
// Families come from pinned definitions (overrides, x-stripeResource) and
// resources; every other definition joins the one family that reaches it, or
// the shared module when several do. A union nobody reaches joins the module
// of its variants when they all share one. Strongly connected module groups first
// have their expandable edges demoted to ID-only; a remaining cycle moves the
// smallest definition it references into shared and the plan
// is rebuilt.
func Build(r *ir.IR) (*Plan, error) {
	forced := make(map[string]bool)
	for round := 0; round <= len(r.Nodes)+1; round++ {
		p := assign(r, forced)
		p.demoted = make(map[Edge]bool)

		deps := p.edges()
		for _, scc := range deps.graph(p.demoted).cycles() {
			in := make(map[string]bool, len(scc))
			for _, m := range scc {
				in[m] = true
			}
			for e, kinds := range deps {
				if in[e.From] && in[e.To] && kinds.expandable {
					p.demoted[e] = true
				}
			}
		}

		cycles := deps.graph(p.demoted).cycles()
		if len(cycles) == 0 {
			p.finish(deps)
			return p, nil
		}
		victim := deps.victim(cycles[0], forced)
		if victim == "" {
			return nil, &generrors.PlanningError{Path: cycles[0][0], Message: fmt.Sprintf("module cycle %v cannot be broken", cycles[0])}
		}
		forced[victim] = true
	}
	return nil, &generrors.PlanningError{Path: Shared, Message: "cycle breaking did not converge"}
}

// assign computes module ownership for one planning round.
func assign(r *ir.IR, forced map[string]bool) *Plan {
	p := &Plan{
		owner:    make(map[string]string),
		requests: make(map[string]string),
		ir:       r,
	}
	paths := r.Paths()

	// seeds
	seeds := make(map[string]string)
	for _, path := range paths {
		n := r.Nodes[path]
		switch {
		case n.Family != "":
			seeds[path] = ModuleName(n.Family)
		case n.Kind == ir.KindStruct && n.Resource:
			seeds[path] = ModuleName(path)
		}
	}
	for _, req := range r.Requests {
		module := ModuleName(req.Family)
		if seed, ok := seeds[req.Resource]; ok {
			module = seed
		} else if req.Resource != "" {
			module = ModuleName(req.Resource)
		}
		p.requests[req.Name] = module
	}

	// reach: which families pull in each unpinned definition
	reached := make(map[string]map[string]bool)
	var walk func(module, path string)
	walk = func(module, path string) {
		n, ok := r.Nodes[path]
		if !ok || n.Kind == ir.KindID {
			return
		}
		if seed, ok := seeds[path]; ok && seed != module {
			return
		}
		if reached[path] == nil {
			reached[path] = make(map[string]bool)
		}
		if reached[path][module] {
			return
		}
		reached[path][module] = true
		for _, t := range n.Refs() {
			if t.Ref != "" {
				walk(module, t.Ref)
			}
		}
	}
	for _, path := range paths {
		if seed, ok := seeds[path]; ok {
			walk(seed, path)
		}
	}
	for _, req := range r.Requests {
		for _, t := range req.Types() {
			t.Walk(func(t ir.Type) {
				if t.Ref != "" && (t.Kind == ir.KindRef || t.Kind == ir.KindExpandable) {
					walk(p.requests[req.Name], t.Ref)
				}
			})
		}
	}

	var unreached []string
	for _, path := range paths {
		n := r.Nodes[path]
		if n.Kind == ir.KindID {
			continue
		}
		if seed, ok := seeds[path]; ok {
			p.owner[path] = seed
			continue
		}
		families := sortedSet(reached[path])
		switch len(families) {
		case 0:
			unreached = append(unreached, path)
		case 1:
			p.owner[path] = families[0]
		default:
			p.owner[path] = Shared
		}
	}
	// Unreached unions sit next to their variants when those share a
	// module; anything else goes with its owner.
	for _, path := range unreached {
		n := r.Nodes[path]
		if module := variantModule(p, n); module != "" {
			p.owner[path] = module
		} else if seed, ok := seeds[n.Owner]; ok {
			p.owner[path] = seed
		} else {
			p.owner[path] = ModuleName(n.Owner)
		}
	}
	for path := range forced {
		p.owner[path] = Shared
	}

	// shared closure over plain references
	for changed := true; changed; {
		changed = false
		for _, path := range paths {
			if p.owner[path] != Shared {
				continue
			}
			for _, t := range r.Nodes[path].Refs() {
				if t.Kind == ir.KindRef && p.owner[t.Ref] != Shared {
					if _, ok := r.Nodes[t.Ref]; ok && r.Nodes[t.Ref].Kind != ir.KindID {
						p.owner[t.Ref] = Shared
						changed = true
					}
				}
			}
		}
	}

	// ID newtypes live with their resource unless another module uses them
	users := make(map[string]map[string]bool)
	use := func(module string, t ir.Type) {
		t.Walk(func(t ir.Type) {
			if t.ID == "" {
				return
			}
			if users[t.ID] == nil {
				users[t.ID] = make(map[string]bool)
			}
			users[t.ID][module] = true
		})
	}
	for _, path := range paths {
		if r.Nodes[path].Kind == ir.KindID {
			continue
		}
		for _, t := range r.Nodes[path].Refs() {
			use(p.owner[path], t)
		}
	}
	for _, req := range r.Requests {
		for _, t := range req.Types() {
			use(p.requests[req.Name], t)
		}
	}
	for _, path := range paths {
		n := r.Nodes[path]
		if n.Kind != ir.KindID {
			continue
		}
		home, ok := p.owner[n.ID.Resource]
		if !ok {
			home = Shared
		}
		for module := range users[path] {
			if module != home {
				home = Shared
				break
			}
		}
		p.owner[path] = home
	}
	return p
}

// variantModule returns the module owning every variant of the union n, or
// "" when n is not a union or its variants are spread over several modules.
func variantModule(p *Plan, n *ir.Node) string {
	if n.Kind != ir.KindTaggedUnion && n.Kind != ir.KindUntaggedUnion {
		return ""
	}
	module := ""
	for _, t := range n.Refs() {
		if t.Kind != ir.KindRef {
			continue
		}
		owner := p.owner[t.Ref]
		if owner == "" || (module != "" && owner != module) {
			return ""
		}
		module = owner
	}
	return module
}

// edgeKinds records which kinds of reference cross a module edge.
type edgeKinds struct {
	plain      bool
	expandable bool
	// targets are the definitions referenced by plain edges.
	targets map[string]bool
}

type dependencies map[Edge]*edgeKinds

func (d dependencies) add(from, to, target string, expandable bool) {
	if from == to || to == "" {
		return
	}
	e := Edge{From: from, To: to}
	k, ok := d[e]
	if !ok {
		k = &edgeKinds{targets: make(map[string]bool)}
		d[e] = k
	}
	if expandable {
		k.expandable = true
		return
	}
	k.plain = true
	k.targets[target] = true
}

// edges collects the module dependencies of the current assignment.
// Expandable references out of shared are demoted here.
func (p *Plan) edges() dependencies {
	d := make(dependencies)
	collect := func(from string, t ir.Type) {
		t.Walk(func(t ir.Type) {
			switch {
			case t.Kind == ir.KindExpandable:
				to := p.owner[t.Ref]
				d.add(from, to, t.Ref, true)
				if from == Shared && to != Shared {
					p.demoted[Edge{From: from, To: to}] = true
				}
			case t.Kind == ir.KindRef:
				d.add(from, p.owner[t.Ref], t.Ref, false)
			}
			if t.ID != "" {
				d.add(from, p.owner[t.ID], t.ID, false)
			}
		})
	}
	for _, path := range p.ir.Paths() {
		for _, t := range p.ir.Nodes[path].Refs() {
			collect(p.owner[path], t)
		}
	}
	for _, req := range p.ir.Requests {
		for _, t := range req.Types() {
			collect(p.requests[req.Name], t)
		}
	}
	return d
}

func (d dependencies) graph(demoted map[Edge]bool) graph {
	g := make(graph)
	for e, k := range d {
		if k.plain || (k.expandable && !demoted[e]) {
			g.add(e.From, e.To)
		}
	}
	return g
}

// victim picks the lexicographically smallest definition referenced by a
// plain edge inside scc that has not been forced yet.
func (d dependencies) victim(scc []string, forced map[string]bool) string {
	in := make(map[string]bool, len(scc))
	for _, m := range scc {
		in[m] = true
	}
	var candidates []string
	for e, k := range d {
		if !in[e.From] || !in[e.To] || !k.plain {
			continue
		}
		for target := range k.targets {
			if !forced[target] {
				candidates = append(candidates, target)
			}
		}
	}
	sort.Strings(candidates)
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0]
}

// finish derives the import graph and the module list.
func (p *Plan) finish(deps dependencies) {
	modules := make(map[string]bool)
	for _, m := range p.owner {
		modules[m] = true
	}
	for _, m := range p.requests {
		modules[m] = true
	}
	p.Modules = sortedSet(modules)

	p.imports = make(map[string][]string)
	for e, k := range deps {
		if k.plain || !p.demoted[e] {
			p.imports[e.From] = append(p.imports[e.From], e.To)
		}
	}
	for m := range p.imports {
		sort.Strings(p.imports[m])
	}
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
