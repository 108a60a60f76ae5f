package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-openapi/jsonpointer"

	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/utils"
)

const componentPrefix = "#/components/schemas/"

// RefPath converts "#/components/schemas/checkout.session" into the
// component path "checkout.session".
func RefPath(ref string) string {
	return strings.TrimPrefix(ref, componentPrefix)
}

// Named is a schema with a canonical component path and Go type name. It is
// either a component or an inline schema promoted by the loader.
type Named struct {
	Path    string
	Name    string
	Pointer string
	// Owner is the component path or operation id the schema belongs to.
	Owner  string
	Inline bool
	Schema *openapi3.Schema
}

// Extensions returns the x-* values of the schema.
func (n *Named) Extensions() Extensions { return Extensions(n.Schema.Extensions) }

// Param is a path or query parameter of an operation.
type Param struct {
	Name        string
	In          string
	Required    bool
	Description string
	Schema      *openapi3.SchemaRef
	Pointer     string
}

// Operation is one path + method pair.
type Operation struct {
	ID string
	// Name is the Go name of the request builder. Inline schemas below the
	// operation are promoted under it.
	Name string
	// Resource is the component that declares the operation through
	// x-stripeOperations, if any.
	Resource   string
	Method     string
	Path       string
	Pointer    string
	Summary    string
	Params     []*Param
	Body       *openapi3.SchemaRef
	BodyType   string
	Response   *openapi3.SchemaRef
	Extensions Extensions

	bodyPointer     string
	responsePointer string
}

// Graph is the normalized document. It is immutable once Load returns.
type Graph struct {
	Doc     *openapi3.T
	Version *semver.Version

	named      map[string]*Named
	components []string
	inline     map[*openapi3.Schema]*Named
	names      map[string]string
	order      map[*openapi3.Schema][]string
	index      *docIndex
	nameHook   func(path string) (string, bool)

	Operations []*Operation
}

// Component returns the named component at path.
func (g *Graph) Component(path string) (*Named, bool) {
	n, ok := g.named[path]
	if !ok || n.Inline {
		return nil, false
	}
	return n, true
}

// Lookup returns the named schema, component or promoted, at path.
func (g *Graph) Lookup(path string) (*Named, bool) {
	n, ok := g.named[path]
	return n, ok
}

// Inline returns the promoted node for an inline schema value.
func (g *Graph) Inline(s *openapi3.Schema) (*Named, bool) {
	n, ok := g.inline[s]
	return n, ok
}

// Components returns all component paths in sorted order.
func (g *Graph) Components() []string { return g.components }

// Paths returns every named path, components and promoted, in sorted order.
func (g *Graph) Paths() []string { return sortedNamed(g.named) }

// Properties returns the property names of s in document order.
func (g *Graph) Properties(s *openapi3.Schema) []string {
	if names, ok := g.order[s]; ok {
		return names
	}
	return sortedKeys(s.Properties)
}

// Resolve follows a reference to its component.
func (g *Graph) Resolve(sr *openapi3.SchemaRef) (*Named, bool) {
	if sr == nil || sr.Ref == "" {
		return nil, false
	}
	return g.Component(RefPath(sr.Ref))
}

func (g *Graph) register(n *Named) error {
	if prev, ok := g.named[n.Path]; ok && prev.Schema != n.Schema {
		return generrors.NewLoadError(generrors.LoadDuplicateName, n.Pointer,
			fmt.Sprintf("path %q already names %s", n.Path, prev.Pointer), nil)
	}
	if name, ok := g.nameHook(n.Path); ok {
		n.Name = name
	}
	if other, ok := g.names[n.Name]; ok && other != n.Path {
		return generrors.NewLoadError(generrors.LoadDuplicateName, n.Pointer,
			fmt.Sprintf("type name %s is used by both %q and %q", n.Name, other, n.Path), nil)
	}
	g.names[n.Name] = n.Path
	g.named[n.Path] = n
	if n.Inline {
		g.inline[n.Schema] = n
	}
	return nil
}

// normalize registers components, collects operations and promotes inline
// schemas. Traversal is by sorted component path, then sorted URL path and
// method, so synthetic names are stable across runs.
func (g *Graph) normalize() error {
	if g.Doc.Components != nil {
		for name := range g.Doc.Components.Schemas {
			g.components = append(g.components, name)
		}
	}
	sort.Strings(g.components)

	for _, path := range g.components {
		sr := g.Doc.Components.Schemas[path]
		if sr.Value == nil {
			continue
		}
		ptr := "/components/schemas/" + jsonpointer.Escape(path)
		n := &Named{Path: path, Name: utils.GoName(path), Pointer: ptr, Owner: path, Schema: sr.Value}
		if err := g.register(n); err != nil {
			return err
		}
	}
	for _, path := range g.components {
		sr := g.Doc.Components.Schemas[path]
		ptr := "/components/schemas/" + jsonpointer.Escape(path)
		if err := g.promote(path, ptr, nil, sr, true); err != nil {
			return err
		}
	}
	return g.collectOperations()
}

// promote walks an inline schema tree below owner. Schemas that classify as
// promotable get a synthetic path "<owner>/<seg>/<seg>" and the name
// PascalCase(owner + segments), which only depends on where they appear.
func (g *Graph) promote(owner, ptr string, segments []string, sr *openapi3.SchemaRef, root bool) error {
	if sr == nil || sr.Ref != "" || sr.Value == nil {
		return nil
	}
	s := sr.Value
	if order := g.index.propertyOrder(ptr); order != nil {
		g.order[s] = order
	}
	if !root && !isWrapper(s) && !IsExpandableUnion(s) && !isObjectTag(segments, sr) && Classify(sr).Promotable() {
		if _, seen := g.inline[s]; !seen {
			n := &Named{
				Path:    owner + "/" + strings.Join(segments, "/"),
				Name:    utils.PascalPath(owner, segments...),
				Pointer: ptr,
				Owner:   owner,
				Inline:  true,
				Schema:  s,
			}
			if err := g.register(n); err != nil {
				return err
			}
		}
	}

	for _, name := range g.Properties(s) {
		child := s.Properties[name]
		if err := g.promote(owner, ptr+"/properties/"+jsonpointer.Escape(name), appendSeg(segments, name), child, false); err != nil {
			return err
		}
	}
	if s.Items != nil {
		if err := g.promote(owner, ptr+"/items", appendSeg(segments, "[*]"), s.Items, false); err != nil {
			return err
		}
	}
	if ap := s.AdditionalProperties.Schema; ap != nil {
		if err := g.promote(owner, ptr+"/additionalProperties", appendSeg(segments, "[*]"), ap, false); err != nil {
			return err
		}
	}
	if variants := Variants(s); variants != nil {
		key := "anyOf"
		if len(s.AnyOf) == 0 {
			key = "oneOf"
		}
		kept, _ := StripEmptyable(variants)
		collapse := len(kept) <= 1
		for i, v := range variants {
			if IsEmptyable(v) {
				continue
			}
			if _, literal := ConstValue(v); literal && !collapse {
				continue
			}
			vptr := fmt.Sprintf("%s/%s/%d", ptr, key, i)
			segs, childRoot := segments, root
			if !collapse {
				segs, childRoot = appendSeg(segments, variantSegment(v, i)), false
			}
			if err := g.promote(owner, vptr, segs, v, childRoot); err != nil {
				return err
			}
		}
	}
	for i, part := range s.AllOf {
		segs := segments
		if len(s.AllOf) > 1 {
			segs = appendSeg(segments, fmt.Sprintf("part%d", i+1))
		}
		if err := g.promote(owner, fmt.Sprintf("%s/allOf/%d", ptr, i), segs, part, len(s.AllOf) == 1 && root); err != nil {
			return err
		}
	}
	return nil
}

// isWrapper reports whether s only forwards to a single inner schema, in
// which case the inner schema takes the name.
func isWrapper(s *openapi3.Schema) bool {
	if len(s.AllOf) == 1 {
		return true
	}
	if variants := Variants(s); variants != nil {
		kept, _ := StripEmptyable(variants)
		return len(kept) == 1
	}
	return false
}

func isObjectTag(segments []string, sr *openapi3.SchemaRef) bool {
	if len(segments) == 0 || segments[len(segments)-1] != "object" {
		return false
	}
	_, ok := ConstValue(sr)
	return ok
}

func variantSegment(sr *openapi3.SchemaRef, i int) string {
	if sr.Value != nil && sr.Value.Title != "" {
		return sr.Value.Title
	}
	return fmt.Sprintf("variant%d", i+1)
}

func appendSeg(segments []string, seg string) []string {
	out := make([]string, len(segments), len(segments)+1)
	copy(out, segments)
	return append(out, seg)
}

var methodOrder = []string{"GET", "POST", "PUT", "PATCH", "DELETE"}

func (g *Graph) collectOperations() error {
	if g.Doc.Paths == nil {
		return nil
	}
	pathMap := g.Doc.Paths.Map()
	urls := make([]string, 0, len(pathMap))
	for u := range pathMap {
		urls = append(urls, u)
	}
	sort.Strings(urls)

	for _, u := range urls {
		item := pathMap[u]
		ops := item.Operations()
		for _, method := range methodOrder {
			op, ok := ops[method]
			if !ok {
				continue
			}
			g.Operations = append(g.Operations, g.operation(u, method, item, op))
		}
	}
	g.nameOperations()
	for _, o := range g.Operations {
		if err := g.promoteOperation(o); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) operation(url, method string, item *openapi3.PathItem, op *openapi3.Operation) *Operation {
	ptr := "/paths/" + jsonpointer.Escape(url) + "/" + strings.ToLower(method)
	o := &Operation{
		ID:         op.OperationID,
		Method:     method,
		Path:       url,
		Pointer:    ptr,
		Summary:    op.Summary,
		Extensions: Extensions(op.Extensions),
	}
	if o.ID == "" {
		o.ID = utils.GoName(strings.ToLower(method) + " " + url)
	}
	if o.Summary == "" {
		o.Summary = op.Description
	}

	// operation-level parameters shadow path-level ones with the same name and location
	seen := map[string]bool{}
	addParams := func(params openapi3.Parameters, base string) {
		for i, pr := range params {
			if pr == nil || pr.Value == nil {
				continue
			}
			p := pr.Value
			key := p.In + ":" + p.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			o.Params = append(o.Params, &Param{
				Name:        p.Name,
				In:          p.In,
				Required:    p.Required || p.In == openapi3.ParameterInPath,
				Description: p.Description,
				Schema:      p.Schema,
				Pointer:     fmt.Sprintf("%s/parameters/%d", base, i),
			})
		}
	}
	addParams(op.Parameters, ptr)
	addParams(item.Parameters, "/paths/"+jsonpointer.Escape(url))

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		for _, mime := range []string{"application/x-www-form-urlencoded", "application/json", "multipart/form-data"} {
			mt := op.RequestBody.Value.Content.Get(mime)
			if mt == nil || mt.Schema == nil {
				continue
			}
			o.Body = mt.Schema
			o.BodyType = mime
			o.bodyPointer = ptr + "/requestBody/content/" + jsonpointer.Escape(mime) + "/schema"
			break
		}
	}

	if op.Responses != nil {
		for _, status := range successStatuses(op.Responses) {
			rr := op.Responses.Value(status)
			if rr == nil || rr.Value == nil {
				continue
			}
			mt := rr.Value.Content.Get("application/json")
			if mt == nil || mt.Schema == nil {
				continue
			}
			o.Response = mt.Schema
			o.responsePointer = ptr + "/responses/" + status + "/content/application~1json/schema"
			break
		}
	}
	return o
}

// promoteOperation names the inline schemas of an operation after its
// request name.
func (g *Graph) promoteOperation(o *Operation) error {
	for _, p := range o.Params {
		if err := g.promote(o.Name, p.Pointer+"/schema", []string{p.Name}, p.Schema, false); err != nil {
			return err
		}
	}
	if o.Body != nil {
		if err := g.promote(o.Name, o.bodyPointer, nil, o.Body, true); err != nil {
			return err
		}
	}
	if o.Response != nil {
		if err := g.promote(o.Name, o.responsePointer, []string{"returned"}, o.Response, false); err != nil {
			return err
		}
	}
	return nil
}

func successStatuses(responses *openapi3.Responses) []string {
	var out []string
	for status := range responses.Map() {
		if strings.HasPrefix(status, "2") {
			out = append(out, status)
		}
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m openapi3.Schemas) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedNamed(m map[string]*Named) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMapping[M ~map[string]string](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
