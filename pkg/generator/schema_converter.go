package generator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/ir"
	"github.com/blimu-dev/stripegen/pkg/openapi"
	"github.com/blimu-dev/stripegen/pkg/overrides"
	"github.com/blimu-dev/stripegen/pkg/utils"
)

// InferOptions configures BuildIR.
type InferOptions struct {
	Overrides *overrides.Store
	// Include keeps only components whose path matches, requests on those
	// resources and everything they reference.
	Include *regexp.Regexp
}

// schemaConverter maps the normalized graph onto the IR.
type schemaConverter struct {
	g     *openapi.Graph
	store *overrides.Store
	out   *ir.IR

	// ids maps a resource path to its ID newtype path.
	ids map[string]string
	// tagOwner maps an "object" tag value to the resource that owns it.
	tagOwner map[string]string
	aliasing map[string]bool
}

// site is where a use-site type appears. A multi-target expandable field
// synthesizes its union node under it.
type site struct {
	path  string
	name  string
	owner string
	field string
}

func (s site) at(field string) site {
	s.field = field
	return s
}

// BuildIR runs type inference over every named schema, builds the request
// descriptors and applies the subset filter.
func BuildIR(g *openapi.Graph, opts InferOptions) (*ir.IR, error) {
	store := opts.Overrides
	if store == nil {
		store = overrides.New()
	}
	c := &schemaConverter{
		g:        g,
		store:    store,
		out:      ir.New(),
		ids:      make(map[string]string),
		tagOwner: make(map[string]string),
		aliasing: make(map[string]bool),
	}
	c.findResources()
	for _, path := range g.Paths() {
		n, _ := g.Lookup(path)
		if err := c.convertNamed(n); err != nil {
			return nil, err
		}
	}
	requests, err := c.buildRequests()
	if err != nil {
		return nil, err
	}
	c.out.Requests = requests
	if err := c.prune(opts.Include); err != nil {
		return nil, err
	}
	c.markUsage()
	if err := c.checkNames(); err != nil {
		return nil, err
	}
	return c.out, nil
}

// effective strips wrappers: a single allOf member or a union that collapses
// to one inline variant.
func effective(s *openapi3.Schema) *openapi3.Schema {
	for {
		if len(s.AllOf) == 1 && s.AllOf[0].Ref == "" && s.AllOf[0].Value != nil {
			s = s.AllOf[0].Value
			continue
		}
		if variants := openapi.Variants(s); variants != nil {
			kept, _ := openapi.StripEmptyable(variants)
			if len(kept) == 1 && kept[0].Ref == "" && kept[0].Value != nil {
				s = kept[0].Value
				continue
			}
		}
		return s
	}
}

func shapeOf(s *openapi3.Schema) openapi.Shape {
	return openapi.Classify(&openapi3.SchemaRef{Value: s})
}

// objectTag returns the constant value of the "object" property.
func objectTag(s *openapi3.Schema) string {
	v, _ := openapi.ConstValue(s.Properties["object"])
	return v
}

func hasIDProperty(s *openapi3.Schema) bool {
	id, ok := s.Properties["id"]
	return ok && id != nil && id.Value != nil && openapi.IsType(id.Value, openapi3.TypeString)
}

// findResources registers an ID newtype for every top-level resource:
// components marked by override or x-resourceId first, then objects with an
// id and an "object" tag no marked resource claims.
func (c *schemaConverter) findResources() {
	var heuristic []string
	for _, path := range c.g.Components() {
		n, _ := c.g.Component(path)
		s := effective(n.Schema)
		if shapeOf(s) != openapi.ShapeObject || !hasIDProperty(s) {
			continue
		}
		if c.store.IsResource(path) || n.Extensions().Has(openapi.ExtResourceID) {
			c.addID(n, s)
			continue
		}
		heuristic = append(heuristic, path)
	}
	for _, path := range heuristic {
		n, _ := c.g.Component(path)
		s := effective(n.Schema)
		if tag := objectTag(s); tag != "" && c.tagOwner[tag] == "" {
			c.addID(n, s)
		}
	}
}

func (c *schemaConverter) addID(n *openapi.Named, s *openapi3.Schema) {
	idPath := n.Path + "/id"
	prefixes := c.store.Prefixes(n.Path)
	if len(prefixes) == 0 {
		if rid := n.Extensions().String(openapi.ExtResourceID); rid != "" {
			prefixes = c.store.Prefixes(rid)
		}
	}
	c.out.Nodes[idPath] = &ir.Node{
		Path:  idPath,
		Name:  n.Name + "ID",
		Kind:  ir.KindID,
		Doc:   fmt.Sprintf("%sID identifies a %s.", n.Name, n.Name),
		Owner: n.Path,
		ID:    &ir.IDType{Resource: n.Path, Prefixes: prefixes},
	}
	c.ids[n.Path] = idPath
	if tag := objectTag(s); tag != "" && c.tagOwner[tag] == "" {
		c.tagOwner[tag] = n.Path
	}
}

// isNode reports whether path becomes a named IR definition rather than an
// alias inlined at its use sites.
func (c *schemaConverter) isNode(path string) bool {
	n, ok := c.g.Lookup(path)
	if !ok {
		return false
	}
	return shapeOf(n.Schema).Promotable() && !openapi.IsExpandableUnion(n.Schema)
}

func (c *schemaConverter) isStruct(path string) bool {
	n, ok := c.g.Lookup(path)
	if !ok {
		return false
	}
	switch shapeOf(n.Schema) {
	case openapi.ShapeObject, openapi.ShapeAllOf:
		return true
	}
	return false
}

func (c *schemaConverter) nameOf(path string) string {
	if n, ok := c.out.Nodes[path]; ok {
		return n.Name
	}
	if n, ok := c.g.Lookup(path); ok {
		return n.Name
	}
	return utils.GoName(path)
}

func (c *schemaConverter) convertNamed(n *openapi.Named) error {
	if !c.isNode(n.Path) {
		return nil
	}
	var (
		node *ir.Node
		err  error
	)
	switch shapeOf(n.Schema) {
	case openapi.ShapeObject, openapi.ShapeAllOf:
		node, err = c.convertStruct(n)
	case openapi.ShapeEnum:
		node = c.convertEnum(n)
	case openapi.ShapeUnion:
		node, err = c.convertUnion(n)
	}
	if err != nil {
		return err
	}
	if family, ok := c.store.Family(n.Path); ok {
		node.Family = family
	} else if !n.Inline {
		node.Family = n.Extensions().ResourceFamily()
	}
	c.out.Nodes[n.Path] = node
	return nil
}

func description(schemas ...*openapi3.Schema) string {
	for _, s := range schemas {
		if s != nil && s.Description != "" {
			return strings.TrimSpace(s.Description)
		}
	}
	return ""
}

func (c *schemaConverter) convertStruct(n *openapi.Named) (*ir.Node, error) {
	s := effective(n.Schema)
	node := &ir.Node{
		Path:   n.Path,
		Name:   n.Name,
		Kind:   ir.KindStruct,
		Doc:    description(n.Schema, s),
		Owner:  n.Owner,
		Struct: &ir.Struct{Object: objectTag(s)},
	}
	if id, ok := c.ids[n.Path]; ok {
		node.Resource = true
		node.Struct.IDPath = id
	}
	at := site{path: n.Path, name: n.Name, owner: n.Owner}

	seen := make(map[string]*openapi3.SchemaRef)
	var fields []*ir.Field
	for i, part := range s.AllOf {
		if part.Ref != "" {
			target := openapi.RefPath(part.Ref)
			if !c.isStruct(target) {
				return nil, generrors.NewInferenceError(generrors.UnmappedType, n.Path, fmt.Sprintf("allOf/%d", i),
					"cannot embed %s, it is not an object", target)
			}
			fields = append(fields, &ir.Field{Name: c.nameOf(target), Type: ir.RefTo(target), Required: true, Flatten: true})
			continue
		}
		if part.Value == nil {
			continue
		}
		partFields, err := c.fields(n, at, effective(part.Value), seen)
		if err != nil {
			return nil, err
		}
		fields = append(fields, partFields...)
	}
	own, err := c.fields(n, at, s, seen)
	if err != nil {
		return nil, err
	}
	fields = append(fields, own...)

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	for i, name := range utils.UniqueNames(names) {
		fields[i].Name = name
	}
	node.Struct.Fields = fields
	return node, nil
}

// fields converts the properties of s. seen carries properties already
// produced by earlier allOf members; a repeated property must agree on
// nullability and is otherwise skipped.
func (c *schemaConverter) fields(n *openapi.Named, at site, s *openapi3.Schema, seen map[string]*openapi3.SchemaRef) ([]*ir.Field, error) {
	required := make(map[string]bool, len(s.Required))
	for _, r := range s.Required {
		required[r] = true
	}
	expandable := make(map[string]bool)
	for _, f := range openapi.Extensions(s.Extensions).StringSlice(openapi.ExtExpandableFields) {
		expandable[f] = true
	}

	var out []*ir.Field
	for _, wire := range c.g.Properties(s) {
		prop := s.Properties[wire]
		if prev, dup := seen[wire]; dup {
			if nullable(prev) != nullable(prop) {
				return nil, generrors.NewInferenceError(generrors.ConflictingNullability, n.Path, wire,
					"allOf members disagree on nullability")
			}
			continue
		}
		seen[wire] = prop

		f := &ir.Field{Wire: wire, Required: required[wire]}
		if prop != nil && prop.Value != nil {
			f.Doc = description(prop.Value)
		}
		if name, ok := c.store.FieldName(n.Path, wire); ok {
			f.Name = name
		} else {
			f.Name = utils.GoName(wire)
		}

		t, null, err := c.fieldType(n, at.at(wire), prop, expandable[wire])
		if err != nil {
			return nil, err
		}
		f.Null = null
		if !f.Required || null {
			t = ir.NullableOf(t)
		}
		f.Type = t
		out = append(out, f)
	}
	return out, nil
}

func nullable(sr *openapi3.SchemaRef) bool {
	if sr == nil || sr.Value == nil {
		return false
	}
	if sr.Value.Nullable {
		return true
	}
	if variants := openapi.Variants(sr.Value); variants != nil {
		_, dropped := openapi.StripEmptyable(variants)
		return dropped
	}
	return false
}

func (c *schemaConverter) fieldType(n *openapi.Named, at site, prop *openapi3.SchemaRef, expandable bool) (ir.Type, bool, error) {
	if sub, ok := c.store.Type(n.Path, at.field); ok {
		return substitution(sub), nullable(prop), nil
	}
	if at.field == "id" && !n.Inline {
		if idPath, ok := c.ids[n.Path]; ok {
			return ir.IDRef(idPath), nullable(prop), nil
		}
		// deleted_<resource> and friends share the resource's identifier
		if owner := c.tagOwner[objectTag(effective(n.Schema))]; owner != "" && hasIDProperty(effective(n.Schema)) {
			return ir.IDRef(c.ids[owner]), nullable(prop), nil
		}
	}
	return c.typeOf(at, prop, expandable)
}

func substitution(sub string) ir.Type {
	if strings.HasPrefix(sub, overrides.RefPrefix) {
		return ir.RefTo(strings.TrimPrefix(sub, overrides.RefPrefix))
	}
	return ir.Prim(ir.Primitive(sub))
}

// typeOf maps a use-site schema onto an IR type. The boolean reports whether
// explicit null is meaningful: the schema is nullable or admits the empty
// string.
func (c *schemaConverter) typeOf(at site, sr *openapi3.SchemaRef, expandable bool) (ir.Type, bool, error) {
	if sr == nil {
		return ir.Prim(ir.PrimJSON), false, nil
	}
	if sr.Ref != "" {
		return c.refType(at, openapi.RefPath(sr.Ref))
	}
	s := sr.Value
	if s == nil {
		return ir.Prim(ir.PrimJSON), false, nil
	}
	if named, ok := c.g.Inline(s); ok {
		return ir.RefTo(named.Path), s.Nullable, nil
	}
	if len(s.AllOf) == 1 {
		t, null, err := c.typeOf(at, s.AllOf[0], expandable)
		return t, null || s.Nullable, err
	}

	if variants := openapi.Variants(s); variants != nil {
		kept, dropped := openapi.StripEmptyable(variants)
		null := dropped || s.Nullable
		if openapi.IsExpandableUnion(s) || (expandable && openapi.IsIDOrRef(variants)) {
			t, err := c.expandable(at, kept)
			return t, null, err
		}
		switch len(kept) {
		case 0:
			return ir.Prim(ir.PrimString), null, nil
		case 1:
			t, inner, err := c.typeOf(at, kept[0], expandable)
			return t, null || inner, err
		}
		return ir.Type{}, false, generrors.NewInferenceError(generrors.UnmappedType, at.path, at.field, "unnamed union")
	}

	if len(s.Enum) > 0 && openapi.IsType(s, openapi3.TypeString) {
		if _, ok := openapi.ConstValue(sr); ok {
			return ir.Prim(ir.PrimString), s.Nullable, nil
		}
		return ir.Type{}, false, generrors.NewInferenceError(generrors.UnmappedType, at.path, at.field, "unnamed enum")
	}

	switch {
	case openapi.IsType(s, openapi3.TypeObject) || (s.Type == nil && len(s.Properties) > 0):
		if openapi.IsListShape(s) {
			elem, _, err := c.typeOf(at, s.Properties["data"].Value.Items, false)
			return ir.ListOf(elem), s.Nullable, err
		}
		if len(s.Properties) == 0 {
			elem := ir.Prim(ir.PrimJSON)
			if ap := s.AdditionalProperties.Schema; ap != nil {
				var err error
				if elem, _, err = c.typeOf(at, ap, false); err != nil {
					return ir.Type{}, false, err
				}
			}
			return ir.MapOf(elem), s.Nullable, nil
		}
		return ir.Type{}, false, generrors.NewInferenceError(generrors.UnmappedType, at.path, at.field, "unnamed object")
	case openapi.IsType(s, openapi3.TypeArray):
		elem, _, err := c.typeOf(at, s.Items, false)
		return ir.ArrayOf(elem), s.Nullable, err
	case openapi.IsType(s, openapi3.TypeString):
		switch {
		case s.Format == "unix-time":
			return ir.Prim(ir.PrimTimestamp), s.Nullable, nil
		case s.Format == "currency" || at.field == "currency":
			return ir.Prim(ir.PrimCurrency), s.Nullable, nil
		}
		return ir.Prim(ir.PrimString), s.Nullable, nil
	case openapi.IsType(s, openapi3.TypeInteger):
		switch {
		case s.Format == "unix-time":
			return ir.Prim(ir.PrimTimestamp), s.Nullable, nil
		case s.Format == "uint64" || (s.Min != nil && *s.Min >= 0):
			return ir.Prim(ir.PrimUint64), s.Nullable, nil
		}
		return ir.Prim(ir.PrimInt64), s.Nullable, nil
	case openapi.IsType(s, openapi3.TypeNumber):
		return ir.Prim(ir.PrimFloat64), s.Nullable, nil
	case openapi.IsType(s, openapi3.TypeBoolean):
		return ir.Prim(ir.PrimBool), s.Nullable, nil
	case s.Type == nil || len(s.Type.Slice()) == 0:
		return ir.Prim(ir.PrimJSON), s.Nullable, nil
	}
	return ir.Type{}, false, generrors.NewInferenceError(generrors.UnmappedType, at.path, at.field,
		"unsupported type %v", s.Type.Slice())
}

// refType resolves a component reference. Components that do not become
// definitions (primitives, maps, arrays, aliases) are inlined.
func (c *schemaConverter) refType(at site, target string) (ir.Type, bool, error) {
	if c.isNode(target) {
		return ir.RefTo(target), false, nil
	}
	n, ok := c.g.Component(target)
	if !ok {
		return ir.Type{}, false, generrors.NewInferenceError(generrors.UnmappedType, at.path, at.field, "unknown component %s", target)
	}
	if c.aliasing[target] {
		return ir.Prim(ir.PrimJSON), false, nil
	}
	c.aliasing[target] = true
	defer delete(c.aliasing, target)
	return c.typeOf(at, &openapi3.SchemaRef{Value: n.Schema}, false)
}

// expandable maps an ID-or-object field. A single target uses that
// resource's ID newtype; several targets expand into a synthesized union
// and keep a plain string ID.
func (c *schemaConverter) expandable(at site, variants openapi3.SchemaRefs) (ir.Type, error) {
	var targets []string
	for _, v := range variants {
		if v.Ref != "" {
			targets = append(targets, openapi.RefPath(v.Ref))
		}
	}
	for _, target := range targets {
		if !c.isNode(target) {
			return ir.Type{}, generrors.NewInferenceError(generrors.UnmappedType, at.path, at.field,
				"expandable target %s is not a definition", target)
		}
	}
	if len(targets) == 1 {
		return ir.ExpandableOf(c.ids[targets[0]], targets[0]), nil
	}

	path := at.path + "/" + at.field
	if _, ok := c.out.Nodes[path]; !ok {
		node := &ir.Node{
			Path:  path,
			Name:  at.name + utils.GoName(at.field),
			Doc:   fmt.Sprintf("%s is the expanded form of %s.", at.name+utils.GoName(at.field), at.field),
			Owner: at.owner,
		}
		if prop, ok := c.inferTags(targets); ok {
			node.Kind = ir.KindTaggedUnion
			node.Tagged = &ir.TaggedUnion{Property: prop, Variants: c.taggedVariants(targets)}
		} else {
			node.Kind = ir.KindUntaggedUnion
			node.Untagged = &ir.UntaggedUnion{}
			names := make([]string, len(targets))
			for i, target := range targets {
				names[i] = c.nameOf(target)
			}
			for i, name := range utils.UniqueNames(names) {
				t := ir.RefTo(targets[i])
				node.Untagged.Variants = append(node.Untagged.Variants, ir.UntaggedVariant{Name: name, Type: &t})
			}
		}
		c.out.Nodes[path] = node
	}
	return ir.ExpandableOf("", path), nil
}

func (c *schemaConverter) convertEnum(n *openapi.Named) *ir.Node {
	s := effective(n.Schema)
	node := &ir.Node{
		Path:  n.Path,
		Name:  n.Name,
		Kind:  ir.KindEnum,
		Doc:   description(n.Schema, s),
		Owner: n.Owner,
		Enum:  &ir.Enum{Open: c.enumOpen(n.Path, n.Schema, s)},
	}
	var wires, names []string
	seen := make(map[string]bool, len(s.Enum))
	for _, v := range s.Enum {
		wire := fmt.Sprint(v)
		if seen[wire] {
			continue
		}
		seen[wire] = true
		wires = append(wires, wire)
		names = append(names, utils.EnumVariantName(wire))
	}
	for i, name := range utils.UniqueNames(names) {
		node.Enum.Values = append(node.Enum.Values, ir.EnumValue{Wire: wires[i], Name: name})
	}
	return node
}

// enumOpen decides whether unknown wire values are tolerated. An override
// always wins; otherwise x-stripeBypassValidation or "possible values
// include" wording opens the enum.
func (c *schemaConverter) enumOpen(path string, schemas ...*openapi3.Schema) bool {
	if policy, ok := c.store.Enum(path); ok {
		return policy == overrides.EnumOpen
	}
	for _, s := range schemas {
		if openapi.Extensions(s.Extensions).Bool(openapi.ExtStripeBypass) {
			return true
		}
		if strings.Contains(strings.ToLower(s.Description), "possible values include") {
			return true
		}
	}
	return false
}

func (c *schemaConverter) convertUnion(n *openapi.Named) (*ir.Node, error) {
	s := effective(n.Schema)
	node := &ir.Node{
		Path:  n.Path,
		Name:  n.Name,
		Doc:   description(n.Schema, s),
		Owner: n.Owner,
	}
	kept, _ := openapi.StripEmptyable(openapi.Variants(s))

	if d := s.Discriminator; d != nil {
		tagged, err := c.explicitTags(n, d.PropertyName, d.Mapping, kept)
		if err != nil {
			return nil, err
		}
		node.Kind = ir.KindTaggedUnion
		node.Tagged = tagged
		return node, nil
	}

	var targets []string
	for _, v := range kept {
		if v.Ref == "" {
			break
		}
		targets = append(targets, openapi.RefPath(v.Ref))
	}
	if len(targets) == len(kept) {
		if prop, ok := c.inferTags(targets); ok {
			node.Kind = ir.KindTaggedUnion
			node.Tagged = &ir.TaggedUnion{Property: prop, Variants: c.taggedVariants(targets)}
			return node, nil
		}
	}

	node.Kind = ir.KindUntaggedUnion
	node.Untagged = &ir.UntaggedUnion{}
	at := site{path: n.Path, name: n.Name, owner: n.Owner}
	var names []string
	for i, v := range kept {
		if lit, ok := openapi.ConstValue(v); ok && v.Ref == "" {
			node.Untagged.Variants = append(node.Untagged.Variants, ir.UntaggedVariant{Literal: lit})
			names = append(names, utils.EnumVariantName(lit))
			continue
		}
		t, _, err := c.typeOf(at.at(fmt.Sprintf("variant%d", i+1)), v, false)
		if err != nil {
			return nil, err
		}
		node.Untagged.Variants = append(node.Untagged.Variants, ir.UntaggedVariant{Type: &t})
		names = append(names, c.variantName(t))
	}
	for i, name := range utils.UniqueNames(names) {
		node.Untagged.Variants[i].Name = name
	}
	return node, nil
}

// explicitTags builds a tagged union from an OpenAPI discriminator. Variants
// without a mapping entry use the constant value of the property, then the
// component path.
func (c *schemaConverter) explicitTags(n *openapi.Named, prop string, mapping map[string]string, variants openapi3.SchemaRefs) (*ir.TaggedUnion, error) {
	if prop == "" {
		return nil, generrors.NewInferenceError(generrors.InvalidDiscriminator, n.Path, "", "discriminator without propertyName")
	}
	byTarget := make(map[string]string, len(mapping))
	values := make([]string, 0, len(mapping))
	for value := range mapping {
		values = append(values, value)
	}
	sort.Strings(values)
	for _, value := range values {
		byTarget[openapi.RefPath(mapping[value])] = value
	}

	tagged := &ir.TaggedUnion{Property: prop}
	used := make(map[string]bool)
	isVariant := make(map[string]bool)
	var names []string
	for i, v := range variants {
		if v.Ref == "" {
			return nil, generrors.NewInferenceError(generrors.InvalidDiscriminator, n.Path, prop, "variant %d is not a reference", i)
		}
		target := openapi.RefPath(v.Ref)
		if !c.isStruct(target) {
			return nil, generrors.NewInferenceError(generrors.InvalidDiscriminator, n.Path, prop, "variant %s is not an object", target)
		}
		isVariant[target] = true
		tag, ok := byTarget[target]
		if !ok {
			named, _ := c.g.Component(target)
			tag, _ = openapi.ConstValue(effective(named.Schema).Properties[prop])
			if tag == "" {
				tag = target
			}
		}
		if used[tag] {
			return nil, generrors.NewInferenceError(generrors.InvalidDiscriminator, n.Path, prop, "tag %q maps to several variants", tag)
		}
		used[tag] = true
		tagged.Variants = append(tagged.Variants, ir.TaggedVariant{Tag: tag, Ref: target})
		names = append(names, c.nameOf(target))
	}
	for _, value := range values {
		if target := openapi.RefPath(mapping[value]); !isVariant[target] {
			return nil, generrors.NewInferenceError(generrors.InvalidDiscriminator, n.Path, prop, "mapping %q targets %s which is not a variant", value, target)
		}
	}
	for i, name := range utils.UniqueNames(names) {
		tagged.Variants[i].Name = name
	}
	return tagged, nil
}

// inferTags reports whether every target is an object with a distinct
// constant "object" value.
func (c *schemaConverter) inferTags(targets []string) (string, bool) {
	if len(targets) < 2 {
		return "", false
	}
	seen := make(map[string]bool, len(targets))
	for _, target := range targets {
		if !c.isStruct(target) {
			return "", false
		}
		n, _ := c.g.Lookup(target)
		tag := objectTag(effective(n.Schema))
		if tag == "" || seen[tag] {
			return "", false
		}
		seen[tag] = true
	}
	return "object", true
}

func (c *schemaConverter) taggedVariants(targets []string) []ir.TaggedVariant {
	names := make([]string, len(targets))
	for i, target := range targets {
		names[i] = c.nameOf(target)
	}
	out := make([]ir.TaggedVariant, len(targets))
	for i, name := range utils.UniqueNames(names) {
		n, _ := c.g.Lookup(targets[i])
		out[i] = ir.TaggedVariant{Tag: objectTag(effective(n.Schema)), Name: name, Ref: targets[i]}
	}
	return out
}

var primitiveVariantNames = map[ir.Primitive]string{
	ir.PrimString:    "String",
	ir.PrimInt64:     "Int",
	ir.PrimUint64:    "Uint",
	ir.PrimFloat64:   "Float",
	ir.PrimBool:      "Bool",
	ir.PrimTimestamp: "Timestamp",
	ir.PrimCurrency:  "Currency",
	ir.PrimJSON:      "JSON",
}

func (c *schemaConverter) variantName(t ir.Type) string {
	switch t.Kind {
	case ir.KindRef, ir.KindExpandable:
		return c.nameOf(t.Ref)
	case ir.KindPrimitive:
		if t.ID != "" {
			return c.nameOf(t.ID)
		}
		return primitiveVariantNames[t.Prim]
	case ir.KindArray:
		return c.variantName(*t.Elem) + "List"
	case ir.KindMap:
		return c.variantName(*t.Elem) + "Map"
	case ir.KindList:
		return c.variantName(*t.Elem) + "Page"
	case ir.KindNullable:
		return c.variantName(*t.Elem)
	}
	return "Value"
}

// checkNames fails when two package-level declarations would share a Go
// name: types, enum constants, ID prefix lists and the Values, Parse and New
// functions emitted next to them.
func (c *schemaConverter) checkNames() error {
	owners := make(map[string]string, len(c.out.Nodes))
	declare := func(name, path string) error {
		if other, ok := owners[name]; ok {
			return generrors.NewLoadError(generrors.LoadDuplicateName, path,
				fmt.Sprintf("name %s is declared for both %q and %q", name, other, path), nil)
		}
		owners[name] = path
		return nil
	}
	for _, path := range c.out.Paths() {
		n := c.out.Nodes[path]
		for _, name := range declaredNames(n) {
			if err := declare(name, path); err != nil {
				return err
			}
		}
	}
	for _, req := range c.out.Requests {
		for _, name := range []string{req.Name, "New" + req.Name} {
			if err := declare(name, req.OperationID); err != nil {
				return err
			}
		}
	}
	return nil
}

// declaredNames lists the package-level identifiers emitted for n.
func declaredNames(n *ir.Node) []string {
	names := []string{n.Name}
	switch n.Kind {
	case ir.KindEnum:
		names = append(names, "Values"+n.Name, "Parse"+n.Name)
		for _, v := range n.Enum.Values {
			names = append(names, n.Name+v.Name)
		}
	case ir.KindID:
		names = append(names, "Parse"+n.Name, strings.ToLower(n.Name[:1])+n.Name[1:]+"Prefixes")
	case ir.KindStruct:
		if n.Usage.Has(ir.UsageRequest) {
			names = append(names, "New"+n.Name)
		}
	}
	return names
}
