package generator

import (
	"regexp"
	"strings"

	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/ir"
	"github.com/blimu-dev/stripegen/pkg/openapi"
	"github.com/blimu-dev/stripegen/pkg/utils"
)

var supportedMethods = map[string]bool{"GET": true, "POST": true, "DELETE": true}

// buildRequests creates one request descriptor per operation, in the
// loader's path and method order.
func (c *schemaConverter) buildRequests() ([]*ir.Request, error) {
	requests := make([]*ir.Request, 0, len(c.g.Operations))
	for _, op := range c.g.Operations {
		if !supportedMethods[op.Method] {
			return nil, generrors.NewInferenceError(generrors.UnmappedType, op.Pointer, "",
				"method %s is not supported by the runtime client", op.Method)
		}
		req, err := c.buildRequest(op)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func (c *schemaConverter) buildRequest(op *openapi.Operation) (*ir.Request, error) {
	req := &ir.Request{
		Name:        op.Name,
		OperationID: op.ID,
		Method:      op.Method,
		Path:        op.Path,
		Doc:         strings.TrimSpace(op.Summary),
		Family:      familyFromURL(op.Path),
	}
	at := site{path: op.Name, name: op.Name, owner: op.Name}

	for _, p := range op.Params {
		param := &ir.Param{
			Wire:     p.Name,
			Name:     utils.GoName(p.Name),
			Required: p.Required,
			Doc:      strings.TrimSpace(p.Description),
		}
		switch p.In {
		case "path":
			param.In = ir.InPath
			param.Type = c.pathParamType(op.Path, p.Name)
			req.PathParams = append(req.PathParams, param)
			continue
		case "query":
			param.In = ir.InQuery
		default:
			continue
		}
		t, null, err := c.typeOf(at.at(p.Name), p.Schema, false)
		if err != nil {
			return nil, err
		}
		param.Type, param.Null = t, null
		req.Params = append(req.Params, param)
	}

	if op.Body != nil {
		body := op.Body.Value
		if op.Body.Ref != "" {
			if n, ok := c.g.Component(openapi.RefPath(op.Body.Ref)); ok {
				body = n.Schema
			}
		}
		if body != nil {
			body = effective(body)
			required := make(map[string]bool, len(body.Required))
			for _, r := range body.Required {
				required[r] = true
			}
			for _, wire := range c.g.Properties(body) {
				prop := body.Properties[wire]
				t, null, err := c.typeOf(at.at(wire), prop, false)
				if err != nil {
					return nil, err
				}
				param := &ir.Param{Wire: wire, Name: utils.GoName(wire), In: ir.InBody, Type: t, Required: required[wire], Null: null}
				if prop != nil && prop.Value != nil {
					param.Doc = description(prop.Value)
				}
				req.Params = append(req.Params, param)
			}
		}
	}

	names := make([]string, len(req.Params))
	for i, p := range req.Params {
		names[i] = p.Name
	}
	for i, name := range utils.UniqueNames(names) {
		req.Params[i].Name = name
	}

	req.Response = ir.Prim(ir.PrimJSON)
	if op.Response != nil {
		t, _, err := c.typeOf(at.at("returned"), op.Response, false)
		if err != nil {
			return nil, err
		}
		req.Response = t
	}
	if req.Response.Kind == ir.KindList {
		for _, p := range req.Params {
			if p.In == ir.InQuery && (p.Wire == "starting_after" || p.Wire == "ending_before") {
				req.Paginated = true
			}
		}
	}
	if req.Response.Kind == ir.KindRef {
		if n, ok := c.out.Nodes[req.Response.Ref]; ok {
			req.UnionResponse = n.Kind == ir.KindTaggedUnion || n.Kind == ir.KindUntaggedUnion
		}
	}

	req.Resource = op.Resource
	if req.Resource == "" {
		req.Resource = c.resourceOf(req.Response)
	}
	return req, nil
}

// pathParamType gives a path parameter the ID newtype of the resource it
// names, either directly ({customer}) or through the collection segment in
// front of it (/widgets/{id}).
func (c *schemaConverter) pathParamType(url, name string) ir.Type {
	if id, ok := c.ids[name]; ok {
		return ir.IDRef(id)
	}
	segs := strings.Split(strings.Trim(url, "/"), "/")
	for i, s := range segs {
		if s == "{"+name+"}" && i > 0 {
			if id, ok := c.ids[utils.Singular(segs[i-1])]; ok {
				return ir.IDRef(id)
			}
		}
	}
	return ir.Prim(ir.PrimString)
}

// resourceOf returns the resource a response type is about: the resource
// itself, the element of a list of resources, or the owner of a deleted_*
// object.
func (c *schemaConverter) resourceOf(t ir.Type) string {
	if t.Kind == ir.KindList {
		t = *t.Elem
	}
	if t.Kind != ir.KindRef {
		return ""
	}
	n, ok := c.out.Nodes[t.Ref]
	if !ok || n.Kind != ir.KindStruct {
		return ""
	}
	if n.Resource {
		return n.Path
	}
	if n.Struct.Object != "" {
		return c.tagOwner[n.Struct.Object]
	}
	return ""
}

// familyFromURL derives a family from the first static segment after the
// API version: /v1/checkout/sessions belongs to "checkout".
func familyFromURL(url string) string {
	for _, seg := range strings.Split(strings.Trim(url, "/"), "/") {
		if seg == "" || openapiVersionSegment.MatchString(seg) || strings.HasPrefix(seg, "{") {
			continue
		}
		return utils.Singular(seg)
	}
	return ""
}

var openapiVersionSegment = regexp.MustCompile(`^v[0-9]+$`)

// prune applies the subset filter and drops definitions nothing reaches. Roots
// are every component (or those matching include) and the requests on them.
func (c *schemaConverter) prune(include *regexp.Regexp) error {
	reached := make(map[string]bool)
	var visit func(t ir.Type) error
	var visitNode func(path string) error
	visitNode = func(path string) error {
		if reached[path] {
			return nil
		}
		n, ok := c.out.Nodes[path]
		if !ok {
			return generrors.NewInferenceError(generrors.UnmappedType, path, "", "reference to unknown definition")
		}
		reached[path] = true
		for _, t := range n.Refs() {
			if err := visit(t); err != nil {
				return err
			}
		}
		return nil
	}
	visit = func(t ir.Type) error {
		var err error
		t.Walk(func(t ir.Type) {
			if err != nil {
				return
			}
			if t.Ref != "" && (t.Kind == ir.KindRef || t.Kind == ir.KindExpandable) {
				err = visitNode(t.Ref)
			}
			if err == nil && t.ID != "" {
				err = visitNode(t.ID)
			}
		})
		return err
	}

	for _, path := range c.g.Components() {
		if _, ok := c.out.Nodes[path]; !ok {
			continue
		}
		if include != nil && !include.MatchString(path) {
			continue
		}
		if err := visitNode(path); err != nil {
			return err
		}
	}
	kept := c.out.Requests[:0]
	for _, req := range c.out.Requests {
		if include != nil {
			key := req.Resource
			if key == "" {
				key = req.Family
			}
			if !include.MatchString(key) {
				continue
			}
		}
		for _, t := range req.Types() {
			if err := visit(t); err != nil {
				return err
			}
		}
		kept = append(kept, req)
	}
	c.out.Requests = kept

	for path := range c.out.Nodes {
		if !reached[path] {
			delete(c.out.Nodes, path)
		}
	}
	return nil
}

// markUsage records whether a definition is reachable from a response
// (components and request results) or from request parameters.
func (c *schemaConverter) markUsage() {
	var mark func(t ir.Type, u ir.Usage)
	var markNode func(path string, u ir.Usage)
	markNode = func(path string, u ir.Usage) {
		n, ok := c.out.Nodes[path]
		if !ok || n.Usage.Has(u) {
			return
		}
		n.Usage |= u
		for _, t := range n.Refs() {
			mark(t, u)
		}
	}
	mark = func(t ir.Type, u ir.Usage) {
		t.Walk(func(t ir.Type) {
			if t.Ref != "" && (t.Kind == ir.KindRef || t.Kind == ir.KindExpandable) {
				markNode(t.Ref, u)
			}
			if t.ID != "" {
				markNode(t.ID, u)
			}
		})
	}

	for _, path := range c.out.Paths() {
		if n := c.out.Nodes[path]; n.Owner == n.Path {
			markNode(path, ir.UsageResponse)
		}
	}
	for _, req := range c.out.Requests {
		mark(req.Response, ir.UsageResponse)
		for _, p := range req.PathParams {
			mark(p.Type, ir.UsageRequest)
		}
		for _, p := range req.Params {
			mark(p.Type, ir.UsageRequest)
		}
	}
}
