package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/blimu-dev/stripegen/pkg/ir"
)

func (e *emitter) genRequests(f *fileGen) bool {
	reqs := e.plan.Requests(f.module)
	for _, req := range reqs {
		f.genRequest(req)
	}
	return len(reqs) > 0
}

func (f *fileGen) clientMethod(req *ir.Request) (string, jen.Code) {
	switch req.Method {
	case "GET":
		return "GetQuery", nil
	case "DELETE":
		return "SendForm", f.rt("MethodDelete")
	default:
		return "SendForm", f.rt("MethodPost")
	}
}

// paramType renders an optional parameter as a pointer, or as
// runtime.Nullable when the parameter can be cleared.
func (f *fileGen) paramType(p *ir.Param) *jen.Statement {
	if p.Required {
		return f.valueType(p.Type.Inner())
	}
	return f.fieldType(ir.NullableOf(p.Type), p.Null)
}

// genRequest emits the builder of one endpoint. Required parameters are
// constructor arguments, path parameters are arguments of Send.
func (f *fileGen) genRequest(req *ir.Request) {
	pathParams := orderPathParams(req)

	f.Commentf("%s sends %s %s.", req.Name, req.Method, req.Path)
	if req.Doc != "" {
		f.Comment("//")
		docComment(f, req.Doc)
	}
	f.Type().Id(req.Name).StructFunc(func(g *jen.Group) {
		for _, p := range req.Params {
			docComment(g, p.Doc)
			tag := p.Wire
			if !p.Required {
				tag += ",omitempty"
			}
			g.Id(p.Name).Add(f.paramType(p)).Tag(map[string]string{"form": tag})
		}
	})

	var required []*ir.Field
	for _, p := range req.Params {
		if p.Required {
			required = append(required, &ir.Field{Wire: p.Wire, Name: p.Name, Type: p.Type.Inner(), Required: true})
		}
	}
	f.genConstructor(req.Name, required)

	response := f.valueType(req.Response.Inner())
	method, flag := f.clientMethod(req)
	pathArgs := func(g *jen.Group) {
		for _, p := range pathParams {
			g.Id(f.arg(p.Wire)).Add(f.valueType(p.Type.Inner()))
		}
	}

	f.Comment("Send performs the request and decodes the response.")
	f.Func().Params(jen.Id("r").Op("*").Id(req.Name)).Id("Send").ParamsFunc(func(g *jen.Group) {
		g.Id("ctx").Qual("context", "Context")
		g.Id("client").Add(f.rt("Client"))
		pathArgs(g)
	}).Params(jen.Op("*").Add(response), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Var().Id("out").Add(f.valueType(req.Response.Inner()))
		call := jen.Id("client").Dot(method).CallFunc(func(g *jen.Group) {
			g.Id("ctx")
			if flag != nil {
				g.Add(flag)
			}
			g.Add(buildPathExpr(req.Path, pathParams, f.arg))
			g.Id("r")
			g.Op("&").Id("out")
		})
		g.If(jen.Err().Op(":=").Add(call), jen.Err().Op("!=").Nil()).Block(
			jen.Return(jen.Nil(), jen.Err()),
		)
		g.Return(jen.Op("&").Id("out"), jen.Nil())
	})

	if !req.Paginated || req.Response.Inner().Kind != ir.KindList {
		return
	}
	elem := *req.Response.Inner().Elem
	f.Commentf("Paginate walks every page of %s starting from r.", req.Name)
	f.Func().Params(jen.Id("r").Op("*").Id(req.Name)).Id("Paginate").ParamsFunc(func(g *jen.Group) {
		g.Id("client").Add(f.rt("Client"))
		pathArgs(g)
	}).Op("*").Add(f.rt("Paginator")).Types(f.valueType(elem)).Block(
		jen.Return(f.rt("NewPaginator").Types(f.valueType(elem)).Call(
			jen.Id("client"),
			buildPathExpr(req.Path, pathParams, f.arg),
			jen.Id("r"),
		)),
	)
}
