package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/blimu-dev/stripegen/pkg/ir"
	"github.com/blimu-dev/stripegen/pkg/utils"
)

func (e *emitter) genTypes(f *fileGen) bool {
	nodes := f.owned(ir.KindStruct, ir.KindTaggedUnion, ir.KindUntaggedUnion)
	for _, n := range nodes {
		switch n.Kind {
		case ir.KindStruct:
			f.genStruct(n)
		case ir.KindTaggedUnion:
			f.genTagged(n)
		case ir.KindUntaggedUnion:
			f.genUntagged(n)
		}
	}
	return len(nodes) > 0
}

// clearable reports whether fd is sent as runtime.Nullable.
func clearable(n *ir.Node, fd *ir.Field) bool {
	return n.Usage.Has(ir.UsageRequest) && fd.Null && fd.Type.IsNullable()
}

func (f *fileGen) genStruct(n *ir.Node) {
	form := n.Usage.Has(ir.UsageRequest)
	docComment(f, n.Doc)
	f.Type().Id(n.Name).StructFunc(func(g *jen.Group) {
		for _, fd := range n.Struct.Fields {
			if fd.Flatten {
				g.Add(f.valueType(fd.Type.Inner()))
				continue
			}
			docComment(g, fd.Doc)
			cl := clearable(n, fd)
			g.Id(fd.Name).Add(f.fieldType(fd.Type, cl)).Tag(fieldTag(fd.Wire, fd.Type.IsNullable(), cl, form))
		}
	})
	if form {
		f.genConstructor(n.Name, requiredFields(n.Struct.Fields))
	}
}

func requiredFields(fields []*ir.Field) []*ir.Field {
	var out []*ir.Field
	for _, fd := range fields {
		if fd.Required && !fd.Flatten && !fd.Type.IsNullable() {
			out = append(out, fd)
		}
	}
	return out
}

// genConstructor emits New<Name> taking every required member in order.
func (f *fileGen) genConstructor(name string, required []*ir.Field) {
	wires := make([]string, len(required))
	for i, fd := range required {
		wires[i] = f.arg(fd.Wire)
	}
	args := utils.UniqueNames(wires)

	f.Commentf("New%s returns a %s with its required fields set.", name, name)
	f.Func().Id("New"+name).ParamsFunc(func(g *jen.Group) {
		for i, fd := range required {
			g.Id(args[i]).Add(f.valueType(fd.Type))
		}
	}).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).ValuesFunc(func(g *jen.Group) {
			for i, fd := range required {
				g.Id(fd.Name).Op(":").Id(args[i])
			}
		})),
	)
}
