package golang

import (
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/blimu-dev/stripegen/pkg/ir"
)

func (e *emitter) genIDs(f *fileGen) bool {
	nodes := f.owned(ir.KindID)
	for _, n := range nodes {
		f.genID(n)
	}
	return len(nodes) > 0
}

func prefixVar(name string) string {
	return strings.ToLower(name[:1]) + name[1:] + "Prefixes"
}

// genID emits a string newtype validated against its registered prefixes.
func (f *fileGen) genID(n *ir.Node) {
	name := n.Name
	prefixes := prefixVar(name)
	resource := n.ID.Resource
	if r, ok := f.e.ir.Nodes[resource]; ok {
		resource = r.Name
	}

	f.Commentf("%s identifies a %s.", name, resource)
	f.Type().Id(name).String()

	if len(n.ID.Prefixes) == 0 {
		f.Var().Id(prefixes).Index().String()
	} else {
		f.Var().Id(prefixes).Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
			for _, p := range n.ID.Prefixes {
				g.Lit(p)
			}
		})
	}

	f.Commentf("Parse%s validates s and converts it to a %s.", name, name)
	f.Func().Id("Parse"+name).Params(jen.Id("s").String()).Params(jen.Id(name), jen.Error()).Block(
		jen.If(
			jen.Err().Op(":=").Add(f.rt("CheckID")).Call(jen.Lit(name), jen.Id("s"), jen.Id(prefixes).Op("...")),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Lit(""), jen.Err())),
		jen.Return(jen.Id(name).Call(jen.Id("s")), jen.Nil()),
	)

	f.Comment("Validate reports whether id carries a registered prefix.")
	f.Func().Params(jen.Id("id").Id(name)).Id("Validate").Params().Error().Block(
		jen.Return(f.rt("CheckID").Call(jen.Lit(name), jen.String().Call(jen.Id("id")), jen.Id(prefixes).Op("..."))),
	)

	f.Func().Params(jen.Id("id").Id(name)).Id("String").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id("id"))),
	)

	f.Func().Params(jen.Id("id").Id(name)).Id("MarshalText").Params().Params(byteSlice(), jen.Error()).Block(
		jen.Return(jen.Index().Byte().Call(jen.Id("id")), jen.Nil()),
	)

	f.Func().Params(jen.Id("id").Op("*").Id(name)).Id("UnmarshalText").Params(jen.Id("b").Index().Byte()).Error().Block(
		jen.List(jen.Id("parsed"), jen.Err()).Op(":=").Id("Parse"+name).Call(jen.String().Call(jen.Id("b"))),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		jen.Op("*").Id("id").Op("=").Id("parsed"),
		jen.Return(jen.Nil()),
	)
}
