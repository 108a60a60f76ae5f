package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/blimu-dev/stripegen/pkg/ir"
)

func (e *emitter) genEnums(f *fileGen) bool {
	nodes := f.owned(ir.KindEnum)
	for _, n := range nodes {
		if n.Enum.Open {
			f.genOpenEnum(n)
		} else {
			f.genEnum(n)
		}
	}
	return len(nodes) > 0
}

func (f *fileGen) genValues(n *ir.Node) {
	f.Commentf("Values%s lists every known %s.", n.Name, n.Name)
	f.Func().Id("Values"+n.Name).Params().Index().Id(n.Name).Block(
		jen.Return(jen.Index().Id(n.Name).ValuesFunc(func(g *jen.Group) {
			for _, v := range n.Enum.Values {
				g.Id(n.Name + v.Name)
			}
		})),
	)
}

// genEnum emits a closed, int-backed enumeration. Its zero value is invalid
// and values outside the list are rejected in both directions.
func (f *fileGen) genEnum(n *ir.Node) {
	enum := n.Enum
	recv := receiverName(n.Name)

	docComment(f, n.Doc)
	f.Type().Id(n.Name).Int()

	f.Const().DefsFunc(func(g *jen.Group) {
		for i, v := range enum.Values {
			c := g.Id(n.Name + v.Name)
			if i == 0 {
				c.Id(n.Name).Op("=").Iota().Op("+").Lit(1)
			}
		}
	})

	f.genValues(n)

	f.Comment("AsStr returns the wire value.")
	f.Func().Params(jen.Id(recv).Id(n.Name)).Id("AsStr").Params().String().BlockFunc(func(g *jen.Group) {
		g.Switch(jen.Id(recv)).BlockFunc(func(g *jen.Group) {
			for _, v := range enum.Values {
				g.Case(jen.Id(n.Name + v.Name)).Block(jen.Return(jen.Lit(v.Wire)))
			}
		})
		g.Return(jen.Lit(""))
	})

	f.Func().Params(jen.Id(recv).Id(n.Name)).Id("String").Params().String().Block(
		jen.Return(jen.Id(recv).Dot("AsStr").Call()),
	)

	f.Commentf("Parse%s maps a wire value onto %s.", n.Name, n.Name)
	f.Func().Id("Parse"+n.Name).Params(jen.Id("s").String()).Params(jen.Id(n.Name), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Switch(jen.Id("s")).BlockFunc(func(g *jen.Group) {
			for _, v := range enum.Values {
				g.Case(jen.Lit(v.Wire)).Block(jen.Return(jen.Id(n.Name+v.Name), jen.Nil()))
			}
		})
		g.Return(jen.Lit(0), jen.Qual("fmt", "Errorf").Call(jen.Lit("unknown "+n.Name+" value %q"), jen.Id("s")))
	})

	f.Func().Params(jen.Id(recv).Id(n.Name)).Id("MarshalText").Params().Params(byteSlice(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.For(jen.List(jen.Id("_"), jen.Id("known")).Op(":=").Range().Id("Values" + n.Name).Call()).Block(
			jen.If(jen.Id("known").Op("==").Id(recv)).Block(
				jen.Return(jen.Index().Byte().Call(jen.Id(recv).Dot("AsStr").Call()), jen.Nil()),
			),
		)
		g.Return(jen.Nil(), jen.Qual("fmt", "Errorf").Call(jen.Lit("invalid "+n.Name+" %d"), jen.Int().Call(jen.Id(recv))))
	})

	f.Func().Params(jen.Id(recv).Op("*").Id(n.Name)).Id("UnmarshalText").Params(jen.Id("text").Index().Byte()).Error().Block(
		jen.List(jen.Id("parsed"), jen.Err()).Op(":=").Id("Parse"+n.Name).Call(jen.String().Call(jen.Id("text"))),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err())),
		jen.Op("*").Id(recv).Op("=").Id("parsed"),
		jen.Return(jen.Nil()),
	)
}

// genOpenEnum emits a string-backed enumeration. The constants hold the
// known wire values; any other value is kept verbatim so that it encodes
// back to what was received.
func (f *fileGen) genOpenEnum(n *ir.Node) {
	enum := n.Enum
	recv := receiverName(n.Name)

	docComment(f, n.Doc)
	f.Type().Id(n.Name).String()

	f.Const().DefsFunc(func(g *jen.Group) {
		for _, v := range enum.Values {
			g.Id(n.Name + v.Name).Id(n.Name).Op("=").Lit(v.Wire)
		}
	})

	f.genValues(n)

	f.Commentf("IsUnknown reports whether %s is a value this package does not know about.", recv)
	f.Func().Params(jen.Id(recv).Id(n.Name)).Id("IsUnknown").Params().Bool().BlockFunc(func(g *jen.Group) {
		if len(enum.Values) == 0 {
			g.Return(jen.True())
			return
		}
		g.Switch(jen.Id(recv)).Block(
			jen.CaseFunc(func(g *jen.Group) {
				for _, v := range enum.Values {
					g.Id(n.Name + v.Name)
				}
			}).Block(jen.Return(jen.False())),
		)
		g.Return(jen.True())
	})

	f.Comment("AsStr returns the wire value, including values this package does not know about.")
	f.Func().Params(jen.Id(recv).Id(n.Name)).Id("AsStr").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id(recv))),
	)

	f.Func().Params(jen.Id(recv).Id(n.Name)).Id("String").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id(recv))),
	)

	f.Commentf("Parse%s maps a wire value onto %s. It never fails: unrecognised values are kept as they are.", n.Name, n.Name)
	f.Func().Id("Parse"+n.Name).Params(jen.Id("s").String()).Params(jen.Id(n.Name), jen.Error()).Block(
		jen.Return(jen.Id(n.Name).Call(jen.Id("s")), jen.Nil()),
	)

	f.Func().Params(jen.Id(recv).Id(n.Name)).Id("MarshalText").Params().Params(byteSlice(), jen.Error()).Block(
		jen.Return(jen.Index().Byte().Call(jen.Id(recv)), jen.Nil()),
	)

	f.Func().Params(jen.Id(recv).Op("*").Id(n.Name)).Id("UnmarshalText").Params(jen.Id("text").Index().Byte()).Error().Block(
		jen.Op("*").Id(recv).Op("=").Id(n.Name).Call(jen.String().Call(jen.Id("text"))),
		jen.Return(jen.Nil()),
	)
}
