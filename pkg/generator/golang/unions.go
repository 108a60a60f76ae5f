package golang

import (
	"github.com/dave/jennifer/jen"

	"github.com/blimu-dev/stripegen/pkg/ir"
)

func byteSlice() *jen.Statement { return jen.Index().Byte() }

func jsonNull() *jen.Statement { return jen.Index().Byte().Call(jen.Lit("null")) }

// genTagged emits a union discriminated by a property on the wire. Exactly
// one variant pointer is set after decoding.
func (f *fileGen) genTagged(n *ir.Node) {
	u := n.Tagged
	recv := receiverName(n.Name)
	docComment(f, n.Doc)
	f.Type().Id(n.Name).StructFunc(func(g *jen.Group) {
		for _, v := range u.Variants {
			g.Id(v.Name).Op("*").Add(f.qual(v.Ref))
		}
	})

	f.Func().Params(jen.Id(recv).Id(n.Name)).Id("MarshalJSON").Params().Params(byteSlice(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Switch().BlockFunc(func(g *jen.Group) {
			for _, v := range u.Variants {
				g.Case(jen.Id(recv).Dot(v.Name).Op("!=").Nil()).Block(
					jen.Return(f.rt("WithTag").Call(jen.Id(recv).Dot(v.Name), jen.Lit(u.Property), jen.Lit(v.Tag))),
				)
			}
		})
		g.Return(jsonNull(), jen.Nil())
	})

	f.Func().Params(jen.Id(recv).Op("*").Id(n.Name)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().BlockFunc(func(g *jen.Group) {
		g.List(jen.Id("tag"), jen.Err()).Op(":=").Add(f.rt("Discriminator")).Call(jen.Id("data"), jen.Lit(u.Property))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
		g.Switch(jen.Id("tag")).BlockFunc(func(g *jen.Group) {
			for _, v := range u.Variants {
				g.Case(jen.Lit(v.Tag)).Block(
					jen.Id("variant").Op(":=").New(f.qual(v.Ref)),
					jen.If(
						jen.Err().Op(":=").Qual("encoding/json", "Unmarshal").Call(jen.Id("data"), jen.Id("variant")),
						jen.Err().Op("!=").Nil(),
					).Block(jen.Return(jen.Err())),
					jen.Op("*").Id(recv).Op("=").Id(n.Name).Values(jen.Id(v.Name).Op(":").Id("variant")),
					jen.Return(jen.Nil()),
				)
			}
		})
		g.Return(jen.Op("&").Add(f.rt("NoVariantError")).Values(
			jen.Id("Type").Op(":").Lit(n.Name),
			jen.Id("Tag").Op(":").Id("tag"),
		))
	})
}

// genUntagged emits a union whose variants are tried in order. Literal
// variants become booleans.
func (f *fileGen) genUntagged(n *ir.Node) {
	u := n.Untagged
	recv := receiverName(n.Name)
	docComment(f, n.Doc)
	f.Type().Id(n.Name).StructFunc(func(g *jen.Group) {
		for _, v := range u.Variants {
			if v.IsLiteral() {
				g.Id(v.Name).Bool().Comment(v.Literal)
				continue
			}
			g.Id(v.Name).Op("*").Add(f.valueType(v.Type.Inner()))
		}
	})

	f.Func().Params(jen.Id(recv).Id(n.Name)).Id("MarshalJSON").Params().Params(byteSlice(), jen.Error()).BlockFunc(func(g *jen.Group) {
		g.Switch().BlockFunc(func(g *jen.Group) {
			for _, v := range u.Variants {
				if v.IsLiteral() {
					g.Case(jen.Id(recv).Dot(v.Name)).Block(
						jen.Return(jen.Qual("encoding/json", "Marshal").Call(jen.Lit(v.Literal))),
					)
					continue
				}
				g.Case(jen.Id(recv).Dot(v.Name).Op("!=").Nil()).Block(
					jen.Return(jen.Qual("encoding/json", "Marshal").Call(jen.Id(recv).Dot(v.Name))),
				)
			}
		})
		g.Return(jsonNull(), jen.Nil())
	})

	f.Func().Params(jen.Id(recv).Op("*").Id(n.Name)).Id("UnmarshalJSON").Params(jen.Id("data").Index().Byte()).Error().BlockFunc(func(g *jen.Group) {
		for _, v := range u.Variants {
			if v.IsLiteral() {
				g.If(f.rt("IsLiteral").Call(jen.Id("data"), jen.Lit(v.Literal))).Block(
					jen.Op("*").Id(recv).Op("=").Id(n.Name).Values(jen.Id(v.Name).Op(":").True()),
					jen.Return(jen.Nil()),
				)
				continue
			}
			g.Block(
				jen.Id("variant").Op(":=").New(f.valueType(v.Type.Inner())),
				jen.If(
					jen.Err().Op(":=").Qual("encoding/json", "Unmarshal").Call(jen.Id("data"), jen.Id("variant")),
					jen.Err().Op("==").Nil(),
				).Block(
					jen.Op("*").Id(recv).Op("=").Id(n.Name).Values(jen.Id(v.Name).Op(":").Id("variant")),
					jen.Return(jen.Nil()),
				),
			)
		}
		g.Return(jen.Op("&").Add(f.rt("NoVariantError")).Values(jen.Id("Type").Op(":").Lit(n.Name)))
	})
}
