package golang

import (
	"strconv"

	"github.com/dave/jennifer/jen"

	"github.com/blimu-dev/stripegen/pkg/ir"
)

// hasDecodeMin reports whether the struct at path gets a min-ser decoder.
// Structs embedding other structs keep the encoding/json path.
func (e *emitter) hasDecodeMin(path string) bool {
	n, ok := e.ir.Nodes[path]
	if !ok || n.Kind != ir.KindStruct || !n.Usage.Has(ir.UsageResponse) {
		return false
	}
	for _, fd := range n.Struct.Fields {
		if fd.Flatten {
			return false
		}
	}
	return true
}

func (e *emitter) genMinSer(f *fileGen) bool {
	f.HeaderComment("//go:build " + MinSerTag)
	var emitted bool
	for _, n := range f.owned(ir.KindStruct, ir.KindTaggedUnion) {
		switch {
		case n.Kind == ir.KindTaggedUnion:
			f.genTaggedMin(n)
		case e.hasDecodeMin(n.Path):
			f.genStructMin(n)
		default:
			continue
		}
		emitted = true
	}
	return emitted
}

// genStructMin emits DecodeMin for a response struct: one slot per field,
// unknown keys skipped, missing required fields reported.
func (f *fileGen) genStructMin(n *ir.Node) {
	ms := f.e.opts.Runtime + "/miniser"
	fields := n.Struct.Fields
	slot := func(i int) *jen.Statement { return jen.Id("s" + strconv.Itoa(i)) }

	f.Func().Params(jen.Id("x").Op("*").Id(n.Name)).Id("DecodeMin").Params(
		jen.Id("d").Op("*").Qual(ms, "Decoder"),
	).Error().BlockFunc(func(g *jen.Group) {
		for i, fd := range fields {
			g.Var().Add(slot(i)).Op("*").Add(f.slotType(n, fd))
		}
		g.Err().Op(":=").Id("d").Dot("Object").Call(jen.Func().Params(jen.Id("key").String()).Error().BlockFunc(func(g *jen.Group) {
			g.Switch(jen.Id("key")).BlockFunc(func(g *jen.Group) {
				for i, fd := range fields {
					g.Case(jen.Lit(fd.Wire)).Block(
						jen.Return(jen.Qual(ms, slotDecoder(n, fd)).Call(jen.Id("d"), jen.Op("&").Add(slot(i)))),
					)
				}
				g.Default().Block(jen.Return(jen.Id("d").Dot("Skip").Call()))
			})
		}))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
		for i, fd := range fields {
			if fd.Required && !fd.Type.IsNullable() {
				g.If(slot(i).Op("==").Nil()).Block(
					jen.Return(jen.Qual(ms, "MissingField").Call(jen.Lit(n.Name), jen.Lit(fd.Wire))),
				)
			}
		}
		g.Op("*").Id("x").Op("=").Id(n.Name).Values()
		for i, fd := range fields {
			switch {
			case pointerField(n, fd):
				g.Id("x").Dot(fd.Name).Op("=").Add(slot(i))
			case fd.Required && !fd.Type.IsNullable():
				g.Id("x").Dot(fd.Name).Op("=").Op("*").Add(slot(i))
			default:
				g.If(slot(i).Op("!=").Nil()).Block(
					jen.Id("x").Dot(fd.Name).Op("=").Op("*").Add(slot(i)),
				)
			}
		}
		g.Return(jen.Nil())
	})
}

// pointerField reports whether the Go field of fd is a pointer to its slot
// type, so the slot can be assigned directly.
func pointerField(n *ir.Node, fd *ir.Field) bool {
	return fd.Type.IsNullable() && !clearable(n, fd) && !nilable(fd.Type.Inner())
}

// slotType is the element type the decoder allocates for fd.
func (f *fileGen) slotType(n *ir.Node, fd *ir.Field) *jen.Statement {
	if fd.Type.IsNullable() && !clearable(n, fd) {
		return f.valueType(fd.Type.Inner())
	}
	return f.fieldType(fd.Type, clearable(n, fd))
}

// slotDecoder picks the miniser entry point so that nested structs keep
// decoding through DecodeMin.
func slotDecoder(n *ir.Node, fd *ir.Field) string {
	if clearable(n, fd) {
		return "Into"
	}
	switch fd.Type.Inner().Kind {
	case ir.KindArray:
		return "IntoSlice"
	case ir.KindMap:
		return "IntoMap"
	}
	return "Into"
}

// genTaggedMin emits DecodeMin for a tagged union, dispatching on the
// discriminator before decoding the variant.
func (f *fileGen) genTaggedMin(n *ir.Node) {
	ms := f.e.opts.Runtime + "/miniser"
	u := n.Tagged
	f.Func().Params(jen.Id("x").Op("*").Id(n.Name)).Id("DecodeMin").Params(
		jen.Id("d").Op("*").Qual(ms, "Decoder"),
	).Error().BlockFunc(func(g *jen.Group) {
		g.List(jen.Id("raw"), jen.Err()).Op(":=").Id("d").Dot("Raw").Call()
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
		g.List(jen.Id("tag"), jen.Err()).Op(":=").Add(f.rt("Discriminator")).Call(jen.Id("raw"), jen.Lit(u.Property))
		g.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Err()))
		g.Switch(jen.Id("tag")).BlockFunc(func(g *jen.Group) {
			for _, v := range u.Variants {
				decode := jen.Qual("encoding/json", "Unmarshal")
				if f.e.hasDecodeMin(v.Ref) {
					decode = jen.Qual(ms, "Decode")
				}
				g.Case(jen.Lit(v.Tag)).Block(
					jen.Id("variant").Op(":=").New(f.qual(v.Ref)),
					jen.If(
						jen.Err().Op(":=").Add(decode).Call(jen.Id("raw"), jen.Id("variant")),
						jen.Err().Op("!=").Nil(),
					).Block(jen.Return(jen.Err())),
					jen.Op("*").Id("x").Op("=").Id(n.Name).Values(jen.Id(v.Name).Op(":").Id("variant")),
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
