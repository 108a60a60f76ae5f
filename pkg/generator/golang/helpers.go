package golang

import (
	"go/token"
	"regexp"
	"strings"

	"github.com/dave/jennifer/jen"
	"github.com/go-openapi/swag"

	"github.com/blimu-dev/stripegen/pkg/ir"
	"github.com/blimu-dev/stripegen/pkg/utils"
)

// formatGoComment formats a string as a proper Go comment, handling multiline descriptions
func formatGoComment(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// Split into lines and prefix each with //
	lines := strings.Split(s, "\n")
	var result []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			result = append(result, "//")
		} else {
			result = append(result, "// "+line)
		}
	}

	return strings.Join(result, "\n")
}

type commenter interface {
	Comment(string) *jen.Statement
}

// docComment writes doc above the next declaration of c.
func docComment(c commenter, doc string) {
	formatted := formatGoComment(doc)
	if formatted == "" {
		return
	}
	for _, line := range strings.Split(formatted, "\n") {
		c.Comment(line)
	}
}

// valueType renders t without optional wrapping.
func (f *fileGen) valueType(t ir.Type) *jen.Statement {
	switch t.Kind {
	case ir.KindPrimitive:
		if t.ID != "" {
			return f.qual(t.ID)
		}
		return f.primitive(t.Prim)
	case ir.KindRef:
		return f.qual(t.Ref)
	case ir.KindArray:
		return jen.Index().Add(f.valueType(*t.Elem))
	case ir.KindMap:
		return jen.Map(jen.String()).Add(f.valueType(*t.Elem))
	case ir.KindList:
		return f.rt("List").Types(f.valueType(*t.Elem))
	case ir.KindExpandable:
		return f.expandable(t)
	case ir.KindNullable:
		return f.fieldType(t, false)
	}
	f.fail(t.Ref, "unsupported type kind %q", t.Kind)
	return jen.Any()
}

// fieldType renders t for a struct field or parameter. Optional values are
// pointers unless the Go type is already nil-able; clearable request values
// use runtime.Nullable so an explicit null can be sent.
func (f *fileGen) fieldType(t ir.Type, clearable bool) *jen.Statement {
	if !t.IsNullable() {
		return f.valueType(t)
	}
	inner := t.Inner()
	switch {
	case clearable:
		return f.rt("Nullable").Types(f.valueType(inner))
	case nilable(inner):
		return f.valueType(inner)
	default:
		return jen.Op("*").Add(f.valueType(inner))
	}
}

func (f *fileGen) primitive(p ir.Primitive) *jen.Statement {
	switch p {
	case ir.PrimString:
		return jen.String()
	case ir.PrimInt64:
		return jen.Int64()
	case ir.PrimUint64:
		return jen.Uint64()
	case ir.PrimFloat64:
		return jen.Float64()
	case ir.PrimBool:
		return jen.Bool()
	case ir.PrimTimestamp:
		return f.rt("Timestamp")
	case ir.PrimCurrency:
		return f.rt("Currency")
	}
	return jen.Qual("encoding/json", "RawMessage")
}

// expandable renders an ID-or-object field. Demoted edges keep only the ID
// type so the target package is not imported.
func (f *fileGen) expandable(t ir.Type) *jen.Statement {
	id := jen.String()
	if t.ID != "" {
		id = f.qual(t.ID)
	}
	if f.e.plan.Demoted(f.module, t.Ref) {
		return f.rt("ExpandableID").Types(id)
	}
	return f.rt("Expandable").Types(id, f.qual(t.Ref))
}

func nilable(t ir.Type) bool {
	switch t.Kind {
	case ir.KindArray, ir.KindMap:
		return true
	case ir.KindPrimitive:
		return t.Prim == ir.PrimJSON && t.ID == ""
	}
	return false
}

// fieldTag builds the struct tag of a wire member.
func fieldTag(wire string, optional, clearable, form bool) map[string]string {
	opt := ""
	switch {
	case clearable:
		opt = ",omitzero"
	case optional:
		opt = ",omitempty"
	}
	tags := map[string]string{"json": wire + opt}
	if form {
		tags["form"] = wire + opt
	}
	return tags
}

var reservedArgs = map[string]bool{
	"ctx": true, "client": true, "r": true, "out": true, "err": true,
	"url": true, "runtime": true, "context": true, "json": true, "fmt": true,
}

// argName turns a wire parameter name into a local identifier.
func argName(wire string) string {
	name := swag.ToVarName(wire)
	if name == "" {
		name = "arg"
	}
	if token.IsKeyword(name) || reservedArgs[name] {
		name += "Param"
	}
	return name
}

// argName also avoids shadowing the other packages of the output tree inside
// functions of module.
func (e *emitter) argName(module, wire string) string {
	name := argName(wire)
	for _, m := range e.plan.Modules {
		if m == name && m != module {
			return name + "Param"
		}
	}
	return name
}

func (f *fileGen) arg(wire string) string { return f.e.argName(f.module, wire) }

// receiverName is the receiver of methods on a generated type.
func receiverName(typeName string) string {
	for _, r := range typeName {
		return strings.ToLower(string(r))
	}
	return "v"
}

var pathParamPattern = regexp.MustCompile(`\{([^}]+)\}`)

// buildPathExpr builds the URL expression of a request, escaping every path
// parameter in template order.
func buildPathExpr(url string, params []*ir.Param, name func(string) string) *jen.Statement {
	names := make(map[string]string, len(params))
	for _, p := range params {
		names[p.Wire] = name(p.Wire)
	}
	var parts []jen.Code
	last := 0
	for _, loc := range pathParamPattern.FindAllStringSubmatchIndex(url, -1) {
		if loc[0] > last {
			parts = append(parts, jen.Lit(url[last:loc[0]]))
		}
		arg := names[url[loc[2]:loc[3]]]
		parts = append(parts, jen.Qual("net/url", "PathEscape").Call(jen.String().Call(jen.Id(arg))))
		last = loc[1]
	}
	if last < len(url) {
		parts = append(parts, jen.Lit(url[last:]))
	}
	if len(parts) == 0 {
		return jen.Lit(url)
	}
	expr := jen.Add(parts[0])
	for _, p := range parts[1:] {
		expr = expr.Op("+").Add(p)
	}
	return expr
}

// orderPathParams returns path parameters in the order they appear in the path
func orderPathParams(req *ir.Request) []*ir.Param {
	byWire := make(map[string]*ir.Param, len(req.PathParams))
	for _, p := range req.PathParams {
		byWire[p.Wire] = p
	}
	var ordered []*ir.Param
	for _, m := range pathParamPattern.FindAllStringSubmatch(req.Path, -1) {
		if p, ok := byWire[m[1]]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}

// rootPackageName derives the package name of the output root from its
// import path.
func rootPackageName(module string) string {
	if i := strings.LastIndex(module, "/"); i >= 0 {
		module = module[i+1:]
	}
	return utils.PackageName(module)
}
