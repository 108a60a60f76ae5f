package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Shape is the structural category of a schema, shared by the loader's
// promotion pass and the inference engine so both agree on which inline
// schemas deserve a name.
type Shape int

const (
	ShapeAny Shape = iota
	ShapeRef
	ShapePrimitive
	ShapeEnum
	ShapeObject
	ShapeMap
	ShapeList
	ShapeArray
	ShapeUnion
	ShapeAllOf
)

var shapeNames = [...]string{"any", "ref", "primitive", "enum", "object", "map", "list", "array", "union", "allOf"}

func (s Shape) String() string { return shapeNames[s] }

// Promotable reports whether an inline schema of this shape is lifted into a
// named node.
func (s Shape) Promotable() bool {
	switch s {
	case ShapeObject, ShapeEnum, ShapeUnion, ShapeAllOf:
		return true
	}
	return false
}

// Classify returns the shape of sr. Single-variant unions and unions whose
// only other variant is the empty-string enum classify as their remaining
// variant.
func Classify(sr *openapi3.SchemaRef) Shape {
	if sr == nil {
		return ShapeAny
	}
	if sr.Ref != "" {
		return ShapeRef
	}
	s := sr.Value
	if s == nil {
		return ShapeAny
	}
	if len(s.AllOf) == 1 {
		return Classify(s.AllOf[0])
	}
	if len(s.AllOf) > 1 {
		return ShapeAllOf
	}
	if variants := Variants(s); variants != nil {
		kept, _ := StripEmptyable(variants)
		if len(kept) == 1 {
			return Classify(kept[0])
		}
		return ShapeUnion
	}
	if len(s.Enum) > 0 && isType(s, openapi3.TypeString) {
		return ShapeEnum
	}
	switch {
	case isType(s, openapi3.TypeObject) || (s.Type == nil && len(s.Properties) > 0):
		if len(s.Properties) == 0 {
			return ShapeMap
		}
		if IsListShape(s) {
			return ShapeList
		}
		return ShapeObject
	case isType(s, openapi3.TypeArray):
		return ShapeArray
	case isType(s, openapi3.TypeString), isType(s, openapi3.TypeInteger),
		isType(s, openapi3.TypeNumber), isType(s, openapi3.TypeBoolean):
		return ShapePrimitive
	}
	return ShapeAny
}

// Variants returns the anyOf or oneOf members of s, or nil.
func Variants(s *openapi3.Schema) openapi3.SchemaRefs {
	if len(s.AnyOf) > 0 {
		return s.AnyOf
	}
	if len(s.OneOf) > 0 {
		return s.OneOf
	}
	return nil
}

// StripEmptyable drops variants that only admit the empty string, used by
// request parameters to clear a value. It reports whether one was dropped.
func StripEmptyable(variants openapi3.SchemaRefs) (openapi3.SchemaRefs, bool) {
	kept := make(openapi3.SchemaRefs, 0, len(variants))
	dropped := false
	for _, v := range variants {
		if IsEmptyable(v) {
			dropped = true
			continue
		}
		kept = append(kept, v)
	}
	return kept, dropped
}

// IsEmptyable reports whether sr is `enum: [""]`.
func IsEmptyable(sr *openapi3.SchemaRef) bool {
	if sr == nil || sr.Ref != "" || sr.Value == nil {
		return false
	}
	e := sr.Value.Enum
	if len(e) != 1 {
		return false
	}
	s, ok := e[0].(string)
	return ok && s == ""
}

// IsListShape recognises the paginated collection envelope:
// {object: "list", data: [T], has_more, url}.
func IsListShape(s *openapi3.Schema) bool {
	data, ok := s.Properties["data"]
	if !ok || data == nil || data.Value == nil || !isType(data.Value, openapi3.TypeArray) {
		return false
	}
	if _, ok := s.Properties["has_more"]; !ok {
		return false
	}
	obj, ok := s.Properties["object"]
	if !ok || obj == nil || obj.Value == nil {
		return false
	}
	if len(obj.Value.Enum) == 1 {
		v, _ := obj.Value.Enum[0].(string)
		return v == "list" || v == "search_result"
	}
	_, hasURL := s.Properties["url"]
	return hasURL
}

// IsExpandableUnion recognises `anyOf: [string, $ref]` marked with
// x-expansionResources, the wire form of a field that holds either an ID or
// the expanded object.
func IsExpandableUnion(s *openapi3.Schema) bool {
	variants := Variants(s)
	if len(variants) < 2 {
		return false
	}
	return Extensions(s.Extensions).Has(ExtExpansionResources) && IsIDOrRef(variants)
}

// IsIDOrRef reports whether variants are one plain string plus references.
func IsIDOrRef(variants openapi3.SchemaRefs) bool {
	kept, _ := StripEmptyable(variants)
	if len(kept) < 2 {
		return false
	}
	hasString := false
	for _, v := range kept {
		switch {
		case v.Ref != "":
		case v.Value != nil && isType(v.Value, openapi3.TypeString) && len(v.Value.Enum) == 0 && !hasString:
			hasString = true
		default:
			return false
		}
	}
	return hasString
}

// ConstValue returns the single string an enum admits.
func ConstValue(sr *openapi3.SchemaRef) (string, bool) {
	if sr == nil || sr.Value == nil || len(sr.Value.Enum) != 1 {
		return "", false
	}
	v, ok := sr.Value.Enum[0].(string)
	return v, ok
}

func isType(s *openapi3.Schema, typ string) bool {
	return s.Type != nil && s.Type.Is(typ)
}

// IsType reports whether the schema declares typ.
func IsType(s *openapi3.Schema, typ string) bool { return isType(s, typ) }
