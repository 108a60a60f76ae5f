package ir

// TypeKind is the kind of a use-site type.
type TypeKind string

const (
	KindPrimitive  TypeKind = "primitive"
	KindRef        TypeKind = "ref"
	KindArray      TypeKind = "array"
	KindMap        TypeKind = "map"
	KindList       TypeKind = "list"
	KindExpandable TypeKind = "expandable"
	KindNullable   TypeKind = "nullable"
)

// Primitive is a scalar type.
type Primitive string

const (
	PrimString    Primitive = "string"
	PrimInt64     Primitive = "i64"
	PrimUint64    Primitive = "u64"
	PrimFloat64   Primitive = "f64"
	PrimBool      Primitive = "bool"
	PrimTimestamp Primitive = "timestamp"
	PrimCurrency  Primitive = "currency"
	PrimJSON      Primitive = "json"
)

// Type is a use-site type. Named definitions are only ever reached through
// KindRef (and the target of KindExpandable).
type Type struct {
	Kind TypeKind
	Prim Primitive
	// Ref is the node path of a KindRef, or the expanded target of a
	// KindExpandable.
	Ref string
	// ID is the ID newtype path of a KindExpandable, or of a string primitive
	// that carries a resource identifier.
	ID   string
	Elem *Type
}

// Prim returns a primitive type.
func Prim(p Primitive) Type { return Type{Kind: KindPrimitive, Prim: p} }

// RefTo returns a reference to the node at path.
func RefTo(path string) Type { return Type{Kind: KindRef, Ref: path} }

// IDRef returns a string type carrying the ID newtype at path.
func IDRef(path string) Type { return Type{Kind: KindPrimitive, Prim: PrimString, ID: path} }

// ArrayOf returns []elem.
func ArrayOf(elem Type) Type { return Type{Kind: KindArray, Elem: &elem} }

// MapOf returns map[string]elem.
func MapOf(elem Type) Type { return Type{Kind: KindMap, Elem: &elem} }

// ListOf returns the paginated list envelope of elem.
func ListOf(elem Type) Type { return Type{Kind: KindList, Elem: &elem} }

// ExpandableOf returns an ID-or-object field.
func ExpandableOf(idPath, target string) Type {
	return Type{Kind: KindExpandable, ID: idPath, Ref: target}
}

// NullableOf wraps t. Wrapping is idempotent.
func NullableOf(t Type) Type {
	if t.Kind == KindNullable {
		return t
	}
	return Type{Kind: KindNullable, Elem: &t}
}

// IsNullable reports whether t is a Nullable wrapper.
func (t Type) IsNullable() bool { return t.Kind == KindNullable }

// Inner strips a Nullable wrapper.
func (t Type) Inner() Type {
	if t.Kind == KindNullable {
		return *t.Elem
	}
	return t
}

// Walk calls fn for t and every nested type, outermost first.
func (t Type) Walk(fn func(Type)) {
	fn(t)
	if t.Elem != nil {
		t.Elem.Walk(fn)
	}
}

// Equal reports structural equality.
func (t Type) Equal(o Type) bool {
	if t.Kind != o.Kind || t.Prim != o.Prim || t.Ref != o.Ref || t.ID != o.ID {
		return false
	}
	if t.Elem == nil || o.Elem == nil {
		return t.Elem == nil && o.Elem == nil
	}
	return t.Elem.Equal(*o.Elem)
}

func (t Type) String() string {
	switch t.Kind {
	case KindPrimitive:
		if t.ID != "" {
			return "id(" + t.ID + ")"
		}
		return string(t.Prim)
	case KindRef:
		return "ref(" + t.Ref + ")"
	case KindExpandable:
		return "expandable(" + t.ID + ", " + t.Ref + ")"
	default:
		return string(t.Kind) + "<" + t.Elem.String() + ">"
	}
}
