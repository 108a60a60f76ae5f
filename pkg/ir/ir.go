// Package ir is the typed intermediate representation the inference engine
// produces and every later stage consumes. It is built once per run and not
// mutated afterwards, except for the partition planner's demotion marks which
// live in the plan, not here.
package ir

import (
	"sort"
)

// NodeKind is the kind of a named definition.
type NodeKind string

const (
	KindStruct        NodeKind = "struct"
	KindEnum          NodeKind = "enum"
	KindTaggedUnion   NodeKind = "tagged"
	KindUntaggedUnion NodeKind = "untagged"
	KindID            NodeKind = "id"
)

// Usage records whether a node is reachable from request shapes, response
// shapes or both.
type Usage uint8

const (
	UsageResponse Usage = 1 << iota
	UsageRequest
)

// Has reports whether u includes other.
func (u Usage) Has(other Usage) bool { return u&other != 0 }

// Node is one named definition. Path is the canonical component or promoted
// path and the only place the definition lives; every other site uses a Ref.
type Node struct {
	Path string
	Name string
	Kind NodeKind
	Doc  string
	// Owner is the component path or operation id the node was promoted from.
	Owner string
	// Resource is set on top-level resources that own an ID newtype.
	Resource bool
	// Family pins the definition to a family module (override or
	// x-stripeResource placement).
	Family string
	Usage    Usage

	Struct   *Struct
	Enum     *Enum
	Tagged   *TaggedUnion
	Untagged *UntaggedUnion
	ID       *IDType
}

// Struct is a record with fields in document order.
type Struct struct {
	Fields []*Field
	// Object is the constant value of the "object" property, if any.
	Object string
	// IDPath is the path of the ID newtype of a resource struct.
	IDPath string
}

// Field is one struct member.
type Field struct {
	Wire string
	Name string
	Type Type
	// Required fields are always present on the wire.
	Required bool
	// Null marks request fields where sending an explicit null (or the empty
	// string) clears the value.
	Null bool
	// Flatten embeds the referenced struct.
	Flatten bool
	Doc     string
}

// Enum is a string enumeration.
type Enum struct {
	Values []EnumValue
	// Open enums keep unknown wire values verbatim.
	Open bool
}

// EnumValue is one variant.
type EnumValue struct {
	Wire string
	Name string
}

// TaggedUnion is discriminated by a property on the wire.
type TaggedUnion struct {
	Property string
	Variants []TaggedVariant
}

// TaggedVariant maps one tag value onto a struct.
type TaggedVariant struct {
	Tag  string
	Name string
	Ref  string
}

// UntaggedUnion tries its variants in order.
type UntaggedUnion struct {
	Variants []UntaggedVariant
}

// UntaggedVariant is either a typed variant or a literal string.
type UntaggedVariant struct {
	Name    string
	Type    *Type
	Literal string
}

// IsLiteral reports whether the variant is a literal string.
func (v UntaggedVariant) IsLiteral() bool { return v.Type == nil }

// IDType is the newtype of a resource identifier.
type IDType struct {
	Resource string
	Prefixes []string
}

// IR is the whole intermediate representation.
type IR struct {
	Nodes    map[string]*Node
	Requests []*Request
}

// New returns an empty IR.
func New() *IR {
	return &IR{Nodes: make(map[string]*Node)}
}

// Node returns the node at path.
func (r *IR) Node(path string) (*Node, bool) {
	n, ok := r.Nodes[path]
	return n, ok
}

// Paths returns all node paths in sorted order.
func (r *IR) Paths() []string {
	paths := make([]string, 0, len(r.Nodes))
	for p := range r.Nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Request returns the request built from an operation id.
func (r *IR) Request(operationID string) (*Request, bool) {
	for _, req := range r.Requests {
		if req.OperationID == operationID {
			return req, true
		}
	}
	return nil, false
}

// Refs returns the use-site types of n that point at other nodes, in order.
func (n *Node) Refs() []Type {
	var out []Type
	collect := func(t Type) {
		t.Walk(func(t Type) {
			if t.Kind == KindRef || t.Kind == KindExpandable || t.ID != "" {
				out = append(out, t)
			}
		})
	}
	switch n.Kind {
	case KindStruct:
		for _, f := range n.Struct.Fields {
			collect(f.Type)
		}
		if n.Struct.IDPath != "" {
			collect(IDRef(n.Struct.IDPath))
		}
	case KindTaggedUnion:
		for _, v := range n.Tagged.Variants {
			collect(RefTo(v.Ref))
		}
	case KindUntaggedUnion:
		for _, v := range n.Untagged.Variants {
			if v.Type != nil {
				collect(*v.Type)
			}
		}
	}
	return out
}
