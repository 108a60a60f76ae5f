package partition_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/stripegen/pkg/generator"
	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/ir"
	"github.com/blimu-dev/stripegen/pkg/openapi"
	"github.com/blimu-dev/stripegen/pkg/overrides"
	"github.com/blimu-dev/stripegen/pkg/partition"
)

func resource(path string, fields ...*ir.Field) *ir.Node {
	return &ir.Node{
		Path:     path,
		Name:     path,
		Kind:     ir.KindStruct,
		Resource: true,
		Struct:   &ir.Struct{Fields: fields, IDPath: path + "/id"},
	}
}

func idNode(resource string) *ir.Node {
	return &ir.Node{
		Path: resource + "/id",
		Name: resource + "ID",
		Kind: ir.KindID,
		ID:   &ir.IDType{Resource: resource},
	}
}

func field(wire string, t ir.Type) *ir.Field {
	return &ir.Field{Wire: wire, Name: wire, Type: t, Required: true}
}

func build(nodes ...*ir.Node) *ir.IR {
	r := ir.New()
	for _, n := range nodes {
		r.Nodes[n.Path] = n
	}
	return r
}

func TestBuildDemotesExpandableCycle(t *testing.T) {
	r := build(
		resource("alpha", field("beta", ir.ExpandableOf("beta/id", "beta"))),
		resource("beta", field("alpha", ir.ExpandableOf("alpha/id", "alpha"))),
		idNode("alpha"),
		idNode("beta"),
	)

	plan, err := partition.Build(r)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta", partition.Shared}, plan.Modules)
	assert.Equal(t, partition.Shared, plan.Module("alpha/id"))
	assert.Equal(t, partition.Shared, plan.Module("beta/id"))
	assert.True(t, plan.Demoted("alpha", "beta"))
	assert.True(t, plan.Demoted("beta", "alpha"))
	assert.Equal(t, []partition.Edge{{From: "alpha", To: "beta"}, {From: "beta", To: "alpha"}}, plan.DemotedEdges())
	assert.Equal(t, []string{partition.Shared}, plan.Imports("alpha"))
	assert.Equal(t, []string{partition.Shared}, plan.Imports("beta"))
}

func TestBuildKeepsAcyclicExpandable(t *testing.T) {
	r := build(
		resource("alpha", field("beta", ir.ExpandableOf("beta/id", "beta"))),
		resource("beta"),
		idNode("alpha"),
		idNode("beta"),
	)

	plan, err := partition.Build(r)
	require.NoError(t, err)

	assert.False(t, plan.Demoted("alpha", "beta"))
	assert.Equal(t, "alpha", plan.Module("alpha/id"))
	assert.Equal(t, partition.Shared, plan.Module("beta/id"))
	assert.Equal(t, []string{"beta", partition.Shared}, plan.Imports("alpha"))
}

func TestBuildForcesPlainCycleIntoShared(t *testing.T) {
	alpha := resource("alpha", field("beta", ir.RefTo("beta")))
	alpha.Struct.IDPath = ""
	beta := resource("beta", field("alpha", ir.RefTo("alpha")))
	beta.Struct.IDPath = ""
	gamma := resource("gamma", field("alpha", ir.RefTo("alpha")))
	gamma.Struct.IDPath = ""

	plan, err := partition.Build(build(alpha, beta, gamma))
	require.NoError(t, err)

	assert.Equal(t, partition.Shared, plan.Module("alpha"))
	assert.Equal(t, partition.Shared, plan.Module("beta"))
	assert.Equal(t, "gamma", plan.Module("gamma"))
	assert.Equal(t, []string{partition.Shared}, plan.Imports("gamma"))
	assert.Empty(t, plan.Imports(partition.Shared))
}

func TestBuildSharesHelpersReachedTwice(t *testing.T) {
	address := &ir.Node{
		Path:   "address",
		Name:   "Address",
		Kind:   ir.KindStruct,
		Struct: &ir.Struct{Fields: []*ir.Field{field("line1", ir.Prim(ir.PrimString))}},
	}
	alpha := resource("alpha", field("address", ir.RefTo("address")))
	alpha.Struct.IDPath = ""
	beta := resource("beta", field("address", ir.NullableOf(ir.RefTo("address"))))
	beta.Struct.IDPath = ""
	detail := &ir.Node{
		Path:  "alpha/detail",
		Name:  "AlphaDetail",
		Kind:  ir.KindEnum,
		Owner: "alpha",
		Enum:  &ir.Enum{Values: []ir.EnumValue{{Wire: "x", Name: "X"}}},
	}

	plan, err := partition.Build(build(address, alpha, beta, detail))
	require.NoError(t, err)

	assert.Equal(t, partition.Shared, plan.Module("address"))
	assert.Equal(t, "alpha", plan.Module("alpha/detail"))

	addr, ok := plan.Address("alpha/detail")
	require.True(t, ok)
	assert.Equal(t, partition.Address{Module: "alpha", File: partition.FileEnums}, addr)
	_, ok = plan.Address("missing")
	assert.False(t, ok)
}

func TestBuildPinnedFamily(t *testing.T) {
	alpha := resource("alpha")
	alpha.Struct.IDPath = ""
	alpha.Family = "checkout"
	beta := resource("beta")
	beta.Struct.IDPath = ""
	beta.Family = "checkout"
	shared := resource("shared_thing")
	shared.Struct.IDPath = ""
	shared.Family = "shared"

	plan, err := partition.Build(build(alpha, beta, shared))
	require.NoError(t, err)

	assert.Equal(t, []string{"checkout", "sharedfamily"}, plan.Modules)
	assert.Equal(t, []string{"alpha", "beta"}, plan.Definitions("checkout"))
}

func TestModuleName(t *testing.T) {
	tests := map[string]string{
		"Widget":           "widget",
		"checkout.session": "checkoutsession",
		"shared":           "sharedfamily",
		"type":             "typepkg",
	}
	for in, want := range tests {
		assert.Equal(t, want, partition.ModuleName(in), in)
	}
}

func TestBuildWidgets(t *testing.T) {
	g, err := openapi.LoadDocument(context.Background(), filepath.Join("..", "..", "testdata", "widgets.json"), openapi.LoadOptions{})
	require.NoError(t, err)
	store, err := overrides.Load(filepath.Join("..", "..", "testdata", "id_prefixes.json"))
	require.NoError(t, err)
	r, err := generator.BuildIR(g, generator.InferOptions{Overrides: store})
	require.NoError(t, err)

	plan, err := partition.Build(r)
	require.NoError(t, err)

	assert.Equal(t, []string{"account", "card", partition.Shared, "widget"}, plan.Modules)

	placement := map[string]string{
		"widget":                   "widget",
		"widget/id":                "widget",
		"widget/status":            "widget",
		"deleted_widget":           "widget",
		"payment_source":           "widget",
		"account":                  "account",
		"account/id":               partition.Shared,
		"account/settings":         "account",
		"card":                     "card",
		"widget_or_deleted_widget": "widget",
	}
	for path, module := range placement {
		assert.Equal(t, module, plan.Module(path), path)
	}

	assert.Equal(t, "widget", plan.RequestModule("ListWidget"))
	assert.Equal(t, "widget", plan.RequestModule("ArchiveWidget"))
	assert.Equal(t, "account", plan.RequestModule("RetrieveAccount"))
	assert.Empty(t, plan.DemotedEdges())
	assert.Equal(t, []string{"account", "card", partition.Shared}, plan.Imports("widget"))
	assert.Empty(t, plan.Imports(partition.Shared))

	var names []string
	for _, req := range plan.Requests("widget") {
		names = append(names, req.Name)
	}
	assert.Contains(t, names, "CreateWidget")
	assert.NotContains(t, names, "RetrieveAccount")
}

func TestBuildPlacesUnreachedUnions(t *testing.T) {
	tagged := func(path string, refs ...string) *ir.Node {
		u := &ir.TaggedUnion{Property: "object"}
		for _, ref := range refs {
			u.Variants = append(u.Variants, ir.TaggedVariant{Tag: ref, Name: ref, Ref: ref})
		}
		return &ir.Node{Path: path, Name: path, Owner: path, Kind: ir.KindTaggedUnion, Tagged: u}
	}
	untagged := func(path string, refs ...string) *ir.Node {
		u := &ir.UntaggedUnion{}
		for _, ref := range refs {
			t := ir.RefTo(ref)
			u.Variants = append(u.Variants, ir.UntaggedVariant{Name: ref, Type: &t})
		}
		return &ir.Node{Path: path, Name: path, Owner: path, Kind: ir.KindUntaggedUnion, Untagged: u}
	}

	tests := []struct {
		name  string
		union *ir.Node
		want  string
	}{
		{"tagged variants in one module", tagged("alpha_or_deleted", "alpha", "deleted_alpha"), "alpha"},
		{"untagged variants in one module", untagged("alpha_or_deleted", "deleted_alpha", "alpha"), "alpha"},
		{"variants spread over modules", tagged("alpha_or_beta", "alpha", "beta"), partition.ModuleName("alpha_or_beta")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alpha := resource("alpha", field("deleted", ir.NullableOf(ir.RefTo("deleted_alpha"))))
			alpha.Struct.IDPath = ""
			beta := resource("beta")
			beta.Struct.IDPath = ""
			deleted := &ir.Node{
				Path:   "deleted_alpha",
				Name:   "DeletedAlpha",
				Kind:   ir.KindStruct,
				Struct: &ir.Struct{Fields: []*ir.Field{field("id", ir.Prim(ir.PrimString))}},
			}

			plan, err := partition.Build(build(alpha, beta, deleted, tt.union))
			require.NoError(t, err)
			assert.Equal(t, "alpha", plan.Module("deleted_alpha"))
			assert.Equal(t, tt.want, plan.Module(tt.union.Path))
		})
	}
}

func TestBuildErrorIsPlanning(t *testing.T) {
	err := error(&generrors.PlanningError{Path: "alpha", Message: "cycle"})
	assert.True(t, errors.Is(err, generrors.ErrPlanning))
	assert.Equal(t, "alpha", generrors.Path(err))
}
