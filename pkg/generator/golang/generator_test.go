package golang_test

import (
	"context"
	"go/parser"
	"go/token"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blimu-dev/stripegen/pkg/generator"
	"github.com/blimu-dev/stripegen/pkg/generator/golang"
	"github.com/blimu-dev/stripegen/pkg/generrors"
	"github.com/blimu-dev/stripegen/pkg/ir"
	"github.com/blimu-dev/stripegen/pkg/openapi"
	"github.com/blimu-dev/stripegen/pkg/overrides"
	"github.com/blimu-dev/stripegen/pkg/partition"
	"github.com/blimu-dev/stripegen/pkg/writer"
)

const (
	testModule  = "example.com/stripe"
	testRuntime = "github.com/blimu-dev/stripegen/runtime"
)

func widgets(t *testing.T) (*ir.IR, *partition.Plan) {
	t.Helper()
	g, err := openapi.LoadDocument(context.Background(), filepath.Join("..", "..", "..", "testdata", "widgets.json"), openapi.LoadOptions{})
	require.NoError(t, err)
	store, err := overrides.Load(filepath.Join("..", "..", "..", "testdata", "id_prefixes.json"))
	require.NoError(t, err)
	r, err := generator.BuildIR(g, generator.InferOptions{Overrides: store})
	require.NoError(t, err)
	plan, err := partition.Build(r)
	require.NoError(t, err)
	return r, plan
}

func emit(t *testing.T, r *ir.IR, plan *partition.Plan, opts golang.Options) map[string]string {
	t.Helper()
	if opts.Module == "" {
		opts.Module = testModule
	}
	if opts.Runtime == "" {
		opts.Runtime = testRuntime
	}
	files, err := golang.NewGoGenerator().Emit(context.Background(), r, plan, opts)
	require.NoError(t, err)
	out := make(map[string]string, len(files))
	for _, f := range files {
		out[f.Path] = string(f.Data)
	}
	return out
}

func paths(files map[string]string) []string {
	var out []string
	for p := range files {
		out = append(out, p)
	}
	writerSort(out)
	return out
}

func writerSort(p []string) {
	files := make([]writer.File, len(p))
	for i := range p {
		files[i].Path = p[i]
	}
	writer.SortFiles(files)
	for i := range files {
		p[i] = files[i].Path
	}
}

var blanks = regexp.MustCompile(`[ \t]+`)

// squash collapses the column alignment gofmt adds to struct fields and
// const blocks.
func squash(s string) string { return blanks.ReplaceAllString(s, " ") }

func TestEmitFileSet(t *testing.T) {
	r, plan := widgets(t)
	files := emit(t, r, plan, golang.Options{Jobs: 4})

	assert.Equal(t, []string{
		"README.md",
		"account/enums.go",
		"account/requests.go",
		"account/types.go",
		"card/ids.go",
		"card/types.go",
		"doc.go",
		"shared/ids.go",
		"widget/enums.go",
		"widget/ids.go",
		"widget/requests.go",
		"widget/types.go",
	}, paths(files))

	for p, src := range files {
		if strings.HasSuffix(p, ".go") {
			assert.True(t, writer.IsGenerated([]byte(src)), p)
		}
	}
}

func TestEmitParses(t *testing.T) {
	r, plan := widgets(t)
	files := emit(t, r, plan, golang.Options{MinSer: true, GoMod: true})

	fset := token.NewFileSet()
	for p, src := range files {
		if !strings.HasSuffix(p, ".go") {
			continue
		}
		f, err := parser.ParseFile(fset, p, src, parser.ParseComments)
		require.NoError(t, err, p)
		if p != "doc.go" {
			assert.Equal(t, filepath.Dir(p), f.Name.Name, p)
		}
	}
	assert.Equal(t, "stripe", mustPackage(t, files["doc.go"]))
}

func mustPackage(t *testing.T, src string) string {
	t.Helper()
	f, err := parser.ParseFile(token.NewFileSet(), "doc.go", src, parser.PackageClauseOnly)
	require.NoError(t, err)
	return f.Name.Name
}

func TestEmitDeterministic(t *testing.T) {
	r, plan := widgets(t)
	serial := emit(t, r, plan, golang.Options{Jobs: 1, MinSer: true})
	parallel := emit(t, r, plan, golang.Options{Jobs: 8, MinSer: true})
	if diff := cmp.Diff(serial, parallel); diff != "" {
		t.Errorf("output depends on Jobs (-serial +parallel):\n%s", diff)
	}
}

func TestEmitEnums(t *testing.T) {
	r, plan := widgets(t)
	files := emit(t, r, plan, golang.Options{})

	closed := squash(files["widget/enums.go"])
	assert.Contains(t, closed, "type WidgetStatus int")
	assert.Contains(t, closed, "WidgetStatusActive WidgetStatus = iota + 1")
	assert.Contains(t, closed, `case "archived":`)
	assert.Contains(t, closed, `fmt.Errorf("unknown WidgetStatus value %q", s)`)

	open := squash(files["account/enums.go"])
	for _, want := range []string{
		"type AccountCountry string",
		`AccountCountryUs AccountCountry = "US"`,
		"func (a AccountCountry) IsUnknown() bool",
		"return AccountCountry(s), nil",
		"return []byte(a), nil",
		"*a = AccountCountry(string(text))",
	} {
		assert.Contains(t, open, want)
	}
	assert.NotContains(t, open, "unknown AccountCountry value")
	assert.NotContains(t, open, "iota")
}

func TestEmitIDs(t *testing.T) {
	r, plan := widgets(t)
	files := emit(t, r, plan, golang.Options{})

	shared := squash(files["shared/ids.go"])
	assert.Contains(t, shared, "package shared")
	assert.Contains(t, shared, "type AccountID string")
	assert.Contains(t, shared, `var accountIDPrefixes = []string{"acct", "acc"}`)
	assert.Contains(t, shared, `runtime.CheckID("AccountID", s, accountIDPrefixes...)`)

	assert.Contains(t, squash(files["widget/ids.go"]), `var widgetIDPrefixes = []string{"wid"}`)
	assert.Contains(t, squash(files["card/ids.go"]), "var cardIDPrefixes []string")
}

func TestEmitTypes(t *testing.T) {
	r, plan := widgets(t)
	files := emit(t, r, plan, golang.Options{})

	types := squash(files["widget/types.go"])
	assert.Contains(t, types, "// A widget is a thing you can sell.")
	assert.Contains(t, types, "type Widget struct {")
	assert.Contains(t, types, "Owner runtime.Expandable[shared.AccountID, account.Account] `json:\"owner\"`")
	assert.Contains(t, types, "Amount *int64 `json:\"amount,omitempty\"`")
	assert.Contains(t, types, "Tags []string `json:\"tags\"`")
	assert.Contains(t, types, "Source *PaymentSource `json:\"source,omitempty\"`")
	assert.Contains(t, types, `"example.com/stripe/account"`)
	assert.NotContains(t, types, "func NewWidget(", "response-only structs get no constructor")

	assert.Contains(t, types, "type PaymentSource struct {")
	assert.Contains(t, types, "Account *account.Account")
	assert.Contains(t, types, "Card *card.Card")
	assert.Contains(t, types, `runtime.Discriminator(data, "object")`)
	assert.Contains(t, types, `return runtime.WithTag(p.Account, "object", "account")`)
	assert.Contains(t, types, `&runtime.NoVariantError{Type: "PaymentSource", Tag: tag}`)

	assert.Contains(t, types, "type WidgetOrDeletedWidget struct {")
	assert.Contains(t, types, "DeletedWidget *DeletedWidget")
	assert.NotContains(t, types, "widget.DeletedWidget")
}

func TestEmitRequests(t *testing.T) {
	r, plan := widgets(t)
	files := emit(t, r, plan, golang.Options{})

	reqs := squash(files["widget/requests.go"])
	assert.Contains(t, reqs, "// CreateWidget sends POST /v1/widgets.")
	assert.Contains(t, reqs, "// Creates a widget.")
	assert.Contains(t, reqs, "func NewCreateWidget(name string) *CreateWidget {")
	assert.Contains(t, reqs, "return &CreateWidget{Name: name}")
	assert.Contains(t, reqs, "Name string `form:\"name\"`")
	assert.Contains(t, reqs, "Size runtime.Nullable[int64] `form:\"size,omitempty\"`")
	assert.Contains(t, reqs, "Limit *int64 `form:\"limit,omitempty\"`")
	assert.Contains(t, reqs, "func (r *CreateWidget) Send(ctx context.Context, client runtime.Client) (*Widget, error) {")
	assert.Contains(t, reqs, `client.SendForm(ctx, runtime.MethodPost, "/v1/widgets", r, &out)`)

	assert.Contains(t, reqs, "func (r *RetrieveWidget) Send(ctx context.Context, client runtime.Client, widget WidgetID) (*Widget, error) {")
	assert.Contains(t, reqs, "url.PathEscape(string(widget))")
	assert.Contains(t, reqs, `"/archive"`)
	assert.Contains(t, reqs, "runtime.MethodDelete")
	assert.Contains(t, reqs, "(*DeletedWidget, error)")

	assert.Contains(t, reqs, "func (r *ListWidget) Paginate(client runtime.Client) *runtime.Paginator[Widget] {")
	assert.Contains(t, reqs, `return runtime.NewPaginator[Widget](client, "/v1/widgets", r)`)
	assert.Contains(t, reqs, "(*runtime.List[Widget], error)")
	assert.Contains(t, reqs, "client.GetQuery(ctx, ")

	account := squash(files["account/requests.go"])
	assert.Contains(t, account, "account shared.AccountID")
	assert.NotContains(t, account, "Paginate")
}

func TestEmitMinSer(t *testing.T) {
	r, plan := widgets(t)
	files := emit(t, r, plan, golang.Options{MinSer: true})

	src, ok := files["widget/miniser.go"]
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(src, "// "+writer.GeneratedHeader+"\n"))
	assert.Contains(t, src, "//go:build "+golang.MinSerTag+"\n\npackage widget")

	min := squash(src)
	assert.Contains(t, min, "func (x *Widget) DecodeMin(d *miniser.Decoder) error {")
	assert.Contains(t, min, `miniser.MissingField("Widget", "id")`)
	assert.Contains(t, min, "return d.Skip()")
	assert.Contains(t, min, "func (x *PaymentSource) DecodeMin(d *miniser.Decoder) error {")
	assert.Contains(t, min, "miniser.Decode(raw, variant)")

	_, ok = files["shared/miniser.go"]
	assert.False(t, ok, "modules without response structs get no min-ser file")
}

func TestEmitDocs(t *testing.T) {
	r, plan := widgets(t)
	files := emit(t, r, plan, golang.Options{MinSer: true, GoMod: true})

	assert.Contains(t, files["go.mod"], "module example.com/stripe")
	assert.Contains(t, files["doc.go"], "package stripe")
	assert.Contains(t, files["doc.go"], "-tags stripe_miniser")

	readme := files["README.md"]
	assert.Contains(t, readme, "# example.com/stripe")
	assert.Contains(t, readme, "| `widget` |")
	assert.Contains(t, readme, "account, card, shared")
	assert.Contains(t, readme, `import "example.com/stripe/widget"`)
	assert.Contains(t, readme, "widget.NewArchiveWidget()")
	assert.Contains(t, readme, "req.Send(ctx, client, widget)")
	assert.NotContains(t, readme, "ID-only references")
}

func TestEmitDemotedExpandable(t *testing.T) {
	r := ir.New()
	for _, name := range []string{"alpha", "beta"} {
		other := "beta"
		if name == "beta" {
			other = "alpha"
		}
		r.Nodes[name] = &ir.Node{
			Path:     name,
			Name:     strings.ToUpper(name[:1]) + name[1:],
			Kind:     ir.KindStruct,
			Resource: true,
			Usage:    ir.UsageResponse,
			Struct: &ir.Struct{
				IDPath: name + "/id",
				Fields: []*ir.Field{{
					Wire:     other,
					Name:     strings.ToUpper(other[:1]) + other[1:],
					Type:     ir.ExpandableOf(other+"/id", other),
					Required: true,
				}},
			},
		}
		r.Nodes[name+"/id"] = &ir.Node{
			Path: name + "/id",
			Name: strings.ToUpper(name[:1]) + name[1:] + "ID",
			Kind: ir.KindID,
			ID:   &ir.IDType{Resource: name},
		}
	}
	plan, err := partition.Build(r)
	require.NoError(t, err)

	files := emit(t, r, plan, golang.Options{})
	alpha := squash(files["alpha/types.go"])
	assert.Contains(t, alpha, "Beta runtime.ExpandableID[shared.BetaID]")
	assert.NotContains(t, alpha, `"example.com/stripe/beta"`)
	assert.Contains(t, files["README.md"], "ID-only references")
}

func TestEmitUnplannedReference(t *testing.T) {
	r, plan := widgets(t)
	broken := ir.New()
	for p, n := range r.Nodes {
		broken.Nodes[p] = n
	}
	broken.Requests = r.Requests
	delete(broken.Nodes, "widget/status")

	_, err := golang.NewGoGenerator().Emit(context.Background(), broken, plan, golang.Options{Module: testModule, Runtime: testRuntime})
	require.Error(t, err)
	assert.ErrorIs(t, err, generrors.ErrEmission)
	assert.Contains(t, err.Error(), "widget/status")
}
