package behaviour

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/stripe/account"
	"example.com/stripe/shared"
	"example.com/stripe/widget"
	"github.com/blimu-dev/stripegen/runtime"
)

const widgetJSON = `{
	"id": "wid_1",
	"object": "widget",
	"status": "active",
	"created": 1700000000,
	"owner": {"id": "acct_1", "object": "account", "country": "FR", "settings": {"timezone": "UTC"}},
	"metadata": {"team": "core"},
	"tags": ["a", "b"],
	"amount": 500,
	"currency": "usd",
	"source": {"id": "card_1", "object": "card", "last4": "4242"},
	"dimensions": {"width": 1.5, "height": 2}
}`

func TestClosedEnum(t *testing.T) {
	for _, v := range widget.ValuesWidgetStatus() {
		t.Run(v.AsStr(), func(t *testing.T) {
			text, err := v.MarshalText()
			require.NoError(t, err)
			var back widget.WidgetStatus
			require.NoError(t, back.UnmarshalText(text))
			assert.Equal(t, v, back)
		})
	}

	tests := []struct {
		name string
		in   string
	}{
		{"unknown value", `"deleted"`},
		{"empty", `""`},
		{"wrong case", `"Active"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s widget.WidgetStatus
			assert.Error(t, json.Unmarshal([]byte(tt.in), &s))
		})
	}

	var zero widget.WidgetStatus
	_, err := zero.MarshalText()
	assert.Error(t, err)
}

func TestOpenEnum(t *testing.T) {
	tests := []struct {
		wire    string
		unknown bool
	}{
		{"US", false},
		{"GB", false},
		{"FR", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			var c account.AccountCountry
			require.NoError(t, json.Unmarshal([]byte(`"`+tt.wire+`"`), &c))
			assert.Equal(t, tt.unknown, c.IsUnknown())
			assert.Equal(t, tt.wire, c.AsStr())

			data, err := json.Marshal(c)
			require.NoError(t, err)
			assert.Equal(t, `"`+tt.wire+`"`, string(data))

			parsed, err := account.ParseAccountCountry(tt.wire)
			require.NoError(t, err)
			assert.Equal(t, c, parsed)
		})
	}
	assert.Equal(t, []account.AccountCountry{account.AccountCountryUs, account.AccountCountryGb}, account.ValuesAccountCountry())
}

func TestIDs(t *testing.T) {
	tests := []struct {
		name  string
		parse func(string) error
		in    string
		ok    bool
	}{
		{"widget", parseWidget, "wid_123", true},
		{"widget without separator", parseWidget, "wid123", false},
		{"widget with account prefix", parseWidget, "acct_1", false},
		{"widget empty", parseWidget, "", false},
		{"account", parseAccount, "acct_1", true},
		{"account legacy prefix", parseAccount, "acc_1", true},
		{"account with widget prefix", parseAccount, "wid_1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.parse(tt.in)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var idErr *runtime.IDError
			assert.ErrorAs(t, err, &idErr)
		})
	}

	var w widget.Widget
	assert.Error(t, json.Unmarshal([]byte(`{"id":"acct_1"}`), &w))
}

func parseWidget(s string) error {
	_, err := widget.ParseWidgetID(s)
	return err
}

func parseAccount(s string) error {
	_, err := shared.ParseAccountID(s)
	return err
}

func TestWidgetRoundTrip(t *testing.T) {
	var w widget.Widget
	require.NoError(t, json.Unmarshal([]byte(widgetJSON), &w))

	assert.Equal(t, widget.WidgetID("wid_1"), w.ID)
	assert.Equal(t, widget.WidgetStatusActive, w.Status)
	assert.Equal(t, runtime.Timestamp(1700000000), w.Created)
	require.True(t, w.Owner.IsExpanded())
	assert.Equal(t, shared.AccountID("acct_1"), w.Owner.ID)
	require.NotNil(t, w.Owner.Object.Country)
	assert.True(t, w.Owner.Object.Country.IsUnknown())
	require.NotNil(t, w.Source)
	require.NotNil(t, w.Source.Card)
	assert.Nil(t, w.Source.Account)

	data, err := json.Marshal(w)
	require.NoError(t, err)
	var back map[string]any
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "active", back["status"])
	owner := back["owner"].(map[string]any)
	assert.Equal(t, "acct_1", owner["id"])
	assert.Equal(t, "FR", owner["country"])
	source := back["source"].(map[string]any)
	assert.Equal(t, "card", source["object"])
}

func TestTaggedUnions(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		variant string
	}{
		{"account", `{"id":"acct_1","object":"account","settings":{"timezone":"UTC"}}`, "account"},
		{"card", `{"id":"card_1","object":"card","last4":"4242"}`, "card"},
		{"unknown tag", `{"id":"ba_1","object":"bank_account"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var src widget.PaymentSource
			err := json.Unmarshal([]byte(tt.in), &src)
			if tt.variant == "" {
				var nv *runtime.NoVariantError
				require.ErrorAs(t, err, &nv)
				assert.Equal(t, "bank_account", nv.Tag)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.variant == "account", src.Account != nil)
			assert.Equal(t, tt.variant == "card", src.Card != nil)

			data, err := json.Marshal(src)
			require.NoError(t, err)
			assert.JSONEq(t, tt.in, string(data))
		})
	}

	var either widget.WidgetOrDeletedWidget
	require.NoError(t, json.Unmarshal([]byte(widgetJSON), &either))
	require.NotNil(t, either.Widget)
	assert.Nil(t, either.DeletedWidget)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"wid_1","object":"deleted_widget","deleted":true}`), &either))
	require.NotNil(t, either.DeletedWidget)
	assert.Nil(t, either.Widget)
	assert.True(t, either.DeletedWidget.Deleted)
}

func TestUntaggedUnion(t *testing.T) {
	tests := []struct {
		in  string
		now bool
		ts  runtime.Timestamp
	}{
		{`1700000000`, false, 1700000000},
		{`"now"`, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var at widget.CreateWidgetExpiresAt
			require.NoError(t, json.Unmarshal([]byte(tt.in), &at))
			assert.Equal(t, tt.now, at.Now)
			if !tt.now {
				require.NotNil(t, at.Timestamp)
				assert.Equal(t, tt.ts, *at.Timestamp)
			}
			data, err := json.Marshal(at)
			require.NoError(t, err)
			assert.Equal(t, tt.in, string(data))
		})
	}

	var at widget.CreateWidgetExpiresAt
	var nv *runtime.NoVariantError
	assert.ErrorAs(t, json.Unmarshal([]byte(`"later"`), &at), &nv)
}

type fakeClient struct {
	pages []string
	paths []string
	calls []runtime.PageParams
	form  any
}

func (c *fakeClient) GetQuery(_ context.Context, path string, params any, out any) error {
	c.paths = append(c.paths, path)
	if pp, ok := params.(runtime.PageParams); ok {
		c.calls = append(c.calls, pp)
	}
	if len(c.pages) == 0 {
		return errors.New("no page left")
	}
	page := c.pages[0]
	c.pages = c.pages[1:]
	return json.Unmarshal([]byte(page), out)
}

func (c *fakeClient) SendForm(_ context.Context, _ runtime.Method, path string, form any, out any) error {
	c.paths = append(c.paths, path)
	c.form = form
	return json.Unmarshal([]byte(widgetJSON), out)
}

func TestPaginateKeepsUnknownValues(t *testing.T) {
	client := &fakeClient{pages: []string{
		`{"object":"list","url":"/v1/widgets","has_more":true,"data":[` + widgetJSON + `,{"id":"wid_2","object":"widget","status":"archived","created":1,"owner":"acct_2","tags":[],"amount":null}]}`,
		`{"object":"list","url":"/v1/widgets","has_more":false,"data":[{"id":"wid_3","object":"widget","status":"active","created":2,"owner":"acc_3","tags":[],"amount":null}]}`,
	}}

	all, err := widget.NewListWidget().Paginate(client).All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Len(t, client.calls, 2)
	assert.Equal(t, "", client.calls[0].StartingAfter)
	assert.Equal(t, "wid_2", client.calls[1].StartingAfter)
	assert.Equal(t, []string{"/v1/widgets", "/v1/widgets"}, client.paths)

	for _, w := range all {
		_, err := json.Marshal(w)
		assert.NoError(t, err, w.ID)
	}
	assert.Equal(t, "FR", all[0].Owner.Object.Country.AsStr())
	assert.False(t, all[1].Owner.IsExpanded())
}

func TestSendBuildsPath(t *testing.T) {
	client := &fakeClient{}
	req := widget.NewCreateWidget("gear")
	req.ExpiresAt = &widget.CreateWidgetExpiresAt{Now: true}

	got, err := req.Send(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, widget.WidgetID("wid_1"), got.ID)
	assert.Same(t, req, client.form)

	client.pages = []string{widgetJSON}
	_, err = widget.NewRetrieveWidget().Send(context.Background(), client, "wid_a/b")
	require.NoError(t, err)
	assert.Equal(t, []string{"/v1/widgets", "/v1/widgets/wid_a%2Fb"}, client.paths)
}
