package miniser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color int

const (
	colorRed color = iota + 1
	colorBlue
)

func (c *color) UnmarshalText(b []byte) error {
	switch string(b) {
	case "red":
		*c = colorRed
	case "blue":
		*c = colorBlue
	default:
		return errors.New("unknown color")
	}
	return nil
}

type point struct {
	X     int64
	Label *string
	Tags  []string
	Color color
}

func (p *point) DecodeMin(d *Decoder) error {
	var x *int64
	var label *string
	var tags *[]string
	var c *color
	err := d.Object(func(key string) error {
		switch key {
		case "x":
			return Into(d, &x)
		case "label":
			return Into(d, &label)
		case "tags":
			return IntoSlice(d, &tags)
		case "color":
			return Into(d, &c)
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return err
	}
	if x == nil {
		return MissingField("point", "x")
	}
	if c == nil {
		return MissingField("point", "color")
	}
	*p = point{X: *x, Label: label, Color: *c}
	if tags != nil {
		p.Tags = *tags
	}
	return nil
}

func TestDecodeStruct(t *testing.T) {
	var p point
	err := Decode([]byte(`{
		"x": 3,
		"ignored": {"nested": ["a", {"b": "}"}], "s": "\"q"},
		"label": "café",
		"tags": ["a", "b"],
		"color": "blue",
		"extra": null
	}`), &p)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.X)
	require.NotNil(t, p.Label)
	assert.Equal(t, "café", *p.Label)
	assert.Equal(t, []string{"a", "b"}, p.Tags)
	assert.Equal(t, colorBlue, p.Color)
}

func TestDecodeMissingRequired(t *testing.T) {
	var p point
	err := Decode([]byte(`{"x": null, "color": "red"}`), &p)
	var missing *MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "x", missing.Field)
}

func TestDecodeEnumUsesTextUnmarshaler(t *testing.T) {
	var p point
	err := Decode([]byte(`{"x": 1, "color": "green"}`), &p)
	assert.EqualError(t, err, "unknown color")
}

func TestNestedSliceOfUnmarshalers(t *testing.T) {
	d := NewDecoder([]byte(`[{"x":1,"color":"red"},{"x":2,"color":"blue"}]`))
	var out *[]point
	require.NoError(t, IntoSlice(d, &out))
	require.NotNil(t, out)
	assert.Len(t, *out, 2)
	assert.Equal(t, int64(2), (*out)[1].X)
}

func TestIntoMap(t *testing.T) {
	d := NewDecoder([]byte(`{"a": "1", "b": "2"}`))
	var out *map[string]string
	require.NoError(t, IntoMap(d, &out))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, *out)
}

func TestSyntaxErrors(t *testing.T) {
	var p point
	var syn *SyntaxError
	assert.ErrorAs(t, Decode([]byte(`{"x" 1}`), &p), &syn)
	assert.ErrorAs(t, Decode([]byte(`{"x":1,"color":"red"} trailing`), &p), &syn)
	assert.Error(t, Decode([]byte(`{"x":1`), &p))
}

func TestRaw(t *testing.T) {
	d := NewDecoder([]byte(` {"a":[1,2]} `))
	raw, err := d.Raw()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,2]}`, string(raw))
}

func TestSkipScalars(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{`true`, false},
		{`false`, false},
		{`null`, false},
		{`0`, false},
		{`-12.5e+3`, false},
		{`1E9`, false},
		{`{"a":[1,{"b":null}],"c":"x"}`, false},
		{`tru`, true},
		{`truex`, true},
		{`nul`, true},
		{`1e`, true},
		{`1.`, true},
		{`-`, true},
		{`01`, true},
		{`+1`, true},
		{`1x`, true},
		{`{"a":tru}`, true},
		{`[1,1e]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var p point
			err := Decode([]byte(`{"x":1,"color":"red","extra":`+tt.in+`}`), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), p.X)
		})
	}
}
