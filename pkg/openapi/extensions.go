package openapi

import (
	"sort"

	"github.com/spf13/cast"
)

// Provider extensions the generator interprets. Any other x-* key is kept
// verbatim in Extensions.
const (
	ExtExpandableFields     = "x-expandableFields"
	ExtExpansionResources   = "x-expansionResources"
	ExtResourceID           = "x-resourceId"
	ExtStripeResource       = "x-stripeResource"
	ExtStripeOperations     = "x-stripeOperations"
	ExtStripeBypass         = "x-stripeBypassValidation"
	ExtStripeParam          = "x-stripeParam"
	ExtStripeMostCommon     = "x-stripeMostCommon"
	ExtStripeResourceInPkg  = "in_package"
	ExtStripeResourceInCls  = "inClass"
	ExtStripeResourceClass  = "class_name"
	ExtStripeOperationName  = "method_name"
	ExtStripeOperationVerb  = "operation"
	ExtStripeOperationPath  = "path"
	ExtStripeOperationOnSvc = "method_on"
)

// Extensions wraps the raw x-* values of a schema or operation.
type Extensions map[string]any

// Has reports whether key is present.
func (e Extensions) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// String returns key as a string.
func (e Extensions) String(key string) string {
	return cast.ToString(e[key])
}

// Bool returns key as a bool.
func (e Extensions) Bool(key string) bool {
	return cast.ToBool(e[key])
}

// StringSlice returns key as a list of strings.
func (e Extensions) StringSlice(key string) []string {
	return cast.ToStringSlice(e[key])
}

// Object returns key as a nested extension object.
func (e Extensions) Object(key string) Extensions {
	v, ok := e[key]
	if !ok || v == nil {
		return nil
	}
	return Extensions(cast.ToStringMap(v))
}

// Objects returns key as a list of extension objects.
func (e Extensions) Objects(key string) []Extensions {
	raw, ok := e[key].([]any)
	if !ok {
		return nil
	}
	out := make([]Extensions, 0, len(raw))
	for _, r := range raw {
		out = append(out, Extensions(cast.ToStringMap(r)))
	}
	return out
}

// Keys returns the extension keys in sorted order.
func (e Extensions) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResourceFamily returns the package a resource declares through
// x-stripeResource, preferring in_package over inClass.
func (e Extensions) ResourceFamily() string {
	res := e.Object(ExtStripeResource)
	if res == nil {
		return ""
	}
	if pkg := res.String(ExtStripeResourceInPkg); pkg != "" {
		return pkg
	}
	return res.String(ExtStripeResourceInCls)
}

// ExpansionTargets returns the component paths listed in x-expansionResources.
func (e Extensions) ExpansionTargets() []string {
	res := e.Object(ExtExpansionResources)
	if res == nil {
		return nil
	}
	var out []string
	for _, v := range res.Objects("oneOf") {
		if ref := v.String("$ref"); ref != "" {
			out = append(out, RefPath(ref))
		}
	}
	return out
}
