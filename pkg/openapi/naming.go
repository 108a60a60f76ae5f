package openapi

import (
	"regexp"
	"strings"

	"github.com/blimu-dev/stripegen/pkg/utils"
)

var versionSegment = regexp.MustCompile(`^v[0-9]+$`)

type declaredOperation struct {
	method   string
	class    string
	resource string
}

// declaredOperations indexes x-stripeOperations by "METHOD /path". When two
// components declare the same operation the first in path order wins.
func (g *Graph) declaredOperations() map[string]declaredOperation {
	out := make(map[string]declaredOperation)
	for _, path := range g.components {
		n := g.named[path]
		ops := n.Extensions().Objects(ExtStripeOperations)
		if len(ops) == 0 {
			continue
		}
		class := className(n)
		for _, op := range ops {
			verb := strings.ToUpper(op.String(ExtStripeOperationVerb))
			url := op.String(ExtStripeOperationPath)
			method := op.String(ExtStripeOperationName)
			if verb == "" || url == "" || method == "" {
				continue
			}
			key := verb + " " + url
			if _, dup := out[key]; dup {
				continue
			}
			out[key] = declaredOperation{method: method, class: class, resource: path}
		}
	}
	return out
}

func className(n *Named) string {
	if c := n.Extensions().Object(ExtStripeResource).String(ExtStripeResourceClass); c != "" {
		return utils.GoName(c)
	}
	return n.Name
}

func methodVerb(m string) string {
	if m == "del" {
		return "Delete"
	}
	return utils.GoName(m)
}

// RESTName derives a request name from the HTTP method and URL template:
// List/Create on collections, Retrieve/Update/Delete on instances and the
// action verb for POST /<collection>/{id}/<action>. Static segments are
// singularized and joined, so GET /v1/checkout/sessions is ListCheckoutSession.
func RESTName(method, url string) string {
	segs := strings.Split(strings.Trim(url, "/"), "/")
	if len(segs) > 0 && versionSegment.MatchString(segs[0]) {
		segs = segs[1:]
	}
	var static []string
	endsInParam := false
	for i, s := range segs {
		if isPathParam(s) {
			endsInParam = i == len(segs)-1
			continue
		}
		if s != "" {
			static = append(static, s)
		}
	}
	if len(static) == 0 {
		return ""
	}

	var verb string
	last := static[len(static)-1]
	switch {
	case endsInParam:
		verb = map[string]string{"GET": "Retrieve", "POST": "Update", "DELETE": "Delete"}[method]
	case method == "POST" && len(segs) >= 2 && isPathParam(segs[len(segs)-2]) && utils.Singular(last) == last:
		verb = utils.GoName(last)
		static = static[:len(static)-1]
	default:
		verb = map[string]string{"GET": "List", "POST": "Create", "DELETE": "Delete"}[method]
	}
	if verb == "" {
		verb = utils.GoName(strings.ToLower(method))
	}

	var b strings.Builder
	b.WriteString(verb)
	for _, s := range static {
		b.WriteString(utils.GoName(utils.Singular(s)))
	}
	return b.String()
}

func isPathParam(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

// nameOperations assigns request names. Declared x-stripeOperations win over
// the REST heuristic; names that collide with each other or with a type fall
// back to the operation id.
func (g *Graph) nameOperations() {
	declared := g.declaredOperations()
	names := make([]string, len(g.Operations))
	count := make(map[string]int, len(g.Operations))
	for i, o := range g.Operations {
		if d, ok := declared[o.Method+" "+o.Path]; ok {
			o.Resource = d.resource
			names[i] = methodVerb(d.method) + d.class
		} else {
			names[i] = RESTName(o.Method, o.Path)
		}
		if names[i] == "" {
			names[i] = utils.GoName(o.ID)
		}
		count[names[i]]++
	}

	taken := make(map[string]bool, len(g.Operations))
	for i, o := range g.Operations {
		name := names[i]
		if _, isType := g.names[name]; count[name] > 1 || isType {
			name = utils.GoName(o.ID)
		}
		if _, isType := g.names[name]; isType || taken[name] {
			name += "Request"
		}
		taken[name] = true
		o.Name = name
	}
}
