package ir

// ParamIn is where a request parameter travels.
type ParamIn string

const (
	InPath  ParamIn = "path"
	InQuery ParamIn = "query"
	InBody  ParamIn = "body"
)

// Request describes one endpoint.
type Request struct {
	// Name is the Go type name of the builder, e.g. ListWidget.
	Name        string
	OperationID string
	Method      string
	// Path is the URL template, e.g. /v1/widgets/{widget}.
	Path string
	// Resource is the component path the request operates on, if known.
	Resource string
	// Family is the URL-derived family used when Resource is empty.
	Family string
	Doc    string

	PathParams []*Param
	// Params are the query parameters of a GET or the form body fields
	// otherwise.
	Params []*Param

	Response Type
	// Paginated requests are cursor-paginated list endpoints.
	Paginated bool
	// UnionResponse is set when the response is a union node.
	UnionResponse bool
}

// Param is one request parameter.
type Param struct {
	Wire     string
	Name     string
	In       ParamIn
	Type     Type
	Required bool
	Null     bool
	Doc      string
}

// Required returns the required non-path params in order.
func (r *Request) Required() []*Param {
	var out []*Param
	for _, p := range r.Params {
		if p.Required {
			out = append(out, p)
		}
	}
	return out
}

// Types returns every type the request mentions.
func (r *Request) Types() []Type {
	out := []Type{r.Response}
	for _, p := range r.PathParams {
		out = append(out, p.Type)
	}
	for _, p := range r.Params {
		out = append(out, p.Type)
	}
	return out
}
