// Package runtime declares the surface that packages produced by stripe-gen
// compile against. It performs no I/O itself: transport, authentication and
// form encoding belong to the Client implementation supplied by the caller.
package runtime

import (
	"context"
)

// Method is the HTTP verb a generated request is sent with.
type Method int

const (
	MethodGet Method = iota + 1
	MethodPost
	MethodDelete
)

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodPost:
		return "POST"
	case MethodDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Client is the HTTP collaborator generated request builders delegate to.
//
// GetQuery encodes params as a query string. SendForm encodes form as an
// application/x-www-form-urlencoded body using the `form` struct tags. Both
// decode the JSON response into out.
type Client interface {
	GetQuery(ctx context.Context, path string, params any, out any) error
	SendForm(ctx context.Context, method Method, path string, form any, out any) error
}
