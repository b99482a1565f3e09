package mediator

import (
	"context"
	"reflect"
	"strings"
)

// Request is an engine command or query. Commands change the assignment
// registry; queries only read it.
type Request interface{}

// Response is whatever the handler of a request returns
type Response interface{}

// RequestHandler handles one request type
type RequestHandler interface {
	Handle(ctx context.Context, request Request) (Response, error)
}

// HandlerFunc adapts a function to the dispatch chain
type HandlerFunc func(ctx context.Context, request Request) (Response, error)

// Middleware wraps dispatch, e.g. to time requests
type Middleware func(ctx context.Context, request Request, next HandlerFunc) (Response, error)

// Request kinds, derived from the type name suffix
const (
	KindCommand = "command"
	KindQuery   = "query"
)

// RequestName is the bare type name of request, "*queries.SelectBestRemoteQuery"
// becomes "SelectBestRemoteQuery". A nil request is "Unknown".
func RequestName(request Request) string {
	if request == nil {
		return "Unknown"
	}
	name := strings.TrimPrefix(reflect.TypeOf(request).String(), "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// RequestKind reports whether request is a query or a command
func RequestKind(request Request) string {
	if strings.HasSuffix(RequestName(request), "Query") {
		return KindQuery
	}
	return KindCommand
}
