// Package component connects a request handler with its callers, either in process over
// channels or across processes over HTTP. Transport failures are reported as ClientError,
// failures of the handler itself travel inside the response.
package component

import (
	"context"
)

// Handler serves one request at a time.
type Handler[Req, Resp any] interface {
	Handle(ctx context.Context, req Req) Resp
}

type HandlerFunc[Req, Resp any] func(ctx context.Context, req Req) Resp

func (f HandlerFunc[Req, Resp]) Handle(ctx context.Context, req Req) Resp {
	return f(ctx, req)
}

// Client sends requests to a handler. Every error it returns is a *ClientError.
type Client[Req, Resp any] interface {
	Send(ctx context.Context, req Req) (Resp, error)
}
