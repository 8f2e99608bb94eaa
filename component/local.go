package component

import (
	"context"
	"sync"
)

type request[Req, Resp any] struct {
	req Req
	// buffered so that the server never blocks on a caller that went away
	respCh chan Resp
}

// LocalClient sends requests to a LocalServer in the same process.
type LocalClient[Req, Resp any] struct {
	requests chan<- request[Req, Resp]
	done     <-chan struct{}
}

// LocalServer feeds the requests of its clients to a handler one at a time.
type LocalServer[Req, Resp any] struct {
	requests chan request[Req, Resp]
	done     chan struct{}
	stopOnce sync.Once
	handler  Handler[Req, Resp]
}

var _ Client[any, any] = (*LocalClient[any, any])(nil)

// NewLocalChannel connects a client to a server serving handler. Up to buffer requests may
// be queued before Send blocks.
func NewLocalChannel[Req, Resp any](handler Handler[Req, Resp], buffer int) (*LocalClient[Req, Resp],
	*LocalServer[Req, Resp],
) {
	server := &LocalServer[Req, Resp]{
		requests: make(chan request[Req, Resp], buffer),
		done:     make(chan struct{}),
		handler:  handler,
	}
	return &LocalClient[Req, Resp]{requests: server.requests, done: server.done}, server
}

// Send queues req and waits for its response. Every request gets exactly one response.
func (c *LocalClient[Req, Resp]) Send(ctx context.Context, req Req) (Resp, error) {
	var zero Resp
	respCh := make(chan Resp, 1)

	select {
	case c.requests <- request[Req, Resp]{req: req, respCh: respCh}:
	case <-c.done:
		return zero, &ClientError{Kind: CommunicationFailure, Err: ErrServerStopped}
	case <-ctx.Done():
		return zero, &ClientError{Kind: CommunicationFailure, Err: ctx.Err()}
	}

	select {
	case resp := <-respCh:
		return resp, nil
	case <-c.done:
		// the server may have answered right before stopping
		select {
		case resp := <-respCh:
			return resp, nil
		default:
			return zero, &ClientError{Kind: CommunicationFailure, Err: ErrServerStopped}
		}
	case <-ctx.Done():
		return zero, &ClientError{Kind: CommunicationFailure, Err: ctx.Err()}
	}
}

// Run serves requests until ctx is cancelled. A server runs at most once.
func (s *LocalServer[Req, Resp]) Run(ctx context.Context) error {
	defer s.stopOnce.Do(func() { close(s.done) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-s.requests:
			r.respCh <- s.handler.Handle(ctx, r.req)
		}
	}
}
