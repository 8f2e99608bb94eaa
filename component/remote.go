package component

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/NethermindEth/starknet-validator/encoder"
	"github.com/NethermindEth/starknet-validator/utils"
)

const (
	contentType    = "application/cbor"
	maxRequestSize = 10 << 20
)

type Backoff func(wait time.Duration) time.Duration

func ExponentialBackoff(wait time.Duration) time.Duration {
	return wait * 2
}

func NopBackoff(time.Duration) time.Duration {
	return 0
}

// RemoteClient sends CBOR encoded requests to a RemoteServer over HTTP. A request is retried
// only when it provably never reached the server, i.e. the connection could not be dialled.
// Any later failure may have happened after the handler ran and is returned as is.
type RemoteClient[Req, Resp any] struct {
	url        string
	client     *http.Client
	backoff    Backoff
	maxRetries int
	minWait    time.Duration
	maxWait    time.Duration
	log        utils.SimpleLogger
}

var _ Client[any, any] = (*RemoteClient[any, any])(nil)

func NewRemoteClient[Req, Resp any](url string, log utils.SimpleLogger) *RemoteClient[Req, Resp] {
	return &RemoteClient[Req, Resp]{
		url:        url,
		client:     http.DefaultClient,
		backoff:    ExponentialBackoff,
		maxRetries: 3,
		minWait:    100 * time.Millisecond,
		maxWait:    time.Second,
		log:        log,
	}
}

func (c *RemoteClient[Req, Resp]) WithHTTPClient(client *http.Client) *RemoteClient[Req, Resp] {
	c.client = client
	return c
}

func (c *RemoteClient[Req, Resp]) WithBackoff(b Backoff) *RemoteClient[Req, Resp] {
	c.backoff = b
	return c
}

func (c *RemoteClient[Req, Resp]) WithMaxRetries(num int) *RemoteClient[Req, Resp] {
	c.maxRetries = num
	return c
}

func (c *RemoteClient[Req, Resp]) WithMinWait(d time.Duration) *RemoteClient[Req, Resp] {
	c.minWait = d
	return c
}

func (c *RemoteClient[Req, Resp]) Send(ctx context.Context, req Req) (Resp, error) {
	var zero Resp
	body, err := encoder.Marshal(req)
	if err != nil {
		return zero, &ClientError{Kind: RequestSerializationFailure, Err: err}
	}

	respBody, err := c.post(ctx, body)
	if err != nil {
		return zero, err
	}

	var resp Resp
	if err = encoder.Unmarshal(respBody, &resp); err != nil {
		return zero, &ClientError{Kind: ResponseDeserializationFailure, Err: err}
	}
	return resp, nil
}

func (c *RemoteClient[Req, Resp]) post(ctx context.Context, body []byte) ([]byte, error) {
	var err error
	wait := time.Duration(0)
	for range c.maxRetries + 1 {
		select {
		case <-ctx.Done():
			return nil, &ClientError{Kind: CommunicationFailure, Err: ctx.Err()}
		case <-time.After(wait):
			var req *http.Request
			req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
			if err != nil {
				return nil, &ClientError{Kind: CommunicationFailure, Err: err}
			}
			req.Header.Set("Content-Type", contentType)

			var res *http.Response
			if res, err = c.client.Do(req); err == nil {
				return readResponse(res)
			}
			if !undelivered(err) {
				return nil, &ClientError{Kind: CommunicationFailure, Err: err}
			}

			if wait < c.minWait {
				wait = c.minWait
			} else {
				wait = min(c.backoff(wait), c.maxWait)
			}
			c.log.Debugw("Failed to reach component server, retrying...", "url", c.url,
				"retryAfter", wait.String(), "err", err)
		}
	}
	return nil, &ClientError{Kind: CommunicationFailure, Err: err}
}

// undelivered reports whether err proves the request never left the client
func undelivered(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func readResponse(res *http.Response) ([]byte, error) {
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &ClientError{Kind: CommunicationFailure, Err: err}
	}
	if res.StatusCode != http.StatusOK {
		return nil, &ClientError{
			Kind: ResponseError,
			Err:  fmt.Errorf("%s: %s", res.Status, bytes.TrimSpace(body)),
		}
	}
	return body, nil
}

// RemoteServer serves a handler to RemoteClients.
type RemoteServer[Req, Resp any] struct {
	handler Handler[Req, Resp]
	log     utils.SimpleLogger
}

var _ http.Handler = (*RemoteServer[any, any])(nil)

func NewRemoteServer[Req, Resp any](handler Handler[Req, Resp], log utils.SimpleLogger) *RemoteServer[Req, Resp] {
	return &RemoteServer[Req, Resp]{handler: handler, log: log}
}

func (s *RemoteServer[Req, Resp]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		r.Close = true
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestSize))
	if err != nil {
		status := http.StatusBadRequest
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
		}
		http.Error(w, err.Error(), status)
		return
	}

	var req Req
	if err = encoder.Unmarshal(body, &req); err != nil {
		http.Error(w, "decode request: "+err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := encoder.Marshal(s.handler.Handle(r.Context(), req))
	if err != nil {
		s.log.Errorw("Failed to encode component response", "err", err)
		http.Error(w, "encode response: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(resp); err != nil {
		s.log.Debugw("Failed to write component response", "err", err)
	}
}
