package node

import (
	"context"
	"math"

	"github.com/NethermindEth/starknet-validator/component"
	"github.com/NethermindEth/starknet-validator/utils"
	"github.com/NethermindEth/starknet-validator/validator"
)

var _ component.Handler[validator.Request, validator.Response] = (*ThrottledHandler)(nil)

// ThrottledHandler lets one request at a time reach the validator server and turns away
// requests once too many are waiting.
type ThrottledHandler struct {
	*utils.Throttler[component.Handler[validator.Request, validator.Response]]
}

func newThrottledHandler(handler component.Handler[validator.Request, validator.Response],
	maxQueueLen int32,
) *ThrottledHandler {
	if maxQueueLen <= 0 {
		maxQueueLen = math.MaxInt32
	}
	return &ThrottledHandler{
		Throttler: utils.NewThrottler(1, &handler).WithMaxQueueLen(maxQueueLen),
	}
}

func (t *ThrottledHandler) Handle(ctx context.Context, req validator.Request) validator.Response {
	var resp validator.Response
	err := t.Do(ctx, func(handler *component.Handler[validator.Request, validator.Response]) error {
		resp = (*handler).Handle(ctx, req)
		return nil
	})
	if err != nil {
		return validator.Response{
			Kind: req.Kind,
			Err:  &validator.Error{Kind: validator.ErrKindInternal, Message: err.Error()},
		}
	}
	return resp
}
