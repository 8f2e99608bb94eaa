// Package vm reaches the program execution engine of the sequencer through the component
// transport.
package vm

import (
	"context"
	"errors"
	"fmt"

	"github.com/NethermindEth/starknet-validator/blockifier"
	"github.com/NethermindEth/starknet-validator/component"
	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/state"
	_ "github.com/NethermindEth/starknet-validator/encoder/registry"
	"github.com/NethermindEth/starknet-validator/utils"
)

var errEmptyResponse = errors.New("engine response carries no result")

type RequestKind uint8

const (
	Execute RequestKind = iota
	Validate
)

func (k RequestKind) String() string {
	switch k {
	case Execute:
		return "Execute"
	case Validate:
		return "Validate"
	default:
		return fmt.Sprintf("RequestKind(%d)", uint8(k))
	}
}

// Request asks the engine to run a transaction on top of the state of BlockInfo.Number.
// The engine reads that state itself, PendingDiff holds the writes made since.
type Request struct {
	Kind               RequestKind
	Transaction        core.TransactionEnvelope
	BlockInfo          blockifier.BlockInfo
	ChainInfo          blockifier.ChainInfo
	VersionedConstants blockifier.VersionedConstants
	PendingDiff        *state.StateDiff
	Flags              blockifier.ExecutionFlags
	RemainingGas       uint64
}

type Response struct {
	Execution  *blockifier.ExecutionInfo `cbor:",omitempty"`
	Validation *blockifier.ValidateInfo  `cbor:",omitempty"`
	// Err reports an engine failure, as opposed to a transaction that failed
	Err string `cbor:",omitempty"`
}

// EngineError is a failure the engine reported for a request it received.
type EngineError struct {
	Kind    RequestKind
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine failed to %s: %s", e.Kind, e.Message)
}

// RemoteEngine runs transactions on an execution engine served over the component transport.
type RemoteEngine struct {
	client component.Client[Request, Response]
	log    utils.SimpleLogger
}

var _ blockifier.Engine = (*RemoteEngine)(nil)

func NewRemoteEngine(client component.Client[Request, Response], log utils.SimpleLogger) *RemoteEngine {
	return &RemoteEngine{client: client, log: log}
}

func (e *RemoteEngine) Execute(ctx context.Context, tx core.Transaction, view state.View,
	blockCtx *blockifier.BlockContext, flags blockifier.ExecutionFlags,
) (*blockifier.ExecutionInfo, error) {
	req := newRequest(Execute, tx, view, blockCtx)
	req.Flags = flags

	resp, err := e.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Execution == nil {
		return nil, &EngineError{Kind: Execute, Message: errEmptyResponse.Error()}
	}
	return resp.Execution, nil
}

func (e *RemoteEngine) Validate(ctx context.Context, tx core.AccountTransaction, view state.View,
	blockCtx *blockifier.BlockContext, remainingGas uint64,
) (*blockifier.ValidateInfo, error) {
	req := newRequest(Validate, tx, view, blockCtx)
	req.RemainingGas = remainingGas

	resp, err := e.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Validation == nil {
		return nil, &EngineError{Kind: Validate, Message: errEmptyResponse.Error()}
	}
	return resp.Validation, nil
}

func newRequest(kind RequestKind, tx core.Transaction, view state.View, blockCtx *blockifier.BlockContext) Request {
	return Request{
		Kind:               kind,
		Transaction:        core.NewTransactionEnvelope(tx),
		BlockInfo:          blockCtx.BlockInfo,
		ChainInfo:          blockCtx.ChainInfo,
		VersionedConstants: blockCtx.VersionedConstants,
		PendingDiff:        view.PendingDiff(),
	}
}

func (e *RemoteEngine) send(ctx context.Context, req Request) (Response, error) {
	resp, err := e.client.Send(ctx, req)
	if err != nil {
		return resp, fmt.Errorf("send %s request: %w", req.Kind, err)
	}
	if resp.Err != "" {
		e.log.Debugw("Engine failed", "request", req.Kind, "err", resp.Err)
		return resp, &EngineError{Kind: req.Kind, Message: resp.Err}
	}
	return resp, nil
}
