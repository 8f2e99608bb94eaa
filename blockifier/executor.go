package blockifier

import (
	"context"
	"fmt"

	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/state"
	"github.com/NethermindEth/starknet-validator/utils"
)

// TransactionExecutor is the execution context of one block height: the cached state over
// the height's reader, the block context and the resources used so far.
//
// TransactionExecutor is not safe for concurrent use.
type TransactionExecutor struct {
	state    *state.CachedState
	blockCtx *BlockContext
	engine   Engine
	usage    ResourceUsage
	log      utils.SimpleLogger
}

func NewTransactionExecutor(reader state.Reader, blockCtx *BlockContext, engine Engine,
	log utils.SimpleLogger,
) *TransactionExecutor {
	return &TransactionExecutor{
		state:    state.NewCachedState(reader),
		blockCtx: blockCtx,
		engine:   engine,
		log:      log,
	}
}

func (e *TransactionExecutor) State() *state.CachedState {
	return e.state
}

func (e *TransactionExecutor) BlockContext() *BlockContext {
	return e.blockCtx
}

// Usage returns the resources consumed by every call made through e so far
func (e *TransactionExecutor) Usage() ResourceUsage {
	usage := e.usage
	usage.Resources = usage.Resources.Clone()
	return usage
}

// Execute runs tx in full and applies the writes it made. A reverted execution is not an
// error here, callers decide what a revert means for them.
func (e *TransactionExecutor) Execute(ctx context.Context, tx core.Transaction, flags ExecutionFlags) (*ExecutionInfo, error) {
	info, err := e.engine.Execute(ctx, tx, e.state, e.blockCtx, flags)
	if err != nil {
		return nil, fmt.Errorf("execute transaction %s: %w", tx.Hash(), err)
	}

	e.state.Apply(info.StateDiff)
	if err = e.usage.Add(&info.ActualCost); err != nil {
		return nil, err
	}
	e.log.Debugw("Executed transaction", "hash", tx.Hash(), "reverted", info.Reverted())
	return info, nil
}

// Validate runs the account's validation entry point with remainingGas and applies the
// writes it made. A failed validation call is returned as a ValidationProgramError.
func (e *TransactionExecutor) Validate(ctx context.Context, tx core.AccountTransaction,
	remainingGas uint64,
) (*ValidateInfo, error) {
	info, err := e.engine.Validate(ctx, tx, e.state, e.blockCtx, remainingGas)
	if err != nil {
		return nil, fmt.Errorf("validate transaction %s: %w", tx.Hash(), err)
	}

	e.state.Apply(info.StateDiff)
	if err = e.usage.Add(&info.ActualCost); err != nil {
		return nil, err
	}

	if info.CallInfo != nil && info.CallInfo.Failed {
		return info, &ValidationProgramError{
			TransactionHash: tx.Hash(),
			Reason:          fmt.Sprintf("validate call failed with retdata %v", info.CallInfo.Retdata),
		}
	}
	return info, nil
}
