package blockifier

import (
	"context"

	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/NethermindEth/starknet-validator/core/state"
)

// CallInfo describes one top level entry point call.
type CallInfo struct {
	ContractAddress *felt.Felt
	Selector        *felt.Felt
	Retdata         []*felt.Felt
	GasConsumed     uint64
	Resources       ExecutionResources
	// Failed is set when the call panicked or returned an error code
	Failed bool
}

type ExecutionInfo struct {
	ValidateCallInfo *CallInfo
	ExecuteCallInfo  *CallInfo
	// RevertError is the engine's diagnostic when execution reverted, empty otherwise
	RevertError string
	ActualCost  ActualCost
	// StateDiff holds the writes execution made on top of the view it was given
	StateDiff *state.StateDiff
}

func (i *ExecutionInfo) Reverted() bool {
	return i.RevertError != ""
}

type ValidateInfo struct {
	// CallInfo is nil when the account has no validation entry point to run
	CallInfo   *CallInfo
	ActualCost ActualCost
	StateDiff  *state.StateDiff
}

// Engine runs Starknet programs. Implementations read through view and report, rather
// than apply, the writes they make.
//
//go:generate mockgen -destination=../mocks/mock_engine.go -package=mocks github.com/NethermindEth/starknet-validator/blockifier Engine
type Engine interface {
	Execute(ctx context.Context, tx core.Transaction, view state.View, blockCtx *BlockContext,
		flags ExecutionFlags) (*ExecutionInfo, error)
	Validate(ctx context.Context, tx core.AccountTransaction, view state.View, blockCtx *BlockContext,
		remainingGas uint64) (*ValidateInfo, error)
}
