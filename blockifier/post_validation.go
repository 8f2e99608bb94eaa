package blockifier

import (
	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/holiman/uint256"
)

// PostValidationReport reconciles what a validation call cost with what the sender
// committed to pay.
type PostValidationReport struct {
	TxInfo     *core.TxInfo
	ActualCost *ActualCost
}

func NewPostValidationReport(txInfo *core.TxInfo, actualCost *ActualCost) *PostValidationReport {
	return &PostValidationReport{TxInfo: txInfo, ActualCost: actualCost}
}

// Verify returns a ResourceBoundsExceededError when the actual cost is above the
// commitment. Senders that committed to no fee always pass.
func (r *PostValidationReport) Verify() error {
	if !r.TxInfo.EnforceFee() || r.ActualCost == nil {
		return nil
	}

	if !r.TxInfo.IsV3() {
		fee := r.ActualCost.Fee
		if fee == nil {
			fee = &felt.Zero
		}
		if fee.Uint256(new(uint256.Int)).Gt(r.TxInfo.MaxPossibleFee()) {
			return &ResourceBoundsExceededError{Resource: "fee", Max: r.TxInfo.MaxFee, Actual: fee}
		}
		return nil
	}

	if err := checkGasBound(r.TxInfo.ResourceBounds, core.ResourceL1Gas, r.ActualCost.Gas.L1Gas); err != nil {
		return err
	}
	if _, ok := r.TxInfo.ResourceBounds[core.ResourceL2Gas]; ok {
		return checkGasBound(r.TxInfo.ResourceBounds, core.ResourceL2Gas, r.ActualCost.Gas.L2Gas)
	}
	return nil
}

func checkGasBound(bounds map[core.Resource]core.ResourceBounds, resource core.Resource, actual GasAmount) error {
	maxAmount := bounds[resource].MaxAmount
	if uint64(actual) > maxAmount {
		return &ResourceBoundsExceededError{
			Resource: resource.String(),
			Max:      new(felt.Felt).SetUint64(maxAmount),
			Actual:   new(felt.Felt).SetUint64(uint64(actual)),
		}
	}
	return nil
}
