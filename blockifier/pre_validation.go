package blockifier

import (
	"github.com/NethermindEth/starknet-validator/core"
)

// ChargeNonceAndCheckFee runs the checks a transaction has to pass before its account is
// asked to validate it: the fee range check, the nonce check, then, when chargeFee is set
// and the sender committed to a fee, the fee bounds and balance checks.
//
// It is not idempotent. A passing nonce check increments the sender's nonce in the
// executor's state, so calling it twice for one transaction fails the second time in
// strict mode and drifts the nonce otherwise. Nothing is rolled back when a later check
// fails. An out of range commitment is rejected before the nonce is charged.
func (e *TransactionExecutor) ChargeNonceAndCheckFee(txInfo *core.TxInfo, chargeFee, strictNonceCheck bool) error {
	if err := CheckFeeRange(txInfo); err != nil {
		return err
	}
	if err := e.chargeNonce(txInfo, strictNonceCheck); err != nil {
		return err
	}

	if !chargeFee || !txInfo.EnforceFee() {
		return nil
	}
	if err := checkFeeBounds(e.blockCtx, txInfo); err != nil {
		return err
	}
	return checkCanPayFee(e.state, e.blockCtx, txInfo)
}

func (e *TransactionExecutor) chargeNonce(txInfo *core.TxInfo, strict bool) error {
	// version 0 transactions have no replay protection
	if txInfo.IsV0() {
		return nil
	}

	accountNonce, err := e.state.ContractNonce(txInfo.SenderAddress)
	if err != nil {
		return &StateReadError{Entry: "nonce", Address: txInfo.SenderAddress, Err: err}
	}

	cmp := txInfo.Nonce.Cmp(&accountNonce)
	if (strict && cmp != 0) || (!strict && cmp < 0) {
		return &NonceError{
			Address:      txInfo.SenderAddress,
			AccountNonce: &accountNonce,
			TxNonce:      txInfo.Nonce,
			Strict:       strict,
		}
	}

	if err = e.state.IncrementNonce(txInfo.SenderAddress); err != nil {
		return &StateReadError{Entry: "nonce", Address: txInfo.SenderAddress, Err: err}
	}
	return nil
}
