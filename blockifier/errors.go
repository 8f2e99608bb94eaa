package blockifier

import (
	"fmt"

	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/holiman/uint256"
)

// StateReadError is a failure of the state backend, reported verbatim.
type StateReadError struct {
	// What was being read, e.g. "nonce"
	Entry   string
	Address *felt.Felt
	Err     error
}

func (e *StateReadError) Error() string {
	return fmt.Sprintf("failed to read %s of %s: %v", e.Entry, e.Address, e.Err)
}

func (e *StateReadError) Unwrap() error {
	return e.Err
}

// NonceError is returned when a transaction's nonce does not fit the account's current one.
type NonceError struct {
	Address      *felt.Felt
	AccountNonce *felt.Felt
	TxNonce      *felt.Felt
	Strict       bool
}

func (e *NonceError) Error() string {
	if e.Strict {
		return fmt.Sprintf("invalid transaction nonce of contract at address %s: account nonce %s, got %s",
			e.Address, e.AccountNonce, e.TxNonce)
	}
	return fmt.Sprintf("invalid transaction nonce of contract at address %s: account nonce %s, got %s which is lower",
		e.Address, e.AccountNonce, e.TxNonce)
}

type FeeCheckErrorKind uint8

const (
	MaxFeeTooLow FeeCheckErrorKind = iota
	MaxL1GasAmountTooLow
	MaxL1GasPriceTooLow
	MaxFeeExceedsBalance
	ResourceBoundsExceedBalance
	// legacy max_fee above the u128 range fees are paid in
	MaxFeeOutOfRange
	// a resource bound price above the u128 range
	MaxPricePerUnitOutOfRange
)

func (k FeeCheckErrorKind) String() string {
	switch k {
	case MaxFeeTooLow:
		return "MaxFeeTooLow"
	case MaxL1GasAmountTooLow:
		return "MaxL1GasAmountTooLow"
	case MaxL1GasPriceTooLow:
		return "MaxL1GasPriceTooLow"
	case MaxFeeExceedsBalance:
		return "MaxFeeExceedsBalance"
	case ResourceBoundsExceedBalance:
		return "ResourceBoundsExceedBalance"
	case MaxFeeOutOfRange:
		return "MaxFeeOutOfRange"
	case MaxPricePerUnitOutOfRange:
		return "MaxPricePerUnitOutOfRange"
	default:
		return fmt.Sprintf("FeeCheckErrorKind(%d)", uint8(k))
	}
}

// FeeCheckError is returned when the sender's fee commitment is unusable: out of range,
// below what any transaction costs, or more than the sender can pay.
type FeeCheckError struct {
	Kind FeeCheckErrorKind
	// Committed is what the sender offered. Required is what was needed, what the sender
	// owns for balance checks, or the largest allowed value for range checks.
	Committed *uint256.Int
	Required  *uint256.Int
}

func (e *FeeCheckError) Error() string {
	switch e.Kind {
	case MaxFeeExceedsBalance, ResourceBoundsExceedBalance:
		return fmt.Sprintf("%s: committed %s, balance %s", e.Kind, u256Hex(e.Committed), u256Hex(e.Required))
	case MaxFeeOutOfRange, MaxPricePerUnitOutOfRange:
		return fmt.Sprintf("%s: committed %s, maximum %s", e.Kind, u256Hex(e.Committed), u256Hex(e.Required))
	default:
		return fmt.Sprintf("%s: committed %s, minimum %s", e.Kind, u256Hex(e.Committed), u256Hex(e.Required))
	}
}

func u256Hex(v *uint256.Int) string {
	if v == nil {
		return "0x0"
	}
	return v.Hex()
}

// ValidationProgramError is returned when the account's validation entry point, or the
// deploy-account execution standing in for it, reverted or failed.
type ValidationProgramError struct {
	TransactionHash *felt.Felt
	Reason          string
}

func (e *ValidationProgramError) Error() string {
	return fmt.Sprintf("transaction %s failed validation: %s", e.TransactionHash, e.Reason)
}

// ResourceBoundsExceededError is returned when the actual cost of a call is above what
// the sender committed to pay.
type ResourceBoundsExceededError struct {
	// "fee" for legacy transactions, the resource name for V3 ones
	Resource string
	Max      *felt.Felt
	Actual   *felt.Felt
}

func (e *ResourceBoundsExceededError) Error() string {
	return fmt.Sprintf("actual %s %s exceeds the committed maximum %s", e.Resource, e.Actual, e.Max)
}
