package blockifier

import (
	"maps"
	"slices"

	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/crypto"
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/NethermindEth/starknet-validator/core/state"
	"github.com/holiman/uint256"
)

var erc20BalancesVar = crypto.Selector("ERC20_balances")

// BalanceKeys returns the storage keys of the low and high words of the u256 fee token
// balance of account.
func BalanceKeys(account *felt.Felt) (low, high *felt.Felt) {
	low = crypto.Pedersen(erc20BalancesVar, account)
	high = new(felt.Felt).Add(low, &felt.One)
	return low, high
}

// FeeTokenBalance reads the balance of account in token.
func FeeTokenBalance(reader state.Reader, token, account *felt.Felt) (low, high felt.Felt, err error) {
	lowKey, highKey := BalanceKeys(account)
	if low, err = reader.ContractStorage(token, lowKey); err != nil {
		return low, high, &StateReadError{Entry: "fee token balance", Address: account, Err: err}
	}
	if high, err = reader.ContractStorage(token, highKey); err != nil {
		return low, high, &StateReadError{Entry: "fee token balance", Address: account, Err: err}
	}
	return low, high, nil
}

// MinimalFee is the fee of the least gas a transaction of type txType can consume, in the
// token of feeType.
func MinimalFee(blockCtx *BlockContext, txType core.TransactionType, feeType core.FeeType) *uint256.Int {
	gas := blockCtx.VersionedConstants.MinimalL1GasFor(txType)
	return core.Fee(uint64(gas), blockCtx.BlockInfo.GasPrices.L1GasPrice.In(feeType))
}

// CheckFeeRange rejects fee commitments outside the u128 range fee amounts and gas prices
// live in. Fees are computed as integers, the range keeps them meaningful.
func CheckFeeRange(txInfo *core.TxInfo) error {
	if !txInfo.IsV3() {
		if txInfo.MaxFee == nil {
			return nil
		}
		if maxFee := txInfo.MaxFee.Uint256(new(uint256.Int)); maxFee.Gt(core.MaxU128) {
			return &FeeCheckError{Kind: MaxFeeOutOfRange, Committed: maxFee, Required: core.MaxU128.Clone()}
		}
		return nil
	}

	for _, resource := range slices.Sorted(maps.Keys(txInfo.ResourceBounds)) {
		price := txInfo.ResourceBounds[resource].MaxPricePerUnit
		if price == nil {
			continue
		}
		if p := price.Uint256(new(uint256.Int)); p.Gt(core.MaxU128) {
			return &FeeCheckError{Kind: MaxPricePerUnitOutOfRange, Committed: p, Required: core.MaxU128.Clone()}
		}
	}
	return nil
}

func checkFeeBounds(blockCtx *BlockContext, txInfo *core.TxInfo) error {
	if !txInfo.IsV3() {
		minimalFee := MinimalFee(blockCtx, txInfo.Type, core.FeeTypeETH)
		maxFee := txInfo.MaxPossibleFee()
		if maxFee.Lt(minimalFee) {
			return &FeeCheckError{Kind: MaxFeeTooLow, Committed: maxFee, Required: minimalFee}
		}
		return nil
	}

	l1Bounds := txInfo.ResourceBounds[core.ResourceL1Gas]
	minimalGas := uint64(blockCtx.VersionedConstants.MinimalL1GasFor(txInfo.Type))
	if l1Bounds.MaxAmount < minimalGas {
		return &FeeCheckError{
			Kind:      MaxL1GasAmountTooLow,
			Committed: uint256.NewInt(l1Bounds.MaxAmount),
			Required:  uint256.NewInt(minimalGas),
		}
	}

	committedPrice := new(uint256.Int)
	if l1Bounds.MaxPricePerUnit != nil {
		l1Bounds.MaxPricePerUnit.Uint256(committedPrice)
	}
	actualPrice := blockCtx.BlockInfo.GasPrices.L1GasPrice.In(core.FeeTypeSTRK).Uint256(new(uint256.Int))
	if committedPrice.Lt(actualPrice) {
		return &FeeCheckError{Kind: MaxL1GasPriceTooLow, Committed: committedPrice, Required: actualPrice}
	}
	return nil
}

func checkCanPayFee(reader state.Reader, blockCtx *BlockContext, txInfo *core.TxInfo) error {
	feeType := txInfo.FeeType()
	low, high, err := FeeTokenBalance(reader, blockCtx.ChainInfo.FeeTokenAddress(feeType), txInfo.SenderAddress)
	if err != nil {
		return err
	}

	balance := u256Balance(&low, &high)
	maxFee := txInfo.MaxPossibleFee()
	if !balance.Lt(maxFee) {
		return nil
	}
	kind := MaxFeeExceedsBalance
	if txInfo.IsV3() {
		kind = ResourceBoundsExceedBalance
	}
	return &FeeCheckError{Kind: kind, Committed: maxFee, Required: balance}
}

// u256Balance joins the two u128 words of a fee token balance
func u256Balance(low, high *felt.Felt) *uint256.Int {
	balance := high.Uint256(new(uint256.Int))
	if balance.Gt(core.MaxU128) {
		return balance.SetAllOne()
	}
	balance.Lsh(balance, 128)
	return core.AddFee(balance, low.Uint256(new(uint256.Int)))
}
