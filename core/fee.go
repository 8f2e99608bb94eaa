package core

import (
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/holiman/uint256"
)

// MaxU128 bounds every fee amount and gas price a transaction may commit to
var MaxU128 = new(uint256.Int).Rsh(new(uint256.Int).SetAllOne(), 128)

// Fee returns amount times price. Fees are integers, never field elements: the product
// saturates at the largest u256 instead of wrapping.
func Fee(amount uint64, price *felt.Felt) *uint256.Int {
	if price == nil {
		return new(uint256.Int)
	}
	fee, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), price.Uint256(new(uint256.Int)))
	if overflow {
		return fee.SetAllOne()
	}
	return fee
}

// AddFee adds x to z, saturating at the largest u256
func AddFee(z, x *uint256.Int) *uint256.Int {
	if _, overflow := z.AddOverflow(z, x); overflow {
		z.SetAllOne()
	}
	return z
}
