package core

import (
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/holiman/uint256"
)

// FeeType names the token a transaction pays its fee in.
type FeeType uint8

const (
	FeeTypeETH FeeType = iota
	FeeTypeSTRK
)

func (f FeeType) String() string {
	if f == FeeTypeSTRK {
		return "STRK"
	}
	return "ETH"
}

// TxInfo is the account transaction context the validation stages work on. It is built per
// validation call and never mutated.
type TxInfo struct {
	TransactionHash *felt.Felt
	Type            TransactionType
	SenderAddress   *felt.Felt
	// Nonce is zero for version 0 transactions that carry none
	Nonce     *felt.Felt
	Version   *felt.Felt
	Signature []*felt.Felt
	// MaxFee is set for legacy transactions, ResourceBounds and Tip for V3 ones.
	MaxFee         *felt.Felt
	ResourceBounds map[Resource]ResourceBounds
	Tip            uint64
}

func NewTxInfo(tx AccountTransaction) *TxInfo {
	nonce := tx.Nonce()
	if nonce == nil {
		nonce = &felt.Zero
	}
	info := &TxInfo{
		TransactionHash: tx.Hash(),
		Type:            tx.Type(),
		SenderAddress:   tx.ContractAddress(),
		Nonce:           nonce,
		Version:         tx.Version(),
		Signature:       tx.Signature(),
		MaxFee:          tx.MaxFee(),
		ResourceBounds:  tx.ResourceBounds(),
	}
	switch t := tx.(type) {
	case *InvokeV3:
		info.Tip = t.Tip
	case *DeclareV3:
		info.Tip = t.Tip
	case *DeployAccountV3:
		info.Tip = t.Tip
	}
	return info
}

func (i *TxInfo) IsV0() bool {
	return i.Version.IsZero()
}

func (i *TxInfo) IsV3() bool {
	return i.ResourceBounds != nil
}

func (i *TxInfo) FeeType() FeeType {
	if i.IsV3() {
		return FeeTypeSTRK
	}
	return FeeTypeETH
}

// MaxPossibleFee is the most the sender committed to pay: max_fee for legacy transactions,
// the sum of amount times price over every resource bound for V3 ones.
func (i *TxInfo) MaxPossibleFee() *uint256.Int {
	if !i.IsV3() {
		if i.MaxFee == nil {
			return new(uint256.Int)
		}
		return i.MaxFee.Uint256(new(uint256.Int))
	}
	total := new(uint256.Int)
	for _, bound := range i.ResourceBounds {
		AddFee(total, bound.MaxFee())
	}
	return total
}

// EnforceFee reports whether the sender committed to pay anything at all. Transactions
// that did not are neither fee checked nor held to their bounds.
func (i *TxInfo) EnforceFee() bool {
	return !i.MaxPossibleFee().IsZero()
}
