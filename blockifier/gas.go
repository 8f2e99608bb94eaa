package blockifier

import (
	"errors"

	"github.com/NethermindEth/starknet-validator/core"
	"github.com/NethermindEth/starknet-validator/core/felt"
)

var ErrGasOverflow = errors.New("gas amount overflow")

// GasAmount represents an amount of gas
type GasAmount uint64

// CheckedAdd performs addition with overflow checking
func (g GasAmount) CheckedAdd(other GasAmount) (GasAmount, error) {
	if g > ^GasAmount(0)-other {
		return 0, ErrGasOverflow
	}
	return g + other, nil
}

// CheckedMul performs multiplication with overflow checking
func (g GasAmount) CheckedMul(factor uint64) (GasAmount, error) {
	if factor != 0 && uint64(g) > ^uint64(0)/factor {
		return 0, ErrGasOverflow
	}
	return g * GasAmount(factor), nil
}

// GasVector represents different types of gas consumption
type GasVector struct {
	L1Gas     GasAmount
	L1DataGas GasAmount
	L2Gas     GasAmount
}

// CheckedAdd adds two GasVectors with overflow checking
func (gv GasVector) CheckedAdd(other GasVector) (GasVector, error) {
	l1Gas, err := gv.L1Gas.CheckedAdd(other.L1Gas)
	if err != nil {
		return GasVector{}, err
	}

	l1DataGas, err := gv.L1DataGas.CheckedAdd(other.L1DataGas)
	if err != nil {
		return GasVector{}, err
	}

	l2Gas, err := gv.L2Gas.CheckedAdd(other.L2Gas)
	if err != nil {
		return GasVector{}, err
	}

	return GasVector{
		L1Gas:     l1Gas,
		L1DataGas: l1DataGas,
		L2Gas:     l2Gas,
	}, nil
}

// GasPrice is the price of one unit of a resource in each fee token.
type GasPrice struct {
	PriceInWei *felt.Felt
	PriceInFri *felt.Felt
}

// In returns the price in the token fees of type feeType are paid in
func (p GasPrice) In(feeType core.FeeType) *felt.Felt {
	price := p.PriceInWei
	if feeType == core.FeeTypeSTRK {
		price = p.PriceInFri
	}
	if price == nil {
		return new(felt.Felt)
	}
	return price
}

type GasPrices struct {
	L1GasPrice     GasPrice
	L1DataGasPrice GasPrice
	L2GasPrice     GasPrice
}
