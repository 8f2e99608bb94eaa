package core

import "fmt"

// TransactionEnvelope carries any transaction variant through the tagged CBOR encoding
// (see encoder/registry). Decoding yields the variant by value, Transaction restores it.
type TransactionEnvelope struct {
	Tx any
}

func NewTransactionEnvelope(tx Transaction) TransactionEnvelope {
	return TransactionEnvelope{Tx: tx}
}

func (e TransactionEnvelope) Transaction() (Transaction, error) {
	switch t := e.Tx.(type) {
	case Transaction:
		return t, nil
	case DeclareV0:
		return &t, nil
	case DeclareV1:
		return &t, nil
	case DeclareV2:
		return &t, nil
	case DeclareV3:
		return &t, nil
	case Deploy:
		return &t, nil
	case DeployAccountV1:
		return &t, nil
	case DeployAccountV3:
		return &t, nil
	case InvokeV0:
		return &t, nil
	case InvokeV1:
		return &t, nil
	case InvokeV3:
		return &t, nil
	case L1Handler:
		return &t, nil
	default:
		return nil, fmt.Errorf("unknown transaction payload %T", e.Tx)
	}
}
