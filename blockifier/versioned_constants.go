package blockifier

import (
	"github.com/Masterminds/semver/v3"
	"github.com/NethermindEth/starknet-validator/core"
)

// VersionedConstants holds constants that may change with versions of the protocol
type VersionedConstants struct {
	// Maximum recursion depth of nested calls
	MaxRecursionDepth uint64
	// Maximum number of steps for validation
	ValidateMaxNSteps uint32
	// Maximum number of steps for invoke transactions
	InvokeTxMaxNSteps uint32
	// Gas a top level call starts with
	DefaultInitialGas uint64
	// Lower bound on the L1 gas any transaction of a given type consumes. Fee bounds
	// below the matching fee can never be sufficient.
	MinimalL1Gas map[core.TransactionType]uint64
}

// MinimalL1GasFor returns the minimal L1 gas of transactions of type txType
func (c *VersionedConstants) MinimalL1GasFor(txType core.TransactionType) GasAmount {
	return GasAmount(c.MinimalL1Gas[txType])
}

const initialGasCost = 10_000_000_000

var (
	constants0_13_0 = VersionedConstants{
		MaxRecursionDepth: 50,
		ValidateMaxNSteps: 1_000_000,
		InvokeTxMaxNSteps: 3_000_000,
		DefaultInitialGas: initialGasCost,
		MinimalL1Gas: map[core.TransactionType]uint64{
			core.TxnDeclare:       1_224,
			core.TxnDeployAccount: 3_672,
			core.TxnInvoke:        1_224,
		},
	}
	constants0_13_1 = VersionedConstants{
		MaxRecursionDepth: 50,
		ValidateMaxNSteps: 1_000_000,
		InvokeTxMaxNSteps: 4_000_000,
		DefaultInitialGas: initialGasCost,
		MinimalL1Gas: map[core.TransactionType]uint64{
			core.TxnDeclare:       612,
			core.TxnDeployAccount: 1_836,
			core.TxnInvoke:        612,
		},
	}
	constants0_13_2 = VersionedConstants{
		MaxRecursionDepth: 50,
		ValidateMaxNSteps: 1_000_000,
		InvokeTxMaxNSteps: 10_000_000,
		DefaultInitialGas: initialGasCost,
		MinimalL1Gas: map[core.TransactionType]uint64{
			core.TxnDeclare:       612,
			core.TxnDeployAccount: 1_836,
			core.TxnInvoke:        612,
		},
	}
)

// VersionedConstantsFor returns the constants in force for blocks of protocol version v
func VersionedConstantsFor(v *semver.Version) VersionedConstants {
	var c VersionedConstants
	switch {
	case v.LessThan(core.Ver0_13_1):
		c = constants0_13_0
	case v.LessThan(core.Ver0_13_2):
		c = constants0_13_1
	default:
		c = constants0_13_2
	}
	return c.clone()
}

func (c VersionedConstants) clone() VersionedConstants {
	minimal := make(map[core.TransactionType]uint64, len(c.MinimalL1Gas))
	for txType, gas := range c.MinimalL1Gas {
		minimal[txType] = gas
	}
	c.MinimalL1Gas = minimal
	return c
}
