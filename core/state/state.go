package state

import (
	"github.com/NethermindEth/starknet-validator/core/felt"
)

// Reader answers point reads against the state of one height. Contracts that were never
// deployed read as zero.
//
//go:generate mockgen -destination=../../mocks/mock_state.go -package=mocks github.com/NethermindEth/starknet-validator/core/state Reader
type Reader interface {
	ContractNonce(addr *felt.Felt) (felt.Felt, error)
	ContractStorage(addr, key *felt.Felt) (felt.Felt, error)
	ContractClassHash(addr *felt.Felt) (felt.Felt, error)
}

// View is a Reader that also exposes the writes it holds on top of its base state, so
// that an out-of-process engine can replay them.
type View interface {
	Reader
	PendingDiff() *StateDiff
}
