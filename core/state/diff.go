package state

import (
	"github.com/NethermindEth/starknet-validator/core/felt"
)

// StateDiff holds state writes keyed by contract address.
type StateDiff struct {
	StorageDiffs      map[felt.Felt]map[felt.Felt]*felt.Felt // addr -> {key -> value, ...}
	Nonces            map[felt.Felt]*felt.Felt               // addr -> nonce
	DeployedContracts map[felt.Felt]*felt.Felt               // addr -> class hash
}

func NewStateDiff() *StateDiff {
	return &StateDiff{
		StorageDiffs:      make(map[felt.Felt]map[felt.Felt]*felt.Felt),
		Nonces:            make(map[felt.Felt]*felt.Felt),
		DeployedContracts: make(map[felt.Felt]*felt.Felt),
	}
}

func (d *StateDiff) IsEmpty() bool {
	return d == nil || len(d.StorageDiffs) == 0 && len(d.Nonces) == 0 && len(d.DeployedContracts) == 0
}

// Merge applies other on top of d, values in other win
func (d *StateDiff) Merge(other *StateDiff) {
	if other == nil {
		return
	}
	for addr, diffs := range other.StorageDiffs {
		if d.StorageDiffs == nil {
			d.StorageDiffs = make(map[felt.Felt]map[felt.Felt]*felt.Felt)
		}
		if d.StorageDiffs[addr] == nil {
			d.StorageDiffs[addr] = make(map[felt.Felt]*felt.Felt, len(diffs))
		}
		for key, value := range diffs {
			d.StorageDiffs[addr][key] = new(felt.Felt).Set(value)
		}
	}
	for addr, nonce := range other.Nonces {
		if d.Nonces == nil {
			d.Nonces = make(map[felt.Felt]*felt.Felt)
		}
		d.Nonces[addr] = new(felt.Felt).Set(nonce)
	}
	for addr, classHash := range other.DeployedContracts {
		if d.DeployedContracts == nil {
			d.DeployedContracts = make(map[felt.Felt]*felt.Felt)
		}
		d.DeployedContracts[addr] = new(felt.Felt).Set(classHash)
	}
}

// Clone returns a deep copy of d
func (d *StateDiff) Clone() *StateDiff {
	clone := NewStateDiff()
	clone.Merge(d)
	return clone
}
