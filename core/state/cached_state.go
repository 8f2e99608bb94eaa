package state

import (
	"fmt"

	"github.com/NethermindEth/starknet-validator/core/felt"
)

var _ View = (*CachedState)(nil)

// CachedState layers the writes made while validating one height over a read-only base.
// Writes are never flushed to the base, they live until the height is torn down.
//
// CachedState is not safe for concurrent use.
type CachedState struct {
	base    Reader
	pending *StateDiff
}

func NewCachedState(base Reader) *CachedState {
	return &CachedState{
		base:    base,
		pending: NewStateDiff(),
	}
}

func (s *CachedState) ContractNonce(addr *felt.Felt) (felt.Felt, error) {
	if nonce, ok := s.pending.Nonces[*addr]; ok {
		return *nonce, nil
	}
	return s.base.ContractNonce(addr)
}

func (s *CachedState) ContractStorage(addr, key *felt.Felt) (felt.Felt, error) {
	if value, ok := s.pending.StorageDiffs[*addr][*key]; ok {
		return *value, nil
	}
	return s.base.ContractStorage(addr, key)
}

func (s *CachedState) ContractClassHash(addr *felt.Felt) (felt.Felt, error) {
	if classHash, ok := s.pending.DeployedContracts[*addr]; ok {
		return *classHash, nil
	}
	return s.base.ContractClassHash(addr)
}

func (s *CachedState) SetNonce(addr, nonce *felt.Felt) {
	s.pending.Nonces[*addr] = new(felt.Felt).Set(nonce)
}

// IncrementNonce bumps the nonce of addr by one
func (s *CachedState) IncrementNonce(addr *felt.Felt) error {
	current, err := s.ContractNonce(addr)
	if err != nil {
		return fmt.Errorf("read nonce of %s: %w", addr, err)
	}
	s.SetNonce(addr, new(felt.Felt).Add(&current, &felt.One))
	return nil
}

func (s *CachedState) SetStorage(addr, key, value *felt.Felt) {
	diffs, ok := s.pending.StorageDiffs[*addr]
	if !ok {
		diffs = make(map[felt.Felt]*felt.Felt)
		s.pending.StorageDiffs[*addr] = diffs
	}
	diffs[*key] = new(felt.Felt).Set(value)
}

func (s *CachedState) SetClassHash(addr, classHash *felt.Felt) {
	s.pending.DeployedContracts[*addr] = new(felt.Felt).Set(classHash)
}

// Apply layers diff over the pending writes
func (s *CachedState) Apply(diff *StateDiff) {
	s.pending.Merge(diff)
}

// PendingDiff returns a copy of every write made since the state was created
func (s *CachedState) PendingDiff() *StateDiff {
	return s.pending.Clone()
}
