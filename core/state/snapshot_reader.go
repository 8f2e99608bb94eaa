package state

import (
	"encoding/binary"
	"errors"

	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/NethermindEth/starknet-validator/db"
)

var _ Reader = (*SnapshotReader)(nil)

// SnapshotReader reads contract state out of the db buckets. Missing keys read as zero.
type SnapshotReader struct {
	txn db.KeyValueReader
}

func NewSnapshotReader(txn db.KeyValueReader) *SnapshotReader {
	return &SnapshotReader{txn: txn}
}

func (r *SnapshotReader) ContractNonce(addr *felt.Felt) (felt.Felt, error) {
	return r.read(db.ContractNonce.Key(addr.Marshal()))
}

func (r *SnapshotReader) ContractStorage(addr, key *felt.Felt) (felt.Felt, error) {
	return r.read(db.ContractStorage.Key(addr.Marshal(), key.Marshal()))
}

func (r *SnapshotReader) ContractClassHash(addr *felt.Felt) (felt.Felt, error) {
	return r.read(db.ContractClassHash.Key(addr.Marshal()))
}

func (r *SnapshotReader) read(key []byte) (felt.Felt, error) {
	var value felt.Felt
	err := r.txn.Get(key, func(val []byte) error {
		value.SetBytes(val)
		return nil
	})
	if errors.Is(err, db.ErrKeyNotFound) {
		return felt.Zero, nil
	}
	return value, err
}

// Writer persists contract state into the db buckets.
type Writer struct {
	txn db.KeyValueWriter
}

func NewWriter(txn db.KeyValueWriter) *Writer {
	return &Writer{txn: txn}
}

func (w *Writer) SetNonce(addr, nonce *felt.Felt) error {
	return w.txn.Put(db.ContractNonce.Key(addr.Marshal()), nonce.Marshal())
}

func (w *Writer) SetStorage(addr, key, value *felt.Felt) error {
	return w.txn.Put(db.ContractStorage.Key(addr.Marshal(), key.Marshal()), value.Marshal())
}

func (w *Writer) SetClassHash(addr, classHash *felt.Felt) error {
	return w.txn.Put(db.ContractClassHash.Key(addr.Marshal()), classHash.Marshal())
}

// Apply persists every write in diff
func (w *Writer) Apply(diff *StateDiff) error {
	for addr, classHash := range diff.DeployedContracts {
		if err := w.SetClassHash(&addr, classHash); err != nil {
			return err
		}
	}
	for addr, nonce := range diff.Nonces {
		if err := w.SetNonce(&addr, nonce); err != nil {
			return err
		}
	}
	for addr, diffs := range diff.StorageDiffs {
		for key, value := range diffs {
			if err := w.SetStorage(&addr, &key, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// ChainHeight returns the latest height written to the store, db.ErrKeyNotFound if there
// is none.
func ChainHeight(txn db.KeyValueReader) (uint64, error) {
	var height uint64
	return height, txn.Get(db.ChainHeight.Key(), func(val []byte) error {
		height = binary.BigEndian.Uint64(val)
		return nil
	})
}

func (w *Writer) SetChainHeight(height uint64) error {
	return w.txn.Put(db.ChainHeight.Key(), binary.BigEndian.AppendUint64(nil, height))
}
