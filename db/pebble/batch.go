package pebble

import (
	"time"

	"github.com/NethermindEth/starknet-validator/db"
	"github.com/cockroachdb/pebble"
)

var _ db.Batch = (*batch)(nil)

type batch struct {
	batch    *pebble.Batch
	size     int // size of the batch in bytes
	listener db.EventListener
}

func (b *batch) Put(key, value []byte) error {
	if err := b.batch.Set(key, value, pebble.Sync); err != nil {
		return err
	}
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	if err := b.batch.Delete(key, pebble.Sync); err != nil {
		return err
	}
	b.size += len(key)
	return nil
}

func (b *batch) Size() int {
	return b.size
}

// Write commits the batch. Close still releases it.
func (b *batch) Write() error {
	start := time.Now()
	defer func() { b.listener.OnIO(true, time.Since(start)) }()

	return b.batch.Commit(pebble.Sync)
}

func (b *batch) Reset() {
	b.batch.Reset()
	b.size = 0
}

func (b *batch) Close() error {
	return b.batch.Close()
}
