package pebble

import (
	"time"

	"github.com/NethermindEth/starknet-validator/db"
	"github.com/cockroachdb/pebble"
)

var _ db.Snapshot = (*snapshot)(nil)

type snapshot struct {
	snapshot *pebble.Snapshot
	listener db.EventListener
}

func (s *snapshot) Has(key []byte) (bool, error) {
	return has(s.snapshot, key)
}

func (s *snapshot) Get(key []byte, cb func(value []byte) error) error {
	start := time.Now()
	defer func() { s.listener.OnIO(false, time.Since(start)) }()

	return get(s.snapshot, key, cb)
}

func (s *snapshot) Close() error {
	return s.snapshot.Close()
}
