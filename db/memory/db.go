package memory

import (
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/NethermindEth/starknet-validator/db"
)

var (
	errDBClosed    = errors.New("memory database closed")
	errBatchClosed = errors.New("memory batch closed")
)

var _ db.KeyValueStore = (*Database)(nil)

// Represents an in-memory key-value store.
// It is thread-safe.
type Database struct {
	db       map[string][]byte
	lock     sync.RWMutex
	listener db.EventListener
}

func New() *Database {
	return &Database{
		db:       make(map[string][]byte),
		listener: &db.SelectiveListener{},
	}
}

func (d *Database) WithListener(listener db.EventListener) db.KeyValueStore {
	d.listener = listener
	return d
}

func (d *Database) Has(key []byte) (bool, error) {
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.db == nil {
		return false, errDBClosed
	}

	_, ok := d.db[string(key)]
	return ok, nil
}

func (d *Database) Get(key []byte, cb func(value []byte) error) error {
	defer d.listener.OnIO(false, 0)
	d.lock.RLock()
	defer d.lock.RUnlock()

	if d.db == nil {
		return errDBClosed
	}

	val, ok := d.db[string(key)]
	if !ok {
		return db.ErrKeyNotFound
	}

	return cb(val)
}

func (d *Database) Put(key, value []byte) error {
	defer d.listener.OnIO(true, 0)
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.db == nil {
		return errDBClosed
	}

	d.db[string(key)] = slices.Clone(value)
	return nil
}

func (d *Database) Delete(key []byte) error {
	defer d.listener.OnIO(true, 0)
	d.lock.Lock()
	defer d.lock.Unlock()

	if d.db == nil {
		return errDBClosed
	}

	delete(d.db, string(key))
	return nil
}

func (d *Database) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.db = nil
	return nil
}

func (d *Database) NewBatch() db.Batch {
	return &batch{db: d}
}

// NewSnapshot copies the current contents, later writes to d are not visible through it
func (d *Database) NewSnapshot() db.Snapshot {
	d.lock.RLock()
	defer d.lock.RUnlock()

	return &snapshot{db: maps.Clone(d.db), listener: d.listener}
}

type keyValue struct {
	key    string
	value  []byte
	delete bool
}

type batch struct {
	db     *Database
	writes []keyValue
	size   int
	closed bool
}

func (b *batch) Put(key, value []byte) error {
	if b.closed {
		return errBatchClosed
	}
	b.writes = append(b.writes, keyValue{key: string(key), value: slices.Clone(value)})
	b.size += len(key) + len(value)
	return nil
}

func (b *batch) Delete(key []byte) error {
	if b.closed {
		return errBatchClosed
	}
	b.writes = append(b.writes, keyValue{key: string(key), delete: true})
	b.size += len(key)
	return nil
}

func (b *batch) Size() int {
	return b.size
}

// Write applies the writes in order and closes the batch
func (b *batch) Write() error {
	if b.closed {
		return errBatchClosed
	}
	start := time.Now()
	defer func() { b.db.listener.OnIO(true, time.Since(start)) }()

	b.db.lock.Lock()
	defer b.db.lock.Unlock()

	if b.db.db == nil {
		return errDBClosed
	}
	for _, kv := range b.writes {
		if kv.delete {
			delete(b.db.db, kv.key)
			continue
		}
		b.db.db[kv.key] = kv.value
	}
	b.closed = true
	return nil
}

func (b *batch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
	b.closed = false
}

func (b *batch) Close() error {
	b.writes = nil
	b.size = 0
	b.closed = true
	return nil
}

type snapshot struct {
	db       map[string][]byte
	listener db.EventListener
}

func (s *snapshot) Has(key []byte) (bool, error) {
	if s.db == nil {
		return false, errDBClosed
	}
	_, ok := s.db[string(key)]
	return ok, nil
}

func (s *snapshot) Get(key []byte, cb func(value []byte) error) error {
	defer s.listener.OnIO(false, 0)
	if s.db == nil {
		return errDBClosed
	}
	val, ok := s.db[string(key)]
	if !ok {
		return db.ErrKeyNotFound
	}
	return cb(val)
}

func (s *snapshot) Close() error {
	s.db = nil
	return nil
}
