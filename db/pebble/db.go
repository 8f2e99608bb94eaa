package pebble

import (
	"errors"
	"io"
	"time"

	"github.com/NethermindEth/starknet-validator/db"
	"github.com/NethermindEth/starknet-validator/utils"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

const (
	// minCache is the minimum amount of memory in megabytes to allocate to pebble read and write caching.
	minCache = 8
	megabyte = 1 << 20
)

var _ db.KeyValueStore = (*DB)(nil)

type DB struct {
	pebble   *pebble.DB
	listener db.EventListener
}

// New opens a new database at the given path
func New(path string, cacheSizeMB uint, maxOpenFiles int, logger pebble.Logger) (*DB, error) {
	// Ensure that the specified cache size meets a minimum threshold.
	cacheSizeMB = max(cacheSizeMB, minCache)
	cache := pebble.NewCache(int64(cacheSizeMB * megabyte))
	defer cache.Unref()

	return newPebble(path, &pebble.Options{
		Logger:       logger,
		Cache:        cache,
		MaxOpenFiles: maxOpenFiles,
	})
}

// NewMem opens a new in-memory database
func NewMem() (*DB, error) {
	return newPebble("", &pebble.Options{
		FS: vfs.NewMem(),
	})
}

func newPebble(path string, options *pebble.Options) (*DB, error) {
	pDB, err := pebble.Open(path, options)
	if err != nil {
		return nil, err
	}
	return &DB{pebble: pDB, listener: &db.SelectiveListener{}}, nil
}

// WithListener registers an EventListener
func (d *DB) WithListener(listener db.EventListener) db.KeyValueStore {
	d.listener = listener
	return d
}

func (d *DB) Has(key []byte) (bool, error) {
	return has(d.pebble, key)
}

func (d *DB) Get(key []byte, cb func(value []byte) error) error {
	start := time.Now()
	defer func() { d.listener.OnIO(false, time.Since(start)) }()

	return get(d.pebble, key, cb)
}

func (d *DB) Put(key, value []byte) error {
	start := time.Now()
	defer func() { d.listener.OnIO(true, time.Since(start)) }()

	return d.pebble.Set(key, value, pebble.Sync)
}

func (d *DB) Delete(key []byte) error {
	start := time.Now()
	defer func() { d.listener.OnIO(true, time.Since(start)) }()

	return d.pebble.Delete(key, pebble.Sync)
}

func (d *DB) NewBatch() db.Batch {
	return &batch{batch: d.pebble.NewBatch(), listener: d.listener}
}

func (d *DB) NewSnapshot() db.Snapshot {
	return &snapshot{snapshot: d.pebble.NewSnapshot(), listener: d.listener}
}

// Close : see io.Closer.Close
func (d *DB) Close() error {
	return d.pebble.Close()
}

// Impl returns the underlying pebble handle
func (d *DB) Impl() *pebble.DB {
	return d.pebble
}

type reader interface {
	Get(key []byte) ([]byte, io.Closer, error)
}

func has(r reader, key []byte) (bool, error) {
	_, closer, err := r.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, closer.Close()
}

func get(r reader, key []byte, cb func(value []byte) error) error {
	val, closer, err := r.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return db.ErrKeyNotFound
		}
		return err
	}

	return utils.RunAndWrapOnError(closer.Close, cb(val))
}
