package db

import (
	"io"
	"time"
)

// Represents a data store that can read from the database
type KeyValueReader interface {
	// Checks if a key exists in the data store
	Has(key []byte) (bool, error)
	// Retrieves a value for a given key if it exists, the value is only valid inside cb
	Get(key []byte, cb func(value []byte) error) error
}

// Represents a data store that can write to the database
type KeyValueWriter interface {
	// Inserts a given value into the data store
	Put(key []byte, value []byte) error
	// Deletes a given key from the data store
	Delete(key []byte) error
}

// Batch collects writes and applies them atomically on Write
type Batch interface {
	KeyValueWriter
	// Size of the pending writes in bytes
	Size() int
	Write() error
	Reset()
	// Close releases the batch, writes not written yet are dropped
	Close() error
}

type Batcher interface {
	NewBatch() Batch
}

// Snapshot is a read-only, point-in-time view of the store
type Snapshot interface {
	KeyValueReader
	io.Closer
}

type Snapshotter interface {
	NewSnapshot() Snapshot
}

// Represents a key-value data store that can handle different operations
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	Batcher
	Snapshotter
	// WithListener registers an EventListener that observes every read and write
	WithListener(listener EventListener) KeyValueStore
	io.Closer
}

type EventListener interface {
	OnIO(write bool, duration time.Duration)
}

type SelectiveListener struct {
	OnIOCb func(write bool, duration time.Duration)
}

func (l *SelectiveListener) OnIO(write bool, duration time.Duration) {
	if l.OnIOCb != nil {
		l.OnIOCb(write, duration)
	}
}
