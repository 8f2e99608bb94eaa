package db

import (
	"bytes"
	"fmt"
)

// Pebble does not support buckets like Bolt or MDBX does.
// So, one needs to keep track of a global prefix list and use them for queries
// to differentiate between different groups of Keys as a poor man's bucket alternative.
type Bucket byte

const (
	ContractNonce     Bucket = iota // contract address -> nonce
	ContractStorage                 // contract address + storage key -> value
	ContractClassHash               // contract address -> class hash
	ChainHeight                     // latest height seeded into this store
)

func (b Bucket) String() string {
	switch b {
	case ContractNonce:
		return "ContractNonce"
	case ContractStorage:
		return "ContractStorage"
	case ContractClassHash:
		return "ContractClassHash"
	case ChainHeight:
		return "ChainHeight"
	default:
		return fmt.Sprintf("Bucket(%d)", byte(b))
	}
}

// Key flattens a prefix and series of byte arrays into a single []byte
func (b Bucket) Key(key ...[]byte) []byte {
	return append([]byte{byte(b)}, bytes.Join(key, []byte{})...)
}
