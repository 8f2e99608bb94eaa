// Package encoder is the CBOR codec of the component wire. Types registered with
// RegisterType are tagged, so they keep their concrete type when decoded into an interface.
package encoder

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

const maxArrayElements = 10 << 20

type codec struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var (
	mu   sync.RWMutex
	tags = cbor.NewTagSet()
	// first tag of the unassigned 65536-15309735 range,
	// https://www.iana.org/assignments/cbor-tags/cbor-tags.xhtml
	nextTag uint64 = 65536
	current        = mustCodec()
)

func newCodec() (codec, error) {
	enc, err := cbor.CanonicalEncOptions().EncModeWithTags(tags)
	if err != nil {
		return codec{}, err
	}
	dec, err := cbor.DecOptions{MaxArrayElements: maxArrayElements}.DecModeWithTags(tags)
	if err != nil {
		return codec{}, err
	}
	return codec{enc: enc, dec: dec}, nil
}

func mustCodec() codec {
	c, err := newCodec()
	if err != nil {
		panic(err)
	}
	return c
}

// RegisterType assigns the next free tag to rType. A type can be registered once.
func RegisterType(rType reflect.Type) error {
	mu.Lock()
	defer mu.Unlock()

	opts := cbor.TagOptions{EncTag: cbor.EncTagRequired, DecTag: cbor.DecTagRequired}
	if err := tags.Add(opts, rType, nextTag); err != nil {
		return fmt.Errorf("register %s: %w", rType, err)
	}
	c, err := newCodec()
	if err != nil {
		tags.Remove(rType)
		return err
	}
	current = c
	nextTag++
	return nil
}

func codecInUse() codec {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

func Marshal(v any) ([]byte, error) {
	return codecInUse().enc.Marshal(v)
}

func Unmarshal(b []byte, v any) error {
	return codecInUse().dec.Unmarshal(b, v)
}
