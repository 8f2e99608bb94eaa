package crypto

import (
	"github.com/NethermindEth/starknet-validator/core/felt"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	pedersenhash "github.com/consensys/gnark-crypto/ecc/stark-curve/pedersen-hash"
	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// storage addresses are derived over and over for the same few accounts, so results are cached
const pedersenCacheSize = 1 << 16

type lruKey struct {
	x, y felt.Felt
}

var lruPedersen, _ = lru.New(pedersenCacheSize)

var pedersenCache = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "validator",
	Name:      "pedersen_cache",
	Help:      "Pedersen hash cache lookups",
}, []string{"hit"})

// Pedersen implements the [Pedersen hash].
//
// [Pedersen hash]: https://docs.starknet.io/documentation/develop/Hashing/hash-functions/#pedersen_hash
func Pedersen(a, b *felt.Felt) *felt.Felt {
	key := lruKey{
		x: *a, y: *b,
	}

	if res, ok := lruPedersen.Get(key); ok {
		pedersenCache.WithLabelValues("true").Inc()
		return new(felt.Felt).Set(res.(*felt.Felt))
	}

	hash := pedersenhash.Pedersen(a.Impl(), b.Impl())
	result := felt.NewFelt(&hash)
	lruPedersen.Add(key, new(felt.Felt).Set(result))
	pedersenCache.WithLabelValues("false").Inc()
	return result
}

// PedersenArray implements [Pedersen array hashing].
//
// [Pedersen array hashing]: https://docs.starknet.io/documentation/develop/Hashing/hash-functions/#array_hashing
func PedersenArray(elems ...*felt.Felt) *felt.Felt {
	var digest fp.Element
	for _, e := range elems {
		digest = pedersenhash.Pedersen(&digest, e.Impl())
	}
	digest = pedersenhash.Pedersen(&digest, new(fp.Element).SetUint64(uint64(len(elems))))
	return felt.NewFelt(&digest)
}
