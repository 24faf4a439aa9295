// Package hashkit provides the 64-bit hash functions used to place servers
// and request keys on the ring.
package hashkit

import (
	"fmt"
	"hash/fnv"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/xxh3"
)

// Func maps an arbitrary key to a position in the 64-bit hash space.
// Implementations must be deterministic within a single process run. They do
// not need to be cryptographically secure, but must distribute well enough
// that virtual replicas spread roughly uniformly around the space.
type Func func(key []byte) uint64

// XXHash64 hashes key with xxHash64. It is the default ring hash.
func XXHash64(key []byte) uint64 {
	return xxhash.Sum64(key)
}

// XXH3 hashes key with XXH3-64.
// https://github.com/rurban/smhasher/blob/master/doc/xxh3low.txt
func XXH3(key []byte) uint64 {
	return xxh3.Hash(key)
}

// FNV1a64 hashes key with 64-bit FNV-1a.
func FNV1a64(key []byte) uint64 {
	h := fnv.New64a()
	h.Write(key)
	return h.Sum64()
}

// ByName returns the hash function registered under name. The empty name
// selects the default. Known names are "xxhash", "xxh3" and "fnv1a".
func ByName(name string) (Func, error) {
	switch name {
	case "", "xxhash":
		return XXHash64, nil
	case "xxh3":
		return XXH3, nil
	case "fnv1a":
		return FNV1a64, nil
	}
	return nil, fmt.Errorf("hashkit: unknown hash function %q", name)
}
