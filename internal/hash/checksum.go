package hash

import "github.com/cespare/xxhash/v2"

// Checksum computes the xxHash64 digest of a chunk payload. It is stored per
// chunk in the container index and verified on every lazy chunk read.
func Checksum(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// ID computes the xxHash64 of a node path, used for fast child-name probes.
func ID(name string) uint64 {
	return xxhash.Sum64String(name)
}
