package model

import (
	"fmt"

	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash computes the stable 64-bit identity hash of a fingerprint string.
func Hash(data []byte) (uint64, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}

// ID renders the compact node identifier derived from a fingerprint.
func ID(fp Fingerprint) string {
	sum, err := Hash([]byte(fp))
	if err != nil {
		// highwayhash only fails on a bad key length; the key is fixed.
		return string(fp)
	}
	return fmt.Sprintf("%016x", sum)
}
