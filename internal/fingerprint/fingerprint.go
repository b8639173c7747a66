// Package fingerprint computes 64-bit content hashes of generated SQL so
// callers can cheaply detect changed output across regenerations of the same
// mapping document.
package fingerprint

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// Sum returns the xxh3 hash of b.
func Sum(b []byte) uint64 { return xxh3.Hash(b) }

// SumString returns the xxh3 hash of s.
func SumString(s string) uint64 { return xxh3.HashString(s) }

// Hex formats a fingerprint as a fixed-width lowercase hex string.
func Hex(fp uint64) string { return fmt.Sprintf("%016x", fp) }
