package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainTable prefixes table hashes. The version suffix allows the
// encoding to change without colliding with old hashes.
const DomainTable = "atengine/table/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TableHash identifies a compiled table by content. Two tables with the
// same commands in the same order hash identically; reordering changes
// the hash because order decides abbreviation ties.
func TableHash(spec *TableSpec) (string, error) {
	if spec == nil {
		return "", fmt.Errorf("TableHash: nil table")
	}
	canonical, err := MarshalCanonical(spec.Canonical())
	if err != nil {
		return "", fmt.Errorf("TableHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTable, canonical), nil
}

// MustTableHash is like TableHash but panics on error.
// Use only in tests or when the table is known to be valid.
func MustTableHash(spec *TableSpec) string {
	h, err := TableHash(spec)
	if err != nil {
		panic(err)
	}
	return h
}
