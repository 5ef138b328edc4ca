package types

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// HashSize is the expected size of a hash in bytes
const HashSize = 32

// Hash is an opaque 256-bit content commitment. The registry never
// inspects its structure.
type Hash struct {
	Data []byte
}

// NewHash creates a Hash from bytes, returning error if invalid.
// Use for untrusted input (network, files).
// Copies input data to prevent caller from modifying internal state.
func NewHash(data []byte) (Hash, error) {
	if len(data) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(data))
	}
	copied := make([]byte, HashSize)
	copy(copied, data)
	return Hash{Data: copied}, nil
}

// MustNewHash creates a Hash, panicking if invalid.
// Use only for trusted internal data.
func MustNewHash(data []byte) Hash {
	h, err := NewHash(data)
	if err != nil {
		panic(err)
	}
	return h
}

// HashBytes computes the SHA-256 hash of data
func HashBytes(data []byte) Hash {
	h := sha256.Sum256(data)
	return Hash{Data: h[:]}
}

// HashEmpty returns an empty (zero) hash
func HashEmpty() Hash {
	return Hash{Data: make([]byte, HashSize)}
}

// IsHashEmpty returns true if hash is nil or all zeros
func IsHashEmpty(h *Hash) bool {
	if h == nil {
		return true
	}
	for _, b := range h.Data {
		if b != 0 {
			return false
		}
	}
	return true
}

// HashEqual compares two hashes
func HashEqual(a, b Hash) bool {
	return bytes.Equal(a.Data, b.Data)
}

// HashString returns the 0x-prefixed hex encoding of a hash
func HashString(h Hash) string {
	return "0x" + hex.EncodeToString(h.Data)
}

// ParseHash parses a hex-encoded hash, with or without a 0x prefix
func ParseHash(s string) (Hash, error) {
	s = strings.TrimPrefix(s, "0x")
	data, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid hash encoding: %w", err)
	}
	return NewHash(data)
}

// MarshalJSON encodes the hash as a 0x-prefixed hex string
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(HashString(h))
}

// UnmarshalJSON decodes a 0x-prefixed hex string
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseHash(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
