package types

import "encoding/json"

// CanonicalJSON encodes v deterministically: object keys sorted
// lexicographically, compact separators. Two structurally equal values
// always produce identical bytes, so the encoding is safe to hash.
func CanonicalJSON(v interface{}) ([]byte, error) {
	// Round-trip through interface{} so struct field order is replaced
	// by the sorted map-key order encoding/json guarantees for maps.
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(generic)
}

// CanonicalHash returns the SHA-256 hash of the canonical encoding of v
func CanonicalHash(v interface{}) (Hash, error) {
	blob, err := CanonicalJSON(v)
	if err != nil {
		return Hash{}, err
	}
	return HashBytes(blob), nil
}
