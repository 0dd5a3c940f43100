// Package canonical provides canonical JSON serialization and content
// hashing. Canonical form is the basis for template drift detection,
// fixture pack hashes, selection artifacts, and cache keys: two
// semantically identical values must serialize to byte-identical JSON
// regardless of source key order.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Marshal serializes a value to canonical JSON.
//
// The value is first marshalled to JSON, decoded into generic
// containers, and marshalled again. encoding/json sorts map keys during
// the second pass, so the output is independent of the key order of the
// source object. Struct field order is normalized the same way.
func Marshal(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical marshal: %w", err)
	}

	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("canonical normalize: %w", err)
	}

	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("canonical remarshal: %w", err)
	}

	return out, nil
}

// Hash computes the hex-encoded SHA-256 hash of the canonical JSON form
// of a value.
func Hash(v interface{}) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}

// HashBytes computes the hex-encoded SHA-256 hash of raw bytes.
// Returns an empty string for empty input.
func HashBytes(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashString is a convenience wrapper around HashBytes for strings.
func HashString(s string) string {
	return HashBytes([]byte(s))
}
