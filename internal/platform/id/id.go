// Package id generates opaque identifiers for portal records.
//
// Identifiers are UUIDv4 bytes encoded as base32 (RFC 4648) without padding,
// lowercased to 26 characters. The encoding keeps IDs URL-safe and
// case-insensitive-filesystem-safe while preserving UUID randomness.
package id

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strings"
)

// NewID returns a new random identifier.
func NewID() (string, error) {
	var raw [16]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	// Stamp UUIDv4 version and RFC 4122 variant bits.
	raw[6] = (raw[6] & 0x0F) | 0x40
	raw[8] = (raw[8] & 0x3F) | 0x80

	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw[:])
	return strings.ToLower(encoded), nil
}
