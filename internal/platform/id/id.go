// Package id generates and checks game identifiers.
//
// Identifiers are UUIDv4 bytes encoded as lowercase base32 (RFC 4648) with
// no padding: 26 characters, safe in URLs, file names and JWT claims.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID returns a fresh identifier.
func NewID() (string, error) {
	u, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(u[:])), nil
}

// Valid reports whether s has the shape NewID produces.
func Valid(s string) bool {
	if len(s) != 26 || strings.ToLower(s) != s {
		return false
	}
	decoded, err := encoding.DecodeString(strings.ToUpper(s))
	if err != nil || len(decoded) != 16 {
		return false
	}
	u, err := uuid.FromBytes(decoded)
	return err == nil && u.Version() == 4
}
