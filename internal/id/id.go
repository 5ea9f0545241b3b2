// Package id derives stable identifiers for discovered configuration.
package id

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Stable returns a deterministic identifier for parts.
// Format: <prefix>_<12 hex chars> (e.g., "cfg_3f9a0c1b2d4e")
// The same prefix and parts always produce the same identifier, so a file
// rescanned later keeps its id.
func Stable(prefix string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return prefix + "_" + hex.EncodeToString(sum[:6])
}

// Valid reports whether s has the shape produced by Stable for prefix.
func Valid(prefix, s string) bool {
	rest, ok := strings.CutPrefix(s, prefix+"_")
	if !ok || len(rest) != 12 {
		return false
	}
	_, err := hex.DecodeString(rest)
	return err == nil
}
