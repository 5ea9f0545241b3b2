// Package credential defines discovered credentials, their stable hashes,
// and first-seen deduplication.
package credential

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Confidence expresses how likely a discovered value is a real credential.
type Confidence int

const (
	Low Confidence = iota
	Medium
	High
	VeryHigh
)

func (c Confidence) String() string {
	switch c {
	case Low:
		return "low"
	case Medium:
		return "medium"
	case High:
		return "high"
	case VeryHigh:
		return "very_high"
	default:
		return "unknown"
	}
}

// ParseConfidence parses the String form of a Confidence.
func ParseConfidence(s string) (Confidence, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return Low, nil
	case "medium":
		return Medium, nil
	case "high":
		return High, nil
	case "very_high", "veryhigh":
		return VeryHigh, nil
	}
	return Low, fmt.Errorf("unknown confidence %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Confidence) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Confidence) UnmarshalText(b []byte) error {
	parsed, err := ParseConfidence(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Credential is a single value discovered in a configuration source.
type Credential struct {
	Provider     string     `json:"provider"`
	Source       string     `json:"source"`
	ValueType    ValueType  `json:"value_type"`
	Confidence   Confidence `json:"confidence"`
	Value        string     `json:"-"`
	Hash         string     `json:"hash"`
	DiscoveredAt time.Time  `json:"discovered_at"`
}

// New builds a credential and computes its hash.
func New(provider, source string, vt ValueType, value string, conf Confidence) Credential {
	return Credential{
		Provider:     provider,
		Source:       source,
		ValueType:    vt,
		Confidence:   conf,
		Value:        value,
		Hash:         Hash(provider, vt, value),
		DiscoveredAt: time.Now().UTC(),
	}
}

// Hash returns the hex SHA-256 of provider, value type key and value. The
// source does not participate: one secret found by two scanners has one hash.
func Hash(provider string, vt ValueType, value string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(vt.Key()))
	h.Write([]byte{0})
	h.Write([]byte(value))
	return hex.EncodeToString(h.Sum(nil))
}

// Redacted returns a display-safe form of the value. Non-secret value types
// are returned unchanged.
func (c Credential) Redacted() string {
	if c.ValueType.Kind != KindAPIKey {
		return c.Value
	}
	return Redact(c.Value)
}

// Redact hides all but the last four characters of longer secrets.
func Redact(v string) string {
	if len(v) > 8 {
		return "****" + v[len(v)-4:]
	}
	if len(v) > 2 {
		return v[:2] + "****"
	}
	return "****"
}

// Mask renders a secret as first4***last4, or "****" when it is too short
// to reveal anything safely.
func Mask(v string) string {
	if len(v) <= 8 {
		return "****"
	}
	return v[:4] + "***" + v[len(v)-4:]
}
