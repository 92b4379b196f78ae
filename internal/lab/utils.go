package lab

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRandomID returns 16 hex characters of crypto randomness. Used for drug
// component instance ids and generated session ids.
func NewRandomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
