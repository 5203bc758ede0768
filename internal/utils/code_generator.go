package utils

import (
	"crypto/rand"
	"math/big"
)

// Character set for external resource codes: uppercase letters and numbers only
const resourceCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateResourceCode generates an 11-character external code for a resource.
// Format: [A-Z0-9]{11} (ex: FR34JJO390G). Codes are opaque, globally unique
// once persisted and never change after issue.
func GenerateResourceCode() string {
	const codeLength = 11
	result := make([]byte, codeLength)

	charsetLen := big.NewInt(int64(len(resourceCodeChars)))

	for i := 0; i < codeLength; i++ {
		randomIndex, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			// Fallback to a deterministic index if crypto/rand fails.
			// This should never happen in practice.
			randomIndex = big.NewInt(int64(i % len(resourceCodeChars)))
		}
		result[i] = resourceCodeChars[randomIndex.Int64()]
	}

	return string(result)
}
