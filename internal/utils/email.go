package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// NormalizeEmail lower-cases and trims an address so that the same
// subscriber always produces the same identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashEmail returns the hex SHA-256 digest of the normalized address.
// Identity keys are hashed so plain-text addresses are never retained
// in memory or shipped to analytics.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(NormalizeEmail(email)))
	return hex.EncodeToString(sum[:])
}

// ClientIDFromEmail derives a stable GA4 client id from an address.
// The measurement protocol expects "<int>.<int>"; we take the first
// eight digest bytes so repeat signups from the same subscriber
// correlate across process restarts.
func ClientIDFromEmail(email string) string {
	sum := sha256.Sum256([]byte(NormalizeEmail(email)))
	hi := binary.BigEndian.Uint32(sum[0:4])
	lo := binary.BigEndian.Uint32(sum[4:8])
	return fmt.Sprintf("%d.%d", hi, lo)
}

func ExtractDomainFromEmail(email string) string {
	if email == "" {
		return ""
	}

	email = strings.TrimSpace(email)

	// Handle potential angle brackets in email (e.g., "Name <email@domain.com>")
	if strings.Contains(email, "<") && strings.Contains(email, ">") {
		startIdx := strings.LastIndex(email, "<") + 1
		endIdx := strings.LastIndex(email, ">")
		if startIdx > 0 && endIdx > startIdx {
			email = email[startIdx:endIdx]
		}
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}

	return strings.ToLower(strings.TrimSpace(parts[1]))
}
