package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Digest returns the hex SHA-256 of the parts joined with "|".
func Digest(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
