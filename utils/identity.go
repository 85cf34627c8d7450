package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SafeEmailKey maps an email address to a storage-safe key: trimmed,
// lowercased, with every "." replaced by "_". The substitution is lossy;
// addresses differing only by "."-vs-"_" placement collide. That matches the
// existing dataset and is kept as-is.
func SafeEmailKey(email string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(email)), ".", "_")
}

// HashPassword returns the unsalted SHA-256 hex digest of a password. This is
// the application-level copy stored in the profile record, not the credential
// used for authentication.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
