package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// HashRefreshToken hashes a refresh token with SHA-256 for storage.
// Refresh tokens are high-entropy random strings, so a fast hash is
// sufficient here, unlike passwords.
func HashRefreshToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// CheckRefreshTokenHash compares a plaintext refresh token against a stored
// hash in constant time.
func CheckRefreshTokenHash(token, storedHash string) bool {
	computed := HashRefreshToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1
}
