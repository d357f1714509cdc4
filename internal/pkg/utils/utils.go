package utils

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// GenerateRequestID generates a UUID v4 string used to correlate a delivery
// across logs and the callback log table.
func GenerateRequestID() string {
	return uuid.New().String()
}

// MD5Hex returns the lowercase hex MD5 of the concatenated parts.
func MD5Hex(parts ...string) string {
	sum := md5.Sum([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(sum[:])
}

// SHA512Hex returns the lowercase hex SHA-512 of the concatenated parts.
func SHA512Hex(parts ...string) string {
	sum := sha512.Sum512([]byte(strings.Join(parts, "")))
	return hex.EncodeToString(sum[:])
}

// SHA256Hex returns the lowercase hex SHA-256 of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SHA256Base64 returns the standard base64 SHA-256 of data.
func SHA256Base64(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// HMACSHA256 returns the raw HMAC-SHA256 of msg keyed by key.
func HMACSHA256(key string, msg []byte) []byte {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(msg)
	return mac.Sum(nil)
}

// HMACSHA256Hex returns the lowercase hex HMAC-SHA256.
func HMACSHA256Hex(key string, msg []byte) string {
	return hex.EncodeToString(HMACSHA256(key, msg))
}

// HMACSHA256Base64 returns the standard base64 HMAC-SHA256.
func HMACSHA256Base64(key string, msg []byte) string {
	return base64.StdEncoding.EncodeToString(HMACSHA256(key, msg))
}

// SecureEqual compares two strings in constant time.
func SecureEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// SecureEqualFold is SecureEqual for hex digests whose case is not fixed.
func SecureEqualFold(a, b string) bool {
	return SecureEqual(strings.ToLower(a), strings.ToLower(b))
}

// Fingerprint returns a short, non-reversible label for a secret value so it
// can be logged: the first 8 hex chars of its SHA-256.
func Fingerprint(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:4])
}

// AmountsEqual compares two decimal amount strings numerically, so "50000",
// "50000.00" and "5e4" are equal. Unparseable input never matches.
func AmountsEqual(a, b string) bool {
	x, ok := new(big.Rat).SetString(strings.TrimSpace(a))
	if !ok {
		return false
	}
	y, ok := new(big.Rat).SetString(strings.TrimSpace(b))
	if !ok {
		return false
	}
	return x.Cmp(y) == 0
}
