package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigests(t *testing.T) {
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", MD5Hex("a", "b", "c"))
	assert.Equal(t,
		"ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f",
		SHA512Hex("abc"))
	assert.Equal(t, "ungWv48Bz+pBQUDeXa4iI7ADYaOWF3qctBD/YfIAFa0=", SHA256Base64([]byte("abc")))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", SHA256Hex([]byte("abc")))
	// RFC 4231 test case 2.
	assert.Equal(t,
		"5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843",
		HMACSHA256Hex("Jefe", []byte("what do ya want for nothing?")))
}

func TestSecureEqual(t *testing.T) {
	assert.True(t, SecureEqual("abc", "abc"))
	assert.False(t, SecureEqual("abc", "abd"))
	assert.False(t, SecureEqual("abc", ""))
	assert.True(t, SecureEqualFold("ABCDEF", "abcdef"))
}

func TestAmountsEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"50000", "50000", true},
		{"50000", "50000.00", true},
		{"50000", "5e4", true},
		{"50000", "50001", false},
		{"", "0", false},
		{"abc", "abc", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AmountsEqual(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "<empty>", Fingerprint(""))
	assert.Len(t, Fingerprint("secret"), 8)
	assert.NotEqual(t, Fingerprint("a"), Fingerprint("b"))
}
