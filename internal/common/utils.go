package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates size random bytes and returns them hex
// encoded, so the result is 2*size characters long.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites b with zeros. Used for plaintext passwords read
// from the terminal. A nil slice is ignored.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// NewObjectID returns a fresh 24-character lowercase hex identifier.
func NewObjectID() (string, error) {
	return MakeRandHexString(ObjectIDLength / 2)
}

// IsObjectID reports whether s has the exact shape of an identifier:
// ObjectIDLength hex characters. Ids of any other shape are treated as
// not found before any lookup is attempted.
func IsObjectID(s string) bool {
	if len(s) != ObjectIDLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
