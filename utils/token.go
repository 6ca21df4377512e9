package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewShareCode returns a 6-char uppercase hex code (3 random bytes).
// Callers must check it for uniqueness before accepting it.
func NewShareCode() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return strings.ToUpper(hex.EncodeToString(b))
}

// NewGuestToken returns the opaque bearer credential issued to a guest at join time.
func NewGuestToken() string {
	return uuid.NewString()
}
