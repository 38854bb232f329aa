package ident

import (
	"crypto/rand"
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
)

// Room codes avoid characters that are easy to misread when spoken
// or written down (no I, O, 0, 1).
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 5
)

// NewID returns a prefixed opaque identifier, e.g. "player_9f1c...".
func NewID(prefix string) string {
	raw := uuid.New()
	return prefix + "_" + strings.ReplaceAll(raw.String(), "-", "")
}

// NewSessionToken returns an unguessable reconnect token.
func NewSessionToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// NewRoomCode returns a 5-character join code. Uniqueness across live
// rooms is enforced by the registry, not here.
func NewRoomCode() string {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out)
}
