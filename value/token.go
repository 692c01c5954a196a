package value

import (
	"crypto/rand"
	"encoding/hex"
	"sync/atomic"

	"golang.org/x/crypto/blake2b"
)

// Token is an opaque identity: encapsulation type tokens and keyed
// dynamic/static variable tokens are all *Token. Equality is pointer
// equality; the id exists only so tests and debug output have
// something to print.
type Token struct {
	id [16]byte
}

func (*Token) isValue() {}

var tokenCounter uint64

// NewToken derives a fresh, practically-collision-free token from a
// monotonic counter plus 16 bytes of crypto/rand, hashed through
// blake2b so the id doesn't just leak the counter value verbatim.
func NewToken() *Token {
	var seed [24]byte
	n := atomic.AddUint64(&tokenCounter, 1)
	for i := 0; i < 8; i++ {
		seed[i] = byte(n >> (8 * i))
	}
	if _, err := rand.Read(seed[8:]); err != nil {
		// crypto/rand failing is a host problem, not a Lisp-level error.
		panic("value: crypto/rand unavailable: " + err.Error())
	}
	sum := blake2b.Sum256(seed[:])
	t := &Token{}
	copy(t.id[:], sum[:16])
	return t
}

// String renders the token's id as hex, for debug output only — never
// used by the writer's user-visible opaque rendering, which prints no
// identity at all.
func (t *Token) String() string {
	return hex.EncodeToString(t.id[:])
}
