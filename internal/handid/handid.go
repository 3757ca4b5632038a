// Package handid generates hand ids: a UUIDv7 in TypeID form, so ids sort by
// creation time and stay short enough for file names.
package handid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Prefix starts every hand id.
const Prefix = "hand_"

// Crockford base32, lower case, as used by TypeID.
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

const encodedLen = 26

// New returns a fresh hand id.
func New() string {
	return Encode(uuid.Must(uuid.NewV7()))
}

// NewSeed returns a random hand seed. Seeds decide every card of a hand and
// are never derived from the id.
func NewSeed() string {
	return uuid.NewString()
}

// Encode renders id as a prefixed 26-character base32 string. The 128 bits
// are read as a 130-bit number with two leading zero bits.
func Encode(id uuid.UUID) string {
	out := make([]byte, encodedLen)
	for i := range out {
		var v byte
		for b := range 5 {
			pos := i*5 + b - 2
			v <<= 1
			if pos >= 0 && id[pos/8]&(0x80>>(pos%8)) != 0 {
				v |= 1
			}
		}
		out[i] = alphabet[v]
	}
	return Prefix + string(out)
}

// Parse decodes a hand id back to its UUID.
func Parse(s string) (uuid.UUID, error) {
	var id uuid.UUID
	body, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		return id, fmt.Errorf("hand id %q: missing %q prefix", s, Prefix)
	}
	if len(body) != encodedLen {
		return id, fmt.Errorf("hand id %q: want %d characters after the prefix, got %d", s, encodedLen, len(body))
	}
	if body[0] > '7' {
		return id, fmt.Errorf("hand id %q: first character must be 0-7", s)
	}
	for i := range encodedLen {
		v := strings.IndexByte(alphabet, body[i])
		if v < 0 {
			return id, fmt.Errorf("hand id %q: invalid character %q at %d", s, body[i], i)
		}
		for b := range 5 {
			pos := i*5 + b - 2
			if pos >= 0 && v&(0x10>>b) != 0 {
				id[pos/8] |= 0x80 >> (pos % 8)
			}
		}
	}
	return id, nil
}

// Validate reports whether s is a well-formed hand id.
func Validate(s string) error {
	_, err := Parse(s)
	return err
}
