package order

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const numberSuffixLen = 6

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NumberGenerator produces order numbers of the form
// ORD-YYYYMMDD-xxxxxx where the suffix is six random base36 characters.
// Collisions within a day are possible but rare; the service retries on
// the unique-key violation.
type NumberGenerator func() string

func NewNumber() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("reading random bytes: %v", err))
	}

	n := binary.BigEndian.Uint64(buf[:])
	var suffix strings.Builder
	suffix.Grow(numberSuffixLen)
	for i := 0; i < numberSuffixLen; i++ {
		suffix.WriteByte(base36Alphabet[n%36])
		n /= 36
	}

	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), suffix.String())
}
