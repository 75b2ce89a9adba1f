package order

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var numberPattern = regexp.MustCompile(`^ORD-\d{8}-[0-9a-z]{6}$`)

func TestNewNumber_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.Regexp(t, numberPattern, NewNumber())
	}
}

func TestNewNumber_Varies(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		seen[NewNumber()] = true
	}
	// 100 draws from 36^6 values colliding down to a handful would mean
	// the generator is broken.
	assert.Greater(t, len(seen), 90)
}
