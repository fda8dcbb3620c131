package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHash_Format(t *testing.T) {
	h := Hash("+15551234567")

	assert.Len(t, h, 64)
	assert.Regexp(t, "^[0-9a-f]{64}$", h)
}

func TestHash_Deterministic(t *testing.T) {
	assert.Equal(t, Hash("+15551234567"), Hash("+15551234567"))
	assert.NotEqual(t, Hash("+15551234567"), Hash("+15551234568"))
}

func TestHash_KnownVector(t *testing.T) {
	// SHA-256 of the empty string.
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		Hash(""))
}

func TestVerify(t *testing.T) {
	h := Hash("+15551234567")

	assert.True(t, Verify("+15551234567", h))
	assert.False(t, Verify("+15551234568", h))
	assert.False(t, Verify("+15551234567", "deadbeef"))
}
