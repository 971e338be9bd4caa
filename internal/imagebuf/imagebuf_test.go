package imagebuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtInBounds(t *testing.T) {
	samples := []byte{1, 2, 3, 4, 5, 6}
	b := New(3, 2, samples)
	v, ok := b.At(1, 1)
	assert.True(t, ok)
	assert.Equal(t, byte(5), v)
}

func TestAtOutOfBounds(t *testing.T) {
	b := New(3, 2, make([]byte, 6))
	_, ok := b.At(3, 0)
	assert.False(t, ok)
	_, ok = b.At(-1, 0)
	assert.False(t, ok)
}

func TestNewPanicsOnLengthMismatch(t *testing.T) {
	assert.Panics(t, func() {
		New(3, 2, make([]byte, 5))
	})
}

func TestSetClipsSilently(t *testing.T) {
	b := New(2, 2, make([]byte, 4))
	assert.NotPanics(t, func() {
		b.Set(5, 5, 9)
	})
}
