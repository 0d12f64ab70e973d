package imaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDigestIsContentAddressed(t *testing.T) {
	a := Digest([]byte("payload"))
	b := Digest([]byte("payload"))
	c := Digest([]byte("other payload"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestSessionCache(t *testing.T) {
	cache := NewSessionCache()

	_, ok := cache.Get("missing")
	assert.False(t, ok)

	cache.Put("k", []byte("v"))
	got, ok := cache.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)
	assert.Equal(t, 1, cache.Len())
}
