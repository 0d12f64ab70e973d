package imaging

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Digest returns the hex fingerprint of a raw image payload. Byte-identical
// payloads always share a digest, which is what the import and export paths
// key their deduplication on.
func Digest(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// SessionCache is a content-addressed cache scoped to one import or export
// call. It is built up during the call and discarded with it, so it never
// grows beyond the distinct images of a single workbook.
type SessionCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func NewSessionCache() *SessionCache {
	return &SessionCache{entries: make(map[string][]byte)}
}

func (c *SessionCache) Get(digest string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[digest]
	return data, ok
}

func (c *SessionCache) Put(digest string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[digest] = data
}

func (c *SessionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
