package columns

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strconv"
	"sync"

	"github.com/goliatone/go-gridform/pkg/model"
)

// Cache memoises Build keyed by the structural hash of the header mapping. Two
// mappings with the same keys and labels in the same order share an entry.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string][]Descriptor[T]
	opts    []Option[T]
}

// NewCache returns an empty cache. opts are applied on every Build.
func NewCache[T any](opts ...Option[T]) *Cache[T] {
	return &Cache[T]{
		entries: make(map[string][]Descriptor[T]),
		opts:    opts,
	}
}

// Get returns the cached descriptors for headers, building them on a miss.
// The returned slice is shared; callers must not mutate it.
func (c *Cache[T]) Get(headers model.Headers) []Descriptor[T] {
	key := Hash(headers)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.entries[key]; ok {
		return cached
	}
	built := Build(headers, c.opts...)
	c.entries[key] = built
	return built
}

// Invalidate drops the entry for headers.
func (c *Cache[T]) Invalidate(headers model.Headers) {
	key := Hash(headers)
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Reset drops every entry.
func (c *Cache[T]) Reset() {
	c.mu.Lock()
	c.entries = make(map[string][]Descriptor[T])
	c.mu.Unlock()
}

// Len reports the number of cached mappings.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Hash returns the structural hash of headers. Each key and label is length
// prefixed so ("ab","c") and ("a","bc") never collide.
func Hash(headers model.Headers) string {
	h := sha256.New()
	for _, header := range headers {
		writePart(h, header.Key)
		writePart(h, header.Label)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writePart(w io.Writer, s string) {
	_, _ = w.Write([]byte(strconv.Itoa(len(s))))
	_, _ = w.Write([]byte{':'})
	_, _ = w.Write([]byte(s))
}
