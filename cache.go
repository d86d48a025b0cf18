package gridify

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const defaultCacheSize = 256

// SyntaxCache keeps parsed filters so repeated list queries skip lexing and
// parsing. When full, the whole cache is dropped and refilled.
//
// Cached trees are shared; they are only read after parsing. A cache must
// always be used with the same Config.
type SyntaxCache struct {
	mu    sync.RWMutex
	items map[uint64]cachedTree
	max   int
}

type cachedTree struct {
	text string
	tree *SyntaxTree
}

// NewSyntaxCache creates a cache holding up to size trees
func NewSyntaxCache(size int) *SyntaxCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	return &SyntaxCache{items: make(map[uint64]cachedTree, size), max: size}
}

// Parse returns the cached tree for text, parsing it on a miss
func (c *SyntaxCache) Parse(text string, cfg Config) *SyntaxTree {
	key := xxhash.Sum64String(text)
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()
	if ok && item.text == text {
		return item.tree
	}

	tree := cfg.parse(text)
	c.mu.Lock()
	if len(c.items) >= c.max {
		c.items = make(map[uint64]cachedTree, c.max)
	}
	c.items[key] = cachedTree{text: text, tree: tree}
	c.mu.Unlock()
	return tree
}

// Len returns the number of cached trees
func (c *SyntaxCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
