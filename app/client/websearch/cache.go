package websearch

import (
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// cache keeps the most recently inserted queries and evicts the oldest
// insertion once size is reached.
type cache struct {
	mu    sync.Mutex
	size  int
	items *orderedmap.OrderedMap[string, []Result]
}

func newCache(size int) *cache {
	return &cache{
		size:  size,
		items: orderedmap.New[string, []Result](),
	}
}

func (c *cache) get(key string) ([]Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.items.Get(key)
}

func (c *cache) put(key string, results []Result) {
	if c.size <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items.Get(key); !exists {
		for c.items.Len() >= c.size {
			c.items.Delete(c.items.Oldest().Key)
		}
	}

	c.items.Set(key, results)
}

func (c *cache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.items.Len()
}
