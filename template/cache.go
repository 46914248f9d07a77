package template

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Yamashou/gqlblock/schema"
)

type cacheKey struct {
	schema   *schema.Schema
	endpoint string
	baseType string
}

// Cache memoizes Synthesize per schema snapshot. A replaced schema never hits
// the entries of its predecessor. Cached templates are shared and must not be
// modified.
type Cache struct {
	entries *lru.Cache[cacheKey, []*Template]
}

func NewCache(size int) (*Cache, error) {
	entries, err := lru.New[cacheKey, []*Template](size)
	if err != nil {
		return nil, fmt.Errorf("create template cache: %w", err)
	}

	return &Cache{entries: entries}, nil
}

func (c *Cache) Synthesize(s *schema.Schema, endpoint, baseType string) []*Template {
	key := cacheKey{schema: s, endpoint: endpoint, baseType: baseType}
	if templates, ok := c.entries.Get(key); ok {
		return templates
	}

	templates := Synthesize(s, endpoint, baseType)
	c.entries.Add(key, templates)

	return templates
}

// Forget drops every entry synthesized for endpoint.
func (c *Cache) Forget(endpoint string) {
	for _, key := range c.entries.Keys() {
		if key.endpoint == endpoint {
			c.entries.Remove(key)
		}
	}
}
