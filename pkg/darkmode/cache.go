package darkmode

import (
	"image/color"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// InvertedColorCacheSize bounds the number of memoized inversions.
const InvertedColorCacheSize = 1024

// invertedColorCache memoizes ColorFilter results. Not safe for concurrent
// use; a Filter is only used from the main thread.
type invertedColorCache struct {
	lru *simplelru.LRU[color.NRGBA, color.NRGBA]
}

func newInvertedColorCache() *invertedColorCache {
	lru, err := simplelru.NewLRU[color.NRGBA, color.NRGBA](InvertedColorCacheSize, nil)
	if err != nil {
		panic(err) // only fails for a non-positive size
	}
	return &invertedColorCache{lru: lru}
}

func (c *invertedColorCache) GetInvertedColor(col color.NRGBA, filter ColorFilter) color.NRGBA {
	if v, ok := c.lru.Get(col); ok {
		return v
	}
	inverted := filter.InvertColor(col)
	c.lru.Add(col, inverted)
	return inverted
}

func (c *invertedColorCache) Len() int { return c.lru.Len() }

func (c *invertedColorCache) Clear() { c.lru.Purge() }
