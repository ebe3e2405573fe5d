package memory

import (
	lru "github.com/hashicorp/golang-lru"
)

// PageSize is the unit CachedReader fetches from the backing reader
const PageSize = 4096

// CachedReader coalesces small reads into whole-page reads with LRU eviction.
// Callers Reset it at the top of every tick so no bytes outlive a tick.
type CachedReader struct {
	backing Reader
	pages   *lru.Cache
}

// NewCachedReader creates a cache holding up to size pages
func NewCachedReader(backing Reader, size int) (*CachedReader, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}

	return &CachedReader{
		backing: backing,
		pages:   cache,
	}, nil
}

// Reset forgets every cached page
func (c *CachedReader) Reset() {
	c.pages.Purge()
}

// Len returns the number of cached pages
func (c *CachedReader) Len() int {
	return c.pages.Len()
}

// Read serves addr..addr+length from cached pages, fetching missing ones.
// A page that cannot be read whole (end of a mapping) falls back to a direct read.
func (c *CachedReader) Read(addr uint64, length int) ([]byte, error) {
	if length <= 0 {
		return c.backing.Read(addr, length)
	}

	out := make([]byte, 0, length)
	end := addr + uint64(length)
	for cur := addr; cur < end; {
		pageAddr := cur &^ (PageSize - 1)
		page, err := c.page(pageAddr)
		if err != nil {
			return c.backing.Read(addr, length)
		}

		from := cur - pageAddr
		to := uint64(PageSize)
		if end-pageAddr < to {
			to = end - pageAddr
		}
		out = append(out, page[from:to]...)
		cur = pageAddr + to
	}
	return out, nil
}

func (c *CachedReader) page(pageAddr uint64) ([]byte, error) {
	if v, ok := c.pages.Get(pageAddr); ok {
		return v.([]byte), nil
	}

	page, err := c.backing.Read(pageAddr, PageSize)
	if err != nil {
		return nil, err
	}
	c.pages.Add(pageAddr, page)
	return page, nil
}
