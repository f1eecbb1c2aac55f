// Package cache provides the bounded LRU cache behind the vertex patch cache.
//
// Elastic keeps recency in a doubly-linked list and moves an entry to the
// front on every Get. Inserts may overshoot the maximum size by an
// elasticity margin; the first insert past the margin prunes the least
// recently used entries back to the maximum in one batch.
//
//	c := cache.NewElastic[uint64, *Stream](2000, 200, release)
//	c.Add(hash, stream)
//	s, ok := c.Get(hash)
//
// Elastic is safe for concurrent use and must not be copied.
package cache
