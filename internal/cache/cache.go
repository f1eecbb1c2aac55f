package cache

import "sync"

// Default sizes of an elastic cache.
const (
	DefaultMaxSize    = 2000
	DefaultElasticity = 200
)

// Elastic is a thread-safe LRU cache that may grow past its maximum size by
// an elasticity margin before pruning. Pruning runs in one batch and brings
// the cache back to MaxSize, so a full cache pays for eviction once every
// Elasticity inserts rather than on every insert.
//
// Elastic must not be copied after creation (has mutex).
type Elastic[K comparable, V any] struct {
	mu         sync.Mutex
	entries    map[K]*entry[K, V]
	order      recencyList[K, V]
	maxSize    int
	elasticity int
	onEvict    func(K, V)

	hits      uint64
	misses    uint64
	evictions uint64
}

// NewElastic creates a cache holding up to maxSize entries, pruning when it
// exceeds maxSize+elasticity. Non-positive sizes select the defaults.
// onEvict, if not nil, is called for every pruned or purged entry, outside
// the cache lock.
func NewElastic[K comparable, V any](maxSize, elasticity int, onEvict func(K, V)) *Elastic[K, V] {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if elasticity < 0 {
		elasticity = DefaultElasticity
	}
	return &Elastic[K, V]{
		entries:    make(map[K]*entry[K, V]),
		maxSize:    maxSize,
		elasticity: elasticity,
		onEvict:    onEvict,
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Elastic[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.MoveToFront(e)
	return e.value, true
}

// Add stores value under key as the most recently used entry, replacing
// any previous value (which is not passed to onEvict). It returns the number
// of entries pruned.
func (c *Elastic[K, V]) Add(key K, value V) int {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		e.value = value
		c.order.MoveToFront(e)
		c.mu.Unlock()
		return 0
	}
	c.entries[key] = c.order.PushFront(key, value)

	var pruned []*entry[K, V]
	if len(c.entries) > c.maxSize+c.elasticity {
		pruned = c.pruneLocked()
	}
	c.mu.Unlock()

	c.notify(pruned)
	return len(pruned)
}

// Remove deletes key and returns its value. onEvict is not called.
func (c *Elastic[K, V]) Remove(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.Remove(e)
	delete(c.entries, key)
	return e.value, true
}

// Purge removes every entry, passing each to onEvict.
func (c *Elastic[K, V]) Purge() {
	c.mu.Lock()
	all := make([]*entry[K, V], 0, len(c.entries))
	for e := c.order.Back(); e != nil; e = e.prev {
		all = append(all, e)
	}
	c.entries = make(map[K]*entry[K, V])
	c.order.Init()
	c.mu.Unlock()

	c.notify(all)
}

// Len returns the number of entries.
func (c *Elastic[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns cache statistics.
func (c *Elastic[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Len:        len(c.entries),
		Capacity:   c.maxSize,
		Elasticity: c.elasticity,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

// pruneLocked evicts least recently used entries down to maxSize.
// Caller must hold c.mu.
func (c *Elastic[K, V]) pruneLocked() []*entry[K, V] {
	n := len(c.entries) - c.maxSize
	pruned := make([]*entry[K, V], 0, n)
	for ; n > 0; n-- {
		e := c.order.Back()
		if e == nil {
			break
		}
		c.order.Remove(e)
		delete(c.entries, e.key)
		pruned = append(pruned, e)
	}
	c.evictions += uint64(len(pruned))
	return pruned
}

func (c *Elastic[K, V]) notify(evicted []*entry[K, V]) {
	if c.onEvict == nil {
		return
	}
	for _, e := range evicted {
		c.onEvict(e.key, e.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Capacity is the size the cache is pruned back to.
	Capacity int
	// Elasticity is how far Len may exceed Capacity before pruning.
	Elasticity int
	Hits       uint64
	Misses     uint64
	// HitRate is Hits over lookups, 0.0 to 1.0.
	HitRate float64
	// Evictions counts pruned entries. Purge and Remove do not count.
	Evictions uint64
}
