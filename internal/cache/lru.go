package cache

// entry is a node of the recency list. It carries the key so that eviction
// from the tail can delete the map slot in O(1).
type entry[K comparable, V any] struct {
	key   K
	value V
	prev  *entry[K, V]
	next  *entry[K, V]
}

// recencyList orders entries from most (front) to least (back) recently
// used. It is not safe for concurrent use.
type recencyList[K comparable, V any] struct {
	front *entry[K, V]
	back  *entry[K, V]
	len   int
}

func (l *recencyList[K, V]) Len() int { return l.len }

// PushFront inserts a new entry as the most recently used.
func (l *recencyList[K, V]) PushFront(key K, value V) *entry[K, V] {
	e := &entry[K, V]{key: key, value: value}
	l.linkFront(e)
	return e
}

// MoveToFront marks e as the most recently used.
func (l *recencyList[K, V]) MoveToFront(e *entry[K, V]) {
	if e == nil || e == l.front {
		return
	}
	l.unlink(e)
	l.linkFront(e)
}

// Remove unlinks e.
func (l *recencyList[K, V]) Remove(e *entry[K, V]) {
	if e != nil {
		l.unlink(e)
	}
}

// Back returns the least recently used entry, or nil.
func (l *recencyList[K, V]) Back() *entry[K, V] {
	return l.back
}

// Init empties the list.
func (l *recencyList[K, V]) Init() {
	l.front, l.back, l.len = nil, nil, 0
}

func (l *recencyList[K, V]) linkFront(e *entry[K, V]) {
	e.prev = nil
	e.next = l.front
	if l.front != nil {
		l.front.prev = e
	}
	l.front = e
	if l.back == nil {
		l.back = e
	}
	l.len++
}

func (l *recencyList[K, V]) unlink(e *entry[K, V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		l.front = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		l.back = e.prev
	}
	e.prev, e.next = nil, nil
	l.len--
}
