// Package circ implements a bounded ring that keeps the most recent entries.
package circ

// Circ is a circular array. Once full, each Add evicts the oldest entry.
type Circ[V any] struct {
	entries            []V
	first, last, count int
}

func New[V any](max int) Circ[V] {
	if max < 1 {
		max = 1
	}

	return Circ[V]{
		entries: make([]V, max),
	}
}

func (c Circ[V]) Empty() bool {
	return c.count == 0
}

func (c Circ[V]) Len() int {
	return c.count
}

func (c Circ[V]) Cap() int {
	return len(c.entries)
}

func (c Circ[V]) full() bool {
	return c.count == len(c.entries)
}

func (c *Circ[V]) Add(v V) {
	if c.full() {
		// overwrite the oldest
		c.entries[c.first] = v
		c.first = c.mod(c.first + 1)
		c.last = c.first
		return
	}
	c.entries[c.last] = v
	c.last = c.mod(c.last + 1)
	c.count++
}

func (c Circ[V]) mod(index int) int {
	return index % len(c.entries)
}

// Each calls f on the entries from oldest to newest.
func (c Circ[V]) Each(f func(v V)) {
	for i, n := c.first, 0; n < c.count; i, n = c.mod(i+1), n+1 {
		f(c.entries[i])
	}
}

// Slice returns the entries from oldest to newest.
func (c Circ[V]) Slice() []V {
	s := make([]V, 0, c.count)
	c.Each(func(v V) { s = append(s, v) })
	return s
}
