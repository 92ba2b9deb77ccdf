package brokerage

import "sync/atomic"

// OrderIDGenerator hands out increasing order ids. Each engine owns its own generator.
type OrderIDGenerator struct {
	last atomic.Int64
}

// NewOrderIDGenerator creates a generator whose first id is start + 1.
func NewOrderIDGenerator(start int64) *OrderIDGenerator {
	generator := &OrderIDGenerator{}
	generator.last.Store(start)

	return generator
}

// Next returns a new unique id.
func (g *OrderIDGenerator) Next() int64 {
	return g.last.Add(1)
}

// Last returns the most recently issued id.
func (g *OrderIDGenerator) Last() int64 {
	return g.last.Load()
}
