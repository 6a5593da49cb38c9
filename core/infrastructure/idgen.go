package infrastructure

import "fmt"

// IDGenerator hands out identifiers numbered per node kind, starting at 1.
// It is owned by whoever builds a tree and is not safe for concurrent use.
type IDGenerator struct {
	counters map[Kind]int
}

// NewIDGenerator returns a generator with all counters at zero.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{counters: make(map[Kind]int)}
}

// Next returns the next identifier for kind, e.g. "connection_point_3".
func (g *IDGenerator) Next(kind Kind) string {
	if g.counters == nil {
		g.counters = make(map[Kind]int)
	}
	g.counters[kind]++
	return fmt.Sprintf("%s_%d", kind, g.counters[kind])
}

// Count returns how many identifiers were issued for kind.
func (g *IDGenerator) Count(kind Kind) int { return g.counters[kind] }
