package infrastructure

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// LeafAggregator is invoked once on the finished tree. Implementations must
// not add or remove nodes.
type LeafAggregator interface {
	SetUpLeafs(t *Transformer) error
}

// LeafAggregatorFunc adapts a function to LeafAggregator.
type LeafAggregatorFunc func(t *Transformer) error

func (f LeafAggregatorFunc) SetUpLeafs(t *Transformer) error { return f(t) }

// BoundsAggregator caches the connection points below every node and
// rejects trees where a child's minimum power exceeds its parent's maximum,
// since such a child could never be served.
type BoundsAggregator struct{}

// SetUpLeafs implements LeafAggregator.
func (BoundsAggregator) SetUpLeafs(t *Transformer) error {
	if t == nil {
		return fmt.Errorf("%w: nil transformer", ErrTypeMismatch)
	}
	if _, err := collectLeafs(t); err != nil {
		return err
	}
	return nil
}

func collectLeafs(n InfrastructureNode) ([]*ConnectionPoint, error) {
	b := n.base()
	if cp, ok := n.(*ConnectionPoint); ok {
		b.leafs = []*ConnectionPoint{cp}
		return b.leafs, nil
	}
	var leafs []*ConnectionPoint
	for _, c := range b.children {
		if c.MinPower() > b.maxPower {
			return nil, fmt.Errorf("%w: %s min power %v exceeds %s max power %v",
				ErrBoundsViolation, c.ID(), c.MinPower(), b.id, b.maxPower)
		}
		sub, err := collectLeafs(c)
		if err != nil {
			return nil, err
		}
		leafs = append(leafs, sub...)
	}
	b.leafs = leafs
	return leafs, nil
}

// SumMaxPower returns the sum of the maximum power of nodes.
func SumMaxPower[N InfrastructureNode](nodes []N) float64 {
	vals := make([]float64, len(nodes))
	for i, n := range nodes {
		vals[i] = n.MaxPower()
	}
	return floats.Sum(vals)
}
