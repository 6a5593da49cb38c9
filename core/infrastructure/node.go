package infrastructure

import (
	"fmt"
	"math"
)

// Kind enumerates the node variants of an infrastructure tree.
type Kind int

const (
	KindTransformer Kind = iota
	KindChargingPoint
	KindConnectionPoint
)

func (k Kind) String() string {
	switch k {
	case KindTransformer:
		return "transformer"
	case KindChargingPoint:
		return "charging_point"
	case KindConnectionPoint:
		return "connection_point"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// InfrastructureNode is implemented by Transformer, ChargingPoint and
// ConnectionPoint only.
type InfrastructureNode interface {
	ID() string
	Kind() Kind
	MinPower() float64
	MaxPower() float64
	// Parent returns nil for the root.
	Parent() InfrastructureNode
	Children() []InfrastructureNode
	// Leafs returns the connection points below the node once the tree
	// aggregation has run.
	Leafs() []*ConnectionPoint
	base() *Node
}

// Node holds the state shared by every node kind.
type Node struct {
	id       string
	kind     Kind
	minPower float64
	maxPower float64
	parent   InfrastructureNode
	children []InfrastructureNode
	leafs    []*ConnectionPoint
}

func newNode(id string, kind Kind, minPower, maxPower float64, parent InfrastructureNode) (Node, error) {
	if err := ValidateBounds(minPower, maxPower); err != nil {
		return Node{}, fmt.Errorf("%s %s: %w", kind, id, err)
	}
	return Node{id: id, kind: kind, minPower: minPower, maxPower: maxPower, parent: parent}, nil
}

// ValidateBounds checks 0 <= minPower <= maxPower.
func ValidateBounds(minPower, maxPower float64) error {
	if math.IsNaN(minPower) || math.IsNaN(maxPower) {
		return fmt.Errorf("%w: NaN power", ErrInvalidBounds)
	}
	if minPower < 0 || maxPower < 0 {
		return fmt.Errorf("%w: negative power [%v, %v]", ErrInvalidBounds, minPower, maxPower)
	}
	if maxPower < minPower {
		return fmt.Errorf("%w: max power %v below min power %v", ErrInvalidBounds, maxPower, minPower)
	}
	return nil
}

func (n *Node) ID() string                 { return n.id }
func (n *Node) Kind() Kind                 { return n.kind }
func (n *Node) MinPower() float64          { return n.minPower }
func (n *Node) MaxPower() float64          { return n.maxPower }
func (n *Node) Parent() InfrastructureNode { return n.parent }
func (n *Node) base() *Node                { return n }

// Children returns a copy of the child list.
func (n *Node) Children() []InfrastructureNode {
	out := make([]InfrastructureNode, len(n.children))
	copy(out, n.children)
	return out
}

// Leafs returns a copy of the cached leaf list.
func (n *Node) Leafs() []*ConnectionPoint {
	out := make([]*ConnectionPoint, len(n.leafs))
	copy(out, n.leafs)
	return out
}

// addChild registers child in the receiver's child list. The child must
// already reference owner as its parent.
func (n *Node) addChild(owner, child InfrastructureNode) error {
	if child == nil {
		return fmt.Errorf("%w: nil child for %s", ErrTypeMismatch, n.id)
	}
	if child.Parent() != owner {
		return fmt.Errorf("%w: %s is not a child of %s", ErrTypeMismatch, child.ID(), n.id)
	}
	for _, c := range n.children {
		if c == child {
			return fmt.Errorf("%w: %s already registered on %s", ErrTypeMismatch, child.ID(), n.id)
		}
	}
	n.children = append(n.children, child)
	return nil
}

// Transformer is the root of an infrastructure tree.
type Transformer struct {
	Node
	aggregated bool
}

// NewTransformer creates a root node.
func NewTransformer(id string, minPower, maxPower float64) (*Transformer, error) {
	n, err := newNode(id, KindTransformer, minPower, maxPower, nil)
	if err != nil {
		return nil, err
	}
	return &Transformer{Node: n}, nil
}

// AddChild registers a charging point created with t as its parent. It is
// only meant to be used while building the tree.
func (t *Transformer) AddChild(cp *ChargingPoint) error {
	if cp == nil {
		return fmt.Errorf("%w: nil charging point", ErrTypeMismatch)
	}
	return t.addChild(t, cp)
}

// AddChargingPoint creates a charging point below t and registers it.
func (t *Transformer) AddChargingPoint(id string, minPower, maxPower float64) (*ChargingPoint, error) {
	cp, err := NewChargingPoint(id, minPower, maxPower, t)
	if err != nil {
		return nil, err
	}
	if err := t.AddChild(cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// ChargingPoints returns the children of t.
func (t *Transformer) ChargingPoints() []*ChargingPoint {
	out := make([]*ChargingPoint, 0, len(t.children))
	for _, c := range t.children {
		out = append(out, c.(*ChargingPoint))
	}
	return out
}

// SetUpLeafs runs the aggregation hook over the finished tree. A nil hook
// runs BoundsAggregator. The hook runs at most once per tree.
func (t *Transformer) SetUpLeafs(hook LeafAggregator) error {
	if t.aggregated {
		return fmt.Errorf("%s: %w", t.id, ErrAlreadyAggregated)
	}
	if hook == nil {
		hook = BoundsAggregator{}
	}
	if err := hook.SetUpLeafs(t); err != nil {
		return err
	}
	t.aggregated = true
	return nil
}

// ChargingPoint groups connection points below a transformer.
type ChargingPoint struct {
	Node
}

// NewChargingPoint creates a charging point bound to parent. The caller must
// register it with parent.AddChild.
func NewChargingPoint(id string, minPower, maxPower float64, parent *Transformer) (*ChargingPoint, error) {
	if parent == nil {
		return nil, fmt.Errorf("%w: charging point %s needs a transformer parent", ErrTypeMismatch, id)
	}
	n, err := newNode(id, KindChargingPoint, minPower, maxPower, parent)
	if err != nil {
		return nil, err
	}
	return &ChargingPoint{Node: n}, nil
}

// Transformer returns the parent of cp.
func (cp *ChargingPoint) Transformer() *Transformer { return cp.parent.(*Transformer) }

// AddChild registers a connection point created with cp as its parent.
func (cp *ChargingPoint) AddChild(p *ConnectionPoint) error {
	if p == nil {
		return fmt.Errorf("%w: nil connection point", ErrTypeMismatch)
	}
	return cp.addChild(cp, p)
}

// AddConnectionPoint creates a connection point below cp and registers it.
func (cp *ChargingPoint) AddConnectionPoint(id string, minPower, maxPower float64) (*ConnectionPoint, error) {
	p, err := NewConnectionPoint(id, minPower, maxPower, cp)
	if err != nil {
		return nil, err
	}
	if err := cp.AddChild(p); err != nil {
		return nil, err
	}
	return p, nil
}

// ConnectionPoints returns the children of cp.
func (cp *ChargingPoint) ConnectionPoints() []*ConnectionPoint {
	out := make([]*ConnectionPoint, 0, len(cp.children))
	for _, c := range cp.children {
		out = append(out, c.(*ConnectionPoint))
	}
	return out
}

// Depth returns the number of nodes on the path from n to the root,
// n included. Connection points have depth 3.
func Depth(n InfrastructureNode) int {
	d := 0
	for n != nil {
		d++
		n = n.Parent()
	}
	return d
}

// Root follows the parent chain of n up to the transformer.
func Root(n InfrastructureNode) *Transformer {
	for n != nil {
		if t, ok := n.(*Transformer); ok {
			return t
		}
		n = n.Parent()
	}
	return nil
}

// Walk visits n and its descendants depth first. Returning an error stops
// the walk.
func Walk(n InfrastructureNode, fn func(InfrastructureNode) error) error {
	if err := fn(n); err != nil {
		return err
	}
	for _, c := range n.base().children {
		if err := Walk(c, fn); err != nil {
			return err
		}
	}
	return nil
}
