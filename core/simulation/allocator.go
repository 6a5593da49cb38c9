package simulation

import (
	"errors"
	"fmt"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/chargeinfra/core/infrastructure"
)

// ErrInfeasibleAllocation is returned when an allocation violates a leaf,
// charging point or transformer bound.
var ErrInfeasibleAllocation = errors.New("infeasible allocation")

// tolerance absorbs rounding when comparing summed powers against bounds.
const tolerance = 1e-9

// targetMargin keeps a vehicle charged up to its target just below it, so
// rounding never pushes the SoC above 1.
const targetMargin = 1e-9

// LeafBounds is what an allocator knows about a connection point for one
// timestep. Index is the position of Point in the leaf list.
type LeafBounds struct {
	Index    int
	Point    *infrastructure.ConnectionPoint
	Occupied bool
	Min      float64
	Max      float64
	// ToTarget is the power that brings the vehicle exactly to its SoC
	// target within the timestep.
	ToTarget float64
	// ToFull is the power that brings the vehicle to SoC 1 within the
	// timestep. Nothing above it may be allocated.
	ToFull float64
}

// Allocator decides the power of every connection point for one timestep.
// The returned slice is indexed like bounds.
type Allocator interface {
	Allocate(root *infrastructure.Transformer, bounds []LeafBounds, resolution time.Duration) ([]float64, error)
}

// UncontrolledAllocator charges every vehicle as fast as its leaf allows,
// never beyond its SoC target. Where a charging point or the transformer
// would be overloaded, the powers below it are scaled down proportionally;
// leaves pushed under their minimum power are then switched off.
type UncontrolledAllocator struct{}

// Allocate implements Allocator.
func (UncontrolledAllocator) Allocate(root *infrastructure.Transformer, bounds []LeafBounds, _ time.Duration) ([]float64, error) {
	powers := make([]float64, len(bounds))
	byPoint := make(map[*infrastructure.ConnectionPoint]int, len(bounds))
	for i, b := range bounds {
		byPoint[b.Point] = i
		if !b.Occupied {
			continue
		}
		p := b.Max
		if b.ToTarget < p {
			p = b.ToTarget * (1 - targetMargin)
		}
		if p < b.Min || p <= 0 {
			p = 0
		}
		powers[i] = p
	}

	for _, cp := range root.ChargingPoints() {
		idx := indexes(cp.ConnectionPoints(), byPoint)
		limitGroup(powers, idx, cp.MaxPower())
	}
	all := make([]int, len(powers))
	for i := range all {
		all[i] = i
	}
	limitGroup(powers, all, root.MaxPower())

	for i, b := range bounds {
		if powers[i] > 0 && powers[i] < b.Min-tolerance {
			powers[i] = 0
		}
	}
	return powers, nil
}

func indexes(points []*infrastructure.ConnectionPoint, byPoint map[*infrastructure.ConnectionPoint]int) []int {
	out := make([]int, 0, len(points))
	for _, p := range points {
		if i, ok := byPoint[p]; ok {
			out = append(out, i)
		}
	}
	return out
}

// limitGroup scales the powers at idx so that their sum does not exceed limit.
func limitGroup(powers []float64, idx []int, limit float64) {
	group := make([]float64, len(idx))
	for k, i := range idx {
		group[k] = powers[i]
	}
	total := floats.Sum(group)
	if total <= limit || total == 0 {
		return
	}
	floats.Scale(limit/total, group)
	for k, i := range idx {
		powers[i] = group[k]
	}
}

// CheckAllocation verifies powers against every bound of the tree: zero or
// within [Min, Max] per leaf, never above ToFull, free leaves at zero, and
// group sums within the charging point and transformer maxima. It runs
// before any charge is applied, so a rejected step leaves every vehicle
// untouched.
func CheckAllocation(root *infrastructure.Transformer, bounds []LeafBounds, powers []float64) error {
	if len(powers) != len(bounds) {
		return fmt.Errorf("%w: %d powers for %d connection points", ErrInfeasibleAllocation, len(powers), len(bounds))
	}
	byPoint := make(map[*infrastructure.ConnectionPoint]int, len(bounds))
	for i, b := range bounds {
		byPoint[b.Point] = i
		p := powers[i]
		switch {
		case p < 0 || p != p:
			return fmt.Errorf("%w: %s: power %v", ErrInfeasibleAllocation, b.Point.ID(), p)
		case p == 0:
		case !b.Occupied:
			return fmt.Errorf("%w: %s: power %v on a free connection point", ErrInfeasibleAllocation, b.Point.ID(), p)
		case p < b.Min-tolerance || p > b.Max+tolerance:
			return fmt.Errorf("%w: %s: power %v outside [%v, %v]", ErrInfeasibleAllocation, b.Point.ID(), p, b.Min, b.Max)
		case p > b.ToFull*(1+tolerance)+tolerance:
			return fmt.Errorf("%w: %s: power %v would charge beyond full (%v)", ErrInfeasibleAllocation, b.Point.ID(), p, b.ToFull)
		}
	}
	for _, cp := range root.ChargingPoints() {
		var sum float64
		for _, i := range indexes(cp.ConnectionPoints(), byPoint) {
			sum += powers[i]
		}
		if sum > cp.MaxPower()+tolerance {
			return fmt.Errorf("%w: %s: load %v above %v", ErrInfeasibleAllocation, cp.ID(), sum, cp.MaxPower())
		}
	}
	if total := floats.Sum(powers); total > root.MaxPower()+tolerance {
		return fmt.Errorf("%w: %s: load %v above %v", ErrInfeasibleAllocation, root.ID(), total, root.MaxPower())
	}
	return nil
}
