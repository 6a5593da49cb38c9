package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargeinfra/core/factory"
	"github.com/kilianp07/chargeinfra/core/infrastructure"
)

func occupied(leafs []*infrastructure.ConnectionPoint, min, max, toTarget float64) []LeafBounds {
	out := make([]LeafBounds, len(leafs))
	for i, p := range leafs {
		out[i] = LeafBounds{Index: i, Point: p, Occupied: true, Min: min, Max: max, ToTarget: toTarget, ToFull: 1000}
	}
	return out
}

func TestUncontrolled_ScalesStation(t *testing.T) {
	leafs := build(t, layout(2, 11, 20, 44))
	root := infrastructure.Root(leafs[0])
	bounds := occupied(leafs, 0, 11, 100)

	powers, err := UncontrolledAllocator{}.Allocate(root, bounds, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10, 10}, powers, 1e-9)
	assert.NoError(t, CheckAllocation(root, bounds, powers))
}

func TestUncontrolled_ScalesTransformer(t *testing.T) {
	leafs := build(t, layout(4, 11, 44, 22))
	root := infrastructure.Root(leafs[0])
	bounds := occupied(leafs, 0, 11, 100)
	bounds[3].Occupied = false

	powers, err := UncontrolledAllocator{}.Allocate(root, bounds, 0)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{22.0 / 3, 22.0 / 3, 22.0 / 3, 0}, powers, 1e-9)
	assert.NoError(t, CheckAllocation(root, bounds, powers))
}

func TestUncontrolled_CapsAtTarget(t *testing.T) {
	leafs := build(t, layout(1, 11, 11, 11))
	root := infrastructure.Root(leafs[0])
	bounds := occupied(leafs, 0, 11, 4)

	powers, err := UncontrolledAllocator{}.Allocate(root, bounds, 0)
	require.NoError(t, err)
	assert.InDelta(t, 4, powers[0], 1e-6)
	assert.LessOrEqual(t, powers[0], 4.0)
}

func TestUncontrolled_DropsBelowMinimum(t *testing.T) {
	leafs := build(t, layout(2, 11, 10, 44))
	root := infrastructure.Root(leafs[0])
	bounds := occupied(leafs, 6, 11, 100)

	powers, err := UncontrolledAllocator{}.Allocate(root, bounds, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, powers)
	assert.NoError(t, CheckAllocation(root, bounds, powers))

	bounds = occupied(leafs, 6, 11, 3)
	powers, err = UncontrolledAllocator{}.Allocate(root, bounds, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, powers)
}

func TestCheckAllocation_Errors(t *testing.T) {
	leafs := build(t, layout(2, 11, 15, 44))
	root := infrastructure.Root(leafs[0])
	bounds := occupied(leafs, 2, 11, 100)

	tests := []struct {
		name   string
		powers []float64
		mutate func([]LeafBounds)
	}{
		{"length mismatch", []float64{1}, nil},
		{"negative", []float64{-1, 0}, nil},
		{"above leaf max", []float64{12, 0}, nil},
		{"below leaf min", []float64{1, 0}, nil},
		{"station overload", []float64{8, 8}, nil},
		{"free point", []float64{0, 5}, func(b []LeafBounds) { b[1].Occupied = false }},
		{"beyond full", []float64{7, 0}, func(b []LeafBounds) { b[0].ToFull = 6 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := append([]LeafBounds(nil), bounds...)
			if tt.mutate != nil {
				tt.mutate(b)
			}
			assert.ErrorIs(t, CheckAllocation(root, b, tt.powers), ErrInfeasibleAllocation)
		})
	}
	assert.NoError(t, CheckAllocation(root, bounds, []float64{7.5, 7.5}))
}

func TestNewAllocator(t *testing.T) {
	assert.Contains(t, AllocatorTypes(), "uncontrolled")
	a, err := NewAllocator(factory.ModuleConfig{Type: "uncontrolled"})
	require.NoError(t, err)
	assert.IsType(t, UncontrolledAllocator{}, a)
	_, err = NewAllocator(factory.ModuleConfig{Type: "optimal"})
	assert.Error(t, err)
}
