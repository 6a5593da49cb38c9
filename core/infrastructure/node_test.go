package infrastructure

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransformer_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		wantErr  bool
	}{
		{"valid", 0, 100, false},
		{"equal", 10, 10, false},
		{"inverted", 20, 10, true},
		{"negative min", -1, 10, true},
		{"negative max", 0, -5, true},
		{"nan", math.NaN(), 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTransformer("t", tt.min, tt.max)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidBounds)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.min, tr.MinPower())
			assert.Equal(t, tt.max, tr.MaxPower())
			assert.Nil(t, tr.Parent())
		})
	}
}

func TestTypedConstructorsRejectNilParent(t *testing.T) {
	_, err := NewChargingPoint("cp", 0, 10, nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	_, err = NewConnectionPoint("p", 0, 10, nil)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestAddChild_ParentMustMatch(t *testing.T) {
	t1, err := NewTransformer("t1", 0, 100)
	require.NoError(t, err)
	t2, err := NewTransformer("t2", 0, 100)
	require.NoError(t, err)

	cp, err := NewChargingPoint("cp", 0, 50, t1)
	require.NoError(t, err)
	if err := t2.AddChild(cp); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch got %v", err)
	}
	require.NoError(t, t1.AddChild(cp))
	assert.ErrorIs(t, t1.AddChild(cp), ErrTypeMismatch, "duplicate registration")
	assert.Len(t, t1.Children(), 1)
	assert.Empty(t, t2.Children())

	other, err := t2.AddChargingPoint("cp2", 0, 50)
	require.NoError(t, err)
	p, err := NewConnectionPoint("p", 0, 11, other)
	require.NoError(t, err)
	assert.ErrorIs(t, cp.AddChild(p), ErrTypeMismatch)
}

func TestTreeNavigation(t *testing.T) {
	tr, err := NewTransformer("t", 0, 100)
	require.NoError(t, err)
	cp, err := tr.AddChargingPoint("cp", 0, 50)
	require.NoError(t, err)
	p, err := cp.AddConnectionPoint("p", 0, 22)
	require.NoError(t, err)

	assert.Equal(t, 3, Depth(p))
	assert.Equal(t, 2, Depth(cp))
	assert.Equal(t, 1, Depth(tr))
	assert.Same(t, tr, Root(p))
	assert.Same(t, cp, p.ChargingPoint())
	assert.Same(t, tr, cp.Transformer())
	assert.Equal(t, []*ChargingPoint{cp}, tr.ChargingPoints())
	assert.Equal(t, []*ConnectionPoint{p}, cp.ConnectionPoints())
	assert.Equal(t, KindConnectionPoint, p.Kind())

	var visited []string
	require.NoError(t, Walk(tr, func(n InfrastructureNode) error {
		visited = append(visited, n.ID())
		return nil
	}))
	assert.Equal(t, []string{"t", "cp", "p"}, visited)
}

func TestChildrenReturnsCopy(t *testing.T) {
	tr, err := NewTransformer("t", 0, 100)
	require.NoError(t, err)
	_, err = tr.AddChargingPoint("cp", 0, 50)
	require.NoError(t, err)
	children := tr.Children()
	children[0] = nil
	assert.NotNil(t, tr.Children()[0])
}

func TestIDGenerator(t *testing.T) {
	g := NewIDGenerator()
	assert.Equal(t, "transformer_1", g.Next(KindTransformer))
	assert.Equal(t, "connection_point_1", g.Next(KindConnectionPoint))
	assert.Equal(t, "connection_point_2", g.Next(KindConnectionPoint))
	assert.Equal(t, "charging_point_1", g.Next(KindChargingPoint))
	assert.Equal(t, 2, g.Count(KindConnectionPoint))

	var zero IDGenerator
	assert.Equal(t, "charging_point_1", zero.Next(KindChargingPoint))
}
