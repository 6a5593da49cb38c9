package builder

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargeinfra/core/infrastructure"
)

func twoByTwo() Config {
	point := func() ConnectionPointConfig {
		return ConnectionPointConfig{MinPower: Power(0), MaxPower: Power(11)}
	}
	station := func() ChargingPointConfig {
		return ChargingPointConfig{MinPower: Power(0), MaxPower: Power(22),
			ConnectionPoints: []ConnectionPointConfig{point(), point()}}
	}
	return Config{Transformers: []TransformerConfig{{
		MinPower:       Power(0),
		MaxPower:       Power(44),
		ChargingPoints: []ChargingPointConfig{station(), station()},
	}}}
}

func TestBuild_TwoStationsTwoPoints(t *testing.T) {
	b := New()
	leafs, err := b.Build(twoByTwo())
	require.NoError(t, err)
	require.Len(t, leafs, 4)

	root := b.Transformer()
	require.NotNil(t, root)
	for i, p := range leafs {
		assert.Equal(t, 3, infrastructure.Depth(p), "leaf %d", i)
		assert.Same(t, root, infrastructure.Root(p))
		assert.False(t, p.Occupied())
	}
	assert.Same(t, leafs[0].ChargingPoint(), leafs[1].ChargingPoint())
	assert.NotSame(t, leafs[1].ChargingPoint(), leafs[2].ChargingPoint())
	assert.Equal(t, leafs, root.Leafs())

	ids := []string{leafs[0].ID(), leafs[1].ID(), leafs[2].ID(), leafs[3].ID()}
	assert.Equal(t, []string{"connection_point_1", "connection_point_2", "connection_point_3", "connection_point_4"}, ids)
	assert.Equal(t, "transformer_1", root.ID())
	assert.Equal(t, "charging_point_2", leafs[3].ChargingPoint().ID())
}

func TestBuild_IndependentBuilders(t *testing.T) {
	a, err := Build(twoByTwo())
	require.NoError(t, err)
	b, err := Build(twoByTwo())
	require.NoError(t, err)
	assert.Equal(t, a[0].ID(), b[0].ID(), "each builder numbers from 1")

	shared := infrastructure.NewIDGenerator()
	_, err = New(WithIDGenerator(shared)).Build(twoByTwo())
	require.NoError(t, err)
	c, err := New(WithIDGenerator(shared)).Build(twoByTwo())
	require.NoError(t, err)
	assert.Equal(t, "connection_point_5", c[0].ID())
}

func TestBuild_AggregatorCalledOnce(t *testing.T) {
	calls := 0
	hook := infrastructure.LeafAggregatorFunc(func(tr *infrastructure.Transformer) error {
		calls++
		assert.Len(t, tr.ChargingPoints(), 2)
		return nil
	})
	_, err := New(WithAggregator(hook)).Build(twoByTwo())
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target error
	}{
		{"no transformers", func(c *Config) { c.Transformers = nil }, ErrMalformedConfig},
		{"two transformers", func(c *Config) { c.Transformers = append(c.Transformers, c.Transformers[0]) }, ErrMalformedConfig},
		{"missing max power", func(c *Config) { c.Transformers[0].MaxPower = nil }, ErrMalformedConfig},
		{"missing charging points", func(c *Config) { c.Transformers[0].ChargingPoints = nil }, ErrMalformedConfig},
		{"missing connection points", func(c *Config) { c.Transformers[0].ChargingPoints[1].ConnectionPoints = nil }, ErrMalformedConfig},
		{"missing leaf min power", func(c *Config) { c.Transformers[0].ChargingPoints[0].ConnectionPoints[1].MinPower = nil }, ErrMalformedConfig},
		{"inverted leaf bounds", func(c *Config) {
			c.Transformers[0].ChargingPoints[0].ConnectionPoints[0].MinPower = Power(20)
		}, infrastructure.ErrInvalidBounds},
		{"negative station", func(c *Config) { c.Transformers[0].ChargingPoints[0].MinPower = Power(-1) }, infrastructure.ErrInvalidBounds},
		{"station never served", func(c *Config) { c.Transformers[0].ChargingPoints[0].MinPower = Power(10); c.Transformers[0].MaxPower = Power(5) }, infrastructure.ErrBoundsViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := twoByTwo()
			tt.mutate(&cfg)
			b := New()
			leafs, err := b.Build(cfg)
			assert.Nil(t, leafs)
			assert.Nil(t, b.Transformer())
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v got %v", tt.target, err)
			}
		})
	}
}

func TestBuild_MalformedWrapsBounds(t *testing.T) {
	cfg := twoByTwo()
	cfg.Transformers[0].MinPower = Power(100)
	_, err := Build(cfg)
	assert.ErrorIs(t, err, ErrMalformedConfig)
	assert.ErrorIs(t, err, infrastructure.ErrInvalidBounds)
}

func TestValidate_ReportsFieldPath(t *testing.T) {
	cfg := twoByTwo()
	cfg.Transformers[0].ChargingPoints[1].ConnectionPoints[0].MaxPower = nil
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transformers[0].charging_points[1].connection_points[0].max_power")
}

func TestDecodeConfig(t *testing.T) {
	yamlDoc := `transformers:
  - min_power: 0
    max_power: 44
    charging_points:
      - min_power: 0
        max_power: 22
        connection_points:
          - {min_power: 0, max_power: 11}
          - {min_power: 0, max_power: 11}
`
	cfg, err := DecodeConfig(strings.NewReader(yamlDoc), "yaml")
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.NumConnectionPoints())
	leafs, err := Build(cfg)
	require.NoError(t, err)
	assert.Len(t, leafs, 2)

	jsonDoc := `{"transformers":[{"min_power":0,"charging_points":[]}]}`
	cfg, err = DecodeConfig(strings.NewReader(jsonDoc), "json")
	require.NoError(t, err)
	_, err = Build(cfg)
	assert.ErrorIs(t, err, ErrMalformedConfig)

	_, err = DecodeConfig(strings.NewReader("{"), "json")
	assert.ErrorIs(t, err, ErrMalformedConfig)
	_, err = DecodeConfig(strings.NewReader(""), "toml")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.json")
	data := `{"transformers":[{"min_power":0,"max_power":20,"charging_points":[{"min_power":0,"max_power":20,"connection_points":[{"min_power":0,"max_power":20}]}]}]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write layout: %v", err)
	}
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	leafs, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, 20.0, leafs[0].MaxPower())

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
