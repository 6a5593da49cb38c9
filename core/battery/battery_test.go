package battery

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEVBattery_MaxPowerPossible(t *testing.T) {
	b := EVBattery{CapacityKWh: 50, MaxChargePower: 10, StartPowerDegradation: 0.8, MaxDegradationLevel: 0.2}
	tests := []struct {
		soc  float64
		want float64
	}{
		{0, 10},
		{0.79, 10},
		{0.8, 10},
		{0.9, 6},
		{1, 2},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, b.MaxPowerPossible(tt.soc), 1e-9, "soc %v", tt.soc)
	}
}

func TestEVBattery_NoDegradation(t *testing.T) {
	b := EVBattery{CapacityKWh: 50, MaxChargePower: 22, StartPowerDegradation: 1, MaxDegradationLevel: 0}
	assert.Equal(t, 22.0, b.MaxPowerPossible(1))
	assert.Equal(t, 0.0, b.MinPowerPossible(0.5))
}

func TestEVBattery_Validate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	bad := Default()
	bad.CapacityKWh = 0
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.MinChargePower = 20
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.CapacityKWh = math.NaN()
	assert.Error(t, bad.Validate())

	bad = Default()
	bad.StartPowerDegradation = 1.5
	assert.Error(t, bad.Validate())
}
