package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/chargeinfra/core/metrics"
)

func TestPromSink_RecordLeafStates(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)

	now := time.Now()
	states := []coremetrics.LeafState{
		{ConnectionPointID: "connection_point_1", ChargingPointID: "charging_point_1", Occupied: true, SoC: 0.5, MaxPowerKW: 11, Time: now},
		{ConnectionPointID: "connection_point_2", ChargingPointID: "charging_point_1", Time: now},
	}
	require.NoError(t, sink.RecordLeafStates(states))

	expected := `
# HELP connection_point_occupied 1 when a vehicle is connected, 0 otherwise
# TYPE connection_point_occupied gauge
connection_point_occupied{charging_point="charging_point_1",connection_point="connection_point_1"} 1
connection_point_occupied{charging_point="charging_point_1",connection_point="connection_point_2"} 0
`
	if err := testutil.CollectAndCompare(sink.occupied, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	assert.Equal(t, 0.5, testutil.ToFloat64(sink.soc.WithLabelValues("connection_point_1", "charging_point_1")))
	assert.Equal(t, 11.0, testutil.ToFloat64(sink.maxPower.WithLabelValues("connection_point_1", "charging_point_1")))
}

func TestPromSink_RecordCharges(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)

	rec := coremetrics.ChargeRecord{ConnectionPointID: "connection_point_1", PowerKW: 11, EnergyKWh: 2.75}
	require.NoError(t, sink.RecordCharges([]coremetrics.ChargeRecord{rec, rec}))
	assert.Equal(t, 5.5, testutil.ToFloat64(sink.energy.WithLabelValues("connection_point_1")))
	assert.Equal(t, 11.0, testutil.ToFloat64(sink.power.WithLabelValues("connection_point_1")))

	require.NoError(t, sink.RecordTransformerLoad(coremetrics.TransformerLoad{TransformerID: "transformer_1", PowerKW: 22}))
	assert.Equal(t, 22.0, testutil.ToFloat64(sink.load.WithLabelValues("transformer_1")))
}

func TestPromSink_RecordSession(t *testing.T) {
	sink, err := NewPromSinkWithRegistry(prometheus.NewRegistry())
	require.NoError(t, err)

	require.NoError(t, sink.RecordSession(coremetrics.SessionEvent{Connected: true}))
	require.NoError(t, sink.RecordSession(coremetrics.SessionEvent{TargetMet: true}))
	require.NoError(t, sink.RecordSession(coremetrics.SessionEvent{Rejected: true}))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.sessions.WithLabelValues("connected", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.sessions.WithLabelValues("disconnected", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.sessions.WithLabelValues("rejected", "false")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	assert.Same(t, first.energy, second.energy)

	require.NoError(t, first.RecordCharges([]coremetrics.ChargeRecord{{ConnectionPointID: "p", EnergyKWh: 1}}))
	require.NoError(t, second.RecordCharges([]coremetrics.ChargeRecord{{ConnectionPointID: "p", EnergyKWh: 1}}))
	assert.Equal(t, 2.0, testutil.ToFloat64(first.energy.WithLabelValues("p")))
}

func TestRegisteredSinkTypes(t *testing.T) {
	assert.Subset(t, coremetrics.SinkTypes(), []string{"nop", "prometheus", "influx"})
}
