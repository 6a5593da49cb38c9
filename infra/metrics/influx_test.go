package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/chargeinfra/core/metrics"
)

type lineCapture struct {
	mu     sync.Mutex
	bodies []string
}

func (c *lineCapture) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	c.mu.Lock()
	c.bodies = append(c.bodies, strings.TrimSpace(string(data)))
	c.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func newCaptureSink(t *testing.T) (*InfluxSink, *lineCapture) {
	t.Helper()
	c := &lineCapture{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	t.Cleanup(srv.Close)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	t.Cleanup(sink.Close)
	return sink, c
}

func line(p *write.Point) string {
	return strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
}

func TestInfluxSink_RecordLeafStates(t *testing.T) {
	sink, c := newCaptureSink(t)
	now := time.Now()
	st := coremetrics.LeafState{
		ConnectionPointID: "connection_point_1",
		ChargingPointID:   "charging_point_1",
		Occupied:          true,
		SoC:               0.12345,
		MaxPowerKW:        11,
		Time:              now,
	}
	if err := sink.RecordLeafStates([]coremetrics.LeafState{st}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("connection_point_state").
		AddTag("connection_point", "connection_point_1").
		AddTag("charging_point", "charging_point_1").
		AddField("occupied", true).
		AddField("soc", 0.123).
		AddField("min_power_kw", 0.0).
		AddField("max_power_kw", 11.0).
		SetTime(now)
	if len(c.bodies) != 1 || c.bodies[0] != line(p) {
		t.Errorf("unexpected bodies: %#v", c.bodies)
	}
}

func TestInfluxSink_RecordCharges(t *testing.T) {
	sink, c := newCaptureSink(t)
	now := time.Now()
	rec := coremetrics.ChargeRecord{
		ConnectionPointID: "connection_point_2",
		PowerKW:           11,
		EnergyKWh:         2.75,
		SoCBefore:         0.2,
		SoCAfter:          0.255,
		Time:              now,
	}
	if err := sink.RecordCharges([]coremetrics.ChargeRecord{rec}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("charge").
		AddTag("connection_point", "connection_point_2").
		AddField("power_kw", 11.0).
		AddField("energy_kwh", 2.75).
		AddField("soc_before", 0.2).
		AddField("soc_after", 0.255).
		SetTime(now)
	if len(c.bodies) != 1 || c.bodies[0] != line(p) {
		t.Errorf("unexpected bodies: %#v", c.bodies)
	}
}

func TestInfluxSink_RecordTransformerLoadAndSession(t *testing.T) {
	sink, c := newCaptureSink(t)
	now := time.Now()
	if err := sink.RecordTransformerLoad(coremetrics.TransformerLoad{TransformerID: "transformer_1", PowerKW: 22, MaxPowerKW: 44, Time: now}); err != nil {
		t.Fatalf("record load: %v", err)
	}
	if err := sink.RecordSession(coremetrics.SessionEvent{EventID: "ev1", Rejected: true, Time: now}); err != nil {
		t.Fatalf("record session: %v", err)
	}
	load := write.NewPointWithMeasurement("transformer_load").
		AddTag("transformer", "transformer_1").
		AddField("power_kw", 22.0).
		AddField("max_power_kw", 44.0).
		SetTime(now)
	session := write.NewPointWithMeasurement("session").
		AddTag("event_id", "ev1").
		AddTag("outcome", "rejected").
		AddField("soc", 0.0).
		AddField("target_met", false).
		SetTime(now)
	if len(c.bodies) != 2 || c.bodies[0] != line(load) || c.bodies[1] != line(session) {
		t.Errorf("unexpected bodies: %#v", c.bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
