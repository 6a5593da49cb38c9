package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/chargeinfra/core/metrics"
	"github.com/kilianp07/chargeinfra/infra/logger"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes simulation records to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordLeafStates writes one connection_point_state point per leaf.
func (s *InfluxSink) RecordLeafStates(states []coremetrics.LeafState) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, st := range states {
		p := write.NewPointWithMeasurement("connection_point_state").
			AddTag("connection_point", st.ConnectionPointID).
			AddTag("charging_point", st.ChargingPointID).
			AddField("occupied", st.Occupied).
			AddField("soc", round3(st.SoC)).
			AddField("min_power_kw", round3(st.MinPowerKW)).
			AddField("max_power_kw", round3(st.MaxPowerKW)).
			SetTime(st.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordCharges writes one charge point per record.
func (s *InfluxSink) RecordCharges(records []coremetrics.ChargeRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range records {
		p := write.NewPointWithMeasurement("charge").
			AddTag("connection_point", r.ConnectionPointID).
			AddField("power_kw", round3(r.PowerKW)).
			AddField("energy_kwh", round3(r.EnergyKWh)).
			AddField("soc_before", round3(r.SoCBefore)).
			AddField("soc_after", round3(r.SoCAfter)).
			SetTime(r.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordTransformerLoad writes the load of a transformer.
func (s *InfluxSink) RecordTransformerLoad(load coremetrics.TransformerLoad) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("transformer_load").
		AddTag("transformer", load.TransformerID).
		AddField("power_kw", round3(load.PowerKW)).
		AddField("max_power_kw", round3(load.MaxPowerKW)).
		SetTime(load.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSession writes a session event.
func (s *InfluxSink) RecordSession(ev coremetrics.SessionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("session").
		AddTag("event_id", ev.EventID).
		AddTag("outcome", outcome(ev))
	if ev.ConnectionPointID != "" {
		p = p.AddTag("connection_point", ev.ConnectionPointID)
	}
	p = p.AddField("soc", round3(ev.SoC)).
		AddField("target_met", ev.TargetMet).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
