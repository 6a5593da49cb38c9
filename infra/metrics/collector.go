package metrics

import (
	"context"

	"github.com/kilianp07/chargeinfra/core/events"
	coremetrics "github.com/kilianp07/chargeinfra/core/metrics"
	"github.com/kilianp07/chargeinfra/infra/logger"
	"github.com/kilianp07/chargeinfra/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records session
// events on sinks implementing coremetrics.SessionRecorder. It stops when
// the context is canceled or the bus is closed; the returned channel is
// closed once it has stopped.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.Event], sink coremetrics.Sink) <-chan struct{} {
	done := make(chan struct{})
	rec, ok := sink.(coremetrics.SessionRecorder)
	if bus == nil || !ok {
		close(done)
		return done
	}
	log := logger.New("event-collector")
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				se, ok := sessionEvent(ev)
				if !ok {
					continue
				}
				if err := rec.RecordSession(se); err != nil {
					log.Errorf("record session %s: %v", se.EventID, err)
				}
			}
		}
	}()
	return done
}

func sessionEvent(ev events.Event) (coremetrics.SessionEvent, bool) {
	switch e := ev.(type) {
	case events.VehicleConnected:
		return coremetrics.SessionEvent{ConnectionPointID: e.ConnectionPointID, EventID: e.EventID, Connected: true, SoC: e.SoC, Time: e.Time}, true
	case events.VehicleDisconnected:
		return coremetrics.SessionEvent{ConnectionPointID: e.ConnectionPointID, EventID: e.EventID, TargetMet: e.TargetMet, SoC: e.SoC, Time: e.Time}, true
	case events.VehicleRejected:
		return coremetrics.SessionEvent{EventID: e.EventID, Rejected: true, Time: e.Time}, true
	default:
		return coremetrics.SessionEvent{}, false
	}
}
