package events

import "time"

// StepCompleted is published after the charges of a timestep were applied.
type StepCompleted struct {
	Step     int
	PowerKW  float64
	Occupied int
	Time     time.Time
}

func (e StepCompleted) EventTime() time.Time { return e.Time }
