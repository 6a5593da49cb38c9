package infrastructure

import (
	"errors"

	"github.com/kilianp07/chargeinfra/core/model"
)

var (
	// ErrInvalidBounds is returned when a power interval is negative or inverted.
	ErrInvalidBounds = errors.New("invalid power bounds")
	// ErrTypeMismatch is returned when a node is attached to the wrong parent.
	ErrTypeMismatch = errors.New("node type mismatch")
	// ErrAlreadyOccupied is returned when connecting to an occupied connection point.
	ErrAlreadyOccupied = errors.New("connection point already occupied")
	// ErrNoVehicleConnected is returned by operations that need a connected vehicle.
	ErrNoVehicleConnected = errors.New("no vehicle connected")
	// ErrInvalidDuration is returned for non-positive time steps.
	ErrInvalidDuration = errors.New("duration must be positive")
	// ErrBoundsViolation is returned by the aggregation when a child can never be served by its parent.
	ErrBoundsViolation = errors.New("bounds violation")
	// ErrAlreadyAggregated is returned when the leaf aggregation runs twice on the same tree.
	ErrAlreadyAggregated = errors.New("leafs already set up")

	ErrSocOutOfRange  = model.ErrSocOutOfRange
	ErrInvalidVehicle = model.ErrInvalidVehicle
)
