package model

import (
	"errors"
	"testing"
	"time"
)

type fixedBattery struct{ capacity float64 }

func (b fixedBattery) Capacity() float64                { return b.capacity }
func (b fixedBattery) MaxPowerPossible(float64) float64 { return 11 }
func (b fixedBattery) MinPowerPossible(float64) float64 { return 1 }

func TestNewConnectedVehicle(t *testing.T) {
	vt := VehicleType{Brand: "Nissan", Model: "Leaf", Battery: fixedBattery{capacity: 40}}
	v, err := NewConnectedVehicle(vt, 0.3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.SoC != 0.3 {
		t.Fatalf("expected soc 0.3 got %v", v.SoC)
	}
	if _, err := NewConnectedVehicle(vt, 1.2); !errors.Is(err, ErrSocOutOfRange) {
		t.Fatalf("expected ErrSocOutOfRange got %v", err)
	}
	if _, err := NewConnectedVehicle(VehicleType{}, 0.5); !errors.Is(err, ErrInvalidVehicle) {
		t.Fatalf("expected ErrInvalidVehicle got %v", err)
	}
	if _, err := NewConnectedVehicle(VehicleType{Battery: fixedBattery{}}, 0.5); !errors.Is(err, ErrInvalidVehicle) {
		t.Fatalf("expected ErrInvalidVehicle for zero capacity got %v", err)
	}
}

func TestValidSoC(t *testing.T) {
	cases := map[float64]bool{-0.01: false, 0: true, 0.5: true, 1: true, 1.01: false}
	for soc, want := range cases {
		if got := ValidSoC(soc); got != want {
			t.Errorf("ValidSoC(%v) = %v, want %v", soc, got, want)
		}
	}
}

func TestChargingEvent(t *testing.T) {
	arrival := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	vt := VehicleType{Battery: fixedBattery{capacity: 50}}
	ev := NewChargingEvent(arrival, 3*time.Hour, 0.2, 0.8, vt)
	if ev.ID == "" {
		t.Fatal("expected generated id")
	}
	if !ev.Departure().Equal(arrival.Add(3 * time.Hour)) {
		t.Fatalf("unexpected departure %v", ev.Departure())
	}
	if got := ev.Vehicle(); got.SoC != 0.2 || got.VehicleType.Battery == nil {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if err := ev.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	ev.SocTarget = 2
	if err := ev.Validate(); !errors.Is(err, ErrSocOutOfRange) {
		t.Fatalf("expected ErrSocOutOfRange got %v", err)
	}
}
