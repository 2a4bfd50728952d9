package vehicle

import (
	"math"
	"sync"
	"time"
)

const (
	// Miles per hour while the simulated car is driving.
	cruiseSpeed = 35.0

	// Percent of battery used per mile driven.
	drainPerMile = 0.3

	// Percent of battery added per hour while charging.
	chargePerHour = 30.0

	// Fraction of the inside/target gap closed per minute.
	climateRate = 0.1
)

// Simulator advances a State through time deterministically. Integer fields
// accumulate fractional progress internally so small steps are not lost.
type Simulator struct {
	mu       sync.Mutex
	state    State
	driving  bool
	miles    float64 // fractional odometer carry
	battery  float64 // precise battery percent
	capacity float64 // miles at 100%
}

// NewSimulator starts a simulator from s. The car starts parked.
func NewSimulator(s State) *Simulator {
	capacity := 0.0
	if s.BatteryLevel > 0 {
		capacity = float64(s.RangeRemaining) * 100 / float64(s.BatteryLevel)
	}
	return &Simulator{state: s, battery: float64(s.BatteryLevel), capacity: capacity}
}

// SetDriving toggles driving. Driving unlocks the car and stops charging.
func (sim *Simulator) SetDriving(driving bool) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.driving = driving
	if driving {
		sim.state.IsLocked = false
		sim.state.IsCharging = false
	}
}

// SetCharging toggles charging. Charging stops driving.
func (sim *Simulator) SetCharging(charging bool) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.state.IsCharging = charging
	if charging {
		sim.driving = false
	}
}

// Driving reports whether the car is moving.
func (sim *Simulator) Driving() bool {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.driving
}

// Step advances the simulation by dt and returns the new state.
func (sim *Simulator) Step(dt time.Duration) State {
	sim.mu.Lock()
	defer sim.mu.Unlock()

	if dt <= 0 {
		return sim.state
	}
	hours := dt.Hours()

	switch {
	case sim.driving && sim.battery > 0:
		dist := cruiseSpeed * hours
		maxDist := sim.battery / drainPerMile
		empty := dist >= maxDist
		if empty {
			dist = maxDist
		}
		sim.miles += dist
		whole := math.Floor(sim.miles)
		sim.state.Odometer += int(whole)
		sim.miles -= whole
		sim.battery = math.Max(0, sim.battery-dist*drainPerMile)
		if empty {
			sim.battery = 0
			sim.driving = false
		}
	case sim.state.IsCharging:
		sim.battery = math.Min(100, sim.battery+chargePerHour*hours)
		if sim.battery == 100 {
			sim.state.IsCharging = false
		}
	}

	sim.state.BatteryLevel = int(math.Round(sim.battery))
	sim.state.RangeRemaining = int(math.Round(sim.capacity * sim.battery / 100))

	gap := sim.state.TargetTemp - sim.state.InsideTemp
	closed := gap * math.Min(1, climateRate*dt.Minutes())
	sim.state.InsideTemp = math.Round((sim.state.InsideTemp+closed)*10) / 10

	return sim.state
}

// State returns the current state without advancing.
func (sim *Simulator) State() State {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.state
}
