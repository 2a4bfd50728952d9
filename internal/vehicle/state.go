package vehicle

import (
	"github.com/muurk/evlease/internal/advisor"
	"github.com/muurk/evlease/internal/config"
)

// State is a point-in-time view of the vehicle.
type State struct {
	Name            string  `json:"name"`
	Model           string  `json:"model"`
	BatteryLevel    int     `json:"batteryLevel"`   // Percent, 0-100
	RangeRemaining  int     `json:"rangeRemaining"` // Miles
	IsLocked        bool    `json:"isLocked"`
	IsCharging      bool    `json:"isCharging"`
	InsideTemp      float64 `json:"insideTemp"`  // Fahrenheit
	OutsideTemp     float64 `json:"outsideTemp"` // Fahrenheit
	TargetTemp      float64 `json:"targetTemp"`  // Fahrenheit
	Location        string  `json:"location"`
	SoftwareVersion string  `json:"softwareVersion"`
	Odometer        int     `json:"odometer"` // Miles
}

// DefaultState returns the vehicle the app starts with when nothing is configured.
func DefaultState() State {
	return State{
		Name:            "Midnight",
		Model:           "Model 3 Long Range",
		BatteryLevel:    78,
		RangeRemaining:  241,
		IsLocked:        true,
		InsideTemp:      68,
		OutsideTemp:     72,
		TargetTemp:      70,
		Location:        "Palo Alto, CA",
		SoftwareVersion: "2024.20.1",
		Odometer:        24850,
	}
}

// FromConfig builds a State from the vehicle settings section.
// A nil section yields DefaultState.
func FromConfig(c *config.Vehicle) State {
	if c == nil {
		return DefaultState()
	}
	return State{
		Name:            c.Name,
		Model:           c.Model,
		BatteryLevel:    c.BatteryLevel,
		RangeRemaining:  c.RangeRemaining,
		IsLocked:        c.IsLocked,
		IsCharging:      c.IsCharging,
		InsideTemp:      c.InsideTemp,
		OutsideTemp:     c.OutsideTemp,
		TargetTemp:      c.TargetTemp,
		Location:        c.Location,
		SoftwareVersion: c.SoftwareVersion,
		Odometer:        c.Odometer,
	}
}

// Subject returns the advice context for questions about this vehicle.
func (s State) Subject() advisor.Subject {
	return advisor.VehicleSubject(advisor.VehicleSnapshot{
		Model:           s.Model,
		BatteryLevel:    s.BatteryLevel,
		RangeRemaining:  s.RangeRemaining,
		SoftwareVersion: s.SoftwareVersion,
		InsideTemp:      s.InsideTemp,
		Odometer:        s.Odometer,
		Location:        s.Location,
	})
}

// LockLabel returns "Locked" or "Unlocked".
func (s State) LockLabel() string {
	if s.IsLocked {
		return "Locked"
	}
	return "Unlocked"
}
