package advisor

import (
	"fmt"
	"strings"
)

// VehicleSnapshot is the vehicle context forwarded with a vehicle question.
type VehicleSnapshot struct {
	Model           string
	BatteryLevel    int
	RangeRemaining  int
	SoftwareVersion string
	InsideTemp      float64
	Odometer        int
	Location        string
}

// LeaseSummary is the lease context forwarded with a lease question.
type LeaseSummary struct {
	DaysLeft       int
	CurrentMileage int
	AllowedMileage int
	Phase          string
}

// MileageFraction returns current/allowed, or 0 when no allowance is set.
func (l LeaseSummary) MileageFraction() float64 {
	if l.AllowedMileage <= 0 {
		return 0
	}
	return float64(l.CurrentMileage) / float64(l.AllowedMileage)
}

// Subject is what a question is about. Exactly one of Vehicle or Lease is set.
type Subject struct {
	Vehicle *VehicleSnapshot
	Lease   *LeaseSummary
}

// VehicleSubject wraps a vehicle snapshot.
func VehicleSubject(v VehicleSnapshot) Subject {
	return Subject{Vehicle: &v}
}

// LeaseSubject wraps a lease summary.
func LeaseSubject(l LeaseSummary) Subject {
	return Subject{Lease: &l}
}

// Kind names the subject for logs and headers.
func (s Subject) Kind() string {
	switch {
	case s.Vehicle != nil:
		return "vehicle"
	case s.Lease != nil:
		return "lease"
	default:
		return "none"
	}
}

// statusLines renders the context block. Order matters; it is what the model
// sees first.
func (s Subject) statusLines() []string {
	switch {
	case s.Vehicle != nil:
		v := s.Vehicle
		return []string{
			"Current Vehicle Status:",
			fmt.Sprintf("- Model: %s", v.Model),
			fmt.Sprintf("- Battery: %d%% (%d mi)", v.BatteryLevel, v.RangeRemaining),
			fmt.Sprintf("- Software: %s", v.SoftwareVersion),
			fmt.Sprintf("- Inside Temp: %s°F", trimFloat(v.InsideTemp)),
			fmt.Sprintf("- Odometer: %d miles", v.Odometer),
			fmt.Sprintf("- Location: %s", v.Location),
		}
	case s.Lease != nil:
		l := s.Lease
		lines := []string{
			"Current Lease Status:",
			fmt.Sprintf("- Days Left: %d", l.DaysLeft),
			fmt.Sprintf("- Mileage: %d / %d mi (%.0f%% used)", l.CurrentMileage, l.AllowedMileage, l.MileageFraction()*100),
		}
		if l.Phase != "" {
			lines = append(lines, fmt.Sprintf("- Phase: %s", l.Phase))
		}
		return lines
	default:
		return nil
	}
}

// Prompt builds the instruction text sent to the model for a user question.
func Prompt(subject Subject, question string) string {
	var b strings.Builder
	b.WriteString("You are a helpful Tesla Vehicle Assistant.\n")
	for _, line := range subject.statusLines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("\nUser question: ")
	b.WriteString(question)
	b.WriteString("\n\nRespond in a concise, helpful, and professional tone, similar to an official vehicle interface.")
	return b.String()
}

func trimFloat(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.1f", f)
}
