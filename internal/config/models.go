package config

import (
	"fmt"
	"os"
	"time"
)

// Settings represents the entire user configuration file.
// Lease and vehicle sections only seed the in-memory state at startup; nothing
// the app does at runtime is written back.
type Settings struct {
	Version   int        `yaml:"version"`
	Advisor   *Advisor   `yaml:"advisor,omitempty"`
	Timings   *Timings   `yaml:"timings,omitempty"`
	Lease     *LeaseSeed `yaml:"lease,omitempty"`
	Vehicle   *Vehicle   `yaml:"vehicle,omitempty"`
	Telemetry *Telemetry `yaml:"telemetry,omitempty"`
}

// Advisor configures the text-advice collaborator.
// Note: the API key is NEVER stored. Only the name of the environment variable
// holding it is.
type Advisor struct {
	Model          string `yaml:"model"`           // Generative model name
	Endpoint       string `yaml:"endpoint"`        // Base URL of the generative language API
	APIKeyEnv      string `yaml:"api_key_env"`     // Environment variable holding the API key
	TimeoutSeconds int    `yaml:"timeout_seconds"` // Per-request timeout
}

// Timings holds the durations of the scripted lease sequences in milliseconds.
type Timings struct {
	ReturnProcessing   int `yaml:"return_processing"`
	PaymentAuthorizing int `yaml:"payment_authorizing"`
	PaymentConfirmed   int `yaml:"payment_confirmed"`
	SurveyDelay        int `yaml:"survey_delay"`
}

// LeaseSeed is the lease record the app starts with.
type LeaseSeed struct {
	TermMonths     int    `yaml:"term_months"`
	StartDate      string `yaml:"start_date"`
	MaturityDate   string `yaml:"maturity_date"`
	DaysLeft       int    `yaml:"days_left"`
	AllowedMileage int    `yaml:"allowed_mileage"`
	CurrentMileage int    `yaml:"current_mileage"`
}

// Vehicle is the vehicle state the app and the simulated vehicle start with.
type Vehicle struct {
	Name            string  `yaml:"name"`
	Model           string  `yaml:"model"`
	BatteryLevel    int     `yaml:"battery_level"`   // Percent
	RangeRemaining  int     `yaml:"range_remaining"` // Miles
	IsLocked        bool    `yaml:"is_locked"`
	IsCharging      bool    `yaml:"is_charging"`
	InsideTemp      float64 `yaml:"inside_temp"`  // Fahrenheit
	OutsideTemp     float64 `yaml:"outside_temp"` // Fahrenheit
	TargetTemp      float64 `yaml:"target_temp"`  // Fahrenheit
	Location        string  `yaml:"location"`
	SoftwareVersion string  `yaml:"software_version"`
	Odometer        int     `yaml:"odometer"` // Miles
}

// Telemetry controls where the app gets live vehicle state from.
type Telemetry struct {
	URL             string `yaml:"url,omitempty"`    // Explicit ws:// URL; overrides discovery
	AutoDiscover    bool   `yaml:"auto_discover"`    // Browse mDNS for a vehicle on startup
	DiscoverTimeout int    `yaml:"discover_timeout"` // mDNS discovery timeout in seconds
}

// NewSettings creates Settings populated with the built-in defaults.
func NewSettings() *Settings {
	return &Settings{
		Version:   1,
		Advisor:   defaultAdvisor(),
		Timings:   defaultTimings(),
		Lease:     defaultLease(),
		Vehicle:   defaultVehicle(),
		Telemetry: defaultTelemetry(),
	}
}

func defaultAdvisor() *Advisor {
	return &Advisor{
		Model:          "gemini-3-flash-preview",
		Endpoint:       "https://generativelanguage.googleapis.com",
		APIKeyEnv:      "API_KEY",
		TimeoutSeconds: 30,
	}
}

func defaultTimings() *Timings {
	return &Timings{
		ReturnProcessing:   4000,
		PaymentAuthorizing: 2000,
		PaymentConfirmed:   2000,
		SurveyDelay:        600,
	}
}

func defaultLease() *LeaseSeed {
	return &LeaseSeed{
		TermMonths:     36,
		StartDate:      "Jun 15, 2021",
		MaturityDate:   "Jun 15, 2024",
		DaysLeft:       70,
		AllowedMileage: 30000,
		CurrentMileage: 24850,
	}
}

func defaultVehicle() *Vehicle {
	return &Vehicle{
		Name:            "Midnight",
		Model:           "Model 3 Long Range",
		BatteryLevel:    78,
		RangeRemaining:  241,
		IsLocked:        true,
		IsCharging:      false,
		InsideTemp:      68,
		OutsideTemp:     72,
		TargetTemp:      70,
		Location:        "Palo Alto, CA",
		SoftwareVersion: "2024.20.1",
		Odometer:        24850,
	}
}

func defaultTelemetry() *Telemetry {
	return &Telemetry{
		AutoDiscover:    true,
		DiscoverTimeout: 5,
	}
}

// applyDefaults fills any section missing from a loaded file.
func (s *Settings) applyDefaults() {
	if s.Advisor == nil {
		s.Advisor = defaultAdvisor()
	}
	if s.Timings == nil {
		s.Timings = defaultTimings()
	}
	if s.Lease == nil {
		s.Lease = defaultLease()
	}
	if s.Vehicle == nil {
		s.Vehicle = defaultVehicle()
	}
	if s.Telemetry == nil {
		s.Telemetry = defaultTelemetry()
	}
}

// Validate checks values that would make the app misbehave.
func (s *Settings) Validate() error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", s.Version)
	}
	if s.Timings != nil {
		for name, v := range map[string]int{
			"return_processing":   s.Timings.ReturnProcessing,
			"payment_authorizing": s.Timings.PaymentAuthorizing,
			"payment_confirmed":   s.Timings.PaymentConfirmed,
			"survey_delay":        s.Timings.SurveyDelay,
		} {
			if v < 0 {
				return fmt.Errorf("timings.%s must not be negative (got %d)", name, v)
			}
		}
	}
	if s.Lease != nil {
		if s.Lease.AllowedMileage < 0 || s.Lease.CurrentMileage < 0 {
			return fmt.Errorf("lease mileage must not be negative")
		}
	}
	if s.Advisor != nil && s.Advisor.TimeoutSeconds < 0 {
		return fmt.Errorf("advisor.timeout_seconds must not be negative")
	}
	return nil
}

// APIKey reads the API key from the configured environment variable.
// Returns "" when the variable is unset.
func (a *Advisor) APIKey() string {
	if a == nil || a.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(a.APIKeyEnv)
}

// Timeout returns the request timeout as a duration.
func (a *Advisor) Timeout() time.Duration {
	if a == nil || a.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// Scaled returns the timings divided by speed. Speeds below 1 are treated as 1.
func (t *Timings) Scaled(speed float64) Timings {
	if speed < 1 {
		speed = 1
	}
	scale := func(ms int) int { return int(float64(ms) / speed) }
	return Timings{
		ReturnProcessing:   scale(t.ReturnProcessing),
		PaymentAuthorizing: scale(t.PaymentAuthorizing),
		PaymentConfirmed:   scale(t.PaymentConfirmed),
		SurveyDelay:        scale(t.SurveyDelay),
	}
}

// DiscoverTimeoutDuration returns the discovery timeout as a duration.
func (t *Telemetry) DiscoverTimeoutDuration() time.Duration {
	if t == nil || t.DiscoverTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(t.DiscoverTimeout) * time.Second
}
