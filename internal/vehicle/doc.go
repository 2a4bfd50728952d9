// Package vehicle models the car shown on the Home screen and served by the
// simulated vehicle.
//
// State mirrors what the owner app displays: battery, range, lock and charge
// status, cabin climate, location, software version and odometer. Simulator
// moves a State forward in time so the telemetry server has something live
// to publish.
package vehicle
