package telemetry

import (
	"fmt"
	"strings"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/evlease/internal/logging"
	"github.com/muurk/evlease/internal/vehicle"
	"github.com/muurk/evlease/internal/version"
)

const (
	// ServiceType is the mDNS service type vehicle servers advertise
	ServiceType = "_evlease._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// TelemetryPath is the WebSocket route streaming frames
	TelemetryPath = "/telemetry"

	// DefaultPort is the default vehicle server port
	DefaultPort = 8765
)

// TXTRecords returns the TXT records describing a vehicle server.
func TXTRecords(st vehicle.State) []string {
	return []string{
		"model=" + st.Model,
		"name=" + st.Name,
		"path=" + TelemetryPath,
		"version=" + version.Version,
	}
}

// InstanceName is the mDNS instance name for a vehicle, e.g. "midnight-evlease".
func InstanceName(st vehicle.State) string {
	name := strings.ToLower(strings.Join(strings.Fields(st.Name), "-"))
	if name == "" {
		return "evlease-vehicle"
	}
	return name + "-evlease"
}

// Advertise registers the vehicle server on the local network. The returned
// server must be shut down to withdraw the record.
func Advertise(port int, st vehicle.State) (*zeroconf.Server, error) {
	instance := InstanceName(st)
	server, err := zeroconf.Register(instance, ServiceType, ServiceDomain, port, TXTRecords(st), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}
	logging.Info("Advertising vehicle over mDNS",
		zap.String("instance", instance),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return server, nil
}
