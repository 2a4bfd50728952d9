package telemetry

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/grandcat/zeroconf"

	"github.com/muurk/evlease/internal/config"
	"github.com/muurk/evlease/internal/vehicle"
)

func entry(instance, host string, port int, ips []net.IP, text ...string) *zeroconf.ServiceEntry {
	e := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	e.HostName = host
	e.Port = port
	e.Text = text
	for _, ip := range ips {
		if ip.To4() != nil {
			e.AddrIPv4 = append(e.AddrIPv4, ip)
		} else {
			e.AddrIPv6 = append(e.AddrIPv6, ip)
		}
	}
	return e
}

func TestParseServiceEntry(t *testing.T) {
	tests := []struct {
		name     string
		entry    *zeroconf.ServiceEntry
		wantNil  bool
		wantName string
		wantURL  string
	}{
		{
			name: "advertised vehicle",
			entry: entry("midnight-evlease", "garage.local.", 8765,
				[]net.IP{net.ParseIP("192.168.4.16")},
				"model=Model 3 Long Range", "name=Midnight", "path=/telemetry", "version=1.0.0"),
			wantName: "Midnight",
			wantURL:  "ws://192.168.4.16:8765/telemetry",
		},
		{
			name:     "no port defaults",
			entry:    entry("car", "car.local.", 0, []net.IP{net.ParseIP("10.0.0.5")}),
			wantName: "car",
			wantURL:  "ws://10.0.0.5:8765/telemetry",
		},
		{
			name:     "IPv6 only",
			entry:    entry("car", "car.local.", 9000, []net.IP{net.ParseIP("fe80::1")}, "name=Car"),
			wantName: "Car",
			wantURL:  "ws://[fe80::1]:9000/telemetry",
		},
		{
			name: "prefers IPv4",
			entry: entry("car", "car.local.", 9000,
				[]net.IP{net.ParseIP("fe80::1"), net.ParseIP("172.16.0.1")}),
			wantName: "car",
			wantURL:  "ws://172.16.0.1:9000/telemetry",
		},
		{
			name:     "custom path",
			entry:    entry("car", "car.local.", 80, []net.IP{net.ParseIP("10.0.0.1")}, "path=/ws"),
			wantName: "car",
			wantURL:  "ws://10.0.0.1:80/ws",
		},
		{
			name:    "no address",
			entry:   entry("car", "car.local.", 80, nil),
			wantNil: true,
		},
		{
			name:    "nil entry",
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseServiceEntry(tt.entry)
			if tt.wantNil {
				if got != nil {
					t.Errorf("parseServiceEntry() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("parseServiceEntry() = nil, want endpoint")
			}
			if got.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", got.Name, tt.wantName)
			}
			if got.URL() != tt.wantURL {
				t.Errorf("URL() = %q, want %q", got.URL(), tt.wantURL)
			}
		})
	}
}

func TestParseServiceEntryMetadata(t *testing.T) {
	got := parseServiceEntry(entry("midnight-evlease", "garage.local.", 8765,
		[]net.IP{net.ParseIP("192.168.4.16")},
		"model=Model 3 Long Range", "name=Midnight", "version=1.0.0", "flag"))
	if got.Model != "Model 3 Long Range" {
		t.Errorf("Model = %q", got.Model)
	}
	if got.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", got.Version)
	}
	if got.Host != "garage.local." {
		t.Errorf("Host = %q", got.Host)
	}
	if got.Instance != "midnight-evlease" {
		t.Errorf("Instance = %q", got.Instance)
	}
}

func TestParseTXT(t *testing.T) {
	got := parseTXT([]string{"a=1", "b=x=y", "flag"})
	want := map[string]string{"a": "1", "b": "x=y", "flag": ""}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("parseTXT()[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestTXTRecordsRoundTrip(t *testing.T) {
	st := vehicle.DefaultState()
	e := parseServiceEntry(entry(InstanceName(st), "h.local.", 8765,
		[]net.IP{net.ParseIP("10.1.1.1")}, TXTRecords(st)...))
	if e.Name != st.Name || e.Model != st.Model || e.Path != TelemetryPath {
		t.Errorf("endpoint = %+v, want name/model/path from %+v", e, st)
	}
}

func TestInstanceName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Midnight", "midnight-evlease"},
		{"Red  Car", "red-car-evlease"},
		{"", "evlease-vehicle"},
	}
	for _, tt := range tests {
		if got := InstanceName(vehicle.State{Name: tt.name}); got != tt.want {
			t.Errorf("InstanceName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestResolve(t *testing.T) {
	if _, err := Resolve(context.Background(), nil); !errors.Is(err, ErrNoSource) {
		t.Errorf("Resolve(nil) error = %v, want ErrNoSource", err)
	}

	off := &config.Telemetry{AutoDiscover: false}
	if _, err := Resolve(context.Background(), off); !errors.Is(err, ErrNoSource) {
		t.Errorf("Resolve(no url, no discovery) error = %v, want ErrNoSource", err)
	}

	explicit := &config.Telemetry{URL: " ws://car.local:8765/telemetry ", AutoDiscover: true}
	got, err := Resolve(context.Background(), explicit)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "ws://car.local:8765/telemetry" {
		t.Errorf("Resolve() = %q", got)
	}
}
