package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

// DefaultScanTimeout is the default timeout for vehicle discovery
const DefaultScanTimeout = 5 * time.Second

// ErrNotFound is returned when no vehicle answered before the timeout.
var ErrNotFound = errors.New("no vehicle found on the local network")

// Endpoint is a vehicle server found on the network
type Endpoint struct {
	// Instance is the mDNS instance name (e.g., "midnight-evlease")
	Instance string

	// Name and Model come from the TXT records
	Name  string
	Model string

	// Host is the mDNS hostname
	Host string

	// IP prefers IPv4
	IP   string
	Port int

	// Path is the WebSocket route, "/telemetry" unless advertised otherwise
	Path string

	// Version is the server's build version, if advertised
	Version string

	DiscoveredAt time.Time
}

// URL returns the WebSocket URL for the endpoint's telemetry stream
func (e *Endpoint) URL() string {
	host := e.IP
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("ws://%s:%d%s", host, e.Port, e.Path)
}

// String returns a human-readable description
func (e *Endpoint) String() string {
	return fmt.Sprintf("%s (%s) at %s", e.Name, e.Model, e.URL())
}

// Scanner handles mDNS vehicle discovery
type Scanner struct {
	// Timeout is the maximum time to wait for answers
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// Scan browses for the full timeout and returns every vehicle that answered
func (s *Scanner) Scan(ctx context.Context) ([]*Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	var (
		mu    sync.Mutex
		found []*Endpoint
		seen  = make(map[string]bool)
	)
	err := s.browse(ctx, func(e *Endpoint) bool {
		mu.Lock()
		defer mu.Unlock()
		if !seen[e.Instance] {
			seen[e.Instance] = true
			found = append(found, e)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	<-ctx.Done()

	mu.Lock()
	defer mu.Unlock()
	return append([]*Endpoint(nil), found...), nil
}

// First returns the first vehicle that answers
func (s *Scanner) First(ctx context.Context) (*Endpoint, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	result := make(chan *Endpoint, 1)
	err := s.browse(ctx, func(e *Endpoint) bool {
		select {
		case result <- e:
		default:
		}
		return false
	})
	if err != nil {
		return nil, err
	}

	select {
	case e := <-result:
		return e, nil
	case <-ctx.Done():
		return nil, ErrNotFound
	}
}

// browse feeds parsed endpoints to fn until ctx ends or fn returns false
func (s *Scanner) browse(ctx context.Context, fn func(*Endpoint) bool) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if e := parseServiceEntry(entry); e != nil && !fn(e) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}
	return nil
}

// parseServiceEntry converts a zeroconf entry to an Endpoint.
// Returns nil if the entry has no usable address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) *Endpoint {
	if entry == nil {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	txt := parseTXT(entry.Text)
	e := &Endpoint{
		Instance:     entry.Instance,
		Name:         txt["name"],
		Model:        txt["model"],
		Host:         entry.HostName,
		IP:           ip,
		Port:         port,
		Path:         txt["path"],
		Version:      txt["version"],
		DiscoveredAt: time.Now(),
	}
	if e.Name == "" {
		e.Name = entry.Instance
	}
	if !strings.HasPrefix(e.Path, "/") {
		e.Path = TelemetryPath
	}
	return e
}

// parseTXT splits "key=value" records. Keys without a value map to "".
func parseTXT(records []string) map[string]string {
	out := make(map[string]string, len(records))
	for _, txt := range records {
		key, value, _ := strings.Cut(txt, "=")
		out[key] = value
	}
	return out
}
