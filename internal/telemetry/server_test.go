package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/muurk/evlease/internal/vehicle"
)

func newTestServer(t *testing.T) (*Server, *vehicle.Simulator, *httptest.Server) {
	t.Helper()
	sim := vehicle.NewSimulator(vehicle.DefaultState())
	s, err := New(&Config{}, sim)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(func() {
		ts.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, sim, ts
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + TelemetryPath
}

func receive(t *testing.T, states <-chan vehicle.State) vehicle.State {
	t.Helper()
	select {
	case st, ok := <-states:
		if !ok {
			t.Fatal("stream closed unexpectedly")
		}
		return st
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a frame")
	}
	return vehicle.State{}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNewRequiresSimulator(t *testing.T) {
	if _, err := New(&Config{}, nil); err == nil {
		t.Error("New(nil simulator) error = nil, want error")
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	cfg := &Config{}
	if _, err := New(cfg, vehicle.NewSimulator(vehicle.DefaultState())); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Interval != DefaultInterval {
		t.Errorf("Interval = %v, want %v", cfg.Interval, DefaultInterval)
	}
}

func TestTelemetryStream(t *testing.T) {
	s, sim, ts := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	states, err := Subscribe(ctx, wsURL(ts))
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	first := receive(t, states)
	if first.Odometer != 24850 {
		t.Errorf("initial Odometer = %d, want 24850", first.Odometer)
	}
	if got := s.Subscribers(); got != 1 {
		t.Errorf("Subscribers() = %d, want 1", got)
	}

	sim.SetDriving(true)
	frame := s.Broadcast(time.Hour)
	if frame.Seq != 1 {
		t.Errorf("frame.Seq = %d, want 1", frame.Seq)
	}

	next := receive(t, states)
	if next.Odometer != 24885 {
		t.Errorf("Odometer after an hour of driving = %d, want 24885", next.Odometer)
	}
	if next.IsLocked {
		t.Error("IsLocked = true while driving, want false")
	}

	cancel()
	for range states {
	}
	waitFor(t, func() bool { return s.Subscribers() == 0 })
}

func TestShutdownClosesSubscribers(t *testing.T) {
	s, _, ts := newTestServer(t)

	states, err := Subscribe(context.Background(), wsURL(ts))
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	receive(t, states)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	select {
	case _, ok := <-states:
		if ok {
			// A frame may still have been in flight; the close must follow.
			for range states {
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stream not closed after Shutdown")
	}
	if got := s.Subscribers(); got != 0 {
		t.Errorf("Subscribers() after Shutdown = %d, want 0", got)
	}

	resp, err := http.Get(ts.URL + TelemetryPath)
	if err != nil {
		t.Fatalf("GET after Shutdown error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status after Shutdown = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestSnapshot(t *testing.T) {
	_, sim, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/snapshot")
	if err != nil {
		t.Fatalf("GET /snapshot error = %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var got vehicle.State
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if got != sim.State() {
		t.Errorf("snapshot = %+v, want %+v", got, sim.State())
	}
}

func TestHealth(t *testing.T) {
	s, _, ts := newTestServer(t)
	s.Broadcast(time.Second)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz error = %v", err)
	}
	defer resp.Body.Close()

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	if h.Status != "ok" || h.Seq != 1 || h.Subscribers != 0 {
		t.Errorf("health = %+v, want status ok, seq 1, no subscribers", h)
	}
}

func TestUnknownRoute(t *testing.T) {
	_, _, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSubscribeDialError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	if _, err := Subscribe(context.Background(), wsURL(ts)); err == nil {
		t.Error("Subscribe() to a non-WebSocket route error = nil, want error")
	}
}
