package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/evlease/internal/config"
	"github.com/muurk/evlease/internal/logging"
	"github.com/muurk/evlease/internal/vehicle"
	"github.com/muurk/evlease/internal/version"
)

// ErrNoSource is returned by Resolve when telemetry is not configured and
// discovery is disabled.
var ErrNoSource = errors.New("no telemetry source configured")

// Subscribe connects to a vehicle server and streams vehicle states until ctx
// is cancelled or the server goes away; the channel is closed either way.
func Subscribe(ctx context.Context, url string) (<-chan vehicle.State, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: 10 * time.Second,
	}
	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())

	conn, _, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	logging.LogTelemetry(url, "connected")

	states := make(chan vehicle.State)
	done := make(chan struct{})

	// Unblock ReadJSON on cancellation
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			_ = conn.Close()
		case <-done:
		}
	}()

	go func() {
		defer func() {
			close(done)
			close(states)
			_ = conn.Close()
		}()
		for {
			var frame Frame
			if err := conn.ReadJSON(&frame); err != nil {
				if ctx.Err() == nil {
					logging.LogTelemetry(url, "disconnected", zap.Error(err))
				}
				return
			}
			select {
			case states <- frame.Vehicle:
			case <-ctx.Done():
				return
			}
		}
	}()

	return states, nil
}

// Resolve picks the telemetry URL: the configured one, otherwise the first
// vehicle found over mDNS when auto discovery is on.
func Resolve(ctx context.Context, cfg *config.Telemetry) (string, error) {
	if cfg == nil {
		return "", ErrNoSource
	}
	if u := strings.TrimSpace(cfg.URL); u != "" {
		return u, nil
	}
	if !cfg.AutoDiscover {
		return "", ErrNoSource
	}
	scanner := NewScanner()
	scanner.Timeout = cfg.DiscoverTimeoutDuration()
	e, err := scanner.First(ctx)
	if err != nil {
		return "", err
	}
	return e.URL(), nil
}
