package main

import (
	"context"
	"errors"

	"github.com/muurk/evlease/internal/advisor"
	"github.com/muurk/evlease/internal/config"
	"github.com/muurk/evlease/internal/lease"
	"github.com/muurk/evlease/internal/sequence"
	"github.com/muurk/evlease/internal/telemetry"
	"github.com/muurk/evlease/internal/tui"
	"github.com/muurk/evlease/internal/vehicle"
)

// newAdvisor builds the advisor from settings. Without an API key every
// question gets the fallback reply.
func newAdvisor(settings *config.Settings) advisor.Advisor {
	key := settings.Advisor.APIKey()
	if key == "" {
		return advisor.Unconfigured()
	}
	client := advisor.NewClient(key)
	if settings.Advisor.Endpoint != "" {
		client.Endpoint = settings.Advisor.Endpoint
	}
	if settings.Advisor.Model != "" {
		client.Model = settings.Advisor.Model
	}
	client.SetTimeout(settings.Advisor.Timeout())
	return client
}

// newController builds the lease controller from settings. Timings are divided
// by speed; a nil sched gives a ManualScheduler.
func newController(settings *config.Settings, sched sequence.Scheduler, speed float64) *lease.Controller {
	opts := []lease.Option{
		lease.WithTimings(lease.TimingsFromConfig(settings.Timings.Scaled(speed))),
		lease.WithAdvisor(newAdvisor(settings)),
	}
	if sched != nil {
		opts = append(opts, lease.WithScheduler(sched))
	}
	return lease.NewController(lease.RecordFromConfig(settings.Lease), opts...)
}

// telemetryConnector returns the TUI's connect function, or nil when no
// telemetry source is configured.
func telemetryConnector(cfg *config.Telemetry) tui.ConnectFunc {
	if cfg == nil || (cfg.URL == "" && !cfg.AutoDiscover) {
		return nil
	}
	return func(ctx context.Context) (<-chan vehicle.State, string, error) {
		url, err := telemetry.Resolve(ctx, cfg)
		if err != nil {
			if errors.Is(err, telemetry.ErrNotFound) {
				return nil, "", errors.New("no vehicle found on the network")
			}
			return nil, "", err
		}
		states, err := telemetry.Subscribe(ctx, url)
		if err != nil {
			return nil, url, err
		}
		return states, url, nil
	}
}
