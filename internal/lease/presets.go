package lease

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/muurk/evlease/internal/logging"
)

// Preset is a debug fixture that jumps the lease to a phase.
type Preset int

const (
	PresetPre60 Preset = iota // 70 days left
	PresetT60                 // 58 days left
	PresetT0                  // return day
	PresetTPlus1              // the day after a completed return
)

// Presets lists every preset in timeline order.
var Presets = []Preset{PresetPre60, PresetT60, PresetT0, PresetTPlus1}

func (p Preset) String() string {
	switch p {
	case PresetPre60:
		return "Pre-60"
	case PresetT60:
		return "T-60"
	case PresetT0:
		return "T-0"
	case PresetTPlus1:
		return "T+1"
	default:
		return fmt.Sprintf("Preset(%d)", int(p))
	}
}

// ParsePreset accepts the display names, case-insensitively and with or
// without the dash ("t0", "T-0", "pre60", "t+1").
func ParsePreset(s string) (Preset, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "")
	for _, p := range Presets {
		if strings.ReplaceAll(strings.ToLower(p.String()), "-", "") == norm {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown preset %q (want one of Pre-60, T-60, T-0, T+1)", s)
}

// Apply sets the preset's fields on r.
func (p Preset) Apply(r *LeaseRecord) {
	switch p {
	case PresetPre60:
		r.DaysLeft, r.IsReturned = 70, false
	case PresetT60:
		r.DaysLeft, r.IsReturned = 58, false
	case PresetT0:
		r.DaysLeft, r.IsReturned = 0, false
	case PresetTPlus1:
		r.DaysLeft, r.IsReturned = -1, true
		r.IsInspectionComplete = true
		r.IsScheduled = true
		r.HasKeys = true
		r.HasPersonalItemsRemoved = true
	}
}

// ApplyPreset jumps to p. Pending timed stages are cancelled, any overlay is
// dropped, billing and payment are cleared and the view returns to Overview.
func (c *Controller) ApplyPreset(p Preset) bool {
	if p < PresetPre60 || p > PresetTPlus1 {
		return c.logAction("apply_preset", false, zap.Stringer("preset", p))
	}
	c.cancelRuns()
	c.overlay = OverlayNone

	from := c.Phase()
	p.Apply(&c.record)
	c.sub = Overview
	c.resetTerm()

	logging.LogPhaseChange(from.String(), c.Phase().String(), c.record.DaysLeft, "preset "+p.String())
	return c.logAction("apply_preset", true, zap.Stringer("preset", p))
}

// ForceDaysLeft sets DaysLeft directly, leaving the flags alone. Like a preset
// it cancels pending stages and clears navigation and billing state.
func (c *Controller) ForceDaysLeft(daysLeft int) {
	c.cancelRuns()
	c.overlay = OverlayNone
	c.sub = Overview
	c.setDaysLeft(daysLeft, "forced")
	c.logAction("force_days_left", true, zap.Int("days_left", daysLeft))
}
