// Package lease implements the lease return workflow behind the lease
// management screens.
//
// A Controller owns one LeaseRecord plus the ephemeral navigation state of the
// screens: the active sub-screen, the inspection walkthrough step, the date
// draft, the final bill and payment, the survey and at most one overlay.
//
// # Phases
//
// The lifecycle phase is computed from DaysLeft and IsReturned every time it is
// asked for:
//
//	PostReturn    IsReturned or DaysLeft < 0
//	PreWindow     DaysLeft > 60
//	ReturnWindow  0 < DaysLeft <= 60
//	ReturnDay     DaysLeft == 0
//
// Only FinalizeReturn and the debug presets change DaysLeft.
//
// # Guards
//
// Operations return true when they were applied. Calling one outside its
// phase, or while an overlay is showing, is a no-op that returns false; the
// presentation layer is expected to not offer it. Every call is logged via
// logging.LogLeaseAction.
//
// # Timed Sequences
//
// Return processing and the payment round trip are sequence runs driven by
// the controller's Scheduler:
//
//	FinalizeReturn   processing (4s) -> returned, DaysLeft -1, Overview
//	InitiatePayment  authorizing (2s) -> confirmed (2s) -> settled, Overview
//	                 -> survey after 600ms
//
// Scheduler callbacks mutate the controller, so they must be delivered on the
// goroutine that owns it. Tests use sequence.ManualScheduler; the TUI drains a
// sequence.ChannelScheduler from its update loop.
//
// # Example
//
//	sched := sequence.NewManualScheduler()
//	c := lease.NewController(lease.DefaultRecord(), lease.WithScheduler(sched))
//	c.ApplyPreset(lease.PresetT0)
//	c.StartReturnFlow()
//	c.SetChecklistFlag(lease.FlagHasKeys, true)
//	...
//	c.FinalizeReturn()
//	sched.Advance(4 * time.Second) // c.Phase() == lease.PostReturn
package lease
