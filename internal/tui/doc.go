// Package tui implements the full-screen terminal app for the vehicle owner.
//
// It is built on Bubble Tea and follows the Elm architecture: AppModel routes
// messages to the active screen and every screen returns an updated copy of
// itself.
//
// # Screens
//
//   - Home: live vehicle header (battery, range, doors, cabin temperature) and
//     the main menu
//   - Financing: the active lease card and the entry to lease management
//   - Lease: everything the lease.Controller exposes for the current phase and
//     sub-screen, plus the processing, payment and survey modals
//   - Assistant: a chat transcript for vehicle or lease questions
//
// All screens share RenderApplicationContainer for the header, body and
// context-sensitive help footer. Modals are drawn with RenderModal.
//
// # Concurrency
//
// The lease controller must only be touched from Update. Timed stages use a
// sequence.ChannelScheduler whose callbacks are delivered as timerFiredMsg by
// waitForTimer, so they run on the update loop like any key press.
//
// Advisor calls and telemetry reads happen in commands. A lease question
// captures its context with Controller.AdviceRequest before the command
// starts; a vehicle question snapshots the current vehicle.State.
//
// # Usage Example
//
//	sched := sequence.NewChannelScheduler()
//	ctrl := lease.NewController(lease.DefaultRecord(), lease.WithScheduler(sched))
//	app := tui.NewAppModel(tui.Options{
//	    Controller: ctrl,
//	    Scheduler:  sched,
//	    Vehicle:    vehicle.DefaultState(),
//	})
//	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
//	    log.Fatal(err)
//	}
package tui
