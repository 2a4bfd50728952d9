// Package sequence runs short scripted sequences of timed stages.
//
// A sequence is a fixed list of stages. The first stage is entered as soon as
// the sequence starts; every following stage is entered once the previous
// stage's hold time has elapsed. Progress is forward-only and single-shot:
// there is no rewind and no repeat. The lease workflow uses it for the return
// processing window and the payment round trip.
//
//	run := sequence.Start(sched, []sequence.Stage{
//	    {Name: "authorizing", Hold: 2 * time.Second, Enter: markAuthorizing},
//	    {Name: "confirmed", Hold: 2 * time.Second, Enter: markConfirmed},
//	}, settle)
//	<-run.Done()
//
// # Schedulers
//
// Stage timing is delegated to a Scheduler so the caller decides on which
// goroutine callbacks run:
//
//   - ManualScheduler: virtual clock advanced explicitly with Advance. Used by
//     tests and by the fast-forward demo.
//   - ChannelScheduler: real timers whose callbacks are posted to a channel.
//     The owner drains Fired and invokes each callback itself, which keeps all
//     state mutation on one goroutine (for example a Bubble Tea Update loop).
//
// # Cancellation
//
// Run.Cancel stops the pending timer so no further stage is entered. The
// lease controller cancels in-flight runs on teardown and when a debug preset
// jumps the lease to another phase.
package sequence
