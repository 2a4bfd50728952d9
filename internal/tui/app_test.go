package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/evlease/internal/advisor"
	"github.com/muurk/evlease/internal/lease"
	"github.com/muurk/evlease/internal/sequence"
	"github.com/muurk/evlease/internal/vehicle"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

// send feeds msgs through Update without running the returned commands
func send(m AppModel, msgs ...tea.Msg) AppModel {
	for _, msg := range msgs {
		updated, _ := m.Update(msg)
		m = updated.(AppModel)
	}
	return m
}

func newTestApp(t *testing.T, start Screen) (AppModel, *lease.Controller, *sequence.ManualScheduler) {
	t.Helper()
	sched := sequence.NewManualScheduler()
	ctrl := lease.NewController(lease.DefaultRecord(), lease.WithScheduler(sched))
	m := NewAppModel(Options{
		Controller:  ctrl,
		Vehicle:     vehicle.DefaultState(),
		StartScreen: start,
	})
	m = send(m, tea.WindowSizeMsg{Width: 110, Height: 45})
	return m, ctrl, sched
}

func assertView(t *testing.T, m AppModel, want string) {
	t.Helper()
	if view := m.View(); !strings.Contains(view, want) {
		t.Errorf("View() does not contain %q\n%s", want, view)
	}
}

func TestHomeNavigation(t *testing.T) {
	m, _, _ := newTestApp(t, "")

	if m.CurrentScreen != ScreenHome {
		t.Fatalf("CurrentScreen = %v, want %v", m.CurrentScreen, ScreenHome)
	}
	assertView(t, m, "Midnight")
	assertView(t, m, "Software v2024.20.1")

	m = send(m, enter)
	if m.CurrentScreen != ScreenFinancing {
		t.Fatalf("CurrentScreen = %v, want %v", m.CurrentScreen, ScreenFinancing)
	}
	assertView(t, m, "ACTIVE LEASE")
	assertView(t, m, "70 days remaining in term")

	m = send(m, enter)
	if m.CurrentScreen != ScreenLease {
		t.Fatalf("CurrentScreen = %v, want %v", m.CurrentScreen, ScreenLease)
	}

	m = send(m, esc)
	if m.CurrentScreen != ScreenFinancing {
		t.Errorf("esc from lease overview: CurrentScreen = %v, want %v", m.CurrentScreen, ScreenFinancing)
	}
	m = send(m, esc)
	if m.CurrentScreen != ScreenHome {
		t.Errorf("esc from financing: CurrentScreen = %v, want %v", m.CurrentScreen, ScreenHome)
	}
}

func TestHomeCursorSkipsInformationalEntries(t *testing.T) {
	m, _, _ := newTestApp(t, ScreenHome)

	// Climate and Charging have nowhere to go
	m = send(m, down)
	if m.homeCursor != 3 {
		t.Errorf("homeCursor = %d, want 3", m.homeCursor)
	}
	m = send(m, down)
	if m.homeCursor != 0 {
		t.Errorf("homeCursor = %d, want 0 after wrapping", m.homeCursor)
	}
}

func TestHelpToggle(t *testing.T) {
	m, _, _ := newTestApp(t, ScreenHome)
	m = send(m, runes("?"))
	if !m.Help.ShowAll {
		t.Error("Help.ShowAll = false after ?, want true")
	}
	m = send(m, runes("?"))
	if m.Help.ShowAll {
		t.Error("Help.ShowAll = true after second ?, want false")
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestApp(t, ScreenHome)
	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("q command returned %T, want tea.QuitMsg", cmd())
	}
}

func TestLeaseReturnToSurvey(t *testing.T) {
	m, ctrl, sched := newTestApp(t, ScreenLease)

	m = send(m, runes("3"))
	if got := ctrl.Phase(); got != lease.ReturnDay {
		t.Fatalf("Phase() = %v, want %v", got, lease.ReturnDay)
	}
	assertView(t, m, "DUE TODAY")

	// Finalize is refused until the checklist is complete
	m = send(m, runes("r"), runes("c"), runes("i"), runes("f"))
	if ctrl.Overlay() != lease.OverlayNone {
		t.Fatalf("Overlay() = %v, want None", ctrl.Overlay())
	}
	assertView(t, m, "Complete every checklist item")

	// Back out of the checklist and run the walkthrough
	m = send(m, esc)
	if ctrl.IsReturning() {
		t.Fatal("IsReturning() = true after esc")
	}
	m = send(m, enter)
	if ctrl.SubScreen() != lease.Inspection {
		t.Fatalf("SubScreen() = %v, want Inspection", ctrl.SubScreen())
	}
	assertView(t, m, "Start Walkthrough")
	m = send(m, enter, enter)
	assertView(t, m, "ESTIMATED CHARGES")
	m = send(m, enter)
	if ctrl.SubScreen() != lease.Overview || !ctrl.Record().IsEstimateConfirmed {
		t.Fatalf("after estimate: SubScreen() = %v, confirmed = %v", ctrl.SubScreen(), ctrl.Record().IsEstimateConfirmed)
	}

	m = send(m, runes("r"), runes("f"))
	if ctrl.Overlay() != lease.OverlayReturnProcessing {
		t.Fatalf("Overlay() = %v, want ReturnProcessing", ctrl.Overlay())
	}
	assertView(t, m, "Return Initiated")

	sched.Advance(4 * time.Second)
	if got := ctrl.Phase(); got != lease.PostReturn {
		t.Fatalf("Phase() = %v, want %v", got, lease.PostReturn)
	}
	m = m.refreshLease()
	assertView(t, m, "Vehicle Received")

	m = send(m, runes("p"))
	if m.Lease.ConfirmingPayment {
		t.Fatal("payment prompt shown before the bill was ready")
	}
	m = send(m, runes("b"), runes("p"))
	if !m.Lease.ConfirmingPayment {
		t.Fatal("ConfirmingPayment = false after p")
	}
	assertView(t, m, "Authorize payment of $450.00 to Tesla Finance?")

	m = send(m, runes("y"))
	if !ctrl.Paying() {
		t.Fatalf("Payment() = %v, want Authorizing", ctrl.Payment())
	}
	assertView(t, m, "Processing...")

	sched.Advance(2 * time.Second)
	m = m.refreshLease()
	assertView(t, m, "Payment Confirmed")

	sched.Advance(2*time.Second + 600*time.Millisecond)
	if ctrl.Overlay() != lease.OverlaySurvey {
		t.Fatalf("Overlay() = %v, want Survey", ctrl.Overlay())
	}
	m = m.refreshLease()
	assertView(t, m, "Rate Your Experience")

	m = send(m, enter)
	if ctrl.Survey().Submitted {
		t.Fatal("survey submitted without a score")
	}
	m = send(m, runes("5"), enter)
	if s := ctrl.Survey(); !s.Submitted || s.Score != 5 {
		t.Fatalf("Survey() = %+v, want submitted with score 5", s)
	}
	assertView(t, m, "Feedback Sent")

	m = send(m, enter)
	if ctrl.Overlay() != lease.OverlayNone || !ctrl.Paid() {
		t.Errorf("after dismiss: Overlay() = %v, Paid() = %v", ctrl.Overlay(), ctrl.Paid())
	}
	assertView(t, m, "Account Closed")
}

// refreshLease stands in for the timerFiredMsg path when a ManualScheduler
// fires callbacks directly.
func (m AppModel) refreshLease() AppModel {
	m.Lease = m.Lease.Refresh()
	return m
}

func TestLeasePaymentDeclined(t *testing.T) {
	m, ctrl, _ := newTestApp(t, ScreenLease)
	m = send(m, runes("4"), runes("b"), runes("p"), runes("n"))

	if m.Lease.ConfirmingPayment {
		t.Error("ConfirmingPayment = true after n")
	}
	if ctrl.Payment() != lease.PaymentIdle {
		t.Errorf("Payment() = %v, want Idle", ctrl.Payment())
	}
	if !ctrl.CanInitiatePayment() {
		t.Error("CanInitiatePayment() = false after declining")
	}
}

func TestLeaseSurveyFeedbackInput(t *testing.T) {
	m, ctrl, sched := newTestApp(t, ScreenLease)
	m = send(m, runes("4"), runes("b"), runes("p"), runes("y"))
	sched.RunAll()
	m = m.refreshLease()

	m = send(m, runes("4"))
	if ctrl.Survey().Score != 4 {
		t.Fatalf("Score = %d, want 4", ctrl.Survey().Score)
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyTab}, runes("great"))
	if !m.typing() {
		t.Fatal("feedback input not focused after tab")
	}
	// Digits go to the input while it has focus
	m = send(m, runes("1"), enter)

	s := ctrl.Survey()
	if !s.Submitted || s.Score != 4 || s.Feedback != "great1" {
		t.Errorf("Survey() = %+v, want score 4 with feedback %q", s, "great1")
	}
}

func TestLeasePresetCancelsOverlay(t *testing.T) {
	m, ctrl, sched := newTestApp(t, ScreenLease)
	m = send(m, runes("3"))
	ctrl.SetChecklistFlag(lease.FlagHasKeys, true)
	ctrl.SetChecklistFlag(lease.FlagPersonalItemsRemoved, true)
	ctrl.SelectSubScreen(lease.Inspection)
	ctrl.CompleteInspectionWalkthrough()
	ctrl.CompleteInspectionWalkthrough()
	ctrl.SelectSubScreen(lease.Overview)

	m = send(m, runes("r"), runes("f"))
	if ctrl.Overlay() != lease.OverlayReturnProcessing {
		t.Fatalf("Overlay() = %v, want ReturnProcessing", ctrl.Overlay())
	}

	// Navigation is blocked, presets are not
	m = send(m, esc)
	if m.CurrentScreen != ScreenLease {
		t.Errorf("esc during processing left the lease screen")
	}
	m = send(m, runes("1"))
	if ctrl.Overlay() != lease.OverlayNone || ctrl.Phase() != lease.PreWindow {
		t.Fatalf("after preset: Overlay() = %v, Phase() = %v", ctrl.Overlay(), ctrl.Phase())
	}
	sched.RunAll()
	if ctrl.Record().IsReturned {
		t.Error("cancelled return still committed")
	}
	assertView(t, m, lease.PreWindowBanner[:30])
}

func TestLeaseSchedule(t *testing.T) {
	m, ctrl, _ := newTestApp(t, ScreenLease)
	m = send(m, runes("2"), down, down, enter)
	if ctrl.SubScreen() != lease.Schedule {
		t.Fatalf("SubScreen() = %v, want Schedule", ctrl.SubScreen())
	}

	m = send(m, enter)
	if ctrl.Record().IsScheduled {
		t.Fatal("scheduled without a date")
	}

	m = send(m, tea.KeyMsg{Type: tea.KeyRight})
	if got := ctrl.DateDraft(); got != lease.ReturnDates[0] {
		t.Fatalf("DateDraft() = %q, want %q", got, lease.ReturnDates[0])
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyRight}, enter)
	if r := ctrl.Record(); !r.IsScheduled || r.ScheduledDate != lease.ReturnDates[1] {
		t.Fatalf("Record() = scheduled %v on %q, want %q", r.IsScheduled, r.ScheduledDate, lease.ReturnDates[1])
	}
	assertView(t, m, "Return Scheduled")

	m = send(m, runes("u"))
	if ctrl.Record().IsScheduled {
		t.Error("still scheduled after u")
	}
}

func TestLeaseOffers(t *testing.T) {
	m, ctrl, _ := newTestApp(t, ScreenLease)
	m = send(m, runes("2"), down, enter)
	if ctrl.SubScreen() != lease.Offers {
		t.Fatalf("SubScreen() = %v, want Offers", ctrl.SubScreen())
	}

	m = send(m, runes("a"))
	if ctrl.SubScreen() != lease.Offers {
		t.Fatal("accepted without a selection")
	}

	m = send(m, down, enter, runes("a"))
	if got := ctrl.Record().SelectedOption; got != lease.OfferCatalogue[1].Option {
		t.Errorf("SelectedOption = %v, want %v", got, lease.OfferCatalogue[1].Option)
	}
	if ctrl.SubScreen() != lease.Overview {
		t.Errorf("SubScreen() = %v, want Overview after accepting", ctrl.SubScreen())
	}
	assertView(t, m, "Selected: "+lease.OfferCatalogue[1].Option.String())
}

func TestLeaseMenuRespectsReachability(t *testing.T) {
	m, ctrl, _ := newTestApp(t, ScreenLease)

	// PreWindow shows only the banner
	m = send(m, enter)
	if ctrl.SubScreen() != lease.Overview {
		t.Errorf("SubScreen() = %v, want Overview", ctrl.SubScreen())
	}
	assertView(t, m, "Scheduling and retention offers unlock")
}

func TestTimerFiredRunsCallback(t *testing.T) {
	m, _, _ := newTestApp(t, ScreenHome)
	called := false
	updated, cmd := m.Update(timerFiredMsg{fn: func() { called = true }})
	if !called {
		t.Error("callback did not run")
	}
	if cmd != nil {
		t.Error("expected no follow-up without a channel scheduler")
	}
	_ = updated
}

func TestTelemetryUpdatesHome(t *testing.T) {
	m, _, _ := newTestApp(t, ScreenHome)

	states := make(chan vehicle.State, 1)
	updated, cmd := m.Update(telemetryConnectedMsg{states: states, url: "ws://10.0.0.2:8765/telemetry"})
	m = updated.(AppModel)
	if !m.Live {
		t.Fatal("Live = false after connect")
	}
	assertView(t, m, "live")

	next := vehicle.DefaultState()
	next.BatteryLevel = 55
	states <- next
	msg := cmd()
	if _, ok := msg.(telemetryMsg); !ok {
		t.Fatalf("wait command returned %T, want telemetryMsg", msg)
	}
	m = send(m, msg)
	assertView(t, m, "55%")

	close(states)
	m = send(m, telemetryClosedMsg{})
	if m.Live {
		t.Error("Live = true after close")
	}
}

func TestConnectFailureIsOffline(t *testing.T) {
	sched := sequence.NewManualScheduler()
	m := NewAppModel(Options{
		Controller: lease.NewController(lease.DefaultRecord(), lease.WithScheduler(sched)),
		Vehicle:    vehicle.DefaultState(),
		Connect: func(context.Context) (<-chan vehicle.State, string, error) {
			return nil, "", context.DeadlineExceeded
		},
	})
	msg := connectTelemetry(m.ctx, m.connect)()
	m = send(m, msg)
	if m.Live || m.TelemetryErr == nil {
		t.Errorf("Live = %v, TelemetryErr = %v; want offline with error", m.Live, m.TelemetryErr)
	}
	assertView(t, m, "offline")
}

func TestAssistantExchange(t *testing.T) {
	sched := sequence.NewManualScheduler()
	var gotSubject advisor.Subject
	m := NewAppModel(Options{
		Controller: lease.NewController(lease.DefaultRecord(), lease.WithScheduler(sched)),
		Vehicle:    vehicle.DefaultState(),
		Advisor: advisor.Func(func(_ context.Context, _ string, s advisor.Subject) (string, error) {
			gotSubject = s
			return "Precondition the cabin while plugged in.", nil
		}),
	})
	m = send(m, tea.WindowSizeMsg{Width: 110, Height: 45})

	m = send(m, runes("A"))
	if m.CurrentScreen != ScreenAssistant || m.Assistant.Subject != SubjectVehicle {
		t.Fatalf("screen = %v subject = %v, want vehicle assistant", m.CurrentScreen, m.Assistant.Subject)
	}
	assertView(t, m, "Ask me anything about your Model 3 Long Range.")

	m = send(m, runes("range?"))
	updated, cmd := m.Update(enter)
	m = updated.(AppModel)
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	submit := cmd()
	if _, ok := submit.(submitPromptMsg); !ok {
		t.Fatalf("enter produced %T, want submitPromptMsg", submit)
	}

	updated, cmd = m.Update(submit)
	m = updated.(AppModel)
	m = send(m, cmd())

	if gotSubject.Kind() != "vehicle" {
		t.Errorf("subject kind = %q, want vehicle", gotSubject.Kind())
	}
	assertView(t, m, "range?")
	assertView(t, m, "Precondition the cabin")

	m = send(m, esc)
	if m.CurrentScreen != ScreenHome {
		t.Errorf("esc: CurrentScreen = %v, want %v", m.CurrentScreen, ScreenHome)
	}
}

func TestAssistantLeaseSubjectFallback(t *testing.T) {
	m, ctrl, _ := newTestApp(t, ScreenLease)

	m = send(m, runes("A"))
	if m.Assistant.Subject != SubjectLease {
		t.Fatalf("Subject = %v, want lease", m.Assistant.Subject)
	}
	m = send(m, runes("return tips"))
	_, cmd := m.Update(enter)
	updated, cmd := m.Update(cmd())
	m = updated.(AppModel)
	m = send(m, cmd())

	// No API key: the transcript carries the fallback text
	last, ok := ctrl.Conversation().Last()
	if !ok || !last.Fallback || last.Text != advisor.FallbackReply {
		t.Errorf("Last() = %+v, want fallback reply", last)
	}

	m = send(m, esc)
	if m.CurrentScreen != ScreenLease {
		t.Errorf("esc: CurrentScreen = %v, want %v", m.CurrentScreen, ScreenLease)
	}
}
