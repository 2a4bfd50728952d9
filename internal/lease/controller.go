package lease

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/evlease/internal/advisor"
	"github.com/muurk/evlease/internal/config"
	"github.com/muurk/evlease/internal/logging"
	"github.com/muurk/evlease/internal/sequence"
)

// Timings are the hold durations of the scripted sequences.
type Timings struct {
	ReturnProcessing   time.Duration
	PaymentAuthorizing time.Duration
	PaymentConfirmed   time.Duration
	SurveyDelay        time.Duration
}

// DefaultTimings matches the owner app: a 4s return window, 2s per payment
// stage and a 600ms pause before the survey.
func DefaultTimings() Timings {
	return Timings{
		ReturnProcessing:   4000 * time.Millisecond,
		PaymentAuthorizing: 2000 * time.Millisecond,
		PaymentConfirmed:   2000 * time.Millisecond,
		SurveyDelay:        600 * time.Millisecond,
	}
}

// TimingsFromConfig converts the millisecond settings section.
func TimingsFromConfig(t config.Timings) Timings {
	ms := func(v int) time.Duration { return time.Duration(v) * time.Millisecond }
	return Timings{
		ReturnProcessing:   ms(t.ReturnProcessing),
		PaymentAuthorizing: ms(t.PaymentAuthorizing),
		PaymentConfirmed:   ms(t.PaymentConfirmed),
		SurveyDelay:        ms(t.SurveyDelay),
	}
}

// Confirmer is the explicit yes/no gate in front of a payment.
type Confirmer func(prompt string) bool

// Approve is a Confirmer that always says yes.
func Approve(string) bool { return true }

// Decline is a Confirmer that always says no.
func Decline(string) bool { return false }

// Option configures a Controller.
type Option func(*Controller)

// WithScheduler sets the scheduler that drives timed sequences.
func WithScheduler(s sequence.Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

// WithTimings overrides the sequence durations.
func WithTimings(t Timings) Option {
	return func(c *Controller) { c.timings = t }
}

// WithAdvisor starts a fresh conversation backed by a.
func WithAdvisor(a advisor.Advisor) Option {
	return func(c *Controller) { c.conv = advisor.NewConversation(a) }
}

// WithConversation shares an existing transcript.
func WithConversation(conv *advisor.Conversation) Option {
	return func(c *Controller) { c.conv = conv }
}

// Controller owns the lease record and the navigation state of the lease
// management screens.
//
// A Controller is not safe for concurrent use. Every method, and every
// callback its scheduler fires, must run on the same goroutine. The one
// exception is the function returned by AdviceRequest.
type Controller struct {
	record LeaseRecord

	sub             SubScreen
	overlay         Overlay
	payment         PaymentState
	billReady       bool
	isReturning     bool
	walkthroughStep int
	dateDraft       string
	survey          SurveyState

	sched   sequence.Scheduler
	timings Timings
	conv    *advisor.Conversation

	returnRun  *sequence.Run
	paymentRun *sequence.Run
	surveyRun  *sequence.Run
}

// SurveyState is the post-payment satisfaction survey.
type SurveyState struct {
	Score     int // 0 until chosen, then 1..5
	Submitted bool
	Feedback  string
}

// NewController creates a controller for record. Without WithScheduler the
// controller uses a ManualScheduler, so timed sequences only advance when the
// caller advances it.
func NewController(record LeaseRecord, opts ...Option) *Controller {
	c := &Controller{
		record:  record,
		timings: DefaultTimings(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sched == nil {
		c.sched = sequence.NewManualScheduler()
	}
	if c.conv == nil {
		c.conv = advisor.NewConversation(advisor.Unconfigured())
	}
	c.dateDraft = record.ScheduledDate
	return c
}

func (c *Controller) logAction(action string, accepted bool, fields ...zap.Field) bool {
	logging.LogLeaseAction(action, accepted, c.Phase().String(), fields...)
	return accepted
}

// busy reports whether an overlay suspends normal navigation.
func (c *Controller) busy() bool {
	return c.overlay != OverlayNone
}

// resetVisit clears the per-visit state. It runs on every sub-screen change.
func (c *Controller) resetVisit() {
	c.walkthroughStep = 0
	c.dateDraft = c.record.ScheduledDate
	c.isReturning = false
	c.survey = SurveyState{}
	if c.overlay == OverlaySurvey {
		c.overlay = OverlayNone
	}
}

// resetTerm additionally clears billing and payment. It runs whenever DaysLeft
// changes.
func (c *Controller) resetTerm() {
	c.resetVisit()
	c.billReady = false
	c.payment = PaymentIdle
}

func (c *Controller) switchTo(target SubScreen) {
	c.sub = target
	c.resetVisit()
}

func (c *Controller) setDaysLeft(daysLeft int, reason string) {
	from := c.Phase()
	c.record.DaysLeft = daysLeft
	c.resetTerm()
	logging.LogPhaseChange(from.String(), c.Phase().String(), daysLeft, reason)
}

// SelectSubScreen switches the active sub-screen and clears the per-visit
// state (walkthrough step, date draft, survey, return flow). It is refused
// only while an overlay is showing. Reachability is a presentation concern;
// see Reachable.
func (c *Controller) SelectSubScreen(target SubScreen) bool {
	if c.busy() || target < Overview || target > BillBreakdown {
		return c.logAction("select_sub_screen", false, zap.Stringer("target", target))
	}
	c.switchTo(target)
	return c.logAction("select_sub_screen", true, zap.Stringer("target", target))
}

// StartReturnFlow opens the return-day checklist. ReturnDay only.
func (c *Controller) StartReturnFlow() bool {
	if c.busy() || c.Phase() != ReturnDay || c.isReturning {
		return c.logAction("start_return_flow", false)
	}
	if c.sub != Overview {
		c.switchTo(Overview)
	}
	c.isReturning = true
	return c.logAction("start_return_flow", true)
}

// CancelReturnFlow leaves the checklist and goes back to the overview menu.
func (c *Controller) CancelReturnFlow() bool {
	if c.busy() || !c.isReturning {
		return c.logAction("cancel_return_flow", false)
	}
	c.isReturning = false
	return c.logAction("cancel_return_flow", true)
}

// SetChecklistFlag sets one of the owner-controlled checklist items.
// Inspection completion is not settable here; it comes from the walkthrough.
func (c *Controller) SetChecklistFlag(flag ChecklistFlag, value bool) bool {
	if c.busy() {
		return c.logAction("set_checklist_flag", false, zap.Stringer("flag", flag))
	}
	switch flag {
	case FlagHasKeys:
		c.record.HasKeys = value
	case FlagPersonalItemsRemoved:
		c.record.HasPersonalItemsRemoved = value
	default:
		return c.logAction("set_checklist_flag", false, zap.Stringer("flag", flag))
	}
	return c.logAction("set_checklist_flag", true, zap.Stringer("flag", flag), zap.Bool("value", value))
}

// CompleteInspectionWalkthrough advances the walkthrough one step. Step 0→1
// starts the scan, 1→2 completes the inspection, and at step 2 it confirms
// the estimate. Requires the Inspection sub-screen in a phase where it is
// reachable.
func (c *Controller) CompleteInspectionWalkthrough() bool {
	if c.busy() || c.sub != Inspection || !c.Reachable(Inspection) {
		return c.logAction("complete_inspection_walkthrough", false, zap.Int("step", c.walkthroughStep))
	}
	switch c.walkthroughStep {
	case 0:
		c.walkthroughStep = 1
	case 1:
		c.walkthroughStep = 2
		c.record.IsInspectionComplete = true
	default:
		return c.ConfirmEstimate()
	}
	return c.logAction("complete_inspection_walkthrough", true, zap.Int("step", c.walkthroughStep))
}

// ConfirmEstimate accepts the inspection estimate and returns to Overview.
// Only valid at the last walkthrough step.
func (c *Controller) ConfirmEstimate() bool {
	if c.busy() || c.sub != Inspection || c.walkthroughStep != 2 {
		return c.logAction("confirm_estimate", false)
	}
	c.record.IsEstimateConfirmed = true
	c.switchTo(Overview)
	return c.logAction("confirm_estimate", true)
}

// FinalizeReturn hands the car back. It requires ReturnDay and a complete
// checklist. The processing overlay is shown for the return processing
// window, after which the lease is committed as returned: IsReturned, a
// DaysLeft of -1, every checklist flag set, and the Overview sub-screen.
func (c *Controller) FinalizeReturn() bool {
	if c.busy() || c.returnRun.Active() || c.Phase() != ReturnDay || !c.ChecklistReady() {
		return c.logAction("finalize_return", false,
			zap.Bool("inspection", c.record.IsInspectionComplete),
			zap.Bool("keys", c.record.HasKeys),
			zap.Bool("personal_items", c.record.HasPersonalItemsRemoved))
	}

	c.returnRun = sequence.Start(c.sched, []sequence.Stage{{
		Name:  "processing",
		Hold:  c.timings.ReturnProcessing,
		Enter: func() { c.overlay = OverlayReturnProcessing },
	}}, c.commitReturn)

	return c.logAction("finalize_return", true)
}

func (c *Controller) commitReturn() {
	from := c.Phase()
	c.record.IsReturned = true
	c.record.IsInspectionComplete = true
	c.record.IsScheduled = true
	c.record.HasKeys = true
	c.record.HasPersonalItemsRemoved = true
	c.overlay = OverlayNone
	c.record.DaysLeft = -1
	c.resetTerm()
	c.sub = Overview
	logging.LogPhaseChange(from.String(), c.Phase().String(), c.record.DaysLeft, "return finalized")
}

// SelectRetentionOption records the owner's choice. It can be changed freely.
func (c *Controller) SelectRetentionOption(option RetentionOption) bool {
	if c.busy() || option < OptionReturn || option > OptionNewLease || !c.Reachable(Offers) {
		return c.logAction("select_retention_option", false, zap.Stringer("option", option))
	}
	c.record.SelectedOption = option
	return c.logAction("select_retention_option", true, zap.Stringer("option", option))
}

// AcceptSelection returns to Overview. The choice stays editable.
func (c *Controller) AcceptSelection() bool {
	if c.busy() || c.record.SelectedOption == OptionUnset {
		return c.logAction("accept_selection", false)
	}
	c.switchTo(Overview)
	return c.logAction("accept_selection", true, zap.Stringer("option", c.record.SelectedOption))
}

// SelectDateDraft picks a date on the schedule screen without booking it.
func (c *Controller) SelectDateDraft(date string) bool {
	if c.busy() || date == "" || c.record.IsScheduled {
		return c.logAction("select_date_draft", false, zap.String("date", date))
	}
	c.dateDraft = date
	return c.logAction("select_date_draft", true, zap.String("date", date))
}

// ScheduleReturn books the return for date.
func (c *Controller) ScheduleReturn(date string) bool {
	if c.busy() || date == "" || !c.Reachable(Schedule) {
		return c.logAction("schedule_return", false, zap.String("date", date))
	}
	c.record.IsScheduled = true
	c.record.ScheduledDate = date
	c.dateDraft = date
	return c.logAction("schedule_return", true, zap.String("date", date))
}

// Unschedule cancels the booking. The date is kept as the draft default.
func (c *Controller) Unschedule() bool {
	if c.busy() || !c.record.IsScheduled {
		return c.logAction("unschedule", false)
	}
	c.record.IsScheduled = false
	c.dateDraft = c.record.ScheduledDate
	return c.logAction("unschedule", true)
}

// MarkBillReady simulates the technician finishing the final bill.
// PostReturn only.
func (c *Controller) MarkBillReady() bool {
	if c.busy() || c.Phase() != PostReturn || c.billReady {
		return c.logAction("mark_bill_ready", false)
	}
	c.billReady = true
	return c.logAction("mark_bill_ready", true)
}

// CanInitiatePayment reports whether InitiatePayment would ask for
// confirmation.
func (c *Controller) CanInitiatePayment() bool {
	return !c.busy() && c.Phase() == PostReturn && c.billReady && c.payment == PaymentIdle
}

// InitiatePayment asks confirm with PaymentPrompt. A refusal changes nothing.
// On approval the payment runs through authorizing and confirmed stages, then
// settles and returns to Overview; the survey appears after SurveyDelay.
// Once started it cannot be stopped except by teardown or a debug preset.
func (c *Controller) InitiatePayment(confirm Confirmer) bool {
	if !c.CanInitiatePayment() {
		return c.logAction("initiate_payment", false, zap.Stringer("payment", c.payment))
	}
	if confirm == nil || !confirm(PaymentPrompt()) {
		return c.logAction("initiate_payment", false, zap.String("reason", "declined"))
	}

	c.paymentRun = sequence.Start(c.sched, []sequence.Stage{
		{
			Name: "authorizing",
			Hold: c.timings.PaymentAuthorizing,
			Enter: func() {
				c.payment = PaymentAuthorizing
				c.overlay = OverlayPaymentConfirming
			},
		},
		{
			Name:  "confirmed",
			Hold:  c.timings.PaymentConfirmed,
			Enter: func() { c.payment = PaymentConfirmed },
		},
	}, c.settlePayment)

	return c.logAction("initiate_payment", true, zap.Int("amount_cents", BillTotal()))
}

func (c *Controller) settlePayment() {
	c.payment = PaymentSettled
	c.overlay = OverlayNone
	c.switchTo(Overview)
	logging.LogLeaseAction("payment_settled", true, c.Phase().String())

	c.surveyRun = sequence.Start(c.sched, []sequence.Stage{{
		Name: "survey_delay",
		Hold: c.timings.SurveyDelay,
	}}, c.showSurvey)
}

func (c *Controller) showSurvey() {
	if c.overlay != OverlayNone || c.payment != PaymentSettled {
		return
	}
	c.survey = SurveyState{}
	c.overlay = OverlaySurvey
	logging.LogLeaseAction("survey_shown", true, c.Phase().String())
}

// SelectSurveyScore picks a score between 1 and 5 while the survey is open.
func (c *Controller) SelectSurveyScore(score int) bool {
	if c.overlay != OverlaySurvey || c.survey.Submitted || score < 1 || score > 5 {
		return c.logAction("select_survey_score", false, zap.Int("score", score))
	}
	c.survey.Score = score
	return c.logAction("select_survey_score", true, zap.Int("score", score))
}

// SubmitSurvey submits the chosen score with optional feedback. It succeeds
// once per survey and requires a score.
func (c *Controller) SubmitSurvey(feedback string) bool {
	if c.overlay != OverlaySurvey || c.survey.Submitted || c.survey.Score == 0 {
		return c.logAction("submit_survey", false)
	}
	c.survey.Submitted = true
	c.survey.Feedback = feedback
	return c.logAction("submit_survey", true, zap.Int("score", c.survey.Score))
}

// SubmitSurveyScore chooses score and submits in one step. A score outside
// 1..5 is rejected without changing anything.
func (c *Controller) SubmitSurveyScore(score int, feedback string) bool {
	if c.overlay != OverlaySurvey || c.survey.Submitted || score < 1 || score > 5 {
		return c.logAction("submit_survey", false, zap.Int("score", score))
	}
	c.survey.Score = score
	return c.SubmitSurvey(feedback)
}

// DismissSurvey closes the survey whether or not it was answered.
func (c *Controller) DismissSurvey() bool {
	if c.overlay != OverlaySurvey {
		return c.logAction("dismiss_survey", false)
	}
	c.overlay = OverlayNone
	return c.logAction("dismiss_survey", true, zap.Bool("submitted", c.survey.Submitted))
}

// AdviceSubject is the lease context forwarded with assistant questions.
func (c *Controller) AdviceSubject() advisor.Subject {
	return advisor.LeaseSubject(advisor.LeaseSummary{
		DaysLeft:       c.record.DaysLeft,
		CurrentMileage: c.record.CurrentMileage,
		AllowedMileage: c.record.AllowedMileage,
		Phase:          c.Phase().String(),
	})
}

// AdviceRequest captures the lease context now and returns a function that
// asks the question. The returned function touches only the conversation,
// so it may run on another goroutine.
func (c *Controller) AdviceRequest(prompt string) func(ctx context.Context) (advisor.Message, bool) {
	subject := c.AdviceSubject()
	conv := c.conv
	return func(ctx context.Context) (advisor.Message, bool) {
		return conv.Ask(ctx, prompt, subject)
	}
}

// RequestAdvice asks the assistant about the lease and waits for the reply.
// Failures become the fallback message in the transcript.
func (c *Controller) RequestAdvice(ctx context.Context, prompt string) (advisor.Message, bool) {
	return c.AdviceRequest(prompt)(ctx)
}

// Conversation returns the lease assistant transcript.
func (c *Controller) Conversation() *advisor.Conversation {
	return c.conv
}

// Scheduler returns the scheduler driving the timed sequences.
func (c *Controller) Scheduler() sequence.Scheduler {
	return c.sched
}

func (c *Controller) cancelRuns() {
	for _, run := range []*sequence.Run{c.returnRun, c.paymentRun, c.surveyRun} {
		if run != nil {
			run.Cancel()
		}
	}
	c.returnRun, c.paymentRun, c.surveyRun = nil, nil, nil
}

// Close cancels any pending timed stage.
func (c *Controller) Close() {
	c.cancelRuns()
}
