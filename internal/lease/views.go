package lease

import (
	"fmt"
	"math"
)

// MileageWarningRatio is the used/allowed ratio above which mileage is
// flagged. It is a display warning only; nothing is clamped or blocked.
const MileageWarningRatio = 0.9

// PreWindowBanner is shown instead of the menu before the return window opens.
const PreWindowBanner = "Scheduling and retention offers unlock at 60 days prior to maturity."

// Record returns a copy of the lease record.
func (c *Controller) Record() LeaseRecord { return c.record }

// Phase derives the lifecycle phase from the record.
func (c *Controller) Phase() Phase { return c.record.Phase() }

// SubScreen returns the active sub-screen.
func (c *Controller) SubScreen() SubScreen { return c.sub }

// Overlay returns the active overlay.
func (c *Controller) Overlay() Overlay { return c.overlay }

// Payment returns the payment progress.
func (c *Controller) Payment() PaymentState { return c.payment }

// BillReady reports whether the final bill is available.
func (c *Controller) BillReady() bool { return c.billReady }

// Paying reports whether the payment is being authorized.
func (c *Controller) Paying() bool { return c.payment == PaymentAuthorizing }

// PaymentConfirmed reports whether the confirmation screen is showing.
func (c *Controller) PaymentConfirmed() bool { return c.payment == PaymentConfirmed }

// Paid reports whether the final bill has been settled.
func (c *Controller) Paid() bool { return c.payment == PaymentSettled }

// IsReturning reports whether the return-day checklist is open.
func (c *Controller) IsReturning() bool { return c.isReturning }

// WalkthroughStep returns the inspection walkthrough step (0-2).
func (c *Controller) WalkthroughStep() int { return c.walkthroughStep }

// DateDraft returns the date selected on the schedule screen.
func (c *Controller) DateDraft() string { return c.dateDraft }

// Survey returns the survey state.
func (c *Controller) Survey() SurveyState { return c.survey }

// ShowSurvey reports whether the survey overlay is open.
func (c *Controller) ShowSurvey() bool { return c.overlay == OverlaySurvey }

// Reachable applies the phase-gating table. Overview is always reachable;
// inspection, offers and scheduling only in the return window and on return
// day; the bill breakdown only once the bill is ready.
func (c *Controller) Reachable(s SubScreen) bool {
	phase := c.Phase()
	switch s {
	case Overview:
		return true
	case Inspection, Offers, Schedule:
		return phase == ReturnWindow || phase == ReturnDay
	case Billing:
		return phase != PreWindow
	case BillBreakdown:
		return phase == PostReturn && c.billReady
	default:
		return false
	}
}

// ReturnActionAvailable reports whether the return action is offered at all.
func (c *Controller) ReturnActionAvailable() bool {
	return c.Phase() == ReturnDay
}

// ChecklistReady reports whether the three gating flags are all set.
func (c *Controller) ChecklistReady() bool {
	r := c.record
	return r.IsInspectionComplete && r.HasKeys && r.HasPersonalItemsRemoved
}

// ChecklistItem is one line of the return-day checklist.
type ChecklistItem struct {
	Label string
	Done  bool
	Flag  ChecklistFlag
	// Toggle is false for items set elsewhere (inspection).
	Toggle bool
}

// Checklist lists the return-day checklist items.
func (c *Controller) Checklist() []ChecklistItem {
	return []ChecklistItem{
		{Label: "Pre-Inspection Done", Done: c.record.IsInspectionComplete},
		{Label: "Keys in Center Console", Done: c.record.HasKeys, Flag: FlagHasKeys, Toggle: true},
		{Label: "Personal Items Removed", Done: c.record.HasPersonalItemsRemoved, Flag: FlagPersonalItemsRemoved, Toggle: true},
	}
}

// OverviewKind selects what the Overview sub-screen shows.
type OverviewKind int

const (
	OverviewBanner    OverviewKind = iota // PreWindow: informational banner only
	OverviewMenu                          // ReturnWindow: full menu
	OverviewStartMenu                     // ReturnDay: start-return prompt above the menu
	OverviewChecklist                     // ReturnDay after StartReturnFlow
	OverviewTimeline                      // PostReturn: received and billing timeline
)

// OverviewKind returns the Overview layout for the current phase.
func (c *Controller) OverviewKind() OverviewKind {
	switch c.Phase() {
	case PreWindow:
		return OverviewBanner
	case ReturnWindow:
		return OverviewMenu
	case ReturnDay:
		if c.isReturning {
			return OverviewChecklist
		}
		return OverviewStartMenu
	default:
		return OverviewTimeline
	}
}

// MenuItem is an entry in the Overview menu.
type MenuItem struct {
	Target   SubScreen
	Title    string
	Subtitle string
}

// MenuItems returns the Overview menu. It is empty outside the return window
// and return day, and while the return checklist is open.
func (c *Controller) MenuItems() []MenuItem {
	kind := c.OverviewKind()
	if kind != OverviewMenu && kind != OverviewStartMenu {
		return nil
	}

	r := c.record
	inspection := "Prepare for return walkthrough"
	if r.IsInspectionComplete {
		inspection = "Completed ✅"
	}
	offers := "View loyalty incentives"
	if r.SelectedOption != OptionUnset {
		offers = "Selected: " + r.SelectedOption.String()
	}
	schedule := "Select location and time"
	if r.IsScheduled {
		schedule = "Confirmed"
	}

	return []MenuItem{
		{Target: Inspection, Title: "Pre-Inspection", Subtitle: inspection},
		{Target: Offers, Title: "Retention Offers", Subtitle: offers},
		{Target: Schedule, Title: "Schedule Return", Subtitle: schedule},
		{Target: Billing, Title: "Documents & Billing", Subtitle: "View lease agreement and final statements"},
	}
}

// StatusLine is the headline countdown on the lease card.
func (c *Controller) StatusLine() string {
	switch c.Phase() {
	case ReturnDay:
		return "DUE TODAY"
	case PostReturn:
		return "Lease terminated"
	default:
		return fmt.Sprintf("%d DAYS LEFT", c.record.DaysLeft)
	}
}

// Urgent reports whether the countdown should be highlighted.
func (c *Controller) Urgent() bool {
	return c.Phase() != PostReturn && c.record.DaysLeft <= 10
}

// TermRemaining is the financing card subtitle.
func (c *Controller) TermRemaining() string {
	if c.Phase() == PostReturn {
		return "Lease terminated"
	}
	return fmt.Sprintf("%d days remaining in term", c.record.DaysLeft)
}

// MileageRatio is current/allowed mileage, uncapped.
func (c *Controller) MileageRatio() float64 {
	if c.record.AllowedMileage <= 0 {
		return 0
	}
	return float64(c.record.CurrentMileage) / float64(c.record.AllowedMileage)
}

// MileageBar is MileageRatio capped at 1 for progress bars.
func (c *Controller) MileageBar() float64 {
	return math.Min(1, c.MileageRatio())
}

// MileageWarning reports whether mileage use is above the warning ratio.
func (c *Controller) MileageWarning() bool {
	return c.MileageRatio() > MileageWarningRatio
}

// RemainingMiles is the unused allowance, never negative.
func (c *Controller) RemainingMiles() int {
	return max(0, c.record.AllowedMileage-c.record.CurrentMileage)
}

// TimelineItem is a step of the post-return timeline.
type TimelineItem struct {
	Title    string
	Status   string
	Complete bool
	// MarksBillReady is set on the bill step while it can still be triggered.
	MarksBillReady bool
}

// Timeline lists the post-return steps. It is empty before PostReturn.
func (c *Controller) Timeline() []TimelineItem {
	if c.Phase() != PostReturn {
		return nil
	}

	received := c.record.ScheduledDate
	if received == "" {
		received = "June 15"
	}

	inspection := TimelineItem{Title: "Final Inspection", Status: "Pending Technician Review"}
	bill := TimelineItem{Title: "Final Bill Generated", Status: "Available in 3-5 Business Days", MarksBillReady: true}
	due := TimelineItem{Title: "Payment Due Date", Status: "TBD"}
	if c.billReady {
		inspection = TimelineItem{Title: "Final Inspection", Status: "Completed June 18", Complete: true}
		bill = TimelineItem{Title: "Final Bill Generated", Status: "Ready - June 20", Complete: true}
		due.Status = "Due July 15, 2024"
	}
	if c.Paid() {
		due = TimelineItem{Title: "Payment Due Date", Status: "Paid - Receipt Sent", Complete: true}
	}

	return []TimelineItem{
		{Title: "Vehicle Received", Status: "Completed " + received, Complete: true},
		inspection,
		bill,
		due,
	}
}

// PostReturnSummary is the headline block of the post-return overview.
type PostReturnSummary struct {
	Headline   string
	Subhead    string
	Location   string
	ReturnTime string
	Status     string
}

// PostReturnSummary describes the returned lease.
func (c *Controller) PostReturnSummary() PostReturnSummary {
	when := c.record.ScheduledDate
	if when == "" {
		when = "June 15, 2024"
	}
	s := PostReturnSummary{
		Headline:   "Vehicle Received",
		Subhead:    "Lease Termination in Progress",
		Location:   ReturnLocation,
		ReturnTime: when + ", 2:45 PM",
		Status:     "Success",
	}
	if c.Paid() {
		s.Headline, s.Subhead, s.Status = "Account Closed", "Thank you for your loyalty", "Paid"
	}
	return s
}

// Document is an entry on the Documents & Billing screen.
type Document struct {
	Title  string
	Status string
	// Opens is the sub-screen the document opens, if it can be opened now.
	Opens   SubScreen
	CanOpen bool
}

// Documents lists the lease agreement and the return statement.
func (c *Controller) Documents() []Document {
	statement := Document{Title: "Return Statement", Status: "Pending final return"}
	switch {
	case c.Paid():
		statement.Status = "Paid - Receipt Available"
	case c.billReady:
		statement.Status = "Ready - View Summary"
	}
	if c.Reachable(BillBreakdown) {
		statement.Opens, statement.CanOpen = BillBreakdown, true
	}
	return []Document{
		{Title: "Lease Agreement", Status: "Signed Jun 2021"},
		statement,
	}
}
