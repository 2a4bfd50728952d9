package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/evlease/internal/lease"
)

// LeaseModel is the lease management screen. It renders whatever the
// controller says the current phase and sub-screen are, and maps keys onto
// controller operations.
type LeaseModel struct {
	ctrl *lease.Controller
	keys keyMap

	// cursor indexes the list on the current sub-screen
	cursor      int
	lastSub     lease.SubScreen
	lastOverlay lease.Overlay

	// ConfirmingPayment shows the y/n authorization prompt
	ConfirmingPayment bool

	// Notice explains the last refused action
	Notice string

	Feedback textinput.Model
	Spinner  spinner.Model
	Mileage  progress.Model

	Width  int
	Height int

	// Set for the app to act on, cleared by it
	BackRequested bool
	AskRequested  bool
}

// NewLeaseModel creates the lease screen for ctrl
func NewLeaseModel(ctrl *lease.Controller, keys keyMap) LeaseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	feedback := textinput.New()
	feedback.Placeholder = "Tell us more (optional)"
	feedback.CharLimit = 280
	feedback.Width = 36

	return LeaseModel{
		ctrl:        ctrl,
		keys:        keys,
		lastSub:     ctrl.SubScreen(),
		lastOverlay: ctrl.Overlay(),
		Feedback:    feedback,
		Spinner:     s,
		Mileage:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(40), progress.WithoutPercentage()),
	}
}

// Init starts the spinner
func (m LeaseModel) Init() tea.Cmd {
	return m.Spinner.Tick
}

// Update handles messages and updates the model
func (m LeaseModel) Update(msg tea.Msg) (LeaseModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		m.Notice = ""
		switch {
		case m.ConfirmingPayment:
			m = m.updatePaymentPrompt(msg)
		case m.ctrl.Overlay() == lease.OverlaySurvey:
			m, cmd = m.updateSurvey(msg)
		case m.ctrl.Overlay() != lease.OverlayNone:
			m = m.updateBusy(msg)
		default:
			m = m.updateNormal(msg)
		}
	}

	m.sync()
	return m, cmd
}

// sync resets per-screen UI state when the controller moved on its own
func (m *LeaseModel) sync() {
	if sub := m.ctrl.SubScreen(); sub != m.lastSub {
		m.lastSub = sub
		m.cursor = 0
		if sub == lease.Schedule {
			m.cursor = max(slices.Index(lease.ReturnDates, m.ctrl.DateDraft()), 0)
		}
	}
	if overlay := m.ctrl.Overlay(); overlay != m.lastOverlay {
		m.lastOverlay = overlay
		if overlay == lease.OverlaySurvey {
			m.Feedback.Reset()
			m.Feedback.Blur()
		}
	}
	if !m.ctrl.CanInitiatePayment() {
		m.ConfirmingPayment = false
	}
}

// Refresh is called after timed stages fire so the view tracks the controller
func (m LeaseModel) Refresh() LeaseModel {
	m.sync()
	return m
}

func (m LeaseModel) updatePaymentPrompt(msg tea.KeyMsg) LeaseModel {
	switch {
	case key.Matches(msg, m.keys.Yes):
		m.ConfirmingPayment = false
		m.ctrl.InitiatePayment(lease.Approve)
	case key.Matches(msg, m.keys.No):
		m.ConfirmingPayment = false
		m.ctrl.InitiatePayment(lease.Decline)
	}
	return m
}

func (m LeaseModel) updateSurvey(msg tea.KeyMsg) (LeaseModel, tea.Cmd) {
	var cmd tea.Cmd
	survey := m.ctrl.Survey()

	if m.Feedback.Focused() {
		switch {
		case key.Matches(msg, m.keys.Submit):
			m.Feedback.Blur()
			m.ctrl.SubmitSurvey(strings.TrimSpace(m.Feedback.Value()))
		case key.Matches(msg, m.keys.Dismiss), key.Matches(msg, m.keys.Feedback):
			m.Feedback.Blur()
		default:
			m.Feedback, cmd = m.Feedback.Update(msg)
		}
		return m, cmd
	}

	switch {
	case survey.Submitted && (key.Matches(msg, m.keys.Submit) || key.Matches(msg, m.keys.Dismiss)):
		m.ctrl.DismissSurvey()
	case key.Matches(msg, m.keys.Score):
		m.ctrl.SelectSurveyScore(int(msg.Runes[0] - '0'))
	case key.Matches(msg, m.keys.Feedback) && !survey.Submitted:
		cmd = m.Feedback.Focus()
	case key.Matches(msg, m.keys.Submit):
		if !m.ctrl.SubmitSurvey(strings.TrimSpace(m.Feedback.Value())) {
			m.Notice = "Pick a score from 1 to 5 first"
		}
	case key.Matches(msg, m.keys.Dismiss):
		m.ctrl.DismissSurvey()
	}
	return m, cmd
}

// updateBusy handles keys while a timed overlay is showing. Only the debug
// presets and the assistant get through.
func (m LeaseModel) updateBusy(msg tea.KeyMsg) LeaseModel {
	switch {
	case key.Matches(msg, m.keys.Presets):
		m.applyPreset(msg)
	case key.Matches(msg, m.keys.Ask):
		m.AskRequested = true
	}
	return m
}

func (m *LeaseModel) applyPreset(msg tea.KeyMsg) {
	idx := int(msg.Runes[0] - '1')
	if idx >= 0 && idx < len(lease.Presets) {
		m.ConfirmingPayment = false
		m.ctrl.ApplyPreset(lease.Presets[idx])
	}
}

func (m LeaseModel) updateNormal(msg tea.KeyMsg) LeaseModel {
	switch {
	case key.Matches(msg, m.keys.Presets):
		m.applyPreset(msg)
		return m
	case key.Matches(msg, m.keys.Ask):
		m.AskRequested = true
		return m
	case key.Matches(msg, m.keys.Back):
		m.back()
		return m
	}

	switch m.ctrl.SubScreen() {
	case lease.Overview:
		m.updateOverview(msg)
	case lease.Inspection:
		if key.Matches(msg, m.keys.Enter) {
			m.ctrl.CompleteInspectionWalkthrough()
		}
	case lease.Offers:
		m.updateOffers(msg)
	case lease.Schedule:
		m.updateSchedule(msg)
	case lease.Billing:
		m.updateBilling(msg)
	case lease.BillBreakdown:
		if key.Matches(msg, m.keys.Pay) {
			m.requestPayment()
		}
	}
	return m
}

func (m *LeaseModel) back() {
	switch {
	case m.ctrl.SubScreen() == lease.BillBreakdown:
		m.ctrl.SelectSubScreen(lease.Billing)
	case m.ctrl.SubScreen() != lease.Overview:
		m.ctrl.SelectSubScreen(lease.Overview)
	case m.ctrl.IsReturning():
		m.ctrl.CancelReturnFlow()
	default:
		m.BackRequested = true
	}
}

func (m *LeaseModel) moveCursor(msg tea.KeyMsg, n int) {
	if n == 0 {
		return
	}
	switch {
	case key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Left):
		m.cursor = (m.cursor - 1 + n) % n
	case key.Matches(msg, m.keys.Down), key.Matches(msg, m.keys.Right):
		m.cursor = (m.cursor + 1) % n
	}
}

func (m *LeaseModel) updateOverview(msg tea.KeyMsg) {
	switch m.ctrl.OverviewKind() {
	case lease.OverviewMenu, lease.OverviewStartMenu:
		items := m.ctrl.MenuItems()
		switch {
		case key.Matches(msg, m.keys.StartReturn):
			m.ctrl.StartReturnFlow()
		case key.Matches(msg, m.keys.Enter):
			if m.cursor < len(items) {
				if target := items[m.cursor].Target; m.ctrl.Reachable(target) {
					m.ctrl.SelectSubScreen(target)
				}
			}
		default:
			m.moveCursor(msg, len(items))
		}

	case lease.OverviewChecklist:
		r := m.ctrl.Record()
		switch {
		case key.Matches(msg, m.keys.ToggleKeys):
			m.ctrl.SetChecklistFlag(lease.FlagHasKeys, !r.HasKeys)
		case key.Matches(msg, m.keys.ToggleItems):
			m.ctrl.SetChecklistFlag(lease.FlagPersonalItemsRemoved, !r.HasPersonalItemsRemoved)
		case key.Matches(msg, m.keys.Finalize):
			if !m.ctrl.FinalizeReturn() {
				m.Notice = "Complete every checklist item before finalizing"
			}
		case key.Matches(msg, m.keys.CancelFlow):
			m.ctrl.CancelReturnFlow()
		}

	case lease.OverviewTimeline:
		switch {
		case key.Matches(msg, m.keys.BillReady):
			m.ctrl.MarkBillReady()
		case key.Matches(msg, m.keys.Documents):
			m.ctrl.SelectSubScreen(lease.Billing)
		case key.Matches(msg, m.keys.Pay):
			m.requestPayment()
		}
	}
}

func (m *LeaseModel) updateOffers(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.Enter):
		m.ctrl.SelectRetentionOption(lease.OfferCatalogue[m.cursor].Option)
	case key.Matches(msg, m.keys.Accept):
		if !m.ctrl.AcceptSelection() {
			m.Notice = "Select an offer first"
		}
	default:
		m.moveCursor(msg, len(lease.OfferCatalogue))
	}
}

func (m *LeaseModel) updateSchedule(msg tea.KeyMsg) {
	if m.ctrl.Record().IsScheduled {
		if key.Matches(msg, m.keys.Unschedule) {
			m.ctrl.Unschedule()
		}
		return
	}
	switch {
	case key.Matches(msg, m.keys.Enter):
		if !m.ctrl.ScheduleReturn(m.ctrl.DateDraft()) {
			m.Notice = "Pick a date first"
		}
	case key.Matches(msg, m.keys.Left), key.Matches(msg, m.keys.Right),
		key.Matches(msg, m.keys.Up), key.Matches(msg, m.keys.Down):
		if m.ctrl.DateDraft() == "" {
			m.cursor = 0
		} else {
			m.moveCursor(msg, len(lease.ReturnDates))
		}
		m.ctrl.SelectDateDraft(lease.ReturnDates[m.cursor])
	}
}

func (m *LeaseModel) updateBilling(msg tea.KeyMsg) {
	docs := m.ctrl.Documents()
	switch {
	case key.Matches(msg, m.keys.Enter):
		if m.cursor < len(docs) && docs[m.cursor].CanOpen {
			m.ctrl.SelectSubScreen(docs[m.cursor].Opens)
		}
	case key.Matches(msg, m.keys.Pay):
		m.requestPayment()
	default:
		m.moveCursor(msg, len(docs))
	}
}

func (m *LeaseModel) requestPayment() {
	if m.ctrl.CanInitiatePayment() {
		m.ConfirmingPayment = true
		return
	}
	if m.ctrl.Phase() == lease.PostReturn && !m.ctrl.BillReady() {
		m.Notice = "The final bill is not ready yet"
	}
}

// ContextKeys returns the bindings that do something right now
func (m LeaseModel) ContextKeys() keySet {
	k := m.keys
	switch {
	case m.ConfirmingPayment:
		return keySet{k.Yes, k.No}
	case m.ctrl.Overlay() == lease.OverlaySurvey:
		if m.ctrl.Survey().Submitted {
			return keySet{k.Dismiss}
		}
		return keySet{k.Score, k.Feedback, k.Submit, k.Dismiss}
	case m.ctrl.Overlay() != lease.OverlayNone:
		return keySet{k.Presets}
	}

	set := keySet{}
	switch m.ctrl.SubScreen() {
	case lease.Overview:
		switch m.ctrl.OverviewKind() {
		case lease.OverviewStartMenu:
			set = append(set, k.StartReturn, k.Up, k.Down, k.Enter)
		case lease.OverviewMenu:
			set = append(set, k.Up, k.Down, k.Enter)
		case lease.OverviewChecklist:
			set = append(set, k.ToggleKeys, k.ToggleItems, k.Finalize, k.CancelFlow)
		case lease.OverviewTimeline:
			if !m.ctrl.BillReady() {
				set = append(set, k.BillReady)
			}
			set = append(set, k.Documents)
			if m.ctrl.CanInitiatePayment() {
				set = append(set, k.Pay)
			}
		}
	case lease.Inspection:
		set = append(set, k.Enter)
	case lease.Offers:
		set = append(set, k.Up, k.Down, k.Enter, k.Accept)
	case lease.Schedule:
		if m.ctrl.Record().IsScheduled {
			set = append(set, k.Unschedule)
		} else {
			set = append(set, k.Left, k.Right, k.Enter)
		}
	case lease.Billing:
		set = append(set, k.Up, k.Down, k.Enter)
	case lease.BillBreakdown:
		if m.ctrl.CanInitiatePayment() {
			set = append(set, k.Pay)
		}
	}
	return append(set, k.Back, k.Ask, k.Presets)
}

// Modal returns the modal to draw over the screen, or "" for none
func (m LeaseModel) Modal() string {
	width := SafeModalWidth(64, m.Width)
	box := ModalStyle.Width(width)

	switch {
	case m.ConfirmingPayment:
		return box.Render(lipgloss.JoinVertical(lipgloss.Center,
			RenderTitle("Confirm Payment"),
			lease.PaymentPrompt(),
			"",
			SubtitleStyle.Render("y authorize • n cancel"),
		))
	}

	switch m.ctrl.Overlay() {
	case lease.OverlayReturnProcessing:
		return box.Render(lipgloss.JoinVertical(lipgloss.Center,
			RenderTitle(m.Spinner.View()+" Return Initiated"),
			"Thank you for being a Tesla customer.",
			"Your vehicle is now being processed.",
		))

	case lease.OverlayPaymentConfirming:
		if m.ctrl.Paying() {
			return box.Render(lipgloss.JoinVertical(lipgloss.Center,
				RenderTitle(m.Spinner.View()+" Processing..."),
				fmt.Sprintf("Authorizing %s to %s", lease.FormatCents(lease.BillTotal()), lease.PaymentPayee),
			))
		}
		return box.Render(lipgloss.JoinVertical(lipgloss.Center,
			RenderTitle(DoneStyle.Render("✓ Payment Confirmed")),
			"Your final statement has been settled.",
		))

	case lease.OverlaySurvey:
		return box.Render(m.renderSurvey())
	}
	return ""
}

func (m LeaseModel) renderSurvey() string {
	survey := m.ctrl.Survey()
	if survey.Submitted {
		return lipgloss.JoinVertical(lipgloss.Center,
			RenderTitle(DoneStyle.Render("✓ Feedback Sent")),
			"Your loyalty is appreciated. Thank you for choosing Tesla.",
			"",
			SubtitleStyle.Render("enter dismiss"),
		)
	}

	scores := make([]string, 0, 5)
	for i := 1; i <= 5; i++ {
		label := fmt.Sprintf(" %d ", i)
		if survey.Score == i {
			scores = append(scores, SelectedMenuItemStyle.UnsetPaddingLeft().Render("["+label+"]"))
		} else {
			scores = append(scores, " "+label+" ")
		}
	}

	lines := []string{
		RenderTitle("Rate Your Experience"),
		"How would you rate the lease return process today?",
		"",
		strings.Join(scores, " "),
		SubtitleStyle.Render("Needs Work                 Excellent"),
		"",
		m.Feedback.View(),
	}
	if m.Notice != "" {
		lines = append(lines, "", WarningStyle.Render(m.Notice))
	}
	lines = append(lines, "", SubtitleStyle.Render("1-5 score • tab feedback • enter submit • esc close"))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// View renders the screen body (without container or modal)
func (m LeaseModel) View() string {
	var body string
	switch m.ctrl.SubScreen() {
	case lease.Inspection:
		body = m.viewInspection()
	case lease.Offers:
		body = m.viewOffers()
	case lease.Schedule:
		body = m.viewSchedule()
	case lease.Billing:
		body = m.viewBilling()
	case lease.BillBreakdown:
		body = m.viewBillBreakdown()
	default:
		body = m.viewOverview()
	}

	parts := []string{m.viewHeader(), body}
	if m.Notice != "" {
		parts = append(parts, WarningStyle.Render("! "+m.Notice))
	}
	parts = append(parts, m.viewDebugStrip())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m LeaseModel) viewHeader() string {
	status := m.ctrl.StatusLine()
	if m.ctrl.Urgent() {
		status = UrgentStyle.Render(status)
	} else {
		status = lipgloss.NewStyle().Bold(true).Render(status)
	}

	title := "Lease Management"
	if sub := m.ctrl.SubScreen(); sub != lease.Overview {
		title += " › " + subScreenTitle(sub)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle(title),
		status+"  "+SubtitleStyle.Render(m.ctrl.Phase().String()),
		"",
	)
}

func subScreenTitle(s lease.SubScreen) string {
	switch s {
	case lease.Inspection:
		return "Pre-Inspection Walkthrough"
	case lease.Offers:
		return "Retention Offers"
	case lease.Schedule:
		return "Return Scheduling"
	case lease.Billing:
		return "Documents & Billing"
	case lease.BillBreakdown:
		return "Final Statement"
	default:
		return "Overview"
	}
}

func (m LeaseModel) viewMileage() string {
	r := m.ctrl.Record()
	used := fmt.Sprintf("%s / %s mi", lease.FormatMiles(r.CurrentMileage), lease.FormatMiles(r.AllowedMileage))
	if m.ctrl.MileageWarning() {
		used = WarningStyle.Render(used + "  (nearing allowance)")
	}
	return CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		LabelStyle.Render("MILEAGE"),
		m.Mileage.ViewAs(m.ctrl.MileageBar()),
		used+SubtitleStyle.Render(fmt.Sprintf("  %s mi remaining", lease.FormatMiles(m.ctrl.RemainingMiles()))),
	))
}

func (m LeaseModel) viewOverview() string {
	switch m.ctrl.OverviewKind() {
	case lease.OverviewBanner:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.viewMileage(),
			BannerStyle.Render(lease.PreWindowBanner),
		)

	case lease.OverviewChecklist:
		lines := []string{LabelStyle.Render("RETURN CHECKLIST"), ""}
		for _, item := range m.ctrl.Checklist() {
			lines = append(lines, RenderCheck(item.Label, item.Done))
		}
		lines = append(lines, "")
		if m.ctrl.ChecklistReady() {
			lines = append(lines, DoneStyle.Render("Ready to finalize: drop the car at "+lease.ReturnLocation))
		} else {
			lines = append(lines, SubtitleStyle.Render("Finalize unlocks once every item is checked"))
		}
		return CardStyle.Render(strings.Join(lines, "\n"))

	case lease.OverviewTimeline:
		return m.viewTimeline()
	}

	var b strings.Builder
	b.WriteString(m.viewMileage())
	b.WriteString("\n")
	if m.ctrl.OverviewKind() == lease.OverviewStartMenu {
		b.WriteString(BannerStyle.Render("Today is your return day.\nPress r to start the return at " + lease.ReturnLocation + "."))
		b.WriteString("\n")
	}
	for i, item := range m.ctrl.MenuItems() {
		line := fmt.Sprintf("%-22s %s", item.Title, SubtitleStyle.Render(item.Subtitle))
		if !m.ctrl.Reachable(item.Target) {
			b.WriteString(DisabledMenuItemStyle.Render(line))
		} else {
			b.WriteString(RenderMenuItem(line, i == m.cursor))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m LeaseModel) viewTimeline() string {
	s := m.ctrl.PostReturnSummary()
	head := lipgloss.JoinVertical(lipgloss.Left,
		DoneStyle.Bold(true).Render("✓ "+s.Headline),
		SubtitleStyle.Render(s.Subhead),
		"",
		fmt.Sprintf("%-14s %s", "Location", s.Location),
		fmt.Sprintf("%-14s %s", "Return Time", s.ReturnTime),
		fmt.Sprintf("%-14s %s", "Status", DoneStyle.Render(s.Status)),
	)

	lines := []string{LabelStyle.Render("FINAL INSPECTION & BILLING"), ""}
	for _, item := range m.ctrl.Timeline() {
		status := SubtitleStyle.Render(item.Status)
		if item.MarksBillReady && !item.Complete {
			status += SubtitleStyle.Render("  (b to simulate)")
		}
		lines = append(lines, RenderCheck(item.Title, item.Complete)+"  "+status)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		CardStyle.Render(head),
		CardStyle.Render(strings.Join(lines, "\n")),
	)
}

func (m LeaseModel) viewInspection() string {
	switch m.ctrl.WalkthroughStep() {
	case 0:
		return lipgloss.JoinVertical(lipgloss.Left,
			"We'll guide you through a 3D scan of your vehicle to estimate",
			"wear and tear before your return.",
			"",
			RenderMenuItem("Start Walkthrough", true),
		)
	case 1:
		return lipgloss.JoinVertical(lipgloss.Left,
			BannerStyle.Render(m.Spinner.View()+" Scanning Front Fascia... 48%"),
			"",
			RenderMenuItem("Manual Override: Complete", true),
		)
	}

	lines := []string{
		fmt.Sprintf("%-28s %s", LabelStyle.Render("ESTIMATED CHARGES"),
			lease.FormatCents(lease.EstimateRange[0])+" - "+lease.FormatCents(lease.EstimateRange[1])),
		"",
	}
	for _, l := range lease.EstimateLines {
		lines = append(lines, fmt.Sprintf("%-28s %10s", l.Label, lease.FormatCents(l.Cents)))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		CardStyle.Render(strings.Join(lines, "\n")),
		RenderMenuItem("Confirm Estimate", true),
	)
}

func (m LeaseModel) viewOffers() string {
	selected := m.ctrl.Record().SelectedOption
	var b strings.Builder
	for i, offer := range lease.OfferCatalogue {
		mark := "( )"
		if offer.Option == selected {
			mark = "(•)"
		}
		lines := []string{mark + " " + lipgloss.NewStyle().Bold(true).Render(offer.Title), "    " + SubtitleStyle.Render(offer.Subtitle)}
		if offer.Tag != "" {
			lines = append(lines, "    "+DoneStyle.Render(offer.Tag))
		}
		card := CardStyle
		if i == m.cursor {
			card = card.BorderForeground(HighlightColor)
		}
		b.WriteString(card.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}
	if selected == lease.OptionUnset {
		b.WriteString(DisabledMenuItemStyle.Render("Accept Selection"))
	} else {
		b.WriteString(RenderMenuItem("Accept Selection (a)", false))
	}
	return b.String()
}

func (m LeaseModel) viewSchedule() string {
	r := m.ctrl.Record()
	if r.IsScheduled {
		return CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			DoneStyle.Bold(true).Render("✓ Return Scheduled"),
			r.ScheduledDate+" at 2:00 PM",
			SubtitleStyle.Render(lease.ReturnLocation),
			"",
			SubtitleStyle.Render("u to reschedule"),
		))
	}

	dates := make([]string, 0, len(lease.ReturnDates))
	for _, d := range lease.ReturnDates {
		if d == m.ctrl.DateDraft() {
			dates = append(dates, SelectedMenuItemStyle.UnsetPaddingLeft().Render("["+d+"]"))
		} else {
			dates = append(dates, " "+d+" ")
		}
	}
	action := DisabledMenuItemStyle.Render("Schedule Return")
	if m.ctrl.DateDraft() != "" {
		action = RenderMenuItem("Schedule Return", true)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		CardStyle.Render(LabelStyle.Render("SELECT LOCATION")+"\n"+lease.ReturnLocation+SubtitleStyle.Render("  1.2 miles away")),
		CardStyle.Render(LabelStyle.Render("SELECT DATE")+"\n"+strings.Join(dates, "  ")),
		action,
	)
}

func (m LeaseModel) viewBilling() string {
	var b strings.Builder
	for i, doc := range m.ctrl.Documents() {
		line := fmt.Sprintf("%-20s %s", doc.Title, SubtitleStyle.Render(doc.Status))
		if doc.CanOpen {
			b.WriteString(RenderMenuItem(line, i == m.cursor))
		} else if i == m.cursor {
			b.WriteString(SelectedMenuItemStyle.Foreground(SubtleColor).Render("→ " + line))
		} else {
			b.WriteString(DisabledMenuItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m LeaseModel) viewBillBreakdown() string {
	lines := make([]string, 0, len(lease.BillLines)+3)
	for _, l := range lease.BillLines {
		amount := lease.FormatCents(l.Cents)
		if l.Credit {
			amount = DoneStyle.Render(amount)
		}
		lines = append(lines, fmt.Sprintf("%-32s %12s", l.Label, amount))
	}
	lines = append(lines, strings.Repeat("─", 45),
		fmt.Sprintf("%-32s %12s", lipgloss.NewStyle().Bold(true).Render("Total Due"), lease.FormatCents(lease.BillTotal())))

	var action string
	switch {
	case m.ctrl.Paid():
		action = DoneStyle.Render("✓ Paid - Receipt Sent")
	case m.ctrl.CanInitiatePayment():
		action = RenderMenuItem("Pay "+lease.FormatCents(lease.BillTotal())+" (p)", true)
	}
	return lipgloss.JoinVertical(lipgloss.Left, CardStyle.Render(strings.Join(lines, "\n")), action)
}

func (m LeaseModel) viewDebugStrip() string {
	presets := make([]string, 0, len(lease.Presets))
	for i, p := range lease.Presets {
		presets = append(presets, fmt.Sprintf("%d %s", i+1, p))
	}
	r := m.ctrl.Record()
	return SubtitleStyle.Render(fmt.Sprintf("DEBUG  %s   days=%d returned=%v",
		strings.Join(presets, "  "), r.DaysLeft, r.IsReturned))
}
