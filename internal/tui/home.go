package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/evlease/internal/lease"
)

type homeItem struct {
	title    string
	subtitle string
	target   Screen // "" for entries that only inform
}

func (m AppModel) homeItems() []homeItem {
	return []homeItem{
		{title: "Financing", subtitle: "Manage lease, track mileage", target: ScreenFinancing},
		{title: "Climate", subtitle: fmt.Sprintf("Interior %.0f°F", m.Vehicle.InsideTemp)},
		{title: "Charging", subtitle: "Nearby: Supercharger Palo Alto"},
		{title: "Tesla AI Assistant", subtitle: "Ask about vehicle health or tips", target: ScreenAssistant},
	}
}

func (m AppModel) financingItems() []homeItem {
	return []homeItem{
		{title: "Lease Management", subtitle: "Return, offers and billing", target: ScreenLease},
		{title: "Payment History", subtitle: "Last payment: May 15"},
		{title: "Billing Statements"},
	}
}

// selectable moves the cursor over items, skipping entries with no target
func selectable(items []homeItem, cursor, delta int) int {
	n := len(items)
	for i := 1; i <= n; i++ {
		next := (cursor + delta*i + n*n) % n
		if items[next].target != "" {
			return next
		}
	}
	return cursor
}

func (m AppModel) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.homeItems()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		m.homeCursor = selectable(items, m.homeCursor, -1)
	case key.Matches(msg, m.keys.Down):
		m.homeCursor = selectable(items, m.homeCursor, 1)
	case key.Matches(msg, m.keys.Enter):
		if target := items[m.homeCursor].target; target != "" {
			return m.transitionTo(target)
		}
	case key.Matches(msg, m.keys.Ask):
		return m.openAssistant(SubjectVehicle)
	}
	return m, nil
}

func (m AppModel) updateFinancing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.financingItems()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Back):
		return m.transitionTo(ScreenHome)
	case key.Matches(msg, m.keys.Up):
		m.financeCursor = selectable(items, m.financeCursor, -1)
	case key.Matches(msg, m.keys.Down):
		m.financeCursor = selectable(items, m.financeCursor, 1)
	case key.Matches(msg, m.keys.Enter):
		if target := items[m.financeCursor].target; target != "" {
			return m.transitionTo(target)
		}
	}
	return m, nil
}

func (m AppModel) viewHome() string {
	v := m.Vehicle

	battery := fmt.Sprintf("%d%%", v.BatteryLevel)
	if v.IsCharging {
		battery += " ⚡"
	}
	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		CardStyle.Render(LabelStyle.Render("BATTERY")+"\n"+battery),
		CardStyle.Render(LabelStyle.Render("RANGE")+"\n"+fmt.Sprintf("%d mi", v.RangeRemaining)),
		CardStyle.Render(LabelStyle.Render("DOORS")+"\n"+v.LockLabel()),
		CardStyle.Render(LabelStyle.Render("INSIDE")+"\n"+fmt.Sprintf("%.0f°F", v.InsideTemp)),
	)

	var menu strings.Builder
	for i, item := range m.homeItems() {
		line := fmt.Sprintf("%-20s %s", item.title, SubtitleStyle.Render(item.subtitle))
		if item.target == "" {
			menu.WriteString(DisabledMenuItemStyle.Render(line))
		} else {
			menu.WriteString(RenderMenuItem(line, i == m.homeCursor))
		}
		menu.WriteString("\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle(v.Name),
		RenderSubtitle(v.Location+" • "+fmt.Sprintf("%s mi", lease.FormatMiles(v.Odometer))),
		"",
		stats,
		"",
		menu.String(),
		LabelStyle.Render(strings.ToUpper(v.Model)),
		SubtitleStyle.Render("Software v"+v.SoftwareVersion),
	)
}

func (m AppModel) viewFinancing() string {
	r := m.Controller.Record()

	card := CardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		LabelStyle.Render("ACTIVE LEASE"),
		lipgloss.NewStyle().Bold(true).Render(m.Vehicle.Model),
		m.Controller.TermRemaining(),
		SubtitleStyle.Render(fmt.Sprintf("%s of %s mi used",
			lease.FormatMiles(r.CurrentMileage), lease.FormatMiles(r.AllowedMileage))),
	))

	var menu strings.Builder
	for i, item := range m.financingItems() {
		line := item.title
		if item.subtitle != "" {
			line = fmt.Sprintf("%-20s %s", item.title, SubtitleStyle.Render(item.subtitle))
		}
		if item.target == "" {
			menu.WriteString(DisabledMenuItemStyle.Render(line))
		} else {
			menu.WriteString(RenderMenuItem(line, i == m.financeCursor))
		}
		menu.WriteString("\n")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle("Financing"),
		"",
		card,
		"",
		menu.String(),
	)
}
