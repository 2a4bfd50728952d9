package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/muurk/evlease/internal/advisor"
)

// AssistantSubject selects what the assistant is asked about
type AssistantSubject int

const (
	SubjectVehicle AssistantSubject = iota
	SubjectLease
)

func (s AssistantSubject) String() string {
	if s == SubjectLease {
		return "lease"
	}
	return "vehicle"
}

// submitPromptMsg asks the app to send prompt to the advisor
type submitPromptMsg struct {
	subject AssistantSubject
	prompt  string
}

// adviceMsg carries a finished exchange back to the update loop
type adviceMsg struct {
	subject AssistantSubject
	reply   advisor.Message
	ok      bool
}

// AssistantModel is the chat screen. The transcript itself lives in the
// advisor.Conversation; this model only renders it.
type AssistantModel struct {
	Subject AssistantSubject
	conv    *advisor.Conversation
	model   string // vehicle model for the empty state
	keys    keyMap

	Input    textinput.Model
	Viewport viewport.Model
	Spinner  spinner.Model

	Width  int
	Height int

	BackRequested bool
}

// NewAssistantModel creates the chat screen for conv
func NewAssistantModel(subject AssistantSubject, conv *advisor.Conversation, vehicleModel string, keys keyMap) AssistantModel {
	input := textinput.New()
	input.Placeholder = "Ask Tesla..."
	input.CharLimit = 500
	input.Width = 50
	input.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := AssistantModel{
		Subject:  subject,
		conv:     conv,
		model:    vehicleModel,
		keys:     keys,
		Input:    input,
		Viewport: viewport.New(60, 12),
		Spinner:  s,
	}
	m.refresh()
	return m
}

// Init starts the cursor blink and the spinner
func (m AssistantModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.Spinner.Tick)
}

// Resize fits the transcript into the terminal
func (m *AssistantModel) Resize(width, height int) {
	m.Width, m.Height = width, height
	m.Viewport.Width = max(width-10, 40)
	m.Viewport.Height = max(height-16, 5)
	m.Input.Width = max(m.Viewport.Width-4, 20)
	m.refresh()
}

// Update handles messages and updates the model
func (m AssistantModel) Update(msg tea.Msg) (AssistantModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		m.Spinner, cmd = m.Spinner.Update(msg)
		if m.conv.Pending() > 0 {
			m.refresh()
		}
		return m, cmd

	case adviceMsg:
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case msg.String() == "esc":
			m.BackRequested = true
			return m, nil
		case key.Matches(msg, m.keys.Send):
			prompt := strings.TrimSpace(m.Input.Value())
			if prompt == "" {
				return m, nil
			}
			m.Input.Reset()
			subject := m.Subject
			return m, func() tea.Msg { return submitPromptMsg{subject: subject, prompt: prompt} }
		case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
			m.Viewport, cmd = m.Viewport.Update(msg)
			return m, cmd
		}
	}

	m.Input, cmd = m.Input.Update(msg)
	return m, cmd
}

// refresh re-renders the transcript and scrolls to the newest entry
func (m *AssistantModel) refresh() {
	m.Viewport.SetContent(m.transcript())
	m.Viewport.GotoBottom()
}

func (m AssistantModel) transcript() string {
	width := max(m.Viewport.Width-2, 20)
	messages := m.conv.Messages()

	if len(messages) == 0 {
		intro := "Ask me anything about your lease."
		if m.Subject == SubjectVehicle {
			intro = fmt.Sprintf("Ask me anything about your %s.", m.model)
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			SubtitleStyle.Render(wordwrap.String(intro, width)),
			SubtitleStyle.Render(`Try: "How can I maximize my range today?"`),
		)
	}

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if msg.Role == advisor.RoleUser {
			b.WriteString(UserLabelStyle.Render("You"))
		} else {
			b.WriteString(ModelLabelStyle.Render("Tesla AI"))
		}
		b.WriteString("\n")
		text := wordwrap.String(msg.Text, width)
		if msg.Fallback {
			text = WarningStyle.Render(text)
		}
		b.WriteString(text)
	}
	if m.conv.Pending() > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.Spinner.View() + SubtitleStyle.Render(" Thinking..."))
	}
	return b.String()
}

// ContextKeys returns the bindings shown in the footer
func (m AssistantModel) ContextKeys() keySet {
	back := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	return keySet{m.keys.Send, m.keys.PageUp, m.keys.PageDown, back}
}

// View renders the screen body
func (m AssistantModel) View() string {
	title := "Tesla AI Assistant"
	if m.Subject == SubjectLease {
		title = "Lease Assistant"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		RenderTitle(title),
		RenderSubtitle("Ask about "+m.Subject.String()+" health or tips"),
		"",
		m.Viewport.View(),
		"",
		CardStyle.Render(m.Input.View()),
	)
}
