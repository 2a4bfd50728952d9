package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/muurk/evlease/internal/advisor"
	"github.com/muurk/evlease/internal/lease"
	"github.com/muurk/evlease/internal/logging"
	"github.com/muurk/evlease/internal/sequence"
	"github.com/muurk/evlease/internal/vehicle"
)

// Screen represents the current active screen in the application
type Screen string

const (
	ScreenHome      Screen = "home"
	ScreenFinancing Screen = "financing"
	ScreenLease     Screen = "lease"
	ScreenAssistant Screen = "assistant"
)

// ConnectFunc opens a telemetry stream and reports where it connected
type ConnectFunc func(ctx context.Context) (<-chan vehicle.State, string, error)

// Options configures a new AppModel
type Options struct {
	Controller *lease.Controller

	// Scheduler is the controller's scheduler when it delivers callbacks on
	// a channel. Nil when the controller uses a ManualScheduler.
	Scheduler *sequence.ChannelScheduler

	Vehicle vehicle.State

	// Advisor answers vehicle questions. Lease questions go through the
	// controller's own conversation.
	Advisor advisor.Advisor

	// Connect is nil when running offline
	Connect ConnectFunc

	StartScreen Screen
}

// Messages for async operations
type timerFiredMsg struct{ fn func() }

type telemetryConnectedMsg struct {
	states <-chan vehicle.State
	url    string
}

type telemetryMsg struct{ state vehicle.State }

type telemetryClosedMsg struct{ err error }

// AppModel is the top-level coordinator model that manages screen transitions
type AppModel struct {
	// Current screen state
	CurrentScreen  Screen
	PreviousScreen Screen

	// Screen models
	Lease     LeaseModel
	Assistant AssistantModel

	// Shared application state
	Controller   *lease.Controller
	Vehicle      vehicle.State
	Live         bool
	TelemetryURL string
	TelemetryErr error

	homeCursor    int
	financeCursor int

	// UI state
	Width  int
	Height int

	// Help
	Help help.Model
	keys keyMap

	sched       *sequence.ChannelScheduler
	vehicleConv *advisor.Conversation
	connect     ConnectFunc
	states      <-chan vehicle.State

	ctx    context.Context
	cancel context.CancelFunc
}

// NewAppModel creates the application model
func NewAppModel(opts Options) AppModel {
	ctrl := opts.Controller
	if ctrl == nil {
		ctrl = lease.NewController(lease.DefaultRecord())
	}
	adv := opts.Advisor
	if adv == nil {
		adv = advisor.Unconfigured()
	}
	start := opts.StartScreen
	if start == "" {
		start = ScreenHome
	}

	keys := newKeyMap()
	ctx, cancel := context.WithCancel(context.Background())

	m := AppModel{
		CurrentScreen: start,
		Controller:    ctrl,
		Vehicle:       opts.Vehicle,
		Help:          help.New(),
		keys:          keys,
		sched:         opts.Scheduler,
		vehicleConv:   advisor.NewConversation(adv),
		connect:       opts.Connect,
		ctx:           ctx,
		cancel:        cancel,
	}
	m.Lease = NewLeaseModel(ctrl, keys)
	m.Assistant = NewAssistantModel(SubjectVehicle, m.vehicleConv, m.Vehicle.Model, keys)
	return m
}

// Init initializes the application
func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.Lease.Init(),
		m.Assistant.Init(),
		waitForTimer(m.sched),
		connectTelemetry(m.ctx, m.connect),
	)
}

// waitForTimer delivers the next expired scheduler callback
func waitForTimer(sched *sequence.ChannelScheduler) tea.Cmd {
	if sched == nil {
		return nil
	}
	return func() tea.Msg {
		fn, ok := <-sched.Fired()
		if !ok {
			return nil
		}
		return timerFiredMsg{fn: fn}
	}
}

func connectTelemetry(ctx context.Context, connect ConnectFunc) tea.Cmd {
	if connect == nil {
		return nil
	}
	return func() tea.Msg {
		states, url, err := connect(ctx)
		if err != nil {
			return telemetryClosedMsg{err: err}
		}
		return telemetryConnectedMsg{states: states, url: url}
	}
}

func waitForTelemetry(states <-chan vehicle.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-states
		if !ok {
			return telemetryClosedMsg{}
		}
		return telemetryMsg{state: state}
	}
}

// askCmd runs one exchange off the update loop. The subject is captured now,
// on the goroutine that owns the controller.
func (m AppModel) askCmd(msg submitPromptMsg) tea.Cmd {
	ctx := m.ctx
	subject := msg.subject

	var ask func(context.Context) (advisor.Message, bool)
	if subject == SubjectLease {
		ask = m.Controller.AdviceRequest(msg.prompt)
	} else {
		conv, snapshot, prompt := m.vehicleConv, m.Vehicle.Subject(), msg.prompt
		ask = func(ctx context.Context) (advisor.Message, bool) {
			return conv.Ask(ctx, prompt, snapshot)
		}
	}
	return func() tea.Msg {
		reply, ok := ask(ctx)
		return adviceMsg{subject: subject, reply: reply, ok: ok}
	}
}

// Update handles all messages and routes them to the appropriate screen
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		// Propagate to all screens
		m.Lease.Width = msg.Width
		m.Lease.Height = msg.Height
		m.Assistant.Resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" {
			return m.quit()
		}
		if key.Matches(msg, m.keys.Help) && !m.typing() {
			m.Help.ShowAll = !m.Help.ShowAll
			return m, nil
		}

	case timerFiredMsg:
		msg.fn()
		m.Lease = m.Lease.Refresh()
		return m, waitForTimer(m.sched)

	case telemetryConnectedMsg:
		m.Live, m.TelemetryURL, m.TelemetryErr = true, msg.url, nil
		m.states = msg.states
		logging.LogConnection(msg.url, "telemetry connected")
		return m, waitForTelemetry(m.states)

	case telemetryMsg:
		m.Vehicle = msg.state
		return m, waitForTelemetry(m.states)

	case telemetryClosedMsg:
		m.Live, m.TelemetryErr = false, msg.err
		if msg.err != nil {
			logging.Warn("Telemetry unavailable", zap.Error(msg.err))
		} else {
			logging.LogConnection(m.TelemetryURL, "telemetry closed")
		}
		return m, nil

	case submitPromptMsg:
		cmd := m.askCmd(msg)
		m.Assistant.refresh()
		return m, cmd

	case adviceMsg:
		if m.Assistant.Subject == msg.subject {
			m.Assistant, _ = m.Assistant.Update(msg)
		}
		return m, nil

	case spinner.TickMsg:
		var leaseCmd, assistantCmd tea.Cmd
		m.Lease, leaseCmd = m.Lease.Update(msg)
		m.Assistant, assistantCmd = m.Assistant.Update(msg)
		return m, tea.Batch(leaseCmd, assistantCmd)
	}

	// Route to current screen
	return m.updateCurrentScreen(msg)
}

// typing reports whether keys go to a text input
func (m AppModel) typing() bool {
	switch m.CurrentScreen {
	case ScreenAssistant:
		return true
	case ScreenLease:
		return m.Lease.Feedback.Focused()
	}
	return false
}

// updateCurrentScreen routes updates to the currently active screen
func (m AppModel) updateCurrentScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.CurrentScreen {
	case ScreenHome:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m.updateHome(keyMsg)
		}

	case ScreenFinancing:
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			return m.updateFinancing(keyMsg)
		}

	case ScreenLease:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, m.keys.Quit) && !m.typing() {
			return m.quit()
		}
		m.Lease, cmd = m.Lease.Update(msg)

		if m.Lease.BackRequested {
			m.Lease.BackRequested = false
			return m.transitionTo(ScreenFinancing)
		}
		if m.Lease.AskRequested {
			m.Lease.AskRequested = false
			return m.openAssistant(SubjectLease)
		}

	case ScreenAssistant:
		m.Assistant, cmd = m.Assistant.Update(msg)

		if m.Assistant.BackRequested {
			m.Assistant.BackRequested = false
			return m.goBack()
		}
	}

	return m, cmd
}

// transitionTo transitions to a new screen
func (m AppModel) transitionTo(screen Screen) (tea.Model, tea.Cmd) {
	if screen == ScreenAssistant {
		return m.openAssistant(SubjectVehicle)
	}
	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = screen
	if screen == ScreenLease {
		m.Lease = m.Lease.Refresh()
	}
	return m, nil
}

// openAssistant shows the chat for subject, keeping its transcript
func (m AppModel) openAssistant(subject AssistantSubject) (tea.Model, tea.Cmd) {
	conv := m.vehicleConv
	if subject == SubjectLease {
		conv = m.Controller.Conversation()
	}
	m.PreviousScreen = m.CurrentScreen
	m.CurrentScreen = ScreenAssistant
	m.Assistant = NewAssistantModel(subject, conv, m.Vehicle.Model, m.keys)
	m.Assistant.Resize(m.Width, m.Height)
	return m, m.Assistant.Init()
}

// goBack returns to the previous screen
func (m AppModel) goBack() (tea.Model, tea.Cmd) {
	switch m.CurrentScreen {
	case ScreenHome:
		return m.quit()
	case ScreenFinancing:
		return m.transitionTo(ScreenHome)
	case ScreenLease:
		return m.transitionTo(ScreenFinancing)
	case ScreenAssistant:
		prev := m.PreviousScreen
		if prev == "" || prev == ScreenAssistant {
			prev = ScreenHome
		}
		return m.transitionTo(prev)
	default:
		return m.quit()
	}
}

func (m AppModel) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	m.Controller.Close()
	if m.sched != nil {
		m.sched.Close()
	}
	return m, tea.Quit
}

// status is the header line: telemetry state
func (m AppModel) status() string {
	switch {
	case m.Live:
		return "● live " + m.Vehicle.Name
	case m.TelemetryErr != nil:
		return "○ offline"
	default:
		return "○ simulated"
	}
}

func (m AppModel) footerKeys() keySet {
	k := m.keys
	switch m.CurrentScreen {
	case ScreenHome:
		return keySet{k.Up, k.Down, k.Enter, k.Ask, k.Help, k.Quit}
	case ScreenFinancing:
		return keySet{k.Up, k.Down, k.Enter, k.Back, k.Help, k.Quit}
	case ScreenLease:
		return append(m.Lease.ContextKeys(), k.Help, k.Quit)
	case ScreenAssistant:
		return m.Assistant.ContextKeys()
	}
	return keySet{k.Quit}
}

// View renders the current screen inside the shared container
func (m AppModel) View() string {
	var content string
	switch m.CurrentScreen {
	case ScreenHome:
		content = m.viewHome()
	case ScreenFinancing:
		content = m.viewFinancing()
	case ScreenLease:
		content = m.Lease.View()
	case ScreenAssistant:
		content = m.Assistant.View()
	default:
		content = "Unknown screen"
	}

	if m.CurrentScreen == ScreenLease {
		if modal := m.Lease.Modal(); modal != "" {
			return RenderModal(modal, m.Width, m.Height)
		}
	}

	return RenderApplicationContainer(content, m.Help.View(m.footerKeys()), m.status(), m.Width, m.Height)
}
