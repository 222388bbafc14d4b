// ============================================================================
// mDW WebR Client - Remote R Execution
// ============================================================================
//
// Package:     waitview
// Description: Bubbletea model that polls WebR readiness until it is ready
// Author:      Mike Stoffels
// Created:     2025-12-07
// License:     MIT
// ============================================================================

package waitview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/webr/internal/webr"
)

// Prober is the readiness query the view polls
type Prober interface {
	Health(ctx context.Context) (*webr.HealthStatus, error)
}

// Config holds the poll settings
type Config struct {
	URL      string
	Interval time.Duration
	Timeout  time.Duration
}

// Model is the wait view
type Model struct {
	cfg     Config
	prober  Prober
	spinner spinner.Model

	ctx    context.Context
	cancel context.CancelFunc

	start    time.Time
	attempts int
	last     *webr.HealthStatus
	lastErr  error

	ready    bool
	timedOut bool
	aborted  bool
}

// Message types
type probeResultMsg struct {
	status *webr.HealthStatus
	err    error
}
type pollMsg time.Time

// New creates the wait view model
func New(prober Prober, cfg Config) Model {
	if cfg.Interval <= 0 {
		cfg.Interval = 2 * time.Second
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		cfg:     cfg,
		prober:  prober,
		spinner: s,
		ctx:     ctx,
		cancel:  cancel,
		start:   time.Now(),
	}
}

// Init starts the spinner and the first probe
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.probe,
	)
}

func (m Model) probe() tea.Msg {
	status, err := m.prober.Health(m.ctx)
	return probeResultMsg{status: status, err: err}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.aborted = true
			m.cancel()
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case probeResultMsg:
		m.attempts++
		m.last, m.lastErr = msg.status, msg.err
		if m.aborted {
			return m, nil
		}
		if msg.err == nil && msg.status.Ready {
			m.ready = true
			m.cancel()
			return m, tea.Quit
		}
		if m.cfg.Timeout > 0 && time.Since(m.start)+m.cfg.Interval > m.cfg.Timeout {
			m.timedOut = true
			m.cancel()
			return m, tea.Quit
		}
		return m, tea.Tick(m.cfg.Interval, func(t time.Time) tea.Msg {
			return pollMsg(t)
		})

	case pollMsg:
		return m, m.probe
	}

	return m, nil
}

// View renders the model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("WebR"))
	b.WriteString(" ")
	b.WriteString(URLStyle.Render(m.cfg.URL))
	b.WriteString("\n\n")

	switch {
	case m.ready:
		b.WriteString(ReadyStyle.Render("✓ Bereit"))
		if m.last != nil && m.last.HasUptime {
			b.WriteString(MutedStyle.Render(fmt.Sprintf("  (Uptime %s)", m.last.Uptime().Round(time.Second))))
		}
	case m.timedOut:
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("✗ Nicht bereit nach %s", m.cfg.Timeout)))
	case m.lastErr != nil:
		b.WriteString(m.spinner.View())
		b.WriteString(ErrorStyle.Render(" Nicht erreichbar: " + m.lastErr.Error()))
	case m.last != nil:
		b.WriteString(m.spinner.View())
		b.WriteString(WarmingStyle.Render(" Initialisiert noch..."))
	default:
		b.WriteString(m.spinner.View())
		b.WriteString(" Prüfe Status...")
	}

	b.WriteString("\n")
	b.WriteString(MutedStyle.Render(fmt.Sprintf("Versuche: %d  Vergangen: %s", m.attempts, time.Since(m.start).Round(time.Second))))
	b.WriteString("\n")
	if !m.ready && !m.timedOut {
		b.WriteString(HelpStyle.Render("q: Abbrechen"))
		b.WriteString("\n")
	}
	return b.String()
}

// Ready reports whether the service became ready
func (m Model) Ready() bool { return m.ready }

// TimedOut reports whether the wait budget was exhausted
func (m Model) TimedOut() bool { return m.timedOut }

// Aborted reports whether the user quit
func (m Model) Aborted() bool { return m.aborted }

// Attempts returns the number of completed probes
func (m Model) Attempts() int { return m.attempts }

// LastError returns the error of the most recent probe
func (m Model) LastError() error { return m.lastErr }
