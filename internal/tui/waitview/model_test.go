package waitview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/webr/internal/webr"
)

// scriptedProber returns the scripted answers in order, repeating the last
type scriptedProber struct {
	mu      sync.Mutex
	answers []probeResultMsg
	calls   int
}

func (p *scriptedProber) Health(ctx context.Context) (*webr.HealthStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.calls
	if i >= len(p.answers) {
		i = len(p.answers) - 1
	}
	p.calls++
	return p.answers[i].status, p.answers[i].err
}

func ready() probeResultMsg {
	return probeResultMsg{status: &webr.HealthStatus{Ready: true, UptimeSeconds: 61, HasUptime: true}}
}

func warming() probeResultMsg {
	return probeResultMsg{status: &webr.HealthStatus{Ready: false}}
}

func unreachable() probeResultMsg {
	return probeResultMsg{err: errors.New("connection refused")}
}

func TestModel_ReadyQuits(t *testing.T) {
	m := New(&scriptedProber{}, Config{URL: "http://localhost", Interval: time.Millisecond})

	next, cmd := m.Update(ready())
	model := next.(Model)

	if !model.Ready() {
		t.Error("Ready() = false, want true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if !strings.Contains(model.View(), "Bereit") {
		t.Errorf("View() = %q, want ready text", model.View())
	}
}

func TestModel_WarmingSchedulesPoll(t *testing.T) {
	m := New(&scriptedProber{}, Config{URL: "http://localhost", Interval: time.Millisecond})

	next, cmd := m.Update(warming())
	model := next.(Model)

	if model.Ready() || model.TimedOut() {
		t.Error("model should keep waiting")
	}
	if model.Attempts() != 1 {
		t.Errorf("Attempts() = %d, want 1", model.Attempts())
	}
	if cmd == nil {
		t.Fatal("expected tick command")
	}
	if _, ok := cmd().(pollMsg); !ok {
		t.Error("expected pollMsg from tick")
	}
	if !strings.Contains(model.View(), "Initialisiert") {
		t.Errorf("View() = %q, want warming text", model.View())
	}
}

func TestModel_UnreachableKeepsPolling(t *testing.T) {
	m := New(&scriptedProber{}, Config{URL: "http://localhost", Interval: time.Millisecond})

	next, cmd := m.Update(unreachable())
	model := next.(Model)

	if model.LastError() == nil {
		t.Error("LastError() = nil, want error")
	}
	if cmd == nil {
		t.Error("unreachable should schedule another poll")
	}
	if !strings.Contains(model.View(), "Nicht erreichbar") {
		t.Errorf("View() = %q, want unreachable text", model.View())
	}
}

func TestModel_Timeout(t *testing.T) {
	m := New(&scriptedProber{}, Config{URL: "http://localhost", Interval: time.Second, Timeout: time.Millisecond})
	m.start = time.Now().Add(-time.Second)

	next, _ := m.Update(warming())
	model := next.(Model)

	if !model.TimedOut() {
		t.Error("TimedOut() = false, want true")
	}
}

func TestModel_PollRunsProbe(t *testing.T) {
	prober := &scriptedProber{answers: []probeResultMsg{ready()}}
	m := New(prober, Config{Interval: time.Millisecond})

	_, cmd := m.Update(pollMsg(time.Now()))
	if cmd == nil {
		t.Fatal("expected probe command")
	}
	msg, ok := cmd().(probeResultMsg)
	if !ok {
		t.Fatal("expected probeResultMsg")
	}
	if !msg.status.Ready {
		t.Error("probe should report ready")
	}
}

func TestModel_Abort(t *testing.T) {
	m := New(&scriptedProber{}, Config{})

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if !next.(Model).Aborted() {
		t.Error("Aborted() = false, want true")
	}
	if cmd == nil {
		t.Error("expected quit command")
	}
}

// blockingProber answers only when its context is done
type blockingProber struct {
	started chan struct{}
}

func (p *blockingProber) Health(ctx context.Context) (*webr.HealthStatus, error) {
	close(p.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestModel_AbortCancelsInFlightHealth(t *testing.T) {
	prober := &blockingProber{started: make(chan struct{})}
	m := New(prober, Config{Interval: time.Second})

	done := make(chan tea.Msg, 1)
	go func() { done <- m.probe() }()
	<-prober.started

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	select {
	case msg := <-done:
		result, ok := msg.(probeResultMsg)
		if !ok {
			t.Fatalf("msg = %T, want probeResultMsg", msg)
		}
		if !errors.Is(result.err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", result.err)
		}
	case <-time.After(time.Second):
		t.Fatal("health call still running after abort")
	}
}

func TestPoll(t *testing.T) {
	prober := &scriptedProber{answers: []probeResultMsg{unreachable(), warming(), ready()}}

	var attempts []Attempt
	status, err := Poll(context.Background(), prober, time.Millisecond, time.Second, func(a Attempt) {
		attempts = append(attempts, a)
	})
	if err != nil {
		t.Fatalf("Poll() error = %v", err)
	}
	if !status.Ready {
		t.Error("status.Ready = false, want true")
	}
	if len(attempts) != 3 {
		t.Errorf("attempts = %d, want 3", len(attempts))
	}
	if attempts[0].Err == nil || attempts[1].Status.Ready {
		t.Error("attempts should record the scripted answers in order")
	}
}

func TestPoll_Timeout(t *testing.T) {
	prober := &scriptedProber{answers: []probeResultMsg{warming()}}

	_, err := Poll(context.Background(), prober, 5*time.Millisecond, 30*time.Millisecond, nil)
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("Poll() error = %v, want ErrNotReady", err)
	}
}

func TestPoll_Canceled(t *testing.T) {
	prober := &scriptedProber{answers: []probeResultMsg{warming()}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Poll(ctx, prober, time.Millisecond, 0, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Poll() error = %v, want context.Canceled", err)
	}
}
