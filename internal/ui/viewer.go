// internal/ui/viewer.go
// Live meeting viewer: streams engine events into a scrolling
// transcript with pause, resume, and stop controls.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"boardroom/internal/engine"
	"boardroom/internal/meeting"
)

type eventMsg struct {
	ev engine.Event
	ok bool
}

// Model is the bubbletea model for a live run.
type Model struct {
	run      *engine.Run
	speakers map[string]int // name -> palette index

	viewport viewport.Model
	lines    []string
	stage    string
	final    *engine.Result

	width, height int
	ready         bool
}

func New(run *engine.Run, names []string) Model {
	speakers := make(map[string]int, len(names))
	for i, n := range names {
		speakers[n] = i
	}
	return Model{
		run:      run,
		speakers: speakers,
		stage:    "introduce",
	}
}

func (m Model) Init() tea.Cmd {
	return m.waitForEvent()
}

// waitForEvent blocks on the run's event stream and wraps the next
// element as a tea message.
func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.run.Events()
		return eventMsg{ev: ev, ok: ok}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.run.Stop()
			if m.final != nil {
				return m, tea.Quit
			}
			return m, nil
		case "p":
			m.run.Pause()
		case "r":
			m.run.Resume()
		case "s":
			m.run.Stop()
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.refresh()
	case eventMsg:
		if !msg.ok {
			// Stream closed after the final event.
			return m, tea.Quit
		}
		m.apply(msg.ev)
		m.refresh()
		return m, m.waitForEvent()
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) apply(ev engine.Event) {
	switch ev.Type {
	case engine.EventStage:
		m.stage = ev.Stage
		m.lines = append(m.lines, "", StageStyle.Render(fmt.Sprintf("── stage: %s ──", ev.Stage)), "")
	case engine.EventTurn:
		m.lines = append(m.lines, m.renderTurn(*ev.Turn)...)
	case engine.EventNotice:
		m.lines = append(m.lines, NoticeStyle.Render("  · "+ev.Notice))
	case engine.EventFinal:
		m.final = ev.Final
		m.lines = append(m.lines, "", m.renderFinal(ev.Final))
	}
}

func (m *Model) renderTurn(t meeting.Turn) []string {
	style := SpeakerStyle(m.speakers[t.Speaker])
	head := style.Render(t.Speaker)
	if t.Addressee != "" {
		head += DimStyle.Render(" to "+t.Addressee) + DimStyle.Render(fmt.Sprintf(" (%s)", t.Act))
	}
	lines := []string{head + ":"}
	body := t.Text
	if t.Fallback {
		body = FallbackStyle.Render(body)
	}
	for _, l := range strings.Split(body, "\n") {
		lines = append(lines, "  "+l)
	}
	if t.Addressed {
		lines = append(lines, DimStyle.Render(fmt.Sprintf("  %s reacts: %s", t.Addressee, t.Reaction)))
	}
	lines = append(lines, "")
	return lines
}

func (m *Model) renderFinal(res *engine.Result) string {
	var sb strings.Builder
	sb.WriteString(TitleStyle.Render("MEETING CLOSED"))
	sb.WriteString("\n\n")
	sb.WriteString(StatusOK.Render("Decision: ") + res.Decision + "\n\n")
	if res.OptionsSummary != "" {
		sb.WriteString(res.OptionsSummary + "\n")
	}
	if len(res.Actions) > 0 {
		sb.WriteString("Actions:\n")
		for _, a := range res.Actions {
			sb.WriteString("  - " + a + "\n")
		}
	}
	sb.WriteString("\n" + res.Summary + "\n\n")
	sb.WriteString(DimStyle.Render(res.Metrics.Report()))
	return ActiveBox.Width(m.viewport.Width - 2).Render(sb.String())
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	status := m.run.Status()
	var indicator string
	switch status {
	case engine.StatusRunning:
		indicator = StatusOK.Render("● running")
	case engine.StatusPaused:
		indicator = StatusWarn.Render("● paused")
	case engine.StatusCancelled:
		indicator = ErrorStyle.Render("● stopped")
	default:
		indicator = DimStyle.Render("● " + status.String())
	}

	header := lipgloss.JoinHorizontal(lipgloss.Left,
		TitleStyle.Render(" BOARDROOM "),
		DimStyle.Render(fmt.Sprintf("  stage: %s  ", m.stage)),
		indicator,
	)
	footer := DimStyle.Render(" p pause · r resume · s stop · q quit ")
	return header + "\n" + m.viewport.View() + "\n" + footer
}
