// internal/engine/metrics.go
package engine

import (
	"fmt"
	"sort"
	"strings"

	"boardroom/internal/meeting"
)

// Metrics accumulates run statistics for the final report.
type Metrics struct {
	TurnsTotal     int
	TurnsByStage   map[string]int
	TurnsBySpeaker map[string]int
	Fallbacks      int

	OptionsProposed int
	VotesCast       int
	StanceChanges   int
	Interruptions   int

	FinalStances map[string]meeting.Stance
}

func newMetrics(names []string) Metrics {
	m := Metrics{
		TurnsByStage:   make(map[string]int),
		TurnsBySpeaker: make(map[string]int, len(names)),
		FinalStances:   make(map[string]meeting.Stance, len(names)),
	}
	for _, n := range names {
		m.TurnsBySpeaker[n] = 0
	}
	return m
}

func (m *Metrics) count(t meeting.Turn) {
	m.TurnsTotal++
	m.TurnsByStage[t.Stage]++
	m.TurnsBySpeaker[t.Speaker]++
	if t.Fallback {
		m.Fallbacks++
	}
}

func (m *Metrics) snapshotStances(stances map[string]meeting.Stance) {
	for name, s := range stances {
		m.FinalStances[name] = s
	}
}

// Report renders the metrics as a readable block for minutes exports.
func (m Metrics) Report() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Turns: %d (fallbacks: %d)\n", m.TurnsTotal, m.Fallbacks)
	fmt.Fprintf(&b, "Options proposed: %d, votes cast: %d\n", m.OptionsProposed, m.VotesCast)
	fmt.Fprintf(&b, "Stance changes: %d, interruptions: %d\n", m.StanceChanges, m.Interruptions)

	speakers := make([]string, 0, len(m.TurnsBySpeaker))
	for n := range m.TurnsBySpeaker {
		speakers = append(speakers, n)
	}
	sort.Strings(speakers)
	for _, n := range speakers {
		stance := m.FinalStances[n]
		fmt.Fprintf(&b, "  %s: %d turns, final stance %s\n", n, m.TurnsBySpeaker[n], stance)
	}
	return strings.TrimRight(b.String(), "\n")
}
