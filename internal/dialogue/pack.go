// internal/dialogue/pack.go
package dialogue

import (
	"fmt"
	"strings"

	"boardroom/internal/meeting"
)

// DefaultWindow is how many recent turns the memory pack carries.
const DefaultWindow = 6

// Pack is the bounded context handed to the generation capability:
// never the full transcript, only what a participant plausibly holds in
// working memory.
type Pack struct {
	Recent        []string
	OpenQuestions []string
	Options       string
}

// RenderLine formats one turn the way it appears in prompts and logs.
func RenderLine(t meeting.Turn) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", t.Stage, t.Speaker)
	if t.Addressee != "" {
		fmt.Fprintf(&sb, " to %s", t.Addressee)
	}
	fmt.Fprintf(&sb, " (%s): %s", t.Act, t.Text)
	if t.Addressed {
		fmt.Fprintf(&sb, " — %s reacts: %s", t.Addressee, t.Reaction)
	}
	return sb.String()
}

// BuildPack assembles the memory pack from the last window turns, the
// open-question registry, and the options summary.
func BuildPack(log []meeting.Turn, openQuestions []string, optionsSummary string, window int) Pack {
	if window <= 0 {
		window = DefaultWindow
	}
	start := len(log) - window
	if start < 0 {
		start = 0
	}
	recent := make([]string, 0, window)
	for _, t := range log[start:] {
		recent = append(recent, RenderLine(t))
	}
	if len(openQuestions) > 2 {
		openQuestions = openQuestions[len(openQuestions)-2:]
	}
	return Pack{
		Recent:        recent,
		OpenQuestions: openQuestions,
		Options:       optionsSummary,
	}
}

// RecentText renders the recent window as one block.
func (p Pack) RecentText() string {
	if len(p.Recent) == 0 {
		return "(start of meeting)"
	}
	return strings.Join(p.Recent, "\n")
}

// QuestionsText renders the unresolved questions, "None" when empty.
func (p Pack) QuestionsText() string {
	if len(p.OpenQuestions) == 0 {
		return "None"
	}
	return strings.Join(p.OpenQuestions, "\n")
}
