// internal/export/markdown.go
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MinutesTurn is one dialogue line to export
type MinutesTurn struct {
	Stage     string
	Speaker   string
	Addressee string
	Act       string
	Text      string
	Reaction  string
	Fallback  bool
}

// Minutes contains the data needed to export a meeting
type Minutes struct {
	ID           string
	Issue        string
	Chair        string
	CreatedAt    time.Time
	Participants []string
	Turns        []MinutesTurn
	Options      []string // pre-rendered option lines
	Actions      []string
	Decision     string
	Summary      string
	Metrics      string
}

// Render generates formatted markdown minutes for a meeting
func Render(m *Minutes) string {
	var sb strings.Builder

	sb.WriteString("# Minutes: ")
	sb.WriteString(m.Issue)
	sb.WriteString("\n\n")

	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("**Meeting ID:** `%s`\n\n", m.ID))
	sb.WriteString(fmt.Sprintf("**Held:** %s\n\n", m.CreatedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("**Chair:** %s\n\n", m.Chair))

	if len(m.Participants) > 0 {
		sb.WriteString("**Attendees:** ")
		sb.WriteString(strings.Join(m.Participants, ", "))
		sb.WriteString("\n\n")
	}

	sb.WriteString("---\n\n")

	if m.Decision != "" {
		sb.WriteString("## Decision\n\n")
		sb.WriteString(m.Decision)
		sb.WriteString("\n\n")
	}

	if m.Summary != "" {
		sb.WriteString("## Summary\n\n")
		sb.WriteString(strings.TrimSpace(m.Summary))
		sb.WriteString("\n\n")
	}

	if len(m.Options) > 0 {
		sb.WriteString("## Options Considered\n\n")
		for _, line := range m.Options {
			sb.WriteString("- ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if len(m.Actions) > 0 {
		sb.WriteString("## Action Items\n\n")
		for _, a := range m.Actions {
			sb.WriteString("- [ ] ")
			sb.WriteString(a)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Transcript\n\n")
	lastStage := ""
	for _, t := range m.Turns {
		if t.Stage != lastStage {
			sb.WriteString(fmt.Sprintf("### Stage: %s\n\n", t.Stage))
			lastStage = t.Stage
		}
		head := t.Speaker
		if t.Addressee != "" {
			head += " → " + t.Addressee
		}
		sb.WriteString(fmt.Sprintf("**%s** (%s):\n\n", head, t.Act))
		for _, line := range strings.Split(strings.TrimSpace(t.Text), "\n") {
			sb.WriteString("> ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		if t.Reaction != "" {
			sb.WriteString(fmt.Sprintf(">\n> *%s reacts: %s*\n", t.Addressee, t.Reaction))
		}
		sb.WriteString("\n")
	}

	if m.Metrics != "" {
		sb.WriteString("---\n\n## Statistics\n\n```\n")
		sb.WriteString(m.Metrics)
		sb.WriteString("\n```\n")
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from Boardroom on %s*\n", time.Now().Format("2006-01-02 15:04:05")))

	return sb.String()
}

// Write exports minutes to a markdown file under baseDir/minutes
func Write(m *Minutes, baseDir string) (string, error) {
	datePart := m.CreatedAt.Format("2006-01-02")
	namePart := sanitizeFilename(m.Issue)
	filename := fmt.Sprintf("%s-%s.md", datePart, namePart)

	dir := filepath.Join(baseDir, "minutes")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create minutes directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(Render(m)), 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return path, nil
}

// sanitizeFilename removes/replaces characters unsuitable for filenames
func sanitizeFilename(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-' || r == '_':
			sb.WriteRune(r)
		}
	}

	result := sb.String()
	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	result = strings.Trim(result, "-")
	if result == "" {
		result = "meeting"
	}
	if len(result) > 50 {
		result = result[:50]
	}
	return result
}
