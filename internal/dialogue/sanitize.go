// internal/dialogue/sanitize.go
package dialogue

import (
	"math/rand"
	"strings"

	"boardroom/internal/meeting"
)

// nonPersonNames are addressee values that reference the room rather
// than a participant; they resolve to the chair.
var nonPersonNames = map[string]bool{
	"all": true, "everyone": true, "team": true,
	"group": true, "committee": true, "room": true,
}

// CoerceName resolves a generated name to a real participant. Unknown
// and non-person names resolve to the chair.
func CoerceName(name, chair string, names []string) string {
	low := strings.ToLower(strings.TrimSpace(name))
	if low == "" || nonPersonNames[low] {
		return chair
	}
	for _, n := range names {
		if strings.EqualFold(n, low) {
			return n
		}
	}
	return chair
}

// pickAlternate returns a random participant other than speaker.
func pickAlternate(speaker string, names []string, rng *rand.Rand) string {
	others := make([]string, 0, len(names))
	for _, n := range names {
		if n != speaker {
			others = append(others, n)
		}
	}
	if len(others) == 0 {
		return speaker
	}
	return others[rng.Intn(len(others))]
}

// sanitizeAddressee grounds the addressee: a real participant, never
// the speaker themselves.
func sanitizeAddressee(raw, speaker, chair string, names []string, rng *rand.Rand) string {
	a := CoerceName(raw, chair, names)
	if a == speaker {
		a = pickAlternate(speaker, names, rng)
	}
	return a
}

// sanitizeText trims candidate text. Returns ok=false when the
// candidate is unusable.
func sanitizeText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}

// violatesActs reports whether the declared act falls outside the
// stage's allowed set.
func violatesActs(act meeting.SpeechAct, allowed []meeting.SpeechAct) bool {
	for _, a := range allowed {
		if a == act {
			return false
		}
	}
	return true
}
