// internal/models/scripted.go
package models

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
)

// Scripted is a deterministic offline generator. It produces plain
// templated lines per speech act so runs work without an API key and
// tests stay reproducible.
type Scripted struct{}

func (Scripted) Generate(_ context.Context, req GenerateRequest) ([]Candidate, error) {
	addressee := scriptedAddressee(req)
	text, payload := scriptedLine(req, addressee)

	c := Candidate{
		Addressee: addressee,
		Text:      text,
		Reaction:  "acknowledge",
	}
	switch req.SpeechAct {
	case "counterargument", "devils_advocate":
		c.Reaction = "counter"
	case "question", "ask_missing_fact":
		c.Reaction = "acknowledge"
	}
	c.OptionLabel = payload.optionLabel
	c.OptionDetail = payload.optionDetail
	c.Vote = payload.vote
	c.ActionItem = payload.action

	n := req.Candidates
	if n <= 0 {
		n = 1
	}
	out := make([]Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, c)
	}
	return out, nil
}

type scriptedPayload struct {
	optionLabel  string
	optionDetail string
	vote         string
	action       string
}

func scriptedLine(req GenerateRequest, addressee string) (string, scriptedPayload) {
	issue := req.Issue
	var p scriptedPayload
	switch req.SpeechAct {
	case "concern":
		return fmt.Sprintf("My main concern with %s is the downstream cost we have not sized yet.", issue), p
	case "hope":
		return fmt.Sprintf("If we get %s right, I expect a real improvement in how the team operates.", issue), p
	case "question":
		return fmt.Sprintf("%s, what constraint matters most to you here?", addressee), p
	case "ask_missing_fact":
		return "Before we weigh this, do we have current numbers to ground the discussion?", p
	case "argument":
		return fmt.Sprintf("I think the case for my position on %s rests on speed of execution.", issue), p
	case "counterargument":
		return fmt.Sprintf("%s, I see it differently: the risk side outweighs the upside you describe.", addressee), p
	case "steelman":
		return fmt.Sprintf("The strongest version of %s's position is that it protects what already works.", addressee), p
	case "devils_advocate":
		return "Let me push back on where the room is heading: what if the opposite holds?", p
	case "propose_option":
		p.optionLabel = fmt.Sprintf("Phased approach to %s", shorten(issue, 40))
		p.optionDetail = "Start small, review at a checkpoint, then expand or roll back."
		return fmt.Sprintf("I propose a phased approach to %s with a review checkpoint.", issue), p
	case "compare":
		return "Comparing what is on the table, the tradeoff is mostly speed against risk.", p
	case "weigh":
		return "Weighing the criteria, feasibility and cost dominate for me.", p
	case "vote":
		p.vote = "support"
		return "Having heard the discussion, I can support the leading proposal.", p
	case "recommend":
		return "My recommendation is to take the option with the clearest checkpoint.", p
	case "commit":
		return "I can commit to that and will carry my part.", p
	case "summarize":
		return fmt.Sprintf("To summarize where we are on %s: positions are on the table and converging.", issue), p
	case "check_consent":
		return "Before we close: does anyone object to the decision as stated?", p
	default:
		return fmt.Sprintf("On %s, I want to register my current read before we move on.", issue), p
	}
}

// scriptedAddressee picks a deterministic peer from the cast.
func scriptedAddressee(req GenerateRequest) string {
	peers := make([]string, 0, len(req.Names))
	for _, n := range req.Names {
		if n != req.Participant {
			peers = append(peers, n)
		}
	}
	if len(peers) == 0 {
		return req.Participant
	}
	h := fnv.New32a()
	h.Write([]byte(req.Participant))
	h.Write([]byte(req.StageName))
	h.Write([]byte(req.RecentDialogue))
	return peers[int(h.Sum32())%len(peers)]
}

func shorten(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n])
}
