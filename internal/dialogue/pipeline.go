// internal/dialogue/pipeline.go
// Per-turn candidate generation, critic scoring, selection, and
// sanitization. The generation capability is a black box behind the
// models.Generator interface; every failure path lands on a canned
// stage fallback so a turn is never dropped.
package dialogue

import (
	"context"
	"math/rand"

	"boardroom/internal/consensus"
	"boardroom/internal/meeting"
	"boardroom/internal/models"
	"boardroom/internal/stage"
)

// DefaultCandidates is how many candidates are requested per turn.
const DefaultCandidates = 3

// Critic blend: the lexical heuristic carries most of the weight, the
// model critic refines it when available.
const (
	heuristicWeight = 0.7
	criticWeight    = 0.3
)

// Line is the pipeline's finalized output for one turn, with the
// side-effect payloads already parsed and grounded.
type Line struct {
	Turn meeting.Turn

	OptionLabel  string
	OptionDetail string

	HasVote bool
	Vote    meeting.Vote
	VoteRef string

	ActionItem string
}

// Request is everything the pipeline needs to produce one line.
type Request struct {
	Speaker   *meeting.Participant
	Chair     string
	Names     []string
	Stage     stage.Stage
	Issue     string
	Context   string               // meeting-level background
	TurnIndex int

	Log            []meeting.Turn
	OptionsSummary string
	Creativity     bool
	Formality      float64
}

// Pipeline turns participants into dialogue lines.
type Pipeline struct {
	gen       models.Generator
	critic    models.Critic // nil disables the model critic
	heuristic models.Heuristic
	governor  *Governor
	rng       *rand.Rand

	candidates int
	window     int
}

// NewPipeline wires a pipeline. critic may be nil; the lexical
// heuristic then scores alone.
func NewPipeline(gen models.Generator, critic models.Critic, governor *Governor, rng *rand.Rand) *Pipeline {
	return &Pipeline{
		gen:        gen,
		critic:     critic,
		heuristic:  models.Heuristic{},
		governor:   governor,
		rng:        rng,
		candidates: DefaultCandidates,
		window:     DefaultWindow,
	}
}

// Tune overrides the candidate fan-out and the recall window. Zero or
// negative values keep the defaults.
func (p *Pipeline) Tune(candidates, window int) {
	if candidates > 0 {
		p.candidates = candidates
	}
	if window > 0 {
		p.window = window
	}
}

// PlanAct selects a speech act from the stage's allowed set, weighted
// by the speaker's traits, honoring the accept-spam override.
func (p *Pipeline) PlanAct(s stage.Stage, speaker *meeting.Participant) meeting.SpeechAct {
	acts := s.Acts()
	if len(acts) == 0 {
		return meeting.ActQuestion
	}
	if p.governor.ForceCounterpoint() {
		for _, a := range acts {
			if a.IsCounterpoint() {
				return a
			}
		}
	}
	weights := make([]float64, len(acts))
	total := 0.0
	for i, a := range acts {
		w := 1.0
		if a.IsCounterpoint() {
			// Persuaders push, conflict-avoiders duck.
			w += speaker.Traits.Persuasion - 0.5*speaker.Traits.ConflictAvoid
		}
		if a == meeting.ActQuestion || a == meeting.ActAskMissingFact {
			w += 0.5 * speaker.Traits.Interrupt
		}
		if w < 0.1 {
			w = 0.1
		}
		weights[i] = w
		total += w
	}
	roll := p.rng.Float64() * total
	for i, w := range weights {
		roll -= w
		if roll <= 0 {
			return acts[i]
		}
	}
	return acts[len(acts)-1]
}

// temperatureFor starts from the stage temperature and shifts it by
// formality: a formal meeting samples tighter, a casual one looser.
// Neutral formality 0.5 leaves the stage value untouched.
func temperatureFor(req Request) float32 {
	t := req.Stage.Temperature(req.Creativity)
	t += float32(0.1 - 0.2*req.Formality)
	if t < 0.1 {
		t = 0.1
	}
	return t
}

// TakeTurn runs the full per-turn pipeline: plan, generate, score,
// select, sanitize. The returned line is always usable; generation or
// sanitization failure produces the stage fallback with Fallback set.
func (p *Pipeline) TakeTurn(ctx context.Context, req Request) Line {
	act := p.PlanAct(req.Stage, req.Speaker)
	pack := BuildPack(req.Log, p.governor.OpenQuestions(), req.OptionsSummary, p.window)

	cands, err := p.gen.Generate(ctx, models.GenerateRequest{
		Participant:    req.Speaker.Name,
		Persona:        req.Speaker.Persona,
		Context:        req.Speaker.Context,
		Issue:          req.Issue,
		IssueContext:   req.Context,
		Names:          req.Names,
		StageName:      req.Stage.String(),
		StageGoal:      req.Stage.Goal(),
		StageBrief:     req.Stage.Brief(),
		SpeechAct:      act.String(),
		Temperature:    temperatureFor(req),
		Formality:      req.Formality,
		RecentDialogue: pack.RecentText(),
		OpenQuestions:  pack.QuestionsText(),
		OptionsSummary: pack.Options,
		Candidates:     p.candidates,
	})
	if err != nil || len(cands) == 0 {
		return p.fallback(req, act)
	}

	chosen, ok := p.selectCandidate(ctx, req, cands)
	if !ok {
		return p.fallback(req, act)
	}
	return p.finalize(req, act, chosen)
}

// selectCandidate scores candidates and picks the best sanitizable one,
// ties broken by lowest index.
func (p *Pipeline) selectCandidate(ctx context.Context, req Request, cands []models.Candidate) (models.Candidate, bool) {
	texts := make([]string, len(cands))
	for i, c := range cands {
		texts[i] = c.Text
	}

	scores := make([]float64, len(cands))
	for i, t := range texts {
		scores[i] = heuristicWeight * p.heuristic.Score(t, req.Stage.String(), packRecent(req.Log, p.window)).Overall()
	}
	if p.critic != nil {
		if cs, err := p.critic.ScoreCandidates(ctx, texts, req.Stage.Goal(), packRecent(req.Log, p.window)); err == nil && len(cs) == len(cands) {
			for i := range scores {
				scores[i] += criticWeight * cs[i].Overall()
			}
		}
	}

	bestIdx, found := -1, false
	for i, c := range cands {
		if _, ok := sanitizeText(c.Text); !ok {
			continue
		}
		if !found || scores[i] > scores[bestIdx] {
			bestIdx, found = i, true
		}
	}
	if !found {
		return models.Candidate{}, false
	}
	return cands[bestIdx], true
}

// finalize grounds names, normalizes the reaction, enforces the stage
// act set, and registers governance state.
func (p *Pipeline) finalize(req Request, act meeting.SpeechAct, cand models.Candidate) Line {
	text, _ := sanitizeText(cand.Text)
	addressee := sanitizeAddressee(cand.Addressee, req.Speaker.Name, req.Chair, req.Names, p.rng)

	if act == meeting.ActQuestion || act == meeting.ActAskMissingFact {
		if p.governor.SeenQuestion(req.Speaker.Name, text) {
			return p.fallback(req, act)
		}
		p.governor.NoteQuestion(req.Speaker.Name, text)
	}

	line := Line{
		Turn: meeting.Turn{
			Index:     req.TurnIndex,
			Stage:     req.Stage.String(),
			Speaker:   req.Speaker.Name,
			Addressee: addressee,
			Act:       act,
			Text:      text,
			Reaction:  meeting.NormalizeReaction(cand.Reaction),
			Addressed: true,
		},
	}
	p.governor.NoteReaction(line.Turn.Reaction, act)

	// Option and vote payloads outside their stages are sanitized away
	// rather than routed. Structured payloads win; inline declarations
	// in the text are the fallback.
	optionLabel, optionDetail := cand.OptionLabel, cand.OptionDetail
	if optionLabel == "" {
		if label, ok := consensus.ParseOption(text); ok {
			optionLabel = label
		}
	}
	if optionLabel != "" && (req.Stage == stage.Options || req.Stage == stage.Discuss) {
		line.OptionLabel = optionLabel
		line.OptionDetail = optionDetail
	}

	voteAllowed := !violatesActs(meeting.ActVote, req.Stage.Acts())
	if v, ok := meeting.ParseVote(cand.Vote); ok && cand.Vote != "" && voteAllowed {
		line.HasVote = true
		line.Vote = v
		line.VoteRef = cand.VoteRef
	} else if voteAllowed {
		if v, ref, found := consensus.ParseVote(text); found {
			line.HasVote = true
			line.Vote = v
			line.VoteRef = ref
		}
	}

	line.ActionItem = cand.ActionItem
	if line.ActionItem == "" {
		if a, ok := consensus.ParseAction(text); ok {
			line.ActionItem = a
		}
	}
	return line
}

// fallback emits the stage's canned line.
func (p *Pipeline) fallback(req Request, act meeting.SpeechAct) Line {
	turn := meeting.Turn{
		Index:    req.TurnIndex,
		Stage:    req.Stage.String(),
		Speaker:  req.Speaker.Name,
		Act:      act,
		Text:     req.Stage.FallbackLine(),
		Fallback: true,
	}
	return Line{Turn: turn}
}

func packRecent(log []meeting.Turn, window int) []string {
	start := len(log) - window
	if start < 0 {
		start = 0
	}
	out := make([]string, 0, window)
	for _, t := range log[start:] {
		out = append(out, t.Text)
	}
	return out
}
