package simulation

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/blightfall/internal/game/combat"
	"github.com/cory-johannsen/blightfall/internal/game/effect"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
	"github.com/cory-johannsen/blightfall/internal/game/ruleset"
	"github.com/cory-johannsen/blightfall/internal/observability"
)

// Outcome is how a scenario ended.
type Outcome string

const (
	OutcomeUnresolved    Outcome = ""
	OutcomeMonsterSlain  Outcome = "monster_slain"
	OutcomePartyFallen   Outcome = "party_fallen"
	OutcomeRoundsElapsed Outcome = "rounds_elapsed"
)

// Archiver stores finalized rounds outside the engine.
type Archiver interface {
	Archive(ctx context.Context, roomID string, res combat.RoundResult) error
}

// Report is the result of one scenario run.
type Report struct {
	Room    string
	Outcome Outcome
	Rounds  []combat.RoundResult
	// Public lists every public log line in order.
	Public []string
	// Views maps player id to the lines that player can see.
	Views map[string][]string
	// Survivors lists the living player ids at the end, sorted.
	Survivors []string
}

// Runner plays scenarios against an engine.
type Runner struct {
	engine    *combat.Engine
	rules     *ruleset.Rules
	archiver  Archiver
	maxRounds int
	logger    *zap.Logger
}

// NewRunner creates a Runner. archiver may be nil to skip archiving.
//
// Precondition: engine, rules and logger must be non-nil; maxRounds >= 1.
func NewRunner(engine *combat.Engine, rules *ruleset.Rules, archiver Archiver, maxRounds int, logger *zap.Logger) *Runner {
	return &Runner{engine: engine, rules: rules, archiver: archiver, maxRounds: maxRounds, logger: logger}
}

// Run plays s until its scripted rounds run out, the round cap is reached,
// or one side is defeated. The room is released before returning.
//
// Postcondition: Returns a Report or a non-nil error. Archive failures are
// errors; the rounds already resolved are still reported.
func (r *Runner) Run(ctx context.Context, s *Scenario) (Report, error) {
	arena, err := s.BuildArena(r.rules)
	if err != nil {
		return Report{}, err
	}
	room, err := r.engine.StartRoom(s.Room, arena)
	if err != nil {
		return Report{}, err
	}
	defer r.engine.EndRoom(s.Room)
	logger := observability.ForRoom(r.logger, s.Room)

	rep := Report{Room: s.Room, Views: make(map[string][]string)}
	for i, script := range s.Rounds {
		if i >= r.maxRounds {
			logger.Info("round cap reached", zap.Int("max_rounds", r.maxRounds))
			break
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res, err := room.ResolveRound(script.Actions)
		if err != nil {
			return rep, fmt.Errorf("resolving round %d: %w", i+1, err)
		}
		rep.Rounds = append(rep.Rounds, res)
		if r.archiver != nil {
			if err := r.archiver.Archive(ctx, s.Room, res); err != nil {
				return rep, fmt.Errorf("archiving round %d: %w", res.Round, err)
			}
		}
		if rep.Outcome = outcomeOf(room); rep.Outcome != OutcomeUnresolved {
			break
		}
	}
	if rep.Outcome == OutcomeUnresolved {
		rep.Outcome = OutcomeRoundsElapsed
	}

	for _, e := range room.Entries() {
		if e.Public {
			rep.Public = append(rep.Public, e.Message)
		}
	}
	room.Inspect(func(a *entity.Arena, _ *effect.Manager) {
		for _, id := range a.SortedIDs() {
			if p, _ := a.Player(id); p.Alive {
				rep.Survivors = append(rep.Survivors, id)
			}
		}
	})
	for _, spec := range s.Players {
		rep.Views[spec.ID] = room.ViewFor(spec.ID)
	}
	logger.Info("scenario finished",
		zap.String("scenario", s.Name),
		zap.String("outcome", string(rep.Outcome)),
		zap.Int("rounds", len(rep.Rounds)),
	)
	return rep, nil
}

func outcomeOf(room *combat.Room) Outcome {
	out := OutcomeUnresolved
	room.Inspect(func(a *entity.Arena, _ *effect.Manager) {
		switch {
		case a.Monster != nil && !a.Monster.Alive:
			out = OutcomeMonsterSlain
		case len(a.Living()) == 0:
			out = OutcomePartyFallen
		}
	})
	return out
}

// WriteReport prints the public log grouped by round, then each player's
// private view.
func WriteReport(w io.Writer, s *Scenario, rep Report) error {
	ew := &errWriter{w: w}
	ew.printf("== %s (%s) ==\n", s.Name, rep.Room)
	for _, res := range rep.Rounds {
		ew.printf("\n-- round %d --\n", res.Round)
		for _, e := range res.Entries {
			if e.Public {
				ew.printf("  %s\n", e.Message)
			}
		}
		if res.MonsterTarget != "" {
			ew.printf("  [monster focus: %s]\n", res.MonsterTarget)
		}
	}
	ew.printf("\noutcome: %s, survivors: %v\n", rep.Outcome, rep.Survivors)
	for _, spec := range s.Players {
		ew.printf("\n-- view of %s --\n", spec.ID)
		for _, line := range rep.Views[spec.ID] {
			ew.printf("  %s\n", line)
		}
	}
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
