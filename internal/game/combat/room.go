package combat

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
	"github.com/cory-johannsen/blightfall/internal/game/balance"
	"github.com/cory-johannsen/blightfall/internal/game/combatlog"
	"github.com/cory-johannsen/blightfall/internal/game/comeback"
	"github.com/cory-johannsen/blightfall/internal/game/coordination"
	"github.com/cory-johannsen/blightfall/internal/game/corruption"
	"github.com/cory-johannsen/blightfall/internal/game/dice"
	"github.com/cory-johannsen/blightfall/internal/game/effect"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
	"github.com/cory-johannsen/blightfall/internal/game/threat"
)

// Deps are the shared, read-only collaborators a room is built from.
type Deps struct {
	Registry *Registry
	Catalog  *ability.Catalog
	Effects  *effect.Registry
	Balance  *balance.Store
	// Source is the room's own randomness. Never share one between rooms.
	Source    dice.Source
	Detection DetectionHook
	Scripts   ScriptRunner
	Logger    *zap.Logger
}

// ActionResult reports how one submitted action ended.
type ActionResult struct {
	Action
	Executed bool
	Success  bool
}

// RoundResult is the outcome of one ResolveRound call.
type RoundResult struct {
	Round   int
	Actions []ActionResult
	// MonsterTarget is the id the monster attacked, if any.
	MonsterTarget string
	Comeback      bool
	// Entries are the log entries appended during the round.
	Entries []combatlog.Entry
}

// Room owns one game's arena, effects, log and randomness and resolves its
// rounds one at a time.
type Room struct {
	mu         sync.Mutex
	id         string
	deps       Deps
	arena      *entity.Arena
	log        *combatlog.Log
	effects    *effect.Manager
	corruption *corruption.Tracker
	comeback   comeback.State
	roller     *dice.Roller
	round      int
}

// NewRoom validates deps, applies passive abilities and evaluates comeback
// mode for the first round.
//
// Precondition: arena holds the room's players and monster.
// Postcondition: returns an error wrapping ErrConfiguration when an ability
// in deps.Catalog has no handler or names a missing script hook.
func NewRoom(id string, arena *entity.Arena, deps Deps) (*Room, error) {
	switch {
	case arena == nil:
		return nil, errors.New("room requires an arena")
	case deps.Registry == nil || deps.Catalog == nil || deps.Effects == nil || deps.Balance == nil:
		return nil, fmt.Errorf("%w: room %q is missing registry, catalog, effects or balance", ErrConfiguration, id)
	case deps.Source == nil:
		return nil, errors.New("room requires a dice source")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if err := deps.Registry.Validate(deps.Catalog); err != nil {
		return nil, err
	}
	for _, a := range deps.Catalog.All() {
		if a.Effect != ability.EffectNone {
			if _, ok := deps.Effects.Get(string(a.Effect)); !ok {
				return nil, fmt.Errorf("%w: ability %q applies undefined effect %q", ErrConfiguration, a.Type, a.Effect)
			}
		}
		if a.Script == "" {
			continue
		}
		if deps.Scripts == nil || !deps.Scripts.HasHook(a.Script) {
			return nil, fmt.Errorf("%w: ability %q needs Lua hook %q", ErrConfiguration, a.Type, a.Script)
		}
	}

	bal := deps.Balance.Snapshot()
	r := &Room{
		id:         id,
		deps:       deps,
		arena:      arena,
		log:        combatlog.New(),
		effects:    effect.NewManager(deps.Effects),
		corruption: corruption.NewTracker(bal.Corruption),
		roller:     dice.NewLoggedRoller(deps.Source, deps.Logger.With(zap.String("room", id))),
	}
	if err := ApplyPassives(arena, deps.Catalog, r.effects, r.log); err != nil {
		return nil, err
	}
	r.comeback = comeback.Evaluate(arena, bal.Comeback)
	return r, nil
}

// ID returns the room id.
func (r *Room) ID() string { return r.id }

// Round returns the number of rounds resolved so far.
func (r *Room) Round() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.round
}

// Entries returns a copy of the whole log.
func (r *Room) Entries() []combatlog.Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.Entries()
}

// ViewFor returns the log lines viewerID may see.
func (r *Room) ViewFor(viewerID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.log.ViewFor(viewerID)
}

// Inspect runs fn with exclusive access to the room's arena and effects.
// fn must not retain either after returning.
func (r *Room) Inspect(fn func(*entity.Arena, *effect.Manager)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.arena, r.effects)
}

// ResolveRound resolves one batch of submitted actions.
//
// Actions run in category order (defense, attack, heal, special, racial),
// keeping submission order within a category. The monster then takes its
// turn, effects tick, cooldowns advance, threat decays and comeback mode is
// re-evaluated for the next round. Refused actions only produce log entries.
//
// Postcondition: returns an error only for configuration errors or invariant
// violations; the arena may then be partially updated.
func (r *Room) ResolveRound(actions []Action) (RoundResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.round++
	r.log.SetRound(r.round)
	mark := r.log.Len()
	bal := r.deps.Balance.Snapshot()
	r.corruption.BeginRound(r.round, bal.Corruption)

	sys := &Systems{
		Arena:      r.arena,
		Log:        r.log,
		Effects:    r.effects,
		Threat:     threat.New(bal.Threat),
		Corruption: r.corruption,
		Comeback:   r.comeback,
		Balance:    bal,
		Roller:     r.roller,
		Detection:  r.deps.Detection,
		Scripts:    r.deps.Scripts,
		Logger:     r.deps.Logger,
	}
	res := RoundResult{Round: r.round}

	queue := r.validate(actions, &res)
	subs := make([]coordination.Submission, 0, len(queue))
	for _, q := range queue {
		actor, _ := r.arena.Player(q.ActorID)
		subs = append(subs, coordination.Submission{
			ActorID:   q.ActorID,
			ActorName: actor.Name,
			TargetID:  coordinationTarget(q),
			Category:  q.ability.Category,
		})
	}
	coord := coordination.Calculate(subs, bal.Coordination)
	for _, q := range queue {
		if info := coord[q.ActorID]; info.Active {
			r.log.Private(combatlog.TypeCoordination, q.ActorID, q.TargetID, info.Describe(),
				map[string]any{"bonus_percent": info.BonusPercent, "partners": info.Count()}, q.ActorID)
		}
	}

	sortByCategory(queue)
	pending := make(map[string]map[string]int)
	for _, q := range queue {
		actor, _ := r.arena.Player(q.ActorID)
		out := ActionResult{Action: q.Action}
		if !actor.Alive {
			r.log.Private(combatlog.TypeRefused, actor.ID, q.TargetID,
				fmt.Sprintf("You fell before you could use %s.", q.ability.Name), nil, actor.ID)
			res.Actions = append(res.Actions, out)
			continue
		}
		ctx := &Context{
			Systems:      sys,
			Actor:        actor,
			TargetID:     q.TargetID,
			Ability:      q.ability,
			Coordination: coord[q.ActorID],
		}
		ok, err := r.deps.Registry.Execute(q.ability.Type, ctx)
		if err != nil {
			return res, fmt.Errorf("room %s round %d: %s by %q: %w", r.id, r.round, q.ability.Type, actor.ID, err)
		}
		out.Executed, out.Success = true, ok
		if ok && q.ability.Cooldown > 0 {
			if pending[actor.ID] == nil {
				pending[actor.ID] = make(map[string]int)
			}
			pending[actor.ID][q.ability.Type] = q.ability.Cooldown
		}
		res.Actions = append(res.Actions, out)
	}

	target, err := r.monsterTurn(sys, bal)
	if err != nil {
		return res, fmt.Errorf("room %s round %d: monster turn: %w", r.id, r.round, err)
	}
	res.MonsterTarget = target

	if err := r.effects.Tick(r.arena, r.log); err != nil {
		return res, fmt.Errorf("room %s round %d: ticking effects: %w", r.id, r.round, err)
	}
	for _, p := range r.arena.Players() {
		p.TickCooldowns()
		for typ, n := range pending[p.ID] {
			p.StartCooldown(typ, n)
		}
	}
	threat.Prune(r.arena.Monster, r.arena)
	sys.Threat.Decay(r.arena.Monster)
	if m := r.arena.Monster; m != nil && m.Alive {
		m.Age++
	}

	next := comeback.Evaluate(r.arena, bal.Comeback)
	if next.Active != r.comeback.Active {
		msg := "The tide turns. The faithful fight with renewed strength."
		if !next.Active {
			msg = "The faithful are no longer desperate."
		}
		r.log.Public(combatlog.TypeComeback, "", "", msg, map[string]any{"active": next.Active})
		r.deps.Logger.Debug("comeback changed",
			zap.String("room", r.id),
			zap.Bool("active", next.Active),
			zap.Float64("ratio", next.Ratio),
		)
	}
	r.comeback = next
	res.Comeback = next.Active

	if err := r.arena.Check(); err != nil {
		return res, fmt.Errorf("room %s round %d: %w", r.id, r.round, err)
	}
	res.Entries = r.log.Since(mark)
	r.deps.Logger.Info("round resolved",
		zap.String("room", r.id),
		zap.Int("round", r.round),
		zap.Int("actions", len(actions)),
		zap.Int("executed", len(queue)),
		zap.Int("entries", len(res.Entries)),
		zap.Int("living", len(r.arena.Living())),
		zap.Bool("comeback", res.Comeback),
	)
	return res, nil
}

// coordinationTarget is the grouping target: self abilities group on the
// actor, area abilities on everyone.
func coordinationTarget(q queued) string {
	switch q.ability.Target {
	case ability.TargetSelf:
		return q.ActorID
	case ability.TargetMulti:
		return "*"
	}
	return q.TargetID
}

// validate drops actions that cannot run at all, logging the reason to the
// submitter, and returns the rest in submission order.
func (r *Room) validate(actions []Action, res *RoundResult) []queued {
	seen := make(map[string]bool, len(actions))
	var out []queued
	for i, a := range actions {
		reason := ""
		actor, ok := r.arena.Player(a.ActorID)
		def, known := r.deps.Catalog.Get(a.AbilityID)
		switch {
		case !ok:
			r.deps.Logger.Warn("action from unknown player", zap.String("room", r.id), zap.String("actor", a.ActorID))
			res.Actions = append(res.Actions, ActionResult{Action: a})
			continue
		case !actor.Alive:
			reason = "The dead cannot act."
		case seen[a.ActorID]:
			reason = "You already acted this round."
		case !known || !actor.HasAbility(a.AbilityID):
			reason = fmt.Sprintf("You do not know %q.", a.AbilityID)
		case def.Passive:
			reason = fmt.Sprintf("%s is always active and cannot be used.", def.Name)
		case actor.Cooldown(a.AbilityID) > 0:
			reason = fmt.Sprintf("%s is recovering for %d more round(s).", def.Name, actor.Cooldown(a.AbilityID))
		}
		if reason != "" {
			r.log.Private(combatlog.TypeRefused, a.ActorID, a.TargetID, reason,
				map[string]any{"ability": a.AbilityID}, a.ActorID)
			res.Actions = append(res.Actions, ActionResult{Action: a})
			continue
		}
		seen[a.ActorID] = true
		out = append(out, queued{Action: a, seq: i, ability: def})
	}
	return out
}

// monsterTurn lets a living monster attack its focus target, or a random
// visible player when nobody has threat. It returns the victim's id.
func (r *Room) monsterTurn(sys *Systems, bal *balance.Balance) (string, error) {
	m := r.arena.Monster
	if m == nil || !m.Alive {
		return "", nil
	}
	victim := threat.ChooseTarget(r.arena, func(p *entity.Player) bool {
		return !r.effects.Untargetable(p.ID)
	}, r.roller)
	if victim == nil {
		r.log.Public(combatlog.TypeMonster, entity.MonsterID, "",
			fmt.Sprintf("%s prowls, finding no prey.", m.Name), nil)
		return "", nil
	}
	dmg, err := threat.MonsterDamage(bal.Monster, m, r.roller)
	if err != nil {
		return "", err
	}
	r.log.Public(combatlog.TypeMonster, entity.MonsterID, victim.ID,
		fmt.Sprintf("%s lunges at %s!", m.Name, victim.Name),
		map[string]any{"roll": dmg})
	if _, err := sys.DamagePlayer(entity.MonsterID, victim, float64(dmg), m.Name); err != nil {
		return "", err
	}
	return victim.ID, nil
}
