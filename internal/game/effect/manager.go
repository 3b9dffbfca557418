package effect

import (
	"fmt"
	"maps"
	"sort"

	"github.com/cory-johannsen/blightfall/internal/game/combatlog"
	"github.com/cory-johannsen/blightfall/internal/game/entity"
)

// Permanent is the duration of an effect that never ticks down.
const Permanent = -1

// Outcome reports what an Apply call did.
type Outcome int

const (
	Created Outcome = iota
	Stacked
	Refreshed
	Ignored
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Stacked:
		return "stacked"
	case Refreshed:
		return "refreshed"
	default:
		return "ignored"
	}
}

// Instance is one applied effect on one entity.
type Instance struct {
	// Seq orders instances by application across the whole room.
	Seq       int
	Owner     string
	Type      string
	Remaining int // Permanent (-1) never ticks
	Params    map[string]float64
	SourceID  string
	// SourceName is kept for messages after the source has died.
	SourceName string
}

// Application describes one request to apply an effect.
type Application struct {
	Type       string
	Duration   int
	Params     map[string]float64
	SourceID   string
	SourceName string
}

// Manager tracks the active effects of every entity in one room.
// It is not safe for concurrent use; the room serialises access.
type Manager struct {
	defs    *Registry
	byOwner map[string][]*Instance
	seq     int
}

// NewManager creates an empty Manager resolving types through defs.
//
// Precondition: defs must not be nil.
func NewManager(defs *Registry) *Manager {
	return &Manager{defs: defs, byOwner: make(map[string][]*Instance)}
}

// Definitions returns the registry the manager resolves types through.
func (m *Manager) Definitions() *Registry { return m.defs }

// Apply adds or updates an effect on owner.
//
// Absent types create an instance. Stackable types always add an independent
// instance. Refreshable types set the remaining duration to the maximum of the
// current and incoming durations and keep the larger value of each param.
// Anything else is ignored while an instance is active.
//
// Precondition: app.Duration > 0 or app.Duration == Permanent.
// Postcondition: returns ErrUnknownEffect when app.Type has no definition.
func (m *Manager) Apply(owner string, app Application) (Outcome, error) {
	def, ok := m.defs.Get(app.Type)
	if !ok {
		return Ignored, fmt.Errorf("applying %q to %q: %w", app.Type, owner, ErrUnknownEffect)
	}
	if app.Duration <= 0 && app.Duration != Permanent {
		return Ignored, fmt.Errorf("%w: effect %q duration %d must be positive or permanent", entity.ErrInvariant, app.Type, app.Duration)
	}

	existing := m.first(owner, app.Type)
	switch {
	case existing == nil:
		m.add(owner, app)
		return Created, nil
	case def.Stackable:
		m.add(owner, app)
		return Stacked, nil
	case def.Refreshable:
		if existing.Remaining != Permanent && (app.Duration == Permanent || app.Duration > existing.Remaining) {
			existing.Remaining = app.Duration
		}
		for k, v := range app.Params {
			if cur, ok := existing.Params[k]; !ok || v > cur {
				existing.Params[k] = v
			}
		}
		existing.SourceID, existing.SourceName = app.SourceID, app.SourceName
		return Refreshed, nil
	default:
		return Ignored, nil
	}
}

func (m *Manager) add(owner string, app Application) {
	m.seq++
	params := make(map[string]float64, len(app.Params))
	maps.Copy(params, app.Params)
	m.byOwner[owner] = append(m.byOwner[owner], &Instance{
		Seq:        m.seq,
		Owner:      owner,
		Type:       app.Type,
		Remaining:  app.Duration,
		Params:     params,
		SourceID:   app.SourceID,
		SourceName: app.SourceName,
	})
}

func (m *Manager) first(owner, typ string) *Instance {
	for _, in := range m.byOwner[owner] {
		if in.Type == typ {
			return in
		}
	}
	return nil
}

func (m *Manager) holds(owner string, target *Instance) bool {
	for _, in := range m.byOwner[owner] {
		if in == target {
			return true
		}
	}
	return false
}

// Has reports whether owner carries at least one instance of typ.
func (m *Manager) Has(owner, typ string) bool {
	return m.first(owner, typ) != nil
}

// Count returns the number of active instances of typ on owner.
func (m *Manager) Count(owner, typ string) int {
	n := 0
	for _, in := range m.byOwner[owner] {
		if in.Type == typ {
			n++
		}
	}
	return n
}

// Instances returns copies of owner's instances in application order.
func (m *Manager) Instances(owner string) []Instance {
	out := make([]Instance, 0, len(m.byOwner[owner]))
	for _, in := range m.byOwner[owner] {
		c := *in
		c.Params = maps.Clone(in.Params)
		out = append(out, c)
	}
	return out
}

// Untargetable reports whether owner is hidden from single-target attacks.
func (m *Manager) Untargetable(owner string) bool {
	for _, in := range m.byOwner[owner] {
		if def, ok := m.defs.Get(in.Type); ok && def.Untargetable {
			return true
		}
	}
	return false
}

// Cure removes every instance of typ from owner and returns how many were removed.
func (m *Manager) Cure(owner, typ string) int {
	list := m.byOwner[owner]
	kept := list[:0]
	removed := 0
	for _, in := range list {
		if in.Type == typ {
			removed++
			continue
		}
		kept = append(kept, in)
	}
	m.setOwner(owner, kept)
	return removed
}

// Clear drops every effect on owner.
func (m *Manager) Clear(owner string) {
	delete(m.byOwner, owner)
}

func (m *Manager) setOwner(owner string, list []*Instance) {
	if len(list) == 0 {
		delete(m.byOwner, owner)
		return
	}
	m.byOwner[owner] = list
}

// CalculateModifiedValue composes every active modifier on channel ch for
// owner: flat amounts are summed and added to base first, then each percent
// amount multiplies the result by (1 + pct/100).
//
// Postcondition: returns an error wrapping entity.ErrInvariant for an unknown
// channel or an instance whose type has no definition.
func (m *Manager) CalculateModifiedValue(owner string, ch Channel, base float64) (float64, error) {
	switch ch {
	case ChannelArmor, ChannelDamageDealt, ChannelDamageTaken, ChannelHealingReceived:
	default:
		return base, fmt.Errorf("%w: unknown modifier channel %q", entity.ErrInvariant, ch)
	}
	flat, factor := 0.0, 1.0
	for _, in := range m.byOwner[owner] {
		def, ok := m.defs.Get(in.Type)
		if !ok {
			return base, fmt.Errorf("querying %s on %q: %q: %w", ch, owner, in.Type, ErrUnknownEffect)
		}
		for _, mod := range def.Modifiers {
			if mod.Channel != ch {
				continue
			}
			switch mod.Kind {
			case KindFlat:
				flat += mod.Amount(in.Params)
			case KindPercent:
				factor *= 1 + mod.Amount(in.Params)/100
			}
		}
	}
	v := (base + flat) * factor
	if v < 0 {
		v = 0
	}
	return v, nil
}

// Tick advances every effect by one round. Owners are visited in sorted id
// order and instances in application order. Each instance is decremented
// (permanent ones are exempt), its periodic damage or healing is applied, and
// it is removed with an expiration entry once it reaches zero. An owner that
// dies mid-tick loses its remaining effects.
func (m *Manager) Tick(arena *entity.Arena, log *combatlog.Log) error {
	owners := make([]string, 0, len(m.byOwner))
	for id := range m.byOwner {
		owners = append(owners, id)
	}
	sort.Strings(owners)

	for _, owner := range owners {
		v, ok := vitalsOf(arena, owner)
		if !ok || !v.alive() {
			m.Clear(owner)
			continue
		}
		list := append([]*Instance(nil), m.byOwner[owner]...)
		var kept []*Instance
		for _, in := range list {
			if !m.holds(owner, in) {
				continue
			}
			def, ok := m.defs.Get(in.Type)
			if !ok {
				return fmt.Errorf("ticking %q on %q: %w", in.Type, owner, ErrUnknownEffect)
			}
			if in.Remaining > 0 {
				in.Remaining--
			}
			if def.Periodic != nil {
				m.applyPeriodic(arena, v, def, in, log)
				if !v.alive() {
					kept = nil
					break
				}
			}
			if in.Remaining == 0 {
				log.Public(combatlog.TypeEffectExpire, in.SourceID, owner,
					fmt.Sprintf("%s is no longer %s.", v.name(), def.Name),
					map[string]any{"effect": in.Type})
				continue
			}
			kept = append(kept, in)
		}
		if !v.alive() {
			m.Clear(owner)
			continue
		}
		// a revive during the tick may have consumed instances already kept
		final := kept[:0]
		for _, in := range kept {
			if m.holds(owner, in) {
				final = append(final, in)
			}
		}
		m.setOwner(owner, final)
	}
	return nil
}

func (m *Manager) applyPeriodic(arena *entity.Arena, v vitals, def *Def, in *Instance, log *combatlog.Log) {
	amount := int(in.Params[def.Periodic.Param])
	if amount <= 0 {
		return
	}
	details := map[string]any{"effect": in.Type, "amount": amount}
	switch def.Periodic.Kind {
	case PeriodicDamage:
		dealt := v.takeDamage(amount)
		details["amount"] = dealt
		if src, ok := arena.Player(in.SourceID); ok {
			src.Stats.DamageDealt += dealt
		}
		log.Public(combatlog.TypeEffectTick, in.SourceID, in.Owner,
			fmt.Sprintf("%s suffers %d damage from %s.", v.name(), dealt, def.Name), details)
		if !v.alive() {
			if p, ok := v.(playerVitals); ok && m.PreventDeath(p.Player, log) {
				return
			}
			log.Public(combatlog.TypeDeath, in.SourceID, in.Owner,
				fmt.Sprintf("%s succumbs to %s.", v.name(), def.Name), map[string]any{"effect": in.Type})
		}
	case PeriodicHeal:
		healed := v.heal(amount)
		if healed == 0 {
			return
		}
		details["amount"] = healed
		log.Public(combatlog.TypeEffectTick, in.SourceID, in.Owner,
			fmt.Sprintf("%s recovers %d health.", v.name(), healed), details)
	}
}

// PreventDeath consumes one use of a death-preventing effect on a player who
// has just dropped to zero hp and revives them. It reports whether the player
// was saved.
func (m *Manager) PreventDeath(p *entity.Player, log *combatlog.Log) bool {
	if p.Alive {
		return false
	}
	for _, in := range m.byOwner[p.ID] {
		def, ok := m.defs.Get(in.Type)
		if !ok || !def.PreventsDeath {
			continue
		}
		uses := in.Params["uses"]
		if _, set := in.Params["uses"]; !set {
			uses = 1
		}
		if uses < 1 {
			continue
		}
		hp := int(in.Params["resurrect_hp"])
		p.Revive(hp)
		if uses <= 1 {
			m.Cure(p.ID, in.Type)
		} else {
			in.Params["uses"] = uses - 1
		}
		log.Public(combatlog.TypeRevive, p.ID, p.ID,
			fmt.Sprintf("%s refuses to die and rises with %d hp!", p.Name, p.HP),
			map[string]any{"effect": in.Type, "hp": p.HP})
		return true
	}
	return false
}

// Erode lowers the armor param of every erodible effect on p by one after a
// damaging hit, removing instances that reach zero.
func (m *Manager) Erode(p *entity.Player, log *combatlog.Log) {
	list := m.byOwner[p.ID]
	kept := list[:0]
	for _, in := range list {
		def, ok := m.defs.Get(in.Type)
		if !ok || !def.ErodesOnHit {
			kept = append(kept, in)
			continue
		}
		in.Params["armor"]--
		if in.Params["armor"] <= 0 {
			log.Public(combatlog.TypeEffectExpire, p.ID, p.ID,
				fmt.Sprintf("%s's %s crumbles away.", p.Name, def.Name),
				map[string]any{"effect": in.Type})
			continue
		}
		kept = append(kept, in)
	}
	m.setOwner(p.ID, kept)
}

// vitals abstracts the monster and players for periodic effects.
type vitals interface {
	name() string
	alive() bool
	takeDamage(int) int
	heal(int) int
}

type playerVitals struct{ *entity.Player }

func (p playerVitals) name() string         { return p.Name }
func (p playerVitals) alive() bool          { return p.Alive }
func (p playerVitals) takeDamage(n int) int { return p.TakeDamage(n) }
func (p playerVitals) heal(n int) int       { return p.Heal(n) }

type monsterVitals struct{ *entity.Monster }

func (m monsterVitals) name() string         { return m.Name }
func (m monsterVitals) alive() bool          { return m.Alive }
func (m monsterVitals) takeDamage(n int) int { return m.TakeDamage(n) }

func (m monsterVitals) heal(n int) int {
	if !m.Alive || n <= 0 {
		return 0
	}
	if missing := m.MaxHP - m.HP; n > missing {
		n = missing
	}
	m.HP += n
	return n
}

func vitalsOf(arena *entity.Arena, id string) (vitals, bool) {
	if id == entity.MonsterID {
		if arena.Monster == nil {
			return nil, false
		}
		return monsterVitals{arena.Monster}, true
	}
	p, ok := arena.Player(id)
	if !ok {
		return nil, false
	}
	return playerVitals{p}, true
}
