// Package entity defines the combat participants owned by a game room: players,
// the shared monster, and the arena that maps ids to both.
package entity

import (
	"errors"
	"fmt"
	"sort"
)

// MonsterID is the reserved target identifier that denotes the room's monster.
// No player may use it as an id.
const MonsterID = "__monster__"

// ErrInvariant marks an engine-side invariant violation (a bug upstream), as
// opposed to an action the game simply refused.
var ErrInvariant = errors.New("invariant violation")

// Stats accumulates per-player scoring counters across the game.
type Stats struct {
	DamageDealt  int `json:"damage_dealt"`
	DamageTaken  int `json:"damage_taken"`
	HealingDone  int `json:"healing_done"`
	SelfHeal     int `json:"self_heal"`
	Corruptions  int `json:"corruptions"`
	TimesRevived int `json:"times_revived"`
}

// Player is one participant in a room.
//
// Invariant: 0 <= HP <= MaxHP; HP == 0 implies !Alive.
type Player struct {
	ID    string
	Name  string
	Alive bool
	HP    int
	MaxHP int
	Armor int
	Race  string
	Class string
	// DamageMod is the race × class outgoing damage multiplier (1.0 = neutral).
	DamageMod float64
	// Corrupted is the hidden antagonist role. Never broadcast.
	Corrupted bool
	// Abilities lists the ability ids this player has unlocked.
	Abilities []string
	// Cooldowns maps ability id to rounds remaining before it may be used again.
	Cooldowns map[string]int
	Stats     Stats
}

// HasAbility reports whether the player has unlocked the ability id.
func (p *Player) HasAbility(id string) bool {
	for _, a := range p.Abilities {
		if a == id {
			return true
		}
	}
	return false
}

// Cooldown returns the rounds remaining on ability id, or 0.
func (p *Player) Cooldown(id string) int {
	if p.Cooldowns == nil {
		return 0
	}
	return p.Cooldowns[id]
}

// StartCooldown sets the cooldown for ability id. A non-positive rounds value clears it.
func (p *Player) StartCooldown(id string, rounds int) {
	if p.Cooldowns == nil {
		p.Cooldowns = make(map[string]int)
	}
	if rounds <= 0 {
		delete(p.Cooldowns, id)
		return
	}
	p.Cooldowns[id] = rounds
}

// TickCooldowns decrements every cooldown by one and drops those that reach zero.
func (p *Player) TickCooldowns() {
	for id, n := range p.Cooldowns {
		if n <= 1 {
			delete(p.Cooldowns, id)
			continue
		}
		p.Cooldowns[id] = n - 1
	}
}

// TakeDamage reduces HP by amount, flooring at zero, and marks the player dead at zero.
//
// Precondition: amount >= 0.
// Postcondition: returns the hp actually removed; 0 <= HP.
func (p *Player) TakeDamage(amount int) int {
	if amount <= 0 || !p.Alive {
		return 0
	}
	if amount > p.HP {
		amount = p.HP
	}
	p.HP -= amount
	p.Stats.DamageTaken += amount
	if p.HP == 0 {
		p.Alive = false
	}
	return amount
}

// Heal raises HP by at most the missing amount.
//
// Postcondition: returns the hp actually restored; HP <= MaxHP.
func (p *Player) Heal(amount int) int {
	if amount <= 0 || !p.Alive {
		return 0
	}
	if missing := p.MaxHP - p.HP; amount > missing {
		amount = missing
	}
	p.HP += amount
	return amount
}

// Revive brings a dead player back with hp hit points (clamped to [1, MaxHP]).
func (p *Player) Revive(hp int) {
	if hp < 1 {
		hp = 1
	}
	if hp > p.MaxHP {
		hp = p.MaxHP
	}
	p.HP = hp
	p.Alive = true
	p.Stats.TimesRevived++
}

// Check validates the player's invariants.
func (p *Player) Check() error {
	if p.HP < 0 || p.HP > p.MaxHP {
		return fmt.Errorf("%w: player %q hp %d outside [0, %d]", ErrInvariant, p.ID, p.HP, p.MaxHP)
	}
	if p.HP == 0 && p.Alive {
		return fmt.Errorf("%w: player %q alive at 0 hp", ErrInvariant, p.ID)
	}
	return nil
}

// Monster is the shared NPC every player can attack.
type Monster struct {
	Name  string
	HP    int
	MaxHP int
	Alive bool
	// BaseDamage is the monster's flat damage per attack before age scaling.
	BaseDamage int
	// DamageDice is an optional dice expression added to each attack (e.g. "1d6").
	DamageDice string
	// Age counts the rounds the monster has been alive.
	Age int
	// Threat maps player id to accumulated aggro.
	Threat map[string]float64
}

// TakeDamage reduces monster HP by amount, flooring at zero.
//
// Postcondition: returns the hp actually removed.
func (m *Monster) TakeDamage(amount int) int {
	if amount <= 0 || !m.Alive {
		return 0
	}
	if amount > m.HP {
		amount = m.HP
	}
	m.HP -= amount
	if m.HP == 0 {
		m.Alive = false
	}
	return amount
}

// Check validates the monster's invariants.
func (m *Monster) Check() error {
	if m.HP < 0 || m.HP > m.MaxHP {
		return fmt.Errorf("%w: monster hp %d outside [0, %d]", ErrInvariant, m.HP, m.MaxHP)
	}
	for id, score := range m.Threat {
		if score < 0 {
			return fmt.Errorf("%w: negative threat %.2f for %q", ErrInvariant, score, id)
		}
	}
	return nil
}

// Arena is the room-owned id → entity map handed to every handler invocation.
// It is not safe for concurrent use; a room resolves its rounds sequentially.
type Arena struct {
	players map[string]*Player
	order   []string
	Monster *Monster
}

// NewArena creates an arena holding players (in join order) and monster.
//
// Precondition: player ids are unique and never equal MonsterID.
// Postcondition: returns a populated Arena or an error on a bad id.
func NewArena(players []*Player, monster *Monster) (*Arena, error) {
	a := &Arena{players: make(map[string]*Player, len(players)), Monster: monster}
	for _, p := range players {
		if err := a.Add(p); err != nil {
			return nil, err
		}
	}
	if monster != nil && monster.Threat == nil {
		monster.Threat = make(map[string]float64)
	}
	return a, nil
}

// Add registers p in the arena.
func (a *Arena) Add(p *Player) error {
	if p == nil || p.ID == "" {
		return errors.New("player must have an id")
	}
	if p.ID == MonsterID {
		return fmt.Errorf("player id %q is reserved for the monster", p.ID)
	}
	if _, exists := a.players[p.ID]; exists {
		return fmt.Errorf("duplicate player id %q", p.ID)
	}
	a.players[p.ID] = p
	a.order = append(a.order, p.ID)
	return nil
}

// Player returns the player with id, if present.
func (a *Arena) Player(id string) (*Player, bool) {
	p, ok := a.players[id]
	return p, ok
}

// Players returns every player in join order.
func (a *Arena) Players() []*Player {
	out := make([]*Player, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.players[id])
	}
	return out
}

// Living returns the living players in join order.
func (a *Arena) Living() []*Player {
	var out []*Player
	for _, id := range a.order {
		if p := a.players[id]; p.Alive {
			out = append(out, p)
		}
	}
	return out
}

// SortedIDs returns all player ids in lexicographic order.
func (a *Arena) SortedIDs() []string {
	ids := make([]string, len(a.order))
	copy(ids, a.order)
	sort.Strings(ids)
	return ids
}

// CorruptedCount returns the number of living corrupted players.
func (a *Arena) CorruptedCount() int {
	n := 0
	for _, p := range a.Living() {
		if p.Corrupted {
			n++
		}
	}
	return n
}

// Check validates every entity's invariants.
func (a *Arena) Check() error {
	for _, p := range a.Players() {
		if err := p.Check(); err != nil {
			return err
		}
	}
	if a.Monster != nil {
		if err := a.Monster.Check(); err != nil {
			return err
		}
		for id := range a.Monster.Threat {
			if p, ok := a.players[id]; !ok || !p.Alive {
				return fmt.Errorf("%w: threat table holds non-living player %q", ErrInvariant, id)
			}
		}
	}
	return nil
}
