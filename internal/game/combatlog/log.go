// Package combatlog records the ordered, append-only event stream a round of
// resolution produces, with public and per-player private views.
package combatlog

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Type classifies an entry for machine consumers.
type Type string

const (
	TypeDamage       Type = "damage"
	TypeMiss         Type = "miss"
	TypeHeal         Type = "heal"
	TypeEffect       Type = "effect"
	TypeEffectTick   Type = "effect_tick"
	TypeEffectExpire Type = "effect_expire"
	TypeDeath        Type = "death"
	TypeRevive       Type = "revive"
	TypeCoordination Type = "coordination"
	TypeComeback     Type = "comeback"
	TypeCorruption   Type = "corruption"
	TypeDetection    Type = "detection"
	TypeMonster      Type = "monster"
	TypeRefused      Type = "refused"
	TypeInfo         Type = "info"
)

// Entry is one audit record.
//
// A viewer listed in Recipients sees Private (when non-empty) in place of
// Message. Everyone else sees Message only when Public is true.
type Entry struct {
	ID         uuid.UUID      `json:"id"`
	Round      int            `json:"round"`
	Type       Type           `json:"type"`
	Public     bool           `json:"public"`
	Message    string         `json:"message"`
	Private    string         `json:"private,omitempty"`
	Recipients []string       `json:"recipients,omitempty"`
	ActorID    string         `json:"actor_id,omitempty"`
	TargetID   string         `json:"target_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// VisibleTo reports whether viewerID can see the entry at all.
func (e Entry) VisibleTo(viewerID string) bool {
	return e.Public || slices.Contains(e.Recipients, viewerID)
}

// TextFor returns the message viewerID sees, or "" if the entry is hidden from them.
func (e Entry) TextFor(viewerID string) string {
	if slices.Contains(e.Recipients, viewerID) && e.Private != "" {
		return e.Private
	}
	if e.VisibleTo(viewerID) {
		return e.Message
	}
	return ""
}

// Log is the ordered entry sequence for one room. Not safe for concurrent use.
type Log struct {
	round   int
	entries []Entry
}

// New returns an empty Log.
func New() *Log {
	return &Log{}
}

// SetRound stamps subsequent entries with round.
func (l *Log) SetRound(round int) { l.round = round }

// Round returns the round currently being stamped.
func (l *Log) Round() int { return l.round }

// Append adds e, assigning an id and the current round.
func (l *Log) Append(e Entry) Entry {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	e.Round = l.round
	l.entries = append(l.entries, e)
	return e
}

// Public appends a broadcast entry.
func (l *Log) Public(typ Type, actorID, targetID, msg string, details map[string]any) Entry {
	return l.Append(Entry{Type: typ, Public: true, Message: msg, ActorID: actorID, TargetID: targetID, Details: details})
}

// Private appends an entry visible only to recipients.
func (l *Log) Private(typ Type, actorID, targetID, msg string, details map[string]any, recipients ...string) Entry {
	return l.Append(Entry{Type: typ, Private: msg, Recipients: recipients, ActorID: actorID, TargetID: targetID, Details: details})
}

// Entries returns a copy of every entry in order.
func (l *Log) Entries() []Entry {
	return slices.Clone(l.entries)
}

// Len returns the number of entries.
func (l *Log) Len() int { return len(l.entries) }

// Since returns the entries appended after the first n.
func (l *Log) Since(n int) []Entry {
	if n >= len(l.entries) {
		return nil
	}
	return slices.Clone(l.entries[n:])
}

// PublicView returns the broadcast entries in order.
func (l *Log) PublicView() []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Public {
			out = append(out, e)
		}
	}
	return out
}

// ViewFor returns the text lines viewerID sees, in order.
func (l *Log) ViewFor(viewerID string) []string {
	var out []string
	for _, e := range l.entries {
		if s := e.TextFor(viewerID); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Filter returns the entries of type typ.
func (l *Log) Filter(typ Type) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// Marshal encodes entries as a JSON array.
func Marshal(entries []Entry) ([]byte, error) {
	b, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding log entries: %w", err)
	}
	return b, nil
}

// Unmarshal decodes a JSON array produced by Marshal.
func Unmarshal(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding log entries: %w", err)
	}
	return entries, nil
}
