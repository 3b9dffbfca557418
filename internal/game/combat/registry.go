package combat

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/blightfall/internal/game/ability"
)

// Handler resolves one ability use. It returns false with a log entry when
// the game refuses the action, and an error only for configuration or
// invariant failures.
type Handler func(ctx *Context) (bool, error)

// Registry maps ability types to handlers.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register binds typ to h.
//
// Precondition: h must not be nil.
// Postcondition: returns an error wrapping ErrConfiguration if typ already has a handler.
func (r *Registry) Register(typ string, h Handler) error {
	if typ == "" {
		return fmt.Errorf("%w: empty ability type", ErrConfiguration)
	}
	if h == nil {
		return fmt.Errorf("%w: nil handler for %q", ErrConfiguration, typ)
	}
	if _, exists := r.handlers[typ]; exists {
		return fmt.Errorf("%w: duplicate handler for ability type %q", ErrConfiguration, typ)
	}
	r.handlers[typ] = h
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(typ string, h Handler) {
	if err := r.Register(typ, h); err != nil {
		panic(err)
	}
}

// Has reports whether typ has a handler.
func (r *Registry) Has(typ string) bool {
	_, ok := r.handlers[typ]
	return ok
}

// Types returns the registered types sorted.
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// RegisterWhere binds h to every definition in defs that pred accepts and
// returns how many were registered. The first duplicate aborts with an error.
func (r *Registry) RegisterWhere(defs []*ability.Ability, pred func(*ability.Ability) bool, h Handler) (int, error) {
	n := 0
	for _, d := range defs {
		if !pred(d) {
			continue
		}
		if err := r.Register(d.Type, h); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// RegisterCategory binds h to every definition in defs of category c.
func (r *Registry) RegisterCategory(defs []*ability.Ability, c ability.Category, h Handler) (int, error) {
	return r.RegisterWhere(defs, func(a *ability.Ability) bool { return a.Category == c }, h)
}

// RegisterEffect binds h to every definition in defs applying effect e.
func (r *Registry) RegisterEffect(defs []*ability.Ability, e ability.Effect, h Handler) (int, error) {
	return r.RegisterWhere(defs, func(a *ability.Ability) bool { return a.Effect == e }, h)
}

// RegisterTarget binds h to every definition in defs with target shape t.
func (r *Registry) RegisterTarget(defs []*ability.Ability, t ability.Target, h Handler) (int, error) {
	return r.RegisterWhere(defs, func(a *ability.Ability) bool { return a.Target == t }, h)
}

// Execute dispatches to the handler for typ.
//
// Postcondition: an unregistered typ returns an error wrapping ErrConfiguration.
func (r *Registry) Execute(typ string, ctx *Context) (bool, error) {
	h, ok := r.handlers[typ]
	if !ok {
		return false, fmt.Errorf("%w: no handler registered for ability type %q", ErrConfiguration, typ)
	}
	return h(ctx)
}

// Validate checks that every ability in cat has a handler.
func (r *Registry) Validate(cat *ability.Catalog) error {
	var missing []string
	for _, a := range cat.All() {
		if !r.Has(a.Type) {
			missing = append(missing, a.Type)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: abilities without handlers: %v", ErrConfiguration, missing)
	}
	return nil
}
