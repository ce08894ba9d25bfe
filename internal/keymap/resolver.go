package keymap

import "strings"

// Resolver maps key strings to actions.
type Resolver struct {
	bindings map[string]Action   // key -> action
	byAction map[Action][]string // action -> keys, in declaration order
	order    []Binding
}

// NewResolver creates a resolver from bindings. A key bound twice
// resolves to the last binding.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: make(map[string]Action),
		byAction: make(map[Action][]string),
		order:    bindings,
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			r.bindings[key] = b.Action
		}
		r.byAction[b.Action] = append(r.byAction[b.Action], b.Keys...)
	}
	for action, keys := range r.byAction {
		r.byAction[action] = dedupe(keys)
	}
	return r
}

// Resolve returns the action for a key, or empty string if not bound.
func (r *Resolver) Resolve(key string) Action {
	return r.bindings[key]
}

// KeysFor returns the keys bound to an action.
func (r *Resolver) KeysFor(action Action) []string {
	return r.byAction[action]
}

// Help returns one "keys  description" line per binding.
func (r *Resolver) Help() []string {
	lines := make([]string, 0, len(r.order))
	for _, b := range r.order {
		keys := make([]string, len(b.Keys))
		for i, k := range b.Keys {
			keys[i] = keyLabel(k)
		}
		lines = append(lines, strings.Join(keys, "/")+"  "+b.Description)
	}
	return lines
}

func keyLabel(k string) string {
	if k == " " {
		return "space"
	}
	return k
}

// dedupe removes duplicate strings from a slice, keeping the first.
func dedupe(s []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(s))
	for _, v := range s {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
