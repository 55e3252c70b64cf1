// Package props implements the accumulating per-target property store.
//
// A property is an ordered list of path-like strings attached to a named
// target. Contributions prepend, so the most recent contributor takes
// precedence when the list is joined into a search-path value. The mapping is
// owned explicitly here (target name -> property name -> ordered list) rather
// than hung off an opaque handle, to keep ownership and lifetime clear.
package props

import "strings"

// Store holds ordered property contributions scoped to named targets.
// Entries live for the duration of the process; no removal is exposed.
type Store struct {
	entries map[string]map[string][]string
}

// NewStore creates an empty property store.
func NewStore() *Store {
	return &Store{entries: make(map[string]map[string][]string)}
}

// Contribute prepends value to the ordered list stored under
// (target, property), creating the entry if absent. Duplicate values are
// kept; both appear, most recent first.
func (s *Store) Contribute(target, property, value string) {
	byProp, ok := s.entries[target]
	if !ok {
		byProp = make(map[string][]string)
		s.entries[target] = byProp
	}
	byProp[property] = append([]string{value}, byProp[property]...)
}

// Resolve returns the joined string of the ordered list for
// (target, property) using separator, or an empty string if no entries exist.
func (s *Store) Resolve(target, property, separator string) string {
	byProp, ok := s.entries[target]
	if !ok {
		return ""
	}
	return strings.Join(byProp[property], separator)
}

// Values returns a copy of the ordered list for (target, property).
// Most recent contribution first.
func (s *Store) Values(target, property string) []string {
	byProp, ok := s.entries[target]
	if !ok {
		return nil
	}
	vals := byProp[property]
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out
}
