// Package terminal models discoverable terminal destinations and their aliases.
package terminal

import (
	"fmt"
	"strings"
)

// Descriptor is one externally discovered terminal destination.
//
// Descriptors are read-only snapshots owned by the discovery side; identifiers
// are unique within a snapshot.
type Descriptor struct {
	// ID is the opaque routing identifier, e.g. "tmux:main:1".
	ID string

	// Name is the human display name used for voice matching ("terminal 1",
	// or the window's own name when one was assigned).
	Name string

	// App is the lowercased application family ("tmux").
	App string

	// Ordinal is the 1-based window position, 0 when not applicable.
	Ordinal int

	// Alias is the user-assigned voice alias, empty when unset.
	Alias string

	// Automatable reports whether commands can be delivered into the live
	// destination; false means only launch-configuration delivery works.
	Automatable bool
}

// DisplayName prefers the user alias over the discovered name.
func (d Descriptor) DisplayName() string {
	if d.Alias != "" {
		return d.Alias
	}
	if d.Name != "" {
		return d.Name
	}
	if d.Ordinal > 0 {
		return fmt.Sprintf("%s %d", d.App, d.Ordinal)
	}
	return d.App
}

// MatchesName reports whether term equals the descriptor's alias, name, or
// "app ordinal" form, case-insensitively.
func (d Descriptor) MatchesName(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	if d.Alias != "" && strings.ToLower(d.Alias) == term {
		return true
	}
	if d.Name != "" && strings.ToLower(d.Name) == term {
		return true
	}
	if d.Ordinal > 0 && term == fmt.Sprintf("%s %d", d.App, d.Ordinal) {
		return true
	}
	return strings.ToLower(d.App) == term
}
