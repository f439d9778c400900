// Package target resolves spoken destination clauses onto terminal targets.
package target

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"voxterm/internal/terminal"
	"voxterm/internal/transcript"
)

// LocalID routes a command to local execution.
const LocalID = "local"

// Target identifies where a dispatched command should run.
type Target struct {
	ID      string
	Display string

	// Label is the automation-surface window label for ad-hoc destinations
	// ("frontend tab"); empty for local and discovered targets.
	Label string
}

// Local is the default execution target.
var Local = Target{ID: LocalID, Display: "local terminal"}

// IsLocal reports whether the target is local execution.
func (t Target) IsLocal() bool {
	return t.ID == LocalID || t.ID == ""
}

// Resolution is the outcome of destination-clause extraction.
type Resolution struct {
	Target    Target
	Remainder string

	// Explicit reports that a destination clause was present and consumed.
	Explicit bool

	// Unknown carries the spoken destination label when one was named but
	// could not be resolved; the session degrades to local with a notice.
	Unknown string
}

// Resolver extracts destination clauses and maps names onto targets.
//
// Ad-hoc "<label> tab" destinations are minted once per label and reused;
// differently worded labels stay distinct destinations on purpose.
type Resolver struct {
	surface string
	aliases *terminal.AliasStore

	mu    sync.Mutex
	adhoc map[string]Target
}

// NewResolver builds a resolver for the named automation surface ("tmux").
func NewResolver(surface string, aliases *terminal.AliasStore) *Resolver {
	surface = strings.ToLower(strings.TrimSpace(surface))
	if surface == "" {
		surface = "tmux"
	}
	return &Resolver{
		surface: surface,
		aliases: aliases,
		adhoc:   make(map[string]Target),
	}
}

// Surface returns the automation surface name the resolver answers to.
func (r *Resolver) Surface() string {
	return r.surface
}

var clauseOpeners = map[string]bool{"in": true, "on": true}

// spelledNumbers covers the small ordinals recognizers spell out.
var spelledNumbers = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4", "five": "5",
	"six": "6", "seven": "7", "eight": "8", "nine": "9", "ten": "10",
}

// Resolve extracts a destination clause from a normalized fragment.
//
// Leading "in <dest>, <command>" clauses and trailing "... in <dest>" clauses
// are consumed; everything else leaves the sticky current target unchanged.
func (r *Resolver) Resolve(fragment string, snapshot []terminal.Descriptor, current Target) Resolution {
	tokens := strings.Fields(fragment)

	if res, ok := r.resolveLeadingClause(tokens, snapshot); ok {
		return res
	}
	if res, ok := r.resolveTrailingClause(tokens, snapshot); ok {
		return res
	}

	return Resolution{
		Target:    current,
		Remainder: transcript.StripSeparators(fragment),
	}
}

// resolveLeadingClause handles "in <dest> , <command>" and "in <dest-ending-in-tab> <command>".
func (r *Resolver) resolveLeadingClause(tokens []string, snapshot []terminal.Descriptor) (Resolution, bool) {
	if len(tokens) < 3 || !clauseOpeners[tokens[0]] {
		return Resolution{}, false
	}

	// comma-bounded clause: "in frontend tab , run npm start"
	if comma := indexOf(tokens, ","); comma > 1 {
		dest := tokens[1:comma]
		remainder := joinWords(tokens[comma+1:])
		if tgt, ok := r.ResolveName(strings.Join(dest, " "), snapshot); ok {
			return Resolution{Target: tgt, Remainder: remainder, Explicit: true}, true
		}
		return Resolution{
			Target:    Local,
			Remainder: remainder,
			Explicit:  true,
			Unknown:   strings.Join(dest, " "),
		}, true
	}

	// tab-bounded clause without a comma: "in frontend tab run npm start"
	if tab := indexOf(tokens, "tab"); tab > 1 && tab < len(tokens)-1 {
		dest := tokens[1 : tab+1]
		if tgt, ok := r.ResolveName(strings.Join(dest, " "), snapshot); ok {
			return Resolution{Target: tgt, Remainder: joinWords(tokens[tab+1:]), Explicit: true}, true
		}
	}

	// name-bounded clause: "in terminal 2 run git status"
	for end := min(len(tokens)-1, 5); end >= 2; end-- {
		dest := strings.Join(tokens[1:end], " ")
		if tgt, ok := r.resolveKnownName(dest, snapshot); ok {
			return Resolution{Target: tgt, Remainder: joinWords(tokens[end:]), Explicit: true}, true
		}
	}

	return Resolution{}, false
}

// resolveTrailingClause handles "<command> in <dest>" where dest is a tab
// phrase or a known name.
func (r *Resolver) resolveTrailingClause(tokens []string, snapshot []terminal.Descriptor) (Resolution, bool) {
	for i := len(tokens) - 2; i > 0; i-- {
		if !clauseOpeners[tokens[i]] {
			continue
		}
		dest := tokens[i+1:]
		name := strings.Join(dest, " ")
		if dest[len(dest)-1] == "tab" {
			if tgt, ok := r.ResolveName(name, snapshot); ok {
				return Resolution{Target: tgt, Remainder: joinWords(tokens[:i]), Explicit: true}, true
			}
		}
		if tgt, ok := r.resolveKnownName(name, snapshot); ok {
			return Resolution{Target: tgt, Remainder: joinWords(tokens[:i]), Explicit: true}, true
		}
		break
	}
	return Resolution{}, false
}

// ResolveName maps a spoken destination name onto a target, applying the
// precedence order: ordinal, alias/display name, "<label> tab" surface
// reference, bare surface name with optional ordinal.
func (r *Resolver) ResolveName(name string, snapshot []terminal.Descriptor) (Target, bool) {
	words := normalizeNumbers(strings.Fields(strings.ToLower(strings.TrimSpace(name))))
	if len(words) == 0 {
		return Target{}, false
	}
	name = strings.Join(words, " ")

	if name == "local" || name == "here" || name == "current" {
		return Local, true
	}

	// explicit ordinal ("terminal 1") and alias/display-name matches
	if tgt, ok := r.resolveKnownName(name, snapshot); ok {
		return tgt, true
	}

	// "<label> tab" automation-surface reference
	if words[len(words)-1] == "tab" {
		label := strings.Join(words[:len(words)-1], " ")
		if r.aliases != nil {
			if id, ok := r.aliases.Resolve(label); ok {
				return Target{ID: id, Display: label}, true
			}
		}
		return r.ensureAdhoc(label), true
	}

	// bare surface name, optionally numbered ("tmux", "tmux 2")
	if words[0] == r.surface {
		if len(words) == 1 {
			return r.surfaceInstance(1, snapshot), true
		}
		if len(words) == 2 {
			if n, ok := parseSmallNumber(words[1]); ok {
				return r.surfaceInstance(n, snapshot), true
			}
		}
	}

	return Target{}, false
}

// resolveKnownName matches ordinals, aliases, and display names against the
// descriptor snapshot.
func (r *Resolver) resolveKnownName(name string, snapshot []terminal.Descriptor) (Target, bool) {
	name = strings.Join(normalizeNumbers(strings.Fields(name)), " ")
	if name == "" {
		return Target{}, false
	}

	// ordinal form first: "terminal 1", "tmux 2"
	for _, d := range snapshot {
		if d.Ordinal > 0 {
			if name == fmt.Sprintf("%s %d", d.App, d.Ordinal) || name == strings.ToLower(d.Name) {
				return descriptorTarget(d), true
			}
		}
	}
	// alias or plain display name
	for _, d := range snapshot {
		if d.MatchesName(name) {
			return descriptorTarget(d), true
		}
	}
	if r.aliases != nil {
		if id, ok := r.aliases.Resolve(name); ok {
			return Target{ID: id, Display: name}, true
		}
	}
	return Target{}, false
}

// surfaceInstance resolves the nth automation-surface window, minting an
// ad-hoc target when discovery has not seen it.
func (r *Resolver) surfaceInstance(n int, snapshot []terminal.Descriptor) Target {
	for _, d := range snapshot {
		if d.App == r.surface && d.Ordinal == n {
			return descriptorTarget(d)
		}
	}
	return r.ensureAdhoc(fmt.Sprintf("%s %d", r.surface, n))
}

// ensureAdhoc mints a destination for a free-form label exactly once.
func (r *Resolver) ensureAdhoc(label string) Target {
	display := strings.TrimSpace(label)
	if display == "" {
		display = r.surface
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if tgt, ok := r.adhoc[display]; ok {
		return tgt
	}
	tgt := Target{
		ID:      "surface:" + uuid.NewString(),
		Display: display + " tab",
		Label:   display,
	}
	if display == r.surface {
		tgt.Display = r.surface
	}
	r.adhoc[display] = tgt
	return tgt
}

func descriptorTarget(d terminal.Descriptor) Target {
	return Target{ID: d.ID, Display: d.DisplayName()}
}

func normalizeNumbers(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		if digit, ok := spelledNumbers[w]; ok {
			out[i] = digit
			continue
		}
		out[i] = w
	}
	return out
}

func parseSmallNumber(word string) (int, bool) {
	if digit, ok := spelledNumbers[word]; ok {
		word = digit
	}
	switch word {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9", "10":
		n := int(word[0] - '0')
		if word == "10" {
			n = 10
		}
		return n, true
	default:
		return 0, false
	}
}

func indexOf(tokens []string, want string) int {
	for i, token := range tokens {
		if token == want {
			return i
		}
	}
	return -1
}

// joinWords joins tokens, dropping clause separators left over from
// normalization.
func joinWords(tokens []string) string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token == "," {
			continue
		}
		out = append(out, token)
	}
	return strings.Join(out, " ")
}
