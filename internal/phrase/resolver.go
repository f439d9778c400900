// Package phrase classifies normalized utterances against the command catalog.
package phrase

import (
	"strings"

	"voxterm/internal/catalog"
	"voxterm/internal/transcript"
)

// Kind classifies a resolved utterance.
type Kind int

const (
	// Unknown means nothing in the catalog matched.
	Unknown Kind = iota
	// Command carries a fully resolved shell command.
	Command
	// Conversational is acknowledged but never dispatched.
	Conversational
	// SessionControl carries a session action (sleep, continue, exit).
	SessionControl
	// Ambiguous means two or more categories tied for the top score.
	Ambiguous
	// Incomplete means a required parameter slot could not be filled.
	Incomplete
)

func (k Kind) String() string {
	switch k {
	case Command:
		return "command"
	case Conversational:
		return "conversational"
	case SessionControl:
		return "session-control"
	case Ambiguous:
		return "ambiguous"
	case Incomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// Action is a session-control verb.
type Action string

const (
	ActionSleep    Action = "sleep"
	ActionContinue Action = "continue"
	ActionExit     Action = "exit"
)

// sessionControl is checked before catalog lookup so these phrases can never
// be shadowed by a command template.
var sessionControl = map[string]Action{
	"sleep":          ActionSleep,
	"go to sleep":    ActionSleep,
	"stop listening": ActionSleep,
	"pause":          ActionSleep,
	"continue":       ActionContinue,
	"keep going":     ActionContinue,
	"keep listening": ActionContinue,
	"stay active":    ActionContinue,
	"exit":           ActionExit,
	"quit":           ActionExit,
	"goodbye":        ActionExit,
	"shut down":      ActionExit,
}

// Utterance is the resolver's classification of one fragment.
type Utterance struct {
	Kind Kind
	Raw  string

	// Command is the filled shell command when Kind is Command.
	Command  string
	Category string
	Param    string

	// Action is set when Kind is SessionControl.
	Action Action

	// Missing names the unfilled slot when Kind is Incomplete.
	Missing string

	// Choices lists the tied commands when Kind is Ambiguous.
	Choices []string
}

// Resolver maps utterance fragments onto catalog templates.
type Resolver struct {
	catalog *catalog.Catalog
}

func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve classifies one fragment. The fragment is normalized internally, so
// callers may pass raw transcript text or an already-normalized remainder.
func (r *Resolver) Resolve(text string) Utterance {
	normalized := transcript.Normalize(text)
	flat := strings.Join(transcript.Words(normalized), " ")
	if flat == "" {
		return Utterance{Kind: Unknown, Raw: text}
	}

	if action, ok := sessionControl[flat]; ok {
		return Utterance{Kind: SessionControl, Raw: text, Action: action}
	}
	if r.catalog.IsFiller(flat) {
		return Utterance{Kind: Conversational, Raw: text}
	}

	candidates := r.catalog.Lookup(flat)
	if len(candidates) == 0 {
		return Utterance{Kind: Unknown, Raw: text}
	}

	best := candidates[0]
	if choices := crossCategoryTies(candidates); len(choices) > 1 {
		return Utterance{Kind: Ambiguous, Raw: text, Choices: choices}
	}

	if best.Template.Param != "" && best.ParamValue == "" {
		return Utterance{
			Kind:     Incomplete,
			Raw:      text,
			Category: best.Template.Category,
			Missing:  best.Template.Param,
		}
	}

	return Utterance{
		Kind:     Command,
		Raw:      text,
		Command:  best.Template.Fill(best.ParamValue),
		Category: best.Template.Category,
		Param:    best.ParamValue,
	}
}

// crossCategoryTies collects the distinct commands of top-scoring candidates
// that span more than one category. Same-category ties were already settled
// by declaration order.
func crossCategoryTies(candidates []catalog.Candidate) []string {
	top := candidates[0].Score
	commands := []string{candidates[0].Template.Command}
	categories := map[string]bool{candidates[0].Template.Category: true}

	for _, c := range candidates[1:] {
		if c.Score != top {
			break
		}
		if categories[c.Template.Category] {
			continue
		}
		categories[c.Template.Category] = true
		commands = append(commands, c.Template.Command)
	}
	if len(categories) < 2 {
		return nil
	}
	return commands
}
