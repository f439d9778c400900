// Package dispatch defines the decision record handed to execution collaborators.
package dispatch

import (
	"context"
	"strings"

	"voxterm/internal/target"
)

// Kind tags what a decision asks the collaborator to do.
type Kind string

const (
	// KindExecute runs the command on the resolved target.
	KindExecute Kind = "execute"
	// KindSpeak renders feedback as speech, nothing is executed.
	KindSpeak Kind = "speak-only"
)

// controlPrefix marks decisions that only mutate session state.
const controlPrefix = "session-control:"

// ControlKind builds the kind for a session-control action such as
// "sleep" or "exit". Control decisions never reach a shell.
func ControlKind(action string) Kind {
	return Kind(controlPrefix + action)
}

// IsControl reports whether k is a session-control kind.
func (k Kind) IsControl() bool {
	return strings.HasPrefix(string(k), controlPrefix)
}

// ControlAction returns the action carried by a session-control kind,
// or "" when k is not one.
func (k Kind) ControlAction() string {
	action, ok := strings.CutPrefix(string(k), controlPrefix)
	if !ok {
		return ""
	}
	return action
}

// Decision is the finalized outcome of resolving one utterance. It is
// immutable once produced; the session keeps no reference after dispatch.
type Decision struct {
	Kind    Kind
	Command string
	Target  target.Target

	// Feedback is the spoken acknowledgement or, for speak-only decisions,
	// the entire payload.
	Feedback string

	// RequiresConfirmation marks decisions that must sit behind the
	// confirmation window before execution. The session owns the timer;
	// the flag lets collaborators and logs tell staged commands apart
	// from immediate ones.
	RequiresConfirmation bool
}

// Result reports what the collaborator did with a decision.
type Result struct {
	// Output holds captured command output, spoken back when short.
	Output string
}

// Dispatcher executes decisions. Failures are surfaced as spoken feedback by
// the session and never retried automatically.
type Dispatcher interface {
	Dispatch(ctx context.Context, d Decision) (Result, error)
}

// dangerousPatterns block commands that can destroy a machine when a
// transcription goes wrong. Matching is case-insensitive containment.
var dangerousPatterns = []string{
	"rm -rf /",
	"sudo rm -rf",
	"format",
	"mkfs",
	"> /dev/sda",
	"dd if=",
	"chmod -r 777 /",
}

// Dangerous reports the destructive pattern a command contains, if any.
// Checked before a command is staged, never after.
func Dangerous(command string) (string, bool) {
	lowered := strings.ToLower(command)
	for _, p := range dangerousPatterns {
		if strings.Contains(lowered, p) {
			return p, true
		}
	}
	return "", false
}
