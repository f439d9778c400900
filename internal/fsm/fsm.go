package fsm

import "fmt"

type State string

type Event string

const (
	StateDormant      State = "dormant"
	StateListening    State = "listening"
	StateConfirmation State = "awaiting_confirmation"
)

const (
	EventWake             Event = "wake"
	EventCommandResolved  Event = "command_resolved"
	EventTranscriptAgain  Event = "transcript_preempt"
	EventConfirmationDone Event = "confirmation_fired"
	EventSessionTimeout   Event = "session_timeout"
	EventSleep            Event = "sleep"
	EventContinue         Event = "continue"
)

// Transition computes the next state for an event. Sleep and session timeout
// land in dormant from any state; invalid transitions leave the state
// unchanged and report an error.
func Transition(current State, event Event) (State, error) {
	switch event {
	case EventSleep, EventSessionTimeout:
		return StateDormant, nil
	}

	switch current {
	case StateDormant:
		switch event {
		case EventWake:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateListening:
		switch event {
		case EventCommandResolved:
			return StateConfirmation, nil
		case EventContinue:
			return StateListening, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateConfirmation:
		switch event {
		case EventConfirmationDone, EventTranscriptAgain:
			return StateListening, nil
		case EventCommandResolved, EventContinue:
			return StateConfirmation, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

// IsAwake reports whether the state belongs to the listening family.
func IsAwake(state State) bool {
	return state == StateListening || state == StateConfirmation
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
