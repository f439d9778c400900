// Package session drives the wake-word state machine over a single event queue.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"voxterm/internal/dispatch"
	"voxterm/internal/fsm"
	"voxterm/internal/phrase"
	"voxterm/internal/target"
	"voxterm/internal/terminal"
	"voxterm/internal/transcript"
)

const (
	defaultSessionTimeout    = 30 * time.Second
	defaultConfirmationDelay = 2 * time.Second
)

// actionWake is only reachable through the IPC wake op, never spoken.
const actionWake phrase.Action = "wake"

// Speaker renders feedback strings as speech, fire-and-forget.
type Speaker interface {
	Speak(ctx context.Context, text string)
}

type noopSpeaker struct{}

func (noopSpeaker) Speak(context.Context, string) {}

// Discovery supplies terminal snapshots on demand; staleness is acceptable.
type Discovery interface {
	Snapshot(ctx context.Context) []terminal.Descriptor
}

type noopDiscovery struct{}

func (noopDiscovery) Snapshot(context.Context) []terminal.Descriptor { return nil }

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(context.Context, dispatch.Decision) (dispatch.Result, error) {
	return dispatch.Result{}, nil
}

// Config carries the session timing and wake vocabulary.
type Config struct {
	WakePhrases       []string
	SessionTimeout    time.Duration
	ConfirmationDelay time.Duration

	// InitialTarget seeds the sticky target at startup. Zero means the
	// local terminal.
	InitialTarget target.Target
}

type eventKind int

const (
	eventTranscript eventKind = iota
	eventSessionTimeout
	eventConfirmationFired
	eventControl
)

// event serializes transcripts, timer firings, and IPC controls through one
// queue so state transitions never race.
type event struct {
	kind   eventKind
	text   transcript.Transcript
	gen    uint64
	action phrase.Action
}

// Controller owns the session state machine. All state mutation happens on
// the Run goroutine; Submit and Handle only enqueue events.
type Controller struct {
	logger     *slog.Logger
	resolver   *phrase.Resolver
	targets    *target.Resolver
	aliases    *terminal.AliasStore
	discovery  Discovery
	dispatcher dispatch.Dispatcher
	speaker    Speaker

	wakePhrases       []string
	sessionTimeout    time.Duration
	confirmationDelay time.Duration

	events chan event
	done   chan struct{}

	// loop-owned, never touched off the Run goroutine
	state       fsm.State
	current     target.Target
	pending     *dispatch.Decision
	sessionGen  uint64
	confirmGen  uint64
	sessionTmr  *time.Timer
	confirmTmr  *time.Timer
	wantsToQuit bool

	mu        sync.RWMutex
	snapState fsm.State
	snapTgt   string
}

// NewController constructs a session controller with safe default fallbacks.
func NewController(
	logger *slog.Logger,
	cfg Config,
	resolver *phrase.Resolver,
	targets *target.Resolver,
	aliases *terminal.AliasStore,
	discovery Discovery,
	dispatcher dispatch.Dispatcher,
	speaker Speaker,
) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if discovery == nil {
		discovery = noopDiscovery{}
	}
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	if speaker == nil {
		speaker = noopSpeaker{}
	}
	if cfg.SessionTimeout <= 0 {
		cfg.SessionTimeout = defaultSessionTimeout
	}
	if cfg.ConfirmationDelay <= 0 {
		cfg.ConfirmationDelay = defaultConfirmationDelay
	}
	if cfg.InitialTarget.ID == "" {
		cfg.InitialTarget = target.Local
	}

	wake := make([]string, 0, len(cfg.WakePhrases))
	for _, p := range cfg.WakePhrases {
		normalized := transcript.StripSeparators(transcript.Normalize(p))
		if normalized != "" {
			wake = append(wake, normalized)
		}
	}

	return &Controller{
		logger:            logger,
		resolver:          resolver,
		targets:           targets,
		aliases:           aliases,
		discovery:         discovery,
		dispatcher:        dispatcher,
		speaker:           speaker,
		wakePhrases:       wake,
		sessionTimeout:    cfg.SessionTimeout,
		confirmationDelay: cfg.ConfirmationDelay,
		events:            make(chan event, 16),
		done:              make(chan struct{}),
		state:             fsm.StateDormant,
		current:           cfg.InitialTarget,
		snapState:         fsm.StateDormant,
		snapTgt:           cfg.InitialTarget.Display,
	}
}

// State returns the last published FSM state.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapState
}

// CurrentTarget returns the display name of the sticky target.
func (c *Controller) CurrentTarget() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapTgt
}

// Submit enqueues one completed transcript.
func (c *Controller) Submit(t transcript.Transcript) {
	c.enqueue(event{kind: eventTranscript, text: t})
}

func (c *Controller) enqueue(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Run processes events until exit is requested or the context is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	defer c.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			switch ev.kind {
			case eventTranscript:
				c.onTranscript(ctx, ev.text)
			case eventSessionTimeout:
				if ev.gen == c.sessionGen {
					c.onSessionTimeout(ctx)
				}
			case eventConfirmationFired:
				if ev.gen == c.confirmGen {
					c.onConfirmationFired(ctx)
				}
			case eventControl:
				c.onControl(ctx, ev.action)
			}
			if c.wantsToQuit {
				return nil
			}
		}
	}
}

func (c *Controller) onTranscript(ctx context.Context, t transcript.Transcript) {
	normalized := transcript.Normalize(t.Text)
	flat := strings.Join(transcript.Words(normalized), " ")

	if c.state == fsm.StateDormant {
		rest, ok := c.matchWake(flat)
		if !ok {
			// no catalog lookup while dormant, bounds false triggers
			return
		}
		c.transition(fsm.EventWake)
		c.resetSessionTimer()
		c.logger.Info("session woke", slog.String("transcript", flat))
		if rest == "" {
			c.speak(ctx, "yes?")
			return
		}
		normalized = transcript.Normalize(rest)
		flat = rest
	}

	c.resetSessionTimer()

	if c.pending != nil {
		c.logger.Info("pending command preempted", slog.String("command", c.pending.Command))
		c.cancelPending()
		c.transition(fsm.EventTranscriptAgain)
	}

	if flat == "" {
		c.speak(ctx, "I didn't catch that.")
		return
	}

	snapshot := c.snapshot(ctx)
	// an inline destination clause overrides the target for this command
	// only; the sticky target changes through "switch to"
	res := c.targets.Resolve(normalized, snapshot, c.current)
	if res.Unknown != "" {
		c.speak(ctx, fmt.Sprintf("I couldn't find %s, running here instead.", res.Unknown))
	}

	if c.handleBuiltin(ctx, res.Remainder, snapshot) {
		return
	}

	u := c.resolver.Resolve(res.Remainder)
	switch u.Kind {
	case phrase.SessionControl:
		c.onControl(ctx, u.Action)
	case phrase.Command:
		c.stageCommand(ctx, u, res.Target)
	case phrase.Conversational:
		c.speak(ctx, "okay.")
	case phrase.Ambiguous:
		c.speak(ctx, fmt.Sprintf("That could mean %s. Which one?", strings.Join(u.Choices, " or ")))
	case phrase.Incomplete:
		c.speak(ctx, fmt.Sprintf("I need a %s for that. Say the whole phrase with the %s.", u.Missing, u.Missing))
	default:
		c.speak(ctx, "I don't know that one. Ask me to list terminals, or say help.")
	}
}

// stageCommand stores a pending decision and arms the confirmation timer.
func (c *Controller) stageCommand(ctx context.Context, u phrase.Utterance, tgt target.Target) {
	if pattern, bad := dispatch.Dangerous(u.Command); bad {
		c.logger.Warn("dangerous command blocked",
			slog.String("command", u.Command),
			slog.String("pattern", pattern))
		c.speak(ctx, fmt.Sprintf("That would run %s, which looks destructive. I won't run it.", u.Command))
		return
	}

	decision := dispatch.Decision{
		Kind:                 dispatch.KindExecute,
		Command:              u.Command,
		Target:               tgt,
		RequiresConfirmation: true,
	}
	c.pending = &decision
	c.transition(fsm.EventCommandResolved)
	c.resetConfirmationTimer()

	where := ""
	if !tgt.IsLocal() {
		where = " in " + tgt.Display
	}
	c.speak(ctx, fmt.Sprintf("Running %s%s.", u.Command, where))
	c.logger.Info("command staged",
		slog.String("command", u.Command),
		slog.String("target", tgt.ID),
		slog.Duration("delay", c.confirmationDelay))
}

func (c *Controller) onConfirmationFired(ctx context.Context) {
	if c.pending == nil {
		return
	}
	decision := *c.pending
	c.pending = nil
	c.transition(fsm.EventConfirmationDone)
	c.resetSessionTimer()

	c.logger.Info("command dispatched",
		slog.String("command", decision.Command),
		slog.String("target", decision.Target.ID))

	// the collaborator owns the copy from here; failures are spoken, not retried
	go func() {
		result, err := c.dispatcher.Dispatch(ctx, decision)
		if err != nil {
			c.logger.Error("dispatch failed",
				slog.String("command", decision.Command),
				slog.String("error", err.Error()))
			c.speak(ctx, fmt.Sprintf("Command failed: %v", err))
			return
		}
		if line := firstSpokenLine(result.Output); line != "" {
			c.speak(ctx, line)
		}
	}()
}

func (c *Controller) onSessionTimeout(ctx context.Context) {
	if !fsm.IsAwake(c.state) {
		return
	}
	c.cancelPending()
	c.transition(fsm.EventSessionTimeout)
	c.logger.Info("session timed out")
	c.speak(ctx, "Going to sleep.")
}

func (c *Controller) onControl(ctx context.Context, action phrase.Action) {
	c.logger.Debug("session control",
		slog.String("kind", string(dispatch.ControlKind(string(action)))))
	switch action {
	case phrase.ActionSleep:
		c.cancelPending()
		c.stopTimers()
		c.transition(fsm.EventSleep)
		c.speak(ctx, "Going to sleep.")
	case phrase.ActionContinue:
		if fsm.IsAwake(c.state) {
			c.resetSessionTimer()
			c.transition(fsm.EventContinue)
			c.speak(ctx, "Still listening.")
		}
	case phrase.ActionExit:
		c.cancelPending()
		c.stopTimers()
		c.speak(ctx, "Goodbye.")
		c.logger.Info("exit requested")
		c.wantsToQuit = true
	case actionWake:
		if c.state == fsm.StateDormant {
			c.transition(fsm.EventWake)
			c.resetSessionTimer()
			c.speak(ctx, "yes?")
		}
	}
}

// matchWake reports the words following a wake phrase, if one leads the text.
func (c *Controller) matchWake(flat string) (string, bool) {
	for _, p := range c.wakePhrases {
		if flat == p {
			return "", true
		}
		if strings.HasPrefix(flat, p+" ") {
			return strings.TrimSpace(flat[len(p):]), true
		}
	}
	return "", false
}

func (c *Controller) snapshot(ctx context.Context) []terminal.Descriptor {
	descriptors := c.discovery.Snapshot(ctx)
	if c.aliases != nil {
		descriptors = c.aliases.Apply(descriptors)
	}
	return descriptors
}

func (c *Controller) cancelPending() {
	c.pending = nil
	c.confirmGen++
	if c.confirmTmr != nil {
		c.confirmTmr.Stop()
		c.confirmTmr = nil
	}
}

func (c *Controller) resetSessionTimer() {
	c.sessionGen++
	gen := c.sessionGen
	if c.sessionTmr != nil {
		c.sessionTmr.Stop()
	}
	c.sessionTmr = time.AfterFunc(c.sessionTimeout, func() {
		c.enqueue(event{kind: eventSessionTimeout, gen: gen})
	})
}

func (c *Controller) resetConfirmationTimer() {
	c.confirmGen++
	gen := c.confirmGen
	if c.confirmTmr != nil {
		c.confirmTmr.Stop()
	}
	c.confirmTmr = time.AfterFunc(c.confirmationDelay, func() {
		c.enqueue(event{kind: eventConfirmationFired, gen: gen})
	})
}

func (c *Controller) stopTimers() {
	c.sessionGen++
	c.confirmGen++
	if c.sessionTmr != nil {
		c.sessionTmr.Stop()
		c.sessionTmr = nil
	}
	if c.confirmTmr != nil {
		c.confirmTmr.Stop()
		c.confirmTmr = nil
	}
}

// transition applies one FSM event and publishes the new state snapshot.
func (c *Controller) transition(event fsm.Event) {
	next, err := fsm.Transition(c.state, event)
	if err != nil {
		c.logger.Warn("state transition rejected",
			slog.String("state", string(c.state)),
			slog.String("event", string(event)))
		return
	}
	c.state = next

	c.mu.Lock()
	c.snapState = next
	c.mu.Unlock()
}

func (c *Controller) setCurrent(tgt target.Target) {
	c.current = tgt

	c.mu.Lock()
	c.snapTgt = tgt.Display
	c.mu.Unlock()
}

func (c *Controller) speak(ctx context.Context, text string) {
	c.speaker.Speak(ctx, text)
}

// firstSpokenLine trims command output down to something worth speaking.
func firstSpokenLine(output string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(output), "\n")
	line = strings.TrimSpace(line)
	if line == "" || len(line) > 50 {
		return ""
	}
	return line
}
