package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"voxterm/internal/dispatch"
	"voxterm/internal/terminal"
)

// handleBuiltin intercepts terminal-management utterances before catalog
// lookup. Returns true when the fragment was consumed.
func (c *Controller) handleBuiltin(ctx context.Context, fragment string, snapshot []terminal.Descriptor) bool {
	words := strings.Fields(fragment)
	if len(words) == 0 {
		return false
	}

	if isListTerminals(fragment) {
		c.speak(ctx, describeTerminals(snapshot))
		return true
	}

	if name, ok := cutPrefix(fragment, "switch to", "use"); ok {
		c.switchTarget(ctx, name, snapshot)
		return true
	}

	if name, ok := cutPrefix(fragment, "call this", "name this"); ok {
		c.aliasCurrent(ctx, name)
		return true
	}

	if text, dest, ok := splitRawSend(fragment); ok {
		c.sendRawText(ctx, text, dest, snapshot)
		return true
	}

	return false
}

var sendVerbs = []string{"send", "type", "say", "write"}

// splitRawSend parses "send <text> to <destination>" shapes. The last "to"
// splits text from destination so the text itself may contain one.
func splitRawSend(fragment string) (text, dest string, ok bool) {
	rest, ok := cutPrefix(fragment, sendVerbs...)
	if !ok {
		return "", "", false
	}
	words := strings.Fields(rest)
	split := -1
	for i, w := range words {
		if w == "to" {
			split = i
		}
	}
	if split <= 0 || split == len(words)-1 {
		return "", "", false
	}
	return strings.Join(words[:split], " "), strings.Join(words[split+1:], " "), true
}

// sendRawText delivers literal text to a named terminal. No confirmation
// window; the executor presses Enter after the text.
func (c *Controller) sendRawText(ctx context.Context, text, dest string, snapshot []terminal.Descriptor) {
	tgt, ok := c.targets.ResolveName(dest, snapshot)
	if !ok {
		c.speak(ctx, fmt.Sprintf("I couldn't find %s.", dest))
		return
	}
	if tgt.IsLocal() {
		c.speak(ctx, "I can only send text to another terminal.")
		return
	}

	decision := dispatch.Decision{
		Kind:    dispatch.KindExecute,
		Command: text,
		Target:  tgt,
	}
	c.logger.Info("raw text send",
		slog.String("text", text),
		slog.String("target", tgt.ID))

	go func() {
		if _, err := c.dispatcher.Dispatch(ctx, decision); err != nil {
			c.logger.Error("raw text send failed",
				slog.String("target", tgt.ID),
				slog.String("error", err.Error()))
			c.speak(ctx, fmt.Sprintf("Failed to send text: %v", err))
			return
		}
		c.speak(ctx, fmt.Sprintf("Sent %s to %s.", text, tgt.Display))
	}()
}

var listTerminalPhrases = []string{
	"list terminals",
	"list all terminals",
	"show terminals",
	"what terminals are open",
	"which terminals are open",
}

func isListTerminals(fragment string) bool {
	for _, p := range listTerminalPhrases {
		if fragment == p {
			return true
		}
	}
	return false
}

func describeTerminals(snapshot []terminal.Descriptor) string {
	if len(snapshot) == 0 {
		return "I don't see any terminals, commands will run here."
	}
	names := make([]string, 0, len(snapshot))
	for _, d := range snapshot {
		names = append(names, d.DisplayName())
	}
	return "I can see " + strings.Join(names, ", ") + "."
}

func (c *Controller) switchTarget(ctx context.Context, name string, snapshot []terminal.Descriptor) {
	tgt, ok := c.targets.ResolveName(name, snapshot)
	if !ok {
		c.speak(ctx, fmt.Sprintf("I couldn't find %s.", name))
		return
	}
	c.setCurrent(tgt)
	c.logger.Info("target switched", slog.String("target", tgt.ID), slog.String("display", tgt.Display))
	c.speak(ctx, fmt.Sprintf("Switched to %s.", tgt.Display))
}

// aliasCurrent names the sticky target; an acknowledgement, never a dispatch.
func (c *Controller) aliasCurrent(ctx context.Context, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		c.speak(ctx, "Call it what?")
		return
	}
	if c.current.IsLocal() {
		c.speak(ctx, "Switch to a terminal first, then name it.")
		return
	}
	if c.aliases == nil {
		c.speak(ctx, "I can't store names right now.")
		return
	}
	c.aliases.Set(c.current.ID, name)
	c.logger.Info("alias set", slog.String("target", c.current.ID), slog.String("alias", name))
	c.speak(ctx, fmt.Sprintf("This terminal is now %s.", name))
}

// cutPrefix returns the remainder after the first matching spoken prefix.
func cutPrefix(fragment string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(fragment, p+" "); ok {
			return strings.TrimSpace(rest), true
		}
	}
	return "", false
}
