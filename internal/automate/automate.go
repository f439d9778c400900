// Package automate executes dispatch decisions locally or on tmux windows.
package automate

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"voxterm/internal/dispatch"
	"voxterm/internal/target"
	"voxterm/internal/terminal"
)

// Executor runs finalized decisions. It owns no session state; it gets a
// copy of each decision and reports success or failure once.
type Executor struct {
	logger         *slog.Logger
	commandTimeout time.Duration
	runTmux        func(ctx context.Context, args ...string) (string, error)
}

// NewExecutor builds the execution collaborator.
func NewExecutor(logger *slog.Logger, commandTimeout time.Duration) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if commandTimeout <= 0 {
		commandTimeout = 30 * time.Second
	}
	return &Executor{
		logger:         logger,
		commandTimeout: commandTimeout,
		runTmux:        runTmuxCommand,
	}
}

// Dispatch routes one decision to local execution or a tmux window.
func (e *Executor) Dispatch(ctx context.Context, d dispatch.Decision) (dispatch.Result, error) {
	if d.Kind == dispatch.KindSpeak || d.Kind.IsControl() {
		// session state changes happen in the controller; nothing runs here
		return dispatch.Result{Output: d.Feedback}, nil
	}
	if strings.TrimSpace(d.Command) == "" {
		return dispatch.Result{}, fmt.Errorf("empty command")
	}

	if d.Target.IsLocal() {
		return e.runLocal(ctx, d.Command)
	}
	return e.runRemote(ctx, d)
}

// runLocal executes the command through the shell and captures its output.
func (e *Executor) runLocal(ctx context.Context, command string) (dispatch.Result, error) {
	runCtx, cancel := context.WithTimeout(ctx, e.commandTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", command)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return dispatch.Result{Output: output.String()},
			fmt.Errorf("command timed out after %s", e.commandTimeout)
	}
	if err != nil {
		detail := strings.TrimSpace(output.String())
		if detail != "" {
			return dispatch.Result{Output: output.String()}, fmt.Errorf("%s: %w", firstLine(detail), err)
		}
		return dispatch.Result{}, err
	}

	e.logger.Info("command executed locally",
		slog.String("command", command),
		slog.Int("output_bytes", output.Len()))
	return dispatch.Result{Output: output.String()}, nil
}

// runRemote delivers the command to a tmux window, creating ad-hoc labeled
// windows on demand.
func (e *Executor) runRemote(ctx context.Context, d dispatch.Decision) (dispatch.Result, error) {
	paneTarget, err := e.resolvePane(ctx, d.Target)
	if err != nil {
		return dispatch.Result{}, err
	}

	if _, err := e.runTmux(ctx, "send-keys", "-t", paneTarget, d.Command, "Enter"); err != nil {
		return dispatch.Result{}, fmt.Errorf("deliver to %s: %w", d.Target.Display, err)
	}

	e.logger.Info("command delivered",
		slog.String("command", d.Command),
		slog.String("target", d.Target.ID),
		slog.String("pane", paneTarget))

	// remote output stays in the remote window; nothing to speak back
	return dispatch.Result{}, nil
}

// resolvePane maps a target onto a tmux -t argument.
func (e *Executor) resolvePane(ctx context.Context, tgt target.Target) (string, error) {
	if pane, ok := terminal.PaneTarget(tgt.ID); ok {
		return pane, nil
	}
	if tgt.Label == "" {
		return "", fmt.Errorf("target %s is not addressable", tgt.Display)
	}
	return e.ensureWindow(ctx, tgt.Label)
}

// ensureWindow finds a window by name, creating a detached one when absent.
func (e *Executor) ensureWindow(ctx context.Context, label string) (string, error) {
	name := windowName(label)

	out, err := e.runTmux(ctx, "list-windows", "-a", "-F", "#{session_name}:#{window_index}\t#{window_name}")
	if err == nil {
		for _, line := range strings.Split(out, "\n") {
			pane, winName, ok := strings.Cut(line, "\t")
			if ok && winName == name {
				return pane, nil
			}
		}
	}

	if _, err := e.runTmux(ctx, "new-window", "-d", "-n", name, "-P", "-F", "#{session_name}:#{window_index}"); err == nil {
		// created; address by name from here on
		return "=" + name, nil
	}

	// no server yet: start a fresh session carrying the window
	if _, err := e.runTmux(ctx, "new-session", "-d", "-s", "voxterm", "-n", name); err != nil {
		return "", fmt.Errorf("create window %q: %w", name, err)
	}
	return "voxterm:" + name, nil
}

// windowName flattens a spoken label into a tmux window name.
func windowName(label string) string {
	return strings.ReplaceAll(strings.TrimSpace(strings.ToLower(label)), " ", "-")
}

func runTmuxCommand(ctx context.Context, args ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "tmux", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("tmux %s: %w: %s", args[0], err, detail)
		}
		return "", fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
