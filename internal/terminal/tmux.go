package terminal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"
)

const listWindowsFormat = "#{session_name}\t#{window_index}\t#{window_name}\t#{window_active}"

// Discovery supplies terminal descriptor snapshots on demand.
type Discovery interface {
	Snapshot(ctx context.Context) []Descriptor
}

// TmuxDiscovery enumerates tmux windows as terminal destinations.
//
// Snapshots are cached briefly; the session core tolerates staleness, so a
// refresh failure degrades to the previous (possibly empty) snapshot.
type TmuxDiscovery struct {
	logger  *slog.Logger
	aliases *AliasStore
	maxAge  time.Duration

	mu        sync.Mutex
	cached    []Descriptor
	fetchedAt time.Time
}

// NewTmuxDiscovery builds a discovery service with a snapshot cache.
func NewTmuxDiscovery(logger *slog.Logger, aliases *AliasStore, maxAge time.Duration) *TmuxDiscovery {
	if maxAge <= 0 {
		maxAge = 5 * time.Second
	}
	return &TmuxDiscovery{logger: logger, aliases: aliases, maxAge: maxAge}
}

// Snapshot returns the current descriptor set, decorated with aliases.
// An empty result means local-only targeting.
func (d *TmuxDiscovery) Snapshot(ctx context.Context) []Descriptor {
	d.mu.Lock()
	defer d.mu.Unlock()

	if time.Since(d.fetchedAt) > d.maxAge {
		descriptors, err := listWindows(ctx)
		if err != nil {
			if d.logger != nil {
				d.logger.Warn("tmux discovery failed", "error", err.Error())
			}
		} else {
			d.cached = descriptors
		}
		d.fetchedAt = time.Now()
	}

	if d.aliases == nil {
		out := make([]Descriptor, len(d.cached))
		copy(out, d.cached)
		return out
	}
	return d.aliases.Apply(d.cached)
}

// listWindows shells out to tmux and parses one descriptor per window.
func listWindows(ctx context.Context) ([]Descriptor, error) {
	cmd := exec.CommandContext(ctx, "tmux", "list-windows", "-a", "-F", listWindowsFormat)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			// no tmux server running
			return nil, nil
		}
		return nil, fmt.Errorf("tmux list-windows: %w", err)
	}

	var descriptors []Descriptor
	ordinal := 0
	for _, line := range strings.Split(strings.TrimRight(string(output), "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}

		session := fields[0]
		index, err := strconv.Atoi(fields[1])
		if err != nil {
			continue
		}
		name := strings.TrimSpace(fields[2])
		ordinal++

		descriptors = append(descriptors, Descriptor{
			ID:          fmt.Sprintf("tmux:%s:%d", session, index),
			Name:        windowDisplayName(name, ordinal),
			App:         "tmux",
			Ordinal:     ordinal,
			Automatable: true,
		})
	}
	return descriptors, nil
}

// windowDisplayName keeps user-named windows and genericizes shell defaults
// so that "terminal 1", "terminal 2" remain speakable.
func windowDisplayName(name string, ordinal int) string {
	switch name {
	case "", "zsh", "bash", "fish", "sh":
		return fmt.Sprintf("terminal %d", ordinal)
	default:
		return name
	}
}

// PaneTarget converts a descriptor id back into a tmux target argument.
func PaneTarget(id string) (string, bool) {
	rest, ok := strings.CutPrefix(id, "tmux:")
	if !ok {
		return "", false
	}
	return rest, true
}
