// Package speech renders feedback strings as audio through an external TTS command.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"voxterm/internal/config"
)

const utteranceTimeout = 10 * time.Second

// Synthesizer speaks feedback lines one at a time, fire-and-forget. Errors
// are logged, never surfaced; the session owes no acknowledgement upstream.
type Synthesizer struct {
	enabled bool
	argv    []string
	logger  *slog.Logger

	// serializes utterances so overlapping feedback stays intelligible
	mu sync.Mutex
}

// New builds a synthesizer from the configured speech command.
func New(cfg config.SpeechConfig, logger *slog.Logger) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Synthesizer{
		enabled: cfg.Enable && len(cfg.Command.Argv) > 0,
		argv:    cfg.Command.Argv,
		logger:  logger,
	}
}

// Speak queues one feedback line. It never blocks the caller.
func (s *Synthesizer) Speak(_ context.Context, text string) {
	if !s.enabled || text == "" {
		return
	}
	go s.speak(text)
}

func (s *Synthesizer) speak(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), utteranceTimeout)
	defer cancel()

	if err := runWithStdin(ctx, s.argv, text); err != nil {
		s.logger.Warn("speech output failed", slog.String("error", err.Error()))
	}
}

// runWithStdin executes argv with text written to stdin.
func runWithStdin(ctx context.Context, argv []string, input string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open stdin for %s: %w", argv[0], err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start command %s: %w", argv[0], err)
	}

	if input != "" {
		if _, err := stdin.Write([]byte(input)); err != nil {
			_ = stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write stdin for %s: %w", argv[0], err)
		}
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("wait for %s: %w", argv[0], err)
	}
	return nil
}
