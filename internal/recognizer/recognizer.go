// Package recognizer turns captured PCM into text through an external
// speech-to-text command.
package recognizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"voxterm/internal/config"
	"voxterm/internal/transcript"
)

// filePlaceholder marks where the WAV path is substituted in the argv.
const filePlaceholder = "{file}"

// Recognizer shells out to a whisper-style CLI for each utterance.
type Recognizer struct {
	argv       []string
	sampleRate int
	logger     *slog.Logger
	useStdin   bool
}

// New builds a recognizer from the configured command.
func New(cmd config.CommandConfig, sampleRate int, logger *slog.Logger) (*Recognizer, error) {
	if len(cmd.Argv) == 0 {
		return nil, errors.New("recognizer command is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	return &Recognizer{
		argv:       cmd.Argv,
		sampleRate: sampleRate,
		logger:     logger,
		useStdin:   !strings.Contains(cmd.Raw, filePlaceholder),
	}, nil
}

// Transcribe runs the recognizer command over one utterance of PCM.
func (r *Recognizer) Transcribe(ctx context.Context, pcm []byte) (transcript.Transcript, error) {
	started := time.Now()

	argv := r.argv
	var stdin *bytes.Buffer

	if r.useStdin {
		var wav bytes.Buffer
		if err := WriteWAV(&wav, pcm, r.sampleRate, 1); err != nil {
			return transcript.Transcript{}, fmt.Errorf("encode wav: %w", err)
		}
		stdin = &wav
	} else {
		path, cleanup, err := writeTempWAV(pcm, r.sampleRate)
		if err != nil {
			return transcript.Transcript{}, err
		}
		defer cleanup()
		argv = fillPlaceholder(r.argv, path)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if stdin != nil {
		cmd.Stdin = stdin
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return transcript.Transcript{}, fmt.Errorf("recognizer %s: %w: %s", argv[0], err, detail)
		}
		return transcript.Transcript{}, fmt.Errorf("recognizer %s: %w", argv[0], err)
	}

	text := CleanOutput(stdout.String())
	r.logger.Debug("utterance transcribed",
		slog.String("text", text),
		slog.Duration("took", time.Since(started)),
		slog.Int("pcm_bytes", len(pcm)))

	return transcript.Transcript{Text: text, Confidence: 1, CapturedAt: started}, nil
}

// CleanOutput strips recognizer noise annotations and whitespace so only
// spoken words remain.
func CleanOutput(raw string) string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = stripAnnotations(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, " ")
}

// stripAnnotations removes bracketed and parenthesized recognizer markers
// such as [BLANK_AUDIO] or (typing).
func stripAnnotations(line string) string {
	var b strings.Builder
	depth := 0
	for _, r := range line {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			if depth > 0 {
				depth--
				continue
			}
		}
		if depth == 0 && r != ']' && r != ')' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func fillPlaceholder(argv []string, path string) []string {
	out := make([]string, len(argv))
	for i, arg := range argv {
		out[i] = strings.ReplaceAll(arg, filePlaceholder, path)
	}
	return out
}

// writeTempWAV persists one utterance for file-based recognizers.
func writeTempWAV(pcm []byte, sampleRate int) (string, func(), error) {
	file, err := os.CreateTemp("", "voxterm-*.wav")
	if err != nil {
		return "", nil, fmt.Errorf("create temp wav: %w", err)
	}
	cleanup := func() { _ = os.Remove(file.Name()) }

	if err := WriteWAV(file, pcm, sampleRate, 1); err != nil {
		_ = file.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp wav: %w", err)
	}
	if err := file.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp wav: %w", err)
	}
	return file.Name(), cleanup, nil
}
