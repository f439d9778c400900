package listen

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voxterm/internal/recognizer"
)

// dumpUtterance writes one utterance as WAV under the state directory so
// gate tuning can be checked against real recordings.
func dumpUtterance(logger *slog.Logger, pcm []byte, sampleRate int) {
	if len(pcm) == 0 {
		return
	}

	stateDir, err := resolveStateDir()
	if err != nil {
		logger.Warn("audio dump skipped", slog.String("error", err.Error()))
		return
	}
	debugDir := filepath.Join(stateDir, "voxterm", "debug")
	if err := os.MkdirAll(debugDir, 0o700); err != nil {
		logger.Warn("audio dump skipped", slog.String("error", err.Error()))
		return
	}

	timestamp := time.Now().Format("20060102-150405.000")
	path := filepath.Join(debugDir, fmt.Sprintf("utterance-%s.wav", timestamp))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		logger.Warn("audio dump skipped", slog.String("error", err.Error()))
		return
	}
	defer file.Close()

	if err := recognizer.WriteWAV(file, pcm, sampleRate, 1); err != nil {
		logger.Warn("audio dump failed", slog.String("error", err.Error()))
		return
	}
	logger.Debug("audio dump written", slog.String("path", path))
}

func resolveStateDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); xdg != "" {
		return xdg, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory for state: %w", err)
	}
	return filepath.Join(home, ".local", "state"), nil
}
