package config

import (
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.AssistantName) == "" && len(cfg.WakePhrases) == 0 {
		return nil, fmt.Errorf("assistant_name must not be empty when wake_phrases is unset")
	}
	if cfg.SessionTimeout <= 0 {
		return nil, fmt.Errorf("session_timeout_sec must be > 0")
	}
	if cfg.ConfirmationDelay <= 0 {
		return nil, fmt.Errorf("confirmation_delay_ms must be > 0")
	}
	if cfg.CommandTimeout <= 0 {
		return nil, fmt.Errorf("command_timeout_sec must be > 0")
	}
	if cfg.ConfirmationDelay >= cfg.SessionTimeout {
		warnings = append(warnings, Warning{Message: "confirmation_delay_ms is at least session_timeout_sec; commands may never auto-execute"})
	}

	if cfg.Audio.SampleRate <= 0 {
		return nil, fmt.Errorf("audio.sample_rate must be > 0")
	}
	if cfg.Audio.SilenceThreshold < 0 || cfg.Audio.SilenceThreshold >= 1 {
		return nil, fmt.Errorf("audio.silence_threshold must be in [0, 1)")
	}
	if cfg.Audio.SilenceHold <= 0 {
		return nil, fmt.Errorf("audio.silence_hold_ms must be > 0")
	}
	if cfg.Audio.MaxUtterance <= 0 {
		return nil, fmt.Errorf("audio.max_utterance_sec must be > 0")
	}

	if len(cfg.Recognizer.Argv) == 0 {
		return nil, fmt.Errorf("recognizer_cmd must not be empty")
	}
	if !strings.Contains(cfg.Recognizer.Raw, "{file}") {
		warnings = append(warnings, Warning{Message: "recognizer_cmd has no {file} placeholder; audio will be passed on stdin"})
	}

	if cfg.Speech.Enable && len(cfg.Speech.Command.Argv) == 0 {
		return nil, fmt.Errorf("speech.cmd must not be empty when speech.enable=true")
	}

	if strings.TrimSpace(cfg.Terminal.Surface) == "" {
		return nil, fmt.Errorf("terminal.surface must not be empty")
	}
	if cfg.Terminal.RefreshInterval <= 0 {
		return nil, fmt.Errorf("terminal.refresh_sec must be > 0")
	}

	return warnings, nil
}
