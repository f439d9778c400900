package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"voxterm/internal/jsonc"
)

// Parse reads JSONC configuration content over the supplied base values.
func Parse(content string, base Config) (Config, []Warning, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		validatedWarnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, validatedWarnings, nil
	}

	normalized, err := jsonc.Normalize(content)
	if err != nil {
		return Config{}, nil, err
	}
	if !strings.HasPrefix(strings.TrimSpace(normalized), "{") {
		return Config{}, nil, errors.New("config must be a JSONC object")
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, jsonc.WrapDecodeError(normalized, err)
	}
	if err := jsonc.EnsureSingleValue(decoder); err != nil {
		return Config{}, nil, jsonc.WrapDecodeError(normalized, err)
	}

	cfg := base
	warnings, err := payload.applyTo(&cfg)
	if err != nil {
		return Config{}, nil, err
	}

	validatedWarnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	warnings = append(warnings, validatedWarnings...)
	return cfg, warnings, nil
}

type jsoncConfig struct {
	AssistantName *string          `json:"assistant_name"`
	WakePhrases   *jsoncStringList `json:"wake_phrases"`

	SessionTimeoutSec   *float64 `json:"session_timeout_sec"`
	ConfirmationDelayMS *int     `json:"confirmation_delay_ms"`
	CommandTimeoutSec   *float64 `json:"command_timeout_sec"`

	CatalogPath *string `json:"catalog_path"`

	Audio         *jsoncAudio    `json:"audio"`
	RecognizerCmd *string        `json:"recognizer_cmd"`
	Speech        *jsoncSpeech   `json:"speech"`
	Terminal      *jsoncTerminal `json:"terminal"`
	Debug         *jsoncDebug    `json:"debug"`
}

type jsoncAudio struct {
	Input            *string  `json:"input"`
	Fallback         *string  `json:"fallback"`
	SampleRate       *int     `json:"sample_rate"`
	SilenceThreshold *float64 `json:"silence_threshold"`
	SilenceHoldMS    *int     `json:"silence_hold_ms"`
	MaxUtteranceSec  *float64 `json:"max_utterance_sec"`
}

type jsoncSpeech struct {
	Enable *bool   `json:"enable"`
	Cmd    *string `json:"cmd"`
}

type jsoncTerminal struct {
	Surface       *string  `json:"surface"`
	DefaultTarget *string  `json:"default_target"`
	RefreshSec    *float64 `json:"refresh_sec"`
}

type jsoncDebug struct {
	AudioDump *bool `json:"audio_dump"`
}

type jsoncStringList []string

func (l *jsoncStringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		parts := strings.Split(single, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			out = append(out, part)
		}
		*l = out
		return nil
	}

	return fmt.Errorf("expected string array or comma-delimited string")
}

func (payload jsoncConfig) applyTo(cfg *Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if payload.AssistantName != nil {
		cfg.AssistantName = strings.ToLower(strings.TrimSpace(*payload.AssistantName))
	}
	if payload.WakePhrases != nil {
		cfg.WakePhrases = cfg.WakePhrases[:0]
		for _, p := range *payload.WakePhrases {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			cfg.WakePhrases = append(cfg.WakePhrases, p)
		}
	}

	if payload.SessionTimeoutSec != nil {
		cfg.SessionTimeout = secondsToDuration(*payload.SessionTimeoutSec)
	}
	if payload.ConfirmationDelayMS != nil {
		cfg.ConfirmationDelay = time.Duration(*payload.ConfirmationDelayMS) * time.Millisecond
	}
	if payload.CommandTimeoutSec != nil {
		cfg.CommandTimeout = secondsToDuration(*payload.CommandTimeoutSec)
	}
	if payload.CatalogPath != nil {
		cfg.CatalogPath = strings.TrimSpace(*payload.CatalogPath)
	}

	if payload.Audio != nil {
		if payload.Audio.Input != nil {
			cfg.Audio.Input = *payload.Audio.Input
		}
		if payload.Audio.Fallback != nil {
			cfg.Audio.Fallback = *payload.Audio.Fallback
		}
		if payload.Audio.SampleRate != nil {
			cfg.Audio.SampleRate = *payload.Audio.SampleRate
		}
		if payload.Audio.SilenceThreshold != nil {
			cfg.Audio.SilenceThreshold = *payload.Audio.SilenceThreshold
		}
		if payload.Audio.SilenceHoldMS != nil {
			cfg.Audio.SilenceHold = time.Duration(*payload.Audio.SilenceHoldMS) * time.Millisecond
		}
		if payload.Audio.MaxUtteranceSec != nil {
			cfg.Audio.MaxUtterance = secondsToDuration(*payload.Audio.MaxUtteranceSec)
		}
	}

	if payload.RecognizerCmd != nil {
		raw := *payload.RecognizerCmd
		argv, err := parseArgv(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid recognizer_cmd: %w", err)
		}
		cfg.Recognizer = CommandConfig{Raw: raw, Argv: argv}
	}

	if payload.Speech != nil {
		if payload.Speech.Enable != nil {
			cfg.Speech.Enable = *payload.Speech.Enable
		}
		if payload.Speech.Cmd != nil {
			raw := *payload.Speech.Cmd
			argv, err := parseArgv(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid speech.cmd: %w", err)
			}
			cfg.Speech.Command = CommandConfig{Raw: raw, Argv: argv}
		}
	}

	if payload.Terminal != nil {
		if payload.Terminal.Surface != nil {
			cfg.Terminal.Surface = strings.ToLower(strings.TrimSpace(*payload.Terminal.Surface))
		}
		if payload.Terminal.DefaultTarget != nil {
			cfg.Terminal.DefaultTarget = strings.TrimSpace(*payload.Terminal.DefaultTarget)
		}
		if payload.Terminal.RefreshSec != nil {
			cfg.Terminal.RefreshInterval = secondsToDuration(*payload.Terminal.RefreshSec)
		}
	}

	if payload.Debug != nil && payload.Debug.AudioDump != nil {
		cfg.Debug.AudioDump = *payload.Debug.AudioDump
	}

	return warnings, nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
