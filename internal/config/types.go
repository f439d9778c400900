// Package config resolves, parses, validates, and defaults voxterm configuration.
package config

import (
	"fmt"
	"time"
)

// Config is the fully materialized runtime configuration used by voxterm.
type Config struct {
	AssistantName string
	WakePhrases   []string

	SessionTimeout    time.Duration
	ConfirmationDelay time.Duration
	CommandTimeout    time.Duration

	CatalogPath string

	Audio      AudioConfig
	Recognizer CommandConfig
	Speech     SpeechConfig
	Terminal   TerminalConfig
	Debug      DebugConfig
}

// AudioConfig controls input-source selection and utterance segmentation.
type AudioConfig struct {
	Input            string
	Fallback         string
	SampleRate       int
	SilenceThreshold float64
	SilenceHold      time.Duration
	MaxUtterance     time.Duration
}

// SpeechConfig controls spoken feedback output.
type SpeechConfig struct {
	Enable  bool
	Command CommandConfig
}

// TerminalConfig controls the automation surface and target defaults.
type TerminalConfig struct {
	Surface         string
	DefaultTarget   string
	RefreshInterval time.Duration
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// DebugConfig controls optional debug artifact output.
type DebugConfig struct {
	AudioDump bool
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}

// EffectiveWakePhrases returns the configured wake phrases, deriving the
// standard greeting variants from the assistant name when none are set.
func (c Config) EffectiveWakePhrases() []string {
	if len(c.WakePhrases) > 0 {
		return c.WakePhrases
	}
	name := c.AssistantName
	return []string{
		fmt.Sprintf("hey %s", name),
		fmt.Sprintf("hi %s", name),
		fmt.Sprintf("hello %s", name),
	}
}
