package config

import "time"

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	recognizer := "whisper-cli -m /usr/share/whisper/ggml-base.en.bin -nt -np -f {file}"
	speech := "espeak-ng"

	return Config{
		AssistantName:     "jarvis",
		SessionTimeout:    30 * time.Second,
		ConfirmationDelay: 2 * time.Second,
		CommandTimeout:    30 * time.Second,
		Audio: AudioConfig{
			Input:            "default",
			Fallback:         "default",
			SampleRate:       16000,
			SilenceThreshold: 0.01,
			SilenceHold:      900 * time.Millisecond,
			MaxUtterance:     10 * time.Second,
		},
		Recognizer: CommandConfig{Raw: recognizer, Argv: mustParseArgv(recognizer)},
		Speech: SpeechConfig{
			Enable:  true,
			Command: CommandConfig{Raw: speech, Argv: mustParseArgv(speech)},
		},
		Terminal: TerminalConfig{
			Surface:         "tmux",
			DefaultTarget:   "local",
			RefreshInterval: 5 * time.Second,
		},
		Debug: DebugConfig{},
	}
}
