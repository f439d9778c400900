// Package listen runs the always-on capture loop that turns microphone audio
// into transcripts for the session controller.
package listen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"voxterm/internal/audio"
	"voxterm/internal/config"
	"voxterm/internal/transcript"
)

// preRoll is how much audio before speech onset is kept so word starts
// are not clipped by the gate.
const preRoll = 100 * time.Millisecond

// minUtterance filters out clicks and pops too short to carry speech.
const minUtterance = 300 * time.Millisecond

// Sink receives finished transcripts, in utterance order.
type Sink interface {
	Submit(t transcript.Transcript)
}

// Recognizer converts one utterance of PCM into a transcript.
type Recognizer interface {
	Transcribe(ctx context.Context, pcm []byte) (transcript.Transcript, error)
}

// source is the subset of audio.Capture the loop consumes.
type source interface {
	Chunks() <-chan []byte
	Stop() error
}

// Listener owns one capture stream and hands utterances to the recognizer.
type Listener struct {
	cfg    config.Config
	logger *slog.Logger
	rec    Recognizer
	sink   Sink

	startCapture func(ctx context.Context) (source, string, error)
	dumpAudio    func(pcm []byte)
}

// NewListener wires the capture loop against live Pulse devices.
func NewListener(cfg config.Config, logger *slog.Logger, rec Recognizer, sink Sink) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Listener{cfg: cfg, logger: logger, rec: rec, sink: sink}
	l.startCapture = l.startPulseCapture
	if cfg.Debug.AudioDump {
		l.dumpAudio = func(pcm []byte) { dumpUtterance(logger, pcm, cfg.Audio.SampleRate) }
	}
	return l
}

func (l *Listener) startPulseCapture(ctx context.Context) (source, string, error) {
	selection, err := audio.SelectDevice(ctx, l.cfg.Audio.Input, l.cfg.Audio.Fallback)
	if err != nil {
		return nil, "", err
	}
	if selection.Warning != "" {
		l.logger.Warn(selection.Warning)
	}

	capture, err := audio.StartCapture(ctx, selection.Device, l.cfg.Audio.SampleRate)
	if err != nil {
		return nil, "", err
	}

	device := selection.Device.ID
	if selection.Device.Description != "" {
		device = selection.Device.Description
	}
	return capture, device, nil
}

// Run captures until ctx is cancelled. Recognition happens on a separate
// goroutine so a slow model never backs up the audio stream.
func (l *Listener) Run(ctx context.Context) error {
	src, device, err := l.startCapture(ctx)
	if err != nil {
		return fmt.Errorf("start capture: %w", err)
	}
	defer src.Stop()

	l.logger.Info("listening", slog.String("device", device),
		slog.Int("sample_rate", l.cfg.Audio.SampleRate))

	utterances := make(chan []byte, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for pcm := range utterances {
			l.recognize(ctx, pcm)
		}
	}()
	defer func() {
		close(utterances)
		<-done
	}()

	seg := newSegmenter(l.cfg.Audio)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-src.Chunks():
			if !ok {
				return fmt.Errorf("audio stream closed")
			}
			if pcm := seg.feed(chunk); pcm != nil {
				select {
				case utterances <- pcm:
				default:
					l.logger.Warn("recognition backlog full, dropping utterance",
						slog.Int("bytes", len(pcm)))
				}
			}
		}
	}
}

func (l *Listener) recognize(ctx context.Context, pcm []byte) {
	if l.dumpAudio != nil {
		l.dumpAudio(pcm)
	}

	t, err := l.rec.Transcribe(ctx, pcm)
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Error("transcription failed", slog.String("error", err.Error()))
		}
		return
	}
	if t.Text == "" {
		return
	}

	l.logger.Debug("transcript ready",
		slog.String("text", t.Text),
		slog.Int("bytes", len(pcm)))
	l.sink.Submit(t)
}

// segmenter slices the chunk stream into utterances using an RMS gate.
type segmenter struct {
	threshold  float64
	sampleRate int

	holdBudget time.Duration
	maxBudget  time.Duration

	speaking bool
	silence  time.Duration
	elapsed  time.Duration

	buf     []byte
	preroll [][]byte
}

func newSegmenter(cfg config.AudioConfig) *segmenter {
	return &segmenter{
		threshold:  cfg.SilenceThreshold,
		sampleRate: cfg.SampleRate,
		holdBudget: cfg.SilenceHold,
		maxBudget:  cfg.MaxUtterance,
	}
}

// feed consumes one chunk and returns a completed utterance or nil.
func (s *segmenter) feed(chunk []byte) []byte {
	if len(chunk) == 0 {
		return nil
	}
	dur := pcmDuration(len(chunk), s.sampleRate)
	loud := audio.RMS(chunk) >= s.threshold

	if !s.speaking {
		if !loud {
			s.pushPreroll(chunk)
			return nil
		}
		s.speaking = true
		s.silence = 0
		s.elapsed = 0
		for _, c := range s.preroll {
			s.buf = append(s.buf, c...)
			s.elapsed += pcmDuration(len(c), s.sampleRate)
		}
		s.preroll = nil
	}

	s.buf = append(s.buf, chunk...)
	s.elapsed += dur

	if loud {
		s.silence = 0
	} else {
		s.silence += dur
	}

	if s.silence >= s.holdBudget || s.elapsed >= s.maxBudget {
		return s.finish()
	}
	return nil
}

func (s *segmenter) finish() []byte {
	// trailing silence counts toward elapsed but not toward speech
	spoken := s.elapsed - s.silence

	pcm := s.buf
	s.buf = nil
	s.speaking = false
	s.silence = 0
	s.elapsed = 0
	if spoken < minUtterance {
		return nil
	}
	return pcm
}

func (s *segmenter) pushPreroll(chunk []byte) {
	c := make([]byte, len(chunk))
	copy(c, chunk)
	s.preroll = append(s.preroll, c)

	var kept time.Duration
	for i := len(s.preroll) - 1; i >= 0; i-- {
		kept += pcmDuration(len(s.preroll[i]), s.sampleRate)
		if kept > preRoll {
			s.preroll = s.preroll[i+1:]
			return
		}
	}
}

func pcmDuration(bytes int, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	samples := bytes / 2
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
