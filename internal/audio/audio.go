// Package audio plays the notes the user strikes.
package audio

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/sinshu/go-meltysynth/meltysynth"

	"github.com/verte-zerg/tuiano/internal/clock"
)

const (
	DefaultSampleRate = 44100
	DefaultVelocity   = 100
	DefaultHold       = 400 * time.Millisecond

	// Smaller buffers respond faster and cost more CPU.
	bufferLatency = 20 * time.Millisecond
	pianoChannel  = 0
)

// Player sounds MIDI notes.
type Player interface {
	NoteOn(midi, velocity int)
	NoteOff(midi int)
	Close() error
}

type renderer interface {
	NoteOn(channel, key, velocity int32)
	NoteOff(channel, key int32)
	Render(left, right []float32)
}

// SynthStreamer is a beep.Streamer that renders the synthesizer on demand.
type SynthStreamer struct {
	mu    sync.Mutex
	synth renderer
	left  []float32
	right []float32
}

func newSynthStreamer(r renderer) *SynthStreamer {
	return &SynthStreamer{synth: r}
}

// Stream implements beep.Streamer.
func (s *SynthStreamer) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cap(s.left) < len(samples) {
		s.left = make([]float32, len(samples))
		s.right = make([]float32, len(samples))
	}
	left, right := s.left[:len(samples)], s.right[:len(samples)]
	s.synth.Render(left, right)
	for i := range samples {
		samples[i][0] = float64(left[i])
		samples[i][1] = float64(right[i])
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (s *SynthStreamer) Err() error {
	return nil
}

func (s *SynthStreamer) noteOn(midi, velocity int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synth.NoteOn(pianoChannel, int32(midi), int32(velocity))
}

func (s *SynthStreamer) noteOff(midi int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synth.NoteOff(pianoChannel, int32(midi))
}

// SynthPlayer plays a SoundFont through the system speaker.
type SynthPlayer struct {
	streamer *SynthStreamer
}

// NewSynthPlayer loads the SoundFont at path and starts streaming to the
// speaker.
func NewSynthPlayer(path string, sampleRate int) (*SynthPlayer, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open soundfont: %w", err)
	}
	soundFont, err := meltysynth.NewSoundFont(f)
	if cerr := f.Close(); cerr != nil {
		_ = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load soundfont: %w", err)
	}

	settings := meltysynth.NewSynthesizerSettings(int32(sampleRate))
	synth, err := meltysynth.NewSynthesizer(soundFont, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(bufferLatency)); err != nil {
		return nil, fmt.Errorf("failed to init speaker: %w", err)
	}
	streamer := newSynthStreamer(synth)
	speaker.Play(streamer)
	return &SynthPlayer{streamer: streamer}, nil
}

func (p *SynthPlayer) NoteOn(midi, velocity int) {
	p.streamer.noteOn(midi, velocity)
}

func (p *SynthPlayer) NoteOff(midi int) {
	p.streamer.noteOff(midi)
}

func (p *SynthPlayer) Close() error {
	speaker.Clear()
	return nil
}

type nopPlayer struct{}

// Nop returns a silent Player.
func Nop() Player {
	return nopPlayer{}
}

func (nopPlayer) NoteOn(int, int) {}
func (nopPlayer) NoteOff(int)     {}
func (nopPlayer) Close() error    { return nil }

// Strike plays midi and releases it after hold. Terminals report no key
// release, so the note-off is scheduled.
func Strike(p Player, clk clock.Clock, midi, velocity int, hold time.Duration) clock.Timer {
	if velocity <= 0 {
		velocity = DefaultVelocity
	}
	if hold <= 0 {
		hold = DefaultHold
	}
	p.NoteOn(midi, velocity)
	return clk.AfterFunc(hold, func() { p.NoteOff(midi) })
}
