package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"gridpilot/internal/simulation"
)

const sampleRate = beep.SampleRate(44100)

// Chimer gives audible feedback for simulation events.
type Chimer interface {
	Notify(e simulation.Event)
	Close()
}

// Silent is a Chimer that does nothing.
type Silent struct{}

func (Silent) Notify(simulation.Event) {}
func (Silent) Close()                  {}

// tone is one beep of a chime.
type tone struct {
	freq     float64
	duration time.Duration
}

// chimes maps events to the tones played for them.
var chimes = map[simulation.Event][]tone{
	simulation.EventGoalReached:   {{660, 80 * time.Millisecond}, {880, 80 * time.Millisecond}, {1320, 160 * time.Millisecond}},
	simulation.EventBlocked:       {{220, 50 * time.Millisecond}},
	simulation.EventNoPath:        {{330, 120 * time.Millisecond}, {220, 120 * time.Millisecond}},
	simulation.EventPathExhausted: {{440, 120 * time.Millisecond}, {330, 120 * time.Millisecond}},
	simulation.EventAutopilotOn:   {{880, 50 * time.Millisecond}},
}

// Speaker plays chimes on the default audio device.
type Speaker struct{}

// NewSpeaker initializes the audio device.
func NewSpeaker() (*Speaker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("audio initialization failed: %w", err)
	}
	return &Speaker{}, nil
}

// Notify plays the chime of e, if it has one.
func (s *Speaker) Notify(e simulation.Event) {
	stream, err := Chime(e)
	if err != nil || stream == nil {
		return
	}
	speaker.Play(stream)
}

// Close releases the audio device.
func (s *Speaker) Close() {
	speaker.Close()
}

// Chime builds the stream for an event. Events without a chime return nil.
func Chime(e simulation.Event) (beep.Streamer, error) {
	tones, ok := chimes[e]
	if !ok {
		return nil, nil
	}
	parts := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		sine, err := generators.SineTone(sampleRate, t.freq)
		if err != nil {
			return nil, fmt.Errorf("tone %.0fHz: %w", t.freq, err)
		}
		parts = append(parts, beep.Take(sampleRate.N(t.duration), sine))
	}
	return beep.Seq(parts...), nil
}
