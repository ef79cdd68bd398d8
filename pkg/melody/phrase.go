// Package melody sequences a looping synthesized phrase against the audio
// sample clock, so phrase repeats join with no gap and no overlap.
package melody

import "time"

// Frequencies maps note names to Hz.
var Frequencies = map[string]float64{
	"C4": 261.63, "D4": 293.66, "E4": 329.63, "F4": 349.23, "G4": 392.00, "A4": 440.00, "B4": 493.88,
	"C5": 523.25, "D5": 587.33, "E5": 659.25, "F5": 698.46, "G5": 783.99, "A5": 880.00,
}

// Event is one note of a phrase.
type Event struct {
	Note     string
	Freq     float64
	Duration time.Duration
}

func ev(note string, beats float64) Event {
	return Event{Note: note, Freq: Frequencies[note], Duration: time.Duration(beats * float64(time.Second))}
}

// JingleBells is the default phrase: 51 notes, 16 seconds.
var JingleBells = []Event{
	ev("E5", 0.25), ev("E5", 0.25), ev("E5", 0.5),
	ev("E5", 0.25), ev("E5", 0.25), ev("E5", 0.5),
	ev("E5", 0.25), ev("G5", 0.25), ev("C5", 0.25), ev("D5", 0.25), ev("E5", 1.0),
	ev("F5", 0.25), ev("F5", 0.25), ev("F5", 0.375), ev("F5", 0.125),
	ev("F5", 0.25), ev("E5", 0.25), ev("E5", 0.25), ev("E5", 0.125), ev("E5", 0.125),
	ev("E5", 0.25), ev("D5", 0.25), ev("D5", 0.25), ev("E5", 0.25), ev("D5", 0.5), ev("G5", 0.5),

	ev("E5", 0.25), ev("E5", 0.25), ev("E5", 0.5),
	ev("E5", 0.25), ev("E5", 0.25), ev("E5", 0.5),
	ev("E5", 0.25), ev("G5", 0.25), ev("C5", 0.25), ev("D5", 0.25), ev("E5", 1.0),
	ev("F5", 0.25), ev("F5", 0.25), ev("F5", 0.375), ev("F5", 0.125),
	ev("F5", 0.25), ev("E5", 0.25), ev("E5", 0.25), ev("E5", 0.125), ev("E5", 0.125),
	ev("G5", 0.25), ev("G5", 0.25), ev("F5", 0.25), ev("D5", 0.25), ev("C5", 1.0),
}

// Length returns the total duration of a phrase.
func Length(phrase []Event) time.Duration {
	var d time.Duration
	for _, e := range phrase {
		d += e.Duration
	}
	return d
}
