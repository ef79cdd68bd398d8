package melody

import (
	"math"
	"slices"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
)

// Note envelope.
const (
	PeakGain     = 0.15
	FloorGain    = 0.0001
	AttackTime   = 50 * time.Millisecond
	overtoneGain = 0.08
)

// Voice is a scheduled note, placed on the timeline in samples.
type Voice struct {
	Freq       float64
	Start, End int64 // sample positions, End exclusive

	attack   int64
	phase    float64
	overtone beep.Streamer
}

// gain returns the envelope at sample s: a linear rise to PeakGain over the
// attack, then an exponential fall reaching FloorGain at End.
func (v *Voice) gain(s int64) float64 {
	t := s - v.Start
	if t < v.attack {
		return PeakGain * float64(t) / float64(v.attack)
	}
	decay := v.End - v.Start - v.attack
	if decay <= 0 {
		return PeakGain
	}
	frac := float64(t-v.attack) / float64(decay)
	return PeakGain * math.Pow(FloorGain/PeakGain, frac)
}

// Timeline is a beep.Streamer that renders scheduled voices against its
// own sample clock. The position only advances when the speaker pulls
// samples, so schedules made relative to Now stay aligned with what is
// actually heard.
type Timeline struct {
	rate beep.SampleRate

	mu      sync.Mutex
	pos     int64
	voices  []*Voice
	scratch [][2]float64
}

// NewTimeline creates an empty timeline at the given sample rate.
func NewTimeline(rate beep.SampleRate) *Timeline {
	return &Timeline{rate: rate}
}

// Rate returns the sample rate.
func (t *Timeline) Rate() beep.SampleRate {
	return t.rate
}

// Now returns the sample position of the next sample to be streamed.
func (t *Timeline) Now() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

// Schedule adds a note sounding from sample start to end.
func (t *Timeline) Schedule(freq float64, start, end int64) {
	if end <= start {
		return
	}
	v := &Voice{
		Freq:   freq,
		Start:  start,
		End:    end,
		attack: min(int64(t.rate.N(AttackTime)), end-start),
	}
	if s, err := generators.SineTone(t.rate, freq*2); err == nil {
		v.overtone = s
	}

	t.mu.Lock()
	t.voices = append(t.voices, v)
	t.mu.Unlock()
}

// Clear drops every scheduled and sounding voice. The next streamed buffer
// is silent.
func (t *Timeline) Clear() {
	t.mu.Lock()
	t.voices = nil
	t.mu.Unlock()
}

// Pending returns the number of voices not yet finished.
func (t *Timeline) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.voices)
}

// Voices returns a copy of the pending voices, ordered by start.
func (t *Timeline) Voices() []Voice {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Voice, len(t.voices))
	for i, v := range t.voices {
		out[i] = *v
	}
	slices.SortFunc(out, func(a, b Voice) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	return out
}

// Stream implements beep.Streamer. It never ends.
func (t *Timeline) Stream(samples [][2]float64) (n int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	n = len(samples)
	clear(samples)
	from, to := t.pos, t.pos+int64(n)

	for _, v := range t.voices {
		lo, hi := max(v.Start, from), min(v.End, to)
		if lo >= hi {
			continue
		}
		k := int(hi - lo)
		var over [][2]float64
		if v.overtone != nil {
			if cap(t.scratch) < k {
				t.scratch = make([][2]float64, k)
			}
			over = t.scratch[:k]
			clear(over)
			v.overtone.Stream(over)
		}

		step := v.Freq / float64(t.rate)
		for j := range k {
			s := lo + int64(j)
			val := 1 - 4*math.Abs(v.phase-0.5) // triangle
			if over != nil {
				val += overtoneGain * over[j][0]
			}
			val *= v.gain(s)
			samples[s-from][0] += val
			samples[s-from][1] += val

			v.phase += step
			v.phase -= math.Floor(v.phase)
		}
	}

	t.pos = to
	t.voices = slices.DeleteFunc(t.voices, func(v *Voice) bool { return v.End <= to })
	return n, true
}

// Err implements beep.Streamer.
func (t *Timeline) Err() error {
	return nil
}
