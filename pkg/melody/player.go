package melody

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"fortio.org/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
)

// ErrNoAudio is returned by Init when no audio device could be opened.
var ErrNoAudio = errors.New("melody: audio unavailable")

// State is the playback state.
type State int

const (
	Stopped State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "stopped"
}

// Output is where the timeline is played.
type Output interface {
	Init(rate beep.SampleRate) error
	Play(s beep.Streamer)
	Resume() error
	Close()
}

// SpeakerOutput plays through the beep speaker.
type SpeakerOutput struct {
	Buffer time.Duration
}

func (o *SpeakerOutput) Init(rate beep.SampleRate) error {
	buf := o.Buffer
	if buf <= 0 {
		buf = 100 * time.Millisecond
	}
	return speaker.Init(rate, rate.N(buf))
}

func (o *SpeakerOutput) Play(s beep.Streamer) {
	speaker.Play(s)
}

func (o *SpeakerOutput) Resume() error {
	return speaker.Resume()
}

func (o *SpeakerOutput) Close() {
	speaker.Clear()
	speaker.Close()
}

// Timer is a cancellable deferred call; *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

// Options configures a player.
type Options struct {
	SampleRate beep.SampleRate
	Lead       time.Duration // delay before the first note
	Ahead      time.Duration // how long before a phrase ends the next one is scheduled
	Phrase     []Event
	Volume     float64 // in beep's log2 volume units, 0 is unchanged
	Output     Output

	// AfterFunc arms the phrase continuation; nil uses time.AfterFunc.
	AfterFunc func(d time.Duration, f func()) Timer
}

// DefaultOptions returns 44.1 kHz playback of JingleBells through the
// speaker.
func DefaultOptions() Options {
	return Options{
		SampleRate: 44100,
		Lead:       100 * time.Millisecond,
		Ahead:      500 * time.Millisecond,
		Phrase:     JingleBells,
		Output:     &SpeakerOutput{},
	}
}

// Player loops a phrase. All methods are safe for concurrent use; the
// continuation timer runs on its own goroutine.
type Player struct {
	opts Options
	tl   *Timeline

	mu     sync.Mutex
	state  State
	gen    uint64
	cont   Timer
	ready  bool
	warned bool

	phraseEnd int64 // sample position where the last scheduled phrase ends
}

// New creates a stopped player. Call Init before Start.
func New(opts Options) *Player {
	def := DefaultOptions()
	if opts.SampleRate <= 0 {
		opts.SampleRate = def.SampleRate
	}
	if opts.Lead <= 0 {
		opts.Lead = def.Lead
	}
	if opts.Ahead <= 0 {
		opts.Ahead = def.Ahead
	}
	if len(opts.Phrase) == 0 {
		opts.Phrase = def.Phrase
	}
	if opts.Output == nil {
		opts.Output = def.Output
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	return &Player{opts: opts, tl: NewTimeline(opts.SampleRate)}
}

// Init opens the audio output and starts streaming the (silent) timeline.
// On failure the player stays usable but silent, and Start tries again.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initLocked()
}

func (p *Player) initLocked() error {
	if p.ready {
		return nil
	}
	if err := p.opts.Output.Init(p.opts.SampleRate); err != nil {
		p.warnLocked(err)
		return fmt.Errorf("%w: %w", ErrNoAudio, err)
	}
	var s beep.Streamer = p.tl
	if p.opts.Volume != 0 {
		s = &effects.Volume{Streamer: p.tl, Base: 2, Volume: p.opts.Volume}
	}
	p.opts.Output.Play(s)
	p.ready = true
	return nil
}

func (p *Player) warnLocked(err error) {
	if p.warned {
		return
	}
	p.warned = true
	log.S(log.Warning, "audio unavailable, music disabled", log.Str("err", err.Error()))
}

// Timeline returns the player's timeline.
func (p *Player) Timeline() *Timeline {
	return p.tl
}

// State returns the playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Playing reports whether the player is playing.
func (p *Player) Playing() bool {
	return p.State() == Playing
}

// Start begins looping the phrase after the lead time. Starting a playing
// player does nothing. Without audio the state still changes so callers
// stay consistent, but nothing sounds.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Playing {
		return
	}
	p.state = Playing
	p.gen++
	if !p.ready && p.initLocked() != nil {
		return
	}
	if err := p.opts.Output.Resume(); err != nil {
		log.Debugf("melody: resume: %v", err)
	}
	start := p.tl.Now() + int64(p.tl.rate.N(p.opts.Lead))
	p.schedulePhraseLocked(start, p.gen)
}

// schedulePhraseLocked puts every note of the phrase on the timeline from
// sample start and arms the continuation Ahead of the phrase end, well
// before the speaker buffer reaches it.
// Note offsets are computed from the cumulative time so rounding never
// accumulates across notes or repeats.
func (p *Player) schedulePhraseLocked(start int64, gen uint64) {
	rate := p.tl.rate
	var elapsed time.Duration
	at := start
	for _, e := range p.opts.Phrase {
		elapsed += e.Duration
		end := start + int64(rate.N(elapsed))
		p.tl.Schedule(e.Freq, at, end)
		at = end
	}
	p.phraseEnd = at

	wait := rate.D(int(at-p.tl.Now())) - p.opts.Ahead
	p.cont = p.opts.AfterFunc(max(0, wait), func() { p.continuePhrase(gen, at) })
}

func (p *Player) continuePhrase(gen uint64, end int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Playing || p.gen != gen {
		return
	}
	p.schedulePhraseLocked(end, gen)
}

// PhraseEnd returns the sample position where the last scheduled phrase
// ends.
func (p *Player) PhraseEnd() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phraseEnd
}

// Stop silences every note at once and cancels the continuation.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Player) stopLocked() {
	p.state = Stopped
	p.gen++
	if p.cont != nil {
		p.cont.Stop()
		p.cont = nil
	}
	p.tl.Clear()
}

// Toggle starts or stops playback and reports whether it is now playing.
func (p *Player) Toggle() bool {
	if p.Playing() {
		p.Stop()
		return false
	}
	p.Start()
	return true
}

// Teardown stops playback and closes the output.
func (p *Player) Teardown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	if p.ready {
		p.opts.Output.Close()
		p.ready = false
	}
}
