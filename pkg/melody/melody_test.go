package melody

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
)

type fakeOutput struct {
	initErr error
	inits   int
	played  beep.Streamer
	resumes int
	closed  int
}

func (o *fakeOutput) Init(beep.SampleRate) error { o.inits++; return o.initErr }
func (o *fakeOutput) Play(s beep.Streamer)       { o.played = s }
func (o *fakeOutput) Resume() error              { o.resumes++; return nil }
func (o *fakeOutput) Close()                     { o.closed++ }

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.stopped = true
	return true
}

type timers struct {
	mu  sync.Mutex
	all []*fakeTimer
}

func (ts *timers) afterFunc(d time.Duration, f func()) Timer {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	ts.all = append(ts.all, t)
	return t
}

func (ts *timers) last() *fakeTimer {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.all[len(ts.all)-1]
}

func newTestPlayer(t *testing.T) (*Player, *fakeOutput, *timers) {
	t.Helper()
	out := &fakeOutput{}
	ts := &timers{}
	opts := DefaultOptions()
	opts.Output = out
	opts.AfterFunc = ts.afterFunc
	p := New(opts)
	if err := p.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return p, out, ts
}

func TestPhrase(t *testing.T) {
	if got := len(JingleBells); got != 51 {
		t.Errorf("got %d events, want 51", got)
	}
	if got := Length(JingleBells); got != 16*time.Second {
		t.Errorf("got length %v, want 16s", got)
	}
	for i, e := range JingleBells {
		if e.Freq <= 0 {
			t.Errorf("event %d (%s) has no frequency", i, e.Note)
		}
	}
}

func TestStartSchedulesContiguousPhrase(t *testing.T) {
	p, out, ts := newTestPlayer(t)
	p.Start()

	if p.State() != Playing {
		t.Fatalf("state = %v, want playing", p.State())
	}
	if out.played == nil || out.resumes != 1 {
		t.Errorf("played %v, resumes %d", out.played, out.resumes)
	}

	rate := p.Timeline().Rate()
	voices := p.Timeline().Voices()
	if len(voices) != 51 {
		t.Fatalf("got %d voices, want 51", len(voices))
	}
	lead := int64(rate.N(100 * time.Millisecond))
	if voices[0].Start != lead {
		t.Errorf("first note at %d, want %d", voices[0].Start, lead)
	}
	for i := 1; i < len(voices); i++ {
		if voices[i].Start != voices[i-1].End {
			t.Fatalf("gap between notes %d and %d: %d vs %d", i-1, i, voices[i-1].End, voices[i].Start)
		}
	}
	wantEnd := lead + int64(rate.N(16*time.Second))
	if got := voices[50].End; got != wantEnd {
		t.Errorf("phrase ends at %d, want %d", got, wantEnd)
	}

	if got, want := ts.last().d, 16*time.Second+100*time.Millisecond-500*time.Millisecond; got != want {
		t.Errorf("continuation in %v, want %v", got, want)
	}
}

func TestContinuationJoinsPhrases(t *testing.T) {
	p, _, ts := newTestPlayer(t)
	p.Start()
	firstEnd := p.PhraseEnd()

	ts.last().f()

	voices := p.Timeline().Voices()
	if len(voices) != 102 {
		t.Fatalf("got %d voices, want 102", len(voices))
	}
	if voices[51].Start != firstEnd {
		t.Errorf("second phrase starts at %d, want %d", voices[51].Start, firstEnd)
	}
	if voices[50].End != voices[51].Start {
		t.Errorf("phrases overlap or gap: %d vs %d", voices[50].End, voices[51].Start)
	}
	if got := p.PhraseEnd() - firstEnd; got != firstEnd-voices[0].Start {
		t.Errorf("second phrase length %d, want %d", got, firstEnd-voices[0].Start)
	}
}

func TestStopCancelsEverything(t *testing.T) {
	p, _, ts := newTestPlayer(t)
	p.Start()
	cont := ts.last()

	buf := make([][2]float64, 8000)
	p.Timeline().Stream(buf)

	p.Stop()
	if p.State() != Stopped {
		t.Errorf("state = %v, want stopped", p.State())
	}
	if !cont.stopped {
		t.Error("continuation not cancelled")
	}
	if n := p.Timeline().Pending(); n != 0 {
		t.Errorf("%d voices left after Stop", n)
	}

	p.Timeline().Stream(buf)
	for i, s := range buf {
		if s[0] != 0 || s[1] != 0 {
			t.Fatalf("sample %d = %v after Stop, want silence", i, s)
		}
	}

	// a continuation that fired concurrently with Stop must do nothing
	cont.f()
	if n := p.Timeline().Pending(); n != 0 {
		t.Errorf("stale continuation scheduled %d voices", n)
	}
}

func TestRestartIgnoresOldContinuation(t *testing.T) {
	p, _, ts := newTestPlayer(t)
	p.Start()
	old := ts.last()
	p.Stop()
	p.Start()

	old.f()
	if n := p.Timeline().Pending(); n != 51 {
		t.Errorf("got %d voices, want 51", n)
	}
}

func TestStartIsIdempotent(t *testing.T) {
	p, _, _ := newTestPlayer(t)
	p.Start()
	p.Start()
	if n := p.Timeline().Pending(); n != 51 {
		t.Errorf("got %d voices, want 51", n)
	}
}

func TestToggle(t *testing.T) {
	p, _, _ := newTestPlayer(t)
	if !p.Toggle() || !p.Playing() {
		t.Error("first toggle should start")
	}
	if p.Toggle() || p.Playing() {
		t.Error("second toggle should stop")
	}
}

func TestNoAudioDevice(t *testing.T) {
	out := &fakeOutput{initErr: errors.New("no device")}
	ts := &timers{}
	opts := DefaultOptions()
	opts.Output = out
	opts.AfterFunc = ts.afterFunc
	p := New(opts)

	err := p.Init()
	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("Init error = %v, want ErrNoAudio", err)
	}

	if !p.Toggle() {
		t.Error("toggle should report playing even without audio")
	}
	if n := p.Timeline().Pending(); n != 0 {
		t.Errorf("scheduled %d voices without audio", n)
	}
	if len(ts.all) != 0 {
		t.Error("continuation armed without audio")
	}
	p.Toggle()
	p.Teardown()
	if out.closed != 0 {
		t.Error("closed an output that never opened")
	}
}

func TestStartRetriesAudioDevice(t *testing.T) {
	out := &fakeOutput{initErr: errors.New("no device")}
	ts := &timers{}
	opts := DefaultOptions()
	opts.Output = out
	opts.AfterFunc = ts.afterFunc
	p := New(opts)
	defer p.Teardown()

	if err := p.Init(); err == nil {
		t.Fatal("Init succeeded without a device")
	}
	p.Start()
	if out.inits != 2 {
		t.Errorf("got %d init attempts, want 2", out.inits)
	}
	p.Stop()

	out.initErr = nil
	p.Start()
	if out.inits != 3 || out.played == nil {
		t.Fatalf("inits %d, played %v; want 3 and the timeline", out.inits, out.played)
	}
	if n := p.Timeline().Pending(); n != len(JingleBells) {
		t.Errorf("scheduled %d voices, want %d", n, len(JingleBells))
	}

	p.Stop()
	p.Start()
	if out.inits != 3 {
		t.Errorf("reopened a ready output: %d inits", out.inits)
	}
}

func TestContinuationLeavesBufferHeadroom(t *testing.T) {
	p, _, ts := newTestPlayer(t)
	p.Start()
	rate := p.Timeline().Rate()
	remaining := rate.D(int(p.PhraseEnd()-p.Timeline().Now())) - ts.last().d
	if buf := 100 * time.Millisecond; remaining < 2*buf {
		t.Errorf("next phrase scheduled %v before the boundary, want at least %v", remaining, 2*buf)
	}
}

func TestTeardown(t *testing.T) {
	p, out, _ := newTestPlayer(t)
	p.Start()
	p.Teardown()
	p.Teardown()
	if out.closed != 1 {
		t.Errorf("closed %d times, want 1", out.closed)
	}
	if p.Playing() {
		t.Error("still playing after Teardown")
	}
}

func TestEnvelope(t *testing.T) {
	tl := NewTimeline(44100)
	tl.Schedule(440, 1000, 1000+22050)
	v := tl.Voices()[0]

	attack := int64(tl.Rate().N(AttackTime))
	tests := []struct {
		name string
		at   int64
		want float64
	}{
		{"onset", 1000, 0},
		{"mid attack", 1000 + attack/2, PeakGain * float64(attack/2) / float64(attack)},
		{"peak", 1000 + attack, PeakGain},
		{"end", 1000 + 22050, FloorGain},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.gain(tt.at); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimelineStream(t *testing.T) {
	tl := NewTimeline(44100)
	tl.Schedule(440, 100, 4500)

	buf := make([][2]float64, 1000)
	n, ok := tl.Stream(buf)
	if n != 1000 || !ok {
		t.Fatalf("Stream = %d, %v", n, ok)
	}
	for i := range 100 {
		if buf[i][0] != 0 {
			t.Fatalf("sample %d before note onset is %v", i, buf[i][0])
		}
	}
	peak := 0.0
	for _, s := range buf {
		peak = math.Max(peak, math.Abs(s[0]))
		if s[0] != s[1] {
			t.Fatal("channels differ")
		}
	}
	if peak == 0 || peak > PeakGain*(1+overtoneGain) {
		t.Errorf("peak = %v", peak)
	}

	if tl.Now() != 1000 {
		t.Errorf("Now = %d, want 1000", tl.Now())
	}
	for range 4 {
		tl.Stream(buf)
	}
	if tl.Pending() != 0 {
		t.Errorf("finished voice still pending")
	}
}

func BenchmarkTimelineStream(b *testing.B) {
	tl := NewTimeline(44100)
	buf := make([][2]float64, 4410)
	for b.Loop() {
		if tl.Pending() == 0 {
			now := tl.Now()
			for i := range 4 {
				tl.Schedule(440*float64(i+1), now+int64(i*1000), now+44100)
			}
		}
		tl.Stream(buf)
	}
}
