package app

import (
	"math/rand/v2"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/taigrr/noel/internal/config"
	"github.com/taigrr/noel/pkg/render"
)

// Message is one floating greeting. It crosses the screen right to left
// over its lifetime and is dropped when the lifetime ends.
type Message struct {
	Text  string
	Top   float64 // fraction of screen height
	Age   time.Duration
	Life  time.Duration
	Color render.Color
}

// Progress is how far the message has travelled, from 0 to 1.
func (m Message) Progress() float64 {
	if m.Life <= 0 {
		return 1
	}
	return min(1, float64(m.Age)/float64(m.Life))
}

var messageColor = func() render.Color {
	r, g, b := colorful.Hsl(190, 1, 0.85).RGB255()
	return render.RGB(r, g, b)
}()

// Messages spawns preset greetings on a fixed interval and keeps user
// messages until they expire.
type Messages struct {
	cfg   config.MessagesConfig
	rng   *rand.Rand
	clock time.Duration // since the last spawn tick
	items []Message
}

func NewMessages(cfg config.MessagesConfig, rng *rand.Rand) *Messages {
	return &Messages{cfg: cfg, rng: rng}
}

// Add starts a message with a random row and lifetime.
func (m *Messages) Add(text string) {
	life := m.cfg.MinLifetime
	if spread := m.cfg.MaxLifetime - m.cfg.MinLifetime; spread > 0 {
		life += time.Duration(m.rng.Int64N(int64(spread)))
	}
	m.items = append(m.items, Message{
		Text:  text,
		Top:   0.15 + m.rng.Float64()*0.6,
		Life:  life,
		Color: messageColor,
	})
}

// Update ages every message by dt and drops expired ones. The spawn clock
// always runs; a preset is added on each interval tick only when spawn is
// true.
func (m *Messages) Update(dt time.Duration, spawn bool) {
	kept := m.items[:0]
	for _, msg := range m.items {
		msg.Age += dt
		if msg.Age < msg.Life {
			kept = append(kept, msg)
		}
	}
	clear(m.items[len(kept):])
	m.items = kept

	if m.cfg.Interval <= 0 {
		return
	}
	m.clock += dt
	for m.clock >= m.cfg.Interval {
		m.clock -= m.cfg.Interval
		if spawn && len(m.cfg.Presets) > 0 {
			m.Add(m.cfg.Presets[m.rng.IntN(len(m.cfg.Presets))])
		}
	}
}

// Items returns the live messages. Callers must not modify them.
func (m *Messages) Items() []Message {
	return m.items
}

// Labels lays the messages out on a width×height framebuffer, faded by
// alpha.
func (m *Messages) Labels(width, height int, alpha float64) []render.Label {
	if alpha <= 0 {
		return nil
	}
	labels := make([]render.Label, 0, len(m.items))
	for _, msg := range m.items {
		tw := render.TextWidth(msg.Text)
		x := float64(width) - msg.Progress()*float64(width+tw)
		labels = append(labels, render.Label{
			X:     int(x),
			Y:     int(msg.Top * float64(height)),
			Text:  msg.Text,
			Color: render.MultiplyColor(msg.Color, alpha),
		})
	}
	return labels
}
