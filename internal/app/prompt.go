package app

import (
	"strings"

	"github.com/taigrr/noel/pkg/input"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptMessage
	promptPhoto
)

// Input caps. Photo references may be pasted data URIs.
const (
	maxMessageRunes = 80
	maxPhotoRunes   = 4 << 20
	shownRunes      = 60
)

// prompt is the one-line text entry used for messages and photo paths.
type prompt struct {
	kind promptKind
	text []rune
}

func (p *prompt) active() bool {
	return p.kind != promptNone
}

func (p *prompt) open(kind promptKind) {
	p.kind = kind
	p.text = p.text[:0]
}

func (p *prompt) close() {
	p.kind = promptNone
	p.text = p.text[:0]
}

// key edits the line. On Enter it closes and returns the trimmed text with
// done set; Escape closes without text.
func (p *prompt) key(ev input.Event) (kind promptKind, text string, done bool) {
	switch ev.Key {
	case "enter":
		kind, text = p.kind, strings.TrimSpace(string(p.text))
		p.close()
		return kind, text, true
	case "escape":
		p.close()
	case "backspace":
		if n := len(p.text); n > 0 {
			p.text = p.text[:n-1]
		}
	default:
		limit := maxMessageRunes
		if p.kind == promptPhoto {
			limit = maxPhotoRunes
		}
		for _, r := range ev.Text {
			if r >= ' ' && len(p.text) < limit {
				p.text = append(p.text, r)
			}
		}
	}
	return promptNone, "", false
}

func (p *prompt) line() string {
	label := "message"
	if p.kind == promptPhoto {
		label = "photo path or url"
	}
	text := p.text
	if len(text) > shownRunes {
		text = append([]rune("…"), text[len(text)-shownRunes:]...)
	}
	return label + ": " + string(text) + "_"
}
