// Package input defines the backend-neutral input events shared by the
// display backends, the scene and the reel, plus a small listener router.
package input

import (
	"slices"
	"sync"
	"time"
)

// Kind identifies an event type.
type Kind int

const (
	PointerDown Kind = iota
	PointerMove
	PointerUp
	PointerLeave
	DoubleClick
	Key
	Resize
)

func (k Kind) String() string {
	switch k {
	case PointerDown:
		return "pointer-down"
	case PointerMove:
		return "pointer-move"
	case PointerUp:
		return "pointer-up"
	case PointerLeave:
		return "pointer-leave"
	case DoubleClick:
		return "double-click"
	case Key:
		return "key"
	case Resize:
		return "resize"
	}
	return "unknown"
}

// Event is one input event. Pointer coordinates are in framebuffer pixels.
type Event struct {
	Kind Kind
	X, Y float64
	Time time.Time

	Key  string // key name, e.g. "escape", "g", "ctrl+c"
	Text string // printable text produced by the key, if any

	Width, Height int // new framebuffer size for Resize
}

// Handler receives events. Returning true stops propagation.
type Handler func(Event) bool

type entry struct {
	id int
	h  Handler
}

// Router dispatches events to registered handlers, most recently added
// first, so overlays see input before what they cover.
type Router struct {
	mu       sync.Mutex
	handlers []entry
	next     int
}

// Add registers h and returns a function that removes it. Calling the
// remove function more than once is harmless.
func (r *Router) Add(h Handler) (remove func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	id := r.next
	r.handlers = append(r.handlers, entry{id: id, h: h})
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.handlers = slices.DeleteFunc(r.handlers, func(e entry) bool { return e.id == id })
	}
}

// Len returns the number of registered handlers.
func (r *Router) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handlers)
}

// Dispatch delivers ev and reports whether a handler consumed it.
func (r *Router) Dispatch(ev Event) bool {
	r.mu.Lock()
	hs := make([]Handler, len(r.handlers))
	for i, e := range r.handlers {
		hs[len(hs)-1-i] = e.h
	}
	r.mu.Unlock()

	for _, h := range hs {
		if h(ev) {
			return true
		}
	}
	return false
}
