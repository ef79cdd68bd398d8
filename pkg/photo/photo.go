// Package photo manages the user's photos: immutable list snapshots shared
// by the scene and the reel, image decoding from the supported reference
// forms, asynchronous texture loading and directory watching.
package photo

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// MaxPhotos is the most photos a list will hold.
const MaxPhotos = 9

// ErrListFull is returned when appending to a list that holds MaxPhotos.
var ErrListFull = errors.New("photo: list is full")

// Photo is an immutable reference to one image.
type Photo struct {
	ID  string
	URL string // file path, file:// URL, http(s) URL or data: URI
}

var idSeq atomic.Uint64

// New creates a photo with a fresh unique ID.
func New(url string) Photo {
	return Photo{
		ID:  fmt.Sprintf("%d-%d", time.Now().UnixMilli(), idSeq.Add(1)),
		URL: url,
	}
}

var versionSeq atomic.Uint64

// List is an immutable, ordered snapshot of photos. Every constructed list
// carries a unique Version; consumers rebuild derived state when the version
// they hold differs. The zero List is empty with version 0.
type List struct {
	items   []Photo
	version uint64
}

// NewList creates a list, keeping at most MaxPhotos entries.
func NewList(photos ...Photo) List {
	n := min(len(photos), MaxPhotos)
	items := make([]Photo, n)
	copy(items, photos[:n])
	return List{items: items, version: versionSeq.Add(1)}
}

// Append returns a new list with p added at the end.
func (l List) Append(p Photo) (List, error) {
	if l.Full() {
		return l, ErrListFull
	}
	items := make([]Photo, len(l.items), len(l.items)+1)
	copy(items, l.items)
	return NewList(append(items, p)...), nil
}

// Len returns the number of photos.
func (l List) Len() int {
	return len(l.items)
}

// Full reports whether no more photos can be added.
func (l List) Full() bool {
	return len(l.items) >= MaxPhotos
}

// At returns the photo at index i.
func (l List) At(i int) Photo {
	return l.items[i]
}

// All returns a copy of the photos.
func (l List) All() []Photo {
	out := make([]Photo, len(l.items))
	copy(out, l.items)
	return out
}

// Version identifies this snapshot.
func (l List) Version() uint64 {
	return l.version
}
