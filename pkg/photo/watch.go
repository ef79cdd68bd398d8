package photo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce collapses bursts of events from a single save.
const debounce = 100 * time.Millisecond

// Scan lists the image files in dir, sorted by name, as a photo list. Photo
// IDs are the file paths so rescans keep them stable.
func Scan(dir string) (List, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return List{}, fmt.Errorf("photo: scan %s: %w", dir, err)
	}
	var photos []Photo
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		photos = append(photos, Photo{ID: path, URL: path})
	}
	sort.Slice(photos, func(i, j int) bool { return photos[i].URL < photos[j].URL })
	return NewList(photos...), nil
}

// Watcher rescans a directory whenever an image in it changes and
// publishes the new list on Lists.
type Watcher struct {
	dir     string
	watcher *fsnotify.Watcher

	Lists  chan List
	Errors chan error

	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// NewWatcher starts watching dir.
func NewWatcher(dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("photo: watch: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("photo: watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		watcher: fw,
		Lists:   make(chan List, 1),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher. Lists and Errors are closed once the watch
// goroutine exits.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	defer close(w.Lists)
	defer close(w.Errors)

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !IsImageFile(event.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			list, err := Scan(w.dir)
			if err != nil {
				w.sendErr(err)
				continue
			}
			w.sendList(list)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.sendErr(err)
		case <-w.closeCh:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// sendList replaces any list the consumer has not picked up yet.
func (w *Watcher) sendList(l List) {
	select {
	case <-w.Lists:
	default:
	}
	select {
	case w.Lists <- l:
	case <-w.closeCh:
	}
}

func (w *Watcher) sendErr(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}
