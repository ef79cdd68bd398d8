// Package app is the host around the scene: it owns the photo list, the
// gallery and music toggles, routes input to the mounted components and
// draws the text overlays. It implements display.Game.
package app

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"fortio.org/log"

	"github.com/taigrr/noel/internal/config"
	"github.com/taigrr/noel/pkg/input"
	"github.com/taigrr/noel/pkg/melody"
	"github.com/taigrr/noel/pkg/photo"
	"github.com/taigrr/noel/pkg/reel"
	"github.com/taigrr/noel/pkg/render"
	"github.com/taigrr/noel/pkg/scene"
)

// Overlay text.
const (
	TitleText    = "Merry Christmas"
	SubtitleText = "圣 诞 快 乐"
)

var (
	background    = render.Hex(0x000411)
	titleColor    = render.Hex(0x00e1ff)
	subtitleColor = render.Hex(0x88ccff)
	hintColor     = render.Hex(0x67e8f9)
	hudColor      = render.Hex(0xaaaaaa)
	noticeColor   = render.Hex(0xffcc00)
)

const noticeSeconds = 3.0

// Options wires an App.
type Options struct {
	Config        config.Config
	Width, Height int // framebuffer pixels

	Photos  photo.List
	Updates <-chan photo.List // new lists from a photo.Watcher; may be nil
	Errors  <-chan error

	// Pinned photos precede every list received on Updates.
	Pinned []photo.Photo

	Scene  scene.Options
	Player *melody.Player // nil disables music

	ScreenshotDir string
	Now           func() time.Time
}

// App implements display.Game. Every method runs on the frame goroutine.
type App struct {
	opts Options
	cfg  config.Config

	router *input.Router
	engine *scene.Engine
	viewer *reel.Viewer
	player *melody.Player

	photos      photo.List
	pinned      []photo.Photo
	galleryOpen bool
	width       int
	height      int

	messages *Messages
	overlay  fader
	prompt   prompt

	showHUD   bool
	fps       float64
	notice    string
	noticeTTL float64
	shotDue   bool
	quit      bool

	removeHandler func()
}

// New builds the scene and registers the host's own input handler beneath
// the scene's.
func New(opts Options) *App {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	seed := opts.Config.Seed
	if seed == 0 {
		seed = uint64(opts.Now().UnixNano())
	}

	a := &App{
		opts:     opts,
		cfg:      opts.Config,
		router:   &input.Router{},
		player:   opts.Player,
		pinned:   slices.Clone(opts.Pinned),
		width:    opts.Width,
		height:   opts.Height,
		messages: NewMessages(opts.Config.Messages, rand.New(rand.NewPCG(seed, 1))),
		overlay:  newFader(1),
	}
	a.engine = scene.New(opts.Scene, opts.Width, opts.Height)
	a.removeHandler = a.router.Add(a.handle)
	a.engine.Attach(a.router)
	a.SetPhotos(opts.Photos)

	if a.cfg.Music.Autoplay && a.player != nil {
		a.player.Start()
	}
	return a
}

// Router returns the listener registry components attach to.
func (a *App) Router() *input.Router {
	return a.router
}

func (a *App) Engine() *scene.Engine {
	return a.engine
}

// Viewer returns the mounted reel viewer, or nil while the gallery is
// closed.
func (a *App) Viewer() *reel.Viewer {
	return a.viewer
}

func (a *App) Photos() photo.List {
	return a.photos
}

func (a *App) GalleryOpen() bool {
	return a.galleryOpen
}

func (a *App) MusicPlaying() bool {
	return a.player != nil && a.player.Playing()
}

// Messages returns the floating message overlay.
func (a *App) Messages() *Messages {
	return a.messages
}

// Notice returns the transient status line.
func (a *App) Notice() string {
	return a.notice
}

// HandleEvent routes ev. An open prompt takes every key; otherwise events go
// through the router newest listener first, ending at the host.
func (a *App) HandleEvent(ev input.Event) {
	if ev.Kind == input.Resize {
		a.resize(ev.Width, ev.Height)
		return
	}
	if ev.Kind == input.Key && a.prompt.active() {
		a.promptKey(ev)
		return
	}
	a.router.Dispatch(ev)
}

// handle is the bottom listener: whatever no component consumed.
func (a *App) handle(ev input.Event) bool {
	switch ev.Kind {
	case input.DoubleClick:
		return a.OpenGallery()
	case input.Key:
		return a.key(ev.Key)
	}
	return false
}

func (a *App) key(k string) bool {
	switch strings.ToLower(k) {
	case "g":
		a.OpenGallery()
	case "escape":
		if a.galleryOpen {
			a.CloseGallery()
		} else {
			a.quit = true
		}
	case "m":
		a.ToggleMusic()
	case "i":
		if !a.galleryOpen {
			a.prompt.open(promptMessage)
		}
	case "o":
		if !a.galleryOpen {
			a.prompt.open(promptPhoto)
		}
	case "?":
		a.showHUD = !a.showHUD
	case "p":
		a.shotDue = true
	case "q", "ctrl+c":
		a.quit = true
	default:
		return false
	}
	return true
}

func (a *App) promptKey(ev input.Event) {
	if ev.Key == "ctrl+c" {
		a.quit = true
		return
	}
	kind, text, done := a.prompt.key(ev)
	if !done || text == "" {
		return
	}
	switch kind {
	case promptMessage:
		a.messages.Add(text)
	case promptPhoto:
		err := a.AddPhoto(text)
		switch {
		case errors.Is(err, photo.ErrListFull):
			a.setNotice(fmt.Sprintf("photo limit is %d", photo.MaxPhotos))
		case err != nil:
			a.setNotice(err.Error())
		}
	}
}

// OpenGallery shatters the tree and mounts the reel viewer. It does nothing
// without photos or when the gallery is already open.
func (a *App) OpenGallery() bool {
	if a.galleryOpen || a.photos.Len() == 0 {
		return false
	}
	a.galleryOpen = true
	a.prompt.close()
	a.engine.ClearPointer()

	opts := reel.DefaultOptions()
	opts.Sensitivity = a.cfg.Reel.Sensitivity
	opts.TapThreshold = a.cfg.Reel.TapThreshold
	opts.FPS = a.cfg.FPS
	opts.Decode = a.opts.Scene.Decode
	opts.OnClose = a.CloseGallery
	a.viewer = reel.New(a.photos, a.width, a.height, opts)
	a.viewer.Attach(a.router)

	a.overlay.Set(0)
	log.Debugf("gallery open with %d photos", a.photos.Len())
	return true
}

// CloseGallery unmounts the reel viewer and lets the tree reassemble.
func (a *App) CloseGallery() {
	if !a.galleryOpen {
		return
	}
	a.galleryOpen = false
	a.viewer.Close()
	a.viewer = nil
	a.overlay.Set(1)
	log.Debugf("gallery closed")
}

// SetPhotos hands a new list to the scene and, when mounted, the viewer.
// An empty list closes the gallery.
func (a *App) SetPhotos(list photo.List) {
	a.photos = list
	a.engine.SetPhotos(list)
	if a.viewer != nil {
		a.viewer.SetPhotos(list)
	}
	if list.Len() == 0 {
		a.CloseGallery()
	}
}

// AddPhoto appends a photo reference to the list.
func (a *App) AddPhoto(url string) error {
	list, err := a.photos.Append(photo.New(url))
	if err != nil {
		return fmt.Errorf("add photo: %w", err)
	}
	a.pinned = append(a.pinned, list.At(list.Len()-1))
	a.SetPhotos(list)
	a.setNotice(fmt.Sprintf("added photo %d/%d", list.Len(), photo.MaxPhotos))
	return nil
}

// ToggleMusic starts or stops the melody.
func (a *App) ToggleMusic() {
	if a.player == nil {
		a.setNotice("music unavailable")
		return
	}
	if a.player.Toggle() {
		log.Debugf("music on")
	} else {
		log.Debugf("music off")
	}
}

func (a *App) setNotice(s string) {
	a.notice = s
	a.noticeTTL = noticeSeconds
}

func (a *App) resize(width, height int) {
	a.width, a.height = max(1, width), max(1, height)
	a.engine.Resize(a.width, a.height)
	if a.viewer != nil {
		a.viewer.Resize(a.width, a.height)
	}
}

// drainSources applies any photo lists and errors published since the last
// frame without blocking.
func (a *App) drainSources() {
	for {
		select {
		case list, ok := <-a.opts.Updates:
			if !ok {
				a.opts.Updates = nil
				continue
			}
			log.Infof("photos changed: %d in directory", list.Len())
			a.SetPhotos(photo.NewList(append(slices.Clone(a.pinned), list.All()...)...))
		case err, ok := <-a.opts.Errors:
			if !ok {
				a.opts.Errors = nil
				continue
			}
			log.S(log.Warning, "photo watcher", log.Str("err", err.Error()))
		default:
			return
		}
	}
}

// Tick advances every component by dt seconds.
func (a *App) Tick(dt float64) {
	a.drainSources()

	a.engine.Update(a.galleryOpen, dt)
	if a.viewer != nil {
		a.viewer.Update(dt)
	}
	a.messages.Update(time.Duration(dt*float64(time.Second)), !a.galleryOpen)
	a.overlay.Update(dt)

	if dt > 0 {
		if a.fps == 0 {
			a.fps = 1 / dt
		} else {
			a.fps = a.fps*0.9 + 0.1/dt
		}
	}
	if a.noticeTTL > 0 {
		a.noticeTTL -= dt
		if a.noticeTTL <= 0 {
			a.notice = ""
		}
	}
}

// Draw renders the scene, the mounted viewer and the overlay text.
func (a *App) Draw(fb *render.Framebuffer) []render.Label {
	fb.Clear(background)
	a.engine.Render(fb)
	if a.viewer != nil {
		a.viewer.Render(fb)
	}
	if a.shotDue {
		a.shotDue = false
		a.screenshot(fb)
	}

	w, h := fb.Width, fb.Height
	var labels []render.Label
	if alpha := a.overlay.Value(); alpha > 0.02 {
		labels = append(labels, a.messages.Labels(w, h, alpha)...)
		labels = append(labels, a.titleLabels(w, h, alpha)...)
		labels = append(labels, a.controlLabels(h, alpha)...)
	}
	if a.viewer != nil {
		labels = append(labels, a.viewer.Labels()...)
	}
	if a.prompt.active() {
		labels = append(labels, render.Label{X: 2, Y: h - 2, Text: a.prompt.line(), Color: render.ColorWhite})
	}
	if a.notice != "" {
		labels = append(labels, render.Label{X: w - render.TextWidth(a.notice) - 2, Y: h - 2, Text: a.notice, Color: noticeColor})
	}
	if a.showHUD {
		labels = append(labels, a.hudLabels()...)
	}
	return labels
}

func (a *App) titleLabels(w, h int, alpha float64) []render.Label {
	right := w - w*8/100
	return []render.Label{
		{X: right - render.TextWidth(TitleText), Y: h/2 - 4, Text: TitleText, Color: render.MultiplyColor(titleColor, alpha)},
		{X: right - render.TextWidth(SubtitleText), Y: h / 2, Text: SubtitleText, Color: render.MultiplyColor(subtitleColor, alpha)},
	}
}

func (a *App) controlLabels(h int, alpha float64) []render.Label {
	music := "off"
	if a.MusicPlaying() {
		music = "on"
	}
	line := fmt.Sprintf("[o] add photo (%d/%d)  [m] music: %s  [i] message", a.photos.Len(), photo.MaxPhotos, music)
	if a.photos.Len() > 0 {
		line += "  [g] gallery"
	}
	return []render.Label{{X: 2, Y: h - 4, Text: line, Color: render.MultiplyColor(hintColor, alpha)}}
}

func (a *App) hudLabels() []render.Label {
	st := a.engine.Stats()
	return []render.Label{
		{X: 2, Y: 0, Text: fmt.Sprintf("%.0f fps  %d pts  %d culled", a.fps, st.Points, st.Culled), Color: hudColor},
		{X: 2, Y: 2, Text: fmt.Sprintf("morph %.2f  photos %d/%d", a.engine.Morph(), a.photos.Len(), photo.MaxPhotos), Color: hudColor},
	}
}

func (a *App) screenshot(fb *render.Framebuffer) {
	name := fmt.Sprintf("noel-%s.png", a.opts.Now().Format("20060102-150405"))
	path := filepath.Join(a.opts.ScreenshotDir, name)
	if err := fb.SavePNG(path); err != nil {
		log.S(log.Warning, "screenshot failed", log.Str("path", path), log.Str("err", err.Error()))
		a.setNotice("screenshot failed")
		return
	}
	log.Infof("saved %s", path)
	a.setNotice("saved " + name)
}

// Done reports whether the user asked to quit.
func (a *App) Done() bool {
	return a.quit
}

// Close unmounts every component. The melody player belongs to the caller.
func (a *App) Close() {
	if a.viewer != nil {
		a.viewer.Close()
		a.viewer = nil
	}
	a.engine.Close()
	if a.removeHandler != nil {
		a.removeHandler()
		a.removeHandler = nil
	}
}
