// noel - a particle Christmas tree for your terminal.
// The tree shatters into a spinning film reel of your photos.
//
// Controls:
//
//	Mouse move    - Light up ornaments
//	Double-click  - Open the photo reel (needs photos)
//	G             - Open the photo reel
//	Drag / tap    - Spin the reel / zoom a photo
//	Esc           - Close zoom, close reel, quit
//	M             - Toggle music
//	I             - Type a message
//	O             - Add a photo by path or URL
//	P             - Save a screenshot
//	?             - Toggle HUD (FPS, points, morph)
//	Q, Ctrl+C     - Quit
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"fortio.org/cli"
	"fortio.org/log"

	"github.com/taigrr/noel/internal/app"
	"github.com/taigrr/noel/internal/config"
	"github.com/taigrr/noel/internal/display"
	"github.com/taigrr/noel/internal/display/tcellterm"
	"github.com/taigrr/noel/internal/display/uvterm"
	"github.com/taigrr/noel/internal/display/window"
	"github.com/taigrr/noel/pkg/melody"
	"github.com/taigrr/noel/pkg/photo"
)

var (
	configPath = flag.String("config", "", "YAML config `file`")
	backend    = flag.String("backend", config.BackendTerminal, "display backend: terminal, tcell or window")
	targetFPS  = flag.Int("fps", 30, "target frames per second")
	photosDir  = flag.String("photos", "", "`directory` of photos to hang, watched for changes")
	music      = flag.Bool("music", false, "start with the music playing")
	seed       = flag.Uint64("seed", 0, "random seed, 0 uses the clock")
)

// Terminal backends replace this with the real size before the first frame.
const (
	startCols = 80
	startRows = 24
)

func main() {
	cli.ArgsHelp = "[photo files or urls...]"
	cli.MinArgs = 0
	cli.MaxArgs = -1
	cli.Main()
	os.Exit(run(flag.Args()))
}

// applyFlags overrides cfg with the flags given on the command line only, so
// unset flags keep the config file and environment values.
func applyFlags(cfg *config.Config, files []string) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "backend":
			cfg.Backend = *backend
		case "fps":
			cfg.FPS = *targetFPS
		case "photos":
			cfg.Photos.Dir = *photosDir
		case "music":
			cfg.Music.Autoplay = *music
		case "seed":
			cfg.Seed = *seed
		}
	})
	cfg.Photos.Files = append(cfg.Photos.Files, files...)
}

func run(files []string) int {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return log.FErrf("%v", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return log.FErrf("%v", err)
	}
	applyFlags(&cfg, files)
	if err := cfg.Validate(); err != nil {
		return log.FErrf("%v", err)
	}

	// The terminal backends own the screen, so logs go to a file.
	if cfg.Backend != config.BackendWindow && cfg.Log.File != "" {
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return log.FErrf("open log file: %v", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	sceneOpts, err := app.SceneOptions(cfg)
	if err != nil {
		return log.FErrf("scene: %v", err)
	}

	pinned := app.PinnedPhotos(cfg)
	photos, err := app.InitialPhotos(cfg, pinned)
	if err != nil {
		log.S(log.Warning, "photo directory unreadable", log.Str("dir", cfg.Photos.Dir), log.Str("err", err.Error()))
	}
	var updates <-chan photo.List
	var watchErrs <-chan error
	if cfg.Photos.Dir != "" {
		w, err := photo.NewWatcher(cfg.Photos.Dir)
		if err != nil {
			log.S(log.Warning, "not watching photos", log.Str("err", err.Error()))
		} else {
			defer w.Close()
			updates, watchErrs = w.Lists, w.Errors
		}
	}
	log.Infof("starting %s backend with %d photos", cfg.Backend, photos.Len())

	player := melody.New(app.PlayerOptions(cfg))
	_ = player.Init() // logs and stays silent without an audio device
	defer player.Teardown()

	width, height := startCols, startRows*2
	if cfg.Backend == config.BackendWindow {
		width, height = cfg.Window.Width, cfg.Window.Height
	}
	a := app.New(app.Options{
		Config:  cfg,
		Width:   width,
		Height:  height,
		Photos:  photos,
		Pinned:  pinned,
		Updates: updates,
		Errors:  watchErrs,
		Scene:   sceneOpts,
		Player:  player,
	})
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	opts := display.Options{
		FPS:    cfg.FPS,
		Title:  "noel",
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Scale:  cfg.Window.Scale,
	}
	switch cfg.Backend {
	case config.BackendTcell:
		err = tcellterm.Run(ctx, a, opts)
	case config.BackendWindow:
		err = window.Run(ctx, a, opts)
	default:
		err = uvterm.Run(ctx, a, opts)
	}
	if err != nil {
		return log.FErrf("%s backend: %v", cfg.Backend, err)
	}
	return 0
}
