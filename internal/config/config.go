// Package config loads application settings from a YAML file with NOEL_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/taigrr/noel/pkg/render"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid")

// Display backends.
const (
	BackendTerminal = "terminal" // ultraviolet
	BackendTcell    = "tcell"
	BackendWindow   = "window" // ebiten
)

// Easing modes.
const (
	EasingFrame = "frame"
	EasingTime  = "time"
)

type Config struct {
	Backend string `yaml:"backend"`
	FPS     int    `yaml:"fps"`
	Seed    uint64 `yaml:"seed"`
	Easing  string `yaml:"easing"`

	Photos   PhotosConfig   `yaml:"photos"`
	Scene    SceneConfig    `yaml:"scene"`
	Reel     ReelConfig     `yaml:"reel"`
	Music    MusicConfig    `yaml:"music"`
	Messages MessagesConfig `yaml:"messages"`
	Window   WindowConfig   `yaml:"window"`
	Log      LogConfig      `yaml:"log"`
}

type PhotosConfig struct {
	Dir         string   `yaml:"dir"`
	Files       []string `yaml:"files"`
	TextureSize int      `yaml:"texture_size"`
}

type SceneConfig struct {
	Spiral        int      `yaml:"spiral"`
	Fill          int      `yaml:"fill"`
	Halo          int      `yaml:"halo"`
	Floor         int      `yaml:"floor"`
	Snow          int      `yaml:"snow"`
	Ornaments     int      `yaml:"ornaments"`
	Palette       []string `yaml:"palette"`
	StarModel     string   `yaml:"star_model"`
	OrnamentModel string   `yaml:"ornament_model"`
}

type ReelConfig struct {
	Sensitivity  float64 `yaml:"sensitivity"`
	TapThreshold float64 `yaml:"tap_threshold"`
}

type MusicConfig struct {
	Autoplay   bool    `yaml:"autoplay"`
	Volume     float64 `yaml:"volume"` // linear gain; 0 leaves it unchanged
	SampleRate int     `yaml:"sample_rate"`
}

type MessagesConfig struct {
	Presets     []string      `yaml:"presets"`
	Interval    time.Duration `yaml:"interval"`
	MinLifetime time.Duration `yaml:"min_lifetime"`
	MaxLifetime time.Duration `yaml:"max_lifetime"`
}

type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Scale  int `yaml:"scale"` // screen pixels per framebuffer pixel
}

type LogConfig struct {
	File string `yaml:"file"`
}

// DefaultPresets are the greetings that float across the tree.
var DefaultPresets = []string{
	"Merry Christmas!",
	"Happy Holidays",
	"Joy to the world",
	"Let it snow ❄",
	"圣诞快乐",
	"Peace on earth",
	"Warm wishes",
	"Ho ho ho!",
	"Season's greetings",
	"Make a wish ✨",
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendTerminal,
		FPS:     30,
		Easing:  EasingFrame,
		Photos: PhotosConfig{
			TextureSize: 128,
		},
		Scene: SceneConfig{
			Spiral:    18000,
			Fill:      15000,
			Halo:      5000,
			Floor:     6000,
			Snow:      4000,
			Ornaments: 70,
			Palette:   []string{"#ff0055", "#00ff88", "#ffcc00", "#aa00ff", "#ffffff"},
		},
		Reel: ReelConfig{
			Sensitivity:  0.004,
			TapThreshold: 5,
		},
		Music: MusicConfig{
			SampleRate: 44100,
		},
		Messages: MessagesConfig{
			Presets:     DefaultPresets,
			Interval:    2800 * time.Millisecond,
			MinLifetime: 10 * time.Second,
			MaxLifetime: 18 * time.Second,
		},
		Window: WindowConfig{
			Width:  320,
			Height: 200,
			Scale:  3,
		},
		Log: LogConfig{
			File: "noel.log",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies NOEL_* overrides using lookup, usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("NOEL_BACKEND", &c.Backend)
	str("NOEL_EASING", &c.Easing)
	str("NOEL_PHOTOS", &c.Photos.Dir)
	str("NOEL_LOG_FILE", &c.Log.File)

	if v, ok := lookup("NOEL_FPS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: NOEL_FPS=%q: %w", ErrInvalid, v, err)
		}
		c.FPS = n
	}
	if v, ok := lookup("NOEL_SEED"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: NOEL_SEED=%q: %w", ErrInvalid, v, err)
		}
		c.Seed = n
	}
	if v, ok := lookup("NOEL_MUSIC"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: NOEL_MUSIC=%q: %w", ErrInvalid, v, err)
		}
		c.Music.Autoplay = b
	}
	return nil
}

// Validate rejects unknown enums and clamps numeric settings into range.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(c.Backend)
	switch c.Backend {
	case BackendTerminal, BackendTcell, BackendWindow:
	default:
		return fmt.Errorf("%w: backend %q (want %s, %s or %s)", ErrInvalid, c.Backend, BackendTerminal, BackendTcell, BackendWindow)
	}
	switch c.Easing {
	case EasingFrame, EasingTime:
	default:
		return fmt.Errorf("%w: easing %q", ErrInvalid, c.Easing)
	}
	if _, err := c.Palette(); err != nil {
		return err
	}

	c.FPS = clampInt(c.FPS, 1, 240)
	c.Photos.TextureSize = clampInt(c.Photos.TextureSize, 8, 2048)
	for _, n := range []*int{&c.Scene.Spiral, &c.Scene.Fill, &c.Scene.Halo, &c.Scene.Floor, &c.Scene.Snow, &c.Scene.Ornaments} {
		*n = clampInt(*n, 0, 200000)
	}
	if c.Reel.Sensitivity <= 0 {
		c.Reel.Sensitivity = Default().Reel.Sensitivity
	}
	if c.Reel.TapThreshold <= 0 {
		c.Reel.TapThreshold = Default().Reel.TapThreshold
	}
	c.Music.SampleRate = clampInt(c.Music.SampleRate, 8000, 192000)
	if c.Messages.Interval <= 0 {
		c.Messages.Interval = Default().Messages.Interval
	}
	if c.Messages.MinLifetime <= 0 {
		c.Messages.MinLifetime = Default().Messages.MinLifetime
	}
	if c.Messages.MaxLifetime < c.Messages.MinLifetime {
		c.Messages.MaxLifetime = c.Messages.MinLifetime
	}
	c.Window.Width = clampInt(c.Window.Width, 16, 4096)
	c.Window.Height = clampInt(c.Window.Height, 16, 4096)
	c.Window.Scale = clampInt(c.Window.Scale, 1, 16)
	return nil
}

// Palette parses the ornament colors.
func (c *Config) Palette() ([]render.Color, error) {
	out := make([]render.Color, 0, len(c.Scene.Palette))
	for _, s := range c.Scene.Palette {
		col, err := colorful.Hex(s)
		if err != nil {
			return nil, fmt.Errorf("%w: palette color %q: %w", ErrInvalid, s, err)
		}
		r, g, b := col.RGB255()
		out = append(out, render.RGB(r, g, b))
	}
	return out, nil
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
