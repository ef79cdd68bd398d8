package app

import (
	"fmt"
	"math"

	"github.com/gopxl/beep"

	"github.com/taigrr/noel/internal/config"
	"github.com/taigrr/noel/pkg/melody"
	"github.com/taigrr/noel/pkg/models"
	"github.com/taigrr/noel/pkg/photo"
	"github.com/taigrr/noel/pkg/scene"
)

// SceneOptions converts cfg into engine options, loading the optional GLB
// star and ornament models.
func SceneOptions(cfg config.Config) (scene.Options, error) {
	opts := scene.DefaultOptions()
	opts.Seed = cfg.Seed
	opts.Spiral = cfg.Scene.Spiral
	opts.Fill = cfg.Scene.Fill
	opts.Halo = cfg.Scene.Halo
	opts.Floor = cfg.Scene.Floor
	opts.Snow = cfg.Scene.Snow
	opts.Ornaments = cfg.Scene.Ornaments
	opts.TextureSize = cfg.Photos.TextureSize
	if cfg.Easing == config.EasingTime {
		opts.Easing = scene.EasingTime
	}

	palette, err := cfg.Palette()
	if err != nil {
		return opts, err
	}
	if len(palette) > 0 {
		opts.Palette = palette
	}

	if path := cfg.Scene.StarModel; path != "" {
		if opts.StarModel, err = models.LoadGLB(path); err != nil {
			return opts, fmt.Errorf("star model: %w", err)
		}
	}
	if path := cfg.Scene.OrnamentModel; path != "" {
		if opts.OrnamentModel, err = models.LoadGLB(path); err != nil {
			return opts, fmt.Errorf("ornament model: %w", err)
		}
	}
	return opts, nil
}

// PinnedPhotos turns the configured files into photos. Entries beyond
// photo.MaxPhotos are dropped by the list they end up in.
func PinnedPhotos(cfg config.Config) []photo.Photo {
	out := make([]photo.Photo, 0, len(cfg.Photos.Files))
	for _, f := range cfg.Photos.Files {
		out = append(out, photo.New(f))
	}
	return out
}

// InitialPhotos is the pinned photos followed by the current contents of the
// photo directory, if one is configured.
func InitialPhotos(cfg config.Config, pinned []photo.Photo) (photo.List, error) {
	items := append([]photo.Photo(nil), pinned...)
	if cfg.Photos.Dir != "" {
		dir, err := photo.Scan(cfg.Photos.Dir)
		if err != nil {
			return photo.NewList(items...), err
		}
		items = append(items, dir.All()...)
	}
	return photo.NewList(items...), nil
}

// PlayerOptions converts the music settings. Volume is given as a linear
// gain and converted to beep's log2 units.
func PlayerOptions(cfg config.Config) melody.Options {
	opts := melody.DefaultOptions()
	opts.SampleRate = beep.SampleRate(cfg.Music.SampleRate)
	if v := cfg.Music.Volume; v > 0 && v != 1 {
		opts.Volume = math.Log2(v)
	}
	return opts
}
