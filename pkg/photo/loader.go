package photo

import (
	"context"
	"image"
	"sync"
	"sync/atomic"

	"fortio.org/log"

	"github.com/taigrr/noel/pkg/render"
)

// DecodeFunc decodes the image behind a reference.
type DecodeFunc func(ctx context.Context, ref string) (image.Image, error)

// Pending is a texture that is still loading. Texture returns nil until the
// image is ready, and forever if loading failed.
type Pending struct {
	Photo Photo

	tex    atomic.Pointer[render.Texture]
	failed atomic.Bool
	done   chan struct{}
}

// Texture returns the loaded texture or nil.
func (p *Pending) Texture() *render.Texture {
	return p.tex.Load()
}

// Failed reports whether loading ended in an error.
func (p *Pending) Failed() bool {
	return p.failed.Load()
}

// Done is closed once loading has finished, successfully or not.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Loader decodes photos in the background. Each component owns its own
// loader so closing one never affects another's textures.
type Loader struct {
	MaxDim int
	decode DecodeFunc

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLoader creates a loader that downsizes textures to maxDim pixels on
// their longer side. A nil decode uses Decode.
func NewLoader(maxDim int, decode DecodeFunc) *Loader {
	if decode == nil {
		decode = Decode
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{MaxDim: maxDim, decode: decode, ctx: ctx, cancel: cancel}
}

// Load starts loading p and returns immediately. Failures are logged once
// and not retried.
func (l *Loader) Load(p Photo) *Pending {
	pending := &Pending{Photo: p, done: make(chan struct{})}
	if l.ctx.Err() != nil {
		pending.failed.Store(true)
		close(pending.done)
		return pending
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(pending.done)

		img, err := l.decode(l.ctx, p.URL)
		if err != nil {
			pending.failed.Store(true)
			if l.ctx.Err() == nil {
				log.S(log.Warning, "photo load failed", log.Str("id", p.ID), log.Str("err", err.Error()))
			}
			return
		}
		if l.ctx.Err() != nil {
			// released while decoding; drop the result
			pending.failed.Store(true)
			return
		}
		pending.tex.Store(render.TextureFromImage(img, l.MaxDim))
	}()
	return pending
}

// Close cancels outstanding loads and returns at once. Decoders that ignore
// the context keep running until they finish; their results are dropped.
func (l *Loader) Close() {
	l.cancel()
}

// Wait blocks until every load goroutine has exited.
func (l *Loader) Wait() {
	l.wg.Wait()
}
