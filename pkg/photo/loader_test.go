package photo

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"
)

func wait(t *testing.T, p *Pending) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("load did not finish")
	}
}

func TestLoaderSuccess(t *testing.T) {
	l := NewLoader(8, func(context.Context, string) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 32, 16)), nil
	})
	defer l.Close()

	p := l.Load(New("mem"))
	wait(t, p)
	tex := p.Texture()
	if tex == nil || p.Failed() {
		t.Fatalf("texture = %v, failed = %v", tex, p.Failed())
	}
	if tex.Width != 8 || tex.Height != 4 {
		t.Errorf("texture = %dx%d, want 8x4", tex.Width, tex.Height)
	}
}

func TestLoaderFailureStaysBlank(t *testing.T) {
	calls := 0
	l := NewLoader(8, func(context.Context, string) (image.Image, error) {
		calls++
		return nil, errors.New("boom")
	})
	defer l.Close()

	p := l.Load(New("bad"))
	wait(t, p)
	if p.Texture() != nil || !p.Failed() {
		t.Errorf("texture = %v, failed = %v, want nil and true", p.Texture(), p.Failed())
	}
	time.Sleep(10 * time.Millisecond)
	if calls != 1 {
		t.Errorf("decode called %d times, want 1", calls)
	}
}

func TestLoaderCloseDropsResults(t *testing.T) {
	release := make(chan struct{})
	l := NewLoader(8, func(ctx context.Context, _ string) (image.Image, error) {
		<-release
		return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
	})

	p := l.Load(New("slow"))
	l.Close()
	close(release)
	l.Wait()

	if p.Texture() != nil {
		t.Error("texture published after Close")
	}

	late := l.Load(New("late"))
	wait(t, late)
	if !late.Failed() {
		t.Error("load after Close should fail immediately")
	}
}

func TestLoaderCloseDoesNotWait(t *testing.T) {
	release := make(chan struct{})
	l := NewLoader(8, func(context.Context, string) (image.Image, error) {
		<-release // ignores ctx
		return image.NewRGBA(image.Rect(0, 0, 2, 2)), nil
	})
	defer func() {
		close(release)
		l.Wait()
	}()

	p := l.Load(New("stuck"))
	start := time.Now()
	l.Close()
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Errorf("Close took %v, want it to return without waiting", d)
	}
	select {
	case <-p.Done():
		t.Error("load finished before its decoder returned")
	default:
	}
}
