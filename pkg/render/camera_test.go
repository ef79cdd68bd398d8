package render

import (
	"math"
	"testing"

	"github.com/taigrr/noel/pkg/math3d"
)

func TestCameraViewportClamped(t *testing.T) {
	cam := NewCamera(math3d.V3(0, 0, 5), 60)

	tests := []struct {
		name       string
		w, h       int
		wantW      int
		wantH      int
		wantAspect float64
	}{
		{"normal", 160, 90, 160, 90, 160.0 / 90.0},
		{"zero height", 100, 0, 100, 1, 100},
		{"negative", -5, -5, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.SetViewport(tt.w, tt.h)
			w, h := cam.Viewport()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("viewport = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
			if got := cam.AspectRatio(); got != tt.wantAspect {
				t.Errorf("aspect = %v, want %v", got, tt.wantAspect)
			}
			for i, v := range cam.ViewProjectionMatrix() {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Fatalf("matrix[%d] = %v", i, v)
				}
			}
		})
	}
}

func TestWorldToScreenCenter(t *testing.T) {
	cam := NewCamera(math3d.V3(0, 0, 12), 60)
	cam.SetViewport(80, 40)

	x, y, _, w, ok := cam.WorldToScreen(math3d.V3(0, 0, 0))
	if !ok {
		t.Fatal("origin should be visible")
	}
	if math.Abs(x-40) > 1e-9 || math.Abs(y-20) > 1e-9 {
		t.Errorf("screen = (%v, %v), want (40, 20)", x, y)
	}
	if math.Abs(w-12) > 1e-9 {
		t.Errorf("w = %v, want 12", w)
	}

	if _, _, _, _, ok := cam.WorldToScreen(math3d.V3(0, 0, 20)); ok {
		t.Error("point behind camera reported visible")
	}
}

func TestRayRoundTrip(t *testing.T) {
	cam := NewCamera(math3d.V3(0, 2.2, 8.5), 75)
	cam.SetViewport(120, 60)

	target := math3d.V3(1, 3, 0)
	x, y, _, _, ok := cam.WorldToScreen(target)
	if !ok {
		t.Fatal("target not visible")
	}
	ray := cam.Ray(cam.ScreenToNDC(x, y))
	if _, hit := ray.IntersectSphere(target, 0.01); !hit {
		t.Errorf("ray %v through (%v, %v) misses %v", ray, x, y, target)
	}
}
