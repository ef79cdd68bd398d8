package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	data := pngBytes(t, 4, 3)
	path := filepath.Join(t.TempDir(), "a.png")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		ref  string
	}{
		{"path", path},
		{"file url", "file://" + path},
		{"data uri", "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Decode(context.Background(), tt.ref)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
				t.Errorf("bounds = %v, want 4x3", b)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name        string
		ref         string
		unsupported bool
	}{
		{"ftp", "ftp://host/a.png", true},
		{"plain data uri", "data:text/plain,hello", true},
		{"no comma", "data:image/png;base64", true},
		{"missing file", "/nonexistent/a.png", false},
		{"not an image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("nope")), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(context.Background(), tt.ref)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrUnsupportedURL); got != tt.unsupported {
				t.Errorf("errors.Is(ErrUnsupportedURL) = %v, want %v (err: %v)", got, tt.unsupported, err)
			}
		})
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"a.PNG":     true,
		"b.jpeg":    true,
		"c.webp":    true,
		"d.txt":     false,
		"noext":     false,
		"dir/e.Gif": true,
	}
	for path, want := range tests {
		if got := IsImageFile(path); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", path, got, want)
		}
	}
}
