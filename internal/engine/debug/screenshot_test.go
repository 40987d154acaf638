package debug

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSavePixelsFlipsRows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	s := NewScreenshots(dir, "dicebowl")
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	// 1x2 image: bottom row red, top row blue in OpenGL order.
	pixels := []byte{
		255, 0, 0, 255,
		0, 0, 255, 255,
	}
	path, err := s.SavePixels(1, pixels, 1, 2)
	if err != nil {
		t.Fatalf("SavePixels: %v", err)
	}
	if !strings.HasSuffix(path, "dicebowl_2024-05-01_12-00-00.000_view1.png") {
		t.Errorf("unexpected filename %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, _, b, _ := img.At(0, 0).RGBA()
	if b == 0 || r != 0 {
		t.Errorf("top row should be blue after flip, got r=%d b=%d", r, b)
	}
}

func TestSavePixelsSizeMismatch(t *testing.T) {
	s := NewScreenshots(t.TempDir(), "x")
	if _, err := s.SavePixels(0, []byte{1, 2, 3}, 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}
