package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Screenshots writes viewport captures as PNG files.
type Screenshots struct {
	dir    string
	prefix string
	now    func() time.Time
}

// NewScreenshots creates a writer that stores files under dir.
func NewScreenshots(dir, prefix string) *Screenshots {
	return &Screenshots{dir: dir, prefix: prefix, now: time.Now}
}

// Filename returns the path the next capture of the given viewport would use.
func (s *Screenshots) Filename(viewport int) string {
	name := fmt.Sprintf("%s_%s_view%d.png", s.prefix, s.now().Format("2006-01-02_15-04-05.000"), viewport)
	if s.dir != "" {
		name = filepath.Join(s.dir, name)
	}
	return name
}

// SavePixels stores RGBA pixels read back from OpenGL. Rows are flipped
// since OpenGL has its origin at the bottom left.
func (s *Screenshots) SavePixels(viewport int, pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		copy(img.Pix[y*img.Stride:y*img.Stride+rowSize], pixels[src:src+rowSize])
	}
	return s.Save(viewport, img)
}

// Save stores img and returns the file path.
func (s *Screenshots) Save(viewport int, img image.Image) (string, error) {
	if s.dir != "" {
		if err := os.MkdirAll(s.dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	filename := s.Filename(viewport)
	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding PNG: %w", err)
	}
	return filename, nil
}
