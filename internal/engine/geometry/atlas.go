package geometry

import (
	"image"
	"image/color"
	"sort"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Atlas cell size in pixels; wide enough for three glyphs of Face7x13.
const (
	cellW = 32
	cellH = 16
)

// UV is a texture rectangle in normalized coordinates.
type UV struct {
	U0, V0, U1, V1 float32
}

// LabelAtlas is a single texture holding every face label text.
type LabelAtlas struct {
	Image *image.RGBA
	cells map[string]UV
}

// NewLabelAtlas rasterizes the distinct label texts of the given shapes.
func NewLabelAtlas(shapes ...*Shape) *LabelAtlas {
	seen := map[string]bool{}
	var texts []string
	for _, s := range shapes {
		if s == nil {
			continue
		}
		for _, f := range s.Faces {
			if !seen[f.Label.Text] {
				seen[f.Label.Text] = true
				texts = append(texts, f.Label.Text)
			}
		}
	}
	sort.Strings(texts)

	cols := 8
	rows := (len(texts) + cols - 1) / cols
	if rows == 0 {
		rows = 1
	}
	w, h := cols*cellW, rows*cellH
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Src: image.NewUniform(color.White), Face: face}
	a := &LabelAtlas{Image: img, cells: make(map[string]UV, len(texts))}

	for i, text := range texts {
		x0 := (i % cols) * cellW
		y0 := (i / cols) * cellH
		width := font.MeasureString(face, text).Ceil()
		drawer.Dot = fixed.P(x0+(cellW-width)/2, y0+face.Ascent+(cellH-face.Height)/2)
		drawer.DrawString(text)

		a.cells[text] = UV{
			U0: float32(x0) / float32(w),
			V0: float32(y0) / float32(h),
			U1: float32(x0+cellW) / float32(w),
			V1: float32(y0+cellH) / float32(h),
		}
	}
	return a
}

// Lookup returns the texture rectangle for a label text.
func (a *LabelAtlas) Lookup(text string) (UV, bool) {
	uv, ok := a.cells[text]
	return uv, ok
}

// Len returns the number of labels in the atlas.
func (a *LabelAtlas) Len() int {
	return len(a.cells)
}
