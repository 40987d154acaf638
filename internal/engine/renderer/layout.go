package renderer

// Viewport is a rectangle of the window in pixels, origin bottom left.
type Viewport struct {
	X, Y, Width, Height int
}

// Aspect returns width over height, or 1 for an empty viewport.
func (v Viewport) Aspect() float32 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return float32(v.Width) / float32(v.Height)
}

// Split divides a window into n side by side viewports. The last column
// takes the pixels left over by integer division.
func Split(width, height, n int) []Viewport {
	if n < 1 || width <= 0 || height <= 0 {
		return nil
	}
	out := make([]Viewport, n)
	w := width / n
	for i := range out {
		out[i] = Viewport{X: i * w, Width: w, Height: height}
	}
	out[n-1].Width = width - (n-1)*w
	return out
}
