// Package framebuffer wraps OpenGL render targets used off screen: colour
// targets for viewport captures and depth-only targets for shadow maps.
package framebuffer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Kind selects the attachments of a target.
type Kind int

const (
	// Color has an RGBA8 texture and a depth renderbuffer.
	Color Kind = iota
	// Depth has a single comparable depth texture and no colour.
	Depth
)

// Framebuffer is an off-screen render target.
type Framebuffer struct {
	kind    Kind
	fbo     uint32
	texture uint32 // colour or depth, depending on kind
	depth   uint32 // renderbuffer of a Color target
	width   int32
	height  int32
}

// New creates a target of the given kind. Sizes below one are raised to one.
func New(kind Kind, width, height int32) (*Framebuffer, error) {
	fb := &Framebuffer{kind: kind, width: max(width, 1), height: max(height, 1)}

	gl.GenFramebuffers(1, &fb.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.GenTextures(1, &fb.texture)
	gl.BindTexture(gl.TEXTURE_2D, fb.texture)

	switch kind {
	case Depth:
		fb.allocDepth()
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, fb.texture, 0)
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	default:
		fb.allocColor()
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, fb.texture, 0)
		gl.GenRenderbuffers(1, &fb.depth)
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, fb.depth)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		fb.Destroy()
		return nil, fmt.Errorf("framebuffer incomplete: 0x%x", status)
	}
	return fb, nil
}

func (fb *Framebuffer) allocColor() {
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, fb.width, fb.height, 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
}

// allocDepth sets up hardware depth comparison so a sampler2DShadow
// returns the lit fraction. Lookups outside the map read as lit.
func (fb *Framebuffer) allocDepth() {
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, fb.width, fb.height, 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_BORDER)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_BORDER)
	border := [4]float32{1, 1, 1, 1}
	gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
}

// Bind makes the target current and returns a func restoring the previous
// framebuffer and viewport.
func (fb *Framebuffer) Bind() (restore func()) {
	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])

	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.Viewport(0, 0, fb.width, fb.height)

	return func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}
}

// BindTexture binds the colour or depth texture to a texture unit.
func (fb *Framebuffer) BindTexture(unit uint32) {
	gl.ActiveTexture(unit)
	gl.BindTexture(gl.TEXTURE_2D, fb.texture)
}

// Size returns the target dimensions.
func (fb *Framebuffer) Size() (width, height int32) {
	return fb.width, fb.height
}

// Resize reallocates storage when the size changes.
func (fb *Framebuffer) Resize(width, height int32) {
	width, height = max(width, 1), max(height, 1)
	if width == fb.width && height == fb.height {
		return
	}
	fb.width, fb.height = width, height

	gl.BindTexture(gl.TEXTURE_2D, fb.texture)
	if fb.kind == Depth {
		fb.allocDepth()
	} else {
		fb.allocColor()
		gl.BindRenderbuffer(gl.RENDERBUFFER, fb.depth)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, fb.width, fb.height)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// ReadPixels returns the RGBA contents of a Color target, bottom row first.
func (fb *Framebuffer) ReadPixels() []byte {
	if fb.kind != Color {
		return nil
	}
	pixels := make([]byte, PixelBytes(int(fb.width), int(fb.height)))

	var prevFBO int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.fbo)
	gl.ReadPixels(0, 0, fb.width, fb.height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
	return pixels
}

// Destroy releases the GPU objects. It is safe to call more than once.
func (fb *Framebuffer) Destroy() {
	if fb.fbo != 0 {
		gl.DeleteFramebuffers(1, &fb.fbo)
		fb.fbo = 0
	}
	if fb.texture != 0 {
		gl.DeleteTextures(1, &fb.texture)
		fb.texture = 0
	}
	if fb.depth != 0 {
		gl.DeleteRenderbuffers(1, &fb.depth)
		fb.depth = 0
	}
}

// PixelBytes is the size of an RGBA8 image.
func PixelBytes(width, height int) int {
	if width <= 0 || height <= 0 {
		return 0
	}
	return width * height * 4
}
