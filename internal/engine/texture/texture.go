// Package texture uploads images to OpenGL textures.
package texture

import (
	"image"
	"image/color"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Filter selects sampling for an uploaded texture.
type Filter int

const (
	// Linear filters with mipmaps; used for label glyphs seen at an angle.
	Linear Filter = iota
	// Nearest keeps texels sharp.
	Nearest
)

// Upload creates a 2D texture from img and returns its id. The caller owns
// the texture and frees it with Delete.
func Upload(img *image.RGBA, filter Filter) uint32 {
	var texID uint32
	gl.GenTextures(1, &texID)
	gl.BindTexture(gl.TEXTURE_2D, texID)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		white := []uint8{255, 255, 255, 255}
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, 1, 1, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(white))
	} else {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))
	}
	switch filter {
	case Nearest:
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	default:
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 4)
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return texID
}

// Delete frees a texture. Zero ids are ignored.
func Delete(id uint32) {
	if id != 0 {
		gl.DeleteTextures(1, &id)
	}
}

// ImageToRGBA converts any image.Image to *image.RGBA.
func ImageToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			rgba.Set(x, y, color.RGBAModel.Convert(img.At(x, y)))
		}
	}
	return rgba
}

// FlipRows returns a copy of img mirrored vertically, matching the bottom
// left origin OpenGL uses for texture coordinates.
func FlipRows(img *image.RGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	row := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		src := img.Pix[y*img.Stride : y*img.Stride+row]
		dst := (b.Dy() - 1 - y) * out.Stride
		copy(out.Pix[dst:dst+row], src)
	}
	return out
}
