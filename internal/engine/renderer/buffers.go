package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/dicebowl/internal/engine/geometry"
)

// meshBuffer is an uploaded indexed mesh in geometry.Mesh layout.
type meshBuffer struct {
	vao, vbo, ebo uint32
	count         int32
}

func uploadMesh(m *geometry.Mesh) *meshBuffer {
	b := &meshBuffer{count: int32(len(m.Indices))}
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return b
	}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*4, unsafe.Pointer(&m.Vertices[0]), gl.STATIC_DRAW)

	gl.GenBuffers(1, &b.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.STATIC_DRAW)

	stride := int32(geometry.Stride * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(6*4)))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b
}

func (b *meshBuffer) draw() {
	if b == nil || b.vao == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawElements(gl.TRIANGLES, b.count, gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

func (b *meshBuffer) delete() {
	if b == nil {
		return
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
	if b.ebo != 0 {
		gl.DeleteBuffers(1, &b.ebo)
	}
	*b = meshBuffer{}
}

// lineBuffer streams GL_LINES vertices, xyz per vertex.
type lineBuffer struct {
	vao, vbo uint32
	capacity int
	count    int32
}

func newLineBuffer() *lineBuffer {
	b := &lineBuffer{}
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b
}

// set replaces the line vertices, growing the buffer when needed.
func (b *lineBuffer) set(lines []float32) {
	b.count = int32(len(lines) / 3)
	if len(lines) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	if len(lines) > b.capacity {
		b.capacity = len(lines)
		gl.BufferData(gl.ARRAY_BUFFER, len(lines)*4, unsafe.Pointer(&lines[0]), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(lines)*4, unsafe.Pointer(&lines[0]))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (b *lineBuffer) draw() {
	if b == nil || b.count == 0 {
		return
	}
	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.LINES, 0, b.count)
	gl.BindVertexArray(0)
}

func (b *lineBuffer) delete() {
	if b == nil {
		return
	}
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	if b.vbo != 0 {
		gl.DeleteBuffers(1, &b.vbo)
	}
	*b = lineBuffer{}
}
