package game

import (
	"github.com/Faultbox/dicebowl/internal/engine/geometry"
	"github.com/Faultbox/dicebowl/internal/engine/renderer"
	"github.com/Faultbox/dicebowl/internal/game/dice"
	"github.com/Faultbox/dicebowl/internal/game/session"
)

// BuildScene turns a session frame into draw calls: one view per active
// camera slot and one object per live die.
func BuildScene(f session.Frame) renderer.Scene {
	var s renderer.Scene
	if f.Cameras != nil {
		s.Views = make([]renderer.View, f.Views)
		for i := range s.Views {
			s.Views[i] = renderer.View{
				View:       f.Cameras.View(i),
				Eye:        f.Cameras.State(i).Position,
				Projection: f.Cameras.Projection,
			}
		}
	}
	s.Objects = make([]renderer.Object, 0, len(f.Dice))
	for _, d := range f.Dice {
		v := d.Visual
		if v == nil || v.Factory == nil {
			continue
		}
		s.Objects = append(s.Objects, renderer.Object{
			Key:       v.Factory.Type.String(),
			Body:      v.Factory.Body,
			Labels:    v.Factory.Labels,
			Model:     v.Model(),
			Material:  v.Material,
			Wireframe: v.Wireframe,
		})
	}
	return s
}

// Painter draws a built scene.
type Painter interface {
	Render(s renderer.Scene)
	Preload(key string, body, labels *geometry.Mesh)
	Close() error
}

// view adapts a Painter to the session renderer and dice scene contracts.
type view struct {
	painter Painter
}

var (
	_ session.Renderer = view{}
	_ dice.Scene       = view{}
)

func (v view) Render(f session.Frame) {
	if v.painter != nil {
		v.painter.Render(BuildScene(f))
	}
}

// Attach uploads the meshes of a new die before its first frame.
func (v view) Attach(d *dice.Visual) {
	if v.painter != nil && d != nil && d.Factory != nil {
		v.painter.Preload(d.Factory.Type.String(), d.Factory.Body, d.Factory.Labels)
	}
}

// Detach keeps the meshes; they are shared by every die of the type.
func (view) Detach(*dice.Visual) {}

func (v view) Close() error {
	if v.painter == nil {
		return nil
	}
	return v.painter.Close()
}
