// Package renderer draws the dice bowl with OpenGL, one viewport per camera.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/dicebowl/internal/engine/debug"
	"github.com/Faultbox/dicebowl/internal/engine/framebuffer"
	"github.com/Faultbox/dicebowl/internal/engine/geometry"
	"github.com/Faultbox/dicebowl/internal/engine/lighting"
	"github.com/Faultbox/dicebowl/internal/engine/physics"
	"github.com/Faultbox/dicebowl/internal/engine/shader"
	"github.com/Faultbox/dicebowl/internal/engine/shadow"
	"github.com/Faultbox/dicebowl/internal/engine/texture"
	"github.com/Faultbox/dicebowl/pkg/math"
)

const maxLights = lighting.MaxPointLights

// shadowUnit is the texture unit of the sun's depth map; the label atlas
// uses unit 0.
const shadowUnit = 1

var (
	bowlMaterial = geometry.Material{
		Diffuse:   geometry.Color{R: 0.35, G: 0.22, B: 0.12},
		Opacity:   1,
		Shininess: 8,
	}
	wireColor = [3]float32{0.2, 1, 0.3}
	bowlWire  = [3]float32{1, 1, 0.2}
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor [3]float32
	Wireframes bool
	// Shadows enables the sun's depth pass.
	Shadows bool
	Shadow  shadow.Settings
	// ScreenshotDir receives captures; empty uses the working directory.
	ScreenshotDir string
}

// Object is one die to draw.
type Object struct {
	// Key identifies the mesh pair; objects with equal keys share GPU buffers.
	Key       string
	Body      *geometry.Mesh
	Labels    *geometry.Mesh
	Model     math.Mat4
	Material  geometry.Material
	Wireframe []float32
}

// View is one camera.
type View struct {
	View       math.Mat4
	Eye        math.Vec3
	Projection func(aspect float32) math.Mat4
}

// Scene is everything drawn in one frame.
type Scene struct {
	Views   []View
	Objects []Object
}

type meshPair struct {
	body, labels *meshBuffer
}

// Renderer handles all OpenGL rendering.
type Renderer struct {
	config Config
	log    *zap.Logger

	lit   *shader.Program
	lines *shader.Program
	depth *shader.Program

	meshes    map[string]meshPair
	bowl      *meshBuffer
	bowlLines *lineBuffer
	wire      *lineBuffer
	atlas     uint32

	sun    lighting.Sun
	lights *lighting.PointLightBuffer

	shadows *shadow.Map
	bounds  shadow.Bounds

	shots   *debug.Screenshots
	capture bool
	closed  bool
}

// New creates a new renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, atlas *geometry.LabelAtlas, bowl physics.Bowl, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Renderer{
		config: cfg,
		log:    log,
		meshes: make(map[string]meshPair),
		sun:    lighting.DefaultSun(),
		lights: lighting.NewPointLightBuffer(),
		shots:  debug.NewScreenshots(cfg.ScreenshotDir, "dicebowl"),
	}

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	c := cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], 1)

	var err error
	if r.lit, err = shader.New(litVertex, litFragment); err != nil {
		return nil, fmt.Errorf("dice shader: %w", err)
	}
	if r.lines, err = shader.New(lineVertex, lineFragment); err != nil {
		r.lit.Delete()
		return nil, fmt.Errorf("line shader: %w", err)
	}

	if cfg.Shadows {
		r.enableShadows(cfg.Shadow)
	}
	r.bounds = shadow.BowlBounds(float32(bowl.TopRadius), float32(bowl.WallHeight*2))

	r.bowl = uploadMesh(geometry.BowlMesh(bowl.Radius, bowl.TopRadius, bowl.WallHeight))
	r.bowlLines = newLineBuffer()
	r.bowlLines.set(debug.BowlLines(bowl))
	r.wire = newLineBuffer()
	if atlas != nil && atlas.Image != nil {
		r.atlas = texture.Upload(atlas.Image, texture.Linear)
	}
	r.lights.SetLights(lighting.RimLights(geometry.BowlSides, bowl.TopRadius, bowl.WallHeight+2,
		[3]float32{1, 0.85, 0.6}, [3]float32{0.6, 0.75, 1}))

	log.Debug("renderer ready", zap.Int("lights", r.lights.Len()), zap.Bool("shadows", r.shadows != nil))
	return r, nil
}

// enableShadows builds the depth program and map. Failure leaves the scene
// unshadowed rather than failing the renderer.
func (r *Renderer) enableShadows(s shadow.Settings) {
	depth, err := shader.New(depthVertex, depthFragment)
	if err != nil {
		r.log.Warn("shadows disabled", zap.Error(err))
		return
	}
	m, err := shadow.NewMap(s)
	if err != nil {
		depth.Delete()
		r.log.Warn("shadows disabled", zap.Error(err))
		return
	}
	r.depth, r.shadows = depth, m
	r.log.Debug("shadow map ready", zap.Int32("resolution", m.Resolution))
}

// Close frees GPU resources. It is safe to call more than once.
func (r *Renderer) Close() error {
	if r == nil || r.closed {
		return nil
	}
	r.closed = true
	for k, m := range r.meshes {
		m.body.delete()
		m.labels.delete()
		delete(r.meshes, k)
	}
	r.bowl.delete()
	r.bowlLines.delete()
	r.wire.delete()
	texture.Delete(r.atlas)
	r.lit.Delete()
	r.lines.Delete()
	if r.shadows != nil {
		r.shadows.Destroy()
		r.depth.Delete()
	}
	r.log.Info("renderer closed")
	return nil
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// SetWireframes toggles hull and bowl outlines.
func (r *Renderer) SetWireframes(on bool) { r.config.Wireframes = on }

// Wireframes reports whether outlines are drawn.
func (r *Renderer) Wireframes() bool { return r.config.Wireframes }

// Capture saves every viewport of the next frame as a PNG.
func (r *Renderer) Capture() { r.capture = true }

// Preload uploads the meshes for key ahead of the first draw.
func (r *Renderer) Preload(key string, body, labels *geometry.Mesh) {
	if r.closed {
		return
	}
	if _, ok := r.meshes[key]; ok {
		return
	}
	p := meshPair{}
	if body != nil {
		p.body = uploadMesh(body)
	}
	if labels != nil {
		p.labels = uploadMesh(labels)
	}
	r.meshes[key] = p
	r.log.Debug("meshes uploaded", zap.String("key", key))
}

// Render draws the scene into one viewport per view.
func (r *Renderer) Render(s Scene) {
	if r.closed {
		return
	}
	gl.Viewport(0, 0, int32(r.config.Width), int32(r.config.Height))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	for _, o := range s.Objects {
		r.Preload(o.Key, o.Body, o.Labels)
	}
	r.drawShadows(s.Objects)

	viewports := Split(r.config.Width, r.config.Height, len(s.Views))
	for i, vp := range viewports {
		gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.Width), int32(vp.Height))
		r.drawView(s.Views[i], vp, s.Objects)
	}

	if r.capture {
		r.capture = false
		r.saveViewports(s, viewports)
	}
}

// drawShadows renders the bowl and the opaque dice into the sun's depth
// map. The sun is fixed so only casters change between frames.
func (r *Renderer) drawShadows(objects []Object) {
	if r.shadows == nil {
		return
	}
	end := r.shadows.Begin(shadow.SunMatrix(r.sun, r.bounds))
	r.depth.Use()
	r.depth.SetMat4("uLightSpace", r.shadows.Light)
	r.depth.SetMat4("uModel", math.Identity())
	r.bowl.draw()
	for _, o := range objects {
		if o.Material.Transparent {
			continue
		}
		r.depth.SetMat4("uModel", o.Model)
		r.meshes[o.Key].body.draw()
	}
	end()
}

func (r *Renderer) drawView(v View, vp Viewport, objects []Object) {
	proj := math.Identity()
	if v.Projection != nil {
		proj = v.Projection(vp.Aspect())
	}

	r.lit.Use()
	r.lit.SetMat4("uView", v.View)
	r.lit.SetMat4("uProjection", proj)
	r.lit.SetVec3("uEye", [3]float32{v.Eye.X, v.Eye.Y, v.Eye.Z})
	r.lit.SetVec3("uSunDir", r.sun.Direction)
	r.lit.SetVec3("uSunColor", r.sun.Color)
	r.lit.SetVec3("uAmbient", r.sun.Ambient)
	r.lit.SetInt("uLightCount", int32(r.lights.Len()))
	r.lit.SetVec3Array("uLightPos", r.lights.Positions())
	r.lit.SetVec3Array("uLightColor", r.lights.Colors())
	r.lit.SetFloatArray("uLightRange", r.lights.Ranges())
	r.lit.SetInt("uTexture", 0)
	r.setShadowUniforms()

	r.setMaterial(bowlMaterial, false)
	r.lit.SetMat4("uModel", math.Identity())
	r.bowl.draw()

	// opaque first, then transparent bodies without depth writes
	for _, o := range objects {
		if !o.Material.Transparent {
			r.drawBody(o)
		}
	}
	gl.DepthMask(false)
	for _, o := range objects {
		if o.Material.Transparent {
			r.drawBody(o)
		}
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.atlas)
	for _, o := range objects {
		r.drawLabels(o)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.DepthMask(true)

	if r.config.Wireframes {
		r.drawWireframes(v.View, proj, objects)
	}
}

func (r *Renderer) setShadowUniforms() {
	// two sampler types may not share a unit, even unused
	r.lit.SetInt("uShadowMap", shadowUnit)
	if r.shadows == nil {
		r.lit.SetInt("uShadows", 0)
		r.lit.SetMat4("uLightSpace", math.Identity())
		r.lit.SetFloat("uNormalBias", 0)
		return
	}
	r.shadows.BindTexture(gl.TEXTURE0 + shadowUnit)
	r.lit.SetInt("uShadows", 1)
	r.lit.SetMat4("uLightSpace", r.shadows.Light)
	r.lit.SetFloat("uShadowBias", r.shadows.Bias)
	r.lit.SetFloat("uNormalBias", r.shadows.NormalBias)
	r.lit.SetFloat("uShadowTexel", r.shadows.TexelSize())
	gl.ActiveTexture(gl.TEXTURE0)
}

func (r *Renderer) setMaterial(m geometry.Material, textured bool) {
	r.lit.SetVec3("uDiffuse", [3]float32{m.Diffuse.R, m.Diffuse.G, m.Diffuse.B})
	r.lit.SetFloat("uOpacity", m.Opacity)
	r.lit.SetFloat("uShininess", m.Shininess)
	t := int32(0)
	if textured {
		t = 1
	}
	r.lit.SetInt("uTextured", t)
}

func (r *Renderer) drawBody(o Object) {
	p := r.meshes[o.Key]
	r.lit.SetMat4("uModel", o.Model)
	r.setMaterial(o.Material, false)
	p.body.draw()
}

func (r *Renderer) drawLabels(o Object) {
	p := r.meshes[o.Key]
	if p.labels == nil || r.atlas == 0 {
		return
	}
	label := o.Material
	label.Diffuse = label.Diffuse.Contrast()
	r.lit.SetMat4("uModel", o.Model)
	r.setMaterial(label, true)
	p.labels.draw()
}

func (r *Renderer) drawWireframes(view, proj math.Mat4, objects []Object) {
	r.lines.Use()
	r.lines.SetMat4("uView", view)
	r.lines.SetMat4("uProjection", proj)

	r.lines.SetMat4("uModel", math.Identity())
	r.lines.SetVec3("uColor", bowlWire)
	r.bowlLines.draw()

	r.lines.SetVec3("uColor", wireColor)
	for _, o := range objects {
		if len(o.Wireframe) == 0 {
			continue
		}
		r.lines.SetMat4("uModel", o.Model)
		r.wire.set(o.Wireframe)
		r.wire.draw()
	}
}

// saveViewports redraws each view into an off-screen target of the
// viewport's size and stores it, so captures never depend on the state of
// the window's back buffer.
func (r *Renderer) saveViewports(s Scene, viewports []Viewport) {
	for i, vp := range viewports {
		fb, err := framebuffer.New(framebuffer.Color, int32(vp.Width), int32(vp.Height))
		if err != nil {
			r.log.Warn("screenshot failed", zap.Int("viewport", i), zap.Error(err))
			continue
		}
		restore := fb.Bind()
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		r.drawView(s.Views[i], vp, s.Objects)
		restore()
		pixels := fb.ReadPixels()
		fb.Destroy()

		path, err := r.shots.SavePixels(i, pixels, vp.Width, vp.Height)
		if err != nil {
			r.log.Warn("screenshot failed", zap.Int("viewport", i), zap.Error(err))
			continue
		}
		r.log.Info("screenshot saved", zap.String("path", path))
	}
}
