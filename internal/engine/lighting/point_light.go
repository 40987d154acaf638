package lighting

import "math"

// MaxPointLights is the maximum number of point lights supported in shaders.
const MaxPointLights = 8

// PointLight is a point light source for GPU upload.
type PointLight struct {
	Position  [3]float32
	Color     [3]float32
	Range     float32
	Intensity float32
}

// PointLightBuffer holds lights for GPU upload.
type PointLightBuffer struct {
	Lights []PointLight
}

// NewPointLightBuffer creates an empty point light buffer.
func NewPointLightBuffer() *PointLightBuffer {
	return &PointLightBuffer{Lights: make([]PointLight, 0, MaxPointLights)}
}

// RimLights places n lights evenly around a bowl rim of the given radius
// and height, alternating between two tints.
func RimLights(n int, radius, height float64, a, b [3]float32) []PointLight {
	n = min(max(n, 0), MaxPointLights)
	lights := make([]PointLight, 0, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		c := a
		if i%2 == 1 {
			c = b
		}
		lights = append(lights, PointLight{
			Position:  [3]float32{float32(math.Cos(angle) * radius), float32(height), float32(math.Sin(angle) * radius)},
			Color:     clampColor(c),
			Range:     float32(radius * 2.5),
			Intensity: 0.6,
		})
	}
	return lights
}

func clampColor(c [3]float32) [3]float32 {
	for i := range c {
		c[i] = min(max(c[i], 0), 1)
	}
	return c
}

// Len returns the number of lights.
func (b *PointLightBuffer) Len() int { return len(b.Lights) }

// Clear removes all lights from the buffer.
func (b *PointLightBuffer) Clear() {
	b.Lights = b.Lights[:0]
}

// AddLight adds a point light to the buffer.
// Returns false if buffer is full.
func (b *PointLightBuffer) AddLight(light PointLight) bool {
	if len(b.Lights) >= MaxPointLights {
		return false
	}
	if light.Range <= 0 {
		light.Range = 1
	}
	light.Color = clampColor(light.Color)
	b.Lights = append(b.Lights, light)
	return true
}

// SetLights replaces all lights in the buffer, keeping at most MaxPointLights.
func (b *PointLightBuffer) SetLights(lights []PointLight) {
	b.Clear()
	for _, l := range lights {
		if !b.AddLight(l) {
			return
		}
	}
}

// Positions returns positions as a flat float32 slice for GPU upload.
// Format: [x0, y0, z0, x1, y1, z1, ...]
func (b *PointLightBuffer) Positions() []float32 {
	result := make([]float32, MaxPointLights*3)
	for i, light := range b.Lights {
		copy(result[i*3:], light.Position[:])
	}
	return result
}

// Colors returns colors premultiplied by intensity as a flat float32 slice.
func (b *PointLightBuffer) Colors() []float32 {
	result := make([]float32, MaxPointLights*3)
	for i, light := range b.Lights {
		for k := 0; k < 3; k++ {
			result[i*3+k] = light.Color[k] * light.Intensity
		}
	}
	return result
}

// Ranges returns ranges as a flat float32 slice for GPU upload.
func (b *PointLightBuffer) Ranges() []float32 {
	result := make([]float32, MaxPointLights)
	for i, light := range b.Lights {
		result[i] = light.Range
	}
	return result
}
