// Package lighting describes the lights of the dice bowl scene.
package lighting

import "math"

// Sun is the directional key light.
type Sun struct {
	// Direction points from the scene towards the light.
	Direction [3]float32
	Color     [3]float32
	Ambient   [3]float32
}

// DefaultSun returns a warm light high above the bowl.
func DefaultSun() Sun {
	return Sun{
		Direction: SunDirection(35, 60),
		Color:     [3]float32{1, 0.97, 0.9},
		Ambient:   [3]float32{0.25, 0.25, 0.3},
	}
}

// SunDirection converts an azimuth around Y and an elevation above the
// horizon, both in degrees, to a unit direction towards the light.
func SunDirection(azimuth, elevation float64) [3]float32 {
	az := azimuth * math.Pi / 180
	el := elevation * math.Pi / 180
	return [3]float32{
		float32(math.Cos(el) * math.Sin(az)),
		float32(math.Sin(el)),
		float32(math.Cos(el) * math.Cos(az)),
	}
}
