// Package ffstate tracks fixed-function vertex pipeline state that the
// generated fixed-function shader reads.
package ffstate

import (
	"fmt"
	"slices"

	"golang.org/x/image/math/f32"
)

// MaxLights is the number of light indices a guest may address.
const MaxLights = 4096

// MaxEnabled is the number of simultaneously enabled lights.
const MaxEnabled = 8

// LightType is the legacy light kind.
type LightType uint32

const (
	LightPoint       LightType = 1
	LightSpot        LightType = 2
	LightDirectional LightType = 3
)

// Light is a legacy light description.
type Light struct {
	Type         LightType
	Diffuse      f32.Vec4
	Specular     f32.Vec4
	Ambient      f32.Vec4
	Position     f32.Vec3
	Direction    f32.Vec3
	Range        float32
	Falloff      float32
	Attenuation0 float32
	Attenuation1 float32
	Attenuation2 float32
	Theta        float32
	Phi          float32
}

// DefaultLight is the light an index holds until it is set: a white
// directional light shining down +z.
var DefaultLight = Light{
	Type:      LightDirectional,
	Diffuse:   f32.Vec4{1, 1, 1, 0},
	Direction: f32.Vec3{0, 0, 1},
}

// Lights holds light descriptions and the most recently enabled light
// indices. The zero value is not usable; call NewLights.
type Lights struct {
	lights map[int]Light

	// enabled lists light indices from least to most recently enabled.
	// Empty slots hold -1 and follow every enabled index.
	enabled [MaxEnabled]int
}

// NewLights returns a light state with every light at DefaultLight and
// none enabled.
func NewLights() *Lights {
	l := &Lights{lights: make(map[int]Light)}
	for i := range l.enabled {
		l.enabled[i] = -1
	}
	return l
}

func checkIndex(index int) error {
	if index < 0 || index >= MaxLights {
		return fmt.Errorf("ffstate: light index %d out of range", index)
	}
	return nil
}

// Set stores the description of light index.
func (l *Lights) Set(index int, light Light) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	l.lights[index] = light
	return nil
}

// Get returns the description of light index.
func (l *Lights) Get(index int) (Light, error) {
	if err := checkIndex(index); err != nil {
		return Light{}, err
	}
	if light, ok := l.lights[index]; ok {
		return light, nil
	}
	return DefaultLight, nil
}

// Enable enables or disables light index. Enabling an enabled light makes
// it the most recent one; enabling a ninth light replaces the oldest.
func (l *Lights) Enable(index int, enable bool) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	n := l.count()
	i := slices.Index(l.enabled[:n], index)

	switch {
	case i >= 0 && enable:
		slogger().Info("ffstate: light already enabled", "light", index)
		copy(l.enabled[i:n], l.enabled[i+1:n])
		l.enabled[n-1] = index
	case i >= 0:
		copy(l.enabled[i:n], l.enabled[i+1:n])
		l.enabled[n-1] = -1
	case !enable:
		slogger().Info("ffstate: light disabled but not enabled", "light", index)
	case n < MaxEnabled:
		l.enabled[n] = index
	default:
		copy(l.enabled[:], l.enabled[1:])
		l.enabled[MaxEnabled-1] = index
	}
	return nil
}

func (l *Lights) count() int {
	n := slices.Index(l.enabled[:], -1)
	if n < 0 {
		return MaxEnabled
	}
	return n
}

// Enabled returns the enabled slots from least to most recently enabled,
// -1 marking empty slots.
func (l *Lights) Enabled() [MaxEnabled]int { return l.enabled }

// IsEnabled reports whether light index is enabled.
func (l *Lights) IsEnabled(index int) bool {
	return slices.Contains(l.enabled[:l.count()], index)
}
