package render

import (
	"time"

	"github.com/google/uuid"

	"github.com/taigrr/penumbra/pkg/math3d"
)

// Scene owns the camera, the models and the light table for one frame.
// Materials refer to lights by LightID rather than by pointer.
type Scene struct {
	Camera     *Camera
	Models     []*Model
	Background math3d.Vec3
	Timing     FrameTiming

	lights []*SpotLight
}

// NewScene creates an empty scene viewed through camera.
func NewScene(camera *Camera) *Scene {
	return &Scene{Camera: camera}
}

// AddLight appends a light to the table and returns its handle.
func (s *Scene) AddLight(l *SpotLight) LightID {
	s.lights = append(s.lights, l)
	return LightID(len(s.lights) - 1)
}

// Light resolves a handle. Unknown handles return nil.
func (s *Scene) Light(id LightID) *SpotLight {
	if id < 0 || int(id) >= len(s.lights) {
		return nil
	}
	return s.lights[id]
}

// Lights returns the light table.
func (s *Scene) Lights() []*SpotLight {
	return s.lights
}

// AddModel appends a model to the scene.
func (s *Scene) AddModel(m *Model) {
	s.Models = append(s.Models, m)
}

// ModelByName returns the first model with the given name, or nil.
func (s *Scene) ModelByName(name string) *Model {
	for _, m := range s.Models {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ModelByID returns the model with the given ID, or nil.
func (s *Scene) ModelByID(id uuid.UUID) *Model {
	for _, m := range s.Models {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// TriangleCount returns the total number of triangles in the scene.
func (s *Scene) TriangleCount() int {
	n := 0
	for _, m := range s.Models {
		n += m.TriangleCount()
	}
	return n
}

// FrameTiming accumulates frame durations and publishes a frame rate once
// per second.
type FrameTiming struct {
	Frames      int           // Frames since the last rollover
	Accumulated time.Duration // Time since the last rollover
	LastFrame   time.Duration // Duration of the most recent frame
	FPS         float64       // Rate measured over the last full second
}

// Tick records one frame of duration dt and reports whether a one-second
// rollover happened.
func (t *FrameTiming) Tick(dt time.Duration) bool {
	t.Frames++
	t.LastFrame = dt
	t.Accumulated += dt
	if t.Accumulated < time.Second {
		return false
	}
	t.FPS = float64(t.Frames) / t.Accumulated.Seconds()
	t.Frames = 0
	t.Accumulated = 0
	return true
}
