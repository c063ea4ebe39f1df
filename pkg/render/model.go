package render

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/taigrr/penumbra/pkg/math3d"
)

var (
	// ErrIndexRange is returned when an index points past its array.
	ErrIndexRange = errors.New("index out of range")
	// ErrStreamMismatch is returned when index streams disagree in length.
	ErrStreamMismatch = errors.New("index stream length mismatch")
)

// Model is indexed triangle geometry with a transform and a material.
//
// Positions, texture coordinates and normals have independent index
// streams, three entries per triangle, so a shared position can carry a
// different uv or normal on each face. UVIndices and NormalIndices may be
// empty when the attribute is absent.
type Model struct {
	ID   uuid.UUID
	Name string

	Vertices []math3d.Vec3
	UVs      []math3d.Vec2
	Normals  []math3d.Vec3

	VertexIndices []int
	UVIndices     []int
	NormalIndices []int

	Transform Transform
	Shader    PixelShader
}

// NewModel creates an empty model with an identity transform.
func NewModel(name string, shader PixelShader) *Model {
	return &Model{
		ID:        uuid.New(),
		Name:      name,
		Transform: NewTransform(),
		Shader:    shader,
	}
}

// TriangleCount returns the number of triangles.
func (m *Model) TriangleCount() int {
	return len(m.VertexIndices) / 3
}

// Validate checks that every index stream is well formed.
func (m *Model) Validate() error {
	if len(m.VertexIndices)%3 != 0 {
		return fmt.Errorf("model %q: %d vertex indices: %w", m.Name, len(m.VertexIndices), ErrStreamMismatch)
	}
	if err := checkStream(m.Name, "vertex", m.VertexIndices, len(m.Vertices)); err != nil {
		return err
	}
	streams := []struct {
		name    string
		indices []int
		n       int
	}{
		{"uv", m.UVIndices, len(m.UVs)},
		{"normal", m.NormalIndices, len(m.Normals)},
	}
	for _, s := range streams {
		if len(s.indices) == 0 {
			continue
		}
		if len(s.indices) != len(m.VertexIndices) {
			return fmt.Errorf("model %q: %s stream has %d indices, want %d: %w",
				m.Name, s.name, len(s.indices), len(m.VertexIndices), ErrStreamMismatch)
		}
		if err := checkStream(m.Name, s.name, s.indices, s.n); err != nil {
			return err
		}
	}
	return nil
}

func checkStream(model, name string, indices []int, n int) error {
	for i, idx := range indices {
		if idx < 0 || idx >= n {
			return fmt.Errorf("model %q: %s index %d at %d (have %d): %w", model, name, idx, i, n, ErrIndexRange)
		}
	}
	return nil
}

// Bounds returns the model-space bounding box.
func (m *Model) Bounds() AABB {
	return NewAABB(m.Vertices)
}

// uv returns the texture coordinate of corner k of triangle t.
func (m *Model) uv(t, k int) math3d.Vec2 {
	if len(m.UVIndices) == 0 {
		return math3d.Vec2{}
	}
	return m.UVs[m.UVIndices[3*t+k]]
}
