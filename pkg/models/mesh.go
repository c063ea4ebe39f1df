// Package models loads triangle meshes from OBJ and glTF files and turns
// them into render models.
package models

import (
	"errors"

	"github.com/taigrr/penumbra/pkg/math3d"
	"github.com/taigrr/penumbra/pkg/render"
)

var (
	// ErrUnsupportedFormat is returned for files no loader understands.
	ErrUnsupportedFormat = errors.New("unsupported model format")
	// ErrNoGeometry is returned when a file holds no triangles.
	ErrNoGeometry = errors.New("no triangles")
)

// Mesh holds triangle geometry with independent position, uv and normal
// arrays. Each face indexes the three arrays separately.
type Mesh struct {
	Name      string
	Positions []math3d.Vec3
	UVs       []math3d.Vec2
	Normals   []math3d.Vec3
	Faces     []Face
	Materials []Material

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Face is a triangle. T and N entries are -1 when the corner has no uv or
// normal.
type Face struct {
	V        [3]int // Indices into Mesh.Positions
	T        [3]int // Indices into Mesh.UVs
	N        [3]int // Indices into Mesh.Normals
	Material int    // Index into Mesh.Materials (-1 for no material)
}

// Material is the base color of a surface and its optional texture.
type Material struct {
	Name      string
	BaseColor math3d.Vec3
	BaseMap   *render.Texture[math3d.Vec3]
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{Name: name}
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	b := render.NewAABB(m.Positions)
	m.BoundsMin, m.BoundsMax = b.Min, b.Max
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.BoundsMin.Add(m.BoundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.BoundsMax.Sub(m.BoundsMin)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of positions.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// HasUVs reports whether every face corner has a texture coordinate.
func (m *Mesh) HasUVs() bool {
	return m.complete(func(f Face) [3]int { return f.T }, len(m.UVs))
}

// HasNormals reports whether every face corner has a normal.
func (m *Mesh) HasNormals() bool {
	return m.complete(func(f Face) [3]int { return f.N }, len(m.Normals))
}

func (m *Mesh) complete(stream func(Face) [3]int, n int) bool {
	if n == 0 || len(m.Faces) == 0 {
		return false
	}
	for _, f := range m.Faces {
		for _, idx := range stream(f) {
			if idx < 0 || idx >= n {
				return false
			}
		}
	}
	return true
}

// faceNormal returns the unnormalized normal of face i. Its length is
// twice the face area.
func (m *Mesh) faceNormal(i int) math3d.Vec3 {
	f := m.Faces[i]
	v0 := m.Positions[f.V[0]]
	v1 := m.Positions[f.V[1]]
	v2 := m.Positions[f.V[2]]
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// CalculateNormals gives every face its own normal for flat shading.
func (m *Mesh) CalculateNormals() {
	m.Normals = make([]math3d.Vec3, len(m.Faces))
	for i := range m.Faces {
		m.Normals[i] = m.faceNormal(i).Normalize()
		m.Faces[i].N = [3]int{i, i, i}
	}
}

// CalculateSmoothNormals computes one normal per position, averaging the
// area-weighted normals of the faces that share it.
func (m *Mesh) CalculateSmoothNormals() {
	m.Normals = make([]math3d.Vec3, len(m.Positions))

	// Accumulate face normals per vertex
	for i, f := range m.Faces {
		n := m.faceNormal(i) // Don't normalize yet
		for _, v := range f.V {
			m.Normals[v] = m.Normals[v].Add(n)
		}
	}

	for i := range m.Normals {
		m.Normals[i] = m.Normals[i].Normalize()
	}
	for i := range m.Faces {
		m.Faces[i].N = m.Faces[i].V
	}
}

// Transform applies a transformation matrix to all positions and normals.
func (m *Mesh) Transform(mat math3d.Mat4) {
	for i := range m.Positions {
		m.Positions[i] = mat.MulPoint(m.Positions[i])
	}
	nm := mat.NormalMatrix()
	for i := range m.Normals {
		m.Normals[i] = nm.MulDir(m.Normals[i]).Normalize()
	}
	m.CalculateBounds()
}

// FitUnit centers the mesh on the origin and scales it so its largest
// dimension is 1.
func (m *Mesh) FitUnit() {
	m.CalculateBounds()
	size := m.Size().MaxComponent()
	if size == 0 {
		return
	}
	s := 1 / size
	m.Transform(math3d.Scale(math3d.Splat3(s)).Mul(math3d.Translate(m.Center().Negate())))
}

// Clone creates a deep copy of the mesh. Material textures are shared.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Positions: make([]math3d.Vec3, len(m.Positions)),
		UVs:       make([]math3d.Vec2, len(m.UVs)),
		Normals:   make([]math3d.Vec3, len(m.Normals)),
		Faces:     make([]Face, len(m.Faces)),
		Materials: make([]Material, len(m.Materials)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Positions, m.Positions)
	copy(clone.UVs, m.UVs)
	copy(clone.Normals, m.Normals)
	copy(clone.Faces, m.Faces)
	copy(clone.Materials, m.Materials)
	return clone
}

// GetMaterial returns the material at index i.
// Returns nil if index is out of bounds or -1.
func (m *Mesh) GetMaterial(i int) *Material {
	if i < 0 || i >= len(m.Materials) {
		return nil
	}
	return &m.Materials[i]
}

// ToModel converts the mesh into a render model drawn with shader.
// Smooth normals are generated first when some corners lack one; corners
// without a uv get (0, 0).
func (m *Mesh) ToModel(shader render.PixelShader) *render.Model {
	if !m.HasNormals() {
		m.CalculateSmoothNormals()
	}

	model := render.NewModel(m.Name, shader)
	model.Vertices = m.Positions
	model.Normals = m.Normals

	n := 3 * len(m.Faces)
	model.VertexIndices = make([]int, 0, n)
	model.NormalIndices = make([]int, 0, n)
	for _, f := range m.Faces {
		model.VertexIndices = append(model.VertexIndices, f.V[:]...)
		model.NormalIndices = append(model.NormalIndices, f.N[:]...)
	}

	if len(m.UVs) == 0 {
		return model
	}

	model.UVs = m.UVs
	missing := -1
	model.UVIndices = make([]int, 0, n)
	for _, f := range m.Faces {
		for _, t := range f.T {
			if t < 0 || t >= len(m.UVs) {
				if missing < 0 {
					missing = len(model.UVs)
					model.UVs = append(model.UVs[:len(model.UVs):len(model.UVs)], math3d.Vec2{})
				}
				t = missing
			}
			model.UVIndices = append(model.UVIndices, t)
		}
	}
	return model
}
