package models

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/taigrr/penumbra/pkg/math3d"
	"github.com/taigrr/penumbra/pkg/render"
)

// GLTFLoader loads glTF/GLB files into Mesh format.
type GLTFLoader struct {
	// Options
	CalculateNormals bool
	SmoothNormals    bool
	Textures         bool // Decode base color textures
	MaxTextureSize   int  // Downscale textures above this size; 0 keeps them
}

// NewGLTFLoader creates a new glTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{
		CalculateNormals: true,
		SmoothNormals:    true,
		Textures:         true,
		MaxTextureSize:   1024,
	}
}

// LoadGLTF loads a .gltf or .glb file with default options.
func LoadGLTF(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// Load loads a glTF or GLB file and returns a Mesh. All triangle
// primitives of all meshes are merged; winding is kept as stored, with
// counter-clockwise front faces.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	mesh := NewMesh(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))

	if err := l.loadMaterials(doc, filepath.Dir(path), mesh); err != nil {
		return nil, err
	}

	// Process all meshes in the document
	for _, m := range doc.Meshes {
		if err := processMesh(doc, m, mesh); err != nil {
			return nil, fmt.Errorf("process mesh %q: %w", m.Name, err)
		}
	}
	if len(mesh.Faces) == 0 {
		return nil, ErrNoGeometry
	}

	if l.CalculateNormals && !mesh.HasNormals() {
		if l.SmoothNormals {
			mesh.CalculateSmoothNormals()
		} else {
			mesh.CalculateNormals()
		}
	}

	mesh.CalculateBounds()
	return mesh, nil
}

// loadMaterials reads base colors and, when enabled, base color textures.
func (l *GLTFLoader) loadMaterials(doc *gltf.Document, dir string, mesh *Mesh) error {
	for _, mat := range doc.Materials {
		m := Material{Name: mat.Name, BaseColor: math3d.V3(1, 1, 1)}
		pbr := mat.PBRMetallicRoughness
		if pbr != nil && pbr.BaseColorFactor != nil {
			f := pbr.BaseColorFactor
			m.BaseColor = math3d.V3(f[0], f[1], f[2])
		}
		if l.Textures && pbr != nil && pbr.BaseColorTexture != nil {
			tex, err := l.loadTexture(doc, dir, pbr.BaseColorTexture.Index)
			if err != nil {
				return fmt.Errorf("material %q: %w", mat.Name, err)
			}
			m.BaseMap = tex
		}
		mesh.Materials = append(mesh.Materials, m)
	}
	return nil
}

func (l *GLTFLoader) loadTexture(doc *gltf.Document, dir string, index int) (*render.Texture[math3d.Vec3], error) {
	if index < 0 || index >= len(doc.Textures) || doc.Textures[index].Source == nil {
		return nil, nil
	}
	img := doc.Images[*doc.Textures[index].Source]

	var data []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if bv.ByteOffset+bv.ByteLength > len(buf.Data) {
			return nil, fmt.Errorf("image %q: buffer view out of range", img.Name)
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case img.IsEmbeddedResource():
		var err error
		data, err = img.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("decode image %q: %w", img.Name, err)
		}
	case img.URI != "":
		var err error
		data, err = os.ReadFile(filepath.Join(dir, img.URI))
		if err != nil {
			return nil, fmt.Errorf("read image: %w", err)
		}
	default:
		return nil, nil
	}

	return render.DecodeTexture(bytes.NewReader(data), l.MaxTextureSize)
}

// processMesh extracts geometry from a glTF mesh.
func processMesh(doc *gltf.Document, m *gltf.Mesh, mesh *Mesh) error {
	for _, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}

		// Get position accessor
		posIdx, ok := prim.Attributes[gltf.POSITION]
		if !ok {
			continue
		}
		positions, err := readVec3(doc, posIdx)
		if err != nil {
			return fmt.Errorf("read positions: %w", err)
		}

		var normals []math3d.Vec3
		if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
			if normals, err = readVec3(doc, idx); err != nil {
				return fmt.Errorf("read normals: %w", err)
			}
		}

		var uvs []math3d.Vec2
		if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
			if uvs, err = readVec2(doc, idx); err != nil {
				return fmt.Errorf("read uvs: %w", err)
			}
		}

		var indices []int
		if prim.Indices != nil {
			if indices, err = readIndices(doc, *prim.Indices); err != nil {
				return fmt.Errorf("read indices: %w", err)
			}
		} else {
			indices = make([]int, len(positions))
			for i := range indices {
				indices[i] = i
			}
		}

		material := -1
		if prim.Material != nil {
			material = *prim.Material
		}

		basePos, baseNorm, baseUV := len(mesh.Positions), len(mesh.Normals), len(mesh.UVs)
		mesh.Positions = append(mesh.Positions, positions...)
		if len(normals) == len(positions) {
			mesh.Normals = append(mesh.Normals, normals...)
		} else {
			baseNorm = -1
		}
		if len(uvs) == len(positions) {
			for _, uv := range uvs {
				// glTF puts v=0 at the top of the image
				mesh.UVs = append(mesh.UVs, math3d.V2(uv.X, 1-uv.Y))
			}
		} else {
			baseUV = -1
		}

		for i := 0; i+2 < len(indices); i += 3 {
			f := Face{Material: material}
			for k := range 3 {
				idx := indices[i+k]
				if idx < 0 || idx >= len(positions) {
					return fmt.Errorf("index %d with %d positions: %w", idx, len(positions), render.ErrIndexRange)
				}
				f.V[k] = basePos + idx
				f.N[k] = offset(baseNorm, idx)
				f.T[k] = offset(baseUV, idx)
			}
			mesh.Faces = append(mesh.Faces, f)
		}
	}

	return nil
}

func offset(base, idx int) int {
	if base < 0 {
		return -1
	}
	return base + idx
}

// accessorBytes returns the buffer bytes of an accessor together with its
// start offset and element stride.
func accessorBytes(doc *gltf.Document, acr *gltf.Accessor, elemSize int) (data []byte, start, stride int, err error) {
	if acr.BufferView == nil {
		return nil, 0, 0, errors.New("accessor has no buffer view")
	}
	bv := doc.BufferViews[*acr.BufferView]
	buf := doc.Buffers[bv.Buffer]
	if buf.Data == nil {
		return nil, 0, 0, errors.New("buffer has no data")
	}

	start = bv.ByteOffset + acr.ByteOffset
	stride = bv.ByteStride
	if stride == 0 {
		stride = elemSize
	}
	if acr.Count > 0 && start+(acr.Count-1)*stride+elemSize > len(buf.Data) {
		return nil, 0, 0, fmt.Errorf("accessor overruns buffer (%d bytes)", len(buf.Data))
	}
	return buf.Data, start, stride, nil
}

func readFloats(doc *gltf.Document, accessorIdx int, want gltf.AccessorType, n int) ([][]float64, error) {
	acr := doc.Accessors[accessorIdx]
	if acr.Type != want || acr.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("accessor %v/%v: %w", acr.Type, acr.ComponentType, ErrUnsupportedFormat)
	}
	data, start, stride, err := accessorBytes(doc, acr, 4*n)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, acr.Count)
	for i := range acr.Count {
		off := start + i*stride
		out[i] = make([]float64, n)
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[off+4*j:])
			out[i][j] = float64(math.Float32frombits(bits))
		}
	}
	return out, nil
}

func readVec3(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	raw, err := readFloats(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec3, len(raw))
	for i, f := range raw {
		out[i] = math3d.V3(f[0], f[1], f[2])
	}
	return out, nil
}

func readVec2(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	raw, err := readFloats(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	out := make([]math3d.Vec2, len(raw))
	for i, f := range raw {
		out[i] = math3d.V2(f[0], f[1])
	}
	return out, nil
}

// readIndices reads a scalar unsigned index accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	acr := doc.Accessors[accessorIdx]
	if acr.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("index accessor %v: %w", acr.Type, ErrUnsupportedFormat)
	}

	var size int
	switch acr.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("index component %v: %w", acr.ComponentType, ErrUnsupportedFormat)
	}

	data, start, stride, err := accessorBytes(doc, acr, size)
	if err != nil {
		return nil, err
	}

	out := make([]int, acr.Count)
	for i := range acr.Count {
		b := data[start+i*stride:]
		switch size {
		case 1:
			out[i] = int(b[0])
		case 2:
			out[i] = int(binary.LittleEndian.Uint16(b))
		case 4:
			out[i] = int(binary.LittleEndian.Uint32(b))
		}
	}
	return out, nil
}
