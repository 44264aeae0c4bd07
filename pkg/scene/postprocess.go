package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/xscene/pkg/math"
)

// ErrValidation reports a scene that fails structural validation.
var ErrValidation = errors.New("scene validation failed")

// Process is a bit set of post-processing passes.
type Process uint32

const (
	Triangulate Process = 1 << iota
	FindDegenerates
	JoinIdenticalVertices
	GenNormals
	FlipUVs
	ConvertToLeftHanded
	GenBoundingBoxes
	ValidateDataStructure
)

// processNames maps pass names to flags, for configuration files and CLI use.
var processNames = map[string]Process{
	"triangulate":             Triangulate,
	"find-degenerates":        FindDegenerates,
	"join-identical-vertices": JoinIdenticalVertices,
	"gen-normals":             GenNormals,
	"flip-uvs":                FlipUVs,
	"convert-to-left-handed":  ConvertToLeftHanded,
	"gen-bounding-boxes":      GenBoundingBoxes,
	"validate":                ValidateDataStructure,
}

// ParseProcess resolves a pass name to its flag.
func ParseProcess(name string) (Process, error) {
	if p, ok := processNames[name]; ok {
		return p, nil
	}
	return 0, fmt.Errorf("unknown post-process pass %q", name)
}

// DefaultProcess is the pass set applied when no explicit selection is made.
const DefaultProcess = Triangulate | FindDegenerates | JoinIdenticalVertices |
	GenNormals | GenBoundingBoxes | ValidateDataStructure

// Apply runs the selected passes over the scene. Passes run in a fixed order
// regardless of flag order: topology first, then attributes, then coordinate
// conversion, validation last. A validation failure is fatal and leaves the
// scene unusable.
func Apply(s *Scene, passes Process) error {
	if passes&Triangulate != 0 {
		for _, m := range s.Meshes {
			triangulate(m)
		}
	}
	if passes&FindDegenerates != 0 {
		for _, m := range s.Meshes {
			removeDegenerates(m)
		}
	}
	if passes&JoinIdenticalVertices != 0 {
		for _, m := range s.Meshes {
			joinIdenticalVertices(m)
		}
	}
	if passes&GenNormals != 0 {
		for _, m := range s.Meshes {
			genNormals(m)
		}
	}
	if passes&FlipUVs != 0 {
		for _, m := range s.Meshes {
			for i := range m.UVs {
				m.UVs[i][1] = 1 - m.UVs[i][1]
			}
		}
	}
	if passes&ConvertToLeftHanded != 0 {
		convertToLeftHanded(s)
	}
	if passes&GenBoundingBoxes != 0 {
		for _, m := range s.Meshes {
			m.BoundsMin, m.BoundsMax = m.Bounds()
		}
	}
	if passes&ValidateDataStructure != 0 {
		return validate(s)
	}
	return nil
}

// triangulate fans every face with more than three vertices around its first
// vertex. A k-gon yields k-2 triangles.
func triangulate(m *Mesh) {
	needed := false
	for _, f := range m.Faces {
		if len(f.Indices) > 3 {
			needed = true
			break
		}
	}
	if !needed {
		return
	}

	faces := make([]Face, 0, len(m.Faces))
	var mats []uint32
	if len(m.FaceMaterials) == len(m.Faces) {
		mats = make([]uint32, 0, len(m.Faces))
	}
	for fi, f := range m.Faces {
		if len(f.Indices) <= 3 {
			faces = append(faces, f)
			if mats != nil {
				mats = append(mats, m.FaceMaterials[fi])
			}
			continue
		}
		for i := 1; i+1 < len(f.Indices); i++ {
			faces = append(faces, Face{Indices: []uint32{f.Indices[0], f.Indices[i], f.Indices[i+1]}})
			if mats != nil {
				mats = append(mats, m.FaceMaterials[fi])
			}
		}
	}
	m.Faces = faces
	if mats != nil {
		m.FaceMaterials = mats
	}
}

// removeDegenerates drops faces that reference fewer than three distinct
// vertices.
func removeDegenerates(m *Mesh) {
	faces := m.Faces[:0]
	var mats []uint32
	trackMats := len(m.FaceMaterials) == len(m.Faces)
	if trackMats {
		mats = m.FaceMaterials[:0]
	}
	for fi, f := range m.Faces {
		if distinctIndices(f.Indices) < 3 {
			continue
		}
		faces = append(faces, f)
		if trackMats {
			mats = append(mats, m.FaceMaterials[fi])
		}
	}
	m.Faces = faces
	if trackMats {
		m.FaceMaterials = mats
	}
}

func indicesInRange(idx []uint32, n int) bool {
	for _, i := range idx {
		if int(i) >= n {
			return false
		}
	}
	return true
}

func distinctIndices(idx []uint32) int {
	switch len(idx) {
	case 0, 1:
		return len(idx)
	case 3:
		if idx[0] == idx[1] && idx[1] == idx[2] {
			return 1
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
			return 2
		}
		return 3
	}
	seen := make(map[uint32]struct{}, len(idx))
	for _, i := range idx {
		seen[i] = struct{}{}
	}
	return len(seen)
}

// vertexKey is the full attribute tuple of one vertex; vertices join only
// when every attribute matches exactly.
type vertexKey struct {
	pos    [3]float32
	normal [3]float32
	uv     [2]float32
	color  [4]float32
}

// joinIdenticalVertices collapses vertices with identical attributes and
// remaps faces and bone weight tables. Running it twice is a no-op.
func joinIdenticalVertices(m *Mesh) {
	if len(m.Positions) == 0 {
		return
	}
	hasN := len(m.Normals) == len(m.Positions)
	hasUV := len(m.UVs) == len(m.Positions)
	hasC := len(m.Colors) == len(m.Positions)

	remap := make([]uint32, len(m.Positions))
	seen := make(map[vertexKey]uint32, len(m.Positions))
	var positions [][3]float32
	var normals [][3]float32
	var uvs [][2]float32
	var colors [][4]float32

	for i := range m.Positions {
		key := vertexKey{pos: m.Positions[i]}
		if hasN {
			key.normal = m.Normals[i]
		}
		if hasUV {
			key.uv = m.UVs[i]
		}
		if hasC {
			key.color = m.Colors[i]
		}
		if j, ok := seen[key]; ok {
			remap[i] = j
			continue
		}
		j := uint32(len(positions))
		seen[key] = j
		remap[i] = j
		positions = append(positions, m.Positions[i])
		if hasN {
			normals = append(normals, m.Normals[i])
		}
		if hasUV {
			uvs = append(uvs, m.UVs[i])
		}
		if hasC {
			colors = append(colors, m.Colors[i])
		}
	}
	if len(positions) == len(m.Positions) {
		return
	}

	m.Positions = positions
	m.Normals = normals
	m.UVs = uvs
	m.Colors = colors
	for fi := range m.Faces {
		idx := m.Faces[fi].Indices
		for k := range idx {
			if int(idx[k]) < len(remap) {
				idx[k] = remap[idx[k]]
			}
		}
	}
	for _, b := range m.Bones {
		kept := b.Weights[:0]
		assigned := make(map[uint32]struct{}, len(b.Weights))
		for _, w := range b.Weights {
			v := w.Vertex
			if int(v) < len(remap) {
				v = remap[v]
			}
			if _, dup := assigned[v]; dup {
				continue
			}
			assigned[v] = struct{}{}
			kept = append(kept, VertexWeight{Vertex: v, Weight: w.Weight})
		}
		b.Weights = kept
	}
}

// genNormals computes smooth per-vertex normals by area-weighted face normal
// accumulation. Meshes that already carry normals are left alone.
func genNormals(m *Mesh) {
	if m.HasNormals() || len(m.Positions) == 0 {
		return
	}
	acc := make([]math.Vec3, len(m.Positions))
	for _, f := range m.Faces {
		if len(f.Indices) < 3 || !indicesInRange(f.Indices, len(m.Positions)) {
			// out-of-range faces are left for validation to report
			continue
		}
		a := math.FromArr(m.Positions[f.Indices[0]])
		b := math.FromArr(m.Positions[f.Indices[1]])
		c := math.FromArr(m.Positions[f.Indices[2]])
		n := b.Sub(a).Cross(c.Sub(a))
		for _, idx := range f.Indices {
			acc[idx] = acc[idx].Add(n)
		}
	}
	m.Normals = make([][3]float32, len(m.Positions))
	for i, n := range acc {
		m.Normals[i] = n.Normalize().Arr()
	}
}

// convertToLeftHanded mirrors the scene across the XY plane and reverses face
// winding so front faces stay front-facing.
func convertToLeftHanded(s *Scene) {
	if s.Root != nil {
		mirrorNode(s.Root)
	}
	for _, m := range s.Meshes {
		for i := range m.Positions {
			m.Positions[i][2] = -m.Positions[i][2]
		}
		for i := range m.Normals {
			m.Normals[i][2] = -m.Normals[i][2]
		}
		for fi := range m.Faces {
			idx := m.Faces[fi].Indices
			for l, r := 0, len(idx)-1; l < r; l, r = l+1, r-1 {
				idx[l], idx[r] = idx[r], idx[l]
			}
		}
		for _, b := range m.Bones {
			b.Offset = mirrorMat(b.Offset)
		}
	}
	for _, a := range s.Animations {
		for _, c := range a.Channels {
			for i := range c.PositionKeys {
				c.PositionKeys[i].Value[2] = -c.PositionKeys[i].Value[2]
			}
			for i := range c.RotationKeys {
				c.RotationKeys[i].Value.X = -c.RotationKeys[i].Value.X
				c.RotationKeys[i].Value.Y = -c.RotationKeys[i].Value.Y
			}
		}
	}
}

func mirrorNode(n *Node) {
	n.Transform = mirrorMat(n.Transform)
	for _, c := range n.Children {
		mirrorNode(c)
	}
}

// mirrorMat conjugates the transform with diag(1,1,-1): every element with
// exactly one Z index flips sign.
func mirrorMat(m math.Mat4) math.Mat4 {
	m[2], m[6], m[14] = -m[2], -m[6], -m[14]
	m[8], m[9], m[11] = -m[8], -m[9], -m[11]
	return m
}

// validate checks referential integrity of the whole scene.
func validate(s *Scene) error {
	for mi, m := range s.Meshes {
		nv := uint32(len(m.Positions))
		if len(m.Normals) != 0 && len(m.Normals) != int(nv) {
			return fmt.Errorf("%w: mesh %d: %d normals for %d vertices", ErrValidation, mi, len(m.Normals), nv)
		}
		if len(m.UVs) != 0 && len(m.UVs) != int(nv) {
			return fmt.Errorf("%w: mesh %d: %d texture coords for %d vertices", ErrValidation, mi, len(m.UVs), nv)
		}
		if len(m.Colors) != 0 && len(m.Colors) != int(nv) {
			return fmt.Errorf("%w: mesh %d: %d colors for %d vertices", ErrValidation, mi, len(m.Colors), nv)
		}
		if len(m.FaceMaterials) != 0 && len(m.FaceMaterials) != len(m.Faces) {
			return fmt.Errorf("%w: mesh %d: %d material indices for %d faces", ErrValidation, mi, len(m.FaceMaterials), len(m.Faces))
		}
		for fi, f := range m.Faces {
			if len(f.Indices) < 3 {
				return fmt.Errorf("%w: mesh %d: face %d has %d indices", ErrValidation, mi, fi, len(f.Indices))
			}
			for _, idx := range f.Indices {
				if idx >= nv {
					return fmt.Errorf("%w: mesh %d: face %d references vertex %d of %d", ErrValidation, mi, fi, idx, nv)
				}
			}
		}
		for _, fm := range m.FaceMaterials {
			if int(fm) >= len(s.Materials) {
				return fmt.Errorf("%w: mesh %d: material index %d of %d", ErrValidation, mi, fm, len(s.Materials))
			}
		}
		for _, b := range m.Bones {
			for _, w := range b.Weights {
				if w.Vertex >= nv {
					return fmt.Errorf("%w: mesh %d: bone %q weights vertex %d of %d", ErrValidation, mi, b.Name, w.Vertex, nv)
				}
			}
		}
	}
	return validateNode(s, s.Root)
}

func validateNode(s *Scene, n *Node) error {
	if n == nil {
		return nil
	}
	for _, mi := range n.Meshes {
		if mi < 0 || mi >= len(s.Meshes) {
			return fmt.Errorf("%w: node %q references mesh %d of %d", ErrValidation, n.Name, mi, len(s.Meshes))
		}
	}
	for _, c := range n.Children {
		if err := validateNode(s, c); err != nil {
			return err
		}
	}
	return nil
}
