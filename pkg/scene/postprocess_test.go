package scene

import (
	"errors"
	"testing"

	"github.com/Faultbox/xscene/pkg/math"
)

func quadMesh() *Mesh {
	return &Mesh{
		Name: "quad",
		Positions: [][3]float32{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		},
		Faces:         []Face{{Indices: []uint32{0, 1, 2, 3}}},
		FaceMaterials: []uint32{0},
	}
}

func sceneWith(meshes ...*Mesh) *Scene {
	s := &Scene{
		Root:      &Node{Name: "root"},
		Meshes:    meshes,
		Materials: []*Material{{Name: "default"}},
	}
	for i := range meshes {
		s.Root.Meshes = append(s.Root.Meshes, i)
	}
	return s
}

func TestTriangulate(t *testing.T) {
	tests := []struct {
		name      string
		indices   []uint32
		wantFaces int
	}{
		{"triangle untouched", []uint32{0, 1, 2}, 1},
		{"quad", []uint32{0, 1, 2, 3}, 2},
		{"pentagon", []uint32{0, 1, 2, 3, 0}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{
				Positions:     make([][3]float32, 5),
				Faces:         []Face{{Indices: tt.indices}},
				FaceMaterials: []uint32{7},
			}
			triangulate(m)
			if len(m.Faces) != tt.wantFaces {
				t.Fatalf("faces: got %d, want %d", len(m.Faces), tt.wantFaces)
			}
			if len(m.FaceMaterials) != tt.wantFaces {
				t.Fatalf("face materials: got %d, want %d", len(m.FaceMaterials), tt.wantFaces)
			}
			for i, f := range m.Faces {
				if len(f.Indices) != 3 {
					t.Errorf("face %d has %d indices", i, len(f.Indices))
				}
				if m.FaceMaterials[i] != 7 {
					t.Errorf("face %d lost its material index", i)
				}
			}
		})
	}
}

func TestTriangulateFanOrder(t *testing.T) {
	m := &Mesh{
		Positions: make([][3]float32, 4),
		Faces:     []Face{{Indices: []uint32{0, 1, 2, 3}}},
	}
	triangulate(m)
	want := [][]uint32{{0, 1, 2}, {0, 2, 3}}
	for i, f := range m.Faces {
		for k := range want[i] {
			if f.Indices[k] != want[i][k] {
				t.Fatalf("face %d: got %v, want %v", i, f.Indices, want[i])
			}
		}
	}
}

func TestRemoveDegenerates(t *testing.T) {
	m := &Mesh{
		Positions: make([][3]float32, 4),
		Faces: []Face{
			{Indices: []uint32{0, 1, 2}},
			{Indices: []uint32{0, 0, 1}}, // two distinct vertices
			{Indices: []uint32{3, 3, 3}}, // one distinct vertex
			{Indices: []uint32{1, 2, 3}},
		},
		FaceMaterials: []uint32{0, 1, 2, 3},
	}
	removeDegenerates(m)
	if len(m.Faces) != 2 {
		t.Fatalf("faces: got %d, want 2", len(m.Faces))
	}
	if m.FaceMaterials[0] != 0 || m.FaceMaterials[1] != 3 {
		t.Errorf("face materials: got %v", m.FaceMaterials)
	}
}

func TestJoinIdenticalVertices(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0},
			{1, 0, 0}, // duplicate of 1
		},
		Faces: []Face{
			{Indices: []uint32{0, 1, 2}},
			{Indices: []uint32{0, 3, 2}},
		},
		Bones: []*Bone{{
			Name: "b",
			Weights: []VertexWeight{
				{Vertex: 1, Weight: 0.5},
				{Vertex: 3, Weight: 0.5}, // collapses onto vertex 1
			},
		}},
	}
	joinIdenticalVertices(m)
	if len(m.Positions) != 3 {
		t.Fatalf("vertices: got %d, want 3", len(m.Positions))
	}
	if m.Faces[1].Indices[1] != 1 {
		t.Errorf("remapped face: got %v", m.Faces[1].Indices)
	}
	if len(m.Bones[0].Weights) != 1 || m.Bones[0].Weights[0].Vertex != 1 {
		t.Errorf("bone weights: got %+v", m.Bones[0].Weights)
	}
}

func TestJoinKeepsDistinctAttributes(t *testing.T) {
	// same position but different UVs must stay separate vertices
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 0}, {0, 0, 0}, {1, 0, 0}},
		UVs:       [][2]float32{{0, 0}, {1, 1}, {0, 0}},
		Faces:     []Face{{Indices: []uint32{0, 1, 2}}},
	}
	joinIdenticalVertices(m)
	if len(m.Positions) != 3 {
		t.Errorf("vertices: got %d, want 3", len(m.Positions))
	}
}

func TestJoinIdempotent(t *testing.T) {
	m := quadMesh()
	joinIdenticalVertices(m)
	before := len(m.Positions)
	joinIdenticalVertices(m)
	if len(m.Positions) != before {
		t.Errorf("second join changed vertex count: %d -> %d", before, len(m.Positions))
	}
}

func TestGenNormals(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:     []Face{{Indices: []uint32{0, 1, 2}}},
	}
	genNormals(m)
	if !m.HasNormals() {
		t.Fatal("no normals generated")
	}
	for i, n := range m.Normals {
		if n != [3]float32{0, 0, 1} {
			t.Errorf("normal %d: got %v, want (0 0 1)", i, n)
		}
	}
}

func TestGenNormalsKeepsExisting(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:   [][3]float32{{1, 0, 0}, {1, 0, 0}, {1, 0, 0}},
		Faces:     []Face{{Indices: []uint32{0, 1, 2}}},
	}
	genNormals(m)
	if m.Normals[0] != [3]float32{1, 0, 0} {
		t.Errorf("existing normals overwritten: %v", m.Normals[0])
	}
}

func TestFlipUVs(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		UVs:       [][2]float32{{0, 0}, {1, 0.25}, {0.5, 1}},
		Faces:     []Face{{Indices: []uint32{0, 1, 2}}},
	}
	s := sceneWith(m)
	if err := Apply(s, FlipUVs); err != nil {
		t.Fatal(err)
	}
	want := [][2]float32{{0, 1}, {1, 0.75}, {0.5, 0}}
	for i := range want {
		if m.UVs[i] != want[i] {
			t.Errorf("uv %d: got %v, want %v", i, m.UVs[i], want[i])
		}
	}
}

func TestConvertToLeftHanded(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 1}, {1, 0, 2}, {0, 1, 3}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Faces:     []Face{{Indices: []uint32{0, 1, 2}}},
	}
	s := sceneWith(m)
	s.Root.Transform = math.Translate(1, 2, 3)
	s.Animations = []*Animation{{
		Name: "a",
		Channels: []*Channel{{
			NodeName:     "root",
			PositionKeys: []VecKey{{Time: 0, Value: [3]float32{1, 2, 3}}},
			RotationKeys: []QuatKey{{Time: 0, Value: math.Quat{X: 0.1, Y: 0.2, Z: 0.3, W: 0.9}}},
		}},
	}}

	convertToLeftHanded(s)

	if m.Positions[1] != [3]float32{1, 0, -2} {
		t.Errorf("position: got %v", m.Positions[1])
	}
	if m.Normals[0] != [3]float32{0, 0, -1} {
		t.Errorf("normal: got %v", m.Normals[0])
	}
	if m.Faces[0].Indices[0] != 2 || m.Faces[0].Indices[2] != 0 {
		t.Errorf("winding not reversed: %v", m.Faces[0].Indices)
	}
	if tr := s.Root.Transform.Translation(); tr.Z != -3 {
		t.Errorf("node translation: got %v", tr)
	}
	pk := s.Animations[0].Channels[0].PositionKeys[0].Value
	if pk != [3]float32{1, 2, -3} {
		t.Errorf("position key: got %v", pk)
	}
	rk := s.Animations[0].Channels[0].RotationKeys[0].Value
	if rk.X != float32(-0.1) || rk.Y != float32(-0.2) || rk.Z != float32(0.3) {
		t.Errorf("rotation key: got %+v", rk)
	}
}

// Mirroring is an involution: applying it twice restores the scene.
func TestConvertToLeftHandedTwice(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 1}, {1, 0, 2}, {0, 1, 3}},
		Faces:     []Face{{Indices: []uint32{0, 1, 2}}},
	}
	s := sceneWith(m)
	s.Root.Transform = math.Translate(1, 2, 3)

	convertToLeftHanded(s)
	convertToLeftHanded(s)

	if m.Positions[2] != [3]float32{0, 1, 3} {
		t.Errorf("position not restored: %v", m.Positions[2])
	}
	if m.Faces[0].Indices[0] != 0 {
		t.Errorf("winding not restored: %v", m.Faces[0].Indices)
	}
	if s.Root.Transform != math.Translate(1, 2, 3) {
		t.Errorf("transform not restored: %v", s.Root.Transform)
	}
}

func TestGenBoundingBoxes(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{{-1, 0, 2}, {3, -4, 0}, {0, 5, -6}},
		Faces:     []Face{{Indices: []uint32{0, 1, 2}}},
	}
	s := sceneWith(m)
	if err := Apply(s, GenBoundingBoxes); err != nil {
		t.Fatal(err)
	}
	if m.BoundsMin != [3]float32{-1, -4, -6} {
		t.Errorf("min: got %v", m.BoundsMin)
	}
	if m.BoundsMax != [3]float32{3, 5, 2} {
		t.Errorf("max: got %v", m.BoundsMax)
	}
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name  string
		build func() *Scene
	}{
		{"face index out of range", func() *Scene {
			m := quadMesh()
			m.Faces[0].Indices[0] = 99
			return sceneWith(m)
		}},
		{"normal count mismatch", func() *Scene {
			m := quadMesh()
			m.Normals = [][3]float32{{0, 0, 1}}
			return sceneWith(m)
		}},
		{"face material count mismatch", func() *Scene {
			m := quadMesh()
			m.FaceMaterials = []uint32{0, 0, 0}
			return sceneWith(m)
		}},
		{"material index out of range", func() *Scene {
			m := quadMesh()
			m.FaceMaterials = []uint32{5}
			return sceneWith(m)
		}},
		{"short face", func() *Scene {
			m := quadMesh()
			m.Faces[0].Indices = m.Faces[0].Indices[:2]
			return sceneWith(m)
		}},
		{"bone weight out of range", func() *Scene {
			m := quadMesh()
			m.Bones = []*Bone{{Name: "b", Weights: []VertexWeight{{Vertex: 50, Weight: 1}}}}
			return sceneWith(m)
		}},
		{"node mesh out of range", func() *Scene {
			s := sceneWith(quadMesh())
			s.Root.Meshes = append(s.Root.Meshes, 9)
			return s
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Apply(tt.build(), ValidateDataStructure)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("got %v, want ErrValidation", err)
			}
		})
	}
}

// A hand-built scene with an out-of-range face index must come back as a
// validation error from Apply, not crash the attribute passes that run first.
func TestApplyRejectsBadFaceIndex(t *testing.T) {
	m := &Mesh{
		Positions: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Faces:     []Face{{Indices: []uint32{0, 1, 9}}},
		Bones:     []*Bone{{Name: "b", Weights: []VertexWeight{{Vertex: 9, Weight: 1}}}},
	}
	err := Apply(sceneWith(m), GenNormals|JoinIdenticalVertices|ValidateDataStructure)
	if !errors.Is(err, ErrValidation) {
		t.Errorf("got %v, want ErrValidation", err)
	}
}

func TestValidateAcceptsCleanScene(t *testing.T) {
	s := sceneWith(quadMesh())
	if err := Apply(s, DefaultProcess); err != nil {
		t.Fatalf("default passes on clean scene: %v", err)
	}
}

func TestParseProcess(t *testing.T) {
	p, err := ParseProcess("triangulate")
	if err != nil || p != Triangulate {
		t.Errorf("triangulate: got %v, %v", p, err)
	}
	if _, err := ParseProcess("no-such-pass"); err == nil {
		t.Error("unknown pass should fail")
	}
}
