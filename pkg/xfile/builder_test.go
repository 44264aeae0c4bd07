package xfile

import (
	"errors"
	"testing"

	"github.com/Faultbox/xscene/pkg/scene"
)

func buildText(t *testing.T, src string, lenient bool) (*scene.Scene, error) {
	t.Helper()
	doc := mustParseText(t, src)
	return NewSceneBuilder(lenient).Build(doc)
}

func mustBuildText(t *testing.T, src string) *scene.Scene {
	t.Helper()
	s, err := buildText(t, src, false)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return s
}

const simpleMesh = `Mesh tri {
 3;
 0;0;0;,
 1;0;0;,
 0;1;0;;
 1;
 3;0,1,2;;
}`

func TestBuildFrameHierarchy(t *testing.T) {
	s := mustBuildText(t, `Frame Root {
 FrameTransformMatrix {
  1,0,0,0,0,1,0,0,0,0,1,0,5,6,7,1;;
 }
 Frame Child {
  `+simpleMesh+`
 }
}`)

	if s.Root.Name != "Root" {
		t.Fatalf("root: got %q", s.Root.Name)
	}
	tr := s.Root.Transform.Translation()
	if tr.X != 5 || tr.Y != 6 || tr.Z != 7 {
		t.Errorf("root translation: got %v", tr)
	}

	child := s.Root.Find("Child")
	if child == nil {
		t.Fatal("child node missing")
	}
	if len(child.Meshes) != 1 {
		t.Fatalf("child meshes: got %v", child.Meshes)
	}
	mesh := s.Meshes[child.Meshes[0]]
	if len(mesh.Positions) != 3 || len(mesh.Faces) != 1 {
		t.Errorf("mesh: %d vertices, %d faces", len(mesh.Positions), len(mesh.Faces))
	}
	if mesh.Faces[0].Indices[2] != 2 {
		t.Errorf("face: got %v", mesh.Faces[0].Indices)
	}
}

func TestBuildCollapsesAnonymousFrames(t *testing.T) {
	s := mustBuildText(t, `Frame {
 FrameTransformMatrix {
  1,0,0,0,0,1,0,0,0,0,1,0,10,0,0,1;;
 }
 Frame Inner {
  FrameTransformMatrix {
   1,0,0,0,0,1,0,0,0,0,1,0,0,20,0,1;;
  }
  `+simpleMesh+`
 }
}`)

	// the anonymous wrapper is folded into Inner
	if s.Root.Name != "Inner" {
		t.Fatalf("root: got %q", s.Root.Name)
	}
	tr := s.Root.Transform.Translation()
	if tr.X != 10 || tr.Y != 20 {
		t.Errorf("merged translation: got %v", tr)
	}
}

func TestBuildMeshReference(t *testing.T) {
	s := mustBuildText(t, simpleMesh+"\nFrame Root {\n {tri}\n}")
	root := s.Root.Find("Root")
	if root == nil || len(root.Meshes) != 1 {
		t.Fatalf("referenced mesh not attached: %+v", s.Root)
	}
	if s.Meshes[root.Meshes[0]].Name != "tri" {
		t.Errorf("wrong mesh attached")
	}
}

func TestBuildDanglingMeshReference(t *testing.T) {
	_, err := buildText(t, "Frame Root {\n {ghost}\n}", false)
	if !errors.Is(err, ErrDanglingReference) {
		t.Errorf("got %v, want ErrDanglingReference", err)
	}
}

func TestBuildMaterials(t *testing.T) {
	s := mustBuildText(t, `Material shiny {
 1.0;0.0;0.0;1.0;;
 64.0;
 1.0;1.0;1.0;;
 0.1;0.1;0.1;;
 TextureFilename {
  "diffuse.png";
 }
}
Mesh quad {
 4;
 0;0;0;, 1;0;0;, 1;1;0;, 0;1;0;;
 2;
 3;0,1,2;,
 3;0,2,3;;
 MeshMaterialList {
  1;
  1;
  0;
  {shiny}
 }
}`)

	if len(s.Materials) != 1 {
		t.Fatalf("materials: got %d", len(s.Materials))
	}
	mat := s.Materials[0]
	if mat.Name != "shiny" || mat.SpecularExponent != 64 || mat.Texture != "diffuse.png" {
		t.Errorf("material: %+v", mat)
	}
	if mat.Diffuse != [4]float32{1, 0, 0, 1} {
		t.Errorf("diffuse: got %v", mat.Diffuse)
	}

	mesh := s.Meshes[0]
	// a single face index is replicated across all faces
	if len(mesh.FaceMaterials) != 2 || mesh.FaceMaterials[0] != 0 || mesh.FaceMaterials[1] != 0 {
		t.Errorf("face materials: got %v", mesh.FaceMaterials)
	}
}

func TestBuildInlineMaterial(t *testing.T) {
	s := mustBuildText(t, `Mesh m {
 3;
 0;0;0;, 1;0;0;, 0;1;0;;
 1;
 3;0,1,2;;
 MeshMaterialList {
  1;
  1;
  0;
  Material {
   0.0;1.0;0.0;1.0;;
   2.0;
   0;0;0;;
   0;0;0;;
  }
 }
}`)
	if len(s.Materials) != 1 || s.Materials[0].Diffuse != [4]float32{0, 1, 0, 1} {
		t.Errorf("inline material: %+v", s.Materials)
	}
}

func TestBuildDanglingMaterialReference(t *testing.T) {
	_, err := buildText(t, `Mesh m {
 3;
 0;0;0;, 1;0;0;, 0;1;0;;
 1;
 3;0,1,2;;
 MeshMaterialList {
  1;
  1;
  0;
  {missing}
 }
}`, false)
	if !errors.Is(err, ErrDanglingReference) {
		t.Errorf("got %v, want ErrDanglingReference", err)
	}
}

func TestBuildNormalsAndUVs(t *testing.T) {
	s := mustBuildText(t, `Mesh m {
 3;
 0;0;0;, 1;0;0;, 0;1;0;;
 1;
 3;0,1,2;;
 MeshNormals {
  1;
  0.0;0.0;1.0;;
  1;
  3;0,0,0;;
 }
 MeshTextureCoords {
  3;
  0.0;0.0;,
  1.0;0.0;,
  0.0;1.0;;
 }
}`)
	mesh := s.Meshes[0]
	if !mesh.HasNormals() {
		t.Fatal("normals missing")
	}
	for i := 0; i < 3; i++ {
		if mesh.Normals[i] != [3]float32{0, 0, 1} {
			t.Errorf("normal %d: got %v", i, mesh.Normals[i])
		}
	}
	if mesh.UVs[1] != [2]float32{1, 0} {
		t.Errorf("uv 1: got %v", mesh.UVs[1])
	}
}

func TestBuildNormalsFaceCountMismatch(t *testing.T) {
	_, err := buildText(t, `Mesh m {
 3;
 0;0;0;, 1;0;0;, 0;1;0;;
 1;
 3;0,1,2;;
 MeshNormals {
  1;
  0.0;0.0;1.0;;
  2;
  3;0,0,0;,
  3;0,0,0;;
 }
}`, false)
	if err == nil {
		t.Error("expected error for normal face count mismatch")
	}
}

func TestBuildSkinWeights(t *testing.T) {
	s := mustBuildText(t, `Mesh m {
 3;
 0;0;0;, 1;0;0;, 0;1;0;;
 1;
 3;0,1,2;;
 SkinWeights {
  "Arm";
  2;
  0,2;
  0.75,0.25;
  1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1;;
 }
}`)
	mesh := s.Meshes[0]
	if len(mesh.Bones) != 1 {
		t.Fatalf("bones: got %d", len(mesh.Bones))
	}
	bone := mesh.Bones[0]
	if bone.Name != "Arm" || len(bone.Weights) != 2 {
		t.Fatalf("bone: %+v", bone)
	}
	if bone.Weights[1].Vertex != 2 || bone.Weights[1].Weight != 0.25 {
		t.Errorf("weight: got %+v", bone.Weights[1])
	}
}

func TestBuildFaceIndexOutOfRange(t *testing.T) {
	_, err := buildText(t, `Mesh m {
 3;
 0;0;0;, 1;0;0;, 0;1;0;;
 1;
 3;0,1,9;;
}`, false)
	if err == nil {
		t.Error("expected error for face index beyond vertex count")
	}
}

func TestBuildSkinWeightTableTooLong(t *testing.T) {
	_, err := buildText(t, `Mesh m {
 3;
 0;0;0;, 1;0;0;, 0;1;0;;
 1;
 3;0,1,2;;
 SkinWeights {
  "Arm";
  4;
  0,1,2,0;
  0.25,0.25,0.25,0.25;
  1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1;;
 }
}`, false)
	if !errors.Is(err, ErrSkinTopologyMismatch) {
		t.Errorf("got %v, want ErrSkinTopologyMismatch", err)
	}
}

func TestBuildSkinTopologyMismatch(t *testing.T) {
	_, err := buildText(t, `Mesh m {
 3;
 0;0;0;, 1;0;0;, 0;1;0;;
 1;
 3;0,1,2;;
 SkinWeights {
  "Arm";
  1;
  9;
  1.0;
  1,0,0,0,0,1,0,0,0,0,1,0,0,0,0,1;;
 }
}`, false)
	if !errors.Is(err, ErrSkinTopologyMismatch) {
		t.Errorf("got %v, want ErrSkinTopologyMismatch", err)
	}
}

const outOfOrderAnim = `Frame Root {
}
AnimationSet Walk {
 Animation {
  {Root}
  AnimationKey {
   2;
   3;
   0; 3; 0.0, 0.0, 0.0;;,
   5; 3; 5.0, 0.0, 0.0;;,
   2; 3; 2.0, 0.0, 0.0;;;
  }
 }
}`

func TestBuildKeyframeOrderStrict(t *testing.T) {
	_, err := buildText(t, outOfOrderAnim, false)
	if !errors.Is(err, ErrInvalidKeyframeOrder) {
		t.Errorf("got %v, want ErrInvalidKeyframeOrder", err)
	}
}

func TestBuildKeyframeOrderLenient(t *testing.T) {
	s, err := buildText(t, outOfOrderAnim, true)
	if err != nil {
		t.Fatalf("lenient build: %v", err)
	}
	ch := s.Animations[0].Channel("Root")
	if ch == nil {
		t.Fatal("channel missing")
	}
	times := []float64{}
	for _, k := range ch.PositionKeys {
		times = append(times, k.Time)
	}
	want := []float64{0, 2, 5}
	for i := range want {
		if times[i] != want[i] {
			t.Fatalf("sorted times: got %v, want %v", times, want)
		}
	}
}

func TestBuildRotationKeys(t *testing.T) {
	s := mustBuildText(t, `Frame Root {
}
AnimationSet Spin {
 Animation {
  {Root}
  AnimationKey {
   0;
   1;
   0; 4; 1.0, 0.0, 0.0, 0.0;;;
  }
 }
}`)
	ch := s.Animations[0].Channel("Root")
	if len(ch.RotationKeys) != 1 {
		t.Fatalf("rotation keys: got %d", len(ch.RotationKeys))
	}
	q := ch.RotationKeys[0].Value
	// wire order is w, x, y, z
	if q.W != 1 || q.X != 0 {
		t.Errorf("quat: got %+v", q)
	}
}

func TestBuildMatrixKeysDecompose(t *testing.T) {
	s := mustBuildText(t, `Frame Root {
}
AnimationSet Move {
 Animation {
  {Root}
  AnimationKey {
   4;
   1;
   0; 16; 2.0,0.0,0.0,0.0, 0.0,2.0,0.0,0.0, 0.0,0.0,2.0,0.0, 3.0,4.0,5.0,1.0;;;
  }
 }
}`)
	ch := s.Animations[0].Channel("Root")
	if len(ch.PositionKeys) != 1 || len(ch.RotationKeys) != 1 || len(ch.ScaleKeys) != 1 {
		t.Fatalf("decomposed channels: %d pos, %d rot, %d scale",
			len(ch.PositionKeys), len(ch.RotationKeys), len(ch.ScaleKeys))
	}
	if ch.PositionKeys[0].Value != [3]float32{3, 4, 5} {
		t.Errorf("position: got %v", ch.PositionKeys[0].Value)
	}
	if ch.ScaleKeys[0].Value != [3]float32{2, 2, 2} {
		t.Errorf("scale: got %v", ch.ScaleKeys[0].Value)
	}
}

func TestBuildAnimTicksPerSecond(t *testing.T) {
	s := mustBuildText(t, "AnimTicksPerSecond {\n 4800;\n}")
	if s.TicksPerSecond != 4800 {
		t.Errorf("ticks per second: got %g", s.TicksPerSecond)
	}
}
