package xfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Faultbox/xscene/pkg/scene"
)

// Encoder serializes a scene back to the text encoding. Materials are written
// as named top-level objects and referenced from each mesh's material list,
// so a re-imported document resolves to the same material table.
type Encoder struct {
	sb     strings.Builder
	indent int
	double bool

	matNames []string
}

// NewEncoder returns an encoder. doublePrecision selects the 64-bit float
// accuracy field in the emitted header.
func NewEncoder(doublePrecision bool) *Encoder {
	return &Encoder{double: doublePrecision}
}

// EncodeText renders the scene as a text-encoded document.
func EncodeText(s *scene.Scene, doublePrecision bool) []byte {
	e := NewEncoder(doublePrecision)
	return e.Encode(s)
}

// Encode renders the scene.
func (e *Encoder) Encode(s *scene.Scene) []byte {
	e.sb.Reset()
	if e.double {
		e.line("xof 0303txt 0064")
	} else {
		e.line("xof 0303txt 0032")
	}
	e.line("")

	if s.TicksPerSecond > 0 {
		e.open("AnimTicksPerSecond", "")
		e.linef("%d;", int64(s.TicksPerSecond))
		e.close()
	}

	e.matNames = make([]string, len(s.Materials))
	for i, mat := range s.Materials {
		name := mat.Name
		if name == "" {
			name = fmt.Sprintf("Material%d", i)
		}
		e.matNames[i] = name
		e.writeMaterial(name, mat)
	}

	if s.Root != nil {
		e.writeNode(s, s.Root)
	}

	for _, anim := range s.Animations {
		e.writeAnimationSet(anim)
	}
	return []byte(e.sb.String())
}

func (e *Encoder) writeMaterial(name string, mat *scene.Material) {
	e.open("Material", name)
	e.linef("%s;%s;%s;%s;;", e.f(mat.Diffuse[0]), e.f(mat.Diffuse[1]), e.f(mat.Diffuse[2]), e.f(mat.Diffuse[3]))
	e.linef("%s;", e.f(mat.SpecularExponent))
	e.linef("%s;%s;%s;;", e.f(mat.Specular[0]), e.f(mat.Specular[1]), e.f(mat.Specular[2]))
	e.linef("%s;%s;%s;;", e.f(mat.Emissive[0]), e.f(mat.Emissive[1]), e.f(mat.Emissive[2]))
	if mat.Texture != "" {
		e.open("TextureFilename", "")
		e.linef("%s;", strconv.Quote(mat.Texture))
		e.close()
	}
	if mat.NormalMap != "" {
		e.open("NormalmapFilename", "")
		e.linef("%s;", strconv.Quote(mat.NormalMap))
		e.close()
	}
	e.close()
}

func (e *Encoder) writeNode(s *scene.Scene, n *scene.Node) {
	e.open("Frame", n.Name)

	e.open("FrameTransformMatrix", "")
	e.writeMatrix(n.Transform.RowMajor())
	e.close()

	for _, mi := range n.Meshes {
		if mi >= 0 && mi < len(s.Meshes) {
			e.writeMesh(s.Meshes[mi])
		}
	}
	for _, c := range n.Children {
		e.writeNode(s, c)
	}
	e.close()
}

func (e *Encoder) writeMesh(m *scene.Mesh) {
	e.open("Mesh", m.Name)

	e.linef("%d;", len(m.Positions))
	for i, p := range m.Positions {
		e.linef("%s;%s;%s;%s", e.f(p[0]), e.f(p[1]), e.f(p[2]), listSep(i, len(m.Positions)))
	}
	e.linef("%d;", len(m.Faces))
	for i, f := range m.Faces {
		e.linef("%s%s", e.face(f), listSep(i, len(m.Faces)))
	}

	if m.HasNormals() {
		e.open("MeshNormals", "")
		e.linef("%d;", len(m.Normals))
		for i, n := range m.Normals {
			e.linef("%s;%s;%s;%s", e.f(n[0]), e.f(n[1]), e.f(n[2]), listSep(i, len(m.Normals)))
		}
		// normals run parallel to vertices, so the normal faces mirror the
		// mesh faces exactly
		e.linef("%d;", len(m.Faces))
		for i, f := range m.Faces {
			e.linef("%s%s", e.face(f), listSep(i, len(m.Faces)))
		}
		e.close()
	}

	if len(m.UVs) == len(m.Positions) && len(m.UVs) > 0 {
		e.open("MeshTextureCoords", "")
		e.linef("%d;", len(m.UVs))
		for i, uv := range m.UVs {
			e.linef("%s;%s;%s", e.f(uv[0]), e.f(uv[1]), listSep(i, len(m.UVs)))
		}
		e.close()
	}

	if len(m.Colors) == len(m.Positions) && len(m.Colors) > 0 {
		e.open("MeshVertexColors", "")
		e.linef("%d;", len(m.Colors))
		for i, c := range m.Colors {
			e.linef("%d;%s;%s;%s;%s;;%s", i, e.f(c[0]), e.f(c[1]), e.f(c[2]), e.f(c[3]), listSep(i, len(m.Colors)))
		}
		e.close()
	}

	if len(m.FaceMaterials) == len(m.Faces) && len(m.Faces) > 0 {
		e.writeMaterialList(m)
	}

	for _, b := range m.Bones {
		e.writeSkinWeights(b)
	}
	e.close()
}

// writeMaterialList maps the mesh's global material indices down to a local
// list of references.
func (e *Encoder) writeMaterialList(m *scene.Mesh) {
	local := make([]int, 0, 4)
	localOf := make(map[uint32]int)
	for _, g := range m.FaceMaterials {
		if _, ok := localOf[g]; !ok {
			localOf[g] = len(local)
			local = append(local, int(g))
		}
	}

	e.open("MeshMaterialList", "")
	e.linef("%d;", len(local))
	e.linef("%d;", len(m.FaceMaterials))
	parts := make([]string, len(m.FaceMaterials))
	for i, g := range m.FaceMaterials {
		parts[i] = strconv.Itoa(localOf[g])
	}
	e.linef("%s;", strings.Join(parts, ","))
	for _, g := range local {
		if g < len(e.matNames) {
			e.linef("{%s}", e.matNames[g])
		}
	}
	e.close()
}

func (e *Encoder) writeSkinWeights(b *scene.Bone) {
	e.open("SkinWeights", "")
	e.linef("%s;", strconv.Quote(b.Name))
	e.linef("%d;", len(b.Weights))
	idx := make([]string, len(b.Weights))
	w := make([]string, len(b.Weights))
	for i, vw := range b.Weights {
		idx[i] = strconv.FormatUint(uint64(vw.Vertex), 10)
		w[i] = e.f(vw.Weight)
	}
	e.linef("%s;", strings.Join(idx, ","))
	e.linef("%s;", strings.Join(w, ","))
	e.writeMatrix(b.Offset.RowMajor())
	e.close()
}

func (e *Encoder) writeAnimationSet(a *scene.Animation) {
	e.open("AnimationSet", a.Name)
	for _, ch := range a.Channels {
		e.open("Animation", "")
		if ch.NodeName != "" {
			e.linef("{%s}", ch.NodeName)
		}
		if len(ch.RotationKeys) > 0 {
			e.open("AnimationKey", "")
			e.linef("%d;", keyRotation)
			e.linef("%d;", len(ch.RotationKeys))
			for i, k := range ch.RotationKeys {
				q := k.Value
				e.linef("%s;4;%s,%s,%s,%s;;%s", e.t(k.Time),
					e.f(q.W), e.f(q.X), e.f(q.Y), e.f(q.Z), listSep(i, len(ch.RotationKeys)))
			}
			e.close()
		}
		if len(ch.ScaleKeys) > 0 {
			e.writeVecKeys(keyScale, ch.ScaleKeys)
		}
		if len(ch.PositionKeys) > 0 {
			e.writeVecKeys(keyPosition, ch.PositionKeys)
		}
		e.close()
	}
	e.close()
}

func (e *Encoder) writeVecKeys(keyType int, keys []scene.VecKey) {
	e.open("AnimationKey", "")
	e.linef("%d;", keyType)
	e.linef("%d;", len(keys))
	for i, k := range keys {
		e.linef("%s;3;%s,%s,%s;;%s", e.t(k.Time),
			e.f(k.Value[0]), e.f(k.Value[1]), e.f(k.Value[2]), listSep(i, len(keys)))
	}
	e.close()
}

func (e *Encoder) writeMatrix(r [16]float32) {
	parts := make([]string, 16)
	for i, v := range r {
		parts[i] = e.f(v)
	}
	e.linef("%s;;", strings.Join(parts, ","))
}

func (e *Encoder) open(template, name string) {
	if name != "" {
		e.linef("%s %s {", template, name)
	} else {
		e.linef("%s {", template)
	}
	e.indent++
}

func (e *Encoder) close() {
	e.indent--
	e.line("}")
}

func (e *Encoder) line(s string) {
	for i := 0; i < e.indent; i++ {
		e.sb.WriteByte(' ')
	}
	e.sb.WriteString(s)
	e.sb.WriteByte('\n')
}

func (e *Encoder) linef(format string, args ...any) {
	e.line(fmt.Sprintf(format, args...))
}

// f formats a float value with round-trip precision.
func (e *Encoder) f(v float32) string {
	if e.double {
		return strconv.FormatFloat(float64(v), 'g', -1, 64)
	}
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

// t formats a key time. The wire format stores times as integer ticks.
func (e *Encoder) t(v float64) string {
	return strconv.FormatInt(int64(v+0.5), 10)
}

// listSep terminates element i of an n element list: a comma between
// elements, a semicolon after the last.
func listSep(i, n int) string {
	if i == n-1 {
		return ";"
	}
	return ","
}

func (e *Encoder) face(f scene.Face) string {
	parts := make([]string, len(f.Indices))
	for i, idx := range f.Indices {
		parts[i] = strconv.FormatUint(uint64(idx), 10)
	}
	return fmt.Sprintf("%d;%s;", len(f.Indices), strings.Join(parts, ","))
}
