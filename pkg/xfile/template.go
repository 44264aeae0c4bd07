package xfile

import (
	"fmt"
	"strings"
)

// Primitive is a scalar member type.
type Primitive uint8

const (
	PrimInt Primitive = iota
	PrimFloat
	PrimString
	PrimGUID
)

// primitiveKeywords maps type keywords of the template grammar to the
// primitive they decode as.
var primitiveKeywords = map[string]Primitive{
	"WORD":    PrimInt,
	"DWORD":   PrimInt,
	"CHAR":    PrimInt,
	"UCHAR":   PrimInt,
	"SWORD":   PrimInt,
	"SDWORD":  PrimInt,
	"FLOAT":   PrimFloat,
	"DOUBLE":  PrimFloat,
	"STRING":  PrimString,
	"CSTRING": PrimString,
	"UNICODE": PrimString,
}

// MemberKind distinguishes the three member shapes a template can declare.
type MemberKind uint8

const (
	MemberPrimitive MemberKind = iota
	MemberTemplate             // inline instance of another template
	MemberArray
)

// Member is one typed, named slot in a template schema. Array members carry
// an element spec and either fixed dimensions or the name of a preceding
// integer member that supplies the count at parse time.
type Member struct {
	Name      string
	Kind      MemberKind
	Prim      Primitive
	Template  string  // template name for MemberTemplate
	Elem      *Member // element spec for MemberArray
	FixedDims []int
	CountFrom string
}

// Template is a named schema describing the ordered members of a data-object
// kind. Open templates accept arbitrary trailing child objects; Restricted
// limits the accepted child template names.
type Template struct {
	Name       string
	GUID       string
	Members    []Member
	Open       bool
	Restricted []string
}

func (t *Template) sameShape(other *Template) bool {
	if t.Name != other.Name || t.Open != other.Open ||
		len(t.Members) != len(other.Members) || len(t.Restricted) != len(other.Restricted) {
		return false
	}
	for i := range t.Members {
		if !t.Members[i].equal(&other.Members[i]) {
			return false
		}
	}
	for i := range t.Restricted {
		if t.Restricted[i] != other.Restricted[i] {
			return false
		}
	}
	return true
}

func (m *Member) equal(other *Member) bool {
	if m.Name != other.Name || m.Kind != other.Kind || m.Prim != other.Prim ||
		m.Template != other.Template || m.CountFrom != other.CountFrom ||
		len(m.FixedDims) != len(other.FixedDims) {
		return false
	}
	for i := range m.FixedDims {
		if m.FixedDims[i] != other.FixedDims[i] {
			return false
		}
	}
	if (m.Elem == nil) != (other.Elem == nil) {
		return false
	}
	if m.Elem != nil {
		return m.Elem.equal(other.Elem)
	}
	return true
}

// Registry holds the template schemas visible to one import invocation:
// the built-in retained set plus any templates the document defines inline.
// Lookup is case-insensitive, matching common exporter behavior.
type Registry struct {
	byName map[string]*Template
}

// NewRegistry returns a registry seeded with the standard retained templates.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Template, len(builtinTemplates))}
	for i := range builtinTemplates {
		// built-ins are statically valid
		r.byName[strings.ToLower(builtinTemplates[i].Name)] = &builtinTemplates[i]
	}
	return r
}

// Register adds a schema. Re-registration with an identical shape is
// idempotent; a conflicting shape fails with ErrDuplicateTemplate. Member
// names must be unique and indirect array counts must name a preceding
// integer-shaped member.
func (r *Registry) Register(t *Template) error {
	if err := validateSchema(t); err != nil {
		return err
	}
	key := strings.ToLower(t.Name)
	if existing, ok := r.byName[key]; ok {
		if existing.sameShape(t) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrDuplicateTemplate, t.Name)
	}
	r.byName[key] = t
	return nil
}

// Resolve returns the schema registered under name, or nil.
func (r *Registry) Resolve(name string) *Template {
	return r.byName[strings.ToLower(name)]
}

func validateSchema(t *Template) error {
	if t.Name == "" {
		return fmt.Errorf("%w: empty template name", ErrInvalidTemplate)
	}
	seen := make(map[string]int, len(t.Members))
	for i, m := range t.Members {
		if m.Name != "" {
			if _, dup := seen[m.Name]; dup {
				return fmt.Errorf("%w: %s: duplicate member %q", ErrInvalidTemplate, t.Name, m.Name)
			}
			seen[m.Name] = i
		}
		if m.Kind != MemberArray || m.CountFrom == "" {
			continue
		}
		j, ok := seen[m.CountFrom]
		if !ok || j >= i {
			return fmt.Errorf("%w: %s: array %q counted by undeclared member %q",
				ErrInvalidTemplate, t.Name, m.Name, m.CountFrom)
		}
		count := t.Members[j]
		if count.Kind != MemberPrimitive || count.Prim != PrimInt {
			return fmt.Errorf("%w: %s: array %q counted by non-integer member %q",
				ErrInvalidTemplate, t.Name, m.Name, m.CountFrom)
		}
	}
	return nil
}

func prim(name string, p Primitive) Member {
	return Member{Name: name, Kind: MemberPrimitive, Prim: p}
}

func tmpl(name, template string) Member {
	return Member{Name: name, Kind: MemberTemplate, Template: template}
}

func arrayOfPrim(name string, p Primitive, countFrom string) Member {
	return Member{Name: name, Kind: MemberArray, Elem: &Member{Kind: MemberPrimitive, Prim: p}, CountFrom: countFrom}
}

func arrayOfTmpl(name, template, countFrom string) Member {
	return Member{Name: name, Kind: MemberArray, Elem: &Member{Kind: MemberTemplate, Template: template}, CountFrom: countFrom}
}

func fixedArray(name string, p Primitive, n int) Member {
	return Member{Name: name, Kind: MemberArray, Elem: &Member{Kind: MemberPrimitive, Prim: p}, FixedDims: []int{n}}
}

// builtinTemplates is the standard retained template set of the format.
var builtinTemplates = []Template{
	{Name: "Header", Members: []Member{
		prim("major", PrimInt), prim("minor", PrimInt), prim("flags", PrimInt),
	}},
	{Name: "Vector", Members: []Member{
		prim("x", PrimFloat), prim("y", PrimFloat), prim("z", PrimFloat),
	}},
	{Name: "Coords2d", Members: []Member{
		prim("u", PrimFloat), prim("v", PrimFloat),
	}},
	{Name: "ColorRGBA", Members: []Member{
		prim("red", PrimFloat), prim("green", PrimFloat), prim("blue", PrimFloat), prim("alpha", PrimFloat),
	}},
	{Name: "ColorRGB", Members: []Member{
		prim("red", PrimFloat), prim("green", PrimFloat), prim("blue", PrimFloat),
	}},
	{Name: "IndexedColor", Members: []Member{
		prim("index", PrimInt), tmpl("indexColor", "ColorRGBA"),
	}},
	{Name: "Matrix4x4", Members: []Member{
		fixedArray("matrix", PrimFloat, 16),
	}},
	{Name: "MeshFace", Members: []Member{
		prim("nFaceVertexIndices", PrimInt),
		arrayOfPrim("faceVertexIndices", PrimInt, "nFaceVertexIndices"),
	}},
	{Name: "Mesh", Open: true, Members: []Member{
		prim("nVertices", PrimInt),
		arrayOfTmpl("vertices", "Vector", "nVertices"),
		prim("nFaces", PrimInt),
		arrayOfTmpl("faces", "MeshFace", "nFaces"),
	}},
	{Name: "MeshNormals", Members: []Member{
		prim("nNormals", PrimInt),
		arrayOfTmpl("normals", "Vector", "nNormals"),
		prim("nFaceNormals", PrimInt),
		arrayOfTmpl("faceNormals", "MeshFace", "nFaceNormals"),
	}},
	{Name: "MeshTextureCoords", Members: []Member{
		prim("nTextureCoords", PrimInt),
		arrayOfTmpl("textureCoords", "Coords2d", "nTextureCoords"),
	}},
	{Name: "MeshVertexColors", Members: []Member{
		prim("nVertexColors", PrimInt),
		arrayOfTmpl("vertexColors", "IndexedColor", "nVertexColors"),
	}},
	{Name: "MeshMaterialList", Open: true, Members: []Member{
		prim("nMaterials", PrimInt),
		prim("nFaceIndexes", PrimInt),
		arrayOfPrim("faceIndexes", PrimInt, "nFaceIndexes"),
	}},
	{Name: "Material", Open: true, Members: []Member{
		tmpl("faceColor", "ColorRGBA"),
		prim("power", PrimFloat),
		tmpl("specularColor", "ColorRGB"),
		tmpl("emissiveColor", "ColorRGB"),
	}},
	{Name: "TextureFilename", Members: []Member{
		prim("filename", PrimString),
	}},
	{Name: "NormalmapFilename", Members: []Member{
		prim("filename", PrimString),
	}},
	{Name: "FrameTransformMatrix", Members: []Member{
		tmpl("frameMatrix", "Matrix4x4"),
	}},
	{Name: "Frame", Open: true},
	{Name: "FloatKeys", Members: []Member{
		prim("nValues", PrimInt),
		arrayOfPrim("values", PrimFloat, "nValues"),
	}},
	{Name: "TimedFloatKeys", Members: []Member{
		prim("time", PrimInt),
		tmpl("tfkeys", "FloatKeys"),
	}},
	{Name: "AnimationKey", Members: []Member{
		prim("keyType", PrimInt),
		prim("nKeys", PrimInt),
		arrayOfTmpl("keys", "TimedFloatKeys", "nKeys"),
	}},
	{Name: "AnimationOptions", Members: []Member{
		prim("openclosed", PrimInt),
		prim("positionquality", PrimInt),
	}},
	{Name: "Animation", Open: true},
	{Name: "AnimationSet", Open: true, Restricted: []string{"Animation"}},
	{Name: "AnimTicksPerSecond", Members: []Member{
		prim("AnimTicksPerSecond", PrimInt),
	}},
	{Name: "XSkinMeshHeader", Members: []Member{
		prim("nMaxSkinWeightsPerVertex", PrimInt),
		prim("nMaxSkinWeightsPerFace", PrimInt),
		prim("nBones", PrimInt),
	}},
	{Name: "SkinWeights", Members: []Member{
		prim("transformNodeName", PrimString),
		prim("nWeights", PrimInt),
		arrayOfPrim("vertexIndices", PrimInt, "nWeights"),
		arrayOfPrim("weights", PrimFloat, "nWeights"),
		tmpl("matrixOffset", "Matrix4x4"),
	}},
	{Name: "VertexDuplicationIndices", Members: []Member{
		prim("nIndices", PrimInt),
		prim("nOriginalVertices", PrimInt),
		arrayOfPrim("indices", PrimInt, "nIndices"),
	}},
}
