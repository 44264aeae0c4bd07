package xfile

import (
	"fmt"
	"sort"

	"github.com/Faultbox/xscene/pkg/math"
	"github.com/Faultbox/xscene/pkg/scene"
)

// SceneBuilder folds a parsed document into a scene graph. It resolves name
// references, joins skin weight tables against mesh topology, and folds
// animation key records into per-node channels.
type SceneBuilder struct {
	scene    *scene.Scene
	lenient  bool
	matIndex map[string]int

	meshIndex map[string]int
	meshRefs  []pendingMeshRef
}

type pendingMeshRef struct {
	node *scene.Node
	ref  Reference
}

// NewSceneBuilder returns a builder. When lenientKeyframes is set, animation
// keys that arrive out of time order are sorted instead of rejected.
func NewSceneBuilder(lenientKeyframes bool) *SceneBuilder {
	return &SceneBuilder{
		lenient:   lenientKeyframes,
		matIndex:  make(map[string]int),
		meshIndex: make(map[string]int),
	}
}

// Build converts the document into a scene.
func (b *SceneBuilder) Build(doc *Document) (*scene.Scene, error) {
	b.scene = &scene.Scene{Root: &scene.Node{Transform: math.Identity()}}

	// Named materials are global: a mesh may reference one defined anywhere
	// in the document, so register them all before building geometry.
	for _, obj := range doc.Objects {
		if obj.Template == "Material" && obj.Name != "" {
			if _, err := b.registerMaterial(obj); err != nil {
				return nil, err
			}
		}
	}

	for _, obj := range doc.Objects {
		switch obj.Template {
		case "Frame":
			node, err := b.buildFrame(obj)
			if err != nil {
				return nil, err
			}
			b.scene.Root.AddChild(node)
		case "Mesh":
			idx, err := b.buildMesh(obj)
			if err != nil {
				return nil, err
			}
			b.scene.Root.Meshes = append(b.scene.Root.Meshes, idx)
		case "AnimationSet":
			anim, err := b.buildAnimationSet(obj)
			if err != nil {
				return nil, err
			}
			b.scene.Animations = append(b.scene.Animations, anim)
		case "AnimTicksPerSecond":
			b.scene.TicksPerSecond = float64(obj.Int("AnimTicksPerSecond", 0))
		case "Material", "Header":
			// materials handled above, Header carries no scene data
		default:
			// templates with no scene mapping (XSkinMeshHeader siblings and
			// exporter-specific extras) are tolerated at top level
		}
	}

	for _, pending := range b.meshRefs {
		idx, ok := b.meshIndex[pending.ref.Name]
		if !ok {
			return nil, fmt.Errorf("%w: mesh %q referenced by frame %q",
				ErrDanglingReference, pending.ref.Name, pending.node.Name)
		}
		pending.node.Meshes = append(pending.node.Meshes, idx)
	}

	b.finishHierarchy()
	return b.scene, nil
}

// finishHierarchy promotes a lone top-level frame to scene root and collapses
// the anonymous wrapper frames some exporters emit around every mesh node.
func (b *SceneBuilder) finishHierarchy() {
	root := b.scene.Root
	if len(root.Children) == 1 && len(root.Meshes) == 0 {
		root = root.Children[0]
	}
	root = collapseAnonymous(root)
	root.Parent = nil
	b.scene.Root = root
}

// collapseAnonymous merges each unnamed single-child frame that carries no
// meshes into its child, folding the transforms together.
func collapseAnonymous(n *scene.Node) *scene.Node {
	for i, c := range n.Children {
		merged := collapseAnonymous(c)
		merged.Parent = n
		n.Children[i] = merged
	}
	if n.Name == "" && len(n.Children) == 1 && len(n.Meshes) == 0 {
		child := n.Children[0]
		child.Transform = n.Transform.Mul(child.Transform)
		child.Parent = n.Parent
		return child
	}
	return n
}

func (b *SceneBuilder) registerMaterial(obj *DataObject) (int, error) {
	if obj.Name != "" {
		if idx, ok := b.matIndex[obj.Name]; ok {
			return idx, nil
		}
	}
	mat, err := buildMaterial(obj)
	if err != nil {
		return 0, err
	}
	idx := len(b.scene.Materials)
	b.scene.Materials = append(b.scene.Materials, mat)
	if obj.Name != "" {
		b.matIndex[obj.Name] = idx
	}
	return idx, nil
}

func buildMaterial(obj *DataObject) (*scene.Material, error) {
	mat := &scene.Material{Name: obj.Name}
	var err error
	if mat.Diffuse, err = rgbaMember(obj, "faceColor"); err != nil {
		return nil, fmt.Errorf("material %q: %w", obj.Name, err)
	}
	if v, ok := obj.Member("power"); ok {
		mat.SpecularExponent = float32(v.AsFloat())
	}
	if mat.Specular, err = rgbMember(obj, "specularColor"); err != nil {
		return nil, fmt.Errorf("material %q: %w", obj.Name, err)
	}
	if mat.Emissive, err = rgbMember(obj, "emissiveColor"); err != nil {
		return nil, fmt.Errorf("material %q: %w", obj.Name, err)
	}
	if tex := obj.FirstChild("TextureFilename"); tex != nil {
		if v, ok := tex.Member("filename"); ok {
			mat.Texture = v.Str
		}
	}
	if nm := obj.FirstChild("NormalmapFilename"); nm != nil {
		if v, ok := nm.Member("filename"); ok {
			mat.NormalMap = v.Str
		}
	}
	return mat, nil
}

func (b *SceneBuilder) buildFrame(obj *DataObject) (*scene.Node, error) {
	node := &scene.Node{Name: obj.Name, Transform: math.Identity()}

	if ftm := obj.FirstChild("FrameTransformMatrix"); ftm != nil {
		v, ok := ftm.Member("frameMatrix")
		if !ok || v.Kind != ValueObject {
			return nil, fmt.Errorf("frame %q: malformed transform", obj.Name)
		}
		m, err := matrixOf(v.Object)
		if err != nil {
			return nil, fmt.Errorf("frame %q: %w", obj.Name, err)
		}
		node.Transform = m
	}

	for _, child := range obj.Children {
		switch child.Template {
		case "Frame":
			sub, err := b.buildFrame(child)
			if err != nil {
				return nil, err
			}
			node.AddChild(sub)
		case "Mesh":
			idx, err := b.buildMesh(child)
			if err != nil {
				return nil, err
			}
			node.Meshes = append(node.Meshes, idx)
		case "FrameTransformMatrix":
			// consumed above
		}
	}

	// `{ meshName }` children attach a mesh defined elsewhere; the mesh may
	// appear later in the document, so resolution is deferred.
	for _, ref := range obj.Refs {
		b.meshRefs = append(b.meshRefs, pendingMeshRef{node: node, ref: ref})
	}
	return node, nil
}

func (b *SceneBuilder) buildMesh(obj *DataObject) (int, error) {
	mesh := &scene.Mesh{Name: obj.Name}

	verts, err := objectArray(obj, "vertices")
	if err != nil {
		return 0, fmt.Errorf("mesh %q: %w", obj.Name, err)
	}
	mesh.Positions = make([][3]float32, len(verts))
	for i, v := range verts {
		if mesh.Positions[i], err = vectorOf(v); err != nil {
			return 0, fmt.Errorf("mesh %q: vertex %d: %w", obj.Name, i, err)
		}
	}

	faceObjs, err := objectArray(obj, "faces")
	if err != nil {
		return 0, fmt.Errorf("mesh %q: %w", obj.Name, err)
	}
	mesh.Faces = make([]scene.Face, len(faceObjs))
	for i, f := range faceObjs {
		if mesh.Faces[i], err = faceOf(f); err != nil {
			return 0, fmt.Errorf("mesh %q: face %d: %w", obj.Name, i, err)
		}
		for _, vi := range mesh.Faces[i].Indices {
			if int(vi) >= len(mesh.Positions) {
				return 0, fmt.Errorf("mesh %q: face %d references vertex %d of %d",
					obj.Name, i, vi, len(mesh.Positions))
			}
		}
	}

	for _, child := range obj.Children {
		switch child.Template {
		case "MeshNormals":
			err = b.applyNormals(mesh, child)
		case "MeshTextureCoords":
			err = b.applyTextureCoords(mesh, child)
		case "MeshVertexColors":
			err = b.applyVertexColors(mesh, child)
		case "MeshMaterialList":
			err = b.applyMaterialList(mesh, child)
		case "SkinWeights":
			err = b.applySkinWeights(mesh, child)
		case "XSkinMeshHeader", "VertexDuplicationIndices":
			// advisory only
		}
		if err != nil {
			return 0, fmt.Errorf("mesh %q: %w", obj.Name, err)
		}
	}

	idx := len(b.scene.Meshes)
	b.scene.Meshes = append(b.scene.Meshes, mesh)
	if obj.Name != "" {
		b.meshIndex[obj.Name] = idx
	}
	return idx, nil
}

// applyNormals distributes the per-face-vertex normal indices of a
// MeshNormals block onto the mesh's vertices. The normal face list must run
// parallel to the mesh's face list.
func (b *SceneBuilder) applyNormals(mesh *scene.Mesh, obj *DataObject) error {
	normObjs, err := objectArray(obj, "normals")
	if err != nil {
		return err
	}
	normals := make([][3]float32, len(normObjs))
	for i, n := range normObjs {
		if normals[i], err = vectorOf(n); err != nil {
			return fmt.Errorf("normal %d: %w", i, err)
		}
	}

	faceObjs, err := objectArray(obj, "faceNormals")
	if err != nil {
		return err
	}
	if len(faceObjs) != len(mesh.Faces) {
		return fmt.Errorf("%d normal faces for %d mesh faces", len(faceObjs), len(mesh.Faces))
	}

	mesh.Normals = make([][3]float32, len(mesh.Positions))
	for fi, f := range faceObjs {
		nf, err := faceOf(f)
		if err != nil {
			return fmt.Errorf("normal face %d: %w", fi, err)
		}
		mf := mesh.Faces[fi]
		if len(nf.Indices) != len(mf.Indices) {
			return fmt.Errorf("normal face %d has %d indices, mesh face has %d",
				fi, len(nf.Indices), len(mf.Indices))
		}
		for k, ni := range nf.Indices {
			if int(ni) >= len(normals) {
				return fmt.Errorf("normal face %d references normal %d of %d", fi, ni, len(normals))
			}
			vi := mf.Indices[k]
			if int(vi) >= len(mesh.Normals) {
				return fmt.Errorf("face %d references vertex %d of %d", fi, vi, len(mesh.Normals))
			}
			mesh.Normals[vi] = normals[ni]
		}
	}
	return nil
}

func (b *SceneBuilder) applyTextureCoords(mesh *scene.Mesh, obj *DataObject) error {
	coordObjs, err := objectArray(obj, "textureCoords")
	if err != nil {
		return err
	}
	if len(coordObjs) != len(mesh.Positions) {
		return fmt.Errorf("%d texture coords for %d vertices", len(coordObjs), len(mesh.Positions))
	}
	mesh.UVs = make([][2]float32, len(coordObjs))
	for i, c := range coordObjs {
		u, okU := c.Member("u")
		v, okV := c.Member("v")
		if !okU || !okV {
			return fmt.Errorf("texture coord %d malformed", i)
		}
		mesh.UVs[i] = [2]float32{float32(u.AsFloat()), float32(v.AsFloat())}
	}
	return nil
}

func (b *SceneBuilder) applyVertexColors(mesh *scene.Mesh, obj *DataObject) error {
	colorObjs, err := objectArray(obj, "vertexColors")
	if err != nil {
		return err
	}
	if len(colorObjs) != len(mesh.Positions) {
		return fmt.Errorf("%d vertex colors for %d vertices", len(colorObjs), len(mesh.Positions))
	}
	mesh.Colors = make([][4]float32, len(mesh.Positions))
	for i, c := range colorObjs {
		idxV, ok := c.Member("index")
		if !ok || idxV.Kind != ValueInt {
			return fmt.Errorf("vertex color %d malformed", i)
		}
		if idxV.Int < 0 || idxV.Int >= int64(len(mesh.Positions)) {
			return fmt.Errorf("vertex color %d indexes vertex %d of %d", i, idxV.Int, len(mesh.Positions))
		}
		colV, ok := c.Member("indexColor")
		if !ok || colV.Kind != ValueObject {
			return fmt.Errorf("vertex color %d malformed", i)
		}
		rgba, err := rgbaOf(colV.Object)
		if err != nil {
			return fmt.Errorf("vertex color %d: %w", i, err)
		}
		mesh.Colors[idxV.Int] = rgba
	}
	return nil
}

// applyMaterialList resolves a MeshMaterialList into per-face global material
// indices. The list's local materials are inline Material children and
// `{name}` references, in document order; a single face index is replicated
// across all faces.
func (b *SceneBuilder) applyMaterialList(mesh *scene.Mesh, obj *DataObject) error {
	local, err := b.localMaterials(obj)
	if err != nil {
		return err
	}

	v, ok := obj.Member("faceIndexes")
	if !ok || v.Kind != ValueArray {
		return fmt.Errorf("material list missing face indexes")
	}
	indexes := v.Array
	if len(indexes) != len(mesh.Faces) && len(indexes) != 1 {
		return fmt.Errorf("%d material face indexes for %d faces", len(indexes), len(mesh.Faces))
	}

	mesh.FaceMaterials = make([]uint32, len(mesh.Faces))
	for fi := range mesh.Faces {
		iv := indexes[0]
		if len(indexes) > 1 {
			iv = indexes[fi]
		}
		if iv.Kind != ValueInt || iv.Int < 0 || int(iv.Int) >= len(local) {
			return fmt.Errorf("face %d material index %d of %d", fi, iv.Int, len(local))
		}
		mesh.FaceMaterials[fi] = uint32(local[iv.Int])
	}
	return nil
}

// localMaterials returns the material list's global indices in document
// order, interleaving inline children and references by source offset.
func (b *SceneBuilder) localMaterials(obj *DataObject) ([]int, error) {
	type entry struct {
		offset int
		child  *DataObject
		ref    *Reference
	}
	entries := make([]entry, 0, len(obj.Children)+len(obj.Refs))
	for _, c := range obj.Children {
		if c.Template == "Material" {
			entries = append(entries, entry{offset: c.Offset, child: c})
		}
	}
	for i := range obj.Refs {
		entries = append(entries, entry{offset: obj.Refs[i].Offset, ref: &obj.Refs[i]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].offset < entries[j].offset })

	indices := make([]int, 0, len(entries))
	for _, e := range entries {
		if e.child != nil {
			idx, err := b.registerMaterial(e.child)
			if err != nil {
				return nil, err
			}
			indices = append(indices, idx)
			continue
		}
		idx, ok := b.matIndex[e.ref.Name]
		if !ok {
			return nil, fmt.Errorf("%w: material %q", ErrDanglingReference, e.ref.Name)
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func (b *SceneBuilder) applySkinWeights(mesh *scene.Mesh, obj *DataObject) error {
	nameV, ok := obj.Member("transformNodeName")
	if !ok || nameV.Kind != ValueString {
		return fmt.Errorf("skin weights missing bone name")
	}
	bone := &scene.Bone{Name: nameV.Str}

	idxV, okI := obj.Member("vertexIndices")
	wV, okW := obj.Member("weights")
	if !okI || !okW || idxV.Kind != ValueArray || wV.Kind != ValueArray ||
		len(idxV.Array) != len(wV.Array) {
		return fmt.Errorf("%w: bone %q: malformed weight table", ErrSkinTopologyMismatch, bone.Name)
	}
	if len(idxV.Array) > len(mesh.Positions) {
		return fmt.Errorf("%w: bone %q: %d weights for %d vertices",
			ErrSkinTopologyMismatch, bone.Name, len(idxV.Array), len(mesh.Positions))
	}
	bone.Weights = make([]scene.VertexWeight, len(idxV.Array))
	for i := range idxV.Array {
		vi := idxV.Array[i].Int
		if idxV.Array[i].Kind != ValueInt || vi < 0 || vi >= int64(len(mesh.Positions)) {
			return fmt.Errorf("%w: bone %q weights vertex %d of %d",
				ErrSkinTopologyMismatch, bone.Name, vi, len(mesh.Positions))
		}
		bone.Weights[i] = scene.VertexWeight{
			Vertex: uint32(vi),
			Weight: float32(wV.Array[i].AsFloat()),
		}
	}

	mV, ok := obj.Member("matrixOffset")
	if !ok || mV.Kind != ValueObject {
		return fmt.Errorf("%w: bone %q: missing offset matrix", ErrSkinTopologyMismatch, bone.Name)
	}
	offset, err := matrixOf(mV.Object)
	if err != nil {
		return fmt.Errorf("bone %q: %w", bone.Name, err)
	}
	bone.Offset = offset

	mesh.Bones = append(mesh.Bones, bone)
	return nil
}

func (b *SceneBuilder) buildAnimationSet(obj *DataObject) (*scene.Animation, error) {
	anim := &scene.Animation{Name: obj.Name}
	for _, child := range obj.ChildrenNamed("Animation") {
		ch, err := b.buildAnimation(anim.Name, child)
		if err != nil {
			return nil, err
		}
		anim.Channels = append(anim.Channels, ch)
	}
	return anim, nil
}

func (b *SceneBuilder) buildAnimation(setName string, obj *DataObject) (*scene.Channel, error) {
	ch := &scene.Channel{}
	if len(obj.Refs) > 0 {
		ch.NodeName = obj.Refs[0].Name
	}

	for _, key := range obj.ChildrenNamed("AnimationKey") {
		if err := b.applyAnimationKey(ch, key); err != nil {
			return nil, fmt.Errorf("animation set %q node %q: %w", setName, ch.NodeName, err)
		}
	}

	if err := b.checkKeyOrder(ch, setName); err != nil {
		return nil, err
	}
	return ch, nil
}

// Animation key types of the wire format.
const (
	keyRotation = 0
	keyScale    = 1
	keyPosition = 2
	keyMatrix3  = 3
	keyMatrix4  = 4
)

func (b *SceneBuilder) applyAnimationKey(ch *scene.Channel, obj *DataObject) error {
	keyType := obj.Int("keyType", -1)
	keyObjs, err := objectArray(obj, "keys")
	if err != nil {
		return err
	}

	for i, k := range keyObjs {
		timeV, ok := k.Member("time")
		if !ok {
			return fmt.Errorf("key %d missing time", i)
		}
		t := timeV.AsFloat()

		values, err := keyValues(k)
		if err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}

		switch keyType {
		case keyRotation:
			if len(values) != 4 {
				return fmt.Errorf("rotation key %d has %d values, want 4", i, len(values))
			}
			// wire order is w, x, y, z
			ch.RotationKeys = append(ch.RotationKeys, scene.QuatKey{Time: t, Value: math.Quat{
				W: float32(values[0]), X: float32(values[1]), Y: float32(values[2]), Z: float32(values[3]),
			}})
		case keyScale:
			if len(values) != 3 {
				return fmt.Errorf("scale key %d has %d values, want 3", i, len(values))
			}
			ch.ScaleKeys = append(ch.ScaleKeys, scene.VecKey{Time: t, Value: vec3Of(values)})
		case keyPosition:
			if len(values) != 3 {
				return fmt.Errorf("position key %d has %d values, want 3", i, len(values))
			}
			ch.PositionKeys = append(ch.PositionKeys, scene.VecKey{Time: t, Value: vec3Of(values)})
		case keyMatrix3, keyMatrix4:
			if len(values) != 16 {
				return fmt.Errorf("matrix key %d has %d values, want 16", i, len(values))
			}
			var raw [16]float32
			for j, f := range values {
				raw[j] = float32(f)
			}
			tr, rot, sc := math.FromRowMajor(raw).Decompose()
			ch.PositionKeys = append(ch.PositionKeys, scene.VecKey{Time: t, Value: tr.Arr()})
			ch.RotationKeys = append(ch.RotationKeys, scene.QuatKey{Time: t, Value: rot})
			ch.ScaleKeys = append(ch.ScaleKeys, scene.VecKey{Time: t, Value: sc.Arr()})
		default:
			return fmt.Errorf("unknown animation key type %d", keyType)
		}
	}
	return nil
}

// checkKeyOrder enforces ascending key times per channel. Lenient mode sorts
// instead of failing.
func (b *SceneBuilder) checkKeyOrder(ch *scene.Channel, setName string) error {
	fail := func(kind string) error {
		return fmt.Errorf("%w: animation set %q node %q: %s keys not in ascending time order",
			ErrInvalidKeyframeOrder, setName, ch.NodeName, kind)
	}

	if !sort.SliceIsSorted(ch.PositionKeys, func(i, j int) bool {
		return ch.PositionKeys[i].Time < ch.PositionKeys[j].Time
	}) {
		if !b.lenient {
			return fail("position")
		}
		sort.SliceStable(ch.PositionKeys, func(i, j int) bool {
			return ch.PositionKeys[i].Time < ch.PositionKeys[j].Time
		})
	}
	if !sort.SliceIsSorted(ch.RotationKeys, func(i, j int) bool {
		return ch.RotationKeys[i].Time < ch.RotationKeys[j].Time
	}) {
		if !b.lenient {
			return fail("rotation")
		}
		sort.SliceStable(ch.RotationKeys, func(i, j int) bool {
			return ch.RotationKeys[i].Time < ch.RotationKeys[j].Time
		})
	}
	if !sort.SliceIsSorted(ch.ScaleKeys, func(i, j int) bool {
		return ch.ScaleKeys[i].Time < ch.ScaleKeys[j].Time
	}) {
		if !b.lenient {
			return fail("scale")
		}
		sort.SliceStable(ch.ScaleKeys, func(i, j int) bool {
			return ch.ScaleKeys[i].Time < ch.ScaleKeys[j].Time
		})
	}
	return nil
}

func keyValues(k *DataObject) ([]float64, error) {
	fkV, ok := k.Member("tfkeys")
	if !ok || fkV.Kind != ValueObject {
		return nil, fmt.Errorf("missing key values")
	}
	vV, ok := fkV.Object.Member("values")
	if !ok || vV.Kind != ValueArray {
		return nil, fmt.Errorf("missing key values")
	}
	out := make([]float64, len(vV.Array))
	for i, v := range vV.Array {
		out[i] = v.AsFloat()
	}
	return out, nil
}

func vec3Of(values []float64) [3]float32 {
	return [3]float32{float32(values[0]), float32(values[1]), float32(values[2])}
}

// objectArray returns the named array member's elements as data objects.
func objectArray(obj *DataObject, member string) ([]*DataObject, error) {
	v, ok := obj.Member(member)
	if !ok || v.Kind != ValueArray {
		return nil, fmt.Errorf("missing %s", member)
	}
	out := make([]*DataObject, len(v.Array))
	for i, e := range v.Array {
		if e.Kind != ValueObject {
			return nil, fmt.Errorf("%s[%d] is not an object", member, i)
		}
		out[i] = e.Object
	}
	return out, nil
}

func vectorOf(o *DataObject) ([3]float32, error) {
	x, okX := o.Member("x")
	y, okY := o.Member("y")
	z, okZ := o.Member("z")
	if !okX || !okY || !okZ {
		return [3]float32{}, fmt.Errorf("malformed vector")
	}
	return [3]float32{float32(x.AsFloat()), float32(y.AsFloat()), float32(z.AsFloat())}, nil
}

func faceOf(o *DataObject) (scene.Face, error) {
	v, ok := o.Member("faceVertexIndices")
	if !ok || v.Kind != ValueArray {
		return scene.Face{}, fmt.Errorf("malformed face")
	}
	f := scene.Face{Indices: make([]uint32, len(v.Array))}
	for i, e := range v.Array {
		if e.Kind != ValueInt || e.Int < 0 {
			return scene.Face{}, fmt.Errorf("malformed face index %d", i)
		}
		f.Indices[i] = uint32(e.Int)
	}
	return f, nil
}

func matrixOf(o *DataObject) (math.Mat4, error) {
	v, ok := o.Member("matrix")
	if !ok || v.Kind != ValueArray || len(v.Array) != 16 {
		return math.Mat4{}, fmt.Errorf("malformed matrix")
	}
	var raw [16]float32
	for i, e := range v.Array {
		raw[i] = float32(e.AsFloat())
	}
	return math.FromRowMajor(raw), nil
}

func rgbaMember(o *DataObject, member string) ([4]float32, error) {
	v, ok := o.Member(member)
	if !ok || v.Kind != ValueObject {
		return [4]float32{}, fmt.Errorf("missing %s", member)
	}
	return rgbaOf(v.Object)
}

func rgbaOf(o *DataObject) ([4]float32, error) {
	r, okR := o.Member("red")
	g, okG := o.Member("green")
	bl, okB := o.Member("blue")
	a, okA := o.Member("alpha")
	if !okR || !okG || !okB || !okA {
		return [4]float32{}, fmt.Errorf("malformed color")
	}
	return [4]float32{
		float32(r.AsFloat()), float32(g.AsFloat()), float32(bl.AsFloat()), float32(a.AsFloat()),
	}, nil
}

func rgbMember(o *DataObject, member string) ([3]float32, error) {
	v, ok := o.Member(member)
	if !ok || v.Kind != ValueObject {
		return [3]float32{}, fmt.Errorf("missing %s", member)
	}
	r, okR := v.Object.Member("red")
	g, okG := v.Object.Member("green")
	bl, okB := v.Object.Member("blue")
	if !okR || !okG || !okB {
		return [3]float32{}, fmt.Errorf("malformed color")
	}
	return [3]float32{float32(r.AsFloat()), float32(g.AsFloat()), float32(bl.AsFloat())}, nil
}
