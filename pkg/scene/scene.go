// Package scene defines the importer's output model: a node hierarchy with
// flat mesh, material, and animation tables, plus the post-processing passes
// that normalize imported geometry.
package scene

import (
	gomath "math"

	"github.com/Faultbox/xscene/pkg/math"
)

// Scene is the root of an imported asset. Meshes, materials, and animations
// live in flat tables; nodes reference meshes by table index.
type Scene struct {
	Root           *Node
	Meshes         []*Mesh
	Materials      []*Material
	Animations     []*Animation
	TicksPerSecond float64
}

// Node is one element of the transform hierarchy. Each node is owned by
// exactly one parent; Transform is relative to the parent.
type Node struct {
	Name      string
	Transform math.Mat4
	Parent    *Node
	Children  []*Node
	Meshes    []int
}

// AddChild links a child node into the hierarchy.
func (n *Node) AddChild(child *Node) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// Find returns the first node with the given name in the subtree rooted at n,
// or nil.
func (n *Node) Find(name string) *Node {
	if n == nil {
		return nil
	}
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// GlobalTransform composes the node's transform with all its ancestors.
func (n *Node) GlobalTransform() math.Mat4 {
	m := n.Transform
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.Transform.Mul(m)
	}
	return m
}

// Face is one polygon, referencing mesh vertices by index. Imported faces may
// have any vertex count >= 3; the Triangulate pass reduces them to triangles.
type Face struct {
	Indices []uint32
}

// Mesh holds indexed geometry. Normals, UVs, and Colors are optional but when
// present run parallel to Positions. FaceMaterials, when present, runs
// parallel to Faces and indexes into the mesh's Materials table slice of the
// owning scene.
type Mesh struct {
	Name          string
	Positions     [][3]float32
	Normals       [][3]float32
	UVs           [][2]float32
	Colors        [][4]float32
	Faces         []Face
	FaceMaterials []uint32
	Bones         []*Bone

	// Axis-aligned bounds, filled by the GenBoundingBoxes pass.
	BoundsMin [3]float32
	BoundsMax [3]float32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// HasNormals reports whether the mesh carries per-vertex normals.
func (m *Mesh) HasNormals() bool {
	return len(m.Normals) == len(m.Positions) && len(m.Positions) > 0
}

// Bounds computes the axis-aligned bounding box of the positions.
func (m *Mesh) Bounds() (min, max [3]float32) {
	if len(m.Positions) == 0 {
		return min, max
	}
	min = [3]float32{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32}
	max = [3]float32{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32}
	for _, p := range m.Positions {
		for i := 0; i < 3; i++ {
			if p[i] < min[i] {
				min[i] = p[i]
			}
			if p[i] > max[i] {
				max[i] = p[i]
			}
		}
	}
	return min, max
}

// Material is a classic Phong material with optional texture maps.
type Material struct {
	Name             string
	Diffuse          [4]float32
	SpecularExponent float32
	Specular         [3]float32
	Emissive         [3]float32
	Texture          string
	NormalMap        string
}

// VertexWeight binds one vertex to a bone with a blend weight.
type VertexWeight struct {
	Vertex uint32
	Weight float32
}

// Bone deforms a mesh. Offset transforms mesh space into the bone's local
// space at bind time; Name matches a node in the hierarchy.
type Bone struct {
	Name    string
	Offset  math.Mat4
	Weights []VertexWeight
}

// VecKey is a timed vector keyframe.
type VecKey struct {
	Time  float64
	Value [3]float32
}

// QuatKey is a timed rotation keyframe.
type QuatKey struct {
	Time  float64
	Value math.Quat
}

// Channel animates a single node. Key slices are sorted by time.
type Channel struct {
	NodeName     string
	PositionKeys []VecKey
	RotationKeys []QuatKey
	ScaleKeys    []VecKey
}

// Animation is a named clip of per-node channels.
type Animation struct {
	Name     string
	Channels []*Channel
}

// Channel returns the clip's channel for the given node, or nil.
func (a *Animation) Channel(nodeName string) *Channel {
	for _, c := range a.Channels {
		if c.NodeName == nodeName {
			return c
		}
	}
	return nil
}
