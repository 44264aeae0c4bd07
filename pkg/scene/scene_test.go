package scene

import (
	"testing"

	"github.com/Faultbox/xscene/pkg/math"
)

func TestNodeFind(t *testing.T) {
	root := &Node{Name: "root"}
	arm := &Node{Name: "arm"}
	hand := &Node{Name: "hand"}
	root.AddChild(arm)
	arm.AddChild(hand)

	if root.Find("root") != root {
		t.Error("find should match the node itself")
	}
	if root.Find("hand") != hand {
		t.Error("find should descend into grandchildren")
	}
	if root.Find("leg") != nil {
		t.Error("missing name should return nil")
	}
	var nilNode *Node
	if nilNode.Find("x") != nil {
		t.Error("find on nil node should return nil")
	}
}

func TestGlobalTransform(t *testing.T) {
	root := &Node{Name: "root", Transform: math.Translate(1, 0, 0)}
	child := &Node{Name: "child", Transform: math.Translate(0, 2, 0)}
	root.AddChild(child)

	tr := child.GlobalTransform().Translation()
	if tr.X != 1 || tr.Y != 2 || tr.Z != 0 {
		t.Errorf("global translation: got %v", tr)
	}
}

func TestMeshBounds(t *testing.T) {
	m := &Mesh{Positions: [][3]float32{{1, -2, 3}, {-4, 5, 0}}}
	min, max := m.Bounds()
	if min != [3]float32{-4, -2, 0} {
		t.Errorf("min: got %v", min)
	}
	if max != [3]float32{1, 5, 3} {
		t.Errorf("max: got %v", max)
	}

	var empty Mesh
	min, max = empty.Bounds()
	if min != ([3]float32{}) || max != ([3]float32{}) {
		t.Errorf("empty mesh bounds: got %v %v", min, max)
	}
}

func TestHasNormals(t *testing.T) {
	m := &Mesh{Positions: make([][3]float32, 3)}
	if m.HasNormals() {
		t.Error("mesh without normals")
	}
	m.Normals = make([][3]float32, 2)
	if m.HasNormals() {
		t.Error("partial normals do not count")
	}
	m.Normals = make([][3]float32, 3)
	if !m.HasNormals() {
		t.Error("full normals should count")
	}
}

func TestAnimationChannel(t *testing.T) {
	a := &Animation{
		Name: "walk",
		Channels: []*Channel{
			{NodeName: "hip"},
			{NodeName: "knee"},
		},
	}
	if ch := a.Channel("knee"); ch == nil || ch.NodeName != "knee" {
		t.Errorf("channel lookup: got %+v", ch)
	}
	if a.Channel("toe") != nil {
		t.Error("missing channel should return nil")
	}
}
