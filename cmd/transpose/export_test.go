package main

import (
	"testing"

	"github.com/19829984/multires-transpose/pkg/bmesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestTriangulateFansNgons(t *testing.T) {
	m := bmesh.New()
	var v []*bmesh.Vert
	for _, co := range []v3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {X: 0.5, Y: 1.5}, {Y: 1}} {
		v = append(v, m.NewVert(co))
	}
	m.NewFace(v[0], v[1], v[2], v[3], v[4])
	m.NewFace(v[0], v[2], v[4])

	tris := triangulate(m)
	if len(tris) != 4 {
		t.Fatalf("got %d triangles, want 4 (3 from the pentagon, 1 from the triangle)", len(tris))
	}
	if tris[0][0] != v[0].Co || tris[0][1] != v[1].Co || tris[0][2] != v[2].Co {
		t.Errorf("first fan triangle = %v", *tris[0])
	}
	if tris[2][1] != v[3].Co || tris[2][2] != v[4].Co {
		t.Errorf("last pentagon triangle = %v", *tris[2])
	}
}
