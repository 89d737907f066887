package scene

import (
	"testing"

	"github.com/19829984/multires-transpose/pkg/bmesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

func planeMesh() *bmesh.Mesh {
	m := bmesh.New()
	a := m.NewVert(v3.Vec{X: -1, Y: -1})
	b := m.NewVert(v3.Vec{X: 1, Y: -1})
	c := m.NewVert(v3.Vec{X: 1, Y: 1})
	d := m.NewVert(v3.Vec{X: -1, Y: 1})
	m.NewFace(a, b, c, d)
	return m
}

func TestLinkUnlink(t *testing.T) {
	s := NewScene()
	o := NewObject("Plane", planeMesh())
	if err := s.Link(o); err != nil {
		t.Fatal(err)
	}
	if err := s.Link(NewObject("Plane", planeMesh())); err == nil {
		t.Fatal("linking a duplicate name succeeded")
	}

	got, ok := s.Object("Plane")
	if !ok || got != o {
		t.Fatal("Object lookup failed after Link")
	}

	s.SetActive("Plane")
	s.Unlink("Plane")
	if _, ok := s.Object("Plane"); ok {
		t.Error("object still present after Unlink")
	}
	if s.Active() != nil {
		t.Error("unlinking the active object did not clear it")
	}
}

func TestObjectsKeepLinkOrder(t *testing.T) {
	s := NewScene()
	for _, name := range []string{"C", "A", "B"} {
		if err := s.Link(NewObject(name, planeMesh())); err != nil {
			t.Fatal(err)
		}
	}
	objs := s.Objects()
	want := []string{"C", "A", "B"}
	for i, o := range objs {
		if o.Name != want[i] {
			t.Errorf("object %d = %q, want %q", i, o.Name, want[i])
		}
	}
}

func TestMatrixWorldInverseRoundTrip(t *testing.T) {
	o := NewObject("X", planeMesh())
	o.Location = v3.Vec{X: 3, Y: -1, Z: 2}
	o.Rotation = v3.Vec{X: 0.3, Y: -0.8, Z: 1.1}
	o.Scale = v3.Vec{X: 2, Y: 0.5, Z: 1.5}

	p := v3.Vec{X: 1.7, Y: 0.2, Z: -4}
	world := o.MatrixWorld().MulPosition(p)
	back := o.MatrixWorldInverse().MulPosition(world)
	if back.Sub(p).Length() > 1e-9 {
		t.Errorf("inverse round trip = %v, want %v", back, p)
	}
}

// doublerModifier doubles every vertex position. Minimal Modifier
// implementation for evaluation tests.
type doublerModifier struct{}

func (doublerModifier) Name() string { return "Doubler" }
func (doublerModifier) Apply(base *bmesh.Mesh) (*bmesh.Mesh, error) {
	out := base.Copy()
	for _, v := range out.Verts {
		v.Co = v.Co.MulScalar(2)
	}
	return out, nil
}

func TestEvaluatedAppliesModifierStack(t *testing.T) {
	s := NewScene()
	o := NewObject("Plane", planeMesh())
	o.Modifiers = append(o.Modifiers, doublerModifier{}, doublerModifier{})
	if err := s.Link(o); err != nil {
		t.Fatal(err)
	}

	eval, err := s.Evaluated(o)
	if err != nil {
		t.Fatal(err)
	}
	if eval.Verts[2].Co != (v3.Vec{X: 4, Y: 4}) {
		t.Errorf("evaluated vert 2 = %v, want (4,4,0)", eval.Verts[2].Co)
	}
	// The base mesh must be untouched.
	if o.Data.Verts[2].Co != (v3.Vec{X: 1, Y: 1}) {
		t.Errorf("base vert 2 mutated to %v", o.Data.Verts[2].Co)
	}
}

func TestMultiresLookup(t *testing.T) {
	o := NewObject("Plane", planeMesh())
	if o.Multires() != nil {
		t.Error("Multires() on object without one should be nil")
	}
}
