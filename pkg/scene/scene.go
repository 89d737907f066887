// Package scene is a minimal in-memory scene graph: named objects with
// mesh data, TRS transforms and a modifier stack. It plays the role of
// the host application the transpose workflow cooperates with, and is
// the concrete implementation behind the collaborator interfaces the
// core consumes (evaluated-mesh provider, world transforms, object
// lifecycle).
package scene

import (
	"errors"
	"fmt"

	"github.com/19829984/multires-transpose/pkg/bmesh"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/google/uuid"
)

// ErrDuplicateName is returned when linking an object whose name is
// already taken.
var ErrDuplicateName = errors.New("object name already linked")

// Modifier transforms an object's base mesh into its evaluated mesh.
// Modifiers run in stack order and never mutate their input.
type Modifier interface {
	Name() string
	Apply(base *bmesh.Mesh) (*bmesh.Mesh, error)
}

// MultiresModifier is a modifier maintaining a hierarchy of subdivision
// levels, each storing a displacement delta over the previous level.
type MultiresModifier interface {
	Modifier

	// Levels is the active subdivision level used for evaluation.
	Levels() int
	SetLevels(n int)

	// TotalLevels is the deepest level holding displacement data.
	TotalLevels() int

	// Reshape bakes the difference between target and the current
	// evaluated shape into the displacement at the active level.
	Reshape(base, target *bmesh.Mesh) error
}

// Object is a named scene object: base mesh data plus a transform and
// modifier stack.
type Object struct {
	ID        uuid.UUID
	Name      string
	Data      *bmesh.Mesh
	Location  v3.Vec
	Rotation  v3.Vec // Euler XYZ, radians
	Scale     v3.Vec
	Modifiers []Modifier
	Hidden    bool
	Selected  bool
}

// NewObject creates an object with identity transform.
func NewObject(name string, data *bmesh.Mesh) *Object {
	return &Object{
		ID:    uuid.New(),
		Name:  name,
		Data:  data,
		Scale: v3.Vec{X: 1, Y: 1, Z: 1},
	}
}

// MatrixWorld returns the object's local-to-world transform,
// composed as T * Rz * Ry * Rx * S.
func (o *Object) MatrixWorld() sdf.M44 {
	return sdf.Translate3d(o.Location).
		Mul(sdf.RotateZ(o.Rotation.Z)).
		Mul(sdf.RotateY(o.Rotation.Y)).
		Mul(sdf.RotateX(o.Rotation.X)).
		Mul(sdf.Scale3d(o.Scale))
}

// MatrixWorldInverse returns the world-to-local transform, composed
// from the inverted TRS components so no numeric matrix inversion is
// needed.
func (o *Object) MatrixWorldInverse() sdf.M44 {
	return sdf.Scale3d(v3.Vec{X: 1 / o.Scale.X, Y: 1 / o.Scale.Y, Z: 1 / o.Scale.Z}).
		Mul(sdf.RotateX(-o.Rotation.X)).
		Mul(sdf.RotateY(-o.Rotation.Y)).
		Mul(sdf.RotateZ(-o.Rotation.Z)).
		Mul(sdf.Translate3d(v3.Vec{X: -o.Location.X, Y: -o.Location.Y, Z: -o.Location.Z}))
}

// Multires returns the object's first multires modifier, or nil.
func (o *Object) Multires() MultiresModifier {
	for _, mod := range o.Modifiers {
		if mm, ok := mod.(MultiresModifier); ok {
			return mm
		}
	}
	return nil
}

// Scene owns the object registry. Objects are iterated in link order,
// which keeps every downstream operation deterministic.
type Scene struct {
	objects map[string]*Object
	order   []string
	active  string
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{objects: make(map[string]*Object)}
}

// Link adds an object to the scene. The name must be unused.
func (s *Scene) Link(o *Object) error {
	if _, ok := s.objects[o.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, o.Name)
	}
	s.objects[o.Name] = o
	s.order = append(s.order, o.Name)
	return nil
}

// Unlink removes the named object. Unknown names are a no-op.
func (s *Scene) Unlink(name string) {
	if _, ok := s.objects[name]; !ok {
		return
	}
	delete(s.objects, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.active == name {
		s.active = ""
	}
}

// Object returns the named object.
func (s *Scene) Object(name string) (*Object, bool) {
	o, ok := s.objects[name]
	return o, ok
}

// Objects returns all objects in link order.
func (s *Scene) Objects() []*Object {
	out := make([]*Object, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.objects[n])
	}
	return out
}

// Selected returns all selected objects in link order.
func (s *Scene) Selected() []*Object {
	var out []*Object
	for _, o := range s.Objects() {
		if o.Selected {
			out = append(out, o)
		}
	}
	return out
}

// SetActive marks the named object as active. Unknown names clear the
// active object.
func (s *Scene) SetActive(name string) {
	if _, ok := s.objects[name]; ok {
		s.active = name
	} else {
		s.active = ""
	}
}

// Active returns the active object, or nil.
func (s *Scene) Active() *Object {
	if s.active == "" {
		return nil
	}
	return s.objects[s.active]
}

// Evaluated returns the object's post-modifier mesh: a copy of the base
// mesh with every modifier in the stack applied in order. The base mesh
// is never mutated.
func (s *Scene) Evaluated(o *Object) (*bmesh.Mesh, error) {
	m := o.Data.Copy()
	for _, mod := range o.Modifiers {
		next, err := mod.Apply(m)
		if err != nil {
			return nil, fmt.Errorf("modifier %q on %q: %w", mod.Name(), o.Name, err)
		}
		m = next
	}
	return m, nil
}
