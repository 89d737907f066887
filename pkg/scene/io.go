package scene

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/19829984/multires-transpose/pkg/bmesh"
	"github.com/19829984/multires-transpose/pkg/multires"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ MultiresModifier = (*multires.Modifier)(nil)

// File is the JSON-serializable form of a scene.
type File struct {
	Objects []ObjectRecord `json:"objects"`
	Active  string         `json:"active,omitempty"`
}

// ObjectRecord is the persisted form of one object.
type ObjectRecord struct {
	Name     string          `json:"name"`
	Location [3]float64      `json:"location"`
	Rotation [3]float64      `json:"rotation"` // Euler XYZ, radians
	Scale    [3]float64      `json:"scale"`
	Hidden   bool            `json:"hidden,omitempty"`
	Selected bool            `json:"selected,omitempty"`
	Multires *MultiresRecord `json:"multires,omitempty"`
	Mesh     *bmesh.MeshData `json:"mesh"`
}

// MultiresRecord is the persisted form of a multires modifier.
// Displacements holds one flat xyz-triple array per subdivision level.
type MultiresRecord struct {
	Name          string      `json:"name"`
	Levels        int         `json:"levels"`
	Displacements [][]float64 `json:"displacements,omitempty"`
}

// Load reads a scene file from disk.
func Load(path string) (*Scene, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	var f File
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	s := NewScene()
	for _, rec := range f.Objects {
		mesh, err := bmesh.FromData(rec.Mesh)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", rec.Name, err)
		}
		o := NewObject(rec.Name, mesh)
		o.Location = v3.Vec{X: rec.Location[0], Y: rec.Location[1], Z: rec.Location[2]}
		o.Rotation = v3.Vec{X: rec.Rotation[0], Y: rec.Rotation[1], Z: rec.Rotation[2]}
		o.Scale = v3.Vec{X: rec.Scale[0], Y: rec.Scale[1], Z: rec.Scale[2]}
		if o.Scale == (v3.Vec{}) {
			o.Scale = v3.Vec{X: 1, Y: 1, Z: 1}
		}
		o.Hidden = rec.Hidden
		o.Selected = rec.Selected
		if rec.Multires != nil {
			mod := multires.New(rec.Multires.Name, rec.Multires.Levels)
			disps := make([][]v3.Vec, len(rec.Multires.Displacements))
			for l, flat := range rec.Multires.Displacements {
				vecs := make([]v3.Vec, len(flat)/3)
				for i := range vecs {
					vecs[i] = v3.Vec{X: flat[i*3], Y: flat[i*3+1], Z: flat[i*3+2]}
				}
				disps[l] = vecs
			}
			mod.SetDisplacements(disps)
			o.Modifiers = append(o.Modifiers, mod)
		}
		if err := s.Link(o); err != nil {
			return nil, err
		}
	}
	if f.Active != "" {
		s.SetActive(f.Active)
	}
	return s, nil
}

// Save writes the scene to disk as indented JSON.
func Save(path string, s *Scene) error {
	f := File{}
	if a := s.Active(); a != nil {
		f.Active = a.Name
	}
	for _, o := range s.Objects() {
		rec := ObjectRecord{
			Name:     o.Name,
			Location: [3]float64{o.Location.X, o.Location.Y, o.Location.Z},
			Rotation: [3]float64{o.Rotation.X, o.Rotation.Y, o.Rotation.Z},
			Scale:    [3]float64{o.Scale.X, o.Scale.Y, o.Scale.Z},
			Hidden:   o.Hidden,
			Selected: o.Selected,
			Mesh:     o.Data.ToData(),
		}
		if mm := o.Multires(); mm != nil {
			mr := &MultiresRecord{Name: mm.Name(), Levels: mm.Levels()}
			if concrete, ok := mm.(*multires.Modifier); ok {
				for _, vecs := range concrete.Displacements() {
					flat := make([]float64, 0, len(vecs)*3)
					for _, v := range vecs {
						flat = append(flat, v.X, v.Y, v.Z)
					}
					mr.Displacements = append(mr.Displacements, flat)
				}
			}
			rec.Multires = mr
		}
		f.Objects = append(f.Objects, rec)
	}
	raw, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}
