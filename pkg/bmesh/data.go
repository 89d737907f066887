package bmesh

import (
	"fmt"
	"sort"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// MeshData is the JSON-serializable persisted form of a mesh.
// Vertex positions are flat: 3 floats per vertex (x,y,z). Edges are
// not stored; they are rebuilt from faces on load.
type MeshData struct {
	Vertices []float64   `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Faces    [][]int     `json:"faces"`    // vertex indices, source winding
	Layers   []LayerData `json:"layers,omitempty"`
}

// LayerData is the persisted form of one attribute layer. Exactly one
// of the value slices is populated, matching Type. Vectors are flat
// triples like MeshData.Vertices.
type LayerData struct {
	Domain  Domain    `json:"domain"`
	Type    LayerType `json:"type"`
	Name    string    `json:"name"`
	Strings []string  `json:"strings,omitempty"`
	Ints    []int     `json:"ints,omitempty"`
	Floats  []float64 `json:"floats,omitempty"`
	Vectors []float64 `json:"vectors,omitempty"`
}

// ToData converts the mesh to its persisted form. Element order is the
// mesh's current iteration order; layers are emitted sorted by
// (domain, type, name) so output is deterministic.
func (m *Mesh) ToData() *MeshData {
	d := &MeshData{
		Vertices: make([]float64, 0, len(m.Verts)*3),
		Faces:    make([][]int, 0, len(m.Faces)),
	}
	pos := make(map[*Vert]int, len(m.Verts))
	for i, v := range m.Verts {
		pos[v] = i
		d.Vertices = append(d.Vertices, v.Co.X, v.Co.Y, v.Co.Z)
	}
	for _, f := range m.Faces {
		fv := make([]int, len(f.Verts))
		for j, v := range f.Verts {
			fv[j] = pos[v]
		}
		d.Faces = append(d.Faces, fv)
	}

	keys := make([]layerKey, 0, len(m.layers))
	for k := range m.layers {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].dom != keys[b].dom {
			return keys[a].dom < keys[b].dom
		}
		if keys[a].typ != keys[b].typ {
			return keys[a].typ < keys[b].typ
		}
		return keys[a].name < keys[b].name
	})
	for _, k := range keys {
		l := m.layers[k]
		ld := LayerData{Domain: k.dom, Type: k.typ, Name: k.name}
		switch k.typ {
		case LayerString:
			ld.Strings = make([]string, len(l.strs))
			for i, b := range l.strs {
				ld.Strings[i] = string(b)
			}
		case LayerInt:
			ld.Ints = append([]int(nil), l.ints...)
		case LayerFloat:
			ld.Floats = append([]float64(nil), l.flts...)
		case LayerFloatVector:
			ld.Vectors = make([]float64, 0, len(l.vecs)*3)
			for _, v := range l.vecs {
				ld.Vectors = append(ld.Vectors, v.X, v.Y, v.Z)
			}
		}
		d.Layers = append(d.Layers, ld)
	}
	return d
}

// FromData rebuilds a mesh from its persisted form.
func FromData(d *MeshData) (*Mesh, error) {
	if d == nil {
		return nil, fmt.Errorf("bmesh: missing mesh data")
	}
	if len(d.Vertices)%3 != 0 {
		return nil, fmt.Errorf("bmesh: vertex array length %d is not a multiple of 3", len(d.Vertices))
	}
	m := New()
	n := len(d.Vertices) / 3
	for i := 0; i < n; i++ {
		m.NewVert(v3.Vec{X: d.Vertices[i*3], Y: d.Vertices[i*3+1], Z: d.Vertices[i*3+2]})
	}
	for fi, fv := range d.Faces {
		verts := make([]*Vert, len(fv))
		for j, vi := range fv {
			if vi < 0 || vi >= n {
				return nil, fmt.Errorf("bmesh: face %d references vertex %d of %d", fi, vi, n)
			}
			verts[j] = m.Verts[vi]
		}
		m.NewFace(verts...)
	}
	for _, ld := range d.Layers {
		switch ld.Type {
		case LayerString:
			m.WriteStringLayer(ld.Domain, ld.Name, ld.Strings)
		case LayerInt:
			m.WriteIntLayer(ld.Domain, ld.Name, ld.Ints)
		case LayerFloat:
			m.WriteFloatLayer(ld.Domain, ld.Name, ld.Floats)
		case LayerFloatVector:
			vecs := make([]v3.Vec, len(ld.Vectors)/3)
			for i := range vecs {
				vecs[i] = v3.Vec{X: ld.Vectors[i*3], Y: ld.Vectors[i*3+1], Z: ld.Vectors[i*3+2]}
			}
			m.WriteVectorLayer(ld.Domain, ld.Name, vecs)
		default:
			return nil, fmt.Errorf("bmesh: unknown layer type %d for layer %q", int(ld.Type), ld.Name)
		}
	}
	return m, nil
}
