package bmesh

import (
	"sort"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vert is a single mesh vertex. Index is stable within one mesh instance
// until a structural edit or an explicit sort changes it.
type Vert struct {
	Index int
	Co    v3.Vec

	edges []*Edge // incident edges, maintained by NewEdge
}

// Edge connects two vertices. Edges are created implicitly by NewFace
// and deduplicated: at most one edge exists between a vertex pair.
type Edge struct {
	Index int
	Verts [2]*Vert
}

// Face is a planar n-gon over existing vertices, wound in the order
// Verts is given.
type Face struct {
	Index int
	Verts []*Vert
}

// Mesh is an editable mesh with dense, contiguously indexed element
// collections and lazily created attribute layers (see layers.go).
type Mesh struct {
	Verts []*Vert
	Edges []*Edge
	Faces []*Face

	layers map[layerKey]*layer
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{layers: make(map[layerKey]*layer)}
}

// NewVert appends a vertex at the given position. All vertex-domain
// layers grow by one zero-valued slot.
func (m *Mesh) NewVert(co v3.Vec) *Vert {
	v := &Vert{Index: len(m.Verts), Co: co}
	m.Verts = append(m.Verts, v)
	m.growLayers(DomainVert)
	return v
}

// EdgeBetween returns the edge connecting a and b, or nil.
func (m *Mesh) EdgeBetween(a, b *Vert) *Edge {
	for _, e := range a.edges {
		if e.Verts[0] == b || e.Verts[1] == b {
			return e
		}
	}
	return nil
}

// NewEdge returns the edge between a and b, creating it if absent.
// The second result reports whether a new edge was created.
func (m *Mesh) NewEdge(a, b *Vert) (*Edge, bool) {
	if e := m.EdgeBetween(a, b); e != nil {
		return e, false
	}
	e := &Edge{Index: len(m.Edges), Verts: [2]*Vert{a, b}}
	m.Edges = append(m.Edges, e)
	a.edges = append(a.edges, e)
	b.edges = append(b.edges, e)
	m.growLayers(DomainEdge)
	return e, true
}

// NewFace appends a face over the given vertices, creating any missing
// boundary edges. Face-domain layers grow by one slot and corner-domain
// layers by len(verts) slots.
func (m *Mesh) NewFace(verts ...*Vert) *Face {
	for i, v := range verts {
		m.NewEdge(v, verts[(i+1)%len(verts)])
	}
	f := &Face{Index: len(m.Faces), Verts: verts}
	m.Faces = append(m.Faces, f)
	m.growLayers(DomainFace)
	m.growLayers(DomainCorner)
	return f
}

// VertCount returns the number of vertices.
func (m *Mesh) VertCount() int { return len(m.Verts) }

// EdgeCount returns the number of edges.
func (m *Mesh) EdgeCount() int { return len(m.Edges) }

// FaceCount returns the number of faces.
func (m *Mesh) FaceCount() int { return len(m.Faces) }

// CornerCount returns the total number of face corners.
func (m *Mesh) CornerCount() int {
	n := 0
	for _, f := range m.Faces {
		n += len(f.Verts)
	}
	return n
}

// SortVerts reorders the vertex collection by ascending Index. Vertex
// attribute layers are permuted alongside so values stay attached to
// their element.
func (m *Mesh) SortVerts() {
	perm := make([]int, len(m.Verts))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		return m.Verts[perm[a]].Index < m.Verts[perm[b]].Index
	})
	verts := make([]*Vert, len(m.Verts))
	for i, p := range perm {
		verts[i] = m.Verts[p]
	}
	m.Verts = verts
	m.permuteLayers(DomainVert, perm)
}

// IndexUpdateVerts renumbers vertices to their current position.
func (m *Mesh) IndexUpdateVerts() {
	for i, v := range m.Verts {
		v.Index = i
	}
}

// IndexUpdateEdges renumbers edges to their current position.
func (m *Mesh) IndexUpdateEdges() {
	for i, e := range m.Edges {
		e.Index = i
	}
}

// IndexUpdateFaces renumbers faces to their current position.
func (m *Mesh) IndexUpdateFaces() {
	for i, f := range m.Faces {
		f.Index = i
	}
}

// Transform applies the matrix to every vertex position in place.
func (m *Mesh) Transform(mat sdf.M44) {
	for _, v := range m.Verts {
		v.Co = mat.MulPosition(v.Co)
	}
}

// Copy returns a deep copy of the mesh, including all layers.
func (m *Mesh) Copy() *Mesh {
	out := New()
	out.declareLayersFrom(m)
	remap := make(map[*Vert]*Vert, len(m.Verts))
	for i, v := range m.Verts {
		nv := out.NewVert(v.Co)
		nv.Index = v.Index
		remap[v] = nv
		out.copyLayerValues(DomainVert, i, m, i)
	}
	corner := 0
	for i, f := range m.Faces {
		fv := make([]*Vert, len(f.Verts))
		for j, v := range f.Verts {
			fv[j] = remap[v]
		}
		out.NewFace(fv...)
		out.copyLayerValues(DomainFace, i, m, i)
		for j := range f.Verts {
			out.copyLayerValues(DomainCorner, corner+j, m, corner+j)
		}
		corner += len(f.Verts)
	}
	for i, e := range m.Edges {
		ne, _ := out.NewEdge(remap[e.Verts[0]], remap[e.Verts[1]])
		out.copyLayerValues(DomainEdge, ne.Index, m, i)
	}
	out.IndexUpdateEdges()
	return out
}

// Free releases the mesh contents. Using the mesh afterwards is invalid.
func (m *Mesh) Free() {
	m.Verts = nil
	m.Edges = nil
	m.Faces = nil
	m.layers = make(map[layerKey]*layer)
}
