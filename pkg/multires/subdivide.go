package multires

import (
	"github.com/19829984/multires-transpose/pkg/bmesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// subdivideOnce performs one linear subdivision pass with Catmull-Clark
// connectivity: every k-gon becomes k quads built from its corners,
// edge midpoints and face center. New vertices are appended in a fixed
// order (originals, then edge midpoints in edge order, then face
// centers in face order) so the result has V + E + F vertices and the
// vertex numbering is reproducible for any given input mesh.
func subdivideOnce(m *bmesh.Mesh) *bmesh.Mesh {
	out := bmesh.New()

	orig := make(map[*bmesh.Vert]*bmesh.Vert, len(m.Verts))
	for _, v := range m.Verts {
		orig[v] = out.NewVert(v.Co)
	}

	mid := make(map[*bmesh.Edge]*bmesh.Vert, len(m.Edges))
	for _, e := range m.Edges {
		co := e.Verts[0].Co.Add(e.Verts[1].Co).MulScalar(0.5)
		mid[e] = out.NewVert(co)
	}

	center := make(map[*bmesh.Face]*bmesh.Vert, len(m.Faces))
	for _, f := range m.Faces {
		var sum v3.Vec
		for _, v := range f.Verts {
			sum = sum.Add(v.Co)
		}
		center[f] = out.NewVert(sum.MulScalar(1 / float64(len(f.Verts))))
	}

	for _, f := range m.Faces {
		k := len(f.Verts)
		for i := 0; i < k; i++ {
			v := f.Verts[i]
			next := f.Verts[(i+1)%k]
			prev := f.Verts[(i-1+k)%k]
			out.NewFace(
				orig[v],
				mid[m.EdgeBetween(v, next)],
				center[f],
				mid[m.EdgeBetween(prev, v)],
			)
		}
	}

	out.IndexUpdateVerts()
	out.IndexUpdateEdges()
	out.IndexUpdateFaces()
	return out
}
