package bmesh

import (
	"errors"
	"fmt"
)

// ErrVertCountMismatch is returned when a position-for-position copy is
// attempted between meshes of different vertex counts.
var ErrVertCountMismatch = errors.New("vertex count mismatch")

// Join merges the given meshes into one new mesh, in input order. Every
// vertex is copied with a new identity and its original position; faces
// are rebuilt over the copied vertices with source winding. All layers
// present on any input are declared on the output first, then values
// are carried to the matching copied element in the same pass. Output
// indices are dense and contiguous; one source's elements are never
// interleaved with another's.
func Join(meshes []*Mesh) *Mesh {
	out := New()
	for _, m := range meshes {
		out.declareLayersFrom(m)
	}

	for _, m := range meshes {
		remap := make(map[*Vert]*Vert, len(m.Verts))
		cornerBase := out.CornerCount()

		for i, v := range m.Verts {
			nv := out.NewVert(v.Co)
			remap[v] = nv
			out.copyLayerValues(DomainVert, nv.Index, m, i)
		}

		srcCorner := 0
		for i, f := range m.Faces {
			fv := make([]*Vert, len(f.Verts))
			for j, v := range f.Verts {
				fv[j] = remap[v]
			}
			nf := out.NewFace(fv...)
			out.copyLayerValues(DomainFace, nf.Index, m, i)
			for j := range f.Verts {
				out.copyLayerValues(DomainCorner, cornerBase+srcCorner+j, m, srcCorner+j)
			}
			srcCorner += len(f.Verts)
		}

		// An edge usually already exists between two copied vertices
		// (created by NewFace above) and is not recreated; its
		// attribute values are still carried from the matching source
		// edge. Wire edges with no face survive via the NewEdge call.
		for i, e := range m.Edges {
			ne, _ := out.NewEdge(remap[e.Verts[0]], remap[e.Verts[1]])
			out.copyLayerValues(DomainEdge, ne.Index, m, i)
		}
	}

	out.IndexUpdateVerts()
	out.IndexUpdateEdges()
	out.IndexUpdateFaces()
	return out
}

// FromFaces builds a new mesh from a set of faces of src. Vertices
// touched by the faces are copied and renumbered starting from the
// minimum vertex index in the set, offset to zero, preserving their
// relative source order. All layers of src are declared on the result
// and values carried per element.
//
// The face set is expected to cover a dense vertex index range, which
// holds for the contiguous face ranges Join produces per source.
func FromFaces(src *Mesh, faces []*Face) (*Mesh, error) {
	if len(faces) == 0 {
		return nil, fmt.Errorf("bmesh: FromFaces called with no faces")
	}
	out := New()
	out.declareLayersFrom(src)

	minVert := faces[0].Verts[0].Index
	for _, f := range faces {
		for _, v := range f.Verts {
			if v.Index < minVert {
				minVert = v.Index
			}
		}
	}

	remap := make(map[*Vert]*Vert)
	for _, f := range faces {
		for _, v := range f.Verts {
			if _, seen := remap[v]; seen {
				continue
			}
			nv := out.NewVert(v.Co)
			out.copyLayerValues(DomainVert, len(out.Verts)-1, src, v.Index)
			nv.Index = v.Index - minVert
			remap[v] = nv
		}
	}
	// Re-sort so the sub-mesh's vertex order matches the source's
	// relative order, not face traversal discovery order.
	out.SortVerts()
	out.IndexUpdateVerts()

	srcCornerBase := make(map[*Face]int, len(faces))
	corner := 0
	for _, f := range src.Faces {
		srcCornerBase[f] = corner
		corner += len(f.Verts)
	}

	for _, f := range faces {
		fv := make([]*Vert, len(f.Verts))
		for j, v := range f.Verts {
			fv[j] = remap[v]
		}
		nf := out.NewFace(fv...)
		out.copyLayerValues(DomainFace, nf.Index, src, f.Index)
		base := out.CornerCount() - len(f.Verts)
		for j := range f.Verts {
			out.copyLayerValues(DomainCorner, base+j, src, srcCornerBase[f]+j)
		}
		// Boundary edges were just created (or found); carry the
		// matching source edge's attribute values. Shared edges are
		// copied once per adjacent face, idempotently.
		for j, v := range f.Verts {
			w := f.Verts[(j+1)%len(f.Verts)]
			se := src.EdgeBetween(v, w)
			oe := out.EdgeBetween(remap[v], remap[w])
			out.copyLayerValues(DomainEdge, oe.Index, src, se.Index)
		}
	}
	out.IndexUpdateFaces()
	out.IndexUpdateEdges()
	return out, nil
}

// CopyVertLocations copies vertex positions from src to dst,
// index-aligned. Both meshes must have the same vertex count;
// ErrVertCountMismatch is returned otherwise and nothing is copied.
func CopyVertLocations(src, dst *Mesh) error {
	if src.VertCount() != dst.VertCount() {
		return fmt.Errorf("%w: src has %d verts, dst has %d", ErrVertCountMismatch, src.VertCount(), dst.VertCount())
	}
	for i, v := range src.Verts {
		dst.Verts[i].Co = v.Co
	}
	return nil
}
