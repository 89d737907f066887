// Package multires implements a multiresolution modifier: a base mesh
// plus a hierarchy of subdivision levels, each level storing a
// displacement delta from the linearly subdivided previous level.
// Subdivision uses Catmull-Clark connectivity (one quad per face
// corner, built from edge midpoints and face centers) with linear
// vertex placement, so topology per level is deterministic and
// displacement arrays stay valid across evaluations.
package multires

import (
	"fmt"

	"github.com/19829984/multires-transpose/pkg/bmesh"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Modifier is a multiresolution modifier. The zero value is not usable;
// use New.
type Modifier struct {
	name   string
	levels int
	// disps[l-1] holds one displacement vector per vertex of the
	// level-l subdivided mesh. A nil or short entry means no data
	// has been baked at that level yet.
	disps [][]v3.Vec
}

// New creates a multires modifier with the given active level.
func New(name string, levels int) *Modifier {
	if levels < 0 {
		levels = 0
	}
	return &Modifier{name: name, levels: levels}
}

// Name returns the modifier's name.
func (m *Modifier) Name() string { return m.name }

// Levels returns the active subdivision level.
func (m *Modifier) Levels() int { return m.levels }

// SetLevels changes the active subdivision level. Negative levels clamp
// to zero. Raising the level past TotalLevels is allowed; new levels
// simply have no displacement until a reshape bakes some.
func (m *Modifier) SetLevels(n int) {
	if n < 0 {
		n = 0
	}
	m.levels = n
}

// TotalLevels returns the deepest level with allocated displacement
// data.
func (m *Modifier) TotalLevels() int { return len(m.disps) }

// Apply evaluates the modifier at its active level. The base mesh is
// not mutated.
func (m *Modifier) Apply(base *bmesh.Mesh) (*bmesh.Mesh, error) {
	return m.Evaluate(base, m.levels)
}

// Evaluate subdivides base level times, adding the stored displacement
// at each level that has data.
func (m *Modifier) Evaluate(base *bmesh.Mesh, level int) (*bmesh.Mesh, error) {
	if level < 0 {
		return nil, fmt.Errorf("multires: negative level %d", level)
	}
	cur := base.Copy()
	for l := 1; l <= level; l++ {
		cur = subdivideOnce(cur)
		if l-1 < len(m.disps) && len(m.disps[l-1]) == len(cur.Verts) {
			for i, v := range cur.Verts {
				v.Co = v.Co.Add(m.disps[l-1][i])
			}
		}
	}
	return cur, nil
}

// Reshape bakes the difference between target and the evaluated shape
// at the active level into that level's displacement. Displacement at
// deeper levels is untouched, so detail sculpted there survives. At
// level zero the base mesh positions are overwritten directly.
func (m *Modifier) Reshape(base, target *bmesh.Mesh) error {
	if m.levels == 0 {
		if err := bmesh.CopyVertLocations(target, base); err != nil {
			return fmt.Errorf("multires reshape at level 0: %w", err)
		}
		return nil
	}
	eval, err := m.Evaluate(base, m.levels)
	if err != nil {
		return err
	}
	if eval.VertCount() != target.VertCount() {
		return fmt.Errorf("multires reshape: %w: evaluated has %d verts, target has %d",
			bmesh.ErrVertCountMismatch, eval.VertCount(), target.VertCount())
	}
	d := m.ensureLevel(m.levels, eval.VertCount())
	for i, v := range eval.Verts {
		d[i] = d[i].Add(target.Verts[i].Co.Sub(v.Co))
	}
	return nil
}

// Displacements returns the stored per-level displacement arrays.
// Intended for persistence; the returned slices are live.
func (m *Modifier) Displacements() [][]v3.Vec { return m.disps }

// SetDisplacements replaces the stored displacement arrays.
func (m *Modifier) SetDisplacements(d [][]v3.Vec) { m.disps = d }

// ensureLevel returns the displacement array for the given level,
// allocating zero-filled storage sized to count if needed.
func (m *Modifier) ensureLevel(level, count int) []v3.Vec {
	for len(m.disps) < level {
		m.disps = append(m.disps, nil)
	}
	if len(m.disps[level-1]) != count {
		m.disps[level-1] = make([]v3.Vec, count)
	}
	return m.disps[level-1]
}
