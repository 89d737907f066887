package transpose

import (
	"fmt"
	"time"

	"github.com/19829984/multires-transpose/pkg/bmesh"
	"github.com/19829984/multires-transpose/pkg/scene"
)

// originDriftTolerance is how far a source object's origin may have
// moved since build before apply warns that the inverse transform is
// likely stale.
const originDriftTolerance = 1e-6

// ApplyOptions controls transpose target application.
type ApplyOptions struct {
	// Threshold is the convergence error bound for adaptive mode.
	Threshold float64
	// AutoIterations enables adaptive convergence; when false the
	// reshape operator runs exactly MaxIterations times per object.
	AutoIterations bool
	// MaxIterations bounds reshape passes per object in both modes.
	MaxIterations int
	// HideTarget hides the merged target object after a successful
	// apply.
	HideTarget bool
}

// ApplyTarget splits the merged target by provenance and propagates
// each part's edited shape back into its source object: multires
// sources are reshaped under the convergence controller at their
// recorded level, sentinel-level sources get a raw position copy.
// Temporary split objects are removed when apply finishes.
func (t *Transposer) ApplyTarget(target *scene.Object, opts ApplyOptions) error {
	start := time.Now()
	if target.Name != TargetName {
		t.log.Warn("active object is not named as a transpose target, applying anyway",
			"object", target.Name, "expected", TargetName)
	}

	parts, err := t.splitByProvenance(target)
	if err != nil {
		return err
	}
	defer func() {
		for _, part := range parts {
			t.scene.Unlink(part.Name)
			part.Data.Free()
		}
	}()

	for _, part := range parts {
		srcName := part.Data.ReadStringLayerUniform(bmesh.DomainFace, OriginalNameLayer)
		original, ok := t.scene.Object(srcName)
		if !ok {
			t.log.Warn("no object in scene for recorded source name, skipping part",
				"source", srcName)
			continue
		}

		RestoreVertexIndex(part.Data)

		// Undo the world-space placement applied at build time. This
		// uses the live object's transform, so it is only meaningful
		// if the object has not been moved since the target was built.
		part.Data.Transform(original.MatrixWorldInverse())
		recorded := part.Data.ReadVectorLayerUniform(bmesh.DomainVert, OriginalOriginLayer)
		if recorded.Sub(original.Location).Length() > originDriftTolerance {
			t.log.Warn("object origin changed since the target was built, result may be offset",
				"object", srcName, "recorded", recorded, "current", original.Location)
		}

		level := part.Data.ReadIntLayerUniform(bmesh.DomainFace, OriginalLevelLayer)
		if level == SentinelNoMultires {
			if err := bmesh.CopyVertLocations(part.Data, original.Data); err != nil {
				return fmt.Errorf("apply %q: %w", srcName, err)
			}
			t.log.Debug("copied raw positions", "object", srcName, "verts", part.Data.VertCount())
			continue
		}

		mod := original.Multires()
		if mod == nil {
			t.log.Warn("part was recorded with a subdivision level but the object no longer has a multires modifier, skipping",
				"object", srcName, "level", level)
			continue
		}
		prevLevel := mod.Levels()
		mod.SetLevels(level)
		result, err := Converge(
			func() error { return mod.Reshape(original.Data, part.Data) },
			func() (*bmesh.Mesh, error) { return t.scene.Evaluated(original) },
			part.Data,
			ConvergeOptions{
				Threshold:     opts.Threshold,
				Auto:          opts.AutoIterations,
				MaxIterations: opts.MaxIterations,
			},
		)
		mod.SetLevels(prevLevel)
		if err != nil {
			return fmt.Errorf("reshape %q: %w", srcName, err)
		}
		t.log.Debug("reshaped object",
			"object", srcName,
			"level", level,
			"iterations", result.Iterations,
			"diff", result.FinalDiff,
			"stop", result.Reason)
	}

	if opts.HideTarget {
		target.Hidden = true
	}
	t.log.Info("applied transpose target", "parts", len(parts), "took", time.Since(start))
	return nil
}

// splitByProvenance partitions the target mesh into one sub-mesh per
// recorded source name and links each as a temporary scene object named
// {source}_Target. It fails without output if any face is
// unattributed: a partially-provenanced mesh cannot be reliably
// reassigned.
//
// Faces of one source are assumed to occupy a contiguous index range,
// which Join guarantees and artist edits that reorder faces across the
// source boundary would break; the range [min,max] per source is
// extracted wholesale.
func (t *Transposer) splitByProvenance(target *scene.Object) ([]*scene.Object, error) {
	mesh := target.Data
	if !mesh.HasLayer(bmesh.DomainFace, bmesh.LayerString, OriginalNameLayer) {
		return nil, fmt.Errorf("split %q: %w", target.Name, ErrUnattributedFaces)
	}
	names := mesh.ReadStringLayer(bmesh.DomainFace, OriginalNameLayer)

	type span struct{ lo, hi int }
	spans := make(map[string]*span)
	var order []string
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("split %q: face %d: %w", target.Name, i, ErrUnattributedFaces)
		}
		s, ok := spans[name]
		if !ok {
			spans[name] = &span{lo: i, hi: i}
			order = append(order, name)
			continue
		}
		if i < s.lo {
			s.lo = i
		}
		if i > s.hi {
			s.hi = i
		}
	}

	var parts []*scene.Object
	for _, name := range order {
		s := spans[name]
		sub, err := bmesh.FromFaces(mesh, mesh.Faces[s.lo:s.hi+1])
		if err != nil {
			return nil, fmt.Errorf("split %q: source %q: %w", target.Name, name, err)
		}
		part := scene.NewObject(name+"_Target", sub)
		if _, taken := t.scene.Object(part.Name); taken {
			// Usually a leftover from an aborted apply, but the name
			// could belong to a user object.
			t.log.Warn("replacing existing object to make room for a split part",
				"object", part.Name)
			t.scene.Unlink(part.Name)
		}
		if err := t.scene.Link(part); err != nil {
			return nil, fmt.Errorf("link split part %q: %w", part.Name, err)
		}
		parts = append(parts, part)
	}
	t.log.Debug("split transpose target", "parts", len(parts))
	return parts, nil
}

// RestoreVertexIndex rewrites each vertex's index to the original
// source index recorded at build time, then re-sorts the vertex
// collection so iteration order matches the source mesh's vertex order
// at snapshot time. The mesh's current vertex order must still be
// positionally aligned with the recorded layer, which holds for a
// freshly split part; call exactly once per part lifecycle.
func RestoreVertexIndex(m *bmesh.Mesh) {
	indices := m.ReadIntLayer(bmesh.DomainVert, OriginalVertexIndexLayer)
	for i, v := range m.Verts {
		if i < len(indices) {
			v.Index = indices[i]
		}
	}
	m.SortVerts()
	m.IndexUpdateVerts()
}
