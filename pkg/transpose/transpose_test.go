package transpose

import (
	"bytes"
	"io"
	"testing"

	"github.com/19829984/multires-transpose/pkg/bmesh"
	"github.com/19829984/multires-transpose/pkg/multires"
	"github.com/19829984/multires-transpose/pkg/scene"
	"github.com/charmbracelet/log"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietTransposer(sc *scene.Scene) *Transposer {
	return New(sc, WithLogger(log.New(io.Discard)))
}

func quadMesh() *bmesh.Mesh {
	m := bmesh.New()
	a := m.NewVert(v3.Vec{X: 0, Y: 0})
	b := m.NewVert(v3.Vec{X: 1, Y: 0})
	c := m.NewVert(v3.Vec{X: 1, Y: 1})
	d := m.NewVert(v3.Vec{X: 0, Y: 1})
	m.NewFace(a, b, c, d)
	return m
}

func cubeMesh() *bmesh.Mesh {
	m := bmesh.New()
	var v [8]*bmesh.Vert
	for i, co := range []v3.Vec{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	} {
		v[i] = m.NewVert(co)
	}
	for _, f := range [][4]int{
		{0, 1, 2, 3}, {4, 7, 6, 5},
		{0, 4, 5, 1}, {1, 5, 6, 2},
		{2, 6, 7, 3}, {3, 7, 4, 0},
	} {
		m.NewFace(v[f[0]], v[f[1]], v[f[2]], v[f[3]])
	}
	return m
}

// buildThreeQuadScene links three single-quad objects named A, B, C.
func buildThreeQuadScene(t *testing.T) (*scene.Scene, []*scene.Object) {
	t.Helper()
	sc := scene.NewScene()
	var objs []*scene.Object
	for _, name := range []string{"A", "B", "C"} {
		o := scene.NewObject(name, quadMesh())
		require.NoError(t, sc.Link(o))
		objs = append(objs, o)
	}
	return sc, objs
}

func TestCreateTargetProvenanceCompleteness(t *testing.T) {
	sc, objs := buildThreeQuadScene(t)
	tr := quietTransposer(sc)

	target, err := tr.CreateTarget(objs, BuildOptions{IncludeNonMultires: true})
	require.NoError(t, err)
	require.Equal(t, TargetName, target.Name)

	names := target.Data.ReadStringLayer(bmesh.DomainFace, OriginalNameLayer)
	require.Len(t, names, 3)
	seen := map[string]bool{}
	for _, n := range names {
		assert.NotEmpty(t, n, "every face must carry a source name")
		seen[n] = true
	}
	assert.Equal(t, map[string]bool{"A": true, "B": true, "C": true}, seen)

	levels := target.Data.ReadIntLayer(bmesh.DomainFace, OriginalLevelLayer)
	for _, l := range levels {
		assert.Equal(t, SentinelNoMultires, l)
	}

	// Join index density: dense 0..n-1 with no gaps.
	for i, v := range target.Data.Verts {
		assert.Equal(t, i, v.Index)
	}

	// Per-source vertex indices form a permutation of 0..k-1.
	indices := target.Data.ReadIntLayer(bmesh.DomainVert, OriginalVertexIndexLayer)
	require.Len(t, indices, 12)
	for src := 0; src < 3; src++ {
		for k := 0; k < 4; k++ {
			assert.Equal(t, k, indices[src*4+k])
		}
	}

	assert.True(t, target.Selected)
	assert.Same(t, target, sc.Active())
}

func TestRoundTripSplitIdentity(t *testing.T) {
	sc, objs := buildThreeQuadScene(t)
	tr := quietTransposer(sc)
	target, err := tr.CreateTarget(objs, BuildOptions{IncludeNonMultires: true})
	require.NoError(t, err)

	parts, err := tr.splitByProvenance(target)
	require.NoError(t, err)
	require.Len(t, parts, 3)

	wantNames := map[string]bool{"A_Target": true, "B_Target": true, "C_Target": true}
	for _, p := range parts {
		assert.True(t, wantNames[p.Name], "unexpected part %q", p.Name)
		assert.Equal(t, 1, p.Data.FaceCount())
		assert.Equal(t, 4, p.Data.VertCount())
	}
}

func TestSplitFailsOnUnattributedFace(t *testing.T) {
	sc := scene.NewScene()
	tr := quietTransposer(sc)

	t.Run("no provenance layer at all", func(t *testing.T) {
		target := scene.NewObject(TargetName, quadMesh())
		_, err := tr.splitByProvenance(target)
		assert.ErrorIs(t, err, ErrUnattributedFaces)
	})

	t.Run("one empty name", func(t *testing.T) {
		m := bmesh.Join([]*bmesh.Mesh{quadMesh(), quadMesh()})
		m.WriteStringLayer(bmesh.DomainFace, OriginalNameLayer, []string{"A", ""})
		target := scene.NewObject(TargetName, m)
		_, err := tr.splitByProvenance(target)
		assert.ErrorIs(t, err, ErrUnattributedFaces)
		// No partial output may be linked.
		_, ok := sc.Object("A_Target")
		assert.False(t, ok)
	})
}

func TestCreateTargetSkipsWithoutMultires(t *testing.T) {
	sc, objs := buildThreeQuadScene(t)
	tr := quietTransposer(sc)

	_, err := tr.CreateTarget(objs, BuildOptions{})
	assert.ErrorIs(t, err, ErrNoContributors)
}

func TestRestoreVertexIndex(t *testing.T) {
	m := quadMesh()
	original := make([]v3.Vec, 4)
	for i, v := range m.Verts {
		original[i] = v.Co
	}
	m.WriteIntLayer(bmesh.DomainVert, OriginalVertexIndexLayer, []int{3, 1, 2, 0})

	RestoreVertexIndex(m)

	// Position 0 now holds the vertex whose original index was 0,
	// i.e. the vertex formerly at position 3.
	assert.Equal(t, original[3], m.Verts[0].Co)
	assert.Equal(t, original[1], m.Verts[1].Co)
	assert.Equal(t, original[2], m.Verts[2].Co)
	assert.Equal(t, original[0], m.Verts[3].Co)

	// The layer traveled with its vertices.
	idx := m.ReadIntLayer(bmesh.DomainVert, OriginalVertexIndexLayer)
	assert.Equal(t, []int{0, 1, 2, 3}, idx)
}

func TestApplySentinelCopiesPositions(t *testing.T) {
	sc := scene.NewScene()
	plane := scene.NewObject("Plane", quadMesh())
	plane.Location = v3.Vec{X: 5}
	require.NoError(t, sc.Link(plane))
	tr := quietTransposer(sc)

	target, err := tr.CreateTarget([]*scene.Object{plane}, BuildOptions{IncludeNonMultires: true})
	require.NoError(t, err)

	// The merged mesh sits in world space, offset by the plane's location.
	assert.Equal(t, 5.0, target.Data.Verts[0].Co.X)

	// Artist edit: lift everything by one unit.
	for _, v := range target.Data.Verts {
		v.Co = v.Co.Add(v3.Vec{Z: 1})
	}

	require.NoError(t, tr.ApplyTarget(target, ApplyOptions{
		Threshold:      1e-6,
		AutoIterations: true,
		MaxIterations:  10,
	}))

	// The world transform was undone; only the edit remains.
	for i, v := range plane.Data.Verts {
		assert.InDelta(t, 1.0, v.Co.Z, 1e-9, "vertex %d", i)
		assert.Less(t, v.Co.X, 2.0, "vertex %d kept its local X", i)
	}

	// Temporary split parts are gone.
	_, ok := sc.Object("Plane_Target")
	assert.False(t, ok)
}

func TestApplySentinelVertCountMismatch(t *testing.T) {
	sc := scene.NewScene()
	plane := scene.NewObject("Plane", quadMesh())
	require.NoError(t, sc.Link(plane))
	tr := quietTransposer(sc)

	target, err := tr.CreateTarget([]*scene.Object{plane}, BuildOptions{IncludeNonMultires: true})
	require.NoError(t, err)

	// Structural edit on the original between build and apply.
	plane.Data.NewVert(v3.Vec{X: 9})

	err = tr.ApplyTarget(target, ApplyOptions{Threshold: 1e-6, AutoIterations: true, MaxIterations: 10})
	assert.ErrorIs(t, err, bmesh.ErrVertCountMismatch)
}

func TestApplySkipsUnknownSource(t *testing.T) {
	sc, objs := buildThreeQuadScene(t)
	tr := quietTransposer(sc)
	target, err := tr.CreateTarget(objs, BuildOptions{IncludeNonMultires: true})
	require.NoError(t, err)

	sc.Unlink("B")

	require.NoError(t, tr.ApplyTarget(target, ApplyOptions{
		Threshold: 1e-6, AutoIterations: true, MaxIterations: 10,
	}), "a missing source skips its part; other parts still proceed")
}

func TestApplyWarnsBeforeReplacingNamedObject(t *testing.T) {
	sc, objs := buildThreeQuadScene(t)
	var buf bytes.Buffer
	tr := New(sc, WithLogger(log.New(&buf)))
	target, err := tr.CreateTarget(objs, BuildOptions{IncludeNonMultires: true})
	require.NoError(t, err)

	// A user object squatting on a split part's name.
	require.NoError(t, sc.Link(scene.NewObject("A_Target", quadMesh())))

	require.NoError(t, tr.ApplyTarget(target, ApplyOptions{
		Threshold: 1e-6, AutoIterations: true, MaxIterations: 10,
	}))
	assert.Contains(t, buf.String(), "replacing existing object")
	_, ok := sc.Object("A_Target")
	assert.False(t, ok, "replaced object stays gone after part cleanup")
}

func TestApplyAcceptsMisnamedTarget(t *testing.T) {
	sc := scene.NewScene()
	plane := scene.NewObject("Plane", quadMesh())
	require.NoError(t, sc.Link(plane))
	tr := quietTransposer(sc)

	target, err := tr.CreateTarget([]*scene.Object{plane}, BuildOptions{IncludeNonMultires: true})
	require.NoError(t, err)

	// Renamed by the artist: warn and proceed.
	sc.Unlink(target.Name)
	target.Name = "Renamed"
	require.NoError(t, sc.Link(target))

	assert.NoError(t, tr.ApplyTarget(target, ApplyOptions{
		Threshold: 1e-6, AutoIterations: true, MaxIterations: 10,
	}))
}

// TestCubeAndPlaneScenario is the full workflow: a multires cube and a
// plain plane are merged at level 1, the merge is edited, and apply
// reshapes the cube's displacement while overwriting the plane's base
// positions.
func TestCubeAndPlaneScenario(t *testing.T) {
	sc := scene.NewScene()
	cube := scene.NewObject("Cube", cubeMesh())
	cubeMod := multires.New("Multires", 2)
	cube.Modifiers = append(cube.Modifiers, cubeMod)
	require.NoError(t, sc.Link(cube))
	plane := scene.NewObject("Plane", quadMesh())
	plane.Location = v3.Vec{X: 10}
	require.NoError(t, sc.Link(plane))
	tr := quietTransposer(sc)

	target, err := tr.CreateTarget([]*scene.Object{cube, plane}, BuildOptions{
		Level:              1,
		IncludeNonMultires: true,
	})
	require.NoError(t, err)

	// Cube at level 1: 8 + 12 + 6 = 26 verts, 24 quads. Plane: 4 and 1.
	require.Equal(t, 30, target.Data.VertCount())
	require.Equal(t, 25, target.Data.FaceCount())

	names := target.Data.ReadStringLayer(bmesh.DomainFace, OriginalNameLayer)
	levels := target.Data.ReadIntLayer(bmesh.DomainFace, OriginalLevelLayer)
	for f := 0; f < 24; f++ {
		require.Equal(t, "Cube", names[f])
		require.Equal(t, 1, levels[f])
	}
	require.Equal(t, "Plane", names[24])
	require.Equal(t, SentinelNoMultires, levels[24])

	// Expected cube shape after the edit: current level-1 evaluation
	// lifted by one unit.
	expected, err := sc.Evaluated(cube)
	require.NoError(t, err)
	for _, v := range expected.Verts {
		v.Co = v.Co.Add(v3.Vec{Z: 1})
	}

	// Artist edit on the merge.
	for _, v := range target.Data.Verts {
		v.Co = v.Co.Add(v3.Vec{Z: 1})
	}

	require.NoError(t, tr.ApplyTarget(target, ApplyOptions{
		Threshold:      1e-9,
		AutoIterations: true,
		MaxIterations:  10,
	}))

	// The cube's multires displacement now reproduces the edit.
	got, err := sc.Evaluated(cube)
	require.NoError(t, err)
	require.Equal(t, expected.VertCount(), got.VertCount())
	for i := range got.Verts {
		assert.InDelta(t, expected.Verts[i].Co.X, got.Verts[i].Co.X, 1e-9)
		assert.InDelta(t, expected.Verts[i].Co.Y, got.Verts[i].Co.Y, 1e-9)
		assert.InDelta(t, expected.Verts[i].Co.Z, got.Verts[i].Co.Z, 1e-9)
	}
	// The cube's base mesh itself is untouched; the edit lives in the
	// displacement data.
	assert.Equal(t, -1.0, cube.Data.Verts[0].Co.Z)

	// The plane's base positions were overwritten directly.
	for i, v := range plane.Data.Verts {
		assert.InDelta(t, 1.0, v.Co.Z, 1e-9, "plane vertex %d", i)
	}

	// Temporaries cleaned up, modifier level restored.
	_, ok := sc.Object("Cube_Target")
	assert.False(t, ok)
	_, ok = sc.Object("Plane_Target")
	assert.False(t, ok)
	assert.Equal(t, 1, cubeMod.Levels(), "level forced at build time stays until apply restores around reshape")
}
