// Package bmesh implements an editable in-memory mesh: indexed vertex,
// edge and face collections plus typed per-element attribute layers.
// It is the substrate the transpose workflow records provenance into
// and the common currency between the scene graph, the multires
// modifier and the transpose core.
package bmesh
