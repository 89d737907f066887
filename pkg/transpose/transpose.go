// Package transpose implements the multires transpose workflow: merge
// independently-subdivided objects into one editable target mesh while
// recording per-element provenance, then split the edited target back
// apart and propagate the edits into each source object's
// multiresolution displacement data.
package transpose

import (
	"errors"
	"os"

	"github.com/19829984/multires-transpose/pkg/scene"
	"github.com/charmbracelet/log"
)

// TargetName is the scene name given to the merged transpose target.
const TargetName = "Multires_Transpose_Target"

// Provenance layers written at build time and consumed at apply time.
const (
	// OriginalNameLayer names the source object, per face.
	OriginalNameLayer = "original_object_name"
	// OriginalVertexIndexLayer holds each vertex's index inside the
	// source's evaluated mesh, per vertex.
	OriginalVertexIndexLayer = "original_vertex_index"
	// OriginalLevelLayer holds the subdivision level the source was
	// snapshotted at, per face. SentinelNoMultires marks sources
	// without multires data.
	OriginalLevelLayer = "original_subdivision_level"
	// OriginalOriginLayer holds the source object's world-space
	// origin, uniform across the source's vertices.
	OriginalOriginLayer = "original_object_origin"
)

// SentinelNoMultires marks a source snapshotted without a multires
// modifier; on apply its positions are copied raw instead of reshaped.
const SentinelNoMultires = -1

var (
	// ErrUnattributedFaces means the merged mesh has faces with no
	// recorded source name and cannot be split.
	ErrUnattributedFaces = errors.New("mesh has faces with no recorded source object name")
	// ErrNoContributors means no selected object qualified for the
	// transpose target.
	ErrNoContributors = errors.New("no objects contributed to the transpose target")
)

// Transposer orchestrates target creation and application against one
// scene.
type Transposer struct {
	scene *scene.Scene
	log   *log.Logger
}

// Option configures a Transposer.
type Option func(*Transposer)

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(t *Transposer) { t.log = l }
}

// New creates a Transposer for the given scene.
func New(sc *scene.Scene, opts ...Option) *Transposer {
	t := &Transposer{
		scene: sc,
		log:   log.NewWithOptions(os.Stderr, log.Options{Prefix: "transpose"}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
