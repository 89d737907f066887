package bmesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Domain identifies which element collection a layer lives on.
type Domain int

const (
	DomainFace Domain = iota
	DomainEdge
	DomainVert
	DomainCorner // face corners, enumerated face-major
)

func (d Domain) String() string {
	switch d {
	case DomainFace:
		return "face"
	case DomainEdge:
		return "edge"
	case DomainVert:
		return "vert"
	case DomainCorner:
		return "corner"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// LayerType identifies the value representation of a layer.
type LayerType int

const (
	LayerString LayerType = iota
	LayerInt
	LayerFloat
	LayerFloatVector
)

func (t LayerType) String() string {
	switch t {
	case LayerString:
		return "string"
	case LayerInt:
		return "int"
	case LayerFloat:
		return "float"
	case LayerFloatVector:
		return "float_vector"
	default:
		return fmt.Sprintf("LayerType(%d)", int(t))
	}
}

// layerKey is the closed (Domain x LayerType x name) lookup key. All
// layer access dispatches over this tagged variant rather than runtime
// type inspection.
type layerKey struct {
	dom  Domain
	typ  LayerType
	name string
}

// layer is a dense per-element attribute array, index-aligned with its
// domain's element collection. Exactly one of the value slices is in
// use, selected by key.typ. Strings are held as UTF-8 byte buffers;
// encode/decode happens at the Write/Read boundary.
type layer struct {
	key   layerKey
	strs  [][]byte
	ints  []int
	flts  []float64
	vecs  []v3.Vec
}

func (l *layer) resize(n int) {
	switch l.key.typ {
	case LayerString:
		for len(l.strs) < n {
			l.strs = append(l.strs, nil)
		}
		l.strs = l.strs[:n]
	case LayerInt:
		for len(l.ints) < n {
			l.ints = append(l.ints, 0)
		}
		l.ints = l.ints[:n]
	case LayerFloat:
		for len(l.flts) < n {
			l.flts = append(l.flts, 0)
		}
		l.flts = l.flts[:n]
	case LayerFloatVector:
		for len(l.vecs) < n {
			l.vecs = append(l.vecs, v3.Vec{})
		}
		l.vecs = l.vecs[:n]
	}
}

// domainLen returns the element count of a domain.
func (m *Mesh) domainLen(d Domain) int {
	switch d {
	case DomainFace:
		return m.FaceCount()
	case DomainEdge:
		return m.EdgeCount()
	case DomainVert:
		return m.VertCount()
	case DomainCorner:
		return m.CornerCount()
	default:
		return 0
	}
}

// ensureLayer returns the layer for the key, creating it zero-filled at
// the domain's current size if absent. Reads share this path, so
// reading a never-written layer yields defaults rather than failing;
// use HasLayer when strict behavior is wanted.
func (m *Mesh) ensureLayer(d Domain, t LayerType, name string) *layer {
	k := layerKey{dom: d, typ: t, name: name}
	l, ok := m.layers[k]
	if !ok {
		l = &layer{key: k}
		l.resize(m.domainLen(d))
		m.layers[k] = l
	}
	return l
}

// HasLayer reports whether the layer exists without creating it.
func (m *Mesh) HasLayer(d Domain, t LayerType, name string) bool {
	_, ok := m.layers[layerKey{dom: d, typ: t, name: name}]
	return ok
}

// DeclareLayer creates an empty, zero-filled layer if absent.
func (m *Mesh) DeclareLayer(d Domain, t LayerType, name string) {
	m.ensureLayer(d, t, name)
}

// LayerInfo describes one existing layer.
type LayerInfo struct {
	Domain Domain
	Type   LayerType
	Name   string
}

// LayerInfos returns a description of every layer on the mesh. The
// order is unspecified; callers needing stable output should sort.
func (m *Mesh) LayerInfos() []LayerInfo {
	infos := make([]LayerInfo, 0, len(m.layers))
	for k := range m.layers {
		infos = append(infos, LayerInfo{Domain: k.dom, Type: k.typ, Name: k.name})
	}
	return infos
}

// growLayers resizes every layer on the domain to the current element
// count. Called whenever elements are created so layers stay
// index-aligned.
func (m *Mesh) growLayers(d Domain) {
	for k, l := range m.layers {
		if k.dom == d {
			l.resize(m.domainLen(d))
		}
	}
}

// permuteLayers reorders every layer on the domain so slot i takes the
// value previously at perm[i].
func (m *Mesh) permuteLayers(d Domain, perm []int) {
	for k, l := range m.layers {
		if k.dom != d {
			continue
		}
		switch k.typ {
		case LayerString:
			next := make([][]byte, len(perm))
			for i, p := range perm {
				next[i] = l.strs[p]
			}
			l.strs = next
		case LayerInt:
			next := make([]int, len(perm))
			for i, p := range perm {
				next[i] = l.ints[p]
			}
			l.ints = next
		case LayerFloat:
			next := make([]float64, len(perm))
			for i, p := range perm {
				next[i] = l.flts[p]
			}
			l.flts = next
		case LayerFloatVector:
			next := make([]v3.Vec, len(perm))
			for i, p := range perm {
				next[i] = l.vecs[p]
			}
			l.vecs = next
		}
	}
}

// declareLayersFrom declares every layer present on src, empty, on m.
func (m *Mesh) declareLayersFrom(src *Mesh) {
	for k := range src.layers {
		m.DeclareLayer(k.dom, k.typ, k.name)
	}
}

// copyLayerValues copies the value of every layer on the domain from
// src element srcIdx onto m's element dstIdx. Layers missing on m are
// skipped; callers declare the union of layers first.
func (m *Mesh) copyLayerValues(d Domain, dstIdx int, src *Mesh, srcIdx int) {
	for k, sl := range src.layers {
		if k.dom != d {
			continue
		}
		dl, ok := m.layers[k]
		if !ok {
			continue
		}
		switch k.typ {
		case LayerString:
			if srcIdx < len(sl.strs) && dstIdx < len(dl.strs) {
				dl.strs[dstIdx] = append([]byte(nil), sl.strs[srcIdx]...)
			}
		case LayerInt:
			if srcIdx < len(sl.ints) && dstIdx < len(dl.ints) {
				dl.ints[dstIdx] = sl.ints[srcIdx]
			}
		case LayerFloat:
			if srcIdx < len(sl.flts) && dstIdx < len(dl.flts) {
				dl.flts[dstIdx] = sl.flts[srcIdx]
			}
		case LayerFloatVector:
			if srcIdx < len(sl.vecs) && dstIdx < len(dl.vecs) {
				dl.vecs[dstIdx] = sl.vecs[srcIdx]
			}
		}
	}
}

// WriteStringLayer writes one string per element in domain order,
// creating the layer if absent. Writes stop at the shorter of the value
// slice and the element collection.
func (m *Mesh) WriteStringLayer(d Domain, name string, values []string) {
	l := m.ensureLayer(d, LayerString, name)
	n := min(len(values), len(l.strs))
	for i := 0; i < n; i++ {
		l.strs[i] = []byte(values[i])
	}
}

// ReadStringLayer returns one decoded string per element.
func (m *Mesh) ReadStringLayer(d Domain, name string) []string {
	l := m.ensureLayer(d, LayerString, name)
	out := make([]string, len(l.strs))
	for i, b := range l.strs {
		out[i] = string(b)
	}
	return out
}

// ReadStringLayerUniform returns the first element's value. The caller
// is responsible for having written uniform data.
func (m *Mesh) ReadStringLayerUniform(d Domain, name string) string {
	l := m.ensureLayer(d, LayerString, name)
	if len(l.strs) == 0 {
		return ""
	}
	return string(l.strs[0])
}

// WriteIntLayer writes one int per element in domain order.
func (m *Mesh) WriteIntLayer(d Domain, name string, values []int) {
	l := m.ensureLayer(d, LayerInt, name)
	n := min(len(values), len(l.ints))
	copy(l.ints[:n], values[:n])
}

// ReadIntLayer returns one int per element.
func (m *Mesh) ReadIntLayer(d Domain, name string) []int {
	l := m.ensureLayer(d, LayerInt, name)
	return append([]int(nil), l.ints...)
}

// ReadIntLayerUniform returns the first element's value.
func (m *Mesh) ReadIntLayerUniform(d Domain, name string) int {
	l := m.ensureLayer(d, LayerInt, name)
	if len(l.ints) == 0 {
		return 0
	}
	return l.ints[0]
}

// WriteFloatLayer writes one float per element in domain order.
func (m *Mesh) WriteFloatLayer(d Domain, name string, values []float64) {
	l := m.ensureLayer(d, LayerFloat, name)
	n := min(len(values), len(l.flts))
	copy(l.flts[:n], values[:n])
}

// ReadFloatLayer returns one float per element.
func (m *Mesh) ReadFloatLayer(d Domain, name string) []float64 {
	l := m.ensureLayer(d, LayerFloat, name)
	return append([]float64(nil), l.flts...)
}

// WriteVectorLayer writes one vector per element in domain order.
func (m *Mesh) WriteVectorLayer(d Domain, name string, values []v3.Vec) {
	l := m.ensureLayer(d, LayerFloatVector, name)
	n := min(len(values), len(l.vecs))
	copy(l.vecs[:n], values[:n])
}

// ReadVectorLayer returns one vector per element.
func (m *Mesh) ReadVectorLayer(d Domain, name string) []v3.Vec {
	l := m.ensureLayer(d, LayerFloatVector, name)
	return append([]v3.Vec(nil), l.vecs...)
}

// ReadVectorLayerUniform returns the first element's value.
func (m *Mesh) ReadVectorLayerUniform(d Domain, name string) v3.Vec {
	l := m.ensureLayer(d, LayerFloatVector, name)
	if len(l.vecs) == 0 {
		return v3.Vec{}
	}
	return l.vecs[0]
}
