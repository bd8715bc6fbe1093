// Package mesh defines the frozen mesh output and the builder used to
// assemble it: vertex deduplication, material grouping, and debug-mode
// invariant assertions.
package mesh

import (
	"fmt"
	"math"

	"github.com/arxos/bf2/facade/geom"
	"github.com/arxos/bf2/facade/mesherr"
	"github.com/arxos/bf2/facade/spec"
)

// RoleTag is the per-triangle role metadata.
type RoleTag int

const (
	WallExterior RoleTag = iota
	WallReturn
	TopCap
	Roof
	SetbackCap
)

func (t RoleTag) String() string {
	switch t {
	case WallExterior:
		return "WallExterior"
	case WallReturn:
		return "WallReturn"
	case TopCap:
		return "TopCap"
	case Roof:
		return "Roof"
	case SetbackCap:
		return "SetbackCap"
	default:
		return "Unknown"
	}
}

// Vertex is a mesh vertex: a world-space position plus its UV.
type Vertex struct {
	Pos geom.Vec3
	UV  [2]float64
}

// Mesh is the engine's frozen output: vertices, indices, material
// groups, and per-triangle role tags, plus an optional debug trace.
type Mesh struct {
	Vertices       []Vertex
	Triangles      [][3]int
	MaterialGroups map[spec.MaterialID][]int
	Tags           []RoleTag
	Debug          *DebugInfo
}

// DebugInfo carries the build's internal traces when BuildConfig
// requests them.
type DebugInfo struct {
	MinPerimetersPerLayer [][]geom.Vec2
	CornerDecisions       []string
	SolverTrace           []string
}

// quantize rounds a coordinate to a fixed grid so near-identical
// vertices (within mitering/float round-off) dedup to one index,
// satisfying the shared-edge invariant.
const quantizeScale = 1e7 // 0.1 micrometer grid in meters

type vkey [3]int64

func quantizeVec3(v geom.Vec3) vkey {
	return vkey{
		int64(math.Round(v.X * quantizeScale)),
		int64(math.Round(v.Y * quantizeScale)),
		int64(math.Round(v.Z * quantizeScale)),
	}
}

// Builder accumulates vertices and triangles while deduplicating shared
// vertices and grouping triangles by resolved material id.
type Builder struct {
	vertices []Vertex
	index    map[vkey]int
	triangles [][3]int
	tags      []RoleTag
	groups    map[spec.MaterialID][]int
}

// NewBuilder creates an empty mesh Builder.
func NewBuilder() *Builder {
	return &Builder{
		index:  make(map[vkey]int),
		groups: make(map[spec.MaterialID][]int),
	}
}

// AddVertex returns the index of pos/uv, reusing an existing vertex
// within the quantization grid rather than appending a duplicate.
func (b *Builder) AddVertex(pos geom.Vec3, uv [2]float64) int {
	k := quantizeVec3(pos)
	if idx, ok := b.index[k]; ok {
		return idx
	}
	idx := len(b.vertices)
	b.vertices = append(b.vertices, Vertex{Pos: pos, UV: uv})
	b.index[k] = idx
	return idx
}

// AddTriangle appends a triangle (vertex indices i0,i1,i2, CCW outward)
// tagged with role and assigned to material's group.
func (b *Builder) AddTriangle(i0, i1, i2 int, role RoleTag, material spec.MaterialID) {
	triIdx := len(b.triangles)
	b.triangles = append(b.triangles, [3]int{i0, i1, i2})
	b.tags = append(b.tags, role)
	b.groups[material] = append(b.groups[material], triIdx)
}

// Triangle returns the three world-space vertex positions of triangle i.
func (b *Builder) Triangle(i int) (geom.Vec3, geom.Vec3, geom.Vec3) {
	t := b.triangles[i]
	return b.vertices[t[0]].Pos, b.vertices[t[1]].Pos, b.vertices[t[2]].Pos
}

// Len returns the current triangle count.
func (b *Builder) Len() int { return len(b.triangles) }

// Build finalizes the mesh. When checkInvariants is true it runs the
// non-degeneracy and non-NaN assertions and returns DegenerateGeometry
// on the first offending triangle.
func (b *Builder) Build(checkInvariants bool, debug *DebugInfo) (*Mesh, error) {
	m := &Mesh{
		Vertices:       b.vertices,
		Triangles:      b.triangles,
		MaterialGroups: b.groups,
		Tags:           b.tags,
		Debug:          debug,
	}

	if checkInvariants {
		if err := CheckInvariants(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// CheckInvariants runs the debug-mode non-degeneracy and non-NaN assertions.
func CheckInvariants(m *Mesh) error {
	for i, tri := range m.Triangles {
		a, b, c := m.Vertices[tri[0]].Pos, m.Vertices[tri[1]].Pos, m.Vertices[tri[2]].Pos
		if hasNaNOrInf(a) || hasNaNOrInf(b) || hasNaNOrInf(c) {
			return mesherr.NewDegenerateGeometry(i)
		}
		area := triangleArea(a, b, c)
		if area <= 1e-8 {
			return mesherr.NewDegenerateGeometry(i)
		}
	}
	return nil
}

func hasNaNOrInf(v geom.Vec3) bool {
	for _, f := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return true
		}
	}
	return false
}

func triangleArea(a, b, c geom.Vec3) float64 {
	ab := geom.Vec3{X: b.X - a.X, Y: b.Y - a.Y, Z: b.Z - a.Z}
	ac := geom.Vec3{X: c.X - a.X, Y: c.Y - a.Y, Z: c.Z - a.Z}
	cx := ab.Y*ac.Z - ab.Z*ac.Y
	cy := ab.Z*ac.X - ab.X*ac.Z
	cz := ab.X*ac.Y - ab.Y*ac.X
	return 0.5 * math.Sqrt(cx*cx+cy*cy+cz*cz)
}

// Summary is a lightweight, loggable description of a mesh (used by
// internal/store to persist a build's result without the full geometry).
type Summary struct {
	VertexCount   int
	TriangleCount int
	MaterialCount int
}

// Summarize reduces a Mesh to its Summary.
func Summarize(m *Mesh) Summary {
	return Summary{
		VertexCount:   len(m.Vertices),
		TriangleCount: len(m.Triangles),
		MaterialCount: len(m.MaterialGroups),
	}
}

func (s Summary) String() string {
	return fmt.Sprintf("vertices=%d triangles=%d materials=%d", s.VertexCount, s.TriangleCount, s.MaterialCount)
}
