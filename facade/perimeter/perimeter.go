// Package perimeter builds the stable minimum-perimeter core polygon
// by offsetting each face outward by its dMin (the minimum extruded
// position of its bays) and mitering at the corners the corner
// resolver already decided.
package perimeter

import (
	"github.com/arxos/bf2/facade/corner"
	"github.com/arxos/bf2/facade/frame"
	"github.com/arxos/bf2/facade/geom"
	"github.com/arxos/bf2/facade/mesherr"
)

// Polygon is the closed, loop-ordered min-perimeter polygon, one vertex
// per footprint corner. Downstream stages must treat it as read-only.
type Polygon struct {
	Vertices []geom.Vec2
}

// Build assembles the min-perimeter polygon from face frames, per-face
// dMin, and the corner decisions produced for this floor layer's corner
// i (between face i and face (i+1)%N).
func Build(faces []frame.Face, dMins []float64, decisions []corner.Decision) (Polygon, error) {
	n := len(faces)
	if n == 0 || len(dMins) != n || len(decisions) != n {
		return Polygon{}, mesherr.NewInvalidMinPerimeter(0)
	}

	verts := make([]geom.Vec2, n)
	for i := 0; i < n; i++ {
		verts[i] = decisions[i].MiterVertex
	}

	if !geom.IsSimplePolygon(verts) {
		return Polygon{}, mesherr.NewInvalidMinPerimeter(offendingCorner(verts))
	}

	return Polygon{Vertices: verts}, nil
}

// offendingCorner finds the lowest-index corner participating in a
// self-intersection, for the InvalidMinPerimeter error payload.
func offendingCorner(verts []geom.Vec2) int {
	n := len(verts)
	for i := 0; i < n; i++ {
		a1, a2 := verts[i], verts[(i+1)%n]
		for j := 0; j < n; j++ {
			if j == i || (j+1)%n == i || j == (i+1)%n {
				continue
			}
			b1, b2 := verts[j], verts[(j+1)%n]
			if geom.SegmentsIntersect(a1, a2, b1, b2) {
				return i
			}
		}
	}
	return 0
}
