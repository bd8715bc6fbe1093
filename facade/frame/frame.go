// Package frame builds the per-face local (tangent, outward_normal)
// frame from a footprint loop, the first stage of a BF2 build.
package frame

import (
	"github.com/arxos/bf2/facade/geom"
	"github.com/arxos/bf2/facade/mesherr"
	"github.com/arxos/bf2/facade/spec"
)

// Face is one footprint edge with its stable id and local frame.
type Face struct {
	ID       spec.FaceID
	PStart   geom.Vec2
	PEnd     geom.Vec2
	Tangent  geom.Vec2
	Normal   geom.Vec2 // outward
	Length   float64
}

// Count returns the number of faces, which equals the footprint's
// vertex count.
func Count(faces []Face) int { return len(faces) }

// Next returns the face following face i in loop order (wrapping).
func Next(faces []Face, i int) Face { return faces[(i+1)%len(faces)] }

// Prev returns the face preceding face i in loop order (wrapping).
func Prev(faces []Face, i int) Face { return faces[(i-1+len(faces))%len(faces)] }

// Build derives face frames from a footprint loop. Degenerate edges
// (length < geom.Epsilon) are rejected with InvalidFootprint. A
// clockwise loop is reversed (the input slice is not mutated; Build
// works on a normalized copy and returns a warning) so every downstream
// stage can assume CCW winding.
func Build(loop []spec.Point2D) ([]Face, []mesherr.Warning, error) {
	if len(loop) < 3 {
		return nil, nil, mesherr.NewInvalidFootprint("fewer than 3 vertices")
	}

	pts := make([]geom.Vec2, len(loop))
	for i, p := range loop {
		pts[i] = geom.Vec2{X: p.X, Y: p.Z}
	}

	var warnings []mesherr.Warning
	if !geom.IsCCW(pts) {
		pts = reversed(pts)
		warnings = append(warnings, mesherr.Warning{Message: "footprint loop was clockwise; normalized to counter-clockwise"})
	}

	if !geom.IsSimplePolygon(pts) {
		return nil, nil, mesherr.NewInvalidFootprint("footprint self-intersects")
	}

	centroid := geom.Centroid(pts)
	n := len(pts)
	faces := make([]Face, n)
	for i := 0; i < n; i++ {
		start := pts[i]
		end := pts[(i+1)%n]
		edge := end.Sub(start)
		length := edge.Length()
		if length < geom.Epsilon {
			return nil, nil, mesherr.NewInvalidFootprint("degenerate edge shorter than epsilon")
		}
		tangent, _ := edge.Normalized()
		normal := tangent.Rotated90CW()

		mid := geom.Lerp(start, end, 0.5)
		if normal.Dot(centroid.Sub(mid)) >= 0 {
			// The invariant n_i . (C - M_i) < 0 failed; this can only
			// happen for a non-simple or degenerate loop that slipped
			// past the checks above.
			return nil, nil, mesherr.NewInvalidFootprint("face normal does not point outward")
		}

		faces[i] = Face{
			ID:      spec.FaceID(i),
			PStart:  start,
			PEnd:    end,
			Tangent: tangent,
			Normal:  normal,
			Length:  length,
		}
	}

	return faces, warnings, nil
}

func reversed(pts []geom.Vec2) []geom.Vec2 {
	out := make([]geom.Vec2, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
