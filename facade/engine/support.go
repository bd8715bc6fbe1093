package engine

import (
	"fmt"

	"github.com/arxos/bf2/facade/frame"
	"github.com/arxos/bf2/facade/geom"
	"github.com/arxos/bf2/facade/mesh"
	"github.com/arxos/bf2/facade/mesherr"
	"github.com/arxos/bf2/facade/perimeter"
	"github.com/arxos/bf2/facade/roof"
	"github.com/arxos/bf2/facade/spec"
)

// resolveFaceLayouts walks each face's FaceLayout, following a Slave's
// InheritsFrom chain to its owning Master, and returns the resolved
// per-face bays, repeat groups, and default material. A face with no
// FaceLayout entry, or a Slave chain that cycles or never reaches a
// Master, fails with InvalidFaceLinkage.
func resolveFaceLayouts(faces []frame.Face, layer spec.FloorLayer) ([][]spec.Bay, [][]spec.RepeatGroup, []*spec.MaterialID, error) {
	n := len(faces)
	bays := make([][]spec.Bay, n)
	groups := make([][]spec.RepeatGroup, n)
	mats := make([]*spec.MaterialID, n)

	for i := range faces {
		id := faces[i].ID
		visited := map[spec.FaceID]bool{}
		cur := id
		for {
			if visited[cur] {
				return nil, nil, nil, mesherr.NewInvalidFaceLinkage(id, "inherits-from cycle")
			}
			visited[cur] = true

			fl, ok := layer.Faces[cur]
			if !ok {
				return nil, nil, nil, mesherr.NewInvalidFaceLinkage(id, "no layout for face")
			}
			if fl.IsMaster {
				bays[i] = fl.Bays
				groups[i] = fl.Groups
				mats[i] = fl.DefaultMaterialID
				break
			}
			if len(fl.Bays) > 0 || len(fl.Groups) > 0 {
				return nil, nil, nil, mesherr.NewInvalidFaceLinkage(cur, "slave layout carries a duplicate bay payload")
			}
			cur = fl.InheritsFrom
		}
	}

	return bays, groups, mats, nil
}

// negativeDepthWarnings notes every authored negative bay depth; the
// solver clamps them to zero, and the warning is the only trace of the
// normalization the caller sees.
func negativeDepthWarnings(faces []frame.Face, resolvedBays [][]spec.Bay) []mesherr.Warning {
	var out []mesherr.Warning
	for i := range faces {
		for bi, b := range resolvedBays[i] {
			if b.DepthM < 0 {
				id := faces[i].ID
				out = append(out, mesherr.Warning{
					FaceID:  &id,
					Message: fmt.Sprintf("bay %d: negative depth %.3f clamped to 0", bi, b.DepthM),
				})
			}
		}
	}
	return out
}

// perimetersDiffer reports whether two consecutive layers' min-perimeter
// polygons differ enough to need a setback cap between them.
func perimetersDiffer(outer, inner perimeter.Polygon) bool {
	if len(outer.Vertices) != len(inner.Vertices) {
		return true
	}
	for i := range outer.Vertices {
		dx := outer.Vertices[i].X - inner.Vertices[i].X
		dy := outer.Vertices[i].Y - inner.Vertices[i].Y
		if dx*dx+dy*dy > 1e-10 {
			return true
		}
	}
	return false
}

// validSetback reports whether inner lies entirely within outer (the
// only topology the setback cap triangulator supports). A layer whose
// upper min-perimeter pokes outside the lower one is not a setback, it
// is an overhang BF2 does not model, and is surfaced as
// InvalidMinPerimeter rather than silently producing broken geometry.
func validSetback(outer, inner perimeter.Polygon) bool {
	for _, v := range inner.Vertices {
		if !pointInPolygon(v, outer.Vertices) {
			return false
		}
	}
	return true
}

func pointInPolygon(p geom.Vec2, poly []geom.Vec2) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi.Y > p.Y) != (pj.Y > p.Y) {
			xInt := pi.X + (p.Y-pi.Y)*(pj.X-pi.X)/(pj.Y-pi.Y)
			if p.X < xInt {
				inside = !inside
			}
		}
	}
	return inside
}

func triangulateSetback(b *mesh.Builder, outer, inner perimeter.Polygon, y float64, material spec.MaterialID) {
	roof.TriangulateSetbackCap(b, outer, inner, y, material)
}

func triangulateRoof(b *mesh.Builder, poly perimeter.Polygon, y float64, material spec.MaterialID) error {
	return roof.Triangulate(b, poly, y, material)
}
