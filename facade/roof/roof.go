// Package roof triangulates the min-perimeter polygon into the flat
// roof cap, and, for buildings whose floor layers have differing
// min-perimeters, the setback cap ring between an outer and inner loop.
package roof

import (
	"github.com/arxos/bf2/facade/geom"
	"github.com/arxos/bf2/facade/mesh"
	"github.com/arxos/bf2/facade/perimeter"
	"github.com/arxos/bf2/facade/spec"
)

// Triangulate ear-clips poly (assumed CCW and simple) at height y into
// CCW triangles tagged Roof, lowest-index ear first on every tie so the
// result is deterministic regardless of clipping-order ambiguity.
func Triangulate(b *mesh.Builder, poly perimeter.Polygon, y float64, material spec.MaterialID) error {
	indices, err := earClip(poly.Vertices)
	if err != nil {
		return err
	}

	vertexIdx := make([]int, len(poly.Vertices))
	for i, v := range poly.Vertices {
		vertexIdx[i] = b.AddVertex(geom.Vec3{X: v.X, Y: y, Z: v.Y}, [2]float64{v.X, v.Y})
	}

	for _, tri := range indices {
		b.AddTriangle(vertexIdx[tri[0]], vertexIdx[tri[1]], vertexIdx[tri[2]], mesh.Roof, material)
	}
	return nil
}

// earClip triangulates a simple CCW polygon by repeatedly removing the
// lowest-index convex ear whose triangle contains no other polygon
// vertex. Returns triangle index triples into the original vertex list.
func earClip(verts []geom.Vec2) ([][3]int, error) {
	n := len(verts)
	if n < 3 {
		return nil, nil
	}

	remaining := make([]int, n)
	for i := range remaining {
		remaining[i] = i
	}

	var tris [][3]int
	guard := 0
	for len(remaining) > 3 {
		guard++
		if guard > n*n+16 {
			break // pathological input; stop rather than loop forever
		}
		clipped := false
		for k := 0; k < len(remaining); k++ {
			m := len(remaining)
			prev := remaining[(k-1+m)%m]
			cur := remaining[k]
			next := remaining[(k+1)%m]

			if !isConvex(verts[prev], verts[cur], verts[next]) {
				continue
			}
			if anyVertexInside(verts, remaining, prev, cur, next) {
				continue
			}

			tris = append(tris, [3]int{prev, cur, next})
			remaining = append(append([]int{}, remaining[:k]...), remaining[k+1:]...)
			clipped = true
			break
		}
		if !clipped {
			break // degenerate/self-intersecting input slipped past validation
		}
	}
	if len(remaining) == 3 {
		tris = append(tris, [3]int{remaining[0], remaining[1], remaining[2]})
	}
	return tris, nil
}

func isConvex(a, b, c geom.Vec2) bool {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	return cross > 1e-12
}

func anyVertexInside(verts []geom.Vec2, remaining []int, ia, ib, ic int) bool {
	a, b, c := verts[ia], verts[ib], verts[ic]
	for _, idx := range remaining {
		if idx == ia || idx == ib || idx == ic {
			continue
		}
		if pointInTriangle(verts[idx], a, b, c) {
			return true
		}
	}
	return false
}

func pointInTriangle(p, a, b, c geom.Vec2) bool {
	d1 := sign(p, a, b)
	d2 := sign(p, b, c)
	d3 := sign(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func sign(p, a, b geom.Vec2) float64 {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}

// TriangulateSetbackCap triangulates the horizontal ring between an
// outer polygon (the lower layer's min-perimeter) and an inner polygon
// (the upper layer's min-perimeter) at height y, bridging them with a
// triangle strip matched by nearest vertex between the two loops.
// Both polygons must be simple and non-intersecting with each other;
// the caller is responsible for surfacing that as InvalidMinPerimeter
// before calling this.
func TriangulateSetbackCap(b *mesh.Builder, outer, inner perimeter.Polygon, y float64, material spec.MaterialID) {
	on := len(outer.Vertices)
	in := len(inner.Vertices)
	if on == 0 || in == 0 {
		return
	}

	outerIdx := make([]int, on)
	for i, v := range outer.Vertices {
		outerIdx[i] = b.AddVertex(geom.Vec3{X: v.X, Y: y, Z: v.Y}, [2]float64{v.X, v.Y})
	}
	innerIdx := make([]int, in)
	for i, v := range inner.Vertices {
		innerIdx[i] = b.AddVertex(geom.Vec3{X: v.X, Y: y, Z: v.Y}, [2]float64{v.X, v.Y})
	}

	// Walk the outer loop; for each outer edge o0-o1, fan from o0 across
	// the inner vertices up to the one nearest o1, then close the step
	// with the triangle (o0, that inner vertex, o1).
	ii := closestIndex(outer.Vertices[0], inner.Vertices)

	for k := 0; k < on; k++ {
		o0 := k
		o1 := (k + 1) % on
		i0 := ii
		// advance ii to the inner vertex nearest o1, bridging every step
		nextI := closestIndex(outer.Vertices[o1], inner.Vertices)
		for i0 != nextI {
			i1 := (i0 + 1) % in
			b.AddTriangle(outerIdx[o0], innerIdx[i0], innerIdx[i1], mesh.SetbackCap, material)
			i0 = i1
		}
		b.AddTriangle(outerIdx[o0], innerIdx[i0], outerIdx[o1], mesh.SetbackCap, material)
		ii = nextI
	}
}

func closestIndex(p geom.Vec2, loop []geom.Vec2) int {
	best := 0
	bestD := distSq(p, loop[0])
	for i := 1; i < len(loop); i++ {
		d := distSq(p, loop[i])
		if d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}

func distSq(a, b geom.Vec2) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}
