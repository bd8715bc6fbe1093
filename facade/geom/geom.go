// Package geom provides the 2D/3D vector math the facade engine builds on:
// safe normalization, loop orientation, and segment/line intersection.
package geom

import "math"

// Epsilon is the default tolerance for degenerate-length and
// near-parallel checks throughout the engine.
const Epsilon = 1e-6

// Vec2 is a 2D vector or point in the ground plane (meters).
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Dot returns the dot product of v and o.
func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Length returns the Euclidean length of v.
func (v Vec2) Length() float64 { return math.Sqrt(v.Dot(v)) }

// Normalized returns v scaled to unit length, or (false) if v is shorter
// than Epsilon. Callers must check the bool rather than divide by a
// near-zero length.
func (v Vec2) Normalized() (Vec2, bool) {
	l := v.Length()
	if l < Epsilon {
		return Vec2{}, false
	}
	return Vec2{v.X / l, v.Y / l}, true
}

// Rotated90CW returns v rotated -90 degrees (clockwise), used to derive
// the outward normal of a CCW loop edge from its tangent.
func (v Vec2) Rotated90CW() Vec2 {
	return Vec2{v.Y, -v.X}
}

// Rotated returns v rotated by theta radians counter-clockwise.
func (v Vec2) Rotated(theta float64) Vec2 {
	c, s := math.Cos(theta), math.Sin(theta)
	return Vec2{v.X*c - v.Y*s, v.X*s + v.Y*c}
}

// Lerp returns the linear interpolation between v and o at t in [0,1].
func Lerp(v, o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Vec3 is a 3D vector or point (meters): u along tangent, n along
// outward normal, y vertical, or world x/y/z once transformed.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// SignedArea2 returns twice the signed area of the polygon described by
// pts. Positive means counter-clockwise when viewed from above (+Y up,
// standard math orientation with Y as the second ground-plane axis).
func SignedArea2(pts []Vec2) float64 {
	n := len(pts)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		sum += a.X*b.Y - b.X*a.Y
	}
	return sum
}

// IsCCW reports whether the polygon pts is wound counter-clockwise.
func IsCCW(pts []Vec2) bool {
	return SignedArea2(pts) > 0
}

// Centroid returns the area-weighted centroid of the polygon pts. Falls
// back to the arithmetic mean for degenerate (near-zero-area) polygons.
func Centroid(pts []Vec2) Vec2 {
	n := len(pts)
	if n == 0 {
		return Vec2{}
	}
	area2 := SignedArea2(pts)
	if math.Abs(area2) < Epsilon {
		var sum Vec2
		for _, p := range pts {
			sum = sum.Add(p)
		}
		return sum.Scale(1.0 / float64(n))
	}
	var cx, cy float64
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		cross := a.X*b.Y - b.X*a.Y
		cx += (a.X + b.X) * cross
		cy += (a.Y + b.Y) * cross
	}
	factor := 1.0 / (3.0 * area2)
	return Vec2{cx * factor, cy * factor}
}

// LineIntersection finds the intersection of the infinite lines
// p1 + t*d1 and p2 + s*d2. ok is false when the lines are parallel
// within Epsilon.
func LineIntersection(p1, d1, p2, d2 Vec2) (Vec2, bool) {
	return LineIntersectionEps(p1, d1, p2, d2, Epsilon)
}

// LineIntersectionEps is LineIntersection with a caller-supplied
// parallelism tolerance.
func LineIntersectionEps(p1, d1, p2, d2 Vec2, eps float64) (Vec2, bool) {
	denom := d1.X*d2.Y - d1.Y*d2.X
	if math.Abs(denom) < eps {
		return Vec2{}, false
	}
	diff := p2.Sub(p1)
	t := (diff.X*d2.Y - diff.Y*d2.X) / denom
	return p1.Add(d1.Scale(t)), true
}

// SegmentsIntersect reports whether segment a1-a2 properly intersects
// segment b1-b2 (used by the simple-polygon validity check). Shared
// endpoints are not considered an intersection.
func SegmentsIntersect(a1, a2, b1, b2 Vec2) bool {
	d1 := orientation(b1, b2, a1)
	d2 := orientation(b1, b2, a2)
	d3 := orientation(a1, a2, b1)
	d4 := orientation(a1, a2, b2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

// orientation returns a signed value whose sign gives the turn
// direction of p->q->r: >0 counter-clockwise, <0 clockwise, 0 collinear.
func orientation(p, q, r Vec2) float64 {
	return (q.X-p.X)*(r.Y-p.Y) - (q.Y-p.Y)*(r.X-p.X)
}

// IsSimplePolygon reports whether the closed polygon pts has no
// self-intersections among its non-adjacent edges.
func IsSimplePolygon(pts []Vec2) bool {
	n := len(pts)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := pts[i], pts[(i+1)%n]
		for j := i + 1; j < n; j++ {
			if j == i || (j+1)%n == i {
				continue
			}
			b1, b2 := pts[j], pts[(j+1)%n]
			if SegmentsIntersect(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}
