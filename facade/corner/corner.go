// Package corner implements the deterministic corner resolver:
// it decides the mitered min-perimeter vertex between two adjacent
// faces and, when both faces want to extrude into the corner, which one
// wins and how the loser ramps down to zero.
package corner

import (
	"github.com/arxos/bf2/facade/frame"
	"github.com/arxos/bf2/facade/geom"
)

// Winner identifies which of the two adjacent faces keeps its full
// extrusion into a corner.
type Winner int

const (
	Left Winner = iota
	Right
)

// FaceSlice is the subset of a face's state the corner resolver needs:
// its frame, its dMin for the current floor layer, and whether it wants
// to extrude positively right at the corner.
type FaceSlice struct {
	Face          frame.Face
	DMin          float64
	ExtrudesAtEnd bool // true if e(u) > 0 near the shared corner
}

// Decision is the resolver's output for one corner: the mitered
// min-perimeter vertex plus the ramp lengths the facade surface
// generator applies to the loser's exterior wall.
type Decision struct {
	MiterVertex   geom.Vec2
	LeftRampLen   float64
	RightRampLen  float64
	Winner        Winner
	BothExtrude   bool
}

// Strategy is the pluggable corner-resolution policy.
// Implementations must be deterministic: the same (left, right) input
// always yields the same Decision.
type Strategy interface {
	ResolveCorner(left, right FaceSlice) Decision
}

// OddWins is the default strategy: when both adjacent faces extrude
// into a shared corner, the face with the odd loop index (B, D, F, ...)
// yields and ramps down; the even-indexed face (A, C, E, ...) wins.
// CornerZoneM bounds the loser's ramp length; MiterEpsilon is the
// parallel-offset-line tolerance for the miter intersection.
type OddWins struct {
	CornerZoneM  float64
	MiterEpsilon float64
}

// NewOddWins returns the default OddWins strategy with the given corner
// zone length (meters). A non-positive value falls back to 0.25m.
func NewOddWins(cornerZoneM float64) OddWins {
	if cornerZoneM <= 0 {
		cornerZoneM = 0.25
	}
	return OddWins{CornerZoneM: cornerZoneM, MiterEpsilon: geom.Epsilon}
}

// ResolveCorner implements Strategy.
func (s OddWins) ResolveCorner(left, right FaceSlice) Decision {
	eps := s.MiterEpsilon
	if eps <= 0 {
		eps = geom.Epsilon
	}
	miter := MiterEps(left.Face, left.DMin, right.Face, right.DMin, eps)

	d := Decision{MiterVertex: miter}

	bothExtrude := left.ExtrudesAtEnd && right.ExtrudesAtEnd
	d.BothExtrude = bothExtrude
	if !bothExtrude {
		return d
	}

	// Even index (A, C, E, ...) wins; odd index yields.
	var winner Winner
	if int(left.Face.ID)%2 == 0 {
		winner = Left
	} else {
		winner = Right
	}
	d.Winner = winner

	rampLen := s.CornerZoneM
	leftHalf := left.Face.Length / 2
	rightHalf := right.Face.Length / 2
	if winner == Left {
		d.RightRampLen = minFloat(rampLen, rightHalf)
	} else {
		d.LeftRampLen = minFloat(rampLen, leftHalf)
	}

	return d
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Miter intersects the offset lines of adjacent faces left and right
// (each face line pushed outward along its normal by its dMin, so the
// min-perimeter edge sits at the minimum extruded position of its bays)
// and returns the mitered corner vertex. When the offset lines are
// parallel, it falls back to offsetting the shared footprint vertex
// along the average of the two normals by dMin.
func Miter(left frame.Face, leftDMin float64, right frame.Face, rightDMin float64) geom.Vec2 {
	return MiterEps(left, leftDMin, right, rightDMin, geom.Epsilon)
}

// MiterEps is Miter with a caller-supplied parallelism tolerance.
func MiterEps(left frame.Face, leftDMin float64, right frame.Face, rightDMin float64, eps float64) geom.Vec2 {
	leftOrigin := left.PEnd.Add(left.Normal.Scale(leftDMin))
	rightOrigin := right.PStart.Add(right.Normal.Scale(rightDMin))

	if p, ok := geom.LineIntersectionEps(leftOrigin, left.Tangent, rightOrigin, right.Tangent, eps); ok {
		return p
	}

	avgNormal := left.Normal.Add(right.Normal).Scale(0.5)
	if n, ok := avgNormal.Normalized(); ok {
		return left.PEnd.Add(n.Scale(leftDMin))
	}
	return left.PEnd.Add(left.Normal.Scale(leftDMin))
}
