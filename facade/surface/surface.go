// Package surface is the facade surface generator: for one face
// in one floor layer, it emits exterior wall quads, return quads at
// depth breakpoints (including corner-zone ramps), and top caps for
// positive extrusions.
package surface

import (
	"math"

	"github.com/arxos/bf2/facade/corner"
	"github.com/arxos/bf2/facade/frame"
	"github.com/arxos/bf2/facade/geom"
	"github.com/arxos/bf2/facade/layout"
	"github.com/arxos/bf2/facade/mesh"
	"github.com/arxos/bf2/facade/spec"
)

// Params bundles everything GenerateFace needs beyond the solved bays.
type Params struct {
	Face            frame.Face
	DMin            float64
	Bays            []layout.SolvedBay
	LeftCorner      corner.Decision // corner at u=0, this face is "right"
	RightCorner     corner.Decision // corner at u=L, this face is "left"
	YBase, YTop     float64
	DefaultMat      spec.MaterialID
	FaceDefaultMat  *spec.MaterialID
	LayerDefaultMat *spec.MaterialID
	// EmitTopCap closes the top of each positively extruded bay at YTop.
	// The caller sets this only for the topmost floor of a run of
	// identical floors sharing one layout: intermediate floors continue
	// the same extrusion seamlessly and need no horizontal cap between them.
	EmitTopCap bool
}

// edgeProfile is one exterior-wall span with linearly varying extrusion:
// a bay after applying its own shape ramp (Wedge), possibly split in two
// by the corner-zone ramp from the corner resolver. bay indexes the
// solved bay the span came from, for material and UV resolution.
type edgeProfile struct {
	u0, u1 float64
	e0, e1 float64 // extrusion at u0 and u1 respectively
	bay    int
}

// at linearly interpolates the span's extrusion at u.
func (p edgeProfile) at(u float64) float64 {
	if p.u1-p.u0 < 1e-12 {
		return p.e0
	}
	t := (u - p.u0) / (p.u1 - p.u0)
	return p.e0 + (p.e1-p.e0)*t
}

// GenerateFace emits WallExterior, WallReturn and TopCap triangles for
// one face into b, including the corner-zone ramp and the winner's
// flank quad at any contested corner decided via LeftCorner/RightCorner.
func GenerateFace(b *mesh.Builder, p Params) {
	if len(p.Bays) == 0 {
		return
	}

	profiles := make([]edgeProfile, len(p.Bays))
	for i, bay := range p.Bays {
		e := bay.DepthM - p.DMin
		if e < 0 {
			e = 0
		}
		e0, e1 := e, e
		if bay.Shape.Kind == spec.ShapeWedge {
			if bay.Shape.AngleDeg < 0 {
				e0, e1 = e, 0
			} else {
				e0, e1 = 0, e
			}
		}
		profiles[i] = edgeProfile{u0: bay.U0, u1: bay.U1, e0: e0, e1: e1, bay: i}
	}

	// Apply corner-zone ramps at the face ends where the corner
	// resolver decided this face must yield; a boundary bay wider than
	// the ramp is split at the ramp length so the ramp stays confined
	// to the corner zone.
	profiles = applyCornerRamp(profiles, p.Face.Length, p.LeftCorner, p.RightCorner)

	// Ground-plane positions of a wall edge (min-perimeter base plus
	// extrusion) and of a cap's inner edge on the min-perimeter line.
	outerPlan := func(u, e float64) geom.Vec2 {
		return p.Face.PStart.Add(p.Face.Tangent.Scale(u)).Add(p.Face.Normal.Scale(p.DMin + e))
	}
	innerPlan := func(u float64) geom.Vec2 {
		return p.Face.PStart.Add(p.Face.Tangent.Scale(u)).Add(p.Face.Normal.Scale(p.DMin))
	}

	for i, prof := range profiles {
		bay := p.Bays[prof.bay]
		material := resolveMaterial(bay.MaterialOverride, p.FaceDefaultMat, p.LayerDefaultMat, p.DefaultMat)
		uvOrigin := uvOriginFor(p.Bays, prof.bay)

		// The corner-side edges of a face's first and last span anchor
		// at the resolver's mitered vertex, not at this face's own
		// offset of the raw footprint corner: adjacent faces with
		// differing dMin would otherwise each land on a different
		// point and open a gap the roof polygon doesn't have.
		in0, in1 := innerPlan(prof.u0), innerPlan(prof.u1)
		o0, o1 := outerPlan(prof.u0, prof.e0), outerPlan(prof.u1, prof.e1)
		if i == 0 {
			in0 = p.LeftCorner.MiterVertex
			o0 = in0.Add(p.Face.Normal.Scale(prof.e0))
		}
		if i == len(profiles)-1 {
			in1 = p.RightCorner.MiterVertex
			o1 = in1.Add(p.Face.Normal.Scale(prof.e1))
		}

		emitExteriorWall(b, o0, o1, prof.u0, prof.u1, p.YBase, p.YTop, uvOrigin, material)
		if p.EmitTopCap && (prof.e0 > 1e-9 || prof.e1 > 1e-9) {
			emitTopCap(b, in0, o0, in1, o1, prof.u0, prof.u1, prof.e0, prof.e1, p.YTop, material)
		}

		if i > 0 {
			prev := profiles[i-1]
			if math.Abs(prev.e1-prof.e0) > 1e-9 {
				emitReturnQuad(b, outerPlan(prof.u0, prev.e1), o0, p.YBase, p.YTop, material)
			}
		}
	}

	// A contested corner this face wins keeps its full extrusion up to
	// the shared corner edge; the flank quad there connects it down to
	// the loser's ramped-to-zero wall on the min-perimeter line.
	first, last := profiles[0], profiles[len(profiles)-1]
	if p.LeftCorner.BothExtrude && p.LeftCorner.Winner == corner.Right && first.e0 > 1e-9 {
		bay := p.Bays[first.bay]
		material := resolveMaterial(bay.MaterialOverride, p.FaceDefaultMat, p.LayerDefaultMat, p.DefaultMat)
		anchor := p.LeftCorner.MiterVertex
		emitReturnQuad(b, anchor, anchor.Add(p.Face.Normal.Scale(first.e0)), p.YBase, p.YTop, material)
	}
	if p.RightCorner.BothExtrude && p.RightCorner.Winner == corner.Left && last.e1 > 1e-9 {
		bay := p.Bays[last.bay]
		material := resolveMaterial(bay.MaterialOverride, p.FaceDefaultMat, p.LayerDefaultMat, p.DefaultMat)
		anchor := p.RightCorner.MiterVertex
		emitReturnQuad(b, anchor, anchor.Add(p.Face.Normal.Scale(last.e1)), p.YBase, p.YTop, material)
	}
}

// applyCornerRamp scales extrusion to zero toward the face ends where
// this face lost a contested corner, over the resolver's ramp length.
// Spans crossing a ramp boundary are split there so spans outside the
// corner zone keep their authored depth.
func applyCornerRamp(profiles []edgeProfile, faceLength float64, left, right corner.Decision) []edgeProfile {
	if len(profiles) == 0 {
		return profiles
	}

	// This face is "right" of the u=0 corner; it loses when the
	// resolver's winner is Left and both faces wanted to extrude.
	if left.BothExtrude && left.Winner == corner.Left && left.RightRampLen > 0 {
		profiles = rampProfiles(profiles, left.RightRampLen, func(u float64) float64 {
			return u / left.RightRampLen
		})
	}

	// This face is "left" of the u=L corner; it loses when the
	// resolver's winner is Right.
	if right.BothExtrude && right.Winner == corner.Right && right.LeftRampLen > 0 {
		boundary := faceLength - right.LeftRampLen
		profiles = rampProfiles(profiles, boundary, func(u float64) float64 {
			return (faceLength - u) / right.LeftRampLen
		})
	}

	return profiles
}

// rampProfiles splits any span straddling splitAt, then multiplies each
// span endpoint's extrusion by factor(u) clamped to [0, 1].
func rampProfiles(profiles []edgeProfile, splitAt float64, factor func(float64) float64) []edgeProfile {
	var out []edgeProfile
	for _, p := range profiles {
		if p.u0 < splitAt-1e-9 && p.u1 > splitAt+1e-9 {
			mid := p.at(splitAt)
			out = append(out,
				edgeProfile{u0: p.u0, u1: splitAt, e0: p.e0, e1: mid, bay: p.bay},
				edgeProfile{u0: splitAt, u1: p.u1, e0: mid, e1: p.e1, bay: p.bay})
			continue
		}
		out = append(out, p)
	}
	for i := range out {
		out[i].e0 *= clamp01(factor(out[i].u0))
		out[i].e1 *= clamp01(factor(out[i].u1))
	}
	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func resolveMaterial(bayOverride, faceDefault, layerDefault *spec.MaterialID, buildingDefault spec.MaterialID) spec.MaterialID {
	if bayOverride != nil {
		return *bayOverride
	}
	if faceDefault != nil {
		return *faceDefault
	}
	if layerDefault != nil {
		return *layerDefault
	}
	return buildingDefault
}

// uvOriginFor decides the UV-u origin for bay index i among the face's
// solved bays, per its TextureFlow policy.
func uvOriginFor(bays []layout.SolvedBay, i int) float64 {
	bay := bays[i]
	switch bay.TextureFlow {
	case spec.RestartOnNewBay:
		return bay.U0
	case spec.ContinuousAcrossRepeats:
		if bay.GroupIndex < 0 {
			return bay.U0
		}
		// UV u runs on across every repetition of the group and restarts
		// where the group's first repetition begins.
		return groupRepeatBase(bays, bay.GroupIndex, 0)
	case spec.OverflowLeft:
		if i == 0 {
			return bay.U0
		}
		prev := bays[i-1]
		if materialsEqual(prev.MaterialOverride, bay.MaterialOverride) {
			return uvOriginFor(bays, i-1)
		}
		return bay.U0
	case spec.OverflowRight:
		if i == len(bays)-1 {
			return bay.U0
		}
		next := bays[i+1]
		if materialsEqual(next.MaterialOverride, bay.MaterialOverride) {
			return bay.U0 // origin anchors at this bay; direction carries forward in the renderer
		}
		return bay.U0
	default:
		return bay.U0
	}
}

// groupRepeatBase returns the U coordinate where repetition `ordinal` of
// group `groupIdx` begins; ContinuousAcrossRepeats uses ordinal 0 as its
// UV origin so UV u is continuous across the group's repetitions.
func groupRepeatBase(bays []layout.SolvedBay, groupIdx, ordinal int) float64 {
	for _, b := range bays {
		if b.GroupIndex == groupIdx && b.RepeatOrdinal == ordinal {
			return b.U0
		}
	}
	return 0
}

func materialsEqual(a, b *spec.MaterialID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func wallPoint(p geom.Vec2, y float64) geom.Vec3 {
	return geom.Vec3{X: p.X, Y: y, Z: p.Y}
}

// emitExteriorWall emits the vertical quad between ground-plane edge
// positions o0 (at parametric u0) and o1 (at u1).
func emitExteriorWall(b *mesh.Builder, o0, o1 geom.Vec2, u0, u1, yBase, yTop, uvOrigin float64, material spec.MaterialID) {
	i00 := b.AddVertex(wallPoint(o0, yBase), [2]float64{u0 - uvOrigin, yBase})
	i01 := b.AddVertex(wallPoint(o0, yTop), [2]float64{u0 - uvOrigin, yTop})
	i10 := b.AddVertex(wallPoint(o1, yBase), [2]float64{u1 - uvOrigin, yBase})
	i11 := b.AddVertex(wallPoint(o1, yTop), [2]float64{u1 - uvOrigin, yTop})

	b.AddTriangle(i00, i10, i11, mesh.WallExterior, material)
	b.AddTriangle(i00, i11, i01, mesh.WallExterior, material)
}

// emitReturnQuad connects two wall edges at ground-plane positions from
// and to with a vertical quad whose normal points along the local
// tangent.
func emitReturnQuad(b *mesh.Builder, from, to geom.Vec2, yBase, yTop float64, material spec.MaterialID) {
	width := to.Sub(from).Length()

	i00 := b.AddVertex(wallPoint(from, yBase), [2]float64{0, yBase})
	i01 := b.AddVertex(wallPoint(from, yTop), [2]float64{0, yTop})
	i10 := b.AddVertex(wallPoint(to, yBase), [2]float64{width, yBase})
	i11 := b.AddVertex(wallPoint(to, yTop), [2]float64{width, yTop})

	b.AddTriangle(i00, i10, i11, mesh.WallReturn, material)
	b.AddTriangle(i00, i11, i01, mesh.WallReturn, material)
}

// emitTopCap closes a positive extrusion at yTop between its inner edge
// in0-in1 (on the min-perimeter line shared with the roof) and its
// outer wall edge o0-o1.
func emitTopCap(b *mesh.Builder, in0, o0, in1, o1 geom.Vec2, u0, u1, e0, e1, yTop float64, material spec.MaterialID) {
	iInner0 := b.AddVertex(wallPoint(in0, yTop), [2]float64{u0, 0})
	iOuter0 := b.AddVertex(wallPoint(o0, yTop), [2]float64{u0, e0})
	iInner1 := b.AddVertex(wallPoint(in1, yTop), [2]float64{u1, 0})
	iOuter1 := b.AddVertex(wallPoint(o1, yTop), [2]float64{u1, e1})

	// Degenerate to a single triangle at a flush (e==0) end rather than
	// emitting a zero-area sliver.
	if e0 <= 1e-9 {
		b.AddTriangle(iInner0, iOuter1, iInner1, mesh.TopCap, material)
		return
	}
	if e1 <= 1e-9 {
		b.AddTriangle(iInner0, iOuter0, iInner1, mesh.TopCap, material)
		return
	}

	b.AddTriangle(iInner0, iOuter0, iOuter1, mesh.TopCap, material)
	b.AddTriangle(iInner0, iOuter1, iInner1, mesh.TopCap, material)
}
