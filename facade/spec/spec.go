// Package spec defines the authoring-time building description the BF2
// facade engine consumes. Values here are immutable input: the engine
// never mutates a BuildingSpec, it only derives new values from it.
package spec

// MaterialID is an opaque key into the host application's material
// registry. The engine never interprets it beyond equality comparison.
type MaterialID string

// FaceID identifies a footprint edge by its loop index (0, 1, 2, ... for
// faces displayed as A, B, C, ...).
type FaceID int

// FaceLetter renders a FaceID the way the authoring UI displays it:
// A, B, C, ... Z, AA, AB, ...
func FaceLetter(id FaceID) string {
	n := int(id)
	if n < 0 {
		return "?"
	}
	var letters []byte
	for {
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(letters)
}

// Point2D is a ground-plane authoring coordinate in meters.
type Point2D struct {
	X, Z float64
}

// BuildingSpec is the complete, validated authoring input to a build.
type BuildingSpec struct {
	FootprintLoop     []Point2D
	FloorLayers       []FloorLayer
	RoofLayer         RoofLayer
	DefaultMaterialID MaterialID
}

// FloorLayer is a contiguous run of identical floors sharing one facade
// layout per face.
type FloorLayer struct {
	FloorCount     uint16
	FloorHeightM   float32
	Faces          map[FaceID]FaceLayout
}

// RoofLayer carries roof-specific authoring options. BF2's roof
// triangulation only consumes the topmost layer's min-perimeter; this
// type is a placeholder for future roof-only authoring knobs such as
// pitch and overhang.
type RoofLayer struct {
	MaterialOverride *MaterialID
}

// FaceLayout is either a Master (owns bays/groups) or a Slave
// (inherits another face's layout in the same layer). Exactly one of
// Bays/Groups or InheritsFrom is meaningful, enforced by IsMaster.
type FaceLayout struct {
	IsMaster          bool
	Bays              []Bay
	Groups            []RepeatGroup
	DefaultMaterialID *MaterialID // only meaningful when IsMaster
	InheritsFrom      FaceID      // only meaningful when !IsMaster
}

// Master builds a master FaceLayout.
func Master(bays []Bay, groups []RepeatGroup, defaultMaterial *MaterialID) FaceLayout {
	return FaceLayout{IsMaster: true, Bays: bays, Groups: groups, DefaultMaterialID: defaultMaterial}
}

// Slave builds a slave FaceLayout inheriting from master.
func Slave(master FaceID) FaceLayout {
	return FaceLayout{IsMaster: false, InheritsFrom: master}
}

// WidthKind discriminates Bay.Width between a fixed value and a range.
type WidthKind int

const (
	WidthFixed WidthKind = iota
	WidthRange
)

// WidthSpec is a bay's authored width constraint.
type WidthSpec struct {
	Kind WidthKind
	// Fixed is meaningful when Kind == WidthFixed.
	Fixed float64
	// Min/Max are meaningful when Kind == WidthRange. Max == math.Inf(1)
	// means unbounded.
	Min, Max float64
}

// Fixed builds a WidthSpec with a fixed width.
func Fixed(w float64) WidthSpec { return WidthSpec{Kind: WidthFixed, Fixed: w} }

// Range builds a WidthSpec with a bounded or unbounded range.
func Range(min, max float64) WidthSpec { return WidthSpec{Kind: WidthRange, Min: min, Max: max} }

// BayShapeKind discriminates Bay.Shape.
type BayShapeKind int

const (
	ShapeSquare BayShapeKind = iota
	ShapeWedge
)

// BayShape is a bay's cross-section shape; AngleDeg is only meaningful
// for ShapeWedge and must be a multiple of 15 degrees.
type BayShape struct {
	Kind     BayShapeKind
	AngleDeg float64
}

// TextureFlow is the UV-origin policy across bay and group boundaries.
type TextureFlow int

const (
	RestartOnNewBay TextureFlow = iota
	ContinuousAcrossRepeats
	OverflowLeft
	OverflowRight
)

// Bay is one authored bay: a width constraint, extrusion depth, shape,
// optional material override, and texture-flow policy.
type Bay struct {
	Width            WidthSpec
	Repeatable       bool
	DepthM           float64
	Shape            BayShape
	MaterialOverride *MaterialID
	TextureFlow      TextureFlow
}

// RepeatGroup is an ordered, contiguous, non-overlapping run of bays
// treated as one repeatable unit by the layout solver.
type RepeatGroup struct {
	StartBay, EndBayInclusive int
	Repeatable                bool
}
