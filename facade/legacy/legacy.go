// Package legacy converts the older "windows with fixed spacing and N
// columns" facade authoring format into the current Bay/RepeatGroup
// model, so buildings authored before the bay system shipped still
// load. It is intentionally a thin, independently testable adapter
// rather than a parallel code path through the solver.
package legacy

import (
	"github.com/arxos/bf2/facade/mesherr"
	"github.com/arxos/bf2/facade/spec"
)

// WindowSpacing is the legacy per-face authoring record: N evenly
// spaced windows of a fixed width, with a margin bay of half the
// spacing at each end of the face.
type WindowSpacing struct {
	Face          spec.FaceID
	ColumnCount   int
	WindowWidthM  float64
	SpacingM      float64
	DepthM        float64
	MaterialID    *spec.MaterialID
}

// Convert expands a WindowSpacing record into the Bay/RepeatGroup
// layout the current solver consumes: a half-spacing margin bay, the
// ColumnCount windows separated by spacing bays (recorded as one
// non-repeatable group), and a closing half-spacing margin bay.
func Convert(ws WindowSpacing) (spec.FaceLayout, error) {
	if ws.ColumnCount <= 0 {
		return spec.FaceLayout{}, mesherr.NewInvalidBaySpec(ws.Face, 0, "legacy column count must be positive")
	}
	if ws.WindowWidthM <= 0 || ws.SpacingM < 0 {
		return spec.FaceLayout{}, mesherr.NewInvalidBaySpec(ws.Face, 0, "legacy window width must be positive and spacing non-negative")
	}

	halfSpacing := ws.SpacingM / 2

	var bays []spec.Bay
	marginBay := spec.Bay{
		Width:            spec.Fixed(halfSpacing),
		Repeatable:       false,
		DepthM:           0,
		MaterialOverride: ws.MaterialID,
	}
	bays = append(bays, marginBay)

	windowBay := spec.Bay{
		Width:            spec.Fixed(ws.WindowWidthM),
		Repeatable:       false,
		DepthM:           ws.DepthM,
		MaterialOverride: ws.MaterialID,
	}
	spacingBay := spec.Bay{
		Width:            spec.Fixed(ws.SpacingM),
		Repeatable:       false,
		DepthM:           0,
		MaterialOverride: ws.MaterialID,
	}

	groupStart := len(bays)
	for c := 0; c < ws.ColumnCount; c++ {
		bays = append(bays, windowBay)
		if c < ws.ColumnCount-1 {
			bays = append(bays, spacingBay)
		}
	}
	groupEnd := len(bays) - 1

	bays = append(bays, marginBay)

	groups := []spec.RepeatGroup{
		{StartBay: groupStart, EndBayInclusive: groupEnd, Repeatable: false},
	}

	return spec.Master(bays, groups, ws.MaterialID), nil
}
