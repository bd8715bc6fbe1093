// Package engine is the top-level BF2 build orchestrator: it wires
// frame, depth, corner, perimeter, layout, surface, roof and mesh into
// a single deterministic pipeline, mirroring the stage-by-stage
// orchestration style of a composition engine that threads one config
// through a sequence of named phases.
package engine

import (
	"fmt"

	"github.com/arxos/bf2/facade/corner"
	"github.com/arxos/bf2/facade/depth"
	"github.com/arxos/bf2/facade/frame"
	"github.com/arxos/bf2/facade/layout"
	"github.com/arxos/bf2/facade/mesh"
	"github.com/arxos/bf2/facade/mesherr"
	"github.com/arxos/bf2/facade/perimeter"
	"github.com/arxos/bf2/facade/spec"
	"github.com/arxos/bf2/facade/surface"
)

// State names the build's forward-only progression, surfaced to
// internal/progress for the websocket build-status stream.
type State int

const (
	Created State = iota
	Validating
	FramesBuilt
	BaysResolved
	MinPerimeterBuilt
	SurfacesGenerated
	RoofTriangulated
	Assembled
	Failed
)

func (s State) String() string {
	switch s {
	case Created:
		return "Created"
	case Validating:
		return "Validating"
	case FramesBuilt:
		return "FramesBuilt"
	case BaysResolved:
		return "BaysResolved"
	case MinPerimeterBuilt:
		return "MinPerimeterBuilt"
	case SurfacesGenerated:
		return "SurfacesGenerated"
	case RoofTriangulated:
		return "RoofTriangulated"
	case Assembled:
		return "Assembled"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// BuildConfig tunes the pipeline's tolerances and debug behavior.
type BuildConfig struct {
	CornerZoneM           float64
	MiterEpsilon          float64
	EnableInvariantChecks bool
	CornerStrategy        corner.Strategy
	EmitDebugTrace        bool
}

// DefaultBuildConfig returns the production defaults: a 0.25m corner
// zone, a 1e-6 miter tolerance, OddWins resolution, and invariant
// checks enabled (the engine runs cheaply enough that skipping them
// buys nothing).
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		CornerZoneM:           0.25,
		MiterEpsilon:          1e-6,
		EnableInvariantChecks: true,
		CornerStrategy:        corner.NewOddWins(0.25),
		EmitDebugTrace:        false,
	}
}

// StateFunc is called after every state transition; progress streaming
// (internal/progress) hangs its websocket broadcast off this hook.
type StateFunc func(State)

// Build runs the full pipeline against a building spec and returns the
// frozen mesh, any non-fatal warnings, or the first BuildError hit.
func Build(bs spec.BuildingSpec, cfg BuildConfig, onState StateFunc) (*mesh.Mesh, []mesherr.Warning, error) {
	notify := func(s State) {
		if onState != nil {
			onState(s)
		}
	}

	notify(Validating)
	if len(bs.FootprintLoop) < 3 {
		notify(Failed)
		return nil, nil, mesherr.NewInvalidFootprint("fewer than 3 vertices")
	}
	if len(bs.FloorLayers) == 0 {
		notify(Failed)
		return nil, nil, mesherr.NewInvalidFootprint("building has no floor layers")
	}
	for li, layer := range bs.FloorLayers {
		if layer.FloorHeightM < 1.5 || layer.FloorHeightM > 20.0 {
			notify(Failed)
			return nil, nil, mesherr.NewInvalidFootprint(fmt.Sprintf("floor layer %d: floor height %.2f outside [1.5, 20.0]", li, layer.FloorHeightM))
		}
	}

	faces, warnings, err := frame.Build(bs.FootprintLoop)
	if err != nil {
		notify(Failed)
		return nil, nil, err
	}
	n := len(faces)
	notify(FramesBuilt)

	strategy := cfg.CornerStrategy
	if strategy == nil {
		fallback := corner.NewOddWins(cfg.CornerZoneM)
		if cfg.MiterEpsilon > 0 {
			fallback.MiterEpsilon = cfg.MiterEpsilon
		}
		strategy = fallback
	}

	b := mesh.NewBuilder()
	debug := &mesh.DebugInfo{}

	var prevPerimeter *perimeter.Polygon
	y := 0.0

	for layerIdx, layer := range bs.FloorLayers {
		if layer.FloorCount == 0 {
			continue
		}

		resolvedBays, resolvedGroups, resolvedMat, err := resolveFaceLayouts(faces, layer)
		if err != nil {
			notify(Failed)
			return nil, nil, err
		}
		warnings = append(warnings, negativeDepthWarnings(faces, resolvedBays)...)

		solvedPerFace := make([][]layout.SolvedBay, n)
		fields := make([]depth.Field, n)
		for i := range faces {
			sb, trace, err := layout.Solve(faces[i].ID, resolvedBays[i], resolvedGroups[i], faces[i].Length)
			if err != nil {
				notify(Failed)
				return nil, nil, err
			}
			solvedPerFace[i] = sb
			fields[i] = depth.Build(sb)
			if cfg.EmitDebugTrace {
				debug.SolverTrace = append(debug.SolverTrace,
					fmt.Sprintf("layer %d face %s: groupRepeats=%v extras=%v",
						layerIdx, spec.FaceLetter(faces[i].ID), trace.GroupRepeatCounts, trace.ExtrasAssigned))
			}
		}
		notify(BaysResolved)

		decisions := make([]corner.Decision, n)
		for i := 0; i < n; i++ {
			left := corner.FaceSlice{
				Face:          faces[i],
				DMin:          fields[i].DMin,
				ExtrudesAtEnd: lastValue(fields[i]) > 1e-9,
			}
			right := corner.FaceSlice{
				Face:          faces[(i+1)%n],
				DMin:          fields[(i+1)%n].DMin,
				ExtrudesAtEnd: firstValue(fields[(i+1)%n]) > 1e-9,
			}
			decisions[i] = strategy.ResolveCorner(left, right)
			if cfg.EmitDebugTrace {
				debug.CornerDecisions = append(debug.CornerDecisions,
					fmt.Sprintf("layer %d corner %d: winner=%v bothExtrude=%v", layerIdx, i, decisions[i].Winner, decisions[i].BothExtrude))
			}
		}

		dMins := make([]float64, n)
		for i := range faces {
			dMins[i] = fields[i].DMin
		}
		poly, err := perimeter.Build(faces, dMins, decisions)
		if err != nil {
			notify(Failed)
			return nil, nil, err
		}
		if cfg.EmitDebugTrace {
			debug.MinPerimetersPerLayer = append(debug.MinPerimetersPerLayer, poly.Vertices)
		}
		notify(MinPerimeterBuilt)

		layerYBase := y
		for floor := uint16(0); floor < layer.FloorCount; floor++ {
			floorYBase := y
			floorYTop := y + float64(layer.FloorHeightM)
			isLastFloorOfLayer := floor == layer.FloorCount-1

			for i := range faces {
				leftDecision := decisions[(i-1+n)%n]
				rightDecision := decisions[i]
				surface.GenerateFace(b, surface.Params{
					Face:            faces[i],
					DMin:            fields[i].DMin,
					Bays:            solvedPerFace[i],
					LeftCorner:      leftDecision,
					RightCorner:     rightDecision,
					YBase:           floorYBase,
					YTop:            floorYTop,
					DefaultMat:      bs.DefaultMaterialID,
					FaceDefaultMat:  resolvedMat[i],
					LayerDefaultMat: nil,
					EmitTopCap:      isLastFloorOfLayer,
				})
			}
			y = floorYTop
		}
		notify(SurfacesGenerated)

		if prevPerimeter != nil {
			outer := *prevPerimeter
			inner := poly
			if perimetersDiffer(outer, inner) {
				if !validSetback(outer, inner) {
					notify(Failed)
					return nil, nil, mesherr.NewInvalidMinPerimeter(0)
				}
				roofmat := bs.DefaultMaterialID
				triangulateSetback(b, outer, inner, layerYBase, roofmat)
			}
		}

		polyCopy := poly
		prevPerimeter = &polyCopy
	}

	if prevPerimeter != nil {
		roofMat := bs.DefaultMaterialID
		if bs.RoofLayer.MaterialOverride != nil {
			roofMat = *bs.RoofLayer.MaterialOverride
		}
		if err := triangulateRoof(b, *prevPerimeter, y, roofMat); err != nil {
			notify(Failed)
			return nil, nil, err
		}
	}
	notify(RoofTriangulated)

	notify(Assembled)
	var debugOut *mesh.DebugInfo
	if cfg.EmitDebugTrace {
		debugOut = debug
	}
	m, err := b.Build(cfg.EnableInvariantChecks, debugOut)
	if err != nil {
		notify(Failed)
		return nil, nil, err
	}
	return m, warnings, nil
}

func lastValue(f depth.Field) float64 {
	if len(f.Values) == 0 {
		return 0
	}
	return f.Values[len(f.Values)-1]
}

func firstValue(f depth.Field) float64 {
	if len(f.Values) == 0 {
		return 0
	}
	return f.Values[0]
}
