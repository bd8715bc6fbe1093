package engine

import (
	"math"
	"reflect"
	"testing"

	"github.com/arxos/bf2/facade/geom"
	"github.com/arxos/bf2/facade/mesh"
	"github.com/arxos/bf2/facade/mesherr"
	"github.com/arxos/bf2/facade/spec"
)

func squareSpec(materialID spec.MaterialID) spec.BuildingSpec {
	faces := map[spec.FaceID]spec.FaceLayout{
		0: spec.Master([]spec.Bay{{Width: spec.Fixed(10)}}, nil, nil),
		1: spec.Master([]spec.Bay{{Width: spec.Fixed(10)}}, nil, nil),
		2: spec.Master([]spec.Bay{{Width: spec.Fixed(10)}}, nil, nil),
		3: spec.Master([]spec.Bay{{Width: spec.Fixed(10)}}, nil, nil),
	}
	return spec.BuildingSpec{
		FootprintLoop: []spec.Point2D{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}, {X: 0, Z: 10}},
		FloorLayers: []spec.FloorLayer{
			{FloorCount: 2, FloorHeightM: 3, Faces: faces},
		},
		DefaultMaterialID: materialID,
	}
}

func TestBuildSimpleBoxProducesWatertightMesh(t *testing.T) {
	bs := squareSpec("brick")
	var states []State
	m, warnings, err := Build(bs, DefaultBuildConfig(), func(s State) { states = append(states, s) })
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings for a clean CCW square, got %v", warnings)
	}
	if len(m.Triangles) == 0 {
		t.Fatalf("expected a non-empty mesh")
	}
	if states[len(states)-1] != Assembled {
		t.Errorf("expected the last reported state to be Assembled, got %v", states[len(states)-1])
	}
}

func TestBuildMissingFaceLayoutFails(t *testing.T) {
	bs := squareSpec("brick")
	delete(bs.FloorLayers[0].Faces, 2)

	_, _, err := Build(bs, DefaultBuildConfig(), nil)
	if err == nil {
		t.Fatalf("expected InvalidFaceLinkage for a face with no layout")
	}
}

func TestBuildClockwiseFootprintNormalizesWithWarning(t *testing.T) {
	bs := squareSpec("brick")
	// Reverse to clockwise.
	loop := bs.FootprintLoop
	for i, j := 0, len(loop)-1; i < j; i, j = i+1, j-1 {
		loop[i], loop[j] = loop[j], loop[i]
	}
	bs.FootprintLoop = loop

	_, warnings, err := Build(bs, DefaultBuildConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("expected one normalization warning for a clockwise footprint, got %v", warnings)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	bs := squareSpec("brick")
	bs.FloorLayers[0].Faces[0] = spec.Master([]spec.Bay{
		{Width: spec.Fixed(2)},
		{Width: spec.Fixed(8), DepthM: 0.5},
	}, nil, nil)

	a, _, errA := Build(bs, DefaultBuildConfig(), nil)
	b, _, errB := Build(bs, DefaultBuildConfig(), nil)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if !reflect.DeepEqual(a.Vertices, b.Vertices) {
		t.Errorf("expected identical vertex lists across repeated builds")
	}
	if !reflect.DeepEqual(a.Triangles, b.Triangles) {
		t.Errorf("expected identical triangle lists across repeated builds")
	}
	if !reflect.DeepEqual(a.Tags, b.Tags) {
		t.Errorf("expected identical role tags across repeated builds")
	}
	if !reflect.DeepEqual(a.MaterialGroups, b.MaterialGroups) {
		t.Errorf("expected identical material groups across repeated builds")
	}
}

// Mirroring the footprint and the bay layouts yields the same topology:
// same triangle count and the same material-group cardinalities.
func TestBuildMirrorSymmetryTopology(t *testing.T) {
	bs := squareSpec("brick")
	bs.FloorLayers[0].Faces[0] = spec.Master([]spec.Bay{
		{Width: spec.Fixed(2)},
		{Width: spec.Fixed(8), DepthM: 0.5},
	}, nil, nil)

	// Mirror about the X=0 plane. The mirrored loop is clockwise; the
	// frame builder reverses it, so the original face 0 becomes face 2
	// with its bay order reversed.
	mirrored := squareSpec("brick")
	loop := mirrored.FootprintLoop
	for i := range loop {
		loop[i].X = -loop[i].X
	}
	mirrored.FloorLayers[0].Faces[2] = spec.Master([]spec.Bay{
		{Width: spec.Fixed(8), DepthM: 0.5},
		{Width: spec.Fixed(2)},
	}, nil, nil)

	a, _, errA := Build(bs, DefaultBuildConfig(), nil)
	b, _, errB := Build(mirrored, DefaultBuildConfig(), nil)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if len(a.Triangles) != len(b.Triangles) {
		t.Errorf("expected mirrored builds to share a triangle count, got %d vs %d", len(a.Triangles), len(b.Triangles))
	}
	for mat, tris := range a.MaterialGroups {
		if len(b.MaterialGroups[mat]) != len(tris) {
			t.Errorf("expected material %q to group the same number of triangles, got %d vs %d",
				mat, len(tris), len(b.MaterialGroups[mat]))
		}
	}
}

// A lower layer whose bays all extrude 0.5m has its min-perimeter 0.5m
// outside the flush upper layer's; the transition gets a setback cap.
func TestBuildSetbackCapBetweenLayers(t *testing.T) {
	extruded := map[spec.FaceID]spec.FaceLayout{}
	flush := map[spec.FaceID]spec.FaceLayout{}
	for id := spec.FaceID(0); id < 4; id++ {
		extruded[id] = spec.Master([]spec.Bay{{Width: spec.Fixed(10), DepthM: 0.5}}, nil, nil)
		flush[id] = spec.Master([]spec.Bay{{Width: spec.Fixed(10)}}, nil, nil)
	}
	bs := spec.BuildingSpec{
		FootprintLoop: []spec.Point2D{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}, {X: 0, Z: 10}},
		FloorLayers: []spec.FloorLayer{
			{FloorCount: 1, FloorHeightM: 3, Faces: extruded},
			{FloorCount: 1, FloorHeightM: 3, Faces: flush},
		},
		DefaultMaterialID: "brick",
	}

	m, _, err := Build(bs, DefaultBuildConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	var setbacks int
	for _, tag := range m.Tags {
		if tag == mesh.SetbackCap {
			setbacks++
		}
	}
	if setbacks == 0 {
		t.Errorf("expected setback cap triangles between layers with differing min-perimeters")
	}
}

// An upper layer wider than the one below it is an overhang, not a
// setback; the build fails closed with InvalidMinPerimeter.
func TestBuildOverhangRejected(t *testing.T) {
	extruded := map[spec.FaceID]spec.FaceLayout{}
	flush := map[spec.FaceID]spec.FaceLayout{}
	for id := spec.FaceID(0); id < 4; id++ {
		extruded[id] = spec.Master([]spec.Bay{{Width: spec.Fixed(10), DepthM: 0.5}}, nil, nil)
		flush[id] = spec.Master([]spec.Bay{{Width: spec.Fixed(10)}}, nil, nil)
	}
	bs := spec.BuildingSpec{
		FootprintLoop: []spec.Point2D{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}, {X: 0, Z: 10}},
		FloorLayers: []spec.FloorLayer{
			{FloorCount: 1, FloorHeightM: 3, Faces: flush},
			{FloorCount: 1, FloorHeightM: 3, Faces: extruded},
		},
		DefaultMaterialID: "brick",
	}

	_, _, err := Build(bs, DefaultBuildConfig(), nil)
	be, ok := err.(*mesherr.BuildError)
	if !ok || be.Kind != mesherr.InvalidMinPerimeter {
		t.Errorf("expected InvalidMinPerimeter for an overhanging upper layer, got %v", err)
	}
}

func TestBuildSlaveInheritsMasterLayout(t *testing.T) {
	bs := squareSpec("brick")
	bs.FloorLayers[0].Faces[2] = spec.Slave(0)

	_, _, err := Build(bs, DefaultBuildConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected build error for a valid slave face: %v", err)
	}
}

func TestBuildSlaveWithDuplicatePayloadFails(t *testing.T) {
	bs := squareSpec("brick")
	dup := spec.Slave(0)
	dup.Bays = []spec.Bay{{Width: spec.Fixed(10)}}
	bs.FloorLayers[0].Faces[2] = dup

	_, _, err := Build(bs, DefaultBuildConfig(), nil)
	be, ok := err.(*mesherr.BuildError)
	if !ok || be.Kind != mesherr.InvalidFaceLinkage {
		t.Errorf("expected InvalidFaceLinkage for a slave carrying bays, got %v", err)
	}
}

func TestBuildSlaveCycleFails(t *testing.T) {
	bs := squareSpec("brick")
	bs.FloorLayers[0].Faces[2] = spec.Slave(3)
	bs.FloorLayers[0].Faces[3] = spec.Slave(2)

	_, _, err := Build(bs, DefaultBuildConfig(), nil)
	be, ok := err.(*mesherr.BuildError)
	if !ok || be.Kind != mesherr.InvalidFaceLinkage {
		t.Errorf("expected InvalidFaceLinkage for an inherits-from cycle, got %v", err)
	}
}

func TestBuildNegativeDepthClampedWithWarning(t *testing.T) {
	bs := squareSpec("brick")
	bs.FloorLayers[0].Faces[1] = spec.Master([]spec.Bay{{Width: spec.Fixed(10), DepthM: -0.5}}, nil, nil)

	_, warnings, err := Build(bs, DefaultBuildConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one clamp warning, got %v", warnings)
	}
	if warnings[0].FaceID == nil || *warnings[0].FaceID != 1 {
		t.Errorf("expected the warning to name face B, got %+v", warnings[0])
	}
}

// Adjacent faces with differing non-zero dMin must meet at the single
// mitered corner vertex the resolver produced, not at each face's own
// offset of the raw footprint corner — the latter two points differ and
// would open a vertical gap at the corner.
func TestBuildDifferingDMinFacesShareMiteredCorner(t *testing.T) {
	faces := map[spec.FaceID]spec.FaceLayout{
		0: spec.Master([]spec.Bay{{Width: spec.Fixed(10), DepthM: 0.2}}, nil, nil),
		1: spec.Master([]spec.Bay{{Width: spec.Fixed(10), DepthM: 0.5}}, nil, nil),
		2: spec.Master([]spec.Bay{{Width: spec.Fixed(10)}}, nil, nil),
		3: spec.Master([]spec.Bay{{Width: spec.Fixed(10)}}, nil, nil),
	}
	bs := spec.BuildingSpec{
		FootprintLoop:     []spec.Point2D{{X: 0, Z: 0}, {X: 10, Z: 0}, {X: 10, Z: 10}, {X: 0, Z: 10}},
		FloorLayers:       []spec.FloorLayer{{FloorCount: 1, FloorHeightM: 3, Faces: faces}},
		DefaultMaterialID: "brick",
	}

	m, _, err := Build(bs, DefaultBuildConfig(), nil)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	// Face A's offset line (Z=-0.2) and face B's (X=10.5) miter at
	// (10.5, -0.2); both faces' walls must use exactly that point.
	near := func(v, want geom.Vec3) bool {
		return math.Abs(v.X-want.X) < 1e-6 && math.Abs(v.Y-want.Y) < 1e-6 && math.Abs(v.Z-want.Z) < 1e-6
	}
	var sawMiterBase, sawMiterTop bool
	for _, v := range m.Vertices {
		if near(v.Pos, geom.Vec3{X: 10.5, Y: 0, Z: -0.2}) {
			sawMiterBase = true
		}
		if near(v.Pos, geom.Vec3{X: 10.5, Y: 3, Z: -0.2}) {
			sawMiterTop = true
		}
		if near(v.Pos, geom.Vec3{X: 10, Y: 0, Z: -0.2}) || near(v.Pos, geom.Vec3{X: 10, Y: 3, Z: -0.2}) {
			t.Errorf("face A's corner vertex was offset from the raw footprint corner instead of mitered: %+v", v.Pos)
		}
		if near(v.Pos, geom.Vec3{X: 10.5, Y: 0, Z: 0}) || near(v.Pos, geom.Vec3{X: 10.5, Y: 3, Z: 0}) {
			t.Errorf("face B's corner vertex was offset from the raw footprint corner instead of mitered: %+v", v.Pos)
		}
	}
	if !sawMiterBase || !sawMiterTop {
		t.Errorf("expected both faces' walls to share the mitered corner vertex at (10.5, y, -0.2)")
	}
}

func TestBuildRejectsOutOfRangeFloorHeight(t *testing.T) {
	bs := squareSpec("brick")
	bs.FloorLayers[0].FloorHeightM = 0.5

	_, _, err := Build(bs, DefaultBuildConfig(), nil)
	be, ok := err.(*mesherr.BuildError)
	if !ok || be.Kind != mesherr.InvalidFootprint {
		t.Errorf("expected a validation error for a 0.5m floor height, got %v", err)
	}
}
