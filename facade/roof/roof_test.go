package roof

import (
	"testing"

	"github.com/arxos/bf2/facade/geom"
	"github.com/arxos/bf2/facade/mesh"
	"github.com/arxos/bf2/facade/perimeter"
)

func TestTriangulateSquare(t *testing.T) {
	poly := perimeter.Polygon{Vertices: []geom.Vec2{
		{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10},
	}}
	b := mesh.NewBuilder()
	if err := Triangulate(b, poly, 3.0, "roof-tile"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := b.Build(true, nil)
	if err != nil {
		t.Fatalf("unexpected invariant failure: %v", err)
	}
	if len(m.Triangles) != 2 {
		t.Errorf("expected a square to ear-clip into 2 triangles, got %d", len(m.Triangles))
	}
	for _, tri := range m.Triangles {
		for _, idx := range tri {
			if m.Vertices[idx].Pos.Y != 3.0 {
				t.Errorf("expected every roof vertex at y=3.0, got %v", m.Vertices[idx].Pos.Y)
			}
		}
	}
}

func TestTriangulateLShape(t *testing.T) {
	// An L-shaped footprint; concave corner at (10,10) must not be
	// picked as an ear before the polygon is down to a triangle.
	poly := perimeter.Polygon{Vertices: []geom.Vec2{
		{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 20, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 20}, {X: 0, Y: 20},
	}}
	b := mesh.NewBuilder()
	if err := Triangulate(b, poly, 0, "roof-tile"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, err := b.Build(true, nil)
	if err != nil {
		t.Fatalf("unexpected invariant failure: %v", err)
	}
	if len(m.Triangles) != 4 {
		t.Errorf("expected an L-shaped hexagon to ear-clip into 4 triangles, got %d", len(m.Triangles))
	}
}
