package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arxos/bf2/facade/geom"
)

func TestBuilderDedupesSharedVertices(t *testing.T) {
	b := NewBuilder()
	i0 := b.AddVertex(vec3(0, 0, 0), [2]float64{0, 0})
	i1 := b.AddVertex(vec3(1, 0, 0), [2]float64{1, 0})
	i2 := b.AddVertex(vec3(0, 1, 0), [2]float64{0, 1})
	i3 := b.AddVertex(vec3(0, 0, 0), [2]float64{0, 0}) // shared with i0

	assert.Equal(t, i0, i3, "re-adding an identical position should reuse its index")
	b.AddTriangle(i0, i1, i2, WallExterior, "brick")
	assert.Equal(t, 1, b.Len())
}

func TestCheckInvariantsRejectsDegenerateTriangle(t *testing.T) {
	b := NewBuilder()
	i0 := b.AddVertex(vec3(0, 0, 0), [2]float64{})
	i1 := b.AddVertex(vec3(1, 0, 0), [2]float64{})
	i2 := b.AddVertex(vec3(2, 0, 0), [2]float64{}) // collinear: zero-area triangle
	b.AddTriangle(i0, i1, i2, WallExterior, "brick")

	_, err := b.Build(true, nil)
	assert.Error(t, err, "a degenerate (zero-area) triangle should fail invariant checks")
}

func TestCheckInvariantsAcceptsValidMesh(t *testing.T) {
	b := NewBuilder()
	i0 := b.AddVertex(vec3(0, 0, 0), [2]float64{})
	i1 := b.AddVertex(vec3(1, 0, 0), [2]float64{})
	i2 := b.AddVertex(vec3(0, 1, 0), [2]float64{})
	b.AddTriangle(i0, i1, i2, WallExterior, "brick")

	m, err := b.Build(true, nil)
	require.NoError(t, err)
	assert.Len(t, m.MaterialGroups["brick"], 1)
}

func TestSummarize(t *testing.T) {
	b := NewBuilder()
	i0 := b.AddVertex(vec3(0, 0, 0), [2]float64{})
	i1 := b.AddVertex(vec3(1, 0, 0), [2]float64{})
	i2 := b.AddVertex(vec3(0, 1, 0), [2]float64{})
	b.AddTriangle(i0, i1, i2, WallExterior, "brick")
	m, err := b.Build(false, nil)
	require.NoError(t, err)

	s := Summarize(m)
	assert.Equal(t, 3, s.VertexCount)
	assert.Equal(t, 1, s.TriangleCount)
	assert.Equal(t, 1, s.MaterialCount)
}

func vec3(x, y, z float64) geom.Vec3 {
	return geom.Vec3{X: x, Y: y, Z: z}
}
