package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCCW(t *testing.T) {
	square := []Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	assert.True(t, IsCCW(square), "unit square in CCW order should report CCW")

	reversed := []Vec2{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
	assert.False(t, IsCCW(reversed), "clockwise loop should report not-CCW")
}

func TestSignedArea2(t *testing.T) {
	square := []Vec2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	assert.Equal(t, 8.0, SignedArea2(square)) // 2x area of a 2x2 square
}

func TestCentroid(t *testing.T) {
	square := []Vec2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	c := Centroid(square)
	assert.Equal(t, 1.0, c.X)
	assert.Equal(t, 1.0, c.Y)
}

func TestLineIntersection(t *testing.T) {
	p, ok := LineIntersection(Vec2{X: 0, Y: 0}, Vec2{X: 1, Y: 0}, Vec2{X: 1, Y: -1}, Vec2{X: 0, Y: 1})
	require.True(t, ok, "expected intersection to be found")
	assert.Equal(t, 1.0, p.X)
	assert.Equal(t, 0.0, p.Y)
}

func TestLineIntersectionParallel(t *testing.T) {
	_, ok := LineIntersection(Vec2{X: 0, Y: 0}, Vec2{X: 1, Y: 0}, Vec2{X: 0, Y: 1}, Vec2{X: 1, Y: 0})
	assert.False(t, ok, "parallel lines should report no intersection")
}

func TestSegmentsIntersect(t *testing.T) {
	assert.True(t, SegmentsIntersect(Vec2{X: 0, Y: 0}, Vec2{X: 2, Y: 2}, Vec2{X: 0, Y: 2}, Vec2{X: 2, Y: 0}),
		"crossing diagonals should intersect")
	assert.False(t, SegmentsIntersect(Vec2{X: 0, Y: 0}, Vec2{X: 1, Y: 0}, Vec2{X: 0, Y: 1}, Vec2{X: 1, Y: 1}),
		"parallel non-overlapping segments should not intersect")
}

func TestIsSimplePolygon(t *testing.T) {
	square := []Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	assert.True(t, IsSimplePolygon(square), "simple square should report simple")

	bowtie := []Vec2{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 1}}
	assert.False(t, IsSimplePolygon(bowtie), "bowtie polygon should report non-simple")
}
