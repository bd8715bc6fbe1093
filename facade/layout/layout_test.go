package layout

import (
	"math"
	"testing"

	"github.com/arxos/bf2/facade/mesherr"
	"github.com/arxos/bf2/facade/spec"
)

func sumWidths(bays []SolvedBay) float64 {
	total := 0.0
	for _, b := range bays {
		total += b.U1 - b.U0
	}
	return total
}

func TestSolveFacadeTooNarrow(t *testing.T) {
	bays := []spec.Bay{{Width: spec.Fixed(5)}, {Width: spec.Fixed(5)}}
	_, _, err := Solve(0, bays, nil, 8)
	if err == nil {
		t.Fatalf("expected error for a face narrower than the sum of fixed bays")
	}
	be, ok := err.(*mesherr.BuildError)
	if !ok || be.Kind != mesherr.FacadeTooNarrow {
		t.Errorf("expected FacadeTooNarrow, got %v", err)
	}
}

func TestSolveFacadeTooWide(t *testing.T) {
	bays := []spec.Bay{{Width: spec.Fixed(2)}, {Width: spec.Fixed(2)}}
	_, _, err := Solve(0, bays, nil, 10)
	if err == nil {
		t.Fatalf("expected error for a face wider than two non-repeatable fixed bays can fill")
	}
	be, ok := err.(*mesherr.BuildError)
	if !ok || be.Kind != mesherr.FacadeTooWide {
		t.Errorf("expected FacadeTooWide, got %v", err)
	}
}

func TestSolveExactFixedFit(t *testing.T) {
	bays := []spec.Bay{{Width: spec.Fixed(3)}, {Width: spec.Fixed(4)}}
	solved, _, err := Solve(0, bays, nil, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sumWidths(solved)-7) > 1e-9 {
		t.Errorf("expected solved widths to sum exactly to 7, got %v", sumWidths(solved))
	}
}

func TestSolveCenterOutGrowthUnboundedMiddleBay(t *testing.T) {
	bays := []spec.Bay{
		{Width: spec.Fixed(2)},
		{Width: spec.Range(2, math.Inf(1)), Repeatable: true},
		{Width: spec.Fixed(2)},
	}
	solved, _, err := Solve(0, bays, nil, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(solved) != 3 {
		t.Fatalf("expected 3 solved bays, got %d", len(solved))
	}
	if math.Abs(solved[1].U1-solved[1].U0-4) > 1e-6 {
		t.Errorf("expected the unbounded middle bay to grow to exactly 4m, got %v", solved[1].U1-solved[1].U0)
	}
}

func TestSolveBoundedRangeOverflowsToTooWide(t *testing.T) {
	bays := []spec.Bay{
		{Width: spec.Fixed(2)},
		{Width: spec.Range(2, 3), Repeatable: true},
		{Width: spec.Fixed(2)},
	}
	_, _, err := Solve(0, bays, nil, 20)
	if err == nil {
		t.Fatalf("expected FacadeTooWide when every bay's max is exhausted")
	}
	be, ok := err.(*mesherr.BuildError)
	if !ok || be.Kind != mesherr.FacadeTooWide {
		t.Errorf("expected FacadeTooWide, got %v", err)
	}
}

func TestSolveWholeGroupRepeatGrowth(t *testing.T) {
	bays := []spec.Bay{
		{Width: spec.Fixed(1)}, // margin
		{Width: spec.Fixed(2), Repeatable: true},
		{Width: spec.Fixed(1)}, // margin
	}
	groups := []spec.RepeatGroup{{StartBay: 1, EndBayInclusive: 1, Repeatable: true}}
	solved, trace, err := Solve(0, bays, groups, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sumWidths(solved)-8) > 1e-6 {
		t.Errorf("expected widths to sum to 8, got %v", sumWidths(solved))
	}
	if trace.GroupRepeatCounts[0] != 3 {
		t.Errorf("expected the repeat group to grow to 3 repetitions, got %d", trace.GroupRepeatCounts[0])
	}
}

// Center-out extras. A bounded middle bay cannot absorb the whole
// remainder and no other bay can grow, so the face is too wide; an
// unbounded middle bay absorbs it exactly.
func TestSolveBoundedMiddleBayTooWide(t *testing.T) {
	bays := []spec.Bay{
		{Width: spec.Fixed(1)},
		{Width: spec.Range(1, 5), Repeatable: true},
		{Width: spec.Fixed(1)},
	}
	_, _, err := Solve(0, bays, nil, 10)
	if err == nil {
		t.Fatalf("expected error: middle bay caps at 5, leaving 3m unplaceable")
	}
	be, ok := err.(*mesherr.BuildError)
	if !ok || be.Kind != mesherr.FacadeTooWide {
		t.Errorf("expected FacadeTooWide, got %v", err)
	}
}

func TestSolveUnboundedMiddleBayAbsorbsRemainder(t *testing.T) {
	bays := []spec.Bay{
		{Width: spec.Fixed(1)},
		{Width: spec.Range(1, math.Inf(1)), Repeatable: true},
		{Width: spec.Fixed(1)},
	}
	solved, _, err := Solve(0, bays, nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sumWidths(solved)-10) > 1e-6 {
		t.Errorf("expected widths to sum to 10, got %v", sumWidths(solved))
	}
	middleWidth := solved[1].U1 - solved[1].U0
	if math.Abs(middleWidth-8) > 1e-6 {
		t.Errorf("expected the middle bay to grow to exactly 8, got %v", middleWidth)
	}
}

func TestSolveDeterministic(t *testing.T) {
	bays := []spec.Bay{
		{Width: spec.Fixed(1)},
		{Width: spec.Range(1, 3), Repeatable: true},
		{Width: spec.Range(1, 3), Repeatable: true},
		{Width: spec.Fixed(1)},
	}
	a, _, errA := Solve(0, bays, nil, 7)
	b, _, errB := Solve(0, bays, nil, 7)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	for i := range a {
		if a[i].U0 != b[i].U0 || a[i].U1 != b[i].U1 {
			t.Errorf("expected identical repeated solves, bay %d differed: %v vs %v", i, a[i], b[i])
		}
	}
}
