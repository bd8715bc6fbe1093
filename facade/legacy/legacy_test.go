package legacy

import (
	"math"
	"testing"

	"github.com/arxos/bf2/facade/layout"
)

func TestConvertProducesHalfSpacingMargins(t *testing.T) {
	ws := WindowSpacing{
		Face:         0,
		ColumnCount:  3,
		WindowWidthM: 1.2,
		SpacingM:     0.8,
		DepthM:       0.1,
	}
	fl, err := Convert(ws)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !fl.IsMaster {
		t.Fatalf("expected a master layout")
	}
	if fl.Bays[0].Width.Fixed != 0.4 {
		t.Errorf("expected a 0.4m (half-spacing) leading margin bay, got %v", fl.Bays[0].Width.Fixed)
	}
	last := fl.Bays[len(fl.Bays)-1]
	if last.Width.Fixed != 0.4 {
		t.Errorf("expected a 0.4m (half-spacing) trailing margin bay, got %v", last.Width.Fixed)
	}
}

func TestConvertSolvesCleanlyThroughLayoutSolver(t *testing.T) {
	ws := WindowSpacing{
		Face:         0,
		ColumnCount:  2,
		WindowWidthM: 1.0,
		SpacingM:     0.5,
		DepthM:       0.1,
	}
	fl, err := Convert(ws)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Margin(0.25) + window(1) + spacing(0.5) + window(1) + margin(0.25) = 3.0
	length := 3.0
	solved, _, err := layout.Solve(ws.Face, fl.Bays, fl.Groups, length)
	if err != nil {
		t.Fatalf("unexpected solve error: %v", err)
	}
	total := 0.0
	for _, b := range solved {
		total += b.U1 - b.U0
	}
	if math.Abs(total-length) > 1e-6 {
		t.Errorf("expected converted legacy layout to solve to exactly %v, got %v", length, total)
	}
}

func TestConvertRejectsInvalidColumnCount(t *testing.T) {
	_, err := Convert(WindowSpacing{ColumnCount: 0, WindowWidthM: 1, SpacingM: 1})
	if err == nil {
		t.Errorf("expected an error for a non-positive column count")
	}
}
