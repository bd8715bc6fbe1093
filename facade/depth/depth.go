// Package depth computes the per-face depth field e_i(u) >= 0
// from a face's solved bays.
package depth

import (
	"sort"

	"github.com/arxos/bf2/facade/layout"
)

// Field is a piecewise-constant, non-negative extrusion function over
// one face's tangent extent, stored as breakpoints at bay boundaries.
type Field struct {
	DMin        float64
	Breakpoints []float64   // ascending U values, len == len(Values)+1, Breakpoints[0]==0
	Values      []float64   // e_i(u) on [Breakpoints[k], Breakpoints[k+1])
}

// Build computes dMin_i = min(bay.depth) and the depth field e_i(u) =
// bay.depth - dMin_i for a face's solved bays, which are assumed to
// already be ordered and gapless over [0, L).
func Build(bays []layout.SolvedBay) Field {
	if len(bays) == 0 {
		return Field{}
	}
	ordered := make([]layout.SolvedBay, len(bays))
	copy(ordered, bays)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].U0 < ordered[j].U0 })

	dMin := ordered[0].DepthM
	for _, b := range ordered {
		if b.DepthM < dMin {
			dMin = b.DepthM
		}
	}

	breakpoints := make([]float64, 0, len(ordered)+1)
	values := make([]float64, 0, len(ordered))
	breakpoints = append(breakpoints, ordered[0].U0)
	for _, b := range ordered {
		breakpoints = append(breakpoints, b.U1)
		e := b.DepthM - dMin
		if e < 0 {
			e = 0
		}
		values = append(values, e)
	}

	return Field{DMin: dMin, Breakpoints: breakpoints, Values: values}
}

// At evaluates e_i(u) by lookup in the breakpoint table.
func (f Field) At(u float64) float64 {
	if len(f.Values) == 0 {
		return 0
	}
	for k := 0; k < len(f.Values); k++ {
		if u < f.Breakpoints[k+1] || k == len(f.Values)-1 {
			return f.Values[k]
		}
	}
	return f.Values[len(f.Values)-1]
}
