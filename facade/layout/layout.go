// Package layout implements the bay layout solver: it turns a
// face's authored bays and repeat groups into concrete widths that sum
// exactly to the face length, deterministically.
package layout

import (
	"math"
	"sort"

	"github.com/arxos/bf2/facade/mesherr"
	"github.com/arxos/bf2/facade/spec"
)

// SolvedBay is one bay after the solver has assigned it a concrete width.
type SolvedBay struct {
	U0, U1           float64 // [U0, U1) along the face tangent
	Repeatable       bool
	DepthM           float64
	Shape            spec.BayShape
	MaterialOverride *spec.MaterialID
	TextureFlow      spec.TextureFlow
	// GroupIndex is the index into the original RepeatGroup list this
	// bay's repetition belongs to, or -1 if it is not part of a group.
	GroupIndex int
	// RepeatOrdinal is which repetition (0-based) of its group this bay
	// instance belongs to; 0 for non-grouped bays.
	RepeatOrdinal int
	// SourceBayIndex is the index into the authored Bay list this solved
	// bay was expanded from.
	SourceBayIndex int
}

// Trace records the solver's deterministic decisions for debug output.
type Trace struct {
	GroupRepeatCounts []int // one per authored RepeatGroup, final repeat count
	ExtrasAssigned    []int // one per authored bay, number of local-growth increments granted
}

// Solve partitions face length L into concrete bay widths: seed minimums,
// grow whole repeat groups, grow local repeats, then distribute the
// remainder center-out.
func Solve(face spec.FaceID, bays []spec.Bay, groups []spec.RepeatGroup, length float64) ([]SolvedBay, Trace, error) {
	if len(bays) == 0 {
		return nil, Trace{}, mesherr.NewInvalidBaySpec(face, 0, "face has no bays")
	}

	widths := make([]float64, len(bays))
	for i, b := range bays {
		widths[i] = seedWidth(b.Width)
		if widths[i] < 0.1-1e-9 {
			return nil, Trace{}, mesherr.NewInvalidBaySpec(face, i, "width below 0.1m minimum")
		}
		if b.Width.Kind == spec.WidthRange && b.Width.Max < b.Width.Min {
			return nil, Trace{}, mesherr.NewInvalidBaySpec(face, i, "range max below min")
		}
		if b.Shape.Kind == spec.ShapeWedge {
			if rem := math.Mod(math.Abs(b.Shape.AngleDeg), 15); rem > 1e-6 && 15-rem > 1e-6 {
				return nil, Trace{}, mesherr.NewInvalidBaySpec(face, i, "wedge angle must be a multiple of 15 degrees")
			}
		}
	}

	if err := validateGroups(face, groups, len(bays)); err != nil {
		return nil, Trace{}, err
	}

	groupRepeatCounts := make([]int, len(groups))
	for i := range groups {
		groupRepeatCounts[i] = 1
	}

	sum := func() float64 {
		s := 0.0
		for _, w := range widths {
			s += w
		}
		for gi, g := range groups {
			// The group's pattern is already included once via widths
			// above (bays start at repeat count 1); additional repeats
			// add groupPatternWidth(widths, g) each.
			if groupRepeatCounts[gi] > 1 {
				s += groupPatternWidth(widths, g) * float64(groupRepeatCounts[gi]-1)
			}
		}
		return s
	}

	minTotal := sum()
	if minTotal > length+1e-9 {
		return nil, Trace{}, mesherr.NewFacadeTooNarrow(face)
	}

	maxTotal := 0.0
	anyRepeatable := false
	for _, g := range groups {
		if g.Repeatable {
			anyRepeatable = true
		}
	}
	for _, b := range bays {
		if b.Repeatable {
			anyRepeatable = true
		}
		maxTotal += maxWidth(b.Width)
	}
	if maxTotal < length-1e-9 && !anyRepeatable {
		return nil, Trace{}, mesherr.NewFacadeTooWide(face)
	}

	// Grow whole repeat groups: each round adds one repetition of the
	// group with the smallest pattern width among those whose next
	// repetition still fits, ties broken by lower group index.
	for {
		current := sum()
		if length-current <= 1e-9 {
			break
		}
		bestGroup := -1
		bestIncrease := math.Inf(1)
		for gi, g := range groups {
			if !g.Repeatable {
				continue
			}
			inc := groupPatternWidth(widths, g)
			if inc <= 1e-12 {
				continue
			}
			projected := current + inc
			if projected > length+1e-9 {
				continue // would overshoot; local/remainder growth handles the rest
			}
			if inc < bestIncrease {
				bestIncrease = inc
				bestGroup = gi
			}
		}
		if bestGroup < 0 {
			break
		}
		groupRepeatCounts[bestGroup]++
	}

	// Grow local repeatable bays one extra increment at a time,
	// center-out, until no bay can grow further without exceeding its
	// max or the face length.
	order := centerOutOrder(len(bays))
	extras := make([]int, len(bays))
	growStep := 0.05 // meters per local-extra increment before remainder smoothing
	for {
		current := sum()
		remaining := length - current
		if remaining <= 1e-9 {
			break
		}
		grew := false
		for _, idx := range order {
			b := bays[idx]
			if !b.Repeatable || b.Width.Kind != spec.WidthRange {
				continue
			}
			capMax := b.Width.Max
			if widths[idx]+growStep > capMax+1e-9 {
				continue
			}
			step := math.Min(growStep, remaining)
			if step <= 1e-12 {
				continue
			}
			widths[idx] += step
			extras[idx]++
			grew = true
			remaining -= step
			if remaining <= 1e-9 {
				break
			}
		}
		if !grew {
			break
		}
	}

	// Distribute any leftover remainder equally across bays still below
	// max, tie-broken center-out, repeating until remainder is exhausted
	// or no bay can grow.
	for iter := 0; iter < 10000; iter++ {
		current := sum()
		remaining := length - current
		if remaining <= 1e-9 {
			break
		}
		var growable []int
		for _, idx := range order {
			b := bays[idx]
			if b.Width.Kind != spec.WidthRange {
				continue
			}
			if widths[idx] < b.Width.Max-1e-9 {
				growable = append(growable, idx)
			}
		}
		if len(growable) == 0 {
			if maxTotal < length-1e-6 {
				return nil, Trace{}, mesherr.NewFacadeTooWide(face)
			}
			break
		}
		share := remaining / float64(len(growable))
		for _, idx := range growable {
			capMax := bays[idx].Width.Max
			grant := math.Min(share, capMax-widths[idx])
			widths[idx] += grant
		}
	}

	finalSum := sum()
	if math.Abs(finalSum-length) > 1e-6 {
		// Residual rounding: nudge the last bay so the partition sums
		// exactly to the face length.
		widths[len(widths)-1] += length - finalSum
	}

	solved := materialize(bays, groups, groupRepeatCounts, widths)
	return solved, Trace{GroupRepeatCounts: groupRepeatCounts, ExtrasAssigned: extras}, nil
}

// validateGroups checks that every repeat group names a valid,
// contiguous bay range and that no two groups share a bay.
func validateGroups(face spec.FaceID, groups []spec.RepeatGroup, bayCount int) error {
	claimed := make([]bool, bayCount)
	for _, g := range groups {
		if g.StartBay < 0 || g.EndBayInclusive < g.StartBay || g.EndBayInclusive >= bayCount {
			return mesherr.NewInvalidBaySpec(face, g.StartBay, "repeat group range out of bounds")
		}
		for i := g.StartBay; i <= g.EndBayInclusive; i++ {
			if claimed[i] {
				return mesherr.NewInvalidBaySpec(face, i, "bay belongs to more than one repeat group")
			}
			claimed[i] = true
		}
	}
	return nil
}

func seedWidth(w spec.WidthSpec) float64 {
	if w.Kind == spec.WidthFixed {
		return w.Fixed
	}
	return w.Min
}

func maxWidth(w spec.WidthSpec) float64 {
	if w.Kind == spec.WidthFixed {
		return w.Fixed
	}
	return w.Max
}

// groupPatternWidth returns the tangent width of one repetition of a
// repeat group's bay pattern, at current seed widths.
func groupPatternWidth(widths []float64, g spec.RepeatGroup) float64 {
	sum := 0.0
	for i := g.StartBay; i <= g.EndBayInclusive && i < len(widths); i++ {
		sum += widths[i]
	}
	return sum
}

// centerOutOrder returns bay indices [0,n) ordered outward from the
// midpoint: for n bays, the middle index(es) come first, then one step
// left, one step right, alternating, with ties (even n) resolved by
// lower index.
func centerOutOrder(n int) []int {
	if n == 0 {
		return nil
	}
	mid := float64(n-1) / 2
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(float64(order[a])-mid) < math.Abs(float64(order[b])-mid)
	})
	return order
}

// materialize expands the authored bays and resolved group repeat
// counts into a concrete ordered list of SolvedBay values covering
// [0, L) with no gaps, grouped bays repeating group.EndBayInclusive-
// group.StartBay+1 bays per repetition.
func materialize(bays []spec.Bay, groups []spec.RepeatGroup, groupRepeatCounts []int, widths []float64) []SolvedBay {
	bayGroup := make([]int, len(bays))
	for i := range bayGroup {
		bayGroup[i] = -1
	}
	for gi, g := range groups {
		for i := g.StartBay; i <= g.EndBayInclusive && i < len(bays); i++ {
			bayGroup[i] = gi
		}
	}

	groupStarts := make(map[int]bool)
	for _, g := range groups {
		groupStarts[g.StartBay] = true
	}

	var solved []SolvedBay
	u := 0.0
	i := 0
	for i < len(bays) {
		gi := bayGroup[i]
		if gi >= 0 && groups[gi].StartBay == i {
			g := groups[gi]
			reps := groupRepeatCounts[gi]
			for r := 0; r < reps; r++ {
				for bi := g.StartBay; bi <= g.EndBayInclusive && bi < len(bays); bi++ {
					u0 := u
					u1 := u + widths[bi]
					solved = append(solved, solvedFrom(bays[bi], u0, u1, gi, r, bi))
					u = u1
				}
			}
			i = g.EndBayInclusive + 1
			continue
		}
		u0 := u
		u1 := u + widths[i]
		solved = append(solved, solvedFrom(bays[i], u0, u1, -1, 0, i))
		u = u1
		i++
	}
	return solved
}

func solvedFrom(b spec.Bay, u0, u1 float64, groupIdx, repeatOrdinal, sourceIdx int) SolvedBay {
	depth := b.DepthM
	if depth < 0 {
		depth = 0
	}
	return SolvedBay{
		U0:               u0,
		U1:               u1,
		Repeatable:       b.Repeatable,
		DepthM:           depth,
		Shape:            b.Shape,
		MaterialOverride: b.MaterialOverride,
		TextureFlow:      b.TextureFlow,
		GroupIndex:       groupIdx,
		RepeatOrdinal:    repeatOrdinal,
		SourceBayIndex:   sourceIdx,
	}
}

// SortedByU returns a copy of bays ordered by U0 (bays already come
// out of Solve ordered by U).
func SortedByU(bays []SolvedBay) []SolvedBay {
	out := make([]SolvedBay, len(bays))
	copy(out, bays)
	sort.Slice(out, func(i, j int) bool { return out[i].U0 < out[j].U0 })
	return out
}
