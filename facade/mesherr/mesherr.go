// Package mesherr is the BF2 build error taxonomy: discriminated values,
// never exceptions, so every stage can return a Result-style (*T, error)
// and the assembler can aggregate them without losing the kind.
package mesherr

import (
	"fmt"

	"github.com/arxos/bf2/facade/spec"
)

// Kind discriminates the BuildError variants.
type Kind int

const (
	InvalidFootprint Kind = iota
	InvalidMinPerimeter
	FacadeTooNarrow
	FacadeTooWide
	InvalidFaceLinkage
	InvalidBaySpec
	DegenerateGeometry
)

// String names a Kind the way the authoring UI routes errors to controls.
func (k Kind) String() string {
	switch k {
	case InvalidFootprint:
		return "InvalidFootprint"
	case InvalidMinPerimeter:
		return "InvalidMinPerimeter"
	case FacadeTooNarrow:
		return "FacadeTooNarrow"
	case FacadeTooWide:
		return "FacadeTooWide"
	case InvalidFaceLinkage:
		return "InvalidFaceLinkage"
	case InvalidBaySpec:
		return "InvalidBaySpec"
	case DegenerateGeometry:
		return "DegenerateGeometry"
	default:
		return "Unknown"
	}
}

// BuildError is the single error type every BF2 stage returns. Only the
// fields relevant to Kind are populated; callers should switch on Kind
// before reading them.
type BuildError struct {
	Kind   Kind
	Reason string     // InvalidFootprint, InvalidFaceLinkage, InvalidBaySpec
	FaceID spec.FaceID // FacadeTooNarrow/Wide, InvalidFaceLinkage, InvalidBaySpec
	BayIdx int        // InvalidBaySpec
	Corner int         // InvalidMinPerimeter
	Triangle int       // DegenerateGeometry
}

func (e *BuildError) Error() string {
	switch e.Kind {
	case InvalidFootprint:
		return fmt.Sprintf("InvalidFootprint: %s", e.Reason)
	case InvalidMinPerimeter:
		return fmt.Sprintf("InvalidMinPerimeter: corner %d", e.Corner)
	case FacadeTooNarrow:
		return fmt.Sprintf("FacadeTooNarrow: face %s", spec.FaceLetter(e.FaceID))
	case FacadeTooWide:
		return fmt.Sprintf("FacadeTooWide: face %s", spec.FaceLetter(e.FaceID))
	case InvalidFaceLinkage:
		return fmt.Sprintf("InvalidFaceLinkage: face %s: %s", spec.FaceLetter(e.FaceID), e.Reason)
	case InvalidBaySpec:
		return fmt.Sprintf("InvalidBaySpec: face %s bay %d: %s", spec.FaceLetter(e.FaceID), e.BayIdx, e.Reason)
	case DegenerateGeometry:
		return fmt.Sprintf("DegenerateGeometry: triangle %d", e.Triangle)
	default:
		return "unknown build error"
	}
}

// NewInvalidFootprint builds an InvalidFootprint error.
func NewInvalidFootprint(reason string) *BuildError {
	return &BuildError{Kind: InvalidFootprint, Reason: reason}
}

// NewInvalidMinPerimeter builds an InvalidMinPerimeter error.
func NewInvalidMinPerimeter(cornerIndex int) *BuildError {
	return &BuildError{Kind: InvalidMinPerimeter, Corner: cornerIndex}
}

// NewFacadeTooNarrow builds a FacadeTooNarrow error.
func NewFacadeTooNarrow(face spec.FaceID) *BuildError {
	return &BuildError{Kind: FacadeTooNarrow, FaceID: face}
}

// NewFacadeTooWide builds a FacadeTooWide error.
func NewFacadeTooWide(face spec.FaceID) *BuildError {
	return &BuildError{Kind: FacadeTooWide, FaceID: face}
}

// NewInvalidFaceLinkage builds an InvalidFaceLinkage error.
func NewInvalidFaceLinkage(face spec.FaceID, reason string) *BuildError {
	return &BuildError{Kind: InvalidFaceLinkage, FaceID: face, Reason: reason}
}

// NewInvalidBaySpec builds an InvalidBaySpec error.
func NewInvalidBaySpec(face spec.FaceID, bayIdx int, reason string) *BuildError {
	return &BuildError{Kind: InvalidBaySpec, FaceID: face, BayIdx: bayIdx, Reason: reason}
}

// NewDegenerateGeometry builds a DegenerateGeometry error.
func NewDegenerateGeometry(triangleIndex int) *BuildError {
	return &BuildError{Kind: DegenerateGeometry, Triangle: triangleIndex}
}

// Warning is a non-fatal note attached to a successful build result
// (normalization of a CW footprint, clamping of a negative bay depth).
type Warning struct {
	FaceID  *spec.FaceID
	Message string
}
