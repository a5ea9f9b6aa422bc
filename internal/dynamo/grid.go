package dynamo

import (
	"fmt"
	"math"
)

// Linspace returns n evenly spaced points over [start, end]. Both endpoints
// are exact.
func Linspace(start, end float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	if n == 1 {
		return []float64{start}
	}
	out := make([]float64, n)
	step := (end - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = end
	return out
}

// ValidateSpan rejects empty, reversed or non-finite spans.
func ValidateSpan(span Span) error {
	if math.IsNaN(span.Start) || math.IsNaN(span.End) || math.IsInf(span.Start, 0) || math.IsInf(span.End, 0) {
		return fmt.Errorf("%w: span [%g, %g] is not finite", ErrParameterBounds, span.Start, span.End)
	}
	if span.End <= span.Start {
		return fmt.Errorf("%w: span end %g must be after start %g", ErrParameterBounds, span.End, span.Start)
	}
	return nil
}

// ValidateGrid requires a non-empty, strictly increasing grid inside span.
func ValidateGrid(span Span, grid []float64) error {
	if len(grid) == 0 {
		return fmt.Errorf("%w: no evaluation points", ErrInvalidGrid)
	}
	for i, t := range grid {
		if math.IsNaN(t) || !span.Contains(t) {
			return fmt.Errorf("%w: point %d (t=%g) outside [%g, %g]", ErrInvalidGrid, i, t, span.Start, span.End)
		}
		if i > 0 && t <= grid[i-1] {
			return fmt.Errorf("%w: point %d (t=%g) not after %g", ErrInvalidGrid, i, t, grid[i-1])
		}
	}
	return nil
}

// ValidateProblem runs the checks every solver performs before integrating.
func ValidateProblem(sys System, span Span, x0 State, grid []float64) error {
	if len(x0) != sys.StateDim() {
		return fmt.Errorf("%w: state has %d components, system expects %d", ErrDimensionMismatch, len(x0), sys.StateDim())
	}
	if !x0.IsValid() {
		return fmt.Errorf("initial state: %w", ErrInvalidState)
	}
	if err := ValidateSpan(span); err != nil {
		return err
	}
	return ValidateGrid(span, grid)
}
