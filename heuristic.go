package squash

import "fmt"

const (
	// DefaultStep is the initial tolerance step of HeuristicSortSelect.
	DefaultStep = 2.0

	// DefaultAttempts is the default cap on HeuristicSortSelect iterations.
	DefaultAttempts = 64

	// minStep ends the search once the step has been halved below it.
	minStep = 0.01
)

// HeuristicSortSelect runs SortSelect at a range of tolerances and keeps the
// palette with the lowest total error (see Histogram.Error).
//
// The search starts at Tolerance and tries Tolerance ± Step. If either is
// better than the best palette so far the search moves there, otherwise the
// step is halved. It stops when the step drops below 0.01 or after
// MaxAttempts rounds. This finds a local optimum only, and is deterministic.
type HeuristicSortSelect struct {
	// Tolerance is the starting tolerance percentage, between 0 and 100.
	Tolerance float32

	// Step is the starting distance between tolerances tried. Must be
	// positive.
	Step float32

	// MaxAttempts caps the number of rounds. Each round runs two selections.
	MaxAttempts int

	// Metric compares colors, both for selection and scoring. RGB is used if
	// nil.
	Metric Metric
}

// NewHeuristicSortSelect returns a validated HeuristicSortSelect.
func NewHeuristicSortSelect(tolerance, step float32, attempts int, m Metric) (*HeuristicSortSelect, error) {
	s := &HeuristicSortSelect{
		Tolerance:   tolerance,
		Step:        step,
		MaxAttempts: attempts,
		Metric:      m,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the search parameters.
func (s *HeuristicSortSelect) Validate() error {
	if err := checkTolerance(s.Tolerance); err != nil {
		return err
	}
	if !(s.Step > 0) {
		return fmt.Errorf("%w: step must be positive, got %v", ErrInvalidConfig, s.Step)
	}
	if s.MaxAttempts < 1 {
		return fmt.Errorf("%w: attempts must be at least 1, got %d", ErrInvalidConfig, s.MaxAttempts)
	}
	return nil
}

// Select implements Selector.
func (s *HeuristicSortSelect) Select(pixels []byte, maxColors int) (Palette, error) {
	return s.selectPalette(pixels, maxColors, false)
}

func (s *HeuristicSortSelect) selectPalette(pixels []byte, maxColors int, single bool) (Palette, error) {
	n, err := checkSelect(pixels, maxColors)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	m := orRGB(s.Metric)
	h := histogram(pixels, n, single)
	try := func(tolerance float32) (Palette, float64) {
		p := selectSorted(h, maxColors, threshold(tolerance, m), m)
		return p, h.errorOf(p, m, single)
	}

	t := s.Tolerance
	step := s.Step
	best, bestErr := try(t)

	for attempt := 0; attempt < s.MaxAttempts && step >= minStep; attempt++ {
		up, down := clampTolerance(t+step), clampTolerance(t-step)
		upPalette, upErr := try(up)
		downPalette, downErr := try(down)

		switch {
		case downErr < bestErr && downErr <= upErr:
			t, best, bestErr = down, downPalette, downErr
		case upErr < bestErr:
			t, best, bestErr = up, upPalette, upErr
		default:
			step /= 2
		}
	}
	return best, nil
}

func clampTolerance(t float32) float32 {
	if t < 0 {
		return 0
	}
	if t > 100 {
		return 100
	}
	return t
}
