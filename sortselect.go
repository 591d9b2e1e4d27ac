package squash

import "fmt"

// DefaultTolerance is the tolerance percentage SortSelect uses when none is
// given.
const DefaultTolerance = 3.0

// SortSelect builds a palette greedily from the most common colors. Walking
// the histogram from most to least common, a color is added if it differs
// from every color already picked by more than the tolerance.
//
// Cost is O(unique colors * palette size).
type SortSelect struct {
	// Tolerance is how different colors must be to both enter the palette, as
	// a percentage of the metric's range. Between 0 and 100.
	// Near 100 distinct colors get merged, near 0 colors are picked almost
	// purely by frequency.
	Tolerance float32

	// Metric compares colors. RGB is used if nil.
	Metric Metric
}

// NewSortSelect returns a validated SortSelect.
func NewSortSelect(tolerance float32, m Metric) (*SortSelect, error) {
	s := &SortSelect{Tolerance: tolerance, Metric: m}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the tolerance range.
func (s *SortSelect) Validate() error {
	return checkTolerance(s.Tolerance)
}

// Select implements Selector.
func (s *SortSelect) Select(pixels []byte, maxColors int) (Palette, error) {
	return s.selectPalette(pixels, maxColors, false)
}

func (s *SortSelect) selectPalette(pixels []byte, maxColors int, single bool) (Palette, error) {
	n, err := checkSelect(pixels, maxColors)
	if err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	m := orRGB(s.Metric)
	h := histogram(pixels, n, single)
	return selectSorted(h, maxColors, threshold(s.Tolerance, m), m), nil
}

// selectSorted is the greedy selection over an already sorted histogram.
func selectSorted(h Histogram, maxColors int, threshold float32, m Metric) Palette {
	size := maxColors
	if len(h) < size {
		size = len(h)
	}
	selected := make(Palette, 0, size)

outer:
	for _, e := range h {
		if len(selected) >= maxColors {
			break
		}
		for _, c := range selected {
			if m.Difference(c, e.Color) <= threshold {
				continue outer
			}
		}
		selected = append(selected, e.Color)
	}
	return selected
}

// threshold turns a tolerance percentage into an absolute difference.
func threshold(tolerance float32, m Metric) float32 {
	return (tolerance / 100) * metricRange(m)
}

func checkTolerance(tolerance float32) error {
	if !(tolerance >= 0 && tolerance <= 100) {
		return fmt.Errorf("%w: tolerance must be between 0 and 100, got %v", ErrInvalidConfig, tolerance)
	}
	return nil
}
