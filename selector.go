package squash

import "fmt"

// Selector picks a palette of at most maxColors colors for an RGB buffer.
//
// The built-in selectors only fail on a malformed buffer or a maxColors
// below 1. Selectors are configured before use and don't keep state between
// calls, unless they're holding a random source.
type Selector interface {
	Select(pixels []byte, maxColors int) (Palette, error)
}

// serialSelector is implemented by selectors that can be kept on the calling
// goroutine. Quantizer uses it to honor SingleThreaded.
type serialSelector interface {
	selectPalette(pixels []byte, maxColors int, single bool) (Palette, error)
}

var (
	_ serialSelector = (*SortSelect)(nil)
	_ serialSelector = (*HeuristicSortSelect)(nil)
	_ serialSelector = (*KMeans)(nil)
	_ serialSelector = (*ClusterSelect)(nil)
	_ serialSelector = MedianCut{}
)

// BuildPalette runs a selector over an RGB buffer. A nil selector uses
// SortSelect with its defaults.
func BuildPalette(pixels []byte, maxColors int, s Selector) (Palette, error) {
	if maxColors < 1 {
		return nil, fmt.Errorf("%w: max colors must be at least 1, got %d", ErrInvalidConfig, maxColors)
	}
	if s == nil {
		s = &SortSelect{Tolerance: DefaultTolerance}
	}
	return s.Select(pixels, maxColors)
}

// checkSelect validates the arguments common to every Select call and
// returns the pixel count.
func checkSelect(pixels []byte, maxColors int) (int, error) {
	if maxColors < 1 {
		return 0, fmt.Errorf("%w: max colors must be at least 1, got %d", ErrInvalidConfig, maxColors)
	}
	return checkPixels(pixels)
}
