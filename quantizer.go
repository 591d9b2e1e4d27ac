// Package squash reduces true color images to a small palette.
//
// A Selector picks the palette from an RGB buffer, a Metric decides which
// palette entry is nearest to a color, and a LookupTable caches that decision
// for all 2^24 colors so mapping millions of pixels is a table lookup each.
// Quantizer ties them together:
//
//	q, err := squash.New[uint8](squash.Config{MaxColors: 16})
//	...
//	err = q.Recolor(pixels)
//	indices := make([]uint8, len(pixels)/3)
//	err = q.Map(pixels, indices)
//	// q.Palette().Bytes() and indices can go to a PNG or GIF encoder
//
// Pixel buffers are R,G,B bytes per pixel in row-major order. Alpha,
// dithering and color spaces other than RGB are not supported.
package squash

import "fmt"

// DefaultMaxColors is the palette size used when Config.MaxColors is 0.
const DefaultMaxColors = 256

// Config configures a Quantizer.
type Config struct {
	// MaxColors bounds the palette size. It must fit the index type: at most
	// 256 for uint8 indices. 0 means DefaultMaxColors, or the index type's
	// limit if that's smaller.
	MaxColors int

	// Selector picks palettes. If nil, a SortSelect with DefaultTolerance and
	// Metric is used.
	Selector Selector

	// Metric finds the nearest palette entry when mapping. RGB if nil.
	Metric Metric
}

// Quantizer holds a palette and the lookup table that maps colors to it.
// Recolor picks a new palette, Map writes palette indices for an image.
//
// T is the index type; it bounds the palette size. A Quantizer is not safe for
// concurrent use.
type Quantizer[T Index] struct {
	// SingleThreaded keeps palette selection with the built-in selectors and
	// mapping on the calling goroutine. The output is the same either way.
	SingleThreaded bool

	maxColors int
	selector  Selector
	table     *LookupTable[T]
}

// New validates the config and allocates a Quantizer. The palette is empty
// until Recolor is called.
func New[T Index](cfg Config) (*Quantizer[T], error) {
	limit := maxPalette[T]()
	if cfg.MaxColors == 0 {
		cfg.MaxColors = DefaultMaxColors
		if limit < cfg.MaxColors {
			cfg.MaxColors = limit
		}
	}
	if cfg.MaxColors < 1 || cfg.MaxColors > limit {
		return nil, fmt.Errorf("%w: max colors must be between 1 and %d, got %d", ErrInvalidConfig, limit, cfg.MaxColors)
	}

	cfg.Metric = orRGB(cfg.Metric)
	if cfg.Selector == nil {
		cfg.Selector = &SortSelect{Tolerance: DefaultTolerance, Metric: cfg.Metric}
	}
	if v, ok := cfg.Selector.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return nil, err
		}
	}

	return &Quantizer[T]{
		maxColors: cfg.MaxColors,
		selector:  cfg.Selector,
		table:     newTable[T](cfg.Metric),
	}, nil
}

// Build creates a Quantizer and picks its palette from pixels.
func Build[T Index](cfg Config, pixels []byte) (*Quantizer[T], error) {
	q, err := New[T](cfg)
	if err != nil {
		return nil, err
	}
	if err := q.Recolor(pixels); err != nil {
		return nil, err
	}
	return q, nil
}

// MaxColors returns the configured palette size limit.
func (q *Quantizer[T]) MaxColors() int {
	return q.maxColors
}

// Palette returns the current palette. It must not be modified.
func (q *Quantizer[T]) Palette() Palette {
	return q.table.Palette()
}

// Table returns the lookup table, for mapping with an explicit Mode.
func (q *Quantizer[T]) Table() *LookupTable[T] {
	q.table.SingleThreaded = q.SingleThreaded
	return q.table
}

// Recolor replaces the palette with one selected from pixels. Every lookup
// table entry is invalidated, since they were computed for the old palette.
func (q *Quantizer[T]) Recolor(pixels []byte) error {
	return q.recolor(pixels, q.maxColors)
}

func (q *Quantizer[T]) recolor(pixels []byte, maxColors int) error {
	var p Palette
	var err error
	if s, ok := q.selector.(serialSelector); ok {
		p, err = s.selectPalette(pixels, maxColors, q.SingleThreaded)
	} else {
		p, err = q.selector.Select(pixels, maxColors)
	}
	if err != nil {
		return err
	}
	if len(p) > maxColors {
		return fmt.Errorf("selector returned %d colors, %d allowed", len(p), maxColors)
	}
	return q.table.Reset(p)
}

// Map writes the palette index of each pixel to dst, which must hold at least
// len(pixels)/3 indices. Colors that weren't in the image the palette was
// picked from are handled.
func (q *Quantizer[T]) Map(pixels []byte, dst []T) error {
	return q.Table().Map(pixels, dst, Safe)
}

// MapUnsafe is like Map but doesn't look for colors the table hasn't seen
// yet. Those come out as index 0. It's only correct when every color in pixels
// has been through Map since the last Recolor.
func (q *Quantizer[T]) MapUnsafe(pixels []byte, dst []T) error {
	return q.Table().Map(pixels, dst, Unsafe)
}

// MapOver maps pixels in place, writing the indices to the first third of the
// buffer. It returns the number of indices, so pixels[:n] is the indexed
// image.
func (q *Quantizer[T]) MapOver(pixels []byte) (int, error) {
	t, ok := any(q.Table()).(*LookupTable[uint8])
	if !ok {
		return 0, fmt.Errorf("%w: in place mapping needs uint8 indices", ErrInvalidConfig)
	}
	return MapOver(t, pixels, Safe)
}
