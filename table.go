package squash

import (
	"fmt"
	"math/bits"
)

// TableSize is the number of entries in a LookupTable, one per 24-bit color.
const TableSize = 1 << 24

// Index is the integer type palette indices are written as. It bounds the
// palette size: a uint8 index allows 256 colors.
type Index interface {
	~uint8 | ~uint16 | ~uint32
}

// maxPalette returns the largest palette T can index.
func maxPalette[T Index]() int {
	m := uint64(^T(0)) + 1
	if m > TableSize {
		// More indices than colors is pointless
		return TableSize
	}
	return int(m)
}

// Mode controls whether mapping makes sure the lookup table covers the
// colors being mapped.
type Mode int

const (
	// Safe finds the unique colors of the buffer and fills in any table
	// entries that are missing before mapping. Always correct.
	Safe Mode = iota

	// Unsafe trusts the table to already cover the buffer. A color that isn't
	// covered maps to whatever its entry holds, which after Reset is 0. Only
	// use this when the buffer's colors are known to have been mapped before.
	Unsafe
)

func (m Mode) String() string {
	switch m {
	case Safe:
		return "safe"
	case Unsafe:
		return "unsafe"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// LookupTable maps any 24-bit color to the index of its nearest palette entry
// in O(1). Entries are filled in lazily, on demand, and a bitset tracks which
// ones are valid for the current palette.
//
// A table takes 16 MiB per byte of T, plus 2 MiB. It's not safe for
// concurrent use.
type LookupTable[T Index] struct {
	// SingleThreaded disables splitting population and mapping across
	// goroutines. Results are the same either way.
	SingleThreaded bool

	palette Palette
	metric  Metric
	entries []T
	covered []uint64
}

// NewLookupTable returns an empty table for the palette. No entries are
// computed until they're needed. A nil metric means RGB.
func NewLookupTable[T Index](p Palette, m Metric) (*LookupTable[T], error) {
	t := newTable[T](m)
	if err := t.Reset(p); err != nil {
		return nil, err
	}
	return t, nil
}

func newTable[T Index](m Metric) *LookupTable[T] {
	return &LookupTable[T]{
		metric:  orRGB(m),
		entries: make([]T, TableSize),
		covered: make([]uint64, TableSize/64),
	}
}

// Reset switches the table to a new palette and invalidates every entry.
func (t *LookupTable[T]) Reset(p Palette) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: palette is empty", ErrInvalidConfig)
	}
	if limit := maxPalette[T](); len(p) > limit {
		return fmt.Errorf("%w: palette has %d colors, index type allows %d", ErrInvalidConfig, len(p), limit)
	}
	t.palette = append(Palette(nil), p...)
	clear(t.entries)
	clear(t.covered)
	return nil
}

// Palette returns the palette the table maps to.
func (t *LookupTable[T]) Palette() Palette {
	return t.palette
}

// Metric returns the metric used to find the nearest entry.
func (t *LookupTable[T]) Metric() Metric {
	return t.metric
}

// Covers reports whether the entry for c is valid for the current palette.
func (t *LookupTable[T]) Covers(c Color) bool {
	k := c.key()
	return t.covered[k/64]&(1<<(k%64)) != 0
}

// Len returns how many entries are valid.
func (t *LookupTable[T]) Len() int {
	n := 0
	for _, w := range t.covered {
		n += bits.OnesCount64(w)
	}
	return n
}

// Lookup returns the entry for c without checking that it's valid.
func (t *LookupTable[T]) Lookup(c Color) T {
	return t.entries[c.key()]
}

// Nearest returns the index of the palette entry nearest to c, computing and
// storing it if needed.
func (t *LookupTable[T]) Nearest(c Color) T {
	if !t.Covers(c) {
		t.set(c, T(t.palette.Nearest(c, t.metric)))
	}
	return t.entries[c.key()]
}

func (t *LookupTable[T]) set(c Color, i T) {
	k := c.key()
	t.entries[k] = i
	t.covered[k/64] |= 1 << (k % 64)
}

// Populate computes the entries for colors that aren't covered yet. Each
// color is compared to every palette entry, and the closest wins, the lowest
// index on ties.
func (t *LookupTable[T]) Populate(colors []Color) {
	todo := make([]Color, 0, len(colors))
	for _, c := range colors {
		if !t.Covers(c) {
			todo = append(todo, c)
		}
	}

	// Work out indices in parallel, then store them serially since covered
	// bits share words
	found := make([]T, len(todo))
	parallel(len(todo), workersFor(len(todo), t.SingleThreaded), func(_ int, s span) {
		for i := s.start; i < s.end; i++ {
			found[i] = T(t.palette.Nearest(todo[i], t.metric))
		}
	})
	for i, c := range todo {
		t.set(c, found[i])
	}
}

// uncovered returns the unique colors of the buffer that aren't covered.
func (t *LookupTable[T]) uncovered(pixels []byte, n int) []Color {
	workers := workersFor(n, t.SingleThreaded)
	shards := make([]map[Color]struct{}, workers)
	for i := range shards {
		shards[i] = make(map[Color]struct{})
	}
	parallel(n, workers, func(w int, s span) {
		seen := shards[w]
		for i := s.start; i < s.end; i++ {
			if c := pixelAt(pixels, i); !t.Covers(c) {
				seen[c] = struct{}{}
			}
		}
	})

	for _, shard := range shards[1:] {
		for c := range shard {
			shards[0][c] = struct{}{}
		}
	}
	colors := make([]Color, 0, len(shards[0]))
	for c := range shards[0] {
		colors = append(colors, c)
	}
	return colors
}

// prepare validates a mapping call and, in Safe mode, fills in the entries
// for the buffer's colors. It returns the pixel count.
func (t *LookupTable[T]) prepare(pixels []byte, mode Mode) (int, error) {
	n, err := checkPixels(pixels)
	if err != nil {
		return 0, err
	}
	if len(t.palette) == 0 {
		return 0, fmt.Errorf("%w: no palette to map to", ErrInvalidConfig)
	}
	switch mode {
	case Safe:
		t.Populate(t.uncovered(pixels, n))
	case Unsafe:
	default:
		return 0, fmt.Errorf("%w: unknown mode %v", ErrInvalidConfig, mode)
	}
	return n, nil
}

// Map writes the palette index of every pixel of an RGB buffer to dst, which
// must hold at least len(pixels)/3 indices.
func (t *LookupTable[T]) Map(pixels []byte, dst []T, mode Mode) error {
	n, err := checkPixels(pixels)
	if err != nil {
		return err
	}
	if len(dst) < n {
		return fmt.Errorf("%w: %d indices needed, buffer holds %d", ErrBufferTooSmall, n, len(dst))
	}
	if _, err := t.prepare(pixels, mode); err != nil {
		return err
	}
	parallel(n, workersFor(n, t.SingleThreaded), func(_ int, s span) {
		for i := s.start; i < s.end; i++ {
			dst[i] = t.entries[pixelAt(pixels, i).key()]
		}
	})
	return nil
}

// MapPixels maps an RGB buffer through the table. If dst is nil a new slice is
// allocated, otherwise dst must be long enough and its first len(pixels)/3
// elements are returned.
func MapPixels[T Index](pixels []byte, t *LookupTable[T], mode Mode, dst []T) ([]T, error) {
	if dst == nil {
		dst = make([]T, len(pixels)/3)
	}
	if err := t.Map(pixels, dst, mode); err != nil {
		return nil, err
	}
	return dst[:len(pixels)/3], nil
}

// MapOver maps an RGB buffer in place. The index of pixel i is written to
// pixels[i], so the first third of the buffer ends up holding the indexed
// image. Writes never overtake reads since they run left to right. It
// returns the number of indices written.
func MapOver(t *LookupTable[uint8], pixels []byte, mode Mode) (int, error) {
	n, err := t.prepare(pixels, mode)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		pixels[i] = t.entries[pixelAt(pixels, i).key()]
	}
	return n, nil
}
