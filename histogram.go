package squash

import "sort"

// Entry is a color and how many pixels have it.
type Entry struct {
	Color Color
	Count int
}

// Histogram lists every unique color of an image with its count, most common
// first. Ties are ordered by descending R, then G, then B, so a histogram of
// the same pixels is always identical.
type Histogram []Entry

// NewHistogram counts the colors of an RGB buffer.
func NewHistogram(pixels []byte) (Histogram, error) {
	n, err := checkPixels(pixels)
	if err != nil {
		return nil, err
	}
	return histogram(pixels, n, false), nil
}

func histogram(pixels []byte, n int, single bool) Histogram {
	// Count shards independently then merge, like a map-reduce
	workers := workersFor(n, single)
	shards := make([]map[Color]int, workers)
	for i := range shards {
		shards[i] = make(map[Color]int)
	}
	parallel(n, workers, func(w int, s span) {
		counts := shards[w]
		for i := s.start; i < s.end; i++ {
			counts[pixelAt(pixels, i)]++
		}
	})

	counts := shards[0]
	for _, shard := range shards[1:] {
		for c, k := range shard {
			counts[c] += k
		}
	}

	h := make(Histogram, 0, len(counts))
	for c, k := range counts {
		h = append(h, Entry{c, k})
	}
	sort.Slice(h, func(i, j int) bool {
		if h[i].Count != h[j].Count {
			return h[i].Count > h[j].Count
		}
		return colorGreater(h[i].Color, h[j].Color)
	})
	return h
}

// Colors returns just the colors, in histogram order.
func (h Histogram) Colors() []Color {
	cs := make([]Color, len(h))
	for i := range h {
		cs[i] = h[i].Color
	}
	return cs
}

// Pixels returns the total count, which is the pixel count of the source
// image.
func (h Histogram) Pixels() int {
	total := 0
	for i := range h {
		total += h[i].Count
	}
	return total
}

// Error returns the total quantization error of mapping every color to its
// nearest palette entry: the sum over colors of count * difference. Lower is
// better.
func (h Histogram) Error(p Palette, m Metric) float64 {
	return h.errorOf(p, m, false)
}

func (h Histogram) errorOf(p Palette, m Metric, single bool) float64 {
	m = orRGB(m)
	if len(p) == 0 {
		return 0
	}

	// Summed per chunk and then in chunk order so the result doesn't depend
	// on scheduling
	partial := make([]float64, len(chunks(len(h))))
	parallel(len(h), workersFor(len(h), single), func(_ int, s span) {
		var sum float64
		for _, e := range h[s.start:s.end] {
			_, d := p.nearest(e.Color, m)
			sum += float64(e.Count) * float64(d)
		}
		partial[s.index] = sum
	})

	var total float64
	for _, sum := range partial {
		total += sum
	}
	return total
}
