package squash

import (
	"fmt"
	"math"
	"math/rand"
)

// DefaultIterations is the number of refinement rounds KMeans runs by default.
const DefaultIterations = 10

// KMeans clusters every pixel of the image into at most maxColors groups and
// uses the cluster means as the palette.
//
// Seeds are chosen with the farthest point heuristic: after the first seed,
// each next seed is the pixel farthest from its nearest seed. This stops
// early if every distinct color is already a seed. Then MaxIterations rounds
// of Lloyd's algorithm run, with no convergence check. Distances are
// Euclidean in RGB space.
//
// It works on all pixels, not unique colors, so it's much slower than
// SortSelect: O(pixels * maxColors * MaxIterations).
type KMeans struct {
	// MaxIterations is the number of refinement rounds, at least 1.
	MaxIterations int

	// Rand picks the first seed. If nil the first pixel is used, which makes
	// the result fully deterministic.
	Rand *rand.Rand
}

// NewKMeans returns a validated KMeans.
func NewKMeans(iterations int, r *rand.Rand) (*KMeans, error) {
	k := &KMeans{MaxIterations: iterations, Rand: r}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

// Validate checks the iteration count.
func (k *KMeans) Validate() error {
	if k.MaxIterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", ErrInvalidConfig, k.MaxIterations)
	}
	return nil
}

// vec is a point in RGB space.
type vec [3]float64

func toVec(c Color) vec {
	return vec{float64(c.R), float64(c.G), float64(c.B)}
}

func distSq(a, b vec) float64 {
	d0, d1, d2 := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return d0*d0 + d1*d1 + d2*d2
}

// roundChannel rounds half away from zero and clamps to a byte.
func roundChannel(f float64) uint8 {
	f = math.Round(f)
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f)
}

// Select implements Selector.
func (k *KMeans) Select(pixels []byte, maxColors int) (Palette, error) {
	return k.selectPalette(pixels, maxColors, false)
}

func (k *KMeans) selectPalette(pixels []byte, maxColors int, single bool) (Palette, error) {
	n, err := checkSelect(pixels, maxColors)
	if err != nil {
		return nil, err
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	if n == 0 {
		return Palette{}, nil
	}

	samples := make([]vec, n)
	for i := range samples {
		samples[i] = toVec(pixelAt(pixels, i))
	}

	workers := workersFor(n, single)
	centroids := k.seed(samples, maxColors, workers)
	for i := 0; i < k.MaxIterations; i++ {
		centroids = refine(samples, centroids, workers)
	}

	p := make(Palette, len(centroids))
	for i, c := range centroids {
		p[i] = Color{roundChannel(c[0]), roundChannel(c[1]), roundChannel(c[2])}
	}
	return p, nil
}

// seed picks up to count starting centroids with the farthest point
// heuristic.
func (k *KMeans) seed(samples []vec, count, workers int) []vec {
	first := 0
	if k.Rand != nil {
		first = k.Rand.Intn(len(samples))
	}
	centroids := make([]vec, 0, count)
	centroids = append(centroids, samples[first])

	// nearest[i] is the squared distance from sample i to its nearest centroid
	nearest := make([]float64, len(samples))
	update := func(c vec, init bool) {
		parallel(len(samples), workers, func(_ int, s span) {
			for i := s.start; i < s.end; i++ {
				d := distSq(samples[i], c)
				if init || d < nearest[i] {
					nearest[i] = d
				}
			}
		})
	}
	update(centroids[0], true)

	for len(centroids) < count {
		far, farDist := 0, nearest[0]
		for i, d := range nearest {
			if d > farDist {
				far, farDist = i, d
			}
		}
		if farDist == 0 {
			// Every distinct sample is already a centroid
			break
		}
		centroids = append(centroids, samples[far])
		update(samples[far], false)
	}
	return centroids
}

// refine runs one round of Lloyd's algorithm: assign each sample to its
// nearest centroid, then move each centroid to the mean of its samples.
// A centroid with no samples stays where it is.
func refine(samples, centroids []vec, workers int) []vec {
	assigned := make([]int, len(samples))
	parallel(len(samples), workers, func(_ int, s span) {
		for i := s.start; i < s.end; i++ {
			best, bestDist := 0, distSq(samples[i], centroids[0])
			for j := 1; j < len(centroids); j++ {
				if d := distSq(samples[i], centroids[j]); d < bestDist {
					best, bestDist = j, d
				}
			}
			assigned[i] = best
		}
	})

	// Summing is serial so the means are the same on every run
	sums := make([]vec, len(centroids))
	counts := make([]int, len(centroids))
	for i, j := range assigned {
		sums[j][0] += samples[i][0]
		sums[j][1] += samples[i][1]
		sums[j][2] += samples[i][2]
		counts[j]++
	}

	next := make([]vec, len(centroids))
	for j := range next {
		if counts[j] == 0 {
			next[j] = centroids[j]
			continue
		}
		c := float64(counts[j])
		next[j] = vec{sums[j][0] / c, sums[j][1] / c, sums[j][2] / c}
	}
	return next
}
