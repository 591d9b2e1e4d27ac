package squash

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

// cube returns the 27 colors within ±2 of center on a grid, whose mean is
// exactly center.
func cube(center Color) []Color {
	var cs []Color
	for _, dr := range []int{-2, 0, 2} {
		for _, dg := range []int{-2, 0, 2} {
			for _, db := range []int{-2, 0, 2} {
				cs = append(cs, Color{
					uint8(int(center.R) + dr),
					uint8(int(center.G) + dg),
					uint8(int(center.B) + db),
				})
			}
		}
	}
	return cs
}

func TestKMeansTwoClusters(t *testing.T) {
	a, b := Color{40, 50, 60}, Color{200, 180, 160}
	samples := append(cube(a), cube(b)...)
	// Interleave so the clusters aren't contiguous
	r := rand.New(rand.NewSource(7))
	r.Shuffle(len(samples), func(i, j int) { samples[i], samples[j] = samples[j], samples[i] })

	p, err := (&KMeans{MaxIterations: 10}).Select(pixelsOf(samples...), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 2 {
		t.Fatalf("palette = %v, want 2 colors", p)
	}

	for _, want := range []Color{a, b} {
		got := p[p.Nearest(want, RGB)]
		for ch, d := range []float64{
			float64(got.R) - float64(want.R),
			float64(got.G) - float64(want.G),
			float64(got.B) - float64(want.B),
		} {
			if math.Abs(d) > 1 {
				t.Errorf("centroid %v is off from cluster mean %v on channel %d", got, want, ch)
			}
		}
	}
}

func TestKMeansFewerColorsThanK(t *testing.T) {
	var colors []Color
	colors = append(colors, repeat(Color{1, 2, 3}, 10)...)
	colors = append(colors, repeat(Color{100, 0, 0}, 5)...)
	colors = append(colors, repeat(Color{0, 0, 200}, 5)...)

	p, err := (&KMeans{MaxIterations: 5}).Select(pixelsOf(colors...), 8)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 3 {
		t.Fatalf("palette = %v, want the 3 distinct colors", p)
	}
	for _, c := range []Color{{1, 2, 3}, {100, 0, 0}, {0, 0, 200}} {
		if p.Index(c) == -1 {
			t.Errorf("palette %v is missing %v", p, c)
		}
	}
}

func TestKMeansSeeding(t *testing.T) {
	// The first sample is the first seed, and the farthest point is next
	pixels := pixelsOf(Color{10, 10, 10}, Color{12, 10, 10}, Color{250, 250, 250}, Color{11, 10, 10})
	k := &KMeans{MaxIterations: 1}
	samples := make([]vec, 4)
	for i := range samples {
		samples[i] = toVec(pixelAt(pixels, i))
	}
	seeds := k.seed(samples, 2, 1)
	if len(seeds) != 2 || seeds[0] != samples[0] || seeds[1] != samples[2] {
		t.Fatalf("seeds = %v, want the first and the farthest sample", seeds)
	}
}

func TestKMeansRandReproducible(t *testing.T) {
	pixels := pixelsOf(clumpyColors(8, 5000)...)
	run := func() Palette {
		k, err := NewKMeans(4, rand.New(rand.NewSource(42)))
		if err != nil {
			t.Fatal(err)
		}
		p, err := k.Select(pixels, 5)
		if err != nil {
			t.Fatal(err)
		}
		checkPaletteSize(t, p, 5)
		return p
	}
	if a, b := run(), run(); !samePalettes(a, b) {
		t.Fatalf("same seed gave %v and %v", a, b)
	}
}

func TestRoundChannel(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{0.5, 1},
		{1.49, 1},
		{2.5, 3},
		{254.5, 255},
		{255.4, 255},
		{-0.2, 0},
	}
	for _, tt := range tests {
		if got := roundChannel(tt.in); got != tt.want {
			t.Errorf("roundChannel(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestKMeansInvalid(t *testing.T) {
	if _, err := NewKMeans(0, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewKMeans(0) error = %v, want ErrInvalidConfig", err)
	}
	if _, err := (&KMeans{MaxIterations: 3}).Select([]byte{1, 2, 3}, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Select with 0 colors error = %v, want ErrInvalidConfig", err)
	}
}
