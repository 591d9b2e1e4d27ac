package squash

import (
	"errors"
	"testing"
)

func TestSortSelectTwoColors(t *testing.T) {
	// 2x2 image, three dark pixels and one light one
	pixels := pixelsOf(Color{10, 10, 10}, Color{200, 200, 200}, Color{10, 10, 10}, Color{10, 10, 10})

	p, err := BuildPalette(pixels, 2, &SortSelect{Tolerance: 10})
	if err != nil {
		t.Fatal(err)
	}
	want := Palette{{10, 10, 10}, {200, 200, 200}}
	if !samePalettes(p, want) {
		t.Fatalf("palette = %v, want %v", p, want)
	}

	table, err := NewLookupTable[uint8](p, RGB)
	if err != nil {
		t.Fatal(err)
	}
	indices, err := MapPixels(pixels, table, Safe, nil)
	if err != nil {
		t.Fatal(err)
	}
	wantIdx := []uint8{0, 1, 0, 0}
	for i := range wantIdx {
		if indices[i] != wantIdx[i] {
			t.Errorf("index %d = %d, want %d", i, indices[i], wantIdx[i])
		}
	}
}

func TestSortSelectSingleColor(t *testing.T) {
	pixels := pixelsOf(repeat(Color{12, 34, 56}, 999)...)
	p, err := (&SortSelect{Tolerance: DefaultTolerance}).Select(pixels, 256)
	if err != nil {
		t.Fatal(err)
	}
	if len(p) != 1 || p[0] != (Color{12, 34, 56}) {
		t.Fatalf("palette = %v, want the one color", p)
	}
}

func TestSortSelectExactColors(t *testing.T) {
	var colors []Color
	unique := []Color{{250, 0, 0}, {0, 250, 0}, {0, 0, 250}, {1, 1, 1}, {2, 1, 1}}
	for i, c := range unique {
		// Counts 5, 4, 3, 2, 1
		colors = append(colors, repeat(c, len(unique)-i)...)
	}

	p, err := (&SortSelect{Tolerance: 0}).Select(pixelsOf(colors...), len(unique))
	if err != nil {
		t.Fatal(err)
	}
	if !samePalettes(p, unique) {
		t.Fatalf("palette = %v, want %v", p, unique)
	}

	table, err := NewLookupTable[uint8](p, RGB)
	if err != nil {
		t.Fatal(err)
	}
	indices, err := MapPixels(pixelsOf(colors...), table, Safe, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, c := range colors {
		if p[indices[i]] != c {
			t.Fatalf("pixel %d (%v) mapped to %v", i, c, p[indices[i]])
		}
	}
}

func TestSortSelectTolerance(t *testing.T) {
	pixels := pixelsOf(clumpyColors(3, 20000)...)
	for _, tt := range []struct {
		name      string
		tolerance float32
		m         Metric
		maxColors int
	}{
		{"rgb 2%", 2, RGB, 64},
		{"rgb 5%", 5, RGB, 16},
		{"redmean 3%", 3, Redmean, 32},
		{"redmean 50%", 50, Redmean, 256},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p, err := (&SortSelect{Tolerance: tt.tolerance, Metric: tt.m}).Select(pixels, tt.maxColors)
			if err != nil {
				t.Fatal(err)
			}
			checkPaletteSize(t, p, tt.maxColors)

			limit := threshold(tt.tolerance, tt.m)
			for i := range p {
				for j := i + 1; j < len(p); j++ {
					if d := tt.m.Difference(p[i], p[j]); d <= limit {
						t.Fatalf("%v and %v differ by %v, threshold is %v", p[i], p[j], d, limit)
					}
				}
			}
		})
	}
}

func TestSortSelectFrequencyFirst(t *testing.T) {
	// The rare color is close to the common one and gets merged
	colors := append(repeat(Color{100, 100, 100}, 10), Color{101, 100, 100})
	colors = append(colors, repeat(Color{0, 0, 0}, 5)...)

	p, err := (&SortSelect{Tolerance: 1}).Select(pixelsOf(colors...), 256)
	if err != nil {
		t.Fatal(err)
	}
	want := Palette{{100, 100, 100}, {0, 0, 0}}
	if !samePalettes(p, want) {
		t.Fatalf("palette = %v, want %v", p, want)
	}
}

func TestSortSelectDeterministic(t *testing.T) {
	pixels := pixelsOf(randomColors(4, 3*chunkSize)...)
	s := &SortSelect{Tolerance: 4, Metric: Redmean}
	a, err := s.Select(pixels, 128)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		b, err := s.Select(pixels, 128)
		if err != nil {
			t.Fatal(err)
		}
		if !samePalettes(a, b) {
			t.Fatalf("run %d picked a different palette", i)
		}
	}
}

func TestSortSelectInvalid(t *testing.T) {
	pixels := pixelsOf(Color{1, 2, 3})
	tests := []struct {
		name      string
		s         *SortSelect
		pixels    []byte
		maxColors int
		want      error
	}{
		{"zero colors", &SortSelect{Tolerance: 3}, pixels, 0, ErrInvalidConfig},
		{"negative tolerance", &SortSelect{Tolerance: -1}, pixels, 8, ErrInvalidConfig},
		{"tolerance over 100", &SortSelect{Tolerance: 101}, pixels, 8, ErrInvalidConfig},
		{"malformed", &SortSelect{Tolerance: 3}, []byte{1, 2}, 8, ErrMalformedBuffer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.s.Select(tt.pixels, tt.maxColors); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := NewSortSelect(200, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewSortSelect(200) error = %v, want ErrInvalidConfig", err)
	}
	if _, err := BuildPalette(pixels, 0, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("BuildPalette with 0 colors error = %v, want ErrInvalidConfig", err)
	}
}
