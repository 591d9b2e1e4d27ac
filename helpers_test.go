package squash

import (
	"math/rand"
	"testing"
)

// pixelsOf flattens colors into an RGB buffer.
func pixelsOf(colors ...Color) []byte {
	b := make([]byte, 0, len(colors)*3)
	for _, c := range colors {
		b = append(b, c.R, c.G, c.B)
	}
	return b
}

// repeat returns c n times.
func repeat(c Color, n int) []Color {
	cs := make([]Color, n)
	for i := range cs {
		cs[i] = c
	}
	return cs
}

// randomColors returns n colors from a fixed seed.
func randomColors(seed int64, n int) []Color {
	r := rand.New(rand.NewSource(seed))
	cs := make([]Color, n)
	for i := range cs {
		cs[i] = Color{uint8(r.Intn(256)), uint8(r.Intn(256)), uint8(r.Intn(256))}
	}
	return cs
}

// clumpyColors returns n colors drawn around a few centers, so there are
// repeats, like a real image.
func clumpyColors(seed int64, n int) []Color {
	r := rand.New(rand.NewSource(seed))
	centers := []Color{{20, 30, 40}, {200, 40, 40}, {60, 180, 90}, {240, 240, 230}, {90, 90, 200}}
	jitter := func(v uint8) uint8 {
		x := int(v) + r.Intn(9) - 4
		if x < 0 {
			x = 0
		}
		if x > 255 {
			x = 255
		}
		return uint8(x)
	}
	cs := make([]Color, n)
	for i := range cs {
		c := centers[r.Intn(len(centers))]
		cs[i] = Color{jitter(c.R), jitter(c.G), jitter(c.B)}
	}
	return cs
}

func checkPaletteSize(t *testing.T, p Palette, maxColors int) {
	t.Helper()
	if len(p) == 0 || len(p) > maxColors {
		t.Fatalf("palette has %d colors, want 1 to %d", len(p), maxColors)
	}
}

func samePalettes(a, b Palette) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
