package squash

import (
	"image/color"
	"sort"
)

// Palette is an ordered list of colors. The position of a color is the index
// written for pixels mapped to it.
type Palette []Color

// Bytes returns the palette flattened to R,G,B bytes in palette order, the
// layout used by PNG PLTE chunks and GIF color tables.
func (p Palette) Bytes() []byte {
	b := make([]byte, 0, len(p)*3)
	for _, c := range p {
		b = append(b, c.R, c.G, c.B)
	}
	return b
}

// ColorPalette converts the palette for use with the image and image/color
// packages.
func (p Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = c
	}
	return cp
}

// Index returns the index of c in the palette, or -1 if it isn't present.
// Unlike color.Palette.Index it only matches exactly.
func (p Palette) Index(c Color) int {
	for i := range p {
		if p[i] == c {
			return i
		}
	}
	return -1
}

// Nearest returns the index of the palette entry closest to c under m.
// Ties go to the lowest index. It returns -1 for an empty palette.
func (p Palette) Nearest(c Color, m Metric) int {
	i, _ := p.nearest(c, m)
	return i
}

func (p Palette) nearest(c Color, m Metric) (int, float32) {
	best := -1
	var bestDiff float32
	for i := range p {
		d := m.Difference(c, p[i])
		if best == -1 || d < bestDiff {
			best = i
			bestDiff = d
		}
	}
	return best, bestDiff
}

// weighted is a palette candidate carrying a weight used for ordering.
type weighted struct {
	c Color
	w float64
}

// sortWeighted orders candidates by weight descending, then by descending R,
// G and B, so the order doesn't depend on where the candidates came from.
func sortWeighted(ws []weighted) Palette {
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].w != ws[j].w {
			return ws[i].w > ws[j].w
		}
		return colorGreater(ws[i].c, ws[j].c)
	})
	p := make(Palette, 0, len(ws))
	for _, w := range ws {
		if p.Index(w.c) == -1 {
			p = append(p, w.c)
		}
	}
	return p
}

// colorGreater orders colors by descending R, then G, then B.
func colorGreater(a, b Color) bool {
	if a.R != b.R {
		return a.R > b.R
	}
	if a.G != b.G {
		return a.G > b.G
	}
	return a.B > b.B
}
