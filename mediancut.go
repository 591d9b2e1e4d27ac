package squash

import (
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

// MedianCut splits the image's color space into boxes holding equal pixel
// counts, using go-quantize, and takes the most common color of each box.
// Entries are ordered by how often they appear in the image, most common
// first.
//
// go-quantize walks colors in map order, so boxes may split differently
// between runs.
type MedianCut struct{}

// Select implements Selector.
func (mc MedianCut) Select(pixels []byte, maxColors int) (Palette, error) {
	return mc.selectPalette(pixels, maxColors, false)
}

func (MedianCut) selectPalette(pixels []byte, maxColors int, single bool) (Palette, error) {
	n, err := checkSelect(pixels, maxColors)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return Palette{}, nil
	}

	h := histogram(pixels, n, single)
	if len(h) <= maxColors {
		return selectSorted(h, maxColors, -1, RGB), nil
	}

	q := quantize.MedianCutQuantizer{Aggregation: quantize.Mode}
	cut := q.Quantize(make(color.Palette, 0, maxColors), stripImage(pixels))

	counts := make(map[Color]int, len(h))
	for _, e := range h {
		counts[e.Color] = e.Count
	}
	ws := make([]weighted, 0, len(cut))
	for _, col := range cut {
		c := toColor(col)
		ws = append(ws, weighted{c, float64(counts[c])})
	}
	p := sortWeighted(ws)
	if len(p) > maxColors {
		p = p[:maxColors]
	}
	return p, nil
}
