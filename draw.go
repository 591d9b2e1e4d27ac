package squash

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Quantize implements draw.Quantizer. It picks a new palette from m and
// returns it appended to p. If p has spare capacity, the palette is limited
// to that many colors, which is how image/gif asks for a palette size.
//
// A selection error can't be returned through draw.Quantizer, so p comes back
// unchanged in that case.
func (q *Quantizer[T]) Quantize(p color.Palette, m image.Image) color.Palette {
	limit := q.maxColors
	if spare := cap(p) - len(p); spare > 0 && spare < limit {
		limit = spare
	}
	if err := q.recolor(PixelsFromImage(m), limit); err != nil {
		return p
	}
	return append(p, q.Palette().ColorPalette()...)
}

// Draw implements draw.Drawer, mapping each pixel of src to its nearest
// palette color without dithering. When dst is an *image.Paletted using this
// Quantizer's palette the indices are written directly, otherwise colors are
// set through dst.Set.
func (q *Quantizer[T]) Draw(dst draw.Image, r image.Rectangle, src image.Image, sp image.Point) {
	// Clip like draw.Draw does
	orig := r.Min
	r = r.Intersect(dst.Bounds())
	r = r.Intersect(src.Bounds().Add(orig.Sub(sp)))
	if r.Empty() || len(q.Palette()) == 0 {
		return
	}
	sp = sp.Add(r.Min.Sub(orig))

	srcRect := r.Add(sp.Sub(r.Min))
	pixels := make([]byte, 0, r.Dx()*r.Dy()*3)
	for y := srcRect.Min.Y; y < srcRect.Max.Y; y++ {
		for x := srcRect.Min.X; x < srcRect.Max.X; x++ {
			c := toColor(src.At(x, y))
			pixels = append(pixels, c.R, c.G, c.B)
		}
	}
	indices := make([]T, r.Dx()*r.Dy())
	if err := q.Map(pixels, indices); err != nil {
		// Can't happen, the buffer was built above
		panic(err)
	}

	p := q.Palette()
	pd, direct := dst.(*image.Paletted)
	direct = direct && samePalette(pd.Palette, p)
	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if direct {
				pd.Pix[pd.PixOffset(x, y)] = uint8(indices[i])
			} else {
				dst.Set(x, y, p[indices[i]])
			}
			i++
		}
	}
}

func samePalette(cp color.Palette, p Palette) bool {
	if len(cp) != len(p) || len(p) > 256 {
		return false
	}
	for i := range cp {
		if toColor(cp[i]) != p[i] {
			return false
		}
	}
	return true
}

// Paletted builds an image from the current palette and the indices produced
// by Map, for use with image/png or image/gif. The palette must have at most
// 256 colors.
func (q *Quantizer[T]) Paletted(rect image.Rectangle, indices []T) (*image.Paletted, error) {
	p := q.Palette()
	if len(p) > 256 {
		return nil, fmt.Errorf("%w: paletted images hold 256 colors, palette has %d", ErrInvalidConfig, len(p))
	}
	if len(indices) < rect.Dx()*rect.Dy() {
		return nil, fmt.Errorf("%w: %d indices for a %dx%d image", ErrBufferTooSmall, len(indices), rect.Dx(), rect.Dy())
	}

	img := image.NewPaletted(rect, p.ColorPalette())
	for i := range img.Pix {
		img.Pix[i] = uint8(indices[i])
	}
	return img, nil
}
