package main

import (
	"image"
	"image/color"

	"github.com/makeworld-the-better-one/squash"
)

// fakeQuantizer implements draw.Quantizer. It ignores the provided image
// and just returns the provided palette each time. The GIF encoder only lets
// you set the palette through a draw.Quantizer, and by the time an image is
// encoded its palette has already been picked.
type fakeQuantizer struct {
	p squash.Palette
}

func (fq *fakeQuantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	return append(p, fq.p.ColorPalette()...)
}
