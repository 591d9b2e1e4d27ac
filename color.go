package squash

import (
	"fmt"
	"image"
	"image/color"
)

// Color is an 8-bit per channel RGB color. It implements color.Color as an
// opaque color so it can be used directly in a color.Palette.
type Color struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// String returns the color as a lowercase hex code like "#0a0b0c".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// key is the color's address in a LookupTable.
func (c Color) key() int {
	return int(c.R)<<16 | int(c.G)<<8 | int(c.B)
}

// ColorModel converts any color to a Color, dropping alpha without
// un-premultiplying. Transparency is not supported.
var ColorModel = color.ModelFunc(func(c color.Color) color.Color {
	return toColor(c)
})

func toColor(c color.Color) Color {
	if sc, ok := c.(Color); ok {
		return sc
	}
	// Non-premultiplied values are what encoders store, so use those
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{n.R, n.G, n.B}
}

// pixelAt returns the i-th color of an RGB buffer.
func pixelAt(pixels []byte, i int) Color {
	i *= 3
	return Color{pixels[i], pixels[i+1], pixels[i+2]}
}

// checkPixels returns the number of pixels in an RGB buffer, or an error if the
// buffer length isn't a multiple of 3.
func checkPixels(pixels []byte) (int, error) {
	if len(pixels)%3 != 0 {
		return 0, fmt.Errorf("%w: length %d is not a multiple of 3", ErrMalformedBuffer, len(pixels))
	}
	return len(pixels) / 3, nil
}

// PixelsFromImage flattens an image into an RGB buffer in row-major order.
// Alpha is ignored.
func PixelsFromImage(m image.Image) []byte {
	b := m.Bounds()
	pixels := make([]byte, 0, b.Dx()*b.Dy()*3)

	// Fast path for the type imaging returns
	if n, ok := m.(*image.NRGBA); ok {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := n.Pix[n.PixOffset(b.Min.X, y):n.PixOffset(b.Max.X, y)]
			for i := 0; i < len(row); i += 4 {
				pixels = append(pixels, row[i], row[i+1], row[i+2])
			}
		}
		return pixels
	}

	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := toColor(m.At(x, y))
			pixels = append(pixels, c.R, c.G, c.B)
		}
	}
	return pixels
}

// stripImage lays an RGB buffer out as a one pixel high image, for libraries
// that only accept image.Image. The buffer must be well formed.
func stripImage(pixels []byte) *image.NRGBA {
	n := len(pixels) / 3
	img := image.NewNRGBA(image.Rect(0, 0, n, 1))
	for i := 0; i < n; i++ {
		copy(img.Pix[i*4:], pixels[i*3:i*3+3])
		img.Pix[i*4+3] = 0xff
	}
	return img
}
