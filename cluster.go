package squash

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/mccutchen/palettor"
)

const (
	// DefaultClusterIterations is the iteration cap ClusterSelect passes to
	// palettor by default.
	DefaultClusterIterations = 500

	// DefaultThumbnail is the default side length of the square ClusterSelect
	// samples down to.
	DefaultThumbnail = 200
)

// ClusterSelect finds the palette with palettor's k-means clustering, which
// seeds randomly and stops when clusters settle. The result is ordered by
// cluster weight, largest first.
//
// Images with more than Thumbnail*Thumbnail pixels are sampled down to that
// many first, to keep clustering fast. Because of the random seeding the
// palette may differ between runs; use KMeans for repeatable results.
type ClusterSelect struct {
	// MaxIterations caps the clustering rounds, at least 1.
	MaxIterations int

	// Thumbnail bounds the number of pixels clustered to Thumbnail squared.
	// 0 clusters every pixel.
	Thumbnail int
}

// NewClusterSelect returns a validated ClusterSelect.
func NewClusterSelect(iterations, thumbnail int) (*ClusterSelect, error) {
	c := &ClusterSelect{MaxIterations: iterations, Thumbnail: thumbnail}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the iteration count and thumbnail size.
func (c *ClusterSelect) Validate() error {
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1, got %d", ErrInvalidConfig, c.MaxIterations)
	}
	if c.Thumbnail < 0 {
		return fmt.Errorf("%w: thumbnail size can't be negative, got %d", ErrInvalidConfig, c.Thumbnail)
	}
	return nil
}

// Select implements Selector.
func (c *ClusterSelect) Select(pixels []byte, maxColors int) (Palette, error) {
	return c.selectPalette(pixels, maxColors, false)
}

func (c *ClusterSelect) selectPalette(pixels []byte, maxColors int, single bool) (Palette, error) {
	n, err := checkSelect(pixels, maxColors)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if n == 0 {
		return Palette{}, nil
	}

	var img image.Image = stripImage(pixels)
	if limit := c.Thumbnail * c.Thumbnail; limit > 0 && n > limit {
		// Nearest neighbour keeps real image colors, and samples evenly
		img = imaging.Resize(img, limit, 1, imaging.NearestNeighbor)
		pixels = PixelsFromImage(img)
		n = len(pixels) / 3
	}

	// palettor can't make more clusters than there are colors
	h := histogram(pixels, n, single)
	k := maxColors
	if len(h) < k {
		k = len(h)
	}
	if k == len(h) {
		// Nothing to cluster, every color gets its own entry
		return selectSorted(h, k, -1, RGB), nil
	}

	extracted, err := palettor.Extract(k, c.MaxIterations, img)
	if err != nil {
		return nil, fmt.Errorf("error extracting palette: %w", err)
	}

	ws := make([]weighted, 0, k)
	for _, col := range extracted.Colors() {
		ws = append(ws, weighted{toColor(col), extracted.Weight(col)})
	}
	return sortWeighted(ws), nil
}
