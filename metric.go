package squash

import (
	"fmt"
	"math"
	"strings"
)

// MaxDifference is the largest value returned by RGB, and roughly the largest
// returned by Redmean. Tolerances are percentages of it unless the metric
// reports its own range.
const MaxDifference = 765

// Metric scores how different two colors look. Implementations must be
// deterministic and symmetric, and return 0 for identical colors.
//
// Metrics are called for every unique color against every palette entry, so
// they should be cheap.
type Metric interface {
	Difference(a, b Color) float32
}

// Ranger can be implemented by a Metric whose values don't fall roughly
// within [0, MaxDifference]. Tolerance percentages are taken of Range.
type Ranger interface {
	Range() float32
}

// MetricFunc adapts a plain function to a Metric. Its range is assumed to be
// MaxDifference.
type MetricFunc func(a, b Color) float32

// Difference implements Metric.
func (f MetricFunc) Difference(a, b Color) float32 {
	return f(a, b)
}

var (
	// RGB sums the absolute channel differences:
	// |a.R - b.R| + |a.G - b.G| + |a.B - b.B|. Range [0, 765].
	RGB Metric = rgbMetric{}

	// Redmean weighs the squared channel differences by the mean red value,
	// which tracks human perception better than RGB for little extra cost.
	// See https://en.wikipedia.org/wiki/Color_difference#sRGB
	Redmean Metric = redmeanMetric{}
)

type rgbMetric struct{}

func (rgbMetric) Difference(a, b Color) float32 {
	return absDiff(a.R, b.R) + absDiff(a.G, b.G) + absDiff(a.B, b.B)
}

func (rgbMetric) Range() float32 { return MaxDifference }

func (rgbMetric) String() string { return "rgb" }

func absDiff(a, b uint8) float32 {
	if a > b {
		return float32(a - b)
	}
	return float32(b - a)
}

type redmeanMetric struct{}

func (redmeanMetric) Difference(a, b Color) float32 {
	dr := float32(a.R) - float32(b.R)
	dg := float32(a.G) - float32(b.G)
	db := float32(a.B) - float32(b.B)
	rMean := 0.5 * (float32(a.R) + float32(b.R))

	red := (2 + rMean/256) * dr * dr
	green := 4 * dg * dg
	blue := (2 + (255-rMean)/256) * db * db

	return float32(math.Sqrt(float64(red + green + blue)))
}

func (redmeanMetric) Range() float32 { return MaxDifference }

func (redmeanMetric) String() string { return "redmean" }

// metricRange returns the value tolerance percentages are taken of.
func metricRange(m Metric) float32 {
	if r, ok := m.(Ranger); ok {
		return r.Range()
	}
	return MaxDifference
}

// orRGB returns m, or RGB if m is nil.
func orRGB(m Metric) Metric {
	if m == nil {
		return RGB
	}
	return m
}

// MetricNames lists the names accepted by MetricByName.
var MetricNames = []string{"rgb", "redmean"}

// MetricByName returns one of the built-in metrics by name, case insensitively.
func MetricByName(name string) (Metric, error) {
	switch strings.ToLower(name) {
	case "rgb":
		return RGB, nil
	case "redmean":
		return Redmean, nil
	}
	return nil, fmt.Errorf("%w: unknown metric '%s', valid metrics are %s",
		ErrInvalidConfig, name, strings.Join(MetricNames, ", "))
}
