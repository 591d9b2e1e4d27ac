package squash

import (
	"errors"
	"math"
	"testing"
)

func TestMetricLaws(t *testing.T) {
	colors := randomColors(1, 200)
	colors = append(colors, Color{0, 0, 0}, Color{255, 255, 255}, Color{255, 0, 0}, Color{0, 0, 255})

	for _, tt := range []struct {
		name string
		m    Metric
	}{
		{"rgb", RGB},
		{"redmean", Redmean},
	} {
		t.Run(tt.name, func(t *testing.T) {
			for i, a := range colors {
				if d := tt.m.Difference(a, a); d != 0 {
					t.Fatalf("Difference(%v, %v) = %v, want 0", a, a, d)
				}
				for _, b := range colors[i+1:] {
					ab, ba := tt.m.Difference(a, b), tt.m.Difference(b, a)
					if ab != ba {
						t.Fatalf("Difference(%v, %v) = %v but Difference(%v, %v) = %v", a, b, ab, b, a, ba)
					}
					if ab < 0 || ab > 766 {
						t.Fatalf("Difference(%v, %v) = %v, out of range", a, b, ab)
					}
				}
			}
		})
	}
}

func TestRGBDifference(t *testing.T) {
	tests := []struct {
		a, b Color
		want float32
	}{
		{Color{0, 0, 0}, Color{255, 255, 255}, 765},
		{Color{10, 20, 30}, Color{20, 10, 30}, 20},
		{Color{100, 100, 100}, Color{100, 100, 101}, 1},
	}
	for _, tt := range tests {
		if got := RGB.Difference(tt.a, tt.b); got != tt.want {
			t.Errorf("RGB.Difference(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestRedmeanDifference(t *testing.T) {
	// Black to white: every channel differs by 255 and the mean red is 127.5
	weight := 2 + 127.5/256
	want := math.Sqrt((2*weight + 4) * 255 * 255)
	got := Redmean.Difference(Color{0, 0, 0}, Color{255, 255, 255})
	if math.Abs(float64(got)-want) > 0.01 {
		t.Errorf("Redmean black to white = %v, want %v", got, want)
	}

	// Green differences weigh more than red or blue ones
	g := Redmean.Difference(Color{0, 0, 0}, Color{0, 10, 0})
	r := Redmean.Difference(Color{0, 0, 0}, Color{10, 0, 0})
	b := Redmean.Difference(Color{0, 0, 0}, Color{0, 0, 10})
	if !(g > r && g > b) {
		t.Errorf("green %v should outweigh red %v and blue %v", g, r, b)
	}
}

func TestMetricFunc(t *testing.T) {
	m := MetricFunc(func(a, b Color) float32 { return float32(absDiff(a.G, b.G)) })
	if got := m.Difference(Color{0, 5, 0}, Color{9, 2, 9}); got != 3 {
		t.Errorf("Difference = %v, want 3", got)
	}
	if got := metricRange(m); got != MaxDifference {
		t.Errorf("metricRange = %v, want %v", got, MaxDifference)
	}
}

func TestMetricByName(t *testing.T) {
	for _, name := range []string{"rgb", "RGB", "redmean", "RedMean"} {
		if _, err := MetricByName(name); err != nil {
			t.Errorf("MetricByName(%q): %v", name, err)
		}
	}
	if _, err := MetricByName("cie2000"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("MetricByName(cie2000) error = %v, want ErrInvalidConfig", err)
	}
}
