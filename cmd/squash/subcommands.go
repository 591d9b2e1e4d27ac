package main

import (
	"errors"
	"fmt"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/makeworld-the-better-one/squash"
	"github.com/urfave/cli/v2"
)

const (
	unsupportedFormat string = "'%s' is an unsupported format, only 'png' or 'gif' are accepted"
)

var (
	// maxColors is the palette size, 1 to 256.
	maxColors int

	metric squash.Metric

	grayscale bool

	// Range -100,100

	saturation float64
	brightness float64
	contrast   float64

	autoOrientation imaging.DecodeOption

	inputImages []string
	outFormat   string // "png" or "gif"
	outIsDir    bool

	compLevel png.CompressionLevel

	outFileFlags int // For os.OpenFile

	width  int
	height int

	sharedPalette bool
	printPalette  bool
	verbose       bool
)

// preProcess is automatically called by the app before anything else.
// It's run in the global context.
func preProcess(c *cli.Context) error {
	runtime.GOMAXPROCS(int(c.Uint("threads")))

	var err error

	colors := c.Uint("colors")
	if colors < 1 || colors > 256 {
		return fmt.Errorf("colors must be between 1 and 256, got %d", colors)
	}
	maxColors = int(colors)

	metric, err = squash.MetricByName(c.String("metric"))
	if err != nil {
		return err
	}

	saturation, err = parsePercentArg(c.String("saturation"), false)
	if err != nil {
		return fmt.Errorf("saturation: %w", err)
	}
	grayscale = c.Bool("grayscale")
	if saturation <= -100 {
		grayscale = true
		saturation = 0
	}
	brightness, err = parsePercentArg(c.String("brightness"), false)
	if err != nil {
		return fmt.Errorf("brightness: %w", err)
	}
	contrast, err = parsePercentArg(c.String("contrast"), false)
	if err != nil {
		return fmt.Errorf("contrast: %w", err)
	}

	autoOrientation = imaging.AutoOrientation(!c.Bool("no-exif-rotation"))

	inputImages = make([]string, 0)
	for _, path := range c.StringSlice("in") {
		if strings.Contains(path, "*") {
			// Parse as glob
			paths, err := filepath.Glob(path)
			if err != nil {
				return fmt.Errorf("bad glob pattern '%s': %w", path, err)
			}
			inputImages = append(inputImages, paths...)
		} else {
			inputImages = append(inputImages, path)
		}
	}
	if len(inputImages) == 0 {
		return errors.New("no input images")
	}

	formatVal := c.String("format")
	if formatVal != "png" && formatVal != "gif" {
		return fmt.Errorf(unsupportedFormat, formatVal)
	}

	outFormat, outIsDir, err = outputFormat(c.String("out"), formatVal, c.IsSet("format"))
	if err != nil {
		return err
	}

	// Multiple input images are only valid if the output points to a directory.
	if len(inputImages) > 1 && !outIsDir {
		return errors.New("multiple input images are only allowed if the output is an existing directory")
	}

	// Set PNG compression type

	switch c.String("compression") {
	case "default":
		compLevel = png.DefaultCompression
	case "no":
		compLevel = png.NoCompression
	case "speed":
		compLevel = png.BestSpeed
	case "size":
		compLevel = png.BestCompression
	default:
		return fmt.Errorf("invalid compression type '%s'", c.String("compression"))
	}

	if c.Bool("no-overwrite") {
		outFileFlags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	} else {
		outFileFlags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	// Set here for convenience
	width = int(c.Uint("width"))
	height = int(c.Uint("height"))
	sharedPalette = c.Bool("shared-palette")
	printPalette = c.Bool("print-palette")
	verbose = c.Bool("verbose")

	return nil
}

// outputFormat works out the output format from the out flag, and whether
// the output is a directory. An explicitly set format flag always wins over
// the file extension.
func outputFormat(outVal, formatVal string, formatSet bool) (string, bool, error) {
	if outVal == "-" {
		// Outputting to stdout, so just use whatever the flag is
		return formatVal, false, nil
	}

	outFI, err := os.Stat(outVal)
	if err == nil && outFI.IsDir() {
		// Exists and is a directory
		// Just use what the flag is
		return formatVal, true, nil
	}

	// Outputting to file, that already exists
	// Or something that doesn't exist - assumed to be a file

	if formatSet {
		return formatVal, false, nil
	}
	// Format wasn't set, so ignore default value of "png"
	// Try to figure out format from output filename
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(outVal), "."))
	switch ext {
	case "png", "gif":
		return ext, false, nil
	case "":
		// No extension, use default format
		return "png", false, nil
	}
	return "", false, fmt.Errorf(unsupportedFormat, ext)
}

func sortSelect(c *cli.Context) error {
	s, err := squash.NewSortSelect(float32(c.Float64("tolerance")), metric)
	if err != nil {
		return fmt.Errorf("sort: %w", err)
	}
	return run(s, c)
}

func heuristic(c *cli.Context) error {
	s, err := squash.NewHeuristicSortSelect(
		float32(c.Float64("tolerance")),
		float32(c.Float64("step")),
		int(c.Uint("attempts")),
		metric,
	)
	if err != nil {
		return fmt.Errorf("heuristic: %w", err)
	}
	return run(s, c)
}

func kmeans(c *cli.Context) error {
	var r *rand.Rand
	if c.IsSet("seed") {
		r = rand.New(rand.NewSource(c.Int64("seed")))
	}
	s, err := squash.NewKMeans(int(c.Uint("iterations")), r)
	if err != nil {
		return fmt.Errorf("kmeans: %w", err)
	}
	return run(s, c)
}

func cluster(c *cli.Context) error {
	s, err := squash.NewClusterSelect(int(c.Uint("iterations")), int(c.Uint("thumbnail")))
	if err != nil {
		return fmt.Errorf("cluster: %w", err)
	}
	return run(s, c)
}

func medianCut(c *cli.Context) error {
	return run(squash.MedianCut{}, c)
}

// run builds a quantizer around the selector and processes every input.
func run(s squash.Selector, c *cli.Context) error {
	q, err := squash.New[uint8](squash.Config{
		MaxColors: maxColors,
		Selector:  s,
		Metric:    metric,
	})
	if err != nil {
		return err
	}
	return processImages(q, globalFlag("out", c).(string))
}
