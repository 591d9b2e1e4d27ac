package main

import (
	"fmt"
	"image"
	"image/gif"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/makeworld-the-better-one/squash"
	"github.com/urfave/cli/v2"
	"golang.org/x/image/colornames"
)

// parsePercentArg takes a string like "0.5" or "50%" and will return a float
// like 50 or 0.5, depending on the second argument. An empty string returns 0.
//
// If `maxOne` is true, then "50%" will return 0.5. Otherwise it will return 50.
func parsePercentArg(arg string, maxOne bool) (float64, error) {
	if arg == "" {
		return 0, nil
	}
	if strings.HasSuffix(arg, "%") {
		arg = arg[:len(arg)-1]
		f64, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return 0, err
		}
		if maxOne {
			f64 /= 100.0
		}
		return f64, nil
	}
	f64, err := strconv.ParseFloat(arg, 64)
	if !maxOne {
		f64 *= 100.0
	}
	return f64, err
}

// globalFlag returns the value of flag at the top level of the command.
// For example, with the command:
//
//	squash --colors 16 -o out.png -i in.png sort -t 5
//
// "colors" is a global flag, and "t" is a flag local to the sort subcommand.
func globalFlag(flag string, c *cli.Context) interface{} {
	ancestor := c.Lineage()[len(c.Lineage())-1]
	if len(ancestor.Args().Slice()) == 0 {
		// When the global context calls this func, the last in the lineage
		// has no args for some reason. So return the second-last instead.
		return c.Lineage()[len(c.Lineage())-2].Value(flag)
	}
	return ancestor.Value(flag)
}

// colorName returns the name of the SVG color nearest to c under m.
func colorName(c squash.Color, m squash.Metric) string {
	best := ""
	var bestDiff float32
	// Names is sorted, so ties always go the same way
	for _, name := range colornames.Names {
		nc := colornames.Map[name]
		d := m.Difference(c, squash.Color{R: nc.R, G: nc.G, B: nc.B})
		if best == "" || d < bestDiff {
			best = name
			bestDiff = d
		}
	}
	return best
}

// logPalette logs every palette entry with its index, hex code and the
// nearest named color.
func logPalette(path string, p squash.Palette, m squash.Metric) {
	log.Printf("Palette for '%s' (%d colors):", path, len(p))
	for i, c := range p {
		log.Printf("%4d  %v  %s", i, c, colorName(c, m))
	}
}

// getInputImage takes an input image arg and returns an image that has
// modifications applied.
func getInputImage(arg string) (image.Image, error) {
	var img image.Image
	var err error

	if arg == "-" {
		img, err = imaging.Decode(os.Stdin, autoOrientation)
	} else {
		img, err = imaging.Open(arg, autoOrientation)
	}
	if err != nil {
		return nil, err
	}

	if width != 0 || height != 0 {
		// Box sampling is quick and fast, and better then others at downscaling
		// https://pkg.go.dev/github.com/disintegration/imaging#ResampleFilter
		// https://en.wikipedia.org/wiki/Image_scaling#Box_sampling
		img = imaging.Resize(img, width, height, imaging.Box)
	}

	if grayscale {
		img = imaging.Grayscale(img)
	}
	if saturation != 0 {
		img = imaging.AdjustSaturation(img, saturation)
	}
	if contrast != 0 {
		img = imaging.AdjustContrast(img, contrast)
	}
	if brightness != 0 {
		img = imaging.AdjustBrightness(img, brightness)
	}

	return img, nil
}

// outputPath returns where the output for inputPath goes.
func outputPath(outPath, inputPath string) string {
	if !outIsDir {
		return outPath
	}
	// Inside output directory
	// Same name as input file but potentially different extension
	return filepath.Join(
		outPath,
		strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))+"."+outFormat,
	)
}

// writeImage encodes img with the quantizer's current palette. pixels must be
// the RGB buffer of img; it's overwritten.
func writeImage(w io.Writer, q *squash.Quantizer[uint8], img image.Image, pixels []byte) error {
	if outFormat == "gif" {
		// The palette is already picked, so only let the encoder map pixels
		return gif.Encode(w, img, &gif.Options{
			NumColors: len(q.Palette()),
			Quantizer: &fakeQuantizer{q.Palette()},
			Drawer:    q,
		})
	}

	n, err := q.MapOver(pixels)
	if err != nil {
		return err
	}
	b := img.Bounds()
	pm, err := q.Paletted(image.Rect(0, 0, b.Dx(), b.Dy()), pixels[:n])
	if err != nil {
		return err
	}
	return (&png.Encoder{CompressionLevel: compLevel}).Encode(w, pm)
}

// processImages quantizes all the input images and writes them.
// It handles all image I/O.
func processImages(q *squash.Quantizer[uint8], outPath string) error {
	for i, inputPath := range inputImages {
		img, err := getInputImage(inputPath)
		if err != nil {
			return fmt.Errorf("error loading '%s': %w", inputPath, err)
		}
		pixels := squash.PixelsFromImage(img)

		if i == 0 || !sharedPalette {
			start := time.Now()
			if err := q.Recolor(pixels); err != nil {
				return fmt.Errorf("error picking palette for '%s': %w", inputPath, err)
			}
			if verbose {
				log.Printf("Picked %d colors for '%s' in %v", len(q.Palette()), inputPath, time.Since(start))
			}
			if printPalette {
				logPalette(inputPath, q.Palette(), metric)
			}
		}

		var file io.WriteCloser
		var path string

		if outPath == "-" {
			file = os.Stdout
			path = "stdout"
		} else {
			path = outputPath(outPath, inputPath)
			file, err = os.OpenFile(path, outFileFlags, 0644)
			if err != nil {
				return fmt.Errorf("'%s': %w", path, err)
			}
		}

		start := time.Now()
		err = writeImage(file, q, img, pixels)
		if err != nil {
			defer file.Close() // Keep (possibly stdout) open to write error messages then close
			return fmt.Errorf("error writing %s to '%s': %w", strings.ToUpper(outFormat), path, err)
		}
		file.Close()
		if verbose {
			log.Printf("Wrote '%s' in %v", path, time.Since(start))
		}
	}
	return nil
}
