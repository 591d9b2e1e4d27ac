package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Set by compiler, see Makefile
var (
	version = "v0.1.0"
	commit  = "unknown"
	builtBy = "unknown"
)

func newApp() *cli.App {
	return &cli.App{
		Name:                   "squash",
		Usage:                  "reduce images to a small palette of colors.",
		Description:            "squash picks a palette for each input image and writes it out as an indexed PNG or GIF.\n\nEach command is a different way of picking the palette.",
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:    "colors",
				Aliases: []string{"c"},
				Value:   256,
			},
			&cli.StringFlag{
				Name:    "metric",
				Aliases: []string{"m"},
				Value:   "rgb",
			},
			&cli.UintFlag{
				Name:    "threads",
				Aliases: []string{"j"},
			},
			&cli.BoolFlag{
				Name:    "grayscale",
				Aliases: []string{"g"},
			},
			&cli.StringFlag{
				Name: "saturation",
			},
			&cli.StringFlag{
				Name: "brightness",
			},
			&cli.StringFlag{
				Name: "contrast",
			},
			&cli.BoolFlag{
				Name: "no-exif-rotation",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "png",
			},
			&cli.StringFlag{
				Name:     "out",
				Aliases:  []string{"o"},
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:     "in",
				Aliases:  []string{"i"},
				Required: true,
			},
			&cli.BoolFlag{
				Name: "no-overwrite",
			},
			&cli.StringFlag{
				Name:  "compression",
				Value: "default",
			},
			&cli.UintFlag{
				Name:    "width",
				Aliases: []string{"x"},
			},
			&cli.UintFlag{
				Name:    "height",
				Aliases: []string{"y"},
			},
			&cli.BoolFlag{
				Name:  "shared-palette",
				Usage: "pick the palette from the first input and use it for all of them",
			},
			&cli.BoolFlag{
				Name:    "print-palette",
				Aliases: []string{"p"},
			},
			&cli.BoolFlag{
				Name: "verbose",
			},
			&cli.BoolFlag{
				Name:    "version",
				Aliases: []string{"v"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "sort",
				Usage: "pick the most common colors that differ by a tolerance",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:    "tolerance",
						Aliases: []string{"t"},
						Value:   3,
					},
				},
				UseShortOptionHandling: true,
				Action:                 sortSelect,
			},
			{
				Name:  "heuristic",
				Usage: "like sort, but search for the tolerance with the least error",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:    "tolerance",
						Aliases: []string{"t"},
						Value:   3,
					},
					&cli.Float64Flag{
						Name:    "step",
						Aliases: []string{"s"},
						Value:   2,
					},
					&cli.UintFlag{
						Name:    "attempts",
						Aliases: []string{"a"},
						Value:   64,
					},
				},
				UseShortOptionHandling: true,
				Action:                 heuristic,
			},
			{
				Name:  "kmeans",
				Usage: "k-means clustering with farthest point seeding",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:    "iterations",
						Aliases: []string{"n"},
						Value:   10,
					},
					&cli.Int64Flag{
						Name:    "seed",
						Aliases: []string{"s"},
					},
				},
				UseShortOptionHandling: true,
				Action:                 kmeans,
			},
			{
				Name:  "cluster",
				Usage: "k-means clustering of a thumbnail, with random seeding",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:    "iterations",
						Aliases: []string{"n"},
						Value:   500,
					},
					&cli.UintFlag{
						Name:    "thumbnail",
						Aliases: []string{"t"},
						Value:   200,
					},
				},
				UseShortOptionHandling: true,
				Action:                 cluster,
			},
			{
				Name:                   "mediancut",
				Usage:                  "median cut",
				UseShortOptionHandling: true,
				Action:                 medianCut,
			},
		},
		Before: preProcess,
		Action: func(c *cli.Context) error {
			return errors.New("no command specified")
		},
	}
}

func main() {
	app := newApp()

	// Handle version flag
	if len(os.Args) == 2 && (os.Args[1] == "-v" || os.Args[1] == "--version") {
		fmt.Println("squash", version)
		fmt.Println("Commit:", commit)
		fmt.Println("Built by:", builtBy)
		return
	}

	// Hack around issue where required flags are still required even for help
	// https://github.com/urfave/cli/issues/1247
	if len(os.Args) == 3 {
		if os.Args[1] == "h" || os.Args[1] == "help" {
			// Like: squash help kmeans
			for _, c := range app.Commands {
				if c.Name == os.Args[2] {
					cli.HelpPrinter(os.Stdout, cli.CommandHelpTemplate, c)
					return
				}
			}
			fmt.Println("no command with that name")
			os.Exit(1)
		} else if os.Args[len(os.Args)-1] == "-h" || os.Args[len(os.Args)-1] == "--help" {
			// Like: squash kmeans --help
			for _, c := range app.Commands {
				if c.Name == os.Args[1] {
					cli.HelpPrinter(os.Stdout, cli.CommandHelpTemplate, c)
					return
				}
			}
			fmt.Println("no command with that name")
			os.Exit(1)
		}
	}

	err := app.Run(os.Args)
	if err != nil {
		if len(os.Args) == 1 {
			// Just ran the command with no flags
			return
		}
		fmt.Println(err)
		os.Exit(1)
	}
}
