// juliapng renders a Julia set to a PNG file locally, without a server.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"os"
	"sort"

	julia "github.com/sb15895/juliafield"
	"github.com/sb15895/juliafield/render"
)

var presets = map[string]complex128{
	"rabbit":   julia.DouadyRabbit,
	"dendrite": julia.Dendrite,
	"sanmarco": julia.SanMarco,
	"basilica": julia.Basilica,
	"siegel":   julia.SiegelDisk,
	"airplane": julia.Airplane,
	"galaxies": julia.Galaxies,
}

var (
	preset     = flag.String("preset", "rabbit", "named Julia parameter (see -list)")
	list       = flag.Bool("list", false, "list named parameters and exit")
	width      = flag.Int("w", 1920, "image width")
	height     = flag.Int("h", 1080, "image height")
	bound      = flag.Float64("bound", julia.DefaultBound, "half-width of the viewed square")
	iterations = flag.Int("iterations", julia.DefaultMaxIterations, "iteration cap per pixel")
	workers    = flag.Int("workers", 0, "render workers (0 = all CPUs)")
	output     = flag.String("o", "julia.png", "output PNG file")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	if *list {
		names := make([]string, 0, len(presets))
		for name := range presets {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("%-10s c = %v\n", name, presets[name])
		}
		return nil
	}

	c, ok := presets[*preset]
	if !ok {
		return fmt.Errorf("unknown preset %q, try -list", *preset)
	}

	p := julia.DefaultParams(c)
	p.MaxIterations = *iterations

	log.Printf("rendering %s (c = %v) at %dx%d", *preset, c, *width, *height)
	img, err := render.ParallelImage(render.CPU{}, p, julia.DefaultRegion(*bound), *width, *height, *workers)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode PNG: %w", err)
	}

	log.Printf("saved to %q", *output)
	return nil
}
