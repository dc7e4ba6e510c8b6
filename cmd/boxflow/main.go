// boxflow simulates flow in a 2D box with the Jacobi algorithm and
// writes the velocity magnitude as a PNG heat map.
package main

import (
	"fmt"
	"image/png"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/sb15895/juliafield/flow"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func run() error {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s <scalefactor> <iterations>\n", os.Args[0])
		os.Exit(1)
	}
	scale, err := strconv.Atoi(os.Args[1])
	if err != nil {
		return fmt.Errorf("scalefactor: %w", err)
	}
	niter, err := strconv.Atoi(os.Args[2])
	if err != nil {
		return fmt.Errorf("iterations: %w", err)
	}

	fmt.Println("2D CFD Simulation")
	fmt.Println("=================")
	fmt.Printf("Scale factor = %d\n", scale)
	fmt.Printf("Iterations   = %d\n", niter)

	tstart := time.Now()
	box, err := flow.New(scale)
	if err != nil {
		return fmt.Errorf("flow.New: %w", err)
	}
	fmt.Printf("\nInitialisation took %.5fs\n", time.Since(tstart).Seconds())

	m, n := box.Size()
	fmt.Printf("\nGrid size = %d x %d\n", m, n)

	fmt.Println("\nStarting main Jacobi loop...")
	tstart = time.Now()
	if err := box.Jacobi(niter, 0); err != nil {
		return fmt.Errorf("jacobi: %w", err)
	}
	fmt.Println("\n...finished")
	fmt.Printf("\nCalculation took %.5fs\n", time.Since(tstart).Seconds())
	fmt.Printf("Residual = %g\n", box.Residual())

	f, err := os.Create("visual.png")
	if err != nil {
		return fmt.Errorf("create visual.png: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, box.Colourmap()); err != nil {
		return fmt.Errorf("encode visual.png: %w", err)
	}
	fmt.Println("\nVelocity colourmap written to visual.png")

	return nil
}
