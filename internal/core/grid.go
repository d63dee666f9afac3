package core

import (
	"math"

	"firescar/pkg/core"
)

// FloatGrid stores a 2D grid of float64 cell values in row-major order. It
// implements core.Field.
type FloatGrid struct {
	W, H int
	data []float64
}

// NewFloatGrid allocates a grid with the given dimensions.
func NewFloatGrid(w, h int) *FloatGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &FloatGrid{W: w, H: h, data: make([]float64, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *FloatGrid) Cells() []float64 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *FloatGrid) Index(x, y int) int { return y*g.W + x }

// Len reports the number of nodes.
func (g *FloatGrid) Len() int { return len(g.data) }

// Value returns the value at node i.
func (g *FloatGrid) Value(i int) float64 { return g.data[i] }

// SetValue stores v at node i.
func (g *FloatGrid) SetValue(i int, v float64) { g.data[i] = v }

// Fill sets every cell to v.
func (g *FloatGrid) Fill(v float64) {
	for i := range g.data {
		g.data[i] = v
	}
}

// Stats returns the mean and maximum cell value.
func (g *FloatGrid) Stats() (mean, maxVal float64) {
	if len(g.data) == 0 {
		return 0, 0
	}
	maxVal = math.Inf(-1)
	sum := 0.0
	for _, v := range g.data {
		sum += v
		if v > maxVal {
			maxVal = v
		}
	}
	return sum / float64(len(g.data)), maxVal
}

// RasterGrid is a regular rectangular node layout with spacing DX. Node i sits
// at ((i mod W)·DX, (i div W)·DX). It implements core.Topology.
type RasterGrid struct {
	W, H int
	DX   float64
}

// NewRasterGrid returns a raster topology with the given shape and spacing.
func NewRasterGrid(w, h int, dx float64) *RasterGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	if dx <= 0 {
		dx = 1
	}
	return &RasterGrid{W: w, H: h, DX: dx}
}

// Len reports the number of nodes.
func (r *RasterGrid) Len() int { return r.W * r.H }

// Coordinates returns the position of node i.
func (r *RasterGrid) Coordinates(i int) core.Point {
	return core.Point{X: float64(i%r.W) * r.DX, Y: float64(i/r.W) * r.DX}
}

// DistancesTo returns the Euclidean distance from every node to p.
func (r *RasterGrid) DistancesTo(p core.Point) []float64 {
	out := make([]float64, r.W*r.H)
	for y := 0; y < r.H; y++ {
		dy := float64(y)*r.DX - p.Y
		for x := 0; x < r.W; x++ {
			dx := float64(x)*r.DX - p.X
			out[y*r.W+x] = math.Hypot(dx, dy)
		}
	}
	return out
}
