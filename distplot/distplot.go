/*
 * distplot.go, part of para2d.
 *
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

// Package distplot draws which worker owns each element of a block-cyclically
// distributed matrix.
package distplot

import (
	"fmt"

	"github.com/rmera/para2d"
	"github.com/rmera/para2d/comm"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// OwnerMap returns a rows x cols matrix where each element is the rank of the worker that owns
// the corresponding element of a matrix distributed in blocks of nb over a dims[0] x dims[1]
// grid laid out with layout.
func OwnerMap(rows, cols, nb int, dims [2]int, layout comm.Layout) (*mat.Dense, error) {
	if rows < 1 || cols < 1 || nb < 1 || dims[0] < 1 || dims[1] < 1 {
		return nil, fmt.Errorf("distplot: invalid distribution %d x %d, nb=%d, grid %v", rows, cols, nb, dims)
	}
	owners := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		pr := para2d.Owner(i, nb, dims[0])
		for j := 0; j < cols; j++ {
			pc := para2d.Owner(j, nb, dims[1])
			owners.Set(i, j, float64(layout.Rank([2]int{pr, pc}, dims)))
		}
	}
	return owners, nil
}

// OwnerMapOf is OwnerMap for the distribution P, which needs its grid context and extents.
func OwnerMapOf(P *para2d.Parallel2D) (*mat.Dense, error) {
	rows, err := P.GlobalRowSize()
	if err != nil {
		return nil, err
	}
	cols, err := P.GlobalColSize()
	if err != nil {
		return nil, err
	}
	nb, err := P.BlockSize()
	if err != nil {
		return nil, err
	}
	layout := P.Options().Layout
	if g := P.Grid(); g != nil {
		layout = g.Layout()
	}
	return OwnerMap(rows, cols, nb, [2]int{P.Dim0, P.Dim1}, layout)
}

// ownerGrid adapts a matrix to plotter.GridXYZ. Row 0 goes on top.
type ownerGrid struct {
	m *mat.Dense
}

func (g ownerGrid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g ownerGrid) Z(c, r int) float64 { return g.m.At(r, c) }

func (g ownerGrid) X(c int) float64 { return float64(c) }

func (g ownerGrid) Y(r int) float64 {
	rows, _ := g.m.Dims()
	return float64(rows - 1 - r)
}

// Plot returns a heat map of the owner matrix, with one color per worker.
func Plot(owners *mat.Dense, title string) (*plot.Plot, error) {
	if owners == nil || owners.IsEmpty() {
		return nil, fmt.Errorf("distplot: given empty owner map")
	}
	workers := int(mat.Max(owners)) + 1
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "column"
	p.Y.Label.Text = "row"
	h := plotter.NewHeatMap(ownerGrid{owners}, palette.Heat(max(workers, 2), 1))
	h.Min = 0
	h.Max = float64(max(workers-1, 1))
	p.Add(h)
	return p, nil
}

// Save draws the owner map and writes it to fname. The format is given by the
// extension (png, svg, pdf...). size is the side of the image.
func Save(owners *mat.Dense, title, fname string, size vg.Length) error {
	p, err := Plot(owners, title)
	if err != nil {
		return err
	}
	return p.Save(size, size, fname)
}
