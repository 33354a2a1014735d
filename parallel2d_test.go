/*
 * parallel2d_test.go, part of para2d.
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

package para2d

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rmera/para2d/comm"
)

var testSizes = [][2]int{{30, 35}, {49, 94}, {57, 57}}
var testBlocks = []int{1, 2, 3}

// failures collects errors from the workers of a World, so they don't need to
// return early and leave the others waiting in a collective.
type failures struct {
	mu   sync.Mutex
	errs []string
}

func (F *failures) add(format string, a ...interface{}) {
	F.mu.Lock()
	defer F.mu.Unlock()
	F.errs = append(F.errs, fmt.Sprintf(format, a...))
}

func (F *failures) report(Te *testing.T) {
	for _, e := range F.errs {
		Te.Error(e)
	}
}

func sumInts(s []int) int {
	sum := 0
	for _, v := range s {
		sum += v
	}
	return sum
}

func TestDivide2D(Te *testing.T) {
	for _, dsize := range []int{1, 2, 3, 4, 6} {
		W, err := comm.NewWorld(dsize)
		if err != nil {
			Te.Fatal(err)
		}
		F := new(failures)
		err = W.Run(func(c comm.Communicator) error {
			rank := c.Rank()
			var log bytes.Buffer
			for _, size := range testSizes {
				gr, gc := size[0], size[1]
				for _, nb := range testBlocks {
					P := new(Parallel2D)
					if err := P.SetBlockSize(nb); err != nil {
						return err
					}
					if b, _ := P.BlockSize(); b != nb {
						F.add("rank %d: block size %d, expected %d", rank, b, nb)
					}
					for _, mode := range []Mode{ModeWide, ModeTall} {
						//1. grid dimensions
						if err := P.SetProcDim(dsize, mode); err != nil {
							return err
						}
						if P.Dim0*P.Dim1 != dsize {
							F.add("rank %d: %d x %d grid for %d workers", rank, P.Dim0, P.Dim1, dsize)
						}
						if mode == ModeTall && P.Dim1 > P.Dim0 || mode == ModeWide && P.Dim0 > P.Dim1 {
							F.add("rank %d: %d x %d grid in %s mode", rank, P.Dim0, P.Dim1, mode)
						}
						//2. grid context
						if err := P.CreateGridContext(c); err != nil {
							return err
						}
						if P.Grid() == nil {
							F.add("rank %d: nil grid", rank)
						}
						//3. local sizes
						if err := P.ComputeLocalExtents(gr, gc); err != nil {
							return err
						}
						lr, _ := P.RowSize()
						lc, _ := P.ColSize()
						ls, _ := P.LocalSize()
						if lr*lc != ls {
							F.add("rank %d: local size %d != %d x %d", rank, ls, lr, lc)
						}
						if want := NumLocal(gr, nb, P.Dim0, P.Coord[0]); lr != want {
							F.add("rank %d: %d local rows, expected %d", rank, lr, want)
						}
						if want := NumLocal(gc, nb, P.Dim1, P.Coord[1]); lc != want {
							F.add("rank %d: %d local cols, expected %d", rank, lc, want)
						}
						//the rows are split among a column of the grid, the columns among a row.
						var cover [3]int
						if P.Coord[1] == 0 {
							cover[0] = lr
						}
						if P.Coord[0] == 0 {
							cover[1] = lc
						}
						cover[2] = ls
						total, err := c.AllReduceInts(comm.OpSum, cover[:])
						if err != nil {
							return err
						}
						if total[0] != gr || total[1] != gc || total[2] != gr*gc {
							F.add("rank %d: %dx%d nb=%d %s: sizes add up to %v", rank, gr, gc, nb, mode, total)
						}
						//4. descriptor
						if err := P.BuildDescriptor(gr, gc, lr); err != nil {
							return err
						}
						want := Desc{1, P.Grid().Ctxt(), gr, gc, nb, nb, 0, 0, lr}
						if P.Desc != want {
							F.add("rank %d: descriptor %v, expected %v", rank, P.Desc, want)
						}
						//5. global->local
						if err := P.BuildIndexMaps(gr, gc, true, &log); err != nil {
							return err
						}
						if s := sumInts(P.TraceLocRow); s != lr*(lr-1)/2-(gr-lr) {
							F.add("rank %d: row trace adds up to %d", rank, s)
						}
						if s := sumInts(P.TraceLocCol); s != lc*(lc-1)/2-(gc-lc) {
							F.add("rank %d: col trace adds up to %d", rank, s)
						}
						for i := 0; i < lr; i++ {
							for j := 0; j < lc; j++ {
								if !P.InThisProcessor(P.RowSet[i], P.ColSet[j]) {
									F.add("rank %d: (%d, %d) should be here", rank, P.RowSet[i], P.ColSet[j])
								}
							}
						}
					}
				}
			}
			if !strings.Contains(log.String(), mapsHeader) {
				F.add("rank %d: nothing written to the log", rank)
			}
			return nil
		})
		if err != nil {
			Te.Fatal(err)
		}
		F.report(Te)
	}
}

func TestSerial(Te *testing.T) {
	for _, size := range testSizes {
		gr, gc := size[0], size[1]
		P := new(Parallel2D)
		if err := P.SetProcDim(1, ModeWide); err != nil {
			Te.Fatal(err)
		}
		if P.Dim0*P.Dim1 != 1 {
			Te.Errorf("%d x %d grid for one worker", P.Dim0, P.Dim1)
		}
		if err := P.SetSerial(gr, gc); err != nil {
			Te.Fatal(err)
		}
		if r, _ := P.RowSize(); r != gr {
			Te.Errorf("expected %d rows, got %d", gr, r)
		}
		if c, _ := P.ColSize(); c != gc {
			Te.Errorf("expected %d cols, got %d", gc, c)
		}
		if s, _ := P.LocalSize(); s != gr*gc {
			Te.Errorf("expected %d elements, got %d", gr*gc, s)
		}
		if err := P.BuildIndexMaps(gr, gc, false, nil); err != nil {
			Te.Fatal(err)
		}
		for i := 0; i < gr; i++ {
			if P.TraceLocRow[i] != i {
				Te.Errorf("row trace %d = %d", i, P.TraceLocRow[i])
			}
		}
		for i := 0; i < gc; i++ {
			if P.TraceLocCol[i] != i {
				Te.Errorf("col trace %d = %d", i, P.TraceLocCol[i])
			}
		}
		//the distributed maps are the same thing with one worker.
		if err := P.BuildIndexMaps(gr, gc, true, nil); err != nil {
			Te.Fatal(err)
		}
		for i := 0; i < gr; i++ {
			if P.TraceLocRow[i] != i || P.Global2LocalRow(i) != i || P.Local2GlobalRow(i) != i {
				Te.Errorf("row %d is not mapped to itself", i)
			}
		}
		if err := P.BuildDescriptor(gr, gc, gr); err != nil {
			Te.Fatal(err)
		}
		if P.Desc.Ctxt() != -1 {
			Te.Errorf("serial descriptor should have no context, got %d", P.Desc.Ctxt())
		}
	}
}

func TestSerialNeedsOneWorker(Te *testing.T) {
	P := new(Parallel2D)
	if err := P.SetProcDim(4, ModeWide); err != nil {
		Te.Fatal(err)
	}
	if err := P.SetSerial(10, 10); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("expected a configuration error, got %v", err)
	}
}

// The 30 x 35 matrix, blocks of 2, over 3 workers.
func TestThreeWorkers(Te *testing.T) {
	const gr, gc, nb = 30, 35, 2
	W, err := comm.NewWorld(3)
	if err != nil {
		Te.Fatal(err)
	}
	F := new(failures)
	owned := make([][]bool, gr)
	for i := range owned {
		owned[i] = make([]bool, gc)
	}
	var mu sync.Mutex
	err = W.Run(func(c comm.Communicator) error {
		opts := DefaultOptions()
		opts.BlockSize = nb
		P, err := Init(gr, gc, c, opts)
		if err != nil {
			return err
		}
		if P.Dim0 != 1 || P.Dim1 != 3 {
			F.add("rank %d: expected a 1 x 3 grid, got %d x %d", c.Rank(), P.Dim0, P.Dim1)
		}
		lr, _ := P.RowSize()
		lc, _ := P.ColSize()
		sums, err := c.AllReduceInts(comm.OpSum, []int{lr, lc})
		if err != nil {
			return err
		}
		//one grid row: every worker has all the rows.
		if lr != gr || sums[1] != gc {
			F.add("rank %d: %d local rows, columns add up to %d", c.Rank(), lr, sums[1])
		}
		count := 0
		mu.Lock()
		defer mu.Unlock()
		for i := 0; i < gr; i++ {
			for j := 0; j < gc; j++ {
				if P.InThisProcessor(i, j) {
					count++
					if owned[i][j] {
						F.add("(%d, %d) owned twice", i, j)
					}
					owned[i][j] = true
				}
			}
		}
		if count != lr*lc {
			F.add("rank %d: %d elements owned, expected %d", c.Rank(), count, lr*lc)
		}
		for _, i := range P.RowSet {
			for _, j := range P.ColSet {
				if !P.InThisProcessor(i, j) {
					F.add("rank %d: (%d, %d) not owned", c.Rank(), i, j)
				}
			}
		}
		return nil
	})
	if err != nil {
		Te.Fatal(err)
	}
	F.report(Te)
	for i := range owned {
		for j := range owned[i] {
			if !owned[i][j] {
				Te.Errorf("(%d, %d) is owned by nobody", i, j)
			}
		}
	}
}

func TestMutualInverse(Te *testing.T) {
	W, err := comm.NewWorld(6)
	if err != nil {
		Te.Fatal(err)
	}
	F := new(failures)
	err = W.Run(func(c comm.Communicator) error {
		for _, layout := range []comm.Layout{comm.RowMajor, comm.ColMajor} {
			opts := Options{BlockSize: 3, Mode: ModeTall, Layout: layout}
			P, err := Init(49, 94, c, opts)
			if err != nil {
				return err
			}
			if want := layout.Coords(c.Rank(), [2]int{P.Dim0, P.Dim1}); want != P.Coord {
				F.add("rank %d: coords %v, expected %v", c.Rank(), P.Coord, want)
			}
			for i, g := range P.RowSet {
				if P.TraceLocRow[g] != i || P.Global2LocalRow(g) != i || P.Local2GlobalRow(i) != g {
					F.add("rank %d: row %d <-> %d broken", c.Rank(), i, g)
				}
			}
			for i, g := range P.ColSet {
				if P.TraceLocCol[g] != i || P.Global2LocalCol(g) != i || P.Local2GlobalCol(i) != g {
					F.add("rank %d: col %d <-> %d broken", c.Rank(), i, g)
				}
			}
			for g, l := range P.TraceLocRow {
				if l < 0 && P.Global2LocalRow(g) != -1 {
					F.add("rank %d: row %d should not be here", c.Rank(), g)
				}
				if l < 0 && Owner(g, 3, P.Dim0) == P.Coord[0] {
					F.add("rank %d: row %d is ours, but has a sentinel", c.Rank(), g)
				}
			}
		}
		return nil
	})
	if err != nil {
		Te.Fatal(err)
	}
	F.report(Te)
}

func TestIdempotent(Te *testing.T) {
	W, err := comm.NewWorld(4)
	if err != nil {
		Te.Fatal(err)
	}
	F := new(failures)
	err = W.Run(func(c comm.Communicator) error {
		P, err := Init(57, 57, c, Options{BlockSize: 2})
		if err != nil {
			return err
		}
		rows := append([]int(nil), P.RowSet...)
		trace := append([]int(nil), P.TraceLocCol...)
		desc := P.Desc
		if err := P.ComputeLocalExtents(57, 57); err != nil {
			return err
		}
		if err := P.BuildIndexMaps(57, 57, true, nil); err != nil {
			return err
		}
		if err := P.BuildDescriptor(57, 57, max(1, len(rows))); err != nil {
			return err
		}
		if fmt.Sprint(rows) != fmt.Sprint(P.RowSet) || fmt.Sprint(trace) != fmt.Sprint(P.TraceLocCol) || desc != P.Desc {
			F.add("rank %d: second run differs", c.Rank())
		}
		return nil
	})
	if err != nil {
		Te.Fatal(err)
	}
	F.report(Te)
}

func TestOrder(Te *testing.T) {
	P := new(Parallel2D)
	if _, err := P.BlockSize(); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("block size of a new distribution: %v", err)
	}
	if _, err := P.RowSize(); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("row size of a new distribution: %v", err)
	}
	if err := P.CreateGridContext(comm.Serial{}); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("grid before dimensions: %v", err)
	}
	if err := P.SetSerial(3, 3); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("serial before dimensions: %v", err)
	}
	if err := P.SetProcDim(0, ModeWide); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("zero workers: %v", err)
	}
	if err := P.SetProcDim(1, ModeWide); err != nil {
		Te.Fatal(err)
	}
	if err := P.ComputeLocalExtents(3, 3); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("extents before grid: %v", err)
	}
	if err := P.BuildDescriptor(3, 3, 3); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("descriptor before extents: %v", err)
	}
	if err := P.BuildIndexMaps(3, 3, true, nil); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("maps before extents: %v", err)
	}
	if err := P.CreateGridContext(comm.Serial{}); err != nil {
		Te.Fatal(err)
	}
	//no block size yet
	if err := P.ComputeLocalExtents(3, 3); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("extents without block size: %v", err)
	}
	if err := P.SetBlockSize(0); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("zero block size: %v", err)
	}
	if err := P.SetBlockSize(2); err != nil {
		Te.Fatal(err)
	}
	if err := P.ComputeLocalExtents(0, 3); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("zero rows: %v", err)
	}
	if err := P.ComputeLocalExtents(3, 4); err != nil {
		Te.Fatal(err)
	}
	if P.InThisProcessor(0, 0) {
		Te.Error("InThisProcessor should be false before the maps are built")
	}
	if err := P.BuildDescriptor(3, 5, 3); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("descriptor for other sizes: %v", err)
	}
	if err := P.BuildDescriptor(3, 4, 2); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("short leading dimension: %v", err)
	}
	if _, err := P.Descriptor(); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("descriptor not built: %v", err)
	}
	if err := P.BuildDescriptor(3, 4, 3); err != nil {
		Te.Fatal(err)
	}
	//a new grid shape throws away everything computed for the old one.
	if err := P.SetProcDim(1, ModeTall); err != nil {
		Te.Fatal(err)
	}
	if _, err := P.Descriptor(); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("stale descriptor: %v", err)
	}
	if _, err := P.LocalSize(); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("stale local size: %v", err)
	}
}

func TestGridCreationError(Te *testing.T) {
	W, err := comm.NewWorld(3)
	if err != nil {
		Te.Fatal(err)
	}
	err = W.Run(func(c comm.Communicator) error {
		P := new(Parallel2D)
		if err := P.SetProcDim(4, ModeWide); err != nil {
			return err
		}
		return P.CreateGridContext(c)
	})
	if !errors.Is(err, ErrGridCreation) {
		Te.Errorf("expected a grid creation error, got %v", err)
	}
	if errors.Is(err, ErrConfiguration) {
		Te.Errorf("a grid creation error is not a configuration error: %v", err)
	}
	var perr *Error
	if !errors.As(err, &perr) || len(perr.Decorate("")) == 0 {
		Te.Errorf("expected a decorated *Error, got %v", err)
	}
}

func TestBadDescriptorAfterSerial(Te *testing.T) {
	P := new(Parallel2D)
	if err := P.SetProcDim(1, ModeWide); err != nil {
		Te.Fatal(err)
	}
	if err := P.SetSerial(4, 6); err != nil {
		Te.Fatal(err)
	}
	if err := P.BuildDescriptor(4, 6, -1); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("negative leading dimension: %v", err)
	}
	if err := P.BuildIndexMaps(4, 7, false, nil); !errors.Is(err, ErrConfiguration) {
		Te.Errorf("maps for the wrong size: %v", err)
	}
}
