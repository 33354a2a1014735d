/*
 * comm.go, part of para2d.
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

// Package comm defines the process-grid communicator used by para2d, and provides
// two implementations: Serial, for single-worker runs, and World, which runs
// every participant as a goroutine in the same process.
//
// A real message-passing library (MPI or otherwise) can be plugged in by implementing
// Communicator. All collective calls are blocking: every participant in the
// communicator must make the same collective calls in the same order, or the
// program will hang.
package comm

import (
	"fmt"
	"strings"
)

// Layout is the order in which ranks are laid out on a 2D grid.
type Layout int

const (
	RowMajor Layout = iota // rank = row*dim1 + col
	ColMajor               // rank = col*dim0 + row
)

func (L Layout) String() string {
	if L == ColMajor {
		return "col"
	}
	return "row"
}

// MarshalText implements encoding.TextMarshaler
func (L Layout) MarshalText() ([]byte, error) {
	return []byte(L.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. It accepts
// "row"/"r" and "col"/"c", case-insensitive.
func (L *Layout) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "row", "r", "":
		*L = RowMajor
	case "col", "c", "column":
		*L = ColMajor
	default:
		return Error{fmt.Sprintf("unknown grid layout %q", string(text)), []string{"Layout.UnmarshalText"}, false}
	}
	return nil
}

// Coords returns the grid coordinates that rank gets on a dims[0] x dims[1] grid.
func (L Layout) Coords(rank int, dims [2]int) [2]int {
	if L == ColMajor {
		return [2]int{rank % dims[0], rank / dims[0]}
	}
	return [2]int{rank / dims[1], rank % dims[1]}
}

// Rank is the inverse of Coords.
func (L Layout) Rank(coords, dims [2]int) int {
	if L == ColMajor {
		return coords[1]*dims[0] + coords[0]
	}
	return coords[0]*dims[1] + coords[1]
}

// Op is a reduction operation.
type Op int

const (
	OpSum Op = iota
	OpMax
	OpMin
)

// Grid is a 2D Cartesian grid built over a communicator. It carries the
// context handle that descriptor-based matrix routines need.
type Grid interface {
	//Ctxt returns the opaque context handle of the grid. It is the
	//same for all participants.
	Ctxt() int

	//Dims returns the number of grid rows and columns.
	Dims() [2]int

	//Coords returns the (row, col) position of the calling worker.
	Coords() [2]int

	Layout() Layout
}

// Communicator is the capability a worker needs to take part in a
// distributed computation.
type Communicator interface {
	//Rank returns the identifier of the calling worker, 0 <= Rank() < Size().
	Rank() int

	//Size returns the number of workers in the communicator.
	Size() int

	//CartCreate is a collective call that arranges the workers on
	//a dims[0] x dims[1] grid. It fails if dims[0]*dims[1] != Size().
	CartCreate(dims [2]int, layout Layout) (Grid, error)

	//AllReduceInts reduces in element-wise over all workers and
	//returns the result to each of them.
	AllReduceInts(op Op, in []int) ([]int, error)

	//AllReduceFloats is the float64 version of AllReduceInts.
	AllReduceFloats(op Op, in []float64) ([]float64, error)

	//Barrier blocks until every worker has called it.
	Barrier() error
}

// cartGrid is the Grid implementation shared by the communicators in this package.
type cartGrid struct {
	ctxt   int
	dims   [2]int
	coords [2]int
	layout Layout
}

func (G *cartGrid) Ctxt() int      { return G.ctxt }
func (G *cartGrid) Dims() [2]int   { return G.dims }
func (G *cartGrid) Coords() [2]int { return G.coords }
func (G *cartGrid) Layout() Layout { return G.layout }

// Error is the error type of the package. It fulfills the Decorate convention used
// across para2d.
type Error struct {
	message  string
	deco     []string
	mismatch bool
}

func (err Error) Error() string {
	return "comm: " + err.message
}

// Decorate adds the name of a caller to the error and returns the resulting list.
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Mismatch is true for errors caused by a grid shape that doesn't match the
// size of the communicator.
func (err Error) Mismatch() bool {
	return err.mismatch
}

func mismatchError(dims [2]int, size int, caller string) Error {
	return Error{fmt.Sprintf("grid shape mismatch: %d x %d grid over %d workers", dims[0], dims[1], size), []string{caller}, true}
}

func checkDims(dims [2]int, size int, caller string) error {
	if dims[0] < 1 || dims[1] < 1 || dims[0]*dims[1] != size {
		return mismatchError(dims, size, caller)
	}
	return nil
}

func reduceInts(op Op, dst, in []int) {
	for i, v := range in {
		switch op {
		case OpMax:
			if v > dst[i] {
				dst[i] = v
			}
		case OpMin:
			if v < dst[i] {
				dst[i] = v
			}
		default:
			dst[i] += v
		}
	}
}
