/*
 * parallel2d.go, part of para2d.
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
	"fmt"
	"io"

	"github.com/rmera/para2d/comm"
)

type state int

const (
	unconfigured state = iota
	dimsSet
	gridCreated
	extentsComputed
)

// Parallel2D is the block-cyclic distribution of one global matrix, as seen by one worker.
// The zero value is usable, but a block size must be set before the local extents are computed.
type Parallel2D struct {
	//Dim0 and Dim1 are the number of rows and columns of the worker grid.
	Dim0, Dim1 int

	//Coord is the (row, col) position of this worker in the grid.
	Coord [2]int

	//RowSet[i] is the global row of the local row i. ColSet is the same for columns.
	RowSet, ColSet []int

	//TraceLocRow[g] is the local row of the global row g, or -1 if
	//g is not in this worker. TraceLocCol is the same for columns.
	TraceLocRow, TraceLocCol []int

	Desc Desc

	opts  Options
	comm  comm.Communicator
	grid  comm.Grid
	state state

	serial     bool
	nrow, ncol int //local sizes
	grow, gcol int //global sizes the local sizes were computed for
	hasDesc    bool
	hasMaps    bool
}

// New returns a Parallel2D with the given options.
func New(opts Options) (*Parallel2D, error) {
	if err := opts.Validate(); err != nil {
		return nil, errDecorate(err, "New")
	}
	return &Parallel2D{opts: opts}, nil
}

// Init builds a ready-to-use distribution of a gr x gc matrix over the workers
// of c. It runs SetProcDim, CreateGridContext, ComputeLocalExtents, BuildDescriptor
// (with the local row count, or 1 if there are none, as leading dimension)
// and BuildIndexMaps. It is a collective call.
func Init(gr, gc int, c comm.Communicator, opts Options) (*Parallel2D, error) {
	if c == nil {
		return nil, configError("Init", "nil communicator")
	}
	P, err := New(opts)
	if err != nil {
		return nil, errDecorate(err, "Init")
	}
	steps := []func() error{
		func() error { return P.SetProcDim(c.Size(), opts.Mode) },
		func() error { return P.CreateGridContext(c) },
		func() error { return P.ComputeLocalExtents(gr, gc) },
		func() error { return P.BuildDescriptor(gr, gc, max(1, P.nrow)) },
		func() error { return P.BuildIndexMaps(gr, gc, true, nil) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, errDecorate(err, "Init")
		}
	}
	return P, nil
}

func (P *Parallel2D) logf(format string, a ...interface{}) {
	if P.opts.Logger != nil {
		P.opts.Logger.Printf(format, a...)
	}
}

func (P *Parallel2D) rank() int {
	if P.comm == nil {
		return 0
	}
	return P.comm.Rank()
}

// SetBlockSize sets the size of the blocks. It invalidates anything
// computed after the grid dimensions.
func (P *Parallel2D) SetBlockSize(nb int) error {
	if nb < 1 {
		return configError("SetBlockSize", "block size must be positive, got %d", nb)
	}
	P.opts.BlockSize = nb
	if P.state > gridCreated {
		P.state = gridCreated
		if P.serial {
			P.state = dimsSet
		}
	}
	P.resetExtents()
	return nil
}

// BlockSize returns the block size.
func (P *Parallel2D) BlockSize() (int, error) {
	if P.opts.BlockSize < 1 {
		return 0, configError("BlockSize", "block size not set")
	}
	return P.opts.BlockSize, nil
}

// Options returns a copy of the options of the distribution.
func (P *Parallel2D) Options() Options { return P.opts }

// SetProcDim sets the shape of the grid for total workers. The grid is the most
// square one possible, with Dim0 <= Dim1 for ModeWide and Dim1 <= Dim0 for ModeTall.
// It discards any grid, extents, descriptor and maps set before.
func (P *Parallel2D) SetProcDim(total int, mode Mode) error {
	if total < 1 {
		return configError("SetProcDim", "the number of workers must be positive, got %d", total)
	}
	if mode != ModeWide && mode != ModeTall {
		return configError("SetProcDim", "invalid mode %d", int(mode))
	}
	P.opts.Mode = mode
	P.Dim0, P.Dim1 = FactorGrid(total, mode)
	P.Coord = [2]int{0, 0}
	P.comm = nil
	P.grid = nil
	P.serial = false
	P.resetExtents()
	P.state = dimsSet
	P.logf("para2d: %d workers on a %d x %d grid", total, P.Dim0, P.Dim1)
	return nil
}

// CreateGridContext arranges the workers of c on the grid set by SetProcDim and records the
// position of this worker and the context handle of the grid. It is a collective call:
// all the workers in c must call it. The size of c must be Dim0*Dim1.
func (P *Parallel2D) CreateGridContext(c comm.Communicator) error {
	if P.state < dimsSet {
		return configError("CreateGridContext", "grid dimensions not set")
	}
	if c == nil {
		return configError("CreateGridContext", "nil communicator")
	}
	//Checked before the collective, so all workers fail together.
	if c.Size() != P.Dim0*P.Dim1 {
		return &Error{fmt.Sprintf("communicator has %d workers, the grid %d", c.Size(), P.Dim0*P.Dim1), ErrGridCreation, []string{"CreateGridContext"}}
	}
	grid, err := c.CartCreate([2]int{P.Dim0, P.Dim1}, P.opts.Layout)
	if err != nil {
		return gridError(err, "CreateGridContext")
	}
	P.comm = c
	P.grid = grid
	P.Coord = grid.Coords()
	P.serial = false
	P.resetExtents()
	P.state = gridCreated
	P.logf("para2d: rank %d at %v, context %d", c.Rank(), P.Coord, grid.Ctxt())
	return nil
}

// Grid returns the grid created by CreateGridContext, or nil.
func (P *Parallel2D) Grid() comm.Grid { return P.grid }

// ComputeLocalExtents computes the number of rows and columns of a gr x gc matrix that
// belong to this worker, and the local->global maps RowSet and ColSet.
// It requires CreateGridContext.
func (P *Parallel2D) ComputeLocalExtents(gr, gc int) error {
	if P.state < gridCreated || P.grid == nil {
		return configError("ComputeLocalExtents", "grid context not created")
	}
	if gr < 1 || gc < 1 {
		return configError("ComputeLocalExtents", "global sizes must be positive, got %d x %d", gr, gc)
	}
	nb, err := P.BlockSize()
	if err != nil {
		return errDecorate(err, "ComputeLocalExtents")
	}
	P.resetExtents()
	P.grow, P.gcol = gr, gc
	P.nrow = NumLocal(gr, nb, P.Dim0, P.Coord[0])
	P.ncol = NumLocal(gc, nb, P.Dim1, P.Coord[1])
	P.RowSet = localToGlobal(P.nrow, nb, P.Dim0, P.Coord[0])
	P.ColSet = localToGlobal(P.ncol, nb, P.Dim1, P.Coord[1])
	P.state = extentsComputed
	P.logf("para2d: rank %d holds %d x %d of %d x %d", P.rank(), P.nrow, P.ncol, gr, gc)
	return nil
}

// SetSerial sets the local sizes equal to the global ones, for runs with one worker.
// It requires SetProcDim with a 1x1 grid.
func (P *Parallel2D) SetSerial(gr, gc int) error {
	if P.state < dimsSet {
		return configError("SetSerial", "grid dimensions not set")
	}
	if P.Dim0*P.Dim1 != 1 {
		return configError("SetSerial", "serial mode needs a 1 x 1 grid, have %d x %d", P.Dim0, P.Dim1)
	}
	if gr < 1 || gc < 1 {
		return configError("SetSerial", "global sizes must be positive, got %d x %d", gr, gc)
	}
	P.resetExtents()
	P.serial = true
	P.Coord = [2]int{0, 0}
	P.grow, P.gcol = gr, gc
	P.nrow, P.ncol = gr, gc
	P.RowSet = identity(gr)
	P.ColSet = identity(gc)
	P.state = extentsComputed
	return nil
}

// Serial returns true if the extents were set with SetSerial.
func (P *Parallel2D) Serial() bool { return P.serial }

// BuildDescriptor fills Desc for the gr x gc matrix whose extents were computed, with lld as
// leading dimension of the local array. lld can't be smaller than the number of local rows.
// Without a grid (serial mode) the context handle is -1.
func (P *Parallel2D) BuildDescriptor(gr, gc, lld int) error {
	if P.state < extentsComputed {
		return configError("BuildDescriptor", "local extents not computed")
	}
	if gr != P.grow || gc != P.gcol {
		return configError("BuildDescriptor", "extents were computed for a %d x %d matrix, not %d x %d", P.grow, P.gcol, gr, gc)
	}
	if lld < 0 || (P.nrow > 0 && lld < P.nrow) {
		return configError("BuildDescriptor", "leading dimension %d too small for %d local rows", lld, P.nrow)
	}
	ctxt := -1
	if P.grid != nil {
		ctxt = P.grid.Ctxt()
	}
	nb := P.opts.BlockSize
	P.Desc = Desc{DenseDType, ctxt, gr, gc, nb, nb, 0, 0, lld}
	P.hasDesc = true
	return nil
}

// Descriptor returns Desc, or an error if it hasn't been built.
func (P *Parallel2D) Descriptor() (Desc, error) {
	if !P.hasDesc {
		return Desc{}, configError("Descriptor", "descriptor not built")
	}
	return P.Desc, nil
}

// BuildIndexMaps builds the global->local maps TraceLocRow and TraceLocCol of the gr x gc
// matrix whose extents were computed. If div2d is true, they are the inverse of RowSet and ColSet,
// with -1 for the indexes this worker doesn't hold. If div2d is false, the matrix is taken as not
// distributed and the maps are the identity, which requires the local sizes to be the global ones.
// If logw is not nil, the maps are written to it, and if the options have a DumpFile, they are
// saved there as well.
func (P *Parallel2D) BuildIndexMaps(gr, gc int, div2d bool, logw io.Writer) error {
	if P.state < extentsComputed {
		return configError("BuildIndexMaps", "local extents not computed")
	}
	if gr != P.grow || gc != P.gcol {
		return configError("BuildIndexMaps", "extents were computed for a %d x %d matrix, not %d x %d", P.grow, P.gcol, gr, gc)
	}
	if div2d {
		P.TraceLocRow = globalToLocal(P.RowSet, gr)
		P.TraceLocCol = globalToLocal(P.ColSet, gc)
	} else {
		if P.nrow != gr || P.ncol != gc {
			return configError("BuildIndexMaps", "undistributed maps requested, but only %d x %d of %d x %d are local", P.nrow, P.ncol, gr, gc)
		}
		P.TraceLocRow = identity(gr)
		P.TraceLocCol = identity(gc)
	}
	P.hasMaps = true
	if logw != nil {
		if _, err := P.Maps().WriteTo(logw); err != nil {
			return configError("BuildIndexMaps", "can't write the maps to the log: %s", err)
		}
	}
	if P.opts.DumpFile != "" {
		if err := P.SaveMaps(P.opts.dumpName(P.rank())); err != nil {
			return errDecorate(err, "BuildIndexMaps")
		}
	}
	return nil
}

// InThisProcessor returns true if the element (gr, gc) of the global matrix is held by this
// worker. It returns false if the index maps have not been built or the indexes are out of range.
func (P *Parallel2D) InThisProcessor(gr, gc int) bool {
	if !P.hasMaps || gr < 0 || gc < 0 || gr >= len(P.TraceLocRow) || gc >= len(P.TraceLocCol) {
		return false
	}
	return P.TraceLocRow[gr] >= 0 && P.TraceLocCol[gc] >= 0
}

// RowSize returns the number of local rows.
func (P *Parallel2D) RowSize() (int, error) {
	if P.state < extentsComputed {
		return 0, configError("RowSize", "local extents not computed")
	}
	return P.nrow, nil
}

// ColSize returns the number of local columns.
func (P *Parallel2D) ColSize() (int, error) {
	if P.state < extentsComputed {
		return 0, configError("ColSize", "local extents not computed")
	}
	return P.ncol, nil
}

// LocalSize returns the number of local elements.
func (P *Parallel2D) LocalSize() (int, error) {
	if P.state < extentsComputed {
		return 0, configError("LocalSize", "local extents not computed")
	}
	return P.nrow * P.ncol, nil
}

func (P *Parallel2D) GlobalRowSize() (int, error) {
	if P.state < extentsComputed {
		return 0, configError("GlobalRowSize", "local extents not computed")
	}
	return P.grow, nil
}

func (P *Parallel2D) GlobalColSize() (int, error) {
	if P.state < extentsComputed {
		return 0, configError("GlobalColSize", "local extents not computed")
	}
	return P.gcol, nil
}

// Global2LocalRow returns the local index of the global row g, or -1 if
// it is not held here or the extents are not computed.
func (P *Parallel2D) Global2LocalRow(g int) int {
	return P.global2local(g, P.grow, P.Dim0, P.Coord[0])
}

// Global2LocalCol is the column version of Global2LocalRow.
func (P *Parallel2D) Global2LocalCol(g int) int {
	return P.global2local(g, P.gcol, P.Dim1, P.Coord[1])
}

func (P *Parallel2D) global2local(g, size, np, p int) int {
	if P.state < extentsComputed || g < 0 || g >= size {
		return -1
	}
	if P.serial {
		return g
	}
	nb := P.opts.BlockSize
	if Owner(g, nb, np) != p {
		return -1
	}
	return Global2Local(g, nb, np)
}

// Local2GlobalRow returns the global index of the local row l, or -1
// if l is out of range.
func (P *Parallel2D) Local2GlobalRow(l int) int {
	if P.state < extentsComputed || l < 0 || l >= len(P.RowSet) {
		return -1
	}
	return P.RowSet[l]
}

// Local2GlobalCol is the column version of Local2GlobalRow.
func (P *Parallel2D) Local2GlobalCol(l int) int {
	if P.state < extentsComputed || l < 0 || l >= len(P.ColSet) {
		return -1
	}
	return P.ColSet[l]
}

func (P *Parallel2D) resetExtents() {
	P.nrow, P.ncol = 0, 0
	P.grow, P.gcol = 0, 0
	P.RowSet, P.ColSet = nil, nil
	P.TraceLocRow, P.TraceLocCol = nil, nil
	P.Desc = Desc{}
	P.hasDesc = false
	P.hasMaps = false
}

// localToGlobal walks the blocks of worker p forward and returns the global index of each of its n local indexes.
func localToGlobal(n, nb, np, p int) []int {
	set := make([]int, n)
	for i := range set {
		set[i] = Local2Global(i, nb, np, p)
	}
	return set
}

func globalToLocal(set []int, size int) []int {
	trace := make([]int, size)
	for i := range trace {
		trace[i] = -1
	}
	for l, g := range set {
		trace[g] = l
	}
	return trace
}

func identity(n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = i
	}
	return s
}
