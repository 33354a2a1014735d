/*
 * gonum.go, part of para2d.
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
	"github.com/rmera/para2d/comm"
	"gonum.org/v1/gonum/mat"
)

// Scatter returns the block of the global matrix that belongs to this worker, as a
// RowSize x ColSize dense matrix. If this worker holds no elements, it returns an empty matrix.
func (P *Parallel2D) Scatter(global mat.Matrix) (*mat.Dense, error) {
	if P.state < extentsComputed {
		return nil, configError("Scatter", "local extents not computed")
	}
	r, c := global.Dims()
	if r != P.grow || c != P.gcol {
		return nil, configError("Scatter", "global matrix is %d x %d, distribution is for %d x %d", r, c, P.grow, P.gcol)
	}
	if P.nrow == 0 || P.ncol == 0 {
		return &mat.Dense{}, nil
	}
	local := mat.NewDense(P.nrow, P.ncol, nil)
	for i, gi := range P.RowSet {
		for j, gj := range P.ColSet {
			local.Set(i, j, global.At(gi, gj))
		}
	}
	return local, nil
}

// Gather puts the elements of the local matrix in their places in the global matrix dst.
// Elements of dst that belong to other workers are not touched.
func (P *Parallel2D) Gather(dst *mat.Dense, local mat.Matrix) error {
	if P.state < extentsComputed {
		return configError("Gather", "local extents not computed")
	}
	r, c := dst.Dims()
	if r != P.grow || c != P.gcol {
		return configError("Gather", "global matrix is %d x %d, distribution is for %d x %d", r, c, P.grow, P.gcol)
	}
	if P.nrow == 0 || P.ncol == 0 {
		return nil
	}
	lr, lc := local.Dims()
	if lr != P.nrow || lc != P.ncol {
		return configError("Gather", "local matrix is %d x %d, expected %d x %d", lr, lc, P.nrow, P.ncol)
	}
	for i, gi := range P.RowSet {
		for j, gj := range P.ColSet {
			dst.Set(gi, gj, local.At(i, j))
		}
	}
	return nil
}

// AllGather rebuilds the global matrix from the local blocks of all the workers in c.
// Each worker gathers its block into a zero matrix, and the results are summed over
// all workers. It is a collective call, and every worker takes part in the sum even
// if its own gather fails.
func (P *Parallel2D) AllGather(c comm.Communicator, local mat.Matrix) (*mat.Dense, error) {
	if P.state < extentsComputed {
		return nil, configError("AllGather", "local extents not computed")
	}
	global := mat.NewDense(P.grow, P.gcol, nil)
	gerr := P.Gather(global, local)
	sum, err := c.AllReduceFloats(comm.OpSum, global.RawMatrix().Data)
	if gerr != nil {
		return nil, errDecorate(gerr, "AllGather")
	}
	if err != nil {
		return nil, configError("AllGather", "%s", err)
	}
	return mat.NewDense(P.grow, P.gcol, sum), nil
}
