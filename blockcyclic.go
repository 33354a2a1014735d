/*
 * blockcyclic.go, part of para2d.
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

import "math"

// NumLocal returns how many of the g rows (or columns) of a matrix distributed in blocks
// of size nb over np workers belong to the worker with coordinate p, 0 <= p < np.
// The distribution starts at coordinate 0. Each worker gets (g/nb)/np full blocks,
// the first (g/nb)%np workers get one more, and the incomplete last block,
// if any, goes to the worker right after those.
// If nb > g, worker 0 gets everything.
func NumLocal(g, nb, np, p int) int {
	nblock := g / nb
	n := nblock / np * nb
	if nblock%np > p {
		n += nb
	}
	if nblock%np == p {
		n += g % nb
	}
	return n
}

// Owner returns the coordinate of the worker that owns the global index g.
func Owner(g, nb, np int) int {
	return (g / nb) % np
}

// Global2Local returns the local index that the global index g has on its owner.
func Global2Local(g, nb, np int) int {
	return (g/(nb*np))*nb + g%nb
}

// Local2Global returns the global index of the local index l of the worker with coordinate p.
func Local2Global(l, nb, np, p int) int {
	return ((l/nb)*np+p)*nb + l%nb
}

// FactorGrid splits total workers into a dim0 x dim1 grid, as square as possible,
// with dim0 <= dim1 for ModeWide and dim1 <= dim0 for ModeTall.
// total must be positive.
func FactorGrid(total int, mode Mode) (dim0, dim1 int) {
	dim0 = int(math.Sqrt(float64(total)))
	for (dim0+1)*(dim0+1) <= total {
		dim0++
	}
	for dim0 > 1 && total%dim0 != 0 {
		dim0--
	}
	dim1 = total / dim0
	if mode == ModeTall {
		dim0, dim1 = dim1, dim0
	}
	return dim0, dim1
}
