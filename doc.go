/*
 * doc.go, part of para2d.
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

/*Package para2d distributes dense matrices over a 2D grid of workers using the block-cyclic
layout of ScaLAPACK-like libraries. For each worker it gives the shape of the grid, the number
of local rows and columns, the maps between local and global indexes and the 9-element
descriptor that distributed dense linear algebra routines take.



	**para2d Capabilities**


    Factors a number of workers into the most square 2D grid, either "wide"
	(dim0 <= dim1) or "tall" (dim1 <= dim0).

    Arranges the workers on the grid through an injected communicator (see
	package comm), in row-major or column-major order.

    Computes local extents, local->global and global->local index maps, for
	a distributed run or for the degenerate serial (1 worker) case.

    Builds the descriptor: {1, ctxt, M, N, MB, NB, RSrc, CSrc, LLD}.

    Scatters a global gonum matrix into the local block of a worker, and gathers it
	back.

    Dumps the index maps to a log, or to plain, gzip or zstd compressed files.


The setup of a Parallel2D follows a fixed order:

	SetProcDim -> CreateGridContext -> ComputeLocalExtents -> BuildDescriptor/BuildIndexMaps

or, for a single worker:

	SetProcDim -> SetSerial -> BuildIndexMaps

Calling a step before its predecessor returns an error for which errors.Is(err, ErrConfiguration)
is true. Init runs the whole sequence at once.

A Parallel2D belongs to one worker and is not safe for concurrent use. Only CreateGridContext
is a collective call.*/
package para2d
