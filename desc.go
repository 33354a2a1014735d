/*
 * desc.go, part of para2d.
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

import "fmt"

// Positions of the fields in a Desc.
const (
	DescDType = iota //always 1, dense matrix
	DescCtxt         //context handle of the grid
	DescM            //global rows
	DescN            //global columns
	DescMB           //row block size
	DescNB           //column block size
	DescRSrc         //grid row of the worker owning the first row
	DescCSrc         //grid column of the worker owning the first column
	DescLLD          //leading dimension of the local array
	DescLen
)

// DenseDType is the descriptor type of a dense matrix.
const DenseDType = 1

// Desc is the descriptor of a block-cyclically distributed dense matrix, with the
// fields in the order distributed dense linear algebra routines expect.
type Desc [DescLen]int

func (D Desc) Ctxt() int { return D[DescCtxt] }
func (D Desc) M() int    { return D[DescM] }
func (D Desc) N() int    { return D[DescN] }
func (D Desc) MB() int   { return D[DescMB] }
func (D Desc) NB() int   { return D[DescNB] }
func (D Desc) LLD() int  { return D[DescLLD] }

func (D Desc) String() string {
	return fmt.Sprintf("desc{dtype=%d ctxt=%d m=%d n=%d mb=%d nb=%d rsrc=%d csrc=%d lld=%d}",
		D[0], D[1], D[2], D[3], D[4], D[5], D[6], D[7], D[8])
}
