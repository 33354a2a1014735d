/*
 * serial.go, part of para2d.
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

package comm

// Serial is a communicator with one single worker. All the collectives return
// immediately.
type Serial struct{}

func (S Serial) Rank() int { return 0 }

func (S Serial) Size() int { return 1 }

// CartCreate returns a 1x1 grid. The context handle is always 0.
func (S Serial) CartCreate(dims [2]int, layout Layout) (Grid, error) {
	if err := checkDims(dims, 1, "Serial.CartCreate"); err != nil {
		return nil, err
	}
	return &cartGrid{ctxt: 0, dims: dims, layout: layout}, nil
}

func (S Serial) AllReduceInts(op Op, in []int) ([]int, error) {
	return append([]int(nil), in...), nil
}

func (S Serial) AllReduceFloats(op Op, in []float64) ([]float64, error) {
	return append([]float64(nil), in...), nil
}

func (S Serial) Barrier() error { return nil }
