/*
 * blockcyclic_test.go, part of para2d.
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

import "testing"

func TestNumLocal(Te *testing.T) {
	for g := 1; g <= 40; g++ {
		for nb := 1; nb <= 7; nb++ {
			for np := 1; np <= 5; np++ {
				count := make([]int, np)
				for i := 0; i < g; i++ {
					count[Owner(i, nb, np)]++
				}
				sum := 0
				for p := 0; p < np; p++ {
					n := NumLocal(g, nb, np, p)
					if n < 0 {
						Te.Errorf("NumLocal(%d,%d,%d,%d) is negative: %d", g, nb, np, p, n)
					}
					if n != count[p] {
						Te.Errorf("NumLocal(%d,%d,%d,%d)=%d, but the worker owns %d indexes", g, nb, np, p, n, count[p])
					}
					sum += n
				}
				if sum != g {
					Te.Errorf("g=%d nb=%d np=%d: local sizes add up to %d", g, nb, np, sum)
				}
			}
		}
	}
}

func TestNumLocalBigBlock(Te *testing.T) {
	//block larger than the matrix: all goes to coordinate 0
	if n := NumLocal(5, 8, 3, 0); n != 5 {
		Te.Errorf("expected 5, got %d", n)
	}
	for p := 1; p < 3; p++ {
		if n := NumLocal(5, 8, 3, p); n != 0 {
			Te.Errorf("coordinate %d should get nothing, got %d", p, n)
		}
	}
	//30 rows, nb=4, 3 workers: 7 full blocks, 2 leftover rows go to coordinate 7%3=1
	want := []int{12, 10, 8}
	for p, w := range want {
		if n := NumLocal(30, 4, 3, p); n != w {
			Te.Errorf("NumLocal(30,4,3,%d): expected %d, got %d", p, w, n)
		}
	}
}

func TestIndexRoundTrip(Te *testing.T) {
	for nb := 1; nb <= 4; nb++ {
		for np := 1; np <= 4; np++ {
			for g := 0; g < 50; g++ {
				p := Owner(g, nb, np)
				l := Global2Local(g, nb, np)
				if back := Local2Global(l, nb, np, p); back != g {
					Te.Errorf("nb=%d np=%d: %d -> (%d, %d) -> %d", nb, np, g, p, l, back)
				}
			}
		}
	}
}

func TestFactorGrid(Te *testing.T) {
	for total := 1; total <= 64; total++ {
		for _, mode := range []Mode{ModeWide, ModeTall} {
			d0, d1 := FactorGrid(total, mode)
			if d0*d1 != total || d0 < 1 || d1 < 1 {
				Te.Errorf("FactorGrid(%d, %s) = %d x %d", total, mode, d0, d1)
			}
			if mode == ModeWide && d0 > d1 {
				Te.Errorf("FactorGrid(%d, wide) = %d x %d", total, d0, d1)
			}
			if mode == ModeTall && d1 > d0 {
				Te.Errorf("FactorGrid(%d, tall) = %d x %d", total, d0, d1)
			}
		}
	}
	cases := map[int][2]int{1: {1, 1}, 3: {1, 3}, 4: {2, 2}, 6: {2, 3}, 12: {3, 4}, 7: {1, 7}, 36: {6, 6}}
	for total, want := range cases {
		if d0, d1 := FactorGrid(total, ModeWide); d0 != want[0] || d1 != want[1] {
			Te.Errorf("FactorGrid(%d, wide): expected %v, got %d x %d", total, want, d0, d1)
		}
		if d0, d1 := FactorGrid(total, ModeTall); d0 != want[1] || d1 != want[0] {
			Te.Errorf("FactorGrid(%d, tall): expected %v swapped, got %d x %d", total, want, d0, d1)
		}
	}
}
