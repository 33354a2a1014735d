/*
 * world.go, part of para2d.
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

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

// World is a set of workers living in the same process, each of them
// normally running in its own goroutine. Collectives are implemented as
// a rendezvous: the last worker to arrive releases the others.
type World struct {
	size    int
	mu      sync.Mutex
	cond    *sync.Cond
	arrived int
	gen     int
	slots   []interface{}
	done    []interface{} //the slots of the last completed collective
	procs   []*Proc
}

// NewWorld returns a world with size workers.
func NewWorld(size int) (*World, error) {
	if size < 1 {
		return nil, Error{fmt.Sprintf("can't create a world with %d workers", size), []string{"NewWorld"}, false}
	}
	W := &World{size: size, slots: make([]interface{}, size)}
	W.cond = sync.NewCond(&W.mu)
	W.procs = make([]*Proc, size)
	for i := range W.procs {
		W.procs[i] = &Proc{world: W, rank: i}
	}
	return W, nil
}

// Size returns the number of workers in the world.
func (W *World) Size() int { return W.size }

// Proc returns the communicator of the worker with the given rank.
// It panics if the rank is out of range.
func (W *World) Proc(rank int) *Proc {
	return W.procs[rank]
}

// Run calls f once per worker, each in its own goroutine, and waits for all
// of them to return. It returns the first non-nil error. If one worker
// returns before a collective that the others do call, Run will hang.
func (W *World) Run(f func(c Communicator) error) error {
	var g errgroup.Group
	for _, p := range W.procs {
		p := p
		g.Go(func() error { return f(p) })
	}
	return g.Wait()
}

// rendezvous deposits v for the given rank and blocks until every worker
// has deposited something. It returns what all the workers deposited, in
// rank order, and the number of the collective call.
func (W *World) rendezvous(rank int, v interface{}) ([]interface{}, int) {
	W.mu.Lock()
	defer W.mu.Unlock()
	gen := W.gen
	W.slots[rank] = v
	W.arrived++
	if W.arrived == W.size {
		W.done = W.slots
		W.slots = make([]interface{}, W.size)
		W.arrived = 0
		W.gen++
		W.cond.Broadcast()
		return W.done, gen
	}
	//The next collective can't complete until we arrive at it, so
	//W.done is still ours when we wake up.
	for gen == W.gen {
		W.cond.Wait()
	}
	return W.done, gen
}

// Proc is one worker of a World. It implements Communicator.
type Proc struct {
	world *World
	rank  int
}

func (P *Proc) Rank() int { return P.rank }

func (P *Proc) Size() int { return P.world.size }

type cartRequest struct {
	dims   [2]int
	layout Layout
}

// CartCreate arranges the workers of the world on a grid. Every worker must call it
// with the same dims and layout. The context handle is the sequence number of the collective call,
// so it is the same for all workers and different for each grid created.
func (P *Proc) CartCreate(dims [2]int, layout Layout) (Grid, error) {
	if err := checkDims(dims, P.world.size, "Proc.CartCreate"); err != nil {
		return nil, err
	}
	all, gen := P.world.rendezvous(P.rank, cartRequest{dims, layout})
	for r, v := range all {
		req := v.(cartRequest)
		if req.dims != dims || req.layout != layout {
			return nil, Error{fmt.Sprintf("rank %d asked for a %d x %d %s grid, rank %d for a %d x %d %s grid",
				r, req.dims[0], req.dims[1], req.layout, P.rank, dims[0], dims[1], layout), []string{"Proc.CartCreate"}, true}
		}
	}
	return &cartGrid{ctxt: gen, dims: dims, coords: layout.Coords(P.rank, dims), layout: layout}, nil
}

func (P *Proc) AllReduceInts(op Op, in []int) ([]int, error) {
	all, _ := P.world.rendezvous(P.rank, append([]int(nil), in...))
	out := make([]int, len(in))
	for r, v := range all {
		s := v.([]int)
		if len(s) != len(in) {
			return nil, Error{fmt.Sprintf("rank %d sent %d elements, rank %d sent %d", r, len(s), P.rank, len(in)), []string{"Proc.AllReduceInts"}, false}
		}
		if r == 0 {
			copy(out, s)
			continue
		}
		reduceInts(op, out, s)
	}
	return out, nil
}

func (P *Proc) AllReduceFloats(op Op, in []float64) ([]float64, error) {
	all, _ := P.world.rendezvous(P.rank, append([]float64(nil), in...))
	out := make([]float64, len(in))
	for r, v := range all {
		s := v.([]float64)
		if len(s) != len(in) {
			return nil, Error{fmt.Sprintf("rank %d sent %d elements, rank %d sent %d", r, len(s), P.rank, len(in)), []string{"Proc.AllReduceFloats"}, false}
		}
		if r == 0 {
			copy(out, s)
			continue
		}
		switch op {
		case OpMax:
			for i := range out {
				out[i] = math.Max(out[i], s[i])
			}
		case OpMin:
			for i := range out {
				out[i] = math.Min(out[i], s[i])
			}
		default:
			floats.Add(out, s)
		}
	}
	return out, nil
}

func (P *Proc) Barrier() error {
	P.world.rendezvous(P.rank, nil)
	return nil
}
