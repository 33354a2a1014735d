/*
 * maps.go, part of para2d.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Maps is a snapshot of the local->global maps of one worker, as written
// to logs and dump files.
type Maps struct {
	Rank      int
	Dims      [2]int
	Coord     [2]int
	BlockSize int
	Global    [2]int //global rows and columns
	Local     [2]int //local rows and columns
	RowSet    []int
	ColSet    []int
}

const mapsHeader = "# para2d index maps"

// Maps returns the current maps of the distribution. The slices are shared with P.
func (P *Parallel2D) Maps() *Maps {
	return &Maps{
		Rank:      P.rank(),
		Dims:      [2]int{P.Dim0, P.Dim1},
		Coord:     P.Coord,
		BlockSize: P.opts.BlockSize,
		Global:    [2]int{P.grow, P.gcol},
		Local:     [2]int{P.nrow, P.ncol},
		RowSet:    P.RowSet,
		ColSet:    P.ColSet,
	}
}

// WriteTo writes the maps in a line-oriented text format that ReadMaps understands.
func (M *Maps) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	b.WriteString(mapsHeader + "\n")
	fmt.Fprintf(&b, "rank %d\n", M.Rank)
	fmt.Fprintf(&b, "dims %d %d\n", M.Dims[0], M.Dims[1])
	fmt.Fprintf(&b, "coord %d %d\n", M.Coord[0], M.Coord[1])
	fmt.Fprintf(&b, "nb %d\n", M.BlockSize)
	fmt.Fprintf(&b, "global %d %d\n", M.Global[0], M.Global[1])
	fmt.Fprintf(&b, "local %d %d\n", M.Local[0], M.Local[1])
	writeInts(&b, "rows", M.RowSet)
	writeInts(&b, "cols", M.ColSet)
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func writeInts(b *strings.Builder, key string, s []int) {
	b.WriteString(key)
	for _, v := range s {
		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(v))
	}
	b.WriteByte('\n')
}

// ReadMaps reads maps written by Maps.WriteTo.
func ReadMaps(r io.Reader) (*Maps, error) {
	M := new(Maps)
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1<<28) //the rows and cols lines can be long.
	first := true
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if first {
			if line != mapsHeader {
				return nil, configError("ReadMaps", "not an index map file")
			}
			first = false
			continue
		}
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		vals := make([]int, len(fields)-1)
		for i, f := range fields[1:] {
			v, err := strconv.Atoi(f)
			if err != nil {
				return nil, configError("ReadMaps", "bad value in line %q: %s", fields[0], err)
			}
			vals[i] = v
		}
		var err error
		switch fields[0] {
		case "rank":
			err = fill(vals, &M.Rank)
		case "dims":
			err = fill(vals, &M.Dims[0], &M.Dims[1])
		case "coord":
			err = fill(vals, &M.Coord[0], &M.Coord[1])
		case "nb":
			err = fill(vals, &M.BlockSize)
		case "global":
			err = fill(vals, &M.Global[0], &M.Global[1])
		case "local":
			err = fill(vals, &M.Local[0], &M.Local[1])
		case "rows":
			M.RowSet = vals
		case "cols":
			M.ColSet = vals
		default:
			//Unknown keys are ignored, so the format can grow.
		}
		if err != nil {
			return nil, configError("ReadMaps", "line %q: %s", fields[0], err)
		}
	}
	if err := s.Err(); err != nil {
		return nil, configError("ReadMaps", "%s", err)
	}
	if first {
		return nil, configError("ReadMaps", "empty index map file")
	}
	if len(M.RowSet) != M.Local[0] || len(M.ColSet) != M.Local[1] {
		return nil, configError("ReadMaps", "maps have %d rows and %d cols, expected %d and %d", len(M.RowSet), len(M.ColSet), M.Local[0], M.Local[1])
	}
	return M, nil
}

func fill(vals []int, dst ...*int) error {
	if len(vals) != len(dst) {
		return fmt.Errorf("expected %d values, got %d", len(dst), len(vals))
	}
	for i, d := range dst {
		*d = vals[i]
	}
	return nil
}

// SaveMaps writes the maps to the file fname. A .zst extension gives a zstd-compressed
// file, .gz a gzip-compressed one, and anything else plain text.
func (P *Parallel2D) SaveMaps(fname string) error {
	if P.state < extentsComputed {
		return configError("SaveMaps", "local extents not computed")
	}
	f, err := os.Create(fname)
	if err != nil {
		return configError("SaveMaps", "%s", err)
	}
	defer f.Close()
	var w io.WriteCloser
	switch strings.ToLower(filepath.Ext(fname)) {
	case ".zst":
		w, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case ".gz":
		w = gzip.NewWriter(f)
	default:
		w = nopCloser{f}
	}
	if err != nil {
		return configError("SaveMaps", "%s", err)
	}
	if _, err := P.Maps().WriteTo(w); err != nil {
		w.Close()
		return configError("SaveMaps", "%s", err)
	}
	if err := w.Close(); err != nil {
		return configError("SaveMaps", "%s", err)
	}
	if err := f.Close(); err != nil {
		return configError("SaveMaps", "%s", err)
	}
	return nil
}

// LoadMaps reads maps saved by SaveMaps. The compression is deduced from the extension
// as in SaveMaps.
func LoadMaps(fname string) (*Maps, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, configError("LoadMaps", "%s", err)
	}
	defer f.Close()
	var r io.Reader = bufio.NewReader(f)
	switch strings.ToLower(filepath.Ext(fname)) {
	case ".zst":
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, configError("LoadMaps", "%s", err)
		}
		defer dec.Close()
		r = dec
	case ".gz":
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, configError("LoadMaps", "%s", err)
		}
		defer gz.Close()
		r = gz
	}
	M, err := ReadMaps(r)
	if err != nil {
		return nil, errDecorate(err, "LoadMaps")
	}
	return M, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
