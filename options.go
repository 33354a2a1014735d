/*
 * options.go, part of para2d.
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
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rmera/para2d/comm"
)

// Mode selects the shape of the worker grid.
type Mode int

const (
	ModeWide Mode = iota //dim0 <= dim1
	ModeTall             //dim1 <= dim0
)

func (M Mode) String() string {
	if M == ModeTall {
		return "tall"
	}
	return "wide"
}

func (M Mode) MarshalText() ([]byte, error) {
	return []byte(M.String()), nil
}

func (M *Mode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "wide", "0", "":
		*M = ModeWide
	case "tall", "1":
		*M = ModeTall
	default:
		return configError("Mode.UnmarshalText", "unknown grid mode %q", string(text))
	}
	return nil
}

// Options holds the configuration of one Parallel2D. There is no package-level
// configuration.
type Options struct {
	//BlockSize is the size of the square blocks in which the matrix is dealt to
	//the workers.
	BlockSize int `json:"block_size" toml:"block_size"`

	Mode   Mode        `json:"mode" toml:"mode"`
	Layout comm.Layout `json:"layout" toml:"layout"`

	//DumpFile, if not empty, is where BuildIndexMaps saves the index maps.
	//The string "{rank}" is replaced by the rank of the worker. The extension
	//selects the compression (see SaveMaps).
	DumpFile string `json:"dump_file" toml:"dump_file"`

	//Logger gets diagnostic messages. nil means no messages.
	Logger *log.Logger `json:"-" toml:"-"`
}

// DefaultOptions returns block size 1, a wide grid and row-major layout.
func DefaultOptions() Options {
	return Options{BlockSize: 1, Mode: ModeWide, Layout: comm.RowMajor}
}

// Validate returns an error if the options can't be used.
func (O Options) Validate() error {
	if O.BlockSize < 1 {
		return configError("Options.Validate", "block size must be positive, got %d", O.BlockSize)
	}
	if O.Mode != ModeWide && O.Mode != ModeTall {
		return configError("Options.Validate", "invalid mode %d", int(O.Mode))
	}
	if O.Layout != comm.RowMajor && O.Layout != comm.ColMajor {
		return configError("Options.Validate", "invalid layout %d", int(O.Layout))
	}
	return nil
}

// LoadOptions reads options from a TOML (.toml) or JSON (.json) file. Fields missing
// from the file keep the values of DefaultOptions.
func LoadOptions(fname string) (Options, error) {
	O := DefaultOptions()
	data, err := os.ReadFile(fname)
	if err != nil {
		return O, configError("LoadOptions", "%s", err)
	}
	switch ext := strings.ToLower(filepath.Ext(fname)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &O)
	case ".json":
		err = json.Unmarshal(data, &O)
	default:
		return O, configError("LoadOptions", "unknown options format %q for %s", ext, fname)
	}
	if err != nil {
		return O, configError("LoadOptions", "can't parse %s: %s", fname, err)
	}
	if err := O.Validate(); err != nil {
		return O, errDecorate(err, "LoadOptions")
	}
	return O, nil
}

func (O Options) dumpName(rank int) string {
	return strings.ReplaceAll(O.DumpFile, "{rank}", fmt.Sprint(rank))
}
