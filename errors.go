/*
 * errors.go, part of para2d.
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
	"errors"
	"fmt"
	"strings"

	"github.com/rmera/para2d/comm"
)

// The kinds of errors returned by the package. Use errors.Is to check for them.
var (
	//ErrConfiguration is returned when an operation is called before the
	//ones it depends on, or with sizes that make no sense.
	ErrConfiguration = errors.New("configuration error")

	//ErrGridCreation is returned when the size of a communicator
	//doesn't match the shape of the grid requested.
	ErrGridCreation = errors.New("grid creation error")
)

// Error is the error type for the package. Besides the message and kind, it keeps
// the list of functions it went through, which can be extended with Decorate.
type Error struct {
	message string
	kind    error
	deco    []string
}

func (err *Error) Error() string {
	return fmt.Sprintf("para2d: %s in %s: %s", err.kind, strings.Join(err.deco, " <- "), err.message)
}

// Decorate adds new information to the error. Given an empty string it
// just returns the current decoration.
func (err *Error) Decorate(deco string) []string {
	if deco != "" {
		err.deco = append(err.deco, deco)
	}
	return err.deco
}

// Unwrap returns the kind of the error, ErrConfiguration or ErrGridCreation.
func (err *Error) Unwrap() error { return err.kind }

func configError(caller string, format string, a ...interface{}) *Error {
	return &Error{fmt.Sprintf(format, a...), ErrConfiguration, []string{caller}}
}

// gridError turns errors from the communicator into para2d errors. Shape mismatches
// are grid creation errors, anything else is kept as the message of a configuration error.
func gridError(err error, caller string) *Error {
	var cerr comm.Error
	if errors.As(err, &cerr) && cerr.Mismatch() {
		return &Error{cerr.Error(), ErrGridCreation, []string{caller}}
	}
	return &Error{err.Error(), ErrConfiguration, []string{caller}}
}

// errDecorate adds caller to err if err is an *Error, and returns it.
func errDecorate(err error, caller string) error {
	var perr *Error
	if errors.As(err, &perr) {
		perr.Decorate(caller)
	}
	return err
}
