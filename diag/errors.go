/*
 * errors.go, part of gopsfgen
 *
 * Copyright 2025 Raul Mera Adasme <rmera_changeforat_chem-dot-helsinki-dot-fi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License  as published by
 * the Free Software Foundation; either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program; if not, write to the Free Software
 * Foundation, Inc., 51 Franklin Street, Fifth Floor, Boston,
 * MA 02110-1301, USA.
 */

package diag

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies the errors returned by every package in gopsfgen.
// A Kind is itself an error, so callers can test for a class with
// errors.Is(err, diag.UnknownPatch).
type Kind int

const (
	_ Kind = iota
	ParseError
	UnknownResidueTemplate
	UnknownPatch
	PatchTargetOutOfRange
	InsufficientTarget
	DuplicateSegment
	SegmentIdTooLong
	AtomCountMismatch
	UnresolvedCoordinate
	IoFailure
	UnknownTarget
	DuplicateResidue
	DuplicateAtom
	NoOpenSegment
	SegmentOpen
	FormatError
)

var kindNames = map[Kind]string{
	ParseError:             "parse error",
	UnknownResidueTemplate: "unknown residue template",
	UnknownPatch:           "unknown patch",
	PatchTargetOutOfRange:  "patch target out of range",
	InsufficientTarget:     "insufficient target",
	DuplicateSegment:       "duplicate segment",
	SegmentIdTooLong:       "segment id too long",
	AtomCountMismatch:      "atom count mismatch",
	UnresolvedCoordinate:   "unresolved coordinate",
	IoFailure:              "i/o failure",
	UnknownTarget:          "unknown target",
	DuplicateResidue:       "duplicate residue",
	DuplicateAtom:          "duplicate atom",
	NoOpenSegment:          "no open segment",
	SegmentOpen:            "segment already open",
	FormatError:            "malformed file",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("error kind %d", int(k))
}

func (k Kind) Error() string { return k.String() }

// Error is the concrete error type of the library. Besides the message, it keeps
// the file and line where the problem was found (if any), and a "decoration"
// slice listing the functions the error went through on its way up.
type Error struct {
	kind     Kind
	message  string
	filename string //the input file that has problems, or empty string if none.
	line     int
	deco     []string
	critical bool
	cause    error
}

// New returns a critical error of the given kind.
func New(kind Kind, format string, a ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, a...), critical: true}
}

// Wrap returns an error of the given kind that keeps err as its cause.
func Wrap(kind Kind, err error, format string, a ...any) *Error {
	e := New(kind, format, a...)
	e.cause = err
	return e
}

// At sets the file and line context of the error and returns it.
func (E *Error) At(filename string, line int) *Error {
	E.filename = filename
	E.line = line
	return E
}

func (E *Error) Error() string {
	var b strings.Builder
	if E.filename != "" {
		b.WriteString(E.filename)
		if E.line > 0 {
			fmt.Fprintf(&b, ":%d", E.line)
		}
		b.WriteString(": ")
	}
	b.WriteString(E.kind.String())
	if E.message != "" {
		b.WriteString(": ")
		b.WriteString(E.message)
	}
	if E.cause != nil {
		b.WriteString(": ")
		b.WriteString(E.cause.Error())
	}
	return b.String()
}

// Decorate adds new information to the error and returns the whole decoration
// slice. Given an empty string it just returns the current value.
func (E *Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// Kind returns the class of the error.
func (E *Error) Kind() Kind { return E.kind }

// FileName returns the file associated to the error, if any.
func (E *Error) FileName() string { return E.filename }

// Line returns the 1-based line associated to the error, or 0.
func (E *Error) Line() int { return E.line }

func (E *Error) Critical() bool { return E.critical }

func (E *Error) Unwrap() error { return E.cause }

// Is reports whether target is the Kind of E.
func (E *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == E.kind
}

// Decorate adds caller to the decoration of err if err is an *Error, and returns err.
// Other errors are wrapped with the caller's name.
func Decorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		return err
	}
	return fmt.Errorf("%s: %w", caller, err)
}

// KindOf returns the Kind of err, or 0 if err does not come from this library.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return 0
}
